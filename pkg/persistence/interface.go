package persistence

import (
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/types"
	"github.com/google/uuid"
)

// IBatchPersistence stores signed record batches. Implementations must be
// safe for concurrent use.
type IBatchPersistence interface {
	// SaveBatch stores batch under its ID, replacing any previous copy.
	SaveBatch(batch *types.RecordBatch) error

	// LoadBatch returns nil if no batch has that ID. Errors are storage
	// failures only.
	LoadBatch(id uuid.UUID) (*types.RecordBatch, error)

	// ListBatches returns summaries sorted by creation time (ascending).
	// Returns an empty slice when nothing is stored.
	ListBatches() ([]*types.BatchSummary, error)

	// DeleteBatch is idempotent.
	DeleteBatch(id uuid.UUID) error

	// Close is idempotent. Every other call fails with ErrClosed afterwards.
	Close() error

	HealthCheck() error
}

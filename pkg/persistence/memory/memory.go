package memory

import (
	"fmt"
	"sync"

	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/persistence"
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MemoryPersistence keeps batches in process memory. It is meant for tests
// and in-process callers; nothing survives the process, so the CLI refuses it.
//
// Batches are stored serialized, so callers never share memory with the
// store.
type MemoryPersistence struct {
	mu      sync.RWMutex
	batches map[uuid.UUID][]byte
	closed  bool
}

var _ persistence.IBatchPersistence = (*MemoryPersistence)(nil)

func NewMemoryPersistence(logger *zap.Logger) *MemoryPersistence {
	logger.Sugar().Warnw("Using in-memory persistence, signed batches will be lost on exit")
	return &MemoryPersistence{
		batches: make(map[uuid.UUID][]byte),
	}
}

func (m *MemoryPersistence) SaveBatch(batch *types.RecordBatch) error {
	if err := persistence.CheckBatch(batch); err != nil {
		return err
	}
	data, err := persistence.MarshalRecordBatch(batch)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return persistence.ErrClosed
	}
	m.batches[batch.ID] = data
	return nil
}

func (m *MemoryPersistence) LoadBatch(id uuid.UUID) (*types.RecordBatch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, persistence.ErrClosed
	}
	data, ok := m.batches[id]
	if !ok {
		return nil, nil
	}
	batch, err := persistence.UnmarshalRecordBatch(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load RecordBatch %s: %w", id, err)
	}
	return batch, nil
}

func (m *MemoryPersistence) ListBatches() ([]*types.BatchSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, persistence.ErrClosed
	}
	summaries := make([]*types.BatchSummary, 0, len(m.batches))
	for id, data := range m.batches {
		batch, err := persistence.UnmarshalRecordBatch(data)
		if err != nil {
			return nil, fmt.Errorf("failed to load RecordBatch %s: %w", id, err)
		}
		summaries = append(summaries, batch.Summary())
	}
	persistence.SortSummaries(summaries)
	return summaries, nil
}

func (m *MemoryPersistence) DeleteBatch(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return persistence.ErrClosed
	}
	delete(m.batches, id)
	return nil
}

func (m *MemoryPersistence) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.batches = nil
	return nil
}

func (m *MemoryPersistence) HealthCheck() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return persistence.ErrClosed
	}
	return nil
}

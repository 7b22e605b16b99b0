package persistence

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/types"
	"github.com/google/uuid"
)

type StoreType string

const (
	StoreTypeFile   StoreType = "file"
	StoreTypeMemory StoreType = "memory"
	StoreTypeBadger StoreType = "badger"
	StoreTypeRedis  StoreType = "redis"
)

func (s StoreType) IsValid() bool {
	switch s {
	case StoreTypeFile, StoreTypeMemory, StoreTypeBadger, StoreTypeRedis:
		return true
	}
	return false
}

// IsDurable reports whether batches saved to the store outlive the process.
func (s StoreType) IsDurable() bool {
	return s.IsValid() && s != StoreTypeMemory
}

// ErrClosed is returned by every operation on a closed persistence layer.
var ErrClosed = errors.New("persistence layer is closed")

// CheckBatch rejects batches that cannot be addressed by ID.
func CheckBatch(batch *types.RecordBatch) error {
	if batch == nil {
		return fmt.Errorf("cannot save nil RecordBatch")
	}
	if batch.ID == uuid.Nil {
		return fmt.Errorf("cannot save RecordBatch without an ID")
	}
	return nil
}

// SortSummaries orders summaries by creation time, then by ID.
func SortSummaries(summaries []*types.BatchSummary) {
	sort.Slice(summaries, func(i, j int) bool {
		if !summaries[i].CreatedAt.Equal(summaries[j].CreatedAt) {
			return summaries[i].CreatedAt.Before(summaries[j].CreatedAt)
		}
		return summaries[i].ID.String() < summaries[j].ID.String()
	})
}

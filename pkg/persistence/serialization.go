package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/types"
)

// MarshalRecordBatch serializes a RecordBatch to JSON bytes.
func MarshalRecordBatch(batch *types.RecordBatch) ([]byte, error) {
	if batch == nil {
		return nil, fmt.Errorf("cannot marshal nil RecordBatch")
	}

	data, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal RecordBatch to JSON: %w", err)
	}
	return data, nil
}

// UnmarshalRecordBatch deserializes a RecordBatch from JSON bytes.
func UnmarshalRecordBatch(data []byte) (*types.RecordBatch, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("cannot unmarshal empty data")
	}

	var batch types.RecordBatch
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON to RecordBatch: %w", err)
	}
	return &batch, nil
}

// MarshalRecords encodes records as the reference JSON array. indent uses
// two spaces per level.
func MarshalRecords(records []*types.SignedRecord, indent bool) ([]byte, error) {
	if records == nil {
		records = []*types.SignedRecord{}
	}
	var (
		data []byte
		err  error
	)
	if indent {
		data, err = json.MarshalIndent(records, "", "  ")
	} else {
		data, err = json.Marshal(records)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal signed records: %w", err)
	}
	return data, nil
}

// UnmarshalRecords decodes the reference JSON array.
func UnmarshalRecords(data []byte) ([]*types.SignedRecord, error) {
	var records []*types.SignedRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal signed records: %w", err)
	}
	return records, nil
}

package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/persistence"
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	batchFileSuffix = ".json"
	dirPerm         = 0o750
	filePerm        = 0o640
)

// FilePersistence keeps one JSON document per batch under a directory.
// Writes go to a temp file in the same directory and are renamed into place.
type FilePersistence struct {
	dir    string
	logger *zap.Logger
	mu     sync.RWMutex
	closed bool
}

var _ persistence.IBatchPersistence = (*FilePersistence)(nil)

func NewFilePersistence(dataPath string, logger *zap.Logger) (*FilePersistence, error) {
	absPath, err := filepath.Abs(dataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	if err := os.MkdirAll(absPath, dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", absPath, err)
	}

	logger.Sugar().Infow("File persistence initialized", "path", absPath)
	return &FilePersistence{dir: absPath, logger: logger}, nil
}

func (f *FilePersistence) batchPath(id uuid.UUID) string {
	return filepath.Join(f.dir, id.String()+batchFileSuffix)
}

func (f *FilePersistence) SaveBatch(batch *types.RecordBatch) error {
	if err := persistence.CheckBatch(batch); err != nil {
		return err
	}
	data, err := persistence.MarshalRecordBatch(batch)
	if err != nil {
		return err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return persistence.ErrClosed
	}
	if err := writeFileAtomic(f.batchPath(batch.ID), data); err != nil {
		return fmt.Errorf("failed to save RecordBatch %s: %w", batch.ID, err)
	}
	return nil
}

func (f *FilePersistence) LoadBatch(id uuid.UUID) (*types.RecordBatch, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return nil, persistence.ErrClosed
	}

	data, err := os.ReadFile(f.batchPath(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load RecordBatch %s: %w", id, err)
	}
	return persistence.UnmarshalRecordBatch(data)
}

// ListBatches skips files that are not batches or fail to decode.
func (f *FilePersistence) ListBatches() ([]*types.BatchSummary, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return nil, persistence.ErrClosed
	}

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list RecordBatches: %w", err)
	}

	summaries := make([]*types.BatchSummary, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, batchFileSuffix) {
			continue
		}
		if _, err := uuid.Parse(strings.TrimSuffix(name, batchFileSuffix)); err != nil {
			continue
		}

		data, err := os.ReadFile(filepath.Join(f.dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		batch, err := persistence.UnmarshalRecordBatch(data)
		if err != nil {
			f.logger.Sugar().Warnw("Failed to unmarshal RecordBatch, skipping", "file", name, "error", err)
			continue
		}
		summaries = append(summaries, batch.Summary())
	}

	persistence.SortSummaries(summaries)
	return summaries, nil
}

func (f *FilePersistence) DeleteBatch(id uuid.UUID) error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return persistence.ErrClosed
	}

	if err := os.Remove(f.batchPath(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete RecordBatch %s: %w", id, err)
	}
	return nil
}

func (f *FilePersistence) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	return nil
}

func (f *FilePersistence) HealthCheck() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return persistence.ErrClosed
	}

	info, err := os.Stat(f.dir)
	if err != nil {
		return fmt.Errorf("data directory unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data path %s is not a directory", f.dir)
	}
	return nil
}

// WriteRecords writes records as a JSON array to path, replacing the file
// atomically.
func WriteRecords(path string, records []*types.SignedRecord, indent bool) error {
	data, err := persistence.MarshalRecords(records, indent)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("failed to write records to %s: %w", path, err)
	}
	return nil
}

// ReadRecords reads a JSON array written by WriteRecords.
func ReadRecords(path string) ([]*types.SignedRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read records from %s: %w", path, err)
	}
	return persistence.UnmarshalRecords(data)
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

package testutil

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/persistence"
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/types"
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/voucher"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunBatchPersistenceSuite runs the behaviour every IBatchPersistence
// backend must share. newStore must return an empty store.
func RunBatchPersistenceSuite(t *testing.T, newStore func(t *testing.T) persistence.IBatchPersistence) {
	t.Run("SaveAndLoad", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		batch := CreateTestBatch(t, 3)
		require.NoError(t, store.SaveBatch(batch))

		loaded, err := store.LoadBatch(batch.ID)
		require.NoError(t, err)
		require.NotNil(t, loaded)
		requireSameBatch(t, batch, loaded)

		_, err = voucher.VerifyRecords(voucher.Trip, loaded.Records, batch.Signer)
		require.NoError(t, err)
	})

	t.Run("LoadNotFound", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		loaded, err := store.LoadBatch(uuid.New())
		require.NoError(t, err)
		assert.Nil(t, loaded)
	})

	t.Run("SaveInvalid", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		require.Error(t, store.SaveBatch(nil))
		require.Error(t, store.SaveBatch(&types.RecordBatch{}))
	})

	t.Run("Overwrite", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		batch := CreateTestBatch(t, 2)
		require.NoError(t, store.SaveBatch(batch))
		batch.Kind = "trip-reissued"
		require.NoError(t, store.SaveBatch(batch))

		loaded, err := store.LoadBatch(batch.ID)
		require.NoError(t, err)
		assert.Equal(t, "trip-reissued", loaded.Kind)

		summaries, err := store.ListBatches()
		require.NoError(t, err)
		assert.Len(t, summaries, 1)
	})

	t.Run("List", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		summaries, err := store.ListBatches()
		require.NoError(t, err)
		assert.NotNil(t, summaries)
		assert.Empty(t, summaries)

		base := time.Unix(1717000000, 0).UTC()
		var ids []uuid.UUID
		for _, offset := range []int{3, 1, 2} {
			batch := CreateTestBatch(t, offset)
			batch.CreatedAt = base.Add(time.Duration(offset) * time.Minute)
			require.NoError(t, store.SaveBatch(batch))
			ids = append(ids, batch.ID)
		}

		summaries, err = store.ListBatches()
		require.NoError(t, err)
		require.Len(t, summaries, 3)
		assert.Equal(t, ids[1], summaries[0].ID)
		assert.Equal(t, ids[2], summaries[1].ID)
		assert.Equal(t, ids[0], summaries[2].ID)
		assert.Equal(t, 1, summaries[0].RecordCount)
		assert.Equal(t, 3, summaries[2].RecordCount)
	})

	t.Run("Delete", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		batch := CreateTestBatch(t, 1)
		require.NoError(t, store.SaveBatch(batch))
		require.NoError(t, store.DeleteBatch(batch.ID))

		loaded, err := store.LoadBatch(batch.ID)
		require.NoError(t, err)
		assert.Nil(t, loaded)

		require.NoError(t, store.DeleteBatch(batch.ID))
		summaries, err := store.ListBatches()
		require.NoError(t, err)
		assert.Empty(t, summaries)
	})

	t.Run("Closed", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.HealthCheck())
		require.NoError(t, store.Close())
		require.NoError(t, store.Close())

		assert.True(t, errors.Is(store.SaveBatch(CreateTestBatch(t, 1)), persistence.ErrClosed))
		_, err := store.LoadBatch(uuid.New())
		assert.True(t, errors.Is(err, persistence.ErrClosed))
		_, err = store.ListBatches()
		assert.True(t, errors.Is(err, persistence.ErrClosed))
		assert.True(t, errors.Is(store.DeleteBatch(uuid.New()), persistence.ErrClosed))
		assert.True(t, errors.Is(store.HealthCheck(), persistence.ErrClosed))
	})

	t.Run("ConcurrentSaves", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		batches := make([]*types.RecordBatch, 8)
		for i := range batches {
			batches[i] = CreateTestBatch(t, 1)
		}

		var wg sync.WaitGroup
		errs := make(chan error, len(batches))
		for _, batch := range batches {
			wg.Add(1)
			go func(b *types.RecordBatch) {
				defer wg.Done()
				errs <- store.SaveBatch(b)
			}(batch)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		summaries, err := store.ListBatches()
		require.NoError(t, err)
		assert.Len(t, summaries, len(batches))
	})
}

func requireSameBatch(t *testing.T, expected, actual *types.RecordBatch) {
	t.Helper()
	assert.Equal(t, expected.ID, actual.ID)
	assert.Equal(t, expected.Kind, actual.Kind)
	assert.True(t, expected.CreatedAt.Equal(actual.CreatedAt))
	assert.Equal(t, expected.Signer, actual.Signer)
	assert.Equal(t, expected.Domain, actual.Domain)
	assert.Equal(t, expected.MerkleRoot, actual.MerkleRoot)
	require.NotNil(t, actual.Schema)
	assert.Equal(t, expected.Schema.EncodeType(), actual.Schema.EncodeType())
	require.Len(t, actual.Records, len(expected.Records))
	for i := range expected.Records {
		assert.Equal(t, expected.Records[i].Name, actual.Records[i].Name)
		assert.Equal(t, expected.Records[i].Signature, actual.Records[i].Signature)
		assert.Equal(t, expected.Records[i].Fields, actual.Records[i].Fields)
	}
}

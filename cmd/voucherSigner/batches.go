package main

import (
	"fmt"
	"time"

	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/logger"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

func runBatchesList(c *cli.Context) error {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: c.Bool("verbose")})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = l.Sync() }()

	store, err := newStore(storeConfigFromFlags(c), l)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	summaries, err := store.ListBatches()
	if err != nil {
		return err
	}
	for _, s := range summaries {
		if _, err := fmt.Fprintf(c.App.Writer, "%s\t%s\t%s\t%d\t%s\n",
			s.ID, s.Kind, s.CreatedAt.Format(time.RFC3339), s.RecordCount, s.MerkleRoot.Hex()); err != nil {
			return err
		}
	}
	l.Sugar().Debugw("Listed batches", "store", c.String("store"), "batches", len(summaries))
	return nil
}

func runBatchesDelete(c *cli.Context) error {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: c.Bool("verbose")})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = l.Sync() }()

	id, err := uuid.Parse(c.String("batch-id"))
	if err != nil {
		return fmt.Errorf("invalid batch id %q: %w", c.String("batch-id"), err)
	}

	store, err := newStore(storeConfigFromFlags(c), l)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.DeleteBatch(id); err != nil {
		return err
	}
	l.Sugar().Infow("Deleted batch", "store", c.String("store"), "batchId", id.String())
	return nil
}

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/eip712"
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/logger"
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/merkle"
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/persistence/file"
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/types"
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/voucher"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func runVerify(c *cli.Context) error {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: c.Bool("verbose")})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = l.Sync() }()

	records, batch, err := loadRecordsToVerify(c, l)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("nothing to verify")
	}

	def, err := voucher.ForDomain(records[0].Domain)
	if err != nil {
		return err
	}

	expected, err := expectedSigner(c.String("expected-signer"), batch, def, records[0])
	if err != nil {
		return err
	}

	digests, err := voucher.VerifyRecords(def, records, expected)
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	tree, err := merkle.BuildMerkleTree(digests)
	if err != nil {
		return err
	}
	root := tree.Root
	if batch != nil && batch.MerkleRoot != root {
		return fmt.Errorf("verification failed: batch merkle root %s does not match records (%s)", batch.MerkleRoot.Hex(), root.Hex())
	}

	for i, rec := range records {
		l.Sugar().Debugw("Verified record", "index", i, "name", rec.Name, "digest", digests[i].Hex())
	}
	l.Sugar().Infow("All records verified",
		"kind", def.Kind,
		"records", len(records),
		"signer", expected.Hex(),
		"merkleRoot", root.Hex(),
	)
	if _, err := fmt.Fprintf(c.App.Writer, "verified %d %s records signed by %s\n", len(records), def.Kind, expected.Hex()); err != nil {
		return err
	}

	if index := c.Int("record"); index >= 0 {
		return printInclusionProof(c.App.Writer, tree, records, digests, index)
	}
	return nil
}

type inclusionProof struct {
	Name       string      `json:"name"`
	Digest     common.Hash `json:"digest"`
	MerkleRoot common.Hash `json:"merkleRoot"`
	*merkle.MerkleProof
}

// printInclusionProof writes the proof for one record after checking it
// against the tree root.
func printInclusionProof(w io.Writer, tree *merkle.MerkleTree, records []*types.SignedRecord, digests []common.Hash, index int) error {
	proof, err := tree.GenerateProof(index)
	if err != nil {
		return err
	}
	if !merkle.VerifyDigest(digests[index], proof, tree.Root) {
		return fmt.Errorf("verification failed: inclusion proof for record %d does not match root %s", index, tree.Root.Hex())
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(&inclusionProof{
		Name:        records[index].Name,
		Digest:      digests[index],
		MerkleRoot:  tree.Root,
		MerkleProof: proof,
	})
}

func loadRecordsToVerify(c *cli.Context, l *zap.Logger) ([]*types.SignedRecord, *types.RecordBatch, error) {
	batchID := c.String("batch-id")
	if batchID == "" {
		records, err := file.ReadRecords(c.String("input"))
		return records, nil, err
	}

	id, err := uuid.Parse(batchID)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid batch id %q: %w", batchID, err)
	}
	store, err := newStore(storeConfigFromFlags(c), l)
	if err != nil {
		return nil, nil, fmt.Errorf("--batch-id needs a store: %w", err)
	}
	defer func() { _ = store.Close() }()

	batch, err := store.LoadBatch(id)
	if err != nil {
		return nil, nil, err
	}
	if batch == nil {
		return nil, nil, fmt.Errorf("batch %s not found", id)
	}
	return batch.Records, batch, nil
}

// expectedSigner prefers an explicit address, then the batch signer, then
// whoever signed the first record.
func expectedSigner(explicit string, batch *types.RecordBatch, def *voucher.Definition, first *types.SignedRecord) (common.Address, error) {
	if explicit != "" {
		return eip712.ParseAddress(explicit)
	}
	if batch != nil {
		return batch.Signer, nil
	}
	signer, _, err := voucher.VerifyRecord(def, first)
	return signer, err
}

func runSignerAddress(c *cli.Context) error {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: c.Bool("verbose")})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = l.Sync() }()

	if c.String("private-key") == "" && c.String("kms-ciphertext") == "" {
		return fmt.Errorf("a signing key or KMS ciphertext is required")
	}

	signer, err := newDigestSigner(c.Context, keyConfig{
		HexKey:        c.String("private-key"),
		KMSCiphertext: c.String("kms-ciphertext"),
		AWSRegion:     c.String("aws-region"),
	}, l)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, signer.Address().Hex())
	return err
}

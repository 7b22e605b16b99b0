package main

import (
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/batchSigner"
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/config"
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/eip712"
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/logger"
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/persistence"
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/persistence/file"
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/types"
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/voucher"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func parseSignerConfig(c *cli.Context, kind voucher.Kind) (*config.VoucherSignerConfig, error) {
	recipients, err := config.ResolveRecipients(kind, c.String("recipients-file"), c.StringSlice("recipient"), os.LookupEnv)
	if err != nil {
		return nil, err
	}
	return &config.VoucherSignerConfig{
		Kind:              kind,
		SigningKey:        config.NewSecret(c.String("private-key")),
		KMSCiphertext:     c.String("kms-ciphertext"),
		AWSRegion:         c.String("aws-region"),
		VerifyingContract: c.String("verifying-contract"),
		ChainID:           config.ChainId(c.Uint64("chain-id")),
		Recipients:        recipients,
		Output:            c.String("output"),
		Indent:            c.Bool("indent"),
		Store:             persistence.StoreType(c.String("store")),
		DataPath:          c.String("data-path"),
		RedisAddress:      c.String("redis-address"),
		Workers:           c.Int("workers"),
		Policy:            batchSigner.FailurePolicy(c.String("policy")),
		Verbose:           c.Bool("verbose"),
	}, nil
}

func payloadTemplate(c *cli.Context, kind voucher.Kind, now time.Time) *types.PayloadTemplate {
	if kind == voucher.KindPayroll {
		return voucher.PayrollTemplate(voucher.PayrollParams{
			Period:    new(big.Int).SetUint64(c.Uint64("period")),
			USDAmount: new(big.Int).SetUint64(c.Uint64("usd-amount")),
		})
	}

	params := voucher.DefaultTripParams(now)
	params.TripID = new(big.Int).SetUint64(c.Uint64("trip-id"))
	params.USDCents = new(big.Int).SetUint64(c.Uint64("usd-cents"))
	if expiry := c.Int64("expiry"); expiry != 0 {
		params.Expiry = big.NewInt(expiry)
	}
	return voucher.TripTemplate(params)
}

func runSign(c *cli.Context, kind voucher.Kind) error {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: c.Bool("verbose")})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = l.Sync() }()

	cfg, err := parseSignerConfig(c, kind)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	def, err := cfg.Definition()
	if err != nil {
		return err
	}
	domain, err := cfg.Domain()
	if err != nil {
		return err
	}
	recipients, err := cfg.ParsedRecipients()
	if err != nil {
		return err
	}

	signer, err := newDigestSigner(c.Context, keyConfig{
		HexKey:        cfg.SigningKey.Reveal(),
		KMSCiphertext: cfg.KMSCiphertext,
		AWSRegion:     cfg.AWSRegion,
	}, l)
	if err != nil {
		return err
	}

	l.Sugar().Infow("Signing vouchers",
		"kind", kind,
		"domain", domain.Name,
		"chain", config.ChainNameFor(cfg.ChainID),
		"chainId", domain.ChainID,
		"verifyingContract", domain.VerifyingContract.Hex(),
		"signer", signer.Address().Hex(),
		"recipients", len(recipients),
	)

	bs := batchSigner.NewBatchSigner(signer, cfg.BatchSignerConfig(), l)
	result, signErr := bs.SignBatch(domain, def.Schema, payloadTemplate(c, kind, time.Now()), recipients)

	if signErr != nil {
		return fmt.Errorf("failed to sign %s vouchers, nothing written: %w", kind, signErr)
	}

	if cfg.Output != "" {
		if err := file.WriteRecords(cfg.Output, result.Records, cfg.Indent); err != nil {
			return err
		}
		l.Sugar().Infow("All records signed and saved", "path", cfg.Output, "records", len(result.Records))
	}

	if cfg.Store != "" {
		if err := archiveBatch(cfg, kind, bs, domain, def, result, l); err != nil {
			return err
		}
	}

	if len(result.Failures) > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d recipients could not be signed", len(result.Failures), len(recipients)), 2)
	}
	return nil
}

func archiveBatch(
	cfg *config.VoucherSignerConfig,
	kind voucher.Kind,
	bs *batchSigner.BatchSigner,
	domain eip712.Domain,
	def *voucher.Definition,
	result *batchSigner.Result,
	l *zap.Logger,
) error {
	batch, err := batchSigner.NewRecordBatch(string(kind), bs.Signer(), domain, def.Schema, result)
	if err != nil {
		return err
	}

	store, err := newStore(storeConfig{Type: cfg.Store, DataPath: cfg.DataPath, RedisAddress: cfg.RedisAddress}, l)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Store, err)
	}
	defer func() { _ = store.Close() }()

	if err := store.SaveBatch(batch); err != nil {
		return fmt.Errorf("failed to archive batch: %w", err)
	}
	l.Sugar().Infow("Archived batch",
		"store", cfg.Store,
		"batchId", batch.ID.String(),
		"merkleRoot", batch.MerkleRoot.Hex(),
		"records", len(batch.Records),
	)
	return nil
}

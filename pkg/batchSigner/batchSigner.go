package batchSigner

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/digestSigner"
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/eip712"
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/merkle"
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type FailurePolicy string

const (
	// PolicyFailFast stops at the first failing recipient in recipient order.
	PolicyFailFast FailurePolicy = "fail-fast"

	// PolicySkipFailed reports failing recipients and signs the rest.
	PolicySkipFailed FailurePolicy = "skip-failed"
)

type Config struct {
	// Workers is the number of recipients signed concurrently. Values below
	// two sign sequentially.
	Workers int
	Policy  FailurePolicy
}

func DefaultConfig() *Config {
	return &Config{Workers: 1, Policy: PolicyFailFast}
}

func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	switch c.Policy {
	case "", PolicyFailFast, PolicySkipFailed:
		return nil
	default:
		return fmt.Errorf("unknown failure policy %q", c.Policy)
	}
}

// Result holds signed records in recipient order. Failures is only populated
// under PolicySkipFailed.
type Result struct {
	Records  []*types.SignedRecord
	Failures []*RecipientError
}

// Digests returns the record digests in record order.
func (r *Result) Digests() []common.Hash {
	digests := make([]common.Hash, len(r.Records))
	for i, rec := range r.Records {
		digests[i] = rec.Digest
	}
	return digests
}

type BatchSigner struct {
	signer digestSigner.IDigestSigner
	config *Config
	logger *zap.Logger
}

func NewBatchSigner(signer digestSigner.IDigestSigner, cfg *Config, logger *zap.Logger) *BatchSigner {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &BatchSigner{
		signer: signer,
		config: cfg,
		logger: logger,
	}
}

// Signer returns the address every record of this signer recovers to.
func (bs *BatchSigner) Signer() common.Address {
	return bs.signer.Address()
}

type outcome struct {
	record *types.SignedRecord
	err    error
}

// SignBatch signs one record per recipient. Errors that concern the whole
// batch (a template that does not fit the schema) are returned before any
// signing happens.
func (bs *BatchSigner) SignBatch(
	domain eip712.Domain,
	schema *eip712.TypeSchema,
	template *types.PayloadTemplate,
	recipients []types.Recipient,
) (*Result, error) {
	if err := template.CheckSchema(schema); err != nil {
		return nil, fmt.Errorf("payload template does not match %s: %w", schema.PrimaryType(), err)
	}

	separator := eip712.DomainSeparator(domain)
	failFast := bs.config.Policy != PolicySkipFailed
	outcomes := make([]outcome, len(recipients))

	start := time.Now()
	if bs.config.Workers > 1 && len(recipients) > 1 {
		var firstFailure atomic.Int64
		firstFailure.Store(int64(len(recipients)))

		g := new(errgroup.Group)
		g.SetLimit(bs.config.Workers)
		for i := range recipients {
			g.Go(func() error {
				if failFast && int64(i) > firstFailure.Load() {
					return nil
				}
				rec, err := bs.signRecipient(separator, domain, schema, template, recipients[i])
				outcomes[i] = outcome{record: rec, err: err}
				if err != nil {
					for {
						current := firstFailure.Load()
						if int64(i) >= current || firstFailure.CompareAndSwap(current, int64(i)) {
							break
						}
					}
				}
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := range recipients {
			rec, err := bs.signRecipient(separator, domain, schema, template, recipients[i])
			outcomes[i] = outcome{record: rec, err: err}
			if err != nil && failFast {
				break
			}
		}
	}

	result := &Result{Records: make([]*types.SignedRecord, 0, len(recipients))}
	for i, o := range outcomes {
		if o.err != nil {
			rerr := &RecipientError{Index: i, Recipient: recipients[i], Err: o.err}
			bs.logger.Sugar().Warnw("Failed to sign record",
				"index", i,
				"recipient", recipients[i].Name,
				"address", recipients[i].Address.Hex(),
				"error", o.err,
			)
			if failFast {
				return result, &PartialBatchError{Signed: len(result.Records), Total: len(recipients), Cause: rerr}
			}
			result.Failures = append(result.Failures, rerr)
			continue
		}
		result.Records = append(result.Records, o.record)
	}

	bs.logger.Sugar().Infow("Signed batch",
		"primaryType", schema.PrimaryType(),
		"signer", bs.signer.Address().Hex(),
		"records", len(result.Records),
		"failures", len(result.Failures),
		"workers", bs.config.Workers,
		"duration", time.Since(start).String(),
	)
	return result, nil
}

func (bs *BatchSigner) signRecipient(
	separator common.Hash,
	domain eip712.Domain,
	schema *eip712.TypeSchema,
	template *types.PayloadTemplate,
	recipient types.Recipient,
) (*types.SignedRecord, error) {
	msg, err := template.Build(recipient)
	if err != nil {
		return nil, err
	}
	return bs.sign(separator, domain, schema, msg, recipient.Name)
}

func (bs *BatchSigner) sign(separator common.Hash, domain eip712.Domain, schema *eip712.TypeSchema, msg eip712.Message, name string) (*types.SignedRecord, error) {
	structHash, err := schema.HashStruct(msg)
	if err != nil {
		return nil, err
	}
	digest := eip712.TypedDataHash(separator, structHash)

	sig, err := bs.signer.SignDigest(digest)
	if err != nil {
		return nil, err
	}
	bs.logger.Sugar().Debugw("Signed record", "name", name, "digest", digest.Hex())
	return types.NewSignedRecord(schema, msg, domain, digest, sig, name), nil
}

// NewRecordBatch wraps a result into an archivable batch with a Merkle
// commitment over the record digests.
func NewRecordBatch(kind string, signer common.Address, domain eip712.Domain, schema *eip712.TypeSchema, result *Result) (*types.RecordBatch, error) {
	batch := &types.RecordBatch{
		ID:        uuid.New(),
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
		Signer:    signer,
		Domain:    domain,
		Schema:    schema,
		Records:   result.Records,
	}
	if len(result.Records) > 0 {
		root, err := merkle.Root(result.Digests())
		if err != nil {
			return nil, fmt.Errorf("failed to build batch commitment: %w", err)
		}
		batch.MerkleRoot = root
	}
	return batch, nil
}

package voucher

import (
	"fmt"

	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/digestSigner"
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/eip712"
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/types"
	"github.com/ethereum/go-ethereum/common"
)

// VerifyRecord recomputes the digest of rec under d and returns the address
// that signed it.
func VerifyRecord(d *Definition, rec *types.SignedRecord) (common.Address, common.Hash, error) {
	if rec.Domain.Name != d.DomainName || rec.Domain.Version != d.DomainVersion {
		return common.Address{}, common.Hash{}, fmt.Errorf("record domain %q/%q does not belong to %s vouchers",
			rec.Domain.Name, rec.Domain.Version, d.Kind)
	}
	digest, err := eip712.Digest(rec.Domain, d.Schema, rec.Message)
	if err != nil {
		return common.Address{}, common.Hash{}, err
	}
	signer, err := digestSigner.RecoverAddress(digest, rec.Signature)
	if err != nil {
		return common.Address{}, common.Hash{}, err
	}
	return signer, digest, nil
}

// VerificationError reports the first record that failed verification.
type VerificationError struct {
	Index int
	Name  string
	Err   error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("record %d (%s): %v", e.Index, e.Name, e.Err)
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}

// VerifyRecords checks that every record was signed by expected and shares
// one domain. It returns the record digests in order.
func VerifyRecords(d *Definition, records []*types.SignedRecord, expected common.Address) ([]common.Hash, error) {
	digests := make([]common.Hash, len(records))
	for i, rec := range records {
		if i > 0 && rec.Domain != records[0].Domain {
			return nil, &VerificationError{Index: i, Name: rec.Name, Err: fmt.Errorf("domain differs from the first record")}
		}
		signer, digest, err := VerifyRecord(d, rec)
		if err != nil {
			return nil, &VerificationError{Index: i, Name: rec.Name, Err: err}
		}
		if signer != expected {
			return nil, &VerificationError{Index: i, Name: rec.Name, Err: fmt.Errorf("signed by %s, expected %s", signer.Hex(), expected.Hex())}
		}
		digests[i] = digest
	}
	return digests, nil
}

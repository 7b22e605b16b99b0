package batchSigner

import (
	"fmt"

	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/types"
)

// RecipientError is a failure to build, digest or sign one recipient's record.
type RecipientError struct {
	Index     int
	Recipient types.Recipient
	Err       error
}

func (e *RecipientError) Error() string {
	return fmt.Sprintf("recipient %d %q (%s): %v", e.Index, e.Recipient.Name, e.Recipient.Address.Hex(), e.Err)
}

func (e *RecipientError) Unwrap() error {
	return e.Err
}

// PartialBatchError is returned under FailFast when a recipient fails. The
// accompanying result holds the records signed before it.
type PartialBatchError struct {
	Signed int
	Total  int
	Cause  *RecipientError
}

func (e *PartialBatchError) Error() string {
	return fmt.Sprintf("batch stopped after %d of %d records: %v", e.Signed, e.Total, e.Cause)
}

func (e *PartialBatchError) Unwrap() error {
	return e.Cause
}

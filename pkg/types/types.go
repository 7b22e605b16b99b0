package types

import (
	"fmt"
	"time"

	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/eip712"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// Record keys written next to the message fields of a SignedRecord. A schema
// may not declare fields with these names.
const (
	RecordKeyDomain    = "domain"
	RecordKeySignature = "signature"
	RecordKeyName      = "name"
)

var reservedRecordKeys = map[string]struct{}{
	RecordKeyDomain:    {},
	RecordKeySignature: {},
	RecordKeyName:      {},
}

// IsReservedRecordKey reports whether key collides with a record envelope key.
func IsReservedRecordKey(key string) bool {
	_, ok := reservedRecordKeys[key]
	return ok
}

// Recipient is one entry of the closed recipient list.
type Recipient struct {
	Name    string
	Address common.Address
}

// NewRecipient parses address strictly; see eip712.ParseAddress.
func NewRecipient(name, address string) (Recipient, error) {
	addr, err := eip712.ParseAddress(address)
	if err != nil {
		return Recipient{}, fmt.Errorf("recipient %q: %w", name, err)
	}
	return Recipient{Name: name, Address: addr}, nil
}

func (r Recipient) String() string {
	return fmt.Sprintf("%s(%s)", r.Name, r.Address.Hex())
}

// PayloadTemplate holds the message fields shared by every recipient of a
// batch and the name of the field that receives the recipient's address.
type PayloadTemplate struct {
	RecipientField string
	Fields         eip712.Message
}

// Build returns a new message for recipient. The template is not modified.
func (t *PayloadTemplate) Build(recipient Recipient) (eip712.Message, error) {
	if t.RecipientField == "" {
		return nil, fmt.Errorf("payload template has no recipient field")
	}
	if _, ok := t.Fields[t.RecipientField]; ok {
		return nil, fmt.Errorf("payload template already sets recipient field %q", t.RecipientField)
	}
	msg := make(eip712.Message, len(t.Fields)+1)
	for k, v := range t.Fields {
		msg[k] = v
	}
	msg[t.RecipientField] = recipient.Address
	return msg, nil
}

// CheckSchema verifies that the template and schema fit together: the
// recipient field is an address, every schema field is covered, and no field
// uses a reserved record key.
func (t *PayloadTemplate) CheckSchema(schema *eip712.TypeSchema) error {
	if err := CheckRecordSchema(schema); err != nil {
		return err
	}
	typ, ok := schema.FieldType(t.RecipientField)
	if !ok {
		return &eip712.FieldMismatchError{
			StructType: schema.PrimaryType(),
			Missing:    []string{t.RecipientField},
		}
	}
	if typ != "address" {
		return &eip712.FieldMismatchError{
			StructType: schema.PrimaryType(),
			Field:      t.RecipientField,
			Reason:     fmt.Sprintf("recipient field must be an address, schema declares %s", typ),
		}
	}
	probe, err := t.Build(Recipient{})
	if err != nil {
		return err
	}
	return schema.CheckFields(probe)
}

// CheckRecordSchema rejects schemas whose primary type declares a reserved
// record key.
func CheckRecordSchema(schema *eip712.TypeSchema) error {
	for _, name := range schema.FieldNames() {
		if IsReservedRecordKey(name) {
			return &eip712.FieldMismatchError{
				StructType: schema.PrimaryType(),
				Field:      name,
				Reason:     "field name is a reserved record key",
			}
		}
	}
	return nil
}

// RecordBatch is the archived form of one signing run.
type RecordBatch struct {
	ID         uuid.UUID          `json:"id"`
	Kind       string             `json:"kind"`
	CreatedAt  time.Time          `json:"createdAt"`
	Signer     common.Address     `json:"signer"`
	Domain     eip712.Domain      `json:"domain"`
	Schema     *eip712.TypeSchema `json:"schema"`
	MerkleRoot common.Hash        `json:"merkleRoot"`
	Records    []*SignedRecord    `json:"records"`
}

// BatchSummary is the listing view of a stored batch.
type BatchSummary struct {
	ID          uuid.UUID   `json:"id"`
	Kind        string      `json:"kind"`
	CreatedAt   time.Time   `json:"createdAt"`
	RecordCount int         `json:"recordCount"`
	MerkleRoot  common.Hash `json:"merkleRoot"`
}

func (b *RecordBatch) Summary() *BatchSummary {
	return &BatchSummary{
		ID:          b.ID,
		Kind:        b.Kind,
		CreatedAt:   b.CreatedAt,
		RecordCount: len(b.Records),
		MerkleRoot:  b.MerkleRoot,
	}
}

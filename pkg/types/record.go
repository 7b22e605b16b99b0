package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/eip712"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// SignedRecord is one signed voucher. On the wire it is a single flat JSON
// object: the message fields in schema order followed by domain, signature
// and name.
type SignedRecord struct {
	// Fields is the message field order used when encoding.
	Fields    []string
	Message   eip712.Message
	Domain    eip712.Domain
	Signature hexutil.Bytes
	Name      string

	// Digest is the signed EIP-712 hash. It is not part of the wire shape and
	// is zero on decoded records.
	Digest common.Hash
}

// NewSignedRecord builds a record whose fields follow schema order.
func NewSignedRecord(schema *eip712.TypeSchema, msg eip712.Message, domain eip712.Domain, digest common.Hash, signature []byte, name string) *SignedRecord {
	return &SignedRecord{
		Fields:    schema.FieldNames(),
		Message:   msg,
		Domain:    domain,
		Signature: append(hexutil.Bytes(nil), signature...),
		Name:      name,
		Digest:    digest,
	}
}

// Address returns the address stored under field, if it is one.
func (r *SignedRecord) Address(field string) (common.Address, bool) {
	switch v := r.Message[field].(type) {
	case common.Address:
		return v, true
	case string:
		addr, err := eip712.ParseAddress(v)
		if err != nil {
			return common.Address{}, false
		}
		return addr, true
	default:
		return common.Address{}, false
	}
}

func (r *SignedRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	writeEntry := func(key string, value interface{}) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		v, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to encode record field %q: %w", key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
		return nil
	}

	if len(r.Fields) != len(r.Message) {
		return nil, fmt.Errorf("record lists %d fields but carries %d message values", len(r.Fields), len(r.Message))
	}
	for _, field := range r.Fields {
		if IsReservedRecordKey(field) {
			return nil, fmt.Errorf("message field %q collides with a record key", field)
		}
		value, ok := r.Message[field]
		if !ok {
			return nil, fmt.Errorf("record is missing message field %q", field)
		}
		if err := writeEntry(field, wireValue(value)); err != nil {
			return nil, err
		}
	}
	if err := writeEntry(RecordKeyDomain, r.Domain); err != nil {
		return nil, err
	}
	if err := writeEntry(RecordKeySignature, r.Signature); err != nil {
		return nil, err
	}
	if err := writeEntry(RecordKeyName, r.Name); err != nil {
		return nil, err
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON keeps message fields in document order. Numbers decode as
// json.Number and addresses as strings, both of which the encoder accepts.
func (r *SignedRecord) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to decode record: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("failed to decode record: expected an object")
	}

	out := SignedRecord{Message: eip712.Message{}}
	var sawDomain, sawSignature bool
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("failed to decode record: %w", err)
		}
		key := tok.(string)

		switch key {
		case RecordKeyDomain:
			if err := dec.Decode(&out.Domain); err != nil {
				return fmt.Errorf("failed to decode record domain: %w", err)
			}
			sawDomain = true
		case RecordKeySignature:
			if err := dec.Decode(&out.Signature); err != nil {
				return fmt.Errorf("failed to decode record signature: %w", err)
			}
			sawSignature = true
		case RecordKeyName:
			if err := dec.Decode(&out.Name); err != nil {
				return fmt.Errorf("failed to decode record name: %w", err)
			}
		default:
			if _, dup := out.Message[key]; dup {
				return fmt.Errorf("failed to decode record: duplicate field %q", key)
			}
			var value interface{}
			if err := dec.Decode(&value); err != nil {
				return fmt.Errorf("failed to decode record field %q: %w", key, err)
			}
			out.Fields = append(out.Fields, key)
			out.Message[key] = messageValue(value)
		}
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("failed to decode record: %w", err)
	}
	if !sawDomain {
		return fmt.Errorf("failed to decode record: missing %q", RecordKeyDomain)
	}
	if !sawSignature {
		return fmt.Errorf("failed to decode record: missing %q", RecordKeySignature)
	}

	*r = out
	return nil
}

// wireValue converts message values to their JSON form: addresses are
// checksummed strings, byte slices are 0x-hex and integers are plain JSON
// numbers.
func wireValue(value interface{}) interface{} {
	switch v := value.(type) {
	case common.Address:
		return v.Hex()
	case *common.Address:
		return v.Hex()
	case *big.Int:
		return json.Number(v.String())
	case []byte:
		return hexutil.Bytes(v)
	case eip712.Message:
		return wireMap(v)
	case map[string]interface{}:
		return wireMap(v)
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = wireValue(item)
		}
		return out
	default:
		return v
	}
}

func wireMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = wireValue(v)
	}
	return out
}

// messageValue turns decoded nested objects back into eip712.Message.
func messageValue(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		out := make(eip712.Message, len(v))
		for k, item := range v {
			out[k] = messageValue(item)
		}
		return out
	case []interface{}:
		for i, item := range v {
			v[i] = messageValue(item)
		}
		return v
	default:
		return v
	}
}

package eip712

import (
	"encoding/binary"
	"fmt"
	"reflect"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// digestPrefix is the EIP-191 version byte pair for structured data.
var digestPrefix = []byte{0x19, 0x01}

// EncodeData returns typeHash followed by the 32-byte encoding of every
// primary type field, in schema order. The message must carry exactly the
// declared fields.
func (s *TypeSchema) EncodeData(msg Message) ([]byte, error) {
	return s.encodeData(s.primaryType, msg)
}

// HashStruct returns keccak256(EncodeData(msg)).
func (s *TypeSchema) HashStruct(msg Message) (common.Hash, error) {
	data, err := s.EncodeData(msg)
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(data), nil
}

// CheckFields reports a FieldMismatchError when msg is missing declared
// fields or carries undeclared ones.
func (s *TypeSchema) CheckFields(msg Message) error {
	return s.checkFields(s.primaryType, msg)
}

// DomainSeparator hashes domain as an EIP712Domain struct.
func DomainSeparator(domain Domain) common.Hash {
	nameHash := crypto.Keccak256([]byte(domain.Name))
	versionHash := crypto.Keccak256([]byte(domain.Version))
	chainID := make([]byte, 32)
	binary.BigEndian.PutUint64(chainID[24:], domain.ChainID)

	typeHash := DomainSchema.TypeHash()
	encoded := make([]byte, 0, 5*32)
	encoded = append(encoded, typeHash[:]...)
	encoded = append(encoded, nameHash...)
	encoded = append(encoded, versionHash...)
	encoded = append(encoded, chainID...)
	encoded = append(encoded, common.LeftPadBytes(domain.VerifyingContract.Bytes(), 32)...)
	return crypto.Keccak256Hash(encoded)
}

// TypedDataHash combines a domain separator and a struct hash into the final
// digest: keccak256(0x19 0x01 || domainSeparator || structHash).
func TypedDataHash(domainSeparator, structHash common.Hash) common.Hash {
	data := make([]byte, 0, len(digestPrefix)+2*common.HashLength)
	data = append(data, digestPrefix...)
	data = append(data, domainSeparator[:]...)
	data = append(data, structHash[:]...)
	return crypto.Keccak256Hash(data)
}

// Digest returns the hash that is signed for msg under domain.
func Digest(domain Domain, schema *TypeSchema, msg Message) (common.Hash, error) {
	structHash, err := schema.HashStruct(msg)
	if err != nil {
		return common.Hash{}, err
	}
	return TypedDataHash(DomainSeparator(domain), structHash), nil
}

func (s *TypeSchema) checkFields(typeName string, msg map[string]interface{}) error {
	fields := s.types[typeName]
	declared := make(map[string]struct{}, len(fields))

	var missing []string
	for _, f := range fields {
		declared[f.Name] = struct{}{}
		if _, ok := msg[f.Name]; !ok {
			missing = append(missing, f.Name)
		}
	}
	var extra []string
	for name := range msg {
		if _, ok := declared[name]; !ok {
			extra = append(extra, name)
		}
	}
	if len(missing) == 0 && len(extra) == 0 {
		return nil
	}
	sort.Strings(extra)
	return &FieldMismatchError{StructType: typeName, Missing: missing, Extra: extra}
}

func (s *TypeSchema) encodeData(typeName string, msg map[string]interface{}) ([]byte, error) {
	if err := s.checkFields(typeName, msg); err != nil {
		return nil, err
	}

	fields := s.types[typeName]
	typeHash := s.typeHashOf(typeName)

	out := make([]byte, 0, 32*(len(fields)+1))
	out = append(out, typeHash[:]...)
	for _, f := range fields {
		enc, err := s.encodeValue(typeName, f.Name, f.Type, msg[f.Name])
		if err != nil {
			return nil, err
		}
		out = append(out, enc...)
	}
	return out, nil
}

// encodeValue returns the 32-byte word for one field value.
func (s *TypeSchema) encodeValue(structType, field, typ string, value interface{}) ([]byte, error) {
	mismatch := func(format string, args ...interface{}) error {
		return &FieldMismatchError{StructType: structType, Field: field, Reason: fmt.Sprintf(format, args...)}
	}

	if value == nil {
		return nil, mismatch("nil value for %s", typ)
	}

	if elem, length, ok := parseArrayType(typ); ok {
		items, ok := toSlice(value)
		if !ok {
			return nil, mismatch("expected a list for %s, got %T", typ, value)
		}
		if length >= 0 && len(items) != length {
			return nil, mismatch("expected %d items for %s, got %d", length, typ, len(items))
		}
		buf := make([]byte, 0, 32*len(items))
		for i, item := range items {
			enc, err := s.encodeValue(structType, fmt.Sprintf("%s[%d]", field, i), elem, item)
			if err != nil {
				return nil, err
			}
			buf = append(buf, enc...)
		}
		return crypto.Keccak256(buf), nil
	}

	if _, ok := s.types[typ]; ok {
		nested, ok := toMessage(value)
		if !ok {
			return nil, mismatch("expected a %s struct, got %T", typ, value)
		}
		data, err := s.encodeData(typ, nested)
		if err != nil {
			return nil, err
		}
		return crypto.Keccak256(data), nil
	}

	if !isAtomicType(typ) {
		return nil, &UnsupportedFieldTypeError{StructType: structType, Field: field, Type: typ}
	}
	enc, err := encodeAtomic(typ, value)
	if err != nil {
		return nil, mismatch("%v", err)
	}
	return enc, nil
}

func toSlice(value interface{}) ([]interface{}, bool) {
	if items, ok := value.([]interface{}); ok {
		return items, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]interface{}, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

func toMessage(value interface{}) (map[string]interface{}, bool) {
	switch v := value.(type) {
	case Message:
		return v, true
	case map[string]interface{}:
		return v, true
	default:
		return nil, false
	}
}

package eip712

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Field is one (name, type) pair of a struct type.
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Types maps struct names to their ordered field lists.
type Types map[string][]Field

// Message holds the concrete field values of one struct instance.
type Message map[string]interface{}

// TypeSchema is an immutable, validated set of struct types with a primary
// type. Field order is taken from the declaration and never from a message.
type TypeSchema struct {
	primaryType string
	types       Types
}

// NewTypeSchema validates types and returns a schema rooted at primaryType.
// The input is copied; later changes to it do not affect the schema.
func NewTypeSchema(primaryType string, types Types) (*TypeSchema, error) {
	if _, ok := types[primaryType]; !ok {
		return nil, fmt.Errorf("primary type %q is not declared", primaryType)
	}

	copied := make(Types, len(types))
	for name, fields := range types {
		if !isValidTypeName(name) {
			return nil, fmt.Errorf("invalid struct type name %q", name)
		}
		if isAtomicType(name) {
			return nil, fmt.Errorf("struct type %q shadows an atomic type", name)
		}
		if len(fields) == 0 {
			return nil, fmt.Errorf("struct type %q declares no fields", name)
		}
		copied[name] = append([]Field(nil), fields...)
	}

	s := &TypeSchema{primaryType: primaryType, types: copied}
	for name, fields := range copied {
		seen := make(map[string]struct{}, len(fields))
		for _, f := range fields {
			if f.Name == "" {
				return nil, fmt.Errorf("struct type %q has a field with no name", name)
			}
			if _, dup := seen[f.Name]; dup {
				return nil, fmt.Errorf("struct type %q declares field %q twice", name, f.Name)
			}
			seen[f.Name] = struct{}{}
			if !s.isSupportedType(f.Type) {
				return nil, &UnsupportedFieldTypeError{StructType: name, Field: f.Name, Type: f.Type}
			}
		}
	}
	return s, nil
}

// MustTypeSchema is NewTypeSchema for package-level schema declarations.
func MustTypeSchema(primaryType string, types Types) *TypeSchema {
	s, err := NewTypeSchema(primaryType, types)
	if err != nil {
		panic(err)
	}
	return s
}

// PrimaryType returns the name of the struct being signed.
func (s *TypeSchema) PrimaryType() string {
	return s.primaryType
}

// Fields returns a copy of the primary type's fields in declaration order.
func (s *TypeSchema) Fields() []Field {
	return append([]Field(nil), s.types[s.primaryType]...)
}

// FieldNames returns the primary type's field names in declaration order.
func (s *TypeSchema) FieldNames() []string {
	fields := s.types[s.primaryType]
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

// FieldType returns the declared type of a primary type field.
func (s *TypeSchema) FieldType(name string) (string, bool) {
	for _, f := range s.types[s.primaryType] {
		if f.Name == name {
			return f.Type, true
		}
	}
	return "", false
}

// EncodeType returns the canonical type string of the primary type, e.g.
// "Mail(Person from,Person to,string contents)Person(string name,address wallet)".
func (s *TypeSchema) EncodeType() string {
	return s.encodeTypeOf(s.primaryType)
}

// TypeHash returns keccak256 of EncodeType.
func (s *TypeSchema) TypeHash() common.Hash {
	return s.typeHashOf(s.primaryType)
}

func (s *TypeSchema) typeHashOf(name string) common.Hash {
	return crypto.Keccak256Hash([]byte(s.encodeTypeOf(name)))
}

func (s *TypeSchema) encodeTypeOf(name string) string {
	deps := make(map[string]struct{})
	s.collectDependencies(name, deps)
	delete(deps, name)

	sorted := make([]string, 0, len(deps))
	for dep := range deps {
		sorted = append(sorted, dep)
	}
	sort.Strings(sorted)

	var b strings.Builder
	for _, typeName := range append([]string{name}, sorted...) {
		b.WriteString(typeName)
		b.WriteByte('(')
		for i, f := range s.types[typeName] {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(f.Type)
			b.WriteByte(' ')
			b.WriteString(f.Name)
		}
		b.WriteByte(')')
	}
	return b.String()
}

func (s *TypeSchema) collectDependencies(name string, found map[string]struct{}) {
	if _, seen := found[name]; seen {
		return
	}
	fields, ok := s.types[name]
	if !ok {
		return
	}
	found[name] = struct{}{}
	for _, f := range fields {
		s.collectDependencies(baseType(f.Type), found)
	}
}

func (s *TypeSchema) isSupportedType(t string) bool {
	if elem, _, ok := parseArrayType(t); ok {
		return s.isSupportedType(elem)
	}
	if _, ok := s.types[t]; ok {
		return true
	}
	return isAtomicType(t)
}

type typeSchemaJSON struct {
	PrimaryType string `json:"primaryType"`
	Types       Types  `json:"types"`
}

func (s *TypeSchema) MarshalJSON() ([]byte, error) {
	return json.Marshal(typeSchemaJSON{PrimaryType: s.primaryType, Types: s.types})
}

// UnmarshalJSON runs the same validation as NewTypeSchema.
func (s *TypeSchema) UnmarshalJSON(data []byte) error {
	var sj typeSchemaJSON
	if err := json.Unmarshal(data, &sj); err != nil {
		return fmt.Errorf("failed to decode type schema: %w", err)
	}
	parsed, err := NewTypeSchema(sj.PrimaryType, sj.Types)
	if err != nil {
		return err
	}
	*s = *parsed
	return nil
}

// baseType strips every array suffix: "Person[][2]" -> "Person".
func baseType(t string) string {
	if i := strings.IndexByte(t, '['); i >= 0 {
		return t[:i]
	}
	return t
}

// parseArrayType splits the outermost array dimension off t. length is -1
// for dynamic arrays.
func parseArrayType(t string) (elem string, length int, ok bool) {
	if !strings.HasSuffix(t, "]") {
		return "", 0, false
	}
	open := strings.LastIndexByte(t, '[')
	if open <= 0 {
		return "", 0, false
	}
	elem = t[:open]
	inner := t[open+1 : len(t)-1]
	if inner == "" {
		return elem, -1, true
	}
	n, err := strconv.Atoi(inner)
	if err != nil || n <= 0 || strconv.Itoa(n) != inner {
		return "", 0, false
	}
	return elem, n, true
}

func isAtomicType(t string) bool {
	switch t {
	case "address", "bool", "string", "bytes":
		return true
	}
	if _, ok := parseFixedBytesType(t); ok {
		return true
	}
	_, _, ok := parseIntegerType(t)
	return ok
}

// parseIntegerType accepts uint8..uint256 and int8..int256 in steps of 8.
func parseIntegerType(t string) (bits int, signed bool, ok bool) {
	var digits string
	switch {
	case strings.HasPrefix(t, "uint"):
		digits = t[len("uint"):]
	case strings.HasPrefix(t, "int"):
		digits, signed = t[len("int"):], true
	default:
		return 0, false, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || strconv.Itoa(n) != digits || n < 8 || n > 256 || n%8 != 0 {
		return 0, false, false
	}
	return n, signed, true
}

// parseFixedBytesType accepts bytes1..bytes32.
func parseFixedBytesType(t string) (int, bool) {
	if !strings.HasPrefix(t, "bytes") || t == "bytes" {
		return 0, false
	}
	digits := t[len("bytes"):]
	n, err := strconv.Atoi(digits)
	if err != nil || strconv.Itoa(n) != digits || n < 1 || n > 32 {
		return 0, false
	}
	return n, true
}

func isValidTypeName(name string) bool {
	if name == "" {
		return false
	}
	return !strings.ContainsAny(name, "()[], ")
}

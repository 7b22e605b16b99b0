package eip712

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	gethmath "github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
)

func encodeAtomic(typ string, value interface{}) ([]byte, error) {
	switch typ {
	case "address":
		addr, err := toAddress(value)
		if err != nil {
			return nil, err
		}
		return common.LeftPadBytes(addr.Bytes(), 32), nil
	case "bool":
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("expected bool, got %T", value)
		}
		word := make([]byte, 32)
		if b {
			word[31] = 1
		}
		return word, nil
	case "string":
		str, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", value)
		}
		return crypto.Keccak256([]byte(str)), nil
	case "bytes":
		b, err := toBytes(value)
		if err != nil {
			return nil, err
		}
		return crypto.Keccak256(b), nil
	}

	if n, ok := parseFixedBytesType(typ); ok {
		b, err := toBytes(value)
		if err != nil {
			return nil, err
		}
		if len(b) != n {
			return nil, fmt.Errorf("expected %d bytes for %s, got %d", n, typ, len(b))
		}
		return common.RightPadBytes(b, 32), nil
	}

	if bits, signed, ok := parseIntegerType(typ); ok {
		n, err := ToBigInt(value)
		if err != nil {
			return nil, err
		}
		return encodeInteger(n, bits, signed, typ)
	}

	return nil, fmt.Errorf("no encoder for %s", typ)
}

func encodeInteger(n *big.Int, bits int, signed bool, typ string) ([]byte, error) {
	if !signed {
		if n.Sign() < 0 {
			return nil, fmt.Errorf("negative value %s for %s", n, typ)
		}
		if n.BitLen() > bits {
			return nil, fmt.Errorf("value %s overflows %s", n, typ)
		}
		return common.LeftPadBytes(n.Bytes(), 32), nil
	}

	limit := new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
	lowest := new(big.Int).Neg(limit)
	if n.Cmp(lowest) < 0 || n.Cmp(limit) >= 0 {
		return nil, fmt.Errorf("value %s overflows %s", n, typ)
	}
	return gethmath.U256Bytes(new(big.Int).Set(n)), nil
}

func toAddress(value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		if v == nil {
			return common.Address{}, fmt.Errorf("nil address")
		}
		return *v, nil
	case string:
		return ParseAddress(v)
	case []byte:
		if len(v) != common.AddressLength {
			return common.Address{}, fmt.Errorf("expected %d address bytes, got %d", common.AddressLength, len(v))
		}
		return common.BytesToAddress(v), nil
	default:
		return common.Address{}, fmt.Errorf("expected address, got %T", value)
	}
}

func toBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case hexutil.Bytes:
		return v, nil
	case common.Hash:
		return v.Bytes(), nil
	case string:
		b, err := hexutil.Decode(v)
		if err != nil {
			return nil, fmt.Errorf("invalid hex bytes %q: %w", v, err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("expected bytes, got %T", value)
	}
}

// ToBigInt converts the integer representations accepted in messages to a
// new big.Int. Strings may be decimal or 0x-prefixed hex.
func ToBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		if v == nil {
			return nil, fmt.Errorf("nil integer")
		}
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case *gethmath.HexOrDecimal256:
		if v == nil {
			return nil, fmt.Errorf("nil integer")
		}
		return new(big.Int).Set((*big.Int)(v)), nil
	case int:
		return big.NewInt(int64(v)), nil
	case int8:
		return big.NewInt(int64(v)), nil
	case int16:
		return big.NewInt(int64(v)), nil
	case int32:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	case uint:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || math.IsNaN(v) {
			return nil, fmt.Errorf("non-integral number %v", v)
		}
		n, _ := new(big.Float).SetFloat64(v).Int(nil)
		return n, nil
	case json.Number:
		return parseIntegerString(v.String())
	case string:
		return parseIntegerString(v)
	default:
		return nil, fmt.Errorf("expected integer, got %T", value)
	}
}

func parseIntegerString(s string) (*big.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("empty integer")
	}
	n, ok := gethmath.ParseBig256(s)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	return n, nil
}

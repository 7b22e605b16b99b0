package eip712

import (
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tripVoucherTypes = Types{
	"TripVoucher": {
		{Name: "driver", Type: "address"},
		{Name: "tripId", Type: "uint256"},
		{Name: "usdCents", Type: "uint256"},
		{Name: "expiry", Type: "uint256"},
	},
}

var mailTypes = Types{
	"Person": {
		{Name: "name", Type: "string"},
		{Name: "wallet", Type: "address"},
	},
	"Mail": {
		{Name: "from", Type: "Person"},
		{Name: "to", Type: "Person"},
		{Name: "contents", Type: "string"},
	},
}

func mailDomain() Domain {
	return NewDomainWithAddress("Ether Mail", "1", 1, common.HexToAddress("0xcccccccccccccccccccccccccccccccccccccccc"))
}

func mailMessage() Message {
	return Message{
		"from": Message{
			"name":   "Cow",
			"wallet": common.HexToAddress("0xcd2a3d9f938e13cd947ec05abc7fe734df8dd826"),
		},
		"to": map[string]interface{}{
			"name":   "Bob",
			"wallet": common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"),
		},
		"contents": "Hello, Bob!",
	}
}

func testTripDomain(t *testing.T) Domain {
	t.Helper()
	domain, err := NewDomain("Vouchers", "1", 11155111, "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	require.NoError(t, err)
	return domain
}

func testTripMessage() Message {
	return Message{
		"driver":   common.HexToAddress("0x1111111111111111111111111111111111111111"),
		"tripId":   big.NewInt(1),
		"usdCents": big.NewInt(500),
		"expiry":   big.NewInt(1717000000),
	}
}

func Test_EncodeType_MailReference(t *testing.T) {
	schema, err := NewTypeSchema("Mail", mailTypes)
	require.NoError(t, err)

	assert.Equal(t, "Mail(Person from,Person to,string contents)Person(string name,address wallet)", schema.EncodeType())
	assert.Equal(t,
		crypto.Keccak256Hash([]byte("Mail(Person from,Person to,string contents)Person(string name,address wallet)")),
		schema.TypeHash())
}

func Test_Digest_MailReferenceVector(t *testing.T) {
	schema, err := NewTypeSchema("Mail", mailTypes)
	require.NoError(t, err)

	domain := mailDomain()
	assert.Equal(t, "0xf2cee375fa42b42143804025fc449deafd50cc031ca257e0b194a650a912090f", DomainSeparator(domain).Hex())

	structHash, err := schema.HashStruct(mailMessage())
	require.NoError(t, err)
	assert.Equal(t, "0xc52c0ee5d84264471806290a3f2c4cecfc5490626bf912d01f240d7a274b371e", structHash.Hex())

	digest, err := Digest(domain, schema, mailMessage())
	require.NoError(t, err)
	assert.Equal(t, "0xbe609aee343fb3c4b28e1df9e632fca64fcfaede20f02e86244efddf30957bd2", digest.Hex())
}

func Test_EncodeType_TripVoucher(t *testing.T) {
	schema, err := NewTypeSchema("TripVoucher", tripVoucherTypes)
	require.NoError(t, err)
	assert.Equal(t, "TripVoucher(address driver,uint256 tripId,uint256 usdCents,uint256 expiry)", schema.EncodeType())
}

func Test_Digest_MatchesGethTypedData(t *testing.T) {
	schema, err := NewTypeSchema("TripVoucher", tripVoucherTypes)
	require.NoError(t, err)
	domain := testTripDomain(t)

	digest, err := Digest(domain, schema, testTripMessage())
	require.NoError(t, err)

	typedData := apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"TripVoucher": {
				{Name: "driver", Type: "address"},
				{Name: "tripId", Type: "uint256"},
				{Name: "usdCents", Type: "uint256"},
				{Name: "expiry", Type: "uint256"},
			},
		},
		PrimaryType: "TripVoucher",
		Domain: apitypes.TypedDataDomain{
			Name:              "Vouchers",
			Version:           "1",
			ChainId:           math.NewHexOrDecimal256(11155111),
			VerifyingContract: domain.VerifyingContract.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"driver":   "0x1111111111111111111111111111111111111111",
			"tripId":   "1",
			"usdCents": "500",
			"expiry":   "1717000000",
		},
	}
	gethDigest, _, err := apitypes.TypedDataAndHash(typedData)
	require.NoError(t, err)

	assert.Equal(t, hexutil.Encode(gethDigest), digest.Hex())
}

func Test_DomainSeparator_MatchesDomainSchema(t *testing.T) {
	domain := testTripDomain(t)
	viaSchema, err := DomainSchema.HashStruct(domain.Message())
	require.NoError(t, err)
	assert.Equal(t, viaSchema, DomainSeparator(domain))
	assert.Equal(t, "EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)", DomainSchema.EncodeType())
}

func Test_Digest_Deterministic(t *testing.T) {
	schema, err := NewTypeSchema("TripVoucher", tripVoucherTypes)
	require.NoError(t, err)
	domain := testTripDomain(t)

	first, err := Digest(domain, schema, testTripMessage())
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Digest(domain, schema, testTripMessage())
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func Test_Digest_IndependentOfMessageConstruction(t *testing.T) {
	schema, err := NewTypeSchema("TripVoucher", tripVoucherTypes)
	require.NoError(t, err)
	domain := testTripDomain(t)

	forward := Message{}
	forward["driver"] = "0x1111111111111111111111111111111111111111"
	forward["tripId"] = 1
	forward["usdCents"] = uint64(500)
	forward["expiry"] = "1717000000"

	backward := Message{}
	backward["expiry"] = big.NewInt(1717000000)
	backward["usdCents"] = "0x1f4"
	backward["tripId"] = int64(1)
	backward["driver"] = common.HexToAddress("0x1111111111111111111111111111111111111111")

	d1, err := Digest(domain, schema, forward)
	require.NoError(t, err)
	d2, err := Digest(domain, schema, backward)
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
}

func Test_EncodeType_FollowsSchemaOrder(t *testing.T) {
	reordered, err := NewTypeSchema("TripVoucher", Types{
		"TripVoucher": {
			{Name: "tripId", Type: "uint256"},
			{Name: "driver", Type: "address"},
			{Name: "usdCents", Type: "uint256"},
			{Name: "expiry", Type: "uint256"},
		},
	})
	require.NoError(t, err)
	original, err := NewTypeSchema("TripVoucher", tripVoucherTypes)
	require.NoError(t, err)

	assert.NotEqual(t, original.EncodeType(), reordered.EncodeType())

	domain := testTripDomain(t)
	d1, err := Digest(domain, original, testTripMessage())
	require.NoError(t, err)
	d2, err := Digest(domain, reordered, testTripMessage())
	require.NoError(t, err)
	assert.NotEqual(t, d1, d2)
}

func Test_Digest_TamperSensitivity(t *testing.T) {
	schema, err := NewTypeSchema("TripVoucher", tripVoucherTypes)
	require.NoError(t, err)
	domain := testTripDomain(t)

	base, err := Digest(domain, schema, testTripMessage())
	require.NoError(t, err)

	mutations := map[string]interface{}{
		"driver":   common.HexToAddress("0x2222222222222222222222222222222222222222"),
		"tripId":   big.NewInt(2),
		"usdCents": big.NewInt(501),
		"expiry":   big.NewInt(1717000001),
	}
	for field, value := range mutations {
		t.Run(field, func(t *testing.T) {
			msg := testTripMessage()
			msg[field] = value
			mutated, err := Digest(domain, schema, msg)
			require.NoError(t, err)
			assert.NotEqual(t, base, mutated)
		})
	}

	t.Run("verifyingContract", func(t *testing.T) {
		other := domain
		other.VerifyingContract = common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
		mutated, err := Digest(other, schema, testTripMessage())
		require.NoError(t, err)
		assert.NotEqual(t, base, mutated)
	})

	t.Run("chainId", func(t *testing.T) {
		other := domain
		other.ChainID = 1
		mutated, err := Digest(other, schema, testTripMessage())
		require.NoError(t, err)
		assert.NotEqual(t, base, mutated)
	})
}

func Test_EncodeData_FieldMismatch(t *testing.T) {
	schema, err := NewTypeSchema("TripVoucher", tripVoucherTypes)
	require.NoError(t, err)

	t.Run("missing field", func(t *testing.T) {
		msg := testTripMessage()
		delete(msg, "expiry")
		_, err := schema.HashStruct(msg)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrFieldMismatch))

		var fm *FieldMismatchError
		require.True(t, errors.As(err, &fm))
		assert.Equal(t, []string{"expiry"}, fm.Missing)
		assert.Contains(t, err.Error(), "expiry")
	})

	t.Run("undeclared field", func(t *testing.T) {
		msg := testTripMessage()
		msg["tip"] = big.NewInt(10)
		_, err := schema.HashStruct(msg)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrFieldMismatch))

		var fm *FieldMismatchError
		require.True(t, errors.As(err, &fm))
		assert.Equal(t, []string{"tip"}, fm.Extra)
	})

	t.Run("wrong value type", func(t *testing.T) {
		msg := testTripMessage()
		msg["driver"] = 42
		_, err := schema.HashStruct(msg)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrFieldMismatch))

		var fm *FieldMismatchError
		require.True(t, errors.As(err, &fm))
		assert.Equal(t, "driver", fm.Field)
	})

	t.Run("nested struct missing field", func(t *testing.T) {
		mail, err := NewTypeSchema("Mail", mailTypes)
		require.NoError(t, err)
		msg := mailMessage()
		delete(msg["from"].(Message), "wallet")
		_, err = mail.HashStruct(msg)
		require.Error(t, err)

		var fm *FieldMismatchError
		require.True(t, errors.As(err, &fm))
		assert.Equal(t, "Person", fm.StructType)
		assert.Equal(t, []string{"wallet"}, fm.Missing)
	})
}

func Test_NewTypeSchema_UnsupportedFieldType(t *testing.T) {
	for _, typ := range []string{"uint", "uint7", "uint264", "int0", "bytes0", "bytes33", "float", "Unknown", "uint256[0]", "address[x]"} {
		t.Run(typ, func(t *testing.T) {
			_, err := NewTypeSchema("Voucher", Types{
				"Voucher": {{Name: "value", Type: typ}},
			})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnsupportedFieldType))

			var ut *UnsupportedFieldTypeError
			require.True(t, errors.As(err, &ut))
			assert.Equal(t, "value", ut.Field)
			assert.Equal(t, typ, ut.Type)
		})
	}
}

func Test_NewTypeSchema_Rejects(t *testing.T) {
	cases := map[string]Types{
		"missing primary":  {"Other": {{Name: "a", Type: "uint256"}}},
		"duplicate field":  {"Voucher": {{Name: "a", Type: "uint256"}, {Name: "a", Type: "address"}}},
		"empty field name": {"Voucher": {{Name: "", Type: "uint256"}}},
		"no fields":        {"Voucher": {}},
		"atomic name":      {"Voucher": {{Name: "a", Type: "uint256"}}, "address": {{Name: "a", Type: "uint256"}}},
	}
	for name, types := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewTypeSchema("Voucher", types)
			require.Error(t, err)
		})
	}
}

func Test_NewTypeSchema_CopiesInput(t *testing.T) {
	types := Types{"Voucher": {{Name: "a", Type: "uint256"}}}
	schema, err := NewTypeSchema("Voucher", types)
	require.NoError(t, err)

	types["Voucher"][0].Name = "b"
	assert.Equal(t, []string{"a"}, schema.FieldNames())

	fields := schema.Fields()
	fields[0].Name = "c"
	assert.Equal(t, []string{"a"}, schema.FieldNames())
}

func Test_EncodeInteger_Ranges(t *testing.T) {
	cases := []struct {
		typ     string
		value   interface{}
		want    string
		wantErr bool
	}{
		{typ: "uint8", value: 255, want: "0x00000000000000000000000000000000000000000000000000000000000000ff"},
		{typ: "uint8", value: 256, wantErr: true},
		{typ: "uint256", value: -1, wantErr: true},
		{typ: "int8", value: -128, want: "0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff80"},
		{typ: "int8", value: 128, wantErr: true},
		{typ: "int8", value: -129, wantErr: true},
		{typ: "int256", value: "-1", want: "0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"},
		{typ: "uint256", value: "0x10", want: "0x0000000000000000000000000000000000000000000000000000000000000010"},
		{typ: "uint256", value: 1.5, wantErr: true},
		{typ: "uint256", value: "", wantErr: true},
		{typ: "uint256", value: "abc", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s/%v", tc.typ, tc.value), func(t *testing.T) {
			enc, err := encodeAtomic(tc.typ, tc.value)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, hexutil.Encode(enc))
		})
	}
}

func Test_EncodeAtomic_BytesAndBool(t *testing.T) {
	enc, err := encodeAtomic("bytes4", "0xdeadbeef")
	require.NoError(t, err)
	assert.Equal(t, "0xdeadbeef00000000000000000000000000000000000000000000000000000000", hexutil.Encode(enc))

	_, err = encodeAtomic("bytes4", "0xdead")
	require.Error(t, err)

	enc, err = encodeAtomic("bytes", []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, crypto.Keccak256([]byte("hello")), enc)

	enc, err = encodeAtomic("bool", true)
	require.NoError(t, err)
	assert.Equal(t, byte(1), enc[31])

	_, err = encodeAtomic("bool", "true")
	require.Error(t, err)
}

func Test_EncodeData_Arrays(t *testing.T) {
	schema, err := NewTypeSchema("Batch", Types{
		"Batch": {
			{Name: "ids", Type: "uint256[]"},
			{Name: "pair", Type: "address[2]"},
		},
	})
	require.NoError(t, err)

	msg := Message{
		"ids":  []interface{}{1, 2, 3},
		"pair": []common.Address{common.HexToAddress("0x1111111111111111111111111111111111111111"), common.HexToAddress("0x2222222222222222222222222222222222222222")},
	}
	h1, err := schema.HashStruct(msg)
	require.NoError(t, err)

	msg["ids"] = []*big.Int{big.NewInt(1), big.NewInt(2), big.NewInt(3)}
	h2, err := schema.HashStruct(msg)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	var expectedIDs []byte
	for _, id := range []int64{1, 2, 3} {
		expectedIDs = append(expectedIDs, common.LeftPadBytes(big.NewInt(id).Bytes(), 32)...)
	}
	data, err := schema.EncodeData(msg)
	require.NoError(t, err)
	assert.Equal(t, crypto.Keccak256(expectedIDs), data[32:64])

	msg["pair"] = []common.Address{common.HexToAddress("0x1111111111111111111111111111111111111111")}
	_, err = schema.HashStruct(msg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFieldMismatch))
}

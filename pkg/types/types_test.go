package types

import (
	"encoding/json"
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/eip712"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var payProofSchema = eip712.MustTypeSchema("PayProof", eip712.Types{
	"PayProof": {
		{Name: "employee", Type: "address"},
		{Name: "period", Type: "uint256"},
		{Name: "usdAmount", Type: "uint256"},
	},
})

func testDomain(t *testing.T) eip712.Domain {
	t.Helper()
	d, err := eip712.NewDomain("Paysalary", "1", 11155111, "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	require.NoError(t, err)
	return d
}

func Test_NewRecipient(t *testing.T) {
	r, err := NewRecipient("employee1", "0x1111111111111111111111111111111111111111")
	require.NoError(t, err)
	assert.Equal(t, "employee1", r.Name)
	assert.Equal(t, common.HexToAddress("0x1111111111111111111111111111111111111111"), r.Address)

	_, err = NewRecipient("employee2", "0x11")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "employee2")
}

func Test_PayloadTemplate_Build(t *testing.T) {
	tmpl := &PayloadTemplate{
		RecipientField: "employee",
		Fields:         eip712.Message{"period": big.NewInt(202405), "usdAmount": big.NewInt(1250)},
	}
	r := Recipient{Name: "e1", Address: common.HexToAddress("0x1111111111111111111111111111111111111111")}

	msg, err := tmpl.Build(r)
	require.NoError(t, err)
	assert.Equal(t, r.Address, msg["employee"])
	assert.Len(t, msg, 3)
	assert.NotContains(t, tmpl.Fields, "employee")

	require.NoError(t, tmpl.CheckSchema(payProofSchema))

	tmpl.Fields["employee"] = r.Address
	_, err = tmpl.Build(r)
	require.Error(t, err)
}

func Test_PayloadTemplate_CheckSchema(t *testing.T) {
	t.Run("missing template field", func(t *testing.T) {
		tmpl := &PayloadTemplate{RecipientField: "employee", Fields: eip712.Message{"period": 1}}
		err := tmpl.CheckSchema(payProofSchema)
		require.Error(t, err)
		assert.True(t, errors.Is(err, eip712.ErrFieldMismatch))
	})

	t.Run("recipient field not an address", func(t *testing.T) {
		tmpl := &PayloadTemplate{RecipientField: "period", Fields: eip712.Message{"employee": "0x1111111111111111111111111111111111111111", "usdAmount": 1}}
		err := tmpl.CheckSchema(payProofSchema)
		require.Error(t, err)
		assert.True(t, errors.Is(err, eip712.ErrFieldMismatch))
	})

	t.Run("reserved key", func(t *testing.T) {
		schema := eip712.MustTypeSchema("Bad", eip712.Types{
			"Bad": {{Name: "to", Type: "address"}, {Name: "name", Type: "string"}},
		})
		tmpl := &PayloadTemplate{RecipientField: "to", Fields: eip712.Message{"name": "x"}}
		err := tmpl.CheckSchema(schema)
		require.Error(t, err)
		assert.True(t, errors.Is(err, eip712.ErrFieldMismatch))
		assert.Contains(t, err.Error(), "reserved")
	})
}

func testRecord(t *testing.T) *SignedRecord {
	msg := eip712.Message{
		"employee":  common.HexToAddress("0x1111111111111111111111111111111111111111"),
		"period":    big.NewInt(202405),
		"usdAmount": big.NewInt(1250),
	}
	sig := make([]byte, 65)
	sig[64] = 27
	return NewSignedRecord(payProofSchema, msg, testDomain(t), common.Hash{1}, sig, "employee1")
}

func Test_SignedRecord_MarshalJSON(t *testing.T) {
	rec := testRecord(t)
	data, err := json.Marshal(rec)
	require.NoError(t, err)

	s := string(data)
	employee := strings.Index(s, `"employee"`)
	period := strings.Index(s, `"period"`)
	usdAmount := strings.Index(s, `"usdAmount"`)
	domain := strings.Index(s, `"domain"`)
	signature := strings.Index(s, `"signature"`)
	name := strings.Index(s, `"name":"employee1"`)
	assert.True(t, employee < period && period < usdAmount && usdAmount < domain && domain < signature && signature < name, s)

	assert.Contains(t, s, `"period":202405`)
	assert.Contains(t, s, `"usdAmount":1250`)
	assert.Contains(t, s, `"employee":"0x1111111111111111111111111111111111111111"`)
	assert.Contains(t, s, `"signature":"0x`)
	assert.NotContains(t, s, "Digest")
}

func Test_SignedRecord_RoundTrip(t *testing.T) {
	rec := testRecord(t)
	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var decoded SignedRecord
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, rec.Fields, decoded.Fields)
	assert.Equal(t, rec.Domain, decoded.Domain)
	assert.Equal(t, rec.Signature, decoded.Signature)
	assert.Equal(t, rec.Name, decoded.Name)
	assert.Equal(t, json.Number("202405"), decoded.Message["period"])

	addr, ok := decoded.Address("employee")
	require.True(t, ok)
	assert.Equal(t, common.HexToAddress("0x1111111111111111111111111111111111111111"), addr)

	original, err := eip712.Digest(rec.Domain, payProofSchema, rec.Message)
	require.NoError(t, err)
	reloaded, err := eip712.Digest(decoded.Domain, payProofSchema, decoded.Message)
	require.NoError(t, err)
	assert.Equal(t, original, reloaded)
}

func Test_SignedRecord_RoundTrip_Bytes(t *testing.T) {
	schema := eip712.MustTypeSchema("Delta", eip712.Types{
		"Delta": {
			{Name: "who", Type: "address"},
			{Name: "delta", Type: "int256"},
			{Name: "blob", Type: "bytes"},
			{Name: "tag", Type: "bytes32"},
		},
	})
	msg := eip712.Message{
		"who":   common.HexToAddress("0x1111111111111111111111111111111111111111"),
		"delta": big.NewInt(-5),
		"blob":  []byte{0xde, 0xad},
		"tag":   common.Hash{0xbe, 0xef},
	}
	domain := testDomain(t)
	digest, err := eip712.Digest(domain, schema, msg)
	require.NoError(t, err)

	rec := NewSignedRecord(schema, msg, domain, digest, make([]byte, 65), "w1")
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"blob":"0xdead"`)
	assert.Contains(t, string(data), `"delta":-5`)

	var decoded SignedRecord
	require.NoError(t, json.Unmarshal(data, &decoded))
	reloaded, err := eip712.Digest(decoded.Domain, schema, decoded.Message)
	require.NoError(t, err)
	assert.Equal(t, digest, reloaded)
}

func Test_SignedRecord_UnmarshalJSON_Rejects(t *testing.T) {
	cases := map[string]string{
		"not an object":     `[]`,
		"missing domain":    `{"employee":"0x1111111111111111111111111111111111111111","signature":"0x00","name":"x"}`,
		"missing signature": `{"domain":{"name":"a","version":"1","chainId":1,"verifyingContract":"0x1111111111111111111111111111111111111111"},"name":"x"}`,
		"bad signature hex": `{"domain":{"name":"a","version":"1","chainId":1,"verifyingContract":"0x1111111111111111111111111111111111111111"},"signature":"zz"}`,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			var rec SignedRecord
			require.Error(t, json.Unmarshal([]byte(data), &rec))
		})
	}
}

func Test_RecordBatch_JSON(t *testing.T) {
	batch := &RecordBatch{
		ID:         uuid.New(),
		Kind:       "payroll",
		CreatedAt:  time.Unix(1717000000, 0).UTC(),
		Signer:     common.HexToAddress("0x2222222222222222222222222222222222222222"),
		Domain:     testDomain(t),
		Schema:     payProofSchema,
		MerkleRoot: common.Hash{9},
		Records:    []*SignedRecord{testRecord(t)},
	}
	data, err := json.Marshal(batch)
	require.NoError(t, err)

	var decoded RecordBatch
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, batch.ID, decoded.ID)
	assert.Equal(t, batch.Kind, decoded.Kind)
	assert.True(t, batch.CreatedAt.Equal(decoded.CreatedAt))
	assert.Equal(t, batch.Signer, decoded.Signer)
	assert.Equal(t, batch.MerkleRoot, decoded.MerkleRoot)
	assert.Equal(t, payProofSchema.EncodeType(), decoded.Schema.EncodeType())
	require.Len(t, decoded.Records, 1)
	assert.Equal(t, "employee1", decoded.Records[0].Name)

	summary := batch.Summary()
	assert.Equal(t, 1, summary.RecordCount)
	assert.Equal(t, batch.ID, summary.ID)
}

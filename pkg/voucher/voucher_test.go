package voucher

import (
	"encoding/json"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/batchSigner"
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/digestSigner"
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/digestSigner/inMemoryDigestSigner"
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/eip712"
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var (
	cloneAddress = common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	driverOne    = common.HexToAddress("0x1111111111111111111111111111111111111111")
	driverTwo    = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func ownerSigner(t *testing.T) *inMemoryDigestSigner.InMemoryDigestSigner {
	t.Helper()
	s, err := inMemoryDigestSigner.NewInMemoryDigestSigner(crypto.Keccak256([]byte("owner")), zaptest.NewLogger(t))
	require.NoError(t, err)
	return s
}

func Test_Definitions(t *testing.T) {
	assert.Equal(t, "TripVoucher(address driver,uint256 tripId,uint256 usdCents,uint256 expiry)", Trip.Schema.EncodeType())
	assert.Equal(t, "PayProof(address employee,uint256 period,uint256 usdAmount)", Payroll.Schema.EncodeType())

	for _, d := range []*Definition{Trip, Payroll} {
		require.NoError(t, types.CheckRecordSchema(d.Schema))
		typ, ok := d.Schema.FieldType(d.RecipientField)
		require.True(t, ok)
		assert.Equal(t, "address", typ)
	}

	d, err := Lookup("payroll")
	require.NoError(t, err)
	assert.Same(t, Payroll, d)
	_, err = Lookup("refund")
	require.Error(t, err)

	d, err = ForDomain(Trip.Domain(1, cloneAddress))
	require.NoError(t, err)
	assert.Same(t, Trip, d)
	_, err = ForDomain(eip712.NewDomainWithAddress("Other", "1", 1, cloneAddress))
	require.Error(t, err)
}

func Test_Templates(t *testing.T) {
	now := time.Unix(1717000000, 0)
	trip := TripTemplate(DefaultTripParams(now))
	require.NoError(t, trip.CheckSchema(Trip.Schema))
	assert.Equal(t, big.NewInt(1717003600), trip.Fields["expiry"])
	assert.Equal(t, big.NewInt(500), trip.Fields["usdCents"])
	assert.Equal(t, big.NewInt(1), trip.Fields["tripId"])

	pay := PayrollTemplate(DefaultPayrollParams())
	require.NoError(t, pay.CheckSchema(Payroll.Schema))
	assert.Equal(t, big.NewInt(202405), pay.Fields["period"])
	assert.Equal(t, big.NewInt(1250), pay.Fields["usdAmount"])
}

// Two drivers, one owner key: every record names its driver and recovers to
// the owner that signed it.
func Test_TripVouchers_EndToEnd(t *testing.T) {
	signer := ownerSigner(t)
	domain, err := eip712.NewDomain("Vouchers", "1", 11155111, cloneAddress.Hex())
	require.NoError(t, err)
	assert.Equal(t, Trip.Domain(11155111, cloneAddress), domain)

	recipients := []types.Recipient{
		{Address: driverOne, Name: "driver1"},
		{Address: driverTwo, Name: "driver2"},
	}
	template := TripTemplate(DefaultTripParams(time.Unix(1717000000, 0)))

	bs := batchSigner.NewBatchSigner(signer, nil, zaptest.NewLogger(t))
	result, err := bs.SignBatch(domain, Trip.Schema, template, recipients)
	require.NoError(t, err)
	require.Len(t, result.Records, 2)

	for i, rec := range result.Records {
		assert.Equal(t, recipients[i].Name, rec.Name)
		driver, ok := rec.Address("driver")
		require.True(t, ok)
		assert.Equal(t, recipients[i].Address, driver)

		digest, err := eip712.Digest(domain, Trip.Schema, rec.Message)
		require.NoError(t, err)
		recovered, err := digestSigner.RecoverAddress(digest, rec.Signature)
		require.NoError(t, err)
		assert.Equal(t, signer.Address(), recovered)
	}

	data, err := json.Marshal(result.Records)
	require.NoError(t, err)
	var reloaded []*types.SignedRecord
	require.NoError(t, json.Unmarshal(data, &reloaded))

	digests, err := VerifyRecords(Trip, reloaded, signer.Address())
	require.NoError(t, err)
	assert.Equal(t, result.Digests(), digests)
}

func Test_PayProofs_EndToEnd(t *testing.T) {
	signer := ownerSigner(t)
	domain := Payroll.Domain(11155111, cloneAddress)
	recipients := []types.Recipient{
		{Address: driverOne, Name: "employee1"},
		{Address: driverTwo, Name: "employee2"},
	}

	bs := batchSigner.NewBatchSigner(signer, &batchSigner.Config{Workers: 2}, zaptest.NewLogger(t))
	result, err := bs.SignBatch(domain, Payroll.Schema, PayrollTemplate(DefaultPayrollParams()), recipients)
	require.NoError(t, err)

	digests, err := VerifyRecords(Payroll, result.Records, signer.Address())
	require.NoError(t, err)
	assert.Len(t, digests, 2)
}

func Test_VerifyRecords_Rejects(t *testing.T) {
	signer := ownerSigner(t)
	domain := Trip.Domain(11155111, cloneAddress)
	recipients := []types.Recipient{
		{Address: driverOne, Name: "driver1"},
		{Address: driverTwo, Name: "driver2"},
	}
	bs := batchSigner.NewBatchSigner(signer, nil, zaptest.NewLogger(t))

	sign := func(t *testing.T) []*types.SignedRecord {
		result, err := bs.SignBatch(domain, Trip.Schema, TripTemplate(DefaultTripParams(time.Unix(1717000000, 0))), recipients)
		require.NoError(t, err)
		return result.Records
	}

	t.Run("wrong signer", func(t *testing.T) {
		_, err := VerifyRecords(Trip, sign(t), driverOne)
		require.Error(t, err)
		var verr *VerificationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, 0, verr.Index)
	})

	t.Run("tampered amount", func(t *testing.T) {
		records := sign(t)
		records[1].Message["usdCents"] = big.NewInt(50000)
		_, err := VerifyRecords(Trip, records, signer.Address())
		require.Error(t, err)
		var verr *VerificationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, 1, verr.Index)
		assert.Equal(t, "driver2", verr.Name)
	})

	t.Run("tampered chain", func(t *testing.T) {
		records := sign(t)
		for _, rec := range records {
			rec.Domain.ChainID = 1
		}
		_, err := VerifyRecords(Trip, records, signer.Address())
		require.Error(t, err)
	})

	t.Run("mixed domains", func(t *testing.T) {
		records := sign(t)
		records[1].Domain.VerifyingContract = driverTwo
		_, err := VerifyRecords(Trip, records, signer.Address())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "domain")
	})

	t.Run("wrong kind", func(t *testing.T) {
		_, err := VerifyRecords(Payroll, sign(t), signer.Address())
		require.Error(t, err)
	})

	t.Run("missing field", func(t *testing.T) {
		records := sign(t)
		delete(records[0].Message, "expiry")
		_, err := VerifyRecords(Trip, records, signer.Address())
		require.Error(t, err)
		assert.True(t, errors.Is(err, eip712.ErrFieldMismatch))
	})
}

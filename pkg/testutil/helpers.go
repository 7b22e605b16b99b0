package testutil

import (
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/batchSigner"
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/digestSigner/inMemoryDigestSigner"
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/types"
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/voucher"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// TestCloneAddress is the verifying contract used by test domains.
var TestCloneAddress = common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")

const TestChainID = 11155111

// TestKeyHex is a throwaway secp256k1 key, keccak256("owner").
var TestKeyHex = common.Bytes2Hex(crypto.Keccak256([]byte("owner")))

// NewTestSigner returns an in-memory signer over TestKeyHex.
func NewTestSigner(t *testing.T) *inMemoryDigestSigner.InMemoryDigestSigner {
	t.Helper()
	s, err := inMemoryDigestSigner.NewInMemoryDigestSignerFromHex(TestKeyHex, zaptest.NewLogger(t))
	require.NoError(t, err)
	return s
}

// CreateTestRecipients returns n recipients with distinct addresses.
func CreateTestRecipients(prefix string, n int) []types.Recipient {
	recipients := make([]types.Recipient, n)
	for i := range recipients {
		recipients[i] = types.Recipient{
			Name:    fmt.Sprintf("%s%d", prefix, i+1),
			Address: common.BigToAddress(big.NewInt(int64(0x1111 * (i + 1)))),
		}
	}
	return recipients
}

// CreateTestBatch signs n trip vouchers and wraps them in a RecordBatch.
func CreateTestBatch(t *testing.T, n int) *types.RecordBatch {
	t.Helper()
	signer := NewTestSigner(t)
	domain := voucher.Trip.Domain(TestChainID, TestCloneAddress)
	template := voucher.TripTemplate(voucher.DefaultTripParams(time.Unix(1717000000, 0)))

	bs := batchSigner.NewBatchSigner(signer, nil, zaptest.NewLogger(t))
	result, err := bs.SignBatch(domain, voucher.Trip.Schema, template, CreateTestRecipients("driver", n))
	require.NoError(t, err)

	batch, err := batchSigner.NewRecordBatch(string(voucher.KindTrip), signer.Address(), domain, voucher.Trip.Schema, result)
	require.NoError(t, err)
	return batch
}

package digestSigner

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// SignatureLength is r (32) || s (32) || v (1).
const SignatureLength = crypto.SignatureLength

var (
	// ErrInvalidKey is returned for key material that is not a usable secp256k1 scalar.
	ErrInvalidKey = errors.New("invalid signing key")

	// ErrSigningFailure is returned when the curve operation itself fails.
	ErrSigningFailure = errors.New("signing failure")
)

// IDigestSigner signs 32-byte digests with a secp256k1 key.
//
// Returned signatures are 65 bytes r || s || v with v in {27, 28}.
type IDigestSigner interface {
	SignDigest(digest common.Hash) ([]byte, error)
	Address() common.Address
}

// RecoverAddress returns the address whose key produced sig over digest.
// The recovery byte may be either 0/1 or 27/28.
func RecoverAddress(digest common.Hash, sig []byte) (common.Address, error) {
	if len(sig) != SignatureLength {
		return common.Address{}, fmt.Errorf("signature must be %d bytes, got %d", SignatureLength, len(sig))
	}
	normalized := make([]byte, SignatureLength)
	copy(normalized, sig)
	if normalized[64] >= 27 {
		normalized[64] -= 27
	}
	if normalized[64] > 1 {
		return common.Address{}, fmt.Errorf("invalid recovery id %d", sig[64])
	}

	r := new(big.Int).SetBytes(normalized[:32])
	s := new(big.Int).SetBytes(normalized[32:64])
	if !crypto.ValidateSignatureValues(normalized[64], r, s, true) {
		return common.Address{}, fmt.Errorf("signature values out of range")
	}

	pub, err := crypto.SigToPub(digest[:], normalized)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover public key: %w", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

package inMemoryDigestSigner

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/digestSigner"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// InMemoryDigestSigner holds a secp256k1 key in process memory. Nonces are
// derived per RFC 6979, so signing the same digest twice yields the same
// bytes.
type InMemoryDigestSigner struct {
	logger     *zap.Logger
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

var _ digestSigner.IDigestSigner = (*InMemoryDigestSigner)(nil)

// NewInMemoryDigestSigner loads a raw 32-byte private key.
func NewInMemoryDigestSigner(privateKey []byte, logger *zap.Logger) (*InMemoryDigestSigner, error) {
	key, err := crypto.ToECDSA(privateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", digestSigner.ErrInvalidKey, err.Error())
	}
	return newSigner(key, logger), nil
}

// NewInMemoryDigestSignerFromHex loads a hex private key, with or without 0x.
func NewInMemoryDigestSignerFromHex(hexKey string, logger *zap.Logger) (*InMemoryDigestSigner, error) {
	raw, err := DecodeHexKey(hexKey)
	if err != nil {
		return nil, err
	}
	return NewInMemoryDigestSigner(raw, logger)
}

// DecodeHexKey decodes a hex private key. Errors never include the input.
func DecodeHexKey(hexKey string) ([]byte, error) {
	trimmed := strings.TrimSpace(hexKey)
	trimmed = strings.TrimPrefix(strings.TrimPrefix(trimmed, "0x"), "0X")
	if trimmed == "" {
		return nil, fmt.Errorf("%w: key is empty", digestSigner.ErrInvalidKey)
	}
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: key is not valid hex", digestSigner.ErrInvalidKey)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("%w: key must be 32 bytes, got %d", digestSigner.ErrInvalidKey, len(raw))
	}
	return raw, nil
}

func newSigner(key *ecdsa.PrivateKey, logger *zap.Logger) *InMemoryDigestSigner {
	s := &InMemoryDigestSigner{
		logger:     logger,
		privateKey: key,
		address:    crypto.PubkeyToAddress(key.PublicKey),
	}
	logger.Sugar().Debugw("Loaded in-memory digest signer", "address", s.address.Hex())
	return s
}

func (s *InMemoryDigestSigner) SignDigest(digest common.Hash) ([]byte, error) {
	sig, err := crypto.Sign(digest[:], s.privateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", digestSigner.ErrSigningFailure, err.Error())
	}
	sig[64] += 27
	return sig, nil
}

func (s *InMemoryDigestSigner) Address() common.Address {
	return s.address
}

func (s *InMemoryDigestSigner) String() string {
	return fmt.Sprintf("InMemoryDigestSigner(%s)", s.address.Hex())
}

func (s *InMemoryDigestSigner) GoString() string {
	return s.String()
}

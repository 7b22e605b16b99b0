package keySource

import (
	"context"

	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/digestSigner/inMemoryDigestSigner"
)

// IKeySource produces the raw 32-byte secp256k1 signing key.
type IKeySource interface {
	SigningKey(ctx context.Context) ([]byte, error)
}

// HexKeySource serves a key supplied as hex text (0x prefix optional).
type HexKeySource struct {
	hexKey string
}

var _ IKeySource = (*HexKeySource)(nil)

func NewHexKeySource(hexKey string) *HexKeySource {
	return &HexKeySource{hexKey: hexKey}
}

func (h *HexKeySource) SigningKey(_ context.Context) ([]byte, error) {
	return inMemoryDigestSigner.DecodeHexKey(h.hexKey)
}

func (h *HexKeySource) String() string { return "HexKeySource{}" }

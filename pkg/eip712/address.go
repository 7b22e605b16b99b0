package eip712

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ParseAddress parses a 0x-prefixed, 40 hex character address.
//
// All-lowercase and all-uppercase forms are accepted as-is. Mixed case is
// treated as an EIP-55 checksum and must match exactly; a bad checksum is an
// error rather than a silent normalization.
func ParseAddress(s string) (common.Address, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return common.Address{}, fmt.Errorf("address %q must be 0x-prefixed", s)
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("address %q is not 20 hex-encoded bytes", s)
	}
	addr := common.HexToAddress(s)

	body := s[2:]
	if body != strings.ToLower(body) && body != strings.ToUpper(body) {
		if addr.Hex() != "0x"+body {
			return common.Address{}, fmt.Errorf("address %q has an invalid EIP-55 checksum", s)
		}
	}
	return addr, nil
}

package eip712

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// DomainTypeName is the struct name of the domain separator type.
const DomainTypeName = "EIP712Domain"

// DomainSchema is the fixed four-field domain type used by every voucher kind.
var DomainSchema = MustTypeSchema(DomainTypeName, Types{
	DomainTypeName: {
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	},
})

// Domain is the domain-separation context shared by every record of a batch.
// It is a plain value: copies are independent and two domains built from the
// same inputs compare equal with ==.
type Domain struct {
	Name              string
	Version           string
	ChainID           uint64
	VerifyingContract common.Address
}

// NewDomain builds a Domain. The only check performed is that the verifying
// contract is a well-formed address.
func NewDomain(name, version string, chainID uint64, verifyingContract string) (Domain, error) {
	addr, err := ParseAddress(verifyingContract)
	if err != nil {
		return Domain{}, &InvalidDomainError{Field: "verifyingContract", Reason: err.Error()}
	}
	return NewDomainWithAddress(name, version, chainID, addr), nil
}

// NewDomainWithAddress builds a Domain from an already parsed contract address.
func NewDomainWithAddress(name, version string, chainID uint64, verifyingContract common.Address) Domain {
	return Domain{
		Name:              name,
		Version:           version,
		ChainID:           chainID,
		VerifyingContract: verifyingContract,
	}
}

// Message returns the domain as a message of DomainSchema.
func (d Domain) Message() Message {
	return Message{
		"name":              d.Name,
		"version":           d.Version,
		"chainId":           new(big.Int).SetUint64(d.ChainID),
		"verifyingContract": d.VerifyingContract,
	}
}

// Separator returns the domain separator hash.
func (d Domain) Separator() common.Hash {
	return DomainSeparator(d)
}

type domainJSON struct {
	Name              string `json:"name"`
	Version           string `json:"version"`
	ChainID           uint64 `json:"chainId"`
	VerifyingContract string `json:"verifyingContract"`
}

// MarshalJSON writes the domain with a checksummed contract address.
func (d Domain) MarshalJSON() ([]byte, error) {
	return json.Marshal(domainJSON{
		Name:              d.Name,
		Version:           d.Version,
		ChainID:           d.ChainID,
		VerifyingContract: d.VerifyingContract.Hex(),
	})
}

// UnmarshalJSON applies the same address checks as NewDomain.
func (d *Domain) UnmarshalJSON(data []byte) error {
	var dj domainJSON
	if err := json.Unmarshal(data, &dj); err != nil {
		return fmt.Errorf("failed to decode domain: %w", err)
	}
	parsed, err := NewDomain(dj.Name, dj.Version, dj.ChainID, dj.VerifyingContract)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

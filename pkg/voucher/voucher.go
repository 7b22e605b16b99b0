package voucher

import (
	"fmt"
	"math/big"
	"time"

	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/eip712"
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/types"
	"github.com/ethereum/go-ethereum/common"
)

type Kind string

const (
	KindTrip    Kind = "trip"
	KindPayroll Kind = "payroll"
)

const (
	DefaultTripID       = 1
	DefaultTripUSDCents = 500
	DefaultTripTTL      = time.Hour

	DefaultPayPeriod    = 202405
	DefaultPayUSDAmount = 1250
)

// Definition fixes everything about a voucher kind except the chain id and
// verifying contract, which always come from configuration.
type Definition struct {
	Kind           Kind
	DomainName     string
	DomainVersion  string
	Schema         *eip712.TypeSchema
	RecipientField string
}

var Trip = &Definition{
	Kind:          KindTrip,
	DomainName:    "Vouchers",
	DomainVersion: "1",
	Schema: eip712.MustTypeSchema("TripVoucher", eip712.Types{
		"TripVoucher": {
			{Name: "driver", Type: "address"},
			{Name: "tripId", Type: "uint256"},
			{Name: "usdCents", Type: "uint256"},
			{Name: "expiry", Type: "uint256"},
		},
	}),
	RecipientField: "driver",
}

var Payroll = &Definition{
	Kind:          KindPayroll,
	DomainName:    "Paysalary",
	DomainVersion: "1",
	Schema: eip712.MustTypeSchema("PayProof", eip712.Types{
		"PayProof": {
			{Name: "employee", Type: "address"},
			{Name: "period", Type: "uint256"},
			{Name: "usdAmount", Type: "uint256"},
		},
	}),
	RecipientField: "employee",
}

var definitions = []*Definition{Trip, Payroll}

// Lookup returns the definition registered for kind.
func Lookup(kind string) (*Definition, error) {
	for _, d := range definitions {
		if string(d.Kind) == kind {
			return d, nil
		}
	}
	return nil, fmt.Errorf("unknown voucher kind %q", kind)
}

// ForDomain returns the definition whose domain name and version match.
func ForDomain(domain eip712.Domain) (*Definition, error) {
	for _, d := range definitions {
		if d.DomainName == domain.Name && d.DomainVersion == domain.Version {
			return d, nil
		}
	}
	return nil, fmt.Errorf("no voucher kind uses domain %q version %q", domain.Name, domain.Version)
}

// Domain returns the kind's domain bound to a chain and contract.
func (d *Definition) Domain(chainID uint64, verifyingContract common.Address) eip712.Domain {
	return eip712.NewDomainWithAddress(d.DomainName, d.DomainVersion, chainID, verifyingContract)
}

// Template returns a payload template for the kind's recipient slot.
func (d *Definition) Template(fields eip712.Message) *types.PayloadTemplate {
	return &types.PayloadTemplate{RecipientField: d.RecipientField, Fields: fields}
}

type TripParams struct {
	TripID   *big.Int
	USDCents *big.Int
	Expiry   *big.Int
}

// DefaultTripParams expires one hour after now.
func DefaultTripParams(now time.Time) TripParams {
	return TripParams{
		TripID:   big.NewInt(DefaultTripID),
		USDCents: big.NewInt(DefaultTripUSDCents),
		Expiry:   big.NewInt(now.Add(DefaultTripTTL).Unix()),
	}
}

func TripTemplate(p TripParams) *types.PayloadTemplate {
	return Trip.Template(eip712.Message{
		"tripId":   p.TripID,
		"usdCents": p.USDCents,
		"expiry":   p.Expiry,
	})
}

type PayrollParams struct {
	Period    *big.Int
	USDAmount *big.Int
}

func DefaultPayrollParams() PayrollParams {
	return PayrollParams{
		Period:    big.NewInt(DefaultPayPeriod),
		USDAmount: big.NewInt(DefaultPayUSDAmount),
	}
}

func PayrollTemplate(p PayrollParams) *types.PayloadTemplate {
	return Payroll.Template(eip712.Message{
		"period":    p.Period,
		"usdAmount": p.USDAmount,
	})
}

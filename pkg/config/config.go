package config

import (
	"fmt"

	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/batchSigner"
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/digestSigner/inMemoryDigestSigner"
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/eip712"
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/persistence"
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/types"
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/voucher"
	"k8s.io/apimachinery/pkg/util/validation/field"
)

// Environment variable names for the voucher signer
const (
	EnvOwnerPrivateKey    = "OWNER_PRIVATE_KEY"
	EnvDirectorPrivateKey = "DIRECTOR_PRIVATE_KEY"
	EnvCloneAddress       = "CLONE_ADDRESS"
	EnvChainID            = "VOUCHER_CHAIN_ID"
	EnvRecipientsFile     = "VOUCHER_RECIPIENTS_FILE"
	EnvKMSCiphertext      = "VOUCHER_KMS_CIPHERTEXT"
	EnvAWSRegion          = "VOUCHER_AWS_REGION"
	EnvOutput             = "VOUCHER_OUTPUT"
	EnvStore              = "VOUCHER_STORE"
	EnvDataPath           = "VOUCHER_DATA_PATH"
	EnvRedisAddress       = "VOUCHER_REDIS_ADDRESS"
	EnvWorkers            = "VOUCHER_WORKERS"
	EnvVerbose            = "VOUCHER_VERBOSE"

	EnvDriverOneAddress   = "DRIVER_ONE__ADDRESS"
	EnvDriverTwoAddress   = "DRIVER_TWO__ADDRESS"
	EnvEmployeeOneAddress = "EMPLOYEE_ONE__ADDRESS"
	EnvEmployeeTwoAddress = "EMPLOYEE_TWO__ADDRESS"
)

const DefaultOutput = "signature.json"

type ChainId uint64

const (
	ChainId_EthereumMainnet ChainId = 1
	ChainId_EthereumSepolia ChainId = 11155111
	ChainId_EthereumAnvil   ChainId = 31337
)

type ChainName string

const (
	ChainName_EthereumMainnet ChainName = "mainnet"
	ChainName_EthereumSepolia ChainName = "sepolia"
	ChainName_EthereumAnvil   ChainName = "devnet"
)

var ChainIdToName = map[ChainId]ChainName{
	ChainId_EthereumMainnet: ChainName_EthereumMainnet,
	ChainId_EthereumSepolia: ChainName_EthereumSepolia,
	ChainId_EthereumAnvil:   ChainName_EthereumAnvil,
}

// ChainNameFor returns the well known name for a chain, or "chain-<id>".
func ChainNameFor(id ChainId) ChainName {
	if name, ok := ChainIdToName[id]; ok {
		return name
	}
	return ChainName(fmt.Sprintf("chain-%d", id))
}

// SigningKeyEnv returns the env var the signing key is read from for kind.
func SigningKeyEnv(kind voucher.Kind) string {
	if kind == voucher.KindPayroll {
		return EnvDirectorPrivateKey
	}
	return EnvOwnerPrivateKey
}

// VoucherSignerConfig is everything one signing run needs.
type VoucherSignerConfig struct {
	Kind voucher.Kind `json:"kind"`

	// Exactly one of SigningKey and KMSCiphertext must be set.
	SigningKey    Secret `json:"signingKey"`
	KMSCiphertext string `json:"kmsCiphertext,omitempty"`
	AWSRegion     string `json:"awsRegion,omitempty"`

	VerifyingContract string          `json:"verifyingContract"`
	ChainID           ChainId         `json:"chainId"`
	Recipients        []RecipientEntry `json:"recipients"`

	Output string `json:"output"`
	Indent bool   `json:"indent"`

	Store        persistence.StoreType `json:"store,omitempty"`
	DataPath     string                `json:"dataPath,omitempty"`
	RedisAddress string                `json:"redisAddress,omitempty"`

	Workers int                       `json:"workers"`
	Policy  batchSigner.FailurePolicy `json:"policy"`

	Verbose bool `json:"verbose"`
}

// Validate reports every problem at once. Key material is never included
// in the returned error.
func (c *VoucherSignerConfig) Validate() error {
	var allErrors field.ErrorList

	if _, err := voucher.Lookup(string(c.Kind)); err != nil {
		allErrors = append(allErrors, field.NotSupported(field.NewPath("kind"), c.Kind, []string{string(voucher.KindTrip), string(voucher.KindPayroll)}))
	}

	keyPath := field.NewPath("signingKey")
	switch {
	case c.SigningKey.IsEmpty() && c.KMSCiphertext == "":
		allErrors = append(allErrors, field.Required(keyPath, fmt.Sprintf("a signing key (%s) or a KMS ciphertext is required", SigningKeyEnv(c.Kind))))
	case !c.SigningKey.IsEmpty() && c.KMSCiphertext != "":
		allErrors = append(allErrors, field.Forbidden(field.NewPath("kmsCiphertext"), "cannot be combined with signingKey"))
	case !c.SigningKey.IsEmpty():
		if _, err := inMemoryDigestSigner.DecodeHexKey(c.SigningKey.Reveal()); err != nil {
			allErrors = append(allErrors, field.Invalid(keyPath, redacted, err.Error()))
		}
	}

	contractPath := field.NewPath("verifyingContract")
	if c.VerifyingContract == "" {
		allErrors = append(allErrors, field.Required(contractPath, fmt.Sprintf("verifyingContract (%s) is required", EnvCloneAddress)))
	} else if _, err := eip712.ParseAddress(c.VerifyingContract); err != nil {
		allErrors = append(allErrors, field.Invalid(contractPath, c.VerifyingContract, err.Error()))
	}

	// A zero chain id is what an unset --chain-id flag parses to.
	if c.ChainID == 0 {
		allErrors = append(allErrors, field.Required(field.NewPath("chainId"), fmt.Sprintf("chainId (%s) is required", EnvChainID)))
	}

	allErrors = append(allErrors, validateRecipients(c.Recipients, field.NewPath("recipients"))...)

	if c.Output == "" && c.Store == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("output"), "an output file or a store is required"))
	}
	if c.Store != "" {
		allErrors = append(allErrors, validateStore(c, field.NewPath("store"))...)
	}

	if c.Workers < 1 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("workers"), c.Workers, "must be at least 1"))
	}
	bsConfig := &batchSigner.Config{Workers: c.Workers, Policy: c.Policy}
	if err := bsConfig.Validate(); err != nil {
		allErrors = append(allErrors, field.NotSupported(field.NewPath("policy"), c.Policy, []string{string(batchSigner.PolicyFailFast), string(batchSigner.PolicySkipFailed)}))
	}

	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}

func validateRecipients(recipients []RecipientEntry, path *field.Path) field.ErrorList {
	var allErrors field.ErrorList
	if len(recipients) == 0 {
		return append(allErrors, field.Required(path, "at least one recipient is required"))
	}

	names := make(map[string]struct{}, len(recipients))
	addresses := make(map[string]struct{}, len(recipients))
	for i, r := range recipients {
		idx := path.Index(i)
		if r.Name == "" {
			allErrors = append(allErrors, field.Required(idx.Child("name"), "name is required"))
		} else if _, dup := names[r.Name]; dup {
			allErrors = append(allErrors, field.Duplicate(idx.Child("name"), r.Name))
		} else {
			names[r.Name] = struct{}{}
		}

		addr, err := eip712.ParseAddress(r.Address)
		if err != nil {
			allErrors = append(allErrors, field.Invalid(idx.Child("address"), r.Address, err.Error()))
			continue
		}
		if _, dup := addresses[addr.Hex()]; dup {
			allErrors = append(allErrors, field.Duplicate(idx.Child("address"), r.Address))
			continue
		}
		addresses[addr.Hex()] = struct{}{}
	}
	return allErrors
}

func validateStore(c *VoucherSignerConfig, path *field.Path) field.ErrorList {
	var allErrors field.ErrorList
	if c.Store.IsValid() && !c.Store.IsDurable() {
		return append(allErrors, field.Invalid(path, c.Store, "the memory store does not outlive the process, use file, badger or redis"))
	}
	switch c.Store {
	case persistence.StoreTypeFile, persistence.StoreTypeBadger:
		if c.DataPath == "" {
			allErrors = append(allErrors, field.Required(field.NewPath("dataPath"), fmt.Sprintf("dataPath (%s) is required for the %s store", EnvDataPath, c.Store)))
		}
	case persistence.StoreTypeRedis:
		if c.RedisAddress == "" {
			allErrors = append(allErrors, field.Required(field.NewPath("redisAddress"), fmt.Sprintf("redisAddress (%s) is required for the redis store", EnvRedisAddress)))
		}
	default:
		allErrors = append(allErrors, field.NotSupported(path, c.Store, []string{
			string(persistence.StoreTypeFile),
			string(persistence.StoreTypeBadger),
			string(persistence.StoreTypeRedis),
		}))
	}
	return allErrors
}

// Definition returns the voucher kind's definition. Call after Validate.
func (c *VoucherSignerConfig) Definition() (*voucher.Definition, error) {
	return voucher.Lookup(string(c.Kind))
}

// Domain builds the signing domain for the configured kind.
func (c *VoucherSignerConfig) Domain() (eip712.Domain, error) {
	d, err := c.Definition()
	if err != nil {
		return eip712.Domain{}, err
	}
	return eip712.NewDomain(d.DomainName, d.DomainVersion, uint64(c.ChainID), c.VerifyingContract)
}

// BatchSignerConfig maps the run settings onto the batch signer.
func (c *VoucherSignerConfig) BatchSignerConfig() *batchSigner.Config {
	policy := c.Policy
	if policy == "" {
		policy = batchSigner.PolicyFailFast
	}
	return &batchSigner.Config{Workers: c.Workers, Policy: policy}
}

// ParsedRecipients returns the recipients in configured order.
func (c *VoucherSignerConfig) ParsedRecipients() ([]types.Recipient, error) {
	out := make([]types.Recipient, 0, len(c.Recipients))
	for _, r := range c.Recipients {
		recipient, err := types.NewRecipient(r.Name, r.Address)
		if err != nil {
			return nil, err
		}
		out = append(out, recipient)
	}
	return out, nil
}

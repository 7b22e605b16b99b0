package main

import (
	"fmt"

	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/batchSigner"
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/config"
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/voucher"
	"github.com/urfave/cli/v2"
)

func keyFlags(keyEnvVars ...string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "private-key",
			Aliases: []string{"key"},
			Usage:   "Signing key (hex string)",
			EnvVars: keyEnvVars,
		},
		&cli.StringFlag{
			Name:    "kms-ciphertext",
			Usage:   "Base64 AWS KMS ciphertext of the signing key, used instead of --private-key",
			EnvVars: []string{config.EnvKMSCiphertext},
		},
		&cli.StringFlag{
			Name:    "aws-region",
			Usage:   "AWS region for KMS (defaults to the AWS config)",
			EnvVars: []string{config.EnvAWSRegion},
		},
	}
}

func verboseFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "Enable verbose logging",
		EnvVars: []string{config.EnvVerbose},
	}
}

func storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "store",
			Usage:   "Batch store: file, badger or redis (empty disables archiving)",
			EnvVars: []string{config.EnvStore},
		},
		&cli.StringFlag{
			Name:    "data-path",
			Usage:   "Directory for the file and badger stores",
			EnvVars: []string{config.EnvDataPath},
		},
		&cli.StringFlag{
			Name:    "redis-address",
			Usage:   "Redis address (host:port) for the redis store",
			EnvVars: []string{config.EnvRedisAddress},
		},
	}
}

func signingFlags(kind voucher.Kind) []cli.Flag {
	flags := keyFlags(config.SigningKeyEnv(kind))
	flags = append(flags,
		&cli.StringFlag{
			Name:    "verifying-contract",
			Aliases: []string{"contract"},
			Usage:   "Verifying contract address for the signing domain",
			EnvVars: []string{config.EnvCloneAddress},
		},
		&cli.Uint64Flag{
			Name:    "chain-id",
			Aliases: []string{"chain"},
			Usage:   "Chain ID for the signing domain, e.g. 11155111 (sepolia)",
			EnvVars: []string{config.EnvChainID},
		},
		&cli.StringFlag{
			Name:    "recipients-file",
			Usage:   "YAML or JSON file with name/address recipients",
			EnvVars: []string{config.EnvRecipientsFile},
		},
		&cli.StringSliceFlag{
			Name:  "recipient",
			Usage: "Recipient as name=0xaddress (repeatable)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Signature file to write",
			Value:   config.DefaultOutput,
			EnvVars: []string{config.EnvOutput},
		},
		&cli.BoolFlag{
			Name:  "indent",
			Usage: "Indent the signature file",
		},
		&cli.IntFlag{
			Name:    "workers",
			Usage:   "Recipients signed concurrently",
			Value:   1,
			EnvVars: []string{config.EnvWorkers},
		},
		&cli.StringFlag{
			Name:  "policy",
			Usage: fmt.Sprintf("Failure policy: %s or %s", batchSigner.PolicyFailFast, batchSigner.PolicySkipFailed),
			Value: string(batchSigner.PolicyFailFast),
		},
		verboseFlag(),
	)
	return append(flags, storeFlags()...)
}

func tripFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Uint64Flag{
			Name:  "trip-id",
			Usage: "Trip ID",
			Value: voucher.DefaultTripID,
		},
		&cli.Uint64Flag{
			Name:  "usd-cents",
			Usage: "Voucher value in USD cents",
			Value: voucher.DefaultTripUSDCents,
		},
		&cli.Int64Flag{
			Name:  "expiry",
			Usage: "Expiry as a unix timestamp (default: one hour from now)",
		},
	}
}

func payrollFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Uint64Flag{
			Name:  "period",
			Usage: "Pay period as YYYYMM",
			Value: voucher.DefaultPayPeriod,
		},
		&cli.Uint64Flag{
			Name:  "usd-amount",
			Usage: "Amount paid in USD",
			Value: voucher.DefaultPayUSDAmount,
		},
	}
}

func verifyFlags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "input",
			Aliases: []string{"i"},
			Usage:   "Signature file to verify",
			Value:   config.DefaultOutput,
			EnvVars: []string{config.EnvOutput},
		},
		&cli.StringFlag{
			Name:  "batch-id",
			Usage: "Verify a stored batch instead of a signature file",
		},
		&cli.StringFlag{
			Name:  "expected-signer",
			Usage: "Address every record must be signed by (default: the first record's signer)",
		},
		&cli.IntFlag{
			Name:  "record",
			Usage: "Also print the merkle inclusion proof of the record at this index",
			Value: -1,
		},
		verboseFlag(),
	}
	return append(flags, storeFlags()...)
}

func batchesFlags() []cli.Flag {
	return append([]cli.Flag{verboseFlag()}, storeFlags()...)
}

func batchesDeleteFlags() []cli.Flag {
	return append(batchesFlags(), &cli.StringFlag{
		Name:     "batch-id",
		Usage:    "Batch to delete",
		Required: true,
	})
}

func signerAddressFlags() []cli.Flag {
	flags := keyFlags(config.EnvOwnerPrivateKey, config.EnvDirectorPrivateKey)
	return append(flags, verboseFlag())
}

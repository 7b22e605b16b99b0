package main

import (
	"fmt"
	"log"
	"os"

	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/config"
	"github.com/Layr-Labs/eigenx-vouchers-go/pkg/voucher"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "voucher-signer",
		Usage: "Sign EIP-712 vouchers for a list of recipients",
		Description: `Signs one EIP-712 typed-data message per recipient and writes the signed
records as a JSON array (and optionally archives the batch in a store).

Voucher kinds:
- trip-vouchers: TripVoucher(address driver,uint256 tripId,uint256 usdCents,uint256 expiry)
  under the "Vouchers" v1 domain, signed with OWNER_PRIVATE_KEY
- pay-proofs: PayProof(address employee,uint256 period,uint256 usdAmount)
  under the "Paysalary" v1 domain, signed with DIRECTOR_PRIVATE_KEY`,
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "env-file",
				Usage: "Env files to load before reading flags; existing variables win",
				Value: cli.NewStringSlice(".env"),
			},
		},
		Before: func(c *cli.Context) error {
			if _, err := config.LoadDotEnv(c.StringSlice("env-file")...); err != nil {
				return fmt.Errorf("configuration error: %w", err)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "trip-vouchers",
				Usage: "Sign trip vouchers for drivers",
				Flags: append(signingFlags(voucher.KindTrip), tripFlags()...),
				Action: func(c *cli.Context) error {
					return runSign(c, voucher.KindTrip)
				},
			},
			{
				Name:  "pay-proofs",
				Usage: "Sign payroll proofs for employees",
				Flags: append(signingFlags(voucher.KindPayroll), payrollFlags()...),
				Action: func(c *cli.Context) error {
					return runSign(c, voucher.KindPayroll)
				},
			},
			{
				Name:   "verify",
				Usage:  "Recover and check the signer of every record in a signature file or stored batch",
				Flags:  verifyFlags(),
				Action: runVerify,
			},
			{
				Name:  "batches",
				Usage: "Inspect archived batches",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List archived batches, oldest first",
						Flags:  batchesFlags(),
						Action: runBatchesList,
					},
					{
						Name:   "delete",
						Usage:  "Delete an archived batch",
						Flags:  batchesDeleteFlags(),
						Action: runBatchesDelete,
					},
				},
			},
			{
				Name:   "signer-address",
				Usage:  "Print the address of the configured signing key",
				Flags:  signerAddressFlags(),
				Action: runSignerAddress,
			},
		},
	}
}

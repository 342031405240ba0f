package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"studio/internal/address"
	"studio/internal/bootstrap"
)

func newAddressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "address",
		Short: "Address utilities",
	}

	network := os.Getenv("NETWORK_PASSPHRASE")
	if network == "" {
		network = "Test SDF Network ; September 2015"
	}
	cmd.PersistentFlags().StringVar(&network, "network", network, "network passphrase")

	cmd.AddCommand(
		newDeriveCmd(&network),
		newMasterCmd(&network),
		newDecodeCmd(),
	)
	return cmd
}

func newDeriveCmd(network *string) *cobra.Command {
	var seed, salt string

	cmd := &cobra.Command{
		Use:   "derive <owner>",
		Short: "Derive the contract address owner deploys with a salt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := address.Parse(args[0])
			if err != nil {
				return err
			}

			var s address.Salt
			switch {
			case seed != "" && salt != "":
				return fmt.Errorf("--seed and --salt are mutually exclusive")
			case salt != "":
				if s, err = address.ParseSalt(salt); err != nil {
					return err
				}
			case seed != "":
				s = address.SaltFromSeed(seed)
			default:
				return fmt.Errorf("one of --seed or --salt is required")
			}

			addr, err := address.Derive(address.NetworkID(*network), owner, s)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), addr)
			return nil
		},
	}
	cmd.Flags().StringVar(&seed, "seed", "", "human readable salt seed")
	cmd.Flags().StringVar(&salt, "salt", "", "salt as 64 hex characters")
	return cmd
}

func newMasterCmd(network *string) *cobra.Command {
	return &cobra.Command{
		Use:   "master <admin>",
		Short: "Print the master factory address bootstrapped for admin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			admin, err := address.Parse(args[0])
			if err != nil {
				return err
			}
			addr, err := address.Derive(address.NetworkID(*network), admin, address.SaltFromSeed(bootstrap.MasterSeed))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), addr)
			return nil
		},
	}
}

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <strkey>",
		Short: "Print the raw bytes behind a G... or C... strkey as hex",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := address.DecodeHex(address.Address(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), raw)
			return nil
		},
	}
}

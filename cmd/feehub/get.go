package main

import (
	"errors"
	"fmt"

	solana "github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/hey-its-slowly/fee-governance-hub/internal/ledger"
)

// errConfigNotFound is returned when the derived address holds no config.
var errConfigNotFound = errors.New("config not found")

var addressFlag string

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Fetch one fee config by target and index, or by address",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := sess.ctx(cmd)
		defer cancel()

		if addressFlag != "" {
			key, err := solana.PublicKeyFromBase58(addressFlag)
			if err != nil {
				return fmt.Errorf("--address: %w", err)
			}
			record, err := sess.client.GetConfig(ctx, key)
			if err != nil {
				return err
			}
			if record == nil {
				return fmt.Errorf("%w at %s", errConfigNotFound, key)
			}
			return printConfig(cmd.OutOrStdout(), &ledger.KeyedConfig{Key: key, Record: record})
		}

		kc, err := fetchConfig(cmd)
		if err != nil {
			return err
		}
		return printConfig(cmd.OutOrStdout(), kc)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every fee config governing a target program",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := target()
		if err != nil {
			return err
		}
		ctx, cancel := sess.ctx(cmd)
		defer cancel()
		configs, err := sess.client.GetConfigsByProgram(ctx, t)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), configs)
		}
		for i := range configs {
			if err := printConfig(cmd.OutOrStdout(), &configs[i]); err != nil {
				return err
			}
		}
		return nil
	},
}

// fetchConfig reads the config at (--target, --index).
func fetchConfig(cmd *cobra.Command) (*ledger.KeyedConfig, error) {
	t, err := target()
	if err != nil {
		return nil, err
	}
	ctx, cancel := sess.ctx(cmd)
	defer cancel()
	kc, err := sess.client.GetConfigByProgramAndIndex(ctx, t, indexFlag)
	if err != nil {
		return nil, err
	}
	if kc == nil {
		return nil, fmt.Errorf("%w for %s index %d", errConfigNotFound, t, indexFlag)
	}
	return kc, nil
}

func init() {
	getCmd.Flags().StringVar(&targetFlag, "target", "", "program whose instruction is charged (base58)")
	getCmd.Flags().Uint64Var(&indexFlag, "index", 0, "fee instruction index")
	getCmd.Flags().StringVar(&addressFlag, "address", "", "config account address (overrides --target/--index)")
	addTargetFlags(listCmd)
	rootCmd.AddCommand(getCmd, listCmd)
}

package main

import (
	"fmt"

	solana "github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/hey-its-slowly/fee-governance-hub/internal/feehub"
)

var (
	targetFlag string
	indexFlag  uint64
)

// addTargetFlags registers --target and --index on cmd.
func addTargetFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&targetFlag, "target", "", "program whose instruction is charged (base58)")
	cmd.Flags().Uint64Var(&indexFlag, "index", 0, "fee instruction index")
	_ = cmd.MarkFlagRequired("target")
}

func target() (solana.PublicKey, error) {
	key, err := solana.PublicKeyFromBase58(targetFlag)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("--target: %w", err)
	}
	return key, nil
}

var deriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "Print the config address for a target program and index",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := target()
		if err != nil {
			return err
		}
		addr, bump, err := feehub.DeriveConfigAddress(sess.programID, t, indexFlag)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{"address": addr.String(), "bump": bump})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (bump %d)\n", addr, bump)
		return nil
	},
}

func init() {
	addTargetFlags(deriveCmd)
	rootCmd.AddCommand(deriveCmd)
}

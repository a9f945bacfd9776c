package main

import (
	"github.com/spf13/cobra"

	"github.com/hey-its-slowly/fee-governance-hub/internal/feehub"
)

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Show how a fee divides across wallets",
	Long: `With --fee and --wallet the split is computed offline. Otherwise the
config at --target/--index is fetched and its resolved wallets are used.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(walletFlags) > 0 {
			wallets, err := parseWallets(walletFlags)
			if err != nil {
				return err
			}
			ds, err := feehub.Split(feeFlag, wallets, feehub.PercentDenominator)
			if err != nil {
				return err
			}
			return printSplit(cmd.OutOrStdout(), ds)
		}
		kc, err := fetchConfig(cmd)
		if err != nil {
			return err
		}
		ds, err := feehub.SplitRecord(kc.Record)
		if err != nil {
			return err
		}
		return printSplit(cmd.OutOrStdout(), ds)
	},
}

func init() {
	splitCmd.Flags().StringVar(&targetFlag, "target", "", "program whose instruction is charged (base58)")
	splitCmd.Flags().Uint64Var(&indexFlag, "index", 0, "fee instruction index")
	splitCmd.Flags().StringArrayVar(&walletFlags, "wallet", nil, "wallet as ADDRESS:PERCENT for an offline split")
	splitCmd.Flags().Uint64Var(&feeFlag, "fee", 0, "fee amount for an offline split")
	rootCmd.AddCommand(splitCmd)
}

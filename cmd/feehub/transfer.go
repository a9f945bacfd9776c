package main

import (
	"github.com/spf13/cobra"

	"github.com/hey-its-slowly/fee-governance-hub/internal/execution"
	"github.com/hey-its-slowly/fee-governance-hub/internal/feehub"
	"github.com/hey-its-slowly/fee-governance-hub/internal/risk"
)

var transferCmd = &cobra.Command{
	Use:   "transfer-fees",
	Short: "Pay a config's fee from the authority to its wallets",
	Long: `Fetches the config, resolves its wallets and submits transfer_fees.
The fetched record is a snapshot. A concurrent update can make the request
stale, in which case the program rejects it and nothing is retried. The total
paid is checked against risk.max_fee_per_transfer before submitting.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		kc, err := fetchConfig(cmd)
		if err != nil {
			return err
		}
		shares, err := feehub.SplitRecord(kc.Record)
		if err != nil {
			return err
		}
		limits := risk.Limits{MaxFeePerTransfer: sess.cfg.Risk.MaxFeePerTransfer}
		if err := limits.Check(feehub.Total(shares)); err != nil {
			return err
		}
		authority, err := sess.authority()
		if err != nil {
			return err
		}
		ix, err := execution.Track(sess.builder.TransferFeesForRecord(authority.PublicKey(), kc.Record))
		if err != nil {
			return err
		}
		ctx, cancel := sess.ctx(cmd)
		defer cancel()
		sig, err := sess.submitter.Submit(ctx, authority, ix)
		if err != nil {
			return err
		}
		return printSignature(cmd.OutOrStdout(), feehub.KindTransferFees, sig)
	},
}

func init() {
	addTargetFlags(transferCmd)
	rootCmd.AddCommand(transferCmd)
}

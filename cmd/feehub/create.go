package main

import (
	"github.com/spf13/cobra"

	"github.com/hey-its-slowly/fee-governance-hub/internal/execution"
	"github.com/hey-its-slowly/fee-governance-hub/internal/feehub"
)

var (
	walletFlags []string
	feeFlag     uint64
	nameFlag    string
	globalFlag  bool
)

func addConfigFlags(cmd *cobra.Command) {
	addTargetFlags(cmd)
	cmd.Flags().StringArrayVar(&walletFlags, "wallet", nil, "payout wallet as ADDRESS:PERCENT (thousandths); repeat up to 3 times")
	cmd.Flags().Uint64Var(&feeFlag, "fee", 0, "fee amount in lamports")
	cmd.Flags().StringVar(&nameFlag, "name", "", "fee instruction name")
	cmd.Flags().BoolVar(&globalFlag, "global", false, "pay the protocol-wide wallets instead of --wallet")
}

func configParams() (feehub.ConfigParams, error) {
	t, err := target()
	if err != nil {
		return feehub.ConfigParams{}, err
	}
	wallets, err := parseWallets(walletFlags)
	if err != nil {
		return feehub.ConfigParams{}, err
	}
	return feehub.ConfigParams{
		TargetProgram:           t,
		FeeInstructionIndex:     indexFlag,
		IsUsingGlobalFeeWallets: globalFlag,
		FeeWallets:              wallets,
		FeeAmount:               feeFlag,
		FeeInstructionName:      nameFlag,
	}, nil
}

// runConfigWrite builds a create or update request and submits it.
func runConfigWrite(cmd *cobra.Command, kind feehub.Kind) error {
	p, err := configParams()
	if err != nil {
		return err
	}
	authority, err := sess.authority()
	if err != nil {
		return err
	}
	build := sess.builder.CreateConfig
	if kind == feehub.KindUpdateConfig {
		build = sess.builder.UpdateConfig
	}
	ix, err := execution.Track(build(authority.PublicKey(), p))
	if err != nil {
		return err
	}
	ctx, cancel := sess.ctx(cmd)
	defer cancel()
	sig, err := sess.submitter.Submit(ctx, authority, ix)
	if err != nil {
		return err
	}
	return printSignature(cmd.OutOrStdout(), kind, sig)
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a fee config for a target program and index",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfigWrite(cmd, feehub.KindCreateConfig)
	},
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Replace the wallets, fee and name of an existing config",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfigWrite(cmd, feehub.KindUpdateConfig)
	},
}

func init() {
	addConfigFlags(createCmd)
	addConfigFlags(updateCmd)
	rootCmd.AddCommand(createCmd, updateCmd)
}

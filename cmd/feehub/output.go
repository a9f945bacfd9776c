package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	solana "github.com/gagliardetto/solana-go"

	"github.com/hey-its-slowly/fee-governance-hub/internal/feehub"
	"github.com/hey-its-slowly/fee-governance-hub/internal/ledger"
)

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printConfig(w io.Writer, kc *ledger.KeyedConfig) error {
	if jsonOutput {
		return printJSON(w, kc)
	}
	r := kc.Record
	fmt.Fprintf(w, "%s\n", kc.Key)
	fmt.Fprintf(w, "  program:     %s\n", r.Program)
	fmt.Fprintf(w, "  index:       %d\n", r.FeeInstructionIndex)
	fmt.Fprintf(w, "  name:        %s\n", r.FeeInstructionName)
	fmt.Fprintf(w, "  fee amount:  %d\n", r.FeeAmount)
	fmt.Fprintf(w, "  global:      %t\n", r.IsUsingGlobalFeeWallets)
	fmt.Fprintf(w, "  created at:  %d\n", r.CreatedAt)
	for _, fw := range r.PayoutWallets() {
		fmt.Fprintf(w, "  wallet:      %s %d/%d\n", fw.Address, fw.FeePercent, feehub.PercentDenominator)
	}
	return nil
}

func printSplit(w io.Writer, ds []feehub.Disbursement) error {
	if jsonOutput {
		return printJSON(w, ds)
	}
	for _, d := range ds {
		fmt.Fprintf(w, "%s %d\n", d.Address, d.Amount)
	}
	fmt.Fprintf(w, "total %d\n", feehub.Total(ds))
	return nil
}

func printSignature(w io.Writer, kind feehub.Kind, sig solana.Signature) error {
	if jsonOutput {
		return printJSON(w, map[string]string{"kind": string(kind), "signature": sig.String()})
	}
	fmt.Fprintf(w, "%s submitted: %s\n", kind, sig)
	return nil
}

// parseWallet reads ADDRESS:PERCENT, where PERCENT is in thousandths.
func parseWallet(s string) (feehub.FeeWallet, error) {
	addr, pct, ok := strings.Cut(s, ":")
	if !ok {
		return feehub.FeeWallet{}, fmt.Errorf("wallet %q: want ADDRESS:PERCENT", s)
	}
	key, err := solana.PublicKeyFromBase58(strings.TrimSpace(addr))
	if err != nil {
		return feehub.FeeWallet{}, fmt.Errorf("wallet %q: %w", s, err)
	}
	percent, err := strconv.ParseUint(strings.TrimSpace(pct), 10, 64)
	if err != nil {
		return feehub.FeeWallet{}, fmt.Errorf("wallet %q: percent: %w", s, err)
	}
	return feehub.FeeWallet{Address: key, FeePercent: percent}, nil
}

func parseWallets(specs []string) ([]feehub.FeeWallet, error) {
	out := make([]feehub.FeeWallet, 0, len(specs))
	for _, s := range specs {
		w, err := parseWallet(s)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

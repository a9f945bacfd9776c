package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	solana "github.com/gagliardetto/solana-go"

	"github.com/hey-its-slowly/fee-governance-hub/internal/config"
	"github.com/hey-its-slowly/fee-governance-hub/internal/feehub"
	"github.com/hey-its-slowly/fee-governance-hub/internal/ledger"
	"github.com/hey-its-slowly/fee-governance-hub/internal/paper"
)

func writeConfig(t *testing.T, admins ...string) string {
	t.Helper()
	return writeConfigWith(t, func(cfg *config.Config) { cfg.Paper.Admins = admins })
}

func writeConfigWith(t *testing.T, edit func(*config.Config)) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := &config.Config{
		App:   config.App{Name: "feehub-test", LogLevel: "error"},
		Paper: config.Paper{StartingLamports: 1_000_000_000},
	}
	edit(cfg)
	if err := config.Save(path, cfg); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestParseWallet(t *testing.T) {
	addr := solana.NewWallet().PublicKey()
	w, err := parseWallet(addr.String() + ":800")
	if err != nil || w.Address != addr || w.FeePercent != 800 {
		t.Fatalf("unexpected wallet %+v (%v)", w, err)
	}
	for _, bad := range []string{"nocolon", "xyz:10", addr.String() + ":-1"} {
		if _, err := parseWallet(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestDeriveCommand(t *testing.T) {
	target := solana.NewWallet().PublicKey()
	out, err := run(t, "--paper", "--config", writeConfig(t), "derive", "--target", target.String(), "--index", "4")
	if err != nil {
		t.Fatalf("derive error: %v", err)
	}
	want, _, _ := feehub.DeriveConfigAddress(solana.MustPublicKeyFromBase58(feehub.DefaultProgramID), target, 4)
	if !strings.HasPrefix(out, want.String()) {
		t.Fatalf("derive printed %q, want %s", out, want)
	}
}

func TestPaperStateCarriesAcrossCommands(t *testing.T) {
	admin := solana.NewWallet().PrivateKey
	t.Setenv(ledger.EnvPrivateKey, admin.String())
	target := solana.NewWallet().PublicKey()
	a, b := solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()
	statePath := filepath.Join(t.TempDir(), "paper-state.yaml")
	cfgPath := writeConfigWith(t, func(cfg *config.Config) {
		cfg.Paper.Admins = []string{admin.PublicKey().String()}
		cfg.Paper.StatePath = statePath
	})

	out, err := run(t, "--paper", "--config", cfgPath,
		"create", "--target", target.String(), "--index", "0",
		"--wallet", a.String()+":800", "--wallet", b.String()+":200",
		"--fee", "10000000", "--name", "swap")
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	if !strings.Contains(out, "create_config submitted") {
		t.Fatalf("unexpected create output %q", out)
	}

	out, err = run(t, "--paper", "--config", cfgPath, "get", "--target", target.String(), "--index", "0")
	if err != nil {
		t.Fatalf("get after create error: %v", err)
	}
	if !strings.Contains(out, "name:        swap") || !strings.Contains(out, a.String()+" 800/1000") {
		t.Fatalf("unexpected get output %q", out)
	}

	out, err = run(t, "--paper", "--config", cfgPath, "transfer-fees", "--target", target.String(), "--index", "0")
	if err != nil {
		t.Fatalf("transfer-fees after create error: %v", err)
	}
	if !strings.Contains(out, "transfer_fees submitted") {
		t.Fatalf("unexpected transfer output %q", out)
	}

	programID := solana.MustPublicKeyFromBase58(feehub.DefaultProgramID)
	saved := paper.NewLedger(programID, nil)
	if err := saved.LoadState(statePath); err != nil {
		t.Fatalf("LoadState error: %v", err)
	}
	if saved.Balance(a) != 8_000_000 || saved.Balance(b) != 2_000_000 {
		t.Fatalf("unexpected payouts %d/%d", saved.Balance(a), saved.Balance(b))
	}
	if got := saved.Balance(admin.PublicKey()); got != 1_000_000_000-10_000_000 {
		t.Fatalf("authority funded twice or not charged: %d", got)
	}
}

func TestMetricsServedFromConfig(t *testing.T) {
	cfgPath := writeConfigWith(t, func(cfg *config.Config) { cfg.App.MetricsAddr = "127.0.0.1:0" })
	if _, err := run(t, "--paper", "--config", cfgPath, "derive", "--target", solana.SystemProgramID.String()); err != nil {
		t.Fatalf("derive error: %v", err)
	}
	if sess.metrics == nil || sess.metrics.Addr != "127.0.0.1:0" {
		t.Fatalf("expected metrics served on app.metrics_addr, got %+v", sess.metrics)
	}
}

func TestMissingEndpointRejected(t *testing.T) {
	paperMode = false
	if _, err := run(t, "--config", writeConfig(t), "list", "--target", solana.SystemProgramID.String()); err == nil {
		t.Fatalf("expected error without rpc_url or --paper")
	}
}

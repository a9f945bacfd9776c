// Command feesync converges the hub's fee configs to a YAML manifest: missing
// configs are created and drifted ones are updated.
package main

import (
	"context"
	"fmt"
	"os"

	solana "github.com/gagliardetto/solana-go"

	"github.com/hey-its-slowly/fee-governance-hub/internal/config"
	"github.com/hey-its-slowly/fee-governance-hub/internal/execution"
	"github.com/hey-its-slowly/fee-governance-hub/internal/feehub"
	"github.com/hey-its-slowly/fee-governance-hub/internal/ledger"
	"github.com/hey-its-slowly/fee-governance-hub/internal/paper"
	"github.com/hey-its-slowly/fee-governance-hub/internal/util"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: feesync <manifest.yaml>")
		os.Exit(2)
	}

	cfg, err := config.Load(getEnv("FEEHUB_CONFIG", "internal/config/config.yaml"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	cfg.ApplyEnv()
	log := util.NewLogger(cfg.App.LogLevel, "feesync")
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	manifest, err := config.LoadManifest(os.Args[1])
	if err != nil {
		log.Fatal().Err(err).Msg("manifest")
	}
	authority, err := ledger.LoadAuthority(cfg.Wallet.PrivateKeyBase58)
	if err != nil {
		log.Fatal().Err(err).Msg("wallet")
	}
	programID, err := cfg.Hub.Program()
	if err != nil {
		log.Fatal().Err(err).Msg("program id")
	}

	var (
		rpcImpl ledger.RPC
		hub     *paper.Ledger
	)
	if cfg.Paper.Enabled {
		admins := make([]solana.PublicKey, 0, len(cfg.Paper.Admins))
		for _, a := range cfg.Paper.Admins {
			key, err := solana.PublicKeyFromBase58(a)
			if err != nil {
				log.Fatal().Err(err).Str("admin", a).Msg("paper admins")
			}
			admins = append(admins, key)
		}
		hub = paper.NewLedger(programID, admins, paper.WithLogger(log))
		if cfg.Paper.StatePath != "" {
			if err := hub.LoadState(cfg.Paper.StatePath); err != nil {
				log.Fatal().Err(err).Msg("paper state")
			}
		}
		if hub.Balance(authority.PublicKey()) == 0 {
			hub.Fund(authority.PublicKey(), cfg.Paper.StartingLamports)
		}
		rpcImpl = hub
	} else {
		c, err := ledger.Dial(cfg.Hub.RPCURL, programID, cfg.Hub.Commitment, log)
		if err != nil {
			log.Fatal().Err(err).Msg("dial")
		}
		rpcImpl = c.RPC
	}

	s := &syncer{
		client:    ledger.NewClient(rpcImpl, programID, cfg.Hub.Commitment, log),
		builder:   feehub.NewBuilder(programID),
		submitter: execution.NewSubmitter(rpcImpl, cfg.Hub.Commitment, log),
		authority: authority,
		timeout:   cfg.Hub.Timeout(),
		log:       log,
	}
	var failed int
	for _, entry := range manifest.Configs {
		if _, err := s.sync(context.Background(), entry); err != nil {
			failed++
			log.Error().Err(err).Str("target", entry.Target).Uint64("index", entry.Index).Msg("sync failed")
		}
	}
	log.Info().Int("configs", len(manifest.Configs)).Int("failed", failed).Msg("sync done")
	if hub != nil && cfg.Paper.StatePath != "" {
		if err := hub.SaveState(cfg.Paper.StatePath); err != nil {
			log.Fatal().Err(err).Msg("paper state")
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}


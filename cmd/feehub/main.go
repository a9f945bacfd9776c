package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"

	solana "github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hey-its-slowly/fee-governance-hub/internal/config"
	"github.com/hey-its-slowly/fee-governance-hub/internal/execution"
	"github.com/hey-its-slowly/fee-governance-hub/internal/feehub"
	"github.com/hey-its-slowly/fee-governance-hub/internal/ledger"
	"github.com/hey-its-slowly/fee-governance-hub/internal/metrics"
	"github.com/hey-its-slowly/fee-governance-hub/internal/paper"
	"github.com/hey-its-slowly/fee-governance-hub/internal/util"
)

const defaultConfigPath = "internal/config/config.yaml"

var (
	configPath  string
	jsonOutput  bool
	paperMode   bool
	metricsAddr string
	logLevel    string

	sess *session
)

// session holds everything a subcommand needs, built once per invocation.
type session struct {
	cfg       *config.Config
	log       zerolog.Logger
	programID solana.PublicKey
	builder   *feehub.Builder
	client    *ledger.Client
	submitter *execution.Submitter
	paper     *paper.Ledger
	journal   *paper.JSONLRecorder
	metrics   *http.Server
}

var rootCmd = &cobra.Command{
	Use:           "feehub <command>",
	Short:         "Manage fee configs on the fee governance hub",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		sess = s
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if sess == nil {
			return nil
		}
		if sess.journal != nil {
			_ = sess.journal.Close()
		}
		if sess.metrics != nil {
			_ = sess.metrics.Close()
		}
		if sess.paper != nil && sess.cfg.Paper.StatePath != "" {
			return sess.paper.SaveState(sess.cfg.Paper.StatePath)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "path to YAML config")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&paperMode, "paper", false, "run against an in-memory ledger instead of rpc_url")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override app.log_level")
}

func main() {
	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if pe, ok := feehub.AsProgramError(err); ok {
			fmt.Fprintf(os.Stderr, "program error %d (%s)\n", pe.Code, pe.Name)
		}
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		cfg, err = &config.Config{}, nil
	}
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if paperMode {
		cfg.Paper.Enabled = true
	}
	if logLevel != "" {
		cfg.App.LogLevel = logLevel
	}
	if metricsAddr != "" {
		cfg.App.MetricsAddr = metricsAddr
	}
	return cfg, cfg.Validate()
}

func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log := util.NewLogger(cfg.App.LogLevel, "feehub")
	programID, err := cfg.Hub.Program()
	if err != nil {
		return nil, fmt.Errorf("hub.program_id: %w", err)
	}
	s := &session{cfg: cfg, log: log, programID: programID, builder: feehub.NewBuilder(programID)}
	if cfg.App.MetricsAddr != "" {
		s.metrics = metrics.Serve(cfg.App.MetricsAddr)
		log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")
	}
	var rpcImpl ledger.RPC
	if cfg.Paper.Enabled {
		admins := make([]solana.PublicKey, 0, len(cfg.Paper.Admins))
		for _, a := range cfg.Paper.Admins {
			key, err := solana.PublicKeyFromBase58(a)
			if err != nil {
				return nil, fmt.Errorf("paper.admins %q: %w", a, err)
			}
			admins = append(admins, key)
		}
		s.paper = paper.NewLedger(programID, admins, paper.WithLogger(log))
		if cfg.Paper.StatePath != "" {
			if err := s.paper.LoadState(cfg.Paper.StatePath); err != nil {
				return nil, err
			}
		}
		rpcImpl = s.paper
		log.Info().Int("admins", len(admins)).Msg("paper ledger started")
	} else {
		c, err := ledger.Dial(cfg.Hub.RPCURL, programID, cfg.Hub.Commitment, log)
		if err != nil {
			return nil, err
		}
		rpcImpl = c.RPC
	}
	s.client = ledger.NewClient(rpcImpl, programID, cfg.Hub.Commitment, log)
	s.submitter = execution.NewSubmitter(rpcImpl, cfg.Hub.Commitment, log)
	if cfg.Paper.JournalPath != "" {
		j, err := paper.NewJSONLRecorder(cfg.Paper.JournalPath)
		if err != nil {
			return nil, fmt.Errorf("journal: %w", err)
		}
		s.journal = j
		s.submitter.WithJournal(j)
	}
	return s, nil
}

// ctx bounds a single command by hub.timeout_ms.
func (s *session) ctx(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), s.cfg.Hub.Timeout())
}

// authority loads the signing key. In paper mode an empty key is funded with
// paper.starting_lamports so it can pay fees.
func (s *session) authority() (solana.PrivateKey, error) {
	key, err := ledger.LoadAuthority(s.cfg.Wallet.PrivateKeyBase58)
	if err != nil {
		return nil, err
	}
	if s.paper != nil {
		if s.paper.Balance(key.PublicKey()) == 0 {
			s.paper.Fund(key.PublicKey(), s.cfg.Paper.StartingLamports)
		}
	}
	return key, nil
}

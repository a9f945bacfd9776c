package main

import (
	"context"
	"time"

	solana "github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	"github.com/hey-its-slowly/fee-governance-hub/internal/config"
	"github.com/hey-its-slowly/fee-governance-hub/internal/execution"
	"github.com/hey-its-slowly/fee-governance-hub/internal/feehub"
	"github.com/hey-its-slowly/fee-governance-hub/internal/ledger"
)

// outcome names what sync did for one entry.
type outcome string

const (
	outcomeCreated   outcome = "created"
	outcomeUpdated   outcome = "updated"
	outcomeUnchanged outcome = "unchanged"
)

type syncer struct {
	client    *ledger.Client
	builder   *feehub.Builder
	submitter *execution.Submitter
	authority solana.PrivateKey
	timeout   time.Duration
	log       zerolog.Logger
}

// sync creates or updates one config. Each entry is its own transaction so a
// rejected entry does not block the rest.
func (s *syncer) sync(ctx context.Context, entry config.ManifestEntry) (outcome, error) {
	p, err := entry.Params()
	if err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	current, err := s.client.GetConfigByProgramAndIndex(ctx, p.TargetProgram, p.FeeInstructionIndex)
	if err != nil {
		return "", err
	}
	var (
		ix   *feehub.Instruction
		done outcome
	)
	switch {
	case current == nil:
		ix, err = execution.Track(s.builder.CreateConfig(s.authority.PublicKey(), p))
		done = outcomeCreated
	case current.Record.Matches(p):
		s.log.Debug().Str("key", current.Key.String()).Msg("config up to date")
		return outcomeUnchanged, nil
	default:
		ix, err = execution.Track(s.builder.UpdateConfig(s.authority.PublicKey(), p))
		done = outcomeUpdated
	}
	if err != nil {
		return "", err
	}
	sig, err := s.submitter.Submit(ctx, s.authority, ix)
	if err != nil {
		return "", err
	}
	s.log.Info().Str("sig", sig.String()).Str("target", entry.Target).Uint64("index", entry.Index).Str("outcome", string(done)).Msg("config synced")
	return done, nil
}

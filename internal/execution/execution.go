// Package execution signs hub instructions and submits them to the ledger.
package execution

import (
	"context"
	"errors"
	"fmt"
	"time"

	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog"

	"github.com/hey-its-slowly/fee-governance-hub/internal/feehub"
	"github.com/hey-its-slowly/fee-governance-hub/internal/ledger"
	"github.com/hey-its-slowly/fee-governance-hub/internal/metrics"
)

// ErrNoInstructions is returned when Submit is called with nothing to send.
var ErrNoInstructions = errors.New("execution: no instructions")

// Receipt describes one submission attempt.
type Receipt struct {
	Signature string        `json:"signature,omitempty"`
	Payer     string        `json:"payer"`
	Kinds     []feehub.Kind `json:"kinds"`
	Err       string        `json:"err,omitempty"`
	ErrCode   uint32        `json:"errCode,omitempty"`
	Ts        time.Time     `json:"ts"`
}

// Journal captures receipts for later inspection.
type Journal interface {
	Record(Receipt)
}

// Submitter sends transactions once. create and transfer_fees are not
// idempotent, so failures are returned to the caller rather than retried.
type Submitter struct {
	rpc     ledger.RPC
	commit  rpc.CommitmentType
	log     zerolog.Logger
	journal Journal
	now     func() time.Time
}

// NewSubmitter wraps an RPC endpoint with a preflight commitment.
func NewSubmitter(r ledger.RPC, commit string, log zerolog.Logger) *Submitter {
	return &Submitter{rpc: r, commit: ledger.ParseCommitment(commit), log: log, now: time.Now}
}

// WithJournal attaches a receipt sink.
func (s *Submitter) WithJournal(j Journal) *Submitter {
	s.journal = j
	return s
}

// Submit builds a transaction paid by payer, signs it and sends it.
func (s *Submitter) Submit(ctx context.Context, payer solana.PrivateKey, ixs ...*feehub.Instruction) (sig solana.Signature, err error) {
	if len(ixs) == 0 {
		return sig, ErrNoInstructions
	}
	receipt := Receipt{Payer: payer.PublicKey().String(), Ts: s.now().UTC()}
	generic := make([]solana.Instruction, 0, len(ixs))
	for _, ix := range ixs {
		receipt.Kinds = append(receipt.Kinds, ix.Kind)
		generic = append(generic, ix)
	}
	defer func() {
		metrics.TransactionsSubmitted.WithLabelValues(metrics.Status(err)).Inc()
		if err != nil {
			receipt.Err = err.Error()
			if pe, ok := feehub.AsProgramError(err); ok {
				receipt.ErrCode = pe.Code
			}
		} else {
			receipt.Signature = sig.String()
		}
		if s.journal != nil {
			s.journal.Record(receipt)
		}
	}()

	latest, err := s.rpc.GetLatestBlockhash(ctx, s.commit)
	metrics.RPCRequests.WithLabelValues("getLatestBlockhash", metrics.Status(err)).Inc()
	if err != nil {
		return sig, fmt.Errorf("latest blockhash: %w", err)
	}
	if latest == nil || latest.Value == nil {
		return sig, errors.New("latest blockhash: empty response")
	}

	tx, err := solana.NewTransaction(generic, latest.Value.Blockhash, solana.TransactionPayer(payer.PublicKey()))
	if err != nil {
		return sig, fmt.Errorf("build tx: %w", err)
	}
	if _, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(payer.PublicKey()) {
			return &payer
		}
		return nil
	}); err != nil {
		return sig, fmt.Errorf("sign: %w", err)
	}

	sig, err = s.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: s.commit,
	})
	metrics.RPCRequests.WithLabelValues("sendTransaction", metrics.Status(err)).Inc()
	if err != nil {
		ev := s.log.Warn().Err(err).Strs("kinds", kindStrings(receipt.Kinds))
		if pe, ok := feehub.AsProgramError(err); ok {
			ev = ev.Uint32("code", pe.Code).Str("program_error", pe.Name)
		}
		ev.Msg("submit rejected")
		return sig, err
	}
	s.log.Info().Str("sig", sig.String()).Strs("kinds", kindStrings(receipt.Kinds)).Msg("submitted")
	return sig, nil
}

// Track counts a build outcome for metrics and passes it through.
func Track(ix *feehub.Instruction, err error) (*feehub.Instruction, error) {
	if err != nil {
		metrics.ValidationFailures.WithLabelValues(failureReason(err)).Inc()
		return nil, err
	}
	metrics.InstructionsBuilt.WithLabelValues(string(ix.Kind)).Inc()
	return ix, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, feehub.ErrTooManyFeeWallets):
		return "too_many_fee_wallets"
	case errors.Is(err, feehub.ErrNameTooLong):
		return "name_too_long"
	case errors.Is(err, feehub.ErrNameNotUTF8):
		return "name_not_utf8"
	case errors.Is(err, feehub.ErrAddressExhausted):
		return "address_exhausted"
	}
	return "other"
}

func kindStrings(kinds []feehub.Kind) []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}

// Package paper runs the hub program's rules against in-memory state so
// requests can be dry-run without a cluster.
package paper

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog"

	"github.com/hey-its-slowly/fee-governance-hub/internal/feehub"
	"github.com/hey-its-slowly/fee-governance-hub/internal/ledger"
)

// Ledger stores config accounts and balances and applies hub instructions
// atomically per transaction.
type Ledger struct {
	mu        sync.Mutex
	programID solana.PublicKey
	admins    map[solana.PublicKey]struct{}
	configs   map[solana.PublicKey][]byte
	balances  balances
	slot      uint64
	now       func() time.Time
	log       zerolog.Logger
}

var _ ledger.RPC = (*Ledger)(nil)

// Option configures Ledger construction parameters.
type Option func(*Ledger)

// WithClock overrides the clock used for created_at.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(log zerolog.Logger) Option {
	return func(l *Ledger) { l.log = log }
}

// NewLedger creates an empty ledger for the hub at programID. Only admins may
// create, update or transfer.
func NewLedger(programID solana.PublicKey, admins []solana.PublicKey, opts ...Option) *Ledger {
	l := &Ledger{
		programID: programID,
		admins:    make(map[solana.PublicKey]struct{}, len(admins)),
		configs:   make(map[solana.PublicKey][]byte),
		balances:  make(balances),
		now:       time.Now,
		log:       zerolog.Nop(),
	}
	for _, a := range admins {
		l.admins[a] = struct{}{}
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// GetAccountInfoWithOpts serves config accounts and funded wallets.
func (l *Ledger) GetAccountInfoWithOpts(_ context.Context, key solana.PublicKey, _ *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if data, ok := l.configs[key]; ok {
		return &rpc.GetAccountInfoResult{Value: l.configAccount(data)}, nil
	}
	if lamports, ok := l.balances[key]; ok {
		return &rpc.GetAccountInfoResult{Value: &rpc.Account{
			Lamports: lamports,
			Owner:    solana.SystemProgramID,
			Data:     rpc.DataBytesOrJSONFromBytes(nil),
		}}, nil
	}
	return nil, rpc.ErrNotFound
}

// GetProgramAccountsWithOpts scans config accounts, honoring memcmp and data-size filters.
func (l *Ledger) GetProgramAccountsWithOpts(_ context.Context, program solana.PublicKey, opts *rpc.GetProgramAccountsOpts) (rpc.GetProgramAccountsResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out rpc.GetProgramAccountsResult
	if !program.Equals(l.programID) {
		return out, nil
	}
	var filters []rpc.RPCFilter
	if opts != nil {
		filters = opts.Filters
	}
	for key, data := range l.configs {
		if !feehub.MatchFilters(data, filters) {
			continue
		}
		out = append(out, &rpc.KeyedAccount{Pubkey: key, Account: l.configAccount(data)})
	}
	return out, nil
}

// GetLatestBlockhash returns a hash that advances with every applied transaction.
func (l *Ledger) GetLatestBlockhash(context.Context, rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	seed := make([]byte, 8)
	binary.LittleEndian.PutUint64(seed, l.slot)
	return &rpc.GetLatestBlockhashResult{Value: &rpc.LatestBlockhashResult{
		Blockhash:            solana.Hash(sha256.Sum256(seed)),
		LastValidBlockHeight: l.slot + 150,
	}}, nil
}

// SendTransactionWithOpts applies every hub instruction in tx. Either all of
// them take effect or none do.
func (l *Ledger) SendTransactionWithOpts(_ context.Context, tx *solana.Transaction, _ rpc.TransactionOpts) (solana.Signature, error) {
	if tx == nil || len(tx.Signatures) == 0 {
		return solana.Signature{}, fmt.Errorf("paper: unsigned transaction")
	}
	msg := tx.Message
	signers := int(msg.Header.NumRequiredSignatures)
	if len(tx.Signatures) < signers {
		return solana.Signature{}, fmt.Errorf("paper: %d signatures for %d signers", len(tx.Signatures), signers)
	}
	if err := tx.VerifySignatures(); err != nil {
		return solana.Signature{}, fmt.Errorf("paper: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	st := &state{configs: make(map[solana.PublicKey][]byte, len(l.configs)), balances: l.balances.clone()}
	for k, v := range l.configs {
		st.configs[k] = v
	}

	for i, ci := range msg.Instructions {
		if int(ci.ProgramIDIndex) >= len(msg.AccountKeys) {
			return solana.Signature{}, fmt.Errorf("paper: instruction %d: program index out of range", i)
		}
		programID := msg.AccountKeys[ci.ProgramIDIndex]
		if !programID.Equals(l.programID) {
			return solana.Signature{}, fmt.Errorf("paper: instruction %d: unsupported program %s", i, programID)
		}
		accounts := make([]accountRef, len(ci.Accounts))
		for j, idx := range ci.Accounts {
			if int(idx) >= len(msg.AccountKeys) {
				return solana.Signature{}, fmt.Errorf("paper: instruction %d: account index out of range", i)
			}
			accounts[j] = accountRef{key: msg.AccountKeys[idx], signer: int(idx) < signers}
		}
		if err := l.apply(st, accounts, ci.Data); err != nil {
			l.log.Debug().Err(err).Int("instruction", i).Msg("paper transaction rejected")
			return solana.Signature{}, fmt.Errorf("instruction %d: %w", i, err)
		}
	}

	l.configs = st.configs
	l.balances = st.balances
	l.slot++
	sig := tx.Signatures[0]
	l.log.Info().Str("sig", sig.String()).Int("instructions", len(msg.Instructions)).Msg("paper transaction applied")
	return sig, nil
}

func (l *Ledger) configAccount(data []byte) *rpc.Account {
	raw := make([]byte, len(data))
	copy(raw, data)
	return &rpc.Account{
		Owner: l.programID,
		Data:  rpc.DataBytesOrJSONFromBytes(raw),
	}
}

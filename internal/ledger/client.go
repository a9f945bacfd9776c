// Package ledger reads fee configs from the hub program over JSON-RPC.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog"

	"github.com/hey-its-slowly/fee-governance-hub/internal/feehub"
	"github.com/hey-its-slowly/fee-governance-hub/internal/metrics"
)

// RPC is the slice of the Solana JSON-RPC surface the hub needs.
// *rpc.Client satisfies it, as does the paper ledger.
type RPC interface {
	GetAccountInfoWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error)
	GetProgramAccountsWithOpts(ctx context.Context, program solana.PublicKey, opts *rpc.GetProgramAccountsOpts) (rpc.GetProgramAccountsResult, error)
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
}

var _ RPC = (*rpc.Client)(nil)

var (
	// ErrNoEndpoint is returned by Dial when no RPC URL was supplied.
	ErrNoEndpoint = errors.New("ledger: rpc endpoint required")
	// ErrWrongOwner means an account at a config address is not owned by the hub.
	ErrWrongOwner = errors.New("ledger: account not owned by hub program")
)

// KeyedConfig pairs a decoded record with its address.
type KeyedConfig struct {
	Key    solana.PublicKey     `json:"key"`
	Record *feehub.ConfigRecord `json:"record"`
}

// Client fetches and decodes config records.
type Client struct {
	RPC       RPC
	ProgramID solana.PublicKey
	Commit    rpc.CommitmentType
	log       zerolog.Logger
}

// ParseCommitment maps a config string to a commitment level, defaulting to confirmed.
func ParseCommitment(commit string) rpc.CommitmentType {
	switch strings.ToLower(commit) {
	case "processed":
		return rpc.CommitmentProcessed
	case "finalized":
		return rpc.CommitmentFinalized
	}
	return rpc.CommitmentConfirmed
}

// NewClient wraps an existing RPC implementation.
func NewClient(r RPC, programID solana.PublicKey, commit string, log zerolog.Logger) *Client {
	return &Client{
		RPC:       r,
		ProgramID: programID,
		Commit:    ParseCommitment(commit),
		log:       log,
	}
}

// Dial connects to rpcURL. The endpoint must be given explicitly.
func Dial(rpcURL string, programID solana.PublicKey, commit string, log zerolog.Logger) (*Client, error) {
	if strings.TrimSpace(rpcURL) == "" {
		return nil, ErrNoEndpoint
	}
	return NewClient(rpc.New(rpcURL), programID, commit, log), nil
}

// ConfigAddress derives the config address for (target, index) on this deployment.
func (c *Client) ConfigAddress(target solana.PublicKey, index uint64) (solana.PublicKey, error) {
	addr, _, err := feehub.DeriveConfigAddress(c.ProgramID, target, index)
	return addr, err
}

// GetConfig fetches the record at key. A missing account yields (nil, nil).
func (c *Client) GetConfig(ctx context.Context, key solana.PublicKey) (*feehub.ConfigRecord, error) {
	res, err := c.RPC.GetAccountInfoWithOpts(ctx, key, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: c.Commit,
	})
	if errors.Is(err, rpc.ErrNotFound) {
		metrics.RPCRequests.WithLabelValues("getAccountInfo", "not_found").Inc()
		return nil, nil
	}
	metrics.RPCRequests.WithLabelValues("getAccountInfo", metrics.Status(err)).Inc()
	if err != nil {
		return nil, fmt.Errorf("get account %s: %w", key, err)
	}
	if res == nil || res.Value == nil {
		return nil, nil
	}
	if !res.Value.Owner.Equals(c.ProgramID) {
		return nil, fmt.Errorf("%w: %s owned by %s", ErrWrongOwner, key, res.Value.Owner)
	}
	record, err := feehub.DecodeConfigRecord(res.Value.Data.GetBinary())
	if err != nil {
		return nil, fmt.Errorf("decode config %s: %w", key, err)
	}
	return record, nil
}

// GetConfigByProgramAndIndex derives the address for (target, index) and fetches it.
func (c *Client) GetConfigByProgramAndIndex(ctx context.Context, target solana.PublicKey, index uint64) (*KeyedConfig, error) {
	key, err := c.ConfigAddress(target, index)
	if err != nil {
		return nil, err
	}
	record, err := c.GetConfig(ctx, key)
	if err != nil || record == nil {
		return nil, err
	}
	return &KeyedConfig{Key: key, Record: record}, nil
}

// GetConfigsByProgram lists every config governing target, ordered by
// instruction index. Accounts that fail to decode are logged and skipped.
func (c *Client) GetConfigsByProgram(ctx context.Context, target solana.PublicKey) ([]KeyedConfig, error) {
	accounts, err := c.RPC.GetProgramAccountsWithOpts(ctx, c.ProgramID, &rpc.GetProgramAccountsOpts{
		Commitment: c.Commit,
		Encoding:   solana.EncodingBase64,
		Filters:    feehub.ConfigFilters(target),
	})
	metrics.RPCRequests.WithLabelValues("getProgramAccounts", metrics.Status(err)).Inc()
	if err != nil {
		return nil, fmt.Errorf("get program accounts: %w", err)
	}

	out := make([]KeyedConfig, 0, len(accounts))
	for _, acct := range accounts {
		if acct == nil || acct.Account == nil || acct.Account.Data == nil {
			continue
		}
		record, err := feehub.DecodeConfigRecord(acct.Account.Data.GetBinary())
		if err != nil {
			c.log.Warn().Err(err).Str("key", acct.Pubkey.String()).Msg("skip undecodable config")
			continue
		}
		out = append(out, KeyedConfig{Key: acct.Pubkey, Record: record})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Record.FeeInstructionIndex < out[j].Record.FeeInstructionIndex
	})
	c.log.Debug().Str("target", target.String()).Int("configs", len(out)).Msg("listed configs")
	return out, nil
}

// Package config also contains hub-specific configuration surfaces.
package config

import (
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/hey-its-slowly/fee-governance-hub/internal/feehub"
)

// Hub defines the RPC endpoint and program deployment to talk to.
type Hub struct {
	RPCURL     string `yaml:"rpc_url"`
	Commitment string `yaml:"commitment"` // processed|confirmed|finalized
	ProgramID  string `yaml:"program_id"` // defaults to the deployed hub
	TimeoutMs  int    `yaml:"timeout_ms"`
}

// Wallet stores env-backed signing material metadata.
type Wallet struct {
	PrivateKeyBase58 string `yaml:"private_key_base58"`
}

// Program resolves the configured hub program id.
func (h Hub) Program() (solana.PublicKey, error) {
	if h.ProgramID == "" {
		return solana.MustPublicKeyFromBase58(feehub.DefaultProgramID), nil
	}
	return solana.PublicKeyFromBase58(h.ProgramID)
}

// Timeout returns the per-call deadline, 15s when unset.
func (h Hub) Timeout() time.Duration {
	if h.TimeoutMs <= 0 {
		return 15 * time.Second
	}
	return time.Duration(h.TimeoutMs) * time.Millisecond
}

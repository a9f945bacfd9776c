package config

import (
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
	"gopkg.in/yaml.v3"

	"github.com/hey-its-slowly/fee-governance-hub/internal/feehub"
)

// ManifestWallet is one payout slot in a manifest entry.
type ManifestWallet struct {
	Address    string `yaml:"address"`
	FeePercent uint64 `yaml:"fee_percent"`
}

// ManifestEntry describes the desired state of one fee config.
type ManifestEntry struct {
	Target    string           `yaml:"target"`
	Index     uint64           `yaml:"index"`
	Name      string           `yaml:"name"`
	FeeAmount uint64           `yaml:"fee_amount"`
	Global    bool             `yaml:"global"`
	Wallets   []ManifestWallet `yaml:"wallets"`
}

// Manifest lists fee configs to converge the hub to.
type Manifest struct {
	Configs []ManifestEntry `yaml:"configs"`
}

// LoadManifest reads a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &m, nil
}

// Params converts an entry into validated request parameters.
func (e ManifestEntry) Params() (feehub.ConfigParams, error) {
	target, err := solana.PublicKeyFromBase58(e.Target)
	if err != nil {
		return feehub.ConfigParams{}, fmt.Errorf("target %q: %w", e.Target, err)
	}
	p := feehub.ConfigParams{
		TargetProgram:           target,
		FeeInstructionIndex:     e.Index,
		IsUsingGlobalFeeWallets: e.Global,
		FeeAmount:               e.FeeAmount,
		FeeInstructionName:      e.Name,
	}
	for _, w := range e.Wallets {
		addr, err := solana.PublicKeyFromBase58(w.Address)
		if err != nil {
			return feehub.ConfigParams{}, fmt.Errorf("wallet %q: %w", w.Address, err)
		}
		p.FeeWallets = append(p.FeeWallets, feehub.FeeWallet{Address: addr, FeePercent: w.FeePercent})
	}
	if err := feehub.Validate(p); err != nil {
		return feehub.ConfigParams{}, fmt.Errorf("%s/%d: %w", e.Target, e.Index, err)
	}
	return p, nil
}

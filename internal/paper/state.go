package paper

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	solana "github.com/gagliardetto/solana-go"
	"gopkg.in/yaml.v3"
)

// snapshot is the on-disk form of a ledger. Account data is base64 so the
// file stays readable.
type snapshot struct {
	Slot     uint64            `yaml:"slot"`
	Configs  map[string]string `yaml:"configs"`
	Balances map[string]uint64 `yaml:"balances"`
}

// SaveState writes configs, balances and the slot to path. The file is
// replaced atomically.
func (l *Ledger) SaveState(path string) error {
	l.mu.Lock()
	snap := snapshot{
		Slot:     l.slot,
		Configs:  make(map[string]string, len(l.configs)),
		Balances: make(map[string]uint64, len(l.balances)),
	}
	for k, v := range l.configs {
		snap.Configs[k.String()] = base64.StdEncoding.EncodeToString(v)
	}
	for k, v := range l.balances {
		snap.Balances[k.String()] = v
	}
	l.mu.Unlock()

	data, err := yaml.Marshal(&snap)
	if err != nil {
		return fmt.Errorf("paper: marshal state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadState replaces the ledger's accounts with those saved at path. A missing
// file leaves the ledger empty.
func (l *Ledger) LoadState(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	var snap snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("paper: decode state %s: %w", path, err)
	}

	configs := make(map[solana.PublicKey][]byte, len(snap.Configs))
	for addr, enc := range snap.Configs {
		key, err := solana.PublicKeyFromBase58(addr)
		if err != nil {
			return fmt.Errorf("paper: state config %q: %w", addr, err)
		}
		raw, err := base64.StdEncoding.DecodeString(enc)
		if err != nil {
			return fmt.Errorf("paper: state config %s: %w", addr, err)
		}
		configs[key] = raw
	}
	bal := make(balances, len(snap.Balances))
	for addr, lamports := range snap.Balances {
		key, err := solana.PublicKeyFromBase58(addr)
		if err != nil {
			return fmt.Errorf("paper: state balance %q: %w", addr, err)
		}
		bal[key] = lamports
	}

	l.mu.Lock()
	l.configs = configs
	l.balances = bal
	l.slot = snap.Slot
	l.mu.Unlock()
	l.log.Debug().Str("path", path).Int("configs", len(configs)).Uint64("slot", snap.Slot).Msg("paper state loaded")
	return nil
}

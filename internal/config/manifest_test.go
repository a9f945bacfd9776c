package config

import (
	"errors"
	"testing"

	"github.com/hey-its-slowly/fee-governance-hub/internal/feehub"
)

func TestLoadManifest(t *testing.T) {
	m, err := LoadManifest("testdata/manifest.yaml")
	if err != nil {
		t.Fatalf("LoadManifest returned error: %v", err)
	}
	if len(m.Configs) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(m.Configs))
	}
	p, err := m.Configs[0].Params()
	if err != nil {
		t.Fatalf("Params returned error: %v", err)
	}
	if len(p.FeeWallets) != 2 || p.FeeWallets[0].FeePercent != 800 || p.FeeAmount != 10_000_000 {
		t.Fatalf("unexpected params %+v", p)
	}
	global, err := m.Configs[1].Params()
	if err != nil || !global.IsUsingGlobalFeeWallets || global.FeeInstructionIndex != 3 {
		t.Fatalf("unexpected global params %+v (%v)", global, err)
	}
}

func TestManifestEntryValidates(t *testing.T) {
	e := ManifestEntry{Target: "11111111111111111111111111111111", Name: "this-name-is-longer-than-thirty-bytes"}
	if _, err := e.Params(); !errors.Is(err, feehub.ErrNameTooLong) {
		t.Fatalf("expected ErrNameTooLong, got %v", err)
	}
	e = ManifestEntry{Target: "not-base58!"}
	if _, err := e.Params(); err == nil {
		t.Fatalf("expected bad target to fail")
	}
}

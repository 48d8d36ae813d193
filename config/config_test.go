package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TokenSymbol != "MTT" || cfg.ExchangeRatio != "1000000" {
		t.Fatalf("defaults = %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `owner: "0xOwner"
exchange_ratio: "100000000000000000"
listen_addr: ":9000"
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Owner != "0xOwner" {
		t.Fatalf("owner = %q", cfg.Owner)
	}
	if cfg.ListenAddr != ":9000" {
		t.Fatalf("listen_addr = %q", cfg.ListenAddr)
	}
	// Unset keys keep their defaults.
	if cfg.TokenName != "MaintenanceToken" {
		t.Fatalf("token_name = %q", cfg.TokenName)
	}

	lc, err := cfg.Ledger()
	if err != nil {
		t.Fatalf("Ledger: %v", err)
	}
	if lc.ExchangeRatio.Dec() != "100000000000000000" {
		t.Fatalf("ratio = %s", lc.ExchangeRatio.Dec())
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("err = %v, want ErrNotExist", err)
	}
}

func TestLedgerValidation(t *testing.T) {
	cfg := Default()
	if _, err := cfg.Ledger(); err == nil {
		t.Fatal("Ledger without owner succeeded")
	}

	cfg.Owner = "0xOwner"
	cfg.ExchangeRatio = "not-a-number"
	if _, err := cfg.Ledger(); err == nil {
		t.Fatal("Ledger with bad ratio succeeded")
	}
}

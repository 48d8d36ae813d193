// Package config loads the deployment configuration for the maintenance
// ledger from a YAML file, filling in defaults for anything unset.
package config

import (
	"fmt"
	"os"

	"github.com/holiman/uint256"
	"gopkg.in/yaml.v3"

	"github.com/Team9EncodeSolidity/main-tracker-blockchain/amount"
	"github.com/Team9EncodeSolidity/main-tracker-blockchain/ledger"
	"github.com/Team9EncodeSolidity/main-tracker-blockchain/token"
)

// Config is the on-disk configuration. ExchangeRatio is a decimal string
// because deployed ratios (1e6 to 1e18) exceed what YAML integers can be
// trusted to round-trip.
type Config struct {
	Owner         string `yaml:"owner"`
	Treasury      string `yaml:"treasury"`
	TokenName     string `yaml:"token_name"`
	TokenSymbol   string `yaml:"token_symbol"`
	Decimals      int    `yaml:"decimals"`
	ExchangeRatio string `yaml:"exchange_ratio"`
	DatabasePath  string `yaml:"database_path"`
	ListenAddr    string `yaml:"listen_addr"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		TokenName:     "MaintenanceToken",
		TokenSymbol:   "MTT",
		Decimals:      amount.Decimals,
		Treasury:      "treasury",
		ExchangeRatio: "1000000",
		DatabasePath:  "maintenance.db",
		ListenAddr:    "localhost:8083",
	}
}

// Load reads a YAML config file over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Ledger converts the file form into a deployment config, validating the
// fields the coordinator cannot default.
func (c Config) Ledger() (ledger.Config, error) {
	if c.Owner == "" {
		return ledger.Config{}, fmt.Errorf("config: owner address is required")
	}
	ratio, err := uint256.FromDecimal(c.ExchangeRatio)
	if err != nil {
		return ledger.Config{}, fmt.Errorf("config: exchange_ratio %q: %w", c.ExchangeRatio, err)
	}
	return ledger.Config{
		Owner:           token.Address(c.Owner),
		TreasuryAddress: token.Address(c.Treasury),
		TokenName:       c.TokenName,
		TokenSymbol:     c.TokenSymbol,
		Decimals:        c.Decimals,
		ExchangeRatio:   ratio,
	}, nil
}

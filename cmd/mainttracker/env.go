package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/Team9EncodeSolidity/main-tracker-blockchain/config"
	"github.com/Team9EncodeSolidity/main-tracker-blockchain/eventstore"
	"github.com/Team9EncodeSolidity/main-tracker-blockchain/ledger"
	"github.com/Team9EncodeSolidity/main-tracker-blockchain/token"
)

// env holds the chain and its backing store for one command invocation.
type env struct {
	cfg   config.Config
	chain *ledger.Chain
	store *eventstore.SQLiteStore
}

// commonFlags registers the flags every command shares and returns
// pointers to their values.
func commonFlags(fs *flag.FlagSet) (configPath, caller *string) {
	configPath = fs.String("config", "", "Path to YAML config file")
	caller = fs.String("as", "", "Caller address")
	return
}

// openEnv loads the config, opens the database, and replays the chain.
func openEnv(ctx context.Context, configPath string) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	lc, err := cfg.Ledger()
	if err != nil {
		return nil, err
	}
	store, err := eventstore.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	chain, err := ledger.New(ctx, lc, store)
	if err != nil {
		store.Close()
		return nil, err
	}
	return &env{cfg: cfg, chain: chain, store: store}, nil
}

func (e *env) close() {
	e.store.Close()
}

func requireCaller(caller string) (token.Address, error) {
	if caller == "" {
		return "", fmt.Errorf("--as required")
	}
	return token.Address(caller), nil
}

func parseAmount(s, name string) (*uint256.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("--%s required", name)
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("--%s %q: %w", name, s, err)
	}
	return v, nil
}

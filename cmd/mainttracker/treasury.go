package main

import (
	"context"
	"flag"
	"fmt"
)

func treasuryStatus(args []string) error {
	fs := flag.NewFlagSet("treasury", flag.ExitOnError)
	configPath, _ := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	e, err := openEnv(ctx, *configPath)
	if err != nil {
		return err
	}
	defer e.close()

	fmt.Printf("Treasury %s\n", e.chain.TreasuryAddress())
	fmt.Printf("  Tokens:  %s %s\n", e.chain.TreasuryBalance().Dec(), e.cfg.TokenSymbol)
	fmt.Printf("  Eth:     %s wei\n", e.chain.TreasuryEthBalance().Dec())
	fmt.Printf("  Minters:")
	for _, m := range e.chain.Minters() {
		fmt.Printf(" %s", m)
	}
	fmt.Println()
	return nil
}

func withdraw(args []string) error {
	fs := flag.NewFlagSet("withdraw", flag.ExitOnError)
	configPath, caller := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	from, err := requireCaller(*caller)
	if err != nil {
		return err
	}

	ctx := context.Background()
	e, err := openEnv(ctx, *configPath)
	if err != nil {
		return err
	}
	defer e.close()

	before := e.chain.TreasuryEthBalance()
	swept, burned, err := e.chain.WithdrawTreasuryEthAndBurn(ctx, from)
	if err != nil {
		return err
	}
	fmt.Printf("Treasury eth before: %s wei\n", before.Dec())
	fmt.Printf("Swept %s wei to %s, burned %s %s\n", swept.Dec(), from, burned.Dec(), e.cfg.TokenSymbol)
	fmt.Printf("Treasury eth after:  %s wei\n", e.chain.TreasuryEthBalance().Dec())
	return nil
}

package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/Team9EncodeSolidity/main-tracker-blockchain/token"
)

func deploy(args []string) error {
	fs := flag.NewFlagSet("deploy", flag.ExitOnError)
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

	fmt.Printf("Ledger ready: %s (%s), owner %s, treasury %s, %d entries\n",
		e.cfg.TokenName, e.cfg.TokenSymbol, e.chain.Owner(), e.chain.TreasuryAddress(), len(e.chain.Log()))
	return nil
}

func buy(args []string) error {
	fs := flag.NewFlagSet("buy", flag.ExitOnError)
	configPath, caller := commonFlags(fs)
	payment := fs.String("payment", "", "Native-currency payment in wei")
	if err := fs.Parse(args); err != nil {
		return err
	}

	from, err := requireCaller(*caller)
	if err != nil {
		return err
	}
	amt, err := parseAmount(*payment, "payment")
	if err != nil {
		return err
	}

	ctx := context.Background()
	e, err := openEnv(ctx, *configPath)
	if err != nil {
		return err
	}
	defer e.close()

	issued, err := e.chain.BuyTokens(ctx, from, amt)
	if err != nil {
		return err
	}
	fmt.Printf("Issued %s %s to %s\n", issued.Dec(), e.cfg.TokenSymbol, from)
	return nil
}

func approve(args []string) error {
	fs := flag.NewFlagSet("approve", flag.ExitOnError)
	configPath, caller := commonFlags(fs)
	spender := fs.String("spender", "", "Spender address (defaults to the treasury)")
	value := fs.String("amount", "", "Allowance in token units")
	if err := fs.Parse(args); err != nil {
		return err
	}

	from, err := requireCaller(*caller)
	if err != nil {
		return err
	}
	amt, err := parseAmount(*value, "amount")
	if err != nil {
		return err
	}

	ctx := context.Background()
	e, err := openEnv(ctx, *configPath)
	if err != nil {
		return err
	}
	defer e.close()

	to := e.chain.TreasuryAddress()
	if *spender != "" {
		to = token.Address(*spender)
	}
	if err := e.chain.Approve(ctx, from, to, amt); err != nil {
		return err
	}
	fmt.Printf("Approved %s to spend %s on behalf of %s\n", to, amt.Dec(), from)
	return nil
}

func transfer(args []string) error {
	fs := flag.NewFlagSet("transfer", flag.ExitOnError)
	configPath, caller := commonFlags(fs)
	to := fs.String("to", "", "Recipient address")
	value := fs.String("amount", "", "Amount in token units")
	if err := fs.Parse(args); err != nil {
		return err
	}

	from, err := requireCaller(*caller)
	if err != nil {
		return err
	}
	if *to == "" {
		return fmt.Errorf("--to required")
	}
	amt, err := parseAmount(*value, "amount")
	if err != nil {
		return err
	}

	ctx := context.Background()
	e, err := openEnv(ctx, *configPath)
	if err != nil {
		return err
	}
	defer e.close()

	if err := e.chain.Transfer(ctx, from, token.Address(*to), amt); err != nil {
		return err
	}
	fmt.Printf("Transferred %s from %s to %s\n", amt.Dec(), from, *to)
	return nil
}

func issue(args []string) error {
	fs := flag.NewFlagSet("issue", flag.ExitOnError)
	configPath, caller := commonFlags(fs)
	to := fs.String("to", "", "Recipient address")
	value := fs.String("amount", "", "Amount in token units")
	if err := fs.Parse(args); err != nil {
		return err
	}

	from, err := requireCaller(*caller)
	if err != nil {
		return err
	}
	if *to == "" {
		return fmt.Errorf("--to required")
	}
	amt, err := parseAmount(*value, "amount")
	if err != nil {
		return err
	}

	ctx := context.Background()
	e, err := openEnv(ctx, *configPath)
	if err != nil {
		return err
	}
	defer e.close()

	if err := e.chain.Issue(ctx, from, token.Address(*to), amt); err != nil {
		return err
	}
	fmt.Printf("Issued %s to %s\n", amt.Dec(), *to)
	return nil
}

func grantMint(args []string) error {
	fs := flag.NewFlagSet("grant-mint", flag.ExitOnError)
	configPath, caller := commonFlags(fs)
	addr := fs.String("address", "", "Address to grant the mint role")
	if err := fs.Parse(args); err != nil {
		return err
	}

	from, err := requireCaller(*caller)
	if err != nil {
		return err
	}
	if *addr == "" {
		return fmt.Errorf("--address required")
	}

	ctx := context.Background()
	e, err := openEnv(ctx, *configPath)
	if err != nil {
		return err
	}
	defer e.close()

	if err := e.chain.GrantMint(ctx, from, token.Address(*addr)); err != nil {
		return err
	}
	fmt.Printf("Granted mint role to %s\n", *addr)
	return nil
}

func balance(args []string) error {
	fs := flag.NewFlagSet("balance", flag.ExitOnError)
	configPath, _ := commonFlags(fs)
	addr := fs.String("address", "", "Address to query")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *addr == "" {
		return fmt.Errorf("--address required")
	}

	ctx := context.Background()
	e, err := openEnv(ctx, *configPath)
	if err != nil {
		return err
	}
	defer e.close()

	bal := e.chain.BalanceOf(token.Address(*addr))
	fmt.Printf("%s: %s %s\n", *addr, bal.Dec(), e.cfg.TokenSymbol)
	return nil
}

package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "deploy":
		err = deploy(args)
	case "buy":
		err = buy(args)
	case "approve":
		err = approve(args)
	case "transfer":
		err = transfer(args)
	case "issue":
		err = issue(args)
	case "grant-mint":
		err = grantMint(args)
	case "balance":
		err = balance(args)
	case "open":
		err = openTask(args)
	case "complete":
		err = complete(args)
	case "certify":
		err = certify(args)
	case "pay":
		err = pay(args)
	case "tasks":
		err = tasks(args)
	case "task":
		err = showTask(args)
	case "certificate":
		err = showCertificate(args)
	case "treasury":
		err = treasuryStatus(args)
	case "withdraw":
		err = withdraw(args)
	case "log":
		err = showLog(args)
	case "serve":
		err = serve(args)
	case "help", "-h", "--help":
		printUsage()
	case "version", "-v", "--version":
		fmt.Println("mainttracker version 1.0.0")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`mainttracker - maintenance task ledger

Usage:
  mainttracker <command> [options]

Commands:
  deploy       Initialize the ledger database
  buy          Exchange native currency for maintenance tokens
  approve      Approve the treasury to spend tokens for task payment
  transfer     Transfer tokens to another address
  issue        Mint tokens (minter role required)
  grant-mint   Grant the mint role to an address (minter role required)
  balance      Show the token balance of an address
  open         Open a maintenance task
  complete     Mark a task completed (repairman of record)
  certify      Certify a completed task (quality inspector of record)
  pay          Pay for a certified task and mint the certificate
  tasks        List all tasks
  task         Show one task
  certificate  Show a minted certificate
  treasury     Show treasury balances
  withdraw     Sweep the treasury and burn its tokens (owner only)
  log          Show the commit log
  serve        Serve the ledger over HTTP and WebSocket
  help         Show this help message
  version      Show version information

Every command reads the deployment config (owner, treasury, exchange
ratio, database path) from the file named by --config.

Examples:
  # Initialize with a config file
  mainttracker deploy --config config.yaml

  # Buy 5 tokens at a ratio of 1000000 wei per token
  mainttracker buy --config config.yaml --as 0xClient --payment 5000000

  # Run a task through its lifecycle
  mainttracker open --config config.yaml --as 0xClient --client "Acme" \
    --system "Press 2" --name "Hydraulic check" --cost 3 \
    --repairman 0xRepairman --inspector 0xInspector
  mainttracker complete --config config.yaml --as 0xRepairman --task 0
  mainttracker certify --config config.yaml --as 0xInspector --task 0
  mainttracker approve --config config.yaml --as 0xClient --amount 3
  mainttracker pay --config config.yaml --as 0xClient --task 0 --cost 3 \
    --content QmReport --image QmImage

For command-specific help, run:
  mainttracker <command> --help`)
}

package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/Team9EncodeSolidity/main-tracker-blockchain/token"
	"github.com/Team9EncodeSolidity/main-tracker-blockchain/tracker"
)

func openTask(args []string) error {
	fs := flag.NewFlagSet("open", flag.ExitOnError)
	configPath, caller := commonFlags(fs)
	clientName := fs.String("client", "", "Client name")
	systemName := fs.String("system", "", "System under maintenance")
	name := fs.String("name", "", "Maintenance task name")
	cycles := fs.Uint64("cycles", 0, "System cycle count")
	ipfsHash := fs.String("ipfs", "", "IPFS hash of the task description")
	estimated := fs.Int64("estimated", 0, "Estimated duration in hours")
	start := fs.Int64("start", 0, "Start time as a unix timestamp (defaults to now)")
	cost := fs.String("cost", "", "Task cost in token units")
	repairman := fs.String("repairman", "", "Repairman address")
	inspector := fs.String("inspector", "", "Quality inspector address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	from, err := requireCaller(*caller)
	if err != nil {
		return err
	}
	costAmt, err := parseAmount(*cost, "cost")
	if err != nil {
		return err
	}
	startTime := *start
	if startTime == 0 {
		startTime = time.Now().Unix()
	}

	ctx := context.Background()
	e, err := openEnv(ctx, *configPath)
	if err != nil {
		return err
	}
	defer e.close()

	id, err := e.chain.OpenMaintenanceTask(ctx, from, tracker.OpenParams{
		ClientName:       *clientName,
		SystemName:       *systemName,
		MaintenanceName:  *name,
		SystemCycles:     *cycles,
		IPFSHash:         *ipfsHash,
		EstimatedTime:    *estimated,
		StartTime:        startTime,
		Cost:             costAmt,
		Repairman:        token.Address(*repairman),
		QualityInspector: token.Address(*inspector),
	})
	if err != nil {
		return err
	}
	fmt.Printf("Opened task %d\n", id)
	return nil
}

func complete(args []string) error {
	return taskTransition(args, "complete", func(ctx context.Context, e *env, caller token.Address, id uint64) error {
		if err := e.chain.CompleteTask(ctx, caller, id); err != nil {
			return err
		}
		fmt.Printf("Task %d completed by %s\n", id, caller)
		return nil
	})
}

func certify(args []string) error {
	return taskTransition(args, "certify", func(ctx context.Context, e *env, caller token.Address, id uint64) error {
		if err := e.chain.CertifyTask(ctx, caller, id); err != nil {
			return err
		}
		fmt.Printf("Task %d certified by %s\n", id, caller)
		return nil
	})
}

// taskTransition parses the shared complete/certify flag set and runs fn.
func taskTransition(args []string, name string, fn func(context.Context, *env, token.Address, uint64) error) error {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	configPath, caller := commonFlags(fs)
	taskID := fs.Uint64("task", 0, "Task id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	taskSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "task" {
			taskSet = true
		}
	})
	if !taskSet {
		return fmt.Errorf("--task required")
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

	return fn(ctx, e, from, *taskID)
}

func pay(args []string) error {
	fs := flag.NewFlagSet("pay", flag.ExitOnError)
	configPath, caller := commonFlags(fs)
	taskID := fs.Uint64("task", 0, "Task id")
	cost := fs.String("cost", "", "Payment in token units (must equal the task cost)")
	contentHash := fs.String("content", "", "IPFS hash of the maintenance report")
	imageHash := fs.String("image", "", "IPFS hash of the certificate image")
	if err := fs.Parse(args); err != nil {
		return err
	}

	from, err := requireCaller(*caller)
	if err != nil {
		return err
	}
	costAmt, err := parseAmount(*cost, "cost")
	if err != nil {
		return err
	}

	ctx := context.Background()
	e, err := openEnv(ctx, *configPath)
	if err != nil {
		return err
	}
	defer e.close()

	certID, err := e.chain.PayForTask(ctx, from, *taskID, costAmt, *contentHash, *imageHash)
	if err != nil {
		return err
	}
	fmt.Printf("Task %d paid; certificate %d minted to %s\n", *taskID, certID, from)
	return nil
}

func tasks(args []string) error {
	fs := flag.NewFlagSet("tasks", flag.ExitOnError)
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

	all := e.chain.Tasks()
	if len(all) == 0 {
		fmt.Println("No tasks")
		return nil
	}
	for _, t := range all {
		fmt.Printf("%3d  %-24s %-20s cost=%-10s %s / %s\n",
			t.ID, t.MaintenanceName, t.SystemName, t.Cost.Dec(),
			t.GeneralStatus, t.ExecutionStatus)
	}
	return nil
}

func showTask(args []string) error {
	fs := flag.NewFlagSet("task", flag.ExitOnError)
	configPath, _ := commonFlags(fs)
	taskID := fs.Uint64("task", 0, "Task id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	e, err := openEnv(ctx, *configPath)
	if err != nil {
		return err
	}
	defer e.close()

	t, err := e.chain.MaintenanceTask(*taskID)
	if err != nil {
		return err
	}
	fmt.Printf("Task %d: %s\n", t.ID, t.MaintenanceName)
	fmt.Printf("  Client:     %s\n", t.ClientName)
	fmt.Printf("  System:     %s (cycles %d)\n", t.SystemName, t.SystemCycles)
	fmt.Printf("  Cost:       %s\n", t.Cost.Dec())
	fmt.Printf("  Status:     %s / %s\n", t.GeneralStatus, t.ExecutionStatus)
	fmt.Printf("  Repairman:  %s\n", t.Repairman)
	fmt.Printf("  Inspector:  %s\n", t.QualityInspector)
	if t.IPFSHash != "" {
		fmt.Printf("  Spec:       %s\n", t.IPFSHash)
	}
	if t.ContentHash != "" {
		fmt.Printf("  Report:     %s\n", t.ContentHash)
	}
	if t.ImageHash != "" {
		fmt.Printf("  Image:      %s\n", t.ImageHash)
	}
	return nil
}

func showCertificate(args []string) error {
	fs := flag.NewFlagSet("certificate", flag.ExitOnError)
	configPath, _ := commonFlags(fs)
	certID := fs.Uint64("id", 0, "Certificate id")
	uri := fs.Bool("uri", false, "Print the token URI instead of a summary")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	e, err := openEnv(ctx, *configPath)
	if err != nil {
		return err
	}
	defer e.close()

	cert, err := e.chain.Certificate(*certID)
	if err != nil {
		return err
	}
	if *uri {
		fmt.Println(cert.TokenURI())
		return nil
	}
	fmt.Printf("Certificate %d\n", cert.ID)
	fmt.Printf("  Owner:   %s\n", cert.Owner)
	fmt.Printf("  Price:   %s\n", cert.Price.Dec())
	fmt.Printf("  Minted:  %s\n", cert.MintedAt.Format(time.RFC3339))
	return nil
}

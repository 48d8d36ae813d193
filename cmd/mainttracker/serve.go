package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Team9EncodeSolidity/main-tracker-blockchain/eventlog"
	"github.com/Team9EncodeSolidity/main-tracker-blockchain/stream"
)

func serve(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath, _ := commonFlags(fs)
	listen := fs.String("listen", "", "Listen address (overrides config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	e, err := openEnv(ctx, *configPath)
	if err != nil {
		return err
	}
	defer e.close()

	addr := e.cfg.ListenAddr
	if *listen != "" {
		addr = *listen
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	srv := stream.NewServer(e.chain, logger)

	logger.Info("serving ledger", "addr", addr, "db", e.cfg.DatabasePath)
	return http.ListenAndServe(addr, srv)
}

func showLog(args []string) error {
	fs := flag.NewFlagSet("log", flag.ExitOnError)
	configPath, _ := commonFlags(fs)
	asJSON := fs.Bool("json", false, "Print entries as JSON lines")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	e, err := openEnv(ctx, *configPath)
	if err != nil {
		return err
	}
	defer e.close()

	entries := e.chain.Log()
	if *asJSON {
		return eventlog.WriteJSONL(os.Stdout, entries)
	}
	for _, entry := range entries {
		attrs := ""
		if len(entry.Attrs) > 0 {
			data, _ := json.Marshal(entry.Attrs)
			attrs = " " + string(data)
		}
		fmt.Printf("%4d  %s  %-28s %s%s\n",
			entry.Seq, entry.Timestamp.Format(time.RFC3339), entry.Op, entry.Caller, attrs)
	}
	return nil
}

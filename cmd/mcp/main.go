package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/koptimizer/inferprofit/internal/config"
	"github.com/koptimizer/inferprofit/internal/logging"
	"github.com/koptimizer/inferprofit/internal/mcp"
)

func main() {
	cfg := config.DefaultConfig()
	apiURL := flag.String("api-url", cfg.MCP.APIURL, "Base URL of the inferprofit REST API")
	logLevel := flag.String("log-level", cfg.Logging.Level, "Log level: debug, info, warn or error")
	flag.Parse()

	// Logs go to stderr; stdout carries JSON-RPC only.
	cfg.Logging.Level = *logLevel
	log, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
	log = log.WithName("mcp")
	log.Info("Starting MCP server", "apiURL", *apiURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := mcp.NewMCPServer(*apiURL, log)
	if err := server.Run(ctx, os.Stdin, os.Stdout); err != nil {
		log.Error(err, "MCP server failed")
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/koptimizer/inferprofit/internal/apiserver"
	"github.com/koptimizer/inferprofit/internal/config"
	"github.com/koptimizer/inferprofit/internal/logging"
	intmetrics "github.com/koptimizer/inferprofit/internal/metrics"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config", "/etc/inferprofit/config.yaml", "Path to config file")
	flag.Parse()

	cfg, loadErr := config.LoadFromFile(configFile)
	if loadErr != nil {
		cfg = config.DefaultConfig()
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
	setupLog := log.WithName("setup")
	if loadErr != nil {
		setupLog.Error(loadErr, "Failed to load config file, falling back to defaults/env", "path", configFile)
	}

	if err := cfg.ValidateDetailed(); err != nil {
		setupLog.Error(err, "Invalid configuration")
		os.Exit(1)
	}

	cat, err := cfg.LoadCatalog()
	if err != nil {
		setupLog.Error(err, "Unable to load catalog", "path", cfg.CatalogPath)
		os.Exit(1)
	}
	intmetrics.ObserveCatalog(cat)

	setupLog.Info("Starting inferprofit",
		"catalog", cfg.CatalogPath,
		"llmGpus", len(cat.LLMGPUs()),
		"llmModels", len(cat.LLMModels()),
		"estimatorGpus", len(cat.EstimatorGPUs()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	apiSrv := apiserver.NewServer(cfg, cat, log.WithName("api"))
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		setupLog.Info("Starting API server", "address", apiSrv.Addr)
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		setupLog.Info("Shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return apiSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		setupLog.Error(err, "Server exited with error")
		os.Exit(1)
	}
}

package apiserver

import (
	"fmt"
	"net/http"

	"github.com/go-logr/logr"

	"github.com/koptimizer/inferprofit/internal/config"
	"github.com/koptimizer/inferprofit/pkg/catalog"
)

// NewServer creates a new HTTP server for the REST API.
func NewServer(cfg *config.Config, cat *catalog.Catalog, log logr.Logger) *http.Server {
	router := NewRouter(cfg, cat, log)

	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.APIServer.Address, cfg.APIServer.Port),
		Handler:      router,
		ReadTimeout:  cfg.APIServer.ReadTimeout,
		WriteTimeout: cfg.APIServer.WriteTimeout,
		IdleTimeout:  cfg.APIServer.IdleTimeout,
	}
}

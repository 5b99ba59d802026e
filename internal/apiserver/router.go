package apiserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/koptimizer/inferprofit/internal/apiserver/handler"
	"github.com/koptimizer/inferprofit/internal/config"
	"github.com/koptimizer/inferprofit/internal/logging"
	intmetrics "github.com/koptimizer/inferprofit/internal/metrics"
	"github.com/koptimizer/inferprofit/pkg/catalog"
)

// NewRouter creates the API router with all endpoints.
func NewRouter(cfg *config.Config, cat *catalog.Catalog, log logr.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(logging.Middleware(log))
	r.Use(instrument)
	r.Use(middleware.Recoverer)

	catalogHandler := handler.NewCatalogHandler(cat)
	llmHandler := handler.NewLLMHandler(cat, cfg)
	mediaHandler := handler.NewMediaHandler(cat, cfg)
	voiceHandler := handler.NewVoiceHandler(cat, cfg)
	estimatorHandler := handler.NewEstimatorHandler(cat, cfg)
	curveHandler := handler.NewCurveHandler(cat, cfg)
	configHandler := handler.NewConfigHandler(cfg)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Reference data
		r.Get("/catalog", catalogHandler.Get)

		// Calculators
		r.Get("/llm/configurations", llmHandler.List)
		r.Post("/llm/calculate", llmHandler.Calculate)
		r.Get("/media/configurations", mediaHandler.List)
		r.Post("/media/calculate", mediaHandler.Calculate)
		r.Get("/voice/configurations", voiceHandler.List)
		r.Post("/voice/calculate", voiceHandler.Calculate)

		// Sizing
		r.Post("/estimator", estimatorHandler.Estimate)

		r.Get("/curve", curveHandler.Get)
		r.Get("/config", configHandler.Get)
	})

	return r
}

// unmatchedRoute is the route label for requests no route matched. Raw
// paths never become label values.
const unmatchedRoute = "unmatched"

// instrument records request latency by route pattern and logs each
// request at debug verbosity.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := unmatchedRoute
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		intmetrics.HTTPRequestDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
		logr.FromContextOrDiscard(r.Context()).V(1).Info("Served request", "status", status, "duration", elapsed)
	})
}

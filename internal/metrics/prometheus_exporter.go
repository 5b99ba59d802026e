package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/koptimizer/inferprofit/pkg/catalog"
	"github.com/koptimizer/inferprofit/pkg/sizing"
)

var (
	// Calculator metrics
	CalculationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inferprofit",
		Name:      "calculations_total",
		Help:      "Total single-configuration calculations",
	}, []string{"calculator", "result"}) // "ok", "excluded"

	RankedConfigurations = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "inferprofit",
		Name:      "ranked_configurations",
		Help:      "Configurations in the most recent ranking per calculator",
	}, []string{"calculator"})

	ExcludedCombinations = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "inferprofit",
		Name:      "excluded_combinations",
		Help:      "Combinations dropped for missing reference data in the most recent ranking",
	}, []string{"calculator"})

	TopMonthlyProfitUSD = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "inferprofit",
		Name:      "top_monthly_profit_usd",
		Help:      "Monthly profit of the best configuration in the most recent ranking",
	}, []string{"calculator"})

	// Estimator metrics
	EstimatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inferprofit",
		Name:      "estimates_total",
		Help:      "Total cluster sizing estimates",
	}, []string{"constraint"})

	EstimatorFallbackTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "inferprofit",
		Name:      "estimator_throughput_fallback_total",
		Help:      "Estimates that used the fallback throughput heuristic",
	})

	EstimatorFinalGPUs = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "inferprofit",
		Name:      "estimator_final_gpus",
		Help:      "Final GPU count of sizing estimates",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 11), // 1..1024
	})

	// Catalog metrics
	CatalogEntries = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "inferprofit",
		Name:      "catalog_entries",
		Help:      "Rows per reference table in the loaded catalog",
	}, []string{"table"})

	// API metrics
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "inferprofit",
		Name:      "http_request_duration_seconds",
		Help:      "REST API request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// ObserveCalculation records one single-configuration result.
func ObserveCalculation(calculator string, ok bool) {
	result := "ok"
	if !ok {
		result = "excluded"
	}
	CalculationsTotal.WithLabelValues(calculator, result).Inc()
}

// ObserveRanking records the shape of a ranking. top is ignored when the
// ranking is empty.
func ObserveRanking(calculator string, configurations, excluded int, top float64) {
	RankedConfigurations.WithLabelValues(calculator).Set(float64(configurations))
	ExcludedCombinations.WithLabelValues(calculator).Set(float64(excluded))
	if configurations > 0 {
		TopMonthlyProfitUSD.WithLabelValues(calculator).Set(top)
	}
}

func ObserveEstimate(r sizing.Result) {
	EstimatesTotal.WithLabelValues(r.Constraint.String()).Inc()
	if r.ThroughputFallback {
		EstimatorFallbackTotal.Inc()
	}
	EstimatorFinalGPUs.Observe(float64(r.FinalGPUs))
}

// ObserveCatalog publishes table sizes for a freshly loaded catalog.
func ObserveCatalog(c *catalog.Catalog) {
	t := c.Tables()
	for table, n := range map[string]int{
		"llmGpus":         len(t.LLMGPUs),
		"llmModels":       len(t.LLMModels),
		"mediaGpus":       len(t.MediaGPUs),
		"imageModels":     len(t.ImageModels),
		"videoModels":     len(t.VideoModels),
		"voiceModels":     len(t.VoiceModels),
		"estimatorGpus":   len(t.EstimatorGPUs),
		"estimatorModels": len(t.EstimatorModels),
		"competitors":     len(t.Competitors),
	} {
		CatalogEntries.WithLabelValues(table).Set(float64(n))
	}
}

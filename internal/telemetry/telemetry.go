package telemetry

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mohammad-safakhou/graphjudge/config"
)

// Telemetry tracks comparison outcomes and call volumes across the
// two branches and the judge.
type Telemetry struct {
	config  config.TelemetryConfig
	logger  *log.Logger
	metrics *Metrics
	mu      sync.RWMutex

	registry        *prometheus.Registry
	comparisonsProm *prometheus.CounterVec
	llmRequestsProm *prometheus.CounterVec
	graphQueries    prometheus.Counter
	branchDuration  *prometheus.HistogramVec
}

// Metrics holds the in-process counters.
type Metrics struct {
	// Comparison metrics
	TotalComparisons      int64
	Wins                  map[string]int64 // winner label -> count
	AverageComparisonTime time.Duration

	// Branch metrics
	BranchRuns         map[string]int64 // branch -> runs
	BranchFailures     map[string]int64
	BranchAverageTimes map[string]time.Duration

	// Call volumes
	LLMRequests  map[string]int64 // purpose -> count
	GraphQueries int64
}

// ComparisonEvent is recorded once per judged question.
type ComparisonEvent struct {
	ID       string
	Question string
	Winner   string
	Duration time.Duration
}

// BranchEvent is recorded once per branch execution.
type BranchEvent struct {
	Branch   string
	Success  bool
	Duration time.Duration
}

// NewTelemetry creates a telemetry instance with its own prometheus
// registry.
func NewTelemetry(cfg config.TelemetryConfig) *Telemetry {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	t := &Telemetry{
		config: cfg,
		logger: log.New(log.Writer(), "[TELEMETRY] ", log.LstdFlags),
		metrics: &Metrics{
			Wins:               make(map[string]int64),
			BranchRuns:         make(map[string]int64),
			BranchFailures:     make(map[string]int64),
			BranchAverageTimes: make(map[string]time.Duration),
			LLMRequests:        make(map[string]int64),
		},
		registry: registry,
		comparisonsProm: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "graphjudge_comparisons_total",
			Help: "Judged comparisons by winner label.",
		}, []string{"winner"}),
		llmRequestsProm: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "graphjudge_llm_requests_total",
			Help: "Completion and embedding calls by purpose.",
		}, []string{"purpose"}),
		graphQueries: factory.NewCounter(prometheus.CounterOpts{
			Name: "graphjudge_graph_queries_total",
			Help: "Cypher statements sent to the graph store.",
		}),
		branchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "graphjudge_branch_duration_seconds",
			Help:    "Wall time per branch execution.",
			Buckets: prometheus.DefBuckets,
		}, []string{"branch"}),
	}

	if cfg.Enabled && cfg.PeriodicLogs {
		go t.startMetricsCollection()
	}

	return t
}

// Handler exposes the prometheus registry for the /metrics route.
func (t *Telemetry) Handler() http.Handler {
	return promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{})
}

// RecordComparison records a judged comparison.
func (t *Telemetry) RecordComparison(event ComparisonEvent) {
	if !t.config.Enabled {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.metrics.TotalComparisons++
	t.metrics.Wins[event.Winner]++

	if t.metrics.TotalComparisons == 1 {
		t.metrics.AverageComparisonTime = event.Duration
	} else {
		total := t.metrics.AverageComparisonTime * time.Duration(t.metrics.TotalComparisons-1)
		t.metrics.AverageComparisonTime = (total + event.Duration) / time.Duration(t.metrics.TotalComparisons)
	}

	t.comparisonsProm.WithLabelValues(event.Winner).Inc()

	t.logger.Printf("Comparison Event: ID=%s, Winner=%s, Duration=%v", event.ID, event.Winner, event.Duration)
}

// RecordBranch records one branch execution.
func (t *Telemetry) RecordBranch(event BranchEvent) {
	if !t.config.Enabled {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.metrics.BranchRuns[event.Branch]++
	if !event.Success {
		t.metrics.BranchFailures[event.Branch]++
	}

	runs := t.metrics.BranchRuns[event.Branch]
	currentAvg := t.metrics.BranchAverageTimes[event.Branch]
	if runs == 1 {
		t.metrics.BranchAverageTimes[event.Branch] = event.Duration
	} else {
		total := currentAvg * time.Duration(runs-1)
		t.metrics.BranchAverageTimes[event.Branch] = (total + event.Duration) / time.Duration(runs)
	}

	t.branchDuration.WithLabelValues(event.Branch).Observe(event.Duration.Seconds())
}

// RecordLLMRequest counts one model call by purpose (answer, cypher,
// explain, judge, embedding).
func (t *Telemetry) RecordLLMRequest(purpose string) {
	if !t.config.Enabled {
		return
	}

	t.mu.Lock()
	t.metrics.LLMRequests[purpose]++
	t.mu.Unlock()

	t.llmRequestsProm.WithLabelValues(purpose).Inc()
}

// RecordGraphQuery counts one statement sent to the graph store.
func (t *Telemetry) RecordGraphQuery() {
	if !t.config.Enabled {
		return
	}

	t.mu.Lock()
	t.metrics.GraphQueries++
	t.mu.Unlock()

	t.graphQueries.Inc()
}

// GetMetrics returns a copy of the current counters.
func (t *Telemetry) GetMetrics() Metrics {
	t.mu.RLock()
	defer t.mu.RUnlock()

	metrics := *t.metrics
	metrics.Wins = make(map[string]int64)
	metrics.BranchRuns = make(map[string]int64)
	metrics.BranchFailures = make(map[string]int64)
	metrics.BranchAverageTimes = make(map[string]time.Duration)
	metrics.LLMRequests = make(map[string]int64)

	for k, v := range t.metrics.Wins {
		metrics.Wins[k] = v
	}
	for k, v := range t.metrics.BranchRuns {
		metrics.BranchRuns[k] = v
	}
	for k, v := range t.metrics.BranchFailures {
		metrics.BranchFailures[k] = v
	}
	for k, v := range t.metrics.BranchAverageTimes {
		metrics.BranchAverageTimes[k] = v
	}
	for k, v := range t.metrics.LLMRequests {
		metrics.LLMRequests[k] = v
	}

	return metrics
}

// GetPerformanceReport renders the counters as a human-readable block.
func (t *Telemetry) GetPerformanceReport() string {
	metrics := t.GetMetrics()

	report := fmt.Sprintf(`
=== PERFORMANCE REPORT ===
Comparisons:
  Total: %d
  Average Time: %v
`, metrics.TotalComparisons, metrics.AverageComparisonTime)

	report += "\nWinners:\n"
	for winner, count := range metrics.Wins {
		report += fmt.Sprintf("  %s: %d\n", winner, count)
	}

	report += "\nBranches:\n"
	for branch, runs := range metrics.BranchRuns {
		failures := metrics.BranchFailures[branch]
		avgTime := metrics.BranchAverageTimes[branch]
		report += fmt.Sprintf("  %s: %d runs, %d failures, %v avg time\n", branch, runs, failures, avgTime)
	}

	report += "\nLLM Usage:\n"
	for purpose, requests := range metrics.LLMRequests {
		report += fmt.Sprintf("  %s: %d requests\n", purpose, requests)
	}

	report += fmt.Sprintf("\nGraph Queries: %d\n", metrics.GraphQueries)

	return report
}

// Shutdown logs a final summary.
func (t *Telemetry) Shutdown() {
	t.logger.Println("Shutting down telemetry...")

	metrics := t.GetMetrics()
	t.logger.Printf("Final Report:")
	t.logger.Printf("  Total Comparisons: %d", metrics.TotalComparisons)
	t.logger.Printf("  Average Comparison Time: %v", metrics.AverageComparisonTime)
	t.logger.Printf("  Graph Queries: %d", metrics.GraphQueries)
}

func (t *Telemetry) startMetricsCollection() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		metrics := t.GetMetrics()
		t.logger.Printf("Metrics Snapshot: Comparisons=%d, AvgTime=%v, GraphQueries=%d",
			metrics.TotalComparisons, metrics.AverageComparisonTime, metrics.GraphQueries)
	}
}

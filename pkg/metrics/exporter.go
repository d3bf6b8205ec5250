package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/lapwatch/lapwatch/pkg/stopwatch"
)

// Exporter serves Prometheus-compatible metrics describing a stopwatch
// registry. Counts are computed from a registry snapshot on each scrape.
type Exporter struct {
	registry  *stopwatch.Registry
	startTime time.Time
}

// NewExporter creates an exporter over the given registry.
func NewExporter(registry *stopwatch.Registry) *Exporter {
	return &Exporter{
		registry:  registry,
		startTime: time.Now(),
	}
}

// ServeHTTP serves the /metrics endpoint.
func (e *Exporter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	timers := e.registry.List()
	running := 0
	totalLaps := 0
	for _, sw := range timers {
		if sw.Running() {
			running++
		}
		totalLaps += len(sw.LapTimes())
	}

	fmt.Fprintf(w, "# HELP lapwatch_timers_total Total number of timers ever created\n")
	fmt.Fprintf(w, "# TYPE lapwatch_timers_total gauge\n")
	fmt.Fprintf(w, "lapwatch_timers_total %d\n", len(timers))

	fmt.Fprintf(w, "\n# HELP lapwatch_timers_running Number of timers currently running\n")
	fmt.Fprintf(w, "# TYPE lapwatch_timers_running gauge\n")
	fmt.Fprintf(w, "lapwatch_timers_running %d\n", running)

	fmt.Fprintf(w, "\n# HELP lapwatch_laps_recorded Total laps currently recorded across all timers\n")
	fmt.Fprintf(w, "# TYPE lapwatch_laps_recorded gauge\n")
	fmt.Fprintf(w, "lapwatch_laps_recorded %d\n", totalLaps)

	fmt.Fprintf(w, "\n# HELP lapwatch_uptime_seconds Time since the exporter started\n")
	fmt.Fprintf(w, "# TYPE lapwatch_uptime_seconds gauge\n")
	fmt.Fprintf(w, "lapwatch_uptime_seconds %.0f\n", time.Since(e.startTime).Seconds())

	// Append Go runtime and process metrics from the default registry.
	fmt.Fprintf(w, "\n")
	metricFamilies, err := promclient.DefaultGatherer.Gather()
	if err != nil {
		fmt.Fprintf(w, "# Error gathering Prometheus metrics: %v\n", err)
		return
	}

	var buf bytes.Buffer
	encoder := expfmt.NewEncoder(&buf, expfmt.FmtText)
	for _, mf := range metricFamilies {
		if err := encoder.Encode(mf); err != nil {
			fmt.Fprintf(w, "# Error encoding metric %s: %v\n", mf.GetName(), err)
		}
	}
	w.Write(buf.Bytes())
}

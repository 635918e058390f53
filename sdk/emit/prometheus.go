package emit

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/lowhung/buswatch/telemetry/health"
	"github.com/lowhung/buswatch/types"
)

// PrometheusEmitter stores the latest snapshot in a shared, RWMutex-guarded
// cell read by an HTTP server. Emit never blocks on I/O and always returns
// immediately.
//
// The exposition text is hand-written rather than produced through
// prometheus/client_golang's registry: the spec (§4.2, §8 S4) mandates
// fixed decimal precision per metric family (six decimals for pending
// seconds, two for rates, three for the snapshot timestamp), which
// client_golang's text formatter does not guarantee — it renders floats
// with the shortest round-trippable representation, not a fixed precision.
// client_golang itself is still genuinely exercised elsewhere, by the
// self-metrics provider in telemetry/selfmetrics that instruments
// buswatch's own operational counters.
type PrometheusEmitter struct {
	namespace string

	mu   sync.RWMutex
	snap *types.Snapshot
}

// NewPrometheusEmitter returns an emitter whose metric names are prefixed
// with namespace + "_" when namespace is non-empty.
func NewPrometheusEmitter(namespace string) *PrometheusEmitter {
	return &PrometheusEmitter{namespace: namespace}
}

func (e *PrometheusEmitter) Emit(snap types.Snapshot) error {
	cloned := snap.Clone()
	e.mu.Lock()
	e.snap = &cloned
	e.mu.Unlock()
	return nil
}

// Latest returns the most recently emitted snapshot, if any.
func (e *PrometheusEmitter) Latest() (types.Snapshot, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.snap == nil {
		return types.Snapshot{}, false
	}
	return *e.snap, true
}

func (e *PrometheusEmitter) metricName(suffix string) string {
	if e.namespace == "" {
		return "buswatch_" + suffix
	}
	return e.namespace + "_buswatch_" + suffix
}

// Render produces the Prometheus text exposition format v0.0.4 body for the
// latest snapshot, or an empty string if none has been observed yet.
func (e *PrometheusEmitter) Render() string {
	snap, ok := e.Latest()
	if !ok {
		return ""
	}

	var b strings.Builder
	modules := make([]string, 0, len(snap.Modules))
	for name := range snap.Modules {
		modules = append(modules, name)
	}
	sort.Strings(modules)

	for _, module := range modules {
		mm := snap.Modules[module]

		topics := make([]string, 0, len(mm.Reads))
		for t := range mm.Reads {
			topics = append(topics, t)
		}
		sort.Strings(topics)
		for _, topic := range topics {
			rm := mm.Reads[topic]
			labels := e.labels(module, topic)
			fmt.Fprintf(&b, "%s%s %d\n", e.metricName("read_count"), labels, rm.Count)
			if rm.Backlog != nil {
				fmt.Fprintf(&b, "%s%s %d\n", e.metricName("read_backlog"), labels, *rm.Backlog)
			}
			if rm.Pending != nil {
				fmt.Fprintf(&b, "%s%s %.6f\n", e.metricName("read_pending_seconds"), labels, float64(*rm.Pending)/1_000_000)
			}
			if rm.Rate != nil {
				fmt.Fprintf(&b, "%s%s %.2f\n", e.metricName("read_rate_per_second"), labels, *rm.Rate)
			}
		}

		writeTopics := make([]string, 0, len(mm.Writes))
		for t := range mm.Writes {
			writeTopics = append(writeTopics, t)
		}
		sort.Strings(writeTopics)
		for _, topic := range writeTopics {
			wm := mm.Writes[topic]
			labels := e.labels(module, topic)
			fmt.Fprintf(&b, "%s%s %d\n", e.metricName("write_count"), labels, wm.Count)
			if wm.Pending != nil {
				fmt.Fprintf(&b, "%s%s %.6f\n", e.metricName("write_pending_seconds"), labels, float64(*wm.Pending)/1_000_000)
			}
			if wm.Rate != nil {
				fmt.Fprintf(&b, "%s%s %.2f\n", e.metricName("write_rate_per_second"), labels, *wm.Rate)
			}
		}
	}

	fmt.Fprintf(&b, "%s %.3f\n", e.metricName("snapshot_timestamp_seconds"), float64(snap.TimestampMs)/1000)
	return b.String()
}

func (e *PrometheusEmitter) labels(module, topic string) string {
	return fmt.Sprintf(`{module="%s",topic="%s"}`, escapeLabelValue(module), escapeLabelValue(topic))
}

// escapeLabelValue escapes '\\', '"', and '\n' per the Prometheus exposition
// format so downstream label values containing any of them still produce
// output a conforming parser accepts.
func escapeLabelValue(v string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return r.Replace(v)
}

// Handler serves the Prometheus text exposition at metricsPath, "OK" at
// /health and /healthz, and, when evaluator is non-nil, the evaluator's
// cached probe rollup as JSON at /health/detail; every other path 404s.
func (e *PrometheusEmitter) Handler(metricsPath string, evaluator *health.Evaluator) http.Handler {
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	mux := http.NewServeMux()
	mux.HandleFunc(metricsPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = w.Write([]byte(e.Render()))
	})
	okHandler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
	mux.HandleFunc("/health", okHandler)
	mux.HandleFunc("/healthz", okHandler)
	if evaluator != nil {
		mux.HandleFunc("/health/detail", func(w http.ResponseWriter, r *http.Request) {
			report := evaluator.Evaluate(r.Context())
			w.Header().Set("Content-Type", "application/json")
			if report.Overall == health.StatusUnhealthy {
				w.WriteHeader(http.StatusServiceUnavailable)
			}
			_ = json.NewEncoder(w).Encode(report)
		})
	}
	return mux
}

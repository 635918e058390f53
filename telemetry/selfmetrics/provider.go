// Package selfmetrics instruments buswatch's own operational state — tick
// counts, collection durations, emitter error counts — as distinct from the
// bus snapshot data the emitters export. It is adapted from the teacher's
// Prometheus metrics provider (engine/telemetry/metrics/prometheus.go),
// trimmed to the counter/gauge shapes the scheduler and adapters need.
package selfmetrics

import (
	"fmt"
	"net/http"
	"regexp"
	"sync"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var metricNameRE = regexp.MustCompile(`^[a-zA-Z_:][a-zA-Z0-9_:]*$`)

// Counter is a label-valued monotonic counter.
type Counter interface {
	Inc(delta float64, labels ...string)
}

// Gauge is a label-valued point-in-time value.
type Gauge interface {
	Set(value float64, labels ...string)
}

// Provider vends counters and gauges backed by a Prometheus registry and
// serves them over HTTP.
type Provider struct {
	reg *prom.Registry

	mu       sync.RWMutex
	counters map[string]*prom.CounterVec
	gauges   map[string]*prom.GaugeVec
}

// New creates a Provider with its own registry.
func New() *Provider {
	return &Provider{
		reg:      prom.NewRegistry(),
		counters: make(map[string]*prom.CounterVec),
		gauges:   make(map[string]*prom.GaugeVec),
	}
}

// Handler exposes the registry over HTTP.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{})
}

func buildName(namespace, name string) (string, error) {
	fq := name
	if namespace != "" {
		fq = namespace + "_" + name
	}
	if !metricNameRE.MatchString(fq) {
		return "", fmt.Errorf("selfmetrics: invalid metric name %q", fq)
	}
	return fq, nil
}

// NewCounter returns (creating if necessary) a counter named
// "buswatch_<name>" with the given label dimensions.
func (p *Provider) NewCounter(name, help string, labels ...string) Counter {
	fq, err := buildName("buswatch", name)
	if err != nil {
		return noopCounter{}
	}
	p.mu.RLock()
	cv := p.counters[fq]
	p.mu.RUnlock()
	if cv != nil {
		return &promCounter{cv: cv}
	}

	vec := prom.NewCounterVec(prom.CounterOpts{Name: fq, Help: help}, labels)
	if err := p.reg.Register(vec); err != nil {
		if are, ok := err.(prom.AlreadyRegisteredError); ok {
			vec = are.ExistingCollector.(*prom.CounterVec)
		} else {
			return noopCounter{}
		}
	}
	p.mu.Lock()
	p.counters[fq] = vec
	p.mu.Unlock()
	return &promCounter{cv: vec}
}

// NewGauge is the gauge analogue of NewCounter.
func (p *Provider) NewGauge(name, help string, labels ...string) Gauge {
	fq, err := buildName("buswatch", name)
	if err != nil {
		return noopGauge{}
	}
	p.mu.RLock()
	gv := p.gauges[fq]
	p.mu.RUnlock()
	if gv != nil {
		return &promGauge{gv: gv}
	}

	vec := prom.NewGaugeVec(prom.GaugeOpts{Name: fq, Help: help}, labels)
	if err := p.reg.Register(vec); err != nil {
		if are, ok := err.(prom.AlreadyRegisteredError); ok {
			vec = are.ExistingCollector.(*prom.GaugeVec)
		} else {
			return noopGauge{}
		}
	}
	p.mu.Lock()
	p.gauges[fq] = vec
	p.mu.Unlock()
	return &promGauge{gv: vec}
}

type promCounter struct{ cv *prom.CounterVec }

func (c *promCounter) Inc(delta float64, labels ...string) {
	if delta <= 0 {
		return
	}
	c.cv.WithLabelValues(labels...).Add(delta)
}

type promGauge struct{ gv *prom.GaugeVec }

func (g *promGauge) Set(value float64, labels ...string) {
	g.gv.WithLabelValues(labels...).Set(value)
}

type noopCounter struct{}

func (noopCounter) Inc(float64, ...string) {}

type noopGauge struct{}

func (noopGauge) Set(float64, ...string) {}

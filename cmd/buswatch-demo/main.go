// Command buswatch-demo is a small instrumented producer/consumer chain
// exercising the instrumentation core end to end: it registers three
// modules, records reads/writes on a timer, and emits snapshots to one or
// more configured sinks, the way a real integrator would wire buswatch into
// a service (§2, §4.1-§4.4).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lowhung/buswatch/sdk"
	"github.com/lowhung/buswatch/sdk/emit"
	"github.com/lowhung/buswatch/sdk/scheduler"
	"github.com/lowhung/buswatch/telemetry/health"
	"github.com/lowhung/buswatch/telemetry/logging"
	"github.com/lowhung/buswatch/telemetry/selfmetrics"
)

func main() {
	var (
		interval     = flag.Duration("interval", time.Second, "collection/emission interval")
		snapshotPath = flag.String("file", "", "write snapshots as pretty JSON to this path")
		tcpAddr      = flag.String("tcp", "", "write compact newline-delimited snapshots to this TCP address")
		promAddr     = flag.String("prom-addr", ":9090", "address for the Prometheus metrics endpoint")
		promPath     = flag.String("prom-path", "/metrics", "path for the Prometheus metrics endpoint")
	)
	flag.Parse()

	logger := logging.New(slog.Default())

	var emitters []scheduler.NamedEmitter
	if *snapshotPath != "" {
		emitters = append(emitters, scheduler.NamedEmitter{Name: "file", Emitter: emit.NewFileEmitter(*snapshotPath)})
	}
	if *tcpAddr != "" {
		emitters = append(emitters, scheduler.NamedEmitter{Name: "tcp", Emitter: emit.NewTCPEmitter(*tcpAddr, 0)})
	}
	promEmitter := emit.NewPrometheusEmitter("buswatch_demo")
	emitters = append(emitters, scheduler.NamedEmitter{Name: "prometheus", Emitter: promEmitter})

	evaluator := health.NewEvaluator(5 * time.Second)
	instrumentor := sdk.New(sdk.Config{
		Interval:    *interval,
		Emitters:    emitters,
		Logger:      logger,
		SelfMetrics: selfmetrics.New(),
		Health:      evaluator,
	})

	api := instrumentor.Register("api")
	processor := instrumentor.Register("processor")
	notifier := instrumentor.Register("notifier")

	handler := sdk.PrometheusHandler(promEmitter, *promPath, evaluator)
	if handler == nil {
		fmt.Fprintln(os.Stderr, "buswatch-demo: failed to build Prometheus handler")
		os.Exit(1)
	}
	go func() {
		srv := &http.Server{Addr: *promAddr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "buswatch-demo: prometheus server: %v\n", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	instrumentor.Start(ctx)
	defer instrumentor.Stop()

	fmt.Fprintf(os.Stderr, "buswatch-demo: running, prometheus on %s%s, ctrl-c to stop\n", *promAddr, *promPath)

	ticker := time.NewTicker(300 * time.Millisecond)
	defer ticker.Stop()

	const produced, processed = uint64(10), uint64(8)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			api.RecordWrite("orders", produced)
			processor.RecordRead("orders", processed)
			processor.RecordWrite("notifications", processed)
			notifier.RecordRead("notifications", processed-1)
		}
	}
}

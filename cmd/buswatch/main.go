// Command buswatch is the TUI viewer (component H): it polls a snapshot
// source and renders the Summary/Bottleneck/Flow console described in §4.6.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lowhung/buswatch/config"
	"github.com/lowhung/buswatch/source"
	"github.com/lowhung/buswatch/telemetry/logging"
	"github.com/lowhung/buswatch/tui"
	"github.com/lowhung/buswatch/tui/data"
)

func main() {
	var (
		filePath   = flag.String("file", "", "poll a JSON snapshot file (mtime-gated)")
		mqttBroker = flag.String("mqtt-broker", "", "subscribe to a bus topic over MQTT instead of polling a file")
		mqttTopic  = flag.String("mqtt-topic", "buswatch/snapshots", "MQTT topic carrying JSON snapshots")
		configPath = flag.String("config", "", "YAML config file for thresholds and refresh interval")
		exportPath = flag.String("export", "buswatch-export.json", "path the 'e' key writes the current view to")
	)
	flag.Parse()

	cfg := config.Default()
	var watcher *config.Watcher
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "buswatch: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded

		watcher, err = config.NewWatcher(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "buswatch: %v\n", err)
			os.Exit(1)
		}
	}

	src, err := buildSource(*filePath, *mqttBroker, *mqttTopic)
	if err != nil {
		fmt.Fprintf(os.Stderr, "buswatch: %v\n", err)
		os.Exit(1)
	}

	thresholds := data.Thresholds{
		PendingWarning:  cfg.Thresholds.PendingWarning,
		PendingCritical: cfg.Thresholds.PendingCritical,
		UnreadWarning:   cfg.Thresholds.UnreadWarning,
		UnreadCritical:  cfg.Thresholds.UnreadCritical,
	}

	app := tui.New(src, thresholds, cfg.Interval, *exportPath)
	if watcher != nil {
		watchCtx, cancel := context.WithCancel(context.Background())
		defer cancel()
		defer watcher.Stop()
		changes, errs := watcher.Watch(watchCtx)
		app.WatchConfig(changes, errs)
	}
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "buswatch: %v\n", err)
		os.Exit(1)
	}
}

func buildSource(filePath, mqttBroker, mqttTopic string) (source.Source, error) {
	switch {
	case mqttBroker != "":
		logger := logging.New(slog.Default())
		sub := source.NewMQTTSubscriber(mqttBroker, mqttTopic, "buswatch-tui", logger)
		// The subscription's forwarding goroutine runs for the process
		// lifetime; there is no separate shutdown path for the TUI source.
		return source.NewSubscriptionSource(context.Background(), sub, fmt.Sprintf("mqtt:%s", mqttBroker))
	case filePath != "":
		return source.NewFileSource(filePath), nil
	default:
		return nil, fmt.Errorf("one of -file or -mqtt-broker is required")
	}
}

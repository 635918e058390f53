package tui

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/lowhung/buswatch/tui/data"
)

type exportSummary struct {
	TotalModules int `json:"total_modules"`
	Healthy      int `json:"healthy"`
	Warning      int `json:"warning"`
	Critical     int `json:"critical"`
}

type exportModule struct {
	Name         string `json:"name"`
	TotalRead    uint64 `json:"total_read"`
	TotalWritten uint64 `json:"total_written"`
	Health       string `json:"health"`
}

type exportBottleneck struct {
	Module    string  `json:"module"`
	Topic     string  `json:"topic"`
	Status    string  `json:"status"`
	PendingFor *string `json:"pending_for,omitempty"`
}

type exportDoc struct {
	Summary     exportSummary      `json:"summary"`
	Modules     []exportModule     `json:"modules"`
	Bottlenecks []exportBottleneck `json:"bottlenecks"`
}

// buildExportDoc serializes md into the shape documented in §4.6/§6.
func buildExportDoc(md data.MonitorData) exportDoc {
	doc := exportDoc{Summary: exportSummary{TotalModules: len(md.Modules)}}
	for _, m := range md.Modules {
		switch m.Health {
		case data.StatusCritical:
			doc.Summary.Critical++
		case data.StatusWarning:
			doc.Summary.Warning++
		default:
			doc.Summary.Healthy++
		}
		doc.Modules = append(doc.Modules, exportModule{Name: m.Name, TotalRead: m.TotalRead, TotalWritten: m.TotalWritten, Health: m.Health.String()})

		for _, r := range m.Reads {
			if r.Status == data.StatusHealthy {
				continue
			}
			doc.Bottlenecks = append(doc.Bottlenecks, exportBottleneck{Module: m.Name, Topic: r.Topic, Status: r.Status.String(), PendingFor: formatPending(r.PendingFor)})
		}
		for _, w := range m.Writes {
			if w.Status == data.StatusHealthy {
				continue
			}
			doc.Bottlenecks = append(doc.Bottlenecks, exportBottleneck{Module: m.Name, Topic: w.Topic, Status: w.Status.String(), PendingFor: formatPending(w.PendingFor)})
		}
	}
	return doc
}

// exportJSON writes the current MonitorData to a.exportPath and flashes a
// transient status reflecting success or failure.
func (a *App) exportJSON() {
	doc := buildExportDoc(a.current)
	f, err := os.Create(a.exportPath)
	if err != nil {
		a.setStatus(fmt.Sprintf("export failed: %v", err))
		return
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		a.setStatus(fmt.Sprintf("export failed: %v", err))
		return
	}
	a.setStatus(fmt.Sprintf("exported to %s", a.exportPath))
}

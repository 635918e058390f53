// Package tui implements the bubbletea view engine (component H): a
// three-view console (Summary, Bottleneck, Flow) over a source.Source,
// following the Elm-architecture Model/Update/View triad.
package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lowhung/buswatch/config"
	"github.com/lowhung/buswatch/source"
	"github.com/lowhung/buswatch/tui/data"
)

// View identifies one of the three top-level screens.
type View int

const (
	ViewSummary View = iota
	ViewBottleneck
	ViewFlow
)

func (v View) String() string {
	switch v {
	case ViewBottleneck:
		return "Bottleneck"
	case ViewFlow:
		return "Flow"
	default:
		return "Summary"
	}
}

const (
	minWidth, minHeight             = 60, 12
	overlayMinWidth, overlayMinHeight = 50, 16
	statusMsgTTL                     = 3 * time.Second
)

// App is the bubbletea model for the buswatch TUI.
type App struct {
	source     source.Source
	history    *data.History
	thresholds data.Thresholds
	interval   time.Duration

	width, height int

	view           View
	detailOpen     bool
	helpOpen       bool
	selectedModule int
	selectedTopic  int

	sortCol map[View]int
	sortAsc map[View]bool

	filter       string
	filterActive bool

	statusMsg    string
	statusExpiry time.Time

	current   data.MonitorData
	flow      data.FlowGraph
	loadErr   error
	lastPoll  time.Time
	exportPath string

	configChanges <-chan config.Config
	configErrs    <-chan error
}

// WatchConfig wires a config.Watcher's channels into the program so that
// edits to the on-disk config file hot-reload thresholds and the poll
// interval without restarting the TUI (component K).
func (a *App) WatchConfig(changes <-chan config.Config, errs <-chan error) {
	a.configChanges = changes
	a.configErrs = errs
}

// New constructs an App ready to run under tea.NewProgram.
func New(src source.Source, thresholds data.Thresholds, interval time.Duration, exportPath string) *App {
	return &App{
		source:     src,
		history:    data.NewHistory(),
		thresholds: thresholds,
		interval:   interval,
		view:       ViewSummary,
		sortCol:    map[View]int{},
		sortAsc:    map[View]bool{ViewSummary: true, ViewBottleneck: true, ViewFlow: true},
		exportPath: exportPath,
	}
}

func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.pollCmd(), tickCmd(a.interval)}
	if a.configChanges != nil {
		cmds = append(cmds, a.waitConfigCmd())
	}
	return tea.Batch(cmds...)
}

// waitConfigCmd blocks on the next config change or error and re-issues
// itself from Update so the listener stays alive for the program's
// lifetime, mirroring pollCmd's self-resubmission.
func (a *App) waitConfigCmd() tea.Cmd {
	return func() tea.Msg {
		select {
		case cfg, ok := <-a.configChanges:
			if !ok {
				return nil
			}
			return configMsg{cfg: cfg}
		case err, ok := <-a.configErrs:
			if !ok {
				return nil
			}
			return configErrMsg{err: err}
		}
	}
}

type tickMsg time.Time

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// pollCmd asks the source for a new snapshot off the UI goroutine's hot
// path; Source.Poll is expected to be non-blocking per its contract.
func (a *App) pollCmd() tea.Cmd {
	return func() tea.Msg {
		snap, ok := a.source.Poll()
		if !ok {
			errMsg, hasErr := a.source.Error()
			if hasErr {
				return pollErrMsg{err: errMsg}
			}
			return pollNoneMsg{}
		}
		return pollSnapMsg{snap: snap}
	}
}

func (a *App) setStatus(msg string) {
	a.statusMsg = msg
	a.statusExpiry = time.Now().Add(statusMsgTTL)
}

func (a *App) statusVisible() string {
	if a.statusMsg == "" || time.Now().After(a.statusExpiry) {
		return ""
	}
	return a.statusMsg
}

// goBack implements the Esc/Backspace precedence: close overlays first,
// else fall back to the Summary view (§4.6). The three top-level views are
// siblings reachable by direct key, not a navigation hierarchy, so there is
// nothing between "overlay open" and "reset to Summary" to pop.
func (a *App) goBack() {
	if a.detailOpen {
		a.detailOpen = false
		return
	}
	if a.helpOpen {
		a.helpOpen = false
		return
	}
	a.view = ViewSummary
}

// visibleModules returns a.current.Modules filtered by a.filter and sorted
// per the active sort column/direction for the Summary view.
func (a *App) visibleModules() []data.ModuleData {
	out := make([]data.ModuleData, 0, len(a.current.Modules))
	needle := strings.ToLower(a.filter)
	for _, m := range a.current.Modules {
		if needle != "" && !strings.Contains(strings.ToLower(m.Name), needle) {
			continue
		}
		out = append(out, m)
	}
	sortModules(out, a.sortCol[ViewSummary], a.sortAsc[ViewSummary])
	return out
}

// bottleneckRow is one unhealthy (module, topic) pair for the Bottleneck view.
type bottleneckRow struct {
	module string
	topic  string
	kind   string // "R" or "W"
	status data.Status
	pending *string
	unread  uint64
}

func (a *App) visibleBottlenecks() []bottleneckRow {
	var out []bottleneckRow
	needle := strings.ToLower(a.filter)
	for _, m := range a.current.Modules {
		for _, r := range m.Reads {
			if r.Status == data.StatusHealthy {
				continue
			}
			if needle != "" && !strings.Contains(strings.ToLower(r.Topic), needle) {
				continue
			}
			out = append(out, bottleneckRow{module: m.Name, topic: r.Topic, kind: "R", status: r.Status, pending: formatPending(r.PendingFor), unread: r.Unread})
		}
		for _, w := range m.Writes {
			if w.Status == data.StatusHealthy {
				continue
			}
			if needle != "" && !strings.Contains(strings.ToLower(w.Topic), needle) {
				continue
			}
			out = append(out, bottleneckRow{module: m.Name, topic: w.Topic, kind: "W", status: w.Status, pending: formatPending(w.PendingFor)})
		}
	}
	sortBottlenecks(out, a.sortCol[ViewBottleneck], a.sortAsc[ViewBottleneck])
	return out
}

func clampSelection(sel, length int) int {
	if length == 0 {
		return 0
	}
	if sel < 0 {
		return 0
	}
	if sel >= length {
		return length - 1
	}
	return sel
}

package tui

import (
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lowhung/buswatch/config"
	"github.com/lowhung/buswatch/tui/data"
	"github.com/lowhung/buswatch/types"
)

type pollSnapMsg struct{ snap types.Snapshot }
type pollErrMsg struct{ err string }
type pollNoneMsg struct{}
type configMsg struct{ cfg config.Config }
type configErrMsg struct{ err error }

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		return a, nil

	case tickMsg:
		return a, tea.Batch(a.pollCmd(), tickCmd(a.interval))

	case pollSnapMsg:
		a.loadErr = nil
		a.lastPoll = time.Now()
		a.current = a.history.ObserveSnapshot(msg.snap, a.thresholds)
		a.flow = data.BuildFlowGraph(a.current)
		a.clampSelections()
		return a, nil

	case pollNoneMsg:
		return a, nil

	case pollErrMsg:
		a.loadErr = errors.New(msg.err)
		return a, nil

	case configMsg:
		a.thresholds = data.Thresholds{
			PendingWarning:  msg.cfg.Thresholds.PendingWarning,
			PendingCritical: msg.cfg.Thresholds.PendingCritical,
			UnreadWarning:   msg.cfg.Thresholds.UnreadWarning,
			UnreadCritical:  msg.cfg.Thresholds.UnreadCritical,
		}
		a.interval = msg.cfg.Interval
		a.setStatus("config reloaded")
		return a, a.waitConfigCmd()

	case configErrMsg:
		a.setStatus("config reload failed: " + msg.err.Error())
		return a, a.waitConfigCmd()

	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.MouseMsg:
		return a.handleMouse(msg)
	}
	return a, nil
}

func (a *App) clampSelections() {
	a.selectedModule = clampSelection(a.selectedModule, len(a.visibleModules()))
	a.selectedTopic = clampSelection(a.selectedTopic, len(a.visibleBottlenecks()))
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.helpOpen {
		a.helpOpen = false
		return a, nil
	}

	if a.filterActive {
		return a.handleFilterKey(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "1":
		a.view = ViewSummary
	case "2":
		a.view = ViewBottleneck
		a.selectedTopic = 0
	case "3":
		a.view = ViewFlow
	case "tab":
		a.view = (a.view + 1) % 3
	case "shift+tab":
		a.view = (a.view + 2) % 3
	case "right", "l":
		a.view = (a.view + 1) % 3
	case "left", "h":
		a.view = (a.view + 2) % 3
	case "enter":
		if a.view == ViewSummary || a.view == ViewBottleneck {
			a.detailOpen = true
		}
	case "esc", "backspace":
		a.goBack()
	case "up", "k":
		a.moveSelection(-1)
	case "down", "j":
		a.moveSelection(1)
	case "pgup":
		a.moveSelection(-10)
	case "pgdown":
		a.moveSelection(10)
	case "home":
		a.setSelection(0)
	case "end":
		a.setSelection(a.visibleLength() - 1)
	case "r":
		a.setStatus("reloading")
		return a, a.pollCmd()
	case "?":
		a.helpOpen = true
	case "s":
		a.sortCol[a.view] = (a.sortCol[a.view] + 1) % sortColumnCount(a.view)
	case "S":
		a.sortAsc[a.view] = !a.sortAsc[a.view]
	case "/":
		a.filterActive = true
	case "c":
		a.filter = ""
	case "e":
		a.exportJSON()
	}
	return a, nil
}

func (a *App) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		a.filterActive = false
	case tea.KeyEsc:
		a.filterActive = false
	case tea.KeyBackspace:
		if len(a.filter) == 0 {
			a.filterActive = false
			return a, nil
		}
		a.filter = a.filter[:len(a.filter)-1]
	case tea.KeyCtrlC:
		a.filter = ""
	case tea.KeyRunes:
		a.filter += string(msg.Runes)
	}
	return a, nil
}

func (a *App) visibleLength() int {
	if a.view == ViewBottleneck {
		return len(a.visibleBottlenecks())
	}
	return len(a.visibleModules())
}

func (a *App) moveSelection(delta int) {
	a.setSelection(a.currentSelection() + delta)
}

func (a *App) currentSelection() int {
	if a.view == ViewBottleneck {
		return a.selectedTopic
	}
	return a.selectedModule
}

func (a *App) setSelection(v int) {
	v = clampSelection(v, a.visibleLength())
	if a.view == ViewBottleneck {
		a.selectedTopic = v
		return
	}
	a.selectedModule = v
}

func sortColumnCount(v View) int {
	switch v {
	case ViewSummary:
		return 5 // Name, Reads, Writes, Pending, Status
	case ViewBottleneck:
		return 6 // Status, Module, Topic, Kind, Pending, Unread
	default:
		return 1
	}
}

func (a *App) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.MouseWheelUp:
		a.moveSelection(-1)
	case tea.MouseWheelDown:
		a.moveSelection(1)
	case tea.MouseLeft:
		if msg.Y == 0 {
			a.selectTabByColumn(msg.X)
			return a, nil
		}
		row := msg.Y - headerRows
		if row >= 0 {
			a.setSelection(row)
		}
	case tea.MouseRight:
		a.goBack()
	}
	return a, nil
}

// headerRows is the number of fixed lines above the content table in every
// view (tab row + title + column header).
const headerRows = 3

func (a *App) selectTabByColumn(x int) {
	band := a.width / 3
	if band <= 0 {
		return
	}
	switch x / band {
	case 0:
		a.view = ViewSummary
	case 1:
		a.view = ViewBottleneck
	default:
		a.view = ViewFlow
	}
}

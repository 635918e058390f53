package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/lowhung/buswatch/tui/data"
	"github.com/lowhung/buswatch/types"
)

var (
	styleTitle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	styleHeader    = lipgloss.NewStyle().Bold(true).Underline(true)
	styleHealthy   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleWarning   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	styleCritical  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	styleDim       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleSelected  = lipgloss.NewStyle().Background(lipgloss.Color("4")).Foreground(lipgloss.Color("0"))
	styleOverlay   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2)
	styleStatusBar = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
)

func statusStyle(s data.Status) lipgloss.Style {
	switch s {
	case data.StatusWarning:
		return styleWarning
	case data.StatusCritical:
		return styleCritical
	default:
		return styleHealthy
	}
}

func (a *App) View() string {
	if a.width < minWidth || a.height < minHeight {
		return lipgloss.Place(maxInt(a.width, 1), maxInt(a.height, 1), lipgloss.Center, lipgloss.Center, "terminal too small")
	}

	if a.helpOpen {
		return a.renderHelp()
	}

	var body string
	switch a.view {
	case ViewBottleneck:
		body = a.renderBottleneck()
	case ViewFlow:
		body = a.renderFlow()
	default:
		body = a.renderSummary()
	}

	if a.detailOpen {
		body = a.overlayDetail(body)
	}

	return lipgloss.JoinVertical(lipgloss.Left, a.renderTabs(), body, a.renderStatusLine())
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func (a *App) renderTabs() string {
	names := []string{"Summary", "Bottleneck", "Flow"}
	var parts []string
	for i, n := range names {
		label := fmt.Sprintf(" %d:%s ", i+1, n)
		if View(i) == a.view {
			parts = append(parts, styleSelected.Render(label))
		} else {
			parts = append(parts, styleDim.Render(label))
		}
	}
	return strings.Join(parts, "")
}

func (a *App) renderStatusLine() string {
	var parts []string
	if !a.lastPoll.IsZero() {
		parts = append(parts, fmt.Sprintf("updated %s ago", time.Since(a.lastPoll).Round(time.Second)))
	}
	if a.filterActive {
		parts = append(parts, fmt.Sprintf("filter: %s_", a.filter))
	} else if a.filter != "" {
		parts = append(parts, fmt.Sprintf("filter: %s", a.filter))
	}
	if a.loadErr != nil {
		parts = append(parts, fmt.Sprintf("source error: %v", a.loadErr))
	}
	if msg := a.statusVisible(); msg != "" {
		parts = append(parts, msg)
	}
	if len(parts) == 0 {
		parts = append(parts, "q quit · ? help · / filter · e export")
	}
	return styleStatusBar.Render(strings.Join(parts, "  |  "))
}

func formatCount(n uint64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1000:
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

func (a *App) renderSummary() string {
	mods := a.visibleModules()
	var b strings.Builder
	b.WriteString(styleTitle.Render("Summary") + "\n")
	b.WriteString(styleHeader.Render(fmt.Sprintf("%-20s %8s %8s %8s %10s %10s %10s %10s", "Module", "Reads", "Rate", "Writes", "Pending", "Unread", "Trend", "Status")) + "\n")

	for i, m := range mods {
		rate, ok := a.history.Rate(m.Name)
		rateStr := "-"
		if ok {
			rateStr = fmt.Sprintf("%.1f/s", rate)
		}
		pending, hasPending := modulePending(m)
		pendingStr := "-"
		if hasPending {
			pendingStr = types.FormatDuration(pending)
		}
		var unread uint64
		for _, r := range m.Reads {
			unread += r.Unread
		}
		spark := a.history.Sparkline(m.Name)
		line := fmt.Sprintf("%-20s %8s %8s %8s %10s %10s %10s %10s",
			truncate(m.Name, 20), formatCount(m.TotalRead), rateStr, formatCount(m.TotalWritten),
			pendingStr, formatCount(unread), spark, m.Health.String())
		if i == a.selectedModule {
			b.WriteString(styleSelected.Render(line))
		} else {
			b.WriteString(statusStyle(m.Health).Render(line))
		}
		b.WriteString("\n")
	}
	if len(mods) == 0 {
		b.WriteString(styleDim.Render("(no modules)") + "\n")
	}
	return b.String()
}

func (a *App) renderBottleneck() string {
	rows := a.visibleBottlenecks()
	var b strings.Builder
	b.WriteString(styleTitle.Render("Bottleneck") + "\n")
	b.WriteString(styleHeader.Render(fmt.Sprintf("%-10s %-20s %-20s %4s %10s %10s", "Status", "Module", "Topic", "Kind", "Pending", "Unread")) + "\n")

	if len(rows) == 0 {
		b.WriteString(styleHealthy.Render("all healthy") + "\n")
		return b.String()
	}

	for i, r := range rows {
		pending := "-"
		if r.pending != nil {
			pending = *r.pending
		}
		line := fmt.Sprintf("%-10s %-20s %-20s %4s %10s %10s", r.status.String(), truncate(r.module, 20), truncate(r.topic, 20), r.kind, pending, formatCount(r.unread))
		if i == a.selectedTopic {
			b.WriteString(styleSelected.Render(line))
		} else {
			b.WriteString(statusStyle(r.status).Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (a *App) renderFlow() string {
	mods := a.visibleModules()
	var b strings.Builder
	b.WriteString(styleTitle.Render("Flow") + "\n")

	colWidth := 4
	if len(mods) > 0 {
		colWidth = maxInt(4, (a.width-20)/len(mods))
	}

	header := strings.Repeat(" ", 20)
	for _, m := range mods {
		header += fmt.Sprintf("%*s", colWidth, truncate(m.Name, colWidth))
	}
	b.WriteString(styleHeader.Render(header) + "\n")

	for i, row := range mods {
		line := fmt.Sprintf("%-20s", truncate(row.Name, 20))
		for j, col := range mods {
			cell := "·"
			if i != j {
				cell = a.flowCell(row.Name, col.Name)
			}
			line += fmt.Sprintf("%*s", colWidth, cell)
		}
		if i == a.selectedModule {
			b.WriteString(styleSelected.Render(line))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	if a.selectedModule < len(mods) {
		b.WriteString("\n")
		b.WriteString(a.renderFlowDetails(mods[a.selectedModule].Name))
	}
	return b.String()
}

// flowCell classifies the relationship between modules from (row) and to
// (col): "→" if from produces something col consumes, "←" for the reverse,
// "↔" for both, blank otherwise.
func (a *App) flowCell(from, to string) string {
	produces := a.producesConsumedBy(from, to)
	consumes := a.producesConsumedBy(to, from)
	switch {
	case produces && consumes:
		return "↔"
	case produces:
		return "→"
	case consumes:
		return "←"
	default:
		return ""
	}
}

func (a *App) producesConsumedBy(producer, consumer string) bool {
	for t, producers := range a.flow.Producers {
		if !containsStr(producers, producer) {
			continue
		}
		if containsStr(a.flow.Consumers[t], consumer) {
			return true
		}
	}
	return false
}

func containsStr(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func (a *App) renderFlowDetails(module string) string {
	var in, out []string
	for t, consumers := range a.flow.Consumers {
		if containsStr(consumers, module) {
			in = append(in, t)
		}
	}
	for t, producers := range a.flow.Producers {
		if containsStr(producers, module) {
			out = append(out, t)
		}
	}
	return fmt.Sprintf("%s — incoming: %s | outgoing: %s", module, strings.Join(in, ", "), strings.Join(out, ", "))
}

func (a *App) overlayDetail(background string) string {
	w := maxInt(overlayMinWidth, a.width*95/100)
	h := maxInt(overlayMinHeight, a.height*90/100)
	if w > a.width {
		w = a.width
	}
	if h > a.height {
		h = a.height
	}

	mods := a.visibleModules()
	if a.selectedModule >= len(mods) {
		return background
	}
	m := mods[a.selectedModule]

	var b strings.Builder
	b.WriteString(styleTitle.Render(m.Name) + "\n")
	b.WriteString(fmt.Sprintf("reads=%d writes=%d health=%s\n\n", m.TotalRead, m.TotalWritten, m.Health.String()))
	b.WriteString(styleHeader.Render("Reads") + "\n")
	for _, r := range m.Reads {
		b.WriteString(fmt.Sprintf("  %-20s count=%-8d unread=%-8d status=%s\n", r.Topic, r.Read, r.Unread, r.Status.String()))
	}
	b.WriteString(styleHeader.Render("Writes") + "\n")
	for _, w := range m.Writes {
		b.WriteString(fmt.Sprintf("  %-20s count=%-8d status=%s\n", w.Topic, w.Written, w.Status.String()))
	}

	panel := styleOverlay.Width(w - 4).Height(h - 4).Render(b.String())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, panel)
}

func (a *App) renderHelp() string {
	help := `Keys:
  1/2/3        switch view (Summary/Bottleneck/Flow)
  Tab/Shift-Tab, left/h right/l   cycle views
  Enter        open detail overlay
  Esc/Backspace  close overlay / back to Summary
  up/k down/j, PgUp/PgDn, Home/End  move selection
  r            reload
  s / S        cycle sort column / toggle direction
  /            filter, c clears
  e            export JSON
  ?            toggle this help
  q            quit`
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, styleOverlay.Render(help))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}

package tui

import (
	"sort"

	"github.com/lowhung/buswatch/tui/data"
	"github.com/lowhung/buswatch/types"
)

func formatPending(m *types.Microseconds) *string {
	if m == nil {
		return nil
	}
	s := types.FormatDuration(*m)
	return &s
}

func modulePending(m data.ModuleData) (types.Microseconds, bool) {
	var max types.Microseconds
	found := false
	for _, r := range m.Reads {
		if r.PendingFor != nil && (!found || *r.PendingFor > max) {
			max = *r.PendingFor
			found = true
		}
	}
	for _, w := range m.Writes {
		if w.PendingFor != nil && (!found || *w.PendingFor > max) {
			max = *w.PendingFor
			found = true
		}
	}
	return max, found
}

// sortModules orders ms per the Summary view's cycle: Name, Reads, Writes,
// Pending, Status (§4.6). Ties break on module name ascending.
func sortModules(ms []data.ModuleData, col int, asc bool) {
	less := func(i, j int) bool {
		var cmp int
		switch col % 5 {
		case 1: // Reads
			cmp = cmpUint64(ms[i].TotalRead, ms[j].TotalRead)
		case 2: // Writes
			cmp = cmpUint64(ms[i].TotalWritten, ms[j].TotalWritten)
		case 3: // Pending
			pi, oki := modulePending(ms[i])
			pj, okj := modulePending(ms[j])
			cmp = cmpPending(pi, oki, pj, okj)
		case 4: // Status
			cmp = int(ms[i].Health) - int(ms[j].Health)
		default: // Name
			cmp = 0
		}
		if cmp == 0 {
			return ms[i].Name < ms[j].Name
		}
		if asc {
			return cmp < 0
		}
		return cmp > 0
	}
	sort.SliceStable(ms, less)
}

// sortBottlenecks orders rows per the Bottleneck view's cycle: Status,
// Module, Topic, Kind, Pending, Unread (§4.6). Ties break on (module, topic)
// ascending.
func sortBottlenecks(rows []bottleneckRow, col int, asc bool) {
	less := func(i, j int) bool {
		var cmp int
		switch col % 6 {
		case 1: // Module
			cmp = compareStrings(rows[i].module, rows[j].module)
		case 2: // Topic
			cmp = compareStrings(rows[i].topic, rows[j].topic)
		case 3: // Kind
			cmp = compareStrings(rows[i].kind, rows[j].kind)
		case 4: // Pending
			cmp = cmpOptStr(rows[i].pending, rows[j].pending)
		case 5: // Unread
			cmp = cmpUint64(rows[i].unread, rows[j].unread)
		default: // Status
			cmp = int(rows[i].status) - int(rows[j].status)
		}
		if cmp == 0 {
			if rows[i].module != rows[j].module {
				return rows[i].module < rows[j].module
			}
			return rows[i].topic < rows[j].topic
		}
		if asc {
			return cmp < 0
		}
		return cmp > 0
	}
	sort.SliceStable(rows, less)
}

func cmpUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpPending(a types.Microseconds, aok bool, b types.Microseconds, bok bool) int {
	if !aok && !bok {
		return 0
	}
	if !aok {
		return -1
	}
	if !bok {
		return 1
	}
	return cmpUint64(uint64(a), uint64(b))
}

func cmpOptStr(a, b *string) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}
	return compareStrings(*a, *b)
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

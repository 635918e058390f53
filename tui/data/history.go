package data

import "github.com/lowhung/buswatch/types"

// historyDepth is the number of past snapshots retained per module for
// sparkline and rate derivation (§4.5).
const historyDepth = 60

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// sample is one retained observation for a module's history ring buffer.
type sample struct {
	timestampMs uint64
	totalRead   uint64
}

// History tracks the last historyDepth samples per module across
// successive Derive calls, so Rate and Sparkline have something to diff
// against. It is not safe for concurrent use; callers own one History per
// TUI session.
type History struct {
	byModule map[string][]sample
}

// NewHistory returns an empty History.
func NewHistory() *History {
	return &History{byModule: map[string][]sample{}}
}

// Observe appends md's current totals to the ring buffer for md.Name,
// evicting the oldest sample once the buffer exceeds historyDepth.
func (h *History) Observe(timestampMs uint64, md ModuleData) {
	buf := h.byModule[md.Name]
	buf = append(buf, sample{timestampMs: timestampMs, totalRead: md.TotalRead})
	if len(buf) > historyDepth {
		buf = buf[len(buf)-historyDepth:]
	}
	h.byModule[md.Name] = buf
}

// Rate returns reads-per-second for module name, computed from the two
// most recent retained samples (mirrors original_source's
// data/history.rs::get_read_rate). It returns (0, false) when fewer than
// two samples exist or elapsed time is zero. Deliberately not averaged
// over the whole retention window — §9 warns against smoothing the rate
// with a moving average, since it would invalidate the §8 property tests.
func (h *History) Rate(name string) (float64, bool) {
	buf := h.byModule[name]
	if len(buf) < 2 {
		return 0, false
	}
	prev, last := buf[len(buf)-2], buf[len(buf)-1]
	if last.timestampMs <= prev.timestampMs {
		return 0, false
	}
	elapsedSec := float64(last.timestampMs-prev.timestampMs) / 1000
	if elapsedSec <= 0 {
		return 0, false
	}
	delta := last.totalRead - prev.totalRead
	return float64(delta) / elapsedSec, true
}

// sparkWidth is the number of deltas rendered (§4.6, glossary: "an
// 8-character Unicode rendering of the most recent 8 deltas of a series").
const sparkWidth = 8

// Sparkline renders the most recent sparkWidth deltas between consecutive
// retained samples for module name as an 8-level unicode bar string,
// normalized against the min/max delta in that window. Fewer than two
// samples yields an empty string; a flat series renders as a line of the
// lowest level.
func (h *History) Sparkline(name string) string {
	buf := h.byModule[name]
	if len(buf) < 2 {
		return ""
	}

	start := 0
	if len(buf) > sparkWidth+1 {
		start = len(buf) - (sparkWidth + 1)
	}
	window := buf[start:]

	deltas := make([]int64, 0, len(window)-1)
	for i := 1; i < len(window); i++ {
		deltas = append(deltas, int64(window[i].totalRead)-int64(window[i-1].totalRead))
	}

	min, max := deltas[0], deltas[0]
	for _, d := range deltas {
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}

	out := make([]rune, len(deltas))
	for i, d := range deltas {
		if max == min {
			out[i] = sparkLevels[0]
			continue
		}
		norm := float64(d-min) / float64(max-min)
		level := int(norm * float64(len(sparkLevels)-1))
		out[i] = sparkLevels[level]
	}
	return string(out)
}

// Reset drops all retained history, e.g. after a module is unregistered
// and later re-registered with a fresh series (§3 I8).
func (h *History) Reset(name string) {
	delete(h.byModule, name)
}

// ObserveSnapshot is a convenience wrapper that derives md for every
// module in snap and observes each one.
func (h *History) ObserveSnapshot(snap types.Snapshot, thresholds Thresholds) MonitorData {
	md := Derive(snap, thresholds)
	for _, m := range md.Modules {
		h.Observe(md.TimestampMs, m)
	}
	return md
}

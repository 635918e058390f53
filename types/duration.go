package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Microseconds is the canonical on-the-wire duration unit (§3). It converts
// to/from a platform time.Duration losslessly within the range representable
// by a uint64 count of microseconds.
type Microseconds uint64

// FromDuration converts a time.Duration to Microseconds, truncating any
// sub-microsecond remainder.
func FromDuration(d time.Duration) Microseconds {
	if d <= 0 {
		return 0
	}
	return Microseconds(d / time.Microsecond)
}

// ToDuration converts back to a time.Duration.
func (m Microseconds) ToDuration() time.Duration {
	return time.Duration(m) * time.Microsecond
}

// durationUnits lists suffix -> microseconds-per-unit, most specific first so
// that "ms" is matched before the generic "s" suffix it also ends with.
var durationUnits = []struct {
	suffix     string
	microsPer  float64
}{
	{"ns", 0.001},
	{"µs", 1},
	{"us", 1},
	{"ms", 1000},
	{"s", 1_000_000},
}

// ParseDuration parses a human duration string such as "29.99s", "988.82ms",
// "16.958µs", "500us", "0ns", or a bare integer (interpreted as whole
// microseconds) into Microseconds. Values round to the nearest representable
// microsecond.
func ParseDuration(s string) (Microseconds, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, fmt.Errorf("buswatch: empty duration")
	}
	for _, u := range durationUnits {
		if val, ok := strings.CutSuffix(trimmed, u.suffix); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
			if err != nil {
				return 0, fmt.Errorf("buswatch: invalid duration %q: %w", s, err)
			}
			if f < 0 {
				return 0, fmt.Errorf("buswatch: negative duration %q", s)
			}
			return Microseconds(math.Round(f * u.microsPer)), nil
		}
	}
	// Bare integer: whole microseconds.
	n, err := strconv.ParseUint(trimmed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("buswatch: unknown duration format %q", s)
	}
	return Microseconds(n), nil
}

// FormatDuration renders Microseconds the way the TUI and logs display
// durations: exact microseconds below 1ms, two decimals of milliseconds
// below 1s, two decimals of seconds otherwise.
func FormatDuration(m Microseconds) string {
	if m == 0 {
		return "0µs"
	}
	if m < 1000 {
		return fmt.Sprintf("%dµs", uint64(m))
	}
	if m < 1_000_000 {
		return fmt.Sprintf("%.2fms", float64(m)/1000)
	}
	return fmt.Sprintf("%.2fs", float64(m)/1_000_000)
}

package types

// Snapshot is a point-in-time collection of module metrics with a version
// and wall-clock timestamp (§3). Equality is structural; two Snapshots built
// from the same inputs compare equal via reflect.DeepEqual / testify's
// require.Equal.
type Snapshot struct {
	Version     SchemaVersion            `json:"version"`
	TimestampMs uint64                   `json:"timestamp_ms"`
	Modules     map[string]ModuleMetrics `json:"modules"`
}

// NewSnapshot returns an empty, ready-to-populate Snapshot stamped with the
// current schema version.
func NewSnapshot(timestampMs uint64) Snapshot {
	return Snapshot{
		Version:     CurrentVersion(),
		TimestampMs: timestampMs,
		Modules:     map[string]ModuleMetrics{},
	}
}

// Clone returns a deep copy; mutating the clone's maps never affects the
// original. Cloning is cheap relative to typical collection frequency but
// intentionally not required to be O(1) (§3).
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{Version: s.Version, TimestampMs: s.TimestampMs, Modules: make(map[string]ModuleMetrics, len(s.Modules))}
	for name, mm := range s.Modules {
		out.Modules[name] = mm.Clone()
	}
	return out
}

// Package types defines the wire-level snapshot schema shared by the
// instrumentation core, the emitters, and every snapshot source.
package types

import "fmt"

// SchemaVersion identifies the shape of a Snapshot on the wire.
type SchemaVersion struct {
	Major uint32 `json:"major"`
	Minor uint32 `json:"minor"`
}

const (
	currentMajor = 1
	currentMinor = 0
)

// CurrentVersion returns the library's compile-time schema version.
func CurrentVersion() SchemaVersion {
	return SchemaVersion{Major: currentMajor, Minor: currentMinor}
}

// IsCompatible reports whether v can be consumed by code built against the
// current schema version: same major, any minor.
func (v SchemaVersion) IsCompatible() bool {
	return v.Major == currentMajor
}

func (v SchemaVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

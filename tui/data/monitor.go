// Package data derives the TUI's view-ready MonitorData from a raw
// types.Snapshot (component G, §4.5): health classification, per-module
// sort order, and history-backed rate/trend, none of which the wire
// snapshot itself carries.
package data

import (
	"sort"
	"time"

	"github.com/lowhung/buswatch/types"
)

// Status is a topic or module's health classification.
type Status int

const (
	StatusHealthy Status = iota
	StatusWarning
	StatusCritical
)

func (s Status) String() string {
	switch s {
	case StatusWarning:
		return "warning"
	case StatusCritical:
		return "critical"
	default:
		return "healthy"
	}
}

// worse returns the more severe of a and b.
func worse(a, b Status) Status {
	if b > a {
		return b
	}
	return a
}

// Thresholds configures health classification (§4.5 defaults).
type Thresholds struct {
	PendingWarning  time.Duration
	PendingCritical time.Duration
	UnreadWarning   uint64
	UnreadCritical  uint64
}

// DefaultThresholds returns the spec's documented defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		PendingWarning:  time.Second,
		PendingCritical: 10 * time.Second,
		UnreadWarning:   1000,
		UnreadCritical:  5000,
	}
}

func (t Thresholds) pendingStatus(pending *types.Microseconds) Status {
	if pending == nil {
		return StatusHealthy
	}
	d := pending.ToDuration()
	switch {
	case d >= t.PendingCritical:
		return StatusCritical
	case d >= t.PendingWarning:
		return StatusWarning
	default:
		return StatusHealthy
	}
}

func (t Thresholds) unreadStatus(unread uint64) Status {
	switch {
	case unread >= t.UnreadCritical:
		return StatusCritical
	case unread >= t.UnreadWarning:
		return StatusWarning
	default:
		return StatusHealthy
	}
}

// TopicRead is one read series, classified against Thresholds.
type TopicRead struct {
	Topic      string
	Read       uint64
	PendingFor *types.Microseconds
	Unread     uint64
	Status     Status
}

// TopicWrite is one write series, classified against Thresholds.
type TopicWrite struct {
	Topic      string
	Written    uint64
	PendingFor *types.Microseconds
	Status     Status
}

// ModuleData is one module's view-ready state.
type ModuleData struct {
	Name         string
	Reads        []TopicRead
	Writes       []TopicWrite
	TotalRead    uint64
	TotalWritten uint64
	Health       Status
}

// MonitorData is the TUI's full view-ready state for one snapshot.
type MonitorData struct {
	Modules     []ModuleData
	TimestampMs uint64
}

// Derive builds MonitorData from snap per the rules in spec.md §4.5: topics
// within a module sorted by status descending then topic ascending, modules
// sorted by health descending then name ascending.
func Derive(snap types.Snapshot, thresholds Thresholds) MonitorData {
	out := MonitorData{TimestampMs: snap.TimestampMs}

	for name, mm := range snap.Modules {
		md := ModuleData{Name: name}

		for topic, rm := range mm.Reads {
			unread := uint64(0)
			if rm.Backlog != nil {
				unread = *rm.Backlog
			}
			status := worse(thresholds.pendingStatus(rm.Pending), thresholds.unreadStatus(unread))
			md.Reads = append(md.Reads, TopicRead{
				Topic:      topic,
				Read:       rm.Count,
				PendingFor: rm.Pending,
				Unread:     unread,
				Status:     status,
			})
			md.TotalRead += rm.Count
			md.Health = worse(md.Health, status)
		}

		for topic, wm := range mm.Writes {
			status := thresholds.pendingStatus(wm.Pending)
			md.Writes = append(md.Writes, TopicWrite{
				Topic:      topic,
				Written:    wm.Count,
				PendingFor: wm.Pending,
				Status:     status,
			})
			md.TotalWritten += wm.Count
			md.Health = worse(md.Health, status)
		}

		sort.Slice(md.Reads, func(i, j int) bool {
			if md.Reads[i].Status != md.Reads[j].Status {
				return md.Reads[i].Status > md.Reads[j].Status
			}
			return md.Reads[i].Topic < md.Reads[j].Topic
		})
		sort.Slice(md.Writes, func(i, j int) bool {
			if md.Writes[i].Status != md.Writes[j].Status {
				return md.Writes[i].Status > md.Writes[j].Status
			}
			return md.Writes[i].Topic < md.Writes[j].Topic
		})

		out.Modules = append(out.Modules, md)
	}

	sort.Slice(out.Modules, func(i, j int) bool {
		if out.Modules[i].Health != out.Modules[j].Health {
			return out.Modules[i].Health > out.Modules[j].Health
		}
		return out.Modules[i].Name < out.Modules[j].Name
	})

	return out
}

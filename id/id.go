// Package id provides the TypeID-backed identifiers chime stamps on
// execution records and scheduler instances.
//
// Identifiers are K-sortable (UUIDv7-based), globally unique, and render
// as "prefix_suffix" strings: run IDs carry the "run" prefix, scheduler
// instance IDs carry "sched". The two kinds are distinct Go types, so a
// run ID cannot be handed to something expecting a scheduler ID.
package id

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

const (
	runPrefix       = "run"
	schedulerPrefix = "sched"
)

// core is the TypeID wrapper shared by both identifier kinds. The valid
// flag distinguishes the zero value from a generated identifier.
type core struct {
	tid   typeid.TypeID
	valid bool
}

func generate(prefix string) core {
	tid, err := typeid.Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("id: invalid prefix %q: %v", prefix, err))
	}
	return core{tid: tid, valid: true}
}

func parse(s, prefix string) (core, error) {
	if s == "" {
		return core{}, fmt.Errorf("id: parse %q: empty string", s)
	}
	tid, err := typeid.Parse(s)
	if err != nil {
		return core{}, fmt.Errorf("id: parse %q: %w", s, err)
	}
	if tid.Prefix() != prefix {
		return core{}, fmt.Errorf("id: parse %q: expected prefix %q, got %q", s, prefix, tid.Prefix())
	}
	return core{tid: tid, valid: true}, nil
}

// String returns the "prefix_suffix" form, or "" for the zero value.
func (c core) String() string {
	if !c.valid {
		return ""
	}
	return c.tid.String()
}

// IsNil reports whether the identifier is the zero value.
func (c core) IsNil() bool { return !c.valid }

// MarshalText implements encoding.TextMarshaler. The zero value
// marshals to an empty string.
func (c core) MarshalText() ([]byte, error) {
	if !c.valid {
		return []byte{}, nil
	}
	return []byte(c.tid.String()), nil
}

func (c *core) unmarshalText(data []byte, prefix string) error {
	if len(data) == 0 {
		*c = core{}
		return nil
	}
	parsed, err := parse(string(data), prefix)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ──────────────────────────────────────────────────
// RunID
// ──────────────────────────────────────────────────

// RunID identifies a single execution attempt. The executor stamps a
// fresh one on every attempt record, retries included, so log lines and
// history entries from the same fire remain distinguishable.
type RunID struct{ core }

// NewRunID generates a new unique run identifier.
func NewRunID() RunID { return RunID{generate(runPrefix)} }

// ParseRunID parses a "run_..." string into a RunID.
func ParseRunID(s string) (RunID, error) {
	c, err := parse(s, runPrefix)
	if err != nil {
		return RunID{}, err
	}
	return RunID{c}, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *RunID) UnmarshalText(data []byte) error {
	return r.core.unmarshalText(data, runPrefix)
}

// ──────────────────────────────────────────────────
// SchedulerID
// ──────────────────────────────────────────────────

// SchedulerID identifies one scheduler instance for the lifetime of its
// process. It appears on scheduler-level log lines so output from
// concurrently running instances can be told apart.
type SchedulerID struct{ core }

// NewSchedulerID generates a new unique scheduler instance identifier.
func NewSchedulerID() SchedulerID { return SchedulerID{generate(schedulerPrefix)} }

// ParseSchedulerID parses a "sched_..." string into a SchedulerID.
func ParseSchedulerID(s string) (SchedulerID, error) {
	c, err := parse(s, schedulerPrefix)
	if err != nil {
		return SchedulerID{}, err
	}
	return SchedulerID{c}, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *SchedulerID) UnmarshalText(data []byte) error {
	return s.core.unmarshalText(data, schedulerPrefix)
}

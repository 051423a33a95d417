package id_test

import (
	"encoding"
	"encoding/json"
	"strings"
	"testing"

	"github.com/xraph/chime/id"
)

var (
	_ encoding.TextMarshaler   = id.RunID{}
	_ encoding.TextUnmarshaler = (*id.RunID)(nil)
	_ encoding.TextMarshaler   = id.SchedulerID{}
	_ encoding.TextUnmarshaler = (*id.SchedulerID)(nil)
)

func TestNewRunID(t *testing.T) {
	r := id.NewRunID()
	if r.IsNil() {
		t.Fatal("NewRunID returned the zero value")
	}
	if !strings.HasPrefix(r.String(), "run_") {
		t.Errorf("expected run_ prefix, got %q", r.String())
	}
}

func TestNewSchedulerID(t *testing.T) {
	s := id.NewSchedulerID()
	if s.IsNil() {
		t.Fatal("NewSchedulerID returned the zero value")
	}
	if !strings.HasPrefix(s.String(), "sched_") {
		t.Errorf("expected sched_ prefix, got %q", s.String())
	}
}

func TestParseRunID_RoundTrip(t *testing.T) {
	orig := id.NewRunID()
	parsed, err := id.ParseRunID(orig.String())
	if err != nil {
		t.Fatalf("ParseRunID(%q): %v", orig.String(), err)
	}
	if parsed.String() != orig.String() {
		t.Errorf("round-trip mismatch: %q != %q", parsed.String(), orig.String())
	}
}

func TestParseRunID_RejectsOtherKinds(t *testing.T) {
	sched := id.NewSchedulerID().String()
	if _, err := id.ParseRunID(sched); err == nil {
		t.Errorf("ParseRunID accepted %q", sched)
	}

	run := id.NewRunID().String()
	if _, err := id.ParseSchedulerID(run); err == nil {
		t.Errorf("ParseSchedulerID accepted %q", run)
	}
}

func TestParseRunID_BadInput(t *testing.T) {
	for _, in := range []string{"", "run", "run_", "not an id", "run_!!!!"} {
		if _, err := id.ParseRunID(in); err == nil {
			t.Errorf("ParseRunID(%q): expected error", in)
		}
	}
}

func TestZeroValue(t *testing.T) {
	var r id.RunID
	if !r.IsNil() {
		t.Error("zero RunID should be nil")
	}
	if r.String() != "" {
		t.Errorf("zero RunID String() = %q, want empty", r.String())
	}
}

func TestTextRoundTrip(t *testing.T) {
	orig := id.NewRunID()
	data, err := orig.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}

	var restored id.RunID
	if err := restored.UnmarshalText(data); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if restored.String() != orig.String() {
		t.Errorf("round-trip mismatch: %q != %q", restored.String(), orig.String())
	}
}

func TestTextRoundTrip_Zero(t *testing.T) {
	var zero id.RunID
	data, err := zero.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	if len(data) != 0 {
		t.Fatalf("zero value marshaled to %q, want empty", data)
	}

	var restored id.RunID
	if err := restored.UnmarshalText(data); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if !restored.IsNil() {
		t.Error("expected zero value after empty round-trip")
	}
}

// Execution records carry their RunID through json-tagged struct
// fields, so the identifier has to survive a JSON round-trip as a
// plain string.
func TestJSONRoundTrip(t *testing.T) {
	type record struct {
		ID id.RunID `json:"id"`
	}

	orig := record{ID: id.NewRunID()}
	data, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if want := `{"id":"` + orig.ID.String() + `"}`; string(data) != want {
		t.Errorf("marshaled to %s, want %s", data, want)
	}

	var restored record
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if restored.ID.String() != orig.ID.String() {
		t.Errorf("round-trip mismatch: %q != %q", restored.ID.String(), orig.ID.String())
	}
}

func TestUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		s := id.NewRunID().String()
		if seen[s] {
			t.Fatalf("duplicate run ID generated: %q", s)
		}
		seen[s] = true
	}
}

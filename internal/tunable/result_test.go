package tunable

import (
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
)

func TestResultEntrySentinels(t *testing.T) {
	t.Parallel()

	if !Null().IsNull() {
		t.Fatalf("Null should be the unset sentinel")
	}
	if Default().IsNull() {
		t.Fatalf("Default should not be unset")
	}
	if !Null().Equal(Null()) || !Default().Equal(Default()) {
		t.Fatalf("sentinels should equal themselves")
	}
	if Null().Equal(Default()) {
		t.Fatalf("distinct sentinels should not be equal")
	}
}

func TestResultEntryEqualIgnoresDuration(t *testing.T) {
	t.Parallel()

	a := Measured("tiled", time.Millisecond)
	b := Measured("tiled", 2*time.Millisecond)
	if !a.Equal(b) {
		t.Fatalf("equality should be by candidate name, not duration")
	}
	if a.Equal(Measured("naive", time.Millisecond)) {
		t.Fatalf("different candidate names should not be equal")
	}
}

func TestResultEntryString(t *testing.T) {
	t.Parallel()

	if s := Measured("tiled", time.Millisecond).String(); !strings.Contains(s, "tiled") {
		t.Fatalf("String should name the candidate: %q", s)
	}
	if s := Default().String(); s != "default" {
		t.Fatalf("default String: got %q", s)
	}
	if s := Null().String(); s != "unset" {
		t.Fatalf("unset String: got %q", s)
	}
}

func TestResultEntryJSON(t *testing.T) {
	t.Parallel()

	entry := Measured("parallel", 42*time.Microsecond)
	data, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"measured"`) {
		t.Fatalf("expected kind encoded as string, got: %s", data)
	}

	var decoded ResultEntry
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !decoded.Equal(entry) || decoded.Duration != entry.Duration {
		t.Fatalf("round trip mismatch: got %+v want %+v", decoded, entry)
	}

	var bad ResultEntry
	if err := json.Unmarshal([]byte(`{"kind":"bogus"}`), &bad); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

package tunable

import (
	"fmt"
	"math"
	"time"

	json "github.com/goccy/go-json"
)

// ResultKind distinguishes the two sentinels from a real measurement.
type ResultKind int

const (
	// ResultUnset means no tuning decision exists for the key.
	ResultUnset ResultKind = iota
	// ResultDefault instructs dispatch to use the first-registered candidate
	// without measurement.
	ResultDefault
	// ResultMeasured names an empirically selected candidate.
	ResultMeasured
)

func (k ResultKind) String() string {
	switch k {
	case ResultUnset:
		return "unset"
	case ResultDefault:
		return "default"
	case ResultMeasured:
		return "measured"
	default:
		return fmt.Sprintf("ResultKind(%d)", int(k))
	}
}

func (k ResultKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *ResultKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "unset":
		*k = ResultUnset
	case "default":
		*k = ResultDefault
	case "measured":
		*k = ResultMeasured
	default:
		return fmt.Errorf("tunable: unknown result kind %q", s)
	}
	return nil
}

// durationInfinity marks a search where no candidate qualified.
const durationInfinity = time.Duration(math.MaxInt64)

// ResultEntry is an immutable tuning decision: either a sentinel or a
// candidate name with its measured mean per-call duration.
type ResultEntry struct {
	Kind     ResultKind    `json:"kind"`
	Name     string        `json:"name,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
}

// Null returns the no-decision sentinel.
func Null() ResultEntry { return ResultEntry{Kind: ResultUnset} }

// Default returns the use-the-reference-candidate sentinel.
func Default() ResultEntry { return ResultEntry{Kind: ResultDefault} }

// Measured returns an entry naming an empirically selected candidate.
func Measured(name string, d time.Duration) ResultEntry {
	return ResultEntry{Kind: ResultMeasured, Name: name, Duration: d}
}

// IsNull reports whether the entry is the no-decision sentinel.
func (e ResultEntry) IsNull() bool { return e.Kind == ResultUnset }

// Equal compares entries by kind and candidate name. The measured duration
// does not participate.
func (e ResultEntry) Equal(other ResultEntry) bool {
	return e.Kind == other.Kind && e.Name == other.Name
}

func (e ResultEntry) String() string {
	switch e.Kind {
	case ResultMeasured:
		if e.Duration == durationInfinity {
			return fmt.Sprintf("%s (unmeasured)", e.Name)
		}
		return fmt.Sprintf("%s (%s/call)", e.Name, e.Duration)
	default:
		return e.Kind.String()
	}
}

package overlap

import "fmt"

// Status tags how an offset was obtained.
type Status int

const (
	// StatusMatched means a candidate met both the tolerance and the
	// minimum overlap.
	StatusMatched Status = iota
	// StatusFallback means no candidate qualified and the expected offset
	// was substituted.
	StatusFallback
)

func (s Status) String() string {
	switch s {
	case StatusMatched:
		return "matched"
	case StatusFallback:
		return "fallback"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// MarshalText lets reports and tables print the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Result is the offset chosen for frames Pair and Pair+1.
//
// For matched results Score is the difference at Offset. For fallbacks Offset
// is the expected offset, and Candidate/Score describe the best rejected
// candidate so the log can say how far off it was.
type Result struct {
	Pair      int     `json:"pair" yaml:"pair" toml:"pair"`
	Offset    int     `json:"offset" yaml:"offset" toml:"offset"`
	Score     float64 `json:"score" yaml:"score" toml:"score"`
	Status    Status  `json:"status" yaml:"status" toml:"status"`
	Candidate int     `json:"candidate,omitempty" yaml:"candidate,omitempty" toml:"candidate,omitempty"`
}

// Matched builds a matched result.
func Matched(pair, offset int, score float64) Result {
	return Result{Pair: pair, Offset: offset, Score: score, Status: StatusMatched}
}

// Fallback builds a degraded result that substitutes expected for the
// unknown offset.
func Fallback(pair, expected, candidate int, score float64) Result {
	return Result{Pair: pair, Offset: expected, Score: score, Status: StatusFallback, Candidate: candidate}
}

// IsFallback reports whether the result is degraded.
func (r Result) IsFallback() bool {
	return r.Status == StatusFallback
}

// Results is index-aligned with frame pairs: Results[i] joins frame i and i+1.
type Results []Result

// Offsets returns the offsets the assembler consumes.
func (rs Results) Offsets() []int {
	out := make([]int, len(rs))
	for i, r := range rs {
		out[i] = r.Offset
	}
	return out
}

// Fallbacks returns the pair indices that used the expected offset.
func (rs Results) Fallbacks() []int {
	var out []int
	for _, r := range rs {
		if r.IsFallback() {
			out = append(out, r.Pair)
		}
	}
	return out
}

// UnmarshalText parses the names produced by MarshalText.
func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "matched":
		*s = StatusMatched
	case "fallback":
		*s = StatusFallback
	default:
		return fmt.Errorf("unknown overlap status %q", text)
	}
	return nil
}

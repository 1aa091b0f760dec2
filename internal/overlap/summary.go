package overlap

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// outlierSigma is how many standard deviations a matched offset may sit from
// the mean before it is reported as suspicious.
const outlierSigma = 3.0

// Summary condenses a Results slice for reporting.
type Summary struct {
	Pairs         int     `json:"pairs" yaml:"pairs" toml:"pairs"`
	Matched       int     `json:"matched" yaml:"matched" toml:"matched"`
	Fallbacks     int     `json:"fallbacks" yaml:"fallbacks" toml:"fallbacks"`
	MeanOffset    float64 `json:"mean_offset" yaml:"mean_offset" toml:"mean_offset"`
	StdDevOffset  float64 `json:"stddev_offset" yaml:"stddev_offset" toml:"stddev_offset"`
	FallbackPairs []int   `json:"fallback_pairs,omitempty" yaml:"fallback_pairs,omitempty" toml:"fallback_pairs,omitempty"`
	OutlierPairs  []int   `json:"outlier_pairs,omitempty" yaml:"outlier_pairs,omitempty" toml:"outlier_pairs,omitempty"`
}

// Summarize counts matched and fallback pairs and flags matched offsets that
// deviate strongly from the rest. Scrolling is assumed roughly uniform, so an
// outlier usually marks a false match on repetitive content.
func Summarize(rs Results) Summary {
	sum := Summary{Pairs: len(rs), FallbackPairs: rs.Fallbacks()}
	sum.Fallbacks = len(sum.FallbackPairs)
	sum.Matched = sum.Pairs - sum.Fallbacks

	offsets := make([]float64, 0, sum.Matched)
	for _, r := range rs {
		if !r.IsFallback() {
			offsets = append(offsets, float64(r.Offset))
		}
	}
	switch len(offsets) {
	case 0:
		return sum
	case 1:
		sum.MeanOffset = offsets[0]
		return sum
	}
	sum.MeanOffset, sum.StdDevOffset = stat.MeanStdDev(offsets, nil)
	if sum.StdDevOffset == 0 || math.IsNaN(sum.StdDevOffset) {
		return sum
	}
	for _, r := range rs {
		if r.IsFallback() {
			continue
		}
		if math.Abs(float64(r.Offset)-sum.MeanOffset) > outlierSigma*sum.StdDevOffset {
			sum.OutlierPairs = append(sum.OutlierPairs, r.Pair)
		}
	}
	return sum
}

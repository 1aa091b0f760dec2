package overlap

// searcher finds the best overlap between two planes of rows*rowLen bytes.
type searcher struct {
	rows     int
	rowLen   int
	lo       int
	expected int
}

// search returns the overlap with the lowest mean absolute difference among
// lo..rows and that difference. Candidates are visited by distance from the
// expected offset, larger overlap first on equal distance, and only a strictly
// lower score replaces the incumbent, so ties resolve toward the expected
// offset.
func (s searcher) search(prev, next []uint8) (int, float64) {
	best := -1
	var bestSum, bestN uint64

	s.visit(func(o int) bool {
		n := uint64(o * s.rowLen)
		sum, ok := s.diff(prev, next, o, n, best >= 0, bestSum, bestN)
		if !ok {
			return true
		}
		if best < 0 || sum*bestN < bestSum*n {
			best, bestSum, bestN = o, sum, n
		}
		return bestSum != 0
	})

	return best, float64(bestSum) / float64(bestN)
}

// diff sums |prev - next| over the bottom o rows of prev against the top o
// rows of next. When bounded, it stops early and reports false once the
// partial sum proves the candidate cannot beat bestSum/bestN.
func (s searcher) diff(prev, next []uint8, o int, n uint64, bounded bool, bestSum, bestN uint64) (uint64, bool) {
	a := prev[(s.rows-o)*s.rowLen : s.rows*s.rowLen]
	b := next[:o*s.rowLen]
	limit := bestSum * n
	var sum uint64
	for r := 0; r < o; r++ {
		start := r * s.rowLen
		sum += sumAbsDiff(a[start:start+s.rowLen], b[start:start+s.rowLen])
		if bounded && sum*bestN >= limit {
			return sum, false
		}
	}
	return sum, true
}

// visit calls fn for every candidate in lo..rows ordered by distance from the
// expected offset until fn returns false.
func (s searcher) visit(fn func(o int) bool) {
	center := s.clamp(s.expected)
	if !fn(center) {
		return
	}
	for d := 1; ; d++ {
		above, below := center+d, center-d
		if above > s.rows && below < s.lo {
			return
		}
		if above <= s.rows && !fn(above) {
			return
		}
		if below >= s.lo && !fn(below) {
			return
		}
	}
}

func (s searcher) clamp(o int) int {
	return min(max(o, s.lo), s.rows)
}

// sumAbsDiff returns the L1 distance between two equal-length byte slices.
func sumAbsDiff(a, b []uint8) uint64 {
	b = b[:len(a)]
	var s0, s1, s2, s3 uint32
	i := 0
	for ; i+4 <= len(a); i += 4 {
		s0 += absDiff(a[i], b[i])
		s1 += absDiff(a[i+1], b[i+1])
		s2 += absDiff(a[i+2], b[i+2])
		s3 += absDiff(a[i+3], b[i+3])
	}
	for ; i < len(a); i++ {
		s0 += absDiff(a[i], b[i])
	}
	return uint64(s0) + uint64(s1) + uint64(s2) + uint64(s3)
}

func absDiff(x, y uint8) uint32 {
	if x > y {
		return uint32(x - y)
	}
	return uint32(y - x)
}

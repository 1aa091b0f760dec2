package overlap_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"scrollsplice/internal/frames"
	"scrollsplice/internal/overlap"
	"scrollsplice/internal/testsupport"
)

func TestEstimateExampleScenario(t *testing.T) {
	scroll := testsupport.NewScroll(t, testsupport.ScrollOptions{
		Width: 10, Height: 100, Overlaps: []int{20, 30}, Seed: 1,
	})
	results, err := overlap.Estimate(context.Background(), scroll.Frames, overlap.Params{
		ExpectedOffset: 25,
		MinOverlap:     10,
		ApproxDiff:     0,
	})
	if err != nil {
		t.Fatalf("Estimate returned error: %v", err)
	}
	want := overlap.Results{
		overlap.Matched(0, 20, 0),
		overlap.Matched(1, 30, 0),
	}
	if diff := cmp.Diff(want, results); diff != "" {
		t.Fatalf("unexpected results (-want +got):\n%s", diff)
	}
}

func TestEstimateRecoversExactOverlaps(t *testing.T) {
	cases := []struct {
		name       string
		cropTop    int
		cropBottom int
		overlaps   []int
		expected   int
		minOverlap int
	}{
		{"no crop", 0, 0, []int{12, 40, 33, 5}, 20, 5},
		{"header and footer", 8, 6, []int{15, 17, 22}, 18, 10},
		{"expected far off", 4, 0, []int{50, 51}, 11, 1},
		{"full overlap", 0, 0, []int{60}, 30, 10},
	}
	for i, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			scroll := testsupport.NewScroll(t, testsupport.ScrollOptions{
				Width: 16, Height: 60 + tc.cropTop + tc.cropBottom,
				CropTop: tc.cropTop, CropBottom: tc.cropBottom,
				Overlaps: tc.overlaps, Seed: uint64(10 + i),
			})
			results, err := overlap.Estimate(context.Background(), scroll.Frames, overlap.Params{
				Crop:           frames.CropBand{Top: tc.cropTop, Bottom: tc.cropBottom},
				ExpectedOffset: tc.expected,
				MinOverlap:     tc.minOverlap,
				ApproxDiff:     0,
			})
			if err != nil {
				t.Fatalf("Estimate returned error: %v", err)
			}
			if diff := cmp.Diff(tc.overlaps, results.Offsets()); diff != "" {
				t.Fatalf("unexpected offsets (-want +got):\n%s", diff)
			}
			if got := results.Fallbacks(); len(got) != 0 {
				t.Fatalf("expected no fallbacks, got %v", got)
			}
		})
	}
}

func TestEstimateFallsBackWhenNothingMatches(t *testing.T) {
	seq := frames.Sequence{
		testsupport.RandomFrame(8, 40, 1),
		testsupport.RandomFrame(8, 40, 2),
		testsupport.RandomFrame(8, 40, 3),
	}
	results, err := overlap.Estimate(context.Background(), seq, overlap.Params{
		ExpectedOffset: 12,
		MinOverlap:     4,
		ApproxDiff:     1,
	})
	if err != nil {
		t.Fatalf("Estimate returned error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.IsFallback() {
			t.Fatalf("expected fallback for pair %d, got %+v", r.Pair, r)
		}
		if r.Offset != 12 {
			t.Fatalf("expected fallback offset 12, got %d", r.Offset)
		}
		if r.Candidate < 4 || r.Candidate > 40 {
			t.Fatalf("best candidate %d outside search range", r.Candidate)
		}
		if r.Score <= 1 {
			t.Fatalf("expected rejected score above tolerance, got %v", r.Score)
		}
	}
	if diff := cmp.Diff([]int{0, 1}, results.Fallbacks()); diff != "" {
		t.Fatalf("unexpected fallback pairs (-want +got):\n%s", diff)
	}
}

func TestEstimateDegradesSinglePair(t *testing.T) {
	scroll := testsupport.NewScroll(t, testsupport.ScrollOptions{
		Width: 12, Height: 50, Overlaps: []int{10, 20, 15}, Seed: 7,
	})
	seq := append(frames.Sequence{}, scroll.Frames...)
	seq[2] = testsupport.RandomFrame(12, 50, 99)

	results, err := overlap.Estimate(context.Background(), seq, overlap.Params{
		ExpectedOffset: 18,
		MinOverlap:     5,
		ApproxDiff:     0.5,
	})
	if err != nil {
		t.Fatalf("Estimate returned error: %v", err)
	}
	if results[0].Status != overlap.StatusMatched || results[0].Offset != 10 {
		t.Fatalf("unexpected pair 0: %+v", results[0])
	}
	if diff := cmp.Diff([]int{1, 2}, results.Fallbacks()); diff != "" {
		t.Fatalf("unexpected fallback pairs (-want +got):\n%s", diff)
	}
}

func TestEstimateIdenticalFramesNeverCollapseToZero(t *testing.T) {
	f := testsupport.RandomFrame(8, 30, 5)
	seq := frames.Sequence{f, testsupport.CloneFrame(f)}
	results, err := overlap.Estimate(context.Background(), seq, overlap.Params{
		ExpectedOffset: 10,
		MinOverlap:     0,
		ApproxDiff:     0,
	})
	if err != nil {
		t.Fatalf("Estimate returned error: %v", err)
	}
	if results[0].Offset != 30 || results[0].IsFallback() {
		t.Fatalf("expected identical frames to resolve to full overlap, got %+v", results[0])
	}
}

func TestEstimatePrefersOffsetNearestExpected(t *testing.T) {
	// Uniform frames match at every candidate with score 0.
	a := frames.NewFrame(4, 40)
	b := frames.NewFrame(4, 40)
	for _, expected := range []int{7, 21, 33} {
		results, err := overlap.Estimate(context.Background(), frames.Sequence{a, b}, overlap.Params{
			ExpectedOffset: expected,
			MinOverlap:     5,
		})
		if err != nil {
			t.Fatalf("Estimate returned error: %v", err)
		}
		if results[0].Offset != expected {
			t.Fatalf("expected tie to resolve to %d, got %d", expected, results[0].Offset)
		}
	}
}

func TestEstimateToleratesNoise(t *testing.T) {
	scroll := testsupport.NewScroll(t, testsupport.ScrollOptions{
		Width: 20, Height: 80, Overlaps: []int{25, 31}, Seed: 3,
	})
	seq := append(frames.Sequence{}, scroll.Frames...)
	noisy := testsupport.CloneFrame(seq[1])
	for i := 0; i < len(noisy.Pix); i += 7 {
		if noisy.Pix[i] < 255 {
			noisy.Pix[i]++
		}
	}
	seq[1] = noisy

	results, err := overlap.Estimate(context.Background(), seq, overlap.Params{
		ExpectedOffset: 30,
		MinOverlap:     10,
		ApproxDiff:     1,
	})
	if err != nil {
		t.Fatalf("Estimate returned error: %v", err)
	}
	if diff := cmp.Diff([]int{25, 31}, results.Offsets()); diff != "" {
		t.Fatalf("unexpected offsets (-want +got):\n%s", diff)
	}
	for _, r := range results {
		if r.IsFallback() || r.Score == 0 || r.Score > 1 {
			t.Fatalf("expected noisy match within tolerance, got %+v", r)
		}
	}
}

func TestEstimateSampleColumns(t *testing.T) {
	scroll := testsupport.NewScroll(t, testsupport.ScrollOptions{
		Width: 30, Height: 60, CropTop: 5, Overlaps: []int{14, 9}, Seed: 11,
	})
	results, err := overlap.Estimate(context.Background(), scroll.Frames, overlap.Params{
		Crop:           frames.CropBand{Top: 5},
		ExpectedOffset: 12,
		MinOverlap:     3,
		SampleColumns:  overlap.ColumnStride(30, 4),
	})
	if err != nil {
		t.Fatalf("Estimate returned error: %v", err)
	}
	if diff := cmp.Diff([]int{14, 9}, results.Offsets()); diff != "" {
		t.Fatalf("unexpected offsets (-want +got):\n%s", diff)
	}
}

func TestEstimateIsDeterministicAcrossWorkers(t *testing.T) {
	scroll := testsupport.NewScroll(t, testsupport.ScrollOptions{
		Width: 10, Height: 40, Overlaps: []int{5, 10, 15, 20, 25, 30, 35}, Seed: 21,
	})
	params := overlap.Params{ExpectedOffset: 20, MinOverlap: 2}
	serial, err := overlap.Estimate(context.Background(), scroll.Frames, params, overlap.WithWorkers(1))
	if err != nil {
		t.Fatalf("Estimate returned error: %v", err)
	}
	parallel, err := overlap.Estimate(context.Background(), scroll.Frames, params, overlap.WithWorkers(8))
	if err != nil {
		t.Fatalf("Estimate returned error: %v", err)
	}
	if diff := cmp.Diff(serial, parallel); diff != "" {
		t.Fatalf("results depend on worker count (-serial +parallel):\n%s", diff)
	}
}

func TestEstimateReportsProgress(t *testing.T) {
	scroll := testsupport.NewScroll(t, testsupport.ScrollOptions{
		Width: 6, Height: 30, Overlaps: []int{10, 10, 10}, Seed: 4,
	})
	var calls []int
	_, err := overlap.Estimate(context.Background(), scroll.Frames,
		overlap.Params{ExpectedOffset: 10, MinOverlap: 2},
		overlap.WithWorkers(2),
		overlap.WithProgress(func(done, total int) {
			if total != 3 {
				t.Errorf("unexpected total %d", total)
			}
			calls = append(calls, done)
		}),
	)
	if err != nil {
		t.Fatalf("Estimate returned error: %v", err)
	}
	if diff := cmp.Diff([]int{1, 2, 3}, calls); diff != "" {
		t.Fatalf("unexpected progress calls (-want +got):\n%s", diff)
	}
}

func TestEstimateHonoursCancellation(t *testing.T) {
	scroll := testsupport.NewScroll(t, testsupport.ScrollOptions{
		Width: 6, Height: 30, Overlaps: []int{10, 10}, Seed: 4,
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := overlap.Estimate(ctx, scroll.Frames, overlap.Params{ExpectedOffset: 10})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestEstimateValidation(t *testing.T) {
	good := frames.Sequence{frames.NewFrame(4, 20), frames.NewFrame(4, 20)}
	cases := []struct {
		name   string
		seq    frames.Sequence
		params overlap.Params
		want   error
	}{
		{"one frame", good[:1], overlap.Params{ExpectedOffset: 5}, frames.ErrInsufficientFrames},
		{"mismatch", frames.Sequence{frames.NewFrame(4, 20), frames.NewFrame(5, 20)}, overlap.Params{ExpectedOffset: 5}, frames.ErrDimensionMismatch},
		{"crop too large", good, overlap.Params{Crop: frames.CropBand{Top: 10, Bottom: 10}, ExpectedOffset: 5}, frames.ErrInvalidCropBand},
		{"expected zero", good, overlap.Params{}, frames.ErrInvalidParams},
		{"expected beyond region", good, overlap.Params{Crop: frames.CropBand{Top: 5}, ExpectedOffset: 15}, frames.ErrInvalidParams},
		{"min overlap too large", good, overlap.Params{ExpectedOffset: 5, MinOverlap: 20}, frames.ErrInvalidParams},
		{"negative diff", good, overlap.Params{ExpectedOffset: 5, ApproxDiff: -1}, frames.ErrInvalidParams},
		{"column outside", good, overlap.Params{ExpectedOffset: 5, SampleColumns: []int{4}}, frames.ErrInvalidParams},
		{"empty columns", good, overlap.Params{ExpectedOffset: 5, SampleColumns: []int{}}, frames.ErrInvalidParams},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := overlap.Estimate(context.Background(), tc.seq, tc.params)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

// Package skiprules derives skip recommendations from per-segment view and
// skip sets.
package skiprules

import (
	"fmt"

	"github.com/Ramsey-B/fern/pkg/facts"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/rules"
)

// RecommendRule derives the recommendation from the two base predicates.
const RecommendRule = `RecommendToSkip(V, S) :- WatchedSegment(U, V, S), HighSkipRate(V, S)`

// Thresholds configure the three listings.
type Thresholds struct {
	// SkipRate is the strict lower bound of HighSkipRate.
	SkipRate float64
	// Percentage is the inclusive lower bound of the percentage listing.
	Percentage float64
	// MinSkipped is the inclusive lower bound of the count listing.
	MinSkipped int
}

// Stat is the skip statistic of one segment.
type Stat struct {
	VideoID   string  `json:"video_id"`
	SegmentID string  `json:"segment_id"`
	Views     int     `json:"views"`
	Skips     int     `json:"skips"`
	SkipRate  float64 `json:"skip_rate"`
}

// Total returns views plus skips.
func (s Stat) Total() int {
	return s.Views + s.Skips
}

// SkipRate is |skips| / (|views| + |skips|), or 0 when both are empty.
func SkipRate(views, skips int) float64 {
	total := views + skips
	if total == 0 {
		return 0
	}
	return float64(skips) / float64(total)
}

// Engine evaluates the skip predicates over classified facts.
type Engine struct {
	thresholds Thresholds
}

// NewEngine creates an engine with the given thresholds.
func NewEngine(t Thresholds) *Engine {
	return &Engine{thresholds: t}
}

// Stats returns the statistic of every segment in video/segment order.
func (e *Engine) Stats(f *facts.SegmentFacts) []Stat {
	segs := f.Segments()
	out := make([]Stat, 0, len(segs))
	for _, s := range segs {
		out = append(out, statOf(s))
	}
	return out
}

func statOf(s *facts.Segment) Stat {
	return Stat{
		VideoID:   s.Key.VideoID,
		SegmentID: s.Key.SegmentID,
		Views:     len(s.Views),
		Skips:     len(s.Skips),
		SkipRate:  SkipRate(len(s.Views), len(s.Skips)),
	}
}

// HighSkipRate reports whether a statistic exceeds the skip-rate threshold.
func (e *Engine) HighSkipRate(s Stat) bool {
	return s.Total() > 0 && s.SkipRate > e.thresholds.SkipRate
}

// Recommend returns segments with at least one view and a high skip rate.
func (e *Engine) Recommend(f *facts.SegmentFacts) []Stat {
	var out []Stat
	for _, s := range e.Stats(f) {
		if s.Views > 0 && e.HighSkipRate(s) {
			out = append(out, s)
		}
	}
	return out
}

// HighSkipRateCount returns how many segments satisfy HighSkipRate.
func (e *Engine) HighSkipRateCount(f *facts.SegmentFacts) int {
	n := 0
	for _, s := range e.Stats(f) {
		if e.HighSkipRate(s) {
			n++
		}
	}
	return n
}

// Program asserts WatchedSegment and HighSkipRate base facts into a rules
// program with the recommendation rule loaded.
func (e *Engine) Program(f *facts.SegmentFacts) (*rules.Program, error) {
	p := rules.NewProgram()
	for _, w := range f.Watched {
		if err := p.Assert("WatchedSegment", w.UserID, w.VideoID, w.SegmentID); err != nil {
			return nil, err
		}
	}
	for _, s := range e.Stats(f) {
		if e.HighSkipRate(s) {
			if err := p.Assert("HighSkipRate", s.VideoID, s.SegmentID); err != nil {
				return nil, err
			}
		}
	}
	if err := p.Load(RecommendRule); err != nil {
		return nil, fmt.Errorf("failed to load recommendation rule: %w", err)
	}
	return p, nil
}

// RecommendWithRules derives the same recommendations as Recommend through
// the rules program. No derived facts is an empty result.
func (e *Engine) RecommendWithRules(f *facts.SegmentFacts) ([]Stat, error) {
	p, err := e.Program(f)
	if err != nil {
		return nil, err
	}
	tuples, err := p.Ask("RecommendToSkip(V, S)")
	if err != nil {
		return nil, err
	}

	out := make([]Stat, 0, len(tuples))
	for _, t := range tuples {
		seg, ok := f.Segment(models.SegmentKey{VideoID: t[0], SegmentID: t[1]})
		if !ok {
			continue
		}
		out = append(out, statOf(seg))
	}
	return out, nil
}

// ByPercentage lists segments whose skip rate is at least the percentage
// threshold.
func (e *Engine) ByPercentage(f *facts.SegmentFacts) []Stat {
	var out []Stat
	for _, s := range e.Stats(f) {
		if s.Total() > 0 && s.SkipRate >= e.thresholds.Percentage {
			out = append(out, s)
		}
	}
	return out
}

// ByCount lists segments skipped by at least MinSkipped users.
func (e *Engine) ByCount(f *facts.SegmentFacts) []Stat {
	var out []Stat
	for _, s := range e.Stats(f) {
		if s.Skips > 0 && s.Skips >= e.thresholds.MinSkipped {
			out = append(out, s)
		}
	}
	return out
}

// Package facts classifies (user, segment) watch records as views or skips.
package facts

import (
	"sort"

	"github.com/Ramsey-B/fern/pkg/models"
)

// Classification of a single watch record against a segment.
type Classification int

const (
	View Classification = iota
	Skip
)

func (c Classification) String() string {
	if c == Skip {
		return "skip"
	}
	return "view"
}

// ClassifyWatch returns Skip when either watched bound is absent or the
// watched interval misses the segment. Touching bounds count as a view.
func ClassifyWatch(w models.SegmentWatch) Classification {
	if w.WatchedStart == nil || w.WatchedEnd == nil {
		return Skip
	}
	if *w.WatchedEnd < w.SegmentStart || *w.WatchedStart > w.SegmentEnd {
		return Skip
	}
	return View
}

// UserSet is a set of user ids.
type UserSet map[string]struct{}

func (s UserSet) Add(id string) { s[id] = struct{}{} }

func (s UserSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in ascending order.
func (s UserSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Segment holds the distinct viewers and skippers of one segment.
type Segment struct {
	Key   models.SegmentKey
	Views UserSet
	Skips UserSet
}

// SegmentFacts is the per-segment classification of a set of watch records.
type SegmentFacts struct {
	bySegment map[models.SegmentKey]*Segment
	// Watched holds every (user, video, segment) triple classified as a view.
	Watched []WatchedSegment
}

// WatchedSegment is one viewed (user, video, segment) triple.
type WatchedSegment struct {
	UserID    string
	VideoID   string
	SegmentID string
}

// Classify aggregates watch records into per-segment view and skip sets.
// A user who both viewed and skipped a segment through different records is
// a member of both sets.
func Classify(watches []models.SegmentWatch) *SegmentFacts {
	f := &SegmentFacts{bySegment: make(map[models.SegmentKey]*Segment)}
	seen := make(map[WatchedSegment]bool)

	for _, w := range watches {
		key := models.SegmentKey{VideoID: w.VideoID, SegmentID: w.SegmentID}
		seg, ok := f.bySegment[key]
		if !ok {
			seg = &Segment{Key: key, Views: UserSet{}, Skips: UserSet{}}
			f.bySegment[key] = seg
		}

		if ClassifyWatch(w) == Skip {
			seg.Skips.Add(w.UserID)
			continue
		}
		seg.Views.Add(w.UserID)
		ws := WatchedSegment{UserID: w.UserID, VideoID: w.VideoID, SegmentID: w.SegmentID}
		if !seen[ws] {
			seen[ws] = true
			f.Watched = append(f.Watched, ws)
		}
	}
	return f
}

// Segment returns the sets of one segment.
func (f *SegmentFacts) Segment(key models.SegmentKey) (*Segment, bool) {
	s, ok := f.bySegment[key]
	return s, ok
}

// Segments returns every classified segment ordered by video then segment id.
func (f *SegmentFacts) Segments() []*Segment {
	out := make([]*Segment, 0, len(f.bySegment))
	for _, s := range f.bySegment {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key.VideoID != out[j].Key.VideoID {
			return out[i].Key.VideoID < out[j].Key.VideoID
		}
		return out[i].Key.SegmentID < out[j].Key.SegmentID
	})
	return out
}

// Len returns the number of classified segments.
func (f *SegmentFacts) Len() int {
	return len(f.bySegment)
}

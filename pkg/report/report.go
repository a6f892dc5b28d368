// Package report renders recommendation listings as plain text.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Ramsey-B/fern/pkg/recommend"
	"github.com/Ramsey-B/fern/pkg/similarity"
	"github.com/Ramsey-B/fern/pkg/skiprules"
	"github.com/Ramsey-B/fern/pkg/speed"
)

const noRecommendations = "No recommendations found."

// SegmentSkips writes the recommendation listing followed by the
// percentage and count listings.
func SegmentSkips(w io.Writer, r *recommend.SkipReport, t skiprules.Thresholds) error {
	p := &printer{w: w}

	if r.HighSkipCount > 0 {
		p.linef("Number of HighSkipRate facts asserted: %d", r.HighSkipCount)
	} else {
		p.line("No HighSkipRate facts asserted.")
	}

	p.line("Recommendations to skip segments:")
	if len(r.Recommended) == 0 {
		p.line(noRecommendations)
	}
	for _, s := range r.Recommended {
		p.line(SkipRateLine(s))
	}

	p.linef("Segments skipped by at least %.0f%% of users:", t.Percentage*100)
	for _, s := range r.ByPercentage {
		p.line(SkipRateLine(s))
	}

	p.linef("Segments skipped by at least %d users:", t.MinSkipped)
	for _, s := range r.ByCount {
		p.line(SkipCountLine(s))
	}
	return p.err
}

// SkipRateLine formats a segment with its rate and skipped/total counts.
func SkipRateLine(s skiprules.Stat) string {
	return fmt.Sprintf("Video: %s, Segment: %s, Skip Rate: %.2f (%d/%d)", s.VideoID, s.SegmentID, s.SkipRate, s.Skips, s.Total())
}

// SkipCountLine formats a segment with its skipper count.
func SkipCountLine(s skiprules.Stat) string {
	return fmt.Sprintf("Video: %s, Segment: %s, Skipped by: %d users", s.VideoID, s.SegmentID, s.Skips)
}

// PlaybackSpeeds writes one line per recommended speed.
func PlaybackSpeeds(w io.Writer, recs []speed.Recommendation) error {
	p := &printer{w: w}
	p.line("Recommended playback speeds:")
	if len(recs) == 0 {
		p.line(noRecommendations)
	}
	for _, r := range recs {
		p.line(SpeedLine(r))
	}
	return p.err
}

// SpeedLine formats one speed recommendation.
func SpeedLine(r speed.Recommendation) string {
	return fmt.Sprintf("Video: %s, Speed: %sx, Used by: %d/%d users", r.VideoID, FormatSpeed(r.Speed), r.UserCount, r.TotalUsers)
}

// FormatSpeed prints the shortest decimal form, keeping one fractional digit
// for whole numbers (1.0, 1.5, 1.25).
func FormatSpeed(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// Similar writes the pairs of a similarity listing.
func Similar(w io.Writer, res *similarity.Result) error {
	p := &printer{w: w}
	label := res.Projection.Label
	if len(res.Pairs) == 0 {
		p.linef("No similar %s pairs found.", strings.ToLower(label))
	}
	for _, pair := range res.Pairs {
		p.linef("%s %s is similar to %s %s (similarity: %.3f)", label, pair.ID1, label, pair.ID2, pair.Similarity)
	}
	return p.err
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s+"\n")
}

func (p *printer) linef(format string, args ...any) {
	p.line(fmt.Sprintf(format, args...))
}

package report

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/recommend"
	"github.com/Ramsey-B/fern/pkg/similarity"
	"github.com/Ramsey-B/fern/pkg/skiprules"
	"github.com/Ramsey-B/fern/pkg/speed"
)

func TestSkipLines(t *testing.T) {
	s := skiprules.Stat{VideoID: "V_1", SegmentID: "V_1_S0", Views: 10, Skips: 1, SkipRate: skiprules.SkipRate(10, 1)}
	assert.Equal(t, "Video: V_1, Segment: V_1_S0, Skip Rate: 0.09 (1/11)", SkipRateLine(s))
	assert.Equal(t, "Video: V_1, Segment: V_1_S0, Skipped by: 1 users", SkipCountLine(s))
}

func TestFormatSpeed(t *testing.T) {
	tests := map[float64]string{
		1:    "1.0",
		1.5:  "1.5",
		1.25: "1.25",
		0.75: "0.75",
		2:    "2.0",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatSpeed(in))
	}
}

func TestSpeedLine(t *testing.T) {
	r := speed.Recommendation{VideoID: "V_2", Speed: 1.5, UserCount: 3, TotalUsers: 4}
	assert.Equal(t, "Video: V_2, Speed: 1.5x, Used by: 3/4 users", SpeedLine(r))
}

func TestSegmentSkips(t *testing.T) {
	high := skiprules.Stat{VideoID: "V_1", SegmentID: "V_1_S1", Views: 1, Skips: 2, SkipRate: skiprules.SkipRate(1, 2)}
	r := &recommend.SkipReport{
		Recommended:   []skiprules.Stat{high},
		ByPercentage:  []skiprules.Stat{high},
		ByCount:       []skiprules.Stat{high},
		HighSkipCount: 1,
	}

	var buf bytes.Buffer
	require.NoError(t, SegmentSkips(&buf, r, skiprules.Thresholds{Percentage: 0.3, MinSkipped: 2}))

	want := "Number of HighSkipRate facts asserted: 1\n" +
		"Recommendations to skip segments:\n" +
		"Video: V_1, Segment: V_1_S1, Skip Rate: 0.67 (2/3)\n" +
		"Segments skipped by at least 30% of users:\n" +
		"Video: V_1, Segment: V_1_S1, Skip Rate: 0.67 (2/3)\n" +
		"Segments skipped by at least 2 users:\n" +
		"Video: V_1, Segment: V_1_S1, Skipped by: 2 users\n"
	assert.Equal(t, want, buf.String())
}

func TestSegmentSkips_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SegmentSkips(&buf, &recommend.SkipReport{}, skiprules.Thresholds{Percentage: 0.01, MinSkipped: 3}))
	assert.Contains(t, buf.String(), "No HighSkipRate facts asserted.\n")
	assert.Contains(t, buf.String(), "Recommendations to skip segments:\nNo recommendations found.\n")
	assert.Contains(t, buf.String(), "Segments skipped by at least 1% of users:\n")
}

func TestPlaybackSpeeds(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PlaybackSpeeds(&buf, []speed.Recommendation{
		{VideoID: "V_1", Speed: 1, UserCount: 1, TotalUsers: 2},
	}))
	assert.Equal(t, "Recommended playback speeds:\nVideo: V_1, Speed: 1.0x, Used by: 1/2 users\n", buf.String())

	buf.Reset()
	require.NoError(t, PlaybackSpeeds(&buf, nil))
	assert.Equal(t, "Recommended playback speeds:\nNo recommendations found.\n", buf.String())
}

func TestSimilar(t *testing.T) {
	res := &similarity.Result{
		Projection: models.Projection{Name: "users", Label: "User"},
		Pairs:      []models.SimilarPair{{ID1: "a", ID2: "b", Similarity: 0.91234}},
	}
	var buf bytes.Buffer
	require.NoError(t, Similar(&buf, res))
	assert.Equal(t, "User a is similar to User b (similarity: 0.912)\n", buf.String())

	buf.Reset()
	require.NoError(t, Similar(&buf, &similarity.Result{Projection: models.Projection{Label: "Course"}}))
	assert.Equal(t, "No similar course pairs found.\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestWriteErrorIsReturned(t *testing.T) {
	err := PlaybackSpeeds(failingWriter{}, []speed.Recommendation{{VideoID: "V_1", Speed: 1}})
	assert.EqualError(t, err, "closed")
}

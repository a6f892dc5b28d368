package skiprules

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/facts"
	"github.com/Ramsey-B/fern/pkg/models"
)

func fptr(f float64) *float64 { return &f }

// segment builds watch records for one segment spanning [10, 20].
func segment(video, seg string, views, skips int) []models.SegmentWatch {
	var out []models.SegmentWatch
	for i := 0; i < views; i++ {
		out = append(out, models.SegmentWatch{
			UserID: fmt.Sprintf("viewer_%d", i), VideoID: video, SegmentID: seg,
			SegmentStart: 10, SegmentEnd: 20, WatchedStart: fptr(0), WatchedEnd: fptr(30),
		})
	}
	for i := 0; i < skips; i++ {
		out = append(out, models.SegmentWatch{
			UserID: fmt.Sprintf("skipper_%d", i), VideoID: video, SegmentID: seg,
			SegmentStart: 10, SegmentEnd: 20, WatchedStart: fptr(25), WatchedEnd: fptr(30),
		})
	}
	return out
}

func keys(stats []Stat) []string {
	out := make([]string, 0, len(stats))
	for _, s := range stats {
		out = append(out, s.VideoID+"/"+s.SegmentID)
	}
	return out
}

func TestSkipRate(t *testing.T) {
	assert.Equal(t, 0.0, SkipRate(0, 0))
	assert.Equal(t, 0.25, SkipRate(3, 1))
	assert.Equal(t, 1.0, SkipRate(0, 4))
}

func TestScenario_TenViewsOneSkip(t *testing.T) {
	f := facts.Classify(segment("V_1", "X", 10, 1))
	e := NewEngine(Thresholds{SkipRate: 0.01, Percentage: 0.01, MinSkipped: 3})

	stats := e.Stats(f)
	require.Len(t, stats, 1)
	assert.InDelta(t, 0.0909, stats[0].SkipRate, 0.001)
	assert.True(t, e.HighSkipRate(stats[0]))

	assert.Equal(t, []string{"V_1/X"}, keys(e.Recommend(f)))

	viaRules, err := e.RecommendWithRules(f)
	require.NoError(t, err)
	assert.Equal(t, []string{"V_1/X"}, keys(viaRules))

	assert.Empty(t, e.ByCount(f), "1 skip is below MIN_SKIPPED")
	assert.Equal(t, []string{"V_1/X"}, keys(e.ByPercentage(f)))
}

func TestBoundaries(t *testing.T) {
	f := facts.Classify(segment("V_1", "S_0", 3, 1))
	e := NewEngine(Thresholds{SkipRate: 0.25, Percentage: 0.25, MinSkipped: 1})

	assert.Empty(t, e.Recommend(f), "HighSkipRate is strict")
	assert.Len(t, e.ByPercentage(f), 1, "percentage mode is inclusive")
	assert.Len(t, e.ByCount(f), 1, "count mode is inclusive")
	assert.Zero(t, e.HighSkipRateCount(f))
}

func TestModeIndependence(t *testing.T) {
	// S_rate has a high rate but few skips; S_count has many skips at a low rate.
	var watches []models.SegmentWatch
	watches = append(watches, segment("V_1", "S_rate", 1, 1)...)
	watches = append(watches, segment("V_1", "S_count", 40, 3)...)
	f := facts.Classify(watches)
	e := NewEngine(Thresholds{SkipRate: 0.01, Percentage: 0.5, MinSkipped: 3})

	assert.Equal(t, []string{"V_1/S_rate"}, keys(e.ByPercentage(f)))
	assert.Equal(t, []string{"V_1/S_count"}, keys(e.ByCount(f)))
}

func TestRecommend_RequiresAView(t *testing.T) {
	f := facts.Classify(segment("V_1", "S_0", 0, 5))
	e := NewEngine(Thresholds{SkipRate: 0.01, Percentage: 0.01, MinSkipped: 3})

	assert.Empty(t, e.Recommend(f))
	viaRules, err := e.RecommendWithRules(f)
	require.NoError(t, err)
	assert.Empty(t, viaRules)
	assert.Equal(t, 1, e.HighSkipRateCount(f))
	assert.Len(t, e.ByCount(f), 1)
}

func TestRecommend_PathsAgree(t *testing.T) {
	var watches []models.SegmentWatch
	watches = append(watches, segment("V_1", "S_0", 5, 0)...)
	watches = append(watches, segment("V_1", "S_1", 5, 2)...)
	watches = append(watches, segment("V_2", "S_0", 0, 2)...)
	watches = append(watches, segment("V_2", "S_1", 1, 9)...)
	f := facts.Classify(watches)

	for _, threshold := range []float64{0, 0.1, 0.5, 0.9, 1} {
		e := NewEngine(Thresholds{SkipRate: threshold})
		viaRules, err := e.RecommendWithRules(f)
		require.NoError(t, err)
		assert.Equal(t, keys(e.Recommend(f)), keys(viaRules), "threshold %v", threshold)
	}
}

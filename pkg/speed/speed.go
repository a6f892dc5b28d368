// Package speed recommends playback speeds from the ratio of video progress
// to wall-clock watching time.
package speed

import (
	"math"
	"sort"

	"github.com/Ramsey-B/fern/pkg/models"
)

// Thresholds decide when a speed is recommended. Either one is enough.
type Thresholds struct {
	// Number is the minimum count of users at a speed.
	Number int
	// Percentage is the minimum share of the video's users at a speed.
	Percentage float64
}

// Recommendation is one recommended (video, speed) pair.
type Recommendation struct {
	VideoID    string  `json:"video_id"`
	Speed      float64 `json:"speed"`
	UserCount  int     `json:"user_count"`
	TotalUsers int     `json:"total_users"`
}

// Share returns UserCount / TotalUsers.
func (r Recommendation) Share() float64 {
	if r.TotalUsers == 0 {
		return 0
	}
	return float64(r.UserCount) / float64(r.TotalUsers)
}

// Round2 rounds half away from zero to two decimal places.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Of returns the speed bucket of a watch record. ok is false when either
// value is absent or not positive.
func Of(w models.VideoWatch) (speed float64, ok bool) {
	if w.VideoProgressTime == nil || w.LocalWatchingTime == nil ||
		*w.VideoProgressTime <= 0 || *w.LocalWatchingTime <= 0 {
		return 0, false
	}
	return Round2(*w.VideoProgressTime / *w.LocalWatchingTime), true
}

type bucketKey struct {
	video string
	speed float64
}

// Histogram counts distinct users per (video, speed) and per video.
type Histogram struct {
	speeds map[bucketKey]map[string]struct{}
	users  map[string]map[string]struct{}
}

// Build accumulates every usable watch record.
func Build(watches []models.VideoWatch) *Histogram {
	h := &Histogram{
		speeds: make(map[bucketKey]map[string]struct{}),
		users:  make(map[string]map[string]struct{}),
	}
	for _, w := range watches {
		s, ok := Of(w)
		if !ok {
			continue
		}
		k := bucketKey{video: w.VideoID, speed: s}
		if h.speeds[k] == nil {
			h.speeds[k] = make(map[string]struct{})
		}
		h.speeds[k][w.UserID] = struct{}{}
		if h.users[w.VideoID] == nil {
			h.users[w.VideoID] = make(map[string]struct{})
		}
		h.users[w.VideoID][w.UserID] = struct{}{}
	}
	return h
}

// Count returns the users observed at speed on video.
func (h *Histogram) Count(video string, speed float64) int {
	return len(h.speeds[bucketKey{video: video, speed: speed}])
}

// Total returns the distinct users with a usable record for video.
func (h *Histogram) Total(video string) int {
	return len(h.users[video])
}

// Recommend returns the pairs meeting either threshold, sorted by video
// then speed.
func (h *Histogram) Recommend(t Thresholds) []Recommendation {
	var out []Recommendation
	for k, users := range h.speeds {
		rec := Recommendation{
			VideoID:    k.video,
			Speed:      k.speed,
			UserCount:  len(users),
			TotalUsers: h.Total(k.video),
		}
		if rec.UserCount >= t.Number || rec.Share() >= t.Percentage {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].VideoID != out[j].VideoID {
			return out[i].VideoID < out[j].VideoID
		}
		return out[i].Speed < out[j].Speed
	})
	return out
}

// Recommend builds a histogram and applies the thresholds.
func Recommend(watches []models.VideoWatch, t Thresholds) []Recommendation {
	return Build(watches).Recommend(t)
}

package models

// SegmentWatch is one (user, video, segment) row read back from WATCHED
// edges joined with the video's segments. Watched bounds may be absent.
type SegmentWatch struct {
	UserID       string
	VideoID      string
	SegmentID    string
	SegmentStart float64
	SegmentEnd   float64
	WatchedStart *float64
	WatchedEnd   *float64
}

// VideoWatch is one (user, video) row carrying the values the speed
// recommender needs.
type VideoWatch struct {
	UserID            string
	VideoID           string
	VideoProgressTime *float64
	LocalWatchingTime *float64
}

// SegmentKey identifies a segment within its video.
type SegmentKey struct {
	VideoID   string
	SegmentID string
}

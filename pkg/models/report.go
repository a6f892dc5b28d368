package models

import (
	"encoding/json"
	"time"
)

// Report names used for archived runs and metrics labels.
const (
	ReportSegmentSkips   = "segment_skips"
	ReportPlaybackSpeeds = "playback_speeds"
	ReportSimilarity     = "similarity"
)

// ReportRun is one archived recommendation report.
type ReportRun struct {
	ID         string          `json:"id" db:"id"`
	Report     string          `json:"report" db:"report"`
	ItemCount  int             `json:"item_count" db:"item_count"`
	Parameters json.RawMessage `json:"parameters" db:"parameters"`
	Items      json.RawMessage `json:"items" db:"items"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

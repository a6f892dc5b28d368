package models

// Relationship is a schema value addressable by (from id, to id, kind).
type Relationship interface {
	Kind() RelKind
	From() string
	To() string
	Props() map[string]any
}

// EnrolledIn links a user to a course.
type EnrolledIn struct {
	UserID     string `validate:"required"`
	CourseID   string `validate:"required"`
	EnrollTime string
}

func (r EnrolledIn) Kind() RelKind { return RelEnrolledIn }
func (r EnrolledIn) From() string  { return r.UserID }
func (r EnrolledIn) To() string    { return r.CourseID }

func (r EnrolledIn) Props() map[string]any {
	p := props{}
	p.str("enroll_time", r.EnrollTime)
	return p
}

// Watched links a user to a video with the timing of their viewing.
type Watched struct {
	UserID            string   `validate:"required"`
	VideoID           string   `validate:"required"`
	WatchingCount     *int     `validate:"omitempty,gte=0"`
	VideoDuration     *float64 `validate:"omitempty,gte=0"`
	LocalWatchingTime *float64 `validate:"omitempty,gte=0"`
	VideoProgressTime *float64 `validate:"omitempty,gte=0"`
	VideoStartTime    *float64
	VideoEndTime      *float64
	LocalStartTime    *string
	LocalEndTime      *string
}

func (r Watched) Kind() RelKind { return RelWatched }
func (r Watched) From() string  { return r.UserID }
func (r Watched) To() string    { return r.VideoID }

func (r Watched) Props() map[string]any {
	p := props{}
	p.intp("watching_count", r.WatchingCount)
	p.floatp("video_duration", r.VideoDuration)
	p.floatp("local_watching_time", r.LocalWatchingTime)
	p.floatp("video_progress_time", r.VideoProgressTime)
	p.floatp("video_start_time", r.VideoStartTime)
	p.floatp("video_end_time", r.VideoEndTime)
	p.strp("local_start_time", r.LocalStartTime)
	p.strp("local_end_time", r.LocalEndTime)
	return p
}

// WatchedFromEntry builds the WATCHED payload of one activity entry.
func WatchedFromEntry(userID string, e ActivityEntry) Watched {
	return Watched{
		UserID:            userID,
		VideoID:           e.VideoID,
		WatchingCount:     e.WatchingCount,
		VideoDuration:     e.VideoDuration,
		LocalWatchingTime: e.LocalWatchingTime,
		VideoProgressTime: e.VideoProgressTime,
		VideoStartTime:    e.VideoStartTime,
		VideoEndTime:      e.VideoEndTime,
		LocalStartTime:    e.LocalStartTime,
		LocalEndTime:      e.LocalEndTime,
	}
}

// PartOf places a video in a course.
type PartOf struct {
	VideoID     string `validate:"required"`
	CourseID    string `validate:"required"`
	VideoOrder  int    `validate:"gte=0"`
	DisplayName string
	Chapter     string
}

func (r PartOf) Kind() RelKind { return RelPartOf }
func (r PartOf) From() string  { return r.VideoID }
func (r PartOf) To() string    { return r.CourseID }

func (r PartOf) Props() map[string]any {
	p := props{"video_order": r.VideoOrder}
	p.str("display_name", r.DisplayName)
	p.str("chapter", r.Chapter)
	return p
}

// HasSegment links a video to one of its segments.
type HasSegment struct {
	VideoID   string `validate:"required"`
	SegmentID string `validate:"required"`
	Index     int    `validate:"gte=0"`
}

func (r HasSegment) Kind() RelKind { return RelHasSegment }
func (r HasSegment) From() string  { return r.VideoID }
func (r HasSegment) To() string    { return r.SegmentID }

func (r HasSegment) Props() map[string]any {
	return map[string]any{"index": r.Index}
}

// Created attributes a video to the user who created it.
type Created struct {
	UserID  string `validate:"required"`
	VideoID string `validate:"required"`
}

func (r Created) Kind() RelKind { return RelCreated }
func (r Created) From() string  { return r.UserID }
func (r Created) To() string    { return r.VideoID }

func (r Created) Props() map[string]any {
	return map[string]any{}
}

package models

// ActivityRecord is one entry of user_video_act.json: a user and the
// course/video activity attributed to them.
type ActivityRecord struct {
	UserID   string          `json:"id"`
	Activity []ActivityEntry `json:"activity"`
}

// ActivityEntry is a single watch record. Every numeric field is optional.
type ActivityEntry struct {
	VideoID           string   `json:"video_id,omitempty"`
	CourseID          string   `json:"course_id,omitempty"`
	WatchingCount     *int     `json:"watching_count,omitempty"`
	VideoDuration     *float64 `json:"video_duration,omitempty"`
	LocalWatchingTime *float64 `json:"local_watching_time,omitempty"`
	VideoProgressTime *float64 `json:"video_progress_time,omitempty"`
	VideoStartTime    *float64 `json:"video_start_time,omitempty"`
	VideoEndTime      *float64 `json:"video_end_time,omitempty"`
	LocalStartTime    *string  `json:"local_start_time,omitempty"`
	LocalEndTime      *string  `json:"local_end_time,omitempty"`
}

// UserRecord is one entry of user.json. CourseOrder and EnrollTime are
// parallel arrays describing enrollments.
type UserRecord struct {
	ID          string   `json:"id"`
	Name        string   `json:"name,omitempty"`
	Gender      *int     `json:"gender,omitempty"`
	School      string   `json:"school,omitempty"`
	YearOfBirth *int     `json:"year_of_birth,omitempty"`
	Age         *int     `json:"age,omitempty"`
	Location    string   `json:"location,omitempty"`
	CourseOrder []string `json:"course_order,omitempty"`
	EnrollTime  []string `json:"enroll_time,omitempty"`
}

// CourseRecord is one entry of course.json. VideoOrder, DisplayName and
// Chapter are parallel arrays describing course membership.
type CourseRecord struct {
	ID            string   `json:"id"`
	Name          string   `json:"name,omitempty"`
	Prerequisites string   `json:"prerequisites,omitempty"`
	About         string   `json:"about,omitempty"`
	VideoOrder    []string `json:"video_order,omitempty"`
	DisplayName   []string `json:"display_name,omitempty"`
	Chapter       []string `json:"chapter,omitempty"`
}

// VideoRecord is one entry of video.json. Start, End and Text are parallel
// arrays; segment i spans [Start[i], End[i]].
type VideoRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Duration  *float64  `json:"duration,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	CreatorID string    `json:"creator_id,omitempty"`
	Start     []float64 `json:"start,omitempty"`
	End       []float64 `json:"end,omitempty"`
	Text      []string  `json:"text,omitempty"`
}

// Dataset groups the four raw collections.
type Dataset struct {
	Activity []ActivityRecord `json:"activity"`
	Users    []UserRecord     `json:"users"`
	Courses  []CourseRecord   `json:"courses"`
	Videos   []VideoRecord    `json:"videos"`
}

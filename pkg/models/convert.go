package models

// UserFromRecord maps a user.json entry to its node schema.
func UserFromRecord(r UserRecord) User {
	return User{
		ID:          r.ID,
		Name:        r.Name,
		Gender:      r.Gender,
		School:      r.School,
		YearOfBirth: r.YearOfBirth,
		Age:         r.Age,
		Location:    r.Location,
	}
}

// Enrollments expands the parallel course_order/enroll_time arrays.
// A missing enroll_time leaves the attribute absent.
func Enrollments(r UserRecord) []EnrolledIn {
	out := make([]EnrolledIn, 0, len(r.CourseOrder))
	for i, courseID := range r.CourseOrder {
		if courseID == "" {
			continue
		}
		e := EnrolledIn{UserID: r.ID, CourseID: courseID}
		if i < len(r.EnrollTime) {
			e.EnrollTime = r.EnrollTime[i]
		}
		out = append(out, e)
	}
	return out
}

// CourseFromRecord maps a course.json entry to its node schema.
func CourseFromRecord(r CourseRecord) Course {
	return Course{
		ID:            r.ID,
		Name:          r.Name,
		Prerequisites: r.Prerequisites,
		About:         r.About,
	}
}

// Memberships expands the parallel video_order/display_name/chapter arrays.
// video_order is the position of the video in the course's list.
func Memberships(r CourseRecord) []PartOf {
	out := make([]PartOf, 0, len(r.VideoOrder))
	for i, videoID := range r.VideoOrder {
		if videoID == "" {
			continue
		}
		p := PartOf{VideoID: videoID, CourseID: r.ID, VideoOrder: i}
		if i < len(r.DisplayName) {
			p.DisplayName = r.DisplayName[i]
		}
		if i < len(r.Chapter) {
			p.Chapter = r.Chapter[i]
		}
		out = append(out, p)
	}
	return out
}

// VideoFromRecord maps a video.json entry to its node schema.
func VideoFromRecord(r VideoRecord) Video {
	return Video{
		ID:       r.ID,
		Name:     r.Name,
		Duration: r.Duration,
		Tags:     r.Tags,
	}
}

// Segments expands the parallel start/end/text arrays. Only positions with
// both bounds produce a segment.
func Segments(r VideoRecord) []Segment {
	n := min(len(r.Start), len(r.End))
	out := make([]Segment, 0, n)
	for i := 0; i < n; i++ {
		s := Segment{
			ID:      SegmentID(r.ID, i),
			VideoID: r.ID,
			Index:   i,
			Start:   r.Start[i],
			End:     r.End[i],
		}
		if i < len(r.Text) {
			s.Text = r.Text[i]
		}
		out = append(out, s)
	}
	return out
}

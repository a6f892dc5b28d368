// Package reconcile restricts the raw collections to the entities the
// activity stream actually references.
package reconcile

import "github.com/Ramsey-B/fern/pkg/models"

// Closure holds the ids referenced by the activity stream.
type Closure struct {
	Users   map[string]struct{}
	Courses map[string]struct{}
	Videos  map[string]struct{}
}

// HasUser reports whether id owns at least one activity record.
func (c Closure) HasUser(id string) bool {
	_, ok := c.Users[id]
	return ok
}

// HasCourse reports whether id is referenced by an activity entry.
func (c Closure) HasCourse(id string) bool {
	_, ok := c.Courses[id]
	return ok
}

// HasVideo reports whether id is referenced by an activity entry.
func (c Closure) HasVideo(id string) bool {
	_, ok := c.Videos[id]
	return ok
}

// ClosureOf scans activity records once. Only direct references count: a
// course reachable solely through a video's course list is not included.
func ClosureOf(activity []models.ActivityRecord) Closure {
	c := Closure{
		Users:   make(map[string]struct{}),
		Courses: make(map[string]struct{}),
		Videos:  make(map[string]struct{}),
	}
	for _, rec := range activity {
		if rec.UserID != "" {
			c.Users[rec.UserID] = struct{}{}
		}
		for _, e := range rec.Activity {
			if e.CourseID != "" {
				c.Courses[e.CourseID] = struct{}{}
			}
			if e.VideoID != "" {
				c.Videos[e.VideoID] = struct{}{}
			}
		}
	}
	return c
}

// Reconcile filters users, courses and videos to the activity closure. The
// activity collection is returned as is and each collection keeps its input
// order.
func Reconcile(ds models.Dataset) models.Dataset {
	c := ClosureOf(ds.Activity)

	out := models.Dataset{
		Activity: ds.Activity,
		Users:    make([]models.UserRecord, 0, len(c.Users)),
		Courses:  make([]models.CourseRecord, 0, len(c.Courses)),
		Videos:   make([]models.VideoRecord, 0, len(c.Videos)),
	}
	for _, u := range ds.Users {
		if c.HasUser(u.ID) {
			out.Users = append(out.Users, u)
		}
	}
	for _, course := range ds.Courses {
		if c.HasCourse(course.ID) {
			out.Courses = append(out.Courses, course)
		}
	}
	for _, v := range ds.Videos {
		if c.HasVideo(v.ID) {
			out.Videos = append(out.Videos, v)
		}
	}
	return out
}

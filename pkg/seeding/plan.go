package seeding

import (
	"fmt"

	"github.com/Ramsey-B/fern/pkg/models"
)

// Plan is the ordered set of writes for one seeding run.
type Plan struct {
	Users       []models.User
	Courses     []models.Course
	Enrollments []models.EnrolledIn
	Videos      []models.Video
	Segments    []models.Segment
	HasSegments []models.HasSegment
	Memberships []models.PartOf
	Watches     []models.Watched
	Creations   []models.Created

	// Dangling counts relationships dropped because an endpoint other than
	// a stubbable course is not part of the plan.
	Dangling int
}

// BuildPlan maps a reconciled dataset onto schema values and validates every
// payload before anything is written.
func BuildPlan(ds models.Dataset) (*Plan, error) {
	p := &Plan{}
	users := make(map[string]bool, len(ds.Users))
	videos := make(map[string]bool, len(ds.Videos))
	courses := make(map[string]bool, len(ds.Courses))

	for _, r := range ds.Users {
		if users[r.ID] {
			continue
		}
		users[r.ID] = true
		p.Users = append(p.Users, models.UserFromRecord(r))
		p.Enrollments = append(p.Enrollments, models.Enrollments(r)...)
	}

	for _, r := range ds.Courses {
		if courses[r.ID] {
			continue
		}
		courses[r.ID] = true
		p.Courses = append(p.Courses, models.CourseFromRecord(r))
	}
	// Courses named by activity but missing from course.json become stubs.
	for _, rec := range ds.Activity {
		for _, e := range rec.Activity {
			if e.CourseID != "" && !courses[e.CourseID] {
				courses[e.CourseID] = true
				p.Courses = append(p.Courses, models.Course{ID: e.CourseID})
			}
		}
	}

	for _, r := range ds.Videos {
		if videos[r.ID] {
			continue
		}
		videos[r.ID] = true
		p.Videos = append(p.Videos, models.VideoFromRecord(r))
		for _, seg := range models.Segments(r) {
			p.Segments = append(p.Segments, seg)
			p.HasSegments = append(p.HasSegments, models.HasSegment{VideoID: r.ID, SegmentID: seg.ID, Index: seg.Index})
		}
		if r.CreatorID != "" {
			if users[r.CreatorID] {
				p.Creations = append(p.Creations, models.Created{UserID: r.CreatorID, VideoID: r.ID})
			} else {
				p.Dangling++
			}
		}
	}

	for _, r := range ds.Courses {
		for _, m := range models.Memberships(r) {
			if !videos[m.VideoID] {
				p.Dangling++
				continue
			}
			p.Memberships = append(p.Memberships, m)
		}
	}

	for _, rec := range ds.Activity {
		for _, e := range rec.Activity {
			if e.VideoID == "" {
				continue
			}
			if !users[rec.UserID] || !videos[e.VideoID] {
				p.Dangling++
				continue
			}
			p.Watches = append(p.Watches, models.WatchedFromEntry(rec.UserID, e))
		}
	}

	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Plan) validate() error {
	check := func(kind string, key string, v any) error {
		if err := models.Validate(v); err != nil {
			return fmt.Errorf("%s %s: %w", kind, key, err)
		}
		return nil
	}
	for _, v := range p.Users {
		if err := check("user", v.ID, v); err != nil {
			return err
		}
	}
	for _, v := range p.Courses {
		if err := check("course", v.ID, v); err != nil {
			return err
		}
	}
	for _, v := range p.Enrollments {
		if err := check("enrollment", v.UserID+"->"+v.CourseID, v); err != nil {
			return err
		}
	}
	for _, v := range p.Videos {
		if err := check("video", v.ID, v); err != nil {
			return err
		}
	}
	for _, v := range p.Segments {
		if err := check("segment", v.ID, v); err != nil {
			return err
		}
	}
	for _, v := range p.Memberships {
		if err := check("membership", v.VideoID+"->"+v.CourseID, v); err != nil {
			return err
		}
	}
	for _, v := range p.Watches {
		if err := check("watch", v.UserID+"->"+v.VideoID, v); err != nil {
			return err
		}
	}
	return nil
}

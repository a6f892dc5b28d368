// Package models holds raw input records and the versioned write schema for
// every node and relationship kind stored in the graph.
package models

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// SchemaVersion is stamped on every node written by fern.
const SchemaVersion = "1"

// ErrInvalidRecord is returned when a payload fails schema validation.
var ErrInvalidRecord = errors.New("invalid record")

// NodeKind is a graph node label.
type NodeKind string

const (
	KindUser    NodeKind = "User"
	KindCourse  NodeKind = "Course"
	KindVideo   NodeKind = "Video"
	KindSegment NodeKind = "Segment"
)

// RelKind is a graph relationship type.
type RelKind string

const (
	RelEnrolledIn RelKind = "ENROLLED_IN"
	RelWatched    RelKind = "WATCHED"
	RelPartOf     RelKind = "PART_OF"
	RelHasSegment RelKind = "HAS_SEGMENT"
	RelCreated    RelKind = "CREATED"
)

// Endpoints returns the node kinds a relationship connects.
func (k RelKind) Endpoints() (from NodeKind, to NodeKind) {
	switch k {
	case RelEnrolledIn:
		return KindUser, KindCourse
	case RelWatched:
		return KindUser, KindVideo
	case RelPartOf:
		return KindVideo, KindCourse
	case RelHasSegment:
		return KindVideo, KindSegment
	case RelCreated:
		return KindUser, KindVideo
	}
	return "", ""
}

// StubsCourse reports whether writes of this kind merge the target course by
// id before matching it.
func (k RelKind) StubsCourse() bool {
	return k == RelEnrolledIn || k == RelPartOf
}

var validate = validator.New()

// Validate checks a schema struct against its validate tags.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return nil
}

// SegmentID derives the deterministic id of the index-th segment of a video.
func SegmentID(videoID string, index int) string {
	return videoID + "_S" + strconv.Itoa(index)
}

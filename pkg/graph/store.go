package graph

import (
	"context"
	"errors"

	"github.com/Ramsey-B/fern/pkg/models"
)

// ErrEndpointMissing is returned when a relationship write cannot match one
// of its endpoint nodes.
var ErrEndpointMissing = errors.New("relationship endpoint missing")

// Writer is the write side of the store used by seeding.
type Writer interface {
	UpsertEntity(ctx context.Context, kind models.NodeKind, key string, props map[string]any) error
	UpsertRelationship(ctx context.Context, rel models.Relationship) error
	IsSeeded(ctx context.Context) (bool, error)
	ClearAll(ctx context.Context) error
}

// Reader is the read side of the store used by the reasoning layers.
type Reader interface {
	SegmentWatches(ctx context.Context) ([]models.SegmentWatch, error)
	VideoWatches(ctx context.Context) ([]models.VideoWatch, error)
}

// Store is the full graph store contract.
type Store interface {
	Writer
	Reader
}

// sanitizeLabel ensures the label is safe for Cypher
func sanitizeLabel(label string) string {
	out := make([]rune, 0, len(label))
	for _, c := range label {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return "Entity"
	}
	return string(out)
}

// cleanProps drops nil values so an upsert leaves those attributes untouched.
func cleanProps(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		if v == nil || k == "id" {
			continue
		}
		out[k] = v
	}
	return out
}

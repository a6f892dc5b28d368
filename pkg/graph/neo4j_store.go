package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Ramsey-B/fern/pkg/metrics"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Neo4jStore implements Store with one auto-committed statement per call.
type Neo4jStore struct {
	client *Client
	logger ectologger.Logger
}

// NewNeo4jStore creates a store backed by client.
func NewNeo4jStore(client *Client, logger ectologger.Logger) *Neo4jStore {
	return &Neo4jStore{
		client: client,
		logger: logger,
	}
}

// UpsertEntity merges a node by (kind, id) and overwrites the given
// attributes only.
func (s *Neo4jStore) UpsertEntity(ctx context.Context, kind models.NodeKind, key string, props map[string]any) error {
	ctx, span := tracing.StartSpan(ctx, "graph.Neo4jStore.UpsertEntity")
	defer span.End()
	defer metrics.ObserveQuery("upsert_entity", time.Now())

	log := s.logger.WithContext(ctx).WithFields(map[string]any{
		"entity_id":   key,
		"entity_type": kind,
	})

	cypher := fmt.Sprintf(`
		MERGE (e:%s {id: $id})
		SET e += $props
	`, sanitizeLabel(string(kind)))

	err := s.client.Exec(ctx, cypher, map[string]any{
		"id":    key,
		"props": cleanProps(props),
	})
	if err != nil {
		log.WithError(err).Error("Failed to upsert entity in graph")
		return fmt.Errorf("failed to upsert %s %s: %w", kind, key, err)
	}

	log.Debug("Upserted entity in graph")
	return nil
}

// UpsertRelationship merges a relationship keyed by (from, to, type). Both
// endpoints must exist; course targets of ENROLLED_IN and PART_OF are
// stub-merged first.
func (s *Neo4jStore) UpsertRelationship(ctx context.Context, rel models.Relationship) error {
	ctx, span := tracing.StartSpan(ctx, "graph.Neo4jStore.UpsertRelationship")
	defer span.End()
	defer metrics.ObserveQuery("upsert_relationship", time.Now())

	log := s.logger.WithContext(ctx).WithFields(map[string]any{
		"rel_type": rel.Kind(),
		"from_id":  rel.From(),
		"to_id":    rel.To(),
	})

	fromKind, toKind := rel.Kind().Endpoints()
	if fromKind == "" {
		return fmt.Errorf("unknown relationship kind %q", rel.Kind())
	}

	cypher := fmt.Sprintf(`
		MATCH (a:%[1]s {id: $from})
		MATCH (b:%[2]s {id: $to})
		MERGE (a)-[r:%[3]s]->(b)
		SET r += $props
		RETURN count(r) AS written
	`, sanitizeLabel(string(fromKind)), sanitizeLabel(string(toKind)), sanitizeLabel(string(rel.Kind())))
	if rel.Kind().StubsCourse() {
		cypher = fmt.Sprintf(`
		MERGE (b:%[2]s {id: $to})
		WITH b
		MATCH (a:%[1]s {id: $from})
		MERGE (a)-[r:%[3]s]->(b)
		SET r += $props
		RETURN count(r) AS written
	`, sanitizeLabel(string(fromKind)), sanitizeLabel(string(toKind)), sanitizeLabel(string(rel.Kind())))
	}

	res, err := s.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{
			"from":  rel.From(),
			"to":    rel.To(),
			"props": cleanProps(rel.Props()),
		})
		if err != nil {
			return nil, err
		}
		record, err := result.Single(ctx)
		if err != nil {
			return nil, err
		}
		written, _, err := neo4j.GetRecordValue[int64](record, "written")
		return written, err
	})
	if err != nil {
		log.WithError(err).Error("Failed to upsert relationship in graph")
		return fmt.Errorf("failed to upsert %s %s->%s: %w", rel.Kind(), rel.From(), rel.To(), err)
	}
	if res.(int64) == 0 {
		log.Error("Relationship endpoint not found in graph")
		return fmt.Errorf("%w: %s %s->%s", ErrEndpointMissing, rel.Kind(), rel.From(), rel.To())
	}

	log.Debug("Upserted relationship in graph")
	return nil
}

// IsSeeded reports whether any User node exists.
func (s *Neo4jStore) IsSeeded(ctx context.Context) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "graph.Neo4jStore.IsSeeded")
	defer span.End()
	defer metrics.ObserveQuery("is_seeded", time.Now())

	records, err := s.client.Collect(ctx, `MATCH (u:User) RETURN u.id AS id LIMIT 1`, nil)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to probe graph for seeded state")
		return false, fmt.Errorf("failed to probe seeded state: %w", err)
	}
	return len(records) > 0, nil
}

// ClearAll detaches and deletes every node and relationship.
func (s *Neo4jStore) ClearAll(ctx context.Context) error {
	ctx, span := tracing.StartSpan(ctx, "graph.Neo4jStore.ClearAll")
	defer span.End()
	defer metrics.ObserveQuery("clear_all", time.Now())

	if err := s.client.Exec(ctx, `MATCH (n) DETACH DELETE n`, nil); err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to clear graph")
		return fmt.Errorf("failed to clear graph: %w", err)
	}
	s.logger.WithContext(ctx).Warn("Cleared every node and relationship from graph")
	return nil
}

// SegmentWatches joins each WATCHED edge with the segments of its video.
func (s *Neo4jStore) SegmentWatches(ctx context.Context) ([]models.SegmentWatch, error) {
	ctx, span := tracing.StartSpan(ctx, "graph.Neo4jStore.SegmentWatches")
	defer span.End()
	defer metrics.ObserveQuery("segment_watches", time.Now())

	records, err := s.client.Collect(ctx, `
		MATCH (u:User)-[w:WATCHED]->(v:Video)-[:HAS_SEGMENT]->(s:Segment)
		RETURN u.id AS user, v.id AS video, s.id AS segment,
		       s.start AS seg_start, s.end AS seg_end,
		       w.video_start_time AS watched_start, w.video_end_time AS watched_end
	`, nil)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to read segment watches")
		return nil, fmt.Errorf("failed to read segment watches: %w", err)
	}

	out := make([]models.SegmentWatch, 0, len(records))
	for _, r := range records {
		m := r.AsMap()
		out = append(out, models.SegmentWatch{
			UserID:       asString(m["user"]),
			VideoID:      asString(m["video"]),
			SegmentID:    asString(m["segment"]),
			SegmentStart: derefFloat(asFloat(m["seg_start"])),
			SegmentEnd:   derefFloat(asFloat(m["seg_end"])),
			WatchedStart: asFloat(m["watched_start"]),
			WatchedEnd:   asFloat(m["watched_end"]),
		})
	}
	return out, nil
}

// VideoWatches returns one row per WATCHED edge.
func (s *Neo4jStore) VideoWatches(ctx context.Context) ([]models.VideoWatch, error) {
	ctx, span := tracing.StartSpan(ctx, "graph.Neo4jStore.VideoWatches")
	defer span.End()
	defer metrics.ObserveQuery("video_watches", time.Now())

	records, err := s.client.Collect(ctx, `
		MATCH (u:User)-[w:WATCHED]->(v:Video)
		RETURN u.id AS user_id, v.id AS video_id,
		       w.video_progress_time AS video_progress_time,
		       w.local_watching_time AS local_watching_time
	`, nil)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to read video watches")
		return nil, fmt.Errorf("failed to read video watches: %w", err)
	}

	out := make([]models.VideoWatch, 0, len(records))
	for _, r := range records {
		m := r.AsMap()
		out = append(out, models.VideoWatch{
			UserID:            asString(m["user_id"]),
			VideoID:           asString(m["video_id"]),
			VideoProgressTime: asFloat(m["video_progress_time"]),
			LocalWatchingTime: asFloat(m["local_watching_time"]),
		})
	}
	return out, nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// asFloat accepts the numeric types the driver may return; nil stays nil.
func asFloat(v any) *float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int64:
		f = float64(n)
	case int:
		f = float64(n)
	default:
		return nil
	}
	return &f
}

func derefFloat(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

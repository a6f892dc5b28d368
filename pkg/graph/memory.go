package graph

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"

	"github.com/Ramsey-B/fern/pkg/models"
)

type relKey struct {
	kind models.RelKind
	from string
	to   string
}

// MemoryStore is an in-process Store with the same merge semantics as the
// Neo4j store. It backs offline runs and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	nodes map[models.NodeKind]map[string]map[string]any
	rels  map[relKey]map[string]any
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nodes: make(map[models.NodeKind]map[string]map[string]any),
		rels:  make(map[relKey]map[string]any),
	}
}

func (m *MemoryStore) mergeNode(kind models.NodeKind, key string, props map[string]any) {
	byKey, ok := m.nodes[kind]
	if !ok {
		byKey = make(map[string]map[string]any)
		m.nodes[kind] = byKey
	}
	node, ok := byKey[key]
	if !ok {
		node = map[string]any{"id": key}
		byKey[key] = node
	}
	maps.Copy(node, cleanProps(props))
}

func (m *MemoryStore) hasNode(kind models.NodeKind, key string) bool {
	_, ok := m.nodes[kind][key]
	return ok
}

func (m *MemoryStore) UpsertEntity(_ context.Context, kind models.NodeKind, key string, props map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mergeNode(kind, key, props)
	return nil
}

func (m *MemoryStore) UpsertRelationship(_ context.Context, rel models.Relationship) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	fromKind, toKind := rel.Kind().Endpoints()
	if fromKind == "" {
		return fmt.Errorf("unknown relationship kind %q", rel.Kind())
	}
	if rel.Kind().StubsCourse() {
		m.mergeNode(toKind, rel.To(), nil)
	}
	if !m.hasNode(fromKind, rel.From()) || !m.hasNode(toKind, rel.To()) {
		return fmt.Errorf("%w: %s %s->%s", ErrEndpointMissing, rel.Kind(), rel.From(), rel.To())
	}

	k := relKey{kind: rel.Kind(), from: rel.From(), to: rel.To()}
	props, ok := m.rels[k]
	if !ok {
		props = make(map[string]any)
		m.rels[k] = props
	}
	maps.Copy(props, cleanProps(rel.Props()))
	return nil
}

func (m *MemoryStore) IsSeeded(_ context.Context) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.nodes[models.KindUser]) > 0, nil
}

func (m *MemoryStore) ClearAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nodes = make(map[models.NodeKind]map[string]map[string]any)
	m.rels = make(map[relKey]map[string]any)
	return nil
}

// SegmentWatches returns rows ordered by user, video and segment index.
func (m *MemoryStore) SegmentWatches(_ context.Context) ([]models.SegmentWatch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	segmentsOf := make(map[string][]relKey)
	for k := range m.rels {
		if k.kind == models.RelHasSegment {
			segmentsOf[k.from] = append(segmentsOf[k.from], k)
		}
	}

	var out []models.SegmentWatch
	for _, w := range m.sortedRels(models.RelWatched) {
		props := m.rels[w]
		segs := segmentsOf[w.to]
		sort.Slice(segs, func(i, j int) bool {
			return indexOf(m.rels[segs[i]]) < indexOf(m.rels[segs[j]])
		})
		for _, hs := range segs {
			seg := m.nodes[models.KindSegment][hs.to]
			out = append(out, models.SegmentWatch{
				UserID:       w.from,
				VideoID:      w.to,
				SegmentID:    hs.to,
				SegmentStart: derefFloat(asFloat(seg["start"])),
				SegmentEnd:   derefFloat(asFloat(seg["end"])),
				WatchedStart: asFloat(props["video_start_time"]),
				WatchedEnd:   asFloat(props["video_end_time"]),
			})
		}
	}
	return out, nil
}

// VideoWatches returns one row per WATCHED relationship ordered by user and video.
func (m *MemoryStore) VideoWatches(_ context.Context) ([]models.VideoWatch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.VideoWatch
	for _, w := range m.sortedRels(models.RelWatched) {
		props := m.rels[w]
		out = append(out, models.VideoWatch{
			UserID:            w.from,
			VideoID:           w.to,
			VideoProgressTime: asFloat(props["video_progress_time"]),
			LocalWatchingTime: asFloat(props["local_watching_time"]),
		})
	}
	return out, nil
}

// Node returns a copy of a node's properties.
func (m *MemoryStore) Node(kind models.NodeKind, key string) (map[string]any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.nodes[kind][key]
	if !ok {
		return nil, false
	}
	return maps.Clone(n), true
}

// Relationship returns a copy of a relationship's properties.
func (m *MemoryStore) Relationship(kind models.RelKind, from, to string) (map[string]any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rels[relKey{kind: kind, from: from, to: to}]
	if !ok {
		return nil, false
	}
	return maps.Clone(r), true
}

// CountNodes returns the number of nodes of a kind.
func (m *MemoryStore) CountNodes(kind models.NodeKind) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.nodes[kind])
}

// CountRelationships returns the number of relationships of a kind.
func (m *MemoryStore) CountRelationships(kind models.RelKind) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for k := range m.rels {
		if k.kind == kind {
			n++
		}
	}
	return n
}

func (m *MemoryStore) sortedRels(kind models.RelKind) []relKey {
	var out []relKey
	for k := range m.rels {
		if k.kind == kind {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].from != out[j].from {
			return out[i].from < out[j].from
		}
		return out[i].to < out[j].to
	})
	return out
}

func indexOf(props map[string]any) int {
	if i, ok := props["index"].(int); ok {
		return i
	}
	return 0
}

// Snapshot returns a copy of every node and relationship keyed as
// "Kind/id" and "TYPE/from->to".
func (m *MemoryStore) Snapshot() map[string]map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]map[string]any)
	for kind, byKey := range m.nodes {
		for key, props := range byKey {
			out[string(kind)+"/"+key] = maps.Clone(props)
		}
	}
	for k, props := range m.rels {
		out[string(k.kind)+"/"+k.from+"->"+k.to] = maps.Clone(props)
	}
	return out
}

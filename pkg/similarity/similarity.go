// Package similarity drives the embedding and nearest-neighbour protocol of
// the graph analytics engine for a named projection.
package similarity

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Analytics is the graph analytics capability. graph.GDS implements it.
type Analytics interface {
	DropProjection(ctx context.Context, graphName string) error
	Project(ctx context.Context, graphName, label string, relTypes, nodeProperties []string) error
	WriteEmbedding(ctx context.Context, graphName, property string) error
	StreamKNN(ctx context.Context, graphName, property string, topK int) ([]models.SimilarPair, error)
}

// Cache stores finished listings by projection name.
type Cache interface {
	GetPairs(ctx context.Context, key string) ([]models.SimilarPair, bool, error)
	SetPairs(ctx context.Context, key string, pairs []models.SimilarPair, ttl time.Duration) error
}

// Result is the listing of one projection.
type Result struct {
	Projection models.Projection    `json:"projection"`
	Pairs      []models.SimilarPair `json:"pairs"`
	Cached     bool                 `json:"cached"`
}

// Linker runs projections against an Analytics implementation.
type Linker struct {
	analytics Analytics
	catalog   *Catalog
	topK      int
	cache     Cache
	cacheTTL  time.Duration
	logger    ectologger.Logger
}

// NewLinker creates a linker. topK below 1 falls back to 5.
func NewLinker(analytics Analytics, catalog *Catalog, topK int, logger ectologger.Logger) *Linker {
	if topK < 1 {
		topK = 5
	}
	return &Linker{
		analytics: analytics,
		catalog:   catalog,
		topK:      topK,
		logger:    logger,
	}
}

// WithCache enables caching of listings for ttl.
func (l *Linker) WithCache(c Cache, ttl time.Duration) *Linker {
	l.cache = c
	l.cacheTTL = ttl
	return l
}

// Link runs the protocol for the named projection and returns deduplicated
// pairs ordered by descending similarity.
func (l *Linker) Link(ctx context.Context, name string) (*Result, error) {
	ctx, span := tracing.StartSpan(ctx, "similarity.Linker.Link")
	defer span.End()

	proj, err := l.catalog.Get(name)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{
		"projection": proj.Name,
		"graph":      proj.Graph,
	}

	cacheKey := fmt.Sprintf("%s:k%d", proj.Name, l.topK)
	if l.cache != nil {
		pairs, ok, err := l.cache.GetPairs(ctx, cacheKey)
		if err != nil {
			l.logger.WithContext(ctx).WithFields(fields).WithError(err).Warn("Failed to read similarity cache, recomputing")
		} else if ok {
			return &Result{Projection: proj, Pairs: pairs, Cached: true}, nil
		}
	}

	pairs, err := l.run(ctx, proj)
	if err != nil {
		return nil, err
	}
	pairs = Dedupe(pairs)

	if l.cache != nil {
		if err := l.cache.SetPairs(ctx, cacheKey, pairs, l.cacheTTL); err != nil {
			l.logger.WithContext(ctx).WithFields(fields).WithError(err).Warn("Failed to write similarity cache")
		}
	}
	l.logger.WithContext(ctx).WithFields(fields).WithField("pairs", len(pairs)).Info("Computed similarity listing")
	return &Result{Projection: proj, Pairs: pairs}, nil
}

func (l *Linker) run(ctx context.Context, proj models.Projection) ([]models.SimilarPair, error) {
	prop := l.catalog.EmbeddingProperty
	log := l.logger.WithContext(ctx).WithField("graph", proj.Graph)

	if err := l.analytics.DropProjection(ctx, proj.Graph); err != nil {
		return nil, err
	}

	log.Infof("Projecting %s graph", proj.Label)
	if err := l.analytics.Project(ctx, proj.Graph, proj.Label, proj.Relationships, nil); err != nil {
		return nil, err
	}

	log.Infof("Running node2vec for %s", proj.Label)
	if err := l.analytics.WriteEmbedding(ctx, proj.Graph, prop); err != nil {
		l.dropQuietly(ctx, proj.Graph)
		return nil, err
	}

	if err := l.analytics.DropProjection(ctx, proj.Graph); err != nil {
		return nil, err
	}
	log.Infof("Re-projecting %s graph with embedding property", proj.Label)
	if err := l.analytics.Project(ctx, proj.Graph, proj.Label, proj.ReprojectRelationships(), []string{prop}); err != nil {
		return nil, err
	}

	log.Infof("Finding top %d similar %s nodes using KNN", l.topK, proj.Label)
	pairs, err := l.analytics.StreamKNN(ctx, proj.Graph, prop, l.topK)
	l.dropQuietly(ctx, proj.Graph)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Similarity > pairs[j].Similarity
	})
	return pairs, nil
}

func (l *Linker) dropQuietly(ctx context.Context, graphName string) {
	if err := l.analytics.DropProjection(ctx, graphName); err != nil {
		l.logger.WithContext(ctx).WithError(err).WithField("graph", graphName).Warn("Failed to drop projection")
	}
}

// Dedupe keeps the first occurrence of every unordered pair and drops
// self-pairs.
func Dedupe(pairs []models.SimilarPair) []models.SimilarPair {
	type key struct{ a, b string }
	seen := make(map[key]bool, len(pairs))
	out := make([]models.SimilarPair, 0, len(pairs))
	for _, p := range pairs {
		if p.ID1 == p.ID2 {
			continue
		}
		k := key{p.ID1, p.ID2}
		if k.b < k.a {
			k.a, k.b = k.b, k.a
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return out
}

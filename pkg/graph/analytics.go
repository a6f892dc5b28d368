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

// GDS drives the Graph Data Science procedures of the store.
type GDS struct {
	client *Client
	logger ectologger.Logger
}

// NewGDS creates a GDS caller.
func NewGDS(client *Client, logger ectologger.Logger) *GDS {
	return &GDS{
		client: client,
		logger: logger,
	}
}

// DropProjection removes a named in-memory graph if it exists.
func (g *GDS) DropProjection(ctx context.Context, graphName string) error {
	ctx, span := tracing.StartSpan(ctx, "graph.GDS.DropProjection")
	defer span.End()
	defer metrics.ObserveQuery("gds_drop", time.Now())

	if err := g.client.Exec(ctx, `CALL gds.graph.drop($name, false) YIELD graphName RETURN graphName`, map[string]any{
		"name": graphName,
	}); err != nil {
		g.logger.WithContext(ctx).WithError(err).WithField("graph", graphName).Error("Failed to drop projection")
		return fmt.Errorf("failed to drop projection %s: %w", graphName, err)
	}
	return nil
}

// Project creates an undirected projection of label over relTypes, loading
// nodeProperties onto the projected nodes.
func (g *GDS) Project(ctx context.Context, graphName, label string, relTypes, nodeProperties []string) error {
	ctx, span := tracing.StartSpan(ctx, "graph.GDS.Project")
	defer span.End()
	defer metrics.ObserveQuery("gds_project", time.Now())

	nodeSpec := map[string]any{}
	if len(nodeProperties) > 0 {
		nodeSpec["properties"] = nodeProperties
	}
	nodes := map[string]any{sanitizeLabel(label): nodeSpec}

	rels := make(map[string]any, len(relTypes))
	for _, rt := range relTypes {
		name := sanitizeLabel(rt)
		rels[name] = map[string]any{
			"type":        name,
			"orientation": "UNDIRECTED",
		}
	}

	log := g.logger.WithContext(ctx).WithFields(map[string]any{
		"graph":         graphName,
		"label":         label,
		"relationships": relTypes,
	})
	if err := g.client.Exec(ctx, `CALL gds.graph.project($name, $nodes, $rels) YIELD graphName RETURN graphName`, map[string]any{
		"name":  graphName,
		"nodes": nodes,
		"rels":  rels,
	}); err != nil {
		log.WithError(err).Error("Failed to project graph")
		return fmt.Errorf("failed to project %s: %w", graphName, err)
	}
	log.Debug("Projected graph")
	return nil
}

// WriteEmbedding runs node2vec on a projection and writes the vectors to
// property on the stored nodes.
func (g *GDS) WriteEmbedding(ctx context.Context, graphName, property string) error {
	ctx, span := tracing.StartSpan(ctx, "graph.GDS.WriteEmbedding")
	defer span.End()
	defer metrics.ObserveQuery("gds_node2vec_write", time.Now())

	if err := g.client.Exec(ctx, `CALL gds.node2vec.write($name, {writeProperty: $property}) YIELD nodePropertiesWritten RETURN nodePropertiesWritten`, map[string]any{
		"name":     graphName,
		"property": property,
	}); err != nil {
		g.logger.WithContext(ctx).WithError(err).WithField("graph", graphName).Error("Failed to write embeddings")
		return fmt.Errorf("failed to write embeddings for %s: %w", graphName, err)
	}
	return nil
}

// StreamKNN returns the topK nearest neighbours of every projected node by
// property, ordered by descending similarity.
func (g *GDS) StreamKNN(ctx context.Context, graphName, property string, topK int) ([]models.SimilarPair, error) {
	ctx, span := tracing.StartSpan(ctx, "graph.GDS.StreamKNN")
	defer span.End()
	defer metrics.ObserveQuery("gds_knn_stream", time.Now())

	res, err := g.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, `
			CALL gds.knn.stream($name, {topK: $topK, nodeProperties: [$property]})
			YIELD node1, node2, similarity
			RETURN gds.util.asNode(node1).id AS id1, gds.util.asNode(node2).id AS id2, similarity
			ORDER BY similarity DESC
		`, map[string]any{
			"name":     graphName,
			"topK":     topK,
			"property": property,
		})
		if err != nil {
			return nil, err
		}
		return result.Collect(ctx)
	})
	if err != nil {
		g.logger.WithContext(ctx).WithError(err).WithField("graph", graphName).Error("Failed to stream KNN results")
		return nil, fmt.Errorf("failed to stream knn for %s: %w", graphName, err)
	}

	records := res.([]*neo4j.Record)
	out := make([]models.SimilarPair, 0, len(records))
	for _, r := range records {
		m := r.AsMap()
		out = append(out, models.SimilarPair{
			ID1:        asString(m["id1"]),
			ID2:        asString(m["id2"]),
			Similarity: derefFloat(asFloat(m["similarity"])),
		})
	}
	return out, nil
}

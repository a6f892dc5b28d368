package models

// SimilarPair is one (id1, id2, similarity) tuple streamed by a KNN query.
type SimilarPair struct {
	ID1        string  `json:"id1"`
	ID2        string  `json:"id2"`
	Similarity float64 `json:"similarity"`
}

// Projection describes a named in-memory subgraph for embedding and KNN.
// Graph is the catalog name used by the analytics engine. Reproject lists
// the relationship types used after the embedding is written; empty means
// the same as Relationships.
type Projection struct {
	Name          string   `yaml:"name" json:"name"`
	Graph         string   `yaml:"graph" json:"graph"`
	Label         string   `yaml:"label" json:"label"`
	Relationships []string `yaml:"relationships" json:"relationships"`
	Reproject     []string `yaml:"reproject,omitempty" json:"reproject,omitempty"`
}

// ReprojectRelationships returns the relationship types of the second projection.
func (p Projection) ReprojectRelationships() []string {
	if len(p.Reproject) > 0 {
		return p.Reproject
	}
	return p.Relationships
}

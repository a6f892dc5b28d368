package similarity

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/Ramsey-B/fern/pkg/models"
)

//go:embed projections.yaml
var defaultProjections []byte

// ErrUnknownProjection is returned for a projection name that is not defined.
var ErrUnknownProjection = errors.New("unknown projection")

// Catalog is the set of named projections.
type Catalog struct {
	EmbeddingProperty string              `yaml:"embedding_property"`
	Projections       []models.Projection `yaml:"projections"`
}

// LoadCatalog reads projections from path, or the built-in set when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	data := defaultProjections
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read projections file %s: %w", path, err)
		}
		data = b
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and checks a projection catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse projections: %w", err)
	}
	if c.EmbeddingProperty == "" {
		c.EmbeddingProperty = "node2vecEmbedding"
	}
	seen := make(map[string]bool, len(c.Projections))
	for i, p := range c.Projections {
		if p.Name == "" || p.Label == "" || len(p.Relationships) == 0 {
			return nil, fmt.Errorf("projection %d needs a name, a label and relationships", i)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("duplicate projection %q", p.Name)
		}
		seen[p.Name] = true
		if p.Graph == "" {
			c.Projections[i].Graph = p.Name + "Graph"
		}
	}
	return &c, nil
}

// Get returns a projection by name.
func (c *Catalog) Get(name string) (models.Projection, error) {
	for _, p := range c.Projections {
		if p.Name == name {
			return p, nil
		}
	}
	return models.Projection{}, fmt.Errorf("%w: %s", ErrUnknownProjection, name)
}

// Names returns the projection names in sorted order.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.Projections))
	for _, p := range c.Projections {
		out = append(out, p.Name)
	}
	sort.Strings(out)
	return out
}

package session

import (
	_ "embed"
	"fmt"

	apperrors "effects-studio/internal/errors"

	"gopkg.in/yaml.v3"
)

//go:embed models.yaml
var catalogYAML []byte

// ModelInfo describes one entry of the published weights catalog.
type ModelInfo struct {
	ID          string `yaml:"id" json:"id"`
	DisplayName string `yaml:"display_name" json:"displayName"`
	Description string `yaml:"description" json:"description"`
	Specialty   string `yaml:"specialty" json:"specialty"`
	File        string `yaml:"file" json:"file"`
	URL         string `yaml:"url" json:"url"`
	SizeBytes   int64  `yaml:"size_bytes" json:"sizeBytes"`
}

// Catalog lists the models this build knows how to fetch and load.
type Catalog struct {
	models []ModelInfo
	byID   map[string]ModelInfo
}

// LoadCatalog parses the embedded catalog. The embed guarantees the
// binary always agrees with itself about available models.
func LoadCatalog() (*Catalog, error) {
	var doc struct {
		Models []ModelInfo `yaml:"models"`
	}
	if err := yaml.Unmarshal(catalogYAML, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse model catalog: %w", err)
	}
	if len(doc.Models) == 0 {
		return nil, fmt.Errorf("model catalog is empty")
	}

	byID := make(map[string]ModelInfo, len(doc.Models))
	for _, m := range doc.Models {
		if m.ID == "" || m.File == "" || m.URL == "" {
			return nil, fmt.Errorf("model catalog entry %q is incomplete", m.ID)
		}
		if _, exists := byID[m.ID]; exists {
			return nil, fmt.Errorf("model catalog lists %q twice", m.ID)
		}
		byID[m.ID] = m
	}

	return &Catalog{models: doc.Models, byID: byID}, nil
}

// List returns the catalog entries in file order.
func (c *Catalog) List() []ModelInfo {
	out := make([]ModelInfo, len(c.models))
	copy(out, c.models)
	return out
}

// Get resolves a model id.
func (c *Catalog) Get(id string) (ModelInfo, error) {
	info, ok := c.byID[id]
	if !ok {
		return ModelInfo{}, apperrors.NewNotFoundError(
			fmt.Sprintf("model %q is not in the catalog", id),
		).WithDetail("model", id)
	}
	return info, nil
}

package catalog

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ailubes/veterans-orden-sub001/internal/domain"
	"github.com/ailubes/veterans-orden-sub001/internal/repository"
)

// LoadFile reads rank requirements from a YAML seed file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var doc struct {
		Ranks []domain.RankRequirement `yaml:"ranks"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	return New(doc.Ranks)
}

// LoadRepository reads rank requirements from the database.
func LoadRepository(ctx context.Context, repo repository.RequirementRepository) (*Catalog, error) {
	reqs, err := repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rank requirements: %w", err)
	}
	return New(reqs)
}

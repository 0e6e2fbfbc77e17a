package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed seed/default.yaml
var defaultSeed []byte

// SeedCatalog is the on-disk form of catalog seed data.
type SeedCatalog struct {
	Resources  []Resource  `yaml:"resources"`
	Weightages []Weightage `yaml:"weightages"`
}

// SeedResult reports how many rows a Seed call inserted.
type SeedResult struct {
	Resources  int
	Weightages int
}

// DefaultSeed returns the built-in catalog.
func DefaultSeed() (*SeedCatalog, error) {
	var cat SeedCatalog
	if err := yaml.Unmarshal(defaultSeed, &cat); err != nil {
		return nil, fmt.Errorf("parse default seed: %w", err)
	}
	return &cat, nil
}

// LoadSeed reads every YAML file under rootDir and merges them into one
// catalog. An empty rootDir yields the built-in catalog.
func LoadSeed(rootDir string) (*SeedCatalog, error) {
	if rootDir == "" {
		return DefaultSeed()
	}

	cat := &SeedCatalog{}
	err := filepath.Walk(rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml") {
			return nil
		}
		return cat.loadFile(path)
	})
	if err != nil {
		return nil, fmt.Errorf("loading seed catalog: %w", err)
	}

	slog.Info("seed catalog loaded",
		"path", rootDir,
		"resources", len(cat.Resources),
		"weightages", len(cat.Weightages),
	)
	return cat, nil
}

func (c *SeedCatalog) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var part SeedCatalog
	if err := yaml.Unmarshal(data, &part); err != nil {
		slog.Warn("skipping invalid seed YAML", "path", path, "error", err)
		return nil
	}

	c.Resources = append(c.Resources, part.Resources...)
	c.Weightages = append(c.Weightages, part.Weightages...)
	return nil
}

// Seed fills empty tables from cat. Each table is seeded only when it has no
// rows, so restarts never duplicate data. Invalid entries are skipped.
func Seed(ctx context.Context, store Store, cat *SeedCatalog) (SeedResult, error) {
	var res SeedResult

	n, err := store.CountResources(ctx)
	if err != nil {
		return res, fmt.Errorf("count resources: %w", err)
	}
	if n == 0 {
		for i, r := range cat.Resources {
			if err := ValidateResource(r); err != nil {
				slog.Warn("skipping invalid seed resource", "index", i, "error", err)
				continue
			}
			if _, err := store.CreateResource(ctx, r); err != nil {
				return res, fmt.Errorf("seed resource %d: %w", i, err)
			}
			res.Resources++
		}
	}

	n, err = store.CountWeightages(ctx)
	if err != nil {
		return res, fmt.Errorf("count weightages: %w", err)
	}
	if n == 0 {
		for i, w := range cat.Weightages {
			if err := ValidateWeightage(w); err != nil {
				slog.Warn("skipping invalid seed weightage", "index", i, "error", err)
				continue
			}
			if _, err := store.CreateWeightage(ctx, w); err != nil {
				return res, fmt.Errorf("seed weightage %d: %w", i, err)
			}
			res.Weightages++
		}
	}

	if res.Resources > 0 || res.Weightages > 0 {
		slog.Info("catalog seeded", "resources", res.Resources, "weightages", res.Weightages)
	}
	return res, nil
}

package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"beacon-dashboard/internal/domain"
)

type CategoriesFile struct {
	Categories []domain.Category `yaml:"categories"`
}

// OverlayCategories replaces the category table with the one in path.
func OverlayCategories(cfg *Config, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var cf CategoriesFile
	if err := yaml.Unmarshal(b, &cf); err != nil {
		return err
	}

	if len(cf.Categories) > 0 {
		cfg.Categories = cf.Categories
	}
	if len(cfg.Categories) == 0 {
		cfg.Categories = domain.DefaultCategories()
	}
	return nil
}

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"freeze_dryer/internal/models"
)

type recipeFile struct {
	Recipes []models.Recipe `yaml:"recipes"`
}

// LoadRecipes reads extra recipes from a YAML file. An empty path yields none.
func LoadRecipes(path string) ([]models.Recipe, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recipes file: %w", err)
	}
	var f recipeFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse recipes file %s: %w", path, err)
	}
	return f.Recipes, nil
}

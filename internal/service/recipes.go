package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"freeze_dryer/internal/logger"
	"freeze_dryer/internal/models"
	"freeze_dryer/internal/repository"
)

type RecipeService struct {
	repo repository.RecipeRepo
	log  *logger.Logger
}

func NewRecipeService(repo repository.RecipeRepo, log *logger.Logger) *RecipeService {
	if log == nil {
		log = logger.Nop()
	}
	return &RecipeService{repo: repo, log: log}
}

func (s *RecipeService) List(ctx context.Context) ([]models.Recipe, error) {
	return s.repo.List(ctx)
}

func (s *RecipeService) Get(ctx context.Context, id string) (models.Recipe, error) {
	r, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Recipe{}, fmt.Errorf("%w: %q", ErrRecipeNotFound, id)
	}
	return r, err
}

// Create validates and stores a new recipe. Missing recipe and step IDs are generated.
func (s *RecipeService) Create(ctx context.Context, r models.Recipe) (models.Recipe, error) {
	r = r.Clone()
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return models.Recipe{}, fmt.Errorf("%w: name is required", models.ErrInvalidRecipe)
	}
	if r.ID == "" {
		r.ID = "rec_" + uuid.NewString()
	}
	for i := range r.Steps {
		if r.Steps[i].ID == "" {
			r.Steps[i].ID = fmt.Sprintf("step%d", i+1)
		}
	}
	if err := r.Validate(); err != nil {
		return models.Recipe{}, err
	}
	if err := s.repo.Save(ctx, r); err != nil {
		return models.Recipe{}, err
	}
	return r, nil
}

func (s *RecipeService) Delete(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %q", ErrRecipeNotFound, id)
	}
	return err
}

// EnsureDefaults stores the built-in recipes and extra ones that are not present yet.
// Invalid extra recipes are skipped with a warning.
func (s *RecipeService) EnsureDefaults(ctx context.Context, extra []models.Recipe) error {
	all := append(models.DefaultRecipes(), extra...)
	for _, r := range all {
		if err := r.Validate(); err != nil || r.ID == "" {
			s.log.Warnw("recipe_seed_skipped", "recipe_id", r.ID, "err", err)
			continue
		}
		_, err := s.repo.Get(ctx, r.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if err := s.repo.Save(ctx, r); err != nil {
			return err
		}
		s.log.Infow("recipe_seeded", "recipe_id", r.ID, "name", r.Name)
	}
	return nil
}

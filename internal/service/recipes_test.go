package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"freeze_dryer/internal/models"
)

func TestRecipeService_Create(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      models.Recipe
		wantErr error
		check   func(t *testing.T, got models.Recipe)
	}{
		{
			name: "generates ids",
			in: models.Recipe{Name: "  Herbs ", Steps: []models.RecipeStep{
				{Name: "Freeze", Temperature: -35, Pressure: 760000, Duration: 90},
				{Name: "Dry", Temperature: 15, Pressure: 150, Duration: 300},
			}},
			check: func(t *testing.T, got models.Recipe) {
				if !strings.HasPrefix(got.ID, "rec_") {
					t.Errorf("ID = %q", got.ID)
				}
				if got.Name != "Herbs" {
					t.Errorf("Name = %q", got.Name)
				}
				if got.Steps[0].ID != "step1" || got.Steps[1].ID != "step2" {
					t.Errorf("step ids = %q, %q", got.Steps[0].ID, got.Steps[1].ID)
				}
			},
		},
		{
			name: "keeps given ids",
			in: models.Recipe{ID: "rec_mine", Name: "Mine", Steps: []models.RecipeStep{
				{ID: "a", Name: "A", Duration: 1},
			}},
			check: func(t *testing.T, got models.Recipe) {
				if got.ID != "rec_mine" || got.Steps[0].ID != "a" {
					t.Errorf("ids rewritten: %+v", got)
				}
			},
		},
		{
			name:    "blank name",
			in:      models.Recipe{Name: "  ", Steps: []models.RecipeStep{{Name: "A", Duration: 1}}},
			wantErr: models.ErrInvalidRecipe,
		},
		{
			name:    "no steps",
			in:      models.Recipe{Name: "Empty"},
			wantErr: models.ErrInvalidRecipe,
		},
		{
			name:    "zero duration",
			in:      models.Recipe{Name: "Bad", Steps: []models.RecipeStep{{Name: "A", Duration: 0}}},
			wantErr: models.ErrInvalidRecipe,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			repo := newMemRecipes()
			svc := NewRecipeService(repo, nil)

			got, err := svc.Create(context.Background(), tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if list, _ := repo.List(context.Background()); len(list) != 0 {
					t.Fatalf("invalid recipe stored")
				}
				return
			}
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			tt.check(t, got)
			stored, err := repo.Get(context.Background(), got.ID)
			if err != nil || stored.Name != got.Name {
				t.Fatalf("stored = %+v, %v", stored, err)
			}
		})
	}
}

func TestRecipeService_Create_DoesNotAliasInput(t *testing.T) {
	svc := NewRecipeService(newMemRecipes(), nil)
	in := models.Recipe{Name: "X", Steps: []models.RecipeStep{{Name: "A", Duration: 1}}}

	if _, err := svc.Create(context.Background(), in); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if in.Steps[0].ID != "" {
		t.Fatalf("caller's steps were modified")
	}
}

func TestRecipeService_GetAndDeleteMissing(t *testing.T) {
	svc := NewRecipeService(newMemRecipes(), nil)
	ctx := context.Background()

	if _, err := svc.Get(ctx, "nope"); !errors.Is(err, ErrRecipeNotFound) {
		t.Errorf("Get: expected ErrRecipeNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, "nope"); !errors.Is(err, ErrRecipeNotFound) {
		t.Errorf("Delete: expected ErrRecipeNotFound, got %v", err)
	}
}

func TestRecipeService_EnsureDefaults(t *testing.T) {
	ctx := context.Background()
	defaults := models.DefaultRecipes()

	edited := defaults[0].Clone()
	edited.Name = "Operator edited"
	repo := newMemRecipes(edited)
	svc := NewRecipeService(repo, nil)

	extra := []models.Recipe{
		{ID: "rec_yaml", Name: "From file", Steps: []models.RecipeStep{{ID: "s", Name: "S", Duration: 5}}},
		{ID: "rec_broken", Name: "Broken"},
	}
	if err := svc.EnsureDefaults(ctx, extra); err != nil {
		t.Fatalf("EnsureDefaults: %v", err)
	}

	list, _ := repo.List(ctx)
	if len(list) != len(defaults)+1 {
		t.Fatalf("expected %d recipes, got %d", len(defaults)+1, len(list))
	}
	if got, _ := repo.Get(ctx, defaults[0].ID); got.Name != "Operator edited" {
		t.Errorf("existing recipe overwritten: %q", got.Name)
	}
	if _, err := repo.Get(ctx, "rec_broken"); err == nil {
		t.Errorf("invalid recipe seeded")
	}

	// second run is a no-op
	if err := svc.EnsureDefaults(ctx, extra); err != nil {
		t.Fatalf("EnsureDefaults again: %v", err)
	}
	if again, _ := repo.List(ctx); len(again) != len(list) {
		t.Fatalf("second seed changed the catalog: %d -> %d", len(list), len(again))
	}
}

func TestRecipeService_EnsureDefaults_RepoError(t *testing.T) {
	repo := newMemRecipes()
	repo.getErr = errors.New("db closed")
	svc := NewRecipeService(repo, nil)

	if err := svc.EnsureDefaults(context.Background(), nil); err == nil {
		t.Fatalf("expected error")
	}
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"freeze_dryer/internal/models"
)

type RecipeSQLite struct {
	db *sql.DB
}

func NewRecipeSQLite(db *sql.DB) *RecipeSQLite { return &RecipeSQLite{db: db} }

var _ RecipeRepo = (*RecipeSQLite)(nil)

const (
	upsertRecipeSQL = `
		INSERT INTO recipes (id, name, description, steps)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name,
			description=excluded.description,
			steps=excluded.steps
	`
	selectRecipeSQL  = `SELECT id, name, description, steps FROM recipes WHERE id = ?`
	selectRecipesSQL = `SELECT id, name, description, steps FROM recipes ORDER BY rowid ASC`
	deleteRecipeSQL  = `DELETE FROM recipes WHERE id = ?`
)

type rowScanner interface {
	Scan(dest ...any) error
}

// Save inserts the recipe or replaces the one with the same ID.
func (r *RecipeSQLite) Save(ctx context.Context, rc models.Recipe) error {
	steps, err := json.Marshal(rc.Steps)
	if err != nil {
		return fmt.Errorf("marshal steps of recipe %q: %w", rc.ID, err)
	}
	if _, err := r.db.ExecContext(ctx, upsertRecipeSQL, rc.ID, rc.Name, rc.Description, string(steps)); err != nil {
		return fmt.Errorf("save recipe %q: %w", rc.ID, err)
	}
	return nil
}

func (r *RecipeSQLite) Get(ctx context.Context, id string) (models.Recipe, error) {
	rc, err := scanRecipe(r.db.QueryRowContext(ctx, selectRecipeSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Recipe{}, fmt.Errorf("recipe %q: %w", id, ErrNotFound)
		}
		return models.Recipe{}, fmt.Errorf("select recipe %q: %w", id, err)
	}
	return rc, nil
}

// List returns recipes in insertion order.
func (r *RecipeSQLite) List(ctx context.Context) ([]models.Recipe, error) {
	rows, err := r.db.QueryContext(ctx, selectRecipesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Recipe, 0, 8)
	for rows.Next() {
		rc, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}

func (r *RecipeSQLite) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, deleteRecipeSQL, id)
	if err != nil {
		return fmt.Errorf("delete recipe %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete recipe %q: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("recipe %q: %w", id, ErrNotFound)
	}
	return nil
}

func scanRecipe(s rowScanner) (models.Recipe, error) {
	var (
		rc    models.Recipe
		steps string
	)
	if err := s.Scan(&rc.ID, &rc.Name, &rc.Description, &steps); err != nil {
		return models.Recipe{}, err
	}
	if err := json.Unmarshal([]byte(steps), &rc.Steps); err != nil {
		return models.Recipe{}, fmt.Errorf("decode steps of recipe %q: %w", rc.ID, err)
	}
	return rc, nil
}

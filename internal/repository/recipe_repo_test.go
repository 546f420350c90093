package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"freeze_dryer/internal/models"
)

var recipeColumns = []string{"id", "name", "description", "steps"}

func newRecipeMock(t *testing.T) (*RecipeSQLite, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet sqlmock expectations: %v", err)
		}
		_ = db.Close()
	})
	return NewRecipeSQLite(db), mock
}

func TestRecipeSave_StoresStepsAsJSON(t *testing.T) {
	repo, mock := newRecipeMock(t)
	r := models.Recipe{ID: "r1", Name: "Quick", Description: "d", Steps: []models.RecipeStep{{ID: "a", Name: "Freeze", Temperature: -30, Pressure: 500, Duration: 10}}}

	mock.ExpectExec(regexp.QuoteMeta(upsertRecipeSQL)).
		WithArgs("r1", "Quick", "d", `[{"id":"a","name":"Freeze","temperature":-30,"pressure":500,"duration":10}]`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Save(context.Background(), r); err != nil {
		t.Fatalf("Save: %v", err)
	}
}

func TestRecipeGet(t *testing.T) {
	tests := []struct {
		name     string
		expect   func(sqlmock.Sqlmock)
		wantErr  error
		anyError bool
		wantName string
	}{
		{
			name: "found",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(selectRecipeSQL)).WithArgs("r1").
					WillReturnRows(sqlmock.NewRows(recipeColumns).AddRow("r1", "Quick", "", `[{"id":"a","duration":1}]`))
			},
			wantName: "Quick",
		},
		{
			name: "missing",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(selectRecipeSQL)).WithArgs("r1").WillReturnError(sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "corrupt steps",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(selectRecipeSQL)).WithArgs("r1").
					WillReturnRows(sqlmock.NewRows(recipeColumns).AddRow("r1", "Quick", "", `{`))
			},
			anyError: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRecipeMock(t)
			tt.expect(mock)

			got, err := repo.Get(context.Background(), "r1")
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
			case tt.anyError:
				if err == nil {
					t.Fatalf("expected an error")
				}
			default:
				if err != nil {
					t.Fatalf("Get: %v", err)
				}
				if got.Name != tt.wantName || len(got.Steps) != 1 {
					t.Fatalf("unexpected recipe %+v", got)
				}
			}
		})
	}
}

func TestRecipeList_PreservesOrder(t *testing.T) {
	repo, mock := newRecipeMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(selectRecipesSQL)).
		WillReturnRows(sqlmock.NewRows(recipeColumns).
			AddRow("b", "Second", "", `[]`).
			AddRow("a", "First", "", `[{"id":"x","duration":2}]`))

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "a" || len(got[1].Steps) != 1 {
		t.Fatalf("unexpected list %+v", got)
	}
}

func TestRecipeDelete(t *testing.T) {
	repo, mock := newRecipeMock(t)
	mock.ExpectExec(regexp.QuoteMeta(deleteRecipeSQL)).WithArgs("r1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(deleteRecipeSQL)).WithArgs("r1").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "r1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(context.Background(), "r1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Delete: expected ErrNotFound, got %v", err)
	}
}

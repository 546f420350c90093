package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"freeze_dryer/internal/models"
)

type StateSQLite struct {
	db *sql.DB
}

func NewStateSQLite(db *sql.DB) *StateSQLite {
	return &StateSQLite{db: db}
}

const (
	dryerStateRowID = 1

	upsertStateSQL = `
		INSERT INTO dryer_state (id, is_connected, step_index, temperature_c, pressure_mtorr, elapsed_s, process_state, recipe, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			is_connected=excluded.is_connected,
			step_index=excluded.step_index,
			temperature_c=excluded.temperature_c,
			pressure_mtorr=excluded.pressure_mtorr,
			elapsed_s=excluded.elapsed_s,
			process_state=excluded.process_state,
			recipe=excluded.recipe,
			updated_at=excluded.updated_at
	`

	selectStateSQL = `
		SELECT is_connected, step_index, temperature_c, pressure_mtorr, elapsed_s, process_state, recipe, updated_at
		FROM dryer_state WHERE id=?
	`
)

// marshalRecipe stores a nil recipe as SQL NULL.
func marshalRecipe(r *models.Recipe) (any, error) {
	if r == nil {
		return nil, nil
	}
	b, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func unmarshalRecipe(s sql.NullString) (*models.Recipe, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	var r models.Recipe
	if err := json.Unmarshal([]byte(s.String), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Save upserts the single dryer_state row. A zero at is replaced with now; times are stored in UTC.
func (r *StateSQLite) Save(ctx context.Context, st models.DryerStatus, at time.Time) error {
	recipe, err := marshalRecipe(st.ActiveRecipe)
	if err != nil {
		return err
	}

	if at.IsZero() {
		at = time.Now()
	}

	_, err = r.db.ExecContext(ctx, upsertStateSQL,
		dryerStateRowID,
		st.IsConnected,
		st.CurrentStepIndex,
		st.CurrentTemperature,
		st.CurrentPressure,
		st.ElapsedTime,
		string(st.ProcessState),
		recipe,
		at.UTC(),
	)
	return err
}

// Load returns the persisted status, or a zero record when none was saved.
func (r *StateSQLite) Load(ctx context.Context) (StatusRecord, error) {
	row := r.db.QueryRowContext(ctx, selectStateSQL, dryerStateRowID)

	var (
		rec    StatusRecord
		state  string
		recipe sql.NullString
	)
	if err := row.Scan(
		&rec.Status.IsConnected,
		&rec.Status.CurrentStepIndex,
		&rec.Status.CurrentTemperature,
		&rec.Status.CurrentPressure,
		&rec.Status.ElapsedTime,
		&state,
		&recipe,
		&rec.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return StatusRecord{}, nil
		}
		return StatusRecord{}, err
	}

	ar, err := unmarshalRecipe(recipe)
	if err != nil {
		return StatusRecord{}, err
	}
	rec.Status.ActiveRecipe = ar
	rec.Status.ProcessState = models.ProcessState(state)
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return rec, nil
}

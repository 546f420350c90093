package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"freeze_dryer/internal/models"
)

type BatchSQLite struct {
	db *sql.DB
}

func NewBatchSQLite(db *sql.DB) *BatchSQLite { return &BatchSQLite{db: db} }

var _ BatchRepo = (*BatchSQLite)(nil)

const (
	insertBatchSQL = `
		INSERT INTO batches (id, name, quantity_g, recipe, start_time, end_time, wash_info, tray_type, notes, result_notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	batchColumns        = `id, name, quantity_g, recipe, start_time, end_time, wash_info, tray_type, notes, result_notes`
	selectBatchSQL      = `SELECT ` + batchColumns + ` FROM batches WHERE id = ?`
	selectBatchesSQL    = `SELECT ` + batchColumns + ` FROM batches ORDER BY end_time DESC`
	updateResultNoteSQL = `UPDATE batches SET result_notes = ? WHERE id = ?`
)

// Create stores a finished run, generating an ID when missing.
func (r *BatchSQLite) Create(ctx context.Context, b models.Batch) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	recipe, err := json.Marshal(b.Recipe)
	if err != nil {
		return fmt.Errorf("marshal recipe of batch %q: %w", b.ID, err)
	}
	wash, err := json.Marshal(b.WashInfo)
	if err != nil {
		return fmt.Errorf("marshal wash info of batch %q: %w", b.ID, err)
	}

	_, err = r.db.ExecContext(ctx, insertBatchSQL,
		b.ID,
		b.Name,
		b.Quantity,
		string(recipe),
		b.StartTime.UTC(),
		b.EndTime.UTC(),
		string(wash),
		b.TrayType,
		b.Notes,
		b.ResultNotes,
	)
	if err != nil {
		return fmt.Errorf("insert batch %q: %w", b.ID, err)
	}
	return nil
}

func (r *BatchSQLite) Get(ctx context.Context, id string) (models.Batch, error) {
	b, err := scanBatch(r.db.QueryRowContext(ctx, selectBatchSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Batch{}, fmt.Errorf("batch %q: %w", id, ErrNotFound)
		}
		return models.Batch{}, fmt.Errorf("select batch %q: %w", id, err)
	}
	return b, nil
}

// List returns batches, most recently finished first.
func (r *BatchSQLite) List(ctx context.Context) ([]models.Batch, error) {
	rows, err := r.db.QueryContext(ctx, selectBatchesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Batch, 0, 16)
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *BatchSQLite) SetResultNotes(ctx context.Context, id, notes string) error {
	res, err := r.db.ExecContext(ctx, updateResultNoteSQL, notes, id)
	if err != nil {
		return fmt.Errorf("update batch %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update batch %q: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("batch %q: %w", id, ErrNotFound)
	}
	return nil
}

func scanBatch(s rowScanner) (models.Batch, error) {
	var (
		b      models.Batch
		recipe string
		wash   string
	)
	if err := s.Scan(&b.ID, &b.Name, &b.Quantity, &recipe, &b.StartTime, &b.EndTime, &wash, &b.TrayType, &b.Notes, &b.ResultNotes); err != nil {
		return models.Batch{}, err
	}
	if err := json.Unmarshal([]byte(recipe), &b.Recipe); err != nil {
		return models.Batch{}, fmt.Errorf("decode recipe of batch %q: %w", b.ID, err)
	}
	if err := json.Unmarshal([]byte(wash), &b.WashInfo); err != nil {
		return models.Batch{}, fmt.Errorf("decode wash info of batch %q: %w", b.ID, err)
	}
	b.StartTime = b.StartTime.UTC()
	b.EndTime = b.EndTime.UTC()
	return b, nil
}

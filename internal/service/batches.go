package service

import (
	"context"
	"errors"
	"fmt"

	"freeze_dryer/internal/models"
	"freeze_dryer/internal/repository"
)

type BatchService struct {
	repo repository.BatchRepo
}

func NewBatchService(repo repository.BatchRepo) *BatchService {
	return &BatchService{repo: repo}
}

func (s *BatchService) List(ctx context.Context) ([]models.Batch, error) {
	return s.repo.List(ctx)
}

func (s *BatchService) Get(ctx context.Context, id string) (models.Batch, error) {
	b, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Batch{}, fmt.Errorf("%w: %q", ErrBatchNotFound, id)
	}
	return b, err
}

// SetResultNotes records the operator's assessment of a finished batch.
func (s *BatchService) SetResultNotes(ctx context.Context, id, notes string) error {
	err := s.repo.SetResultNotes(ctx, id, notes)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %q", ErrBatchNotFound, id)
	}
	return err
}

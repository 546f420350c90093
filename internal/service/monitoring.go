package service

import (
	"context"
	"time"

	"freeze_dryer/internal/models"
	"freeze_dryer/internal/repository"
)

// State sources reported in StateView.Source.
const (
	SourceLive      = "live"
	SourcePersisted = "persisted"
	SourceBaseline  = "baseline"
)

// LiveSource reports the status of the attached device, if any.
type LiveSource interface {
	Live() (models.DryerStatus, time.Time, bool)
}

type MonitoringService struct {
	live      LiveSource
	stateRepo repository.StateRepo
}

func NewMonitoringService(live LiveSource, stateRepo repository.StateRepo) *MonitoringService {
	return &MonitoringService{live: live, stateRepo: stateRepo}
}

// GetState prefers the live device status, then the last persisted one,
// then the baseline of a dryer that never connected.
func (s *MonitoringService) GetState(ctx context.Context) (StateView, error) {
	if s.live != nil {
		if st, at, ok := s.live.Live(); ok {
			return StateView{DryerStatus: st, Source: SourceLive, UpdatedAt: toUTC(at)}, nil
		}
	}

	rec, err := s.stateRepo.Load(ctx)
	if err != nil {
		return StateView{}, err
	}
	if rec.UpdatedAt.IsZero() {
		return s.baselineState(), nil
	}
	// no device is attached, so a stored connection flag is stale
	rec.Status.IsConnected = false
	return StateView{DryerStatus: rec.Status, Source: SourcePersisted, UpdatedAt: toUTC(rec.UpdatedAt)}, nil
}

func (s *MonitoringService) baselineState() StateView {
	return StateView{
		DryerStatus: models.BaselineStatus(),
		Source:      SourceBaseline,
		UpdatedAt:   time.Now().UTC(),
	}
}

// toUTC normalizes non-zero time to UTC, preserving zero values.
func toUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

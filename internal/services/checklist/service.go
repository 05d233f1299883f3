// Package checklist implements the daily checklist lifecycle: projecting
// which companies are due, tracking per-day completion, and the end-of-day
// submission that turns completed entries into visit history.
package checklist

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jobwatch/jobwatch/internal/models"
)

// Store is the persistence surface the service needs.
type Store interface {
	GetChecklist(ctx context.Context, date models.Date) ([]*models.ChecklistCompany, error)
	SetCompleted(ctx context.Context, date models.Date, companyID uuid.UUID, completed bool) error
	Remove(ctx context.Context, date models.Date, companyID uuid.UUID) (bool, error)
	SubmitDay(ctx context.Context, date models.Date) ([]*models.Company, error)
}

// Service drives the checklist lifecycle.
type Service struct {
	store  Store
	logger *zap.Logger
}

// New creates a checklist service.
func New(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Checklist returns the checklist projection for a date. No state changes.
func (s *Service) Checklist(ctx context.Context, date models.Date) ([]*models.ChecklistCompany, error) {
	return s.store.GetChecklist(ctx, date)
}

// SetCompleted upserts the completion flag for a company on a date. The
// entry is created on first toggle; there is no separate create call.
func (s *Service) SetCompleted(ctx context.Context, date models.Date, companyID uuid.UUID, completed bool) error {
	s.logger.Info("checklist_set_completed",
		zap.String("date", date.String()),
		zap.String("company_id", companyID.String()),
		zap.Bool("completed", completed),
	)
	return s.store.SetCompleted(ctx, date, companyID, completed)
}

// Remove deletes a company's entry for a date, reporting whether one
// existed.
func (s *Service) Remove(ctx context.Context, date models.Date, companyID uuid.UUID) (bool, error) {
	s.logger.Info("checklist_remove_entry",
		zap.String("date", date.String()),
		zap.String("company_id", companyID.String()),
	)
	return s.store.Remove(ctx, date, companyID)
}

// SubmitDay consumes the date's completed entries and returns the companies
// whose last-visited date advanced. Submitting a date twice is a no-op the
// second time.
func (s *Service) SubmitDay(ctx context.Context, date models.Date) ([]*models.Company, error) {
	s.logger.Info("checklist_submit_day_started", zap.String("date", date.String()))

	advanced, err := s.store.SubmitDay(ctx, date)
	if err != nil {
		return nil, err
	}

	s.logger.Info("checklist_submit_day_completed",
		zap.String("date", date.String()),
		zap.Int("companies_advanced", len(advanced)),
	)
	return advanced, nil
}

package checklist

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jobwatch/jobwatch/internal/models"
)

type fakeStore struct {
	checklist []*models.ChecklistCompany
	advanced  []*models.Company
	err       error

	setCompletedCalls []setCompletedCall
	submitDates       []models.Date
	removeResult      bool
}

type setCompletedCall struct {
	date      models.Date
	companyID uuid.UUID
	completed bool
}

func (f *fakeStore) GetChecklist(ctx context.Context, date models.Date) ([]*models.ChecklistCompany, error) {
	return f.checklist, f.err
}

func (f *fakeStore) SetCompleted(ctx context.Context, date models.Date, companyID uuid.UUID, completed bool) error {
	f.setCompletedCalls = append(f.setCompletedCalls, setCompletedCall{date, companyID, completed})
	return f.err
}

func (f *fakeStore) Remove(ctx context.Context, date models.Date, companyID uuid.UUID) (bool, error) {
	return f.removeResult, f.err
}

func (f *fakeStore) SubmitDay(ctx context.Context, date models.Date) ([]*models.Company, error) {
	f.submitDates = append(f.submitDates, date)
	return f.advanced, f.err
}

func TestChecklist(t *testing.T) {
	t.Parallel()

	want := []*models.ChecklistCompany{
		{Company: models.Company{ID: uuid.New(), Name: "Acme"}, Completed: true, InChecklist: true},
	}
	store := &fakeStore{checklist: want}
	service := New(store, zap.NewNop())

	got, err := service.Checklist(context.Background(), models.NewDate(2026, time.June, 1))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Acme" {
		t.Errorf("Expected the store's checklist back, got %v", got)
	}
}

func TestSetCompletedPassesThrough(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	service := New(store, zap.NewNop())

	date := models.NewDate(2026, time.June, 1)
	companyID := uuid.New()

	if err := service.SetCompleted(context.Background(), date, companyID, true); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(store.setCompletedCalls) != 1 {
		t.Fatalf("Expected 1 store call, got %d", len(store.setCompletedCalls))
	}
	call := store.setCompletedCalls[0]
	if !call.date.Equal(date) || call.companyID != companyID || !call.completed {
		t.Errorf("Store called with wrong arguments: %+v", call)
	}
}

func TestSubmitDay(t *testing.T) {
	t.Parallel()

	t.Run("returns advanced companies", func(t *testing.T) {
		t.Parallel()

		advanced := []*models.Company{{ID: uuid.New(), Name: "Acme"}}
		store := &fakeStore{advanced: advanced}
		service := New(store, zap.NewNop())

		date := models.NewDate(2026, time.June, 1)
		got, err := service.SubmitDay(context.Background(), date)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("Expected 1 advanced company, got %d", len(got))
		}
		if len(store.submitDates) != 1 || !store.submitDates[0].Equal(date) {
			t.Errorf("Expected store submit for %s, got %v", date, store.submitDates)
		}
	})

	t.Run("propagates store error", func(t *testing.T) {
		t.Parallel()

		storeErr := errors.New("boom")
		store := &fakeStore{err: storeErr}
		service := New(store, zap.NewNop())

		_, err := service.SubmitDay(context.Background(), models.NewDate(2026, time.June, 1))
		if !errors.Is(err, storeErr) {
			t.Errorf("Expected store error to propagate, got %v", err)
		}
	})
}

func TestRemove(t *testing.T) {
	t.Parallel()

	store := &fakeStore{removeResult: true}
	service := New(store, zap.NewNop())

	removed, err := service.Remove(context.Background(), models.NewDate(2026, time.June, 1), uuid.New())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !removed {
		t.Error("Expected removed to be true")
	}
}

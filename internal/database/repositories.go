package database

import (
	"context"

	"github.com/google/uuid"

	"github.com/jobwatch/jobwatch/internal/models"
)

// CompanyStore defines the company repository operations. The handlers
// depend on this interface so tests can substitute fakes.
type CompanyStore interface {
	Find(ctx context.Context, f CompanyFilter, page, size int) ([]*models.Company, error)
	Count(ctx context.Context, f CompanyFilter) (int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error)
	Insert(ctx context.Context, p InsertCompanyParams) (*models.Company, error)
	Update(ctx context.Context, id uuid.UUID, p UpdateCompanyParams) (*models.Company, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteBatch(ctx context.Context, ids []uuid.UUID) (int64, error)
	MaxNextVisitOn(ctx context.Context) (*models.Date, error)
}

// TagStore defines the tag repository operations.
type TagStore interface {
	ListAll(ctx context.Context) ([]models.Tag, error)
	EnsureExist(ctx context.Context, displayNames []string) error
}

// ChecklistStore defines the checklist repository operations.
type ChecklistStore interface {
	GetChecklist(ctx context.Context, date models.Date) ([]*models.ChecklistCompany, error)
	SetCompleted(ctx context.Context, date models.Date, companyID uuid.UUID, completed bool) error
	Remove(ctx context.Context, date models.Date, companyID uuid.UUID) (bool, error)
	SubmitDay(ctx context.Context, date models.Date) ([]*models.Company, error)
}

// Ensure concrete types implement the interfaces
var (
	_ CompanyStore   = (*CompanyRepository)(nil)
	_ TagStore       = (*TagRepository)(nil)
	_ ChecklistStore = (*ChecklistRepository)(nil)
)

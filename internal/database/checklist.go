package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/jobwatch/jobwatch/internal/apperr"
	"github.com/jobwatch/jobwatch/internal/models"
)

// ChecklistRepository handles daily checklist database operations.
type ChecklistRepository struct {
	db *DB
}

// NewChecklistRepository creates a new checklist repository.
func NewChecklistRepository(db *DB) *ChecklistRepository {
	return &ChecklistRepository{db: db}
}

// GetChecklist projects the checklist for a date: every company due on that
// date plus every company that already has an entry for it, annotated with
// the completion flag and whether an entry exists. Read-only.
func (r *ChecklistRepository) GetChecklist(ctx context.Context, date models.Date) ([]*models.ChecklistCompany, error) {
	query := "SELECT" + companyColumns + `,
	COALESCE(cl.completed, FALSE) AS completed,
	(cl.company_id IS NOT NULL) AS in_checklist
	FROM companies c
	LEFT JOIN daily_checklist cl
		ON cl.company_id = c.company_id
		AND cl.check_date = $1
	LEFT JOIN company_tags ct ON ct.company_id = c.company_id
	LEFT JOIN tags t ON t.tag_id = ct.tag_id
	WHERE ` + nextVisitExpr + ` <= $1
	   OR cl.company_id IS NOT NULL` + companyGroupBy + `, cl.completed, cl.company_id` + companyOrderBy

	rows, err := r.db.QueryContext(ctx, query, date)
	if err != nil {
		return nil, apperr.Persistence(fmt.Errorf("failed to query checklist: %w", err))
	}
	defer rows.Close()

	entries := []*models.ChecklistCompany{}
	for rows.Next() {
		entry, err := scanChecklistCompany(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence(fmt.Errorf("error iterating checklist: %w", err))
	}

	return entries, nil
}

// SetCompleted upserts the entry for (date, company) in a single statement
// conditioned on company existence, so there is no check-then-act gap
// against a concurrent delete. Zero rows means the company does not exist.
// A re-complete keeps the original completed_at.
func (r *ChecklistRepository) SetCompleted(ctx context.Context, date models.Date, companyID uuid.UUID, completed bool) error {
	query := `
		WITH company_check AS (
			SELECT company_id FROM companies WHERE company_id = $1
		)
		INSERT INTO daily_checklist (check_date, company_id, completed, completed_at, updated_at)
		SELECT $2, company_id, $3, CASE WHEN $3 THEN now() END, now()
		FROM company_check
		ON CONFLICT (check_date, company_id) DO UPDATE SET
			completed = EXCLUDED.completed,
			completed_at = CASE
				WHEN NOT EXCLUDED.completed THEN NULL
				WHEN daily_checklist.completed THEN daily_checklist.completed_at
				ELSE EXCLUDED.completed_at
			END,
			updated_at = now()
	`

	result, err := r.db.ExecContext(ctx, query, companyID, date, completed)
	if err != nil {
		return apperr.Persistence(fmt.Errorf("failed to upsert checklist completion: %w", err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apperr.Persistence(fmt.Errorf("failed to read rows affected: %w", err))
	}
	if affected == 0 {
		return apperr.NotFound("Company not found", companyID)
	}
	return nil
}

// Remove deletes the entry for (date, company) and reports whether one
// existed.
func (r *ChecklistRepository) Remove(ctx context.Context, date models.Date, companyID uuid.UUID) (bool, error) {
	query := `DELETE FROM daily_checklist WHERE check_date = $1 AND company_id = $2`

	result, err := r.db.ExecContext(ctx, query, date, companyID)
	if err != nil {
		return false, apperr.Persistence(fmt.Errorf("failed to delete checklist entry: %w", err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, apperr.Persistence(fmt.Errorf("failed to read rows affected: %w", err))
	}
	return affected > 0, nil
}

// SubmitDay consumes the completed entries for a date in one transaction:
// advance last_visited_on for each completed company (never backwards),
// delete the consumed entries, and return the companies that actually
// advanced. Incomplete entries are untouched, so a repeat submission finds
// nothing and returns an empty list.
func (r *ChecklistRepository) SubmitDay(ctx context.Context, date models.Date) ([]*models.Company, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Persistence(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer func() {
		_ = tx.Rollback()
	}()

	completed, err := completedCompanyIDs(ctx, tx, date)
	if err != nil {
		return nil, err
	}
	if len(completed) == 0 {
		if err := tx.Commit(); err != nil {
			return nil, apperr.Persistence(fmt.Errorf("failed to commit day submission: %w", err))
		}
		return []*models.Company{}, nil
	}

	advanceQuery := `
		UPDATE companies
		SET last_visited_on = $1, updated_at = now()
		WHERE company_id = ANY($2)
		  AND (last_visited_on IS NULL OR last_visited_on < $1)
		RETURNING company_id
	`
	rows, err := tx.QueryContext(ctx, advanceQuery, date, pq.Array(completed))
	if err != nil {
		return nil, apperr.Persistence(fmt.Errorf("failed to advance last visited dates: %w", err))
	}
	advanced, err := collectIDs(rows)
	if err != nil {
		return nil, err
	}

	deleteQuery := `DELETE FROM daily_checklist WHERE check_date = $1 AND company_id = ANY($2)`
	if _, err := tx.ExecContext(ctx, deleteQuery, date, pq.Array(completed)); err != nil {
		return nil, apperr.Persistence(fmt.Errorf("failed to delete consumed checklist entries: %w", err))
	}

	companies := []*models.Company{}
	if len(advanced) > 0 {
		query := "SELECT" + companyColumns + companyJoins +
			" WHERE c.company_id = ANY($1)" + companyGroupBy + companyOrderBy

		companyRows, err := tx.QueryContext(ctx, query, pq.Array(advanced))
		if err != nil {
			return nil, apperr.Persistence(fmt.Errorf("failed to query advanced companies: %w", err))
		}
		defer companyRows.Close()
		companies, err = scanCompanies(companyRows)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Persistence(fmt.Errorf("failed to commit day submission: %w", err))
	}
	return companies, nil
}

func completedCompanyIDs(ctx context.Context, tx *sql.Tx, date models.Date) ([]uuid.UUID, error) {
	query := `
		SELECT company_id
		FROM daily_checklist
		WHERE check_date = $1 AND completed = TRUE
	`
	rows, err := tx.QueryContext(ctx, query, date)
	if err != nil {
		return nil, apperr.Persistence(fmt.Errorf("failed to query completed entries: %w", err))
	}
	return collectIDs(rows)
}

func collectIDs(rows *sql.Rows) ([]uuid.UUID, error) {
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, apperr.Persistence(fmt.Errorf("failed to scan company id: %w", err))
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence(fmt.Errorf("error iterating company ids: %w", err))
	}
	return ids, nil
}

func scanChecklistCompany(rows *sql.Rows) (*models.ChecklistCompany, error) {
	entry := &models.ChecklistCompany{}
	var lastVisited sql.NullTime
	var nextVisit models.Date
	var tagKeys, tagNames pq.StringArray

	err := rows.Scan(
		&entry.ID,
		&entry.Name,
		&entry.CareersURL,
		&lastVisited,
		&entry.RevisitAfterDays,
		&nextVisit,
		&entry.CreatedAt,
		&entry.UpdatedAt,
		&tagKeys,
		&tagNames,
		&entry.Completed,
		&entry.InChecklist,
	)
	if err != nil {
		return nil, apperr.Persistence(fmt.Errorf("failed to scan checklist company: %w", err))
	}

	if lastVisited.Valid {
		d := models.DateOf(lastVisited.Time)
		entry.LastVisitedOn = &d
	}
	entry.NextVisitOn = nextVisit
	entry.Tags = zipTags(tagKeys, tagNames)

	return entry, nil
}

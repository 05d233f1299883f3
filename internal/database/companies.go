package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/jobwatch/jobwatch/internal/apperr"
	"github.com/jobwatch/jobwatch/internal/models"
)

// nextVisitExpr computes a company's next visit date on read. Never-visited
// companies are immediately due. Every query derives the date from this one
// expression so two companies with identical cadence always agree.
const nextVisitExpr = "COALESCE(c.last_visited_on + c.revisit_after_days, CURRENT_DATE)"

const companyColumns = `
	c.company_id,
	c.company_name,
	c.careers_url,
	c.last_visited_on,
	c.revisit_after_days,
	` + nextVisitExpr + ` AS next_visit_on,
	c.created_at,
	c.updated_at,
	COALESCE(array_agg(t.tag_key ORDER BY t.tag_name) FILTER (WHERE t.tag_id IS NOT NULL), '{}') AS tag_keys,
	COALESCE(array_agg(t.tag_name ORDER BY t.tag_name) FILTER (WHERE t.tag_id IS NOT NULL), '{}') AS tag_names`

const companyJoins = `
	FROM companies c
	LEFT JOIN company_tags ct ON ct.company_id = c.company_id
	LEFT JOIN tags t ON t.tag_id = ct.tag_id`

const companyGroupBy = `
	GROUP BY c.company_id, c.company_name, c.careers_url, c.last_visited_on,
	         c.revisit_after_days, c.created_at, c.updated_at`

const companyOrderBy = `
	ORDER BY c.company_name ASC, c.company_id ASC`

// CompanyFilter narrows company queries. Zero values mean "no filter".
// When NextVisitOn is set the Due filter is ignored: the two are mutually
// exclusive and the explicit date wins.
type CompanyFilter struct {
	NamePrefix    string
	TagKeys       []string
	Due           models.DueFilter
	NextVisitOn   *models.Date
	LastVisitedOn *models.Date
}

// CompanyRepository handles company database operations.
type CompanyRepository struct {
	db *DB
}

// NewCompanyRepository creates a new company repository.
func NewCompanyRepository(db *DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

// InsertCompanyParams are the fields for creating a company.
type InsertCompanyParams struct {
	Name             string
	CareersURL       string
	LastVisitedOn    *models.Date
	RevisitAfterDays int
	TagNames         []string
}

// UpdateCompanyParams are the fields for a partial company update. Nil
// means "leave unchanged"; a non-nil TagNames (even empty) replaces the
// full association set.
type UpdateCompanyParams struct {
	Name             *string
	CareersURL       *string
	LastVisitedOn    *models.Date
	RevisitAfterDays *int
	TagNames         *[]string
}

// buildCompanyWhere renders the filter into a WHERE clause with numbered
// placeholders and the matching argument list.
func buildCompanyWhere(f CompanyFilter) (string, []any) {
	where := " WHERE 1=1"
	var args []any

	if prefix := strings.TrimSpace(f.NamePrefix); prefix != "" {
		args = append(args, escapeLike(prefix)+"%")
		where += fmt.Sprintf(` AND c.company_name ILIKE $%d ESCAPE '\'`, len(args))
	}

	if len(f.TagKeys) > 0 {
		args = append(args, pq.Array(f.TagKeys))
		where += fmt.Sprintf(`
			AND EXISTS (
				SELECT 1
				FROM company_tags ct2
				JOIN tags t2 ON t2.tag_id = ct2.tag_id
				WHERE ct2.company_id = c.company_id
				  AND t2.tag_key = ANY($%d)
			)`, len(args))
	}

	hasExplicitDate := f.NextVisitOn != nil
	if hasExplicitDate {
		args = append(args, *f.NextVisitOn)
		where += fmt.Sprintf(" AND %s = $%d", nextVisitExpr, len(args))
	}

	if f.LastVisitedOn != nil {
		args = append(args, *f.LastVisitedOn)
		where += fmt.Sprintf(" AND c.last_visited_on = $%d", len(args))
	}

	if !hasExplicitDate {
		switch f.Due {
		case models.DueToday:
			where += " AND " + nextVisitExpr + " = CURRENT_DATE"
		case models.DueOverdue:
			where += " AND " + nextVisitExpr + " < CURRENT_DATE"
		case models.DueUpcoming:
			where += " AND " + nextVisitExpr + " > CURRENT_DATE"
		}
	}

	return where, args
}

// escapeLike escapes LIKE wildcards so user input only ever prefix-matches
// literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// Find returns one page of companies matching the filter, ordered by name
// with id as the tie-break for stable pagination.
func (r *CompanyRepository) Find(ctx context.Context, f CompanyFilter, page, size int) ([]*models.Company, error) {
	where, args := buildCompanyWhere(f)

	// int64 math: page and size are bounded by the handler but the offset
	// product must never wrap.
	offset := int64(page) * int64(size)

	args = append(args, size, offset)
	query := "SELECT" + companyColumns + companyJoins + where + companyGroupBy + companyOrderBy +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Persistence(fmt.Errorf("failed to query companies: %w", err))
	}
	defer rows.Close()

	return scanCompanies(rows)
}

// Count returns the total number of companies matching the filter.
func (r *CompanyRepository) Count(ctx context.Context, f CompanyFilter) (int64, error) {
	where, args := buildCompanyWhere(f)
	query := "SELECT COUNT(*) FROM companies c" + where

	var total int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, apperr.Persistence(fmt.Errorf("failed to count companies: %w", err))
	}
	return total, nil
}

// GetByID retrieves a company with its tags.
func (r *CompanyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	return getCompanyByID(ctx, r.db, id)
}

func getCompanyByID(ctx context.Context, q querier, id uuid.UUID) (*models.Company, error) {
	query := "SELECT" + companyColumns + companyJoins + " WHERE c.company_id = $1" + companyGroupBy

	rows, err := q.QueryContext(ctx, query, id)
	if err != nil {
		return nil, apperr.Persistence(fmt.Errorf("failed to query company: %w", err))
	}
	defer rows.Close()

	companies, err := scanCompanies(rows)
	if err != nil {
		return nil, err
	}
	if len(companies) == 0 {
		return nil, apperr.NotFound("Company not found", id)
	}
	return companies[0], nil
}

// Insert creates a company with its tags in one transaction. The careers
// URL must be unique.
func (r *CompanyRepository) Insert(ctx context.Context, p InsertCompanyParams) (*models.Company, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Persistence(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := ensureTags(ctx, tx, p.TagNames); err != nil {
		return nil, err
	}

	var lastVisited any
	if p.LastVisitedOn != nil {
		lastVisited = *p.LastVisitedOn
	}

	id := uuid.New()
	query := `
		INSERT INTO companies (company_id, company_name, careers_url, last_visited_on, revisit_after_days)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.ExecContext(ctx, query, id, p.Name, p.CareersURL, lastVisited, p.RevisitAfterDays); err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("A company with this careers URL already exists", "careersUrl")
		}
		return nil, apperr.Persistence(fmt.Errorf("failed to insert company: %w", err))
	}

	keys, _ := dedupeTagNames(p.TagNames)
	if len(keys) > 0 {
		link := `
			INSERT INTO company_tags (company_id, tag_id)
			SELECT $1, t.tag_id FROM tags t WHERE t.tag_key = ANY($2)
			ON CONFLICT DO NOTHING
		`
		if _, err := tx.ExecContext(ctx, link, id, pq.Array(keys)); err != nil {
			return nil, apperr.Persistence(fmt.Errorf("failed to link company tags: %w", err))
		}
	}

	company, err := getCompanyByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Persistence(fmt.Errorf("failed to commit company insert: %w", err))
	}
	return company, nil
}

// Update applies a partial update. Tags, when supplied, replace the
// association set by diffing current against desired ids; the tag rows
// themselves are never deleted.
func (r *CompanyRepository) Update(ctx context.Context, id uuid.UUID, p UpdateCompanyParams) (*models.Company, error) {
	var sets []string
	var args []any

	if p.Name != nil {
		args = append(args, strings.TrimSpace(*p.Name))
		sets = append(sets, fmt.Sprintf("company_name = $%d", len(args)))
	}
	if p.CareersURL != nil {
		args = append(args, strings.TrimSpace(*p.CareersURL))
		sets = append(sets, fmt.Sprintf("careers_url = $%d", len(args)))
	}
	if p.LastVisitedOn != nil {
		args = append(args, *p.LastVisitedOn)
		sets = append(sets, fmt.Sprintf("last_visited_on = $%d", len(args)))
	}
	if p.RevisitAfterDays != nil {
		args = append(args, *p.RevisitAfterDays)
		sets = append(sets, fmt.Sprintf("revisit_after_days = $%d", len(args)))
	}

	if len(sets) == 0 && p.TagNames == nil {
		return nil, apperr.Validation("No fields provided to update")
	}
	sets = append(sets, "updated_at = now()")

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Persistence(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer func() {
		_ = tx.Rollback()
	}()

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE companies
		SET %s
		WHERE company_id = $%d
		RETURNING company_id
	`, strings.Join(sets, ", "), len(args))

	var updatedID uuid.UUID
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&updatedID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("Company not found", id)
		}
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("A company with this careers URL already exists", "careersUrl")
		}
		return nil, apperr.Persistence(fmt.Errorf("failed to update company: %w", err))
	}

	if p.TagNames != nil {
		if err := ensureTags(ctx, tx, *p.TagNames); err != nil {
			return nil, err
		}
		if err := setCompanyTags(ctx, tx, id, *p.TagNames); err != nil {
			return nil, err
		}
	}

	company, err := getCompanyByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Persistence(fmt.Errorf("failed to commit company update: %w", err))
	}
	return company, nil
}

// setCompanyTags reconciles the join table against the desired display
// names: stale associations are removed, missing ones added, both batched.
func setCompanyTags(ctx context.Context, tx *sql.Tx, companyID uuid.UUID, displayNames []string) error {
	keys, _ := dedupeTagNames(displayNames)

	if len(keys) == 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM company_tags WHERE company_id = $1`, companyID); err != nil {
			return apperr.Persistence(fmt.Errorf("failed to clear company tags: %w", err))
		}
		return nil
	}

	desired, err := queryTagIDs(ctx, tx, `SELECT tag_id FROM tags WHERE tag_key = ANY($1)`, pq.Array(keys))
	if err != nil {
		return err
	}
	current, err := queryTagIDs(ctx, tx, `SELECT tag_id FROM company_tags WHERE company_id = $1`, companyID)
	if err != nil {
		return err
	}

	desiredSet := make(map[uuid.UUID]struct{}, len(desired))
	for _, id := range desired {
		desiredSet[id] = struct{}{}
	}
	currentSet := make(map[uuid.UUID]struct{}, len(current))
	for _, id := range current {
		currentSet[id] = struct{}{}
	}

	var toRemove, toAdd []uuid.UUID
	for _, id := range current {
		if _, ok := desiredSet[id]; !ok {
			toRemove = append(toRemove, id)
		}
	}
	for _, id := range desired {
		if _, ok := currentSet[id]; !ok {
			toAdd = append(toAdd, id)
		}
	}

	if len(toRemove) > 0 {
		query := `DELETE FROM company_tags WHERE company_id = $1 AND tag_id = ANY($2)`
		if _, err := tx.ExecContext(ctx, query, companyID, pq.Array(toRemove)); err != nil {
			return apperr.Persistence(fmt.Errorf("failed to remove company tags: %w", err))
		}
	}
	if len(toAdd) > 0 {
		query := `
			INSERT INTO company_tags (company_id, tag_id)
			SELECT $1, unnest($2::uuid[])
			ON CONFLICT DO NOTHING
		`
		if _, err := tx.ExecContext(ctx, query, companyID, pq.Array(toAdd)); err != nil {
			return apperr.Persistence(fmt.Errorf("failed to add company tags: %w", err))
		}
	}
	return nil
}

func queryTagIDs(ctx context.Context, q querier, query string, args ...any) ([]uuid.UUID, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Persistence(fmt.Errorf("failed to query tag ids: %w", err))
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, apperr.Persistence(fmt.Errorf("failed to scan tag id: %w", err))
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence(fmt.Errorf("error iterating tag ids: %w", err))
	}
	return ids, nil
}

// Delete removes one company. A missing id is not an error here; the
// handler decides whether to surface 404.
func (r *CompanyRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM companies WHERE company_id = $1`, id)
	if err != nil {
		return false, apperr.Persistence(fmt.Errorf("failed to delete company: %w", err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, apperr.Persistence(fmt.Errorf("failed to read rows affected: %w", err))
	}
	return affected > 0, nil
}

// DeleteBatch removes the given companies and returns how many rows were
// actually deleted.
func (r *CompanyRepository) DeleteBatch(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM companies WHERE company_id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, apperr.Persistence(fmt.Errorf("failed to batch delete companies: %w", err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, apperr.Persistence(fmt.Errorf("failed to read rows affected: %w", err))
	}
	return affected, nil
}

// MaxNextVisitOn returns the latest next-visit date across all companies,
// or nil when none are tracked.
func (r *CompanyRepository) MaxNextVisitOn(ctx context.Context) (*models.Date, error) {
	query := "SELECT MAX(" + nextVisitExpr + ") FROM companies c"

	var max sql.NullTime
	if err := r.db.QueryRowContext(ctx, query).Scan(&max); err != nil {
		return nil, apperr.Persistence(fmt.Errorf("failed to query max next visit date: %w", err))
	}
	if !max.Valid {
		return nil, nil
	}
	d := models.DateOf(max.Time)
	return &d, nil
}

// scanCompanies reads company rows that include the tag aggregate columns.
func scanCompanies(rows *sql.Rows) ([]*models.Company, error) {
	companies := []*models.Company{}
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, company)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence(fmt.Errorf("error iterating companies: %w", err))
	}
	return companies, nil
}

func scanCompany(rows *sql.Rows) (*models.Company, error) {
	company := &models.Company{}
	var lastVisited sql.NullTime
	var nextVisit models.Date
	var tagKeys, tagNames pq.StringArray

	err := rows.Scan(
		&company.ID,
		&company.Name,
		&company.CareersURL,
		&lastVisited,
		&company.RevisitAfterDays,
		&nextVisit,
		&company.CreatedAt,
		&company.UpdatedAt,
		&tagKeys,
		&tagNames,
	)
	if err != nil {
		return nil, apperr.Persistence(fmt.Errorf("failed to scan company: %w", err))
	}

	if lastVisited.Valid {
		d := models.DateOf(lastVisited.Time)
		company.LastVisitedOn = &d
	}
	company.NextVisitOn = nextVisit
	company.Tags = zipTags(tagKeys, tagNames)

	return company, nil
}

func zipTags(keys, names []string) []models.Tag {
	tags := make([]models.Tag, 0, len(keys))
	for i, key := range keys {
		name := key
		if i < len(names) {
			name = names[i]
		}
		tags = append(tags, models.Tag{Key: key, Name: name})
	}
	return tags
}

// isUniqueViolation reports whether err is a postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

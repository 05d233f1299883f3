package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/jobwatch/jobwatch/internal/apperr"
	"github.com/jobwatch/jobwatch/internal/models"
)

// TagRepository handles tag database operations.
type TagRepository struct {
	db *DB
}

// NewTagRepository creates a new tag repository.
func NewTagRepository(db *DB) *TagRepository {
	return &TagRepository{db: db}
}

// ListAll returns every tag ordered by display name.
func (r *TagRepository) ListAll(ctx context.Context) ([]models.Tag, error) {
	query := `
		SELECT tag_key, tag_name
		FROM tags
		ORDER BY tag_name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperr.Persistence(fmt.Errorf("failed to query tags: %w", err))
	}
	defer rows.Close()

	tags := []models.Tag{}
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.Key, &tag.Name); err != nil {
			return nil, apperr.Persistence(fmt.Errorf("failed to scan tag: %w", err))
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence(fmt.Errorf("error iterating tags: %w", err))
	}

	return tags, nil
}

// EnsureExist inserts any of the given display names that are not already
// present, keyed by their normalized form. Concurrent calls with overlapping
// names are safe: the insert ignores conflicts on the unique key.
func (r *TagRepository) EnsureExist(ctx context.Context, displayNames []string) error {
	return ensureTags(ctx, r.db, displayNames)
}

// ensureTags is the insert-or-ignore shared with the company repository so
// it can run inside a company transaction.
func ensureTags(ctx context.Context, q querier, displayNames []string) error {
	keys, names := dedupeTagNames(displayNames)
	if len(keys) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(keys))
	for i := range ids {
		ids[i] = uuid.New()
	}

	query := `
		INSERT INTO tags (tag_id, tag_key, tag_name)
		SELECT * FROM unnest($1::uuid[], $2::text[], $3::text[])
		ON CONFLICT (tag_key) DO NOTHING
	`

	if _, err := q.ExecContext(ctx, query, pq.Array(ids), pq.Array(keys), pq.Array(names)); err != nil {
		return apperr.Persistence(fmt.Errorf("failed to ensure tags exist: %w", err))
	}
	return nil
}

// dedupeTagNames maps display names to normalized keys, dropping blanks and
// keeping the first display name seen for each key.
func dedupeTagNames(displayNames []string) (keys, names []string) {
	seen := make(map[string]struct{}, len(displayNames))
	for _, name := range displayNames {
		key := models.NormalizeTagKey(name)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
		names = append(names, name)
	}
	return keys, names
}

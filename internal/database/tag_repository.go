package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// TagRepository handles database operations for tags and their links to
// questions.
type TagRepository struct {
	ext sqlx.ExtContext
}

// NewTagRepository creates a new tag repository bound to ext, which may be a
// *sqlx.DB or a *sqlx.Tx.
func NewTagRepository(ext sqlx.ExtContext) *TagRepository {
	return &TagRepository{ext: ext}
}

// tagGetOrCreateQuery mirrors the author resolution statement, keyed on the
// tag label.
const tagGetOrCreateQuery = `
	WITH ins AS (
		INSERT INTO tag (tag)
		VALUES ($1)
		ON CONFLICT (tag) DO NOTHING
		RETURNING tag_id
	)
	SELECT tag_id FROM ins
	UNION ALL
	SELECT tag_id FROM tag WHERE tag = $1
	LIMIT 1
`

// GetOrCreate returns the id of the tag with the given label, creating the
// row if it does not exist yet.
func (r *TagRepository) GetOrCreate(ctx context.Context, label string) (int64, error) {
	var id int64
	if err := sqlx.GetContext(ctx, r.ext, &id, tagGetOrCreateQuery, label); err != nil {
		return 0, fmt.Errorf("failed to resolve tag %q: %w", label, err)
	}

	return id, nil
}

// linkQuestionTagsQuery bulk-inserts (question_id, tag_id) pairs, silently
// skipping pairs that already exist.
const linkQuestionTagsQuery = `
	INSERT INTO question_tag_assignment (question_id, tag_id)
	SELECT $1, unnest($2::bigint[])
	ON CONFLICT (question_id, tag_id) DO NOTHING
`

// LinkQuestion links a question to all the given tag ids in one statement.
// Linking is idempotent; existing pairs are left untouched.
func (r *TagRepository) LinkQuestion(ctx context.Context, questionID int64, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}

	_, err := r.ext.ExecContext(ctx, linkQuestionTagsQuery, questionID, pq.Array(tagIDs))
	if err != nil {
		return fmt.Errorf("failed to link tags to question %d: %w", questionID, err)
	}

	return nil
}

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// QuestionRepository handles database operations for questions.
type QuestionRepository struct {
	ext sqlx.ExtContext
}

// NewQuestionRepository creates a new question repository bound to ext, which
// may be a *sqlx.DB or a *sqlx.Tx.
func NewQuestionRepository(ext sqlx.ExtContext) *QuestionRepository {
	return &QuestionRepository{ext: ext}
}

// UpsertQuestionParams contains the parameters for upserting a question.
type UpsertQuestionParams struct {
	ExternalID int64
	AuthorID   int64
	Title      string
	Votes      int
	Views      int
	AskedAt    *time.Time
}

// questionUpsertQuery inserts a question keyed by its external id. On
// conflict only the mutable fields (votes, views) are updated; title,
// author and timestamp are write-once.
const questionUpsertQuery = `
	INSERT INTO question (question_id, author_id, title, votes, views, upload_timestamp)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (question_id) DO UPDATE SET
		votes = EXCLUDED.votes,
		views = EXCLUDED.views
`

// Upsert creates or merges a question row and returns its id, which equals
// the external id. Re-ingesting an existing question updates only votes and
// views and never duplicates the row.
func (r *QuestionRepository) Upsert(ctx context.Context, params UpsertQuestionParams) (int64, error) {
	_, err := r.ext.ExecContext(
		ctx, questionUpsertQuery,
		params.ExternalID,
		params.AuthorID,
		params.Title,
		params.Votes,
		params.Views,
		params.AskedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert question %d: %w", params.ExternalID, err)
	}

	return params.ExternalID, nil
}

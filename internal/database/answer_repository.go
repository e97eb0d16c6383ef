package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// AnswerRepository handles database operations for answers.
type AnswerRepository struct {
	ext sqlx.ExtContext
}

// NewAnswerRepository creates a new answer repository bound to ext, which may
// be a *sqlx.DB or a *sqlx.Tx.
func NewAnswerRepository(ext sqlx.ExtContext) *AnswerRepository {
	return &AnswerRepository{ext: ext}
}

// UpsertAnswerParams contains the parameters for upserting an answer.
type UpsertAnswerParams struct {
	ExternalID int64
	QuestionID int64
	AuthorID   int64
	Body       string
	Votes      int
	AnsweredAt *time.Time
}

// answerUpsertQuery inserts an answer keyed by its external id. On conflict
// only the vote count is updated.
const answerUpsertQuery = `
	INSERT INTO answer (answer_id, question_id, author_id, answer, votes, upload_timestamp)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (answer_id) DO UPDATE SET
		votes = EXCLUDED.votes
`

// Upsert creates or merges an answer row and returns its id, which equals
// the external id.
func (r *AnswerRepository) Upsert(ctx context.Context, params UpsertAnswerParams) (int64, error) {
	_, err := r.ext.ExecContext(
		ctx, answerUpsertQuery,
		params.ExternalID,
		params.QuestionID,
		params.AuthorID,
		params.Body,
		params.Votes,
		params.AnsweredAt,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert answer %d: %w", params.ExternalID, err)
	}

	return params.ExternalID, nil
}

// Package reporting exposes the precomputed aggregate queries downstream
// dashboards read, as a read-only repository and a small HTTP API.
package reporting

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// topLimit caps every ranking query.
const topLimit = 10

// TagCount is a tag with the number of questions carrying it.
type TagCount struct {
	Tag   string `db:"tag"   json:"tag"`
	Count int    `db:"count" json:"count"`
}

// TagVotes is a tag with the summed votes of its questions.
type TagVotes struct {
	Tag        string `db:"tag"         json:"tag"`
	TotalVotes int    `db:"total_votes" json:"total_votes"`
}

// HourCount is an hour of day with the number of questions asked in it.
type HourCount struct {
	Hour  int `db:"hour"  json:"hour"`
	Count int `db:"count" json:"count"`
}

// AuthorCount is an author with a per-author activity count.
type AuthorCount struct {
	AuthorID int64  `db:"author_id" json:"author_id"`
	Username string `db:"author_username" json:"username"`
	Count    int    `db:"count" json:"count"`
}

// Repository runs the aggregate reporting queries against the store.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a reporting repository.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// PopularTags returns the tags attached to the most questions, all time.
func (r *Repository) PopularTags(ctx context.Context) ([]TagCount, error) {
	query := `
		SELECT t.tag, COUNT(qt.tag_id) AS count
		FROM question_tag_assignment qt
		JOIN tag t ON qt.tag_id = t.tag_id
		GROUP BY t.tag
		ORDER BY count DESC
		LIMIT $1
	`
	return selectList[TagCount](ctx, r.db, query, topLimit)
}

// PopularTagsThisWeek returns the tags attached to the most questions asked
// within the past seven days.
func (r *Repository) PopularTagsThisWeek(ctx context.Context) ([]TagCount, error) {
	query := `
		SELECT t.tag, COUNT(qt.tag_id) AS count
		FROM question_tag_assignment qt
		JOIN tag t ON qt.tag_id = t.tag_id
		JOIN question q ON qt.question_id = q.question_id
		WHERE q.upload_timestamp >= CURRENT_TIMESTAMP - INTERVAL '7 days'
		GROUP BY t.tag
		ORDER BY count DESC
		LIMIT $1
	`
	return selectList[TagCount](ctx, r.db, query, topLimit)
}

// QuestionsByHour returns per-hour question counts for hours in
// [fromHour, toHour).
func (r *Repository) QuestionsByHour(ctx context.Context, fromHour, toHour int) ([]HourCount, error) {
	query := `
		SELECT DATE_PART('hour', q.upload_timestamp)::int AS hour,
			COUNT(*) AS count
		FROM question q
		WHERE DATE_PART('hour', q.upload_timestamp) >= $1
			AND DATE_PART('hour', q.upload_timestamp) < $2
		GROUP BY hour
		ORDER BY hour
	`
	return selectList[HourCount](ctx, r.db, query, fromHour, toHour)
}

// TagsByVotes returns the tags whose questions accumulated the most votes.
func (r *Repository) TagsByVotes(ctx context.Context) ([]TagVotes, error) {
	query := `
		SELECT t.tag, SUM(q.votes) AS total_votes
		FROM tag t
		JOIN question_tag_assignment qt ON t.tag_id = qt.tag_id
		JOIN question q ON q.question_id = qt.question_id
		GROUP BY t.tag
		ORDER BY total_votes DESC
		LIMIT $1
	`
	return selectList[TagVotes](ctx, r.db, query, topLimit)
}

// TagsByAnswers returns the tags whose questions received the most answers.
func (r *Repository) TagsByAnswers(ctx context.Context) ([]TagCount, error) {
	query := `
		SELECT t.tag, COUNT(a.answer_id) AS count
		FROM tag t
		JOIN question_tag_assignment qt ON t.tag_id = qt.tag_id
		JOIN question q ON q.question_id = qt.question_id
		JOIN answer a ON a.question_id = q.question_id
		GROUP BY t.tag
		ORDER BY count DESC
		LIMIT $1
	`
	return selectList[TagCount](ctx, r.db, query, topLimit)
}

// TopAskers returns the authors who asked the most questions.
func (r *Repository) TopAskers(ctx context.Context) ([]AuthorCount, error) {
	query := `
		SELECT a.author_username, a.author_id, COUNT(q.question_id) AS count
		FROM author a
		JOIN question q ON q.author_id = a.author_id
		GROUP BY a.author_id, a.author_username
		ORDER BY count DESC
		LIMIT $1
	`
	return selectList[AuthorCount](ctx, r.db, query, topLimit)
}

// TopAnswerers returns the authors who wrote the most answers.
func (r *Repository) TopAnswerers(ctx context.Context) ([]AuthorCount, error) {
	query := `
		SELECT a.author_username, a.author_id, COUNT(aw.answer_id) AS count
		FROM author a
		JOIN answer aw ON aw.author_id = a.author_id
		GROUP BY a.author_id, a.author_username
		ORDER BY count DESC
		LIMIT $1
	`
	return selectList[AuthorCount](ctx, r.db, query, topLimit)
}

// selectList runs a SELECT returning a list of T, never nil on success.
func selectList[T any](ctx context.Context, db *sqlx.DB, query string, args ...any) ([]T, error) {
	var rows []T
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("reporting query failed: %w", err)
	}

	if rows == nil {
		rows = []T{}
	}
	return rows, nil
}

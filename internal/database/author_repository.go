package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// AuthorRepository handles database operations for authors. It operates on
// whatever execution context it is given, so callers can scope it to a
// transaction.
type AuthorRepository struct {
	ext sqlx.ExtContext
}

// NewAuthorRepository creates a new author repository bound to ext, which may
// be a *sqlx.DB or a *sqlx.Tx.
func NewAuthorRepository(ext sqlx.ExtContext) *AuthorRepository {
	return &AuthorRepository{ext: ext}
}

// authorGetOrCreateQuery resolves a username to its surrogate id in a single
// statement: an insert-with-conflict-skip unioned with a lookup on the
// natural key. Concurrent callers racing on a new username converge on one
// row and both observe its id.
const authorGetOrCreateQuery = `
	WITH ins AS (
		INSERT INTO author (author_username)
		VALUES ($1)
		ON CONFLICT (author_username) DO NOTHING
		RETURNING author_id
	)
	SELECT author_id FROM ins
	UNION ALL
	SELECT author_id FROM author WHERE author_username = $1
	LIMIT 1
`

// GetOrCreate returns the id of the author with the given username, creating
// the row if it does not exist yet.
func (r *AuthorRepository) GetOrCreate(ctx context.Context, username string) (int64, error) {
	var id int64
	if err := sqlx.GetContext(ctx, r.ext, &id, authorGetOrCreateQuery, username); err != nil {
		return 0, fmt.Errorf("failed to resolve author %q: %w", username, err)
	}

	return id, nil
}

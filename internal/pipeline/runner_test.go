package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/stackpipe/internal/config"
	"github.com/jonesrussell/stackpipe/internal/logger"
	"github.com/jonesrussell/stackpipe/internal/pipeline"
)

const runnerListingHTML = `<!DOCTYPE html>
<html><body>
<div class="js-post-summary" data-post-id="101">
  <h3 class="s-post-summary--content-title"><a class="s-link" href="/questions/101/why">Why?</a></h3>
  <div class="s-post-summary--stats-item">
    <span class="s-post-summary--stats-item-number">5</span>
    <span class="s-post-summary--stats-item-unit">votes</span>
  </div>
  <ul><li class="d-inline mr4 js-post-tag-list-item">history</li></ul>
  <div class="s-user-card--link d-flex gs4">alice</div>
</div>
</body></html>`

const runnerDetailHTML = `<!DOCTYPE html><html><body></body></html>`

// mapFetcher serves both the listing and detail pages from a map.
type mapFetcher struct {
	pages map[string]string
}

func (f *mapFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	page, ok := f.pages[url]
	if !ok {
		return nil, errors.New("unexpected fetch: " + url)
	}
	return []byte(page), nil
}

func TestRunner_Run(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	cfg := config.ScrapeConfig{
		ListingURL: "https://history.example.com/questions?tab=Newest",
		BaseURL:    "https://history.example.com",
	}

	fetcher := &mapFetcher{pages: map[string]string{
		cfg.ListingURL:                                runnerListingHTML,
		"https://history.example.com/questions/101/why": runnerDetailHTML,
	}}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO author").
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"author_id"}).AddRow(int64(1)))
	mock.ExpectExec("INSERT INTO question").
		WithArgs(int64(101), int64(1), "Why?", 5, 0, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO tag").
		WithArgs("history").
		WillReturnRows(sqlmock.NewRows([]string{"tag_id"}).AddRow(int64(10)))
	mock.ExpectExec("INSERT INTO question_tag_assignment").
		WithArgs(int64(101), pq.Array([]int64{10})).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	runner := pipeline.NewRunner(cfg, fetcher, sqlx.NewDb(mockDB, "postgres"), logger.NewNoOp())

	report, runErr := runner.Run(context.Background())
	require.NoError(t, runErr)

	assert.Equal(t, 1, report.Succeeded)
	assert.Empty(t, report.Failed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunner_Run_ListingFetchFailureIsFatal(t *testing.T) {
	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	cfg := config.ScrapeConfig{
		ListingURL: "https://history.example.com/questions?tab=Newest",
		BaseURL:    "https://history.example.com",
	}

	runner := pipeline.NewRunner(
		cfg,
		&mapFetcher{pages: map[string]string{}},
		sqlx.NewDb(mockDB, "postgres"),
		logger.NewNoOp(),
	)

	_, runErr := runner.Run(context.Background())
	require.Error(t, runErr)
}

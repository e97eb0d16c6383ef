package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/stackpipe/internal/config"
	"github.com/jonesrussell/stackpipe/internal/extract"
	"github.com/jonesrussell/stackpipe/internal/fetch"
	"github.com/jonesrussell/stackpipe/internal/logger"
)

// Runner wires the fetch capability, extractor and loader into one
// extract-and-load pass over the configured listing page.
type Runner struct {
	cfg     config.ScrapeConfig
	fetcher fetch.Fetcher
	db      *sqlx.DB
	log     logger.Interface
}

// NewRunner creates a pipeline runner.
func NewRunner(cfg config.ScrapeConfig, fetcher fetch.Fetcher, db *sqlx.DB, log logger.Interface) *Runner {
	return &Runner{
		cfg:     cfg,
		fetcher: fetcher,
		db:      db,
		log:     log.WithComponent("pipeline"),
	}
}

// Run performs one full pass: fetch the listing page, extract its questions,
// load them. A listing fetch failure is resource-level and aborts the run;
// per-question failures end up in the report.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	started := time.Now()
	r.log.Info("pipeline run starting", "listing_url", r.cfg.ListingURL)

	listing, fetchErr := r.fetcher.Fetch(ctx, r.cfg.ListingURL)
	if fetchErr != nil {
		return nil, fmt.Errorf("fetch listing page: %w", fetchErr)
	}

	extractor, newErr := extract.New(r.fetcher, r.cfg.BaseURL, r.log)
	if newErr != nil {
		return nil, newErr
	}

	results, extractErr := extractor.Extract(ctx, listing)
	if extractErr != nil {
		return nil, extractErr
	}

	report, loadErr := NewLoader(r.db, r.log).Load(ctx, results)
	if loadErr != nil {
		return report, loadErr
	}

	r.log.Info("pipeline run complete",
		"run_id", report.RunID,
		"succeeded", report.Succeeded,
		"failed", len(report.Failed),
		"duration", time.Since(started).String(),
	)

	return report, nil
}

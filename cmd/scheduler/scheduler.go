// Package scheduler implements the schedule command: repeated pipeline runs
// on a cron expression.
package scheduler

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/stackpipe/cmd/common"
	"github.com/jonesrussell/stackpipe/internal/fetch"
	"github.com/jonesrussell/stackpipe/internal/pipeline"
)

// defaultSchedule runs the pipeline at the top of every hour.
const defaultSchedule = "0 * * * *"

// Command returns the schedule command.
func Command() *cobra.Command {
	var schedule string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the pipeline on a cron schedule",
		Long: `Start a scheduler that runs the extract-and-load pipeline on the given
cron expression. Runs continuously until interrupted with Ctrl+C. Overlapping
runs against the same store are safe; entity resolution and upserts are atomic.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScheduler(cmd, schedule)
		},
	}

	cmd.Flags().StringVar(&schedule, "cron", defaultSchedule, "cron expression for pipeline runs")

	return cmd
}

// runScheduler starts the cron loop and blocks until interrupted.
func runScheduler(cmd *cobra.Command, schedule string) error {
	debug, _ := cmd.Flags().GetBool("debug")

	deps, err := common.NewCommandDeps(debug)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	db, dbErr := deps.ConnectDatabase()
	if dbErr != nil {
		return dbErr
	}
	defer db.Close()

	fetcher := fetch.NewClient(deps.Config.Scrape.FetchTimeout, deps.Config.Scrape.UserAgent)
	runner := pipeline.NewRunner(deps.Config.Scrape, fetcher, db, deps.Logger)

	ctx := cmd.Context()
	log := deps.Logger.WithComponent("scheduler")

	c := cron.New()
	_, addErr := c.AddFunc(schedule, func() {
		if _, runErr := runner.Run(ctx); runErr != nil {
			log.Error("scheduled run failed", "error", runErr.Error())
		}
	})
	if addErr != nil {
		return fmt.Errorf("invalid cron expression %q: %w", schedule, addErr)
	}

	c.Start()
	log.Info("scheduler started", "cron", schedule)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info("shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
	}

	stopCtx := c.Stop()
	<-stopCtx.Done()
	log.Info("scheduler stopped")

	return nil
}

// Package pipeline implements the run command: one extract-and-load pass.
package pipeline

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/stackpipe/cmd/common"
	"github.com/jonesrussell/stackpipe/internal/fetch"
	"github.com/jonesrussell/stackpipe/internal/pipeline"
)

// Command returns the run command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run one extract-and-load pass",
		Long: `Fetch the configured listing page, extract its questions and answers,
and load them into PostgreSQL. Safe to re-run: re-ingestion updates only
vote and view counts and never duplicates rows.`,
		RunE: runPipeline,
	}
}

// runPipeline executes one pipeline pass and prints the resulting report.
func runPipeline(cmd *cobra.Command, _ []string) error {
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

	report, runErr := runner.Run(cmd.Context())
	if report != nil {
		printReport(report)
	}
	if runErr != nil {
		return fmt.Errorf("pipeline run failed: %w", runErr)
	}

	return nil
}

// printReport renders the load report as a table on stdout.
func printReport(report *pipeline.Report) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Run %s: %d loaded, %d failed", report.RunID, report.Succeeded, len(report.Failed))

	if len(report.Failed) > 0 {
		t.AppendHeader(table.Row{"Question", "Reason"})
		for _, failure := range report.Failed {
			id := failure.ExternalID
			if id == "" {
				id = "(unknown)"
			}
			t.AppendRow(table.Row{id, failure.Reason})
		}
	}

	t.Render()
}

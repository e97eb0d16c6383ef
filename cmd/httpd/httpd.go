// Package httpd implements the serve command: the reporting HTTP API.
package httpd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/stackpipe/cmd/common"
	"github.com/jonesrussell/stackpipe/internal/reporting"
)

// shutdownTimeout bounds graceful server shutdown.
const shutdownTimeout = 10 * time.Second

// Command returns the serve command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the reporting API",
		Long: `Start the HTTP server exposing the aggregate reporting queries
(popular tags, questions by hour, top authors) as JSON.`,
		RunE: runServer,
	}
}

// runServer starts the reporting API and blocks until interrupted.
func runServer(cmd *cobra.Command, _ []string) error {
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

	handler := reporting.NewHandler(reporting.NewRepository(db), deps.Logger)

	server := &http.Server{
		Addr:         net.JoinHostPort("", deps.Config.Server.Port),
		Handler:      reporting.NewRouter(handler),
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
	}

	log := deps.Logger.WithComponent("httpd")

	errChan := make(chan error, 1)
	go func() {
		log.Info("starting reporting server", "addr", server.Addr)
		if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errChan <- serveErr
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case serverErr := <-errChan:
		return fmt.Errorf("server error: %w", serverErr)
	case sig := <-sigChan:
		log.Info("shutdown signal received", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		return fmt.Errorf("failed to stop server: %w", shutdownErr)
	}

	log.Info("server stopped")
	return nil
}

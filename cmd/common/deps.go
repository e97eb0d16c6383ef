// Package common provides shared dependency construction for commands.
package common

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/viper"

	"github.com/jonesrussell/stackpipe/internal/config"
	"github.com/jonesrussell/stackpipe/internal/database"
	"github.com/jonesrussell/stackpipe/internal/logger"
)

// CommandDeps holds the dependencies every command starts from.
type CommandDeps struct {
	Config *config.Config
	Logger logger.Interface
}

// NewCommandDeps loads configuration and creates the logger.
func NewCommandDeps(debug bool) (*CommandDeps, error) {
	cfg := config.LoadFromViper(viper.GetViper())
	if debug {
		cfg.Logging.Level = "debug"
		cfg.Logging.Development = true
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	return &CommandDeps{Config: cfg, Logger: log}, nil
}

// ConnectDatabase opens the PostgreSQL connection from the loaded config.
// The caller owns the returned handle and must close it on every exit path.
func (d *CommandDeps) ConnectDatabase() (*sqlx.DB, error) {
	db, err := database.NewPostgresConnection(d.Config.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

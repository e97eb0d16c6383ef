package config_test

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/stackpipe/internal/config"
)

func TestLoadFromViper_Defaults(t *testing.T) {
	cfg := config.LoadFromViper(viper.New())

	assert.Equal(t, config.DefaultDBHost, cfg.Database.Host)
	assert.Equal(t, config.DefaultDBPort, cfg.Database.Port)
	assert.Equal(t, config.DefaultDBName, cfg.Database.DBName)
	assert.Equal(t, config.DefaultListingURL, cfg.Scrape.ListingURL)
	assert.Equal(t, config.DefaultFetchTimeout, cfg.Scrape.FetchTimeout)
	assert.Equal(t, config.DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, config.DefaultLogLevel, cfg.Logging.Level)
}

func TestLoadFromViper_ViperOverridesDefaults(t *testing.T) {
	v := viper.New()
	v.Set("database.host", "db.internal")
	v.Set("scrape.fetch_timeout", "30s")
	v.Set("logging.development", true)

	cfg := config.LoadFromViper(v)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 30*time.Second, cfg.Scrape.FetchTimeout)
	assert.True(t, cfg.Logging.Development)
}

func TestLoadFromViper_EnvOverridesViper(t *testing.T) {
	t.Setenv("DB_HOST", "env-wins.internal")
	t.Setenv("DB_PASSWORD", "hunter2")

	v := viper.New()
	v.Set("database.host", "viper-loses.internal")

	cfg := config.LoadFromViper(v)

	assert.Equal(t, "env-wins.internal", cfg.Database.Host)
	assert.Equal(t, "hunter2", cfg.Database.Password)
}

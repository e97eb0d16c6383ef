// Package config provides configuration management for the pipeline.
package config

import (
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/jonesrussell/stackpipe/internal/logger"
)

// Default configuration values.
const (
	DefaultDBHost    = "localhost"
	DefaultDBPort    = "5432"
	DefaultDBUser    = "postgres"
	DefaultDBName    = "stackpipe"
	DefaultDBSSLMode = "disable"

	DefaultListingURL   = "https://history.stackexchange.com/questions?tab=Newest&pagesize=50"
	DefaultBaseURL      = "https://history.stackexchange.com"
	DefaultUserAgent    = "stackpipe/1.0"
	DefaultFetchTimeout = 15 * time.Second

	DefaultServerPort   = "8080"
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 30 * time.Second

	DefaultLogLevel    = "info"
	DefaultLogEncoding = "console"
)

// Config holds the full application configuration.
type Config struct {
	Database DatabaseConfig
	Scrape   ScrapeConfig
	Server   ServerConfig
	Logging  logger.Config
}

// DatabaseConfig represents database configuration settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// ScrapeConfig represents extraction configuration settings.
type ScrapeConfig struct {
	ListingURL   string
	BaseURL      string
	UserAgent    string
	FetchTimeout time.Duration
}

// ServerConfig represents reporting server configuration settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// getConfigValue retrieves a configuration value from environment or Viper,
// with a default fallback. Environment variables take precedence.
func getConfigValue(envKey, viperKey, defaultValue string, v *viper.Viper) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	if val := v.GetString(viperKey); val != "" {
		return val
	}
	return defaultValue
}

// getDurationValue retrieves a duration from Viper with a default fallback.
func getDurationValue(viperKey string, defaultValue time.Duration, v *viper.Viper) time.Duration {
	if val := v.GetDuration(viperKey); val > 0 {
		return val
	}
	return defaultValue
}

// LoadFromViper loads the full configuration from Viper and environment variables.
func LoadFromViper(v *viper.Viper) *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:     getConfigValue("DB_HOST", "database.host", DefaultDBHost, v),
			Port:     getConfigValue("DB_PORT", "database.port", DefaultDBPort, v),
			User:     getConfigValue("DB_USER", "database.user", DefaultDBUser, v),
			Password: getConfigValue("DB_PASSWORD", "database.password", "", v),
			DBName:   getConfigValue("DB_NAME", "database.dbname", DefaultDBName, v),
			SSLMode:  getConfigValue("DB_SSLMODE", "database.sslmode", DefaultDBSSLMode, v),
		},
		Scrape: ScrapeConfig{
			ListingURL:   getConfigValue("SCRAPE_LISTING_URL", "scrape.listing_url", DefaultListingURL, v),
			BaseURL:      getConfigValue("SCRAPE_BASE_URL", "scrape.base_url", DefaultBaseURL, v),
			UserAgent:    getConfigValue("SCRAPE_USER_AGENT", "scrape.user_agent", DefaultUserAgent, v),
			FetchTimeout: getDurationValue("scrape.fetch_timeout", DefaultFetchTimeout, v),
		},
		Server: ServerConfig{
			Port:         getConfigValue("SERVER_PORT", "server.port", DefaultServerPort, v),
			ReadTimeout:  getDurationValue("server.read_timeout", DefaultReadTimeout, v),
			WriteTimeout: getDurationValue("server.write_timeout", DefaultWriteTimeout, v),
		},
		Logging: logger.Config{
			Level:       getConfigValue("LOG_LEVEL", "logging.level", DefaultLogLevel, v),
			Encoding:    getConfigValue("LOG_ENCODING", "logging.encoding", DefaultLogEncoding, v),
			Development: v.GetBool("logging.development"),
		},
	}
}

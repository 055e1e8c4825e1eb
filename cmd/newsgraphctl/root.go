package main

import (
	"os"

	"newsgraph/config"
	"newsgraph/graphdb"
	"newsgraph/logger"

	"github.com/spf13/cobra"
)

var (
	configPath string
	endpoint   string
	logLevel   string
)

// newConnector is replaced in tests.
var newConnector = func(cfg config.ArangoConfig) graphdb.Connector {
	return graphdb.NewConnector(cfg)
}

var rootCmd = &cobra.Command{
	Use:   "newsgraphctl",
	Short: "Query the news graph from the command line",
	Long: `newsgraphctl runs ad-hoc AQL against the news and video graphs and
looks up related articles without going through the HTTP server.

Credentials are read from ARANGO_USER and ARANGO_PASSWORD (or a .env file).`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVarP(&endpoint, "endpoint", "e", "", "Database endpoint URL (defaults to ARANGO_URL)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

// loadConfig loads and validates the configuration and initialises logging.
func loadConfig() (*config.Config, error) {
	cfg, err := loadSettings()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadSettings is loadConfig for commands that never reach the database.
func loadSettings() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	logger.Init(os.Stderr, cfg.LogLevel)
	return cfg, nil
}

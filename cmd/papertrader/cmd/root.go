package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rustyeddy/papertrader/config"
)

var rootCmd = &cobra.Command{
	Use:   "papertrader",
	Short: "A multi-asset paper-trading engine and HTTP service",
	Long: `Papertrader simulates margin trading across forex, stocks, crypto,
commodities and indices without real money.

It provides tools for:
  - Serving the paper-trading HTTP API and live quote stream
  - Generating and validating service configuration
  - Quoting the simulated market from the command line
  - Querying the SQLite trade journal`,
	SilenceUsage: true,
}

var (
	cfgFile  string
	logLevel string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON); defaults are used when empty")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level from the config")
}

// loadConfig reads --config, or the defaults, and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if cfgFile != "" {
		var err error
		if cfg, err = config.LoadFromFile(cfgFile); err != nil {
			return nil, err
		}
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, cfg.Validate()
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MJE43/stake-mines-go/internal/config"
	"github.com/MJE43/stake-mines-go/internal/logging"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "stake-mines",
	Short: "Mines round engine with auto-pick and batch auto-play",
	Long: `stake-mines hosts a Mines game: pick cells on a grid hiding mines,
cash out before hitting one, or let auto-play run batches of rounds.

Serve the HTTP API
	stake-mines serve

Run a headless batch session
	stake-mines simulate --mines 3 --cells 0,1,2 --runs 100 --seed 42

Print the payout curve of a board
	stake-mines multipliers --mines 3
`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level (debug, info, warn, error)")
}

// loadConfig reads --config and applies --log-level.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, nil
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	return logging.New(cfg.Log)
}

// Package config loads the game and server settings from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"
)

// Board bounds the boards a player may configure.
type Board struct {
	Rows     int `yaml:"rows"`
	Cols     int `yaml:"cols"`
	MinMines int `yaml:"min_mines"`
	MaxMines int `yaml:"max_mines"`
}

// AutoMode holds the pacing of automated play.
type AutoMode struct {
	PickIntervalMs   int `yaml:"pick_interval_ms"`
	MaxRuns          int `yaml:"max_runs"`
	ResultDurationMs int `yaml:"result_duration_ms"`
}

// PickInterval is the auto-pick cadence.
func (a AutoMode) PickInterval() time.Duration {
	return time.Duration(a.PickIntervalMs) * time.Millisecond
}

// ResultDuration is the pause between batch rounds.
func (a AutoMode) ResultDuration() time.Duration {
	return time.Duration(a.ResultDurationMs) * time.Millisecond
}

// Server configures the HTTP bridge.
type Server struct {
	Addr string `yaml:"addr"`
}

// Log configures the zap logger.
type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Config is the root configuration document.
type Config struct {
	Board          Board     `yaml:"board"`
	BetAmounts     []float64 `yaml:"bet_amounts"`
	StartingCredit float64   `yaml:"starting_credit"`
	AutoMode       AutoMode  `yaml:"auto_mode"`
	Server         Server    `yaml:"server"`
	Log            Log       `yaml:"log"`
}

// Default returns the stock 5x5 configuration.
func Default() Config {
	return Config{
		Board: Board{
			Rows:     5,
			Cols:     5,
			MinMines: 1,
			MaxMines: 24,
		},
		BetAmounts:     []float64{10, 20, 30, 50, 100, 200},
		StartingCredit: 10000,
		AutoMode: AutoMode{
			PickIntervalMs:   600,
			MaxRuns:          1000,
			ResultDurationMs: 1000,
		},
		Server: Server{Addr: "127.0.0.1:8080"},
		Log:    Log{Level: "info"},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks ranges that would make the game unplayable.
func (c Config) Validate() error {
	cells := c.Board.Rows * c.Board.Cols
	if c.Board.Rows <= 0 || c.Board.Cols <= 0 {
		return fmt.Errorf("board must have positive rows and cols, got %dx%d", c.Board.Rows, c.Board.Cols)
	}
	if c.Board.MinMines < 1 || c.Board.MinMines > c.Board.MaxMines {
		return fmt.Errorf("min_mines must be between 1 and max_mines, got %d", c.Board.MinMines)
	}
	if c.Board.MaxMines >= cells {
		return fmt.Errorf("max_mines must be below %d, got %d", cells, c.Board.MaxMines)
	}
	for _, amt := range c.BetAmounts {
		if amt <= 0 {
			return fmt.Errorf("bet amounts must be positive, got %v", amt)
		}
	}
	if c.StartingCredit < 0 {
		return fmt.Errorf("starting_credit must not be negative")
	}
	if c.AutoMode.PickIntervalMs <= 0 {
		return fmt.Errorf("pick_interval_ms must be positive")
	}
	if c.AutoMode.MaxRuns < 0 || c.AutoMode.ResultDurationMs < 0 {
		return fmt.Errorf("max_runs and result_duration_ms must not be negative")
	}
	return nil
}

// Bets returns the bet ladder as decimals.
func (c Config) Bets() []decimal.Decimal {
	out := make([]decimal.Decimal, len(c.BetAmounts))
	for i, amt := range c.BetAmounts {
		out[i] = decimal.NewFromFloat(amt)
	}
	return out
}

// Credit returns the starting credit as a decimal.
func (c Config) Credit() decimal.Decimal {
	return decimal.NewFromFloat(c.StartingCredit)
}

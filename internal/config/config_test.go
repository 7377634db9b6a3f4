package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.AutoMode.PickInterval() != 600*time.Millisecond {
		t.Errorf("expected 600ms pick interval, got %s", cfg.AutoMode.PickInterval())
	}
	if cfg.AutoMode.ResultDuration() != time.Second {
		t.Errorf("expected 1s result duration, got %s", cfg.AutoMode.ResultDuration())
	}
	if !cfg.Credit().Equal(decimal.NewFromInt(10000)) {
		t.Errorf("expected starting credit 10000, got %s", cfg.Credit())
	}
	if len(cfg.Bets()) != 6 || !cfg.Bets()[0].Equal(decimal.NewFromInt(10)) {
		t.Errorf("unexpected bet ladder %v", cfg.Bets())
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mines.yaml")
	doc := `
board:
  rows: 4
  cols: 4
  max_mines: 15
starting_credit: 500
auto_mode:
  pick_interval_ms: 250
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Board.Rows != 4 || cfg.Board.MaxMines != 15 {
		t.Errorf("board not loaded: %+v", cfg.Board)
	}
	if cfg.Board.MinMines != 1 {
		t.Errorf("unset fields should keep defaults, got min_mines=%d", cfg.Board.MinMines)
	}
	if cfg.AutoMode.PickInterval() != 250*time.Millisecond {
		t.Errorf("expected 250ms, got %s", cfg.AutoMode.PickInterval())
	}
	if cfg.AutoMode.MaxRuns != 1000 {
		t.Errorf("expected default max_runs, got %d", cfg.AutoMode.MaxRuns)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected debug level, got %s", cfg.Log.Level)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("board:\n  rows: 5\n  cols: 5\n  max_mines: 25\n"), 0o644)
	if _, err := Load(bad); err == nil {
		t.Error("expected error when max_mines fills the board")
	}

	unknown := filepath.Join(dir, "unknown.yaml")
	os.WriteFile(unknown, []byte("bogus: 1\n"), 0o644)
	if _, err := Load(unknown); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Board.Rows != 5 {
		t.Errorf("expected defaults, got %+v", cfg.Board)
	}
}

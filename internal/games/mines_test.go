package games

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MJE43/stake-mines-go/internal/engine"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "default 5x5", cfg: Config{Rows: 5, Cols: 5, Mines: 3, Bet: decimal.NewFromInt(10)}},
		{name: "max mines", cfg: Config{Rows: 5, Cols: 5, Mines: 24}},
		{name: "zero rows", cfg: Config{Rows: 0, Cols: 5, Mines: 1}, wantErr: true},
		{name: "negative cols", cfg: Config{Rows: 5, Cols: -1, Mines: 1}, wantErr: true},
		{name: "no mines", cfg: Config{Rows: 5, Cols: 5, Mines: 0}, wantErr: true},
		{name: "mines fill board", cfg: Config{Rows: 5, Cols: 5, Mines: 25}, wantErr: true},
		{name: "negative bet", cfg: Config{Rows: 2, Cols: 2, Mines: 1, Bet: decimal.NewFromInt(-1)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

// A 1x1 board with its single cell mined has no safe cell to play, so it is
// rejected rather than started.
func TestConfigRejectsOneByOneBoardWithOneMine(t *testing.T) {
	cfg := Config{Rows: 1, Cols: 1, Mines: 1, Bet: decimal.NewFromInt(10)}
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
	if _, err := NewRound(cfg, engine.NewSource(1)); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("NewRound: expected ErrInvalidConfig, got %v", err)
	}
}

func TestValidateSelection(t *testing.T) {
	cfg := Config{Rows: 5, Cols: 5, Mines: 1}

	if err := cfg.ValidateSelection([]int{0, 12, 24}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := cfg.ValidateSelection([]int{25}); !errors.Is(err, ErrInvalidCells) {
		t.Errorf("expected ErrInvalidCells for out of range cell, got %v", err)
	}
	if err := cfg.ValidateSelection([]int{-1}); !errors.Is(err, ErrInvalidCells) {
		t.Errorf("expected ErrInvalidCells for negative cell, got %v", err)
	}
	if err := cfg.ValidateSelection([]int{3, 3}); !errors.Is(err, ErrInvalidCells) {
		t.Errorf("expected ErrInvalidCells for duplicate cell, got %v", err)
	}
}

func TestPlaceMines(t *testing.T) {
	for _, method := range []Placement{PlacementRejection, PlacementShuffle} {
		for _, mines := range []int{1, 3, 12, 24} {
			src := engine.NewSource(uint64(mines) + 1)
			for trial := 0; trial < 50; trial++ {
				got := PlaceMines(src, 25, mines, method)
				if len(got) != mines {
					t.Fatalf("%s: expected %d mines, got %d", method, mines, len(got))
				}
				seen := make(map[int]bool)
				for _, pos := range got {
					if pos < 0 || pos >= 25 {
						t.Errorf("%s: mine position %d out of range [0, 25)", method, pos)
					}
					if seen[pos] {
						t.Errorf("%s: duplicate mine position %d", method, pos)
					}
					seen[pos] = true
				}
			}
		}
	}
}

func TestPlaceMinesRejectionRetriesDuplicates(t *testing.T) {
	src := &seqSource{vals: []int{3, 3, 3, 1}}

	got := PlaceMines(src, 4, 2, PlacementRejection)
	if len(got) != 2 || got[0] != 3 || got[1] != 1 {
		t.Errorf("expected [3 1], got %v", got)
	}
	if src.calls != 4 {
		t.Errorf("expected 4 draws, got %d", src.calls)
	}
}

func TestPlaceMinesRejectionFallsBackOnStuckSource(t *testing.T) {
	src := &seqSource{vals: []int{0}}

	done := make(chan []int, 1)
	go func() { done <- PlaceMines(src, 25, 3, PlacementRejection) }()

	var got []int
	select {
	case got = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("placement did not finish with a constant source")
	}
	// The shuffle fallback with zero draws yields the identity prefix.
	if len(got) != 3 || got[0] != 0 || got[1] != 1 || got[2] != 2 {
		t.Errorf("expected [0 1 2], got %v", got)
	}
	if want := 1 + rejectionDuplicateFactor*25 + 1 + 3; src.calls != want {
		t.Errorf("expected %d draws, got %d", want, src.calls)
	}
}

func TestPlaceMinesShuffleDrawsOncePerMine(t *testing.T) {
	src := &seqSource{vals: []int{0}}

	got := PlaceMines(src, 25, 5, PlacementShuffle)
	if src.calls != 5 {
		t.Errorf("expected 5 draws, got %d", src.calls)
	}
	for i, pos := range got {
		if pos != i {
			t.Errorf("expected identity prefix with zero draws, got %v", got)
			break
		}
	}
}

func TestParsePlacement(t *testing.T) {
	if p, err := ParsePlacement(""); err != nil || p != PlacementRejection {
		t.Errorf("empty name: got %q, %v", p, err)
	}
	if p, err := ParsePlacement("shuffle"); err != nil || p != PlacementShuffle {
		t.Errorf("shuffle: got %q, %v", p, err)
	}
	if _, err := ParsePlacement("bogus"); err == nil {
		t.Error("expected error for unknown placement")
	}
}

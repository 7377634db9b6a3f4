package games

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestFairMultiplier(t *testing.T) {
	tests := []struct {
		name               string
		cells, mines, pick int
		want               float64
	}{
		{name: "5x5 one mine one pick", cells: 25, mines: 1, pick: 1, want: 25.0 / 24.0},
		{name: "5x5 one mine two picks", cells: 25, mines: 1, pick: 2, want: 25.0 / 23.0},
		{name: "5x5 three mines one pick", cells: 25, mines: 3, pick: 1, want: 25.0 / 22.0},
		{name: "2x2 one mine all safe", cells: 4, mines: 1, pick: 3, want: 4},
		{name: "no picks", cells: 25, mines: 3, pick: 0, want: 1},
		{name: "more picks than gems", cells: 4, mines: 1, pick: 4, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FairMultiplier(tt.cells, tt.mines, tt.pick)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("FairMultiplier(%d, %d, %d) = %v, want %v", tt.cells, tt.mines, tt.pick, got, tt.want)
			}
		})
	}
}

func TestEngineMultiplier(t *testing.T) {
	if got := EngineMultiplier(25, 3, 0); got != 1 {
		t.Errorf("expected 1 before any reveal, got %v", got)
	}
	if got := EngineMultiplier(4, 1, 3); got != 2 {
		t.Errorf("expected 2 after revealing all gems on 2x2, got %v", got)
	}

	prev := 1.0
	for k := 1; k <= 22; k++ {
		m := EngineMultiplier(25, 3, k)
		if m <= prev {
			t.Errorf("multiplier not increasing at %d reveals: %v <= %v", k, m, prev)
		}
		prev = m
	}
}

func TestMultiplierTable(t *testing.T) {
	steps := MultiplierTable(Config{Rows: 5, Cols: 5, Mines: 3})
	if len(steps) != 22 {
		t.Fatalf("expected 22 steps, got %d", len(steps))
	}
	if steps[0].Picks != 1 || math.Abs(steps[0].Fair-25.0/22.0) > 1e-12 {
		t.Errorf("unexpected first step: %+v", steps[0])
	}
	for i := 1; i < len(steps); i++ {
		if steps[i].Fair <= steps[i-1].Fair {
			t.Errorf("fair multiplier not increasing at step %d", i)
		}
		if steps[i].WinPercent >= steps[i-1].WinPercent {
			t.Errorf("win percent not decreasing at step %d", i)
		}
	}
}

func TestFairPayout(t *testing.T) {
	ten := decimal.NewFromInt(10)
	tests := []struct {
		name               string
		cells, mines, pick int
		want               string
	}{
		{name: "5x5 one mine one pick", cells: 25, mines: 1, pick: 1, want: "10.41666667"},
		{name: "5x5 one mine two picks", cells: 25, mines: 1, pick: 2, want: "10.86956522"},
		{name: "2x2 one mine all safe", cells: 4, mines: 1, pick: 3, want: "40"},
		{name: "no picks", cells: 25, mines: 3, pick: 0, want: "10"},
		{name: "more picks than gems", cells: 4, mines: 1, pick: 4, want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FairPayout(ten, tt.cells, tt.mines, tt.pick)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("FairPayout(10, %d, %d, %d) = %s, want %s", tt.cells, tt.mines, tt.pick, got, tt.want)
			}
		})
	}
}

func TestFairPayoutKeepsFixedScale(t *testing.T) {
	// Summing many payouts must not pick up float noise beyond PayoutScale.
	total := decimal.Zero
	for i := 0; i < 1000; i++ {
		total = total.Add(FairPayout(decimal.NewFromInt(10), 25, 1, 1))
	}
	if !total.Equal(decimal.RequireFromString("10416.66667")) {
		t.Errorf("expected 10416.66667, got %s", total)
	}
	if total.Exponent() < -PayoutScale {
		t.Errorf("total %s has more than %d decimal places", total, PayoutScale)
	}
}

func TestEnginePayout(t *testing.T) {
	ten := decimal.NewFromInt(10)
	if got := EnginePayout(ten, 4, 1, 3); !got.Equal(decimal.NewFromInt(20)) {
		t.Errorf("expected 20 after clearing a 2x2 board, got %s", got)
	}
	if got := EnginePayout(ten, 25, 3, 0); !got.Equal(ten) {
		t.Errorf("expected the bet back before any reveal, got %s", got)
	}
	// 1 + (1/22)*3 = 25/22
	if got := EnginePayout(ten, 25, 3, 1); !got.Equal(decimal.RequireFromString("11.36363636")) {
		t.Errorf("expected 11.36363636, got %s", got)
	}
}

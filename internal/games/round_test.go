package games

import (
	"errors"
	"slices"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/MJE43/stake-mines-go/internal/engine"
)

func newTestRound(t *testing.T, cfg Config, src engine.Source) *Round {
	t.Helper()
	r, err := NewRound(cfg, src)
	if err != nil {
		t.Fatalf("NewRound failed: %v", err)
	}
	return r
}

func TestNewRoundRejectsInvalidConfig(t *testing.T) {
	_, err := NewRound(Config{Rows: 1, Cols: 1, Mines: 1}, engine.NewSource(1))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}

	_, err = NewRound(Config{Rows: 5, Cols: 5, Mines: 30}, engine.NewSource(1))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for mines > cells, got %v", err)
	}
}

func TestRoundStart(t *testing.T) {
	r := newTestRound(t, Config{Rows: 5, Cols: 5, Mines: 5}, engine.NewSource(7))

	if r.Active() {
		t.Error("round should be idle before Start")
	}

	for i := 0; i < 20; i++ {
		r.Start()
		mines := r.Mines()
		if len(mines) != 5 {
			t.Fatalf("expected 5 mines, got %d", len(mines))
		}
		for _, pos := range mines {
			if pos < 0 || pos >= 25 {
				t.Errorf("mine position %d out of range", pos)
			}
		}
		if !r.Active() {
			t.Error("round should be active after Start")
		}
		if len(r.Revealed()) != 0 {
			t.Error("Start should clear revealed cells")
		}
	}
}

func TestRoundTwoByTwoCashout(t *testing.T) {
	// Every draw lands on cell 0.
	src := engine.SourceFunc(func(n int) int { return 0 })
	r := newTestRound(t, Config{Rows: 2, Cols: 2, Mines: 1, Bet: decimal.NewFromInt(10)}, src)
	r.Start()

	if got := r.Mines(); !slices.Equal(got, []int{0}) {
		t.Fatalf("expected mine at 0, got %v", got)
	}
	if got := r.Multiplier(); got != 1 {
		t.Errorf("expected multiplier 1 before reveals, got %v", got)
	}

	for _, idx := range []int{1, 2, 3} {
		res := r.Reveal(idx)
		if !res.Success || res.IsMine || res.GameOver {
			t.Fatalf("reveal %d: unexpected result %+v", idx, res)
		}
	}

	if got := r.Multiplier(); got != 2 {
		t.Errorf("expected multiplier 2, got %v", got)
	}
	if r.SafeRemaining() != 0 {
		t.Errorf("expected no gems left, got %d", r.SafeRemaining())
	}

	payout := r.Cashout()
	if !payout.Equal(decimal.NewFromInt(20)) {
		t.Errorf("expected payout 20, got %s", payout)
	}
	if r.Active() {
		t.Error("round should be settled after cashout")
	}
	if again := r.Cashout(); !again.IsZero() {
		t.Errorf("second cashout should return 0, got %s", again)
	}
}

func TestRoundRevealMine(t *testing.T) {
	src := engine.SourceFunc(func(n int) int { return 0 })
	r := newTestRound(t, Config{Rows: 1, Cols: 2, Mines: 1, Bet: decimal.NewFromInt(5)}, src)
	r.Start()

	res := r.Reveal(0)
	if !res.Success || !res.IsMine || !res.GameOver {
		t.Fatalf("expected losing reveal, got %+v", res)
	}
	if r.Active() {
		t.Error("round should end on a mine")
	}

	before := r.Revealed()
	if res := r.Reveal(1); res.Success {
		t.Error("reveal after loss should be rejected")
	}
	if payout := r.Cashout(); !payout.IsZero() {
		t.Errorf("cashout after loss should return 0, got %s", payout)
	}
	if after := r.Revealed(); !slices.Equal(before, after) {
		t.Errorf("state changed after loss: %v -> %v", before, after)
	}
}

func TestRoundRevealRejected(t *testing.T) {
	src := engine.SourceFunc(func(n int) int { return 0 })
	r := newTestRound(t, Config{Rows: 3, Cols: 3, Mines: 1}, src)

	if res := r.Reveal(4); res.Success {
		t.Error("reveal before Start should be rejected")
	}

	r.Start()
	if res := r.Reveal(4); !res.Success {
		t.Fatal("first reveal should succeed")
	}
	m := r.Multiplier()

	if res := r.Reveal(4); res.Success {
		t.Error("revealing the same cell twice should be rejected")
	}
	if res := r.Reveal(9); res.Success {
		t.Error("reveal outside the board should be rejected")
	}
	if res := r.Reveal(-1); res.Success {
		t.Error("negative index should be rejected")
	}
	if got := r.Multiplier(); got != m {
		t.Errorf("rejected reveals changed multiplier: %v -> %v", m, got)
	}
	if got := r.Revealed(); !slices.Equal(got, []int{4}) {
		t.Errorf("expected revealed [4], got %v", got)
	}
}

func TestRoundMultiplierMonotonic(t *testing.T) {
	r := newTestRound(t, Config{Rows: 5, Cols: 5, Mines: 3, Bet: decimal.NewFromInt(1)}, engine.NewSource(11))
	r.Start()

	mines := make(map[int]bool)
	for _, m := range r.Mines() {
		mines[m] = true
	}

	prev := r.Multiplier()
	for idx := 0; idx < 25; idx++ {
		if mines[idx] {
			continue
		}
		r.Reveal(idx)
		m := r.Multiplier()
		if m <= prev {
			t.Errorf("multiplier did not increase after revealing %d: %v -> %v", idx, prev, m)
		}
		prev = m
	}
	if prev != 4 {
		t.Errorf("expected 1 + 3 after revealing every gem, got %v", prev)
	}
}

func TestRoundRevealRandom(t *testing.T) {
	src := engine.SourceFunc(func(n int) int { return n - 1 })
	r := newTestRound(t, Config{Rows: 2, Cols: 2, Mines: 1}, src)
	r.Start()

	// Mine sits on cell 3; picks walk down from the highest closed cell.
	idx, res := r.RevealRandom()
	if idx != 3 || !res.GameOver {
		t.Fatalf("expected to hit the mine at 3, got %d %+v", idx, res)
	}
	if idx, res := r.RevealRandom(); idx != -1 || res.Success {
		t.Errorf("random reveal after loss should be rejected, got %d %+v", idx, res)
	}
}

func TestRoundRevealRandomExhaustsGems(t *testing.T) {
	src := engine.SourceFunc(func(n int) int { return 0 })
	r := newTestRound(t, Config{Rows: 2, Cols: 3, Mines: 1}, src)
	r.Start()

	for idx := 1; idx < 6; idx++ {
		if res := r.Reveal(idx); !res.Success || res.IsMine {
			t.Fatalf("reveal %d: unexpected result %+v", idx, res)
		}
	}
	if r.SafeRemaining() != 0 {
		t.Errorf("expected all gems revealed, got %d left", r.SafeRemaining())
	}

	// Only the mine is still closed.
	idx, res := r.RevealRandom()
	if idx != 0 || !res.IsMine {
		t.Errorf("expected the random pick to land on the mine at 0, got %d %+v", idx, res)
	}
}

func TestRoundReset(t *testing.T) {
	r := newTestRound(t, Config{Rows: 5, Cols: 5, Mines: 3}, engine.NewSource(3))
	r.Start()
	r.RevealRandom()

	r.Reset()
	if r.Active() {
		t.Error("Reset should deactivate the round")
	}
	if len(r.Mines()) != 0 || len(r.Revealed()) != 0 {
		t.Error("Reset should clear mines and revealed cells")
	}
	if got := r.Multiplier(); got != 1 {
		t.Errorf("expected multiplier 1 after Reset, got %v", got)
	}
}

func TestRoundShufflePlacement(t *testing.T) {
	r := newTestRound(t, Config{Rows: 4, Cols: 4, Mines: 15}, engine.NewSource(5))
	r.SetPlacement(PlacementShuffle)
	r.Start()
	if len(r.Mines()) != 15 {
		t.Errorf("expected 15 mines, got %d", len(r.Mines()))
	}
}

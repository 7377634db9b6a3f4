package games

import (
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/MJE43/stake-mines-go/internal/engine"
)

// RevealResult reports the outcome of a reveal. Success is false when the
// reveal was rejected, in which case the round is unchanged.
type RevealResult struct {
	Success  bool `json:"success"`
	IsMine   bool `json:"isMine"`
	GameOver bool `json:"gameOver"`
}

// Round owns the state of one interactive Mines round. The zero value is not
// usable; create rounds with NewRound. A Round is safe for concurrent use.
type Round struct {
	mu sync.Mutex

	cfg       Config
	src       engine.Source
	placement Placement

	mines    map[int]bool
	revealed map[int]bool
	active   bool
}

// NewRound validates cfg and returns an idle round. Call Start to lay the
// board.
func NewRound(cfg Config, src engine.Source) (*Round, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Round{
		cfg:       cfg,
		src:       src,
		placement: PlacementRejection,
		mines:     make(map[int]bool, cfg.Mines),
		revealed:  make(map[int]bool),
	}, nil
}

// SetPlacement switches the hazard placement algorithm for later Start calls.
func (r *Round) SetPlacement(p Placement) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.placement = p
}

// Config returns the board configuration.
func (r *Round) Config() Config {
	return r.cfg
}

// Start discards any previous state, lays a fresh hazard set and activates
// the round. Credit is not touched.
func (r *Round) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.revealed)
	clear(r.mines)
	for _, idx := range PlaceMines(r.src, r.cfg.Cells(), r.cfg.Mines, r.placement) {
		r.mines[idx] = true
	}
	r.active = true
}

// Reveal uncovers index. Revealing a hazard ends the round as a loss.
func (r *Round) Reveal(index int) RevealResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.revealLocked(index)
}

// RevealRandom reveals a uniformly chosen unrevealed cell. It returns -1 and
// an unsuccessful result when the round is inactive or fully revealed.
func (r *Round) RevealRandom() (int, RevealResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.active {
		return -1, RevealResult{}
	}
	closed := make([]int, 0, r.cfg.Cells()-len(r.revealed))
	for i := 0; i < r.cfg.Cells(); i++ {
		if !r.revealed[i] {
			closed = append(closed, i)
		}
	}
	if len(closed) == 0 {
		return -1, RevealResult{}
	}

	idx := closed[r.src.Intn(len(closed))]
	return idx, r.revealLocked(idx)
}

func (r *Round) revealLocked(index int) RevealResult {
	if !r.active || r.revealed[index] || index < 0 || index >= r.cfg.Cells() {
		return RevealResult{}
	}

	r.revealed[index] = true
	if r.mines[index] {
		r.active = false
		return RevealResult{Success: true, IsMine: true, GameOver: true}
	}
	return RevealResult{Success: true}
}

// Multiplier returns the current engine multiplier. A losing cell is not
// counted as a safe reveal.
func (r *Round) Multiplier() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.multiplierLocked()
}

func (r *Round) multiplierLocked() float64 {
	return EngineMultiplier(r.cfg.Cells(), r.cfg.Mines, r.safeRevealedLocked())
}

func (r *Round) safeRevealedLocked() int {
	n := 0
	for idx := range r.revealed {
		if !r.mines[idx] {
			n++
		}
	}
	return n
}

// Cashout settles an active round and returns bet * multiplier. It returns
// zero without changing state when the round is not active.
func (r *Round) Cashout() decimal.Decimal {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.active {
		return decimal.Zero
	}
	r.active = false
	return EnginePayout(r.cfg.Bet, r.cfg.Cells(), r.cfg.Mines, r.safeRevealedLocked())
}

// Active reports whether the round still accepts reveals.
func (r *Round) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Revealed returns the revealed cells in ascending order.
func (r *Round) Revealed() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return sortedKeys(r.revealed)
}

// SafeRemaining returns how many gems are still covered.
func (r *Round) SafeRemaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cfg.Safe() - r.safeRevealedLocked()
}

// Mines returns the hazard cells in ascending order.
func (r *Round) Mines() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return sortedKeys(r.mines)
}

// Reset clears all round state without laying a new board.
func (r *Round) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = false
	clear(r.revealed)
	clear(r.mines)
}

func sortedKeys(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

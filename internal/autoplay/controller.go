// Package autoplay runs batch sessions: back-to-back Mines rounds resolved
// instantly against a fixed cell selection, with bet sizing between rounds
// and stop conditions.
package autoplay

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MJE43/stake-mines-go/internal/engine"
	"github.com/MJE43/stake-mines-go/internal/games"
)

var (
	// ErrAlreadyRunning is returned by Start while a session is active.
	ErrAlreadyRunning = errors.New("auto-play session already running")
	// ErrNotRunning is returned by Stop when no session is active.
	ErrNotRunning = errors.New("auto-play session not running")
)

// State is the controller's lifecycle state.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StateStopped State = "stopped"
	StateError   State = "error"
)

// EndCause says why a session ended.
type EndCause string

const (
	EndRunsExhausted     EndCause = "runs_exhausted"
	EndStopCondition     EndCause = "stop_condition"
	EndInsufficientFunds EndCause = "insufficient_funds"
	EndCancelled         EndCause = "cancelled"
	EndScriptError       EndCause = "script_error"
)

// Wallet is the credit the controller bets from. *account.Account implements
// it.
type Wallet interface {
	Balance() decimal.Decimal
	Debit(amount decimal.Decimal) error
	Credit(amount decimal.Decimal)
}

// Advancer is implemented by sources that move to a fresh stream per round,
// such as *engine.StreamSource.
type Advancer interface {
	Advance()
}

// RoundEvent describes one settled round.
type RoundEvent struct {
	SessionID  string          `json:"sessionId"`
	Round      int             `json:"round"`
	Win        bool            `json:"win"`
	Multiplier float64         `json:"multiplier"`
	Bet        decimal.Decimal `json:"bet"`
	Winnings   decimal.Decimal `json:"winnings"`
	Balance    decimal.Decimal `json:"balance"`
	Profit     decimal.Decimal `json:"profit"`
	Mines      []int           `json:"mines"`
}

// SessionEnd is emitted exactly once per session.
type SessionEnd struct {
	SessionID string      `json:"sessionId"`
	Cause     EndCause    `json:"cause"`
	Reason    string      `json:"reason,omitempty"`
	Rounds    int         `json:"rounds"`
	Stats     *Statistics `json:"stats"`
}

// EventEmitter receives session progress, typically to push it to a
// presentation layer. Calls are made without controller locks held.
type EventEmitter interface {
	EmitRound(ev RoundEvent)
	EmitSessionEnded(end SessionEnd)
}

// Snapshot is a serializable view of the controller.
type Snapshot struct {
	SessionID       string          `json:"sessionId,omitempty"`
	State           State           `json:"state"`
	Round           int             `json:"round"`
	RemainingRuns   int             `json:"remainingRuns"`
	CurrentBet      decimal.Decimal `json:"currentBet"`
	BaseBet         decimal.Decimal `json:"baseBet"`
	Selected        []int           `json:"selected,omitempty"`
	Stats           *Statistics     `json:"stats,omitempty"`
	History         []RoundEvent    `json:"history,omitempty"`
	End             *SessionEnd     `json:"end,omitempty"`
	Logs            []LogEntry      `json:"logs,omitempty"`
	RoundsPerSecond float64         `json:"roundsPerSecond"`
}

// session is the state of one Start..end run.
type session struct {
	id     uuid.UUID
	cfg    Config
	cancel context.CancelFunc
	done   chan struct{}

	// stopping is set under the controller lock by Stop so that no round
	// begins once a stop has been requested.
	stopping bool

	selected    map[int]bool
	round       int
	remaining   int
	currentBet  decimal.Decimal
	startCredit decimal.Decimal
	stats       *Statistics
	history     *History
	script      *scriptVM
	end         *SessionEnd
	startTime   time.Time
}

// Controller runs at most one batch session at a time.
type Controller struct {
	mu    sync.Mutex
	state State
	cur   *session

	wallet  Wallet
	src     engine.Source
	emitter EventEmitter
	logger  *zap.Logger
}

// NewController creates an idle controller. emitter and logger may be nil.
func NewController(wallet Wallet, src engine.Source, emitter EventEmitter, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		state:   StateIdle,
		wallet:  wallet,
		src:     src,
		emitter: emitter,
		logger:  logger.Named("autoplay"),
	}
}

// Start validates cfg and launches a session in the background. It returns
// the session id.
func (c *Controller) Start(cfg Config) (uuid.UUID, error) {
	if err := cfg.Validate(); err != nil {
		return uuid.Nil, err
	}

	c.mu.Lock()
	if c.state == StateRunning {
		c.mu.Unlock()
		return uuid.Nil, ErrAlreadyRunning
	}
	c.mu.Unlock()

	var vm *scriptVM
	if cfg.Script != "" {
		vm = newScriptVM()
		if err := vm.load(cfg.Script); err != nil {
			return uuid.Nil, err
		}
	}

	cfg.Selected = append([]int(nil), cfg.Selected...)
	selected := make(map[int]bool, len(cfg.Selected))
	for _, idx := range cfg.Selected {
		selected[idx] = true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Re-check: another Start may have won while the script loaded.
	if c.state == StateRunning {
		return uuid.Nil, ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	start := c.wallet.Balance()
	s := &session{
		id:          uuid.New(),
		cfg:         cfg,
		cancel:      cancel,
		done:        make(chan struct{}),
		selected:    selected,
		remaining:   cfg.Runs,
		currentBet:  cfg.Board.Bet,
		startCredit: start,
		stats:       NewStatistics(start),
		history:     NewHistory(100),
		script:      vm,
		startTime:   time.Now(),
	}
	c.cur = s
	c.state = StateRunning

	c.logger.Info("session started",
		zap.String("session", s.id.String()),
		zap.Int("rows", cfg.Board.Rows),
		zap.Int("cols", cfg.Board.Cols),
		zap.Int("mines", cfg.Board.Mines),
		zap.Ints("selected", cfg.Selected),
		zap.Int("runs", cfg.Runs),
		zap.Stringer("bet", cfg.Board.Bet),
	)

	go c.run(ctx, s)
	return s.id, nil
}

// Stop cancels the running session. The session ends with EndCancelled
// before any further credit is moved.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateRunning || c.cur == nil {
		return ErrNotRunning
	}
	c.cur.stopping = true
	c.cur.cancel()
	return nil
}

// Running reports whether a session is active.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateRunning
}

// Done returns a channel closed when the current (or last) session ends. With
// no session it returns a closed channel.
func (c *Controller) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cur == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return c.cur.done
}

// Snapshot returns the controller state and the current or last session.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{State: c.state}
	s := c.cur
	if s == nil {
		return snap
	}

	stats := *s.stats
	snap.SessionID = s.id.String()
	snap.Round = s.round
	snap.RemainingRuns = s.remaining
	snap.CurrentBet = s.currentBet
	snap.BaseBet = s.cfg.Board.Bet
	snap.Selected = append([]int(nil), s.cfg.Selected...)
	snap.Stats = &stats
	snap.History = s.history.Events()
	snap.End = s.end
	if s.script != nil {
		snap.Logs = s.script.Logs()
	}
	if c.state == StateRunning && s.round > 0 {
		if elapsed := time.Since(s.startTime).Seconds(); elapsed > 0 {
			snap.RoundsPerSecond = float64(s.round) / elapsed
		}
	}
	return snap
}

// run is the session loop. It owns s until it returns.
func (c *Controller) run(ctx context.Context, s *session) {
	defer close(s.done)
	defer func() {
		if r := recover(); r != nil {
			c.finish(s, EndScriptError, fmt.Sprintf("session panic: %v", r))
		}
	}()

	cells := s.cfg.Board.Cells()
	mines := s.cfg.Board.Mines
	fair := games.FairMultiplier(cells, mines, len(s.cfg.Selected))

	for {
		// 1. Cancellation check, then place the bet under the same lock so a
		// stop request can never be followed by a debit.
		c.mu.Lock()
		if s.stopping || ctx.Err() != nil {
			c.mu.Unlock()
			c.finish(s, EndCancelled, "stopped by user")
			return
		}
		bet := s.currentBet
		if err := c.wallet.Debit(bet); err != nil {
			c.mu.Unlock()
			c.finish(s, EndInsufficientFunds, err.Error())
			return
		}
		s.round++
		c.mu.Unlock()

		// 2. Fresh board.
		layout := games.PlaceMines(c.src, cells, mines, s.cfg.Placement)
		if adv, ok := c.src.(Advancer); ok {
			adv.Advance()
		}

		// 3. Win iff no selected cell holds a mine.
		win := true
		for _, pos := range layout {
			if s.selected[pos] {
				win = false
				break
			}
		}

		// 4. Pay out at fair odds.
		multi := 0.0
		winnings := decimal.Zero
		if win {
			multi = fair
			winnings = games.FairPayout(bet, cells, mines, len(s.cfg.Selected))
			c.wallet.Credit(winnings)
		}

		balance := c.wallet.Balance()
		profit := balance.Sub(s.startCredit)
		ev := RoundEvent{
			SessionID:  s.id.String(),
			Round:      s.round,
			Win:        win,
			Multiplier: multi,
			Bet:        bet,
			Winnings:   winnings,
			Balance:    balance,
			Profit:     profit,
			Mines:      sortInts(layout),
		}

		c.mu.Lock()
		s.stats.Record(bet, winnings, win)
		s.history.Push(ev)
		statsCopy := *s.stats
		c.mu.Unlock()

		if c.emitter != nil {
			c.emitter.EmitRound(ev)
		}

		// 5. Size the next bet.
		next, scriptStop, err := c.nextBet(s, win, multi, bet, balance, &statsCopy)
		if err != nil {
			c.finish(s, EndScriptError, err.Error())
			return
		}
		c.mu.Lock()
		s.currentBet = next
		c.mu.Unlock()

		// 6. Stop conditions.
		if scriptStop {
			c.finish(s, EndStopCondition, "script requested stop")
			return
		}
		if reason, hit := stopConditionHit(s.cfg, profit); hit {
			c.finish(s, EndStopCondition, reason)
			return
		}

		// 7. Run budget.
		if s.cfg.Runs > 0 {
			c.mu.Lock()
			s.remaining--
			left := s.remaining
			c.mu.Unlock()
			if left <= 0 {
				c.finish(s, EndRunsExhausted, fmt.Sprintf("completed %d rounds", s.cfg.Runs))
				return
			}
		}

		// 8. Display pause. Cancellation is re-checked at the top of the loop.
		if s.cfg.Pause > 0 {
			timer := time.NewTimer(s.cfg.Pause)
			select {
			case <-ctx.Done():
				timer.Stop()
			case <-timer.C:
			}
		}
	}
}

func (c *Controller) nextBet(s *session, win bool, multi float64, bet, balance decimal.Decimal, stats *Statistics) (decimal.Decimal, bool, error) {
	base := s.cfg.Board.Bet
	if s.script == nil {
		strategy := s.cfg.OnLoss
		if win {
			strategy = s.cfg.OnWin
		}
		return strategy.Next(bet, base), false, nil
	}

	next, stop, err := s.script.dobet(scriptState{
		Win:        win,
		Multiplier: multi,
		NextBet:    bet,
		BaseBet:    base,
		Balance:    balance,
		Stats:      stats,
	})
	if err != nil {
		return decimal.Zero, false, err
	}
	return next, stop, nil
}

func stopConditionHit(cfg Config, profit decimal.Decimal) (string, bool) {
	if cfg.StopOnProfit.Enabled && profit.GreaterThanOrEqual(cfg.StopOnProfit.Amount) {
		return fmt.Sprintf("profit %s reached %s", profit, cfg.StopOnProfit.Amount), true
	}
	if cfg.StopOnLoss.Enabled && profit.LessThanOrEqual(cfg.StopOnLoss.Amount.Neg()) {
		return fmt.Sprintf("loss %s reached %s", profit.Neg(), cfg.StopOnLoss.Amount), true
	}
	return "", false
}

func (c *Controller) finish(s *session, cause EndCause, reason string) {
	c.mu.Lock()
	if s.end != nil {
		c.mu.Unlock()
		return
	}
	stats := *s.stats
	end := SessionEnd{
		SessionID: s.id.String(),
		Cause:     cause,
		Reason:    reason,
		Rounds:    s.round,
		Stats:     &stats,
	}
	s.end = &end
	s.cancel()
	if c.cur == s {
		c.state = StateStopped
		if cause == EndScriptError {
			c.state = StateError
		}
	}
	c.mu.Unlock()

	c.logger.Info("session ended",
		zap.String("session", end.SessionID),
		zap.String("cause", string(cause)),
		zap.String("reason", reason),
		zap.Int("rounds", end.Rounds),
		zap.Stringer("profit", stats.Profit),
	)
	if c.emitter != nil {
		c.emitter.EmitSessionEnded(end)
	}
}

func sortInts(in []int) []int {
	out := slices.Clone(in)
	slices.Sort(out)
	return out
}

// Package table is the single-seat host that a presentation layer talks to.
// It owns the player's account and keeps interactive rounds and batch
// sessions mutually exclusive.
package table

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MJE43/stake-mines-go/internal/account"
	"github.com/MJE43/stake-mines-go/internal/autopick"
	"github.com/MJE43/stake-mines-go/internal/autoplay"
	"github.com/MJE43/stake-mines-go/internal/config"
	"github.com/MJE43/stake-mines-go/internal/engine"
	"github.com/MJE43/stake-mines-go/internal/games"
)

var (
	ErrRoundActive   = errors.New("a round is in progress")
	ErrNoRound       = errors.New("no round has been started")
	ErrModeBusy      = errors.New("an auto-play session is running")
	ErrBetNotAllowed = errors.New("bet amount is not offered")
)

// Options are the table limits, usually taken from config. Rows and Cols
// fill in boards requested without dimensions.
type Options struct {
	Rows           int
	Cols           int
	MinMines       int
	MaxMines       int
	Bets           []decimal.Decimal
	MaxRuns        int
	PickInterval   time.Duration
	ResultDuration time.Duration
}

// OptionsFromConfig maps the loaded configuration to table options.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		Rows:           cfg.Board.Rows,
		Cols:           cfg.Board.Cols,
		MinMines:       cfg.Board.MinMines,
		MaxMines:       cfg.Board.MaxMines,
		Bets:           cfg.Bets(),
		MaxRuns:        cfg.AutoMode.MaxRuns,
		PickInterval:   cfg.AutoMode.PickInterval(),
		ResultDuration: cfg.AutoMode.ResultDuration(),
	}
}

// RoundView is what a renderer needs to draw the board.
type RoundView struct {
	Started       bool            `json:"started"`
	Active        bool            `json:"active"`
	Rows          int             `json:"rows"`
	Cols          int             `json:"cols"`
	Mines         int             `json:"mines"`
	Bet           decimal.Decimal `json:"bet"`
	Revealed      []int           `json:"revealed"`
	MinePositions []int           `json:"minePositions,omitempty"`
	Multiplier    float64         `json:"multiplier"`
	SafeRemaining int             `json:"safeRemaining"`
	AutoPick      bool            `json:"autoPick"`
	Balance       decimal.Decimal `json:"balance"`
}

// Table hosts one player.
type Table struct {
	mu sync.Mutex

	opts     Options
	account  *account.Account
	src      engine.Source
	round    *games.Round
	pacer    *autopick.Pacer
	autoplay *autoplay.Controller
	logger   *zap.Logger
}

// New creates a table. emitter receives batch session events and may be nil.
func New(opts Options, acc *account.Account, src engine.Source, emitter autoplay.EventEmitter, logger *zap.Logger) *Table {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("table")
	return &Table{
		opts:     opts,
		account:  acc,
		src:      src,
		pacer:    autopick.NewPacer(opts.PickInterval, logger),
		autoplay: autoplay.NewController(acc, src, &logEmitter{logger: logger, next: emitter}, logger),
		logger:   logger,
	}
}

// Balance returns the player's credit.
func (t *Table) Balance() decimal.Decimal {
	return t.account.Balance()
}

// StartRound debits the bet and lays a fresh board.
func (t *Table) StartRound(cfg games.Config) (RoundView, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.autoplay.Running() {
		return RoundView{}, ErrModeBusy
	}
	if t.round != nil && t.round.Active() {
		return RoundView{}, ErrRoundActive
	}
	cfg = t.withDefaults(cfg)
	if err := t.checkBoard(cfg); err != nil {
		return RoundView{}, err
	}
	if !t.betOffered(cfg.Bet) {
		return RoundView{}, fmt.Errorf("%w: %s", ErrBetNotAllowed, cfg.Bet)
	}

	round, err := games.NewRound(cfg, t.src)
	if err != nil {
		return RoundView{}, err
	}
	if err := t.account.Debit(cfg.Bet); err != nil {
		return RoundView{}, err
	}
	round.Start()
	t.round = round

	t.logger.Info("round started",
		zap.Int("rows", cfg.Rows),
		zap.Int("cols", cfg.Cols),
		zap.Int("mines", cfg.Mines),
		zap.Stringer("bet", cfg.Bet),
	)
	return t.viewLocked(), nil
}

// Reveal uncovers index on the current round. A rejected reveal returns an
// unsuccessful result and no error.
func (t *Table) Reveal(index int) (games.RevealResult, RoundView, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.round == nil {
		return games.RevealResult{}, RoundView{}, ErrNoRound
	}
	res := t.round.Reveal(index)
	t.afterRevealLocked(index, res)
	return res, t.viewLocked(), nil
}

// PickRandom reveals a random closed cell, as the auto-pick pacer does.
func (t *Table) PickRandom() (int, games.RevealResult, RoundView, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.round == nil {
		return -1, games.RevealResult{}, RoundView{}, ErrNoRound
	}
	idx, res := t.round.RevealRandom()
	t.afterRevealLocked(idx, res)
	return idx, res, t.viewLocked(), nil
}

func (t *Table) afterRevealLocked(index int, res games.RevealResult) {
	if !res.Success {
		return
	}
	switch {
	case res.GameOver:
		t.pacer.Stop()
		t.logger.Info("round lost", zap.Int("cell", index), zap.Stringer("bet", t.round.Config().Bet))
	case t.round.SafeRemaining() == 0:
		t.pacer.Stop()
	}
}

// Cashout settles the current round and credits the payout. Cashing out a
// settled round pays nothing.
func (t *Table) Cashout() (decimal.Decimal, RoundView, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.round == nil {
		return decimal.Zero, RoundView{}, ErrNoRound
	}
	multi := t.round.Multiplier()
	payout := t.round.Cashout()
	t.pacer.Stop()
	if payout.IsPositive() {
		t.account.Credit(payout)
		t.logger.Info("round cashed out", zap.Float64("multiplier", multi), zap.Stringer("payout", payout))
	}
	return payout, t.viewLocked(), nil
}

// StartAutoPick starts revealing random cells on the pacer's cadence. The
// pacer stops on its own once the round ends.
func (t *Table) StartAutoPick() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.autoplay.Running() {
		return ErrModeBusy
	}
	if t.round == nil || !t.round.Active() {
		return ErrNoRound
	}
	t.pacer.Start(t.autoPickStep)
	return nil
}

// StopAutoPick stops the pacer. It reports whether it was running.
func (t *Table) StopAutoPick() bool {
	return t.pacer.Stop()
}

func (t *Table) autoPickStep() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.round == nil || !t.round.Active() {
		t.pacer.Stop()
		return
	}
	idx, res := t.round.RevealRandom()
	t.afterRevealLocked(idx, res)
}

// StartAutoPlay launches a batch session. Interactive play is locked out
// until it ends.
func (t *Table) StartAutoPlay(cfg autoplay.Config) (uuid.UUID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.round != nil && t.round.Active() {
		return uuid.Nil, ErrRoundActive
	}
	cfg.Board = t.withDefaults(cfg.Board)
	if err := t.checkBoard(cfg.Board); err != nil {
		return uuid.Nil, err
	}
	if !t.betOffered(cfg.Board.Bet) {
		return uuid.Nil, fmt.Errorf("%w: %s", ErrBetNotAllowed, cfg.Board.Bet)
	}
	if t.opts.MaxRuns > 0 && cfg.Runs > t.opts.MaxRuns {
		return uuid.Nil, fmt.Errorf("runs must be at most %d, got %d", t.opts.MaxRuns, cfg.Runs)
	}

	t.pacer.Stop()
	return t.autoplay.Start(cfg)
}

// StopAutoPlay cancels the running batch session.
func (t *Table) StopAutoPlay() error {
	return t.autoplay.Stop()
}

// AutoPlay returns the batch controller snapshot.
func (t *Table) AutoPlay() autoplay.Snapshot {
	return t.autoplay.Snapshot()
}

// AutoPlayDone returns a channel closed when the current session ends.
func (t *Table) AutoPlayDone() <-chan struct{} {
	return t.autoplay.Done()
}

// Round returns the current board view.
func (t *Table) Round() RoundView {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.viewLocked()
}

// Options returns the table limits.
func (t *Table) Options() Options {
	return t.opts
}

// Close stops the pacer and any batch session.
func (t *Table) Close() {
	t.pacer.Stop()
	if err := t.autoplay.Stop(); err == nil {
		<-t.autoplay.Done()
	}
}

func (t *Table) withDefaults(cfg games.Config) games.Config {
	if cfg.Rows == 0 && cfg.Cols == 0 {
		cfg.Rows, cfg.Cols = t.opts.Rows, t.opts.Cols
	}
	return cfg
}

func (t *Table) checkBoard(cfg games.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	maxMines := min(t.opts.MaxMines, cfg.Cells()-1)
	if t.opts.MaxMines <= 0 {
		maxMines = cfg.Cells() - 1
	}
	if cfg.Mines < t.opts.MinMines || cfg.Mines > maxMines {
		return fmt.Errorf("%w: mines must be between %d and %d, got %d", games.ErrInvalidConfig, t.opts.MinMines, maxMines, cfg.Mines)
	}
	return nil
}

func (t *Table) betOffered(bet decimal.Decimal) bool {
	if len(t.opts.Bets) == 0 {
		return true
	}
	for _, b := range t.opts.Bets {
		if b.Equal(bet) {
			return true
		}
	}
	return false
}

func (t *Table) viewLocked() RoundView {
	view := RoundView{
		Multiplier: 1,
		AutoPick:   t.pacer.Running(),
		Balance:    t.account.Balance(),
	}
	if t.round == nil {
		return view
	}

	cfg := t.round.Config()
	view.Started = true
	view.Active = t.round.Active()
	view.Rows = cfg.Rows
	view.Cols = cfg.Cols
	view.Mines = cfg.Mines
	view.Bet = cfg.Bet
	view.Revealed = t.round.Revealed()
	view.Multiplier = t.round.Multiplier()
	view.SafeRemaining = t.round.SafeRemaining()
	if !view.Active {
		view.MinePositions = t.round.Mines()
	}
	return view
}

// logEmitter logs batch rounds and forwards events downstream.
type logEmitter struct {
	logger *zap.Logger
	next   autoplay.EventEmitter
}

func (e *logEmitter) EmitRound(ev autoplay.RoundEvent) {
	e.logger.Debug("auto-play round",
		zap.String("session", ev.SessionID),
		zap.Int("round", ev.Round),
		zap.Bool("win", ev.Win),
		zap.Float64("multiplier", ev.Multiplier),
		zap.Stringer("balance", ev.Balance),
	)
	if e.next != nil {
		e.next.EmitRound(ev)
	}
}

func (e *logEmitter) EmitSessionEnded(end autoplay.SessionEnd) {
	if e.next != nil {
		e.next.EmitSessionEnded(end)
	}
}

package autoplay

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MJE43/stake-mines-go/internal/games"
)

// ErrNoSelection is returned when a session is started without picked cells.
var ErrNoSelection = errors.New("at least one cell must be selected")

// StopCondition ends a session once session profit crosses Amount.
type StopCondition struct {
	Enabled bool            `json:"enabled"`
	Amount  decimal.Decimal `json:"amount"`
}

// Config is everything a batch session needs. It is copied at Start and never
// changes while the session runs.
type Config struct {
	Board    games.Config `json:"board"`
	Selected []int        `json:"selected"`

	// Runs is the number of rounds to play; zero runs until another
	// condition ends the session.
	Runs int `json:"runs"`

	OnWin  Strategy `json:"onWin"`
	OnLoss Strategy `json:"onLoss"`

	StopOnProfit StopCondition `json:"stopOnProfit"`
	StopOnLoss   StopCondition `json:"stopOnLoss"`

	Placement games.Placement `json:"placement,omitempty"`

	// Pause is the display interval between rounds.
	Pause time.Duration `json:"pause"`

	// Script, when set, replaces OnWin/OnLoss with a dobet() function.
	Script string `json:"script,omitempty"`
}

// Validate checks the board, the selection and the strategy parameters.
func (c Config) Validate() error {
	if err := c.Board.Validate(); err != nil {
		return err
	}
	if len(c.Selected) == 0 {
		return ErrNoSelection
	}
	if err := c.Board.ValidateSelection(c.Selected); err != nil {
		return err
	}
	if c.Runs < 0 {
		return fmt.Errorf("runs must not be negative, got %d", c.Runs)
	}
	if err := c.OnWin.Validate(); err != nil {
		return fmt.Errorf("on win: %w", err)
	}
	if err := c.OnLoss.Validate(); err != nil {
		return fmt.Errorf("on loss: %w", err)
	}
	if c.StopOnProfit.Amount.IsNegative() || c.StopOnLoss.Amount.IsNegative() {
		return fmt.Errorf("stop thresholds must not be negative")
	}
	if c.Pause < 0 {
		return fmt.Errorf("pause must not be negative, got %s", c.Pause)
	}
	if _, err := games.ParsePlacement(string(c.Placement)); err != nil {
		return err
	}
	return nil
}

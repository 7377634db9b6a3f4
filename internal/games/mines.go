// Package games holds the Mines round rules: board configuration, hazard
// placement, the interactive round engine and the payout multipliers.
package games

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidConfig is returned for boards that cannot be played.
	ErrInvalidConfig = errors.New("invalid board configuration")
	// ErrInvalidCells is returned for cell selections that do not fit the board.
	ErrInvalidCells = errors.New("invalid cell selection")
)

// Config describes one board. It is fixed for the lifetime of a round.
type Config struct {
	Rows  int             `json:"rows" yaml:"rows"`
	Cols  int             `json:"cols" yaml:"cols"`
	Mines int             `json:"mines" yaml:"mines"`
	Bet   decimal.Decimal `json:"bet" yaml:"-"`
}

// Cells returns the number of cells on the board.
func (c Config) Cells() int {
	return c.Rows * c.Cols
}

// Safe returns the number of gem cells on the board.
func (c Config) Safe() int {
	return c.Cells() - c.Mines
}

// Validate rejects boards with no cells, boards without a safe cell and
// negative bets. A board that passes always terminates placement.
func (c Config) Validate() error {
	if c.Rows <= 0 || c.Cols <= 0 {
		return fmt.Errorf("%w: rows and cols must be positive, got %dx%d", ErrInvalidConfig, c.Rows, c.Cols)
	}
	if c.Mines < 1 || c.Mines >= c.Cells() {
		return fmt.Errorf("%w: mines must be between 1 and %d, got %d", ErrInvalidConfig, c.Cells()-1, c.Mines)
	}
	if c.Bet.IsNegative() {
		return fmt.Errorf("%w: bet must not be negative, got %s", ErrInvalidConfig, c.Bet)
	}
	return nil
}

// ValidateSelection checks that every index is on the board and that no index
// repeats. An empty selection is valid here; callers that need picks check
// the length themselves.
func (c Config) ValidateSelection(cells []int) error {
	seen := make(map[int]bool, len(cells))
	for _, idx := range cells {
		if idx < 0 || idx >= c.Cells() {
			return fmt.Errorf("%w: cell %d outside [0, %d)", ErrInvalidCells, idx, c.Cells())
		}
		if seen[idx] {
			return fmt.Errorf("%w: cell %d selected twice", ErrInvalidCells, idx)
		}
		seen[idx] = true
	}
	return nil
}

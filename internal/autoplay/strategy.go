package autoplay

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// StrategyKind names a bet-sizing rule applied after a round.
type StrategyKind string

const (
	// StrategyReset returns to the base bet.
	StrategyReset StrategyKind = "reset"
	// StrategyIncrease adds Percent of the base bet.
	StrategyIncrease StrategyKind = "increase"
	// StrategyDecrease subtracts Percent of the base bet, never going below zero.
	StrategyDecrease StrategyKind = "decrease"
	// StrategyNone keeps the current bet.
	StrategyNone StrategyKind = "none"
)

var hundred = decimal.NewFromInt(100)

// Strategy adjusts the bet after a win or a loss. Percentages are taken of
// the session's base bet, not of the current bet.
type Strategy struct {
	Kind    StrategyKind    `json:"kind"`
	Percent decimal.Decimal `json:"percent"`
}

// Validate rejects unknown kinds and negative percentages. The empty kind is
// treated as StrategyNone.
func (s Strategy) Validate() error {
	switch s.Kind {
	case "", StrategyReset, StrategyIncrease, StrategyDecrease, StrategyNone:
	default:
		return fmt.Errorf("unknown strategy %q", s.Kind)
	}
	if s.Percent.IsNegative() {
		return fmt.Errorf("strategy percent must not be negative, got %s", s.Percent)
	}
	return nil
}

// Next returns the bet for the following round. The result is never negative.
func (s Strategy) Next(current, base decimal.Decimal) decimal.Decimal {
	step := base.Mul(s.Percent).Div(hundred)

	next := current
	switch s.Kind {
	case StrategyReset:
		next = base
	case StrategyIncrease:
		next = current.Add(step)
	case StrategyDecrease:
		next = current.Sub(step)
	}

	if next.IsNegative() {
		return decimal.Zero
	}
	return next
}

package games

import "github.com/shopspring/decimal"

// PayoutScale is the number of decimal places kept when a payout is credited.
const PayoutScale int32 = 8

// EngineMultiplier is the curve used by the interactive round:
// 1 + (revealed/safe) * mines, and exactly 1 before the first reveal.
// It grows linearly with each safe reveal and is not derived from the odds.
func EngineMultiplier(cells, mines, revealed int) float64 {
	if revealed == 0 {
		return 1
	}
	safe := cells - mines
	return 1 + (float64(revealed)/float64(safe))*float64(mines)
}

// FairMultiplier is the inverse of the probability that picks cells drawn
// without replacement from a board of cells squares holding mines hazards
// are all safe:
//
//	1 / prod_{j=0}^{picks-1} (cells-mines-j)/(cells-j)
//
// It returns 0 when the picks cannot all be safe.
func FairMultiplier(cells, mines, picks int) float64 {
	if picks <= 0 {
		return 1
	}
	if picks > cells-mines {
		return 0
	}

	multi := 1.0
	for j := 0; j < picks; j++ {
		multi *= float64(cells-j) / float64(cells-mines-j)
	}
	return multi
}

// EnginePayout is bet * EngineMultiplier computed in decimal as
// bet * (safe + revealed*mines) / safe, rounded to PayoutScale places.
func EnginePayout(bet decimal.Decimal, cells, mines, revealed int) decimal.Decimal {
	if revealed == 0 {
		return bet
	}
	safe := int64(cells - mines)
	num := decimal.NewFromInt(safe + int64(revealed)*int64(mines))
	return bet.Mul(num).DivRound(decimal.NewFromInt(safe), PayoutScale)
}

// FairPayout is bet * FairMultiplier computed in decimal as
// bet * prod(cells-j) / prod(cells-mines-j), rounded to PayoutScale places.
// It returns zero when the picks cannot all be safe.
func FairPayout(bet decimal.Decimal, cells, mines, picks int) decimal.Decimal {
	if picks <= 0 {
		return bet
	}
	if picks > cells-mines {
		return decimal.Zero
	}

	num, den := decimal.NewFromInt(1), decimal.NewFromInt(1)
	for j := 0; j < picks; j++ {
		num = num.Mul(decimal.NewFromInt(int64(cells - j)))
		den = den.Mul(decimal.NewFromInt(int64(cells - mines - j)))
	}
	return bet.Mul(num).DivRound(den, PayoutScale)
}

// MultiplierStep is one row of a multiplier table.
type MultiplierStep struct {
	Picks      int     `json:"picks"`
	Fair       float64 `json:"fair"`
	Engine     float64 `json:"engine"`
	WinPercent float64 `json:"winPercent"`
}

// MultiplierTable lists both multiplier curves for every pick count from 1 to
// the number of safe cells.
func MultiplierTable(cfg Config) []MultiplierStep {
	steps := make([]MultiplierStep, 0, cfg.Safe())
	for k := 1; k <= cfg.Safe(); k++ {
		fair := FairMultiplier(cfg.Cells(), cfg.Mines, k)
		steps = append(steps, MultiplierStep{
			Picks:      k,
			Fair:       fair,
			Engine:     EngineMultiplier(cfg.Cells(), cfg.Mines, k),
			WinPercent: 100 / fair,
		})
	}
	return steps
}

package autoplay

import "github.com/shopspring/decimal"

// Statistics tracks session-level results.
type Statistics struct {
	Rounds   int             `json:"rounds"`
	Wins     int             `json:"wins"`
	Losses   int             `json:"losses"`
	Wagered  decimal.Decimal `json:"wagered"`
	Profit   decimal.Decimal `json:"profit"`
	StartBal decimal.Decimal `json:"startBal"`

	WinStreak  int `json:"winStreak"`
	LoseStreak int `json:"loseStreak"`
	// Positive = win streak, negative = lose streak.
	CurrentStreak int `json:"currentStreak"`

	HighestStreak int             `json:"highestStreak"`
	LowestStreak  int             `json:"lowestStreak"`
	HighestBet    decimal.Decimal `json:"highestBet"`
	HighestProfit decimal.Decimal `json:"highestProfit"`
	LowestProfit  decimal.Decimal `json:"lowestProfit"`

	CurrentProfit decimal.Decimal `json:"currentProfit"`
	PreviousBet   decimal.Decimal `json:"previousBet"`
}

// NewStatistics creates empty statistics anchored at startBalance.
func NewStatistics(startBalance decimal.Decimal) *Statistics {
	return &Statistics{StartBal: startBalance}
}

// Record folds one settled round into the statistics.
func (s *Statistics) Record(bet, winnings decimal.Decimal, win bool) {
	s.Rounds++

	profit := winnings.Sub(bet)
	s.CurrentProfit = profit
	s.Profit = s.Profit.Add(profit)
	s.Wagered = s.Wagered.Add(bet)
	s.PreviousBet = bet

	if win {
		s.Wins++
		s.WinStreak++
		s.LoseStreak = 0
		s.CurrentStreak = s.WinStreak
	} else {
		s.Losses++
		s.LoseStreak++
		s.WinStreak = 0
		s.CurrentStreak = -s.LoseStreak
	}

	if bet.GreaterThan(s.HighestBet) {
		s.HighestBet = bet
	}
	if s.Profit.GreaterThan(s.HighestProfit) {
		s.HighestProfit = s.Profit
	}
	if s.Profit.LessThan(s.LowestProfit) {
		s.LowestProfit = s.Profit
	}
	if s.CurrentStreak > s.HighestStreak {
		s.HighestStreak = s.CurrentStreak
	}
	if s.CurrentStreak < s.LowestStreak {
		s.LowestStreak = s.CurrentStreak
	}
}

// WinRate returns wins as a percentage of rounds.
func (s *Statistics) WinRate() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Rounds) * 100
}

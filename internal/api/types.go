package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MJE43/stake-mines-go/internal/autoplay"
	"github.com/MJE43/stake-mines-go/internal/games"
	"github.com/MJE43/stake-mines-go/internal/table"
)

// VersionInfo contains engine version information
type VersionInfo struct {
	EngineVersion string `json:"engine_version"`
	GitCommit     string `json:"git_commit,omitempty"`
	BuildTime     string `json:"build_time,omitempty"`
}

// AccountResponse reports the player's credit.
type AccountResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

// StartRoundRequest opens a manual round.
type StartRoundRequest struct {
	Rows  int             `json:"rows"`
	Cols  int             `json:"cols"`
	Mines int             `json:"mines"`
	Bet   decimal.Decimal `json:"bet"`
}

func (r StartRoundRequest) board() games.Config {
	return games.Config{Rows: r.Rows, Cols: r.Cols, Mines: r.Mines, Bet: r.Bet}
}

// RevealRequest uncovers one cell. Index is required.
type RevealRequest struct {
	Index *int `json:"index"`
}

// RevealResponse is the outcome of a reveal or random pick.
type RevealResponse struct {
	Index  int                `json:"index"`
	Result games.RevealResult `json:"result"`
	Round  table.RoundView    `json:"round"`
}

// CashoutResponse is the settled payout.
type CashoutResponse struct {
	Payout decimal.Decimal `json:"payout"`
	Round  table.RoundView `json:"round"`
}

// AutoPickResponse reports the pacer after a start or stop.
type AutoPickResponse struct {
	Running  bool  `json:"running"`
	Interval int64 `json:"intervalMs"`
}

// AutoPlayRequest configures a batch session. PauseMs defaults to the
// configured result duration.
type AutoPlayRequest struct {
	Rows         int                    `json:"rows"`
	Cols         int                    `json:"cols"`
	Mines        int                    `json:"mines"`
	Bet          decimal.Decimal        `json:"bet"`
	Selected     []int                  `json:"selected"`
	Runs         int                    `json:"runs"`
	OnWin        autoplay.Strategy      `json:"onWin"`
	OnLoss       autoplay.Strategy      `json:"onLoss"`
	StopOnProfit autoplay.StopCondition `json:"stopOnProfit"`
	StopOnLoss   autoplay.StopCondition `json:"stopOnLoss"`
	Placement    games.Placement        `json:"placement,omitempty"`
	PauseMs      *int                   `json:"pauseMs,omitempty"`
	Script       string                 `json:"script,omitempty"`
}

func (r AutoPlayRequest) config(defaultPause time.Duration) autoplay.Config {
	pause := defaultPause
	if r.PauseMs != nil {
		pause = time.Duration(*r.PauseMs) * time.Millisecond
	}
	return autoplay.Config{
		Board:        games.Config{Rows: r.Rows, Cols: r.Cols, Mines: r.Mines, Bet: r.Bet},
		Selected:     r.Selected,
		Runs:         r.Runs,
		OnWin:        r.OnWin,
		OnLoss:       r.OnLoss,
		StopOnProfit: r.StopOnProfit,
		StopOnLoss:   r.StopOnLoss,
		Placement:    r.Placement,
		Pause:        pause,
		Script:       r.Script,
	}
}

// AutoPlayStartResponse carries the new session id.
type AutoPlayStartResponse struct {
	SessionID string `json:"sessionId"`
}

// MultipliersResponse is the payout curve of one board.
type MultipliersResponse struct {
	Rows  int                    `json:"rows"`
	Cols  int                    `json:"cols"`
	Mines int                    `json:"mines"`
	Steps []games.MultiplierStep `json:"steps"`
}

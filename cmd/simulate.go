package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/MJE43/stake-mines-go/internal/account"
	"github.com/MJE43/stake-mines-go/internal/autoplay"
	"github.com/MJE43/stake-mines-go/internal/engine"
	"github.com/MJE43/stake-mines-go/internal/games"
)

type simulateOptions struct {
	rows, cols, mines int
	bet               float64
	credit            float64
	cells             []int
	runs              int

	onWin, onLoss               autoplay.StrategyKind
	onWinPercent, onLossPercent float64
	stopProfit, stopLoss        float64

	seed       uint64
	key, salt  string
	nonce      uint64
	scriptFile string
	pause      time.Duration
	placement  string
	quiet      bool
}

var simOpts simulateOptions

// strategyValue is a pflag.Value restricted to the known strategy kinds.
type strategyValue autoplay.StrategyKind

func newStrategyValue(val autoplay.StrategyKind, p *autoplay.StrategyKind) *strategyValue {
	*p = val
	return (*strategyValue)(p)
}

func (v *strategyValue) String() string { return string(*v) }

func (v *strategyValue) Set(value string) error {
	s := autoplay.Strategy{Kind: autoplay.StrategyKind(value)}
	if err := s.Validate(); err != nil {
		return err
	}
	*v = strategyValue(value)
	return nil
}

func (v *strategyValue) Type() string { return "strategy" }

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a headless auto-play session and print a summary",
	Long: `simulate plays back-to-back rounds against a fixed cell selection,
adjusting the bet after each win or loss, until the run budget or a stop
condition ends the session. --runs 0 removes the budget and is only accepted
together with --stop-profit, --stop-loss or --script.

Use --seed for a reproducible session, or --key/--salt to derive every round
from an HMAC-SHA256 stream (one nonce per round).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := simOpts.config()
		if err != nil {
			return err
		}
		appCfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := newLogger(appCfg)
		if err != nil {
			return err
		}
		defer logger.Sync()

		credit := appCfg.Credit()
		if cmd.Flags().Changed("credit") {
			credit = decimal.NewFromFloat(simOpts.credit)
		}

		out := cmd.OutOrStdout()
		ctl := autoplay.NewController(account.New(credit), simOpts.source(), &printEmitter{w: out, quiet: simOpts.quiet}, logger)
		if _, err := ctl.Start(cfg); err != nil {
			return err
		}

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt)
		defer signal.Stop(sig)

		select {
		case <-ctl.Done():
		case <-sig:
			_ = ctl.Stop()
			<-ctl.Done()
		}

		printSummary(out, ctl.Snapshot())
		return nil
	},
}

func (o simulateOptions) config() (autoplay.Config, error) {
	if o.runs < 0 {
		return autoplay.Config{}, fmt.Errorf("--runs must not be negative, got %d", o.runs)
	}
	// An open-ended session needs something that can end it.
	if o.runs == 0 && o.stopProfit <= 0 && o.stopLoss <= 0 && o.scriptFile == "" {
		return autoplay.Config{}, fmt.Errorf("--runs 0 needs --stop-profit, --stop-loss or --script")
	}
	placement, err := games.ParsePlacement(o.placement)
	if err != nil {
		return autoplay.Config{}, err
	}

	cfg := autoplay.Config{
		Board: games.Config{
			Rows:  o.rows,
			Cols:  o.cols,
			Mines: o.mines,
			Bet:   decimal.NewFromFloat(o.bet),
		},
		Selected:     o.cells,
		Runs:         o.runs,
		OnWin:        autoplay.Strategy{Kind: o.onWin, Percent: decimal.NewFromFloat(o.onWinPercent)},
		OnLoss:       autoplay.Strategy{Kind: o.onLoss, Percent: decimal.NewFromFloat(o.onLossPercent)},
		StopOnProfit: autoplay.StopCondition{Enabled: o.stopProfit > 0, Amount: decimal.NewFromFloat(o.stopProfit)},
		StopOnLoss:   autoplay.StopCondition{Enabled: o.stopLoss > 0, Amount: decimal.NewFromFloat(o.stopLoss)},
		Placement:    placement,
		Pause:        o.pause,
	}
	if o.scriptFile != "" {
		src, err := os.ReadFile(o.scriptFile)
		if err != nil {
			return autoplay.Config{}, fmt.Errorf("read script: %w", err)
		}
		cfg.Script = string(src)
	}
	return cfg, nil
}

func (o simulateOptions) source() engine.Source {
	if o.key != "" {
		return engine.NewStreamSource(o.key, o.salt, o.nonce)
	}
	return engine.NewSource(o.seed)
}

// printEmitter writes one line per settled round.
type printEmitter struct {
	w     io.Writer
	quiet bool
}

func (p *printEmitter) EmitRound(ev autoplay.RoundEvent) {
	if p.quiet {
		return
	}
	result := "loss"
	if ev.Win {
		result = "win"
	}
	fmt.Fprintf(p.w, "#%-5d %-4s bet=%s x%.4f won=%s balance=%s mines=%v\n",
		ev.Round, result, ev.Bet, ev.Multiplier, ev.Winnings, ev.Balance, ev.Mines)
}

func (p *printEmitter) EmitSessionEnded(end autoplay.SessionEnd) {}

func printSummary(w io.Writer, snap autoplay.Snapshot) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "=== Session %s ===\n", snap.SessionID)
	if snap.End != nil {
		fmt.Fprintf(w, "ended: %s", snap.End.Cause)
		if snap.End.Reason != "" {
			fmt.Fprintf(w, " (%s)", snap.End.Reason)
		}
		fmt.Fprintln(w)
	}
	if snap.Stats == nil {
		return
	}
	st := snap.Stats
	fmt.Fprintf(w, "rounds=%d wins=%d losses=%d win_rate=%.2f%%\n", st.Rounds, st.Wins, st.Losses, st.WinRate())
	fmt.Fprintf(w, "wagered=%s profit=%s highest_bet=%s\n", st.Wagered, st.Profit, st.HighestBet)
	fmt.Fprintf(w, "highest_profit=%s lowest_profit=%s\n", st.HighestProfit, st.LowestProfit)
	fmt.Fprintf(w, "best_streak=%d worst_streak=%d\n", st.HighestStreak, st.LowestStreak)
	for _, l := range snap.Logs {
		fmt.Fprintf(w, "script: %s\n", l.Message)
	}
}

func init() {
	f := simulateCmd.Flags()
	f.IntVar(&simOpts.rows, "rows", 5, "Board rows")
	f.IntVar(&simOpts.cols, "cols", 5, "Board columns")
	f.IntVarP(&simOpts.mines, "mines", "m", 3, "Number of mines")
	f.Float64Var(&simOpts.bet, "bet", 10, "Base bet")
	f.Float64Var(&simOpts.credit, "credit", 0, "Starting credit (defaults to starting_credit)")
	f.IntSliceVar(&simOpts.cells, "cells", []int{0}, "Cells picked every round")
	f.IntVarP(&simOpts.runs, "runs", "n", 100, "Number of rounds; 0 plays until a stop condition or the script ends the session")
	f.Var(newStrategyValue(autoplay.StrategyReset, &simOpts.onWin), "on-win", "Bet rule after a win: reset, increase, decrease, none")
	f.Float64Var(&simOpts.onWinPercent, "on-win-percent", 0, "Percent of the base bet used by --on-win")
	f.Var(newStrategyValue(autoplay.StrategyReset, &simOpts.onLoss), "on-loss", "Bet rule after a loss: reset, increase, decrease, none")
	f.Float64Var(&simOpts.onLossPercent, "on-loss-percent", 0, "Percent of the base bet used by --on-loss")
	f.Float64Var(&simOpts.stopProfit, "stop-profit", 0, "Stop once session profit reaches this amount (0 disables)")
	f.Float64Var(&simOpts.stopLoss, "stop-loss", 0, "Stop once session loss reaches this amount (0 disables)")
	f.Uint64Var(&simOpts.seed, "seed", 0, "Seed for mine placement; 0 picks a random seed")
	f.StringVar(&simOpts.key, "key", "", "HMAC key for a replayable stream (overrides --seed)")
	f.StringVar(&simOpts.salt, "salt", "", "Salt mixed into every stream block")
	f.Uint64Var(&simOpts.nonce, "nonce", 0, "First nonce of the stream")
	f.StringVar(&simOpts.scriptFile, "script", "", "JavaScript file defining dobet()")
	f.DurationVar(&simOpts.pause, "pause", 0, "Pause between rounds")
	f.StringVar(&simOpts.placement, "placement", string(games.PlacementRejection), "Mine placement: rejection or shuffle")
	f.BoolVarP(&simOpts.quiet, "quiet", "q", false, "Only print the summary")
	rootCmd.AddCommand(simulateCmd)
}

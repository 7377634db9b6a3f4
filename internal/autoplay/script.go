package autoplay

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"
	"github.com/shopspring/decimal"

	"github.com/MJE43/stake-mines-go/internal/games"
)

// LogEntry is a message written by a strategy script.
type LogEntry struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

const (
	scriptInitTimeout = 2 * time.Second
	scriptCallTimeout = 1 * time.Second
	scriptMaxLogs     = 200
)

// scriptState is what dobet() sees after each round.
type scriptState struct {
	Win        bool
	Multiplier float64
	NextBet    decimal.Decimal
	BaseBet    decimal.Decimal
	Balance    decimal.Decimal
	Stats      *Statistics
}

// scriptVM runs a user bet-sizing script in a sandboxed goja runtime. The
// script defines dobet(), which reads the globals set before each call and
// assigns nextbet or calls stop().
type scriptVM struct {
	runtime *goja.Runtime
	mu      sync.Mutex

	logs   []LogEntry
	logsMu sync.Mutex

	stopRequested bool
}

func newScriptVM() *scriptVM {
	vm := &scriptVM{runtime: goja.New()}
	vm.injectGlobals()
	return vm
}

func (vm *scriptVM) injectGlobals() {
	vm.runtime.Set("log", func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}

		vm.logsMu.Lock()
		if len(vm.logs) >= scriptMaxLogs {
			vm.logs = vm.logs[1:]
		}
		vm.logs = append(vm.logs, LogEntry{Time: time.Now(), Message: strings.Join(parts, " ")})
		vm.logsMu.Unlock()

		return goja.Undefined()
	})

	console := vm.runtime.NewObject()
	console.Set("log", vm.runtime.Get("log"))
	vm.runtime.Set("console", console)

	// Runs inside a locked call, so the flag needs no extra locking.
	vm.runtime.Set("stop", func(call goja.FunctionCall) goja.Value {
		vm.stopRequested = true
		return goja.Undefined()
	})

	vm.runtime.Set("require", goja.Undefined())
	vm.runtime.Set("eval", goja.Undefined())
	vm.runtime.Set("Function", goja.Undefined())
}

// load runs the script source and checks that it defines dobet().
func (vm *scriptVM) load(source string) error {
	return vm.runWithTimeout(scriptInitTimeout, func() error {
		vm.mu.Lock()
		defer vm.mu.Unlock()

		if _, err := vm.runtime.RunString(source); err != nil {
			return fmt.Errorf("script execution error: %w", err)
		}
		if _, ok := goja.AssertFunction(vm.runtime.Get("dobet")); !ok {
			return fmt.Errorf("script must define a dobet() function")
		}
		return nil
	})
}

// dobet publishes st, calls dobet() and returns the bet the script chose and
// whether it asked to stop.
func (vm *scriptVM) dobet(st scriptState) (decimal.Decimal, bool, error) {
	var next decimal.Decimal
	var stop bool

	err := vm.runWithTimeout(scriptCallTimeout, func() error {
		vm.mu.Lock()
		defer vm.mu.Unlock()

		vm.setVariables(st)
		fn, ok := goja.AssertFunction(vm.runtime.Get("dobet"))
		if !ok {
			return fmt.Errorf("dobet is not a function")
		}
		if _, err := fn(goja.Undefined()); err != nil {
			return fmt.Errorf("dobet() error: %w", err)
		}

		bet := vm.runtime.Get("nextbet").ToFloat()
		if math.IsNaN(bet) || math.IsInf(bet, 0) {
			return fmt.Errorf("nextbet must be a finite number")
		}
		next = decimal.NewFromFloat(math.Max(bet, 0)).Round(games.PayoutScale)
		stop = vm.stopRequested
		return nil
	})
	return next, stop, err
}

func (vm *scriptVM) setVariables(st scriptState) {
	rt := vm.runtime
	rt.Set("win", st.Win)
	rt.Set("multiplier", st.Multiplier)
	rt.Set("nextbet", st.NextBet.InexactFloat64())
	rt.Set("basebet", st.BaseBet.InexactFloat64())
	rt.Set("balance", st.Balance.InexactFloat64())

	rt.Set("previousbet", st.Stats.PreviousBet.InexactFloat64())
	rt.Set("profit", st.Stats.Profit.InexactFloat64())
	rt.Set("wagered", st.Stats.Wagered.InexactFloat64())
	rt.Set("bets", st.Stats.Rounds)
	rt.Set("wins", st.Stats.Wins)
	rt.Set("losses", st.Stats.Losses)
	rt.Set("winstreak", st.Stats.WinStreak)
	rt.Set("losestreak", st.Stats.LoseStreak)
	rt.Set("currentstreak", st.Stats.CurrentStreak)
}

// Logs returns a copy of the script log buffer.
func (vm *scriptVM) Logs() []LogEntry {
	vm.logsMu.Lock()
	defer vm.logsMu.Unlock()
	out := make([]LogEntry, len(vm.logs))
	copy(out, vm.logs)
	return out
}

func (vm *scriptVM) runWithTimeout(timeout time.Duration, fn func() error) error {
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("script panic: %v", r)
			}
		}()
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		vm.runtime.Interrupt("script execution timeout")
		select {
		case err := <-done:
			if err != nil {
				return fmt.Errorf("script timed out: %w", err)
			}
			return fmt.Errorf("script timed out")
		case <-time.After(200 * time.Millisecond):
			return fmt.Errorf("script timed out")
		}
	}
}

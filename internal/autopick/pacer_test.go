package autopick

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestPacerStartStop(t *testing.T) {
	p := NewPacer(5*time.Millisecond, nil)
	if p.State() != StateIdle {
		t.Fatalf("expected idle, got %s", p.State())
	}

	var calls atomic.Int32
	if !p.Start(func() { calls.Add(1) }) {
		t.Fatal("Start should succeed on an idle pacer")
	}
	if !p.Running() {
		t.Error("pacer should be running after Start")
	}

	time.Sleep(60 * time.Millisecond)
	if !p.Stop() {
		t.Fatal("Stop should succeed on a running pacer")
	}
	if p.State() != StateIdle {
		t.Errorf("expected idle after Stop, got %s", p.State())
	}

	// let an in-flight action finish
	time.Sleep(5 * time.Millisecond)
	n := calls.Load()
	if n == 0 {
		t.Fatal("expected the action to fire at least once")
	}

	time.Sleep(30 * time.Millisecond)
	if after := calls.Load(); after != n {
		t.Errorf("action fired after Stop: %d -> %d", n, after)
	}
}

func TestPacerIdempotent(t *testing.T) {
	p := NewPacer(time.Hour, nil)

	if p.Stop() {
		t.Error("Stop on an idle pacer should be a no-op")
	}
	if !p.Start(func() {}) {
		t.Fatal("first Start should succeed")
	}
	if p.Start(func() { t.Error("second action must never run") }) {
		t.Error("second Start should be a no-op")
	}
	if !p.Stop() {
		t.Error("Stop should succeed")
	}
	if p.Stop() {
		t.Error("second Stop should be a no-op")
	}
}

func TestPacerStopFromAction(t *testing.T) {
	p := NewPacer(2*time.Millisecond, nil)

	var calls atomic.Int32
	done := make(chan struct{})
	p.Start(func() {
		if calls.Add(1) == 3 {
			p.Stop()
			close(done)
		}
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("action did not stop the pacer")
	}

	time.Sleep(20 * time.Millisecond)
	if got := calls.Load(); got != 3 {
		t.Errorf("expected exactly 3 calls, got %d", got)
	}
	if p.Running() {
		t.Error("pacer should be idle")
	}
}

func TestPacerDefaultInterval(t *testing.T) {
	if got := NewPacer(0, nil).Interval(); got != DefaultInterval {
		t.Errorf("expected %s, got %s", DefaultInterval, got)
	}
}

func TestPacerRestart(t *testing.T) {
	p := NewPacer(2*time.Millisecond, nil)

	var first, second atomic.Int32
	p.Start(func() { first.Add(1) })
	time.Sleep(20 * time.Millisecond)
	p.Stop()
	time.Sleep(5 * time.Millisecond)
	n := first.Load()

	p.Start(func() { second.Add(1) })
	time.Sleep(20 * time.Millisecond)
	p.Stop()

	if first.Load() != n {
		t.Error("old schedule kept firing after restart")
	}
	if second.Load() == 0 {
		t.Error("new schedule never fired")
	}
}

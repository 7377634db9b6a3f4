package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/MJE43/stake-mines-go/internal/config"
)

func TestNew(t *testing.T) {
	logger, err := New(config.Log{Level: "debug", Development: true})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("expected debug level to be enabled")
	}

	logger, err = New(config.Log{})
	if err != nil {
		t.Fatalf("New with defaults failed: %v", err)
	}
	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug should be disabled at the default level")
	}

	if _, err := New(config.Log{Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/MJE43/stake-mines-go/internal/account"
	"github.com/MJE43/stake-mines-go/internal/autoplay"
	"github.com/MJE43/stake-mines-go/internal/games"
	"github.com/MJE43/stake-mines-go/internal/table"
)

// EngineError is the structured error body of every failed request.
type EngineError struct {
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Context   map[string]any `json:"context,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"`
}

// Error implements the error interface
func (e EngineError) Error() string {
	return e.Message
}

const (
	ErrTypeInvalidConfig     = "invalid_config"
	ErrTypeInvalidOperation  = "invalid_operation"
	ErrTypeInsufficientFunds = "insufficient_funds"
	ErrTypeConflict          = "conflict"
	ErrTypeValidation        = "validation_error"
	ErrTypeInternal          = "internal_error"
)

// classify maps a domain error to an HTTP status and error type.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, games.ErrInvalidConfig),
		errors.Is(err, games.ErrInvalidCells),
		errors.Is(err, autoplay.ErrNoSelection),
		errors.Is(err, table.ErrBetNotAllowed):
		return http.StatusBadRequest, ErrTypeInvalidConfig
	case errors.Is(err, account.ErrInsufficientFunds):
		return http.StatusPaymentRequired, ErrTypeInsufficientFunds
	case errors.Is(err, table.ErrRoundActive),
		errors.Is(err, table.ErrModeBusy),
		errors.Is(err, autoplay.ErrAlreadyRunning):
		return http.StatusConflict, ErrTypeConflict
	case errors.Is(err, table.ErrNoRound),
		errors.Is(err, autoplay.ErrNotRunning):
		return http.StatusConflict, ErrTypeInvalidOperation
	default:
		return http.StatusBadRequest, ErrTypeValidation
	}
}

// ErrorHandler writes EngineError responses and logs them.
type ErrorHandler struct {
	logger *zap.Logger
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *zap.Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleError classifies err and writes the matching response.
func (eh *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	status, errType := classify(err)
	eh.write(w, r, status, newEngineError(r, errType, err.Error(), nil))
}

// HandleValidationError reports a malformed request field.
func (eh *ErrorHandler) HandleValidationError(w http.ResponseWriter, r *http.Request, field, message string) {
	engineErr := newEngineError(r, ErrTypeValidation, fmt.Sprintf("Validation failed: %s", message), map[string]any{
		"field": field,
	})
	eh.write(w, r, http.StatusBadRequest, engineErr)
}

func newEngineError(r *http.Request, errType, message string, ctx map[string]any) EngineError {
	if ctx == nil {
		ctx = make(map[string]any)
	}
	ctx["path"] = r.URL.Path
	ctx["method"] = r.Method
	return EngineError{
		Type:      errType,
		Message:   message,
		Context:   ctx,
		RequestID: middleware.GetReqID(r.Context()),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

func (eh *ErrorHandler) write(w http.ResponseWriter, r *http.Request, status int, engineErr EngineError) {
	fields := []zap.Field{
		zap.String("type", engineErr.Type),
		zap.Int("status", status),
		zap.String("request_id", engineErr.RequestID),
		zap.String("path", r.URL.Path),
		zap.String("message", engineErr.Message),
	}
	if status >= http.StatusInternalServerError {
		eh.logger.Error("request failed", fields...)
	} else {
		eh.logger.Warn("request rejected", fields...)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Engine-Version", EngineVersion)
	w.Header().Set("X-Error-Type", engineErr.Type)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(engineErr); err != nil {
		eh.logger.Error("encode error response", zap.Error(err))
	}
}

// RecoveryHandler turns handler panics into internal_error responses.
func (eh *ErrorHandler) RecoveryHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				eh.logger.Error("panic recovered",
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("path", r.URL.Path),
					zap.Any("panic", rvr),
				)
				engineErr := newEngineError(r, ErrTypeInternal, "Internal server error", map[string]any{
					"panic": fmt.Sprintf("%v", rvr),
				})
				eh.write(w, r, http.StatusInternalServerError, engineErr)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/MJE43/stake-mines-go/internal/table"
)

// Server handles HTTP requests for one table.
type Server struct {
	table        *table.Table
	errorHandler *ErrorHandler
	logger       *zap.Logger
	startTime    time.Time

	httpServer   *http.Server
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewServer creates a new API server. logger may be nil.
func NewServer(tbl *table.Table, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("api")
	return &Server{
		table:        tbl,
		errorHandler: NewErrorHandler(logger),
		logger:       logger,
		startTime:    time.Now(),
		readTimeout:  10 * time.Second,
		writeTimeout: 10 * time.Second,
	}
}

// Routes sets up the HTTP routes with middleware
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(s.errorHandler.RecoveryHandler)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/version", s.handleVersion)
		r.Get("/account", s.handleAccount)

		r.Route("/round", func(r chi.Router) {
			r.Get("/", s.handleGetRound)
			r.Post("/", s.handleStartRound)
			r.Post("/reveal", s.handleReveal)
			r.Post("/pick", s.handlePick)
			r.Post("/cashout", s.handleCashout)
			r.Post("/autopick/start", s.handleAutoPickStart)
			r.Post("/autopick/stop", s.handleAutoPickStop)
		})

		r.Route("/autoplay", func(r chi.Router) {
			r.Get("/", s.handleGetAutoPlay)
			r.Post("/start", s.handleAutoPlayStart)
			r.Post("/stop", s.handleAutoPlayStop)
		})

		r.Get("/mines/multipliers", s.handleMultipliers)
	})

	return r
}

// Start binds addr and serves in a goroutine. It returns once the socket is
// bound.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Routes(),
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.logger.Info("listening", zap.String("addr", ln.Addr().String()))
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("serve failed", zap.Error(err))
		}
	}()
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// writeJSON writes a JSON response with the engine version header.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Engine-Version", EngineVersion)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encode response", zap.Error(err))
	}
}

// requestLogger logs one line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("remote_ip", r.RemoteAddr),
		)
	})
}

// Package http is the presentation adapter: a JSON API over the engine.
// The owner id comes from the X-Owner-ID header (authentication itself is
// an external collaborator); each owner gets one engine session holding a
// live ledger subscription.
package http

import (
	"context"
	"net/http"
	"time"

	"fintrack/internal/gateway"
	"fintrack/internal/log"
	"fintrack/internal/remote"
)

type Server struct {
	*http.Server

	appName  string
	sessions *sessionRegistry
	gateway  *gateway.Gateway
	limiter  *rateLimiter
	logger   *log.Logger
}

func NewServer(addr string, store remote.Store, appName string, logger *log.Logger) *Server {
	s := &Server{
		appName:  appName,
		sessions: newSessionRegistry(store),
		gateway:  gateway.New(store),
		limiter:  newRateLimiter(),
		logger:   logger.WithComponent("http"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleHealth)

	mux.HandleFunc("GET /api/ledger/status", s.withOwner(s.handleLedgerStatus))
	mux.HandleFunc("GET /api/summary", s.withOwner(s.handleSummary))
	mux.HandleFunc("GET /api/analytics/categories", s.withOwner(s.handleCategories))
	mux.HandleFunc("GET /api/analytics/expense-breakdown", s.withOwner(s.handleExpenseBreakdown))
	mux.HandleFunc("GET /api/analytics/monthly", s.withOwner(s.handleMonthly))
	mux.HandleFunc("GET /api/transactions", s.withOwner(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.withOwner(s.handleCreateTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.withOwner(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withOwner(s.handleDeleteTransaction))
	mux.HandleFunc("GET /api/export", s.withOwner(s.handleExport))

	handler := log.Middleware(s.logger)(s.rateLimit(mux))

	s.Server = &http.Server{
		Addr:    addr,
		Handler: handler,
	}
	return s
}

// Close shuts the rate limiter and every engine session down. Call after
// Shutdown so in-flight requests still see their session.
func (s *Server) Close() error {
	s.limiter.stop()
	s.sessions.close()
	return nil
}

// SweepSessions drops engine sessions idle for longer than maxIdle,
// closing their subscriptions. Blocks until the context is cancelled.
func (s *Server) SweepSessions(ctx context.Context, maxIdle time.Duration) error {
	ticker := time.NewTicker(maxIdle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := s.sessions.sweep(maxIdle); n > 0 {
				s.logger.Info("Swept idle sessions", "count", n)
			}
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// withOwner resolves the calling owner and its engine session.
func (s *Server) withOwner(next func(http.ResponseWriter, *http.Request, *session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := r.Header.Get("X-Owner-ID")
		if owner == "" {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "missing X-Owner-ID header"})
			return
		}
		next(w, r, s.sessions.get(owner))
	}
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.allow(clientIP(r)) {
			writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Package http exposes the JSON API: CRUD over the domain records, dashboard
// and calendar aggregations, and the balance audit trail.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

type Server struct {
	http.Server

	repo          *storage.SQLiteRepository
	transactions  *services.TransactionService
	credits       *services.CreditService
	subscriptions *services.SubscriptionService

	horizonDays int

	rateLimiter  *rateLimiter
	summaryCache *cache.LRUCache[dashboardSummary]
	monthCache   *cache.LRUCache[calendarMonth]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// Options carries everything NewServer needs beyond the address.
type Options struct {
	Repo          *storage.SQLiteRepository
	Transactions  *services.TransactionService
	Credits       *services.CreditService
	Subscriptions *services.SubscriptionService

	UpcomingHorizonDays int
	CacheSize           int
	CacheTTL            time.Duration
}

func NewServer(addr string, opts Options) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		repo:          opts.Repo,
		transactions:  opts.Transactions,
		credits:       opts.Credits,
		subscriptions: opts.Subscriptions,
		horizonDays:   opts.UpcomingHorizonDays,
		rateLimiter:   newRateLimiter(),
		summaryCache:  cache.NewLRUCache[dashboardSummary](opts.CacheSize, opts.CacheTTL),
		monthCache:    cache.NewLRUCache[calendarMonth](opts.CacheSize, opts.CacheTTL),
		cacheManager:  cache.NewManager(),
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.Register(s.monthCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/categories", s.with(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.with(s.handleCreateCategory))
	mux.HandleFunc("GET /api/categories/{id}", s.with(s.handleGetCategory))
	mux.HandleFunc("PUT /api/categories/{id}", s.with(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.with(s.handleDeleteCategory))

	mux.HandleFunc("GET /api/credit-cards", s.with(s.handleListCreditCards))
	mux.HandleFunc("POST /api/credit-cards", s.with(s.handleCreateCreditCard))
	mux.HandleFunc("GET /api/credit-cards/{id}", s.with(s.handleGetCreditCard))
	mux.HandleFunc("PUT /api/credit-cards/{id}", s.with(s.handleUpdateCreditCard))
	mux.HandleFunc("DELETE /api/credit-cards/{id}", s.with(s.handleDeleteCreditCard))

	mux.HandleFunc("GET /api/debit-cards", s.with(s.handleListDebitCards))
	mux.HandleFunc("POST /api/debit-cards", s.with(s.handleCreateDebitCard))
	mux.HandleFunc("GET /api/debit-cards/{id}", s.with(s.handleGetDebitCard))
	mux.HandleFunc("PUT /api/debit-cards/{id}", s.with(s.handleUpdateDebitCard))
	mux.HandleFunc("DELETE /api/debit-cards/{id}", s.with(s.handleDeleteDebitCard))

	mux.HandleFunc("GET /api/transactions", s.with(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.with(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions/{id}", s.with(s.handleGetTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.with(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.with(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/credits", s.with(s.handleListCredits))
	mux.HandleFunc("POST /api/credits", s.with(s.handleCreateCredit))
	mux.HandleFunc("GET /api/credits/{id}", s.with(s.handleGetCredit))
	mux.HandleFunc("PUT /api/credits/{id}", s.with(s.handleUpdateCredit))
	mux.HandleFunc("DELETE /api/credits/{id}", s.with(s.handleDeleteCredit))

	mux.HandleFunc("GET /api/subscriptions", s.with(s.handleListSubscriptions))
	mux.HandleFunc("POST /api/subscriptions", s.with(s.handleCreateSubscription))
	mux.HandleFunc("GET /api/subscriptions/{id}", s.with(s.handleGetSubscription))
	mux.HandleFunc("PUT /api/subscriptions/{id}", s.with(s.handleUpdateSubscription))
	mux.HandleFunc("DELETE /api/subscriptions/{id}", s.with(s.handleDeleteSubscription))
	mux.HandleFunc("GET /api/subscriptions/monthly-total", s.with(s.handleSubscriptionsMonthlyTotal))

	mux.HandleFunc("GET /api/dashboard/summary", s.with(s.handleDashboardSummary))
	mux.HandleFunc("GET /api/dashboard/upcoming", s.with(s.handleDashboardUpcoming))
	mux.HandleFunc("GET /api/calendar/{year}/{month}", s.with(s.handleCalendarMonth))
	mux.HandleFunc("GET /api/calendar/day", s.with(s.handleCalendarDay))
	mux.HandleFunc("GET /api/history/{kind}/{id}", s.with(s.handleBalanceHistory))

	return s
}

// with adds request id, structured request logging, security headers, and
// rate limiting on mutating methods.
func (s *Server) with(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if mutating(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			respondJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded"})
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

type requestIDKey struct{}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	}
	return false
}

// invalidateAggregates drops cached dashboard and calendar responses. Called
// on every write; the aggregates are cheap to rebuild and hard to invalidate
// precisely.
func (s *Server) invalidateAggregates() {
	s.summaryCache.Purge()
	s.monthCache.Purge()
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.repo.ListCategories(r.Context()); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, errorBody{Error: "storage not ready"})
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

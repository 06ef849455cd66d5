// Package http is the JSON API surface. Handlers stay thin: decode,
// delegate to a service, encode. Derived responses (tax estimate, series
// listing) are cached and the caches purged on every write.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"pnltracker/internal/cache"
	applog "pnltracker/internal/log"
	"pnltracker/internal/services"
	"pnltracker/internal/storage"
	"pnltracker/internal/tax"
)

type Server struct {
	http.Server

	transactions *services.TransactionService
	categories   *services.CategoryService
	recurring    *services.RecurringService
	tax          *services.TaxService

	logger      *applog.Logger
	rateLimiter *rateLimiter

	estimateCache *cache.LRU[tax.Result]
	seriesCache   *cache.LRU[[]storage.SeriesSummary]

	shutdownOnce sync.Once
}

// NewServer wires routes and returns a ready-to-run server.
func NewServer(addr string, txs *services.TransactionService, cats *services.CategoryService, rec *services.RecurringService, taxes *services.TaxService, logger *applog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		transactions:  txs,
		categories:    cats,
		recurring:     rec,
		tax:           taxes,
		logger:        logger.WithComponent(applog.ComponentHTTP),
		rateLimiter:   newRateLimiter(),
		estimateCache: cache.NewLRU[tax.Result](16, 5*time.Minute),
		seriesCache:   cache.NewLRU[[]storage.SeriesSummary](16, 5*time.Minute),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/transactions", s.wrap(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.wrap(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions/{id}", s.wrap(s.handleGetTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.wrap(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.wrap(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/categories", s.wrap(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.wrap(s.handleCreateCategory))
	mux.HandleFunc("PUT /api/categories/{id}", s.wrap(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.wrap(s.handleDeleteCategory))

	mux.HandleFunc("GET /api/recurring", s.wrap(s.handleListSeries))
	mux.HandleFunc("POST /api/recurring", s.wrap(s.handleCreateSeries))
	mux.HandleFunc("GET /api/recurring/{id}", s.wrap(s.handleGetSeries))
	mux.HandleFunc("PATCH /api/recurring/{id}", s.wrap(s.handleUpdateSeries))
	mux.HandleFunc("DELETE /api/recurring/{id}", s.wrap(s.handleDeleteSeries))
	mux.HandleFunc("PUT /api/recurring/{id}/end-date", s.wrap(s.handleUpdateEndDate))
	mux.HandleFunc("POST /api/recurring/{id}/end", s.wrap(s.handleEndSeries))

	mux.HandleFunc("GET /api/tax/estimate", s.wrap(s.handleTaxEstimate))
	mux.HandleFunc("POST /api/tax/estimate", s.wrap(s.handleTaxEstimatePreview))
	mux.HandleFunc("GET /api/tax/config", s.wrap(s.handleGetTaxConfig))
	mux.HandleFunc("PUT /api/tax/config", s.wrap(s.handleSaveTaxConfig))

	mux.HandleFunc("POST /api/import/preview", s.wrap(s.handleImportPreview))
	mux.HandleFunc("POST /api/import", s.wrap(s.handleImportCommit))

	return s
}

// wrap adds request IDs, logging and write rate limiting around a handler.
func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			s.logger.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			respondJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
			return
		}

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.logger.InfoContext(ctx, "Request completed",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, time.Since(start).Milliseconds(),
			applog.FieldClientIP, clientIP)
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// invalidateDerived purges the caches after any ledger or config write.
func (s *Server) invalidateDerived() {
	s.estimateCache.Purge()
	s.seriesCache.Purge()
}

// Shutdown stops the server and its background goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

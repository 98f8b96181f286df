// Package http exposes the JSON API: transactions, recurring rules,
// catch-up runs, projections and month summaries.
package http

import (
	"container/list"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"bilancio/internal/core"
	applog "bilancio/internal/log"
	"bilancio/internal/services"
)

// Store is the slice of the repository the handlers read from and
// write to directly. Writes that need orchestration (events, engine)
// go through the services instead.
type Store interface {
	ListTransactionsByMonth(ctx context.Context, year, month int) ([]core.Transaction, error)
	CreateRule(ctx context.Context, rule core.RecurrenceRule) error
	ListActiveRules(ctx context.Context) ([]core.RecurrenceRule, error)
	DeactivateRule(ctx context.Context, id string) error
	MonthOverview(ctx context.Context, year, month int) (core.MonthOverview, error)
	AccountBalances(ctx context.Context) ([]core.AccountBalance, error)
}

type Server struct {
	store        Store
	transactions *services.TransactionService
	catchup      *services.CatchUpProcessor
	reporter     *services.ScheduleReporter

	summaryCache *lruCache[core.MonthOverview]

	httpServer *http.Server
}

func NewServer(port string, store Store, transactions *services.TransactionService,
	catchup *services.CatchUpProcessor, reporter *services.ScheduleReporter) *Server {

	s := &Server{
		store:        store,
		transactions: transactions,
		catchup:      catchup,
		reporter:     reporter,
		summaryCache: newLRUCache[core.MonthOverview](24, time.Minute),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("POST /api/recurring", s.handleCreateRule)
	mux.HandleFunc("GET /api/recurring", s.handleListRules)
	mux.HandleFunc("DELETE /api/recurring/{id}", s.handleDeleteRule)
	mux.HandleFunc("POST /api/recurring/catchup", s.handleCatchUp)
	mux.HandleFunc("GET /api/recurring/{id}/projection", s.handleProjection)

	mux.HandleFunc("GET /api/summary/{year}/{month}", s.handleSummary)
	mux.HandleFunc("GET /api/accounts/balances", s.handleAccountBalances)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.httpServer = &http.Server{
		Addr:              ":" + port,
		Handler:           withRequestLogging(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) ListenAndServe() error {
	slog.Info("HTTP server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) invalidateSummaries() {
	s.summaryCache.Clear()
}

// statusRecorder captures the response code for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		level := slog.LevelInfo
		if rec.status >= 500 {
			level = slog.LevelError
		} else if rec.status >= 400 {
			level = slog.LevelWarn
		}
		slog.Log(r.Context(), level, "HTTP request completed",
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rec.status,
			applog.FieldDuration, time.Since(start).Milliseconds())
	})
}

// lruCache is a small TTL'd LRU used for month summaries, which are
// read far more often than the ledger changes.
type lruCache[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	lru     *list.List
}

type cacheItem[T any] struct {
	key       string
	data      T
	expiresAt time.Time
}

func newLRUCache[T any](maxSize int, ttl time.Duration) *lruCache[T] {
	return &lruCache[T]{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
	}
}

func (c *lruCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, exists := c.items[key]
	if !exists {
		return zero, false
	}

	item := elem.Value.(*cacheItem[T])
	if time.Now().After(item.expiresAt) {
		c.removeElement(elem)
		return zero, false
	}

	c.lru.MoveToFront(elem)
	return item.data, true
}

func (c *lruCache[T]) Set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := &cacheItem[T]{
		key:       key,
		data:      data,
		expiresAt: time.Now().Add(c.ttl),
	}

	if elem, exists := c.items[key]; exists {
		elem.Value = item
		c.lru.MoveToFront(elem)
		return
	}

	elem := c.lru.PushFront(item)
	c.items[key] = elem

	if c.lru.Len() > c.maxSize {
		if oldest := c.lru.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}
}

func (c *lruCache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.lru.Init()
}

func (c *lruCache[T]) removeElement(elem *list.Element) {
	item := elem.Value.(*cacheItem[T])
	delete(c.items, item.key)
	c.lru.Remove(elem)
}

func summaryKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

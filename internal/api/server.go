// Package api exposes the analysis engine over HTTP.
package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"StockSage/internal/ai"
	"StockSage/internal/collector"
	"StockSage/internal/news"
	"StockSage/internal/pattern"
	"StockSage/internal/scheduler"
	"StockSage/internal/store"
)

// Server wires the HTTP handlers to their collaborators.
type Server struct {
	Collector  *collector.Collector
	Detector   *pattern.Detector
	Store      store.Store
	Aggregator *news.Aggregator
	AI         *ai.Client
	Scheduler  *scheduler.Scheduler

	httpServer *http.Server
}

// NewServer builds the server and its route table.
func NewServer(addr string, col *collector.Collector, det *pattern.Detector,
	st store.Store, agg *news.Aggregator, aiClient *ai.Client, sched *scheduler.Scheduler) *Server {

	s := &Server{
		Collector:  col,
		Detector:   det,
		Store:      st,
		Aggregator: agg,
		AI:         aiClient,
		Scheduler:  sched,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/watchlist", s.handleGetWatchlist)
	mux.HandleFunc("POST /api/watchlist", s.handleAddWatchlist)
	mux.HandleFunc("DELETE /api/watchlist/{symbol}", s.handleRemoveWatchlist)

	mux.HandleFunc("GET /api/stocks/{symbol}", s.handleGetStock)
	mux.HandleFunc("GET /api/stocks/{symbol}/analysis", s.handleAnalysis)
	mux.HandleFunc("GET /api/stocks/{symbol}/explain-pattern", s.handleExplainPattern)
	mux.HandleFunc("GET /api/stocks/{symbol}/prediction", s.handlePrediction)

	mux.HandleFunc("GET /api/news", s.handleGetNews)
	mux.HandleFunc("POST /api/news/fetch", s.handleFetchNews)
	mux.HandleFunc("GET /api/news/{id}/analyze", s.handleAnalyzeArticle)

	mux.HandleFunc("GET /api/predictions", s.handleGetPredictions)
	mux.HandleFunc("PUT /api/predictions/{id}/outcome", s.handlePredictionOutcome)

	mux.HandleFunc("GET /api/analytics", s.handleAnalytics)
	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/search/{query}", s.handleSearch)
	mux.HandleFunc("GET /api/status", s.handleStatus)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      requestLog(cors(mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}
	return s
}

// Handler exposes the middleware-wrapped mux, mainly for tests.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// ListenAndServe blocks serving HTTP until Shutdown.
func (s *Server) ListenAndServe() error {
	log.Printf("[INFO] http server listening on %s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("[INFO] shutting down http server")
	return s.httpServer.Shutdown(ctx)
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()[:8]
		w.Header().Set("X-Request-ID", reqID)
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("[INFO] %s %s %s (%s)", reqID, r.Method, r.URL.Path, time.Since(start).Round(time.Millisecond))
	})
}

// Package scheduler runs the periodic news refresh and watchlist scan.
package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"StockSage/internal/ai"
	"StockSage/internal/calculator"
	"StockSage/internal/collector"
	"StockSage/internal/model"
	"StockSage/internal/news"
	"StockSage/internal/notifier"
	"StockSage/internal/pattern"
	"StockSage/internal/store"
)

// alertThreshold is the minimum confidence for a pattern to appear in a
// Telegram scan alert.
const alertThreshold = 70

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron       *cron.Cron
	Collector  *collector.Collector
	Detector   *pattern.Detector
	Store      store.Store
	Aggregator *news.Aggregator
	AI         *ai.Client
	Notifier   *notifier.TelegramNotifier
	Ctx        context.Context
}

// NewScheduler creates a new Scheduler. The notifier may be nil; alerts
// are then logged only.
func NewScheduler(ctx context.Context, col *collector.Collector, det *pattern.Detector,
	st store.Store, agg *news.Aggregator, aiClient *ai.Client, tn *notifier.TelegramNotifier) *Scheduler {
	return &Scheduler{
		Cron:       cron.New(cron.WithSeconds()),
		Collector:  col,
		Detector:   det,
		Store:      st,
		Aggregator: agg,
		AI:         aiClient,
		Notifier:   tn,
		Ctx:        ctx,
	}
}

// RegisterAll registers the news refresh and watchlist scan tasks.
func (s *Scheduler) RegisterAll(newsCron, scanCron string) error {
	if _, err := s.Cron.AddFunc(newsCron, s.RefreshNews); err != nil {
		return fmt.Errorf("register news task: %w", err)
	}
	if _, err := s.Cron.AddFunc(scanCron, s.ScanWatchlist); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RefreshNews pulls all feeds and persists what is new. Articles already
// on file are skipped by the store's URL constraint.
func (s *Scheduler) RefreshNews() {
	log.Println("[INFO] running news refresh")
	articles := s.Aggregator.FetchAll()

	var saved int
	for i := range articles {
		id, err := s.Store.SaveArticle(&articles[i])
		if err != nil {
			log.Printf("[ERROR] save article: %v", err)
			continue
		}
		if id > 0 {
			saved++
		}
	}
	log.Printf("[INFO] news refresh done: %d fetched, %d new", len(articles), saved)
}

// ScanWatchlist runs indicator and pattern analysis over every watched
// symbol, persists the detections, and alerts on the high-confidence
// ones. Per-symbol failures are logged and the scan continues.
func (s *Scheduler) ScanWatchlist() {
	log.Println("[INFO] running watchlist scan")
	items, err := s.Store.Watchlist()
	if err != nil {
		log.Printf("[ERROR] load watchlist: %v", err)
		return
	}

	findings := make(map[string][]model.Pattern)
	prices := make(map[string]float64)

	for _, item := range items {
		data, err := s.Collector.FetchStock(item.Symbol, "6mo")
		if err != nil {
			log.Printf("[WARN] scan %s: %v", item.Symbol, err)
			continue
		}
		series, err := model.NewBarSeries(data.History)
		if err != nil {
			log.Printf("[WARN] scan %s: %v", item.Symbol, err)
			continue
		}
		ind, err := calculator.ComputeIndicators(series)
		if err != nil {
			log.Printf("[WARN] scan %s: %v", item.Symbol, err)
			continue
		}
		patterns := s.Detector.Detect(series, ind)

		var alertable []model.Pattern
		for _, p := range patterns {
			// High-confidence detections get an AI explanation attached
			// when the API is configured.
			explanation := ""
			if p.Confidence >= alertThreshold && s.AI.Enabled() {
				explanation = s.AI.ExplainPattern(s.Ctx, item.Symbol, p, data.CurrentPrice)
			}
			if err := s.Store.SavePattern(item.Symbol, p, explanation, data.CurrentPrice); err != nil {
				log.Printf("[ERROR] save pattern for %s: %v", item.Symbol, err)
			}
			if p.Confidence >= alertThreshold {
				alertable = append(alertable, p)
			}
		}
		if len(alertable) > 0 {
			findings[item.Symbol] = alertable
			prices[item.Symbol] = data.CurrentPrice
		}
		log.Printf("[INFO] scanned %s: %d patterns", item.Symbol, len(patterns))
	}

	if msg := notifier.FormatScanAlert(findings, prices); msg != "" {
		s.trySend(msg)
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		log.Println("[INFO] telegram not configured, skipping alert")
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}

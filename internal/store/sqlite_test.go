package store

import (
	"path/filepath"
	"testing"
	"time"

	"StockSage/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestWatchlist_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	if err := s.AddWatch("reliance", "Reliance Industries", "core holding"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.AddWatch("RELIANCE", "Reliance Industries", ""); err != ErrDuplicate {
		t.Fatalf("duplicate add: expected ErrDuplicate, got %v", err)
	}

	items, err := s.Watchlist()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	it := items[0]
	if it.Symbol != "RELIANCE" || it.Name != "Reliance Industries" || it.Notes != "core holding" {
		t.Errorf("item: %+v", it)
	}
	if it.AddedDate.IsZero() {
		t.Error("added date not parsed")
	}

	if err := s.RemoveWatch("reliance"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.RemoveWatch("RELIANCE"); err != ErrNotFound {
		t.Fatalf("remove missing: expected ErrNotFound, got %v", err)
	}
}

func TestArticles_SaveAndFilter(t *testing.T) {
	s := newTestStore(t)

	a := &model.Article{
		Source:        "Moneycontrol",
		Title:         "TCS beats estimates",
		Content:       "Strong quarter for Tata Consultancy",
		URL:           "https://example.com/tcs",
		PublishedDate: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC),
		Symbols:       []string{"TCS"},
	}
	id, err := s.SaveArticle(a)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero id for new article")
	}

	// Same URL again: idempotent no-op.
	dupID, err := s.SaveArticle(a)
	if err != nil {
		t.Fatalf("duplicate save: %v", err)
	}
	if dupID != 0 {
		t.Errorf("duplicate article should return 0, got %d", dupID)
	}

	b := &model.Article{
		Source:        "LiveMint",
		Title:         "Banks slip on rate worries",
		URL:           "https://example.com/banks",
		PublishedDate: time.Date(2025, 5, 2, 10, 0, 0, 0, time.UTC),
		Symbols:       []string{"HDFCBANK"},
	}
	if _, err := s.SaveArticle(b); err != nil {
		t.Fatalf("save second: %v", err)
	}

	all, err := s.News(NewsFilter{})
	if err != nil {
		t.Fatalf("news: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(all))
	}
	// Newest first.
	if all[0].URL != "https://example.com/banks" {
		t.Errorf("ordering: got %s first", all[0].URL)
	}
	if all[1].Sentiment != "pending" {
		t.Errorf("unanalyzed article sentiment: %s", all[1].Sentiment)
	}

	bySource, err := s.News(NewsFilter{Source: "Moneycontrol"})
	if err != nil {
		t.Fatalf("filter source: %v", err)
	}
	if len(bySource) != 1 || bySource[0].Title != "TCS beats estimates" {
		t.Errorf("source filter: %v", bySource)
	}

	bySymbol, err := s.News(NewsFilter{Symbol: "TCS"})
	if err != nil {
		t.Fatalf("filter symbol: %v", err)
	}
	if len(bySymbol) != 1 {
		t.Errorf("symbol filter: got %d", len(bySymbol))
	}
}

func TestSentiment_JoinAndFilter(t *testing.T) {
	s := newTestStore(t)

	a := &model.Article{
		Source:        "Reuters India",
		Title:         "Adani stocks rally",
		URL:           "https://example.com/adani",
		PublishedDate: time.Now().UTC(),
	}
	id, err := s.SaveArticle(a)
	if err != nil || id == 0 {
		t.Fatalf("save: id=%d err=%v", id, err)
	}

	sent := &model.Sentiment{
		Sentiment:      "bullish",
		Confidence:     82,
		KeyPoints:      []string{"strong volumes"},
		AffectedStocks: []string{"ADANIENT"},
		Impact:         "high",
	}
	if err := s.SaveSentiment(id, sent); err != nil {
		t.Fatalf("save sentiment: %v", err)
	}

	got, err := s.Article(id)
	if err != nil {
		t.Fatalf("article: %v", err)
	}
	if got.Sentiment != "bullish" || got.AnalysisConfidence != 82 || got.Impact != "high" {
		t.Errorf("joined analysis: %+v", got)
	}
	if len(got.KeyPoints) != 1 || got.KeyPoints[0] != "strong volumes" {
		t.Errorf("key points: %v", got.KeyPoints)
	}

	bullish, err := s.News(NewsFilter{Sentiment: "bullish"})
	if err != nil {
		t.Fatalf("filter sentiment: %v", err)
	}
	if len(bullish) != 1 {
		t.Errorf("sentiment filter: got %d", len(bullish))
	}

	if _, err := s.Article(9999); err != ErrNotFound {
		t.Errorf("missing article: expected ErrNotFound, got %v", err)
	}
}

func TestPatterns_SaveAndQuery(t *testing.T) {
	s := newTestStore(t)

	p := model.Pattern{
		Type:       model.PatternGoldenCross,
		Signal:     model.SignalBullish,
		Confidence: 75,
		Date:       "2025-05-01",
		Category:   model.CategoryComposite,
	}
	if err := s.SavePattern("infy", p, "looks strong", 1502.35); err != nil {
		t.Fatalf("save pattern: %v", err)
	}

	got, err := s.Patterns("INFY", 10)
	if err != nil {
		t.Fatalf("patterns: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 pattern, got %d", len(got))
	}
	sp := got[0]
	if sp.Symbol != "INFY" || sp.PatternType != "Golden Cross" || sp.Confidence != 75 {
		t.Errorf("stored pattern: %+v", sp)
	}
	if sp.PriceAtDetection != 1502.35 || sp.AIExplanation != "looks strong" {
		t.Errorf("stored pattern extras: %+v", sp)
	}

	none, err := s.Patterns("TCS", 10)
	if err != nil {
		t.Fatalf("patterns empty: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no TCS patterns, got %d", len(none))
	}
}

func TestPredictions_LifecycleAndStats(t *testing.T) {
	s := newTestStore(t)

	mk := func(symbol, direction string) int64 {
		id, err := s.SavePrediction(&model.Prediction{
			Symbol:      symbol,
			Direction:   direction,
			Confidence:  70,
			Reasoning:   "test",
			RiskFactors: []string{"volatility"},
			KeyLevels:   model.KeyLevels{Support: 95, Resistance: 110},
		})
		if err != nil {
			t.Fatalf("save prediction: %v", err)
		}
		return id
	}

	id1 := mk("INFY", "bullish")
	mk("INFY", "bearish")
	mk("TCS", "neutral")

	preds, err := s.Predictions("INFY", 10)
	if err != nil {
		t.Fatalf("predictions: %v", err)
	}
	if len(preds) != 2 {
		t.Fatalf("expected 2 INFY predictions, got %d", len(preds))
	}
	if preds[0].ActualOutcome != nil {
		t.Error("fresh prediction should be unresolved")
	}
	if preds[0].KeyLevels.Support != 95 {
		t.Errorf("key levels: %+v", preds[0].KeyLevels)
	}

	if err := s.ResolvePrediction(id1, "bullish", 112.5); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if err := s.ResolvePrediction(9999, "bullish", 1); err != ErrNotFound {
		t.Fatalf("resolve missing: expected ErrNotFound, got %v", err)
	}

	stats, err := s.PredictionStats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 3 || stats.Resolved != 1 || stats.Correct != 1 || stats.Pending != 2 {
		t.Errorf("stats: %+v", stats)
	}
	if stats.Accuracy != 100 {
		t.Errorf("accuracy: %.1f", stats.Accuracy)
	}
	if stats.ByDirection["bullish"] != 1 || stats.ByDirection["bearish"] != 1 || stats.ByDirection["neutral"] != 1 {
		t.Errorf("by direction: %v", stats.ByDirection)
	}

	resolved, err := s.Predictions("INFY", 10)
	if err != nil {
		t.Fatalf("predictions after resolve: %v", err)
	}
	var found bool
	for _, p := range resolved {
		if p.ID == id1 {
			found = true
			if p.ActualOutcome == nil || *p.ActualOutcome != "bullish" {
				t.Errorf("outcome: %+v", p.ActualOutcome)
			}
			if p.OutcomePrice == nil || *p.OutcomePrice != 112.5 {
				t.Errorf("outcome price: %+v", p.OutcomePrice)
			}
			if p.ResolvedAt == nil {
				t.Error("resolved_at not set")
			}
		}
	}
	if !found {
		t.Error("resolved prediction not returned")
	}
}

package scheduler

import (
	"context"
	"path/filepath"
	"testing"

	"StockSage/internal/ai"
	"StockSage/internal/collector"
	"StockSage/internal/news"
	"StockSage/internal/pattern"
	"StockSage/internal/store"
)

func newTestScheduler(t *testing.T, fetcher collector.Fetcher) (*Scheduler, store.Store) {
	t.Helper()
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "sched.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	s := NewScheduler(context.Background(),
		collector.NewCollector(fetcher),
		pattern.NewDetector(pattern.DefaultConfig()),
		st,
		news.NewAggregator(),
		ai.NewClient("", "", 0, 0),
		nil)
	return s, st
}

func TestRegisterAll(t *testing.T) {
	s, _ := newTestScheduler(t, &collector.MockFetcher{})
	if err := s.RegisterAll("0 */30 * * * *", "0 30 16 * * 1-5"); err != nil {
		t.Fatalf("valid specs: %v", err)
	}
	if err := s.RegisterAll("not a cron spec", "0 30 16 * * 1-5"); err == nil {
		t.Fatal("expected error for invalid news spec")
	}
}

func TestScanWatchlist_PersistsPatterns(t *testing.T) {
	// A steady uptrend guarantees at least one detection (RSI overbought).
	s, st := newTestScheduler(t, &collector.MockFetcher{Bars: collector.GenerateMockBars(100, 120)})

	if err := st.AddWatch("INFY", "Infosys", ""); err != nil {
		t.Fatalf("seed watchlist: %v", err)
	}

	s.ScanWatchlist()

	got, err := st.Patterns("INFY", 50)
	if err != nil {
		t.Fatalf("patterns: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("scan should have persisted detections for the watched symbol")
	}
	if got[0].PriceAtDetection <= 0 {
		t.Errorf("detection price: %.2f", got[0].PriceAtDetection)
	}
	// Without a Gemini key the scan must store no explanation text, not
	// an unavailability note.
	for _, p := range got {
		if p.AIExplanation != "" {
			t.Errorf("explanation stored with AI disabled: %q", p.AIExplanation)
		}
	}
}

func TestScanWatchlist_SkipsFailingSymbol(t *testing.T) {
	s, st := newTestScheduler(t, &collector.MockFetcher{Err: context.DeadlineExceeded})
	if err := st.AddWatch("BROKEN", "Broken Co", ""); err != nil {
		t.Fatalf("seed watchlist: %v", err)
	}

	// Must not panic and must not persist anything.
	s.ScanWatchlist()

	got, err := st.Patterns("BROKEN", 10)
	if err != nil {
		t.Fatalf("patterns: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("no patterns expected after failed fetch, got %d", len(got))
	}
}

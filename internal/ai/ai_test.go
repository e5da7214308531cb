package ai

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"StockSage/internal/model"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain json", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  \n{\"a\":1}\n ", `{"a":1}`},
	}
	for _, tt := range tests {
		if got := stripFences(tt.in); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestTruncate_RuneBoundary(t *testing.T) {
	s := "x" + strings.Repeat("₹", 700) // 1 + 2100 bytes
	got := truncate(s, 2000)
	if len(got) > 2000 {
		t.Fatalf("length %d exceeds cap", len(got))
	}
	if !utf8.ValidString(got) {
		t.Fatal("truncation split a UTF-8 sequence")
	}

	if got := truncate("short", 2000); got != "short" {
		t.Errorf("short input should pass through, got %q", got)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, lo, hi, want float64
	}{
		{-5, 0, 100, 0},
		{150, 0, 100, 100},
		{42, 0, 100, 42},
	}
	for _, tt := range tests {
		if got := clamp(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("clamp(%.0f) = %.0f, want %.0f", tt.v, got, tt.want)
		}
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("", "", 0, 0)
	if c.Enabled() {
		t.Error("client without key must report disabled")
	}
	st := c.Usage()
	if st.APIConfigured {
		t.Error("status should show unconfigured")
	}
	if st.DailyLimit != 1400 || st.DailyRequestsUsed != 0 || st.Remaining != 1400 {
		t.Errorf("default budget: %+v", st)
	}

	if NewClient("k", "custom-model", 5, 10).model != "custom-model" {
		t.Error("explicit model not kept")
	}
}

func TestGenerate_NoKeyFailsFast(t *testing.T) {
	c := NewClient("", "", 0, 0)
	if _, err := c.Generate(context.Background(), "hello"); err == nil {
		t.Fatal("expected error without an API key")
	}
	// The failed call must not consume daily budget.
	if used := c.Usage().DailyRequestsUsed; used != 0 {
		t.Errorf("budget consumed without a key: %d", used)
	}
}

func TestExplainPattern_Degrades(t *testing.T) {
	c := NewClient("", "", 0, 0)
	p := model.Pattern{Type: model.PatternGoldenCross, Signal: model.SignalBullish}
	got := c.ExplainPattern(context.Background(), "INFY", p, 1500)
	if !strings.HasPrefix(got, "AI explanation unavailable") {
		t.Errorf("expected unavailability note, got %q", got)
	}
}

func TestAnalyzeSentiment_TransportFallback(t *testing.T) {
	c := NewClient("", "", 0, 0)
	got := c.AnalyzeSentiment(context.Background(), "Some headline", "body text")
	if got.Sentiment != "neutral" || got.Confidence != 0 {
		t.Errorf("fallback sentiment: %+v", got)
	}
	if got.Summary != "Some headline" {
		t.Errorf("fallback summary should echo the title: %q", got.Summary)
	}
	if got.AffectedStocks == nil || got.KeyPoints == nil {
		t.Error("fallback slices must be non-nil")
	}
}

func TestGeneratePrediction_TransportFallback(t *testing.T) {
	c := NewClient("", "", 0, 0)
	data := &model.StockData{Symbol: "TCS", CurrentPrice: 3500, ChangePercent: 1.2}
	got := c.GeneratePrediction(context.Background(), data, nil, nil, nil)
	if got.Symbol != "TCS" || got.Direction != "neutral" || got.Confidence != 0 {
		t.Errorf("fallback prediction: %+v", got)
	}
	if got.Disclaimer == "" {
		t.Error("disclaimer missing on fallback")
	}
}

func TestReserve_DailyLimit(t *testing.T) {
	c := NewClient("key", "", 13, 2)
	if err := c.reserve(); err != nil {
		t.Fatalf("first reserve: %v", err)
	}
	if err := c.reserve(); err != nil {
		t.Fatalf("second reserve: %v", err)
	}
	if err := c.reserve(); err != ErrDailyLimit {
		t.Fatalf("third reserve: expected ErrDailyLimit, got %v", err)
	}
	st := c.Usage()
	if st.DailyRequestsUsed != 2 || st.Remaining != 0 {
		t.Errorf("usage after limit: %+v", st)
	}
}

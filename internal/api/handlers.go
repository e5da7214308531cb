package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"StockSage/internal/calculator"
	"StockSage/internal/model"
	"StockSage/internal/news"
	"StockSage/internal/store"
)

// watchEntry is a watchlist row enriched with a live quote.
type watchEntry struct {
	model.WatchItem
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Volume        int64   `json:"volume"`
	VolumeText    string  `json:"volume_text,omitempty"`
	QuoteError    string  `json:"quote_error,omitempty"`
}

func (s *Server) handleGetWatchlist(w http.ResponseWriter, r *http.Request) {
	items, err := s.Store.Watchlist()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	entries := make([]watchEntry, 0, len(items))
	for _, item := range items {
		e := watchEntry{WatchItem: item}
		if q, err := s.Collector.Quote(item.Symbol); err != nil {
			e.QuoteError = err.Error()
		} else {
			e.Price = q.Price
			e.Change = q.Change
			e.ChangePercent = q.ChangePercent
			e.Volume = q.Volume
			e.VolumeText = q.VolumeText
		}
		entries = append(entries, e)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"watchlist": entries})
}

func (s *Server) handleAddWatchlist(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbol string `json:"symbol"`
		Name   string `json:"name"`
		Notes  string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Symbol == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "symbol and name are required")
		return
	}
	symbol := strings.ToUpper(req.Symbol)
	if err := s.Store.AddWatch(symbol, req.Name, req.Notes); err != nil {
		if err == store.ErrDuplicate {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("%s is already in watchlist", symbol))
			return
		}
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("%s added to watchlist", symbol),
	})
}

func (s *Server) handleRemoveWatchlist(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(r.PathValue("symbol"))
	if err := s.Store.RemoveWatch(symbol); err != nil {
		if err == store.ErrNotFound {
			writeError(w, http.StatusNotFound, fmt.Sprintf("%s not found in watchlist", symbol))
			return
		}
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("%s removed from watchlist", symbol),
	})
}

func (s *Server) handleGetStock(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	period := r.URL.Query().Get("period")

	data, err := s.Collector.FetchStock(symbol, period)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// handleAnalysis returns the full payload: stock data, the complete
// indicator set, and the detected pattern catalogue. Every detection is
// also persisted for the analytics views.
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	period := r.URL.Query().Get("period")

	data, err := s.Collector.FetchStock(symbol, period)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	series, err := model.NewBarSeries(data.History)
	if err != nil {
		writeError(w, http.StatusBadGateway, fmt.Sprintf("bad history for %s: %v", symbol, err))
		return
	}
	ind, err := calculator.ComputeIndicators(series)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	patterns := s.Detector.Detect(series, ind)

	for _, p := range patterns {
		if err := s.Store.SavePattern(data.Symbol, p, "", data.CurrentPrice); err != nil {
			log.Printf("[ERROR] save pattern: %v", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"stock":      data,
		"indicators": ind,
		"patterns":   patterns,
	})
}

func (s *Server) handleExplainPattern(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(r.PathValue("symbol"))
	patternType := r.URL.Query().Get("pattern_type")
	if patternType == "" {
		writeError(w, http.StatusBadRequest, "pattern_type query parameter is required")
		return
	}

	data, err := s.Collector.FetchStock(symbol, "3mo")
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	p := model.Pattern{
		Type:        model.PatternType(patternType),
		Description: fmt.Sprintf("Detected %s pattern", patternType),
		Signal:      model.SignalNeutral,
	}
	explanation := s.AI.ExplainPattern(r.Context(), symbol, p, data.CurrentPrice)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":      symbol,
		"pattern":     patternType,
		"explanation": explanation,
	})
}

func (s *Server) handlePrediction(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(r.PathValue("symbol"))

	data, err := s.Collector.FetchStock(symbol, "6mo")
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	series, err := model.NewBarSeries(data.History)
	if err != nil {
		writeError(w, http.StatusBadGateway, fmt.Sprintf("bad history for %s: %v", symbol, err))
		return
	}

	// Indicators may be unavailable on a short series; the prediction
	// degrades rather than failing.
	ind, err := calculator.ComputeIndicators(series)
	var patterns []model.Pattern
	if err != nil {
		ind = nil
		patterns = []model.Pattern{}
	} else {
		patterns = s.Detector.Detect(series, ind)
	}

	articles, err := s.Store.News(store.NewsFilter{Symbol: symbol, Limit: 100})
	if err != nil {
		log.Printf("[WARN] news lookup for %s: %v", symbol, err)
	}

	prediction := s.AI.GeneratePrediction(r.Context(), data, patterns, ind, articles)

	id, err := s.Store.SavePrediction(prediction)
	if err != nil {
		log.Printf("[ERROR] save prediction: %v", err)
	} else {
		prediction.ID = id
	}
	writeJSON(w, http.StatusOK, prediction)
}

func (s *Server) handleGetNews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))

	articles, err := s.Store.News(store.NewsFilter{
		Source:    q.Get("source"),
		Sentiment: q.Get("sentiment"),
		Symbol:    q.Get("symbol"),
		Limit:     limit,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"articles": articles,
		"count":    len(articles),
	})
}

func (s *Server) handleFetchNews(w http.ResponseWriter, r *http.Request) {
	go s.Scheduler.RefreshNews()
	writeJSON(w, http.StatusOK, map[string]string{"message": "News fetch started in background"})
}

func (s *Server) handleAnalyzeArticle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid article id")
		return
	}
	article, err := s.Store.Article(id)
	if err != nil {
		if err == store.ErrNotFound {
			writeError(w, http.StatusNotFound, "Article not found")
			return
		}
		writeDomainError(w, err)
		return
	}

	analysis := s.AI.AnalyzeSentiment(r.Context(), article.Title, article.Content)
	if err := s.Store.SaveSentiment(id, analysis); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"article_id": id,
		"analysis":   analysis,
	})
}

func (s *Server) handleGetPredictions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))

	preds, err := s.Store.Predictions(q.Get("symbol"), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"predictions": preds})
}

func (s *Server) handlePredictionOutcome(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid prediction id")
		return
	}
	var req struct {
		Outcome string  `json:"outcome"`
		Price   float64 `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	switch req.Outcome {
	case "bullish", "bearish", "neutral":
	default:
		writeError(w, http.StatusBadRequest, "outcome must be bullish, bearish or neutral")
		return
	}
	if err := s.Store.ResolvePrediction(id, req.Outcome, req.Price); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Prediction outcome updated"})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.Store.PredictionStats()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	patterns, err := s.Store.Patterns("", 500)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	distribution := map[string]int{}
	for _, p := range patterns {
		distribution[p.PatternType]++
	}

	articles, err := s.Store.News(store.NewsFilter{Limit: 500})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	sentiments := map[string]int{"bullish": 0, "bearish": 0, "neutral": 0, "pending": 0}
	for _, a := range articles {
		sentiments[a.Sentiment]++
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"predictions": stats,
		"patterns": map[string]interface{}{
			"total":        len(patterns),
			"distribution": distribution,
		},
		"news_sentiment": sentiments,
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	items, err := s.Store.Watchlist()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	entries := make([]watchEntry, 0, len(items))
	for _, item := range items {
		e := watchEntry{WatchItem: item}
		if q, err := s.Collector.Quote(item.Symbol); err != nil {
			e.QuoteError = err.Error()
		} else {
			e.Price = q.Price
			e.Change = q.Change
			e.ChangePercent = q.ChangePercent
			e.Volume = q.Volume
			e.VolumeText = q.VolumeText
		}
		entries = append(entries, e)
	}

	patterns, err := s.Store.Patterns("", 10)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	articles, err := s.Store.News(store.NewsFilter{Limit: 10})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	stats, err := s.Store.PredictionStats()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"watchlist":        entries,
		"recent_patterns":  patterns,
		"recent_news":      articles,
		"prediction_stats": stats,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	results := news.Search(r.PathValue("query"), 20)
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "running",
		"timestamp":  time.Now().Format(time.RFC3339),
		"gemini_api": s.AI.Usage(),
	})
}

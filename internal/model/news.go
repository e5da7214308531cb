package model

import "time"

// Article is one news item pulled from an RSS source.
type Article struct {
	ID            int64     `json:"id"`
	Source        string    `json:"source"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	URL           string    `json:"url"`
	PublishedDate time.Time `json:"published_date"`
	PublishedAgo  string    `json:"published_ago,omitempty"`
	Symbols       []string  `json:"symbols_mentioned"`

	// Filled from the stored sentiment analysis, "pending" until analyzed.
	Sentiment          string   `json:"sentiment"`
	AnalysisConfidence float64  `json:"analysis_confidence"`
	KeyPoints          []string `json:"key_points"`
	Impact             string   `json:"impact"`
	AffectedStocks     []string `json:"affected_stocks"`
}

// Sentiment is the AI reading of a single article.
type Sentiment struct {
	Sentiment      string   `json:"sentiment"`
	Confidence     float64  `json:"confidence"`
	KeyPoints      []string `json:"key_points"`
	AffectedStocks []string `json:"affected_stocks"`
	Impact         string   `json:"impact"`
	Summary        string   `json:"summary"`
}

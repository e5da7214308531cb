// Package store persists watchlist entries, news, detected patterns and
// predictions to SQLite.
package store

import (
	"errors"

	"StockSage/internal/model"
)

// ErrDuplicate reports an insert that hit a uniqueness constraint.
var ErrDuplicate = errors.New("store: duplicate entry")

// ErrNotFound reports a lookup or delete that matched no row.
var ErrNotFound = errors.New("store: not found")

// NewsFilter narrows a News query. Zero values mean no filtering.
type NewsFilter struct {
	Source    string
	Sentiment string
	Symbol    string
	Limit     int
}

// StoredPattern is a pattern detection persisted with its market context.
type StoredPattern struct {
	ID               int64   `json:"id"`
	Symbol           string  `json:"symbol"`
	PatternType      string  `json:"pattern_type"`
	DetectedDate     string  `json:"detected_date"`
	Confidence       float64 `json:"confidence"`
	AIExplanation    string  `json:"ai_explanation"`
	PriceAtDetection float64 `json:"price_at_detection"`
}

// Store is the persistence interface the API and scheduler depend on.
type Store interface {
	AddWatch(symbol, name, notes string) error
	RemoveWatch(symbol string) error
	Watchlist() ([]model.WatchItem, error)

	SaveArticle(a *model.Article) (int64, error)
	SaveSentiment(articleID int64, s *model.Sentiment) error
	News(f NewsFilter) ([]model.Article, error)
	Article(id int64) (*model.Article, error)

	SavePattern(symbol string, p model.Pattern, explanation string, price float64) error
	Patterns(symbol string, limit int) ([]StoredPattern, error)

	SavePrediction(p *model.Prediction) (int64, error)
	Predictions(symbol string, limit int) ([]model.Prediction, error)
	ResolvePrediction(id int64, outcome string, price float64) error
	PredictionStats() (*model.PredictionStats, error)

	Close() error
}

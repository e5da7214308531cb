package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	_ "modernc.org/sqlite"

	"StockSage/internal/model"
)

const timeLayout = "2006-01-02 15:04:05"

// SQLiteStore implements Store on a single SQLite file.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite store opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS watchlist (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol     TEXT NOT NULL UNIQUE,
			name       TEXT NOT NULL,
			added_date TEXT NOT NULL DEFAULT (datetime('now')),
			notes      TEXT DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_watchlist_symbol ON watchlist(symbol)`,

		`CREATE TABLE IF NOT EXISTS news_articles (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			source            TEXT NOT NULL,
			title             TEXT NOT NULL,
			content           TEXT DEFAULT '',
			url               TEXT UNIQUE,
			published_date    TEXT NOT NULL,
			symbols_mentioned TEXT DEFAULT '[]',
			created_at        TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_news_published ON news_articles(published_date)`,
		`CREATE INDEX IF NOT EXISTS idx_news_source ON news_articles(source)`,

		`CREATE TABLE IF NOT EXISTS news_analysis (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			article_id      INTEGER NOT NULL,
			sentiment       TEXT NOT NULL DEFAULT 'neutral',
			confidence      REAL DEFAULT 50.0,
			key_points      TEXT DEFAULT '[]',
			impact          TEXT DEFAULT 'medium',
			affected_stocks TEXT DEFAULT '[]',
			analyzed_at     TEXT NOT NULL DEFAULT (datetime('now')),
			FOREIGN KEY (article_id) REFERENCES news_articles(id) ON DELETE CASCADE
		)`,

		`CREATE TABLE IF NOT EXISTS technical_patterns (
			id                 INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol             TEXT NOT NULL,
			pattern_type       TEXT NOT NULL,
			detected_date      TEXT NOT NULL DEFAULT (datetime('now')),
			confidence         REAL DEFAULT 50.0,
			ai_explanation     TEXT DEFAULT '',
			price_at_detection REAL DEFAULT 0.0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_patterns_symbol ON technical_patterns(symbol)`,

		`CREATE TABLE IF NOT EXISTS predictions (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol         TEXT NOT NULL,
			direction      TEXT NOT NULL,
			confidence     REAL DEFAULT 50.0,
			reasoning      TEXT DEFAULT '',
			risk_factors   TEXT DEFAULT '[]',
			key_levels     TEXT DEFAULT '{}',
			created_date   TEXT NOT NULL DEFAULT (datetime('now')),
			actual_outcome TEXT DEFAULT NULL,
			outcome_price  REAL DEFAULT NULL,
			resolved_at    TEXT DEFAULT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_symbol ON predictions(symbol)`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_date ON predictions(created_date)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func (s *SQLiteStore) AddWatch(symbol, name, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO watchlist (symbol, name, notes) VALUES (?, ?, ?)`,
		strings.ToUpper(symbol), name, notes,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("add watch: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RemoveWatch(symbol string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM watchlist WHERE symbol = ?`, strings.ToUpper(symbol))
	if err != nil {
		return fmt.Errorf("remove watch: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Watchlist() ([]model.WatchItem, error) {
	rows, err := s.db.Query(
		`SELECT id, symbol, name, notes, added_date FROM watchlist ORDER BY added_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("watchlist: %w", err)
	}
	defer rows.Close()

	items := []model.WatchItem{}
	for rows.Next() {
		var it model.WatchItem
		var added string
		if err := rows.Scan(&it.ID, &it.Symbol, &it.Name, &it.Notes, &added); err != nil {
			return nil, fmt.Errorf("scan watchlist: %w", err)
		}
		it.AddedDate = parseDBTime(added)
		items = append(items, it)
	}
	return items, rows.Err()
}

// SaveArticle inserts the article and returns its row id. A URL already
// on file is not an error; it returns (0, nil) so feed refreshes are
// idempotent.
func (s *SQLiteStore) SaveArticle(a *model.Article) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	symbols, err := json.Marshal(orEmpty(a.Symbols))
	if err != nil {
		return 0, fmt.Errorf("marshal symbols: %w", err)
	}
	res, err := s.db.Exec(
		`INSERT OR IGNORE INTO news_articles (source, title, content, url, published_date, symbols_mentioned)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.Source, a.Title, a.Content, a.URL,
		a.PublishedDate.UTC().Format(timeLayout), string(symbols),
	)
	if err != nil {
		return 0, fmt.Errorf("save article: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, nil
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) SaveSentiment(articleID int64, sent *model.Sentiment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keyPoints, err := json.Marshal(orEmpty(sent.KeyPoints))
	if err != nil {
		return fmt.Errorf("marshal key points: %w", err)
	}
	affected, err := json.Marshal(orEmpty(sent.AffectedStocks))
	if err != nil {
		return fmt.Errorf("marshal affected stocks: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO news_analysis (article_id, sentiment, confidence, key_points, impact, affected_stocks)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		articleID, sent.Sentiment, sent.Confidence, string(keyPoints), sent.Impact, string(affected),
	)
	if err != nil {
		return fmt.Errorf("save sentiment: %w", err)
	}
	return nil
}

func (s *SQLiteStore) News(f NewsFilter) ([]model.Article, error) {
	query := `
		SELECT na.id, na.source, na.title, na.content, na.url, na.published_date, na.symbols_mentioned,
		       COALESCE(an.sentiment, 'pending'),
		       COALESCE(an.confidence, 0),
		       COALESCE(an.key_points, '[]'),
		       COALESCE(an.impact, 'unknown'),
		       COALESCE(an.affected_stocks, '[]')
		FROM news_articles na
		LEFT JOIN news_analysis an ON na.id = an.article_id
		WHERE 1=1`
	var args []interface{}

	if f.Source != "" {
		query += " AND na.source = ?"
		args = append(args, f.Source)
	}
	if f.Sentiment != "" {
		query += " AND an.sentiment = ?"
		args = append(args, f.Sentiment)
	}
	if f.Symbol != "" {
		query += " AND (na.symbols_mentioned LIKE ? OR an.affected_stocks LIKE ?)"
		pat := "%" + strings.ToUpper(f.Symbol) + "%"
		args = append(args, pat, pat)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	query += " ORDER BY na.published_date DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("news query: %w", err)
	}
	defer rows.Close()

	articles := []model.Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, *a)
	}
	return articles, rows.Err()
}

func (s *SQLiteStore) Article(id int64) (*model.Article, error) {
	row := s.db.QueryRow(`
		SELECT na.id, na.source, na.title, na.content, na.url, na.published_date, na.symbols_mentioned,
		       COALESCE(an.sentiment, 'pending'),
		       COALESCE(an.confidence, 0),
		       COALESCE(an.key_points, '[]'),
		       COALESCE(an.impact, 'unknown'),
		       COALESCE(an.affected_stocks, '[]')
		FROM news_articles na
		LEFT JOIN news_analysis an ON na.id = an.article_id
		WHERE na.id = ?`, id)

	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return a, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArticle(row rowScanner) (*model.Article, error) {
	var a model.Article
	var published, symbols, keyPoints, affected string
	err := row.Scan(&a.ID, &a.Source, &a.Title, &a.Content, &a.URL, &published, &symbols,
		&a.Sentiment, &a.AnalysisConfidence, &keyPoints, &a.Impact, &affected)
	if err != nil {
		return nil, err
	}
	a.PublishedDate = parseDBTime(published)
	if !a.PublishedDate.IsZero() {
		a.PublishedAgo = humanize.Time(a.PublishedDate)
	}
	a.Symbols = unmarshalList(symbols)
	a.KeyPoints = unmarshalList(keyPoints)
	a.AffectedStocks = unmarshalList(affected)
	return &a, nil
}

func (s *SQLiteStore) SavePattern(symbol string, p model.Pattern, explanation string, price float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO technical_patterns (symbol, pattern_type, confidence, ai_explanation, price_at_detection)
		 VALUES (?, ?, ?, ?, ?)`,
		strings.ToUpper(symbol), string(p.Type), float64(p.Confidence), explanation, price,
	)
	if err != nil {
		return fmt.Errorf("save pattern: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Patterns(symbol string, limit int) ([]StoredPattern, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, symbol, pattern_type, detected_date, confidence, ai_explanation, price_at_detection
		FROM technical_patterns`
	var args []interface{}
	if symbol != "" {
		query += " WHERE symbol = ?"
		args = append(args, strings.ToUpper(symbol))
	}
	query += " ORDER BY detected_date DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("patterns query: %w", err)
	}
	defer rows.Close()

	patterns := []StoredPattern{}
	for rows.Next() {
		var p StoredPattern
		if err := rows.Scan(&p.ID, &p.Symbol, &p.PatternType, &p.DetectedDate,
			&p.Confidence, &p.AIExplanation, &p.PriceAtDetection); err != nil {
			return nil, fmt.Errorf("scan pattern: %w", err)
		}
		patterns = append(patterns, p)
	}
	return patterns, rows.Err()
}

func (s *SQLiteStore) SavePrediction(p *model.Prediction) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	risks, err := json.Marshal(orEmpty(p.RiskFactors))
	if err != nil {
		return 0, fmt.Errorf("marshal risk factors: %w", err)
	}
	levels, err := json.Marshal(p.KeyLevels)
	if err != nil {
		return 0, fmt.Errorf("marshal key levels: %w", err)
	}
	res, err := s.db.Exec(
		`INSERT INTO predictions (symbol, direction, confidence, reasoning, risk_factors, key_levels)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		strings.ToUpper(p.Symbol), p.Direction, p.Confidence, p.Reasoning, string(risks), string(levels),
	)
	if err != nil {
		return 0, fmt.Errorf("save prediction: %w", err)
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) Predictions(symbol string, limit int) ([]model.Prediction, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, symbol, direction, confidence, reasoning, risk_factors, key_levels,
		created_date, actual_outcome, outcome_price, resolved_at FROM predictions`
	var args []interface{}
	if symbol != "" {
		query += " WHERE symbol = ?"
		args = append(args, strings.ToUpper(symbol))
	}
	query += " ORDER BY created_date DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("predictions query: %w", err)
	}
	defer rows.Close()

	preds := []model.Prediction{}
	for rows.Next() {
		var p model.Prediction
		var risks, levels, created string
		var outcome sql.NullString
		var price sql.NullFloat64
		var resolved sql.NullString
		if err := rows.Scan(&p.ID, &p.Symbol, &p.Direction, &p.Confidence, &p.Reasoning,
			&risks, &levels, &created, &outcome, &price, &resolved); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		p.RiskFactors = unmarshalList(risks)
		if err := json.Unmarshal([]byte(levels), &p.KeyLevels); err != nil {
			p.KeyLevels = model.KeyLevels{}
		}
		p.CreatedDate = parseDBTime(created)
		if outcome.Valid {
			p.ActualOutcome = &outcome.String
		}
		if price.Valid {
			p.OutcomePrice = &price.Float64
		}
		if resolved.Valid {
			t := parseDBTime(resolved.String)
			p.ResolvedAt = &t
		}
		preds = append(preds, p)
	}
	return preds, rows.Err()
}

func (s *SQLiteStore) ResolvePrediction(id int64, outcome string, price float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(
		`UPDATE predictions SET actual_outcome = ?, outcome_price = ?, resolved_at = datetime('now')
		 WHERE id = ?`, outcome, price, id)
	if err != nil {
		return fmt.Errorf("resolve prediction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) PredictionStats() (*model.PredictionStats, error) {
	stats := &model.PredictionStats{ByDirection: map[string]int{}}

	if err := s.db.QueryRow(`SELECT COUNT(*) FROM predictions`).Scan(&stats.Total); err != nil {
		return nil, fmt.Errorf("prediction stats: %w", err)
	}
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM predictions WHERE actual_outcome IS NOT NULL`).Scan(&stats.Resolved); err != nil {
		return nil, fmt.Errorf("prediction stats: %w", err)
	}
	if stats.Resolved > 0 {
		if err := s.db.QueryRow(
			`SELECT COUNT(*) FROM predictions WHERE actual_outcome = direction`).Scan(&stats.Correct); err != nil {
			return nil, fmt.Errorf("prediction stats: %w", err)
		}
		stats.Accuracy = roundTenth(float64(stats.Correct) / float64(stats.Resolved) * 100)
	}
	stats.Pending = stats.Total - stats.Resolved

	for _, dir := range []string{"bullish", "bearish", "neutral"} {
		var n int
		if err := s.db.QueryRow(
			`SELECT COUNT(*) FROM predictions WHERE direction = ?`, dir).Scan(&n); err != nil {
			return nil, fmt.Errorf("prediction stats: %w", err)
		}
		stats.ByDirection[dir] = n
	}
	return stats, nil
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite store")
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func parseDBTime(v string) time.Time {
	for _, layout := range []string{timeLayout, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func unmarshalList(v string) []string {
	var out []string
	if err := json.Unmarshal([]byte(v), &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func roundTenth(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

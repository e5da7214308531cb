// Package news aggregates market headlines from RSS feeds and tags them
// with the stocks they mention.
package news

import (
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"StockSage/internal/model"
)

const (
	perFeedLimit   = 20
	contentLimit   = 3000
	dedupThreshold = 0.8
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"
)

// Aggregator fetches the configured feeds concurrently and merges the
// results into one deduplicated, newest-first article list.
type Aggregator struct {
	Feeds  []Feed
	Client *http.Client
}

// NewAggregator builds an aggregator over the default feed set.
func NewAggregator() *Aggregator {
	return &Aggregator{
		Feeds:  DefaultFeeds,
		Client: &http.Client{Timeout: 15 * time.Second},
	}
}

// FetchAll pulls every feed in parallel. A failing feed is logged and
// skipped; the merge deduplicates near-identical headlines across
// sources, keeping the first seen.
func (a *Aggregator) FetchAll() []model.Article {
	type result struct {
		source   string
		articles []model.Article
		err      error
	}

	results := make(chan result, len(a.Feeds))
	var wg sync.WaitGroup
	for _, feed := range a.Feeds {
		wg.Add(1)
		go func(f Feed) {
			defer wg.Done()
			articles, err := a.fetchFeed(f)
			results <- result{source: f.Source, articles: articles, err: err}
		}(feed)
	}
	wg.Wait()
	close(results)

	// Collect in feed order so dedup winners are deterministic.
	bySource := make(map[string][]model.Article, len(a.Feeds))
	for r := range results {
		if r.err != nil {
			log.Printf("[WARN] feed %s failed: %v", r.source, r.err)
			continue
		}
		bySource[r.source] = r.articles
	}

	var all []model.Article
	var seenTitles []string
	for _, feed := range a.Feeds {
		for _, article := range bySource[feed.Source] {
			dup := false
			for _, seen := range seenTitles {
				if TitleSimilarity(article.Title, seen) > dedupThreshold {
					dup = true
					break
				}
			}
			if !dup {
				all = append(all, article)
				seenTitles = append(seenTitles, article.Title)
			}
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].PublishedDate.After(all[j].PublishedDate)
	})
	return all
}

// rss is the subset of RSS 2.0 the feeds above emit.
type rss struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
}

func (a *Aggregator) fetchFeed(feed Feed) ([]model.Article, error) {
	req, err := http.NewRequest("GET", feed.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch feed: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}
	return ParseFeed(feed.Source, body)
}

// ParseFeed converts raw RSS XML into articles: top N items, summaries
// stripped of markup, published dates normalized, symbols tagged.
func ParseFeed(source string, data []byte) ([]model.Article, error) {
	var doc rss
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	items := doc.Channel.Items
	if len(items) > perFeedLimit {
		items = items[:perFeedLimit]
	}

	articles := make([]model.Article, 0, len(items))
	for _, item := range items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		summary := truncate(cleanHTML(item.Description), contentLimit)
		articles = append(articles, model.Article{
			Source:        source,
			Title:         title,
			Content:       summary,
			URL:           strings.TrimSpace(item.Link),
			PublishedDate: parsePubDate(item.PubDate),
			Symbols:       MatchSymbols(title + " " + summary),
			Sentiment:     "pending",
			KeyPoints:     []string{},
			Impact:        "unknown",
		})
	}
	return articles, nil
}

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// truncate caps s at max bytes without splitting a UTF-8 sequence.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

func cleanHTML(s string) string {
	s = tagPattern.ReplaceAllString(s, " ")
	s = strings.NewReplacer(
		"&amp;", "&", "&lt;", "<", "&gt;", ">",
		"&quot;", `"`, "&#39;", "'", "&nbsp;", " ",
	).Replace(s)
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
}

// pubDateLayouts covers the date formats the feeds actually serve.
var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"2006-01-02 15:04:05",
}

func parsePubDate(v string) time.Time {
	v = strings.TrimSpace(v)
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC()
		}
	}
	return time.Now().UTC()
}

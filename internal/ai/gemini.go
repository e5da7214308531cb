// Package ai wraps the Gemini API for pattern explanations, news
// sentiment and stock predictions, rate-limited to stay inside the free
// tier.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const geminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models"

// ErrDailyLimit is returned once the day's request budget is spent.
var ErrDailyLimit = errors.New("daily Gemini API limit reached, try again tomorrow")

// Status reports current API usage for the status endpoint.
type Status struct {
	DailyRequestsUsed int  `json:"daily_requests_used"`
	DailyLimit        int  `json:"daily_limit"`
	Remaining         int  `json:"remaining"`
	APIConfigured     bool `json:"api_configured"`
}

// Client is a rate-limited Gemini text generation client. The minute
// limiter smooths request pacing; the daily counter hard-stops at the
// configured budget and resets at local midnight.
type Client struct {
	apiKey  string
	model   string
	limiter *rate.Limiter
	client  *http.Client

	mu         sync.Mutex
	dailyLimit int
	dailyUsed  int
	resetDate  string
}

// NewClient builds a Gemini client. An empty API key is allowed; the
// client reports itself unconfigured and every call fails fast.
func NewClient(apiKey, model string, requestsPerMinute, dailyLimit int) *Client {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	if requestsPerMinute <= 0 {
		requestsPerMinute = 13
	}
	if dailyLimit <= 0 {
		dailyLimit = 1400
	}
	return &Client{
		apiKey:     apiKey,
		model:      model,
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1),
		client:     &http.Client{Timeout: 60 * time.Second},
		dailyLimit: dailyLimit,
		resetDate:  time.Now().Format("2006-01-02"),
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool { return c.apiKey != "" }

// Usage returns a snapshot of the day's request budget.
func (c *Client) Usage() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rollDayLocked()
	return Status{
		DailyRequestsUsed: c.dailyUsed,
		DailyLimit:        c.dailyLimit,
		Remaining:         c.dailyLimit - c.dailyUsed,
		APIConfigured:     c.apiKey != "",
	}
}

func (c *Client) rollDayLocked() {
	today := time.Now().Format("2006-01-02")
	if today != c.resetDate {
		c.dailyUsed = 0
		c.resetDate = today
	}
}

func (c *Client) reserve() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rollDayLocked()
	if c.dailyUsed >= c.dailyLimit {
		return ErrDailyLimit
	}
	c.dailyUsed++
	return nil
}

// geminiRequest and geminiResponse mirror the generateContent wire shape.
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Generate sends a prompt and returns the model's text response.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("GEMINI_API_KEY not set")
	}
	if err := c.reserve(); err != nil {
		return "", err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s:generateContent?key=%s",
		geminiEndpoint, url.PathEscape(c.model), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("gemini api error %d: %s", parsed.Error.Code, parsed.Error.Message)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini: empty response")
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

// Package notifier pushes scan alerts to Telegram.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const telegramAPI = "https://api.telegram.org"

// TelegramNotifier delivers formatted alert messages to one chat via the
// Bot API. Messages are sent as HTML, matching FormatScanAlert's output.
type TelegramNotifier struct {
	botToken string
	chatID   string
	apiBase  string
	client   *http.Client
}

// NewTelegramNotifier creates a notifier. proxyURL may be empty.
func NewTelegramNotifier(botToken, chatID, proxyURL string) *TelegramNotifier {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		apiBase:  telegramAPI,
		client:   &http.Client{Timeout: 30 * time.Second, Transport: transport},
	}
}

// telegramEnvelope is the Bot API response wrapper. Telegram reports
// failures inside it even on non-200 statuses.
type telegramEnvelope struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send delivers one HTML message to the configured chat.
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	form := url.Values{
		"chat_id":    {t.chatID},
		"text":       {text},
		"parse_mode": {"HTML"},
	}
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("telegram send: read response: %w", err)
	}
	var envelope telegramEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("telegram send: status %d: %s", resp.StatusCode, body)
	}
	if !envelope.OK {
		return fmt.Errorf("telegram send: %s", envelope.Description)
	}
	return nil
}

// SendWithRetry makes up to attempts delivery attempts with doubling
// backoff, honoring context cancellation between them.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, attempts int) error {
	backoff := time.Second
	var lastErr error
	for n := 1; n <= attempts; n++ {
		lastErr = t.Send(ctx, text)
		if lastErr == nil {
			return nil
		}
		if n == attempts {
			break
		}
		log.Printf("[WARN] telegram send attempt %d of %d: %v", n, attempts, lastErr)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return fmt.Errorf("telegram send failed after %d attempts: %w", attempts, lastErr)
}

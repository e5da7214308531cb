package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"StockSage/internal/model"
)

const disclaimer = "This is AI-generated analysis for educational purposes only. Not financial advice."

// ExplainPattern asks the model for a beginner-friendly explanation of a
// detected pattern. Failures degrade to a short unavailability note so
// the analysis payload never breaks.
func (c *Client) ExplainPattern(ctx context.Context, symbol string, p model.Pattern, currentPrice float64) string {
	prompt := fmt.Sprintf(`You are a friendly stock market analyst explaining technical patterns to beginners in India.

Stock: %s
Current Price: ₹%.2f
Pattern Detected: %s
Description: %s
Signal: %s

Explain this pattern in simple, beginner-friendly language (150 words max):
1. What this pattern means
2. Why it matters for this stock
3. What investors should watch for next
4. Any important caveat

Keep it conversational and use Indian Rupee (₹) for prices. Do NOT give direct buy/sell advice.`,
		symbol, currentPrice, p.Type, p.Description, p.Signal)

	text, err := c.Generate(ctx, prompt)
	if err != nil {
		return fmt.Sprintf("AI explanation unavailable: %v", err)
	}
	return text
}

// AnalyzeSentiment classifies one news article. The response contract is
// strict JSON; out-of-range or missing fields are clamped to sane
// defaults, and a parse failure returns a neutral low-confidence reading
// rather than an error.
func (c *Client) AnalyzeSentiment(ctx context.Context, title, content string) *model.Sentiment {
	content = truncate(content, 2000)
	prompt := fmt.Sprintf(`Analyze this Indian stock market news article and return ONLY valid JSON (no markdown, no backticks):

Title: %s
Content: %s

Return this exact JSON structure:
{
    "sentiment": "bullish" or "bearish" or "neutral",
    "confidence": <number 0-100>,
    "key_points": ["point1", "point2", "point3"],
    "affected_stocks": ["SYMBOL1", "SYMBOL2"],
    "impact": "high" or "medium" or "low",
    "summary": "one line summary"
}

Use NSE stock symbols (e.g., RELIANCE, TCS, INFY). If no specific stocks are mentioned, return empty array.
Be accurate with sentiment - only mark bullish/bearish if there's clear evidence.`, title, content)

	text, err := c.Generate(ctx, prompt)
	if err != nil {
		return &model.Sentiment{
			Sentiment:      "neutral",
			Confidence:     0,
			KeyPoints:      []string{fmt.Sprintf("Error: %v", err)},
			AffectedStocks: []string{},
			Impact:         "low",
			Summary:        title,
		}
	}

	var result model.Sentiment
	if err := json.Unmarshal([]byte(stripFences(text)), &result); err != nil {
		return &model.Sentiment{
			Sentiment:      "neutral",
			Confidence:     30,
			KeyPoints:      []string{"AI analysis parsing failed"},
			AffectedStocks: []string{},
			Impact:         "low",
			Summary:        title,
		}
	}

	switch result.Sentiment {
	case "bullish", "bearish", "neutral":
	default:
		result.Sentiment = "neutral"
	}
	result.Confidence = clamp(result.Confidence, 0, 100)
	if len(result.KeyPoints) > 5 {
		result.KeyPoints = result.KeyPoints[:5]
	}
	if result.KeyPoints == nil {
		result.KeyPoints = []string{}
	}
	if result.AffectedStocks == nil {
		result.AffectedStocks = []string{}
	}
	switch result.Impact {
	case "high", "medium", "low":
	default:
		result.Impact = "medium"
	}
	return &result
}

// GeneratePrediction combines price action, detected patterns, indicators
// and recent news into one directional call. Fallbacks keep the endpoint
// functional when the model misbehaves.
func (c *Client) GeneratePrediction(ctx context.Context, data *model.StockData,
	patterns []model.Pattern, ind *model.IndicatorSet, articles []model.Article) *model.Prediction {

	patternText := "No significant patterns detected."
	if len(patterns) > 0 {
		var sb strings.Builder
		for _, p := range patterns {
			fmt.Fprintf(&sb, "- %s: %s (Signal: %s, Confidence: %d%%)\n",
				p.Type, p.Description, p.Signal, p.Confidence)
		}
		patternText = sb.String()
	}

	indicatorText := "N/A"
	if ind != nil {
		indicatorText = fmt.Sprintf(`RSI: %.2f
MACD: %.2f
SMA 50: %s
SMA 200: %s
Support: ₹%.2f
Resistance: ₹%.2f`,
			ind.CurrentRSI, ind.CurrentMACD,
			fmtOptional(ind.CurrentSMA50), fmtOptional(ind.CurrentSMA200),
			ind.Support, ind.Resistance)
	}

	newsText := "No recent news available."
	if len(articles) > 0 {
		var sb strings.Builder
		limit := len(articles)
		if limit > 5 {
			limit = 5
		}
		for _, a := range articles[:limit] {
			fmt.Fprintf(&sb, "- %s (Sentiment: %s)\n", a.Title, a.Sentiment)
		}
		newsText = sb.String()
	}

	prompt := fmt.Sprintf(`You are an expert Indian stock market analyst. Analyze the following data and provide a prediction.

Stock: %s
Current Price: ₹%.2f
Change Today: %.2f%%

Technical Patterns:
%s

Technical Indicators:
%s

Recent News:
%s

Based on this analysis, return ONLY valid JSON (no markdown, no backticks):
{
    "direction": "bullish" or "bearish" or "neutral",
    "confidence": <number 0-100>,
    "short_term_outlook": "1-2 weeks outlook in 1-2 sentences",
    "reasoning": "2-3 sentences explaining why",
    "risk_factors": ["risk1", "risk2", "risk3"],
    "key_levels": {
        "support": <price number>,
        "resistance": <price number>,
        "stop_loss": <price number>,
        "target": <price number>
    },
    "recommendation_summary": "One line for beginners"
}

Important: Use Indian Rupee (₹). Be balanced and honest. Do NOT give direct buy/sell advice.
State this is AI analysis, not financial advice.`,
		data.Symbol, data.CurrentPrice, data.ChangePercent, patternText, indicatorText, newsText)

	text, err := c.Generate(ctx, prompt)
	if err != nil {
		return &model.Prediction{
			Symbol:                data.Symbol,
			Direction:             "neutral",
			Confidence:            0,
			Reasoning:             fmt.Sprintf("Error: %v", err),
			ShortTermOutlook:      "Unable to determine.",
			RiskFactors:           []string{err.Error()},
			RecommendationSummary: "Analysis temporarily unavailable.",
			Disclaimer:            disclaimer,
		}
	}

	var result model.Prediction
	if err := json.Unmarshal([]byte(stripFences(text)), &result); err != nil {
		return &model.Prediction{
			Symbol:                data.Symbol,
			Direction:             "neutral",
			Confidence:            30,
			Reasoning:             "AI prediction parsing failed. Please retry.",
			ShortTermOutlook:      "Unable to determine.",
			RiskFactors:           []string{"AI analysis error"},
			RecommendationSummary: "Analysis temporarily unavailable.",
			Disclaimer:            disclaimer,
		}
	}

	result.Symbol = data.Symbol
	switch result.Direction {
	case "bullish", "bearish", "neutral":
	default:
		result.Direction = "neutral"
	}
	result.Confidence = clamp(result.Confidence, 0, 100)
	if len(result.RiskFactors) > 5 {
		result.RiskFactors = result.RiskFactors[:5]
	}
	if result.RiskFactors == nil {
		result.RiskFactors = []string{}
	}
	if result.Reasoning == "" {
		result.Reasoning = "Unable to generate detailed reasoning."
	}
	result.Disclaimer = disclaimer
	return &result
}

// stripFences removes the markdown code fences the model sometimes wraps
// around JSON despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if i := strings.Index(s, "\n"); i >= 0 {
			s = s[i+1:]
		}
	}
	if strings.HasSuffix(s, "```") {
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
	}
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

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

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func fmtOptional(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", *v)
}

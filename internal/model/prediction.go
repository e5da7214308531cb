package model

import "time"

// KeyLevels are the price levels an AI prediction calls out.
type KeyLevels struct {
	Support    float64 `json:"support,omitempty"`
	Resistance float64 `json:"resistance,omitempty"`
	StopLoss   float64 `json:"stop_loss,omitempty"`
	Target     float64 `json:"target,omitempty"`
}

// Prediction is one AI-generated directional call, tracked to completion
// so accuracy can be measured later.
type Prediction struct {
	ID                    int64      `json:"id"`
	Symbol                string     `json:"symbol"`
	Direction             string     `json:"direction"`
	Confidence            float64    `json:"confidence"`
	ShortTermOutlook      string     `json:"short_term_outlook,omitempty"`
	Reasoning             string     `json:"reasoning"`
	RiskFactors           []string   `json:"risk_factors"`
	KeyLevels             KeyLevels  `json:"key_levels"`
	RecommendationSummary string     `json:"recommendation_summary,omitempty"`
	Disclaimer            string     `json:"disclaimer,omitempty"`
	CreatedDate           time.Time  `json:"created_date"`
	ActualOutcome         *string    `json:"actual_outcome"`
	OutcomePrice          *float64   `json:"outcome_price"`
	ResolvedAt            *time.Time `json:"resolved_at"`
}

// PredictionStats summarizes prediction accuracy for the analytics view.
type PredictionStats struct {
	Total       int            `json:"total_predictions"`
	Resolved    int            `json:"resolved"`
	Correct     int            `json:"correct"`
	Accuracy    float64        `json:"accuracy"`
	Pending     int            `json:"pending"`
	ByDirection map[string]int `json:"by_direction"`
}

package model

import "time"

// StockData is the quote-plus-history payload for one symbol.
type StockData struct {
	Symbol        string    `json:"symbol"`
	Ticker        string    `json:"ticker"`
	Name          string    `json:"name"`
	CurrentPrice  float64   `json:"current_price"`
	PreviousClose float64   `json:"previous_close"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	DayHigh       float64   `json:"day_high"`
	DayLow        float64   `json:"day_low"`
	Volume        int64     `json:"volume"`
	History       []Bar     `json:"history"`
	FetchedAt     time.Time `json:"-"`
}

// Quote is a lightweight current-price snapshot used by the watchlist and
// dashboard views.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Volume        int64   `json:"volume"`
	VolumeText    string  `json:"volume_text,omitempty"`
}

// WatchItem is one entry of the user's watchlist.
type WatchItem struct {
	ID        int64     `json:"id"`
	Symbol    string    `json:"symbol"`
	Name      string    `json:"name"`
	Notes     string    `json:"notes"`
	AddedDate time.Time `json:"added_date"`
}

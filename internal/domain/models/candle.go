package models

import "time"

// Candle is a time-bucket OHLCV aggregate. Exactly one open candle exists per
// (symbol, timeframe) context; older candles are immutable once a new bucket
// opens.
type Candle struct {
	Bucket time.Time `json:"bucket"`
	Symbol string    `json:"symbol"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Tick is one engine step emitted to observers and the archive pipeline.
type Tick struct {
	Symbol    string     `json:"symbol"`
	Timestamp int64      `json:"t"` // unix ms
	Price     float64    `json:"price"`
	Volume    float64    `json:"volume"`
	Regime    RegimeKind `json:"regime"`
	Mode      string     `json:"mode"` // "ambient" or "deal"
}

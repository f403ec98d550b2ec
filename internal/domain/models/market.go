package models

import "time"

// RegimeKind names a volatility/drift parameter bundle.
type RegimeKind string

const (
	RegimeTrending RegimeKind = "TRENDING"
	RegimeChoppy   RegimeKind = "CHOPPY"
	RegimeHighVol  RegimeKind = "HIGH_VOL"
	RegimeLowVol   RegimeKind = "LOW_VOL"
)

// RegimeState carries the concrete tunables of the active regime.
// Ephemeral: regenerated on a timer, never persisted.
type RegimeState struct {
	Kind       RegimeKind `json:"kind"`
	DriftBps   float64    `json:"driftBps"` // per second
	NoiseBps   float64    `json:"noiseBps"`
	WickBps    float64    `json:"wickBps"`
	VolumeBase float64    `json:"volumeBase"`
	VolumeJit  float64    `json:"volumeJitter"`
	MeanRevert float64    `json:"meanRevert"`
	Direction  int        `json:"direction,omitempty"` // ±1, TRENDING only
}

// SymbolParams holds the static physical constants for one symbol.
type SymbolParams struct {
	Symbol      string  `json:"symbol"`
	Label       string  `json:"label"`
	BasePrice   float64 `json:"basePrice"`
	DriftBps    float64 `json:"driftBps"`
	NoiseBps    float64 `json:"noiseBps"`
	WickBps     float64 `json:"wickBps"`
	MeanRevert  float64 `json:"meanRevert"`
	VolumeBase  float64 `json:"volumeBase"`
	VolumeJit   float64 `json:"volumeJitter"`
	MinPrice    float64 `json:"minPrice"`
	MaxPrice    float64 `json:"maxPrice"`
	FeeBps      float64 `json:"feeBps"`
	MinNotional float64 `json:"minNotional"`
	MaxLeverage int     `json:"maxLeverage"`
	Persona     string  `json:"persona"`
}

// EventKind names a one-shot manually triggered market shock.
type EventKind string

const (
	EventNewsSpike EventKind = "NEWS_SPIKE"
	EventDump      EventKind = "DUMP"
	EventSqueeze   EventKind = "SQUEEZE"
)

// MarketEvent is an injected shock decayed exponentially by the tick engine
// until it naturally expires.
type MarketEvent struct {
	Kind      EventKind `json:"kind"`
	Strength  float64   `json:"strength"`  // operator multiplier
	Magnitude float64   `json:"magnitude"` // signed fraction of price at t=0
	HalfLife  float64   `json:"halfLifeSec"`
	StartedAt time.Time `json:"startedAt"`
}

package models

import "time"

// EngineControlState is the externally visible snapshot recomputed on demand
// by the control surface; never partial, never persisted.
type EngineControlState struct {
	Symbol         string        `json:"symbol"`
	Timeframe      string        `json:"timeframe"`
	Params         SymbolParams  `json:"params"`
	RegimeOverride RegimeKind    `json:"regimeOverride,omitempty"`
	Intensity      float64       `json:"intensity"`
	ActiveRegime   RegimeState   `json:"activeRegime"`
	RunningDealID  string        `json:"runningDealId,omitempty"`
	StatusText     string        `json:"statusText"`
	Price          float64       `json:"price"`
	ActiveEvent    *MarketEvent  `json:"activeEvent,omitempty"`
	LatestSignals  *SignalBatch  `json:"latestSignals,omitempty"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// TradingRules are the per-symbol execution parameters exposed to the
// trade-execution collaborators.
type TradingRules struct {
	Symbol      string  `json:"symbol"`
	FeeBps      float64 `json:"feeBps"`
	MinNotional float64 `json:"minNotional"`
	MaxLeverage int     `json:"maxLeverage"`
	VolFactor   float64 `json:"volFactor"` // regime-derived volatility multiplier
}

// EngineConfig is the persisted operator selection (config row read at
// startup and on explicit change).
type EngineConfig struct {
	Symbol         string     `json:"symbol"`
	Timeframe      string     `json:"timeframe"`
	RegimeOverride RegimeKind `json:"regimeOverride,omitempty"`
	Intensity      float64    `json:"intensity"`
}

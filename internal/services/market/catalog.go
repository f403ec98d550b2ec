package market

import (
	"SimPulse/internal/domain/models"
)

// Catalog holds the static per-symbol physical constants. Values are tuned
// for visual plausibility on a demo chart, not statistical realism.
var catalog = map[string]models.SymbolParams{
	"BTC-USDT": {
		Symbol:      "BTC-USDT",
		Label:       "Bitcoin",
		BasePrice:   64250,
		DriftBps:    0.9,
		NoiseBps:    4.5,
		WickBps:     9,
		MeanRevert:  0.045,
		VolumeBase:  8.2,
		VolumeJit:   3.4,
		MinPrice:    1000,
		MaxPrice:    500000,
		FeeBps:      8,
		MinNotional: 10,
		MaxLeverage: 100,
		Persona:     "macro-driven whale flows with sharp liquidity sweeps",
	},
	"ETH-USDT": {
		Symbol:      "ETH-USDT",
		Label:       "Ethereum",
		BasePrice:   3180,
		DriftBps:    1.1,
		NoiseBps:    5.5,
		WickBps:     11,
		MeanRevert:  0.05,
		VolumeBase:  42,
		VolumeJit:   18,
		MinPrice:    50,
		MaxPrice:    50000,
		FeeBps:      8,
		MinNotional: 10,
		MaxLeverage: 75,
		Persona:     "beta to BTC with gas-cycle rotations",
	},
	"SOL-USDT": {
		Symbol:      "SOL-USDT",
		Label:       "Solana",
		BasePrice:   148.5,
		DriftBps:    1.6,
		NoiseBps:    8,
		WickBps:     16,
		MeanRevert:  0.06,
		VolumeBase:  520,
		VolumeJit:   240,
		MinPrice:    1,
		MaxPrice:    5000,
		FeeBps:      10,
		MinNotional: 5,
		MaxLeverage: 50,
		Persona:     "momentum bursts, retail chase, violent retraces",
	},
	"XRP-USDT": {
		Symbol:      "XRP-USDT",
		Label:       "Ripple",
		BasePrice:   0.5235,
		DriftBps:    1.2,
		NoiseBps:    6.5,
		WickBps:     13,
		MeanRevert:  0.055,
		VolumeBase:  90000,
		VolumeJit:   38000,
		MinPrice:    0.01,
		MaxPrice:    50,
		FeeBps:      10,
		MinNotional: 5,
		MaxLeverage: 50,
		Persona:     "headline-sensitive chop with long flat stretches",
	},
	"DOGE-USDT": {
		Symbol:      "DOGE-USDT",
		Label:       "Dogecoin",
		BasePrice:   0.1305,
		DriftBps:    2,
		NoiseBps:    11,
		WickBps:     22,
		MeanRevert:  0.07,
		VolumeBase:  420000,
		VolumeJit:   190000,
		MinPrice:    0.001,
		MaxPrice:    10,
		FeeBps:      12,
		MinNotional: 2,
		MaxLeverage: 25,
		Persona:     "sentiment-driven spikes, thin books, fast fades",
	},
}

// DefaultSymbol is used when no config row exists yet.
const DefaultSymbol = "BTC-USDT"

// Lookup returns the catalog entry for symbol, falling back to the default
// symbol when unknown so a bad selection can never stall the engine.
func Lookup(symbol string) models.SymbolParams {
	if p, ok := catalog[symbol]; ok {
		return p
	}
	return catalog[DefaultSymbol]
}

// Known reports whether symbol exists in the catalog.
func Known(symbol string) bool {
	_, ok := catalog[symbol]
	return ok
}

// Symbols returns all catalog symbols.
func Symbols() []string {
	out := make([]string, 0, len(catalog))
	for s := range catalog {
		out = append(out, s)
	}
	return out
}

// eventArchetype generates the magnitude and decay for one shock kind.
type eventArchetype struct {
	magnitude float64 // signed fraction of price at t=0, before strength
	halfLife  float64 // seconds
}

var archetypes = map[models.EventKind]eventArchetype{
	models.EventNewsSpike: {magnitude: 0.012, halfLife: 6},
	models.EventDump:      {magnitude: -0.02, halfLife: 9},
	models.EventSqueeze:   {magnitude: 0.028, halfLife: 4.5},
}

// NewEvent instantiates a one-shot market event with the operator strength
// multiplier applied.
func NewEvent(kind models.EventKind, strength float64, rng *RNG) *models.MarketEvent {
	a, ok := archetypes[kind]
	if !ok {
		return nil
	}
	if strength <= 0 {
		strength = 1
	}
	// 15% jitter so repeated triggers do not look identical
	jitter := 1 + (rng.Float64()-0.5)*0.3
	return &models.MarketEvent{
		Kind:      kind,
		Strength:  strength,
		Magnitude: a.magnitude * strength * jitter,
		HalfLife:  a.halfLife,
	}
}

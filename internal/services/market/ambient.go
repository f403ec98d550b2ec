package market

import (
	"math"
	"time"

	"SimPulse/internal/domain/models"
)

// AmbientState is the resumable per-symbol simulation state captured when the
// engine switches away from a symbol and restored when it switches back.
type AmbientState struct {
	Symbol         string
	Price          float64
	Candles        []models.Candle
	Regime         models.RegimeState
	RegimeDeadline time.Time
	LastTick       time.Time
	Phase          float64 // waveform origin offset, fixed per seed
	StartedAt      time.Time
}

// Clone deep-copies the state so an archived snapshot never aliases the live
// working copy.
func (s *AmbientState) Clone() *AmbientState {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Candles = make([]models.Candle, len(s.Candles))
	copy(cp.Candles, s.Candles)
	return &cp
}

// NewAmbientState seeds a fresh ambient series for a symbol.
func NewAmbientState(symbol string, params models.SymbolParams, rng *RNG, now time.Time) *AmbientState {
	return &AmbientState{
		Symbol:    symbol,
		Price:     params.BasePrice * (1 + (rng.Float64()-0.5)*0.01),
		Phase:     rng.Float64() * 2 * math.Pi,
		StartedAt: now,
		LastTick:  now,
	}
}

// Waveform component periods and relative amplitudes for the ambient anchor.
const (
	macroPeriodSec = 420.0
	microPeriodSec = 37.0
	longPeriodSec  = 2900.0

	macroAmp = 0.011
	microAmp = 0.0028
	longAmp  = 0.024
)

// AmbientAnchor is the non-scripted "fair value" for a symbol: three stacked
// sine components around the base price. Continuous in elapsed time, so a
// restored symbol picks up where its waveform left off.
func AmbientAnchor(params models.SymbolParams, phase float64, elapsed float64) float64 {
	macro := math.Sin(phase+2*math.Pi*elapsed/macroPeriodSec) * macroAmp
	micro := math.Sin(phase*1.7+2*math.Pi*elapsed/microPeriodSec) * microAmp
	long := math.Sin(phase*0.4+2*math.Pi*elapsed/longPeriodSec) * longAmp
	return params.BasePrice * (1 + macro + micro + long)
}

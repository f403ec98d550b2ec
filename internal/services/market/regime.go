package market

import (
	"time"

	"SimPulse/internal/domain/models"
)

// Regime rotation tunables.
const (
	rerollChance      = 0.44 // anti-stickiness when the draw repeats
	inheritTrendDir   = 0.57 // TRENDING direction carried over
	organicSwitchProb = 0.003
	minRegimeLife     = 12 * time.Second
	maxRegimeLife     = 24 * time.Second
)

// regime weights for the random draw.
var regimeWeights = []struct {
	kind   models.RegimeKind
	weight float64
}{
	{models.RegimeTrending, 0.32},
	{models.RegimeChoppy, 0.28},
	{models.RegimeHighVol, 0.24},
	{models.RegimeLowVol, 0.16},
}

// RegimeModel rotates named volatility/drift bundles on a randomized timer.
type RegimeModel struct {
	rng *RNG
}

func NewRegimeModel(rng *RNG) *RegimeModel {
	return &RegimeModel{rng: rng}
}

// drawKind performs the weighted draw with the anti-stickiness reroll.
func (m *RegimeModel) drawKind(prev models.RegimeKind) models.RegimeKind {
	kind := m.weighted()
	if kind == prev && m.rng.Float64() < rerollChance {
		for kind == prev {
			kind = m.weighted()
		}
	}
	return kind
}

func (m *RegimeModel) weighted() models.RegimeKind {
	x := m.rng.Float64()
	acc := 0.0
	for _, w := range regimeWeights {
		acc += w.weight
		if x < acc {
			return w.kind
		}
	}
	return regimeWeights[len(regimeWeights)-1].kind
}

// Next produces the regime state that follows prev. A non-empty override
// skips the draw and deterministically produces the forced kind. Tunables
// are scaled by the symbol base magnitudes and the operator intensity.
func (m *RegimeModel) Next(prev models.RegimeState, params models.SymbolParams, override models.RegimeKind, intensity float64) models.RegimeState {
	var kind models.RegimeKind
	if override != "" {
		kind = override
	} else {
		kind = m.drawKind(prev.Kind)
	}

	if intensity <= 0 {
		intensity = 1
	}

	st := models.RegimeState{Kind: kind}
	switch kind {
	case models.RegimeTrending:
		st.DriftBps = params.DriftBps * 3.2
		st.NoiseBps = params.NoiseBps * 0.9
		st.WickBps = params.WickBps * 0.8
		st.VolumeBase = params.VolumeBase * 1.3
		st.VolumeJit = params.VolumeJit * 1.1
		st.MeanRevert = params.MeanRevert * 0.6
		st.Direction = m.trendDirection(prev)
	case models.RegimeChoppy:
		st.DriftBps = params.DriftBps * 0.4
		st.NoiseBps = params.NoiseBps * 1.4
		st.WickBps = params.WickBps * 1.2
		st.VolumeBase = params.VolumeBase
		st.VolumeJit = params.VolumeJit * 1.4
		st.MeanRevert = params.MeanRevert * 1.5
	case models.RegimeHighVol:
		st.DriftBps = params.DriftBps * 1.2
		st.NoiseBps = params.NoiseBps * 2.6
		st.WickBps = params.WickBps * 2.8
		st.VolumeBase = params.VolumeBase * 1.9
		st.VolumeJit = params.VolumeJit * 2.2
		st.MeanRevert = params.MeanRevert * 0.9
	case models.RegimeLowVol:
		st.DriftBps = params.DriftBps * 0.3
		st.NoiseBps = params.NoiseBps * 0.45
		st.WickBps = params.WickBps * 0.4
		st.VolumeBase = params.VolumeBase * 0.6
		st.VolumeJit = params.VolumeJit * 0.5
		st.MeanRevert = params.MeanRevert * 1.2
	}

	st.DriftBps *= intensity
	st.NoiseBps *= intensity
	st.WickBps *= intensity
	return st
}

// trendDirection inherits the previous TRENDING direction most of the time
// to avoid whiplash, otherwise flips a coin.
func (m *RegimeModel) trendDirection(prev models.RegimeState) int {
	if prev.Kind == models.RegimeTrending && prev.Direction != 0 && m.rng.Float64() < inheritTrendDir {
		return prev.Direction
	}
	if m.rng.Float64() < 0.5 {
		return 1
	}
	return -1
}

// NextDeadline returns when the regime should rotate.
func (m *RegimeModel) NextDeadline(now time.Time) time.Time {
	span := maxRegimeLife - minRegimeLife
	return now.Add(minRegimeLife + time.Duration(m.rng.Float64()*float64(span)))
}

// ShouldRotate reports whether the regime must be regenerated this tick:
// either the scheduled deadline passed or the small organic probability hit.
func (m *RegimeModel) ShouldRotate(now, deadline time.Time) bool {
	if now.After(deadline) {
		return true
	}
	return m.rng.Float64() < organicSwitchProb
}

package market

import (
	"SimPulse/internal/domain/models"
)

// Scripted scenario phase lengths, in seconds.
const (
	dropRampSec  = 4
	jumpRampSec  = 3
	jumpDecaySec = 5
	scenarioNoise = 0.0006 // ~0.06% of base, zero-mean
)

// ScenarioAnchor computes the deterministic anchor price of a scripted deal
// at elapsed seconds since claim. The drop and every jump contribute additive
// percentage biases that sum algebraically; overlaps are allowed.
func ScenarioAnchor(d *models.Deal, elapsed float64) float64 {
	if d == nil || d.BasePrice <= 0 {
		return 0
	}
	bias := dropBias(d, elapsed)
	for _, j := range d.Jumps {
		bias += jumpBias(j, elapsed)
	}
	return d.BasePrice * (1 + bias/100)
}

// NoisyScenarioAnchor adds the small multiplicative noise term on top of the
// deterministic anchor. Kept separate so the pure path stays testable.
func NoisyScenarioAnchor(d *models.Deal, elapsed float64, rng *RNG) float64 {
	anchor := ScenarioAnchor(d, elapsed)
	if anchor <= 0 {
		return anchor
	}
	return anchor + d.BasePrice*scenarioNoise*(rng.Float64()*2-1)
}

// dropBias is the scripted drop contribution in percent: zero before the
// delay, then ramped to -DropPct over dropRampSec and held for the rest of
// the deal.
func dropBias(d *models.Deal, elapsed float64) float64 {
	if d.DropPct <= 0 || elapsed < d.DropDelay {
		return 0
	}
	ramp := (elapsed - d.DropDelay) / dropRampSec
	if ramp > 1 {
		ramp = 1
	}
	return -d.DropPct * ramp
}

// jumpBias is one jump's contribution in percent: ramp-up over the first
// jumpRampSec of its window, a flat hold for HoldSec, then linear decay to
// zero over jumpDecaySec.
func jumpBias(j models.Jump, elapsed float64) float64 {
	t := elapsed - j.DelaySec
	if t < 0 || j.MagnitudePct <= 0 {
		return 0
	}
	switch {
	case t < jumpRampSec:
		return j.MagnitudePct * (t / jumpRampSec)
	case t < jumpRampSec+j.HoldSec:
		return j.MagnitudePct
	case t < jumpRampSec+j.HoldSec+jumpDecaySec:
		left := 1 - (t-jumpRampSec-j.HoldSec)/jumpDecaySec
		return j.MagnitudePct * left
	default:
		return 0
	}
}

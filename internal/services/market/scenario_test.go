package market

import (
	"math"
	"testing"

	"SimPulse/internal/domain/models"
)

func dealFixture() *models.Deal {
	return &models.Deal{
		ID:          "d1",
		Symbol:      "BTC-USDT",
		BasePrice:   100,
		DurationSec: 90,
		DropDelay:   10,
		DropPct:     8,
	}
}

func TestScenarioAnchorBeforeDrop(t *testing.T) {
	d := dealFixture()
	if got := ScenarioAnchor(d, 5); got != 100 {
		t.Fatalf("expected base price before drop, got %v", got)
	}
	// ramp starts exactly at the delay
	if got := ScenarioAnchor(d, 10); got != 100 {
		t.Fatalf("expected base price at ramp start, got %v", got)
	}
}

func TestScenarioAnchorDropRamp(t *testing.T) {
	d := dealFixture()
	// halfway through the 4s ramp: bias = -8% * 0.5
	got := ScenarioAnchor(d, 12)
	want := 100 * (1 - 0.04)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %v at ramp midpoint, got %v", want, got)
	}
}

func TestScenarioAnchorDropHeld(t *testing.T) {
	d := dealFixture()
	got := ScenarioAnchor(d, 14)
	want := 92.0
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected full ramp at %v, got %v", want, got)
	}
	// stays held to the end of the deal
	if g := ScenarioAnchor(d, 85); math.Abs(g-want) > 1e-9 {
		t.Fatalf("expected drop still held at %v, got %v", want, g)
	}
}

func TestScenarioAnchorJumpPhases(t *testing.T) {
	d := dealFixture()
	d.DropPct = 0
	d.Jumps = []models.Jump{{DelaySec: 5, MagnitudePct: 2, HoldSec: 4}}

	cases := []struct {
		elapsed float64
		want    float64
	}{
		{4, 100},         // before the window
		{6.5, 101},       // half of the 3s ramp
		{9, 102},         // held
		{12, 102},        // end of hold (5+3+4)
		{14.5, 101},      // halfway through the 5s decay
		{17.5, 100},      // fully decayed
	}
	for _, c := range cases {
		got := ScenarioAnchor(d, c.elapsed)
		if math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("elapsed %v: expected %v, got %v", c.elapsed, c.want, got)
		}
	}
}

func TestScenarioAnchorAdditiveOverlap(t *testing.T) {
	d := dealFixture()
	d.Jumps = []models.Jump{{DelaySec: 10, MagnitudePct: 5, HoldSec: 30}}
	// at 20s: drop fully ramped (-8) and jump held (+5) sum to -3
	got := ScenarioAnchor(d, 20)
	want := 97.0
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected additive bias %v, got %v", want, got)
	}
}

func TestNoisyScenarioAnchorStaysClose(t *testing.T) {
	d := dealFixture()
	rng := NewRNG(7)
	pure := ScenarioAnchor(d, 20)
	for i := 0; i < 200; i++ {
		got := NoisyScenarioAnchor(d, 20, rng)
		if math.Abs(got-pure) > d.BasePrice*scenarioNoise+1e-9 {
			t.Fatalf("noise out of band: pure %v noisy %v", pure, got)
		}
	}
}

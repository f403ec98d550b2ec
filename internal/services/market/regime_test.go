package market

import (
	"testing"
	"time"

	"SimPulse/internal/domain/models"
)

func TestRegimeOverrideForcesKind(t *testing.T) {
	m := NewRegimeModel(NewRNG(1))
	p := Lookup("BTC-USDT")
	for i := 0; i < 50; i++ {
		st := m.Next(models.RegimeState{}, p, models.RegimeHighVol, 1)
		if st.Kind != models.RegimeHighVol {
			t.Fatalf("override ignored, got %s", st.Kind)
		}
	}
}

func TestRegimeIntensityScalesMagnitudes(t *testing.T) {
	p := Lookup("BTC-USDT")
	base := NewRegimeModel(NewRNG(3)).Next(models.RegimeState{}, p, models.RegimeChoppy, 1)
	hot := NewRegimeModel(NewRNG(3)).Next(models.RegimeState{}, p, models.RegimeChoppy, 2)
	if hot.NoiseBps != base.NoiseBps*2 {
		t.Fatalf("noise not scaled: base %v hot %v", base.NoiseBps, hot.NoiseBps)
	}
	if hot.DriftBps != base.DriftBps*2 {
		t.Fatalf("drift not scaled: base %v hot %v", base.DriftBps, hot.DriftBps)
	}
	// volume is not an intensity target
	if hot.VolumeBase != base.VolumeBase {
		t.Fatalf("volume must not scale with intensity")
	}
}

func TestRegimeTrendingHasDirection(t *testing.T) {
	m := NewRegimeModel(NewRNG(5))
	p := Lookup("SOL-USDT")
	st := m.Next(models.RegimeState{}, p, models.RegimeTrending, 1)
	if st.Direction != 1 && st.Direction != -1 {
		t.Fatalf("trending direction must be ±1, got %d", st.Direction)
	}
}

func TestRegimeDeadlineWindow(t *testing.T) {
	m := NewRegimeModel(NewRNG(9))
	now := time.Now()
	for i := 0; i < 100; i++ {
		d := m.NextDeadline(now)
		life := d.Sub(now)
		if life < minRegimeLife || life > maxRegimeLife {
			t.Fatalf("deadline outside window: %v", life)
		}
	}
}

func TestRegimeDrawCoversAllKinds(t *testing.T) {
	m := NewRegimeModel(NewRNG(11))
	p := Lookup("ETH-USDT")
	seen := map[models.RegimeKind]bool{}
	prev := models.RegimeState{}
	for i := 0; i < 500; i++ {
		st := m.Next(prev, p, "", 1)
		seen[st.Kind] = true
		prev = st
	}
	for _, k := range []models.RegimeKind{models.RegimeTrending, models.RegimeChoppy, models.RegimeHighVol, models.RegimeLowVol} {
		if !seen[k] {
			t.Fatalf("kind %s never drawn", k)
		}
	}
}

func TestShouldRotateAfterDeadline(t *testing.T) {
	m := NewRegimeModel(NewRNG(13))
	now := time.Now()
	if !m.ShouldRotate(now.Add(time.Second), now) {
		t.Fatalf("expected rotation after deadline")
	}
}

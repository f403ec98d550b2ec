package market

import (
	"math"
	"testing"
	"time"

	"SimPulse/internal/domain/models"
)

func TestAmbientAnchorBounded(t *testing.T) {
	p := Lookup("BTC-USDT")
	maxDev := macroAmp + microAmp + longAmp
	for e := 0.0; e < 5000; e += 13.7 {
		got := AmbientAnchor(p, 1.3, e)
		dev := math.Abs(got-p.BasePrice) / p.BasePrice
		if dev > maxDev+1e-9 {
			t.Fatalf("anchor deviation %v exceeds waveform bound %v", dev, maxDev)
		}
	}
}

func TestAmbientAnchorDeterministic(t *testing.T) {
	p := Lookup("ETH-USDT")
	a := AmbientAnchor(p, 0.7, 123.4)
	b := AmbientAnchor(p, 0.7, 123.4)
	if a != b {
		t.Fatalf("anchor not deterministic: %v vs %v", a, b)
	}
}

func TestNewAmbientStateNearBase(t *testing.T) {
	p := Lookup("DOGE-USDT")
	rng := NewRNG(17)
	for i := 0; i < 100; i++ {
		st := NewAmbientState("DOGE-USDT", p, rng, time.Now())
		dev := math.Abs(st.Price-p.BasePrice) / p.BasePrice
		if dev > 0.005+1e-9 {
			t.Fatalf("seed price deviates %v from base", dev)
		}
	}
}

func TestAmbientStateCloneIsDeep(t *testing.T) {
	st := &AmbientState{
		Symbol:  "BTC-USDT",
		Price:   100,
		Candles: []models.Candle{{Close: 1}, {Close: 2}},
	}
	cp := st.Clone()
	cp.Candles[0].Close = 99
	cp.Price = 50
	if st.Candles[0].Close != 1 || st.Price != 100 {
		t.Fatalf("clone aliases the original")
	}
}

func TestGaussianBounded(t *testing.T) {
	rng := NewRNG(23)
	for i := 0; i < 10000; i++ {
		g := rng.Gaussian()
		if g < -1.5 || g > 1.5 {
			t.Fatalf("gaussian sample out of bounds: %v", g)
		}
	}
}

package forecast

import (
	"testing"
	"time"

	"SimPulse/internal/domain/models"
)

func series(closes ...float64) []models.Candle {
	out := make([]models.Candle, len(closes))
	bucket := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		out[i] = models.Candle{
			Bucket: bucket.Add(time.Duration(i) * time.Second),
			Symbol: "BTC-USDT",
			Open:   c,
			High:   c * 1.001,
			Low:    c * 0.999,
			Close:  c,
			Volume: 10,
		}
	}
	return out
}

func rising(n int) []models.Candle {
	closes := make([]float64, n)
	px := 100.0
	for i := range closes {
		px *= 1.004
		closes[i] = px
	}
	return series(closes...)
}

func falling(n int) []models.Candle {
	closes := make([]float64, n)
	px := 100.0
	for i := range closes {
		px *= 0.996
		closes[i] = px
	}
	return series(closes...)
}

func TestAgentsInsufficientBars(t *testing.T) {
	cs := series(100, 101)
	for _, a := range Agents() {
		sig := a.Evaluate(cs)
		if sig.Action != models.ActionOff {
			t.Fatalf("%s must sit out on short series, got %s", a.Name(), sig.Action)
		}
	}
}

func TestTrendAgentBuyOnUptrend(t *testing.T) {
	sig := (TrendAgent{}).Evaluate(rising(60))
	if sig.Action != models.ActionBuy {
		t.Fatalf("expected BUY on steady uptrend, got %s (%v)", sig.Action, sig.Reasons)
	}
}

func TestTrendAgentSellOnDowntrend(t *testing.T) {
	sig := (TrendAgent{}).Evaluate(falling(60))
	if sig.Action != models.ActionSell {
		t.Fatalf("expected SELL on steady downtrend, got %s (%v)", sig.Action, sig.Reasons)
	}
}

func TestMomentumAgentOversold(t *testing.T) {
	// mostly falling with small relief bars so average gain stays nonzero
	closes := make([]float64, 40)
	px := 100.0
	for i := range closes {
		if i%4 == 3 {
			px *= 1.001
		} else {
			px *= 0.99
		}
		closes[i] = px
	}
	sig := (MomentumAgent{}).Evaluate(series(closes...))
	if sig.Action != models.ActionBuy {
		t.Fatalf("expected oversold BUY, got %s (%v)", sig.Action, sig.Reasons)
	}
}

func TestVolumeAgentNeedsSurge(t *testing.T) {
	cs := rising(30)
	sig := (VolumeAgent{}).Evaluate(cs)
	if sig.Action != models.ActionOff {
		t.Fatalf("flat volume must not vote, got %s", sig.Action)
	}
	cs[len(cs)-1].Volume = 100 // 10x the average
	sig = (VolumeAgent{}).Evaluate(cs)
	if sig.Action != models.ActionBuy {
		t.Fatalf("expected BUY on surge with rising slope, got %s", sig.Action)
	}
}

func TestPatternAgentBreakout(t *testing.T) {
	cs := series(100, 100.2, 99.8, 100.1, 99.9, 100.0, 100.2, 99.7, 100.1, 100.0)
	last := &cs[len(cs)-1]
	last.Close = 103
	last.High = 103.2
	sig := (PatternAgent{}).Evaluate(cs)
	if sig.Action != models.ActionBuy {
		t.Fatalf("expected breakout BUY, got %s (%v)", sig.Action, sig.Reasons)
	}
}

func TestPatternAgentInsideRange(t *testing.T) {
	cs := series(100, 100.2, 99.8, 100.1, 99.9, 100.0, 100.2, 99.7, 100.1, 100.0)
	sig := (PatternAgent{}).Evaluate(cs)
	if sig.Action != models.ActionOff {
		t.Fatalf("expected OFF inside range, got %s", sig.Action)
	}
}

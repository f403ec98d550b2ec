package usecase

import (
	"math"
	"testing"
	"time"

	"SimPulse/internal/domain/models"
	domrepo "SimPulse/internal/domain/repository"
	"SimPulse/internal/services/market"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	e := NewEngine(EngineDeps{
		Logger:  testLogger(t),
		Metrics: newFakeMetrics(),
		Seed:    42,
	}, 60)
	// exercise the scheduler-owned internals directly
	e.disabled = false
	e.selected = market.DefaultSymbol
	e.applyView(market.DefaultSymbol, time.Now())
	e.statusText = "monitoring " + e.selected
	return e
}

func TestStepBoundedMove(t *testing.T) {
	e := testEngine(t)
	base := e.params.BasePrice
	now := time.Now()
	for i := 0; i < 2000; i++ {
		prev := e.price
		now = now.Add(tickInterval)
		e.step(now)
		// per-tick move is clamped relative to the previous price and the
		// waveform-bounded anchor
		bound := prev*0.02 + base*1.04*0.005
		if math.Abs(e.price-prev) > bound+1e-9 {
			t.Fatalf("tick %d: move %v exceeds bound %v", i, e.price-prev, bound)
		}
		if e.price < e.params.MinPrice || e.price > e.params.MaxPrice {
			t.Fatalf("price %v escaped symbol bounds", e.price)
		}
		if math.IsNaN(e.price) || math.IsInf(e.price, 0) {
			t.Fatalf("price not finite at tick %d", i)
		}
	}
}

func TestStepCandleInvariants(t *testing.T) {
	e := testEngine(t)
	now := time.Now()
	for i := 0; i < 600; i++ {
		now = now.Add(tickInterval)
		e.step(now)
	}
	var prevBucket time.Time
	for i, c := range e.candles {
		if c.Low > math.Min(c.Open, c.Close)+1e-9 {
			t.Fatalf("candle %d: low above body", i)
		}
		if c.High < math.Max(c.Open, c.Close)-1e-9 {
			t.Fatalf("candle %d: high below body", i)
		}
		if c.Volume < 0 {
			t.Fatalf("candle %d: negative volume", i)
		}
		if !prevBucket.IsZero() && !c.Bucket.After(prevBucket) {
			t.Fatalf("candle %d: buckets not increasing", i)
		}
		prevBucket = c.Bucket
	}
}

func TestUpsertCandleOpensWithPreviousClose(t *testing.T) {
	e := testEngine(t)
	now := time.Now().Truncate(time.Second)
	e.candles = nil
	e.upsertCandle(now, 100, 100.5, 99.5, 1)
	e.upsertCandle(now.Add(200*time.Millisecond), 101, 101.2, 100.8, 1)
	e.upsertCandle(now.Add(time.Second), 102, 102.3, 101.7, 1)

	if len(e.candles) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(e.candles))
	}
	first, second := e.candles[0], e.candles[1]
	if first.Close != 101 || first.Volume != 2 {
		t.Fatalf("first candle not folded: %+v", first)
	}
	if second.Open != first.Close {
		t.Fatalf("new bucket must open at previous close: open %v prev close %v", second.Open, first.Close)
	}
}

func TestArchiveRestorePreservesSeries(t *testing.T) {
	e := testEngine(t)
	now := time.Now()
	for i := 0; i < 50; i++ {
		now = now.Add(tickInterval)
		e.step(now)
	}
	price := e.price
	nCandles := len(e.candles)
	lastClose := e.candles[nCandles-1].Close

	e.archiveView()
	e.applyView("ETH-USDT", now)
	if e.viewSymbol != "ETH-USDT" {
		t.Fatalf("view did not switch")
	}

	e.archiveView()
	e.applyView("BTC-USDT", now)
	if e.price != price {
		t.Fatalf("restored price %v, want %v", e.price, price)
	}
	if len(e.candles) != nCandles || e.candles[len(e.candles)-1].Close != lastClose {
		t.Fatalf("restored candle window differs")
	}
}

func TestApplyViewSeedsHistory(t *testing.T) {
	e := testEngine(t)
	if len(e.candles) != seedBars {
		t.Fatalf("expected %d synthesized bars, got %d", seedBars, len(e.candles))
	}
	last := e.candles[len(e.candles)-1].Close
	if math.Abs(last-e.price)/e.price > 1e-6 {
		t.Fatalf("synthesized walk must land on the live price: %v vs %v", last, e.price)
	}
}

func TestAdoptDealSingleRunning(t *testing.T) {
	e := testEngine(t)
	now := time.Now()
	d1 := &models.Deal{ID: "d1", Symbol: "ETH-USDT", BasePrice: 3000, DurationSec: 60, Status: models.DealRunning}
	d2 := &models.Deal{ID: "d2", Symbol: "SOL-USDT", BasePrice: 150, DurationSec: 60, Status: models.DealRunning}

	e.adoptDeal(d1, now)
	if e.activeDeal == nil || e.activeDeal.ID != "d1" {
		t.Fatalf("first deal not adopted")
	}
	if e.viewSymbol != "ETH-USDT" || e.price != 3000 {
		t.Fatalf("deal view not applied: %s %v", e.viewSymbol, e.price)
	}

	e.adoptDeal(d2, now)
	if e.activeDeal.ID != "d1" {
		t.Fatalf("second deal must be rejected while one runs")
	}
}

func TestFinishDealKeyedByID(t *testing.T) {
	e := testEngine(t)
	now := time.Now()
	d := &models.Deal{ID: "d1", Symbol: "ETH-USDT", BasePrice: 3000, DurationSec: 60, Status: models.DealRunning}
	e.adoptDeal(d, now)

	// a stale timer for some other deal must not end this one
	e.finishDeal("other", now.Add(time.Minute))
	if e.activeDeal == nil {
		t.Fatalf("mismatched expiry terminated the deal")
	}

	e.finishDeal("d1", now.Add(time.Minute))
	if e.activeDeal != nil {
		t.Fatalf("deal not finished")
	}
	if e.viewSymbol != e.selected {
		t.Fatalf("view did not return to the selected symbol")
	}
}

func TestDealAnchorDrivesPrice(t *testing.T) {
	e := testEngine(t)
	now := time.Now()
	d := &models.Deal{
		ID: "d1", Symbol: "ETH-USDT", BasePrice: 3000, DurationSec: 120,
		DropDelay: 2, DropPct: 5, Status: models.DealRunning,
	}
	e.adoptDeal(d, now)
	// walk well past the drop ramp; price must converge near the -5% anchor
	for i := 0; i < 300; i++ {
		now = now.Add(tickInterval)
		e.step(now)
	}
	want := 3000 * 0.95
	if math.Abs(e.price-want)/want > 0.02 {
		t.Fatalf("price %v did not track deal anchor %v", e.price, want)
	}
}

func TestDisabledModeSafeDefaults(t *testing.T) {
	e := NewEngine(EngineDeps{Logger: testLogger(t), Metrics: newFakeMetrics()}, 60)
	if !e.disabled {
		t.Fatalf("engine without a deal store must be disabled")
	}
	st := e.Snapshot()
	if st.Symbol != market.DefaultSymbol {
		t.Fatalf("unexpected disabled snapshot symbol %q", st.Symbol)
	}
	if e.CurrentPrice() != 0 || e.ActiveDealID() != "" || e.RecentCandles(10) != nil {
		t.Fatalf("disabled queries must return zero values")
	}
	if _, err := e.SetMarket("BTC-USDT"); err != nil {
		t.Fatalf("disabled setter must not error: %v", err)
	}
}

func TestTimeframeBucketing(t *testing.T) {
	e := testEngine(t)
	e.timeframe = domrepo.TF5s
	e.candles = nil
	base := time.Date(2025, 1, 1, 0, 0, 1, 0, time.UTC)
	e.upsertCandle(base, 100, 100, 100, 1)
	e.upsertCandle(base.Add(3*time.Second), 101, 101, 101, 1)
	e.upsertCandle(base.Add(5*time.Second), 102, 102, 102, 1)
	if len(e.candles) != 2 {
		t.Fatalf("expected 2 buckets at 5s, got %d", len(e.candles))
	}
}

package usecase

import (
	"testing"
	"time"

	"SimPulse/internal/domain/models"
)

func closedSeries(n int, px float64) []models.Candle {
	out := make([]models.Candle, n)
	bucket := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range out {
		out[i] = models.Candle{
			Bucket: bucket.Add(time.Duration(i) * time.Second),
			Symbol: "BTC-USDT",
			Open:   px, High: px * 1.001, Low: px * 0.999, Close: px,
			Volume: 10,
		}
	}
	return out
}

func TestEvaluateLogsEntry(t *testing.T) {
	s := NewSettler(testLogger(t), nil, newFakeMetrics(), 60)
	now := time.Now()
	batch := s.Evaluate(now, "BTC-USDT", "", 100, closedSeries(40, 100))
	if batch == nil {
		t.Fatalf("expected a batch")
	}
	if len(batch.Signals) != 5 {
		t.Fatalf("expected 5 agent signals, got %d", len(batch.Signals))
	}
	if len(s.pending) != 1 {
		t.Fatalf("expected one pending entry, got %d", len(s.pending))
	}
	if s.pending[0].HorizonSec != 60 {
		t.Fatalf("unexpected horizon %v", s.pending[0].HorizonSec)
	}
}

func TestSettleGradesExactlyOnce(t *testing.T) {
	s := NewSettler(testLogger(t), nil, newFakeMetrics(), 60)
	created := time.Now()
	entry := &models.SignalLogEntry{
		ID:         "e1",
		Symbol:     "BTC-USDT",
		Price:      100,
		Meta:       models.MetaDecision{Action: models.ActionBuy},
		HorizonSec: 60,
		CreatedAt:  created,
	}
	s.pending = append(s.pending, entry)

	// not matured yet
	s.Settle(created.Add(30*time.Second), 105)
	if entry.ResolvedAt != nil {
		t.Fatalf("entry graded before horizon")
	}

	s.Settle(created.Add(61*time.Second), 105)
	if entry.ResolvedAt == nil {
		t.Fatalf("entry not graded after horizon")
	}
	if entry.OutcomePct == nil || *entry.OutcomePct != 5 {
		t.Fatalf("unexpected outcome %v", entry.OutcomePct)
	}
	if entry.Correct == nil || !*entry.Correct {
		t.Fatalf("BUY into +5%% must grade correct")
	}
	if len(s.pending) != 0 || len(s.resolved) != 1 {
		t.Fatalf("entry not moved: pending %d resolved %d", len(s.pending), len(s.resolved))
	}

	// second pass must not touch it
	first := *entry.ResolvedAt
	s.Settle(created.Add(120*time.Second), 50)
	if !entry.ResolvedAt.Equal(first) || *entry.OutcomePct != 5 {
		t.Fatalf("entry re-graded")
	}
	if len(s.resolved) != 1 {
		t.Fatalf("resolved list grew on re-settle")
	}
}

func TestHitRates(t *testing.T) {
	s := NewSettler(testLogger(t), nil, newFakeMetrics(), 60)
	created := time.Now().Add(-2 * time.Minute)
	mk := func(id string, action models.SignalAction, price float64) *models.SignalLogEntry {
		return &models.SignalLogEntry{
			ID:     id,
			Symbol: "BTC-USDT",
			Price:  price,
			Signals: []models.ModelSignal{
				{Agent: "trend", Action: action},
			},
			Meta:       models.MetaDecision{Action: action},
			HorizonSec: 60,
			CreatedAt:  created,
		}
	}
	s.pending = append(s.pending, mk("a", models.ActionBuy, 100), mk("b", models.ActionSell, 100))
	s.Settle(time.Now(), 110) // BUY wins, SELL loses

	rates := s.HitRates()
	var meta, trend *models.HitRate
	for i := range rates {
		switch rates[i].Agent {
		case "meta":
			meta = &rates[i]
		case "trend":
			trend = &rates[i]
		}
	}
	if meta == nil || trend == nil {
		t.Fatalf("missing hit rate rows: %+v", rates)
	}
	if meta.Total != 2 || meta.Wins != 1 || meta.Percent != 50 {
		t.Fatalf("unexpected meta rate %+v", meta)
	}
	if trend.Total != 2 || trend.Wins != 1 {
		t.Fatalf("unexpected trend rate %+v", trend)
	}
}

func TestHitRatesEmptyAndPerfect(t *testing.T) {
	s := NewSettler(testLogger(t), nil, newFakeMetrics(), 60)

	// nothing resolved yet: every rate reads zero
	for _, hr := range s.HitRates() {
		if hr.Total != 0 || hr.Percent != 0 {
			t.Fatalf("empty settler must report zero rates, got %+v", hr)
		}
	}

	created := time.Now().Add(-2 * time.Minute)
	for _, id := range []string{"a", "b", "c"} {
		s.pending = append(s.pending, &models.SignalLogEntry{
			ID:         id,
			Symbol:     "BTC-USDT",
			Price:      100,
			Meta:       models.MetaDecision{Action: models.ActionBuy},
			HorizonSec: 60,
			CreatedAt:  created,
		})
	}
	s.Settle(time.Now(), 110)

	for _, hr := range s.HitRates() {
		if hr.Agent != "meta" {
			continue
		}
		if hr.Total != 3 || hr.Wins != 3 || hr.Percent != 100 {
			t.Fatalf("all-correct window must read 100%%, got %+v", hr)
		}
	}
}

func TestEvaluateSkipsThinSeries(t *testing.T) {
	s := NewSettler(testLogger(t), nil, newFakeMetrics(), 60)
	if b := s.Evaluate(time.Now(), "BTC-USDT", "", 100, closedSeries(2, 100)); b != nil {
		t.Fatalf("expected nil batch on thin series")
	}
}

package middleware

import (
	"context"
	"sync"
	"testing"
	"time"

	"SimPulse/internal/domain/models"
)

type captureSink struct {
	mu    sync.Mutex
	ticks []*models.Tick
}

func (s *captureSink) Process(ctx context.Context, t *models.Tick) error {
	s.mu.Lock()
	s.ticks = append(s.ticks, t)
	s.mu.Unlock()
	return nil
}

func (s *captureSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ticks)
}

type nopMetrics struct{}

func (nopMetrics) RecordTick(string, string)       {}
func (nopMetrics) RecordError(string)              {}
func (nopMetrics) RecordLastPrice(string, float64) {}
func (nopMetrics) RecordLatency(string, float64)   {}
func (nopMetrics) RecordDecision(string)           {}

func tick(symbol string) *models.Tick {
	return &models.Tick{Symbol: symbol, Timestamp: time.Now().UnixMilli(), Price: 100, Volume: 1}
}

func TestPipelineForwards(t *testing.T) {
	sink := &captureSink{}
	p := NewTickPipeline(sink, nopMetrics{}, WithMaxRPS(1000))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	p.Submit(tick("BTC-USDT"))

	deadline := time.Now().Add(time.Second)
	for sink.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("tick never reached sink")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPipelineDropsInvalid(t *testing.T) {
	sink := &captureSink{}
	p := NewTickPipeline(sink, nopMetrics{})

	p.Submit(nil)
	p.Submit(&models.Tick{Symbol: "", Timestamp: 1, Price: 1})
	p.Submit(&models.Tick{Symbol: "BTC-USDT", Timestamp: 0, Price: 1})
	p.Submit(&models.Tick{Symbol: "BTC-USDT", Timestamp: 1, Price: -1})

	if len(p.bufCh) != 0 {
		t.Fatalf("invalid ticks buffered")
	}
}

func TestPipelineThrottlesPerSymbol(t *testing.T) {
	sink := &captureSink{}
	p := NewTickPipeline(sink, nopMetrics{}, WithMaxRPS(5))

	for i := 0; i < 50; i++ {
		p.Submit(tick("BTC-USDT"))
	}
	if n := len(p.bufCh); n != 1 {
		t.Fatalf("expected 1 tick through the throttle, got %d", n)
	}

	// a different symbol has its own budget
	p.Submit(tick("ETH-USDT"))
	if n := len(p.bufCh); n != 2 {
		t.Fatalf("expected second symbol to pass, got %d buffered", n)
	}
}

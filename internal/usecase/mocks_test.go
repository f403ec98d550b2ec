package usecase

import (
	"sync"
	"testing"

	applogger "SimPulse/pkg/logger"
)

// fakeMetrics counts recorder calls; safe for concurrent use.
type fakeMetrics struct {
	mu        sync.Mutex
	ticks     int
	errors    map[string]int
	decisions map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{
		errors:    make(map[string]int),
		decisions: make(map[string]int),
	}
}

func (m *fakeMetrics) RecordTick(symbol, mode string) {
	m.mu.Lock()
	m.ticks++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	m.errors[kind]++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordLastPrice(symbol string, price float64) {}
func (m *fakeMetrics) RecordLatency(op string, seconds float64)     {}

func (m *fakeMetrics) RecordDecision(action string) {
	m.mu.Lock()
	m.decisions[action]++
	m.mu.Unlock()
}

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

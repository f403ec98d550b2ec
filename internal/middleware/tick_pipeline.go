package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"SimPulse/internal/domain/models"
	domrepo "SimPulse/internal/domain/repository"
)

// TickSink is the minimal downstream interface the pipeline needs.
type TickSink interface {
	Process(ctx context.Context, t *models.Tick) error
}

// TickPipeline sits between the engine and the archive fan-out. It validates,
// throttles per symbol, and buffers when the downstream is unavailable so a
// slow broker can never stall the tick loop.
type TickPipeline struct {
	sink    TickSink
	metrics domrepo.Metrics
	maxRPS  int
	bufSize int
	bufCh   chan *models.Tick
	stopCh  chan struct{}
	started bool
	mu      sync.Mutex
	lastIn  map[string]time.Time // per-symbol last accepted time
}

type PipelineOption func(*TickPipeline)

// WithMaxRPS sets the max ticks per second per symbol forwarded downstream.
func WithMaxRPS(n int) PipelineOption {
	return func(p *TickPipeline) {
		if n > 0 {
			p.maxRPS = n
		}
	}
}

// WithBufferSize sets the temporary buffer size used when downstream fails.
func WithBufferSize(n int) PipelineOption {
	return func(p *TickPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// NewTickPipeline creates a new pipeline in front of sink.
func NewTickPipeline(sink TickSink, metrics domrepo.Metrics, opts ...PipelineOption) *TickPipeline {
	p := &TickPipeline{
		sink:    sink,
		metrics: metrics,
		maxRPS:  10,
		bufSize: 2000,
		stopCh:  make(chan struct{}),
		lastIn:  make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan *models.Tick, p.bufSize)
	return p
}

// Start launches background flushing of buffered ticks.
func (p *TickPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-p.stopCh:
				return
			case t := <-p.bufCh:
				if t == nil {
					continue
				}
				if err := p.sink.Process(ctx, t); err != nil {
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("pipeline_flush")
					time.Sleep(backoff)
					select {
					case p.bufCh <- t:
					default:
						p.metrics.RecordError("pipeline_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop stops the background flushing.
func (p *TickPipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
}

// Submit enqueues a tick without ever blocking the caller. Throttled and
// invalid ticks are dropped; the engine must not care.
func (p *TickPipeline) Submit(t *models.Tick) {
	if err := validateTick(t); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return
	}
	if !p.allow(t.Symbol, time.Now()) {
		return
	}
	select {
	case p.bufCh <- t:
	default:
		p.metrics.RecordError("pipeline_buffer_full")
	}
}

func validateTick(t *models.Tick) error {
	if t == nil {
		return fmt.Errorf("tick nil")
	}
	if t.Symbol == "" {
		return fmt.Errorf("symbol empty")
	}
	if t.Timestamp <= 0 {
		return fmt.Errorf("timestamp invalid")
	}
	if t.Price < 0 || t.Volume < 0 {
		return fmt.Errorf("negative price/volume")
	}
	return nil
}

func (p *TickPipeline) allow(symbol string, now time.Time) bool {
	if p.maxRPS <= 0 {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	last := p.lastIn[symbol]
	if !last.IsZero() && now.Sub(last) < time.Second/time.Duration(p.maxRPS) {
		return false
	}
	p.lastIn[symbol] = now
	return true
}

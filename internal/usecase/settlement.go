package usecase

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"SimPulse/internal/domain/models"
	domrepo "SimPulse/internal/domain/repository"
	"SimPulse/internal/services/forecast"
	applogger "SimPulse/pkg/logger"
)

// hitRateWindow is how many of the most recent resolved entries count toward
// the rolling accuracy.
const hitRateWindow = 50

// maxRetained bounds the in-memory entry lists.
const maxRetained = 600

// Settler owns the forecast log: it evaluates the agent set, appends entries,
// grades matured ones exactly once, and maintains rolling hit-rates. All
// methods are called from the engine's scheduler goroutine only; persistence
// writes are fired into goroutines so store latency never reaches the loop.
type Settler struct {
	log     *applogger.Logger
	store   domrepo.SignalLog
	metrics domrepo.Metrics
	agents  []forecast.Agent

	horizonSec float64
	pending    []*models.SignalLogEntry
	resolved   []*models.SignalLogEntry // most recent last
}

func NewSettler(log *applogger.Logger, store domrepo.SignalLog, metrics domrepo.Metrics, horizonSec float64) *Settler {
	if horizonSec <= 0 {
		horizonSec = 60
	}
	return &Settler{
		log:        log,
		store:      store,
		metrics:    metrics,
		agents:     forecast.Agents(),
		horizonSec: horizonSec,
	}
}

// Evaluate runs every heuristic over the closed candle series, reduces them
// to a meta decision, and logs the entry for later grading. Settlement of
// matured entries runs inline first, against the current price.
func (s *Settler) Evaluate(now time.Time, symbol, dealID string, price float64, closed []models.Candle) *models.SignalBatch {
	s.Settle(now, price)

	if len(closed) < forecast.MinBars || price <= 0 {
		return nil
	}

	signals := make([]models.ModelSignal, 0, len(s.agents))
	for _, a := range s.agents {
		signals = append(signals, a.Evaluate(closed))
	}
	meta := forecast.Aggregate(signals)
	s.metrics.RecordDecision(string(meta.Action))

	entry := &models.SignalLogEntry{
		ID:         uuid.NewString(),
		DealID:     dealID,
		Symbol:     symbol,
		Price:      price,
		Signals:    signals,
		Meta:       meta,
		HorizonSec: s.horizonSec,
		CreatedAt:  now,
	}
	s.pending = append(s.pending, entry)
	if len(s.pending) > maxRetained {
		s.pending = s.pending[len(s.pending)-maxRetained:]
	}
	s.persistAppend(entry)

	return &models.SignalBatch{
		Symbol:    symbol,
		Timestamp: now,
		Signals:   signals,
		Meta:      meta,
		HitRates:  s.HitRates(),
	}
}

// Settle grades every pending entry whose horizon has elapsed, exactly once.
// Entries are never re-graded.
func (s *Settler) Settle(now time.Time, price float64) {
	if price <= 0 {
		return
	}
	remaining := s.pending[:0]
	for _, e := range s.pending {
		if !e.Matured(now) {
			remaining = append(remaining, e)
			continue
		}
		if e.Price <= 0 {
			// unusable logged price, drop rather than divide by zero
			continue
		}
		outcome := (price - e.Price) / e.Price * 100
		correct := forecast.Grade(e.Meta.Action, outcome)
		at := now
		e.ResolvedAt = &at
		e.OutcomePct = &outcome
		e.Correct = &correct

		s.resolved = append(s.resolved, e)
		s.persistResolve(e)
	}
	s.pending = remaining
	if len(s.resolved) > maxRetained {
		s.resolved = s.resolved[len(s.resolved)-maxRetained:]
	}
}

// HitRates recomputes the rolling accuracy over the most recent resolved
// entries, per agent and for the meta verdict.
func (s *Settler) HitRates() []models.HitRate {
	window := s.resolved
	if len(window) > hitRateWindow {
		window = window[len(window)-hitRateWindow:]
	}

	out := make([]models.HitRate, 0, len(s.agents)+1)
	for _, a := range s.agents {
		out = append(out, s.rateFor(a.Name(), window))
	}
	out = append(out, s.rateFor("meta", window))
	return out
}

func (s *Settler) rateFor(agent string, window []*models.SignalLogEntry) models.HitRate {
	hr := models.HitRate{Agent: agent}
	for _, e := range window {
		if e.OutcomePct == nil {
			continue
		}
		action, ok := actionOf(agent, e)
		if !ok {
			continue
		}
		hr.Total++
		hr.Resolved++
		if forecast.Grade(action, *e.OutcomePct) {
			hr.Wins++
		}
	}
	if hr.Total > 0 {
		hr.Percent = math.Round(float64(hr.Wins)/float64(hr.Total)*1000) / 10
	}
	return hr
}

// actionOf finds the graded action for agent within one entry. Each agent is
// graded on its own action, independent of the meta verdict.
func actionOf(agent string, e *models.SignalLogEntry) (models.SignalAction, bool) {
	if agent == "meta" {
		return e.Meta.Action, true
	}
	for _, sig := range e.Signals {
		if sig.Agent == agent {
			return sig.Action, true
		}
	}
	return "", false
}

// Restore reloads unresolved entries from the store at startup so forecasts
// logged before a restart still settle.
func (s *Settler) Restore(ctx context.Context) {
	if s.store == nil {
		return
	}
	entries, err := s.store.Unresolved(ctx, time.Now())
	if err != nil {
		s.log.Warn("signal log restore failed", applogger.Error(err))
		return
	}
	s.pending = append(s.pending, entries...)
	recent, err := s.store.RecentResolved(ctx, hitRateWindow)
	if err == nil {
		// store returns newest first; hit-rate window wants newest last
		for i := len(recent) - 1; i >= 0; i-- {
			s.resolved = append(s.resolved, recent[i])
		}
	}
}

func (s *Settler) persistAppend(e *models.SignalLogEntry) {
	if s.store == nil {
		return
	}
	cp := *e
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := s.store.Append(ctx, &cp); err != nil {
			s.metrics.RecordError("signal_append")
			s.log.Warn("signal log append failed", applogger.Error(err))
		}
	}()
}

func (s *Settler) persistResolve(e *models.SignalLogEntry) {
	if s.store == nil {
		return
	}
	cp := *e
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := s.store.Resolve(ctx, &cp); err != nil {
			s.metrics.RecordError("signal_resolve")
			s.log.Warn("signal log resolve failed", applogger.Error(err))
		}
	}()
}

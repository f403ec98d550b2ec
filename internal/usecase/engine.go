package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"SimPulse/internal/domain/models"
	domrepo "SimPulse/internal/domain/repository"
	mid "SimPulse/internal/middleware"
	"SimPulse/internal/services/forecast"
	"SimPulse/internal/services/market"
	applogger "SimPulse/pkg/logger"
)

// Engine timing. The scheduler goroutine owns every mutable field below the
// deps block; everything else talks to it through cmdCh.
const (
	tickInterval     = 200 * time.Millisecond
	forecastInterval = time.Second
	watcherInterval  = 5 * time.Second
	announceDelay    = 2500 * time.Millisecond

	dtFloor    = 0.02 // seconds, division blowup guard
	noiseScale = 5.0  // sqrt(dt*noiseScale) == 1 at the nominal tick
	windowMax  = 2800 // retained candles per view
	seedBars   = 360  // synthesized history on a fresh view
)

// EngineDeps are the injected collaborators. Any of Deals/Signals/Config/
// Bus/Pipe may be nil; a nil Deals store puts the engine in disabled mode.
type EngineDeps struct {
	Logger  *applogger.Logger
	Deals   domrepo.DealStore
	Signals domrepo.SignalLog
	Config  domrepo.ConfigStore
	Bus     domrepo.Broadcaster
	Metrics domrepo.Metrics
	Pipe    *mid.TickPipeline
	Seed    int64
}

// Engine simulates the market feed: ambient waveform or scripted deal anchor,
// stochastic tick walk, candle aggregation, forecast evaluation and deal
// watching, all on one scheduler goroutine.
type Engine struct {
	log     *applogger.Logger
	deals   domrepo.DealStore
	cfg     domrepo.ConfigStore
	bus     domrepo.Broadcaster
	metrics domrepo.Metrics
	pipe    *mid.TickPipeline

	rng     *market.RNG
	regimes *market.RegimeModel
	settler *Settler

	disabled   bool
	horizonSec float64

	// scheduler-owned state
	selected   string // operator-selected symbol
	viewSymbol string // symbol the working series belongs to
	params     models.SymbolParams
	timeframe  domrepo.Timeframe
	override   models.RegimeKind
	intensity  float64
	statusText string

	price          float64
	candles        []models.Candle
	regime         models.RegimeState
	regimeDeadline time.Time
	lastTick       time.Time
	phase          float64
	waveStart      time.Time

	saved map[string]*market.AmbientState

	activeDeal   *models.Deal
	dealStart    time.Time
	event        *models.MarketEvent
	latestBatch  *models.SignalBatch
	pollInFlight bool

	cmdCh  chan func()
	stopCh chan struct{}
}

// NewEngine constructs the engine. HorizonSec <= 0 falls back to 60.
func NewEngine(deps EngineDeps, horizonSec float64) *Engine {
	seed := deps.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := market.NewRNG(seed)
	e := &Engine{
		log:        deps.Logger,
		deals:      deps.Deals,
		cfg:        deps.Config,
		bus:        deps.Bus,
		metrics:    deps.Metrics,
		pipe:       deps.Pipe,
		rng:        rng,
		regimes:    market.NewRegimeModel(rng),
		settler:    NewSettler(deps.Logger, deps.Signals, deps.Metrics, horizonSec),
		disabled:   deps.Deals == nil,
		horizonSec: horizonSec,
		intensity:  1,
		timeframe:  domrepo.DefaultTimeframe(),
		saved:      make(map[string]*market.AmbientState),
		cmdCh:      make(chan func(), 64),
		stopCh:     make(chan struct{}),
	}
	return e
}

// Run starts the scheduler loop and blocks until ctx is cancelled. In
// disabled mode it only waits for cancellation; every query keeps returning
// safe defaults.
func (e *Engine) Run(ctx context.Context) error {
	defer close(e.stopCh)

	if e.disabled {
		e.log.Warn("engine running in disabled mode: no deal store configured")
		<-ctx.Done()
		return nil
	}

	now := time.Now()
	e.loadConfig(ctx)
	e.applyView(e.selected, now)
	e.settler.Restore(ctx)
	e.statusText = "monitoring " + e.selected
	e.log.Info("engine started",
		applogger.String("symbol", e.selected),
		applogger.String("timeframe", string(e.timeframe)))

	tick := time.NewTicker(tickInterval)
	evaluate := time.NewTicker(forecastInterval)
	watch := time.NewTicker(watcherInterval)
	defer tick.Stop()
	defer evaluate.Stop()
	defer watch.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case cmd := <-e.cmdCh:
			cmd()
		case now := <-tick.C:
			e.step(now)
		case now := <-evaluate.C:
			e.evaluate(now)
		case now := <-watch.C:
			e.pollDeals(now)
		}
	}
}

// do runs fn on the scheduler goroutine and waits for it. Safe after
// shutdown: it degrades to a no-op instead of hanging.
func (e *Engine) do(fn func()) {
	done := make(chan struct{})
	wrapped := func() { fn(); close(done) }
	select {
	case e.cmdCh <- wrapped:
	case <-e.stopCh:
		return
	}
	select {
	case <-done:
	case <-e.stopCh:
	}
}

// after schedules fn onto the scheduler goroutine once d elapses.
func (e *Engine) after(d time.Duration, fn func()) {
	time.AfterFunc(d, func() {
		select {
		case e.cmdCh <- fn:
		case <-e.stopCh:
		}
	})
}

// loadConfig reads the persisted operator selections; absence is normal.
func (e *Engine) loadConfig(ctx context.Context) {
	e.selected = market.DefaultSymbol
	if e.cfg == nil {
		return
	}
	cctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	c, err := e.cfg.Load(cctx)
	if err != nil {
		e.log.Warn("engine config load failed, using defaults", applogger.Error(err))
		return
	}
	if c == nil {
		return
	}
	if market.Known(c.Symbol) {
		e.selected = c.Symbol
	}
	e.timeframe = domrepo.NormalizeTimeframe(c.Timeframe)
	e.override = c.RegimeOverride
	if c.Intensity > 0 {
		e.intensity = c.Intensity
	}
}

// --- view management -------------------------------------------------------

// applyView makes symbol the working series: restored from its archived
// snapshot when one exists, otherwise freshly seeded with synthesized
// history.
func (e *Engine) applyView(symbol string, now time.Time) {
	e.viewSymbol = symbol
	e.params = market.Lookup(symbol)

	if st := e.saved[symbol]; st != nil {
		restored := st.Clone()
		e.price = restored.Price
		e.candles = restored.Candles
		e.regime = restored.Regime
		e.regimeDeadline = restored.RegimeDeadline
		e.phase = restored.Phase
		e.waveStart = restored.StartedAt
		e.lastTick = now
		return
	}

	st := market.NewAmbientState(symbol, e.params, e.rng, now)
	e.price = st.Price
	e.phase = st.Phase
	e.waveStart = st.StartedAt
	e.lastTick = now
	e.regime = e.regimes.Next(models.RegimeState{}, e.params, e.override, e.intensity)
	e.regimeDeadline = e.regimes.NextDeadline(now)
	e.candles = e.seedHistory(now)
}

// archiveView snapshots the working series under its symbol. Copy semantics:
// the archived state never aliases the live one.
func (e *Engine) archiveView() {
	st := &market.AmbientState{
		Symbol:         e.viewSymbol,
		Price:          e.price,
		Candles:        e.candles,
		Regime:         e.regime,
		RegimeDeadline: e.regimeDeadline,
		LastTick:       e.lastTick,
		Phase:          e.phase,
		StartedAt:      e.waveStart,
	}
	e.saved[e.viewSymbol] = st.Clone()
}

// seedHistory synthesizes a plausible closed-candle window behind the
// current price so a fresh view does not start from an empty chart.
func (e *Engine) seedHistory(now time.Time) []models.Candle {
	step := e.timeframe.Duration()
	out := make([]models.Candle, 0, seedBars)
	px := e.price * (1 + (e.rng.Float64()-0.5)*0.02)
	bucket := e.timeframe.Bucket(now.Add(-time.Duration(seedBars) * step))
	for i := 0; i < seedBars; i++ {
		open := px
		px *= 1 + e.rng.Gaussian()*e.params.NoiseBps/1e4*2
		span := px * e.params.WickBps / 1e4
		hi := math.Max(open, px) + e.rng.Float64()*span
		lo := math.Min(open, px) - e.rng.Float64()*span
		if lo < e.params.MinPrice {
			lo = e.params.MinPrice
		}
		out = append(out, models.Candle{
			Bucket: bucket,
			Symbol: e.viewSymbol,
			Open:   open,
			High:   hi,
			Low:    lo,
			Close:  px,
			Volume: e.params.VolumeBase + e.rng.Float64()*e.params.VolumeJit,
		})
		bucket = bucket.Add(step)
	}
	// land the synthesized walk on the live price
	if px > 0 {
		scale := e.price / px
		for i := range out {
			out[i].Open *= scale
			out[i].High *= scale
			out[i].Low *= scale
			out[i].Close *= scale
		}
	}
	return out
}

// --- tick engine -----------------------------------------------------------

// step advances the simulation one tick: anchor, stochastic walk, clamp,
// candle upsert, broadcast, in that order.
func (e *Engine) step(now time.Time) {
	dt := now.Sub(e.lastTick).Seconds()
	if dt < dtFloor {
		dt = dtFloor
	}
	e.lastTick = now

	anchor := e.anchor(now)
	if anchor <= 0 || math.IsNaN(anchor) {
		return // keep previous price, skip the update
	}
	prev := e.price
	if prev <= 0 {
		prev = anchor
	}

	e.maybeRotateRegime(now)

	dir := float64(e.regime.Direction)
	if dir == 0 {
		dir = 1
	}
	pull := (anchor - prev) * e.regime.MeanRevert * math.Min(dt*1.1, 1)
	drift := anchor * e.regime.DriftBps / 1e4 * dir * dt
	noise := anchor * e.regime.NoiseBps / 1e4 * e.rng.Gaussian() * math.Sqrt(dt*noiseScale)
	shock := e.shockTerm(anchor, now)

	px := prev + pull + drift + noise + shock

	// bounded jump, proportional to both previous and anchor price
	maxJump := prev*0.02 + anchor*0.005
	px = clamp(px, prev-maxJump, prev+maxJump)
	px = clamp(px, e.params.MinPrice, e.params.MaxPrice)
	if math.IsNaN(px) || math.IsInf(px, 0) {
		px = prev
	}
	e.price = px

	hi, lo := e.wick(px, anchor)
	vol := e.regime.VolumeBase*dt + e.regime.VolumeJit*dt*e.rng.Float64()
	if vol < 0 {
		vol = 0
	}
	candle := e.upsertCandle(now, px, hi, lo, vol)

	mode := "ambient"
	if e.activeDeal != nil {
		mode = "deal"
	}
	e.metrics.RecordTick(e.viewSymbol, mode)
	e.metrics.RecordLastPrice(e.viewSymbol, px)

	tick := &models.Tick{
		Symbol:    e.viewSymbol,
		Timestamp: now.UnixMilli(),
		Price:     px,
		Volume:    vol,
		Regime:    e.regime.Kind,
		Mode:      mode,
	}
	if e.pipe != nil {
		e.pipe.Submit(tick)
	}
	e.broadcast("tick", map[string]interface{}{
		"t":      tick.Timestamp,
		"price":  px,
		"candle": candle,
		"regime": e.regime.Kind,
		"mode":   mode,
	})
}

// anchor resolves the current fair-value target: deal script when one is
// running, ambient waveform otherwise.
func (e *Engine) anchor(now time.Time) float64 {
	if e.activeDeal != nil {
		elapsed := now.Sub(e.dealStart).Seconds()
		return market.NoisyScenarioAnchor(e.activeDeal, elapsed, e.rng)
	}
	elapsed := now.Sub(e.waveStart).Seconds()
	return market.AmbientAnchor(e.params, e.phase, elapsed)
}

func (e *Engine) maybeRotateRegime(now time.Time) {
	if !e.regimes.ShouldRotate(now, e.regimeDeadline) {
		return
	}
	e.regime = e.regimes.Next(e.regime, e.params, e.override, e.intensity)
	e.regimeDeadline = e.regimes.NextDeadline(now)
}

// shockTerm decays the injected market event exponentially; the event is
// dropped once its remaining weight is negligible.
func (e *Engine) shockTerm(anchor float64, now time.Time) float64 {
	if e.event == nil {
		return 0
	}
	age := now.Sub(e.event.StartedAt).Seconds()
	decay := math.Exp(-age / e.event.HalfLife * math.Ln2)
	if decay < 0.02 {
		e.event = nil
		return 0
	}
	if e.rng.Float64() > 0.8 {
		return 0 // shock lands on most but not all ticks
	}
	return anchor * e.event.Magnitude * decay * (0.7 + e.rng.Float64()*0.6)
}

// wick derives the synthetic high/low around the clamped price; larger and
// more frequent under HIGH_VOL.
func (e *Engine) wick(px, anchor float64) (hi, lo float64) {
	span := anchor * e.regime.WickBps / 1e4
	prob, mult := 0.55, 1.0
	if e.regime.Kind == models.RegimeHighVol {
		prob, mult = 0.85, 1.7
	}
	hi, lo = px, px
	if e.rng.Float64() < prob {
		hi = px + e.rng.Float64()*span*mult
	}
	if e.rng.Float64() < prob {
		lo = px - e.rng.Float64()*span*mult
	}
	lo = clamp(lo, e.params.MinPrice, px)
	hi = clamp(hi, px, e.params.MaxPrice)
	return hi, lo
}

// upsertCandle folds the tick into the open candle, opening a new bucket
// (with open = previous close) when the wall clock crosses a boundary.
func (e *Engine) upsertCandle(now time.Time, px, hi, lo, vol float64) models.Candle {
	bucket := e.timeframe.Bucket(now)
	n := len(e.candles)
	if n == 0 || !e.candles[n-1].Bucket.Equal(bucket) {
		open := px
		if n > 0 {
			open = e.candles[n-1].Close
		}
		c := models.Candle{
			Bucket: bucket,
			Symbol: e.viewSymbol,
			Open:   open,
			High:   math.Max(open, hi),
			Low:    math.Min(open, lo),
			Close:  px,
			Volume: vol,
		}
		e.candles = append(e.candles, c)
		if len(e.candles) > windowMax {
			e.candles = e.candles[len(e.candles)-windowMax:]
		}
		return c
	}
	c := &e.candles[n-1]
	c.High = math.Max(c.High, hi)
	c.Low = math.Min(c.Low, lo)
	c.Close = px
	c.Volume += vol
	return *c
}

// --- forecast --------------------------------------------------------------

func (e *Engine) evaluate(now time.Time) {
	if e.price <= 0 {
		return
	}
	closed := e.closedCandles()
	if len(closed) < forecast.MinBars {
		return
	}
	dealID := ""
	if e.activeDeal != nil {
		dealID = e.activeDeal.ID
	}
	batch := e.settler.Evaluate(now, e.viewSymbol, dealID, e.price, closed)
	if batch == nil {
		return
	}
	e.latestBatch = batch
	e.broadcast("ai_signals", batch)
}

// closedCandles excludes the open (mutable) bucket.
func (e *Engine) closedCandles() []models.Candle {
	if len(e.candles) == 0 {
		return nil
	}
	return e.candles[:len(e.candles)-1]
}

// --- deal watcher ----------------------------------------------------------

// pollDeals asks the store for a due scheduled deal. The store call runs off
// the loop; its outcome comes back as a command. Errors are logged and
// retried on the next interval, never fatal.
func (e *Engine) pollDeals(now time.Time) {
	if e.deals == nil || e.activeDeal != nil || e.pollInFlight {
		return
	}
	e.pollInFlight = true
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), watcherInterval-time.Second)
		defer cancel()
		d, err := e.deals.ClaimDue(ctx, now)
		e.do(func() {
			e.pollInFlight = false
			if err != nil {
				e.metrics.RecordError("deal_poll")
				e.log.Warn("deal poll failed", applogger.Error(err))
				return
			}
			if d != nil {
				e.adoptDeal(d, time.Now())
			}
		})
	}()
}

// adoptDeal switches the engine into scripted mode. The claim already
// happened in the store (status RUNNING), which is the linearization point
// for the one-active-deal invariant.
func (e *Engine) adoptDeal(d *models.Deal, now time.Time) {
	if e.activeDeal != nil {
		// lost a race with another adoption; should not happen with a
		// single watcher, but never run two scripts at once
		e.log.Error("claimed deal while another is active",
			applogger.String("claimed", d.ID),
			applogger.String("active", e.activeDeal.ID))
		return
	}

	e.archiveView()

	e.activeDeal = d
	e.dealStart = now
	e.lastTick = now
	e.viewSymbol = d.Symbol
	e.params = market.Lookup(d.Symbol)
	e.price = d.BasePrice
	e.candles = e.seedHistory(now)
	e.regime = e.regimes.Next(e.regime, e.params, e.override, e.intensity)
	e.regimeDeadline = e.regimes.NextDeadline(now)

	e.statusText = "scanning for market opportunities"
	e.log.Info("deal claimed",
		applogger.String("deal", d.ID),
		applogger.String("symbol", d.Symbol),
		applogger.Any("duration_sec", d.DurationSec))
	e.broadcast("deal_started", d)
	e.broadcast("status", e.statusText)
	e.broadcastState()

	dealID := d.ID
	e.after(announceDelay, func() {
		if e.activeDeal == nil || e.activeDeal.ID != dealID {
			return
		}
		e.statusText = fmt.Sprintf("trade identified: %s", e.activeDeal.Symbol)
		e.broadcast("status", e.statusText)
	})

	// expiry is wall-clock from claim time, keyed by id so a stale timer
	// can never terminate a different deal
	e.after(time.Duration(d.DurationSec*float64(time.Second)), func() {
		e.finishDeal(dealID, time.Now())
	})
}

// finishDeal ends the identified deal and resumes ambient simulation for the
// currently selected symbol. No-ops when a different (or no) deal is active.
func (e *Engine) finishDeal(id string, now time.Time) {
	if e.activeDeal == nil || e.activeDeal.ID != id {
		return
	}
	d := e.activeDeal
	e.activeDeal = nil

	if e.deals != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := e.deals.Finish(ctx, d.ID, now); err != nil {
				e.metrics.RecordError("deal_finish")
				e.log.Warn("deal finish write failed", applogger.Error(err))
			}
		}()
	}

	e.applyView(e.selected, now)
	e.statusText = "monitoring " + e.selected
	e.log.Info("deal finished", applogger.String("deal", d.ID))
	e.broadcast("deal_finished", d.ID)
	e.broadcast("status", e.statusText)
	e.broadcastState()
}

// --- control surface -------------------------------------------------------

// Snapshot recomputes the full control state. Never partial.
func (e *Engine) Snapshot() models.EngineControlState {
	if e.disabled {
		return e.disabledSnapshot()
	}
	var out models.EngineControlState
	e.do(func() { out = e.snapshotLocked() })
	return out
}

func (e *Engine) snapshotLocked() models.EngineControlState {
	st := models.EngineControlState{
		Symbol:         e.selected,
		Timeframe:      string(e.timeframe),
		Params:         e.params,
		RegimeOverride: e.override,
		Intensity:      e.intensity,
		ActiveRegime:   e.regime,
		StatusText:     e.statusText,
		Price:          e.price,
		ActiveEvent:    e.event,
		LatestSignals:  e.latestBatch,
		UpdatedAt:      time.Now(),
	}
	if e.activeDeal != nil {
		st.RunningDealID = e.activeDeal.ID
	}
	return st
}

func (e *Engine) disabledSnapshot() models.EngineControlState {
	return models.EngineControlState{
		Symbol:     market.DefaultSymbol,
		Timeframe:  string(domrepo.DefaultTimeframe()),
		Params:     market.Lookup(market.DefaultSymbol),
		Intensity:  1,
		StatusText: "engine disabled: no backing store",
		UpdatedAt:  time.Now(),
	}
}

// SetMarket selects a new symbol. Outside a deal the working series switches
// immediately (restored or resynthesized); during a deal only the selection
// changes and takes effect when the deal finishes.
func (e *Engine) SetMarket(symbol string) (models.EngineControlState, error) {
	if e.disabled {
		return e.disabledSnapshot(), nil
	}
	if !market.Known(symbol) {
		return models.EngineControlState{}, fmt.Errorf("unknown symbol %q", symbol)
	}
	var out models.EngineControlState
	e.do(func() {
		now := time.Now()
		if symbol != e.selected {
			e.selected = symbol
			if e.activeDeal == nil {
				e.archiveView()
				e.applyView(symbol, now)
				e.statusText = "monitoring " + symbol
			}
			e.persistConfig()
			e.broadcast("market_changed", symbol)
		}
		out = e.snapshotLocked()
		e.broadcastState()
	})
	return out, nil
}

// SetTimeframe switches candle bucketing. The window is truncated (buckets
// are not convertible) and observers are told to resubscribe.
func (e *Engine) SetTimeframe(tf domrepo.Timeframe) (models.EngineControlState, error) {
	if e.disabled {
		return e.disabledSnapshot(), nil
	}
	if !domrepo.IsValidTimeframe(tf) {
		return models.EngineControlState{}, fmt.Errorf("invalid timeframe %q", tf)
	}
	var out models.EngineControlState
	e.do(func() {
		if tf != e.timeframe {
			e.timeframe = tf
			if e.activeDeal != nil {
				e.candles = nil // truncate; the script refills fast
			} else {
				e.candles = e.seedHistory(time.Now())
			}
			e.persistConfig()
			e.broadcast("market_changed", e.viewSymbol)
		}
		out = e.snapshotLocked()
		e.broadcastState()
	})
	return out, nil
}

// SetRegime installs or clears a manual regime override and the intensity
// multiplier, re-deriving active parameters immediately.
func (e *Engine) SetRegime(override models.RegimeKind, intensity float64) (models.EngineControlState, error) {
	if e.disabled {
		return e.disabledSnapshot(), nil
	}
	if override != "" {
		switch override {
		case models.RegimeTrending, models.RegimeChoppy, models.RegimeHighVol, models.RegimeLowVol:
		default:
			return models.EngineControlState{}, fmt.Errorf("invalid regime override %q", override)
		}
	}
	var out models.EngineControlState
	e.do(func() {
		now := time.Now()
		e.override = override
		if intensity > 0 {
			e.intensity = intensity
		}
		e.regime = e.regimes.Next(e.regime, e.params, e.override, e.intensity)
		e.regimeDeadline = e.regimes.NextDeadline(now)
		e.persistConfig()
		out = e.snapshotLocked()
		e.broadcastState()
	})
	return out, nil
}

// TriggerEvent injects a one-shot market shock, replacing any active one.
func (e *Engine) TriggerEvent(kind models.EventKind, strength float64) (models.EngineControlState, error) {
	if e.disabled {
		return e.disabledSnapshot(), nil
	}
	var out models.EngineControlState
	var err error
	e.do(func() {
		ev := market.NewEvent(kind, strength, e.rng)
		if ev == nil {
			err = fmt.Errorf("unknown event kind %q", kind)
			return
		}
		ev.StartedAt = time.Now()
		e.event = ev
		e.log.Info("market event injected",
			applogger.String("kind", string(kind)),
			applogger.Any("strength", strength))
		e.broadcast("market_event", ev)
		out = e.snapshotLocked()
		e.broadcastState()
	})
	return out, err
}

func (e *Engine) persistConfig() {
	if e.cfg == nil {
		return
	}
	c := &models.EngineConfig{
		Symbol:         e.selected,
		Timeframe:      string(e.timeframe),
		RegimeOverride: e.override,
		Intensity:      e.intensity,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := e.cfg.Save(ctx, c); err != nil {
			e.metrics.RecordError("config_save")
			e.log.Warn("engine config save failed", applogger.Error(err))
		}
	}()
}

// --- query surface ---------------------------------------------------------

// CurrentPrice returns the latest simulated price (0 in disabled mode).
func (e *Engine) CurrentPrice() float64 {
	if e.disabled {
		return 0
	}
	var px float64
	e.do(func() { px = e.price })
	return px
}

// ActiveDealID returns the running deal id, or empty.
func (e *Engine) ActiveDealID() string {
	if e.disabled {
		return ""
	}
	var id string
	e.do(func() {
		if e.activeDeal != nil {
			id = e.activeDeal.ID
		}
	})
	return id
}

// RecentCandles returns up to limit most recent candles, oldest first.
func (e *Engine) RecentCandles(limit int) []models.Candle {
	if e.disabled || limit <= 0 {
		return nil
	}
	var out []models.Candle
	e.do(func() {
		n := len(e.candles)
		if limit > n {
			limit = n
		}
		out = make([]models.Candle, limit)
		copy(out, e.candles[n-limit:])
	})
	return out
}

// Rules returns the trading-rule parameters for the active symbol, including
// the regime-derived volatility multiplier.
func (e *Engine) Rules() models.TradingRules {
	if e.disabled {
		p := market.Lookup(market.DefaultSymbol)
		return models.TradingRules{Symbol: p.Symbol, FeeBps: p.FeeBps, MinNotional: p.MinNotional, MaxLeverage: p.MaxLeverage, VolFactor: 1}
	}
	var out models.TradingRules
	e.do(func() {
		vf := 1.0
		if e.params.NoiseBps > 0 {
			vf = e.regime.NoiseBps / e.params.NoiseBps
		}
		out = models.TradingRules{
			Symbol:      e.viewSymbol,
			FeeBps:      e.params.FeeBps,
			MinNotional: e.params.MinNotional,
			MaxLeverage: e.params.MaxLeverage,
			VolFactor:   vf,
		}
	})
	return out
}

// LatestSignals returns the most recent broadcast batch, or nil.
func (e *Engine) LatestSignals() *models.SignalBatch {
	if e.disabled {
		return nil
	}
	var out *models.SignalBatch
	e.do(func() { out = e.latestBatch })
	return out
}

// --- helpers ---------------------------------------------------------------

func (e *Engine) broadcast(event string, payload interface{}) {
	if e.bus != nil {
		e.bus.Broadcast(event, payload)
	}
}

func (e *Engine) broadcastState() {
	e.broadcast("control_state", e.snapshotLocked())
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

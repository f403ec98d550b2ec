package models

import "time"

// SignalAction is an agent or meta verdict.
type SignalAction string

const (
	ActionBuy     SignalAction = "BUY"
	ActionSell    SignalAction = "SELL"
	ActionOff     SignalAction = "OFF"
	ActionNoTrade SignalAction = "NO_TRADE"
)

// ModelSignal is one heuristic's verdict for one evaluation tick.
type ModelSignal struct {
	Agent      string       `json:"agent"`
	Action     SignalAction `json:"action"`
	Confidence int          `json:"confidence"` // percent
	Reasons    []string     `json:"reasons"`
}

// MetaDecision is the deterministic reduction of the current signal set.
type MetaDecision struct {
	Action     SignalAction `json:"action"`
	Confidence int          `json:"confidence"` // vote share, percent
	Reason     string       `json:"reason"`
}

// SignalLogEntry is a persisted forecast awaiting settlement. It is created
// with ResolvedAt nil and mutated exactly once, by the settlement pass, after
// HorizonSec elapse.
type SignalLogEntry struct {
	ID         string        `json:"id"`
	DealID     string        `json:"dealId,omitempty"`
	Symbol     string        `json:"symbol"`
	Price      float64       `json:"price"` // price at evaluation time
	Signals    []ModelSignal `json:"signals"`
	Meta       MetaDecision  `json:"meta"`
	HorizonSec float64       `json:"horizonSec"`
	CreatedAt  time.Time     `json:"createdAt"`
	ResolvedAt *time.Time    `json:"resolvedAt,omitempty"`
	OutcomePct *float64      `json:"outcomePct,omitempty"`
	Correct    *bool         `json:"correct,omitempty"`
}

// Matured reports whether the entry's horizon has elapsed and it is still
// unresolved.
func (e *SignalLogEntry) Matured(now time.Time) bool {
	return e.ResolvedAt == nil && now.Sub(e.CreatedAt).Seconds() >= e.HorizonSec
}

// HitRate is the rolling accuracy of one forecaster over the most recent
// resolved entries.
type HitRate struct {
	Agent    string  `json:"agent"`
	Wins     int     `json:"wins"`
	Total    int     `json:"total"`
	Percent  float64 `json:"percent"`
	Resolved int     `json:"resolved"`
}

// SignalBatch is the payload broadcast after each evaluation.
type SignalBatch struct {
	Symbol    string        `json:"symbol"`
	Timestamp time.Time     `json:"timestamp"`
	Signals   []ModelSignal `json:"signals"`
	Meta      MetaDecision  `json:"meta"`
	HitRates  []HitRate     `json:"hitRates"`
}

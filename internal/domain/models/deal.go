package models

import "time"

// DealStatus is the lifecycle state of an operator-scheduled scenario.
type DealStatus string

const (
	DealScheduled DealStatus = "SCHEDULED"
	DealRunning   DealStatus = "RUNNING"
	DealFinished  DealStatus = "FINISHED"
)

// Jump is one additive percentage rise inside a deal script: ramped over the
// first 3s of its window, held for HoldSec, then decayed to zero over 5s.
type Jump struct {
	DelaySec     float64 `json:"delaySec"`
	MagnitudePct float64 `json:"magnitudePct"`
	HoldSec      float64 `json:"holdSec"`
}

// Deal is an operator-authored scripted price scenario. Jumps are immutable
// once the deal is RUNNING.
type Deal struct {
	ID          string     `json:"id"`
	Symbol      string     `json:"symbol"`
	Label       string     `json:"label"`
	BasePrice   float64    `json:"basePrice"`
	StartAt     time.Time  `json:"startAt"`
	DurationSec float64    `json:"durationSec"`
	DropDelay   float64    `json:"dropDelaySec"`
	DropPct     float64    `json:"dropPct"`
	Jumps       []Jump     `json:"jumps"`
	Status      DealStatus `json:"status"`
	ClaimedAt   time.Time  `json:"claimedAt,omitempty"`
	FinishedAt  time.Time  `json:"finishedAt,omitempty"`
}

// Due reports whether the deal is scheduled and its start time has passed.
func (d *Deal) Due(now time.Time) bool {
	return d.Status == DealScheduled && !d.StartAt.After(now)
}

package models

// Requests for engine control and query endpoints. Defined in domain for
// consistency and reuse.

type SetMarketRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
}

type SetTimeframeRequest struct {
	TF string `query:"tf" json:"tf" validate:"required,oneof=1s 5s 15s 1m 5m"`
}

type SetRegimeRequest struct {
	Override  string  `query:"override" json:"override" validate:"omitempty,oneof=TRENDING CHOPPY HIGH_VOL LOW_VOL"`
	Intensity float64 `query:"intensity" json:"intensity" default:"1" validate:"gte=0.1,lte=10"`
}

type TriggerEventRequest struct {
	Kind     string  `query:"kind" json:"kind" validate:"required,oneof=NEWS_SPIKE DUMP SQUEEZE"`
	Strength float64 `query:"strength" json:"strength" default:"1" validate:"gte=0.1,lte=5"`
}

type CandlesRequest struct {
	Limit int `query:"limit" json:"limit" default:"300" validate:"gte=1,lte=3000"`
}

type ScheduleDealRequest struct {
	Symbol      string        `json:"symbol" validate:"required"`
	Label       string        `json:"label" validate:"required"`
	BasePrice   float64       `json:"basePrice" validate:"required,gt=0"`
	StartAt     string        `json:"startAt" validate:"required"` // RFC3339 or unix seconds
	DurationSec float64       `json:"durationSec" default:"90" validate:"gte=10,lte=3600"`
	DropDelay   float64       `json:"dropDelaySec" validate:"gte=0"`
	DropPct     float64       `json:"dropPct" validate:"gte=0,lte=90"`
	Jumps       []JumpRequest `json:"jumps" validate:"dive"`
}

type JumpRequest struct {
	DelaySec     float64 `json:"delaySec" validate:"gte=0"`
	MagnitudePct float64 `json:"magnitudePct" validate:"gte=0,lte=500"`
	HoldSec      float64 `json:"holdSec" validate:"gte=0,lte=3600"`
}

package forecast

import (
	"fmt"

	"SimPulse/internal/domain/models"
)

// MinBars is the minimum number of closed candles before agents evaluate.
const MinBars = 5

// Agent is one independent forecasting heuristic over the candle series.
// Implementations are pure: same series in, same signal out.
type Agent interface {
	Name() string
	Evaluate(cs []models.Candle) models.ModelSignal
}

// Agents returns the fixed evaluation set in stable order.
func Agents() []Agent {
	return []Agent{
		TrendAgent{},
		MomentumAgent{},
		VolatilityAgent{},
		VolumeAgent{},
		PatternAgent{},
	}
}

func off(name string, reasons ...string) models.ModelSignal {
	return models.ModelSignal{Agent: name, Action: models.ActionOff, Confidence: 0, Reasons: reasons}
}

// TrendAgent votes on the EMA9/EMA21 cross confirmed by the short slope.
type TrendAgent struct{}

func (TrendAgent) Name() string { return "trend" }

func (a TrendAgent) Evaluate(cs []models.Candle) models.ModelSignal {
	if len(cs) < MinBars {
		return off(a.Name(), "insufficient bars")
	}
	closes := Closes(cs)
	fast := EMA(closes, 9)
	slow := EMA(closes, 21)
	f := fast[len(fast)-1]
	s := slow[len(slow)-1]
	slope := Slope(closes, 5)

	switch {
	case f > s && slope > 0:
		conf := clampConf(55 + int(slope*12000))
		return models.ModelSignal{
			Agent: a.Name(), Action: models.ActionBuy, Confidence: conf,
			Reasons: []string{"ema9 above ema21", fmt.Sprintf("slope %+0.3f%%", slope*100)},
		}
	case f < s && slope < 0:
		conf := clampConf(55 + int(-slope*12000))
		return models.ModelSignal{
			Agent: a.Name(), Action: models.ActionSell, Confidence: conf,
			Reasons: []string{"ema9 below ema21", fmt.Sprintf("slope %+0.3f%%", slope*100)},
		}
	default:
		return off(a.Name(), "ema cross and slope disagree")
	}
}

// MomentumAgent votes on 14-period RSI thresholds at 35/65.
type MomentumAgent struct{}

func (MomentumAgent) Name() string { return "momentum" }

func (a MomentumAgent) Evaluate(cs []models.Candle) models.ModelSignal {
	if len(cs) < MinBars {
		return off(a.Name(), "insufficient bars")
	}
	rsi := RSI(Closes(cs), 14)
	v := rsi[len(rsi)-1]
	switch {
	case v > 0 && v < 35:
		return models.ModelSignal{
			Agent: a.Name(), Action: models.ActionBuy,
			Confidence: clampConf(50 + int(35-v)*2),
			Reasons:    []string{fmt.Sprintf("rsi14 oversold at %.1f", v)},
		}
	case v > 65:
		return models.ModelSignal{
			Agent: a.Name(), Action: models.ActionSell,
			Confidence: clampConf(50 + int(v-65)*2),
			Reasons:    []string{fmt.Sprintf("rsi14 overbought at %.1f", v)},
		}
	default:
		return off(a.Name(), fmt.Sprintf("rsi14 neutral at %.1f", v))
	}
}

// VolatilityAgent votes when the recent high-low range widens past a fixed
// threshold, direction taken from the EMA cross.
type VolatilityAgent struct{}

func (VolatilityAgent) Name() string { return "volatility" }

// rangeThreshold is the expansion trigger as a fraction of price.
const rangeThreshold = 0.004

func (a VolatilityAgent) Evaluate(cs []models.Candle) models.ModelSignal {
	if len(cs) < MinBars {
		return off(a.Name(), "insufficient bars")
	}
	width := RangeWidth(cs, 12)
	if width < rangeThreshold {
		return off(a.Name(), fmt.Sprintf("range %.2f%% below trigger", width*100))
	}
	closes := Closes(cs)
	fast := EMA(closes, 9)
	slow := EMA(closes, 21)
	reason := fmt.Sprintf("range expansion %.2f%%", width*100)
	conf := clampConf(48 + int(width/rangeThreshold*10))
	if fast[len(fast)-1] >= slow[len(slow)-1] {
		return models.ModelSignal{Agent: a.Name(), Action: models.ActionBuy, Confidence: conf,
			Reasons: []string{reason, "ema bias up"}}
	}
	return models.ModelSignal{Agent: a.Name(), Action: models.ActionSell, Confidence: conf,
		Reasons: []string{reason, "ema bias down"}}
}

// VolumeAgent votes when the last bar's volume exceeds the 10-bar average,
// direction taken from the price slope.
type VolumeAgent struct{}

func (VolumeAgent) Name() string { return "volume" }

func (a VolumeAgent) Evaluate(cs []models.Candle) models.ModelSignal {
	if len(cs) < MinBars {
		return off(a.Name(), "insufficient bars")
	}
	avg := AvgVolume(cs, 10)
	last := cs[len(cs)-1].Volume
	if avg <= 0 || last < avg*1.5 {
		return off(a.Name(), "no volume surge")
	}
	slope := Slope(Closes(cs), 4)
	ratio := last / avg
	conf := clampConf(45 + int(ratio*12))
	reason := fmt.Sprintf("volume %.1fx the 10-bar average", ratio)
	if slope >= 0 {
		return models.ModelSignal{Agent: a.Name(), Action: models.ActionBuy, Confidence: conf,
			Reasons: []string{reason, "price drifting up"}}
	}
	return models.ModelSignal{Agent: a.Name(), Action: models.ActionSell, Confidence: conf,
		Reasons: []string{reason, "price drifting down"}}
}

// PatternAgent looks for a flush through the local extremum of a 30-bar
// window: a close above the prior local high is a breakout, below the prior
// local low a breakdown.
type PatternAgent struct{}

func (PatternAgent) Name() string { return "pattern" }

const patternWindow = 30

func (a PatternAgent) Evaluate(cs []models.Candle) models.ModelSignal {
	if len(cs) < MinBars {
		return off(a.Name(), "insufficient bars")
	}
	n := patternWindow
	if n > len(cs) {
		n = len(cs)
	}
	window := cs[len(cs)-n : len(cs)-1]
	if len(window) == 0 {
		return off(a.Name(), "insufficient bars")
	}
	hi := window[0].High
	lo := window[0].Low
	for _, c := range window {
		if c.High > hi {
			hi = c.High
		}
		if c.Low < lo {
			lo = c.Low
		}
	}
	last := cs[len(cs)-1].Close
	switch {
	case last > hi:
		return models.ModelSignal{Agent: a.Name(), Action: models.ActionBuy, Confidence: 62,
			Reasons: []string{fmt.Sprintf("close %.4f above %d-bar high %.4f", last, n, hi)}}
	case last < lo:
		return models.ModelSignal{Agent: a.Name(), Action: models.ActionSell, Confidence: 62,
			Reasons: []string{fmt.Sprintf("close %.4f below %d-bar low %.4f", last, n, lo)}}
	default:
		return off(a.Name(), "inside local range")
	}
}

func clampConf(v int) int {
	if v < 0 {
		return 0
	}
	if v > 99 {
		return 99
	}
	return v
}

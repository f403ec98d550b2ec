package forecast

import (
	"math"

	"SimPulse/internal/domain/models"
)

// Closes extracts the close series from candles.
func Closes(cs []models.Candle) []float64 {
	out := make([]float64, len(cs))
	for i := range cs {
		out[i] = cs[i].Close
	}
	return out
}

// EMA returns the n-period exponential moving average of xs, aligned to xs.
// Indices before the first full window repeat the seed SMA.
func EMA(xs []float64, n int) []float64 {
	out := make([]float64, len(xs))
	if n <= 0 || len(xs) == 0 {
		return out
	}
	if len(xs) < n {
		n = len(xs)
	}
	var seed float64
	for i := 0; i < n; i++ {
		seed += xs[i]
	}
	seed /= float64(n)
	k := 2.0 / float64(n+1)
	prev := seed
	for i := range xs {
		if i < n {
			out[i] = seed
			continue
		}
		prev = xs[i]*k + prev*(1-k)
		out[i] = prev
	}
	return out
}

// RSI returns the n-period Relative Strength Index of xs using Wilder's
// smoothing. Indices before the first full window are zero.
func RSI(xs []float64, n int) []float64 {
	out := make([]float64, len(xs))
	if n <= 0 || len(xs) == 0 {
		return out
	}
	var gain, loss float64
	for i := 1; i < len(xs); i++ {
		d := xs[i] - xs[i-1]
		if i <= n {
			if d > 0 {
				gain += d
			} else {
				loss -= d
			}
			if i == n {
				out[i] = rsiValue(gain/float64(n), loss/float64(n))
			}
			continue
		}
		if d > 0 {
			gain = (gain*float64(n-1) + d) / float64(n)
			loss = (loss * float64(n-1)) / float64(n)
		} else {
			gain = (gain * float64(n-1)) / float64(n)
			loss = (loss*float64(n-1) - d) / float64(n)
		}
		out[i] = rsiValue(gain, loss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// Slope returns the normalized change of xs over the last n samples:
// (last - first) / first. Zero when the window is unavailable.
func Slope(xs []float64, n int) float64 {
	if n < 2 || len(xs) < n {
		return 0
	}
	first := xs[len(xs)-n]
	if first == 0 {
		return 0
	}
	return (xs[len(xs)-1] - first) / first
}

// RangeWidth returns the high-low width of the last n candles as a fraction
// of the latest close.
func RangeWidth(cs []models.Candle, n int) float64 {
	if len(cs) == 0 {
		return 0
	}
	if n > len(cs) {
		n = len(cs)
	}
	hi := math.Inf(-1)
	lo := math.Inf(1)
	for _, c := range cs[len(cs)-n:] {
		hi = math.Max(hi, c.High)
		lo = math.Min(lo, c.Low)
	}
	last := cs[len(cs)-1].Close
	if last <= 0 {
		return 0
	}
	return (hi - lo) / last
}

// AvgVolume returns the mean volume of the n candles before the last one.
func AvgVolume(cs []models.Candle, n int) float64 {
	if len(cs) < 2 {
		return 0
	}
	end := len(cs) - 1
	start := end - n
	if start < 0 {
		start = 0
	}
	if end == start {
		return 0
	}
	sum := 0.0
	for _, c := range cs[start:end] {
		sum += c.Volume
	}
	return sum / float64(end-start)
}

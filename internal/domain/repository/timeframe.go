package repository

import "time"

// Timeframe represents candle resolution buckets.
type Timeframe string

const (
	TF1s  Timeframe = "1s"
	TF5s  Timeframe = "5s"
	TF15s Timeframe = "15s"
	TF1m  Timeframe = "1m"
	TF5m  Timeframe = "5m"
)

// IsValidTimeframe returns true if tf is a supported timeframe.
func IsValidTimeframe(tf Timeframe) bool {
	switch tf {
	case TF1s, TF5s, TF15s, TF1m, TF5m:
		return true
	default:
		return false
	}
}

// DefaultTimeframe returns the default timeframe.
func DefaultTimeframe() Timeframe { return TF1s }

// NormalizeTimeframe converts raw string to a valid timeframe (or default).
func NormalizeTimeframe(s string) Timeframe {
	if s == "" {
		return DefaultTimeframe()
	}
	tf := Timeframe(s)
	if IsValidTimeframe(tf) {
		return tf
	}
	return DefaultTimeframe()
}

// Duration returns the bucket width of the timeframe.
func (tf Timeframe) Duration() time.Duration {
	switch tf {
	case TF1s:
		return time.Second
	case TF5s:
		return 5 * time.Second
	case TF15s:
		return 15 * time.Second
	case TF1m:
		return time.Minute
	case TF5m:
		return 5 * time.Minute
	default:
		return time.Second
	}
}

// Bucket truncates t to the timeframe boundary.
func (tf Timeframe) Bucket(t time.Time) time.Time {
	return t.Truncate(tf.Duration())
}

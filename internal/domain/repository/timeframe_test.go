package repository

import (
	"testing"
	"time"
)

func TestNormalizeTimeframe(t *testing.T) {
	if got := NormalizeTimeframe(""); got != TF1s {
		t.Fatalf("empty must normalize to default, got %s", got)
	}
	if got := NormalizeTimeframe("5m"); got != TF5m {
		t.Fatalf("expected 5m, got %s", got)
	}
	if got := NormalizeTimeframe("2h"); got != TF1s {
		t.Fatalf("unknown must fall back to default, got %s", got)
	}
}

func TestTimeframeBucketTruncates(t *testing.T) {
	ts := time.Date(2025, 3, 1, 10, 4, 37, 500e6, time.UTC)
	if got := TF1m.Bucket(ts); !got.Equal(time.Date(2025, 3, 1, 10, 4, 0, 0, time.UTC)) {
		t.Fatalf("1m bucket wrong: %v", got)
	}
	if got := TF15s.Bucket(ts); !got.Equal(time.Date(2025, 3, 1, 10, 4, 30, 0, time.UTC)) {
		t.Fatalf("15s bucket wrong: %v", got)
	}
}

func TestTimeframeDurations(t *testing.T) {
	cases := map[Timeframe]time.Duration{
		TF1s: time.Second, TF5s: 5 * time.Second, TF15s: 15 * time.Second,
		TF1m: time.Minute, TF5m: 5 * time.Minute,
	}
	for tf, want := range cases {
		if got := tf.Duration(); got != want {
			t.Fatalf("%s duration = %v, want %v", tf, got, want)
		}
	}
}

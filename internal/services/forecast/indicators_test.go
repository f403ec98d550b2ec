package forecast

import (
	"math"
	"testing"
)

func TestEMAConstantSeries(t *testing.T) {
	xs := []float64{5, 5, 5, 5, 5, 5, 5, 5}
	out := EMA(xs, 3)
	for i, v := range out {
		if math.Abs(v-5) > 1e-9 {
			t.Fatalf("ema[%d] = %v, want 5", i, v)
		}
	}
}

func TestEMATracksDirection(t *testing.T) {
	xs := make([]float64, 40)
	for i := range xs {
		xs[i] = float64(i + 1)
	}
	fast := EMA(xs, 5)
	slow := EMA(xs, 20)
	if fast[len(fast)-1] <= slow[len(slow)-1] {
		t.Fatalf("fast ema must lead on a rising series: %v vs %v", fast[len(fast)-1], slow[len(slow)-1])
	}
}

func TestRSIExtremes(t *testing.T) {
	up := make([]float64, 30)
	down := make([]float64, 30)
	for i := range up {
		up[i] = float64(100 + i)
		down[i] = float64(100 - i)
	}
	if v := RSI(up, 14)[29]; v != 100 {
		t.Fatalf("all-gains rsi = %v, want 100", v)
	}
	if v := RSI(down, 14)[29]; v != 0 {
		t.Fatalf("all-losses rsi = %v, want 0", v)
	}
}

func TestSlope(t *testing.T) {
	xs := []float64{100, 101, 102, 103, 110}
	got := Slope(xs, 5)
	want := 0.1
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("slope = %v, want %v", got, want)
	}
	if Slope(xs, 10) != 0 {
		t.Fatalf("short window must yield zero slope")
	}
}

func TestAvgVolumeExcludesLast(t *testing.T) {
	cs := series(100, 100, 100, 100)
	cs[3].Volume = 1000
	got := AvgVolume(cs, 3)
	if math.Abs(got-10) > 1e-9 {
		t.Fatalf("avg volume = %v, want 10 (last bar excluded)", got)
	}
}

package util

import (
	"testing"
	"time"
)

func TestParseTime(t *testing.T) {
	if _, ok := ParseTime(""); ok {
		t.Fatalf("empty string must not parse")
	}
	if _, ok := ParseTime("not-a-time"); ok {
		t.Fatalf("garbage must not parse")
	}

	got, ok := ParseTime("2025-06-01T12:00:00Z")
	if !ok || !got.Equal(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("rfc3339 parse failed: %v %v", got, ok)
	}

	got, ok = ParseTime("1748779200")
	if !ok || got.Unix() != 1748779200 {
		t.Fatalf("unix seconds parse failed: %v %v", got, ok)
	}

	got, ok = ParseTime("1748779200000")
	if !ok || got.UnixMilli() != 1748779200000 {
		t.Fatalf("unix millis parse failed: %v %v", got, ok)
	}
}

func TestParseIntDefault(t *testing.T) {
	if got := ParseIntDefault("", 7); got != 7 {
		t.Fatalf("empty must default, got %d", got)
	}
	if got := ParseIntDefault("abc", 7); got != 7 {
		t.Fatalf("invalid must default, got %d", got)
	}
	if got := ParseIntDefault("42", 7); got != 42 {
		t.Fatalf("valid must parse, got %d", got)
	}
}

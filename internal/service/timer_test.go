package service

import (
	"testing"
	"time"
)

func TestRemainingSecondsCountdown(t *testing.T) {
	start := time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		elapsed time.Duration
		want    int64
	}{
		{"at start", 0, 3600},
		{"halfway", 30 * time.Minute, 1800},
		{"one second left", 59*time.Minute + 59*time.Second, 1},
		{"exactly expired", 60 * time.Minute, 0},
		{"past deadline", 61 * time.Minute, 0},
		{"far past deadline", 24 * time.Hour, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := RemainingSeconds(start, 60, start.Add(tc.elapsed))
			if got != tc.want {
				t.Errorf("RemainingSeconds at +%v = %d, want %d", tc.elapsed, got, tc.want)
			}
		})
	}
}

func TestRemainingSecondsNonIncreasing(t *testing.T) {
	start := time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)

	prev := RemainingSeconds(start, 45, start)
	for elapsed := time.Second; elapsed <= 50*time.Minute; elapsed += 90 * time.Second {
		got := RemainingSeconds(start, 45, start.Add(elapsed))
		if got > prev {
			t.Fatalf("remaining time increased from %d to %d at +%v", prev, got, elapsed)
		}
		if got < 0 {
			t.Fatalf("remaining time went negative: %d at +%v", got, elapsed)
		}
		prev = got
	}
}

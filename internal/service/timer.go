package service

import "time"

// RemainingSeconds computes the remaining time of a session from its stored
// start time and the exam duration. The server clock is the single source of
// truth; client-reported elapsed time is advisory only and never consulted.
// Never negative. Reads do not auto-complete a session when this hits zero;
// finalization belongs to the submit path.
func RemainingSeconds(startedAt time.Time, durationMinutes int, now time.Time) int64 {
	deadline := startedAt.Add(time.Duration(durationMinutes) * time.Minute)
	remaining := deadline.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int64(remaining / time.Second)
}

package mpmq

import (
	"encoding/json"
	"log/slog"
	"time"
)

// collectResults drains the result channel after the scheduler loop has
// exited, placing each envelope's value at its offset in a slice sized to
// the input list. expected is the number of workers actually launched —
// every launched worker produces exactly one envelope, either written by
// the worker itself or synthesized by its pipe reader on EOF — so the drain
// normally ends as soon as that many have arrived. The idle timer bounds
// the wait when a killed worker's envelope never shows up.
func collectResults(results <-chan ResultEnvelope, n, expected int, idle time.Duration, logger *slog.Logger) []any {
	out := make([]any, n)
	if expected == 0 {
		return out
	}

	timer := time.NewTimer(idle)
	defer timer.Stop()

	for collected := 0; collected < expected; {
		select {
		case env := <-results:
			if env.Offset < 0 || env.Offset >= n {
				logger.Warn("discarding result with out-of-range offset", slog.Int("offset", env.Offset))
				continue
			}
			out[env.Offset] = decodeResult(env)
			collected++
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(idle)

		case <-timer.C:
			logger.Debug("result drain idle timeout", slog.Int("collected", collected), slog.Int("expected", expected))
			return out
		}
	}
	return out
}

// decodeResult turns one envelope into the value stored in the results
// slice: a *WorkerError as-is, a decoded JSON value on success, or nil for
// the empty envelope a killed worker leaves behind.
func decodeResult(env ResultEnvelope) any {
	if env.Error != nil {
		env.Error.Offset = env.Offset
		return env.Error
	}
	if env.Value == nil {
		return nil
	}
	var v any
	if err := json.Unmarshal(env.Value, &v); err != nil {
		return &WorkerError{
			Offset:    env.Offset,
			ClassName: "UnreadableResult",
			Message:   err.Error(),
		}
	}
	return v
}

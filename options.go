package mpmq

import (
	"log/slog"
	"time"

	"github.com/soda480/mpmq-go/metrics"
)

// Option configures a Controller. Use New(name, opts...) to construct one.
type Option func(*config)

// WithProcessData sets the ordered list of input records, one worker per
// entry. Each record's offset in this slice is its index into Execute's
// result slice.
func WithProcessData(data []Record) Option {
	return func(c *config) { c.ProcessData = data }
}

// WithSharedData sets the broadcast payload delivered to every worker:
// passed alongside its record, or merged into it under CallStyleKwargsMerged.
func WithSharedData(shared Record) Option {
	return func(c *config) { c.SharedData = shared }
}

// WithProcessesToStart sets the concurrency cap K. A value <= 0 resolves to
// len(ProcessData) (no cap) at construction time.
func WithProcessesToStart(n int) Option {
	return func(c *config) { c.ProcessesToStart = n }
}

// WithCallStyle selects how the registered function receives its record and
// SharedData.
func WithCallStyle(style CallStyle) Option {
	return func(c *config) { c.CallStyle = style }
}

// WithTimeout sets the join-after-DONE grace period and result-drain idle
// timeout (default 3s).
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.Timeout = d }
}

// WithObserver injects a UI/metrics extension collaborator. Default is
// NoopObserver.
func WithObserver(o Observer) Option {
	return func(c *config) { c.Observer = o }
}

// WithLogger injects the *slog.Logger used for the Controller's own
// ambient lifecycle logging. Default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.Logger = l }
}

// WithMetrics injects a metrics.Provider. Default is metrics.NewNoopProvider().
func WithMetrics(p metrics.Provider) Option {
	return func(c *config) { c.Metrics = p }
}

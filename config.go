package mpmq

import (
	"log/slog"
	"time"

	"github.com/soda480/mpmq-go/metrics"
)

// config holds Controller configuration, assembled via functional options.
type config struct {
	// Name is the registered name of the user function to run (see
	// mpmq/reexec.Register).
	Name string

	// ProcessData is the ordered list of input records, one worker per entry.
	// Defaults to a single empty record.
	ProcessData []Record

	// SharedData is an optional broadcast payload delivered to every worker,
	// separately or merged into its record per the selected CallStyle.
	SharedData Record

	// ProcessesToStart is the concurrency cap K. Defaults to len(ProcessData).
	ProcessesToStart int

	// CallStyle selects how a registered function receives its record and
	// SharedData. Default: CallStylePositional.
	CallStyle CallStyle

	// Timeout bounds (a) the join-after-DONE grace period and (b) the
	// result-drain idle timeout. Default: 3s.
	Timeout time.Duration

	Observer Observer
	Logger   *slog.Logger
	Metrics  metrics.Provider
}

// defaultConfig centralizes default values for config.
func defaultConfig() config {
	return config{
		ProcessesToStart: 0, // resolved to len(ProcessData) by validateConfig
		CallStyle:        CallStylePositional,
		Timeout:          3 * time.Second,
		Observer:         NoopObserver{},
		Logger:           slog.Default(),
		Metrics:          metrics.NewNoopProvider(),
	}
}

// validateConfig fills in data-dependent defaults and rejects invalid
// combinations assembled by the options.
func validateConfig(cfg *config) error {
	if cfg.Name == "" {
		return ErrInvalidConfig
	}
	if cfg.ProcessData == nil {
		// Unset defaults to a single empty record, matching the original
		// controller. An explicitly-empty slice stays empty: Execute then
		// returns no results without spawning anything.
		cfg.ProcessData = []Record{{}}
	}
	if cfg.ProcessesToStart <= 0 {
		cfg.ProcessesToStart = len(cfg.ProcessData)
	}
	if cfg.ProcessesToStart > len(cfg.ProcessData) {
		cfg.ProcessesToStart = len(cfg.ProcessData)
	}
	if cfg.Timeout <= 0 {
		return ErrInvalidConfig
	}
	if cfg.Observer == nil {
		cfg.Observer = NoopObserver{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoopProvider()
	}
	return nil
}

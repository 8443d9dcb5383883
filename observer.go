package mpmq

// Observer is the extension surface for UI integrations such as progress
// bars and multi-line dashboards. Implementations are injected via
// WithObserver; a panicking hook is a programming error and is allowed to
// propagate, never recovered by the core.
type Observer interface {
	// OnStartProcess is called immediately after a worker process is started
	// for offset, before the scheduler resumes polling.
	OnStartProcess(offset int, record Record)

	// OnCompleteProcess is called once a worker's DONE has been processed and
	// its process joined, with its H:MM:SS duration. Results are collected
	// only after the scheduler loop ends, so the worker's value is not yet in
	// the results slice when this runs.
	OnCompleteProcess(offset int, duration string)

	// ProcessMessage is called once for every non-control line a worker
	// writes to the message stream, in arrival order.
	ProcessMessage(offset int, payload string)

	// Final is called exactly once, in a defer-guaranteed block, as the very
	// last step of Execute before it returns.
	Final()
}

// NoopObserver is the zero-value Observer used when the caller supplies
// none, matching this package's metrics.Noop convention for optional
// collaborator interfaces.
type NoopObserver struct{}

func (NoopObserver) OnStartProcess(int, Record)    {}
func (NoopObserver) OnCompleteProcess(int, string) {}
func (NoopObserver) ProcessMessage(int, string)    {}
func (NoopObserver) Final()                        {}

var _ Observer = NoopObserver{}

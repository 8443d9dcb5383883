// Package mpmq runs a user function across a list of input records, one OS
// process per record, bounded to a configurable concurrency cap, and
// collects each worker's result indexed by its offset in the input list.
//
// Construction
//
//	c, err := mpmq.New("myFunc", mpmq.WithProcessData(records), mpmq.WithProcessesToStart(4))
//	results, err := c.Execute(ctx, true)
//
// The user function must be registered by name before use, via
// mpmq/reexec.Register: workers are separate OS processes reached by
// re-executing the current binary, and a Go closure cannot cross that
// boundary — only a name both sides resolve against the same registry can.
//
// Defaults
// Unless overridden, the following defaults apply:
//   - ProcessesToStart: len(ProcessData) (no concurrency cap)
//   - CallStyle: CallStylePositional
//   - Timeout: 3s (join-after-DONE grace and result-drain idle timeout)
//   - Observer: NoopObserver
//   - Metrics: metrics.NewNoopProvider()
//
// Cancellation
// A canceled ctx passed to Execute terminates every live worker and returns
// ErrInterrupted; translating that into a process exit status is left to
// the caller.
package mpmq

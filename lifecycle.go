package mpmq

import (
	"sync"
)

// lifecycleCoordinator encapsulates Execute's guaranteed teardown sequence.
// It is a wiring helper: it doesn't own the active set or channels; it
// orchestrates cancellation, joins/kills, draining, and the Observer's
// Final() hook in a deterministic order.
//
// Close() is safe for concurrent calls; the sequence executes exactly once.
type lifecycleCoordinator struct {
	cancel          func()
	forwarderWG     *sync.WaitGroup
	errorsSendWG    *sync.WaitGroup
	closeCh         chan struct{}
	killLiveWorkers func()
	drainCollector  func()
	closeChannels   func()
	final           func()

	once sync.Once
}

func newLifecycleCoordinator(
	cancel func(),
	closeCh chan struct{},
	forwarderWG *sync.WaitGroup,
	errorsSendWG *sync.WaitGroup,
	killLiveWorkers func(),
	drainCollector func(),
	closeChannels func(),
	final func(),
) *lifecycleCoordinator {
	return &lifecycleCoordinator{
		cancel:          cancel,
		closeCh:         closeCh,
		forwarderWG:     forwarderWG,
		errorsSendWG:    errorsSendWG,
		killLiveWorkers: killLiveWorkers,
		drainCollector:  drainCollector,
		closeChannels:   closeChannels,
		final:           final,
	}
}

// Close executes the shutdown sequence exactly once:
// 1) cancel the run's internal context
// 2) kill every live worker in the active set
// 3) close closeCh to stop detached forwarder senders
// 4) wait forwarderWG and errorsSendWG
// 5) drain the result collector
// 6) run closeChannels (Execute discards buffered frames; nothing is closed)
// 7) invoke Observer.Final()
func (lc *lifecycleCoordinator) Close() {
	lc.once.Do(func() {
		if lc.cancel != nil {
			lc.cancel()
		}
		if lc.killLiveWorkers != nil {
			lc.killLiveWorkers()
		}
		if lc.closeCh != nil {
			close(lc.closeCh)
		}
		if lc.forwarderWG != nil {
			lc.forwarderWG.Wait()
		}
		if lc.errorsSendWG != nil {
			lc.errorsSendWG.Wait()
		}
		if lc.drainCollector != nil {
			lc.drainCollector()
		}
		if lc.closeChannels != nil {
			lc.closeChannels()
		}
		if lc.final != nil {
			lc.final()
		}
	})
}

package mpmq

import (
	"context"
	"sync"
)

// errorForwarder consumes asynchronous failures from launcher goroutines —
// pipe-reader I/O errors and *LaunchErrors from exec.Cmd.Start() — and, on
// the first one, cancels the run via cancel() and forwards exactly one error
// to the scheduler's errors channel (out). If out is not immediately
// writable, it uses a detached sender goroutine tracked by sendWG that will
// either deliver later or drop on closeCh. After closeCh is closed, it
// drains any remaining internal errors and exits.
//
// The scheduler loop itself is single-threaded and synchronous; this is the
// only path by which goroutine-side failures reach it.
type errorForwarder struct {
	in      <-chan error
	out     chan<- error
	closeCh <-chan struct{}
	cancel  context.CancelFunc
	sendWG  *sync.WaitGroup
}

func newErrorForwarder(
	in <-chan error, out chan<- error, closeCh <-chan struct{}, cancel context.CancelFunc, sendWG *sync.WaitGroup,
) *errorForwarder {
	return &errorForwarder{in: in, out: out, closeCh: closeCh, cancel: cancel, sendWG: sendWG}
}

func (f *errorForwarder) run() {
	forwardedFirst := false
	for {
		select {
		case e := <-f.in:
			// Forward before canceling, so a scheduler woken by the
			// cancellation already finds the concrete error queued.
			if !forwardedFirst {
				forwardedFirst = true
				select {
				case f.out <- e:
				default:
					f.sendWG.Add(1)
					go func(err error) {
						defer f.sendWG.Done()
						select {
						case f.out <- err:
						case <-f.closeCh:
						}
					}(e)
				}
			}
			f.cancel()
		case <-f.closeCh:
			for {
				select {
				case <-f.in:
				default:
					return
				}
			}
		}
	}
}

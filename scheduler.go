package mpmq

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// workerLauncher abstracts process spawning so the scheduler's state machine
// can be exercised in-process by the test suite without forking; the real
// implementation is *launcher.
type workerLauncher interface {
	launch(ctx context.Context, offset int, record Record) (*workerRecord, error)
}

// pollInterval is how long the scheduler yields when a non-blocking read of
// the message channel comes up empty, keeping the loop from spinning a core
// while staying responsive to cancellation.
const pollInterval = 500 * time.Microsecond

// scheduler is the single-threaded event loop at the heart of Execute: it
// owns the pending queue and the active set, consumes the message stream,
// and performs every state transition. Per-worker pipe readers feed the
// messages channel from their own goroutines, but only this loop acts on
// what they deliver.
type scheduler struct {
	launcher workerLauncher
	messages <-chan frame
	errs     <-chan error

	pending  *pendingQueue
	active   *activeSet
	finished map[int]*workerRecord

	processesToStart int
	launched         int

	observer Observer
	logger   *slog.Logger
	inst     instruments
	timeout  time.Duration
}

// run executes the start phase and the main loop, returning nil on clean
// termination (pending empty and active empty), ErrInterrupted on context
// cancellation, and the forwarded error on a protocol or launch failure.
func (s *scheduler) run(ctx context.Context) error {
	if err := s.startProcesses(ctx); err != nil {
		return err
	}
	if s.pending.empty() && s.active.len() == 0 {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			// Prefer the concrete failure when cancellation was triggered by
			// the error forwarder rather than by the caller.
			select {
			case err := <-s.errs:
				return err
			default:
			}
			return fmt.Errorf("%w: %v", ErrInterrupted, context.Cause(ctx))

		case err := <-s.errs:
			return err

		case fr := <-s.messages:
			if fr.control == controlNone {
				s.observer.ProcessMessage(fr.offset, fr.payload)
				continue
			}
			done, err := s.processControl(ctx, fr)
			if err != nil {
				return err
			}
			if done {
				s.logger.Info("no more active workers, quitting")
				return nil
			}

		default:
			time.Sleep(pollInterval)
		}
	}
}

// startProcesses launches min(K, |pending|) workers in offset order.
func (s *scheduler) startProcesses(ctx context.Context) error {
	s.logger.Debug("starting background workers", slog.Int("cap", s.processesToStart), slog.Int("pending", s.pending.len()))
	for i := 0; i < s.processesToStart && !s.pending.empty(); i++ {
		if err := s.startNext(ctx); err != nil {
			return err
		}
	}
	s.logger.Info("started background workers", slog.Int("count", s.active.len()))
	return nil
}

// startNext pops the oldest pending item and launches a worker for it.
func (s *scheduler) startNext(ctx context.Context) error {
	item, ok := s.pending.pop()
	if !ok {
		return nil
	}
	w, err := s.launcher.launch(ctx, item.offset, item.record)
	if err != nil {
		return err
	}
	s.active.add(w)
	s.launched++
	s.inst.spawned.Add(1)
	s.inst.activeWorkers.Add(1)
	s.logger.Info("started worker",
		slog.Int("offset", item.offset),
		slog.String("worker_id", w.id.String()),
	)
	s.observer.OnStartProcess(item.offset, item.record)
	return nil
}

// processControl advances the state machine for a DONE or ERROR frame. The
// bool result is true when the loop's termination condition (pending empty,
// active empty) has been reached.
func (s *scheduler) processControl(ctx context.Context, fr frame) (bool, error) {
	switch fr.control {
	case controlDone:
		w, ok := s.active.remove(fr.offset)
		if !ok {
			return false, fmt.Errorf("%w: DONE for offset %d which is not active", ErrProtocol, fr.offset)
		}
		w.markDone()
		s.finished[w.offset] = w
		s.joinWorker(w)
		s.inst.completed.Add(1)
		s.inst.activeWorkers.Add(-1)
		s.inst.duration.Record(w.stopTime.Sub(w.startTime).Seconds())
		s.logger.Info("worker completed",
			slog.Int("offset", w.offset),
			slog.String("worker_id", w.id.String()),
			slog.String("duration", w.duration()),
		)
		s.observer.OnCompleteProcess(w.offset, w.duration())

		if !s.pending.empty() {
			return false, s.startNext(ctx)
		}
		return s.active.len() == 0, nil

	case controlError:
		// Soft fail-fast: stop starting new work, let in-flight work settle.
		s.logger.Info("error detected for worker", slog.Int("offset", fr.offset))
		if n := s.pending.len(); n > 0 {
			s.pending.purge()
			s.logger.Info("purged pending queue", slog.Int("purged", n))
		}
		return false, nil

	default:
		return false, fmt.Errorf("%w: unexpected control frame %q", ErrProtocol, fr.raw)
	}
}

// joinWorker waits up to timeout for a completed worker's process to exit,
// force-killing it past the grace period. A worker launched in-process (no
// underlying command) has nothing to join.
func (s *scheduler) joinWorker(w *workerRecord) {
	if w.cmd == nil {
		return
	}
	waited := make(chan error, 1)
	go func() { waited <- w.cmd.Wait() }()
	select {
	case <-waited:
	case <-time.After(s.timeout):
		s.logger.Warn("worker did not exit within join grace, killing",
			slog.Int("offset", w.offset),
			slog.String("worker_id", w.id.String()),
		)
		if w.cmd.Process != nil {
			_ = w.cmd.Process.Kill()
		}
		<-waited
	}
}

package mpmq

import (
	"context"
	"log/slog"
	"os/exec"
	"sync"

	"github.com/soda480/mpmq-go/metrics"
)

// messageBuffer is the capacity of the shared message channel the per-worker
// pipe readers fan into. Sized so a chatty worker can stay ahead of the
// scheduler without its reader goroutine blocking on every line.
const messageBuffer = 1024

// instruments holds the metric instruments the Controller records its worker
// lifecycle on.
type instruments struct {
	spawned       metrics.Counter
	completed     metrics.Counter
	activeWorkers metrics.UpDownCounter
	duration      metrics.Histogram
}

func newInstruments(p metrics.Provider) instruments {
	return instruments{
		spawned: p.Counter("mpmq.workers.spawned",
			metrics.WithUnit("1"), metrics.WithDescription("Worker processes launched.")),
		completed: p.Counter("mpmq.workers.completed",
			metrics.WithUnit("1"), metrics.WithDescription("Worker processes that delivered DONE.")),
		activeWorkers: p.UpDownCounter("mpmq.workers.active",
			metrics.WithUnit("1"), metrics.WithDescription("Worker processes currently alive.")),
		duration: p.Histogram("mpmq.worker.duration",
			metrics.WithUnit("seconds"), metrics.WithDescription("Worker wall-clock duration.")),
	}
}

// launcherFactory builds the workerLauncher Execute wires its channels into.
// It exists as a seam for the in-process test suite; outside of tests it is
// nil and the real os/exec-based launcher is used.
type launcherFactory func(messages chan<- frame, results chan<- ResultEnvelope, errs chan<- error) (workerLauncher, error)

// Controller fans the registered user function out across the input records,
// one OS process per record, bounded to ProcessesToStart concurrent workers,
// and collects each worker's result at its offset.
//
// A Controller is single-use per run: Execute must not be called
// concurrently with itself on the same Controller.
type Controller struct {
	cfg    config
	logger *slog.Logger
	inst   instruments
	active *activeSet

	newLauncher launcherFactory

	// finished retains per-offset metadata through teardown so completed
	// workers' timing stays reportable after the run. Written only by the
	// scheduler goroutine during Execute.
	finished map[int]*workerRecord
}

// New builds a Controller for the function registered under name (see
// mpmq/reexec.Register). Returns ErrInvalidConfig when the assembled options
// are unusable.
func New(name string, opts ...Option) (*Controller, error) {
	cfg := defaultConfig()
	cfg.Name = name
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &Controller{
		cfg:      cfg,
		logger:   cfg.Logger.With(slog.String("function", name)),
		inst:     newInstruments(cfg.Metrics),
		active:   newActiveSet(),
		finished: make(map[int]*workerRecord),
	}, nil
}

// Execute runs the scheduler to completion, drains the result stream, and
// returns the per-worker values ordered by offset. A worker-side failure
// appears as a *WorkerError at its offset; with raiseIfError set, any such
// value additionally fails the call with an *AggregateError naming every
// offending offset (the collected results are still returned alongside it).
//
// Cancellation of ctx terminates every live worker and returns
// ErrInterrupted; translating that into a process exit status is the
// caller's concern. The configured Observer's Final hook runs exactly once
// on every path out of Execute.
func (c *Controller) Execute(ctx context.Context, raiseIfError bool) ([]any, error) {
	n := len(c.cfg.ProcessData)
	if n == 0 {
		c.logger.Debug("no input records, nothing to spawn")
		c.cfg.Observer.Final()
		return []any{}, nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	messages := make(chan frame, messageBuffer)
	results := make(chan ResultEnvelope, n)
	launcherErrs := make(chan error, n)
	schedErrs := make(chan error, 1)
	closeCh := make(chan struct{})

	var forwarderWG, sendWG sync.WaitGroup
	forwarder := newErrorForwarder(launcherErrs, schedErrs, closeCh, cancel, &sendWG)
	forwarderWG.Add(1)
	go func() {
		defer forwarderWG.Done()
		forwarder.run()
	}()

	l, err := c.buildLauncher(messages, results, launcherErrs)
	if err != nil {
		close(closeCh)
		forwarderWG.Wait()
		c.cfg.Observer.Final()
		return nil, err
	}

	pending := newPendingQueue(n)
	for offset, record := range c.cfg.ProcessData {
		pending.push(offset, record)
	}

	sched := &scheduler{
		launcher:         l,
		messages:         messages,
		errs:             schedErrs,
		pending:          pending,
		active:           c.active,
		finished:         c.finished,
		processesToStart: c.cfg.ProcessesToStart,
		observer:         c.cfg.Observer,
		logger:           c.logger,
		inst:             c.inst,
		timeout:          c.cfg.Timeout,
	}

	var collected []any
	lc := newLifecycleCoordinator(
		cancel,
		closeCh,
		&forwarderWG,
		&sendWG,
		c.TerminateProcesses,
		func() { collected = collectResults(results, n, sched.launched, c.cfg.Timeout, c.logger) },
		func() { drainFrames(messages) },
		c.cfg.Observer.Final,
	)
	defer lc.Close()

	runErr := sched.run(runCtx)
	lc.Close()

	if runErr != nil {
		return nil, runErr
	}
	if raiseIfError {
		if agg := newAggregateError(collected); agg != nil {
			return collected, agg
		}
	}
	return collected, nil
}

// TerminateProcesses kills every live worker in the active set, best-effort.
// It is called automatically on cancellation; it is exported so callers
// wiring their own signal handling can force teardown directly.
func (c *Controller) TerminateProcesses() {
	for _, w := range c.active.live() {
		c.logger.Info("terminating worker",
			slog.Int("offset", w.offset),
			slog.String("worker_id", w.id.String()),
		)
		if w.cmd == nil || w.cmd.Process == nil {
			continue
		}
		_ = w.cmd.Process.Kill()
		// Reap asynchronously; the scheduler is no longer joining this one.
		go func(cmd *exec.Cmd) { _ = cmd.Wait() }(w.cmd)
	}
}

func (c *Controller) buildLauncher(messages chan<- frame, results chan<- ResultEnvelope, errs chan<- error) (workerLauncher, error) {
	if c.newLauncher != nil {
		return c.newLauncher(messages, results, errs)
	}
	return newLauncher(c.cfg.Name, c.cfg.CallStyle, c.cfg.SharedData.clone(), c.cfg.ProcessesToStart, messages, results, errs)
}

// drainFrames discards message-stream lines still buffered after the
// scheduler loop has exited, so late pipe readers never block on a full
// channel while the processes behind them are reaped.
func drainFrames(ch <-chan frame) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}

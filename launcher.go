package mpmq

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/google/uuid"
	"github.com/soda480/mpmq-go/pool"
)

// ReexecSentinel is the first argv element a worker process is started
// with; mpmq/reexec.Main looks for this exact value to decide whether the
// current process invocation is a worker re-exec rather than a normal
// program run. It must stay in sync with mpmq/reexec's own parsing, since
// the two packages cannot import each other both ways — this package
// defines the contract, mpmq/reexec consumes it.
const ReexecSentinel = "--mpmq-reexec-worker"

// launcher starts worker OS processes by re-executing the current binary
// with a sentinel argument. Each child gets its input on stdin, writes the
// message stream on stdout, and writes its result on an extra inherited
// pipe, keeping large return values off the line-framed log stream.
type launcher struct {
	executable string
	name       string
	callStyle  CallStyle
	shared     Record
	bufPool    pool.Pool

	messages chan<- frame
	results  chan<- ResultEnvelope
	errs     chan<- error
}

func newLauncher(name string, callStyle CallStyle, shared Record, capacity int, messages chan<- frame, results chan<- ResultEnvelope, errs chan<- error) (*launcher, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("%s: resolve current executable: %w", Namespace, err)
	}
	return &launcher{
		executable: exe,
		name:       name,
		callStyle:  callStyle,
		shared:     shared,
		bufPool:    pool.NewFixed(uint(capacity), func() interface{} { return make([]byte, 0, 64*1024) }),
		messages:   messages,
		results:    results,
		errs:       errs,
	}, nil
}

// launch starts the worker process for (offset, record) and returns the
// *workerRecord tracking it. Readers for both the message stream and the
// result stream run in detached goroutines that forward onto the shared
// channels until the process's stdout/result pipe are closed.
func (l *launcher) launch(ctx context.Context, offset int, record Record) (*workerRecord, error) {
	resultRead, resultWrite, err := os.Pipe()
	if err != nil {
		return nil, &LaunchError{Offset: offset, Err: err}
	}

	cmd := exec.CommandContext(ctx, l.executable, ReexecSentinel, l.name, fmt.Sprint(offset))
	cmd.ExtraFiles = []*os.File{resultWrite}
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		_ = resultRead.Close()
		_ = resultWrite.Close()
		return nil, &LaunchError{Offset: offset, Err: err}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		_ = resultRead.Close()
		_ = resultWrite.Close()
		return nil, &LaunchError{Offset: offset, Err: err}
	}

	if err := cmd.Start(); err != nil {
		_ = resultRead.Close()
		_ = resultWrite.Close()
		return nil, &LaunchError{Offset: offset, Err: err}
	}
	// The parent's copy of the write end must close so resultRead observes
	// EOF once the child's copy is also closed.
	_ = resultWrite.Close()

	wr := newWorkerRecord(offset, record, cmd)

	go l.writePayload(stdin, offset, record)
	go l.readMessages(offset, wr.id, stdout)
	go l.readResult(offset, resultRead)

	return wr, nil
}

func (l *launcher) writePayload(wc io.WriteCloser, offset int, record Record) {
	defer wc.Close()
	payload := WorkerPayload{Record: record, Shared: l.shared, CallStyle: l.callStyle}
	b, err := json.Marshal(payload)
	if err != nil {
		l.errs <- &LaunchError{Offset: offset, Err: err}
		return
	}
	if _, err := wc.Write(b); err != nil {
		l.errs <- &LaunchError{Offset: offset, Err: err}
	}
}

// readMessages tails a worker's stdout, parsing each line as a message-
// stream frame and forwarding it to the shared messages channel. workerID
// is accepted for symmetry with the ambient logging callers may wrap this
// with; the frame itself carries no correlation id since offsets are
// already unique per run.
func (l *launcher) readMessages(offset int, workerID uuid.UUID, r io.Reader) {
	_ = workerID
	buf := l.bufPool.Get().([]byte)
	defer l.bufPool.Put(buf[:0])

	sc := bufio.NewScanner(r)
	sc.Buffer(buf, 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		fr, err := parseFrame(line)
		if err != nil {
			l.errs <- fmt.Errorf("%w: offset %d: %w", ErrProtocol, offset, err)
			continue
		}
		fr.offset = offset
		l.messages <- fr
	}
}

func (l *launcher) readResult(offset int, r *os.File) {
	defer r.Close()
	dec := json.NewDecoder(r)
	var env ResultEnvelope
	if err := dec.Decode(&env); err != nil {
		// A worker that exits or is killed before writing a result leaves
		// no result envelope; an empty one is synthesized here and the
		// collector places nil for that offset.
		env = ResultEnvelope{Offset: offset}
	}
	env.Offset = offset
	l.results <- env
}

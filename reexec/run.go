package reexec

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strconv"

	"github.com/soda480/mpmq-go"
)

// resultFD is the descriptor the launcher's result-stream pipe arrives on in
// the child: the first ExtraFiles entry maps to fd 3, after stdin, stdout
// and stderr.
const resultFD = 3

// Main inspects os.Args for the re-exec sentinel the Worker Launcher starts
// children with. In a worker invocation it never returns: it runs the
// registered function and exits the process. In a normal program run it is
// a no-op, so host programs call it unconditionally at the top of main():
//
//	func main() {
//		reexec.Main()
//		// normal program follows
//	}
func Main() {
	if len(os.Args) < 4 || os.Args[1] != mpmq.ReexecSentinel {
		return
	}
	os.Exit(runWorker(os.Args[2], os.Args[3]))
}

// runWorker decodes the worker's inputs from its inherited descriptors and
// hands off to execute. Failures before the bridge is up cannot use the
// message stream, so they go to stderr and a non-zero exit; the parent sees
// the stdout pipe close without a DONE and synthesizes an empty result on
// the result-pipe EOF.
func runWorker(name, offsetArg string) int {
	offset, err := strconv.Atoi(offsetArg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reexec: bad worker offset %q: %v\n", offsetArg, err)
		return 2
	}

	var payload mpmq.WorkerPayload
	if err := json.NewDecoder(os.Stdin).Decode(&payload); err != nil {
		fmt.Fprintf(os.Stderr, "reexec: decode worker payload: %v\n", err)
		return 2
	}

	resultStream := os.NewFile(resultFD, "mpmq-result-stream")
	if resultStream == nil {
		fmt.Fprintln(os.Stderr, "reexec: result-stream descriptor missing")
		return 2
	}

	execute(os.Stdout, resultStream, offset, name, payload)
	return 0
}

// execute runs one worker invocation end to end: bridge install, registry
// lookup, user function call, result write, DONE frame. It is split from
// runWorker so the test suite can drive it in-process against io pipes
// without an actual fork.
func execute(msgW io.Writer, resultW io.WriteCloser, offset int, name string, payload mpmq.WorkerPayload) {
	b := newBridge(msgW, offset)
	b.install()
	defer b.uninstall()

	var env mpmq.ResultEnvelope
	env.Offset = offset

	value, werr := run(name, offset, payload)
	if werr == nil {
		raw, err := json.Marshal(value)
		if err != nil {
			werr = &mpmq.WorkerError{
				Offset:    offset,
				ClassName: "UnserializableResult",
				Message:   err.Error(),
			}
		} else {
			env.Value = raw
		}
	}
	if werr != nil {
		// Error announcement precedes the result write, which precedes DONE.
		b.frame("ERROR: " + werr.Message)
		b.frame("ERROR")
		env.Value = nil
		env.Error = werr
	}

	if err := json.NewEncoder(resultW).Encode(env); err != nil {
		fmt.Fprintf(os.Stderr, "reexec: write result envelope: %v\n", err)
	}
	_ = resultW.Close()
	b.frame("DONE")
}

// run resolves the registered function and invokes it under the selected
// call style, reifying an error return or a panic as a *WorkerError.
func run(name string, offset int, payload mpmq.WorkerPayload) (value any, werr *mpmq.WorkerError) {
	defer func() {
		if r := recover(); r != nil {
			werr = &mpmq.WorkerError{
				Offset:    offset,
				ClassName: "panic",
				Message:   fmt.Sprint(r),
				Trace:     string(debug.Stack()),
			}
		}
	}()

	fn, err := lookup(name)
	if err != nil {
		return nil, &mpmq.WorkerError{
			Offset:    offset,
			ClassName: "UnknownFunction",
			Message:   err.Error(),
		}
	}

	record, shared := payload.Record, payload.Shared
	if payload.CallStyle == mpmq.CallStyleKwargsMerged {
		record = mpmq.Merge(record, shared)
	}

	v, err := fn(context.Background(), record, shared)
	if err != nil {
		return nil, &mpmq.WorkerError{
			Offset:    offset,
			ClassName: fmt.Sprintf("%T", err),
			Message:   err.Error(),
		}
	}
	return v, nil
}

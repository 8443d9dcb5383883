// Package reexec provides the function registry, in-band log bridge, and
// re-exec entry point that let a worker process, launched by re-executing
// the host binary, look up and run the user function it was asked to run.
//
// Go closures cannot be sent across a process boundary, so functions are
// named once, in the same binary that calls reexec.Main, instead of being
// captured as closures at call time. The parent passes only the name; the
// child resolves it against its own copy of the registry.
package reexec

import (
	"context"
	"fmt"
	"sync"

	"github.com/soda480/mpmq-go"
)

// Func is the signature every registered worker function must satisfy.
// record is the worker's input record; under mpmq.CallStylePositional it is
// passed unmodified alongside shared. Under mpmq.CallStyleKwargsMerged,
// record has already been merged with shared (shared winning on key
// collision) by the time Func is invoked, and shared is passed again only
// for convenience.
type Func func(ctx context.Context, record, shared mpmq.Record) (any, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Func{}
)

// Register associates name with fn. It must be called from an init() or
// from main() before reexec.Main runs, in every binary that might be
// re-executed as a worker. Registering the same name twice panics, since it
// almost always indicates two packages picked the same name by accident.
func Register(name string, fn Func) {
	if name == "" {
		panic("reexec: Register called with empty name")
	}
	if fn == nil {
		panic("reexec: Register called with nil func")
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("reexec: function %q already registered", name))
	}
	registry[name] = fn
}

// lookup returns the function registered under name, or
// mpmq.ErrUnknownFunction if none was registered.
func lookup(name string) (Func, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", mpmq.ErrUnknownFunction, name)
	}
	return fn, nil
}

package reexec

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// bridge is the worker-side half of the in-band log protocol: it frames
// every line it writes with "#<offset>-" and, once installed, routes the
// process-wide slog default through itself so log output from any component
// in the worker tunnels over the message stream. The control frames
// (DONE/ERROR) the entry point emits go through the same writer, keeping the
// per-worker emission order the scheduler relies on.
type bridge struct {
	mu     sync.Mutex
	w      io.Writer
	offset int
	prev   *slog.Logger
}

func newBridge(w io.Writer, offset int) *bridge {
	return &bridge{w: w, offset: offset}
}

// install makes the bridge the process-wide default logger, remembering the
// previous default so uninstall can restore it.
func (b *bridge) install() {
	b.prev = slog.Default()
	slog.SetDefault(slog.New(&bridgeHandler{bridge: b}))
}

// uninstall restores the logger that was default before install. The worker
// process is usually about to exit anyway, but the test suite drives the
// bridge in-process without a fork and must not leak it across invocations.
func (b *bridge) uninstall() {
	if b.prev != nil {
		slog.SetDefault(b.prev)
	}
}

// frame writes one raw frame line: "#<offset>-<body>".
func (b *bridge) frame(body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fmt.Fprintf(b.w, "#%d-%s\n", b.offset, body)
}

// bridgeHandler is the slog.Handler the bridge installs. It renders each
// record as a single line — message followed by its attrs in key=value form
// — prefixed with the severity tag the frame grammar defines: "ERROR: " at
// error and above, "WARN: " at warn, "INFO: " at info. Debug and below
// carry no prefix.
type bridgeHandler struct {
	bridge *bridge
	attrs  []slog.Attr
}

func (h *bridgeHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *bridgeHandler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder
	sb.WriteString(r.Message)
	for _, a := range h.attrs {
		sb.WriteByte(' ')
		sb.WriteString(a.String())
	}
	r.Attrs(func(a slog.Attr) bool {
		sb.WriteByte(' ')
		sb.WriteString(a.String())
		return true
	})

	text := sb.String()
	switch {
	case r.Level >= slog.LevelError:
		text = "ERROR: " + text
	case r.Level >= slog.LevelWarn:
		text = "WARN: " + text
	case r.Level >= slog.LevelInfo:
		text = "INFO: " + text
	}
	h.bridge.frame(text)
	return nil
}

func (h *bridgeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &bridgeHandler{bridge: h.bridge, attrs: merged}
}

// WithGroup is accepted but not rendered: worker log lines are opaque
// one-line payloads to the parent, and group qualification adds nothing the
// scheduler or observers consume.
func (h *bridgeHandler) WithGroup(string) slog.Handler { return h }

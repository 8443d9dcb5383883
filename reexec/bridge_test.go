package reexec

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBridge_SeverityTagging(t *testing.T) {
	var buf bytes.Buffer
	b := newBridge(&buf, 4)
	b.install()
	defer b.uninstall()

	slog.Debug("plain line")
	slog.Info("informational")
	slog.Warn("watch out")
	slog.Error("it broke")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "#4-plain line", lines[0])
	assert.Equal(t, "#4-INFO: informational", lines[1])
	assert.Equal(t, "#4-WARN: watch out", lines[2])
	assert.Equal(t, "#4-ERROR: it broke", lines[3])
}

func TestBridge_AttrsRenderedInline(t *testing.T) {
	var buf bytes.Buffer
	b := newBridge(&buf, 0)
	b.install()
	defer b.uninstall()

	slog.Info("processing", slog.Int("item", 7))
	slog.With(slog.String("stage", "load")).Warn("slow")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "#0-INFO: processing item=7", lines[0])
	assert.Equal(t, "#0-WARN: slow stage=load", lines[1])
}

func TestBridge_ControlFrames(t *testing.T) {
	var buf bytes.Buffer
	b := newBridge(&buf, 12)

	b.frame("ERROR: something failed")
	b.frame("ERROR")
	b.frame("DONE")

	assert.Equal(t, "#12-ERROR: something failed\n#12-ERROR\n#12-DONE\n", buf.String())
}

func TestBridge_UninstallRestoresDefault(t *testing.T) {
	prev := slog.Default()

	var buf bytes.Buffer
	b := newBridge(&buf, 1)
	b.install()
	require.NotSame(t, prev, slog.Default())

	b.uninstall()
	assert.Same(t, prev, slog.Default())
}

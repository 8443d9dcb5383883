package mpmq

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerRecord_MarkDone(t *testing.T) {
	w := newWorkerRecord(3, Record{"x": 1}, nil)
	require.False(t, w.startTime.IsZero())
	require.True(t, w.stopTime.IsZero())

	w.markDone()
	assert.False(t, w.stopTime.IsZero())
	assert.False(t, w.stopTime.Before(w.startTime))
}

func TestWorkerRecord_DurationFormat(t *testing.T) {
	w := newWorkerRecord(0, Record{}, nil)
	w.startTime = time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		elapsed time.Duration
		want    string
	}{
		{elapsed: 0, want: "0:00:00"},
		{elapsed: 999 * time.Millisecond, want: "0:00:00"},
		{elapsed: time.Second, want: "0:00:01"},
		{elapsed: 61 * time.Second, want: "0:01:01"},
		{elapsed: time.Hour + 2*time.Minute + 3*time.Second, want: "1:02:03"},
		{elapsed: 25*time.Hour + 59*time.Minute + 59*time.Second, want: "25:59:59"},
	}
	for _, tt := range tests {
		w.stopTime = w.startTime.Add(tt.elapsed)
		assert.Equal(t, tt.want, w.duration(), "elapsed %v", tt.elapsed)
	}
}

func TestWorkerRecord_AliveWithoutProcess(t *testing.T) {
	w := newWorkerRecord(0, Record{}, nil)
	assert.False(t, w.alive())
}

func TestWorkerRecord_DistinctCorrelationIDs(t *testing.T) {
	a := newWorkerRecord(0, Record{}, nil)
	b := newWorkerRecord(1, Record{}, nil)
	assert.NotEqual(t, a.id, b.id)
}

package mpmq

import (
	"fmt"
	"os/exec"
	"time"

	"github.com/google/uuid"
)

// workerRecord is the per-offset process metadata the Controller maintains
// for the lifetime of one worker, retained through teardown so timing stays
// reportable after the run.
type workerRecord struct {
	offset int
	id     uuid.UUID // correlation id; PIDs are reused, this isn't

	cmd *exec.Cmd

	startTime time.Time
	stopTime  time.Time

	record Record
}

func newWorkerRecord(offset int, record Record, cmd *exec.Cmd) *workerRecord {
	return &workerRecord{
		offset:    offset,
		id:        uuid.New(),
		cmd:       cmd,
		record:    record,
		startTime: time.Now(),
	}
}

// markDone records the process's completion time.
func (w *workerRecord) markDone() {
	w.stopTime = time.Now()
}

// duration renders elapsed time truncated to whole seconds as H:MM:SS.
func (w *workerRecord) duration() string {
	stop := w.stopTime
	if stop.IsZero() {
		stop = time.Now()
	}
	d := stop.Sub(w.startTime).Truncate(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}

// alive reports whether the worker's process appears to still be running.
func (w *workerRecord) alive() bool {
	if w.cmd == nil || w.cmd.Process == nil {
		return false
	}
	if w.cmd.ProcessState != nil {
		return false
	}
	return true
}

package mpmq

import (
	"fmt"
	"regexp"
	"strconv"
)

// control identifies whether a frame carries a scheduler control signal or an
// opaque log payload.
type control int

const (
	controlNone control = iota
	controlDone
	controlError
)

var frameRE = regexp.MustCompile(`^#(\d+)-(DONE|ERROR)$`)
var frameOffsetRE = regexp.MustCompile(`^#(\d+)-(.*)$`)

// frame is a single parsed line from the message stream.
type frame struct {
	offset  int
	control control
	payload string // set only when control == controlNone
	raw     string
}

// parseFrame parses one line of the message-stream grammar. A body of
// exactly DONE or ERROR is a control frame; anything else is an opaque log
// payload. Returns ErrBadFrame for anything that doesn't match
// "#<offset>-<body>".
func parseFrame(line string) (frame, error) {
	if m := frameRE.FindStringSubmatch(line); m != nil {
		offset, err := strconv.Atoi(m[1])
		if err != nil {
			return frame{}, fmt.Errorf("%w: offset %q: %v", ErrBadFrame, m[1], err)
		}
		ctl := controlDone
		if m[2] == "ERROR" {
			ctl = controlError
		}
		return frame{offset: offset, control: ctl, raw: line}, nil
	}

	m := frameOffsetRE.FindStringSubmatch(line)
	if m == nil {
		return frame{}, fmt.Errorf("%w: %q", ErrBadFrame, line)
	}
	offset, err := strconv.Atoi(m[1])
	if err != nil {
		return frame{}, fmt.Errorf("%w: offset %q: %v", ErrBadFrame, m[1], err)
	}
	return frame{offset: offset, control: controlNone, payload: m[2], raw: line}, nil
}

package mpmq

import (
	"errors"
	"fmt"
)

// Format implements fmt.Formatter so that %+v on a *WorkerError prints its
// offset and class alongside the message.
func (e *WorkerError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			_, _ = fmt.Fprintf(s, "worker(offset=%d,class=%s): %s", e.Offset, e.ClassName, e.Message)
			return
		}
		fallthrough
	case 's':
		_, _ = fmt.Fprint(s, e.Error())
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", e.Error())
	}
}

// ExtractOffset returns the offset carried by err if it is (or wraps) a
// *WorkerError or a *LaunchError.
func ExtractOffset(err error) (int, bool) {
	var we *WorkerError
	if errors.As(err, &we) {
		return we.Offset, true
	}
	var le *LaunchError
	if errors.As(err, &le) {
		return le.Offset, true
	}
	return 0, false
}

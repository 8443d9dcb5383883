package mpmq

import "encoding/json"

// WorkerPayload is the JSON envelope the Worker Launcher writes to a worker
// process's stdin, carrying the data a re-exec'd process cannot otherwise
// receive: Go closures, and therefore their captured arguments, cannot cross
// a process boundary. It is exported because mpmq/reexec decodes it on the
// child side of the fork; this package defines the contract, mpmq/reexec
// consumes it.
type WorkerPayload struct {
	Record    Record    `json:"record"`
	Shared    Record    `json:"shared"`
	CallStyle CallStyle `json:"call_style"`
}

// ResultEnvelope is the JSON record a worker writes to its dedicated
// result-stream pipe, self-describing so the parent can reindex it without
// any channel-level framing. Exactly one of Value and Error is set; a worker
// killed before writing anything produces an envelope with neither (the
// launcher synthesizes it on pipe EOF).
type ResultEnvelope struct {
	Offset int             `json:"offset"`
	Value  json.RawMessage `json:"value,omitempty"`
	Error  *WorkerError    `json:"error,omitempty"`
}

package stress

import "time"

// Stage describes a phase of a stress run.
type Stage string

const (
	// StageOps is the concurrent operation phase.
	StageOps Stage = "ops"
	// StageValidate checks every tracker after the workers finished.
	StageValidate Stage = "validate"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the worker is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the worker is running operations.
	StatusWorking Status = "working"
	// StatusDone indicates the worker finished.
	StatusDone Status = "done"
	// StatusError indicates the worker failed.
	StatusError Status = "error"
)

// Event reports progress for one worker, or for the whole run when Worker
// is negative.
type Event struct {
	Worker  int
	Stage   Stage
	Status  Status
	Done    int
	Total   int
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

type nopSink struct{}

func (nopSink) OnEvent(Event) {}

// OpKind is a kind of stress operation.
type OpKind uint8

const (
	OpAppend OpKind = iota
	OpWrite
	OpCopy
	OpSelfCopy
	OpClear
	OpSnapshot
	OpTwinAppend
	opCount
)

func (k OpKind) String() string {
	switch k {
	case OpAppend:
		return "append"
	case OpWrite:
		return "write"
	case OpCopy:
		return "copy"
	case OpSelfCopy:
		return "self_copy"
	case OpClear:
		return "clear"
	case OpSnapshot:
		return "snapshot"
	case OpTwinAppend:
		return "twin_append"
	default:
		return "unknown"
	}
}

// Stats counts the operations a run performed.
type Stats struct {
	Ops     [opCount]int64
	Markers int
	Elapsed time.Duration
}

// Total returns the number of operations across all kinds.
func (s Stats) Total() int64 {
	var n int64
	for _, c := range s.Ops {
		n += c
	}
	return n
}

// Count returns the number of operations of kind k.
func (s Stats) Count(k OpKind) int64 {
	if k >= opCount {
		return 0
	}
	return s.Ops[k]
}

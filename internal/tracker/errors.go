package tracker

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument indicates a call that would corrupt the sparse map,
	// such as a negative index or a growth with non-positive blocks.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnsupported indicates an operation the tracker variant does not
	// support, such as SetSource on an origin tracker.
	ErrUnsupported = errors.New("unsupported operation")
)

// ErrorKind classifies tracker errors.
type ErrorKind uint8

const (
	// KindInvalidArgument marks contract violations by the caller.
	KindInvalidArgument ErrorKind = iota + 1
	KindUnsupported
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid argument"
	case KindUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Error is returned by tracker operations. It unwraps to ErrInvalidArgument or
// ErrUnsupported depending on Kind.
type Error struct {
	Kind    ErrorKind
	Op      string
	Tracker ID
	Detail  string
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Detail == "" {
		return fmt.Sprintf("tracker#%d: %s: %s", e.Tracker, e.Op, e.Kind)
	}
	return fmt.Sprintf("tracker#%d: %s: %s: %s", e.Tracker, e.Op, e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	switch e.Kind {
	case KindInvalidArgument:
		return ErrInvalidArgument
	case KindUnsupported:
		return ErrUnsupported
	default:
		return nil
	}
}

func invalidArgument(id ID, op, format string, args ...any) error {
	return &Error{Kind: KindInvalidArgument, Op: op, Tracker: id, Detail: fmt.Sprintf(format, args...)}
}

func unsupported(id ID, op, detail string) error {
	return &Error{Kind: KindUnsupported, Op: op, Tracker: id, Detail: detail}
}

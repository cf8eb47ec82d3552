package eval

import (
	"errors"
	"fmt"
)

// ErrorKind classifies evaluation failures
type ErrorKind int

const (
	UnboundVariable ErrorKind = iota + 1
	TypeMismatch
	ArityMismatch
	NotCallable
	EmptyListPick
	NonBooleanGuard
	NonNumericRepeatCount
	InvalidArgument
	DepthExceeded
)

func (k ErrorKind) String() string {
	switch k {
	case UnboundVariable:
		return "unbound variable"
	case TypeMismatch:
		return "type mismatch"
	case ArityMismatch:
		return "arity mismatch"
	case NotCallable:
		return "not callable"
	case EmptyListPick:
		return "empty list pick"
	case NonBooleanGuard:
		return "non-boolean guard"
	case NonNumericRepeatCount:
		return "non-numeric repeat count"
	case InvalidArgument:
		return "invalid argument"
	case DepthExceeded:
		return "recursion depth exceeded"
	default:
		return "runtime error"
	}
}

// RuntimeError is a fatal evaluation failure. Any RuntimeError aborts the
// whole run; the draw commands emitted so far are not meaningful.
type RuntimeError struct {
	Kind ErrorKind
	Msg  string
}

func (e *RuntimeError) Error() string {
	return e.Kind.String() + ": " + e.Msg
}

func errorf(kind ErrorKind, format string, args ...any) *RuntimeError {
	return &RuntimeError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the RuntimeError in err's chain, or 0
func KindOf(err error) ErrorKind {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Kind
	}
	return 0
}

package diagnostics

import (
	"fmt"

	"github.com/pkg/errors"
)

// InternalError signals a compiler bug or an intentionally unimplemented path.
// It is raised with panic and must never be turned into an in-graph diagnostic.
type InternalError struct {
	cause error
}

func (e *InternalError) Error() string {
	return "internal compiler error: " + e.cause.Error()
}

func (e *InternalError) Unwrap() error {
	return e.cause
}

// StackTrace exposes the stack captured at the failure site.
func (e *InternalError) StackTrace() errors.StackTrace {
	if tracer, ok := e.cause.(interface{ StackTrace() errors.StackTrace }); ok {
		return tracer.StackTrace()
	}
	return nil
}

// Fatalf aborts the current run with an InternalError.
func Fatalf(format string, args ...interface{}) {
	panic(&InternalError{cause: errors.Errorf(format, args...)})
}

// Recover converts an InternalError panic into an error assigned to *err.
// Other panics are propagated unchanged.
//
//	defer diagnostics.Recover(&err)
func Recover(err *error) {
	r := recover()
	if r == nil {
		return
	}
	internal, ok := r.(*InternalError)
	if !ok {
		panic(r)
	}
	*err = internal
}

// IsInternal reports whether err is (or wraps) an InternalError.
func IsInternal(err error) bool {
	var internal *InternalError
	return errors.As(err, &internal)
}

func (e *InternalError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			fmt.Fprintf(s, "%s%+v", "internal compiler error: ", e.cause)
			return
		}
		fallthrough
	case 's':
		fmt.Fprint(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}

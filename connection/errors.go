package connection

import (
	stderrors "errors"
	"fmt"

	"github.com/go-errors/errors"
)

// Reason classifies why a connection operation failed.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonConfigRejected
	ReasonDriverError
	ReasonTimeout
	ReasonAborted
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonConfigRejected:
		return "config-rejected"
	case ReasonDriverError:
		return "driver-error"
	case ReasonTimeout:
		return "timeout"
	case ReasonAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Failure is returned by every failing Manager operation.
type Failure struct {
	Reason Reason
	Err    error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return f.Reason.String()
	}

	return fmt.Sprintf("%v: %v", f.Reason, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func fail(reason Reason, format string, args ...interface{}) error {
	return &Failure{
		Reason: reason,
		Err:    errors.Errorf(format, args...),
	}
}

// ReasonOf returns the failure reason carried by err. Errors that did not
// originate from a Manager count as driver errors.
func ReasonOf(err error) Reason {
	if err == nil {
		return ReasonNone
	}

	var f *Failure
	if stderrors.As(err, &f) {
		return f.Reason
	}

	return ReasonDriverError
}

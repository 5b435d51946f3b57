package indicator

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package wraps exactly one of them,
// so callers branch with errors.Is.
var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrInvalidData      = errors.New("invalid data")
	ErrLengthMismatch   = errors.New("length mismatch")
	ErrInsufficientData = errors.New("insufficient data")
	ErrNaNDetected      = errors.New("nan detected")
	ErrConversion       = errors.New("conversion")
)

// Error carries the failing function and a short detail alongside its kind.
type Error struct {
	Kind error
	Func string
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Func + ": " + e.Kind.Error()
	}
	return e.Func + ": " + e.Kind.Error() + ": " + e.Msg
}

func (e *Error) Unwrap() error { return e.Kind }

func errorf(kind error, fn, format string, args ...any) error {
	return &Error{Kind: kind, Func: fn, Msg: fmt.Sprintf(format, args...)}
}

func checkPeriod(fn string, period, min int) error {
	if period < min {
		return errorf(ErrInvalidParameter, fn, "period %d < %d", period, min)
	}
	return nil
}

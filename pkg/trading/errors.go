package trading

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindConfiguration is a missing or invalid config field, fatal at init
	KindConfiguration Kind = iota + 1
	// KindNetwork means the operation did not necessarily fail for good, callers may retry
	KindNetwork
	// KindUnexpected means the call failed, do not assume partial success
	KindUnexpected
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindNetwork:
		return "network"
	case KindUnexpected:
		return "unexpected"
	default:
		return "unknown"
	}
}

var (
	ErrConfiguration   = errors.New("configuration error")
	ErrNetwork         = errors.New("exchange network error")
	ErrUnexpected      = errors.New("unexpected exchange error")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Error is the only error type connectors let out. Err keeps the original fault.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", e.Op, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Err.Error())
	}

	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrConfiguration:
		return e.Kind == KindConfiguration
	case ErrNetwork:
		return e.Kind == KindNetwork
	case ErrUnexpected:
		return e.Kind == KindUnexpected
	}

	return false
}

// Retryable reports whether err is a network kind error.
func Retryable(err error) bool {
	return errors.Is(err, ErrNetwork)
}

func ConfigurationError(msg string, err error) *Error {
	return &Error{
		Kind: KindConfiguration,
		Msg:  msg,
		Err:  err,
	}
}

func InvalidArgument(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

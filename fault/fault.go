// Package fault defines the error kinds shared by every gosv component.
// All failures are fatal at the simulation driver; the only retry loop
// in the program (time-step rejection) is ordinary control flow and
// never produces an Error.
package fault

import (
	"errors"
	"fmt"
)

type Kind uint8

const (
	ConfigurationError Kind = iota
	InvalidCombination
	UnsupportedGeometry
	InvalidInversion
	IOFailure
	ConvergenceFailure
	NotImplemented
)

var kindNames = []string{
	"configuration error",
	"invalid combination",
	"unsupported geometry",
	"invalid inversion",
	"io failure",
	"convergence failure",
	"not implemented",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Is reports whether err carries the given kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	var fe *Error
	for {
		if !errors.As(err, &fe) {
			return false
		}
		if fe.Kind == kind {
			return true
		}
		err = fe.Err
	}
}

package models

import "fmt"

type ErrorKind int

const (
	NotFound ErrorKind = iota
	ValidationFailure
	NetworkFailure
	ServerFailure
)

func (k ErrorKind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case ValidationFailure:
		return "validation_failure"
	case NetworkFailure:
		return "network_failure"
	case ServerFailure:
		return "server_failure"
	default:
		return "unknown"
	}
}

// ErrorState is the user-facing failure of a triggering action. It is the
// only error type that reaches a presenter.
type ErrorState struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func NewError(kind ErrorKind, message string) *ErrorState {
	return &ErrorState{Kind: kind, Message: message}
}

func WrapError(kind ErrorKind, message string, err error) *ErrorState {
	return &ErrorState{Kind: kind, Message: message, Err: err}
}

func (e *ErrorState) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ErrorState) Unwrap() error {
	return e.Err
}

// Region names the display area a presenter is asked to bring into view.
type Region int

const (
	RegionAnalysis Region = iota
	RegionError
)

func (r Region) String() string {
	if r == RegionError {
		return "error"
	}
	return "analysis"
}

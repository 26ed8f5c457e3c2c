package rpc

import "errors"

// CommandError means the backend received the command and rejected it.
type CommandError struct {
	Command string
	Message string
}

func (e *CommandError) Error() string {
	if e.Message == "" {
		return "command " + e.Command + " failed"
	}
	return "command " + e.Command + " failed: " + e.Message
}

// TransportError means the command never got a usable answer (network, timeout, bad payload).
type TransportError struct {
	Command string
	Err     error
}

func (e *TransportError) Error() string { return "command " + e.Command + ": " + e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

// IsCommandError reports whether err is a backend-side rejection.
func IsCommandError(err error) bool {
	var ce *CommandError
	return errors.As(err, &ce)
}

// IsTransportError reports whether err is a transport failure.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

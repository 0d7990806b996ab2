package model

import "errors"

var (
	// ErrTerminalNotFound is returned when a terminal session is not found.
	ErrTerminalNotFound = errors.New("terminal not found")

	// ErrWebSessionNotFound is returned when a browser session is not found.
	ErrWebSessionNotFound = errors.New("web session not found")

	// ErrWebSessionClosed is returned when an operation targets a closed browser session.
	ErrWebSessionClosed = errors.New("web session closed")

	// ErrTooManySessions is returned when the concurrent browser session limit is reached.
	ErrTooManySessions = errors.New("too many web sessions")
)

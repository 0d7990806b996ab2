package model

import "time"

// TerminalStatus represents the lifecycle state of a terminal session.
// The transition running -> exited happens exactly once and is irreversible.
type TerminalStatus string

const (
	TerminalStatusRunning TerminalStatus = "running"
	TerminalStatusExited  TerminalStatus = "exited"
)

// TerminalSummary is the API-facing view of a terminal session.
type TerminalSummary struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	Status          TerminalStatus `json:"status"`
	ExitCode        *int           `json:"exitCode"`
	ExitSignal      *string        `json:"exitSignal"`
	AttachedClients int            `json:"attachedClients"`
}

// WebSessionDescriptor is the API-facing view of a browser session.
type WebSessionDescriptor struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

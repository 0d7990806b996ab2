// Package terminal implements the pseudo-terminal session manager and its
// output-broadcast protocol.
package terminal

import (
	"fmt"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/web-terminal-gateway/backend/internal/buffer"
	"github.com/web-terminal-gateway/backend/internal/logging"
	"github.com/web-terminal-gateway/backend/internal/model"
	"github.com/web-terminal-gateway/backend/internal/ws"
)

const (
	// readBufferSize is the chunk size for reading PTY output.
	readBufferSize = 4096

	// killWait bounds how long Terminate waits for the exit handler after
	// sending SIGKILL. The summary may still say running if the process
	// lingers past this.
	killWait = 700 * time.Millisecond
)

// Session is one spawned shell process inside a pseudo-terminal, with its
// rolling output buffer and attached-client set. Owned exclusively by the
// Manager; it stays registered after exit until the gateway shuts down.
type Session struct {
	id        string
	title     string
	createdAt time.Time

	ptmx   *os.File
	cmd    *exec.Cmd
	buffer *buffer.RingBuffer
	hub    *ws.Hub
	logger *logging.Logger

	// exited closes when the exit handler has run.
	exited chan struct{}

	// mu guards the mutable lifecycle fields and serializes buffer append +
	// broadcast against attach replay, so a new client sees exactly the
	// buffered prefix followed by post-attach output.
	mu         sync.Mutex
	updatedAt  time.Time
	status     model.TerminalStatus
	exitCode   *int
	exitSignal *string
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Summary returns the API-facing view of the session.
func (s *Session) Summary() model.TerminalSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	return model.TerminalSummary{
		ID:              s.id,
		Title:           s.title,
		CreatedAt:       s.createdAt,
		UpdatedAt:       s.updatedAt,
		Status:          s.status,
		ExitCode:        s.exitCode,
		ExitSignal:      s.exitSignal,
		AttachedClients: s.hub.ClientCount(),
	}
}

// Attach registers a transport connection. The client immediately receives
// a ready message, then the full output buffer as one output message, then
// an exit message if the process already exited.
func (s *Session) Attach(client *ws.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	client.SendMessage(&ws.Message{
		Type:       ws.MessageTypeReady,
		TerminalID: s.id,
		Status:     string(s.status),
	})
	if buffered := s.buffer.ReadAll(); len(buffered) > 0 {
		client.SendMessage(&ws.Message{Type: ws.MessageTypeOutput, Data: string(buffered)})
	}
	if s.status == model.TerminalStatusExited {
		client.SendMessage(&ws.Message{Type: ws.MessageTypeExit, Code: s.exitCode, Signal: s.exitSignal})
	}
	s.hub.Register(client)
}

// Detach unregisters a transport connection.
func (s *Session) Detach(client *ws.Client) {
	s.hub.Unregister(client)
}

// Write writes input bytes to the shell's stdin while running. Input after
// exit is silently dropped: the process may have exited between keystrokes,
// which is not an error.
func (s *Session) Write(data []byte) {
	s.mu.Lock()
	running := s.status == model.TerminalStatusRunning
	s.mu.Unlock()

	if !running || len(data) == 0 {
		return
	}
	if _, err := s.ptmx.Write(data); err != nil {
		s.logger.Debug("terminal input write failed",
			logging.String("terminalId", s.id), logging.Error(err))
	}
}

// appendAndBroadcast records output and fans it out to all attached clients
// in production order.
func (s *Session) appendAndBroadcast(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buffer.Write(data)
	s.updatedAt = time.Now()
	s.hub.BroadcastMessage(&ws.Message{Type: ws.MessageTypeOutput, Data: string(data)})
}

// readLoop is the single producer for this session's output. It drains the
// PTY until the process exits and the master side errors out.
func (s *Session) readLoop() {
	buf := make([]byte, readBufferSize)
	for {
		n, err := s.ptmx.Read(buf)
		if n > 0 {
			s.appendAndBroadcast(buf[:n])
		}
		if err != nil {
			// EIO is the normal Linux end-of-stream for a PTY master.
			return
		}
	}
}

// waitLoop waits for the shell to exit, then marks the session exited and
// broadcasts the exit event exactly once.
func (s *Session) waitLoop() {
	err := s.cmd.Wait()

	var code *int
	var signal *string
	if err == nil {
		zero := 0
		code = &zero
	} else if exitErr, ok := err.(*exec.ExitError); ok {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
			name := unix.SignalName(status.Signal())
			signal = &name
		} else {
			c := exitErr.ExitCode()
			code = &c
		}
	} else {
		// Process-level failure: surface it in-band so the user sees it in
		// the terminal, not as a protocol error.
		s.appendAndBroadcast([]byte(fmt.Sprintf("\r\n[terminal error] %v\r\n", err)))
	}

	s.mu.Lock()
	if s.status == model.TerminalStatusExited {
		s.mu.Unlock()
		return
	}
	s.status = model.TerminalStatusExited
	s.exitCode = code
	s.exitSignal = signal
	s.updatedAt = time.Now()
	s.hub.BroadcastMessage(&ws.Message{Type: ws.MessageTypeExit, Code: code, Signal: signal})
	s.mu.Unlock()

	close(s.exited)
	s.ptmx.Close()
}

// kill sends SIGKILL and waits up to killWait for the exit handler.
func (s *Session) kill() {
	s.mu.Lock()
	running := s.status == model.TerminalStatusRunning
	s.mu.Unlock()

	if !running {
		return
	}
	if proc := s.cmd.Process; proc != nil {
		proc.Kill()
	}
	select {
	case <-s.exited:
	case <-time.After(killWait):
	}
}

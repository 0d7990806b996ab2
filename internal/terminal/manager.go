package terminal

import (
	"fmt"
	"os"
	"os/exec"
	"sort"
	"sync"
	"time"

	"github.com/creack/pty"
	"github.com/google/uuid"

	"github.com/web-terminal-gateway/backend/internal/buffer"
	"github.com/web-terminal-gateway/backend/internal/logging"
	"github.com/web-terminal-gateway/backend/internal/model"
	"github.com/web-terminal-gateway/backend/internal/ws"
)

// Config carries the spawn parameters shared by every terminal session.
type Config struct {
	Shell          string
	Workdir        string
	Cols           uint16
	Rows           uint16
	BufferMaxChars int
}

// Manager owns the terminal session registry. Sessions are created on demand
// and stay listed after their process exits; only gateway shutdown removes
// them.
type Manager struct {
	cfg    Config
	logger *logging.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates an empty terminal session manager.
func NewManager(cfg Config, logger *logging.Logger) *Manager {
	return &Manager{
		cfg:      cfg,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Create spawns a new shell in a pseudo-terminal and registers the session.
// An empty title defaults to terminal-<first 8 chars of the id>.
func (m *Manager) Create(title string) (model.TerminalSummary, error) {
	id := uuid.NewString()
	if title == "" {
		title = "terminal-" + id[:8]
	}

	cmd := exec.Command(m.cfg.Shell, "-il")
	cmd.Dir = m.cfg.Workdir
	cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"COLORTERM=truecolor",
		fmt.Sprintf("COLUMNS=%d", m.cfg.Cols),
		fmt.Sprintf("LINES=%d", m.cfg.Rows),
	)

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: m.cfg.Rows, Cols: m.cfg.Cols})
	if err != nil {
		return model.TerminalSummary{}, fmt.Errorf("spawn %s: %w", m.cfg.Shell, err)
	}

	now := time.Now()
	session := &Session{
		id:        id,
		title:     title,
		createdAt: now,
		updatedAt: now,
		status:    model.TerminalStatusRunning,
		ptmx:      ptmx,
		cmd:       cmd,
		buffer:    buffer.NewRingBuffer(m.cfg.BufferMaxChars),
		hub:       ws.NewHub(),
		logger:    m.logger,
		exited:    make(chan struct{}),
	}

	m.mu.Lock()
	m.sessions[id] = session
	m.mu.Unlock()

	go session.readLoop()
	go session.waitLoop()

	m.logger.Info("terminal created",
		logging.String("terminalId", id),
		logging.String("title", title),
		logging.String("shell", m.cfg.Shell))

	return session.Summary(), nil
}

// Get returns a session by id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	return session, ok
}

// List returns summaries of every session, most recently updated first.
func (m *Manager) List() []model.TerminalSummary {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	summaries := make([]model.TerminalSummary, 0, len(sessions))
	for _, s := range sessions {
		summaries = append(summaries, s.Summary())
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries
}

// SendInput forwards input bytes to a session's shell. Input for an exited
// session is dropped without error.
func (m *Manager) SendInput(id string, data []byte) error {
	session, ok := m.Get(id)
	if !ok {
		return model.ErrTerminalNotFound
	}
	session.Write(data)
	return nil
}

// Terminate force-kills a session's process and returns the resulting
// summary. Terminating an already-exited session is a no-op, not an error.
func (m *Manager) Terminate(id string) (model.TerminalSummary, error) {
	session, ok := m.Get(id)
	if !ok {
		return model.TerminalSummary{}, model.ErrTerminalNotFound
	}
	session.kill()
	m.logger.Info("terminal terminated", logging.String("terminalId", id))
	return session.Summary(), nil
}

// RunningIDs returns the set of session ids whose process is still running.
// Used to validate workspace references on restore.
func (m *Manager) RunningIDs() map[string]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	running := make(map[string]bool, len(m.sessions))
	for id, s := range m.sessions {
		if s.Summary().Status == model.TerminalStatusRunning {
			running[id] = true
		}
	}
	return running
}

// Count returns the number of registered sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close kills every running session and closes all attached clients.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.kill()
		s.hub.Close()
	}
}

package web

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"

	"github.com/web-terminal-gateway/backend/internal/logging"
	"github.com/web-terminal-gateway/backend/internal/model"
	"github.com/web-terminal-gateway/backend/internal/ws"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/123 Safari/537.36"

// Config carries the browser session parameters.
type Config struct {
	MaxSessions    int
	JPEGQuality    int
	FrameInterval  time.Duration
	MinFramePeriod time.Duration
}

// Manager owns the browser session registry and the single shared Chrome
// process behind it. Chrome launches on the first attach, not at startup,
// and every session gets its own incognito context.
type Manager struct {
	cfg    Config
	logger *logging.Logger

	mu       sync.Mutex
	browser  *rod.Browser
	sessions map[string]*Session
}

// NewManager creates an empty browser session manager.
func NewManager(cfg Config, logger *logging.Logger) *Manager {
	if cfg.JPEGQuality < 30 {
		cfg.JPEGQuality = 30
	}
	if cfg.JPEGQuality > 90 {
		cfg.JPEGQuality = 90
	}
	return &Manager{
		cfg:      cfg,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Create registers a new session descriptor. No browser resources are
// allocated until the first viewer attaches. Returns ErrTooManySessions at
// capacity. A zero width or height falls back to the default viewport;
// everything else is clamped to the supported bounds.
func (m *Manager) Create(url string, width, height int) (model.WebSessionDescriptor, error) {
	if url == "" {
		url = blankURL
	}
	if len(url) > maxURLLength {
		url = url[:maxURLLength]
	}
	if width == 0 {
		width = defaultViewportWidth
	}
	if height == 0 {
		height = defaultViewportHeight
	}
	width = clampInt(width, minViewportWidth, maxViewportWidth)
	height = clampInt(height, minViewportHeight, maxViewportHeight)

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) >= m.cfg.MaxSessions {
		return model.WebSessionDescriptor{}, model.ErrTooManySessions
	}

	now := time.Now()
	session := &Session{
		id:             uuid.NewString(),
		createdAt:      now,
		updatedAt:      now,
		url:            url,
		width:          width,
		height:         height,
		hub:            ws.NewHub(),
		logger:         m.logger,
		quality:        m.cfg.JPEGQuality,
		minFramePeriod: m.cfg.MinFramePeriod,
		frameInterval:  m.cfg.FrameInterval,
		stop:           make(chan struct{}),
	}
	session.capture = session.screenshot
	session.hub.SetOnEmpty(func() {
		m.scheduleIdleClose(session)
	})
	m.sessions[session.id] = session

	m.logger.Info("web session created",
		logging.String("sessionId", session.id),
		logging.String("url", url))

	return session.Descriptor(), nil
}

// Get returns a session by id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	return session, ok
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Attach starts the session's page if needed and registers the viewer.
func (m *Manager) Attach(id string, client *ws.Client) error {
	session, ok := m.Get(id)
	if !ok {
		return model.ErrWebSessionNotFound
	}
	if err := m.ensureStarted(session); err != nil {
		return fmt.Errorf("web session start failed: %w", err)
	}
	session.Attach(client)
	return nil
}

// Close tears down a session: its frame loop, viewers, and incognito
// context. Closing an unknown id is a no-op.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	session, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	browser := m.browser
	m.mu.Unlock()

	if !ok {
		return
	}
	m.teardown(session, browser)
	m.logger.Info("web session closed", logging.String("sessionId", id))
}

// CloseAll tears down every session and the shared browser.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	browser := m.browser
	m.browser = nil
	m.mu.Unlock()

	for _, s := range sessions {
		m.teardown(s, browser)
	}
	if browser != nil {
		if err := browser.Close(); err != nil {
			m.logger.Debug("browser close failed", logging.Error(err))
		}
	}
}

// ensureStarted lazily launches Chrome and opens the session's page. The
// first navigation happens here when the session was created with a URL.
// Concurrent callers serialize on the session's start latch: one performs
// the start, the rest observe its result.
func (m *Manager) ensureStarted(s *Session) error {
	s.startMu.Lock()
	defer s.startMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return model.ErrWebSessionClosed
	}
	if s.started {
		s.mu.Unlock()
		return nil
	}
	url, width, height := s.url, s.width, s.height
	s.mu.Unlock()

	browser, err := m.getBrowser()
	if err != nil {
		return err
	}

	incognito, err := browser.Incognito()
	if err != nil {
		return fmt.Errorf("incognito context: %w", err)
	}

	page, err := incognito.Page(proto.TargetCreateTarget{URL: blankURL})
	if err != nil {
		proto.TargetDisposeBrowserContext{BrowserContextID: incognito.BrowserContextID}.Call(browser)
		return fmt.Errorf("create page: %w", err)
	}

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: userAgent}); err != nil {
		m.logger.Debug("set user agent failed", logging.Error(err))
	}
	if err := applyViewport(page, width, height); err != nil {
		m.logger.Debug("initial viewport failed", logging.Error(err))
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		page.Close()
		proto.TargetDisposeBrowserContext{BrowserContextID: incognito.BrowserContextID}.Call(browser)
		return model.ErrWebSessionClosed
	}
	s.page = page
	s.contextID = incognito.BrowserContextID
	s.started = true
	s.mu.Unlock()

	go s.frameLoop()

	if url != "" && url != blankURL {
		if err := page.Timeout(navTimeout).Navigate(url); err != nil {
			s.hub.BroadcastMessage(&ws.Message{
				Type:  ws.MessageTypeError,
				Error: fmt.Sprintf("Navigation failed: %v", err),
			})
		}
	}

	m.logger.Info("web session started",
		logging.String("sessionId", s.id), logging.String("url", url))
	return nil
}

// getBrowser launches the shared headless Chrome on first use.
func (m *Manager) getBrowser() (*rod.Browser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser != nil {
		return m.browser, nil
	}

	controlURL, err := launcher.New().Headless(true).NoSandbox(true).Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}

	m.browser = browser
	m.logger.Info("headless browser launched")
	return browser, nil
}

// scheduleIdleClose arms the 30s teardown after the last viewer detaches.
// A reattach before it fires cancels it.
func (m *Manager) scheduleIdleClose(s *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.idleTimer != nil {
		return
	}
	s.idleTimer = time.AfterFunc(idleCloseDelay, func() {
		if s.hub.ClientCount() > 0 {
			s.mu.Lock()
			s.idleTimer = nil
			s.mu.Unlock()
			return
		}
		m.Close(s.id)
	})
}

// teardown releases a session's resources. Safe to call once per session.
func (m *Manager) teardown(s *Session, browser *rod.Browser) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.idleTimer != nil {
		s.idleTimer.Stop()
		s.idleTimer = nil
	}
	page := s.page
	contextID := s.contextID
	s.page = nil
	s.mu.Unlock()

	s.stopOnce.Do(func() { close(s.stop) })
	s.hub.Close()

	if page != nil {
		if err := page.Close(); err != nil {
			m.logger.Debug("page close failed",
				logging.String("sessionId", s.id), logging.Error(err))
		}
	}
	if browser != nil && contextID != "" {
		err := proto.TargetDisposeBrowserContext{BrowserContextID: contextID}.Call(browser)
		if err != nil {
			m.logger.Debug("dispose browser context failed",
				logging.String("sessionId", s.id), logging.Error(err))
		}
	}
}

// Package web implements headless browser sessions: page lifecycle, the
// JPEG frame stream, and input forwarding.
package web

import (
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/web-terminal-gateway/backend/internal/logging"
	"github.com/web-terminal-gateway/backend/internal/model"
	"github.com/web-terminal-gateway/backend/internal/ws"
)

const (
	// navTimeout bounds a single navigation. Slow pages report an in-band
	// error but the session stays usable.
	navTimeout = 20 * time.Second

	// idleCloseDelay is how long a session survives with no attached
	// clients before it is torn down.
	idleCloseDelay = 30 * time.Second

	maxURLLength = 2048

	// Viewport bounds. Resize requests are clamped, never rejected.
	minViewportWidth  = 240
	maxViewportWidth  = 1920
	minViewportHeight = 180
	maxViewportHeight = 1200

	defaultViewportWidth  = 900
	defaultViewportHeight = 600

	blankURL = "about:blank"
)

// Session is one headless browser page with its attached-viewer set. The
// page starts lazily on first attach; until then the session is only a
// descriptor.
type Session struct {
	id        string
	createdAt time.Time
	hub       *ws.Hub
	logger    *logging.Logger

	quality        int
	minFramePeriod time.Duration
	frameInterval  time.Duration

	// capture produces one JPEG frame. Swapped out in tests so the frame
	// scheduler can run without a browser.
	capture func() ([]byte, error)

	stop     chan struct{}
	stopOnce sync.Once

	// startMu serializes the lazy start: concurrent attaches for the same
	// session must produce exactly one page.
	startMu sync.Mutex

	mu        sync.Mutex
	url       string
	width     int
	height    int
	updatedAt time.Time
	page      *rod.Page
	contextID proto.BrowserBrowserContextID
	started   bool
	closed    bool
	inflight  bool
	lastFrame time.Time
	idleTimer *time.Timer
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Descriptor returns the API-facing view of the session.
func (s *Session) Descriptor() model.WebSessionDescriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.WebSessionDescriptor{
		ID:     s.id,
		URL:    s.url,
		Width:  s.width,
		Height: s.height,
	}
}

// Attach registers a viewer connection, cancels any pending idle teardown,
// and sends the ready message followed by an immediate frame.
func (s *Session) Attach(client *ws.Client) {
	s.mu.Lock()
	if s.idleTimer != nil {
		s.idleTimer.Stop()
		s.idleTimer = nil
	}
	url, width, height := s.url, s.width, s.height
	s.mu.Unlock()

	s.hub.Register(client)
	client.SendMessage(&ws.Message{
		Type:      ws.MessageTypeReady,
		SessionID: s.id,
		URL:       url,
		Width:     width,
		Height:    height,
	})
	s.requestFrame("ready")
}

// Detach unregisters a viewer connection. The hub's onEmpty callback
// schedules the idle teardown when this was the last one.
func (s *Session) Detach(client *ws.Client) {
	s.hub.Unregister(client)
}

// Navigate points the page at a new URL. Navigation failures are reported
// in-band on the session, not returned: the page stays usable.
func (s *Session) Navigate(url string) {
	if url == "" {
		return
	}
	if len(url) > maxURLLength {
		url = url[:maxURLLength]
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.url = url
	s.updatedAt = time.Now()
	page := s.page
	s.mu.Unlock()

	if page != nil {
		if err := page.Timeout(navTimeout).Navigate(url); err != nil {
			s.hub.BroadcastMessage(&ws.Message{
				Type:  ws.MessageTypeError,
				Error: fmt.Sprintf("Navigation failed: %v", err),
			})
		}
	}
	s.requestFrame("nav")
}

// Resize clamps the requested viewport to the supported bounds and applies
// it to the page.
func (s *Session) Resize(width, height int) {
	width = clampInt(width, minViewportWidth, maxViewportWidth)
	height = clampInt(height, minViewportHeight, maxViewportHeight)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.width = width
	s.height = height
	s.updatedAt = time.Now()
	page := s.page
	s.mu.Unlock()

	if page != nil {
		if err := applyViewport(page, width, height); err != nil {
			s.logger.Debug("viewport resize failed",
				logging.String("sessionId", s.id), logging.Error(err))
		}
	}
	s.requestFrame("resize")
}

// requestFrame asks the scheduler for a capture attributed to reason. The
// request is dropped when nobody is watching, a capture is already in
// flight, or the last frame is too recent; the periodic tick picks up
// anything dropped here.
func (s *Session) requestFrame(reason string) {
	if s.hub.ClientCount() == 0 {
		return
	}
	s.mu.Lock()
	if s.closed || s.inflight || !s.started {
		s.mu.Unlock()
		return
	}
	if time.Since(s.lastFrame) < s.minFramePeriod {
		s.mu.Unlock()
		return
	}
	s.inflight = true
	s.mu.Unlock()

	go s.captureAndBroadcast(reason)
}

func (s *Session) captureAndBroadcast(reason string) {
	data, err := s.capture()

	s.mu.Lock()
	s.inflight = false
	s.updatedAt = time.Now()
	if err == nil {
		// Failed captures do not arm the rate limit: the next request
		// should try again immediately.
		s.lastFrame = s.updatedAt
	}
	width, height := s.width, s.height
	closed := s.closed
	s.mu.Unlock()

	if closed {
		return
	}
	if err != nil {
		s.hub.BroadcastMessage(&ws.Message{
			Type:  ws.MessageTypeError,
			Error: fmt.Sprintf("Screenshot failed: %v", err),
		})
		return
	}
	s.hub.BroadcastMessage(&ws.Message{
		Type:   ws.MessageTypeFrame,
		Format: "jpeg",
		Data:   base64.StdEncoding.EncodeToString(data),
		Width:  width,
		Height: height,
		Reason: reason,
	})
}

// frameLoop drives the periodic capture. It only works when someone is
// watching; an unattended session costs nothing but its Chrome target.
func (s *Session) frameLoop() {
	ticker := time.NewTicker(s.frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.requestFrame("tick")
		}
	}
}

func (s *Session) screenshot() ([]byte, error) {
	s.mu.Lock()
	page := s.page
	quality := s.quality
	s.mu.Unlock()

	if page == nil {
		return nil, model.ErrWebSessionClosed
	}
	return page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: &quality,
	})
}

func applyViewport(page *rod.Page, width, height int) error {
	return (proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1.0,
		Mobile:            false,
	}).Call(page)
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

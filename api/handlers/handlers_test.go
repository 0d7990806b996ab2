package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/web-terminal-gateway/backend/internal/auth"
	"github.com/web-terminal-gateway/backend/internal/db"
	"github.com/web-terminal-gateway/backend/internal/logging"
	"github.com/web-terminal-gateway/backend/internal/repository"
	"github.com/web-terminal-gateway/backend/internal/terminal"
	"github.com/web-terminal-gateway/backend/internal/web"
	"github.com/web-terminal-gateway/backend/internal/workspace"
)

const testPassword = "hunter2-but-long"

type testGateway struct {
	router *gin.Engine
	store  *auth.Store
}

func newTestGateway(t *testing.T, webMaxSessions int) *testGateway {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := logging.NewNop()

	authStore := auth.NewStore(testPassword, time.Hour)

	database, err := db.NewTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	workspaceStore, err := workspace.NewStore(repository.NewWorkspaceRepository(database), logger)
	require.NoError(t, err)

	terminalManager := terminal.NewManager(terminal.Config{
		Shell:          "/bin/sh",
		Workdir:        t.TempDir(),
		Cols:           80,
		Rows:           24,
		BufferMaxChars: 1000,
	}, logger)
	t.Cleanup(terminalManager.Close)

	webManager := web.NewManager(web.Config{
		MaxSessions:    webMaxSessions,
		JPEGQuality:    70,
		FrameInterval:  time.Second,
		MinFramePeriod: 100 * time.Millisecond,
	}, logger)
	t.Cleanup(webManager.CloseAll)

	authHandler := NewAuthHandler(authStore, logger)
	terminalHandler := NewTerminalHandler(terminalManager, "/bin/sh")
	webHandler := NewWebHandler(webManager)
	workspaceHandler := NewWorkspaceHandler(workspaceStore, terminalManager)

	r := gin.New()
	r.GET("/api/auth/status", authHandler.Status)
	r.POST("/api/auth/login", authHandler.Login)
	r.POST("/api/auth/logout", authHandler.Logout)

	authed := r.Group("/", auth.Middleware(authStore))
	{
		authed.GET("/api/terminal/config", terminalHandler.Config)
		authed.GET("/api/terminals", terminalHandler.List)
		authed.POST("/api/terminals", terminalHandler.Create)
		authed.POST("/api/terminals/:id/exit", terminalHandler.Exit)
		authed.POST("/api/web/sessions", webHandler.Create)
		authed.GET("/api/workspace", workspaceHandler.Get)
		authed.PUT("/api/workspace", workspaceHandler.Put)
	}

	return &testGateway{router: r, store: authStore}
}

func (g *testGateway) do(method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	g.router.ServeHTTP(w, req)
	return w
}

func (g *testGateway) login(t *testing.T) *http.Cookie {
	t.Helper()
	w := g.do(http.MethodPost, "/api/auth/login", `{"password":"`+testPassword+`"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	for _, c := range w.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	t.Fatalf("no session cookie in login response")
	return nil
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	g := newTestGateway(t, 2)

	w := g.do(http.MethodPost, "/api/auth/login", `{"password":"nope"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid credentials")

	w = g.do(http.MethodPost, "/api/auth/login", `not json`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPrivilegedRoutesRequireAuth(t *testing.T) {
	g := newTestGateway(t, 2)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/terminals"},
		{http.MethodPost, "/api/terminals"},
		{http.MethodGet, "/api/workspace"},
		{http.MethodPost, "/api/web/sessions"},
		{http.MethodGet, "/api/terminal/config"},
	} {
		w := g.do(route.method, route.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", route.method, route.path)
		assert.Contains(t, w.Body.String(), "Unauthorized")
	}
}

func TestAuthStatusAndLogout(t *testing.T) {
	g := newTestGateway(t, 2)

	w := g.do(http.MethodGet, "/api/auth/status", "", nil)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)

	cookie := g.login(t)
	w = g.do(http.MethodGet, "/api/auth/status", "", cookie)
	assert.Contains(t, w.Body.String(), `"authenticated":true`)

	w = g.do(http.MethodPost, "/api/auth/logout", "", cookie)
	assert.Equal(t, http.StatusOK, w.Code)

	// The revoked cookie no longer opens privileged routes.
	w = g.do(http.MethodGet, "/api/workspace", "", cookie)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTerminalLifecycleOverAPI(t *testing.T) {
	g := newTestGateway(t, 2)
	cookie := g.login(t)

	w := g.do(http.MethodPost, "/api/terminals", `{"title":"build"}`, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	var created struct {
		OK       bool `json:"ok"`
		Terminal struct {
			ID     string `json:"id"`
			Title  string `json:"title"`
			Status string `json:"status"`
		} `json:"terminal"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, created.OK)
	assert.Equal(t, "build", created.Terminal.Title)
	assert.Equal(t, "running", created.Terminal.Status)

	w = g.do(http.MethodGet, "/api/terminals", "", cookie)
	assert.Contains(t, w.Body.String(), created.Terminal.ID)

	w = g.do(http.MethodPost, "/api/terminals/"+created.Terminal.ID+"/exit", "", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"exited"`)

	w = g.do(http.MethodPost, "/api/terminals/unknown-id/exit", "", cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Terminal not found")
}

func TestWebSessionCapacityOverAPI(t *testing.T) {
	g := newTestGateway(t, 1)
	cookie := g.login(t)

	w := g.do(http.MethodPost, "/api/web/sessions", `{"url":"https://example.com"}`, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "https://example.com")

	w = g.do(http.MethodPost, "/api/web/sessions", `{}`, cookie)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestWorkspaceRoundtripOverAPI(t *testing.T) {
	g := newTestGateway(t, 2)
	cookie := g.login(t)

	// Create a terminal so its leaf survives the restore on GET.
	w := g.do(http.MethodPost, "/api/terminals", `{}`, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	var created struct {
		Terminal struct {
			ID string `json:"id"`
		} `json:"terminal"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	body := `{"workspace":{"tabs":[
		{"id":"tab1","title":"main","root":{"kind":"leaf","type":"terminal","terminalId":"` + created.Terminal.ID + `"}},
		{"id":"tab2","title":"junk","root":{"kind":"leaf","type":"terminal","terminalId":"not-running"}}
	],"activeTabId":"tab1"}}`
	w = g.do(http.MethodPut, "/api/workspace", body, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	// Sanitize keeps both tabs: the stale reference is shaped fine.
	assert.Contains(t, w.Body.String(), "tab2")

	// Restore on GET drops the tab whose terminal is not running.
	w = g.do(http.MethodGet, "/api/workspace", "", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "tab1")
	assert.NotContains(t, w.Body.String(), "tab2")
}

// Package proxy exposes loopback-bound local services through the gateway
// origin under /proxy/http/{port}/.
package proxy

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/web-terminal-gateway/backend/internal/logging"
)

// hopByHopHeaders are stripped from the forwarded request. The upstream
// connection is the proxy's own; the client's connection management must
// not leak through.
var hopByHopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Handler proxies HTTP requests to 127.0.0.1:{port}.
type Handler struct {
	logger *logging.Logger
}

// NewHandler creates the reverse proxy handler.
func NewHandler(logger *logging.Logger) *Handler {
	return &Handler{logger: logger}
}

// Handle serves one proxied request. Route shape: /proxy/http/:port/*path.
func (h *Handler) Handle(c *gin.Context) {
	port, err := strconv.Atoi(c.Param("port"))
	if err != nil || port < 1 || port > 65535 {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Invalid proxy port"})
		return
	}

	// Sandboxed iframes fetch with "Origin: null"; answer preflights here
	// without contacting the upstream at all.
	if c.Request.Method == http.MethodOptions {
		header := c.Writer.Header()
		header.Set("Access-Control-Allow-Origin", "null")
		header.Set("Access-Control-Allow-Credentials", "true")
		header.Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS,HEAD")
		requested := c.GetHeader("Access-Control-Request-Headers")
		if requested == "" {
			requested = "*"
		}
		header.Set("Access-Control-Allow-Headers", requested)
		header.Set("Access-Control-Max-Age", "600")
		c.Status(http.StatusNoContent)
		return
	}

	targetPath := c.Param("path")
	if targetPath == "" {
		targetPath = "/"
	}

	target := &url.URL{Scheme: "http", Host: fmt.Sprintf("127.0.0.1:%d", port)}
	reverseProxy := httputil.NewSingleHostReverseProxy(target)

	director := reverseProxy.Director
	reverseProxy.Director = func(req *http.Request) {
		director(req)
		req.URL.Path = targetPath
		req.URL.RawPath = ""
		req.Host = target.Host
		for _, name := range hopByHopHeaders {
			req.Header.Del(name)
		}
	}

	reverseProxy.ModifyResponse = func(resp *http.Response) error {
		// Allow embedding and reduce surprising policy interactions.
		resp.Header.Del("X-Frame-Options")
		resp.Header.Del("Content-Security-Policy")
		resp.Header.Del("Content-Security-Policy-Report-Only")
		resp.Header.Set("Access-Control-Allow-Origin", "null")
		resp.Header.Set("Access-Control-Allow-Credentials", "true")
		rewriteLocation(resp, port, targetPath)
		return nil
	}

	reverseProxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		h.logger.Debug("proxy upstream error",
			logging.Int("port", port), logging.Error(err))
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(gin.H{
			"ok":    false,
			"error": fmt.Sprintf("Proxy error: %v", err),
		})
	}

	reverseProxy.ServeHTTP(c.Writer, c.Request)
}

// rewriteLocation maps upstream redirects that point back at the proxied
// service into the proxy namespace, so the client stays on the gateway
// origin. Redirects to anywhere else pass through untouched.
func rewriteLocation(resp *http.Response, port int, requestPath string) {
	location := resp.Header.Get("Location")
	if location == "" {
		return
	}

	base := &url.URL{Scheme: "http", Host: fmt.Sprintf("127.0.0.1:%d", port), Path: requestPath}
	resolved, err := base.Parse(location)
	if err != nil {
		return
	}

	hostname := resolved.Hostname()
	if hostname != "127.0.0.1" && hostname != "localhost" {
		return
	}
	resolvedPort := resolved.Port()
	if resolvedPort == "" {
		resolvedPort = strconv.Itoa(port)
	}
	if resolvedPort != strconv.Itoa(port) {
		return
	}

	rewritten := url.URL{
		Path:     fmt.Sprintf("/proxy/http/%d%s", port, resolved.Path),
		RawQuery: resolved.RawQuery,
		Fragment: resolved.Fragment,
	}
	resp.Header.Set("Location", rewritten.String())
}

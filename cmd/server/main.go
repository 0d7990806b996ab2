package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/web-terminal-gateway/backend/api/handlers"
	"github.com/web-terminal-gateway/backend/internal/auth"
	"github.com/web-terminal-gateway/backend/internal/config"
	"github.com/web-terminal-gateway/backend/internal/db"
	"github.com/web-terminal-gateway/backend/internal/logging"
	"github.com/web-terminal-gateway/backend/internal/proxy"
	"github.com/web-terminal-gateway/backend/internal/repository"
	"github.com/web-terminal-gateway/backend/internal/terminal"
	"github.com/web-terminal-gateway/backend/internal/web"
	"github.com/web-terminal-gateway/backend/internal/workspace"
)

// authSweepInterval is how often expired auth sessions are swept.
const authSweepInterval = 5 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	database, err := db.InitDB(cfg.Storage.DBPath)
	if err != nil {
		logger.Fatal("Failed to initialize database", logging.Error(err))
	}
	defer db.CloseDB()

	authStore := auth.NewStore(cfg.Auth.Password, cfg.Auth.SessionTTL)

	workspaceStore, err := workspace.NewStore(repository.NewWorkspaceRepository(database), logger)
	if err != nil {
		logger.Fatal("Failed to load workspace", logging.Error(err))
	}

	terminalManager := terminal.NewManager(terminal.Config{
		Shell:          cfg.Terminal.Shell,
		Workdir:        cfg.Server.Workdir,
		Cols:           cfg.Terminal.Cols,
		Rows:           cfg.Terminal.Rows,
		BufferMaxChars: cfg.Terminal.BufferMaxChars,
	}, logger)
	defer terminalManager.Close()

	webManager := web.NewManager(web.Config{
		MaxSessions:    cfg.Web.MaxSessions,
		JPEGQuality:    cfg.Web.JPEGQuality,
		FrameInterval:  cfg.Web.FrameInterval(),
		MinFramePeriod: cfg.Web.MinFramePeriod(),
	}, logger)
	defer webManager.CloseAll()

	// Sweep expired auth sessions in the background.
	sweepStop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(authSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-sweepStop:
				return
			case <-ticker.C:
				if dropped := authStore.Sweep(); dropped > 0 {
					logger.Debug("swept expired auth sessions", logging.Int("dropped", dropped))
				}
			}
		}
	}()
	defer close(sweepStop)

	authHandler := handlers.NewAuthHandler(authStore, logger)
	terminalHandler := handlers.NewTerminalHandler(terminalManager, cfg.Terminal.Shell)
	webHandler := handlers.NewWebHandler(webManager)
	workspaceHandler := handlers.NewWorkspaceHandler(workspaceStore, terminalManager)
	healthHandler := handlers.NewHealthHandler(cfg, terminalManager, webManager, workspaceStore)
	wsHandler := handlers.NewWebSocketHandler(authStore, terminalManager, webManager, logger)
	proxyHandler := proxy.NewHandler(logger)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(noStoreMiddleware())

	r.GET("/api/health", healthHandler.Health)
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

		authed.Any("/proxy/http/:port/*path", proxyHandler.Handle)
	}

	// WebSocket routes check the cookie themselves before upgrading.
	r.GET("/ws/terminal", wsHandler.Terminal)
	r.GET("/ws/web", wsHandler.Web)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		terminalManager.Close()
		webManager.CloseAll()
		db.CloseDB()
		os.Exit(0)
	}()

	logger.Info("gateway listening",
		logging.String("addr", cfg.Server.Addr()),
		logging.String("shell", cfg.Terminal.Shell),
		logging.String("workdir", cfg.Server.Workdir))
	if err := r.Run(cfg.Server.Addr()); err != nil {
		logger.Fatal("Server failed", logging.Error(err))
	}
}

// noStoreMiddleware keeps auth cookies and session data out of shared and
// back-forward caches.
func noStoreMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Cache-Control", "no-store")
		c.Next()
	}
}

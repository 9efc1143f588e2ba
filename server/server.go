package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/xiaoyuanzhu-com/debug-viewer/fs"
	"github.com/xiaoyuanzhu-com/debug-viewer/log"
	"github.com/xiaoyuanzhu-com/debug-viewer/notifications"
)

// Server owns and coordinates all application components
type Server struct {
	cfg *Config

	// Components (owned by server)
	fsService    *fs.Service
	notifService *notifications.Service

	// Shutdown context - cancelled when server is shutting down.
	// Push channel handlers listen to this.
	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc

	// HTTP
	router *gin.Engine
	http   *http.Server
}

// New creates a new server with all components initialized
func New(cfg *Config) (*Server, error) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:            cfg,
		shutdownCtx:    ctx,
		shutdownCancel: cancel,
	}

	// 1. Create notifications service
	log.Info().Msg("initializing notifications service")
	s.notifService = notifications.NewService()

	// 2. Create FS service
	log.Info().Str("dir", cfg.ImagesDir).Msg("initializing filesystem service")
	fsService, err := fs.NewService(cfg.ToFSConfig())
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create FS service: %w", err)
	}
	s.fsService = fsService

	// 3. Wire service connections
	s.connectServices()

	// 4. Setup HTTP router
	s.setupRouter()

	log.Info().Msg("server initialized successfully")
	return s, nil
}

// connectServices wires up event handlers between services
func (s *Server) connectServices() {
	// FS → Notifications: every new image goes to every open viewer
	s.fsService.SetFileAddedHandler(func(event fs.FileAddedEvent) {
		file := filepath.ToSlash(event.Name)
		delivered := s.notifService.NotifyNewImage(file)
		log.Debug().
			Str("file", file).
			Int64("size", event.Size).
			Int("sessions", delivered).
			Msg("new image broadcast")
	})
}

// setupRouter creates and configures the Gin router
func (s *Server) setupRouter() {
	// Set Gin mode
	if !s.cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router
	s.router = gin.New()

	// Nested names in recursive mode arrive as %2F in single path segments
	s.router.UseRawPath = true
	s.router.UnescapePathValues = true

	// Middleware
	s.router.Use(gin.Recovery())
	s.router.Use(log.GinLogger())

	// Security headers (production only)
	if !s.cfg.IsDevelopment() {
		s.router.Use(s.securityHeadersMiddleware())
	}

	// Gzip compression (skip the push channel and binary payloads)
	s.router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{
		"/ws",                 // WebSocket - protocol upgrade
		"/images/",            // Image bytes are already compressed
		"/api/images/archive", // Zip stream
	})))

	// Trust proxy headers
	s.router.SetTrustedProxies(nil)

	// Ignore .well-known requests
	s.router.GET("/.well-known/*path", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	// Note: API routes should be set up by calling code (main.go)
	// to avoid import cycles
}

// securityHeadersMiddleware adds security headers for production
func (s *Server) securityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Prevent MIME type sniffing
		c.Header("X-Content-Type-Options", "nosniff")

		// Clickjacking protection
		c.Header("X-Frame-Options", "SAMEORIGIN")

		// Referrer policy - don't leak full URLs to other origins
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		c.Next()
	}
}

// StartComponents starts the background services without serving HTTP
func (s *Server) StartComponents() error {
	log.Info().Msg("starting server components")

	// Start FS service (creates the image directory, starts the watcher)
	if err := s.fsService.Start(); err != nil {
		return fmt.Errorf("failed to start FS service: %w", err)
	}
	return nil
}

// Start starts all background services and the HTTP server
func (s *Server) Start() error {
	if err := s.StartComponents(); err != nil {
		return err
	}

	// Create HTTP server
	s.http = &http.Server{
		Addr:     s.Addr(),
		Handler:  s.router,
		ErrorLog: log.StdErrorLogger(), // Route Go's internal HTTP errors through zerolog
	}

	log.Info().
		Str("addr", s.http.Addr).
		Str("env", s.cfg.Env).
		Str("images", s.fsService.Root()).
		Msg("HTTP server starting")

	// Start HTTP server (blocks)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port))
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("shutting down server")

	// 1. Signal long-running handlers (push channel) to stop
	log.Info().Msg("signaling handlers to stop")
	s.shutdownCancel()

	// Give handlers a moment to send close frames before the listener goes away
	time.Sleep(100 * time.Millisecond)

	// 2. Close notification service to disconnect remaining sessions
	s.notifService.Shutdown()

	// 3. Stop the watcher so no new events arrive
	s.fsService.Stop()

	// 4. Shutdown HTTP server (stop accepting new requests and wait for existing ones)
	if s.http != nil {
		if err := s.http.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("http server shutdown error")
			return err
		}
	}

	log.Info().Msg("server shutdown complete")
	return nil
}

// Component accessors for API handlers
func (s *Server) Config() *Config                       { return s.cfg }
func (s *Server) FS() *fs.Service                       { return s.fsService }
func (s *Server) Notifications() *notifications.Service { return s.notifService }
func (s *Server) Router() *gin.Engine                   { return s.router }
func (s *Server) ShutdownContext() context.Context      { return s.shutdownCtx }

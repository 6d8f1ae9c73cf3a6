// Package server implements the focusdeck sync backend: a
// table-per-entity-kind relational store with bulk select/upsert/delete
// endpoints and a row-level push-event stream.
package server

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/focusdeck/focusdeck/internal/logger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	_ "github.com/lib/pq"
)

// Server is the sync server
type Server struct {
	db   *sql.DB
	echo *echo.Echo
	hub  *Hub

	// checkoutURL is handed out by the checkout endpoint; empty means
	// checkout is unavailable.
	checkoutURL string
}

// Config holds server configuration
type Config struct {
	DatabaseURL string
	CheckoutURL string
}

// New creates a new server
func New(cfg Config) (*Server, error) {
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &Server{
		db:          db,
		hub:         NewHub(),
		checkoutURL: cfg.CheckoutURL,
	}

	// Run migrations
	if err := s.migrate(); err != nil {
		return nil, err
	}

	// Setup Echo
	s.setupEcho()

	return s, nil
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true

	// Request logging through the engine logger
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			err := next(c)

			res := c.Response()
			logger.Info("HTTP",
				logger.F("method", req.Method),
				logger.F("uri", req.RequestURI),
				logger.F("status", res.Status),
				logger.F("duration", time.Since(start).String()))

			return err
		}
	})

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())

	// Health check
	e.GET("/health", s.handleHealth)

	// API v1
	api := e.Group("/api/v1")

	// Auth endpoints (public)
	api.POST("/register", s.handleRegister)
	api.POST("/login", s.handleLogin)

	// Protected endpoints
	protected := api.Group("")
	protected.Use(s.authMiddleware)
	protected.GET("/me", s.handleMe)
	protected.POST("/logout", s.handleLogout)

	protected.GET("/projects", s.handleListProjects)
	protected.POST("/projects", s.handleUpsertProjects)
	protected.POST("/projects/delete", s.handleDeleteProjects)

	protected.GET("/tasks", s.listTasksHandler(false))
	protected.POST("/tasks", s.upsertTasksHandler(false))
	protected.POST("/tasks/delete", s.deleteTasksHandler(false))

	protected.GET("/archived-tasks", s.listTasksHandler(true))
	protected.POST("/archived-tasks", s.upsertTasksHandler(true))
	protected.POST("/archived-tasks/delete", s.deleteTasksHandler(true))

	protected.GET("/profile", s.handleProfile)
	protected.POST("/checkout", s.handleCheckout)
	protected.POST("/upgrade", s.handleUpgrade)

	protected.GET("/events", s.handleEvents)

	s.echo = e
}

// Close closes the database connection
func (s *Server) Close() error {
	return s.db.Close()
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start starts the server
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

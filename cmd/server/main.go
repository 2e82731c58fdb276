package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"transit-admin/internal/config"
	"transit-admin/internal/handler"
	"transit-admin/internal/logger"
	"transit-admin/internal/middleware"
	"transit-admin/internal/session"
	"transit-admin/internal/tmsapi"
	"transit-admin/internal/validator"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration",
			slog.String("error", err.Error()))
	}

	logger.Configure(cfg.Log.Level)

	// The console cannot sign session cookies without a secret.
	if cfg.Session.Secret == "" {
		logger.Fatal("TRANSIT_SESSION_SECRET is not set")
	}

	// TMS API client
	api := tmsapi.NewClient(cfg.API.BaseURL, cfg.API.Timeout)

	// Session cookie manager
	sessions := session.NewManager(cfg.Session.Secret, cfg.Session.Cookie, cfg.Session.TTL, cfg.Session.Secure)

	// Initialize validator
	v := validator.NewValidator()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(api, sessions)
	userHandler := handler.NewUserHandler(api, sessions, v)
	healthHandler := handler.NewHealthHandler(api)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Metrics())
	router.Use(gin.Logger())
	router.SetHTMLTemplate(handler.Templates())

	// Health and metrics endpoints
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)
	router.GET("/live", healthHandler.Live)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Console pages
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/admin/users")
	})
	router.GET("/login", authHandler.LoginPage)
	router.POST("/login", authHandler.Login)
	router.POST("/logout", authHandler.Logout)

	admin := router.Group("/admin", middleware.RequireSession(sessions))
	{
		admin.GET("/users", userHandler.List)
		admin.GET("/users/:id/edit", userHandler.EditPage)
		admin.POST("/users/:id/edit", userHandler.Update)
	}

	router.NoRoute(handler.NotFound)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting server",
			slog.String("addr", cfg.Server.Addr),
			slog.String("tms_api", cfg.API.BaseURL))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server",
				slog.String("error", err.Error()))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	// Shutdown HTTP server
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error",
			slog.String("error", err.Error()))
	}

	logger.Info("Server exited")
}

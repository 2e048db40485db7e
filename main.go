package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rya_attendance_backend/commands"
	"rya_attendance_backend/config"
	"rya_attendance_backend/logger"
	"rya_attendance_backend/metrics"
	"rya_attendance_backend/middleware"
	"rya_attendance_backend/routes"
	"rya_attendance_backend/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	// Check for subcommands
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "hash-secret":
			commands.HashSecret(os.Args[2:])
			return
		case "import-csv":
			commands.ImportCSV(os.Args[2:])
			return
		}
	}

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("invalid configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.NewLogger(logger.Options{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Environment: cfg.Environment,
		Service:     "rya-attendance",
	})
	if err != nil {
		os.Stderr.WriteString("failed to build logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	storage, err := commands.OpenStorage(cfg, log)
	if err != nil {
		log.Fatal("failed to open attendance storage", zap.Error(err))
	}
	defer storage.Close()

	// Refuse to start without a readable roster
	if _, err := storage.Persister.Load(context.Background()); err != nil {
		log.Fatal("failed to load attendance list",
			zap.String("driver", cfg.StorageDriver), zap.Error(err))
	}

	// Admin gate
	var secret *middleware.SecretAuthorizer
	if cfg.AdminSecretHash != "" {
		secret = middleware.NewSecretAuthorizer(cfg.AdminSecretHash)
	} else {
		secret, err = middleware.NewSecretAuthorizerFromPlain(cfg.AdminSecret)
		if err != nil {
			log.Fatal("failed to hash admin secret", zap.Error(err))
		}
	}
	if !secret.Enabled() {
		log.Warn("no ADMIN_SECRET or ADMIN_SECRET_HASH set, day resets are disabled")
	}
	tokenService := middleware.NewTokenService([]byte(cfg.JWTSecret), cfg.AdminTokenTTL)
	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET is not set, admin tokens are disabled")
	}
	authorizer := middleware.AnyAuthorizer{tokenService, secret}

	sessions := store.NewSessions(func() *store.Store {
		return store.New(cfg.TripDays, storage.Persister, authorizer, log)
	}, cfg.SessionTTL, log)

	m := metrics.New(prometheus.DefaultRegisterer, sessions.Len)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))

	// Setup CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Length",
		"Content-Type",
		"Authorization",
		"X-Session-ID",
	}
	corsConfig.ExposeHeaders = []string{"X-Session-ID"}
	corsConfig.AllowMethods = []string{
		"GET",
		"POST",
		"PUT",
		"DELETE",
	}
	r.Use(cors.New(corsConfig))

	routes.SetupRoutes(r, routes.Dependencies{
		Sessions:     sessions,
		Storage:      storage.Pinger,
		Secret:       secret,
		TokenService: tokenService,
		Metrics:      m,
		Gatherer:     prometheus.DefaultGatherer,
		Logger:       log,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		log.Info("starting server",
			zap.String("port", cfg.ServerPort),
			zap.String("driver", cfg.StorageDriver),
			zap.Strings("days", cfg.TripDays))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
}

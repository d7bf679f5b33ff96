// Entry point for the microblog service. Loads configuration, connects to
// PostgreSQL, runs migrations, wires the services and handlers together,
// mounts the router and runs the HTTP server with graceful shutdown.
//
// @title Microblog API
// @version 1.0
// @description User directory, authentication and follow graph for the microblog service.
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/user/microblog-go/auth"
	"github.com/user/microblog-go/config"
	"github.com/user/microblog-go/db"
	"github.com/user/microblog-go/follows"
	"github.com/user/microblog-go/posts"
	"github.com/user/microblog-go/users"
)

func main() {
	logger := newLogger()

	// .env is a development convenience; production sets variables directly.
	if err := godotenv.Load(); err != nil {
		logger.Debug().Err(err).Msg(".env file not loaded")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	pool, err := db.NewPool(cfg.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create database pool")
	}
	defer pool.Close()

	if err := db.RunMigrations(cfg.DB, cfg.MigrationsPath); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Repositories, services and handlers wired by hand. The user repository
	// doubles as the auth package's UserFinder.
	userRepo := users.NewPostgresRepository(pool)
	postRepo := posts.NewPostgresRepository(pool)
	followRepo := follows.NewPostgresRepository(pool)

	authService := auth.NewService(userRepo, *cfg.Auth)
	authHandlers := auth.NewHandlers(authService)

	userService := users.NewService(userRepo)
	postService := posts.NewService(postRepo)
	followService := follows.NewService(followRepo)

	followHandlers := follows.NewHandlers(followService, userRepo)
	userHandlers := users.NewHandlers(userService, postService, followService)

	r := chi.NewRouter()

	// Global middleware. Chi requires all middleware registered before routes.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandlers.HandleLogin())
		r.Post("/refresh", authHandlers.HandleRefreshToken())
	})

	// Identity resolution never rejects; each handler consults the
	// authorization policy itself, so anonymous requests still reach the open
	// routes (signup) and get the sign-in redirect everywhere else.
	r.Route("/users", func(r chi.Router) {
		r.Use(auth.ResolveIdentity(cfg.Auth, userRepo))
		userHandlers.RegisterRoutes(r, followHandlers)
	})

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped gracefully")
}

// newLogger builds the process logger: JSON to stdout, console format in
// development, level from LOG_LEVEL (default info).
func newLogger() zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	level, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL")))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var out = os.Stdout
	if strings.ToLower(os.Getenv("APP_ENV")) == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).
			Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// requestLogger logs one structured line per request with the method, path,
// status, byte count, duration and request id.
func requestLogger(logger zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("duration", time.Since(start)).
					Str("request_id", middleware.GetReqID(r.Context())).
					Msg("request")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// Package main is the entrypoint for the WordNest API server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/wordnest/wordnest/internal/asset"
	"github.com/wordnest/wordnest/internal/auth"
	"github.com/wordnest/wordnest/internal/config"
	"github.com/wordnest/wordnest/internal/handler"
	"github.com/wordnest/wordnest/internal/metrics"
	"github.com/wordnest/wordnest/internal/middleware"
	"github.com/wordnest/wordnest/internal/repository"
	"github.com/wordnest/wordnest/internal/server"
	"github.com/wordnest/wordnest/internal/service"
)

func main() {
	ctx := context.Background()

	// A .env file is optional; real environments set variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	assets, err := asset.NewStore(cfg.UploadDir, cfg.UploadBaseURL, logger)
	if err != nil {
		logger.Error("failed to initialize upload store", "error", err)
		os.Exit(1)
	}

	codec, err := auth.NewTokenCodec(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		logger.Error("failed to initialize token codec", "error", err)
		os.Exit(1)
	}

	// Services
	metricsRecorder := metrics.NewNoop()
	authService := service.NewAuthService(repo, codec, metricsRecorder, logger)
	postService := service.NewPostService(repo, assets, metricsRecorder, logger)
	profileService := service.NewProfileService(repo, repo, assets, metricsRecorder, logger)

	// Handlers
	healthHandler := handler.NewHealthHandler(repo)
	authHandler := handler.NewAuthHandler(authService, logger)
	postHandler := handler.NewPostHandler(postService, cfg.MaxUploadSize, logger)
	profileHandler := handler.NewProfileHandler(profileService, postService, cfg.MaxUploadSize, logger)

	r := setupRouter(routerDeps{
		cfg:            cfg,
		logger:         logger,
		codec:          codec,
		healthHandler:  healthHandler,
		authHandler:    authHandler,
		postHandler:    postHandler,
		profileHandler: profileHandler,
	})

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"upload_dir", cfg.UploadDir,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routerDeps struct {
	cfg            *config.Config
	logger         *slog.Logger
	codec          *auth.TokenCodec
	healthHandler  *handler.HealthHandler
	authHandler    *handler.AuthHandler
	postHandler    *handler.PostHandler
	profileHandler *handler.ProfileHandler
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.logger))
	r.Use(middleware.Recoverer(deps.logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment: deps.cfg.IsDevelopment(),
	}))
	if origins := deps.cfg.GetCORSAllowedOrigins(); len(origins) > 0 {
		corsCfg := middleware.DefaultCORSConfig()
		corsCfg.AllowedOrigins = origins
		r.Use(middleware.CORS(corsCfg))
	}
	r.Use(middleware.MaxBodySize(deps.cfg.MaxRequestBodySize))

	// Health endpoints (no auth required)
	r.Get("/healthz", deps.healthHandler.Healthz)
	r.Get("/readyz", deps.healthHandler.Readyz)

	// Uploaded images
	uploads := http.StripPrefix(
		deps.cfg.UploadBaseURL+"/",
		http.FileServer(http.Dir(deps.cfg.UploadDir)),
	)
	r.Get(deps.cfg.UploadBaseURL+"/*", uploads.ServeHTTP)

	authCfg := middleware.AuthConfig{
		Logger: deps.logger,
		Codec:  deps.codec,
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", deps.authHandler.Signup)
			r.Post("/login", deps.authHandler.Login)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Use(middleware.Auth(authCfg))
			r.Get("/", deps.postHandler.List)
			r.Get("/{id}", deps.postHandler.Get)
			r.Post("/", deps.postHandler.Create)
			r.Put("/{id}", deps.postHandler.Update)
			r.Delete("/{id}", deps.postHandler.Delete)
		})

		r.Route("/user", func(r chi.Router) {
			r.Use(middleware.Auth(authCfg))
			r.Get("/profile", deps.profileHandler.Get)
			r.Put("/profile", deps.profileHandler.Update)
			r.Post("/profile/picture", deps.profileHandler.UploadPicture)
			r.Delete("/profile/picture", deps.profileHandler.DeletePicture)
			r.Get("/posts", deps.profileHandler.ListPosts)
			r.Get("/stats", deps.profileHandler.Stats)
		})
	})

	// 404 and 405 handlers
	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}

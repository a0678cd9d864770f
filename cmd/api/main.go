// Package main is the entrypoint for the customer admin console API.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/custadmin/custadmin/internal/config"
	"github.com/custadmin/custadmin/internal/console"
	"github.com/custadmin/custadmin/internal/gateway"
	"github.com/custadmin/custadmin/internal/handler"
	"github.com/custadmin/custadmin/internal/metrics"
	"github.com/custadmin/custadmin/internal/middleware"
	"github.com/custadmin/custadmin/internal/server"
	"github.com/custadmin/custadmin/internal/store"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)
	metricsRecorder := metrics.NewInMemory()

	// Users service client
	gw, err := gateway.New(
		cfg.CustomerAPIURL,
		gateway.NewHTTPClient(cfg.CustomerAPITimeout),
		logger,
		metricsRecorder,
	)
	if err != nil {
		logger.Error("invalid users service URL",
			slog.String("error", sanitizeError(err, cfg.CustomerAPIURL)),
			slog.String("customer_api_url", redactURL(cfg.CustomerAPIURL)),
		)
		os.Exit(1)
	}
	gw.SetRequestIDFunc(middleware.GetRequestID)

	// Customer list store
	customers, err := openStore(ctx, cfg, logger)
	if err != nil {
		os.Exit(1)
	}

	con := console.New(gw, customers, logger, metricsRecorder)
	if cfg.PreloadCustomers {
		preload(ctx, con, cfg.CustomerAPITimeout, logger)
	}

	// Handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(gw, customers)
	metricsHandler := handler.NewMetricsHandler(metricsRecorder)
	customerHandler := handler.NewCustomerHandler(con, logger.With("component", "handler"))

	r := setupRouter(h, healthHandler, metricsHandler, customerHandler, cfg, logger)

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)
	srv.OnShutdown("customer_store", func(ctx context.Context) error {
		return customers.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"customer_api_url", redactURL(gw.BaseURL()),
		"shared_list", cfg.UsesRedis(),
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// openStore connects to Redis when configured and falls back to memory.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	if !cfg.UsesRedis() {
		logger.Info("customer list kept in memory")
		return store.NewMemory(), nil
	}

	rs, err := store.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		return nil, err
	}
	logger.Info("connected to Redis")
	return rs, nil
}

// preload fills the list from the users service. A failure leaves the
// list empty; POST /api/v1/customers/refresh retries.
func preload(ctx context.Context, con *console.Console, timeout time.Duration, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	snap, err := con.Load(ctx)
	if err != nil {
		logger.Warn("customer list preload failed", "error", err)
		return
	}
	logger.Info("customer list loaded", "count", len(snap.Customers), "revision", snap.Revision)
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
	switch strings.ToLower(level) {
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

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h *handler.Handler,
	healthHandler *handler.HealthHandler,
	metricsHandler *handler.MetricsHandler,
	customerHandler *handler.CustomerHandler,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger, cfg.IsDevelopment()))
	r.Use(middleware.SecureHeaders(cfg.IsProduction()))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	r.Get("/metrics", metricsHandler.Metrics)
	r.Get("/", h.Index)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))
		customerHandler.Mount(r)
	})

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s&]+`)

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

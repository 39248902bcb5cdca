package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"amazetimes/internal/ads"
	"amazetimes/internal/config"
	hhttp "amazetimes/internal/handler/http"
	"amazetimes/internal/handler/http/admin"
	hauth "amazetimes/internal/handler/http/auth"
	"amazetimes/internal/handler/http/language"
	"amazetimes/internal/handler/http/middleware"
	"amazetimes/internal/handler/http/news"
	"amazetimes/internal/handler/http/requestid"
	"amazetimes/internal/handler/http/route"
	"amazetimes/internal/infra/db"
	"amazetimes/internal/infra/storage"
	"amazetimes/internal/observability/logging"
	"amazetimes/internal/observability/metrics"
	"amazetimes/internal/observability/tracing"
	"amazetimes/internal/query"
	authservice "amazetimes/internal/service/auth"
	"amazetimes/internal/usecase/content"
	"amazetimes/internal/usecase/editor"
	"amazetimes/internal/usecase/page"
	envconfig "amazetimes/pkg/config"
)

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	logger := logging.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	site, err := config.LoadSiteConfig(envconfig.GetEnvString("SITE_CONFIG", ""))
	if err != nil {
		fatal(logger, "failed to load site configuration", err)
	}
	sec, err := config.LoadSecurityConfig(envconfig.GetEnvString("SECURITY_CONFIG", ""))
	if err != nil {
		fatal(logger, "failed to load security configuration", err)
	}

	store, err := storage.Open(ctx, storage.Options{
		Driver:  envconfig.GetEnvString("STORAGE_DRIVER", storage.DriverMemory),
		DSN:     os.Getenv("DATABASE_URL"),
		Migrate: envconfig.GetEnvBool("DB_AUTO_MIGRATE", true),
		Pool:    db.ConnectionConfigFromEnv(),
	})
	if err != nil {
		fatal(logger, "failed to open storage", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", slog.Any("error", err))
		}
	}()
	logger.Info("storage ready", slog.String("driver", store.Driver))

	shutdownTracing := tracing.Setup(envconfig.GetEnvFloat("TRACE_SAMPLE_RATIO", 0.1))
	defer func() { _ = shutdownTracing(context.Background()) }()

	handler := setupServer(ctx, logger, store, site, sec)
	runServer(ctx, logger, handler)
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, slog.Any("error", err))
	os.Exit(1)
}

func setupServer(ctx context.Context, logger *slog.Logger, store *storage.Store, site *config.SiteConfig, sec *config.SecurityConfig) http.Handler {
	version := envconfig.GetEnvString("VERSION", "dev")
	secureCookie := envconfig.GetEnvBool("COOKIE_SECURE", true)

	queries := query.NewClient(query.Config{
		Size: envconfig.GetEnvPositiveInt("QUERY_CACHE_SIZE", query.DefaultConfig().Size),
		TTL:  envconfig.GetEnvDuration("QUERY_CACHE_TTL", query.DefaultConfig().TTL),
	}, content.Dependencies, metrics.QueryObserver{})

	contentSvc := content.NewService(store.Articles, store.Parties)
	pages := page.NewService(contentSvc, queries, site, logger)
	sessions := editor.NewSessions(contentSvc, queries, editor.NewLedger(1024, 24*time.Hour), logger, 64, 12*time.Hour)

	authHandlers, guard := setupAuth(ctx, logger, store, sec, secureCookie)

	mux := http.NewServeMux()
	mux.Handle("GET /health", &hhttp.HealthHandler{DB: pinger(store), Version: version})
	mux.Handle("GET /ready", &hhttp.ReadyHandler{DB: pinger(store)})
	mux.Handle("GET /live", hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())

	hauth.Register(mux, authHandlers)
	news.Register(mux, &news.Handler{Pages: pages, Ads: ads.NewService(site, logger), Logger: logger})
	admin.Register(mux, guard, &admin.Handler{Content: contentSvc, Queries: queries, Sessions: sessions, Logger: logger})

	if store.DB != nil {
		go reportPoolStats(ctx, store)
	}

	corsOrigins := envconfig.GetEnvStringList("CORS_ALLOWED_ORIGINS", sec.CORSOrigins)
	logger.Info("CORS enabled", slog.Any("allowed_origins", corsOrigins))

	// first listed is outermost
	return hhttp.Chain(route.Capture(mux),
		route.Middleware,
		middleware.CORS(middleware.DefaultCORSConfig(corsOrigins)),
		requestid.Middleware,
		hhttp.Recover(logger),
		hhttp.Logging(logger),
		hhttp.LimitRequest(1<<20),
		hhttp.SecurityHeaders,
		tracing.Middleware,
		hhttp.MetricsMiddleware,
		language.Middleware(secureCookie),
	)
}

func setupAuth(ctx context.Context, logger *slog.Logger, store *storage.Store, sec *config.SecurityConfig, secureCookie bool) (*hauth.Handlers, *hauth.Guard) {
	secret := os.Getenv(sec.JWT.SecretEnv)
	issuer, err := hauth.NewIssuer(secret, sec.TokenTTL())
	if err != nil {
		fatal(logger, "invalid "+sec.JWT.SecretEnv, err)
	}

	adminUser := os.Getenv("ADMIN_USER")
	adminPassword := os.Getenv("ADMIN_USER_PASSWORD")
	if adminUser == "" {
		fatal(logger, "ADMIN_USER must be set", errors.New("missing admin user"))
	}
	if err := sec.CheckAdminPassword(adminPassword); err != nil {
		fatal(logger, "admin credentials validation failed", err)
	}
	users := []authservice.StaticUser{{Username: adminUser, Password: adminPassword, Role: authservice.RoleAdmin}}
	if viewer := os.Getenv("VIEWER_USER"); viewer != "" {
		pw := os.Getenv("VIEWER_PASSWORD")
		if err := sec.CheckAdminPassword(pw); err != nil {
			logger.Warn("viewer credentials rejected, viewer login disabled", slog.Any("error", err))
		} else {
			users = append(users, authservice.StaticUser{Username: viewer, Password: pw, Role: authservice.RoleViewer})
		}
	}

	if store.DB != nil {
		if err := db.EnsureAdminUser(ctx, store.DB, adminUser, adminUser); err != nil {
			logger.Warn("failed to record admin user", slog.Any("error", err))
		}
	}

	proxies, err := middleware.ParseTrustedProxies(envconfig.GetEnvStringList("TRUSTED_PROXIES", sec.TrustedProxies))
	if err != nil {
		fatal(logger, "invalid trusted proxy list", err)
	}

	revoked := hauth.NewRevocations(4096, sec.TokenTTL())
	guard := hauth.NewGuard(issuer, revoked)
	return &hauth.Handlers{
		Service:      authservice.NewService(authservice.NewStaticProvider(users...), sec.Auth.MinPasswordLength),
		Issuer:       issuer,
		Guard:        guard,
		Revoked:      revoked,
		Limiter:      hauth.NewLoginLimiter(sec.Login.Interval, sec.Login.Burst, time.Hour),
		IPs:          middleware.NewIPExtractor(proxies),
		SecureCookie: secureCookie,
		Logger:       logger,
	}, guard
}

// pinger keeps a nil *sql.DB from becoming a non-nil interface.
func pinger(store *storage.Store) hhttp.Pinger {
	if store.DB == nil {
		return nil
	}
	return store.DB
}

func reportPoolStats(ctx context.Context, store *storage.Store) {
	t := time.NewTicker(15 * time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s := store.DB.Stats()
			metrics.UpdateDBConnectionStats(s.InUse, s.Idle)
		}
	}
}

func runServer(ctx context.Context, logger *slog.Logger, handler http.Handler) {
	addr := envconfig.GetEnvString("HTTP_ADDR", ":8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(logger, "server failed", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}

package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-laundry/internal/common"
	"github.com/noah-isme/backend-laundry/internal/config"
	"github.com/noah-isme/backend-laundry/internal/customer"
	"github.com/noah-isme/backend-laundry/internal/excel"
	"github.com/noah-isme/backend-laundry/internal/health"
	"github.com/noah-isme/backend-laundry/internal/inventory"
	"github.com/noah-isme/backend-laundry/internal/invoice"
	"github.com/noah-isme/backend-laundry/internal/laundry"
	"github.com/noah-isme/backend-laundry/internal/obs"
	"github.com/noah-isme/backend-laundry/internal/order"
	"github.com/noah-isme/backend-laundry/internal/pricing"
	"github.com/noah-isme/backend-laundry/internal/quote"
	"github.com/noah-isme/backend-laundry/internal/ratelimit"
	"github.com/noah-isme/backend-laundry/internal/report"
	"github.com/noah-isme/backend-laundry/internal/resilience"
	"github.com/noah-isme/backend-laundry/internal/security"
	"github.com/noah-isme/backend-laundry/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("env", cfg.AppEnv).Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "laundry")
	metricsEnabled := envBool("OBS_ENABLE_PROMETHEUS", true)
	domainMetrics := obs.NewDomainMetrics(metricsNamespace, prometheus.DefaultRegisterer)

	tracingEnabled := envBool("OBS_ENABLE_TRACING", false)
	if tracingEnabled {
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "laundry-api",
			Endpoint:      envOrDefault("OBS_OTLP_ENDPOINT", ""),
			Exporter:      envOrDefault("OBS_TRACING_EXPORTER", "otlp"),
			SamplingRatio: envFloat("OBS_TRACING_SAMPLING_RATIO", 1.0),
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var (
		redisClient *redis.Client
		backend     store.Store = store.NewMemory()
		locker      store.Locker
		limitStore  = ratelimit.NewMemoryStore(ratelimit.DefaultPrefix)
	)
	if cfg.UseRedis() {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("parse redis url")
		}
		redisClient = redis.NewClient(redisOpts)
		if err := redisotel.InstrumentTracing(redisClient); err != nil {
			logger.Error().Err(err).Msg("instrument redis tracing")
		}
		if metricsEnabled {
			if err := redisotel.InstrumentMetrics(redisClient); err != nil {
				logger.Error().Err(err).Msg("instrument redis metrics")
			}
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error().Err(err).Msg("close redis")
			}
		}()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Msg("ping redis")
		}
		breaker := resilience.NewBreaker(
			envInt("STORE_BREAKER_MIN_REQUESTS", 5),
			envFloat("STORE_BREAKER_FAILURE_RATIO", 0.5),
			envDurationMillis("STORE_BREAKER_OPEN_MS", 10000),
		).WithTarget("redis").WithLogger(logger)
		if metricsEnabled {
			breaker.WithMetrics(resilience.NewMetrics(metricsNamespace, prometheus.DefaultRegisterer))
		}
		backend = store.Guarded{Store: store.NewRedis(redisClient, cfg.StoreKey), Breaker: breaker}
		locker = store.RedisLock{Client: redisClient}
		limitStore, err = ratelimit.NewRedisStore(redisClient, ratelimit.DefaultPrefix)
		if err != nil {
			logger.Fatal().Err(err).Msg("initialise rate limit store")
		}
	} else {
		logger.Warn().Msg("REDIS_URL not set, workspace is kept in memory")
	}

	workspace, err := store.NewWorkspace(store.WorkspaceConfig{
		Store:  backend,
		Locker: locker,
		Settings: laundry.Settings{
			TaxRate:        cfg.TaxRate,
			Currency:       cfg.CurrencyCode,
			CurrencySymbol: cfg.CurrencySymbol,
		},
		Logger: logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise workspace")
	}
	var seed func() *laundry.Dataset
	if cfg.SeedSampleData {
		seed = func() *laundry.Dataset { return laundry.SampleDataset(time.Now().In(cfg.Location)) }
	}
	if _, err := workspace.Init(ctx, seed); err != nil {
		logger.Fatal().Err(err).Msg("initialise workspace data")
	}

	table, err := loadPriceTable(cfg.PriceTableFile, domainMetrics)
	if err != nil {
		logger.Fatal().Err(err).Str("file", cfg.PriceTableFile).Msg("load price table")
	}
	logger.Info().Str("file", cfg.PriceTableFile).Int("entries", len(table.Entries())).Msg("price table loaded")
	registry := pricing.NewRegistry(table)

	orderService, err := order.NewService(order.ServiceConfig{
		Workspace: workspace,
		Registry:  registry,
		Metrics:   domainMetrics,
		Logger:    logger,
		Location:  cfg.Location,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise order service")
	}
	orderHandler := order.NewHandler(order.HandlerConfig{Service: orderService})

	customerService, err := customer.NewService(customer.ServiceConfig{Workspace: workspace, Logger: logger})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise customer service")
	}
	customerHandler := customer.NewHandler(customer.HandlerConfig{Service: customerService})

	invoiceService, err := invoice.NewService(invoice.ServiceConfig{
		Workspace: workspace,
		Metrics:   domainMetrics,
		Logger:    logger,
		Location:  cfg.Location,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise invoice service")
	}
	invoiceHandler := invoice.NewHandler(invoice.HandlerConfig{Service: invoiceService})

	inventoryService, err := inventory.NewService(inventory.ServiceConfig{
		Workspace: workspace,
		Metrics:   domainMetrics,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise inventory service")
	}
	inventoryHandler := inventory.NewHandler(inventory.HandlerConfig{Service: inventoryService})

	reportService, err := report.NewService(report.ServiceConfig{
		Workspace: workspace,
		Logger:    logger,
		Location:  cfg.Location,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise report service")
	}
	reportHandler := report.NewHandler(report.HandlerConfig{Service: reportService, Registry: registry})

	quoteHandler := quote.NewHandler(quote.HandlerConfig{
		Registry:  registry,
		Workspace: workspace,
		Metrics:   domainMetrics,
		Logger:    logger,
	})

	idem := common.Idem{TTL: cfg.IdempotencyTTL}
	if redisClient != nil {
		idem.R = redisClient
	}
	limit := ratelimit.Handler{
		Limiter: ratelimit.PerMinute(limitStore, cfg.RateLimitPerMinute),
		OnError: func(err error) { logger.Error().Err(err).Msg("rate limit store") },
	}

	httpMetrics := obs.NewHTTPMetrics(metricsNamespace, obs.ParseBucketsCSV(envOrDefault("OBS_HTTP_BUCKETS_MS", "")), prometheus.DefaultRegisterer)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestSize(cfg.RequestBodyLimit))
	r.Use(security.Headers{
		Enable:                envBool("SECURE_HEADERS", true),
		EnableHSTS:            envBool("SECURE_HSTS", false),
		HSTSMaxAge:            envInt("SECURE_HSTS_MAX_AGE", 31536000),
		HSTSIncludeSubdomains: envBool("SECURE_HSTS_INCLUDE_SUBDOMAINS", false),
		TrustForwardedProto:   envBool("SECURE_TRUST_FORWARDED_PROTO", false),
	}.Middleware)
	r.Use(obs.RoutePatternMiddleware)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if metricsEnabled {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Total-Count", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	if envBool("OBS_ENABLE_PPROF", false) {
		user := envOrDefault("SECURE_PPROF_BASIC_AUTH_USER", "")
		pass := envOrDefault("SECURE_PPROF_BASIC_AUTH_PASS", "")
		r.Mount("/debug/pprof", protectPprof(newPprofMux(), user, pass))
	}

	probeTimeout := envDurationMillis("HEALTH_READY_TIMEOUT_MS", 500)
	healthHandler := health.Handler{Timeout: probeTimeout, Probes: []health.Probe{
		{Name: "store", Check: workspace.Ping},
		{Name: "prices", Check: func(context.Context) error {
			if registry.Current() == nil {
				return errors.New("price table not loaded")
			}
			return nil
		}},
	}}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Use(limit.Middleware)

		v.Get("/prices", quoteHandler.Prices)
		v.Get("/prices.xlsx", quoteHandler.PricesWorkbook)
		v.Put("/prices", quoteHandler.UploadPrices)
		v.Post("/quotes/order", quoteHandler.QuoteOrder)
		v.Post("/quotes/invoice", quoteHandler.QuoteInvoice)

		v.Route("/orders", func(o chi.Router) {
			o.Get("/", orderHandler.List)
			o.With(idem.Middleware).Post("/", orderHandler.Create)
			o.Route("/{id}", func(child chi.Router) {
				child.Get("/", orderHandler.Get)
				child.Put("/", orderHandler.Update)
				child.Delete("/", orderHandler.Delete)
				child.Post("/advance", orderHandler.Advance)
				child.Post("/cancel", orderHandler.Cancel)
				child.Patch("/status", orderHandler.PatchStatus)
			})
		})
		v.Route("/customers", func(c chi.Router) {
			c.Get("/", customerHandler.List)
			c.With(idem.Middleware).Post("/", customerHandler.Create)
			c.Route("/{id}", func(child chi.Router) {
				child.Get("/", customerHandler.Get)
				child.Put("/", customerHandler.Update)
				child.Delete("/", customerHandler.Delete)
			})
		})
		v.Route("/invoices", func(i chi.Router) {
			i.Get("/", invoiceHandler.List)
			i.With(idem.Middleware).Post("/", invoiceHandler.Create)
			i.Route("/{id}", func(child chi.Router) {
				child.Get("/", invoiceHandler.Get)
				child.Put("/", invoiceHandler.Update)
				child.Delete("/", invoiceHandler.Delete)
				child.Post("/toggle", invoiceHandler.Toggle)
			})
		})
		v.Route("/inventory", func(i chi.Router) {
			i.Get("/", inventoryHandler.List)
			i.Get("/alerts", inventoryHandler.Alerts)
			i.With(idem.Middleware).Post("/", inventoryHandler.Create)
			i.Route("/{id}", func(child chi.Router) {
				child.Get("/", inventoryHandler.Get)
				child.Put("/", inventoryHandler.Update)
				child.Delete("/", inventoryHandler.Delete)
				child.Post("/adjust", inventoryHandler.Adjust)
			})
		})

		v.Get("/dashboard", reportHandler.Dashboard)
		v.Get("/reports", reportHandler.Reports)
		v.Get("/settings", reportHandler.Settings)
		v.Put("/settings", reportHandler.UpdateSettings)
		v.Get("/export", reportHandler.Export)
		v.Get("/export.xlsx", reportHandler.ExportWorkbook)
		v.Post("/import", reportHandler.Import)
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-sigCtx.Done()
		health.SetReady(false)
		logger.Info().Msg("server draining")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("server shutdown")
		}
	}()

	logger.Info().Str("addr", srv.Addr).Bool("redis", cfg.UseRedis()).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server exited unexpectedly")
	}
	logger.Info().Msg("server stopped")
}

// loadPriceTable reads PRICE_TABLE_FILE when set and falls back to the built-in table
// only when no file is configured. An unreadable or incomplete file is an error.
func loadPriceTable(path string, metrics *obs.DomainMetrics) (*pricing.Table, error) {
	if path == "" {
		return pricing.DefaultTable(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		metrics.PriceTableLoad("file", err)
		return nil, fmt.Errorf("open price table: %w", err)
	}
	defer f.Close()
	table, err := excel.ParsePriceTable(path, f)
	metrics.PriceTableLoad("file", err)
	if err != nil {
		return nil, fmt.Errorf("parse price table %s: %w", path, err)
	}
	return table, nil
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "t", "true", "yes", "on":
			return true
		case "0", "f", "false", "no", "off":
			return false
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDurationMillis(key string, fallback int) time.Duration {
	return time.Duration(envInt(key, fallback)) * time.Millisecond
}

func newPprofMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", pprof.Index)
	mux.HandleFunc("/cmdline", pprof.Cmdline)
	mux.HandleFunc("/profile", pprof.Profile)
	mux.HandleFunc("/symbol", pprof.Symbol)
	mux.HandleFunc("/trace", pprof.Trace)
	mux.Handle("/heap", pprof.Handler("heap"))
	mux.Handle("/goroutine", pprof.Handler("goroutine"))
	return mux
}

func protectPprof(handler http.Handler, user, pass string) http.Handler {
	user = strings.TrimSpace(user)
	pass = strings.TrimSpace(pass)
	if user == "" {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 || subtle.ConstantTimeCompare([]byte(p), []byte(pass)) != 1 {
			w.Header().Set("WWW-Authenticate", "Basic realm=restricted")
			http.Error(w, "unauthorised", http.StatusUnauthorized)
			return
		}
		handler.ServeHTTP(w, r)
	})
}

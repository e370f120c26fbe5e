package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/bobeautician/advisor/internal/api/handlers"
	"github.com/bobeautician/advisor/internal/api/middleware"
	"github.com/bobeautician/advisor/internal/config"
	"github.com/bobeautician/advisor/internal/llm"
	"github.com/bobeautician/advisor/internal/models"
	"github.com/bobeautician/advisor/internal/observability"
	"github.com/bobeautician/advisor/internal/recommend"
	"github.com/bobeautician/advisor/internal/repository"
	"github.com/bobeautician/advisor/internal/service"
	"github.com/bobeautician/advisor/pkg/cache"
)

// App holds all server dependencies and coordinates startup and shutdown.
type App struct {
	cfg            *config.Config
	server         *http.Server
	meterShutdown  observability.ShutdownFunc
	tracerProvider *sdktrace.TracerProvider
}

// setupMetrics creates the meter, the advisor instruments and the /metrics handler.
func setupMetrics() (*observability.Metrics, http.Handler, observability.ShutdownFunc, error) {
	meter, handler, shutdown, err := observability.NewMeterProvider(observability.DefaultServiceName)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create meter provider: %w", err)
	}

	metrics, err := observability.NewMetrics(meter)
	if err != nil {
		if err2 := shutdown(context.Background()); err2 != nil {
			slog.Error("shutdown meter provider after metrics error", "error", err2)
		}

		return nil, nil, nil, fmt.Errorf("create metrics: %w", err)
	}

	return metrics, handler, shutdown, nil
}

// NewApp builds and wires all components. It does not start the HTTP server;
// call Run to start and block until shutdown or failure.
func NewApp(ctx context.Context, cfg *config.Config, db *pgxpool.Pool) (*App, error) {
	var (
		metrics        *observability.Metrics
		metricsHandler http.Handler
		meterShutdown  observability.ShutdownFunc
		err            error
	)

	if cfg.MetricsEnabled {
		metrics, metricsHandler, meterShutdown, err = setupMetrics()
		if err != nil {
			return nil, err
		}
	} else {
		slog.Warn("metrics not enabled (METRICS_ENABLED=false)")
	}

	tracerProvider, err := observability.NewTracerProvider(ctx, cfg.OtelTracesExporter, observability.DefaultServiceName)
	if err != nil {
		if meterShutdown != nil {
			if err2 := meterShutdown(context.Background()); err2 != nil {
				slog.Error("shutdown meter provider after tracer provider error", "error", err2)
			}
		}

		return nil, fmt.Errorf("create tracer provider: %w", err)
	}

	if tracerProvider != nil {
		otel.SetTracerProvider(tracerProvider)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	} else {
		slog.Warn("tracing not enabled (OTEL_TRACES_EXPORTER empty or unsupported)")
	}

	var (
		httpMetrics       observability.HTTPMetrics
		pipelineMetrics   observability.PipelineMetrics
		generationMetrics observability.GenerationMetrics
		cacheMetrics      observability.CacheMetrics
		apiMetrics        observability.APIMetrics
	)
	if metrics != nil {
		httpMetrics = metrics.HTTP
		pipelineMetrics = metrics.Pipeline
		generationMetrics = metrics.Generation
		cacheMetrics = metrics.Cache
		apiMetrics = metrics.API
	}

	if cfg.OpenRouterAPIKey == "" {
		slog.Warn("completion API key not set (OPENROUTER_API_KEY); answers will be a fallback message")
	}

	generator := llm.NewGenerator(llm.Config{
		APIKey:          cfg.OpenRouterAPIKey,
		BaseURL:         cfg.OpenRouterBaseURL,
		Models:          cfg.LLMModels,
		SiteURL:         cfg.SiteURL,
		Timeout:         cfg.LLMTimeout,
		Temperature:     cfg.LLMTemperature,
		MaxTokens:       cfg.LLMMaxTokens,
		RateLimit:       cfg.LLMRateLimit,
		RetryMax:        cfg.LLMHTTPRetryMax,
		BreakerFailures: cfg.LLMBreakerFailures,
		BreakerTimeout:  cfg.LLMBreakerTimeout,
		Metrics:         generationMetrics,
	})

	catalogRepo := repository.NewCatalogRepository(db)

	pipeline := recommend.NewPipeline(recommend.NewRetriever(catalogRepo), generator, recommend.PipelineConfig{
		DefaultK:    cfg.RetrievalK,
		TokenBudget: cfg.ContextTokenBudget,
		Metrics:     pipelineMetrics,
	})

	productCache, err := cache.NewLoaderCache[int64, *models.Product](cfg.ProductCacheSize,
		func(id int64) string { return strconv.FormatInt(id, 10) })
	if err != nil {
		return nil, errors.Join(fmt.Errorf("create product cache: %w", err),
			shutdownObservability(context.Background(), tracerProvider, meterShutdown))
	}

	catalogService := service.NewCatalogService(
		service.NewCachingCatalogRepository(catalogRepo, productCache, cacheMetrics),
	)
	intakeService := service.NewIntakeService(cfg.IntakeCacheSize, cfg.IntakeTTL, cacheMetrics)
	chatService := service.NewChatService(pipeline, generator, intakeService, cfg.RetrievalK)

	router := newRouter(cfg, routes{
		health:  handlers.NewHealthHandler(catalogRepo),
		chat:    handlers.NewChatHandler(chatService, intakeService),
		catalog: handlers.NewCatalogHandler(catalogService),
		metrics: metricsHandler,
	}, httpMetrics, apiMetrics)

	return &App{
		cfg:            cfg,
		server:         newHTTPServer(cfg, router, tracerProvider),
		meterShutdown:  meterShutdown,
		tracerProvider: tracerProvider,
	}, nil
}

type routes struct {
	health  *handlers.HealthHandler
	chat    *handlers.ChatHandler
	catalog *handlers.CatalogHandler
	metrics http.Handler // nil when metrics are disabled
}

// newRouter builds the chi route tree. Chat and QA routes are rate limited per client IP
// because each request may call the completion service.
func newRouter(cfg *config.Config, rt routes, httpMetrics observability.HTTPMetrics, apiMetrics observability.APIMetrics) chi.Router {
	var (
		bodyRecorder  middleware.RequestBodyTooLargeRecorder
		limitRecorder middleware.RateLimitedRecorder
	)
	if apiMetrics != nil {
		bodyRecorder = apiMetrics
		limitRecorder = apiMetrics
	}

	r := chi.NewRouter()
	r.Use(middleware.Metrics(httpMetrics))
	r.Use(middleware.Recover)
	r.Use(middleware.CORS(middleware.CORSConfig{AllowedOrigins: cfg.CORSAllowedOrigins, MaxAge: corsMaxAge}))
	r.Use(middleware.MaxBody(cfg.MaxRequestBodyBytes, bodyRecorder))

	r.Get("/health", rt.health.Check)
	r.Get("/ready", rt.health.Ready)

	if rt.metrics != nil {
		r.Method(http.MethodGet, "/metrics", rt.metrics)
	}

	limited := middleware.RateLimitByIP(cfg.RateLimitRequests, cfg.RateLimitWindow, limitRecorder)

	r.Route("/api", func(r chi.Router) {
		r.Route("/chat", func(r chi.Router) {
			r.Get("/health", rt.health.Chat)

			r.Group(func(r chi.Router) {
				r.Use(limited)
				r.Post("/ask", rt.chat.Ask)
				r.Post("/intake", rt.chat.Intake)
				r.Post("/direct", rt.chat.Direct)
				r.Post("/routine", rt.chat.Routine)
			})
		})

		r.With(limited).Post("/qa/", rt.chat.QA)
		r.With(limited).Post("/qa", rt.chat.QA)

		r.Get("/products", rt.catalog.ListProducts)
		r.Get("/products/{id}", rt.catalog.GetProduct)
		r.Get("/ingredients", rt.catalog.ListIngredients)
	})

	return r
}

const (
	corsMaxAge   = 600
	readTimeout  = 15 * time.Second
	writeTimeout = 90 * time.Second // covers the completion timeout for every fallback model
	idleTimeout  = 60 * time.Second
)

// newHTTPServer wraps the router. Handler chain: RequestID -> otelhttp(AccessLog(router)) so
// access logs get trace_id/span_id from context.
func newHTTPServer(cfg *config.Config, router http.Handler, tracerProvider *sdktrace.TracerProvider) *http.Server {
	otelOpts := []otelhttp.Option{
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health" && r.URL.Path != "/metrics"
		}),
	}
	if tracerProvider != nil {
		otelOpts = append(otelOpts, otelhttp.WithTracerProvider(tracerProvider))
	}

	handler := otelhttp.NewHandler(middleware.AccessLog(router), "advisor-api", otelOpts...)
	handler = middleware.RequestID(handler)

	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
}

// Run starts the HTTP server and blocks until ctx is cancelled (e.g. signal) or the server fails.
// Caller should then call Shutdown.
func (a *App) Run(ctx context.Context) error {
	runErr := make(chan error, 1)

	go func() {
		slog.Info("Starting server", "port", a.cfg.Port)

		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr <- fmt.Errorf("server: %w", err)
		}
	}()

	select {
	case err := <-runErr:
		return err
	case <-ctx.Done():
		return nil
	}
}

// shutdownObservability shuts down tracer and meter providers. Logs secondary errors, returns the first.
func shutdownObservability(ctx context.Context, tracer *sdktrace.TracerProvider, meter observability.ShutdownFunc) error {
	var first error

	if err := observability.ShutdownTracerProvider(ctx, tracer); err != nil {
		first = err
	}

	if meter != nil {
		if err := meter(ctx); err != nil {
			if first == nil {
				first = err
			} else {
				slog.Error("shutdown meter provider", "error", err)
			}
		}
	}

	return first
}

// Shutdown stops the server, then flushes observability. Call after Run returns.
func (a *App) Shutdown(ctx context.Context) (err error) {
	defer func() {
		obsErr := shutdownObservability(ctx, a.tracerProvider, a.meterShutdown)
		if err == nil {
			err = obsErr
		} else if obsErr != nil {
			slog.Error("shutdown observability", "error", obsErr)
		}
	}()

	if err = a.server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}

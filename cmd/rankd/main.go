package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/iendorse/rankd/internal/analytics"
	"github.com/iendorse/rankd/internal/catalog"
	"github.com/iendorse/rankd/internal/lists"
	rankcache "github.com/iendorse/rankd/internal/ranking/cache"
	"github.com/iendorse/rankd/internal/ranking/handler"
	"github.com/iendorse/rankd/internal/ranking/service"
	"github.com/iendorse/rankd/pkg/config"
	"github.com/iendorse/rankd/pkg/health"
	"github.com/iendorse/rankd/pkg/kafka"
	"github.com/iendorse/rankd/pkg/logger"
	"github.com/iendorse/rankd/pkg/metrics"
	"github.com/iendorse/rankd/pkg/middleware"
	"github.com/iendorse/rankd/pkg/postgres"
	pkgredis "github.com/iendorse/rankd/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting ranking service", "port", cfg.Server.Port)

	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("postgres connected", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	catalogStore := catalog.NewStore(db)
	listStore := lists.NewStore(db)
	svc := service.New(catalogStore, listStore, cfg.Ranking, m)

	var rankingCache *rankcache.RankingCache
	redisClient, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, ranking cache disabled", "error", err)
	} else {
		defer redisClient.Close()
		rankingCache = rankcache.New(redisClient, cfg.Redis)
		slog.Info("ranking cache enabled",
			"addr", cfg.Redis.Addr,
			"ttl", cfg.Redis.CacheTTL,
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	analyticsProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.RankingEvents)
	defer analyticsProducer.Close()
	collector := analytics.NewCollector(analyticsProducer, 10000)
	collector.Start(ctx)
	defer collector.Close()

	aggregator := analytics.NewAggregator()
	analyticsConsumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.RankingEvents, analytics.HandleEvent(aggregator))
	go func() {
		if err := analyticsConsumer.Start(ctx); err != nil {
			slog.Error("analytics consumer error", "error", err)
		}
	}()
	analyticsH := analytics.NewHandler(aggregator)
	slog.Info("analytics aggregator started", "topic", cfg.Kafka.Topics.RankingEvents)

	analyticsStore := analytics.NewStore(db, m)
	analyticsStore.StartPeriodicSave(ctx, aggregator, cfg.Ranking.SnapshotInterval)

	if rankingCache != nil {
		listConsumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.ListEvents, lists.HandleChangeEvent(rankingCache, m))
		go func() {
			if err := listConsumer.Start(ctx); err != nil {
				slog.Error("list event consumer error", "error", err)
			}
		}()
		slog.Info("list event consumer started", "topic", cfg.Kafka.Topics.ListEvents)
	}

	checker := health.NewChecker()
	checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
		if err := db.DB.PingContext(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	checker.Register("kafka", func(ctx context.Context) health.ComponentHealth {
		if err := kafka.Ping(ctx, cfg.Kafka.Brokers); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	h := handler.New(svc, rankingCache, collector, m, cfg.Ranking)
	catalogH := catalog.NewHandler(catalogStore)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/rankings/brands", h.TopBrands)
	mux.HandleFunc("GET /api/v1/rankings/businesses", h.TopBusinesses)
	mux.HandleFunc("GET /api/v1/rankings/local", h.TopLocal)
	mux.HandleFunc("GET /api/v1/rankings/overview", h.TopOverview)
	mux.HandleFunc("GET /api/v1/alignment", h.Alignment)
	mux.HandleFunc("GET /api/v1/values", catalogH.Values)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /api/v1/analytics", analyticsH.Stats)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	if m != nil {
		chain = middleware.Metrics(m)(chain)
	}
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.CORS(middleware.DefaultCORSConfig())(chain)
	chain = middleware.RequestID(chain)

	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := shutdownMetrics(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("ranking service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("ranking service stopped")
}

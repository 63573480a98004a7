package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ratelimit-proxy/internal/config"
	"ratelimit-proxy/internal/logging"
	"ratelimit-proxy/middleware/ratelimit"
	"ratelimit-proxy/middleware/ratelimit/application"
	"ratelimit-proxy/middleware/ratelimit/domain"
	"ratelimit-proxy/middleware/ratelimit/infra"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, logCloser, err := logging.Setup(cfg.Logging)
	if err != nil {
		log.Fatalf("logging error: %v", err)
	}
	slog.SetDefault(logger)

	err = run(cfg, logger)
	if err != nil {
		logger.Error("gateway stopped", "error", err)
	}
	if logCloser != nil {
		_ = logCloser.Close()
	}
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	policy, err := domain.NewPolicy(cfg.Rate.Namespace, cfg.Rate.IntervalSeconds, cfg.Rate.TokensPerInterval)
	if err != nil {
		return err
	}

	var (
		counters domain.CounterStore
		health   func(context.Context) error
		stats    []domain.StatsStore
	)

	switch cfg.Store.Backend {
	case config.StoreRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
		})
		defer func() { _ = rdb.Close() }()

		rc := infra.NewRedisCounterStore(rdb)
		pingCtx, pingCancel := context.WithTimeout(ctx, 2*time.Second)
		err := rc.Ping(pingCtx)
		pingCancel()
		if err != nil {
			return fmt.Errorf("redis ping error: %w", err)
		}
		counters, health = rc, rc.Ping

		if cfg.Stats.Enabled {
			stats = append(stats, infra.NewRedisStatsStore(
				rdb,
				infra.WithStatsPrefix(cfg.Stats.Prefix),
				infra.WithStatsTTL(cfg.Stats.TTL),
				infra.WithStatsBucket(cfg.Stats.Bucket),
				infra.WithStatsTrackHosts(cfg.Stats.TrackHosts),
			))
		}
	case config.StoreMemory:
		mc := infra.NewMemoryCounterStore()
		mc.StartJanitor(ctx)
		counters = mc
	}

	var metrics http.Handler
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		ps, err := infra.NewPrometheusStats(reg)
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		stats = append(stats, ps)
		metrics = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	admission, err := application.NewAdmission(policy, counters, application.WithStoreTimeout(cfg.Rate.StoreTimeout))
	if err != nil {
		return err
	}

	proxy := ratelimit.ProxyHandler(ratelimit.ProxyOptions{
		Admission: admission,
		Forwarder: ratelimit.NewHTTPForwarder(
			ratelimit.WithForwardTimeout(cfg.Proxy.Timeout),
			ratelimit.WithPassThrough(cfg.Proxy.PassThrough),
		),
		Stats:    infra.NewFanoutStats(stats...),
		Logger:   logger,
		FailOpen: cfg.Rate.FailOpen,
	})

	throttle := ratelimit.ClientThrottleOptions{
		KeyHeader:           cfg.Client.KeyHeader,
		TrustXForwardedFor:  cfg.Client.TrustXFF,
		AddRateLimitHeaders: cfg.Client.AddHeaders,
	}
	if cfg.Client.Enabled {
		buckets := infra.NewClientBuckets(cfg.Client.RPS, cfg.Client.Burst)
		buckets.StartJanitor(ctx)
		throttle.Limiter = buckets
	}

	srv := &http.Server{
		Addr: cfg.ListenAddr,
		Handler: ratelimit.NewRouter(ratelimit.RouterOptions{
			Proxy:          proxy,
			ClientThrottle: throttle,
			Concurrency: ratelimit.ConcurrencyOptions{
				Max:            cfg.Concurrency.Max,
				RejectStatus:   http.StatusServiceUnavailable,
				AcquireTimeout: cfg.Concurrency.Timeout,
				Logger:         logger,
			},
			Metrics: metrics,
			Health:  health,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Proxy.Timeout + 10*time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("gateway listening", "addr", cfg.ListenAddr, "store", cfg.Store.Backend)
	logger.Info("admission policy",
		"namespace", policy.Namespace(),
		"tokens_per_interval", policy.TokensPerWindow(),
		"interval_seconds", policy.WindowSeconds(),
		"store_timeout", cfg.Rate.StoreTimeout,
		"fail_open", cfg.Rate.FailOpen,
	)
	logger.Info("client throttle", "enabled", cfg.Client.Enabled, "rps", cfg.Client.RPS, "burst", cfg.Client.Burst, "trust_xff", cfg.Client.TrustXFF)
	logger.Info("concurrency", "max", cfg.Concurrency.Max, "acquire_timeout", cfg.Concurrency.Timeout)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shubham-shewale/options-relay/cmd/relay/internal/feed"
	"github.com/shubham-shewale/options-relay/cmd/relay/internal/gateway"
	"github.com/shubham-shewale/options-relay/cmd/relay/internal/httpapi"
	"github.com/shubham-shewale/options-relay/cmd/relay/internal/hub"
	"github.com/shubham-shewale/options-relay/cmd/relay/internal/metrics"
	"github.com/shubham-shewale/options-relay/cmd/relay/internal/portfolio"
	"github.com/shubham-shewale/options-relay/cmd/relay/internal/protocol"
	"github.com/shubham-shewale/options-relay/cmd/relay/internal/quotes"
	"github.com/shubham-shewale/options-relay/cmd/relay/internal/quotestore"
	"github.com/shubham-shewale/options-relay/cmd/relay/internal/repository"
	"github.com/shubham-shewale/options-relay/cmd/relay/internal/scheduler"
	"github.com/shubham-shewale/options-relay/cmd/relay/internal/upstream"
	"github.com/shubham-shewale/options-relay/pkg/config"
	"github.com/shubham-shewale/options-relay/pkg/models"
	"github.com/shubham-shewale/options-relay/pkg/watchlist"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	logger, err := config.NewLogger(cfg.Logger)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	entries, err := watchlist.Load(cfg.Feed.WatchlistFile)
	if err != nil {
		logger.Fatal("Failed to load watchlist", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := quotestore.New()

	// Redis is optional; without it the store starts empty on every restart.
	var mirror repository.SnapshotMirror
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis unreachable, snapshot mirror disabled", zap.Error(err))
			rdb.Close()
		} else {
			rs := repository.NewRedisStore(rdb, cfg.Redis.SnapshotTTL)
			defer rs.Close()
			mirror = rs

			restoreCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			n, err := feed.Restore(restoreCtx, rs, store)
			cancel()
			if err != nil {
				logger.Warn("Warm start failed", zap.Error(err))
			} else {
				logger.Info("Warm start complete", zap.Int("quotes", n))
			}
		}
	}

	var lookup quotes.Upstream
	if cfg.Upstream.Token != "" {
		lookup = upstream.NewClient(cfg.Upstream, logger)
	} else {
		logger.Warn("No upstream token, search and detail use fallback data")
	}

	svc := quotes.NewService(store, lookup, watchlist.Names(entries), m, logger)
	synth := portfolio.NewDefault()
	sched := scheduler.New(scheduler.RealClock{}, scheduler.Intervals{
		Portfolio: cfg.Broadcast.PortfolioInterval,
		Market:    cfg.Broadcast.MarketInterval,
	}, svc, synth, logger)

	// Dependency Injection: Hub depends on the scheduler interface
	wsHub := hub.NewHub(sched, m, logger)

	ingestor := feed.NewIngestor(store, mirror, feed.PublisherFunc(func(q []models.Quote) {
		wsHub.Broadcast(protocol.EventStockPriceUpdate, q)
	}), m, logger)

	if cfg.App.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpapi.NewRouter(httpapi.RouterConfig{
		Handler:       httpapi.NewHandler(svc, synth, logger),
		Sessions:      wsHub,
		Store:         store,
		Gatherer:      reg,
		WebSocket:     gateway.Handler(wsHub, logger, cfg.Broadcast.SendBuffer),
		AllowedOrigin: cfg.App.AllowedOrigin,
		Logger:        logger,
	})
	srv := &http.Server{Addr: cfg.App.Port, Handler: router, ReadHeaderTimeout: 10 * time.Second}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Server Started", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		wsHub.Shutdown()
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.Feed.Enabled {
		stream := feed.NewStream(feed.StreamConfig{
			URL:          cfg.Feed.URL,
			Token:        cfg.Feed.Token,
			MinBackoff:   cfg.Feed.MinBackoff,
			MaxBackoff:   cfg.Feed.MaxBackoff,
			PingInterval: cfg.Feed.PingInterval,
		}, ingestor, m, logger)
		for _, sym := range watchlist.Symbols(entries) {
			stream.Subscribe(sym)
		}
		g.Go(func() error {
			if err := stream.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if cfg.Kafka.Enabled {
		source := feed.NewKafkaSource(feed.NewKafkaReader(cfg.Kafka), ingestor, logger)
		g.Go(func() error { return source.Run(gctx) })
	}

	if err := g.Wait(); err != nil {
		logger.Error("Relay stopped with error", zap.Error(err))
	}
	logger.Info("Shutdown Complete")
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/project-tktt/job-harvester/internal/config"
	"github.com/project-tktt/job-harvester/internal/crawl"
	"github.com/project-tktt/job-harvester/internal/dedup"
	"github.com/project-tktt/job-harvester/internal/fetch"
	"github.com/project-tktt/job-harvester/internal/logging"
	"github.com/project-tktt/job-harvester/internal/queue"
	"github.com/project-tktt/job-harvester/internal/sink"
)

func main() {
	// .env is optional, real deployments use the environment directly
	_ = godotenv.Load()

	cfg := config.Load()

	logger, err := logging.New(cfg.Development)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	var rdb *redis.Client
	if cfg.Crawler.Dedupe || hasSink(cfg.Sinks, "redis") {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal("redis connection failed", zap.Error(err))
		}
		logger.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
	}

	out, closers := buildSinks(cfg, rdb, logger)
	defer func() {
		for _, c := range closers {
			c()
		}
	}()

	var seen crawl.SeenStore
	if cfg.Crawler.Dedupe && rdb != nil {
		seen = dedup.NewSeenStore(rdb, cfg.Redis.SeenPrefix, cfg.Crawler.DedupeTTL)
	}

	fetcher, err := fetch.NewCollyFetcher(fetch.Config{
		UserAgent: cfg.Crawler.UserAgent,
		ProxyURL:  cfg.Crawler.ProxyURL,
		Timeout:   cfg.Crawler.FetchTimeout,
	})
	if err != nil {
		logger.Fatal("fetcher init failed", zap.Error(err))
	}

	runOnce := func() {
		controller := crawl.New(crawl.Config{
			StartURLs:         cfg.Search.StartURLs,
			Keyword:           cfg.Search.Keyword,
			Location:          cfg.Search.Location,
			PostedFilter:      cfg.Search.PostedFilter,
			ResultsWanted:     cfg.Crawler.ResultsWanted,
			MaxPages:          cfg.Crawler.MaxPages,
			CollectDetails:    cfg.Crawler.CollectDetails,
			Dedupe:            cfg.Crawler.Dedupe,
			ListConcurrency:   cfg.Crawler.Concurrency,
			DetailConcurrency: cfg.Crawler.DetailConcurrency,
			Delay:             cfg.Crawler.RequestDelay,
		}, fetcher, out, seen, logger)

		summary, err := controller.Run(ctx)
		if err != nil && err != context.Canceled {
			logger.Error("harvest run failed", zap.Error(err))
			return
		}
		logger.Info("harvest run complete",
			zap.Int("saved", summary.Saved),
			zap.Int("pages_fetched", summary.PagesFetched))
	}

	if cfg.Schedule == "" {
		runOnce()
		return
	}

	logger.Info("starting scheduled harvests", zap.String("schedule", cfg.Schedule))
	c := cron.New()
	if _, err := c.AddFunc(cfg.Schedule, runOnce); err != nil {
		logger.Fatal("invalid schedule", zap.String("schedule", cfg.Schedule), zap.Error(err))
	}
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
}

func buildSinks(cfg *config.Config, rdb *redis.Client, logger *zap.Logger) (sink.Sink, []func()) {
	var (
		sinks   sink.Multi
		closers []func()
	)
	for _, name := range cfg.Sinks {
		switch name {
		case "postgres":
			pg, err := sink.NewPostgres(cfg.Postgres.ConnectionString, cfg.Postgres.TableName)
			if err != nil {
				logger.Fatal("postgres connection failed", zap.Error(err))
			}
			logger.Info("postgres connected", zap.String("table", cfg.Postgres.TableName))
			sinks = append(sinks, pg)
			closers = append(closers, func() { pg.Close() }) //nolint:errcheck
		case "elasticsearch":
			es, err := sink.NewElasticsearch(cfg.Elasticsearch.Addresses, cfg.Elasticsearch.Index)
			if err != nil {
				logger.Fatal("elasticsearch connection failed", zap.Error(err))
			}
			logger.Info("elasticsearch connected", zap.String("index", cfg.Elasticsearch.Index))
			sinks = append(sinks, es)
		case "redis":
			sinks = append(sinks, queue.NewPublisher(rdb, cfg.Redis.JobQueue))
		case "stdout":
			sinks = append(sinks, sink.NewStdout(os.Stdout))
		default:
			logger.Fatal("unknown sink", zap.String("sink", name))
		}
	}
	return sinks, closers
}

func hasSink(sinks []string, name string) bool {
	for _, s := range sinks {
		if s == name {
			return true
		}
	}
	return false
}

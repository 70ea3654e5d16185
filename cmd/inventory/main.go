package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/flow1h/flow1h-api/internal/catalog"
	"github.com/flow1h/flow1h-api/internal/config"
	"github.com/flow1h/flow1h-api/internal/events"
	"github.com/flow1h/flow1h-api/internal/inventory"
	kafkax "github.com/flow1h/flow1h-api/internal/kafka"
	"github.com/flow1h/flow1h-api/internal/logging"
	"github.com/flow1h/flow1h-api/internal/postgres"
	"github.com/flow1h/flow1h-api/internal/redisx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.With(zap.String("service", cfg.ServiceName+"-inventory"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// one producer serves both stock topics
	prod := kafkax.NewProducer(cfg.KafkaBrokers, 1024, logger)
	prod.Start()

	svc := &inventory.Service{
		Stock:  &catalog.StockRepo{DB: db},
		Dedup:  &redisx.Cache{RDB: rdb},
		Events: &events.Publisher{Sink: prod, Producer: cfg.ServiceName + "-inventory", Log: logger},
		Log:    logger,
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.InventoryGroup, events.TopicCatalogOrderCreated, cfg.InventoryWorkers, logger)
	done := make(chan struct{})
	go func() {
		defer close(done)
		logger.Info("inventory consumer started",
			zap.String("group", cfg.InventoryGroup),
			zap.String("topic", events.TopicCatalogOrderCreated),
			zap.Int("workers", cfg.InventoryWorkers),
		)
		if err := cons.Start(ctx, svc.HandleCatalogOrderCreated); err != nil {
			logger.Error("consumer exit", zap.Error(err))
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	logger.Info("shutting down consumer")
	cancel()
	<-done
	prod.Close()
	prod.WaitClosed()
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flow1h/flow1h-api/internal/appointments"
	"github.com/flow1h/flow1h-api/internal/backend"
	"github.com/flow1h/flow1h-api/internal/bot"
	"github.com/flow1h/flow1h-api/internal/business"
	"github.com/flow1h/flow1h-api/internal/catalog"
	"github.com/flow1h/flow1h-api/internal/config"
	"github.com/flow1h/flow1h-api/internal/events"
	"github.com/flow1h/flow1h-api/internal/httpx"
	kafkax "github.com/flow1h/flow1h-api/internal/kafka"
	"github.com/flow1h/flow1h-api/internal/logging"
	"github.com/flow1h/flow1h-api/internal/orders"
	"github.com/flow1h/flow1h-api/internal/redisx"
	"github.com/flow1h/flow1h-api/internal/whatsapp"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// managed backend: postgres + auth + storage
	be, err := backend.New(ctx, backend.Options{
		URL:         cfg.SupabaseURL,
		ServiceRole: cfg.SupabaseServiceRole,
		PostgresDSN: cfg.PostgresDSN,
	})
	if err != nil {
		logger.Fatal("backend connect", zap.Error(err))
	}
	defer be.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	prod := kafkax.NewProducer(cfg.KafkaBrokers, 1024, logger)
	prod.Start()
	pub := &events.Publisher{Sink: prod, Producer: cfg.ServiceName, Log: logger}

	orderRepo := &orders.Repo{DB: be.DB}
	catalogRepo := &catalog.Repo{DB: be.DB}
	botStore := &bot.CachedStore{
		Store:    &bot.Repo{DB: be.DB},
		Cache:    &redisx.Cache{RDB: rdb},
		TTL:      cfg.BotConfigTTL,
		Redelete: cfg.BotConfigRedelete,
		Log:      logger,
	}
	pipeline := &bot.Pipeline{
		Configs: botStore,
		Orders:  orderRepo,
		Sender:  whatsapp.NewClient(cfg.WhatsApp.GraphURL, cfg.WhatsApp.SendTimeout, logger),
		Events:  pub,
		Log:     logger,
	}

	router := httpx.NewRouter(logger,
		&httpx.AuthHandler{
			Auth:            be.Auth,
			Businesses:      &business.Repo{DB: be.DB},
			DefaultPassword: cfg.DefaultBusinessPassword,
		},
		&httpx.OrdersHandler{Repo: orderRepo, Storage: be.Storage, Events: pub, Bucket: cfg.ReceiptsBucket},
		&httpx.AppointmentsHandler{Repo: &appointments.Repo{DB: be.DB}, Events: pub},
		&httpx.CatalogHandler{Repo: catalogRepo, Stock: &catalog.StockRepo{DB: be.DB}, Events: pub, Log: logger},
		&httpx.BotHandler{Store: botStore, Pipeline: pipeline, VerifyToken: cfg.WhatsApp.VerifyToken, Log: logger},
	)
	if cfg.WhatsApp.VerifyToken == "" {
		logger.Warn("WHATSAPP_VERIFY_TOKEN is empty; webhook verification will always fail")
	}

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		logger.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	prod.Close()      // no more publishes after the server drained
	prod.WaitClosed() // flush
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SzymonUniCode/Order-Statistic-App/internal/config"
	"github.com/SzymonUniCode/Order-Statistic-App/internal/httpx"
	kafkax "github.com/SzymonUniCode/Order-Statistic-App/internal/kafka"
	"github.com/SzymonUniCode/Order-Statistic-App/internal/orders"
	"github.com/SzymonUniCode/Order-Statistic-App/internal/postgres"
	"github.com/SzymonUniCode/Order-Statistic-App/internal/redisx"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	if err := postgres.Migrate(cfg.PostgresDSN); err != nil {
		log.WithError(err).Fatal("migrate")
	}
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.WithError(err).Fatal("db connect")
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, 1024, log)
	prod.Start(ctx)

	// Services & handlers
	store := &postgres.Store{DB: db}
	orderSvc := &orders.OrderService{Store: store, Events: prod, ServiceName: cfg.ServiceName, Log: log}
	stockSvc := &orders.StockService{Store: store, Events: prod, ServiceName: cfg.ServiceName, Log: log}
	catalogSvc := &orders.CatalogService{Store: store, Log: log}

	router := httpx.NewRouter()
	(&httpx.OrdersHandler{Service: orderSvc, Redis: rdb}).Register(router)
	(&httpx.StorageHandler{Service: stockSvc, Redis: rdb}).Register(router)
	(&httpx.ProductsHandler{Service: catalogSvc}).Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("listen")
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // close inbox -> flush & close writer
	prod.WaitClosed() // drain
}

package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/SzymonUniCode/Order-Statistic-App/internal/config"
	kafkax "github.com/SzymonUniCode/Order-Statistic-App/internal/kafka"
	"github.com/SzymonUniCode/Order-Statistic-App/internal/orders"
	"github.com/SzymonUniCode/Order-Statistic-App/internal/redisx"
	"github.com/SzymonUniCode/Order-Statistic-App/internal/stockwatch"
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

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Service
	svc := &stockwatch.Service{
		Redis:       rdb,
		ServiceName: cfg.ServiceName + "-stockwatch",
		Log:         log,
	}

	// Consumer over every published topic
	group := getenv("STOCKWATCH_GROUP", "stockwatch-svc")
	workers := mustAtoi(os.Getenv("STOCKWATCH_WORKERS"), "4")
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, orders.Topics, workers, log)

	go func() {
		log.WithFields(logrus.Fields{"group": group, "workers": workers}).
			Info("stockwatch consumer started")
		if err := cons.Start(ctx, svc.Handle); err != nil {
			log.WithError(err).Warn("consumer exit")
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down consumer...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

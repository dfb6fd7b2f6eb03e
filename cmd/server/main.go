package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"orders/internal/config"
	"orders/internal/events"
	"orders/internal/infrastructure/database"
	"orders/internal/infrastructure/logger"
	"orders/internal/infrastructure/metrics"
	"orders/internal/infrastructure/rabbitmq"
	"orders/internal/order"
	"orders/internal/order/usecase"
	"orders/internal/server"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := database.Open(context.Background(), cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	defer db.Close()
	zapLogger.Info("database connected", zap.String("driver", cfg.Database.Driver))

	var publisher usecase.EventPublisher = events.NopPublisher{}
	if cfg.RabbitMQ.Enabled() {
		amqpPublisher, err := rabbitmq.Dial(cfg.RabbitMQ, zapLogger)
		if err != nil {
			zapLogger.Fatal("connecting to rabbitmq", zap.Error(err))
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
	} else {
		zapLogger.Info("rabbitmq not configured, order events are dropped")
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	orderCtrl := order.NewModule(db, cfg, publisher, m, zapLogger)
	router := server.NewRouter(orderCtrl, m, zapLogger)

	srv := server.New(cfg.Server, router, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	if err := srv.Shutdown(context.Background()); err != nil {
		zapLogger.Error("server shutdown failed", zap.Error(err))
		return
	}

	zapLogger.Info("server stopped gracefully")
}

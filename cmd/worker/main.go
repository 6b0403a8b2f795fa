package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/oceanview/config"
	"github.com/Domenick1991/oceanview/internal/bootstrap"
	"github.com/Domenick1991/oceanview/internal/email"
	"github.com/Domenick1991/oceanview/internal/kafka"
	"github.com/Domenick1991/oceanview/internal/logger"
	"github.com/Domenick1991/oceanview/internal/service/booking"
)

const retryBackoff = 2 * time.Second

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	workerLog := logger.New(cfg.Logging.Level)
	defer workerLog.Close()

	if cfg.Kafka.NotificationsTopic == "" || len(cfg.Kafka.Brokers) == 0 {
		workerLog.Fatal("STARTUP", "kafka.notifications_topic and kafka.brokers are required")
	}
	if cfg.Storage.Driver == "memory" {
		workerLog.Warn("STARTUP", "memory storage is process-local; notifications will not find API bookings")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := bootstrap.OpenStore(ctx, cfg, workerLog)
	if err != nil {
		workerLog.Fatal("STARTUP", err.Error())
	}
	defer store.Close()

	// MarkNotified only; the worker publishes nothing.
	bookings := booking.NewBookingService(store, store, nil, "", booking.WithLogger(workerLog))

	sender := email.NewSender(cfg.SMTP, workerLog)
	notifier := email.NewNotifier(store, bookings, sender, workerLog)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, workerLog)
	defer consumer.Close()

	workerLog.LogKafka("START", cfg.Kafka.NotificationsTopic, "consuming notifications as "+cfg.Kafka.GroupID)
	handle := kafka.Retrying(notifier.Handle, cfg.Worker.NotificationRetries, retryBackoff, workerLog)
	if err := consumer.ConsumeEvents(ctx, handle); err != nil && !errors.Is(err, context.Canceled) {
		workerLog.Fatal("KAFKA", "consumer stopped: "+err.Error())
	}
	workerLog.LogProcess("SHUTDOWN", "worker stopped")
}

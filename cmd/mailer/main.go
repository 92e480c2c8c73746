// Command mailer consumes email jobs from RabbitMQ and delivers them over SMTP.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"adscreen-service/internal/config"
	"adscreen-service/internal/queue"
	"adscreen-service/internal/service/email"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[MAILER] No .env file found, relying on system env vars")
	}

	cfg := config.Load()
	if cfg.RabbitMQURL == "" || !cfg.SMTPConfigured() {
		log.Fatal("RABBITMQ_URL and SMTP_HOST are required")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	sender := email.NewEmailSender(
		cfg.SMTPHost,
		cfg.SMTPPort,
		cfg.SMTPUser,
		cfg.SMTPPass,
		cfg.SMTPFrom,
		cfg.SMTPFromName,
		cfg.SMTPSecure,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := queue.NewConsumer(cfg.RabbitMQURL, sender.SendJob, logger)
	logger.Info("mailer started", zap.String("queue", queue.EmailQueueName))
	if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Fatal("mailer stopped", zap.Error(err))
	}
	logger.Info("mailer stopped")
}

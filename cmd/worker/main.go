package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	mqcontracts "subsidyledger/contracts/mq"
	"subsidyledger/internal/chain"
	"subsidyledger/internal/config"
	"subsidyledger/internal/mailer"
	"subsidyledger/internal/repository"
	"subsidyledger/pkg/db"
	"subsidyledger/pkg/logger"
	"subsidyledger/pkg/metrics"
	"subsidyledger/pkg/mq"
	"subsidyledger/pkg/outbox"
)

// The worker owns everything slow or external: submitting and confirming
// chain transactions, draining the outbox to RabbitMQ and sending OTP mail.
func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting subsidyledger worker...",
		zap.String("db_host", cfg.DB.Host),
		zap.String("mq_url", cfg.MQ.URL),
		zap.String("chain_rpc", cfg.Chain.RPCURL),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	log.Info("Initializing database connection...")
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()
	log.Info("Database connection established successfully")

	// Repositories
	intentRepo := repository.NewIntentRepository(dbConn, log)
	attestationRepo := repository.NewAttestationRepository(dbConn, log)
	disbursementRepo := repository.NewDisbursementRepository(dbConn, log)
	eventRepo := repository.NewEventRepository(dbConn, log)
	outboxRepo := outbox.NewRepository(dbConn)

	// Chain client + intent poller
	log.Info("Connecting to chain RPC...", zap.String("rpc_url", cfg.Chain.RPCURL))
	chainClient, err := chain.NewClient(cfg.Chain, log)
	if err != nil {
		log.Fatal("Failed to init chain client", zap.Error(err))
	}
	defer chainClient.Close()
	log.Info("Chain client ready", zap.String("contract", chainClient.ContractAddress().Hex()))

	poller := chain.NewPoller(
		intentRepo,
		attestationRepo,
		disbursementRepo,
		eventRepo,
		outboxRepo,
		chainClient,
		log,
	)
	go poller.Start(ctx)

	// Outbox dispatcher -> RabbitMQ
	log.Info("Initializing MQ publisher...")
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer publisher.Close()

	dispatcher := outbox.NewDispatcher(outboxRepo, publisher, log).
		WithInterval(1 * time.Second).
		WithBatchSize(100)
	go dispatcher.Start(ctx)

	// OTP mail consumer
	mail := mailer.New(cfg.SMTP, log)

	log.Info("Initializing MQ consumer for otp.requested...",
		zap.String("queue", "otp.requested.q"),
		zap.String("routing_key", "otp.requested"),
	)
	otpConsumer, err := mq.NewConsumer(cfg.MQ.URL, "otp.requested.q", "otp.requested", log)
	if err != nil {
		log.Fatal("Failed to init OTP consumer", zap.Error(err))
	}
	defer otpConsumer.Close()

	otpConsumer.SetHandler(func(ctx context.Context, data json.RawMessage) error {
		start := time.Now()

		var payload mqcontracts.OTPRequestedPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			log.Error("Invalid otp.requested payload", zap.Error(err))
			return err
		}

		if err := mail.SendOTP(ctx, payload.Email, payload.Code); err != nil {
			log.Error("Failed to send OTP mail",
				zap.String("email", payload.Email),
				zap.Error(err),
			)
			return err
		}

		metrics.RecordMQConsumeLatency("otp.requested", "otp.requested.q", time.Since(start))
		return nil
	})

	go func() {
		log.Info("Starting otp.requested consumer...")
		if err := otpConsumer.StartConsuming(); err != nil {
			log.Fatal("OTP consumer failed", zap.Error(err))
		}
	}()
	log.Info("otp.requested consumer started successfully")

	// Health + metrics endpoint
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/readyz", func(c *gin.Context) {
		pingCtx, pingCancel := context.WithTimeout(c, 1*time.Second)
		defer pingCancel()

		if err := dbConn.Ping(pingCtx); err != nil {
			c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}
		if !otpConsumer.IsConnected() {
			c.JSON(500, gin.H{"status": "mq_not_ready"})
			return
		}
		c.JSON(200, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	go func() {
		log.Info("Worker health endpoint listening", zap.String("port", cfg.Server.Port))
		if err := r.Run(":" + cfg.Server.Port); err != nil {
			log.Fatal("Worker health server exited", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down worker...")
	cancel()
	time.Sleep(500 * time.Millisecond)
	log.Info("Worker stopped")
}

package main

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"subsidyledger/internal/config"
	"subsidyledger/internal/handler"
	"subsidyledger/internal/httpserver"
	"subsidyledger/internal/repository"
	"subsidyledger/internal/service/auth"
	"subsidyledger/internal/service/otp"
	"subsidyledger/internal/service/timeline"
	"subsidyledger/internal/service/workflow"
	"subsidyledger/internal/signer"
	"subsidyledger/pkg/db"
	"subsidyledger/pkg/logger"
	"subsidyledger/pkg/redis"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting subsidyledger API server...",
		zap.String("db_host", cfg.DB.Host),
		zap.Int("db_port", cfg.DB.Port),
		zap.String("redis_addr", cfg.Redis.Addr),
		zap.Int64("chain_id", cfg.Chain.ChainID),
	)

	// DB
	log.Info("Initializing database connection...")
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()
	log.Info("Database connection established successfully")

	// Redis (OTP store)
	rdb := redis.NewRedisClient(cfg.Redis)
	defer rdb.Close()

	// Repositories
	programRepo := repository.NewProgramRepository(dbConn, log)
	projectRepo := repository.NewProjectRepository(dbConn, log)
	milestoneRepo := repository.NewMilestoneRepository(dbConn, log)
	attestationRepo := repository.NewAttestationRepository(dbConn, log)
	disbursementRepo := repository.NewDisbursementRepository(dbConn, log)
	eventRepo := repository.NewEventRepository(dbConn, log)
	intentRepo := repository.NewIntentRepository(dbConn, log)

	// Auditor signing key: the API signs attestations locally; all other
	// chain traffic goes through the worker.
	auditorSigner, err := signer.NewLocalSigner(
		cfg.Chain.AuditorKey,
		cfg.Chain.ChainID,
		common.HexToAddress(cfg.Chain.ContractAddress),
	)
	if err != nil {
		log.Fatal("Failed to init auditor signer", zap.Error(err))
	}
	log.Info("Auditor signer ready", zap.String("address", auditorSigner.Address().Hex()))

	// Services
	otpStore := otp.NewRedisStore(rdb)
	authSvc := auth.NewService(
		otpStore,
		dbConn,
		cfg.Auth.StaticUsers,
		cfg.JWT.Secret,
		time.Duration(cfg.Auth.OTPTTLMinutes)*time.Minute,
		log,
	)
	workflowSvc := workflow.NewService(
		dbConn,
		programRepo,
		projectRepo,
		milestoneRepo,
		attestationRepo,
		disbursementRepo,
		eventRepo,
		intentRepo,
		auditorSigner,
		log,
	)
	timelineSvc := timeline.NewService(
		programRepo,
		projectRepo,
		milestoneRepo,
		attestationRepo,
		disbursementRepo,
		eventRepo,
		log,
	)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, log)
	govHandler := handler.NewGovHandler(workflowSvc, log)
	producerHandler := handler.NewProducerHandler(workflowSvc, log)
	auditorHandler := handler.NewAuditorHandler(workflowSvc, log)
	bankHandler := handler.NewBankHandler(workflowSvc, log)
	explorerHandler := handler.NewExplorerHandler(timelineSvc, log)

	router := httpserver.NewRouter(
		authHandler,
		govHandler,
		producerHandler,
		auditorHandler,
		bankHandler,
		explorerHandler,
		cfg.JWT.Secret,
		dbConn,
		log,
	)

	log.Info("API server listening", zap.String("port", cfg.Server.Port))
	if err := router.Run(cfg.Server.Port); err != nil {
		log.Fatal("Server exited", zap.Error(err))
	}
}

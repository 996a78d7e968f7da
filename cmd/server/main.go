package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"shop-kita.backend/internal/config"
	"shop-kita.backend/internal/infrastructure/email"
	"shop-kita.backend/internal/infrastructure/jobs"
	"shop-kita.backend/internal/infrastructure/models"
	"shop-kita.backend/internal/infrastructure/repositories"
	"shop-kita.backend/internal/interfaces/http/handlers"
	"shop-kita.backend/internal/interfaces/http/middleware"
	"shop-kita.backend/internal/usecases"
	"shop-kita.backend/pkg/jwt"
	"shop-kita.backend/pkg/logger"
	"shop-kita.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	newSessionStore = redis.NewSessionStore
	runServer       = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB        = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(context.Background(), "Redis initialized")

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database.URL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Printf("database not available: %v (endpoints will return errors)", err)
	} else {
		if err := db.AutoMigrate(
			&models.Account{},
			&models.PendingRegistration{},
			&models.RefreshToken{},
			&models.VerificationToken{},
		); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		logger.Info(context.Background(), "Database connected and migrated")
	}

	jwtService, err := jwt.NewService(
		cfg.Auth.AccessSecret,
		cfg.Auth.RefreshSecret,
		cfg.Auth.AccessExpiry,
		cfg.Auth.RefreshExpiry,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize jwt service: %w", err)
	}

	accountRepo := repositories.NewAccountRepository(db)
	pendingRepo := repositories.NewPendingRegistrationRepository(db)
	refreshRepo := repositories.NewRefreshTokenRepository(db)
	verificationRepo := repositories.NewVerificationTokenRepository(db)
	uow := repositories.NewUnitOfWork(db)

	sessionStore, err := newSessionStore(cfg.Auth.SessionEncryptionKey)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}

	var sender email.Sender
	if cfg.SMTP.Host != "" {
		sender = email.NewSMTPSender(cfg.SMTP)
	} else {
		log.Println("SMTP_HOST not set, emails are logged instead of delivered")
		sender = email.NewLogSender()
	}

	sessionUsecase := usecases.NewSessionUsecase(refreshRepo, accountRepo, jwtService, cfg.Auth.RefreshRetention)
	authUsecase := usecases.NewAuthUsecase(
		accountRepo,
		sessionUsecase,
		usecases.NewLockoutPolicy(cfg.Auth.LockoutThreshold, cfg.Auth.LockoutDuration),
		cfg.Auth.BcryptCost,
	)
	registrationUsecase := usecases.NewRegistrationUsecase(
		accountRepo, pendingRepo, uow, sender,
		cfg.Auth.FrontendBaseURL, cfg.Auth.VerificationExpiry, cfg.Auth.BcryptCost,
	)
	verificationUsecase := usecases.NewVerificationUsecase(
		accountRepo, verificationRepo, uow, sender,
		cfg.Auth.FrontendBaseURL, cfg.Auth.PasswordResetExpiry, cfg.Auth.VerificationExpiry, cfg.Auth.BcryptCost,
	)

	authHandler := handlers.NewAuthHandler(
		authUsecase, registrationUsecase, verificationUsecase, sessionUsecase,
		sessionStore, cfg.Auth.RefreshExpiry,
	)

	authMiddleware := middleware.AuthMiddleware(jwtService, sessionStore)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	retentionJob := jobs.NewTokenRetentionJob(refreshRepo, cfg.Auth.RefreshRetention)
	go retentionJob.Start(ctx)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerMetricsRoute(r)
	registerAPIV1Routes(r, routeDeps{
		authHandler:    authHandler,
		authMiddleware: authMiddleware,
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")
		retentionJob.Stop()
		cancel()
	}()

	log.Printf("Shop-Kita auth backend starting on port %s", cfg.Server.Port)
	log.Printf("API: http://localhost:%s/api/v1", cfg.Server.Port)
	log.Printf("Health: http://localhost:%s/health", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/essay-auditor-api/internal/auditor"
	"github.com/noah-isme/essay-auditor-api/internal/config"
	"github.com/noah-isme/essay-auditor-api/internal/database"
	"github.com/noah-isme/essay-auditor-api/internal/handler"
	"github.com/noah-isme/essay-auditor-api/internal/inference"
	"github.com/noah-isme/essay-auditor-api/internal/middleware"
	"github.com/noah-isme/essay-auditor-api/internal/repository"
	"github.com/noah-isme/essay-auditor-api/internal/router"
	"github.com/noah-isme/essay-auditor-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := newLogger(cfg)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis disabled; dashboard cache and token revocation are off")
	}

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Drain()
	}

	generator, closeGenerator, err := inference.NewGenerator(context.Background(), cfg, logger)
	if err != nil {
		log.Fatalf("failed to create inference client: %v", err)
	}
	defer closeGenerator()

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	correctionRepo := repository.NewCorrectionRepository(db)

	authService := service.NewAuthService(userRepo, redisClient, validate, service.AuthConfig{
		Secret:   cfg.JWTSecret,
		TokenTTL: cfg.JWTTTL,
	}, logger)
	dashboardService := service.NewDashboardService(correctionRepo, redisClient, cfg.DashboardCacheTTL, logger)
	auditService := service.NewAuditService(service.AuditDependencies{
		Sessions:    authService,
		Grader:      auditor.NewRequester(generator, inference.GenerationConfig(cfg), cfg.AITimeout, logger),
		Corrections: correctionRepo,
		Dashboard:   dashboardService,
		Events:      service.NewCorrectionEventPublisher(natsConn, cfg.EventSubjectBase, logger),
		Rules: auditor.EssayRules{
			MinLines:      cfg.EssayMinLines,
			MinCharacters: cfg.EssayMinCharacters,
			MaxCharacters: cfg.EssayMaxCharacters,
		},
	}, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		// Grading calls can take most of the inference timeout.
		WriteTimeout: cfg.AITimeout + 10*time.Second,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AccessLog: cfg.AppEnv == "development"})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:      handler.NewAuthHandler(authService, validate, logger),
		AuditHandler:     handler.NewAuditHandler(auditService, handler.DefaultMaxEssayUploadBytes, logger),
		DashboardHandler: handler.NewDashboardHandler(dashboardService, logger),
		HealthProbes:     healthProbes(db, redisClient, natsConn),
		Revocations:      authService,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	logger.Info().
		Str("address", cfg.HTTPAddress()).
		Str("ai_provider", generator.Provider()).
		Str("ai_model", generator.Model()).
		Msg("auditor api started")

	waitForShutdown(app)
}

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}

	return zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Str("service", cfg.AppName).
		Logger()
}

func healthProbes(db *gorm.DB, redisClient *redis.Client, natsConn *nats.Conn) map[string]handler.HealthProbe {
	probes := map[string]handler.HealthProbe{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if redisClient != nil {
		probes["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	if natsConn != nil {
		probes["nats"] = func(context.Context) error {
			if !natsConn.IsConnected() {
				return nats.ErrConnectionClosed
			}
			return nil
		}
	}
	return probes
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}

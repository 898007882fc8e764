package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/essay-auditor-api/internal/auditor"
	"github.com/noah-isme/essay-auditor-api/internal/cli"
	"github.com/noah-isme/essay-auditor-api/internal/config"
	"github.com/noah-isme/essay-auditor-api/internal/database"
	"github.com/noah-isme/essay-auditor-api/internal/inference"
	"github.com/noah-isme/essay-auditor-api/internal/repository"
	"github.com/noah-isme/essay-auditor-api/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.WarnLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisClient.Close()
	}

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName+"-cli")
	if err != nil {
		return err
	}
	if natsConn != nil {
		defer natsConn.Drain()
	}

	generator, closeGenerator, err := inference.NewGenerator(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("creating inference client: %w", err)
	}
	defer closeGenerator()

	userRepo := repository.NewUserRepository(db)
	correctionRepo := repository.NewCorrectionRepository(db)

	authService := service.NewAuthService(userRepo, redisClient, validator.New(validator.WithRequiredStructEnabled()), service.AuthConfig{
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

	app := &cli.App{
		Users:     userRepo,
		Auth:      authService,
		Audits:    auditService,
		Dashboard: dashboardService,
		Migrate: func(ctx context.Context) error {
			return database.Migrate(db.WithContext(ctx))
		},
	}

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}

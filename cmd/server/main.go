package main

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/CityQuest-2025/quest-service/internal/cache"
	"github.com/CityQuest-2025/quest-service/internal/config"
	"github.com/CityQuest-2025/quest-service/internal/events"
	"github.com/CityQuest-2025/quest-service/internal/handlers"
	"github.com/CityQuest-2025/quest-service/internal/repositories/postgres"
	"github.com/CityQuest-2025/quest-service/internal/services"
	"github.com/CityQuest-2025/quest-service/internal/storage"
	"github.com/CityQuest-2025/quest-service/internal/utils"
	"github.com/CityQuest-2025/quest-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Exit(1)
	}

	var slogger *slog.Logger
	if cfg.Environment == "production" {
		slogger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
		gin.SetMode(gin.ReleaseMode)
	} else {
		slogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	logger := utils.NewSlogLogger(slogger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("database init failed", "error", err)
		os.Exit(1)
	}
	repo := postgres.NewRepository(db)

	var cacheService cache.CacheService
	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("redis unavailable, leaderboard cache disabled", "error", err)
	} else {
		cacheService = cache.NewRedisCache(redisClient, logger)
		defer redisClient.Close()
	}

	var publisher events.EventPublisher
	kafkaPublisher, err := events.NewKafkaEventPublisher(events.PublisherConfig{
		KafkaBrokers: cfg.KafkaBrokers,
		TopicName:    cfg.EventTopic,
		Logger:       slogger,
	})
	if err != nil {
		logger.Warn("kafka unavailable, events disabled", "error", err)
	} else {
		publisher = kafkaPublisher
		defer kafkaPublisher.Close()
	}

	uploads, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		logger.Error("upload dir init failed", "error", err)
		os.Exit(1)
	}

	validator := utils.NewValidator()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	scoring := services.NewScoringService(repo, cacheService, logger)
	svc := handlers.Services{
		Assignment:  services.NewAssignmentService(repo, publisher, logger, rng),
		Scoring:     scoring,
		Raffle:      services.NewRaffleService(repo, publisher, logger, rng),
		Game:        services.NewGameService(repo, publisher, logger, validator),
		Participant: services.NewParticipantService(repo, uploads, logger),
		Question:    services.NewQuestionService(repo, uploads, logger, rng),
		Submission:  services.NewSubmissionService(repo, uploads, publisher, logger, validator),
		Export:      services.NewExportService(repo, scoring, logger),
		Box:         services.NewBoxService(repo, uploads, logger, validator),
		Admin:       services.NewAdminService(repo, logger),
	}

	if err := svc.Admin.EnsureDefault(context.Background(), cfg.AdminUsername, cfg.AdminPassword); err != nil {
		logger.Error("admin bootstrap failed", "error", err)
		os.Exit(1)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	handlers.NewHandlerManager(svc, uploads, logger).SetupRoutes(router)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}

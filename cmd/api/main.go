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

	"github.com/swipehire/interview-api/internal/config"
	"github.com/swipehire/interview-api/internal/database"
	"github.com/swipehire/interview-api/internal/extractor"
	"github.com/swipehire/interview-api/internal/gateway"
	"github.com/swipehire/interview-api/internal/handler"
	"github.com/swipehire/interview-api/internal/middleware"
	"github.com/swipehire/interview-api/internal/repository"
	"github.com/swipehire/interview-api/internal/router"
	"github.com/swipehire/interview-api/internal/service"
	"github.com/swipehire/interview-api/pkg/archive"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Without a database URL candidate records live in memory, which is
	// enough for a single-node deployment.
	var repo repository.CandidateRepository
	if cfg.DatabaseURL != "" {
		db, err := database.ConnectPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		if err := repository.Migrate(db); err != nil {
			log.Fatalf("failed to migrate database: %v", err)
		}
		repo = repository.NewGormCandidateRepository(db, logger)
	} else {
		repo = repository.NewMemoryCandidateRepository(logger)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
	}

	resumeArchive, err := archive.New(archive.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create archive store: %v", err)
	}

	provider, scorer, err := buildGateways(cfg, logger)
	if err != nil {
		log.Fatalf("failed to build gateways: %v", err)
	}
	events := service.NewLifecyclePublisher(natsConn, logger)
	validate := validator.New(validator.WithRequiredStructEnabled())

	interviewService := service.NewInterviewService(repo, provider, scorer, events, logger)
	defer interviewService.Close()
	reviewerService := service.NewReviewerService(repo, interviewService, redisClient, cfg.ReviewerCacheTTL, logger)

	interviewHandler := handler.NewInterviewHandler(interviewService, extractor.New(logger), resumeArchive, validate, logger)
	reviewerHandler := handler.NewReviewerHandler(reviewerService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		InterviewHandler: interviewHandler,
		ReviewerHandler:  reviewerHandler,
		JWTMiddleware:    middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

// buildGateways selects the question and scoring backends. The HTTP provider
// has no scoring endpoint, so scoring runs on OpenAI when a key is present
// and otherwise falls back to zero scores.
func buildGateways(cfg config.Config, logger zerolog.Logger) (gateway.QuestionProvider, gateway.AnswerScorer, error) {
	var openAI *gateway.OpenAIGateway
	if cfg.OpenAIAPIKey != "" {
		var err error
		openAI, err = gateway.NewOpenAIGateway(gateway.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
			Logger: logger,
		})
		if err != nil {
			return nil, nil, err
		}
	}

	var scorer gateway.AnswerScorer
	if openAI != nil {
		scorer = openAI
	}

	if cfg.AIProvider == "openai" && openAI != nil {
		return openAI, scorer, nil
	}

	provider, err := gateway.NewHTTPQuestionProvider(cfg.QuestionProviderURL, cfg.QuestionFetchTimeout, logger)
	if err != nil {
		return nil, nil, err
	}
	return provider, scorer, nil
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

package main

import (
	"log"
	"os"

	"github.com/hibiken/asynq"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/inkgrade/inkgrade-api/internal/config"
	"github.com/inkgrade/inkgrade-api/internal/database"
	"github.com/inkgrade/inkgrade-api/internal/queue"
	"github.com/inkgrade/inkgrade-api/internal/repository"
	"github.com/inkgrade/inkgrade-api/internal/service"
	"github.com/inkgrade/inkgrade-api/internal/worker"
	"github.com/inkgrade/inkgrade-api/pkg/ai"
	"github.com/inkgrade/inkgrade-api/pkg/ocr"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("app", "worker").Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	recognizer, err := ocr.New(ocr.Config{
		BaseURL: cfg.OCRBaseURL,
		AppID:   cfg.OCRAppID,
		AppKey:  cfg.OCRAppKey,
		Timeout: cfg.OCRTimeout,
		Logger:  logger,
	})
	if err != nil {
		log.Fatalf("failed to create ocr client: %v", err)
	}

	grader, err := ai.NewDeepseekGrader(ai.DeepseekConfig{
		APIKey:      cfg.DeepseekAPIKey,
		BaseURL:     cfg.DeepseekBaseURL,
		Model:       cfg.DeepseekModel,
		MaxTokens:   cfg.DeepseekMaxTokens,
		Temperature: cfg.DeepseekTemperature,
		Logger:      logger,
	})
	if err != nil {
		log.Fatalf("failed to create grader: %v", err)
	}

	submissionRepo := repository.NewSubmissionRepository(db)
	resultRepo := repository.NewResultRepository(db)
	knowledgeRepo := repository.NewKnowledgePointRepository(db)

	knowledgeService := service.NewKnowledgeService(knowledgeRepo, logger)
	events := service.NewNATSPublisher(natsConnect(cfg.NATSURL, logger), cfg.EventSubjectBase, logger)
	pipeline := service.NewPipelineService(submissionRepo, resultRepo, recognizer, grader, knowledgeService, events, logger)

	asynqOpt, err := database.AsynqRedisOpt(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to parse redis url for task queue: %v", err)
	}

	srv := asynq.NewServer(asynqOpt, asynq.Config{
		Concurrency: cfg.WorkerConcurrency,
		Queues: map[string]int{
			queue.QueueDefault: 1,
		},
	})

	processor := worker.NewProcessor(pipeline, logger)

	logger.Info().Int("concurrency", cfg.WorkerConcurrency).Msg("worker starting")

	if err := srv.Run(processor.Handler()); err != nil {
		log.Fatalf("worker stopped: %v", err)
	}
}

// natsConnect dials the event broker. A blank URL or unreachable broker
// disables event publishing rather than blocking grading.
func natsConnect(url string, logger zerolog.Logger) *nats.Conn {
	if url == "" {
		return nil
	}

	conn, err := nats.Connect(url)
	if err != nil {
		logger.Warn().Err(err).Msg("nats unavailable, events disabled")
		return nil
	}

	return conn
}

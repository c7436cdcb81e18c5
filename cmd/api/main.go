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
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/inkgrade/inkgrade-api/internal/config"
	"github.com/inkgrade/inkgrade-api/internal/database"
	"github.com/inkgrade/inkgrade-api/internal/middleware"
	"github.com/inkgrade/inkgrade-api/internal/models"
	"github.com/inkgrade/inkgrade-api/internal/queue"
	"github.com/inkgrade/inkgrade-api/internal/repository"
	"github.com/inkgrade/inkgrade-api/internal/router"
	"github.com/inkgrade/inkgrade-api/internal/service"
	cloud "github.com/inkgrade/inkgrade-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Classroom{},
		&models.ClassroomMember{},
		&models.Assignment{},
		&models.FileUpload{},
		&models.Submission{},
		&models.OCRResult{},
		&models.GradingResult{},
		&models.KnowledgePoint{},
		&models.ErrorAnalysis{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	asynqOpt, err := database.AsynqRedisOpt(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to parse redis url for task queue: %v", err)
	}
	asynqClient := asynq.NewClient(asynqOpt)
	defer asynqClient.Close()

	storage, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	uploadRepo := repository.NewUploadRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	resultRepo := repository.NewResultRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	classroomRepo := repository.NewClassroomRepository(db)
	knowledgeRepo := repository.NewKnowledgePointRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	dispatcher := queue.NewEnqueuer(asynqClient)

	uploadService := service.NewUploadService(uploadRepo, storage, cfg.UploadMaxSizeMB, logger)
	submissionService := service.NewSubmissionService(submissionRepo, uploadRepo, assignmentRepo, resultRepo, dispatcher, validate, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, classroomRepo, validate, logger)
	classroomService := service.NewClassroomService(classroomRepo, validate, logger)
	knowledgeService := service.NewKnowledgeService(knowledgeRepo, logger)
	dashboardService := service.NewDashboardService(analyticsRepo, redisClient, cfg.DashboardCacheTTL, logger)
	reviewService := service.NewReviewService(analyticsRepo, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    (cfg.UploadMaxSizeMB + 1) * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Setup(app, router.Dependencies{
		DB:          db,
		Cache:       redisClient,
		JWTSecret:   cfg.JWTSecret,
		Uploads:     uploadService,
		Submissions: submissionService,
		Assignments: assignmentService,
		Classrooms:  classroomService,
		Knowledge:   knowledgeService,
		Dashboard:   dashboardService,
		Reviews:     reviewService,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	logger.Info().Str("addr", cfg.HTTPAddress()).Msg("api listening")

	waitForShutdown(app)
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

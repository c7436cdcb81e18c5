package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/inkgrade/inkgrade-api/internal/handler"
	"github.com/inkgrade/inkgrade-api/internal/middleware"
	"github.com/inkgrade/inkgrade-api/internal/models"
	"github.com/inkgrade/inkgrade-api/internal/observability"
	"github.com/inkgrade/inkgrade-api/internal/service"
)

// Dependencies carries everything the route tree needs. Construction happens
// in main; the router only wires.
type Dependencies struct {
	DB          *gorm.DB
	Cache       *redis.Client
	JWTSecret   string
	Uploads     service.UploadService
	Submissions service.SubmissionService
	Assignments service.AssignmentService
	Classrooms  service.ClassroomService
	Knowledge   service.KnowledgeService
	Dashboard   service.DashboardService
	Reviews     service.ReviewService
}

// Setup mounts all routes on the app.
func Setup(app *fiber.App, deps Dependencies) {
	handler.NewHealthHandler(deps.DB, deps.Cache).Register(app)
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1")
	api.Use(middleware.JWTProtected(deps.JWTSecret))

	uploadHandler := handler.NewUploadHandler(deps.Uploads)
	submissionHandler := handler.NewSubmissionHandler(deps.Submissions)
	assignmentHandler := handler.NewAssignmentHandler(deps.Assignments)
	classroomHandler := handler.NewClassroomHandler(deps.Classrooms)

	// Submission creation and reprocessing trigger OCR and LLM calls
	// downstream, so those two routes share a per-user rate limit. The
	// limiter and the teacher role guard are attached per route; mounting
	// them on the /api/v1 group would run them as prefix middleware for
	// every request.
	submissionLimit := middleware.RateLimit("submission_create", 10, time.Minute)
	teacherOnly := middleware.RequireRole(models.RoleTeacher)

	uploadHandler.Register(api)
	submissionHandler.Register(api, submissionLimit)
	assignmentHandler.Register(api)
	classroomHandler.Register(api)
	handler.NewKnowledgePointHandler(deps.Knowledge).Register(api)
	handler.NewDashboardHandler(deps.Dashboard).Register(api)
	handler.NewReviewHandler(deps.Reviews).Register(api)

	assignmentHandler.RegisterTeacher(api, teacherOnly)
	classroomHandler.RegisterTeacher(api, teacherOnly)
}

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
	"github.com/rs/zerolog"

	"github.com/noah-isme/edu-admin-api/internal/config"
	"github.com/noah-isme/edu-admin-api/internal/database"
	"github.com/noah-isme/edu-admin-api/internal/handler"
	"github.com/noah-isme/edu-admin-api/internal/middleware"
	"github.com/noah-isme/edu-admin-api/internal/repository"
	"github.com/noah-isme/edu-admin-api/internal/router"
	"github.com/noah-isme/edu-admin-api/internal/service"
	cloud "github.com/noah-isme/edu-admin-api/pkg/cloudinary"
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

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	if cfg.SeedDemoData {
		if err := database.SeedDemoData(db, cfg.BcryptCost, logger); err != nil {
			log.Fatalf("failed to seed demo data: %v", err)
		}
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Close()
	}

	var uploader service.FileUploader
	if cfg.CloudinaryCloudName != "" {
		cloudSvc, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
		uploader = cloudSvc
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	institutionRepo := repository.NewInstitutionRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	customRoleRepo := repository.NewCustomRoleRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	classRepo := repository.NewClassRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	auditService := service.NewAuditService(db, auditRepo, natsConn, cfg.AuditSubject, logger)
	authService := service.NewAuthService(profileRepo, teacherRepo, redisClient, cfg.ActorCacheTTL, cfg.JWTSecret, cfg.TokenTTL, logger)
	institutionService := service.NewInstitutionService(db, institutionRepo, auditService, validate, logger)
	profileService := service.NewProfileService(db, profileRepo, auditService, uploader, cfg.BcryptCost, validate, logger)
	roleService := service.NewRoleService(db, profileRepo, auditService, authService, validate, logger)
	customRoleService := service.NewCustomRoleService(db, customRoleRepo, auditService, validate, logger)
	teacherService := service.NewTeacherService(db, teacherRepo, institutionRepo, auditService, validate, logger)
	studentService := service.NewStudentService(db, studentRepo, institutionRepo, auditService, validate, logger)
	classService := service.NewClassService(db, classRepo, teacherRepo, institutionRepo, auditService, validate, logger)
	assignmentService := service.NewAssignmentService(db, assignmentRepo, classRepo, auditService, validate, logger)
	dashboardService := service.NewDashboardService(statsRepo, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.AllowOrigins,
	})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:        handler.NewAuthHandler(authService, validate, logger),
		InstitutionHandler: handler.NewInstitutionHandler(institutionService, logger),
		ProfileHandler:     handler.NewProfileHandler(profileService, roleService, logger),
		CustomRoleHandler:  handler.NewCustomRoleHandler(customRoleService, logger),
		TeacherHandler:     handler.NewTeacherHandler(teacherService, logger),
		StudentHandler:     handler.NewStudentHandler(studentService, logger),
		ClassHandler:       handler.NewClassHandler(classService, logger),
		AssignmentHandler:  handler.NewAssignmentHandler(assignmentService, logger),
		AuditHandler:       handler.NewAuditHandler(auditService, logger),
		DashboardHandler:   handler.NewDashboardHandler(dashboardService, logger),
		Sessions:           authService,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

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

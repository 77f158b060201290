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
	"github.com/rs/zerolog"

	"github.com/techversity/crm-api/internal/config"
	"github.com/techversity/crm-api/internal/database"
	"github.com/techversity/crm-api/internal/handler"
	"github.com/techversity/crm-api/internal/mailer"
	"github.com/techversity/crm-api/internal/middleware"
	"github.com/techversity/crm-api/internal/models"
	"github.com/techversity/crm-api/internal/repository"
	"github.com/techversity/crm-api/internal/router"
	"github.com/techversity/crm-api/internal/scheduler"
	"github.com/techversity/crm-api/internal/service"
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

	if err := db.AutoMigrate(&models.StudentEnquiry{}, &models.Course{}, &models.User{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, dashboard caching and redis events disabled")
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, nats events disabled")
			natsConn = nil
		} else {
			defer natsConn.Drain()
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	mail := mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPSender, cfg.SMTPPassword, logger)

	enquiryRepo := repository.NewEnquiryRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	userRepo := repository.NewUserRepository(db)

	events := service.NewEventPublisher(redisClient, natsConn, "crm", logger)

	enquiryService := service.NewEnquiryService(enquiryRepo, validate, events, logger)
	courseService := service.NewCourseService(courseRepo, validate, logger)
	authService := service.NewAuthService(userRepo, mail, validate, cfg.JWTSecret, logger)
	dashboardService := service.NewDashboardService(enquiryRepo, redisClient, cfg.DashboardCacheTTL, logger)
	reminderService := service.NewReminderService(enquiryRepo, userRepo, mail, events, logger)

	reminderScheduler := scheduler.New(reminderService, cfg.ReminderCronSpec, logger)
	if err := reminderScheduler.Start(); err != nil {
		log.Fatalf("failed to start reminder scheduler: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		EnquiryHandler:   handler.NewEnquiryHandler(enquiryService, logger),
		CourseHandler:    handler.NewCourseHandler(courseService, logger),
		UserHandler:      handler.NewUserHandler(authService, logger),
		DashboardHandler: handler.NewDashboardHandler(dashboardService, logger),
		JWTMiddleware:    middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, reminderScheduler)
}

func waitForShutdown(app *fiber.App, reminderScheduler *scheduler.Scheduler) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reminderScheduler.Stop(ctx)

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}

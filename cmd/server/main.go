package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/gofiber/contrib/otelfiber/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/jackc/pgx/v5/stdlib"

	"tutoring-backend/internal/api"
	"tutoring-backend/internal/events"
	"tutoring-backend/internal/media"
	"tutoring-backend/internal/repository"
	"tutoring-backend/internal/service"
	"tutoring-backend/internal/tracing"
	"tutoring-backend/internal/worker"
	_ "tutoring-backend/migrations"
)

func main() {
	if err := godotenv.Load(".env.dev"); err != nil {
		fmt.Println("No .env.dev file found, reading from environment variables provided by Docker")
	}

	api.SetupGlobalHandler("tutoring-backend")

	ctx := context.Background()

	shutdownTracer, err := tracing.InitTracerProvider(ctx, "tutoring-backend")
	if err != nil {
		log.Fatalf("Failed to initialize OpenTelemetry: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("Error shutting down tracer provider: %v", err)
		}
	}()

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		handleMigrations()
		return
	}

	db := connectDB()
	defer db.Close()

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}
	eventPublisher, err := events.NewNatsPublisher(natsURL)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	log.Println("Successfully connected to NATS.")

	storage, err := media.NewS3Storage(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize S3 storage: %v", err)
	}

	studentRepo := repository.NewPostgresStudentRepository(db)
	teacherRepo := repository.NewPostgresTeacherRepository(db)
	subjectRepo := repository.NewPostgresSubjectRepository(db)
	classRepo := repository.NewPostgresClassRepository(db)
	slotRepo := repository.NewPostgresSlotRepository(db)
	bookingRepo := repository.NewPostgresBookingRepository(db)
	scheduleRepo := repository.NewPostgresScheduleRepository(db)
	sessionRepo := repository.NewPostgresSessionRepository(db)
	roomRepo := repository.NewPostgresRoomRepository(db)
	feeRepo := repository.NewPostgresFeeRepository(db)
	paymentRepo := repository.NewPostgresPaymentRepository(db)
	notificationRepo := repository.NewPostgresNotificationRepository(db)

	authService := service.NewAuthService(studentRepo, teacherRepo)
	directoryService := service.NewDirectoryService(studentRepo, teacherRepo, subjectRepo, authService)
	enrollmentService := service.NewEnrollmentService(db, classRepo, subjectRepo, teacherRepo)
	bookingService := service.NewBookingService(db, slotRepo, bookingRepo, sessionRepo, roomRepo, studentRepo, classRepo, eventPublisher)
	sessionService := service.NewSessionService(db, sessionRepo, scheduleRepo, classRepo, teacherRepo, bookingRepo, roomRepo, eventPublisher)
	payoutService := service.NewPayoutService(db, feeRepo, paymentRepo, sessionRepo, eventPublisher)

	if _, err := events.NewNotificationSubscriber(natsURL, notificationRepo); err != nil {
		log.Printf("WARNING: Failed to start notification subscriber: %v", err)
		// Continue running even if subscriber fails, NATS may not be ready
	}

	authHandler := api.NewAuthHandler(authService)
	directoryHandler := api.NewDirectoryHandler(directoryService)
	classHandler := api.NewClassHandler(enrollmentService)
	bookingHandler := api.NewBookingHandler(bookingService)
	sessionHandler := api.NewSessionHandler(sessionService, storage)
	payoutHandler := api.NewPayoutHandler(payoutService)
	notificationHandler := api.NewNotificationHandler(notificationRepo)

	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	go worker.NewScheduler(sessionService, slotRepo).Run(workerCtx)

	app := fiber.New()
	app.Use(otelfiber.Middleware())
	app.Use(api.PrometheusMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": "tutoring-backend"})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api.SetupRoutes(app, authHandler, directoryHandler, classHandler, bookingHandler, sessionHandler, payoutHandler, notificationHandler)

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8001"
	}

	log.Printf("Listening tutoring-backend on port %s", port)
	log.Fatal(app.Listen(":" + port))
}

func connectDB() *sqlx.DB {
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbName := os.Getenv("DB_NAME")

	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbUser, dbPassword, dbHost, dbPort, dbName,
	)

	db, err := sqlx.Connect("pgx", dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Successfully connected to the database.")
	return db
}

func handleMigrations() {
	fmt.Println("Running database migrations...")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbName := os.Getenv("DB_NAME")

	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbUser, dbPassword, dbHost, dbPort, dbName,
	)

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		log.Fatalf("failed to connect to database for migration: %v", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("failed to set goose dialect: %v", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		log.Fatalf("goose: failed to run migrations: %v", err)
	}

	fmt.Println("Migrations applied successfully!")
}

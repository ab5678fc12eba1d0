package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"serenity/practice-app/internal/api"
	"serenity/practice-app/internal/config"
	"serenity/practice-app/internal/repository/mongo"
	"serenity/practice-app/internal/schedule"
	"serenity/practice-app/internal/service"
	"serenity/practice-app/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("Starting Practice App Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	log.Println("Ensuring database indexes...")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureTherapistIndexes(ctx, appDB.Collection("therapists"))
		mongo.EnsurePlanIndexes(ctx, appDB.Collection("treatment_plans"))
		mongo.EnsureClientIndexes(ctx, appDB.Collection("clients"))
		mongo.EnsureAssignmentIndexes(ctx, appDB.Collection("plan_assignments"))
		mongo.EnsureProgressIndexes(ctx, appDB.Collection("progress_records"))
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Report Archive ---
	log.Println("Initializing report archive...")
	reportArchive, err := storage.NewS3Archive(cfg.S3)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 report archive: %v", err)
	}

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	therapistRepo := mongo.NewMongoTherapistRepository(appDB)
	planRepo := mongo.NewMongoPlanRepository(appDB)
	clientRepo := mongo.NewMongoClientRepository(appDB)
	assignmentRepo := mongo.NewMongoAssignmentRepository(appDB)
	progressRepo := mongo.NewMongoProgressRepository(appDB)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	authService := service.NewAuthService(therapistRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	planService := service.NewPlanService(planRepo)
	clientService := service.NewClientService(clientRepo)
	bulkService := service.NewBulkAssignmentService(planRepo, clientRepo, assignmentRepo, schedule.NewGenerator())
	assignmentService := service.NewAssignmentService(assignmentRepo, planRepo, clientRepo)
	progressService := service.NewProgressService(progressRepo, assignmentRepo, planRepo, reportArchive)

	// --- Initialize Gin Engine ---
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, cfg.JWT.Secret,
		authService, planService, clientService, bulkService, assignmentService, progressService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}

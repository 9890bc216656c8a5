package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/kiilove/setflow-sub002/assets"
	"github.com/kiilove/setflow-sub002/config"
	"github.com/kiilove/setflow-sub002/database"
	"github.com/kiilove/setflow-sub002/handlers"
	"github.com/kiilove/setflow-sub002/middleware"
	"github.com/kiilove/setflow-sub002/routes"
	"github.com/kiilove/setflow-sub002/storage"
	"github.com/kiilove/setflow-sub002/store"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading it")
	}

	config.LoadConfig()

	// Database connection
	if err := database.Connect(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	docStore := store.NewMongoStore(database.Client, config.DatabaseName)

	// Blob storage: S3 in production, in-process fallback for local dev
	var blobs storage.Storage
	if config.S3Bucket != "" {
		s3Store, err := storage.NewS3Storage(storage.S3Config{
			Endpoint:  config.S3Endpoint,
			Region:    config.S3Region,
			Bucket:    config.S3Bucket,
			AccessKey: config.S3AccessKey,
			SecretKey: config.S3SecretKey,
			PathStyle: config.S3PathStyle,
			BaseURL:   config.S3BaseURL,
		})
		if err != nil {
			log.Fatalf("Failed to initialize blob storage: %v", err)
		}
		blobs = s3Store
	} else {
		log.Println("S3_BUCKET not set, using in-memory blob storage (local development only)")
		blobs = storage.NewMemoryStorage()
	}

	assetService := assets.NewService(docStore, blobs)
	handlers.Init(assetService, docStore)
	middleware.Init(docStore)

	// Router setup
	router := mux.NewRouter()
	routes.RegisterRoutes(router)

	// Global middlewares (order matters!)
	router.Use(middleware.LoggingMiddleware)
	router.Use(middleware.RecoveryMiddleware)
	router.Use(middleware.CorsMiddleware)

	// HTTP server configuration
	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Setflow backend running on http://localhost:%s", config.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	database.Disconnect()
	log.Println("Server stopped gracefully")
}

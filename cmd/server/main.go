package main

import (
	"fmt"
	"log"
	"os"

	"ai-content-replacer-pro/backend/internal/apigateway"
	"ai-content-replacer-pro/backend/internal/auth"
	"ai-content-replacer-pro/backend/internal/configmanagement"
	"ai-content-replacer-pro/backend/internal/contentprocessing"
	"ai-content-replacer-pro/backend/internal/contentstore"
	"ai-content-replacer-pro/backend/internal/datastore"
	"ai-content-replacer-pro/backend/internal/jobmanagement"
	"ai-content-replacer-pro/backend/internal/orchestrator"
	"ai-content-replacer-pro/backend/internal/quota"
	"ai-content-replacer-pro/backend/internal/ratelimit"
	"ai-content-replacer-pro/backend/internal/security"
)

func main() {
	// Load configurations at startup
	auth.LoadAdminCredentials()
	security.LoadEncryptionKey()

	// Initialize DB connection from environment variables
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSSLMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		log.Println("WARNING: DB_PASSWORD environment variable not set.")
	}
	if dbName == "" {
		dbName = "ai_content_replacer_db"
	}
	if dbSSLMode == "" {
		dbSSLMode = "disable"
	}

	dataSourceName := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		dbHost, dbPort, dbUser, dbPassword, dbName, dbSSLMode)

	if err := datastore.InitDB(dataSourceName); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer datastore.DB.Close()

	// Content backups are optional; the batch processor runs without them.
	var backups contentprocessing.Backupper
	if os.Getenv("MINIO_ENDPOINT") != "" {
		if err := contentstore.InitBackupStore(); err != nil {
			log.Printf("WARNING: content backup store unavailable, continuing without backups: %v", err)
		} else {
			store, err := contentstore.GetGlobalBackupStore()
			if err != nil {
				log.Fatalf("Failed to get backup store after initialization: %v", err)
			}
			backups = store
		}
	} else {
		log.Println("MINIO_ENDPOINT not set; content backups disabled.")
	}

	// Wire the orchestration engine and its collaborators
	tracker := quota.NewTracker()
	limiter := ratelimit.New()
	engine := orchestrator.NewEngine(tracker, limiter)
	processor := contentprocessing.NewProcessor(engine, backups)

	configmanagement.InitHandlers(engine)
	jobmanagement.InitHandlers(engine, processor, tracker)

	// Setup router
	router := apigateway.SetupRouter()

	// Start server
	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}
	log.Printf("Starting server on :%s", serverPort)
	if err := router.Run(":" + serverPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

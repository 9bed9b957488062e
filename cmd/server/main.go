package main

import (
	"context"
	"log"

	"firebase.google.com/go/v4/auth"
	"github.com/kamruz-zzaman/applify-backend/internal/router"
	"github.com/kamruz-zzaman/applify-backend/pkg/config"
	"github.com/kamruz-zzaman/applify-backend/pkg/firebase"
	"github.com/kamruz-zzaman/applify-backend/pkg/response"
	"github.com/kamruz-zzaman/applify-backend/pkg/upload"
	"github.com/kamruz-zzaman/applify-backend/validators"
	"github.com/labstack/echo/v4"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// Firebase is optional: without credentials the social-login and media
	// upload endpoints answer 503 and everything else still works.
	var authClient *auth.Client
	var uploader *upload.Uploader
	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err := firebase.InitFirebase(context.Background(), cfg.FirebaseCredentialsPath, cfg.StorageBucket)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}
		authClient = firebaseApp.AuthClient

		if cfg.StorageBucket != "" {
			bucket, err := firebaseApp.Storage.Bucket(cfg.StorageBucket)
			if err != nil {
				log.Fatalf("Failed to open storage bucket %s: %v", cfg.StorageBucket, err)
			}
			uploader = upload.NewUploader(bucket, cfg.StorageBucket)
		}
	} else {
		log.Println("FIREBASE_CREDENTIALS_PATH not set; social login and media upload disabled.")
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = response.HTTPErrorHandler

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, cfg, db.Postgres, db.Mongo, authClient, uploader)

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}

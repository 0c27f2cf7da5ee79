package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/kalimapp/kalima-backend/internal/config"
	"github.com/kalimapp/kalima-backend/internal/database"
	"github.com/kalimapp/kalima-backend/internal/handlers"
	"github.com/kalimapp/kalima-backend/internal/middleware"
	"github.com/kalimapp/kalima-backend/internal/routes"
	"github.com/kalimapp/kalima-backend/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	log.Printf("Connecting to PostgreSQL...")
	if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
		log.Fatal("Failed to connect to PostgreSQL:", err)
	}
	defer database.DisconnectPostgres()

	log.Printf("Connecting to Redis...")
	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer database.DisconnectRedis()

	log.Printf("Connecting to MongoDB...")
	if err := database.Connect(cfg.MongoURI); err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer database.Disconnect()

	if err := services.EnsureTutorIndexes(context.Background()); err != nil {
		log.Printf("⚠️  WARNING: failed to ensure MongoDB tutor indexes: %v", err)
	} else {
		log.Println("✅ MongoDB tutor indexes ensured")
	}

	// Prune the raw violation log hourly; blocked IPs are kept.
	services.StartViolationCleanup(1, 6)
	log.Println("✅ Violation cleanup service started")

	tutorService := services.NewTutorService(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	if tutorService.Enabled() {
		log.Println("✅ AI tutor service initialized")
	} else {
		log.Println("⚠️  WARNING: OPENAI_API_KEY not set. Tutor replies will use the fallback message.")
	}

	subscriptionService := services.NewSubscriptionService(cfg.RevenueCatAPIKey)
	if cfg.RevenueCatAPIKey == "" {
		log.Println("⚠️  WARNING: REVENUECAT_API_KEY not set. Subscription sync will fail.")
	}

	var cloudinaryService *services.CloudinaryService
	if cfg.CloudinaryName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		svc, err := services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			log.Printf("Warning: Failed to initialize Cloudinary: %v", err)
		} else {
			cloudinaryService = svc
			log.Println("✅ Cloudinary service initialized")
		}
	} else {
		log.Println("Warning: Cloudinary credentials not found. Avatar uploads will not be available")
	}

	if cfg.AdminToken == "" {
		log.Println("⚠️  WARNING: ADMIN_TOKEN not set. Admin endpoints are disabled.")
	}

	r := chi.NewRouter()

	r.Use(middleware.CORS(cfg.AllowedOrigins))

	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity() {
			r.Use(mw)
		}
	} else {
		r.Use(middleware.SecurityHeaders)
	}
	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.TutorRateLimit)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	routes.SetupRoutes(r, routes.Deps{
		Tutor:         &handlers.Tutor{Service: tutorService},
		Subscriptions: &handlers.Subscriptions{Service: subscriptionService},
		Uploads:       &handlers.Uploads{Service: cloudinaryService},
		Admin:         &handlers.Admin{Token: cfg.AdminToken},
	})

	log.Printf("🚀 Server starting on port %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}

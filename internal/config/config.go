package config

import (
	"os"
	"strings"
)

type Config struct {
	PostgresURI         string
	RedisURI            string
	MongoURI            string
	Port                string
	Environment         string   // ENV: production, development, etc.
	AllowedOrigins      []string // CORS: from ALLOWED_ORIGINS, comma-separated
	AdminToken          string   // Shared secret for /api/admin endpoints
	OpenAIAPIKey        string   // AI tutor (chat completions)
	OpenAIModel         string
	RevenueCatAPIKey    string // Subscription entitlement sync
	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		// Mobile clients don't send an Origin header; the default only
		// matters for the local web dashboard.
		allowedOrigins = []string{"http://localhost:3000"}
	}

	return &Config{
		PostgresURI:         getEnv("POSTGRES_URI", "postgres://localhost:5432/kalima?sslmode=disable"),
		RedisURI:            getEnv("REDIS_URI", "redis://localhost:6379/0"),
		MongoURI:            getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017/kalima")),
		Port:                getEnv("PORT", "8080"),
		Environment:         env,
		AllowedOrigins:      allowedOrigins,
		AdminToken:          getEnv("ADMIN_TOKEN", ""),
		OpenAIAPIKey:        getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:         getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		RevenueCatAPIKey:    getEnv("REVENUECAT_API_KEY", ""),
		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
	}
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

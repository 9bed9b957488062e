package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config carries every externally configurable knob. It is built once in main
// and passed down explicitly; nothing reads environment variables at use
// sites.
type Config struct {
	Port                    string
	Env                     string
	JWTSecret               string
	PostgresURL             string
	MongoURI                string
	MongoDatabase           string
	FirebaseCredentialsPath string
	StorageBucket           string
	AuthRateLimit           float64
	AuthRateBurst           int
}

// Load reads the environment (and a .env file when present) into a Config.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		JWTSecret:               getEnv("JWT_SECRET", "supersecretjwtkey"),
		PostgresURL:             getEnv("POSTGRES_URL", "host=localhost user=postgres password=postgres dbname=applify port=5432 sslmode=disable"),
		MongoURI:                getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:           getEnv("MONGO_DB", "applify"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		StorageBucket:           getEnv("FIREBASE_STORAGE_BUCKET", ""),
		AuthRateLimit:           getEnvFloat("AUTH_RATE_LIMIT", 5),
		AuthRateBurst:           getEnvInt("AUTH_RATE_BURST", 10),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("Invalid int for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Printf("Invalid float for %s, using default %g", key, defaultValue)
	}
	return defaultValue
}

package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddress string
	JWTSecret     string
	JWTExpiration time.Duration

	// DataDir backs the JSON file store. When MongoURI is set the Mongo
	// store is used instead and DataDir is ignored.
	DataDir  string
	MongoURI string
	MongoDB  string

	// RedisAddr enables the leaderboard rank-snapshot cache. Empty means
	// trend reporting degrades to "same".
	RedisAddr     string
	RedisPassword string

	ClassifierEndpoint string
	ClassifierAPIKey   string
	SafeSearchEnabled  bool

	AdminEmail    string
	AdminPassword string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	return &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		JWTSecret:     getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTExpiration: 24 * time.Hour,

		DataDir:  getEnv("DATA_DIR", "./data"),
		MongoURI: getEnv("MONGO_URI", ""),
		MongoDB:  getEnv("MONGO_DB", "ecoclean"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		ClassifierEndpoint: getEnv("CLASSIFIER_ENDPOINT", ""),
		ClassifierAPIKey:   getEnv("CLASSIFIER_API_KEY", ""),
		SafeSearchEnabled:  getEnv("SAFESEARCH_ENABLED", "false") == "true",

		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@ecoclean.app"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "change-me"),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

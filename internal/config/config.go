package config

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	// Server configuration
	ServerPort  string
	Environment string
	StaticDir   string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis configuration
	RedisAddress string
	CacheTTL     time.Duration

	// Session token configuration
	JWTSecret  string
	SessionTTL time.Duration

	// NATS server for page events, empty disables publishing
	NATSURL string

	WorkerPoolSize int

	LogLevel  string
	LogFormat string

	FrontendAddress string
}

// Global application configuration
var AppConfig Config

// LoadConfig loads configuration from the given .env file (if any) and the
// environment.
func LoadConfig(envPath string) {
	if envPath == "" {
		envPath = findEnvFile()
	}

	// Load .env file if it exists
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			log.Warn().Err(err).Str("path", envPath).Msg("error loading .env file")
		}
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = generateRandomSecret(32)
		log.Warn().Msg("JWT_SECRET not set, generated a random secret; sessions will not survive a restart")
	}

	AppConfig = Config{
		ServerPort:      getEnv("PORT", "3001"),
		Environment:     getEnv("ENV", "development"),
		StaticDir:       getEnv("STATIC_DIR", "public"),
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBPort:          getEnv("DB_PORT", "5432"),
		DBUser:          getEnv("DB_USER", "postgres"),
		DBPassword:      getEnv("DB_PASSWORD", "postgres"),
		DBName:          getEnv("DB_NAME", "cmsmall"),
		RedisAddress:    getEnv("REDIS_ADDRESS", "localhost:6379"),
		CacheTTL:        getEnvDuration("CACHE_TTL", 10*time.Minute),
		JWTSecret:       jwtSecret,
		SessionTTL:      getEnvDuration("SESSION_TTL", 24*time.Hour),
		NATSURL:         getEnv("NATS_URL", ""),
		WorkerPoolSize:  getEnvInt("WORKER_POOL_SIZE", 4),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
		FrontendAddress: getEnv("FRONTEND_ADDRESS", "http://localhost:5173"),
	}
}

// findEnvFile looks for .env in the working directory and up to two parents.
func findEnvFile() string {
	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		envPath = filepath.Join("..", ".env")
		if _, err := os.Stat(envPath); os.IsNotExist(err) {
			envPath = filepath.Join("..", "..", ".env")
		}
	}
	return envPath
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func generateRandomSecret(length int) string {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		log.Fatal().Err(err).Msg("cannot generate random secret")
	}
	return hex.EncodeToString(buf)
}

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/Kmaheshkanna2005/resource-management/pkg/database"
	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBLogLevel        string
	DBConnectAttempts int

	// RabbitURL left empty disables publishing and the calendar consumer.
	RabbitURL string

	// RateLimitRPS of 0 disables the request rate limiter.
	RateLimitRPS float64

	// TraceOutput is "stdout", a file path, or empty to disable tracing.
	TraceOutput string

	SeedFile string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[Config] could not read .env: %v", err)
	}

	return &Config{
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		DBHost:       getEnv("DB_HOST", "localhost"),
		DBPort:       getEnv("DB_PORT", "5432"),
		DBUser:       getEnv("DB_USER", "postgres"),
		DBPassword:   getEnv("DB_PASSWORD", "postgres"),
		DBName:       getEnv("DB_NAME", "scheduler_db"),
		DBSSLMode:    getEnv("DB_SSLMODE", "disable"),

		DBMaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 10),
		DBConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		DBLogLevel:        getEnv("DB_LOG_LEVEL", "warn"),
		DBConnectAttempts: getEnvInt("DB_CONNECT_ATTEMPTS", 5),

		RabbitURL:    getEnv("RABBITMQ_URL", ""),
		RateLimitRPS: getEnvFloat("RATE_LIMIT_RPS", 0),
		TraceOutput:  getEnv("TRACE_OUTPUT", ""),
		SeedFile:     getEnv("SEED_FILE", ""),
	}
}

// Database returns the pool settings for database.Connect.
func (c *Config) Database() database.Options {
	return database.Options{
		DSN:             c.DSN(),
		MaxOpenConns:    c.DBMaxOpenConns,
		MaxIdleConns:    c.DBMaxIdleConns,
		ConnMaxLifetime: c.DBConnMaxLifetime,
		LogLevel:        c.DBLogLevel,
		ConnectAttempts: c.DBConnectAttempts,
	}
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[Config] invalid %s=%q, using %v", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[Config] invalid %s=%q, using %v", key, v, fallback)
		return fallback
	}
	return d
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("[Config] invalid %s=%q, using %v", key, v, fallback)
		return fallback
	}
	return f
}

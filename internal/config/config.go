package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database (optional; empty disables shot and result records)
	DatabaseURL    string
	MigrateOnStart bool

	// Redis (optional; empty disables snapshots and event fan-out)
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Tables
	TickRate           int
	AIDifficulty       string
	RackStyle          string
	RoomIdleMinutes    int
	RoomReaperSeconds  int
	SnapshotEveryTicks int

	// WebSocket
	WSMessagesPerSecond int
	WSMessageBurst      int

	// Security
	JWTSecret        string
	SeatTokenMinutes int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrateOnStart: getEnvBool("MIGRATE_ON_START", true),

		// Redis
		RedisURL: getEnv("REDIS_URL", ""),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Tables
		TickRate:           getEnvInt("TICK_RATE", 30),
		AIDifficulty:       getEnv("AI_DIFFICULTY", "normal"),
		RackStyle:          getEnv("RACK_STYLE", "red_yellow"),
		RoomIdleMinutes:    getEnvInt("ROOM_IDLE_MINUTES", 10),
		RoomReaperSeconds:  getEnvInt("ROOM_REAPER_SECONDS", 30),
		SnapshotEveryTicks: getEnvInt("SNAPSHOT_EVERY_TICKS", 30),

		// WebSocket
		WSMessagesPerSecond: getEnvInt("WS_MESSAGES_PER_SECOND", 20),
		WSMessageBurst:      getEnvInt("WS_MESSAGE_BURST", 40),

		// Security
		JWTSecret:        getEnv("JWT_SECRET", "change-me-in-production"),
		SeatTokenMinutes: getEnvInt("SEAT_TOKEN_MINUTES", 240),
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
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

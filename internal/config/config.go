package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Terrain  TerrainConfig
	Stream   StreamConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LoggingConfig struct {
	Level      string
	Format     string
	Structured bool
}

// TerrainConfig holds the parameters that must match bit-for-bit between
// every client and the chunk service.
type TerrainConfig struct {
	Seed      int64
	ChunkSize int32
}

// StreamConfig holds the client-side Streaming Coordinator's tunables.
type StreamConfig struct {
	SubscriptionRadius int32
	RetryDelay         time.Duration
	TickInterval       time.Duration
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            getEnvStr("PORT", "8080"),
			ReadTimeout:     getEnvDuration("READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:     getEnvDuration("IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Path:            getEnvStr("DB_PATH", "./terrain.db"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Logging: LoggingConfig{
			Level:      getEnvStr("LOG_LEVEL", "info"),
			Format:     getEnvStr("LOG_FORMAT", "json"),
			Structured: getEnvBool("LOG_STRUCTURED", true),
		},
		Terrain: TerrainConfig{
			Seed:      int64(getEnvInt("TERRAIN_SEED", 42)),
			ChunkSize: int32(getEnvInt("TERRAIN_CHUNK_SIZE", 32)),
		},
		Stream: StreamConfig{
			SubscriptionRadius: int32(getEnvInt("STREAM_RADIUS", 4)),
			RetryDelay:         getEnvDuration("STREAM_RETRY_DELAY", 1*time.Second),
			TickInterval:       getEnvDuration("STREAM_TICK_INTERVAL", 100*time.Millisecond),
		},
	}
}

func getEnvStr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

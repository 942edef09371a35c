package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config содержит настройки приложения
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Import   ImportConfig
	LogLevel slog.Level
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Port string
}

// DatabaseConfig - настройки подключения к БД
type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	SQLitePath      string
	ConnectAttempts int
}

// ImportConfig - настройки массового импорта
type ImportConfig struct {
	File      string
	BatchSize int
}

// DSN возвращает строку подключения для выбранного драйвера
func (c *DatabaseConfig) DSN() string {
	if c.Driver == DriverSQLite {
		return c.SQLitePath + "?_foreign_keys=on"
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Load загружает конфигурацию из переменных окружения.
// Файл .env, если он есть, подмешивается без перезаписи уже заданных переменных.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			DBName:          getEnv("DB_NAME", "catalog"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			SQLitePath:      getEnv("DB_SQLITE_PATH", "catalog.db"),
			ConnectAttempts: getEnvInt("DB_CONNECT_ATTEMPTS", 30),
		},
		Import: ImportConfig{
			File:      getEnv("IMPORT_FILE", "products.csv"),
			BatchSize: getEnvInt("IMPORT_BATCH_SIZE", 500),
		},
		LogLevel: parseLevel(getEnv("LOG_LEVEL", "info")),
	}
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

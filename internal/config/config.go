package config

import (
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Config holds everything the process reads from the environment.
type Config struct {
	Port        string
	DatabaseURL string
	DataFile    string

	JWTSecret string
	JWTTTL    time.Duration

	// AdminUsers is the raw "user:pass:role:displayName;..." spec;
	// parsing lives in the auth package.
	AdminUsers string

	DefaultAssignee string

	ExcelWebhookURL  string
	ExcelWorkbookURL string
}

// Load reads the configuration from the environment, logging any fallback
// to a default value.
func Load(log *zap.SugaredLogger) Config {
	return Config{
		Port:             getEnv(log, "PORT", "3001"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		DataFile:         getEnv(log, "DATA_FILE", "data/applications.json"),
		JWTSecret:        getEnv(log, "JWT_SECRET", "kinozritel-change-me"),
		JWTTTL:           time.Duration(getEnvAsInt(log, "JWT_TTL", 43200)) * time.Second,
		AdminUsers:       os.Getenv("ADMIN_USERS"),
		DefaultAssignee:  getEnv(log, "DEFAULT_ASSIGNEE", "Татьяна"),
		ExcelWebhookURL:  os.Getenv("EXCEL_WEBHOOK_URL"),
		ExcelWorkbookURL: os.Getenv("EXCEL_WORKBOOK_URL"),
	}
}

// UsePostgres reports whether the transactional-row backend is configured.
func (c Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

func getEnv(log *zap.SugaredLogger, key, defaultVal string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	log.Debugw("env var not set, using default", "key", key, "default", defaultVal)
	return defaultVal
}

func getEnvAsInt(log *zap.SugaredLogger, key string, defaultVal int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultVal
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Warnw("env var is not an integer, using default", "key", key, "value", raw, "default", defaultVal)
		return defaultVal
	}
	return value
}

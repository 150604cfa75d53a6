package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const defaultDSN = "host=localhost user=postgres password=postgres dbname=capture port=5432 sslmode=disable"

type Config struct {
	HTTPPort    string
	DBDriver    string // postgres | sqlite
	DatabaseDSN string
	CORSOrigins string

	LogLevel  string
	LogFormat string
	GormLog   string

	// Destructive routes require a bearer token only when this is set.
	AdminJWTSecret string

	SessionListLimit int
	TxRetries        int
	ShutdownTimeout  time.Duration

	MQTT MQTTConfig
}

// MQTTConfig enables the device ingestion listener when Broker is set.
type MQTTConfig struct {
	Broker   string
	Topic    string
	ClientID string
	Username string
	Password string
	QoS      byte
}

func (m MQTTConfig) Enabled() bool {
	return m.Broker != ""
}

// Load reads the environment. The returned warnings describe insecure or
// development-only defaults; callers log them once the logger exists.
func Load() (*Config, []string) {
	cfg := &Config{
		HTTPPort:         getEnv("HTTP_PORT", "8080"),
		DBDriver:         getEnv("DB_DRIVER", "postgres"),
		DatabaseDSN:      getEnv("DATABASE_DSN", defaultDSN),
		CORSOrigins:      getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "json"),
		GormLog:          getEnv("GORM_LOG_LEVEL", "warn"),
		AdminJWTSecret:   os.Getenv("ADMIN_JWT_SECRET"),
		SessionListLimit: getEnvInt("SESSION_LIST_LIMIT", 100),
		TxRetries:        getEnvInt("TX_RETRIES", 3),
		ShutdownTimeout:  getEnvDuration("SHUTDOWN_TIMEOUT", 5*time.Second),
		MQTT: MQTTConfig{
			Broker:   os.Getenv("MQTT_BROKER"),
			Topic:    getEnv("MQTT_TOPIC", "capture/+/sessions"),
			ClientID: os.Getenv("MQTT_CLIENT_ID"),
			Username: os.Getenv("MQTT_USERNAME"),
			Password: os.Getenv("MQTT_PASSWORD"),
			QoS:      byte(getEnvInt("MQTT_QOS", 1)),
		},
	}

	var warnings []string
	if cfg.DBDriver == "postgres" && cfg.DatabaseDSN == defaultDSN {
		warnings = append(warnings, "DATABASE_DSN uses the default value, set your own Postgres connection for production")
	}
	if cfg.CORSOrigins == "http://localhost:5173" {
		warnings = append(warnings, "CORS_ALLOWED_ORIGINS uses the default value, set your own dashboard origin")
	}
	if cfg.AdminJWTSecret == "" {
		warnings = append(warnings, "ADMIN_JWT_SECRET is not set, merge/delete/reset routes are unauthenticated")
	} else if len(cfg.AdminJWTSecret) < 32 {
		warnings = append(warnings, "ADMIN_JWT_SECRET is shorter than 32 characters")
	}
	if cfg.SessionListLimit <= 0 || cfg.SessionListLimit > 100 {
		warnings = append(warnings, fmt.Sprintf("SESSION_LIST_LIMIT=%d out of range, using 100", cfg.SessionListLimit))
		cfg.SessionListLimit = 100
	}
	if cfg.TxRetries < 1 {
		cfg.TxRetries = 1
	}

	return cfg, warnings
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

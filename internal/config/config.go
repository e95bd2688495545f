package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultMastURL = "https://docs.google.com/spreadsheets/d/e/2PACX-1vROnxP7pLqg7Tfg30SNF0NPvjPUDdszRqLMWGZ5HAP3xpEom02mmzGxF50sa_iAtvt7HWbkuyCqajYr/pub?gid=1561831764&single=true&output=csv"
	defaultDashURL = "https://docs.google.com/spreadsheets/d/e/2PACX-1vROnxP7pLqg7Tfg30SNF0NPvjPUDdszRqLMWGZ5HAP3xpEom02mmzGxF50sa_iAtvt7HWbkuyCqajYr/pub?gid=595572358&single=true&output=csv"
)

type Config struct {
	MastURL   string
	DashURL   string
	DBPath    string
	OutputDir string

	HistoryEnabled bool

	FetchTimeoutMs    int
	FetchAttempts     int
	FetchRateLimitRPS int

	VerifyPolicy   string
	FOSValveMin    float64
	FOSActuatorMin float64

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string
	GoogleRefreshToken string

	LogLevel  string
	LogFormat string

	WatchIntervalSec int
	WatchClass       int
	WatchSize        int
	WatchFormats     []string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		MastURL:   getEnv("MAST_URL", defaultMastURL),
		DashURL:   getEnv("DASH_URL", defaultDashURL),
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "mastdash.db")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		HistoryEnabled: getEnvBool("HISTORY_ENABLED", true),

		FetchTimeoutMs:    getEnvInt("FETCH_TIMEOUT_MS", 30000),
		FetchAttempts:     getEnvInt("FETCH_ATTEMPTS", 1),
		FetchRateLimitRPS: getEnvInt("FETCH_RATE_LIMIT_RPS", 5),

		VerifyPolicy:   strings.ToLower(strings.TrimSpace(getEnv("VERIFY_POLICY", "operator"))),
		FOSValveMin:    getEnvFloat("FOS_VALVE_MIN", 2),
		FOSActuatorMin: getEnvFloat("FOS_ACTUATOR_MIN", 1),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURI:  getEnv("GOOGLE_REDIRECT_URI", "https://developers.google.com/oauthplayground"),
		GoogleRefreshToken: getEnv("GOOGLE_REFRESH_TOKEN", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		WatchIntervalSec: getEnvInt("WATCH_INTERVAL_SEC", 300),
		WatchClass:       getEnvInt("WATCH_CLASS", 0),
		WatchSize:        getEnvInt("WATCH_SIZE", 0),
		WatchFormats:     getEnvList("WATCH_FORMATS", []string{"xlsx"}),
	}

	if cfg.VerifyPolicy == "" {
		cfg.VerifyPolicy = "operator"
	}
	if cfg.VerifyPolicy != "operator" && cfg.VerifyPolicy != "valve_torque" {
		return Config{}, fmt.Errorf("invalid VERIFY_POLICY %q (want operator|valve_torque)", cfg.VerifyPolicy)
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	value := strings.TrimSpace(getEnv(key, ""))
	if value == "" {
		return fallback
	}
	out := []string{}
	for _, part := range strings.Split(value, ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

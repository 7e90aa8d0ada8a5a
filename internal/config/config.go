// ABOUTME: Configuration loader for the fieldreport client
// ABOUTME: Loads settings from .env files and environment variables with defaults

package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultAPIURL       = "https://api.example.com"
	DefaultCameraDevice = "/dev/video0"
	DefaultCaptureCmd   = "ffmpeg -loglevel error -f v4l2 -i {device} -frames:v 1 -f image2pipe -vcodec mjpeg -"
	appDirName          = "fieldreport"
)

type Config struct {
	// Backend
	APIURL  string
	Timeout time.Duration // 0 means no client-side timeout

	// Local state (credentials, recent files, debug log)
	ConfigDir string

	// Camera
	CameraDevice   string
	CaptureCommand []string

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment. Values in .env files
// (working directory first, then the config directory) fill in variables
// that are not already set.
func Load() (*Config, error) {
	loadEnvFile(".env")

	configDir := getEnv("FIELD_REPORT_CONFIG_DIR", DefaultConfigDir())
	if configDir != "" {
		loadEnvFile(filepath.Join(configDir, ".env"))
	}

	cfg := &Config{
		APIURL:         strings.TrimRight(ensureScheme(getEnv("FIELD_REPORT_API_URL", DefaultAPIURL)), "/"),
		Timeout:        time.Duration(getEnvInt("FIELD_REPORT_TIMEOUT", 0)) * time.Second,
		ConfigDir:      configDir,
		CameraDevice:   getEnv("FIELD_REPORT_CAMERA_DEVICE", DefaultCameraDevice),
		CaptureCommand: strings.Fields(getEnv("FIELD_REPORT_CAPTURE_CMD", DefaultCaptureCmd)),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
	}

	if cfg.ConfigDir == "" {
		return nil, fmt.Errorf("cannot determine config directory; set FIELD_REPORT_CONFIG_DIR")
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("FIELD_REPORT_TIMEOUT must not be negative, got %s", cfg.Timeout)
	}
	if len(cfg.CaptureCommand) == 0 {
		return nil, fmt.Errorf("FIELD_REPORT_CAPTURE_CMD must not be empty")
	}

	return cfg, nil
}

// DefaultConfigDir returns the default config directory following XDG conventions
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appDirName)
}

// loadEnvFile loads a .env file if present; existing variables win.
// A file that exists but cannot be parsed is skipped with a warning.
func loadEnvFile(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := godotenv.Load(path); err != nil {
		slog.Warn("Ignoring unreadable .env file", "path", path, "error", err)
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

// ensureScheme adds https:// prefix if the URL has no scheme
func ensureScheme(url string) string {
	if url == "" {
		return url
	}
	if !strings.Contains(url, "://") {
		return "https://" + url
	}
	return url
}

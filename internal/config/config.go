package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"conut-agent/internal/gateway"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// StaffingDefaults holds the tunable constants of the staffing pipeline.
// The equal-split fallback is configurable because the 25% assumption is a
// heuristic, not a derived quantity.
type StaffingDefaults struct {
	ShiftHours         float64
	BufferPct          float64
	ShiftShareFallback float64
}

// AppConfig holds the complete application configuration.
type AppConfig struct {
	AppName    string
	AppVersion string

	HTTPAddr    string
	CORSOrigins []string

	RawDataDir       string
	ProcessedDataDir string
	LogDir           string

	AttendanceFile   string
	MonthlySalesFile string
	TransactionsFile string

	Staffing StaffingDefaults
	Gateway  gateway.Config
}

// AttendancePath returns the full path of the cleaned attendance feed.
func (c *AppConfig) AttendancePath() string {
	return filepath.Join(c.ProcessedDataDir, c.AttendanceFile)
}

// MonthlySalesPath returns the full path of the cleaned monthly sales feed.
func (c *AppConfig) MonthlySalesPath() string {
	return filepath.Join(c.ProcessedDataDir, c.MonthlySalesFile)
}

// TransactionsPath returns the full path of the cleaned transactions feed.
func (c *AppConfig) TransactionsPath() string {
	return filepath.Join(c.ProcessedDataDir, c.TransactionsFile)
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory first
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	// 3. Resolve data paths
	dataPath := getEnv("CONUT_DATA_PATH", "")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = filepath.Join(exeDir, "data")
		} else {
			dataPath = "data"
		}
	}

	rawDir := getEnv("CONUT_RAW_DATA_DIR", filepath.Join(dataPath, "raw"))
	processedDir := getEnv("CONUT_PROCESSED_DATA_DIR", filepath.Join(dataPath, "processed"))
	logDir := getEnv("CONUT_LOGS_FOLDER", filepath.Join(dataPath, "logs"))

	for _, dir := range []string{rawDir, processedDir, logDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Warn().Err(err).Str("path", dir).Msg("Failed to create data directory")
		}
	}

	gatewayTimeout, _ := strconv.Atoi(getEnv("CONUT_GATEWAY_TIMEOUT_SECONDS", "30"))

	cfg := &AppConfig{
		AppName:    getEnv("CONUT_APP_NAME", "Conut COO Agent"),
		AppVersion: getEnv("CONUT_APP_VERSION", "0.1.0"),

		HTTPAddr:    getEnv("CONUT_HTTP_ADDR", ":8080"),
		CORSOrigins: splitList(getEnv("CONUT_CORS_ORIGINS", "http://localhost:5173,http://frontend:5173")),

		RawDataDir:       rawDir,
		ProcessedDataDir: processedDir,
		LogDir:           logDir,

		AttendanceFile:   getEnv("CONUT_ATTENDANCE_FILE", "REP_S_00461_cleaned.csv"),
		MonthlySalesFile: getEnv("CONUT_MONTHLY_SALES_FILE", "REP_S_00334_1_SMRY_cleaned.csv"),
		TransactionsFile: getEnv("CONUT_TRANSACTIONS_FILE", "REP_S_00502_cleaned.csv"),

		Staffing: StaffingDefaults{
			ShiftHours:         getEnvFloat("CONUT_DEFAULT_SHIFT_HOURS", 8.0),
			BufferPct:          getEnvFloat("CONUT_DEFAULT_BUFFER_PCT", 0.15),
			ShiftShareFallback: getEnvFloat("CONUT_SHIFT_SHARE_FALLBACK", 0.25),
		},
		Gateway: gateway.Config{
			BaseURL: getEnv("CONUT_GATEWAY_URL", "http://127.0.0.1:18789"),
			AgentID: getEnv("CONUT_GATEWAY_AGENT_ID", "main"),
			Token:   getEnv("CONUT_GATEWAY_TOKEN", ""),
			Timeout: time.Duration(gatewayTimeout) * time.Second,
		},
	}

	if err := validateStaffing(cfg.Staffing); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validateStaffing(d StaffingDefaults) error {
	if d.ShiftHours <= 0 || d.ShiftHours > 24 {
		return fmt.Errorf("default shift hours must be in (0, 24], got %v", d.ShiftHours)
	}
	if d.BufferPct < 0 || d.BufferPct > 1 {
		return fmt.Errorf("default buffer pct must be in [0, 1], got %v", d.BufferPct)
	}
	if d.ShiftShareFallback <= 0 || d.ShiftShareFallback > 1 {
		return fmt.Errorf("shift share fallback must be in (0, 1], got %v", d.ShiftShareFallback)
	}
	return nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

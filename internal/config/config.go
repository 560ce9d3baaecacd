// Package config loads runtime configuration from the environment and from
// JSON files on disk.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	jsoniter "github.com/json-iterator/go"

	"github.com/mayankjhn/omr-systemm/internal/sheet"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config is the environment-backed application configuration.
type Config struct {
	// AppEnv selects the runtime profile: development, production, or test.
	AppEnv string `validate:"required,oneof=development production test"`

	// LogLevel is a logrus level name.
	LogLevel string `validate:"required,oneof=trace debug info warn error"`

	// DatabaseURL is the PostgreSQL DSN, either URL or key/value form.
	// Empty disables persistence.
	DatabaseURL string

	// Workers is the batch pool size.
	Workers int `validate:"min=1,max=64"`
}

// Load reads .env (when present) and builds the configuration from the
// environment. Validation failures return an error listing the offending
// field.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	} else {
		// Default .env is optional.
		_ = godotenv.Load()
	}

	cfg := &Config{
		AppEnv:      envOr("APP_ENV", "development"),
		LogLevel:    envOr("LOG_LEVEL", "info"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Workers:     4,
	}

	if raw := os.Getenv("OMR_WORKERS"); raw != "" {
		workers, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("OMR_WORKERS must be an integer: %w", err)
		}
		cfg.Workers = workers
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// LoadLayout reads a sheet layout from a JSON file and validates it.
// Fields absent from the file keep their defaults.
func LoadLayout(path string) (sheet.Layout, error) {
	layout := sheet.DefaultLayout()
	if path == "" {
		return layout, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return sheet.Layout{}, fmt.Errorf("failed to read layout file: %w", err)
	}
	if err := json.Unmarshal(raw, &layout); err != nil {
		return sheet.Layout{}, fmt.Errorf("failed to parse layout file: %w", err)
	}
	if err := layout.Validate(); err != nil {
		return sheet.Layout{}, err
	}
	return layout, nil
}

// LoadParams reads pipeline tuning parameters from a JSON file and
// validates them. Fields absent from the file keep their defaults.
func LoadParams(path string) (sheet.Params, error) {
	params := sheet.DefaultParams()
	if path == "" {
		return params, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return sheet.Params{}, fmt.Errorf("failed to read params file: %w", err)
	}
	if err := json.Unmarshal(raw, &params); err != nil {
		return sheet.Params{}, fmt.Errorf("failed to parse params file: %w", err)
	}
	if err := params.Validate(); err != nil {
		return sheet.Params{}, err
	}
	return params, nil
}

// LoadAnswerKey reads an answer key JSON file. The layout bounds the
// accepted option indices.
func LoadAnswerKey(path string, layout sheet.Layout) (sheet.AnswerKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read answer key file: %w", err)
	}
	return sheet.ParseAnswerKey(raw, layout)
}

// LoadSubjects reads subject ranges from a JSON file. An empty path means
// no subject subtotals.
func LoadSubjects(path string) ([]sheet.SubjectRange, error) {
	if path == "" {
		return nil, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read subjects file: %w", err)
	}

	var subjects []sheet.SubjectRange
	if err := json.Unmarshal(raw, &subjects); err != nil {
		return nil, fmt.Errorf("failed to parse subjects file: %w", err)
	}
	return subjects, nil
}

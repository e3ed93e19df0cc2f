package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/example/topicatlas/internal/dataset"
	"github.com/example/topicatlas/internal/export"
)

const (
	DefaultBind      = ":8080"
	DefaultDataPath  = "Faculty - Research Interests.csv"
	DefaultExportDir = "exports"
	DefaultLogLevel  = "info"
)

type Config struct {
	Bind               string
	DataPath           string
	Preload            bool
	SchemaFile         string
	Schema             dataset.Schema
	Encodings          []string
	ExportDir          string
	ExportSeparator    string
	CORSAllowedOrigins []string
	LogLevel           string
	LogFile            string
	SwaggerUIPath      string
	OpenAPIPath        string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Bind:               getenv("TOPICATLAS_BIND", DefaultBind),
		DataPath:           getenv("TOPICATLAS_DATA_PATH", DefaultDataPath),
		Preload:            getBool("TOPICATLAS_PRELOAD", true),
		SchemaFile:         strings.TrimSpace(os.Getenv("TOPICATLAS_SCHEMA_FILE")),
		Encodings:          splitAndTrim(os.Getenv("TOPICATLAS_ENCODINGS")),
		ExportDir:          getenv("TOPICATLAS_EXPORT_DIR", DefaultExportDir),
		ExportSeparator:    getRaw("TOPICATLAS_EXPORT_SEPARATOR", export.DefaultSeparator),
		CORSAllowedOrigins: splitAndTrim(os.Getenv("TOPICATLAS_CORS_ALLOWED_ORIGINS")),
		LogLevel:           getenv("TOPICATLAS_LOG_LEVEL", DefaultLogLevel),
		LogFile:            os.Getenv("TOPICATLAS_LOG_FILE"),
		SwaggerUIPath:      "/swagger",
		OpenAPIPath:        "/openapi.yaml",
	}

	if len(cfg.Encodings) == 0 {
		cfg.Encodings = append([]string(nil), dataset.DefaultEncodings...)
	}
	if _, err := dataset.ResolveEncodings(cfg.Encodings); err != nil {
		return nil, fmt.Errorf("invalid TOPICATLAS_ENCODINGS: %w", err)
	}

	if cfg.SchemaFile == "" {
		cfg.Schema = dataset.DefaultSchema()
	} else {
		s, err := dataset.LoadSchema(cfg.SchemaFile)
		if err != nil {
			return nil, fmt.Errorf("invalid TOPICATLAS_SCHEMA_FILE: %w", err)
		}
		cfg.Schema = s
	}

	if strings.TrimSpace(cfg.DataPath) == "" {
		return nil, fmt.Errorf("TOPICATLAS_DATA_PATH is required")
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// getRaw keeps surrounding whitespace, which matters for separators.
func getRaw(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err == nil {
			return b
		}
		v = strings.ToLower(strings.TrimSpace(v))
		return v == "yes" || v == "y"
	}
	return def
}

func splitAndTrim(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

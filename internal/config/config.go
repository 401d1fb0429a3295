package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the environment-derived settings for one CLI invocation.
type Config struct {
	ProjectRoot    string
	IndexPath      string
	FuzzyFloor     float64
	MaxFileBytes   int64
	DynamicCalls   bool
}

const (
	defaultFuzzyFloor   = 0.3
	defaultMaxFileBytes = 5 * 1024 * 1024
)

// Load resolves configuration from an optional .env file, then the
// environment. project is the CLI-resolved project root, already applied
// on top of CODEGRAPH_PROJECT by the caller; an empty string means "use
// CODEGRAPH_PROJECT or the current directory".
func Load(project string) (*Config, error) {
	_ = godotenv.Load() // missing .env is not an error

	if project == "" {
		project = getEnv("CODEGRAPH_PROJECT", ".")
	}
	root, err := filepath.Abs(project)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ProjectRoot:  root,
		IndexPath:    getEnv("CODEGRAPH_INDEX_PATH", filepath.Join(root, ".codegraph", "index.bin")),
		FuzzyFloor:   getEnvFloat("CODEGRAPH_FUZZY_FLOOR", defaultFuzzyFloor),
		MaxFileBytes: int64(getEnvInt("CODEGRAPH_MAX_FILE_BYTES", defaultMaxFileBytes)),
		DynamicCalls: getEnvBool("CODEGRAPH_DYNAMIC_CALLS", false),
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

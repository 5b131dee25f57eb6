package infra

import (
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv string
	Port   string

	PipelineBaseURL      string
	WorkflowPath         string
	PromptNode           string
	DimensionsNode       string
	SketchNode           string
	OutputNode           string
	PipelineAwaitTimeout time.Duration
	PipelinePollInterval time.Duration

	CredentialsPath string
	CooldownWindow  time.Duration

	DefaultResolution string
	StagingDir        string

	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	GeoIPDBPath   string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. Nothing is hard-required: the service boots
// against a local engine, and a missing credentials file only means the
// gate authenticates nobody.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv: getEnv("APP_ENV", "development"),
		Port:   getEnv("PORT", "8080"),

		PipelineBaseURL:      getEnv("PIPELINE_URL", "http://127.0.0.1:8188"),
		WorkflowPath:         getEnv("WORKFLOW_PATH", "workflows/default.json"),
		PromptNode:           getEnv("PIPELINE_PROMPT_NODE", "positive"),
		DimensionsNode:       getEnv("PIPELINE_DIMENSIONS_NODE", "latent"),
		SketchNode:           getEnv("PIPELINE_SKETCH_NODE", "sketch"),
		OutputNode:           getEnv("PIPELINE_OUTPUT_NODE", "Save Image"),
		PipelineAwaitTimeout: time.Second * time.Duration(getEnvInt("PIPELINE_AWAIT_TIMEOUT_SECONDS", 300)),
		PipelinePollInterval: time.Millisecond * time.Duration(getEnvInt("PIPELINE_POLL_INTERVAL_MS", 500)),

		CredentialsPath: os.Getenv("USER_CREDENTIALS"),
		CooldownWindow:  time.Second * time.Duration(getEnvInt("COOLDOWN_SECONDS", 300)),

		DefaultResolution: getEnv("DEFAULT_RESOLUTION", "FULL HD (1080p)"),
		StagingDir:        os.Getenv("STAGING_DIR"),

		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		GeoIPDBPath:   os.Getenv("GEOIP_DB_PATH"),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 30)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 600)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvAPIKey = "DD_API_KEY"
	EnvAppKey = "DD_APP_KEY"
	EnvSite   = "DD_SITE"
)

// ReadEnvFile loads KEY=VALUE pairs from a dotenv file into the process
// environment. Variables already set are left alone.
func ReadEnvFile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return err
	}
	return godotenv.Load(path)
}

// applyEnv fills blank Datadog settings from the environment.
func applyEnv(cfg *Config) {
	fill := func(dst *string, key string) {
		if strings.TrimSpace(*dst) != "" {
			return
		}
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	fill(&cfg.Datadog.APIKey, EnvAPIKey)
	fill(&cfg.Datadog.AppKey, EnvAppKey)
	fill(&cfg.Datadog.Site, EnvSite)
}

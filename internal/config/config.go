// Package config loads service configuration from the environment.
//
// All variables carry the GLRV_ prefix. A .env file in the working directory
// is loaded first when present, so local development does not need exported
// variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Default values applied when the corresponding variable is unset.
const (
	DefaultListenAddr       = ":8080"
	DefaultDBHost           = "localhost"
	DefaultDBPort           = 5432
	DefaultDBUser           = "postgres"
	DefaultDBPassword       = "postgres"
	DefaultDBName           = "reviewd"
	DefaultOpenAIMaxTurns   = 16
	DefaultSMTPPort         = 25
	DefaultWorkerCount      = 4
	DefaultWorkerQueueSize  = 64
	DefaultSubmitTimeout    = 5 * time.Second
)

// Config holds all runtime settings for the service.
type Config struct {
	ListenAddr string

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  bool

	GitlabURL          string
	GitlabRootToken    string
	GitlabWebhookToken string

	OpenAIBaseURL  string
	OpenAIAPIKey   string
	OpenAIModel    string
	OpenAIMaxTurns int

	EnableEmail  bool
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	EmailFrom    string

	WorkerCount         int
	WorkerQueueSize     int
	WorkerSubmitTimeout time.Duration
}

// Load reads the .env file (if any) and the environment into a Config.
func Load() (*Config, error) {
	// Missing .env is fine; exported variables still apply.
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:          getEnv("GLRV_LISTEN_ADDR", DefaultListenAddr),
		DBHost:              getEnv("GLRV_DB_HOST", DefaultDBHost),
		DBPort:              getEnvInt("GLRV_DB_PORT", DefaultDBPort),
		DBUser:              getEnv("GLRV_DB_USER", DefaultDBUser),
		DBPassword:          getEnv("GLRV_DB_PASSWORD", DefaultDBPassword),
		DBName:              getEnv("GLRV_DB_NAME", DefaultDBName),
		DBSSLMode:           getEnvBool("GLRV_DB_SSL", false),
		GitlabURL:           os.Getenv("GLRV_GITLAB_URL"),
		GitlabRootToken:     os.Getenv("GLRV_GITLAB_ROOT_TOKEN"),
		GitlabWebhookToken:  os.Getenv("GLRV_GITLAB_WEBHOOK_TOKEN"),
		OpenAIBaseURL:       os.Getenv("GLRV_OPENAI_BASE_URL"),
		OpenAIAPIKey:        os.Getenv("GLRV_OPENAI_API_KEY"),
		OpenAIModel:         os.Getenv("GLRV_OPENAI_MODEL"),
		OpenAIMaxTurns:      getEnvInt("GLRV_OPENAI_MAX_TURNS", DefaultOpenAIMaxTurns),
		EnableEmail:         getEnvBool("GLRV_ENABLE_EMAIL", false),
		SMTPHost:            os.Getenv("GLRV_SMTP_HOST"),
		SMTPPort:            getEnvInt("GLRV_SMTP_PORT", DefaultSMTPPort),
		SMTPUsername:        os.Getenv("GLRV_SMTP_USERNAME"),
		SMTPPassword:        os.Getenv("GLRV_SMTP_PASSWORD"),
		EmailFrom:           os.Getenv("GLRV_EMAIL_FROM"),
		WorkerCount:         getEnvInt("GLRV_WORKER_COUNT", DefaultWorkerCount),
		WorkerQueueSize:     getEnvInt("GLRV_WORKER_QUEUE_SIZE", DefaultWorkerQueueSize),
		WorkerSubmitTimeout: getEnvDuration("GLRV_WORKER_SUBMIT_TIMEOUT", DefaultSubmitTimeout),
	}

	if cfg.GitlabWebhookToken == "" {
		return nil, fmt.Errorf("GLRV_GITLAB_WEBHOOK_TOKEN must be set")
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
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

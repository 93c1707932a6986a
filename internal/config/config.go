package config

import (
	"log"
	"os"
	"strconv"

	"ai-examgen-be/internal/constant"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Keys     APIKeys
	Ai       AIConfig
	Storage  StorageConfig
	Extract  ExtractConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type APIKeys struct {
	HuggingFace     string
	GenerationTopic string // Stage lifecycle topic on the in-process bus
}

type AIConfig struct {
	LLMProvider   string // "ollama" or "huggingface"
	LLMModel      string
	OllamaBaseURL string
}

type StorageConfig struct {
	Backend    string // "file", "redis" or "postgres"
	FilePath   string
	QuotaBytes int
}

type ExtractConfig struct {
	RenderDPI     int
	UploadLimitMB int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "ExamGen"),
		},
		Keys: APIKeys{
			HuggingFace:     getEnv("HUGGINGFACE_API_KEY", ""),
			GenerationTopic: getEnv("GENERATION_TOPIC_NAME", constant.GenerationTopic),
		},
		Ai: AIConfig{
			LLMProvider:   getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:      getEnv("LLM_MODEL", constant.OllamaDefaultModel),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", constant.OllamaDefaultBaseURL),
		},
		Storage: StorageConfig{
			Backend:    getEnv("STORAGE_BACKEND", "file"),
			FilePath:   getEnv("STORAGE_FILE_PATH", "data/storage_slots"),
			QuotaBytes: getEnvAsInt("STORAGE_QUOTA_BYTES", constant.DefaultStorageQuotaBytes),
		},
		Extract: ExtractConfig{
			RenderDPI:     getEnvAsInt("EXTRACT_RENDER_DPI", 150),
			UploadLimitMB: getEnvAsInt("UPLOAD_LIMIT_MB", 25),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Uploads  UploadConfig
	Ai       AIConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	AuditLogFilePath   string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JwtSecret          string
	DailyTurnLimit     int
}

type DatabaseConfig struct {
	Connection string
}

type UploadConfig struct {
	Dir          string
	MaxSizeBytes int
}

type AIConfig struct {
	Provider          string // "openai" or "ollama"
	Model             string // default completion model
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	OllamaBaseURL     string
	OllamaModel       string
	EmbeddingProvider string
	EmbeddingModel    string
	// EmbeddingDims must match the vector column width. OpenAI
	// text-embedding-3 models honor a requested dimension; nomic-embed-text
	// is natively 768.
	EmbeddingDims     int
	EmbedDocTopicName string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			AuditLogFilePath:   getEnv("AUDIT_LOG_FILE_PATH", "logs/audit.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
			DailyTurnLimit:     getEnvAsInt("AI_DAILY_TURN_LIMIT", 200),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Uploads: UploadConfig{
			Dir:          getEnv("UPLOAD_DIR", "uploads"),
			MaxSizeBytes: getEnvAsInt("UPLOAD_MAX_SIZE_BYTES", 10*1024*1024),
		},
		Ai: AIConfig{
			Provider:          getEnv("LLM_PROVIDER", "openai"),
			Model:             getEnv("LLM_MODEL", "gpt-4o-mini"),
			OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_MODEL", "llama3"),
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "openai"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbeddingDims:     getEnvAsInt("EMBEDDING_DIMENSIONS", 768),
			EmbedDocTopicName: getEnv("EMBED_REFERENCE_DOC_TOPIC_NAME", "EMBED_REFERENCE_DOC"),
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

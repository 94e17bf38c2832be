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
	Storage  StorageConfig
	Ai       AIConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	AssetsDir          string
}

type DatabaseConfig struct {
	Connection string
}

type StorageConfig struct {
	UploadDir string // local blob store root
}

// AIConfig is the closed set of model options injected into the gate and the
// continuity engine. Tests substitute deterministic fakes instead of reading env.
type AIConfig struct {
	Provider        string // "ollama" or "gemini"
	ClassifierModel string
	GenerationModel string
	Temperature     float64
	MaxTokens       int
	SystemPrompt    string // override of the default analysis system prompt
	OllamaBaseURL   string
	GeminiAPIKey    string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			AssetsDir:          getEnv("ASSETS_DIR", "./assets"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Storage: StorageConfig{
			UploadDir: getEnv("UPLOAD_DIR", "./uploads"),
		},
		Ai: AIConfig{
			Provider:        getEnv("LLM_PROVIDER", "ollama"),
			ClassifierModel: getEnv("CLASSIFIER_MODEL", "llama3"),
			GenerationModel: getEnv("GENERATION_MODEL", "llama3"),
			Temperature:     getEnvAsFloat("LLM_TEMPERATURE", 0.4),
			MaxTokens:       getEnvAsInt("LLM_MAX_TOKENS", 800),
			SystemPrompt:    getEnv("LLM_SYSTEM_PROMPT", ""),
			OllamaBaseURL:   getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			GeminiAPIKey:    getEnv("GOOGLE_GEMINI_API_KEY", ""),
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

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

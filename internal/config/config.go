package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Session  SessionConfig
	SMTP     SMTPConfig
	Ai       AIConfig
	Index    IndexConfig
	Search   SearchConfig
	Sheets   SheetsConfig
	Features FeatureFlags
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	MenuFile           string
	CallTimeout        time.Duration
	RateLimitMax       int
	RateLimitWindow    time.Duration
	HourlyLimit        int // every route, per client IP; 0 disables
	DailyLimit         int
	StaticDir          string // chat widget assets served at /; empty disables
}

type DatabaseConfig struct {
	Connection string
}

type SessionConfig struct {
	Store      string // "memory" | "redis"
	RedisURL   string
	Secret     string
	CookieName string
	TTL        time.Duration
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
	AdminEmail string
}

type AIConfig struct {
	EmbeddingProvider string // "cohere" | "ollama" | "gemini"
	CohereAPIKey      string
	CohereModel       string
	GeminiAPIKey      string
	OllamaBaseURL     string
	OllamaEmbedModel  string

	LLMProvider string // "groq" | "openai" | "ollama"
	LLMAPIKey   string
	LLMBaseURL  string
	LLMModel    string
}

type IndexConfig struct {
	Provider     string // "pgvector" | "qdrant"
	Name         string
	TopK         int
	QdrantHost   string
	QdrantPort   int
	QdrantAPIKey string
	QdrantTLS    bool
}

type SearchConfig struct {
	Provider string // "duckduckgo" | "bing" | "none"
	Endpoint string
	APIKey   string
}

type SheetsConfig struct {
	CredentialsPath  string
	AnalyticsSheetID string
	QueriesTab       string
	ViewsTab         string
	AppointmentID    string
	AppointmentTab   string
	FeedbackID       string
	FeedbackTab      string
}

type FeatureFlags struct {
	RecordBackend      string // "sheets" | "postgres"
	AnalyticsEnabled   bool
	AppointmentEnabled bool
	FeedbackEnabled    bool
	TracingEnabled     bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "5000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5000"),
			NatsURL:            getEnv("NATS_URL", ""),
			MenuFile:           getEnv("MENU_FILE", ""),
			CallTimeout:        getEnvAsDuration("EXTERNAL_CALL_TIMEOUT", 20*time.Second),
			RateLimitMax:       getEnvAsInt("CHAT_RATE_LIMIT", 30),
			RateLimitWindow:    getEnvAsDuration("CHAT_RATE_WINDOW", 5*time.Minute),
			HourlyLimit:        getEnvAsInt("RATE_LIMIT_PER_HOUR", 50),
			DailyLimit:         getEnvAsInt("RATE_LIMIT_PER_DAY", 200),
			StaticDir:          getEnv("STATIC_DIR", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Session: SessionConfig{
			Store:      strings.ToLower(getEnv("SESSION_STORE", "memory")),
			RedisURL:   getEnv("REDIS_URL", "redis://localhost:6379"),
			Secret:     getEnv("SESSION_SECRET", ""),
			CookieName: getEnv("SESSION_COOKIE_NAME", "flcs_session"),
			TTL:        getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "FLCS Chatbot"),
			AdminEmail: getEnv("ADMIN_NOTIFY_EMAIL", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: strings.ToLower(getEnv("EMBEDDING_PROVIDER", "cohere")),
			CohereAPIKey:      getEnv("COHERE_API_KEY", ""),
			CohereModel:       getEnv("COHERE_EMBED_MODEL", "embed-english-v3.0"),
			GeminiAPIKey:      getEnv("GOOGLE_GEMINI_API_KEY", ""),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaEmbedModel:  getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       strings.ToLower(getEnv("LLM_PROVIDER", "groq")),
			LLMAPIKey:         getEnv("GROQ_API_KEY", ""),
			LLMBaseURL:        getEnv("LLM_BASE_URL", ""),
			LLMModel:          getEnv("GROQ_MODEL", "llama-3.1-8b-instant"),
		},
		Index: IndexConfig{
			Provider:     strings.ToLower(getEnv("VECTOR_INDEX_PROVIDER", "pgvector")),
			Name:         getEnv("VECTOR_INDEX", "flcs-chatbot"),
			TopK:         getEnvAsInt("TOP_K", 4),
			QdrantHost:   getEnv("QDRANT_HOST", "localhost"),
			QdrantPort:   getEnvAsInt("QDRANT_PORT", 6334),
			QdrantAPIKey: getEnv("QDRANT_API_KEY", ""),
			QdrantTLS:    getEnvAsBool("QDRANT_TLS", false),
		},
		Search: SearchConfig{
			Provider: strings.ToLower(getEnv("WEB_SEARCH_PROVIDER", "duckduckgo")),
			Endpoint: getEnv("WEB_SEARCH_ENDPOINT", ""),
			APIKey:   getEnv("WEB_SEARCH_API_KEY", ""),
		},
		Sheets: SheetsConfig{
			CredentialsPath:  getEnv("GOOGLE_SA_PATH", "creds/google-service-account.json"),
			AnalyticsSheetID: getEnv("GOOGLE_SHEET_ID_ANALYTICS", ""),
			QueriesTab:       getEnv("GOOGLE_SHEET_TAB_QUERIES", "Queries"),
			ViewsTab:         getEnv("GOOGLE_SHEET_TAB_VIEWS", "Views"),
			AppointmentID:    getEnv("GOOGLE_SHEET_ID_APPOINTMENT", ""),
			AppointmentTab:   getEnv("GOOGLE_SHEET_TAB_APPOINTMENT", "Appointments"),
			FeedbackID:       getEnv("GOOGLE_SHEET_ID_FEEDBACK", ""),
			FeedbackTab:      getEnv("GOOGLE_SHEET_TAB_FEEDBACK", "Feedback"),
		},
		Features: FeatureFlags{
			RecordBackend:      strings.ToLower(getEnv("RECORD_BACKEND", "sheets")),
			AnalyticsEnabled:   getEnvAsBool("ANALYTICS_ENABLED", false),
			AppointmentEnabled: getEnvAsBool("APPOINTMENT_ENABLED", false),
			FeedbackEnabled:    getEnvAsBool("FEEDBACK_ENABLED", false),
			TracingEnabled:     getEnvAsBool("OTEL_ENABLED", false),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
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

// getEnvAsBool only accepts "true" (case-insensitive) as enabled.
func getEnvAsBool(key string, fallback bool) bool {
	strValue, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	return strings.EqualFold(strings.TrimSpace(strValue), "true")
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil && value > 0 {
		return value
	}
	return fallback
}

package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"

	//shared-secret header every boundary checks
	AuthHeaderName   = "X-ProView-Key"
	DefaultAuthToken = "default-secret-key-change-me"

	//rate limiting - fixed window per client key
	RateLimitRequests      = 10
	RateLimitWindowSeconds = 60

	//retrieval
	RetrievalK    = 3
	RetrievalMinK = 1
	RetrievalMaxK = 10

	//chunking
	ChunkSize    = 700
	ChunkOverlap = 100

	//session eviction
	SessionTimeoutHours  = 2.0
	JanitorTickInterval  = 15 * time.Minute
	JanitorStoreDeadline = 60 * time.Second

	//uploads
	MaxFileSizeMB = 10
	TempUploadDir = "./temp_uploads"

	//chat
	MaxHistoryLength = 10
	MaxMessageLength = 5000

	//serverTimeouts
	ReadTimeout            = 10 * time.Second
	WriteTimeout           = 60 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":8000"

	//vectorDB
	CollectionName                      = "proview_prod"
	EmbeddingOutputDimensionality int32 = 1536
	QdrantHost                          = "localhost"
	QdrantGrpcPort                      = 6334
	QdrantUseTLS                        = false
	QdrantPoolSize                      = 1
	StatsScrollLimit                    = 1000

	//llm - Groq speaks the OpenAI wire protocol
	GroqBaseURL              = "https://api.groq.com/openai/v1"
	ModelName                = "llama-3.3-70b-versatile"
	ModelTemperature float64 = 0.3
	LLMCallTimeout           = 30 * time.Second

	//embeddings
	GoogleEmbeddingModel = "gemini-embedding-001"
	//client-side throttle so batch ingestion stays under the provider quota
	EmbeddingRequestsPerSecond = 2
	EmbeddingBurst             = 4

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis (rate-limit counters)
	RedisAddr         = "127.0.0.1:6379"
	RedisLimiterDB    = 0
	RedisDialTimeout  = 3 * time.Second
	RedisReadTimeout  = 2 * time.Second
	RedisWriteTimeout = 2 * time.Second
)

// Set by Load from the environment; consts above are the fallbacks.
var (
	GroqAPIKey            string
	GoogleEmbeddingAPIKey string
	AuthToken             = DefaultAuthToken
	AllowedOrigins        = []string{"http://localhost:8501", "http://127.0.0.1:8501"}
)

// Load pulls secrets and overrides from a .env file or the process
// environment. Missing .env is fine, missing GROQ_API_KEY is not.
func Load() error {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using process environment")
	}

	GroqAPIKey = os.Getenv("GROQ_API_KEY")
	GoogleEmbeddingAPIKey = os.Getenv("GOOGLE_API_KEY")

	if v := os.Getenv("PROVIEW_API_KEY"); v != "" {
		AuthToken = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		AllowedOrigins = splitAndTrim(v)
	}

	return validate()
}

func validate() error {
	if GroqAPIKey == "" {
		return errors.New("GROQ_API_KEY must be set")
	}
	if GoogleEmbeddingAPIKey == "" {
		return errors.New("GOOGLE_API_KEY must be set")
	}
	if AuthToken == DefaultAuthToken {
		slog.Warn("Using the default PROVIEW_API_KEY. Change this in production")
	}
	if MaxFileSizeMB <= 0 || SessionTimeoutHours <= 0 {
		return errors.New("size and timeout configuration must be positive")
	}
	return os.MkdirAll(TempUploadDir, 0750)
}

func splitAndTrim(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// EnvInt reads an integer override, falling back when unset or malformed.
func EnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

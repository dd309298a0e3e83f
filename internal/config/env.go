package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config is the process configuration, loaded once at startup from the
// environment (optionally seeded from a .env file).
type Config struct {
	Port        string
	DatabaseURL string

	OpenAIAPIKey string
	EmbedModel   string
	EmbedDim     int
	GenModel     string

	MaxChunkTokens    int
	ChunkSafetyMargin int
	FileBatchSize     int

	DriveCredentialsFile string

	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	S3Bucket     string

	AuthDomain   string
	AuthAudience string

	AllowedOrigins []string
}

// Load reads the configuration. Missing required values are fatal; the
// service cannot run without a database or an OpenAI key.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using process environment")
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		EmbedModel:   getEnv("EMBEDDING_MODEL", "text-embedding-3-large"),
		EmbedDim:     getEnvInt("EMBEDDING_DIMENSIONS", 3072),
		GenModel:     getEnv("GENERATION_MODEL", "gpt-4o-mini"),

		MaxChunkTokens:    getEnvInt("MAX_CHUNK_TOKENS", 512),
		ChunkSafetyMargin: getEnvInt("CHUNK_SAFETY_MARGIN", 50),
		FileBatchSize:     getEnvInt("FILE_BATCH_SIZE", 5),

		DriveCredentialsFile: os.Getenv("GOOGLE_DRIVE_CREDENTIALS_FILE"),

		AwsAccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
		AwsSecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		AwsRegion:    getEnv("AWS_REGION", "us-east-1"),
		S3Bucket:     os.Getenv("S3_BUCKET"),

		AuthDomain:   os.Getenv("AUTH_DOMAIN"),
		AuthAudience: os.Getenv("AUTH_AUDIENCE"),

		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}
	if cfg.OpenAIAPIKey == "" {
		log.Fatal().Msg("OPENAI_API_KEY is required")
	}
	return cfg
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
		log.Warn().Str("key", key).Str("value", v).Msg("invalid integer env value, using default")
		return fallback
	}
	return n
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

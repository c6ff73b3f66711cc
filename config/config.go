package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	DatabaseURL       string
	OpenAIAPIKey      string
	AnthropicAPIKey   string
	PineconeAPIKey    string
	PineconeIndexName string

	// Generation settings.
	DefaultProvider string
	OpenAIModel     string
	AnthropicModel  string

	// When true, regenerating module k also invalidates and regenerates
	// every module after k, since their content was written against the
	// superseded module-k summary. When false the downstream modules are
	// left untouched.
	RegenerateInvalidateDownstream bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("[INFO] No .env file found, using environment variables")
	}

	return &Config{
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       os.Getenv("DB_URL"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey:   os.Getenv("ANTHROPIC_API_KEY"),
		PineconeAPIKey:    os.Getenv("PINECONE_API_KEY"),
		PineconeIndexName: getEnv("PINECONE_INDEX_NAME", "didactio-courses-index"),

		DefaultProvider: os.Getenv("DEFAULT_PROVIDER"),
		OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		AnthropicModel:  os.Getenv("ANTHROPIC_MODEL"),

		RegenerateInvalidateDownstream: getEnvBool("REGENERATE_INVALIDATE_DOWNSTREAM", false),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("[WARN] Invalid boolean value %q for %s, using default %t", value, key, fallback)
		return fallback
	}
	return parsed
}

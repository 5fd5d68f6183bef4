package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

func init() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()
}

type Config struct {
	// Required
	TelegramToken string
	OpenAIAPIKey  string

	// Optional with defaults
	OpenAIModel        string
	OpenAITemperature  float64
	OpenAIMaxTokens    int
	CredentialsFile    string
	CalendarID         string
	Timezone           string
	PollTimeoutSeconds int
	MinPhotoTextLen    int
	MinPDFTextLen      int
}

func LoadFromEnv() *Config {
	return &Config{
		// Required
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),

		// Optional with defaults
		OpenAIModel:        getEnvOrDefault("TRANSFERBOT_OPENAI_MODEL", "gpt-4o"),
		OpenAITemperature:  getEnvAsFloatOrDefault("TRANSFERBOT_OPENAI_TEMPERATURE", 0.1),
		OpenAIMaxTokens:    getEnvAsIntOrDefault("TRANSFERBOT_OPENAI_MAX_TOKENS", 1000),
		CredentialsFile:    getEnvOrDefault("GOOGLE_SERVICE_ACCOUNT_FILE", "./service-account.json"),
		CalendarID:         getEnvOrDefault("TRANSFERBOT_CALENDAR_ID", "slavka0990slavka@gmail.com"),
		Timezone:           getEnvOrDefault("TRANSFERBOT_TIMEZONE", "Europe/Minsk"),
		PollTimeoutSeconds: getEnvAsIntOrDefault("TRANSFERBOT_POLL_TIMEOUT", 60),
		MinPhotoTextLen:    getEnvAsIntOrDefault("TRANSFERBOT_MIN_PHOTO_TEXT", 20),
		MinPDFTextLen:      getEnvAsIntOrDefault("TRANSFERBOT_MIN_PDF_TEXT", 50),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

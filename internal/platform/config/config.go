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
	APIPort string
	JWTKey  []byte
	JWTExp  time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	NotificationQueueName string
	NotificationDedupeTTL time.Duration

	MaxScore             int
	EagerProgressPriming bool

	AdminEmail   string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string

	MediaRoot    string
	MediaURL     string
	MaxUploadMB  int
	CORSOrigins  []string
	LogMode      string
	ServiceName  string
	OtelEnabled  bool
	OtelExporter string

	LeetCodeGraphQLURL string
	LLMBaseURL         string
	LLMAPIKey          string
	LLMModel           string
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = &Config{
		APIPort:               getEnv("API_PORT", "8000"),
		JWTKey:                []byte(getEnv("JWT_SECRET", "defaultsecret")),
		JWTExp:                time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 72)) * time.Hour,
		DBHost:                getEnv("DB_HOST", "localhost"),
		DBPort:                getEnv("DB_PORT", "5432"),
		DBUser:                getEnv("DB_USER", "user"),
		DBPassword:            getEnv("DB_PASSWORD", "password"),
		DBName:                getEnv("DB_NAME", "dsa_arena"),
		DBSslMode:             getEnv("DB_SSLMODE", "disable"),
		RedisAddr:             getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:         getEnv("REDIS_PASSWORD", ""),
		RedisDB:               getEnvAsInt("REDIS_DB", 0),
		NotificationQueueName: getEnv("NOTIFICATION_QUEUE_NAME", "notification_jobs_queue"),
		NotificationDedupeTTL: time.Duration(getEnvAsInt("NOTIFICATION_DEDUPE_TTL_HOURS", 24)) * time.Hour,
		MaxScore:              getEnvAsInt("MAX_SCORE", 1985),
		EagerProgressPriming:  getEnvAsBool("EAGER_PROGRESS_PRIMING", false),
		AdminEmail:            getEnv("ADMIN_EMAIL", "admin@localhost"),
		SMTPHost:              getEnv("SMTP_HOST", ""),
		SMTPPort:              getEnvAsInt("SMTP_PORT", 587),
		SMTPUsername:          getEnv("SMTP_USERNAME", ""),
		SMTPPassword:          getEnv("SMTP_PASSWORD", ""),
		FromEmail:             getEnv("FROM_EMAIL", "noreply@localhost"),
		MediaRoot:             getEnv("MEDIA_ROOT", "./media"),
		MediaURL:              getEnv("MEDIA_URL", "/media/"),
		MaxUploadMB:           getEnvAsInt("MAX_UPLOAD_MB", 5),
		CORSOrigins:           getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		LogMode:               getEnv("LOG_MODE", "dev"),
		ServiceName:           getEnv("SERVICE_NAME", "dsa-arena"),
		OtelEnabled:           getEnvAsBool("OTEL_ENABLED", false),
		OtelExporter:          getEnv("OTEL_EXPORTER", "stdout"),
		LeetCodeGraphQLURL:    getEnv("LEETCODE_GRAPHQL_URL", "https://leetcode.com/graphql"),
		LLMBaseURL:            getEnv("LLM_BASE_URL", "https://api.openai.com"),
		LLMAPIKey:             getEnv("LLM_API_KEY", ""),
		LLMModel:              getEnv("LLM_MODEL", "gpt-4o-mini"),
	}

	AppConfig.DBConnStr = "host=" + AppConfig.DBHost +
		" port=" + AppConfig.DBPort +
		" user=" + AppConfig.DBUser +
		" password=" + AppConfig.DBPassword +
		" dbname=" + AppConfig.DBName +
		" sslmode=" + AppConfig.DBSslMode
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}

// getEnvAsList splits a comma-separated value, dropping empty entries.
func getEnvAsList(key string, fallback []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort string

	// StoreDriver selects the document store backend: redis, postgres or memory.
	StoreDriver string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	NotifyQueueName      string
	NotifyDeadLetterName string

	SendGridAPIKey string
	MailFrom       string
	OpsAlertEmail  string
	VerifyBaseURL  string
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = &Config{
		APIPort:     getEnv("API_PORT", "3000"),
		StoreDriver: getEnv("STORE_DRIVER", "redis"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "user"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "safecommute_db"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		NotifyQueueName:      getEnv("NOTIFY_QUEUE_NAME", "notify_mail_queue"),
		NotifyDeadLetterName: getEnv("NOTIFY_DEADLETTER_NAME", "notify_mail_deadletter"),

		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		MailFrom:       getEnv("MAIL_FROM", "disvelop@proton.me"),
		OpsAlertEmail:  getEnv("OPS_ALERT_EMAIL", "man4v@proton.me"),
		VerifyBaseURL:  getEnv("VERIFY_BASE_URL", "https://safecommute.web.app/auth/"),
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

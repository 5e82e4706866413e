package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL   string
	AwsAccessKey  string
	AwsSecretKey  string
	AwsRegion     string
	BucketName    string
	SslCertPath   string
	Port          string
	TesseractPath string
	OCRLang       string
	OCRWorkers    int
	OCRQueueSize  int
	OCRTimeoutSec int
	TmpDir        string
}

// LoadConfig loads the environment variables and return config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		AwsAccessKey:  getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey:  getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:     getEnv("AWS_REGION", "us-east-2"),
		BucketName:    getEnv("BUCKET_NAME", "vaultive-files"),
		SslCertPath:   getEnv("SSL_CERT_PATH", ""),
		Port:          getEnv("PORT", "8080"),
		TesseractPath: getEnv("TESSERACT_PATH", "tesseract"),
		OCRLang:       getEnv("OCR_DEFAULT_LANG", "eng"),
		OCRWorkers:    getEnvInt("OCR_WORKERS", 4),
		OCRQueueSize:  getEnvInt("OCR_QUEUE_SIZE", 64),
		OCRTimeoutSec: getEnvInt("OCR_TIMEOUT_SEC", 120),
		TmpDir:        getEnv("TMP_DIR", ""),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

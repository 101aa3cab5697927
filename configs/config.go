package configs

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisAddr string

	ServerPort      string
	NumberOfWorkers int

	JWTSecret string

	// External execution service (Judge0-compatible API)
	Judge0URL          string
	Judge0APIHost      string
	Judge0APIKey       string
	Judge0TimeoutSec   int
	FallbackLanguageID int
}

func LoadConfig() *Config {
	err := godotenv.Load()

	if err != nil {
		log.Fatal("Error loading .env file", err)
	}

	numWorkerInt, _ := strconv.Atoi(os.Getenv("NUM_OF_WORKERS"))
	if numWorkerInt <= 0 {
		numWorkerInt = 4
	}

	timeoutSec, _ := strconv.Atoi(os.Getenv("JUDGE0_TIMEOUT_SECONDS"))
	if timeoutSec <= 0 {
		timeoutSec = 30
	}

	fallbackLang, _ := strconv.Atoi(os.Getenv("FALLBACK_LANGUAGE_ID"))
	if fallbackLang <= 0 {
		fallbackLang = 71 // Python 3
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	return &Config{
		DBHost:             os.Getenv("DB_HOST"),
		DBPort:             os.Getenv("DB_PORT"),
		DBUser:             os.Getenv("DB_USER"),
		DBPassword:         os.Getenv("DB_PASSWORD"),
		DBName:             os.Getenv("DB_NAME"),
		RedisAddr:          redisAddr,
		ServerPort:         os.Getenv("SERVER_PORT"),
		NumberOfWorkers:    numWorkerInt,
		JWTSecret:          os.Getenv("JWT_SECRET"),
		Judge0URL:          os.Getenv("JUDGE0_API_URL"),
		Judge0APIHost:      os.Getenv("JUDGE0_API_HOST"),
		Judge0APIKey:       os.Getenv("JUDGE0_API_KEY"),
		Judge0TimeoutSec:   timeoutSec,
		FallbackLanguageID: fallbackLang,
	}
}

package configs

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost          string
	DBPort          string
	DBUser          string
	DBPassword      string
	DBName          string
	RedisAddr       string
	RedisDB         int
	ServerPort      string
	NumberOfWorkers int
	JudgeWorkDir    string

	// Fallback limits used when a problem does not declare its own.
	DefaultTimeLimitMs      int64
	DefaultMemoryLimitBytes int64
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, relying on environment: %v", err)
	}

	numWorkers, _ := strconv.Atoi(os.Getenv("NUM_OF_WORKERS"))
	if numWorkers <= 0 {
		numWorkers = 4
	}

	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))

	timeLimit, _ := strconv.ParseInt(os.Getenv("DEFAULT_TIME_LIMIT_MS"), 10, 64)
	if timeLimit <= 0 {
		timeLimit = 2000
	}

	memLimit, _ := strconv.ParseInt(os.Getenv("DEFAULT_MEMORY_LIMIT_BYTES"), 10, 64)
	if memLimit <= 0 {
		memLimit = 256 << 20
	}

	workDir := os.Getenv("JUDGE_WORK_DIR")
	if workDir == "" {
		workDir = "/tmp/code-execution"
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	return &Config{
		DBHost:                  os.Getenv("DB_HOST"),
		DBPort:                  os.Getenv("DB_PORT"),
		DBUser:                  os.Getenv("DB_USER"),
		DBPassword:              os.Getenv("DB_PASSWORD"),
		DBName:                  os.Getenv("DB_NAME"),
		RedisAddr:               redisAddr,
		RedisDB:                 redisDB,
		ServerPort:              os.Getenv("SERVER_PORT"),
		NumberOfWorkers:         numWorkers,
		JudgeWorkDir:            workDir,
		DefaultTimeLimitMs:      timeLimit,
		DefaultMemoryLimitBytes: memLimit,
	}
}

package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Commit modes for the invoice commit transaction.
const (
	CommitAtomic = "atomic"
	CommitLegacy = "legacy"
)

// Config holds application configuration.
type Config struct {
	Port              string
	BaseURL           string
	DBDriver          string
	DBDSN             string
	DBConnectRetries  int
	LogLevel          string
	JWTSecret         string
	JWTTTLHours       int
	AllowRegistration bool
	CORSOrigins       []string
	RedisAddr         string
	LoginRateLimit    int
	GeminiAPIKey      string
	CommitMode        string
	PointsCapMode     string
	SnowflakeNode     int64
	AdminUsername     string
	AdminPassword     string
	UploadDir         string
	WebDir            string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found")
	}

	driver := strings.ToLower(getenv("DB_DRIVER", "mysql"))
	dsn := getenv("DB_DSN", "")
	if dsn == "" && driver == "sqlite" {
		dsn = "pos.db"
	}

	commitMode := strings.ToLower(getenv("COMMIT_MODE", CommitAtomic))
	if commitMode != CommitLegacy {
		commitMode = CommitAtomic
	}

	return Config{
		Port:              getenv("PORT", "8080"),
		BaseURL:           getenv("BASE_URL", "http://localhost:8080"),
		DBDriver:          driver,
		DBDSN:             dsn,
		DBConnectRetries:  getenvInt("DB_CONNECT_RETRIES", 5),
		LogLevel:          getenv("LOG_LEVEL", "info"),
		JWTSecret:         getenv("JWT_SECRET", "change_me_pos_secret"),
		JWTTTLHours:       getenvInt("JWT_TTL_HOURS", 24),
		AllowRegistration: getenvBool("ALLOW_REGISTRATION", false),
		CORSOrigins:       splitList(getenv("CORS_ORIGINS", "http://localhost:5173")),
		RedisAddr:         strings.TrimSpace(getenv("REDIS_ADDR", "")),
		LoginRateLimit:    getenvInt("LOGIN_RATE_LIMIT", 5),
		GeminiAPIKey:      strings.TrimSpace(getenv("GEMINI_API_KEY", "")),
		CommitMode:        commitMode,
		PointsCapMode:     getenv("POINTS_CAP_MODE", "per_row"),
		SnowflakeNode:     int64(getenvInt("SNOWFLAKE_NODE", -1)),
		AdminUsername:     strings.TrimSpace(getenv("ADMIN_USERNAME", "")),
		AdminPassword:     getenv("ADMIN_PASSWORD", ""),
		UploadDir:         getenv("UPLOAD_DIR", "./uploads"),
		WebDir:            getenv("WEB_DIR", "./web"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr       string
	DBPath           string
	APIBaseURL       string
	APITimeout       time.Duration
	MediaStagingPath string
	LogLevel         string
	LogFile          string
	JWTSecret        string
	DraftTTL         time.Duration
	CookieSecure     bool
	TestMode         bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first; variables already set in the environment win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ListenAddr:       getEnv("LISTEN_ADDR", ":8080"),
		DBPath:           getEnv("DB_PATH", "/data/briefdesk.db"),
		APIBaseURL:       getEnv("API_BASE_URL", "http://localhost:4000/api"),
		APITimeout:       getDuration("API_TIMEOUT", 30*time.Second),
		MediaStagingPath: getEnv("MEDIA_STAGING_PATH", "/data/staging"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFile:          getEnv("LOG_FILE", ""),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		DraftTTL:         getDuration("DRAFT_TTL", 24*time.Hour),
		CookieSecure:     getBool("COOKIE_SECURE", false),
		TestMode:         os.Getenv("BRIEFDESK_TEST_MODE") == "1",
	}
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func getBool(key string, defaultVal bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultVal
	}
	return b
}

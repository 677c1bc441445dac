package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig holds environment driven configuration values. Secrets must come
// from the environment; there are no in-code defaults for them.
type AppConfig struct {
	AppPort   string
	GinMode   string
	JWTSecret string
	TokenTTL  int // minutes

	// Anonymous viewer. Zero disables anonymous access entirely; requests
	// without credentials then fail authentication on protected routes.
	AnonViewerID uint
	AnonCanPost  bool

	// Permission gate. When disabled every check passes (explicit opt-out).
	PermissionsEnabled bool
	RestrictedActions  []string

	// Content store backend: "mysql" or "memory".
	DBDriver    string
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string

	RedisHost       string
	RedisPort       int
	RedisDB         int
	RedisPassword   string
	CacheTTLSeconds int

	RateLimitPerMinute int
	AllowedOrigins     []string

	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

var cfg AppConfig
var loaded bool

// Load reads configuration once during boot: .env file first, then
// environment variable overrides.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	_ = godotenv.Load()

	cfg = AppConfig{
		AppPort:   getEnv("APP_PORT", "8080"),
		GinMode:   getEnv("GIN_MODE", "release"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		TokenTTL:  getEnvInt("TOKEN_TTL_MINUTES", 60*24),

		AnonViewerID: uint(getEnvInt("ANON_VIEWER_ID", 0)),
		AnonCanPost:  getEnvBool("ANON_CAN_POST", false),

		PermissionsEnabled: getEnvBool("PERMISSIONS_ENABLED", false),
		RestrictedActions:  getEnvList("RESTRICTED_ACTIONS"),

		DBDriver:    getEnv("DB_DRIVER", "mysql"),
		DatabaseURI: os.Getenv("DATABASE_URI"),
		DBHost:      getEnv("DB_HOST", "127.0.0.1"),
		DBPort:      getEnv("DB_PORT", "3306"),
		DBUser:      getEnv("DB_USER", "askora"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBName:      getEnv("DB_NAME", "askora"),

		RedisHost:       getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:       getEnvInt("REDIS_PORT", 6379),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		CacheTTLSeconds: getEnvInt("CACHE_TTL_SECONDS", 3600),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		AllowedOrigins:     getEnvList("ALLOWED_ORIGINS"),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogPath:       getEnv("LOG_PATH", "logs/askora.log"),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 100),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 7),
		LogCompress:   getEnvBool("LOG_COMPRESS", false),
	}

	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set in environment variables")
	}

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// Set replaces the cached configuration. Intended for tests.
func Set(c AppConfig) {
	cfg = c
	loaded = true
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvList(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

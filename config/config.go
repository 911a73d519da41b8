package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Dosada05/rank-ladder/storage"
)

type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	// DBLockTimeout bounds how long an outcome transaction waits for row locks.
	DBLockTimeout time.Duration
	NotifyTimeout time.Duration

	DiscordRelayURL   string
	DiscordRelayToken string

	R2 storage.CloudflareR2UploaderConfig

	CORSAllowedOrigins []string
	MigrateOnStart     bool
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv.
func FromEnv(getenv func(string) string) (*Config, error) {
	dbURL := getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	portStr := getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	lockTimeout, err := durationEnv(getenv, "DB_LOCK_TIMEOUT", 5*time.Second, time.Millisecond)
	if err != nil {
		return nil, err
	}
	notifyTimeout, err := durationEnv(getenv, "NOTIFY_TIMEOUT", 10*time.Second, 0)
	if err != nil {
		return nil, err
	}

	migrateOnStart := false
	if v := getenv("MIGRATE_ON_START"); v != "" {
		migrateOnStart, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid MIGRATE_ON_START environment variable: %w", err)
		}
	}

	cfg := &Config{
		DatabaseURL:       dbURL,
		JWTSecretKey:      jwtKey,
		ServerPort:        port,
		DBLockTimeout:     lockTimeout,
		NotifyTimeout:     notifyTimeout,
		DiscordRelayURL:   strings.TrimSpace(getenv("DISCORD_RELAY_URL")),
		DiscordRelayToken: getenv("DISCORD_RELAY_TOKEN"),
		R2: storage.CloudflareR2UploaderConfig{
			AccountID:       getenv("R2_ACCOUNT_ID"),
			AccessKeyID:     getenv("R2_ACCESS_KEY_ID"),
			SecretAccessKey: getenv("R2_SECRET_ACCESS_KEY"),
			BucketName:      getenv("R2_BUCKET_NAME"),
			PublicBaseURL:   getenv("R2_PUBLIC_BASE_URL"),
		},
		CORSAllowedOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS"), []string{"*"}),
		MigrateOnStart:     migrateOnStart,
	}

	return cfg, nil
}

func (c *Config) DiscordRelayEnabled() bool {
	return c.DiscordRelayURL != ""
}

// durationEnv parses key as a positive duration of at least atLeast.
func durationEnv(getenv func(string) string, key string, fallback, atLeast time.Duration) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, d)
	}
	if d < atLeast {
		return 0, fmt.Errorf("%s must be at least %s, got %s", key, atLeast, d)
	}
	return d, nil
}

func splitList(v string, fallback []string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

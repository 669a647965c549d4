package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every environment-driven setting. It is loaded once in the
// composition root and passed by value to whoever needs it.
type Config struct {
	BaseURL      string
	Port         string
	DatabasePath string

	SessionSecret string

	DiscordClientID     string
	DiscordClientSecret string
	DiscordBotToken     string
	DiscordGuildID      string
	DiscordAPIBase      string

	NotifyChannelID string
	PanelChannelID  string

	EnablePasswordLogin bool
	AdminPassword       string
	AdminPasswordHash   string

	// disable, white (role required) or black (role denies).
	PermissionMode   string
	PermissionRoleID string

	PasswordSessionTTL time.Duration
	DiscordSessionTTL  time.Duration

	LockoutMaxAttempts int
	LockoutWindow      time.Duration
	AttemptRetention   time.Duration

	GlobalRateLimit  int // requests per minute per IP
	AuthRateLimit    int // requests per 15 minutes per IP on auth endpoints
	AuthRateWindow   time.Duration
	GlobalRateWindow time.Duration

	Timezone *time.Location
}

// Load reads .env if present and builds the Config from the environment.
func Load() Config {
	_ = godotenv.Load()

	port := getEnv("PORT", "4040")

	cfg := Config{
		BaseURL:      getEnv("BASE_URL", "http://localhost:"+port),
		Port:         port,
		DatabasePath: getEnv("DATABASE_PATH", "data/todo.db"),

		SessionSecret: getEnv("SESSION_SECRET", "development-insecure-secret-change-me"),

		DiscordClientID:     os.Getenv("DISCORD_CLIENT_ID"),
		DiscordClientSecret: os.Getenv("DISCORD_CLIENT_SECRET"),
		DiscordBotToken:     os.Getenv("DISCORD_TOKEN"),
		DiscordGuildID:      os.Getenv("DISCORD_GUILD_ID"),
		DiscordAPIBase:      getEnv("DISCORD_API_BASE", "https://discord.com/api/v10"),

		NotifyChannelID: os.Getenv("NOTIFY_CHANNEL_ID"),
		PanelChannelID:  os.Getenv("PANEL_CHANNEL_ID"),

		EnablePasswordLogin: getEnvAsBool("ENABLE_PASSWORD_LOGIN", false),
		AdminPassword:       os.Getenv("ADMIN_PASSWORD"),
		AdminPasswordHash:   os.Getenv("ADMIN_PASSWORD_HASH"),

		PermissionMode:   strings.ToLower(getEnv("PERMISSION_MODE", "disable")),
		PermissionRoleID: os.Getenv("PERMISSION_ROLE_ID"),

		PasswordSessionTTL: time.Duration(getEnvAsInt("PASSWORD_SESSION_HOURS", 24)) * time.Hour,
		DiscordSessionTTL:  time.Duration(getEnvAsInt("DISCORD_SESSION_HOURS", 7*24)) * time.Hour,

		LockoutMaxAttempts: getEnvAsInt("LOGIN_MAX_ATTEMPTS", 5),
		LockoutWindow:      time.Duration(getEnvAsInt("LOGIN_LOCKOUT_MINUTES", 15)) * time.Minute,
		AttemptRetention:   time.Duration(getEnvAsInt("LOGIN_ATTEMPT_RETENTION_HOURS", 24)) * time.Hour,

		GlobalRateLimit:  getEnvAsInt("RATE_LIMIT_PER_MINUTE", 200),
		GlobalRateWindow: time.Minute,
		AuthRateLimit:    getEnvAsInt("AUTH_RATE_LIMIT", 20),
		AuthRateWindow:   15 * time.Minute,

		Timezone: loadTimezone(getEnv("TIMEZONE", "Asia/Tokyo")),
	}

	validate(cfg)
	return cfg
}

func validate(cfg Config) {
	if cfg.LockoutMaxAttempts <= 0 {
		log.Fatal("LOGIN_MAX_ATTEMPTS must be greater than 0")
	}
	if cfg.GlobalRateLimit <= 0 {
		log.Fatal("RATE_LIMIT_PER_MINUTE must be greater than 0")
	}
	if cfg.AuthRateLimit <= 0 {
		log.Fatal("AUTH_RATE_LIMIT must be greater than 0")
	}
	switch cfg.PermissionMode {
	case "disable", "white", "black":
	default:
		log.Fatalf("invalid PERMISSION_MODE %q (want disable, white or black)", cfg.PermissionMode)
	}
}

func loadTimezone(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("invalid TIMEZONE %q, falling back to UTC: %v", name, err)
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("invalid integer value for %s", key)
		}
		return i
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return defaultVal
}

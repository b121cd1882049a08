package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds everything the data-access layer needs at startup. It is
// constructed once and passed down explicitly; components never read the
// environment themselves.
type Config struct {
	APIPort int

	// RedisURL empty means caching is disabled, not an error.
	RedisURL string

	// AllowFallback controls whether a failed primary transport may fall
	// back to the direct in-process client.
	AllowFallback bool

	// CallTimeout bounds each primary transport call.
	CallTimeout time.Duration

	// ToolServerBin is the stdio tool server binary the gateway spawns.
	ToolServerBin string

	DoorloopAPIKey      string
	DoorloopAPIBase     string
	ConnecteamAPIKey    string
	ConnecteamAPIBase   string
	ConnecteamTaskboard string

	TenantRefreshInterval   time.Duration
	PropertyRefreshInterval time.Duration

	Debug bool
}

func Load() (*Config, error) {
	cfg := &Config{
		APIPort:             getEnvIntOrDefault("API_PORT", 8080),
		RedisURL:            os.Getenv("REDIS_URL"),
		AllowFallback:       getEnvBoolOrDefault("ALLOW_FALLBACK", true),
		CallTimeout:         time.Duration(getEnvIntOrDefault("CALL_TIMEOUT_SECONDS", 30)) * time.Second,
		ToolServerBin:       getEnvOrDefault("TOOL_SERVER_BIN", "./toolserver"),
		DoorloopAPIKey:      os.Getenv("DOORLOOP_API_KEY"),
		DoorloopAPIBase:     getEnvOrDefault("DOORLOOP_API_BASE", "https://app.doorloop.com"),
		ConnecteamAPIKey:    os.Getenv("CONNECTTEAM_API_KEY"),
		ConnecteamAPIBase:   getEnvOrDefault("CONNECTTEAM_API_BASE", "https://api.connecteam.com"),
		ConnecteamTaskboard: os.Getenv("CONNECTEAM_TASKBOARD_ID"),

		TenantRefreshInterval:   time.Duration(getEnvIntOrDefault("TENANT_REFRESH_MINUTES", 30)) * time.Minute,
		PropertyRefreshInterval: time.Duration(getEnvIntOrDefault("PROPERTY_REFRESH_MINUTES", 60)) * time.Minute,

		Debug: getEnvBoolOrDefault("DEBUG", false),
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

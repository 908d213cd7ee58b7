package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr  string
	PublicURL string

	DBDriver string
	DBDSN    string

	// TimeZone is the zone exam windows are defined in. Schedule dates and
	// times carry no zone of their own; comparisons attach this location.
	TimeZone string

	UploadBasePath string

	AuthSecret      string
	TokenTTL        time.Duration
	CORSOrigins     []string
	EnableLocalAuth bool
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:        addr,
		PublicURL:       os.Getenv("PUBLIC_URL"),
		DBDriver:        envOr("DB_DRIVER", "sqlite"),
		DBDSN:           envOr("DB_DSN", ""),
		TimeZone:        envOr("TIME_ZONE", "UTC"),
		UploadBasePath:  envOr("UPLOAD_BASE_PATH", "./data/uploads"),
		AuthSecret:      envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		TokenTTL:        envDuration("TOKEN_TTL", 8*time.Hour),
		CORSOrigins:     csvOr("CORS_ORIGINS", "http://localhost:3000"),
		EnableLocalAuth: envBool("ENABLE_LOCAL_AUTH", true),
	}
}

// Location resolves the configured zone. Callers must treat an error as
// fatal: eligibility checks fail closed without a valid location.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.TimeZone)
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envDuration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

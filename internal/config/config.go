package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. Required variables (database coordinates, the
// JWT signing secret) abort startup when missing; token lifetimes and the
// bcrypt cost fall back to the defaults the application was designed
// around (7-day access tokens, 30-day refresh tokens, cost 10).
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLDays  int    // access token time-to-live in days
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing
}

// AccessTTL returns the access token lifetime as a duration.
func (c Config) AccessTTL() time.Duration {
	return time.Duration(c.AccessTTLDays) * 24 * time.Hour
}

// RefreshTTL returns the refresh token lifetime as a duration.
func (c Config) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshTTLDays) * 24 * time.Hour
}

// Load reads configuration values from environment variables and returns a
// Config. Missing required variables cause the process to exit with a
// fatal log message.
func Load() Config {
	return Config{
		Env:            envStr("APP_ENV", "dev"),
		Port:           envStr("APP_PORT", "3000"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLDays:  envInt("ACCESS_TOKEN_TTL_DAYS", 7),
		RefreshTTLDays: envInt("REFRESH_TOKEN_TTL_DAYS", 30),
		BcryptCost:     envInt("BCRYPT_COST", 10),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func envBool(key string, def bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return b
}

func envDur(key string, def time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const DefaultPort = "5000"

type Config struct {
	Port string

	// StoreURL wins over the DB_* parameters below.
	StoreURL string

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string

	MongoDatabase   string
	MongoCollection string

	CORSOrigins    []string
	StrictPriority bool
	MaxConns       int

	// StoreHeartbeat is how often the store is pinged; 0 disables it.
	StoreHeartbeat time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present; real env vars take precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(k string) string { return strings.TrimSpace(getenv(k)) }

	port := get("PORT")
	if port == "" {
		port = DefaultPort
	}

	dbPort, err := strconv.Atoi(get("DB_PORT"))
	if err != nil {
		dbPort = 5432 // fallback
	}

	storeURL := get("STORE_URL")
	if storeURL == "" {
		storeURL = get("MONGO_URI")
	}

	cfg := &Config{
		Port:     port,
		StoreURL: storeURL,

		DBHost:     get("DB_HOST"),
		DBPort:     dbPort,
		DBUser:     get("DB_USER"),
		DBPassword: getenv("DB_PASSWORD"),
		DBName:     get("DB_NAME"),

		MongoDatabase:   get("MONGO_DB"),
		MongoCollection: get("MONGO_COLLECTION"),

		CORSOrigins: splitList(get("CORS_ORIGIN")),
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}

	if v := get("STRICT_PRIORITY"); v != "" {
		cfg.StrictPriority, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("STRICT_PRIORITY: %w", err)
		}
	}
	if v := get("MAX_CONNS"); v != "" {
		cfg.MaxConns, err = strconv.Atoi(v)
		if err != nil || cfg.MaxConns < 0 {
			return nil, fmt.Errorf("MAX_CONNS must be a non-negative integer, got %q", v)
		}
	}
	if v := get("STORE_HEARTBEAT"); v != "" {
		cfg.StoreHeartbeat, err = time.ParseDuration(v)
		if err != nil || cfg.StoreHeartbeat < 0 {
			return nil, fmt.Errorf("STORE_HEARTBEAT must be a non-negative duration, got %q", v)
		}
	}

	if cfg.StoreLocation() == "" {
		return nil, fmt.Errorf("STORE_URL (or MONGO_URI, or DB_HOST) is required")
	}
	return cfg, nil
}

// StoreLocation is the connection string handed to db.Open. Without a
// STORE_URL it falls back to a Postgres URL built from DB_*.
func (c *Config) StoreLocation() string {
	if c.StoreURL != "" {
		return c.StoreURL
	}
	if c.DBHost == "" {
		return ""
	}
	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(c.DBHost, strconv.Itoa(c.DBPort)),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=disable",
	}
	if c.DBUser != "" {
		u.User = url.UserPassword(c.DBUser, c.DBPassword)
	}
	return u.String()
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

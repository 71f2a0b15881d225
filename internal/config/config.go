package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DBConfig holds the optional history database configuration
type DBConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Config holds all configuration for the application
type Config struct {
	APIKey      string
	BaseURL     string
	HTTPTimeout time.Duration
	WaitTimeout time.Duration
	OutputDir   string
	Verbose     bool
	DB          DBConfig
}

// Load loads the configuration from the environment, reading a .env file in
// the working directory first when one exists
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only
func FromEnv() (*Config, error) {
	config := &Config{
		APIKey:      os.Getenv("DIFFUSION_API_KEY"),
		BaseURL:     envString("DIFFUSION_BASE_URL", "https://diffusion.to"),
		HTTPTimeout: envSeconds("DIFFUSION_HTTP_TIMEOUT", 30*time.Second),
		WaitTimeout: envSeconds("DIFFUSION_WAIT_TIMEOUT", 5*time.Minute),
		OutputDir:   os.Getenv("OUTPUT_DIR"),
		Verbose:     envBool("LOG_VERBOSE"),
	}

	config.DB = DBConfig{
		Host:            os.Getenv("DB_HOST"),
		Port:            envInt("DB_PORT", 5432),
		User:            os.Getenv("DB_USER"),
		Password:        os.Getenv("DB_PASSWORD"),
		Database:        os.Getenv("DB_NAME"),
		SSLMode:         envString("DB_SSL_MODE", "disable"),
		MaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 5),
		MaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: envSeconds("DB_CONN_MAX_LIFETIME", 5*time.Minute),
	}

	// History is optional, but a half configured database is a mistake
	if config.HistoryEnabled() {
		if config.DB.User == "" {
			return nil, fmt.Errorf("DB_USER is required when DB_HOST is set")
		}
		if config.DB.Database == "" {
			return nil, fmt.Errorf("DB_NAME is required when DB_HOST is set")
		}
	}

	return config, nil
}

// HistoryEnabled reports whether a history database is configured
func (c *Config) HistoryEnabled() bool {
	return c.DB.Host != ""
}

// GetDSN returns the PostgreSQL connection URL. An empty password is left out
// so the server can fall back to trust or .pgpass authentication.
func (c *Config) GetDSN() string {
	user := url.User(c.DB.User)
	if c.DB.Password != "" {
		user = url.UserPassword(c.DB.User, c.DB.Password)
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     user,
		Host:     net.JoinHostPort(c.DB.Host, strconv.Itoa(c.DB.Port)),
		Path:     "/" + c.DB.Database,
		RawQuery: url.Values{"sslmode": {c.DB.SSLMode}}.Encode(),
	}
	return u.String()
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func envSeconds(key string, def time.Duration) time.Duration {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return time.Duration(v) * time.Second
	}
	return def
}

func envBool(key string) bool {
	v, _ := strconv.ParseBool(os.Getenv(key))
	return v
}

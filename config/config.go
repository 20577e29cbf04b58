package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string

	// CORS configuration
	AllowedOrigins []string
}

// LoadConfig builds a Config from the environment. Every value can come from
// an environment variable or a Docker secret of the same lowercased name;
// the variable wins when both are set. Development and test get local
// defaults so the server starts with nothing configured.
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	cfg := &Config{
		ServerPort:     lookup("SERVER_PORT", "8080"),
		ServerHost:     lookup("SERVER_HOST", "0.0.0.0"),
		DBHost:         lookup("DB_HOST", "localhost"),
		DBPort:         lookup("DB_PORT", "5432"),
		DBUser:         lookup("DB_USER", "postgres"),
		DBPassword:     lookup("DB_PASSWORD", ""),
		DBName:         lookup("DB_NAME", "souschef"),
		DBSSLMode:      lookup("DB_SSL_MODE", "disable"),
		RedisHost:      lookup("REDIS_HOST", "localhost"),
		RedisPort:      lookup("REDIS_PORT", "6379"),
		RedisPassword:  lookup("REDIS_PASSWORD", ""),
		RedisURL:       lookup("REDIS_URL", ""),
		JWTSecret:      lookup("JWT_SECRET", ""),
		AllowedOrigins: splitList(lookup("ALLOWED_ORIGINS", "")),
	}

	if db := lookup("REDIS_DB", "0"); db != "" {
		n, err := strconv.Atoi(db)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB value %q: %w", db, err)
		}
		cfg.RedisDB = n
	}

	if cfg.JWTSecret == "" {
		if env == Production || env == CI {
			return nil, fmt.Errorf("JWT_SECRET (or the jwt_secret secret) is required in %s", env)
		}
		cfg.JWTSecret = "development-secret"
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// lookup resolves a config value: environment variable, then the Docker
// secret with the lowercased name, then the default
func lookup(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	if v := readSecret(strings.ToLower(name)); v != "" {
		return v
	}
	return fallback
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

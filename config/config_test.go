package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvironment(t *testing.T) {
	unset := func(name string) {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}

	// CI wins over ENV
	t.Setenv("CI", "true")
	t.Setenv("ENV", "production")
	assert.Equal(t, CI, GetEnvironment())

	unset("CI")
	assert.Equal(t, Production, GetEnvironment())
	assert.True(t, IsProduction())

	unset("ENV")
	assert.Equal(t, Development, GetEnvironment())
	assert.False(t, IsProduction())
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_USER", "souschef")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "souschef_test")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:5173, https://app.example.com")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, "5433", cfg.DBPort)
	assert.Equal(t, "souschef", cfg.DBUser)
	assert.Equal(t, "secret", cfg.DBPassword)
	assert.Equal(t, "souschef_test", cfg.DBName)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.Equal(t, []string{"http://localhost:5173", "https://app.example.com"}, cfg.AllowedOrigins)
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("SECRETS_DIR", t.TempDir())
	for _, name := range []string{"CI", "SERVER_PORT", "DB_HOST", "DB_NAME", "JWT_SECRET", "REDIS_HOST", "ALLOWED_ORIGINS"} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "souschef", cfg.DBName)
	assert.Equal(t, "development-secret", cfg.JWTSecret)
	assert.Nil(t, cfg.AllowedOrigins)
}

func TestLoadConfigSecretFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jwt_secret"), []byte("from-secret\n"), 0o600))

	t.Setenv("ENV", "development")
	t.Setenv("SECRETS_DIR", dir)
	for _, name := range []string{"CI", "JWT_SECRET"} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-secret", cfg.JWTSecret)
}

func TestLoadConfigProductionRequiresSecrets(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("SECRETS_DIR", t.TempDir())
	for _, name := range []string{"JWT_SECRET", "DB_PASSWORD"} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}

	_, err := LoadConfig()
	assert.Error(t, err)
}

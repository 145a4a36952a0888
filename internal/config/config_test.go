package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("CORS_ORIGIN", "")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, "http://localhost:3000", cfg.CORSOrigin)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/budget")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "postgres://u:p@db:5432/budget", cfg.DatabaseURL)
}

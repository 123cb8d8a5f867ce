package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/loyalty-console/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.test")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.test/api/v1", cfg.API.Endpoint())
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	assert.Equal(t, 3000, cfg.HTTP.Port)
	assert.Equal(t, "0.0.0.0:3000", cfg.HTTP.Addr())
	assert.Equal(t, "IDR", cfg.Display.Currency)
}

func TestLoad_EnvSobrescribe(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://localhost:9000/api/v1/")
	t.Setenv("API_TIMEOUT_SECONDS", "3")
	t.Setenv("HTTP_PORT", "8181")
	t.Setenv("CONSOLE_CURRENCY", "USD")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000/api/v1", cfg.API.Endpoint(), "no debe duplicar /api/v1")
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, 8181, cfg.HTTP.Port)
	assert.Equal(t, "USD", cfg.Display.Currency)
}

func TestLoad_PuertoInvalido(t *testing.T) {
	t.Setenv("HTTP_PORT", "-1")

	_, err := config.Load()
	assert.Error(t, err)
}

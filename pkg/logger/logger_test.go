package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/loyalty-console/pkg/logger"
)

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var out map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &out))
	return out
}

func TestNew_CamposBase(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "debug", Service: "loyalty-console", Output: &buf})

	log.Named("apiclient").Session("s-1", "admin").Debug().Msg("petición")

	got := lastLine(t, &buf)
	assert.Equal(t, "loyalty-console", got["service"])
	assert.Equal(t, "apiclient", got["component"])
	assert.Equal(t, "s-1", got["session"])
	assert.Equal(t, "admin", got["role"])
	assert.Equal(t, "debug", got["level"])
	assert.NotEmpty(t, got["time"])
}

func TestNew_NivelInvalidoEsInfo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "verbose", Output: &buf})

	log.Debug().Msg("oculto")
	assert.Zero(t, buf.Len())

	log.Info().Msg("visible")
	assert.Equal(t, "visible", lastLine(t, &buf)["message"])
}

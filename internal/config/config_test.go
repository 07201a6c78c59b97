package config

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/SAP-F-2025/question-import-service/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("IMPORT_BATCH_SIZE", "")
	t.Setenv("IMPORT_BATCH_DELAY", "")
	t.Setenv("EVENTS_ENABLED", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Import.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.Import.InterBatchDelay)
	assert.Equal(t, 30*time.Second, cfg.Import.RequestTimeout)
	assert.False(t, cfg.Events.Enabled)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("IMPORT_BATCH_SIZE", "25")
	t.Setenv("IMPORT_BATCH_DELAY", "0")
	t.Setenv("IMPORT_REQUEST_TIMEOUT", "5s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://lms.example.com, https://admin.example.com")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Import.BatchSize)
	assert.Equal(t, time.Duration(0), cfg.Import.InterBatchDelay)
	assert.Equal(t, 5*time.Second, cfg.Import.RequestTimeout)
	assert.Equal(t, []string{"https://lms.example.com", "https://admin.example.com"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.IsProduction())
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TEST_DELAY", "750")
	assert.Equal(t, 750*time.Millisecond, getEnvDuration("TEST_DELAY", time.Second))

	t.Setenv("TEST_DELAY", "2s")
	assert.Equal(t, 2*time.Second, getEnvDuration("TEST_DELAY", time.Second))

	t.Setenv("TEST_DELAY", "soon")
	assert.Equal(t, time.Second, getEnvDuration("TEST_DELAY", time.Second))
}

func TestCreateEventPublisher_Disabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg := EventConfig{Enabled: false}

	publisher, err := cfg.CreateEventPublisher(logger)
	require.NoError(t, err)
	assert.IsType(t, &events.MockEventPublisher{}, publisher)
}

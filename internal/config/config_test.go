package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gapcheck/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000/api", cfg.API.BaseURL)
	assert.Equal(t, 300*time.Second, cfg.API.Timeout)
	assert.Equal(t, int64(10), cfg.Upload.MaxFileSizeMB)
	assert.Equal(t, int64(10*1024*1024), cfg.Upload.MaxBytes())
	assert.Equal(t, 2*time.Second, cfg.Poller.Interval)
	assert.Equal(t, 90, cfg.Poller.MaxAttempts)
	assert.Equal(t, 10, cfg.Poller.GraceAttempts)
	assert.Equal(t, 5, cfg.Poller.MessageEvery)
	assert.Equal(t, "local", cfg.Export.Provider)
	assert.Equal(t, "noop", cfg.Email.Provider)
}

func TestDefaultPollerConfig_MatchesLoad(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.DefaultPollerConfig(), cfg.Poller)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GAPCHECK_API_BASE_URL", "https://gaps.example.com/api/")
	t.Setenv("GAPCHECK_POLLER_INTERVAL", "500ms")
	t.Setenv("GAPCHECK_POLLER_MAX_ATTEMPTS", "12")
	t.Setenv("GAPCHECK_POLLER_GRACE_ATTEMPTS", "3")
	t.Setenv("GAPCHECK_UPLOAD_MAX_FILE_SIZE_MB", "25")
	t.Setenv("GAPCHECK_EXPORT_PROVIDER", "s3")
	t.Setenv("GAPCHECK_S3_BUCKET", "custom-bucket")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "https://gaps.example.com/api", cfg.API.BaseURL, "trailing slash is trimmed")
	assert.Equal(t, 500*time.Millisecond, cfg.Poller.Interval)
	assert.Equal(t, 12, cfg.Poller.MaxAttempts)
	assert.Equal(t, 3, cfg.Poller.GraceAttempts)
	assert.Equal(t, int64(25*1024*1024), cfg.Upload.MaxBytes())
	assert.Equal(t, "s3", cfg.Export.Provider)
	assert.Equal(t, "custom-bucket", cfg.S3.Bucket)
}

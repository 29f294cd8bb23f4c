package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	API    APIConfig
	Upload UploadConfig
	Poller PollerConfig
	Export ExportConfig
	S3     S3Config
	Email  EmailConfig
}

// APIConfig holds settings for the remote analysis server.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// UploadConfig holds document submission limits.
type UploadConfig struct {
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
}

// MaxBytes returns the per-document size limit in bytes.
func (u *UploadConfig) MaxBytes() int64 {
	return u.MaxFileSizeMB * 1024 * 1024
}

// PollerConfig holds status polling settings.
type PollerConfig struct {
	Interval      time.Duration `mapstructure:"interval"`
	MaxAttempts   int           `mapstructure:"max_attempts"`
	GraceAttempts int           `mapstructure:"grace_attempts"`
	MessageEvery  int           `mapstructure:"message_every"`
}

// DefaultPollerConfig returns the polling policy used when nothing is
// configured: a check every 2s, 90 attempts, 404s tolerated through attempt
// 10 and a status message on every 5th attempt.
func DefaultPollerConfig() PollerConfig {
	return PollerConfig{
		Interval:      2 * time.Second,
		MaxAttempts:   90,
		GraceAttempts: 10,
		MessageEvery:  5,
	}
}

// ExportConfig selects where downloaded reports are written.
type ExportConfig struct {
	Provider string `mapstructure:"provider"`
	Dir      string `mapstructure:"dir"`
}

// S3Config holds AWS S3 settings for the s3 export provider.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// EmailConfig holds completion summary delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	Recipient   string `mapstructure:"recipient"`
}

// Load reads configuration from environment variables with the GAPCHECK_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("GAPCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// API defaults
	v.SetDefault("api.base_url", "http://localhost:5000/api")
	v.SetDefault("api.timeout", "300s")

	// Upload defaults
	v.SetDefault("upload.max_file_size_mb", 10)

	// Poller defaults (90 attempts at 2s is roughly three minutes)
	pollerDefaults := DefaultPollerConfig()
	v.SetDefault("poller.interval", pollerDefaults.Interval.String())
	v.SetDefault("poller.max_attempts", pollerDefaults.MaxAttempts)
	v.SetDefault("poller.grace_attempts", pollerDefaults.GraceAttempts)
	v.SetDefault("poller.message_every", pollerDefaults.MessageEvery)

	// Export defaults
	v.SetDefault("export.provider", "local")
	v.SetDefault("export.dir", "./reports")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "gapcheck-reports")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.prefix", "reports")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "noreply@gapcheck.local")
	v.SetDefault("email.from_name", "Curriculum Gap Check")
	v.SetDefault("email.recipient", "")

	envBindings := map[string]string{
		"api.base_url":            "GAPCHECK_API_BASE_URL",
		"api.timeout":             "GAPCHECK_API_TIMEOUT",
		"upload.max_file_size_mb": "GAPCHECK_UPLOAD_MAX_FILE_SIZE_MB",
		"poller.interval":         "GAPCHECK_POLLER_INTERVAL",
		"poller.max_attempts":     "GAPCHECK_POLLER_MAX_ATTEMPTS",
		"poller.grace_attempts":   "GAPCHECK_POLLER_GRACE_ATTEMPTS",
		"poller.message_every":    "GAPCHECK_POLLER_MESSAGE_EVERY",
		"export.provider":         "GAPCHECK_EXPORT_PROVIDER",
		"export.dir":              "GAPCHECK_EXPORT_DIR",
		"s3.region":               "GAPCHECK_S3_REGION",
		"s3.bucket":               "GAPCHECK_S3_BUCKET",
		"s3.endpoint":             "GAPCHECK_S3_ENDPOINT",
		"s3.access_key":           "GAPCHECK_S3_ACCESS_KEY",
		"s3.secret_key":           "GAPCHECK_S3_SECRET_KEY",
		"s3.prefix":               "GAPCHECK_S3_PREFIX",
		"email.provider":          "GAPCHECK_EMAIL_PROVIDER",
		"email.region":            "GAPCHECK_EMAIL_REGION",
		"email.from_address":      "GAPCHECK_EMAIL_FROM_ADDRESS",
		"email.from_name":         "GAPCHECK_EMAIL_FROM_NAME",
		"email.recipient":         "GAPCHECK_EMAIL_RECIPIENT",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}
	cfg.API = APIConfig{
		BaseURL: strings.TrimRight(v.GetString("api.base_url"), "/"),
		Timeout: v.GetDuration("api.timeout"),
	}
	cfg.Upload = UploadConfig{
		MaxFileSizeMB: v.GetInt64("upload.max_file_size_mb"),
	}
	cfg.Poller = PollerConfig{
		Interval:      v.GetDuration("poller.interval"),
		MaxAttempts:   v.GetInt("poller.max_attempts"),
		GraceAttempts: v.GetInt("poller.grace_attempts"),
		MessageEvery:  v.GetInt("poller.message_every"),
	}
	cfg.Export = ExportConfig{
		Provider: v.GetString("export.provider"),
		Dir:      v.GetString("export.dir"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
		Prefix:    v.GetString("s3.prefix"),
	}
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		Recipient:   v.GetString("email.recipient"),
	}

	return cfg, nil
}

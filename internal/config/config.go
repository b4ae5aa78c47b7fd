package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"reportingest/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	DB       DBConfig
	S3       S3Config
	Hub      HubConfig
	Analyzer AnalyzerConfig
	Ingest   IngestConfig
	Notify   NotifyConfig
	Auth     AuthConfig
	Log      LogConfig
	CORS     CORSConfig
	Proxy    ProxyConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds object storage settings. PublicBaseURL, when set, replaces
// presigned URLs with "<base>/<bucket>/<escaped key>".
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
	PublicBaseURL string `mapstructure:"public_base_url"`
}

// HubConfig holds settings for the upstream document-analysis API.
type HubConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	APIKey      string `mapstructure:"api_key"`
	APIKeyFile  string `mapstructure:"api_key_file"`
	Message     string `mapstructure:"message"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// ResolveAPIKey returns the API key, reading APIKeyFile when APIKey is empty.
func (h *HubConfig) ResolveAPIKey() (string, error) {
	if h.APIKey != "" || h.APIKeyFile == "" {
		return h.APIKey, nil
	}
	b, err := os.ReadFile(h.APIKeyFile)
	if err != nil {
		return "", fmt.Errorf("reading hub api key file: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

// AnalyzerConfig selects the analysis provider. "hub" calls the upstream API,
// "openai" calls the OpenAI chat completions API directly.
type AnalyzerConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	BaseURL      string `mapstructure:"base_url"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// IngestConfig holds upload filtering settings.
type IngestConfig struct {
	UploadsPrefix string `mapstructure:"uploads_prefix"`
}

// NotifyConfig holds outcome notification settings.
type NotifyConfig struct {
	Hub   bool              `mapstructure:"hub"`
	Email EmailNotifyConfig `mapstructure:"email"`
}

// EmailNotifyConfig holds operator alert email settings.
type EmailNotifyConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	ToAddress   string `mapstructure:"to_address"`
}

// AuthConfig holds bearer token settings. An empty secret disables auth.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ProxyConfig holds image proxy settings.
type ProxyConfig struct {
	CacheMaxAgeSecs int `mapstructure:"cache_max_age_secs"`
}

// Load reads configuration from environment variables with the REPORTS_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("REPORTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "150s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "reports")
	v.SetDefault("db.password", "reports_secret")
	v.SetDefault("db.name", "reports_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 10)
	v.SetDefault("db.max_idle", 5)

	// S3 defaults
	v.SetDefault("s3.region", "eu-west-1")
	v.SetDefault("s3.bucket", "report-uploads")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 20)
	v.SetDefault("s3.presign_expiry", 3600)
	v.SetDefault("s3.public_base_url", "")

	// Hub defaults
	v.SetDefault("hub.endpoint", "https://europe-west1-evoltech-hub.cloudfunctions.net/hub/api/chatbot/message")
	v.SetDefault("hub.api_key", "")
	v.SetDefault("hub.api_key_file", "")
	v.SetDefault("hub.message", "analizza questo report")
	v.SetDefault("hub.timeout_secs", 120)

	// Analyzer defaults
	v.SetDefault("analyzer.provider", "hub")
	v.SetDefault("analyzer.api_key", "")
	v.SetDefault("analyzer.default_model", "gpt-4o")
	v.SetDefault("analyzer.base_url", "")
	v.SetDefault("analyzer.timeout_secs", 120)

	v.SetDefault("ingest.uploads_prefix", domain.DefaultUploadsPrefix)

	// Notify defaults
	v.SetDefault("notify.hub", true)
	v.SetDefault("notify.email.provider", "noop")
	v.SetDefault("notify.email.region", "eu-west-1")
	v.SetDefault("notify.email.from_address", "noreply@example.com")
	v.SetDefault("notify.email.from_name", "Report Ingest")
	v.SetDefault("notify.email.to_address", "")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	v.SetDefault("cors.allowed_origins", "*")
	v.SetDefault("proxy.cache_max_age_secs", 86400)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":               "REPORTS_SERVER_PORT",
		"server.read_timeout":       "REPORTS_SERVER_READ_TIMEOUT",
		"server.write_timeout":      "REPORTS_SERVER_WRITE_TIMEOUT",
		"server.environment":        "REPORTS_SERVER_ENVIRONMENT",
		"db.host":                   "REPORTS_DB_HOST",
		"db.port":                   "REPORTS_DB_PORT",
		"db.user":                   "REPORTS_DB_USER",
		"db.password":               "REPORTS_DB_PASSWORD",
		"db.name":                   "REPORTS_DB_NAME",
		"db.sslmode":                "REPORTS_DB_SSLMODE",
		"db.max_open":               "REPORTS_DB_MAX_OPEN",
		"db.max_idle":               "REPORTS_DB_MAX_IDLE",
		"s3.region":                 "REPORTS_S3_REGION",
		"s3.bucket":                 "REPORTS_S3_BUCKET",
		"s3.endpoint":               "REPORTS_S3_ENDPOINT",
		"s3.access_key":             "REPORTS_S3_ACCESS_KEY",
		"s3.secret_key":             "REPORTS_S3_SECRET_KEY",
		"s3.max_file_size_mb":       "REPORTS_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":         "REPORTS_S3_PRESIGN_EXPIRY",
		"s3.public_base_url":        "REPORTS_S3_PUBLIC_BASE_URL",
		"hub.endpoint":              "REPORTS_HUB_ENDPOINT",
		"hub.api_key":               "HUB_API_KEY",
		"hub.api_key_file":          "REPORTS_HUB_API_KEY_FILE",
		"hub.message":               "REPORTS_HUB_MESSAGE",
		"hub.timeout_secs":          "REPORTS_HUB_TIMEOUT_SECS",
		"analyzer.provider":         "REPORTS_ANALYZER_PROVIDER",
		"analyzer.api_key":          "REPORTS_ANALYZER_API_KEY",
		"analyzer.default_model":    "REPORTS_ANALYZER_DEFAULT_MODEL",
		"analyzer.base_url":         "REPORTS_ANALYZER_BASE_URL",
		"analyzer.timeout_secs":     "REPORTS_ANALYZER_TIMEOUT_SECS",
		"ingest.uploads_prefix":     "REPORTS_INGEST_UPLOADS_PREFIX",
		"notify.hub":                "REPORTS_NOTIFY_HUB",
		"notify.email.provider":     "REPORTS_NOTIFY_EMAIL_PROVIDER",
		"notify.email.region":       "REPORTS_NOTIFY_EMAIL_REGION",
		"notify.email.from_address": "REPORTS_NOTIFY_EMAIL_FROM_ADDRESS",
		"notify.email.from_name":    "REPORTS_NOTIFY_EMAIL_FROM_NAME",
		"notify.email.to_address":   "REPORTS_NOTIFY_EMAIL_TO_ADDRESS",
		"auth.jwt_secret":           "REPORTS_AUTH_JWT_SECRET",
		"auth.issuer":               "REPORTS_AUTH_ISSUER",
		"log.level":                 "REPORTS_LOG_LEVEL",
		"log.format":                "REPORTS_LOG_FORMAT",
		"cors.allowed_origins":      "REPORTS_CORS_ALLOWED_ORIGINS",
		"proxy.cache_max_age_secs":  "REPORTS_PROXY_CACHE_MAX_AGE_SECS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Cloud Run / Railway set a PORT env var. Use it if REPORTS_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("REPORTS_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
		PublicBaseURL: strings.TrimRight(v.GetString("s3.public_base_url"), "/"),
	}
	cfg.Hub = HubConfig{
		Endpoint:    v.GetString("hub.endpoint"),
		APIKey:      v.GetString("hub.api_key"),
		APIKeyFile:  v.GetString("hub.api_key_file"),
		Message:     v.GetString("hub.message"),
		TimeoutSecs: v.GetInt("hub.timeout_secs"),
	}
	cfg.Analyzer = AnalyzerConfig{
		Provider:     v.GetString("analyzer.provider"),
		APIKey:       v.GetString("analyzer.api_key"),
		DefaultModel: v.GetString("analyzer.default_model"),
		BaseURL:      v.GetString("analyzer.base_url"),
		TimeoutSecs:  v.GetInt("analyzer.timeout_secs"),
	}
	cfg.Ingest = IngestConfig{
		UploadsPrefix: v.GetString("ingest.uploads_prefix"),
	}
	cfg.Notify = NotifyConfig{
		Hub: v.GetBool("notify.hub"),
		Email: EmailNotifyConfig{
			Provider:    v.GetString("notify.email.provider"),
			Region:      v.GetString("notify.email.region"),
			FromAddress: v.GetString("notify.email.from_address"),
			FromName:    v.GetString("notify.email.from_name"),
			ToAddress:   v.GetString("notify.email.to_address"),
		},
	}
	cfg.Auth = AuthConfig{
		JWTSecret: v.GetString("auth.jwt_secret"),
		Issuer:    v.GetString("auth.issuer"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}
	cfg.Proxy = ProxyConfig{
		CacheMaxAgeSecs: v.GetInt("proxy.cache_max_age_secs"),
	}

	if cfg.Ingest.UploadsPrefix == "" {
		return nil, fmt.Errorf("ingest.uploads_prefix must not be empty")
	}

	return cfg, nil
}

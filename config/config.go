package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	aws_pkg "catalog-service/pkg/aws"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the catalog service.
type Config struct {
	ServiceName string `mapstructure:"service_name"`
	Env         string `mapstructure:"app_env"`
	Port        string `mapstructure:"port"`

	DBDriver         string `mapstructure:"db_driver"`
	PostgresUser     string `mapstructure:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password"`
	PostgresDB       string `mapstructure:"postgres_db"`
	PostgresHost     string `mapstructure:"postgres_host"`
	PostgresPort     string `mapstructure:"postgres_port"`
	PostgresSSLMode  string `mapstructure:"postgres_sslmode"`
	PostgresTimeZone string `mapstructure:"postgres_timezone"`
	MySQLDSN         string `mapstructure:"mysql_dsn"`
	SQLitePath       string `mapstructure:"sqlite_path"`

	RedisURL string        `mapstructure:"redis_url"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`

	JWTSecret  string        `mapstructure:"jwt_secret"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`

	MediaBucket    string `mapstructure:"media_bucket"`
	MediaKeyPrefix string `mapstructure:"media_key_prefix"`

	OTLPEndpoint   string   `mapstructure:"otel_exporter_otlp_endpoint"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	FixturesDir    string   `mapstructure:"fixtures_dir"`
	UseSecrets     bool     `mapstructure:"aws_use_secrets"`
}

// Load reads .env (if present), an optional config.yaml in the working
// directory, and environment variables, in increasing precedence. When
// AWS_USE_SECRETS=true database credentials and the JWT secret are
// overridden from Secrets Manager.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.AllowedOrigins = splitList(v.GetString("allowed_origins"))

	if cfg.UseSecrets {
		awsCfg, err := aws_pkg.LoadAWSConfig(context.Background())
		if err != nil {
			return nil, fmt.Errorf("secrets enabled: %w", err)
		}
		ApplySecrets(context.Background(), cfg, aws_pkg.NewSecretsClient(awsCfg, 0))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service_name", "catalog-service")
	v.SetDefault("app_env", "development")
	v.SetDefault("port", "8080")
	v.SetDefault("db_driver", "postgres")
	v.SetDefault("postgres_user", "")
	v.SetDefault("postgres_password", "")
	v.SetDefault("postgres_db", "")
	v.SetDefault("postgres_host", "")
	v.SetDefault("postgres_port", "5432")
	v.SetDefault("postgres_sslmode", "disable")
	v.SetDefault("postgres_timezone", "UTC")
	v.SetDefault("mysql_dsn", "")
	v.SetDefault("sqlite_path", "catalog.db")
	v.SetDefault("redis_url", "")
	v.SetDefault("cache_ttl", 10*time.Minute)
	v.SetDefault("jwt_secret", "")
	v.SetDefault("session_ttl", 12*time.Hour)
	v.SetDefault("media_bucket", "")
	v.SetDefault("media_key_prefix", "images/")
	v.SetDefault("otel_exporter_otlp_endpoint", "")
	v.SetDefault("allowed_origins", "")
	v.SetDefault("fixtures_dir", "fixtures/data")
	v.SetDefault("aws_use_secrets", false)
}

// ApplySecrets overrides credentials from catalog/DB_CREDENTIALS and
// catalog/JWT_SECRET. Missing secrets leave the current values untouched.
func ApplySecrets(ctx context.Context, cfg *Config, sm aws_pkg.SecretGetter) {
	if m, err := aws_pkg.GetSecretMap(ctx, sm, "catalog/DB_CREDENTIALS"); err == nil {
		override := func(dst *string, key string) {
			if v, ok := m[key]; ok && v != "" {
				*dst = v
			}
		}
		override(&cfg.PostgresUser, "POSTGRES_USER")
		override(&cfg.PostgresPassword, "POSTGRES_PASSWORD")
		override(&cfg.PostgresDB, "POSTGRES_DB")
		override(&cfg.PostgresHost, "POSTGRES_HOST")
		override(&cfg.PostgresPort, "POSTGRES_PORT")
		override(&cfg.MySQLDSN, "MYSQL_DSN")
	}
	if secret, err := sm.GetSecret(ctx, "catalog/JWT_SECRET"); err == nil && secret != "" {
		cfg.JWTSecret = secret
	}
}

// Validate checks that the selected driver has what it needs.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres":
		if c.PostgresUser == "" || c.PostgresPassword == "" || c.PostgresDB == "" || c.PostgresHost == "" {
			return fmt.Errorf("database config incomplete")
		}
	case "mysql":
		if c.MySQLDSN == "" {
			return fmt.Errorf("MYSQL_DSN is required for the mysql driver")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}

// IsProduction reports whether the service runs with production logging.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(part), "/")); p != "" {
			out = append(out, p)
		}
	}
	return out
}

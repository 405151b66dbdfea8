// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml and
// validates the result for the API server.
func Load() (*Config, error) {
	return load("", validateConfig)
}

// LoadClient is Load for the terminal runner; only the client section is validated.
func LoadClient() (*Config, error) {
	return load("", validateClientConfig)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	return load(path, validateConfig)
}

func load(path string, validate func(*Config) error) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../../configs")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading base config: %w", err)
			}
		}

		env := os.Getenv("APP_ENVIRONMENT")
		if env == "" {
			env = "development"
		}
		v.SetConfigName(fmt.Sprintf("config.%s", env))
		_ = v.MergeInConfig() // environment overlay is optional
	}

	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads the first .env found walking up from the working directory.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up directories looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			if expanded := os.ExpandEnv(strVal); expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

func envIfEmpty(dst *string, names ...string) {
	if *dst != "" {
		return
	}
	for _, name := range names {
		if val := os.Getenv(name); val != "" {
			*dst = val
			return
		}
	}
}

// overrideEmptyConfig fills secrets from the conventional environment
// variable names when the config file left them blank.
func overrideEmptyConfig(cfg *Config) {
	envIfEmpty(&cfg.Database.Supabase.URL, "SUPABASE_URL", "NEXT_PUBLIC_SUPABASE_URL")
	envIfEmpty(&cfg.Database.Supabase.AnonKey, "SUPABASE_ANON_KEY", "NEXT_PUBLIC_SUPABASE_ANON_KEY")
	envIfEmpty(&cfg.Database.Supabase.ServiceKey, "SUPABASE_SERVICE_ROLE_KEY")
	envIfEmpty(&cfg.Auth.JWTSecret, "SUPABASE_JWT_SECRET")
	envIfEmpty(&cfg.Database.Postgres.User, "DB_USER")
	envIfEmpty(&cfg.Database.Postgres.Password, "DB_PASSWORD")
	envIfEmpty(&cfg.Integrations.Webhook.URL, "MAKECOM_WEBHOOK_URL")
	envIfEmpty(&cfg.Client.AccessToken, "GRANT_ACCESS_TOKEN")
	envIfEmpty(&cfg.Client.APIURL, "GRANT_API_URL")

	if len(cfg.Auth.AllowedEmails) == 0 {
		if val := os.Getenv("ALLOWED_EMAILS"); val != "" {
			cfg.Auth.AllowedEmails = ParseAllowedEmails(val)
		}
	} else {
		cfg.Auth.AllowedEmails = ParseAllowedEmails(strings.Join(cfg.Auth.AllowedEmails, ","))
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "grant-portal"
	}

	// Server defaults
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.BasePath == "" {
		cfg.Server.BasePath = "/api"
	}
	cfg.Server.BasePath = "/" + strings.Trim(cfg.Server.BasePath, "/")
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10000
	}
	if cfg.Server.RateLimit.RequestsPerSecond == 0 {
		cfg.Server.RateLimit.RequestsPerSecond = 10
	}
	if cfg.Server.RateLimit.Burst == 0 {
		cfg.Server.RateLimit.Burst = 20
	}

	// Database defaults
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverSupabase
	}
	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Supabase.Timeout == 0 {
		cfg.Database.Supabase.Timeout = 10000
	}

	// Auth defaults
	if cfg.Auth.Mode == "" {
		cfg.Auth.Mode = AuthModeSupabase
	}
	if cfg.Auth.CacheTTL == 0 {
		cfg.Auth.CacheTTL = 60000
	}
	if cfg.Auth.TokenCookie == "" {
		cfg.Auth.TokenCookie = "sb-access-token"
	}

	if cfg.Integrations.Webhook.Timeout == 0 {
		cfg.Integrations.Webhook.Timeout = 5000
	}
	if cfg.Integrations.Webhook.FormName == "" {
		cfg.Integrations.Webhook.FormName = "Grant Application"
	}

	if cfg.Client.APIURL == "" {
		cfg.Client.APIURL = "http://localhost:8080/api"
	}
	if cfg.Client.Timeout == 0 {
		cfg.Client.Timeout = 15000
	}

	if cfg.Form.EmailCacheSize == 0 {
		cfg.Form.EmailCacheSize = 100
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// validateConfig validates critical configuration fields for the API server.
func validateConfig(cfg *Config) error {
	switch cfg.Database.Driver {
	case DriverSupabase:
		if cfg.Database.Supabase.URL == "" {
			return fmt.Errorf("database.supabase.url is required")
		}
		if cfg.Database.Supabase.ServiceKey == "" {
			return fmt.Errorf("database.supabase.service_key is required")
		}
	case DriverPostgres:
		if cfg.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required")
		}
		if cfg.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required")
		}
		if cfg.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres.user is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("database.driver %q is not supported", cfg.Database.Driver)
	}

	switch cfg.Auth.Mode {
	case AuthModeSupabase:
		if cfg.Database.Supabase.URL == "" {
			return fmt.Errorf("database.supabase.url is required for auth.mode %s", AuthModeSupabase)
		}
		if cfg.Database.Supabase.AnonKey == "" && cfg.Database.Supabase.ServiceKey == "" {
			return fmt.Errorf("database.supabase.anon_key or service_key is required for auth.mode %s", AuthModeSupabase)
		}
	case AuthModeJWT:
		if cfg.Auth.JWTSecret == "" {
			return fmt.Errorf("auth.jwt_secret is required for auth.mode %s", AuthModeJWT)
		}
	default:
		return fmt.Errorf("auth.mode %q is not supported", cfg.Auth.Mode)
	}

	if cfg.Auth.CacheEnabled && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when auth.cache_enabled is set")
	}

	if cfg.Integrations.Webhook.Enabled && cfg.Integrations.Webhook.URL == "" {
		return fmt.Errorf("integrations.webhook.url is required when the webhook is enabled")
	}

	return nil
}

func validateClientConfig(cfg *Config) error {
	if cfg.Client.APIURL == "" {
		return fmt.Errorf("client.api_url is required")
	}
	if cfg.Client.AccessToken == "" {
		return fmt.Errorf("client.access_token is required (or set GRANT_ACCESS_TOKEN)")
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

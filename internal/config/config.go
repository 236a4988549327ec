package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backends selectable with STORAGE.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config is the typed view of the service configuration.
type Config struct {
	ServerPort string
	GinMode    string
	Storage    string

	DatabaseURL string

	JWTSecret          string
	JWTExpirationHours int64

	Timezone string
	Location *time.Location

	ForecastURL     string
	ForecastTimeout time.Duration

	LLMAPIKey      string
	LLMBaseURL     string
	LLMModel       string
	LLMVisionModel string
	LLMTimeout     time.Duration

	AMQPURL      string
	AMQPExchange string

	GoogleClientID string

	LogLevel  string
	LogFormat string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_port", "8080")
	v.SetDefault("gin_mode", "debug")
	v.SetDefault("storage", StoragePostgres)
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("jwt_expiration_hours", 168)
	v.SetDefault("app_timezone", "Local")
	v.SetDefault("forecast_url", "http://127.0.0.1:5001")
	v.SetDefault("forecast_timeout", "5s")
	v.SetDefault("llm_base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("llm_model", "llama-3.3-70b-versatile")
	v.SetDefault("llm_vision_model", "llama-3.2-90b-vision-preview")
	v.SetDefault("llm_timeout", "60s")
	v.SetDefault("amqp_exchange", "expense_ledger.events")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
}

// Load reads .env (if present), the optional config file and the process
// environment. Environment variables win over the file.
func Load(cfgFile string) (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		ServerPort:         v.GetString("server_port"),
		GinMode:            v.GetString("gin_mode"),
		Storage:            strings.ToLower(v.GetString("storage")),
		DatabaseURL:        v.GetString("database_url"),
		JWTSecret:          v.GetString("jwt_secret_key"),
		JWTExpirationHours: v.GetInt64("jwt_expiration_hours"),
		Timezone:           v.GetString("app_timezone"),
		ForecastURL:        strings.TrimRight(v.GetString("forecast_url"), "/"),
		ForecastTimeout:    v.GetDuration("forecast_timeout"),
		LLMAPIKey:          v.GetString("llm_api_key"),
		LLMBaseURL:         strings.TrimRight(v.GetString("llm_base_url"), "/"),
		LLMModel:           v.GetString("llm_model"),
		LLMVisionModel:     v.GetString("llm_vision_model"),
		LLMTimeout:         v.GetDuration("llm_timeout"),
		AMQPURL:            v.GetString("amqp_url"),
		AMQPExchange:       v.GetString("amqp_exchange"),
		GoogleClientID:     v.GetString("google_client_id"),
		LogLevel:           v.GetString("log_level"),
		LogFormat:          v.GetString("log_format"),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = buildDatabaseURL(v)
	}
	if cfg.JWTExpirationHours <= 0 {
		cfg.JWTExpirationHours = 168
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildDatabaseURL assembles a postgres URL from the DB_* variables. It
// returns "" unless host, user and database name are all set.
func buildDatabaseURL(v *viper.Viper) string {
	host := v.GetString("db_host")
	user := v.GetString("db_user")
	name := v.GetString("db_name")
	if host == "" || user == "" || name == "" {
		return ""
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, v.GetString("db_password")),
		Host:     host + ":" + v.GetString("db_port"),
		Path:     "/" + name,
		RawQuery: url.Values{"sslmode": {v.GetString("db_sslmode")}}.Encode(),
	}
	return u.String()
}

// Validate checks the settings the server cannot start without and resolves
// the application timezone.
func (c *Config) Validate() error {
	var errs []error

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY not set in environment"))
	}
	switch c.Storage {
	case StoragePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("database not configured (DATABASE_URL or DB_HOST, DB_USER, DB_NAME)"))
		}
	case StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE %q (postgres, memory)", c.Storage))
	}
	if c.ForecastTimeout <= 0 {
		errs = append(errs, fmt.Errorf("FORECAST_TIMEOUT must be positive, got %s", c.ForecastTimeout))
	}
	if c.LLMTimeout <= 0 {
		errs = append(errs, fmt.Errorf("LLM_TIMEOUT must be positive, got %s", c.LLMTimeout))
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.Timezone, err))
	} else {
		c.Location = loc
	}

	return errors.Join(errs...)
}

// EventsEnabled reports whether ledger events should be published.
func (c *Config) EventsEnabled() bool { return c.AMQPURL != "" }

// GoogleLoginEnabled reports whether Google sign-in is configured.
func (c *Config) GoogleLoginEnabled() bool { return c.GoogleClientID != "" }

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config groups the application settings read from the environment.
type Config struct {
	App      AppConfig
	DB       DBConfig
	RabbitMQ RabbitMQConfig
}

// AppConfig holds HTTP and logging settings.
type AppConfig struct {
	Env      string `validate:"required"`
	Port     string `validate:"required"`
	LogLevel string `validate:"omitempty,oneof=trace debug info warn error"`
}

// DBConfig selects the GORM dialector and its DSN.
type DBConfig struct {
	Driver string `validate:"required,oneof=postgres sqlite"`
	DSN    string `validate:"required"`
}

// RabbitMQConfig configures produto event publishing. An empty URL disables it.
type RabbitMQConfig struct {
	URL     string
	Queue   string `validate:"required_with=URL"`
	Consume bool
}

// Enabled reports whether a broker is configured.
func (c RabbitMQConfig) Enabled() bool {
	return c.URL != ""
}

// Load reads the configuration from environment variables, falling back to an
// optional .env file in the working directory and then to defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read .env: %w", err)
		}
	}

	return FromViper(v)
}

// FromViper builds a validated Config from v, applying defaults and
// environment overrides.
func FromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Env:      v.GetString("APP_ENV"),
			Port:     v.GetString("APP_PORT"),
			LogLevel: strings.ToLower(v.GetString("LOG_LEVEL")),
		},
		DB: DBConfig{
			Driver: strings.ToLower(v.GetString("DB_DRIVER")),
			DSN:    v.GetString("DATABASE_DSN"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:     v.GetString("RABBITMQ_URL"),
			Queue:   v.GetString("RABBITMQ_QUEUE"),
			Consume: v.GetBool("RABBITMQ_CONSUME"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct tags and reports every failing field.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return fmt.Errorf("invalid config: %w", err)
		}
		fields := make([]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			fields = append(fields, fmt.Sprintf("%s failed on the '%s' tag", e.Namespace(), e.Tag()))
		}
		return fmt.Errorf("invalid config: %s", strings.Join(fields, "; "))
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "file:produtos.db?cache=shared")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_QUEUE", "produto_events")
	v.SetDefault("RABBITMQ_CONSUME", false)
}

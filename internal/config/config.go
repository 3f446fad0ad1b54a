package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"ozzus/prime-checker/internal/checks"
)

type Config struct {
	Env    string       `mapstructure:"env" validate:"oneof=local dev prod"`
	Name   string       `mapstructure:"name" validate:"required"`
	Server ServerConfig `mapstructure:"server"`
	Checks ChecksConfig `mapstructure:"checks"`
	Kafka  KafkaConfig  `mapstructure:"kafka"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	Debug           bool          `mapstructure:"debug"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	MaxHeaderBytes  int           `mapstructure:"max_header_bytes" validate:"gt=0"`
}

type ChecksConfig struct {
	MaxValue      int64         `mapstructure:"max_value" validate:"gt=0"`
	Timeout       time.Duration `mapstructure:"timeout" validate:"gt=0"`
	MaxConcurrent int           `mapstructure:"max_concurrent" validate:"min=1"`
	QueueTimeout  time.Duration `mapstructure:"queue_timeout" validate:"gt=0,lte=1s"`
}

type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers" validate:"required_if=Enabled true"`
	GroupID      string        `mapstructure:"group_id" validate:"required_if=Enabled true"`
	PollInterval time.Duration `mapstructure:"poll_interval" validate:"gt=0"`
	Topics       KafkaTopics   `mapstructure:"topics"`
}

type KafkaTopics struct {
	Requests string `mapstructure:"requests"`
	Results  string `mapstructure:"results"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

// Load reads config/local.yaml (optional) and environment overrides.
func Load() (*Config, error) {
	return load("./config", ".")
}

func load(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Variable names understood by earlier deployments.
	_ = v.BindEnv("server.port", "SERVER_PORT", "PORT")
	_ = v.BindEnv("server.debug", "SERVER_DEBUG", "FLASK_DEBUG")
	_ = v.BindEnv("checks.max_value", "CHECKS_MAX_VALUE", "MAX_INPUT_VALUE")

	v.SetConfigName("local")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := applyTimeoutSeconds(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// LOG_LEVEL=INFO is accepted as well as info.
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)

	return &cfg, nil
}

// applyTimeoutSeconds honours TIMEOUT_SECONDS, a whole or fractional number
// of seconds, unless CHECKS_TIMEOUT is set.
func applyTimeoutSeconds(v *viper.Viper) error {
	raw, ok := os.LookupEnv("TIMEOUT_SECONDS")
	if !ok || raw == "" {
		return nil
	}
	if _, set := os.LookupEnv("CHECKS_TIMEOUT"); set {
		return nil
	}

	secs, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || secs <= 0 {
		return fmt.Errorf("invalid TIMEOUT_SECONDS %q: want a positive number of seconds", raw)
	}

	v.Set("checks.timeout", time.Duration(secs*float64(time.Second)))
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")
	v.SetDefault("name", "prime-checker")

	// Server defaults
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.debug", false)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.max_header_bytes", 8190*100)

	// Checks defaults
	v.SetDefault("checks.max_value", checks.DefaultMaxValue)
	v.SetDefault("checks.timeout", checks.DefaultTimeout)
	v.SetDefault("checks.max_concurrent", runtime.NumCPU()*2+1)
	v.SetDefault("checks.queue_timeout", 250*time.Millisecond)

	// Kafka defaults
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.group_id", "prime-checker")
	v.SetDefault("kafka.poll_interval", time.Second)
	v.SetDefault("kafka.topics.requests", "prime-check-requests")
	v.SetDefault("kafka.topics.results", "prime-check-results")

	v.SetDefault("log.level", "info")
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s fails %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Policy returns the limits the checker is constructed with.
func (c *Config) Policy() checks.Policy {
	return checks.Policy{
		MaxValue: c.Checks.MaxValue,
		Timeout:  c.Checks.Timeout,
	}
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

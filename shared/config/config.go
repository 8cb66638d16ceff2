package config

import (
	"fmt"
	"os"
	"path"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	ListenAddr  string `yaml:"listen_addr" validate:"required"`
	LogLevel    string `yaml:"log_level"`
	LogJSON     bool   `yaml:"log_json"`
	StorageKind string `yaml:"storage" validate:"required,oneof=postgres memory"`
	NotifyKind  string `yaml:"notify" validate:"required,oneof=none nats redis"`

	NotifySubjectPrefix string   `yaml:"notify_subject_prefix" validate:"required"`
	CorsAllowedOrigins  []string `yaml:"cors_allowed_origins"`
	SecureHeadersHTTPS  bool     `yaml:"secure_headers_https"`

	MaxTitleLen int `yaml:"max_title_len" validate:"required,gt=0"`
	MaxBodyLen  int `yaml:"max_body_len" validate:"required,gt=0"`
	MaxPostLen  int `yaml:"max_post_len" validate:"required,gt=0"`

	SweepInterval    time.Duration `yaml:"sweep_interval"` // 0 disables the tree sweeper
	ReadTimeout      time.Duration `yaml:"read_timeout" validate:"required"`
	WriteTimeout     time.Duration `yaml:"write_timeout" validate:"required"`
	ShutdownTimeout  time.Duration `yaml:"shutdown_timeout" validate:"required"`
	WritesPerSecond  float64       `yaml:"writes_per_second" validate:"required,gt=0"` // per user
	WriteBurst       int           `yaml:"write_burst" validate:"required,gt=0"`
	GlobalRPS        float64       `yaml:"global_rps" validate:"required,gt=0"`
	LimiterIdleReset time.Duration `yaml:"limiter_idle_reset" validate:"required"`
}

type Pg struct {
	Host     string `yaml:"host" validate:"required"`
	Port     int    `yaml:"port" validate:"required"`
	User     string `yaml:"user" validate:"required"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname" validate:"required"`
}

type Private struct {
	Pg       Pg     `yaml:"pg"`
	NatsURL  string `yaml:"nats_url"`
	RedisURL string `yaml:"redis_url"`
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file: " + configPath)
	}

	if err = yaml.UnmarshalStrict(configFile, output); err != nil {
		panic(fmt.Sprintf("can't unmarshal config file %s: %v", configPath, err))
	}
}

// MustLoad reads public.yaml and private.yaml from configFolder and panics
// if either is missing or fails validation.
func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{Public: public, Private: private}
	if err := cfg.Validate(); err != nil {
		panic(err.Error())
	}
	return cfg
}

// Validate checks struct tags plus the cross-field requirements of the
// selected storage and notify backends.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c.Public); err != nil {
		return fmt.Errorf("invalid public config: %w", err)
	}
	if c.Public.StorageKind == "postgres" {
		if err := validate.Struct(c.Private.Pg); err != nil {
			return fmt.Errorf("invalid pg config: %w", err)
		}
	}
	switch c.Public.NotifyKind {
	case "nats":
		if c.Private.NatsURL == "" {
			return fmt.Errorf("invalid private config: nats_url is required when notify is nats")
		}
	case "redis":
		if c.Private.RedisURL == "" {
			return fmt.Errorf("invalid private config: redis_url is required when notify is redis")
		}
	}
	return nil
}

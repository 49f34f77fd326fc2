// Package config loads service configuration from an optional .env file, a
// YAML config file and JM_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Store     StoreConfig     `mapstructure:"store"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Recommend RecommendConfig `mapstructure:"recommend"`
	HTTP      HTTPConfig      `mapstructure:"http"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StoreConfig selects the repository backend: "memory" or "postgres".
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
}

type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"max_conns"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	// BootstrapAdmins are granted admin instead of user on first initialization.
	BootstrapAdmins []string `mapstructure:"bootstrap_admins"`
}

type RedisConfig struct {
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RecommendConfig struct {
	Limit int `mapstructure:"limit"`
}

type HTTPConfig struct {
	RateLimitPerMin int      `mapstructure:"rate_limit_per_min"`
	CORSOrigins     []string `mapstructure:"cors_origins"`
}

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// Load reads configuration. cfgFile may be empty, in which case config.yaml
// is looked up in the working directory and ./configs; a missing file is not
// an error.
func Load(cfgFile string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvPrefix("JM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || cfgFile != "" {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("store.driver", DriverMemory)
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 16)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.bootstrap_admins", []string{})
	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 10*time.Minute)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "jobmatrimony.events")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("recommend.limit", 25)
	v.SetDefault("http.rate_limit_per_min", 120)
	v.SetDefault("http.cors_origins", []string{"*"})
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory:
	case DriverPostgres:
		if strings.TrimSpace(c.Database.URL) == "" {
			return fmt.Errorf("config: database.url required for postgres store")
		}
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return fmt.Errorf("config: auth.jwt_secret required")
	}
	if c.Recommend.Limit < 0 {
		return fmt.Errorf("config: recommend.limit must not be negative")
	}
	return nil
}

// RedisEnabled reports whether a recommendation cache is configured.
func (c *Config) RedisEnabled() bool { return c.Redis.Address != "" }

// KafkaEnabled reports whether domain events are shipped to Kafka.
func (c *Config) KafkaEnabled() bool { return len(c.Kafka.Brokers) > 0 }

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds client configuration.
type Config struct {
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	API       APIConfig       `mapstructure:"api" yaml:"api"`
	Chat      ChatConfig      `mapstructure:"chat" yaml:"chat"`
	Documents DocumentsConfig `mapstructure:"documents" yaml:"documents"`
	Cache     CacheConfig     `mapstructure:"cache" yaml:"cache"`
	Redis     RedisConfig     `mapstructure:"redis" yaml:"redis"`
}

type LogConfig struct {
	Mode string `mapstructure:"mode" yaml:"mode"`
}

// APIConfig holds request client settings.
type APIConfig struct {
	BaseURL    string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxRetries int           `mapstructure:"max_retries" yaml:"max_retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"`
	Token      string        `mapstructure:"token" yaml:"-"`
}

type ChatConfig struct {
	MaxMessageLength int    `mapstructure:"max_message_length" yaml:"max_message_length"`
	DefaultTitle     string `mapstructure:"default_title" yaml:"default_title"`
	PreviewLength    int    `mapstructure:"preview_length" yaml:"preview_length"`
	PageSize         int    `mapstructure:"page_size" yaml:"page_size"`
}

type DocumentsConfig struct {
	MaxFileSize     int64         `mapstructure:"max_file_size" yaml:"max_file_size"`
	PollInterval    time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	MaxPollFailures int           `mapstructure:"max_poll_failures" yaml:"max_poll_failures"`
}

// CacheConfig holds freshness windows per key family.
type CacheConfig struct {
	StaleTime         time.Duration `mapstructure:"stale_time" yaml:"stale_time"`
	OverviewStaleTime time.Duration `mapstructure:"overview_stale_time" yaml:"overview_stale_time"`
	TopicsStaleTime   time.Duration `mapstructure:"topics_stale_time" yaml:"topics_stale_time"`
	StatsStaleTime    time.Duration `mapstructure:"stats_stale_time" yaml:"stats_stale_time"`
}

// RedisConfig enables cross-process cache invalidation when Addr is set.
type RedisConfig struct {
	Addr    string `mapstructure:"addr" yaml:"addr"`
	Channel string `mapstructure:"channel" yaml:"channel"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.mode", "cli")
	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.max_retries", 3)
	v.SetDefault("api.retry_delay", time.Second)
	v.SetDefault("api.token", "")
	v.SetDefault("chat.max_message_length", 4000)
	v.SetDefault("chat.default_title", "New Conversation")
	v.SetDefault("chat.preview_length", 150)
	v.SetDefault("chat.page_size", 50)
	v.SetDefault("documents.max_file_size", 10*1024*1024)
	v.SetDefault("documents.poll_interval", 2*time.Second)
	v.SetDefault("documents.max_poll_failures", 3)
	v.SetDefault("cache.stale_time", 5*time.Second)
	v.SetDefault("cache.overview_stale_time", time.Minute)
	v.SetDefault("cache.topics_stale_time", 5*time.Minute)
	v.SetDefault("cache.stats_stale_time", time.Minute)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.channel", "docchat:cache-invalidation")
}

// Load reads defaults, then the config file if present, then env. Env var
// overrides use prefix DOCCHAT_.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if cfgPath := os.Getenv("DOCCHAT_CONFIG"); cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "docchat"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("DOCCHAT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// An explicit path that is missing is an error; the default location is optional.
		if !errors.As(err, &notFound) || os.Getenv("DOCCHAT_CONFIG") != "" {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	var errs []error
	if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("api.base_url %q is not an absolute URL", c.API.BaseURL))
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("api.timeout must be positive"))
	}
	if c.API.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("api.max_retries must not be negative"))
	}
	if c.Chat.MaxMessageLength <= 0 {
		errs = append(errs, fmt.Errorf("chat.max_message_length must be positive"))
	}
	if c.Chat.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("chat.page_size must be positive"))
	}
	if c.Documents.MaxFileSize <= 0 {
		errs = append(errs, fmt.Errorf("documents.max_file_size must be positive"))
	}
	if c.Documents.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("documents.poll_interval must be positive"))
	}
	if c.Documents.MaxPollFailures <= 0 {
		errs = append(errs, fmt.Errorf("documents.max_poll_failures must be positive"))
	}
	if c.Cache.StaleTime <= 0 {
		errs = append(errs, fmt.Errorf("cache.stale_time must be positive"))
	}
	return errors.Join(errs...)
}

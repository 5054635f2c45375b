package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"yomu/internal/feed"
	"yomu/internal/schedule"
)

var ErrInvalid = errors.New("invalid configuration")

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type Config struct {
	RecipientEmail string `yaml:"recipient_email"`
	SenderEmail    string `yaml:"sender_email"`
	SenderPassword string `yaml:"sender_password"`
	SMTPServer     string `yaml:"smtp_server"`
	SMTPPort       int    `yaml:"smtp_port"`

	Sources              []string      `yaml:"sources"`
	Frequencies          []string      `yaml:"frequencies"`
	MaxArticlesPerSource int           `yaml:"max_articles_per_source"`
	MaxDescriptionLength int           `yaml:"max_description_length"`
	RecencyCacheSize     int           `yaml:"recency_cache_size"`
	RequestTimeout       time.Duration `yaml:"request_timeout"`

	Store       StoreConfig    `yaml:"store"`
	Delivery    DeliveryConfig `yaml:"delivery"`
	MetricsAddr string         `yaml:"metrics_addr"`
}

type StoreConfig struct {
	Type     string `yaml:"type"` // "sqlite", "valkey" or "memory"
	Path     string `yaml:"path"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
}

type DeliveryConfig struct {
	Type    string  `yaml:"type"` // "smtp" or "webhook"
	Webhook Webhook `yaml:"webhook"`
}

type Webhook struct {
	URL      string `yaml:"url"`
	Provider string `yaml:"provider"` // "generic" (default) or "discord"
}

// Default returns a configuration with every optional field set.
func Default() *Config {
	return &Config{
		SMTPServer:           "smtp.gmail.com",
		SMTPPort:             587,
		MaxArticlesPerSource: 3,
		MaxDescriptionLength: 200,
		RecencyCacheSize:     feed.DefaultRecencyCapacity,
		RequestTimeout:       5 * time.Minute,
		Store: StoreConfig{
			Type: "sqlite",
			Path: "yomu.db",
		},
		Delivery: DeliveryConfig{
			Type:    "smtp",
			Webhook: Webhook{Provider: "generic"},
		},
		MetricsAddr: ":9090",
	}
}

func Load(path string) (*Config, error) {
	c := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if err := validateEmail("recipient_email", c.RecipientEmail); err != nil {
		return err
	}
	if err := validateEmail("sender_email", c.SenderEmail); err != nil {
		return err
	}

	if len(c.Sources) == 0 {
		return invalid("sources cannot be empty")
	}
	for _, s := range c.Sources {
		if err := validateURL(s); err != nil {
			return err
		}
	}

	if len(c.Frequencies) == 0 {
		return invalid("frequencies cannot be empty")
	}
	for _, f := range c.Frequencies {
		if err := schedule.Validate(f); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
	}

	if c.MaxArticlesPerSource <= 0 {
		return invalid("max_articles_per_source must be a positive integer")
	}
	if c.MaxDescriptionLength <= 0 {
		return invalid("max_description_length must be a positive integer")
	}
	if c.RecencyCacheSize <= 0 {
		return invalid("recency_cache_size must be a positive integer")
	}
	if c.RequestTimeout < 0 {
		return invalid("request_timeout cannot be negative")
	}

	switch c.Store.Type {
	case "sqlite":
		if c.Store.Path == "" {
			return invalid("store.path is required for sqlite")
		}
	case "valkey":
		if c.Store.Address == "" {
			return invalid("store.address is required for valkey")
		}
	case "memory":
	default:
		return invalid("unknown store type %q", c.Store.Type)
	}

	switch c.Delivery.Type {
	case "smtp":
		if c.SenderPassword == "" {
			return invalid("sender_password cannot be empty")
		}
		if c.SMTPServer == "" {
			return invalid("smtp_server cannot be empty")
		}
		if c.SMTPPort < 1 || c.SMTPPort > 65535 {
			return invalid("smtp_port must be between 1 and 65535")
		}
	case "webhook":
		if err := validateURL(c.Delivery.Webhook.URL); err != nil {
			return err
		}
		if c.Delivery.Webhook.Provider == "" {
			c.Delivery.Webhook.Provider = "generic"
		}
		if p := c.Delivery.Webhook.Provider; p != "generic" && p != "discord" {
			return invalid("unknown webhook provider %q", p)
		}
	default:
		return invalid("unknown delivery type %q", c.Delivery.Type)
	}

	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

func validateEmail(field, v string) error {
	if v == "" {
		return invalid("%s cannot be empty", field)
	}
	if !emailPattern.MatchString(v) {
		return invalid("%s has invalid email format", field)
	}
	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return invalid("invalid URL %q", raw)
	}
	return nil
}

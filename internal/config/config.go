package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/AlexJaimeH/narra-sub000/internal/domain"
)

type RuntimeConfig struct {
	Dev bool
}

type AppConfig struct {
	// BaseURL is the product surface magic links redirect to,
	// e.g. https://app.narra.mx
	BaseURL string `yaml:"base_url"`
	// ActivationURL is the page that collects recipient details for a
	// deferred gift; the activation token is appended as ?token=.
	ActivationURL string `yaml:"activation_url"`
	// ManagementURL is the buyer-facing account administration page; the
	// management token is appended as ?token=.
	ManagementURL string `yaml:"management_url"`
}

type HTTPConfig struct {
	Port int `yaml:"port"`
	// APIKey guards the internal provisioning route. Bearer token.
	APIKey string `yaml:"api_key"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type StripeConfig struct {
	SecretKey string `yaml:"secret_key"`
	BaseURL   string `yaml:"base_url"` // override for tests; default api.stripe.com
}

type IdentityConfig struct {
	BaseURL    string `yaml:"base_url"`
	ServiceKey string `yaml:"service_key"`
}

type BackendConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	// ServiceKey is a static bearer credential. When empty and JWTSecret is
	// set, the gateway mints short-lived service tokens instead.
	ServiceKey string        `yaml:"service_key"`
	JWTSecret  string        `yaml:"jwt_secret"`
	TokenTTL   time.Duration `yaml:"token_ttl"`
}

type SMTPConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	FromAddress string `yaml:"from_address"`
	FromName    string `yaml:"from_name"`
}

type Config struct {
	App      AppConfig      `yaml:"app"`
	HTTP     HTTPConfig     `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
	Redis    RedisConfig    `yaml:"redis"`
	Stripe   StripeConfig   `yaml:"stripe"`
	Identity IdentityConfig `yaml:"identity"`
	Backend  BackendConfig  `yaml:"backend"`
	SMTP     SMTPConfig     `yaml:"smtp"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file, applies NARRA_* environment overrides for
// secrets, and validates required credentials.
func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Runtime.Dev = dev

	applyEnvOverrides(&cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnvOverrides lets deployments keep secrets out of the YAML file.
func applyEnvOverrides(cfg *Config) {
	set := func(dst *string, env string) {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
	set(&cfg.Stripe.SecretKey, "NARRA_STRIPE_KEY")
	set(&cfg.Identity.ServiceKey, "NARRA_IDENTITY_KEY")
	set(&cfg.Backend.ServiceKey, "NARRA_BACKEND_KEY")
	set(&cfg.Backend.JWTSecret, "NARRA_BACKEND_JWT_SECRET")
	set(&cfg.SMTP.Password, "NARRA_SMTP_PASSWORD")
	set(&cfg.HTTP.APIKey, "NARRA_API_KEY")
}

func (c *Config) validate() error {
	switch {
	case c.Stripe.SecretKey == "":
		return &domain.ConfigError{Field: "stripe.secret_key"}
	case c.Identity.BaseURL == "":
		return &domain.ConfigError{Field: "identity.base_url"}
	case c.Identity.ServiceKey == "":
		return &domain.ConfigError{Field: "identity.service_key"}
	case c.Backend.BaseURL == "":
		return &domain.ConfigError{Field: "backend.base_url"}
	case c.Backend.ServiceKey == "" && c.Backend.JWTSecret == "":
		return &domain.ConfigError{Field: "backend.service_key or backend.jwt_secret"}
	case c.App.BaseURL == "":
		return &domain.ConfigError{Field: "app.base_url"}
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.App.ActivationURL == "" {
		c.App.ActivationURL = c.App.BaseURL + "/gift/activate"
	}
	if c.App.ManagementURL == "" {
		c.App.ManagementURL = c.App.BaseURL + "/account/manage"
	}
	if c.Backend.TokenTTL == 0 {
		c.Backend.TokenTTL = 5 * time.Minute
	}
	return nil
}

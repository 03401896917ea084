package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config represents the complete platform configuration
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	Stripe   StripeConfig   `toml:"stripe"`
	Identity IdentityConfig `toml:"identity"`
	Mail     MailConfig     `toml:"mail"`
	Minio    MinioConfig    `toml:"minio"`
}

// ServerConfig contains HTTP server and token signing settings
type ServerConfig struct {
	Port      int    `toml:"port"`
	JWTSecret string `toml:"jwt_secret"`
}

// DatabaseConfig contains Postgres connection settings
type DatabaseConfig struct {
	URL string `toml:"url"`
}

// RedisConfig contains cache and session store settings
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// StripeConfig contains payment gateway credentials
type StripeConfig struct {
	SecretKey string `toml:"secret_key"`
	Currency  string `toml:"currency"`
}

// IdentityConfig contains external identity provider settings
type IdentityConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
	JWKSURL string `toml:"jwks_url"`
}

// MailConfig contains the transactional mail provider settings
type MailConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
	From    string `toml:"from"`
}

// MinioConfig contains object storage settings for brand assets
type MinioConfig struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	UseSSL    bool   `toml:"use_ssl"`
	Bucket    string `toml:"bucket"`
}

// Load loads configuration from a TOML file
func Load(filename string) (*Config, error) {
	config := &Config{}
	_, err := toml.DecodeFile(filename, config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	config.applyEnvOverrides()
	return config, nil
}

// LoadFromEnv builds a configuration from environment variables alone, for
// deployments that do not ship a config file.
func LoadFromEnv() *Config {
	config := &Config{}
	config.applyEnvOverrides()
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Redis.Addr == "" {
		config.Redis.Addr = "localhost:6379"
	}
	if config.Stripe.Currency == "" {
		config.Stripe.Currency = "usd"
	}
	if config.Minio.Bucket == "" {
		config.Minio.Bucket = "brand-assets"
	}
	return config
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Server.JWTSecret = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("STRIPE_SECRET_KEY"); v != "" {
		c.Stripe.SecretKey = v
	}
	if v := os.Getenv("IDENTITY_BASE_URL"); v != "" {
		c.Identity.BaseURL = v
	}
	if v := os.Getenv("IDENTITY_API_KEY"); v != "" {
		c.Identity.APIKey = v
	}
	if v := os.Getenv("IDENTITY_JWKS_URL"); v != "" {
		c.Identity.JWKSURL = v
	}
	if v := os.Getenv("MAIL_BASE_URL"); v != "" {
		c.Mail.BaseURL = v
	}
	if v := os.Getenv("MAIL_API_KEY"); v != "" {
		c.Mail.APIKey = v
	}
	if v := os.Getenv("MAIL_FROM"); v != "" {
		c.Mail.From = v
	}
	if v := os.Getenv("MINIO_ENDPOINT"); v != "" {
		c.Minio.Endpoint = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		c.Minio.AccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		c.Minio.SecretKey = v
	}
	if os.Getenv("MINIO_USE_SSL") == "true" {
		c.Minio.UseSSL = true
	}
}

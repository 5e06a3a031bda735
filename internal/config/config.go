package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type BackendConfig struct {
	BaseURL   string `yaml:"baseURL"`
	TimeoutMS int    `yaml:"timeoutMS"`
}

type Config struct {
	Server struct {
		Port        int      `yaml:"port"`
		CORSOrigins []string `yaml:"corsOrigins"`
	} `yaml:"server"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	Backends struct {
		Static BackendConfig `yaml:"static"`
		AI     struct {
			BackendConfig `yaml:",inline"`
			Mode          string `yaml:"mode"` // http | openai
			APIKey        string `yaml:"apiKey"`
			Model         string `yaml:"model"`
		} `yaml:"ai"`
	} `yaml:"backends"`

	Aggregation struct {
		OverlapLines int    `yaml:"overlapLines"`
		TaxonomyPath string `yaml:"taxonomyPath"`
	} `yaml:"aggregation"`

	Report struct {
		BaseURL   string `yaml:"baseURL"`
		TimeoutMS int    `yaml:"timeoutMS"`
	} `yaml:"report"`

	Languages []string `yaml:"languages"`

	RateLimit struct {
		Capacity   int `yaml:"capacity"`
		RefillRate int `yaml:"refillRate"`
	} `yaml:"rateLimit"`

	Database struct {
		Driver   string `yaml:"driver"` // mysql | postgres | empty for in-memory
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`
}

// Load reads the config file at path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Backends.Static.BaseURL == "" {
		return nil, fmt.Errorf("backends.static.baseURL is required")
	}
	if cfg.Backends.AI.Mode == "" {
		cfg.Backends.AI.Mode = "http"
	}
	if cfg.Backends.AI.Mode == "http" && cfg.Backends.AI.BaseURL == "" {
		return nil, fmt.Errorf("backends.ai.baseURL is required in http mode")
	}
	if cfg.Backends.AI.Mode == "openai" && cfg.Backends.AI.APIKey == "" {
		return nil, fmt.Errorf("backends.ai.apiKey is required in openai mode")
	}
	return &cfg, nil
}

// Timeout returns the backend's per-call budget with a 10s default.
func (b BackendConfig) Timeout() time.Duration {
	if b.TimeoutMS <= 0 {
		return 10 * time.Second
	}
	return time.Duration(b.TimeoutMS) * time.Millisecond
}

// ReportTimeout returns the report collaborator budget with a 15s default.
func (c *Config) ReportTimeout() time.Duration {
	if c.Report.TimeoutMS <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.Report.TimeoutMS) * time.Millisecond
}

// MySQLDSN builds the MySQL connection string
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN builds the Postgres connection string
func (c *Config) PostgresDSN() string {
	ssl := c.Database.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		ssl,
	)
}

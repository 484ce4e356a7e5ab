package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           int      `yaml:"port"`
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"server"`

	Database struct {
		Driver   string `yaml:"driver"` // mysql or postgres
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	Github struct {
		ClientID     string `yaml:"clientID"`
		ClientSecret string `yaml:"clientSecret"`
		RedirectURI  string `yaml:"redirectURI"`
	} `yaml:"github"`

	OpenAI struct {
		APIKey   string `yaml:"apiKey"`
		Model    string `yaml:"model"`
		MockMode bool   `yaml:"mockMode"`
	} `yaml:"openai"`

	Auth struct {
		JWTSecret string `yaml:"jwtSecret"`
	} `yaml:"auth"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`
}

// Load reads config.yaml, then lets environment variables (including a
// local .env, if present) override the secrets.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	overrideString(&c.Database.Driver, "DB_DRIVER")
	overrideString(&c.Database.Host, "DB_HOST")
	overrideInt(&c.Database.Port, "DB_PORT")
	overrideString(&c.Database.User, "DB_USER")
	overrideString(&c.Database.Password, "DB_PASSWORD")
	overrideString(&c.Database.Name, "DB_NAME")

	overrideString(&c.Github.ClientID, "GITHUB_CLIENT_ID")
	overrideString(&c.Github.ClientSecret, "GITHUB_CLIENT_SECRET")
	overrideString(&c.Github.RedirectURI, "GITHUB_REDIRECT_URI")

	overrideString(&c.OpenAI.APIKey, "OPENAI_API_KEY")
	overrideString(&c.OpenAI.Model, "OPENAI_MODEL")
	if v := os.Getenv("OPENAI_MOCK_MODE"); v != "" {
		c.OpenAI.MockMode = v == "1" || strings.EqualFold(v, "true")
	}

	overrideString(&c.Auth.JWTSecret, "JWT_SECRET")

	overrideString(&c.Minio.Endpoint, "MINIO_ENDPOINT")
	overrideString(&c.Minio.AccessKey, "MINIO_ACCESS_KEY")
	overrideString(&c.Minio.SecretKey, "MINIO_SECRET_KEY")
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "mysql"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-3.5-turbo"
	}
}

// Validate fails fast on settings without a sane default.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres":
	default:
		return fmt.Errorf("config: unknown database driver %q", c.Database.Driver)
	}
	if c.Github.ClientID == "" || c.Github.ClientSecret == "" {
		return fmt.Errorf("config: github clientID/clientSecret are required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("config: auth jwtSecret is required")
	}
	if c.OpenAI.APIKey == "" && !c.OpenAI.MockMode {
		return fmt.Errorf("config: openai apiKey is required unless mockMode is on")
	}
	return nil
}

// MinioEnabled reports whether the optional payload archive is configured.
func (c *Config) MinioEnabled() bool {
	return c.Minio.Endpoint != "" && c.Minio.BucketName != ""
}

func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func overrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

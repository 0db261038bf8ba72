package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	Server struct {
		Port         int           `yaml:"port"`
		ReadTimeout  time.Duration `yaml:"readTimeout"`
		WriteTimeout time.Duration `yaml:"writeTimeout"`
		IdleTimeout  time.Duration `yaml:"idleTimeout"`
		MaxBodyBytes int64         `yaml:"maxBodyBytes"`
	} `yaml:"server"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"cors"`

	AI struct {
		Provider    string        `yaml:"provider"`
		Temperature float32       `yaml:"temperature"`
		Timeout     time.Duration `yaml:"timeout"`
		Gemini      struct {
			APIKey string `yaml:"apiKey"`
			Model  string `yaml:"model"`
		} `yaml:"gemini"`
		OpenAI struct {
			APIKey  string `yaml:"apiKey"`
			Model   string `yaml:"model"`
			BaseURL string `yaml:"baseURL"`
		} `yaml:"openai"`
	} `yaml:"ai"`

	Places struct {
		APIKey  string        `yaml:"apiKey"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"places"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file or env override is present.
func Default() *Config {
	var c Config
	c.Server.Port = 5001
	c.Server.ReadTimeout = 15 * time.Second
	c.Server.WriteTimeout = 90 * time.Second
	c.Server.IdleTimeout = 60 * time.Second
	c.Server.MaxBodyBytes = 15 << 20
	c.CORS.AllowedOrigins = []string{"*"}
	c.AI.Provider = ProviderGemini
	c.AI.Temperature = 0.25
	c.AI.Timeout = 60 * time.Second
	c.AI.Gemini.Model = "gemini-1.5-flash-latest"
	c.AI.OpenAI.Model = "gpt-4o-mini"
	c.Places.Timeout = 10 * time.Second
	c.Log.Level = "info"
	c.Log.Format = "json"
	return &c
}

// Load baca .env, lalu file config (boleh tidak ada), lalu env override.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, err
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = p
	}
	setString(&c.AI.Provider, getenv("AI_PROVIDER"))
	setString(&c.AI.Gemini.APIKey, getenv("GEMINI_API_KEY"))
	setString(&c.AI.Gemini.Model, getenv("GEMINI_MODEL"))
	setString(&c.AI.OpenAI.APIKey, getenv("OPENAI_API_KEY"))
	setString(&c.AI.OpenAI.Model, getenv("OPENAI_MODEL"))
	setString(&c.Places.APIKey, getenv("GOOGLE_PLACES_API_KEY"))
	setString(&c.Log.Level, getenv("LOG_LEVEL"))
	setString(&c.Log.Format, getenv("LOG_FORMAT"))
	if v := getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.CORS.AllowedOrigins = origins
	}
	return nil
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

// Validate checks values that would otherwise fail at request time.
// Missing API keys are not an error: the gateway reports them per request.
func (c *Config) Validate() error {
	c.AI.Provider = strings.ToLower(strings.TrimSpace(c.AI.Provider))
	switch c.AI.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown ai.provider %q (allowed: gemini, openai)", c.AI.Provider)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.maxBodyBytes must be positive")
	}
	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		return fmt.Errorf("ai.temperature %v out of range [0,2]", c.AI.Temperature)
	}
	return nil
}

// AIKey returns the API key of the selected provider.
func (c *Config) AIKey() string {
	if c.AI.Provider == ProviderOpenAI {
		return c.AI.OpenAI.APIKey
	}
	return c.AI.Gemini.APIKey
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

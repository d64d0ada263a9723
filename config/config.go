package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Vendor endpoints used when the config file leaves them empty.
const (
	DefaultLanguageConfidenceEndpoint = "https://apis.languageconfidence.ai/speech-assessment/unscripted/us"
	DefaultSpeechAceEndpoint          = "https://api2.speechace.com/api/scoring/speech/v0.5/json"
	DefaultSpeechSuperEndpoint        = "https://api.speechsuper.com/asr.eval"

	defaultVendorTimeoutSeconds = 30
)

type Config struct {
	Server struct {
		Port         int      `yaml:"port"`
		AllowOrigins []string `yaml:"allowOrigins"`
	} `yaml:"server"`

	Database struct {
		URI        string `yaml:"uri"`
		Name       string `yaml:"name"`
		Collection string `yaml:"collection"`
	} `yaml:"database"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Stream   string `yaml:"stream"`
	} `yaml:"redis"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Vendors VendorsConfig `yaml:"vendors"`
}

// VendorsConfig holds the credentials and endpoints of every speech-assessment vendor.
// Empty credentials are allowed here; adapters report them per call.
type VendorsConfig struct {
	LanguageConfidence LanguageConfidenceConfig `yaml:"languageConfidence"`
	SpeechAce          SpeechAceConfig          `yaml:"speechAce"`
	SpeechSuper        SpeechSuperConfig        `yaml:"speechSuper"`
}

type LanguageConfidenceConfig struct {
	APIKey         string `yaml:"apiKey"`
	Endpoint       string `yaml:"endpoint"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

type SpeechAceConfig struct {
	APIKey         string `yaml:"apiKey"`
	Endpoint       string `yaml:"endpoint"`
	Dialect        string `yaml:"dialect"`
	ClientID       string `yaml:"clientId"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

type SpeechSuperConfig struct {
	AppKey         string `yaml:"appKey"`
	SecretKey      string `yaml:"secretKey"`
	Endpoint       string `yaml:"endpoint"`
	UserID         string `yaml:"userId"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

// Default returns a Config with every optional field filled in.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Port = 5000
	cfg.Server.AllowOrigins = []string{"http://localhost:5000"}
	cfg.Database.Name = "speecheval"
	cfg.Database.Collection = "hasil_evaluasi"
	cfg.Redis.Stream = "speecheval:evaluations"
	cfg.Log.Level = "info"

	cfg.Vendors.LanguageConfidence.Endpoint = DefaultLanguageConfidenceEndpoint
	cfg.Vendors.LanguageConfidence.TimeoutSeconds = defaultVendorTimeoutSeconds

	cfg.Vendors.SpeechAce.Endpoint = DefaultSpeechAceEndpoint
	cfg.Vendors.SpeechAce.Dialect = "en-us"
	cfg.Vendors.SpeechAce.ClientID = "LND-APP-001"
	cfg.Vendors.SpeechAce.TimeoutSeconds = defaultVendorTimeoutSeconds

	cfg.Vendors.SpeechSuper.Endpoint = DefaultSpeechSuperEndpoint
	cfg.Vendors.SpeechSuper.UserID = "guest-user"
	cfg.Vendors.SpeechSuper.TimeoutSeconds = defaultVendorTimeoutSeconds
	return cfg
}

// LoadConfig reads the configuration file on top of Default and then applies
// environment overrides. An empty path skips the file.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.fillEmpty()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment. Variables that are already set are left alone and missing files
// are ignored.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	setString(&c.Vendors.LanguageConfidence.APIKey, "LC_API_KEY")
	setString(&c.Vendors.SpeechAce.APIKey, "SA_API_KEY")
	setString(&c.Vendors.SpeechSuper.AppKey, "SS_APP_KEY")
	setString(&c.Vendors.SpeechSuper.SecretKey, "SS_SECRET_KEY")
	setString(&c.Database.URI, "MONGODB_URI")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Log.Level, "LOG_LEVEL")

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT must be an integer, got %q", v)
		}
		c.Server.Port = port
	}
	return nil
}

// fillEmpty restores defaults for fields a config file explicitly blanked.
func (c *Config) fillEmpty() {
	d := Default()
	if c.Vendors.LanguageConfidence.Endpoint == "" {
		c.Vendors.LanguageConfidence.Endpoint = d.Vendors.LanguageConfidence.Endpoint
	}
	if c.Vendors.SpeechAce.Endpoint == "" {
		c.Vendors.SpeechAce.Endpoint = d.Vendors.SpeechAce.Endpoint
	}
	if c.Vendors.SpeechAce.Dialect == "" {
		c.Vendors.SpeechAce.Dialect = d.Vendors.SpeechAce.Dialect
	}
	if c.Vendors.SpeechAce.ClientID == "" {
		c.Vendors.SpeechAce.ClientID = d.Vendors.SpeechAce.ClientID
	}
	if c.Vendors.SpeechSuper.Endpoint == "" {
		c.Vendors.SpeechSuper.Endpoint = d.Vendors.SpeechSuper.Endpoint
	}
	if c.Vendors.SpeechSuper.UserID == "" {
		c.Vendors.SpeechSuper.UserID = d.Vendors.SpeechSuper.UserID
	}
	if c.Database.Name == "" {
		c.Database.Name = d.Database.Name
	}
	if c.Database.Collection == "" {
		c.Database.Collection = d.Database.Collection
	}
	if c.Redis.Stream == "" {
		c.Redis.Stream = d.Redis.Stream
	}
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if len(c.Server.AllowOrigins) == 0 {
		return fmt.Errorf("server.allowOrigins must list at least one origin")
	}

	if c.Redis.DB < 0 {
		return fmt.Errorf("redis.db must be >= 0, got %d", c.Redis.DB)
	}

	timeouts := map[string]int{
		"vendors.languageConfidence.timeoutSeconds": c.Vendors.LanguageConfidence.TimeoutSeconds,
		"vendors.speechAce.timeoutSeconds":          c.Vendors.SpeechAce.TimeoutSeconds,
		"vendors.speechSuper.timeoutSeconds":        c.Vendors.SpeechSuper.TimeoutSeconds,
	}
	for name, v := range timeouts {
		if v <= 0 {
			return fmt.Errorf("%s must be > 0, got %d", name, v)
		}
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn, or error, got %q", c.Log.Level)
	}
	return nil
}

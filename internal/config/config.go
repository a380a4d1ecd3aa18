// Package config builds the process configuration once at startup.
//
// Sources are applied in order: defaults, an optional YAML or TOML file,
// then ARKHAM_* environment variables (a .env file is loaded first when present).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvFile is the environment variable naming the config file
const EnvFile = "ARKHAM_CONFIG"

// Database drivers
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// Config is the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" toml:"server"`
	Database DatabaseConfig `yaml:"database" toml:"database"`
	Redis    RedisConfig    `yaml:"redis" toml:"redis"`
	Auth     AuthConfig     `yaml:"auth" toml:"auth"`
	Game     GameConfig     `yaml:"game" toml:"game"`
	I18n     I18nConfig     `yaml:"i18n" toml:"i18n"`
	Files    FilesConfig    `yaml:"files" toml:"files"`
	Mail     MailConfig     `yaml:"mail" toml:"mail"`
	Log      LogConfig      `yaml:"log" toml:"log"`
	Notify   NotifyConfig   `yaml:"notify" toml:"notify"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Host            string        `yaml:"host" toml:"host"`
	Port            int           `yaml:"port" toml:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" toml:"read_timeout" validate:"min=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" toml:"write_timeout" validate:"min=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig selects and configures the storage backend
type DatabaseConfig struct {
	Driver      string `yaml:"driver" toml:"driver" validate:"oneof=memory postgres"`
	URL         string `yaml:"url" toml:"url" validate:"required_if=Driver postgres"`
	AutoMigrate bool   `yaml:"auto_migrate" toml:"auto_migrate"`
}

// RedisConfig enables the cross-instance event bus when URL is set
type RedisConfig struct {
	URL           string `yaml:"url" toml:"url" validate:"omitempty,url"`
	PoolSize      int    `yaml:"pool_size" toml:"pool_size" validate:"min=1"`
	ChannelPrefix string `yaml:"channel_prefix" toml:"channel_prefix" validate:"required"`
}

// AdminConfig is the account created by the seed command
type AdminConfig struct {
	Name     string `yaml:"name" toml:"name"`
	Email    string `yaml:"email" toml:"email" validate:"omitempty,email"`
	Password string `yaml:"password" toml:"password"`
}

// AuthConfig configures tokens and account emails
type AuthConfig struct {
	JWTSecret   string        `yaml:"jwt_secret" toml:"jwt_secret"`
	JWTExpiry   time.Duration `yaml:"jwt_expiry" toml:"jwt_expiry" validate:"gt=0"`
	TokenLength int           `yaml:"token_length" toml:"token_length" validate:"min=8,max=128"`
	AppURL      string        `yaml:"app_url" toml:"app_url" validate:"omitempty,url"`
	Admin       AdminConfig   `yaml:"admin" toml:"admin"`
}

// GameConfig holds session limits
type GameConfig struct {
	MaxPlayers         int `yaml:"max_players" toml:"max_players" validate:"min=1"`
	SessionTokenLength int `yaml:"session_token_length" toml:"session_token_length" validate:"min=4,max=32"`
}

// I18nConfig lists the supported locales
type I18nConfig struct {
	AppLanguage        string   `yaml:"app_language" toml:"app_language" validate:"len=2"`
	AvailableLanguages []string `yaml:"available_languages" toml:"available_languages" validate:"min=1,dive,len=2"`
}

// S3Config configures the S3 file store
type S3Config struct {
	Bucket    string `yaml:"bucket" toml:"bucket"`
	Region    string `yaml:"region" toml:"region"`
	Endpoint  string `yaml:"endpoint" toml:"endpoint" validate:"omitempty,url"`
	PublicURL string `yaml:"public_url" toml:"public_url" validate:"omitempty,url"`
}

// FilesConfig selects where uploaded images live
type FilesConfig struct {
	Driver  string   `yaml:"driver" toml:"driver" validate:"oneof=local s3"`
	Dir     string   `yaml:"dir" toml:"dir"`
	BaseURL string   `yaml:"base_url" toml:"base_url" validate:"required"`
	MaxSize int64    `yaml:"max_size" toml:"max_size" validate:"gt=0"`
	S3      S3Config `yaml:"s3" toml:"s3"`
}

// MailConfig selects the outgoing mail transport
type MailConfig struct {
	Driver   string `yaml:"driver" toml:"driver" validate:"oneof=log smtp"`
	Host     string `yaml:"host" toml:"host" validate:"required_if=Driver smtp"`
	Port     int    `yaml:"port" toml:"port" validate:"min=0,max=65535"`
	Username string `yaml:"username" toml:"username"`
	Password string `yaml:"password" toml:"password"`
	From     string `yaml:"from" toml:"from" validate:"required,email"`
}

// LogConfig configures the slog handler
type LogConfig struct {
	Level  string `yaml:"level" toml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" toml:"format" validate:"oneof=json text"`
}

// NotifyConfig configures the push channel
type NotifyConfig struct {
	CleanupSchedule string `yaml:"cleanup_schedule" toml:"cleanup_schedule" validate:"required"`
}

// Default returns the configuration used when nothing overrides it
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    0,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:      DriverMemory,
			AutoMigrate: true,
		},
		Redis: RedisConfig{
			PoolSize:      10,
			ChannelPrefix: "arkham:events",
		},
		Auth: AuthConfig{
			JWTExpiry:   24 * time.Hour,
			TokenLength: 32,
			AppURL:      "http://localhost:3000",
		},
		Game: GameConfig{
			MaxPlayers:         6,
			SessionTokenLength: 6,
		},
		I18n: I18nConfig{
			AppLanguage:        "en",
			AvailableLanguages: []string{"en", "es"},
		},
		Files: FilesConfig{
			Driver:  "local",
			Dir:     "uploads",
			BaseURL: "/uploads",
			MaxSize: 5 << 20,
		},
		Mail: MailConfig{
			Driver: "log",
			Port:   587,
			From:   "noreply@arkham.local",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Notify: NotifyConfig{
			CleanupSchedule: "@every 5m",
		},
	}
}

// Load builds the configuration. path may be empty, in which case ARKHAM_CONFIG is consulted.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvFile)
	}
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse YAML config: %w", err)
		}
	case ".toml":
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return fmt.Errorf("parse TOML config: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config file type: %s", path)
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field rules and the rules that span sections
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if !slices.Contains(c.I18n.AvailableLanguages, c.I18n.AppLanguage) {
		return fmt.Errorf("invalid config: app language %q is not in available languages", c.I18n.AppLanguage)
	}
	if c.Database.Driver != DriverMemory && c.Auth.JWTSecret == "" {
		return errors.New("invalid config: auth.jwt_secret is required")
	}
	if c.Files.Driver == "s3" && c.Files.S3.Bucket == "" {
		return errors.New("invalid config: files.s3.bucket is required for the s3 driver")
	}
	return nil
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

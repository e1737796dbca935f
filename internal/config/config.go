package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "TRACKSIDE"

type Config struct {
	BackendURL     string        `mapstructure:"backend_url"     validate:"required,url"`
	CacheDir       string        `mapstructure:"cache_dir"       validate:"required"`
	DBPath         string        `mapstructure:"db_path"         validate:"required"`
	LogPath        string        `mapstructure:"log_path"        validate:"required"`
	LogLevel       string        `mapstructure:"log_level"       validate:"oneof=debug info warn error"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
	EventTTL       time.Duration `mapstructure:"event_ttl"`
	PlanTTL        time.Duration `mapstructure:"plan_ttl"`
	FetchPageSize  int           `mapstructure:"fetch_page_size" validate:"gte=1,lte=100"`
	LoginRoute     string        `mapstructure:"login_route"     validate:"required,startswith=/"`

	// In-process mock club API.
	MockAPI   bool          `mapstructure:"mock_api"`
	MockAddr  string        `mapstructure:"mock_addr"  validate:"required_if=MockAPI true"`
	JWTSecret string        `mapstructure:"jwt_secret" validate:"required_if=MockAPI true"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"  validate:"gt=0"`
}

// Default returns the built-in configuration with paths under the user
// config dir.
func Default() Config {
	cacheDir := filepath.Join(userConfigDir(), "trackside")
	return Config{
		BackendURL:     "http://localhost:8001",
		CacheDir:       cacheDir,
		DBPath:         filepath.Join(cacheDir, "trackside.db"),
		LogPath:        filepath.Join(cacheDir, "debug.log"),
		LogLevel:       "info",
		RequestTimeout: 10 * time.Second,
		EventTTL:       5 * time.Minute,
		PlanTTL:        1 * time.Hour,
		FetchPageSize:  10,
		LoginRoute:     "/login",
		MockAPI:        false,
		MockAddr:       "127.0.0.1:8001",
		JWTSecret:      "your-secret-key-here-change-in-production",
		TokenTTL:       30 * time.Minute,
	}
}

// APIBase returns the REST root that every client call is relative to.
func (c Config) APIBase() string {
	return c.BackendURL + "/api"
}

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"backend":   "backend_url",
	"cache-dir": "cache_dir",
	"log-level": "log_level",
	"mock":      "mock_api",
	"mock-addr": "mock_addr",
	"timeout":   "request_timeout",
}

// RegisterFlags adds the overridable settings to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	def := Default()
	fs.String("backend", def.BackendURL, "club API base URL")
	fs.String("cache-dir", def.CacheDir, "directory for the database, config.yaml and logs")
	fs.String("log-level", def.LogLevel, "debug, info, warn or error")
	fs.Bool("mock", def.MockAPI, "serve the built-in mock club API and use it as the backend")
	fs.String("mock-addr", def.MockAddr, "listen address for the mock API")
	fs.Duration("timeout", def.RequestTimeout, "per-request timeout")
}

// Load builds the configuration from defaults, an optional config.yaml in
// the cache dir, a .env file in the working directory, TRACKSIDE_*
// environment variables and flags set on fs, in increasing order of
// precedence. fs may be nil.
func Load(fs *pflag.FlagSet) (Config, error) {
	_ = godotenv.Load() // a missing .env is fine

	def := Default()
	v := viper.New()
	setDefaults(v, def)
	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(v.GetString("cache_dir"))
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}

	// Derived paths follow a relocated cache dir unless set explicitly.
	if cfg.CacheDir != def.CacheDir {
		if cfg.DBPath == def.DBPath {
			cfg.DBPath = filepath.Join(cfg.CacheDir, "trackside.db")
		}
		if cfg.LogPath == def.LogPath {
			cfg.LogPath = filepath.Join(cfg.CacheDir, "debug.log")
		}
	}

	// The mock listens locally and is the backend unless one was given.
	if cfg.MockAPI && cfg.BackendURL == def.BackendURL {
		cfg.BackendURL = "http://" + cfg.MockAddr
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper, def Config) {
	v.SetDefault("backend_url", def.BackendURL)
	v.SetDefault("cache_dir", def.CacheDir)
	v.SetDefault("db_path", def.DBPath)
	v.SetDefault("log_path", def.LogPath)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("request_timeout", def.RequestTimeout)
	v.SetDefault("event_ttl", def.EventTTL)
	v.SetDefault("plan_ttl", def.PlanTTL)
	v.SetDefault("fetch_page_size", def.FetchPageSize)
	v.SetDefault("login_route", def.LoginRoute)
	v.SetDefault("mock_api", def.MockAPI)
	v.SetDefault("mock_addr", def.MockAddr)
	v.SetDefault("jwt_secret", def.JWTSecret)
	v.SetDefault("token_ttl", def.TokenTTL)
}

func userConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}

// Package config loads server settings from an optional YAML file and
// ELECTION_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jengzang/election-map-backend-go/internal/logging"
)

const envPrefix = "ELECTION"

// Data sources
const (
	SourceFiles  = "files"
	SourceSQLite = "sqlite"
)

// Config 应用配置
type Config struct {
	Server ServerConfig      `mapstructure:"server"`
	Data   DataConfig        `mapstructure:"data"`
	Auth   AuthConfig        `mapstructure:"auth"`
	Log    logging.LogConfig `mapstructure:"log"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Port       string        `mapstructure:"port"`
	Mode       string        `mapstructure:"mode"`
	RateLimit  int           `mapstructure:"rate_limit"`
	RateWindow time.Duration `mapstructure:"rate_window"`
}

// DataConfig 数据源配置
type DataConfig struct {
	// Source is "files" (JSON + GeoJSON under Dir) or "sqlite" (DBPath for
	// the election tables, GeoJSON still read from Dir)
	Source string `mapstructure:"source"`
	Dir    string `mapstructure:"dir"`
	DBPath string `mapstructure:"db_path"`
}

// AuthConfig 管理接口鉴权
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

var defaults = map[string]interface{}{
	"server.port":        ":8080",
	"server.mode":        "release",
	"server.rate_limit":  120,
	"server.rate_window": time.Minute,
	"data.source":        SourceFiles,
	"data.dir":           "./data",
	"data.db_path":       "./data/election.db",
	"auth.jwt_secret":    "",
	"log.level":          "info",
	"log.format":         "json",
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// env overrides only reach Unmarshal for keys viper already knows
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	return v
}

// Load reads the YAML file at path, then applies ELECTION_* overrides
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", path, err)
	}
	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from ELECTION_* variables and defaults only
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}
	ApplyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

// ApplyDefaults fills zero values left by an explicit empty setting
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8080"
	}
	if !strings.Contains(cfg.Server.Port, ":") {
		cfg.Server.Port = ":" + cfg.Server.Port
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "release"
	}
	if cfg.Server.RateWindow <= 0 {
		cfg.Server.RateWindow = time.Minute
	}
	if cfg.Data.Source == "" {
		cfg.Data.Source = SourceFiles
	}
	cfg.Data.Source = strings.ToLower(cfg.Data.Source)
	if cfg.Data.Dir == "" {
		cfg.Data.Dir = "./data"
	}
	if cfg.Data.DBPath == "" {
		cfg.Data.DBPath = "./data/election.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
}

// Validate rejects settings the server cannot start with
func (c *Config) Validate() error {
	var errs []error
	switch c.Data.Source {
	case SourceFiles, SourceSQLite:
	default:
		errs = append(errs, fmt.Errorf("data.source must be %q or %q, got %q", SourceFiles, SourceSQLite, c.Data.Source))
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		errs = append(errs, fmt.Errorf("server.mode must be debug, release or test, got %q", c.Server.Mode))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("server.rate_limit must not be negative"))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format must be json or console, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// AdminEnabled reports whether the reload endpoint should be mounted
func (c *Config) AdminEnabled() bool {
	return c.Auth.JWTSecret != ""
}

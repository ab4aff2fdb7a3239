/*
Package config loads the daemon settings.

Values are read from config.toml in the home directory, then overridden by
BAZAAR_ prefixed environment variables. A .env file in the working directory
is loaded into the environment first.
*/
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/iov-one/bazaar"
	"github.com/iov-one/bazaar/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// FileName is the name of the configuration file in the home directory.
	FileName = "config.toml"
	// GenesisFileName is the name of the genesis file in the home directory.
	GenesisFileName = "genesis.json"

	envPrefix = "BAZAAR"
)

// Config holds all settings of the daemon.
type Config struct {
	// ChainID is compared with the genesis on start, if set.
	ChainID  string `toml:"chain_id" mapstructure:"chain_id"`
	Listen   string `toml:"listen" mapstructure:"listen"`
	LogLevel string `toml:"log_level" mapstructure:"log_level"`
	// Debug returns full error details to the API clients.
	Debug bool `toml:"debug" mapstructure:"debug"`
	// DBPath is relative to the home directory. Empty means in memory.
	DBPath string `toml:"db_path" mapstructure:"db_path"`
	// History is the number of versions kept. Zero keeps all of them.
	History         int64 `toml:"history" mapstructure:"history"`
	CacheTTLSeconds int   `toml:"cache_ttl_seconds" mapstructure:"cache_ttl_seconds"`
}

// DefaultConfig returns the settings used when nothing else is provided.
func DefaultConfig() Config {
	return Config{
		Listen:          "localhost:8000",
		LogLevel:        "info",
		DBPath:          "data/bazaar.db",
		History:         100,
		CacheTTLSeconds: 5,
	}
}

// CacheTTL returns the lifetime of cached query results.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Validate returns an error if the settings cannot be used.
func (c Config) Validate() error {
	var errs error
	if c.ChainID != "" && !bazaar.IsValidChainID(c.ChainID) {
		errs = errors.AppendField(errs, "ChainID", errors.ErrInvalidInput)
	}
	if c.Listen == "" {
		errs = errors.AppendField(errs, "Listen", errors.ErrEmpty)
	}
	if c.History < 0 {
		errs = errors.AppendField(errs, "History", errors.ErrInvalidInput)
	}
	if c.CacheTTLSeconds < 0 {
		errs = errors.AppendField(errs, "CacheTTLSeconds", errors.ErrInvalidInput)
	}
	return errs
}

// Load reads the settings of the daemon using given home directory.
func Load(home string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "load .env: %s", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.SetConfigFile(filepath.Join(home, FileName))
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	def := DefaultConfig()
	v.SetDefault("chain_id", def.ChainID)
	v.SetDefault("listen", def.Listen)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("debug", def.Debug)
	v.SetDefault("db_path", def.DBPath)
	v.SetDefault("history", def.History)
	v.SetDefault("cache_ttl_seconds", def.CacheTTLSeconds)

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine, defaults and environment are used.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "read %s: %s", FileName, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "decode config: %s", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Write stores the settings as a TOML file.
func Write(path string, c Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	fd, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	defer fd.Close()
	if err := toml.NewEncoder(fd).Encode(c); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "encode config: %s", err)
	}
	return nil
}

// Decode reads a TOML file written by Write. Keys missing from the file keep
// their default value.
func Decode(path string) (*Config, error) {
	c := DefaultConfig()
	meta, err := toml.DecodeFile(path, &c)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrNotFound, path)
		}
		return nil, errors.Wrapf(errors.ErrInvalidInput, "decode %s: %s", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "unknown key %s", undecoded[0])
	}
	return &c, nil
}

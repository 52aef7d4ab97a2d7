// Package config loads ipsniffer settings from flags, environment and an optional file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"ipsniffer/output"
	"ipsniffer/port"
	"ipsniffer/scanner"
)

// EnvPrefix namespaces environment overrides, e.g. IPSNIFFER_THREADS.
const EnvPrefix = "IPSNIFFER"

const (
	keyThreads      = "threads"
	keyTimeout      = "timeout"
	keyOutput       = "output"
	keyFile         = "file"
	keyVerbose      = "verbose"
	keyConfig       = "config"
	keyOTLPEndpoint = "otlp-endpoint"
)

var (
	ErrInvalidThreads = errors.New("invalid threads value")
	ErrInvalidTimeout = errors.New("invalid timeout")
)

// Config is the validated runtime configuration of one invocation.
type Config struct {
	Threads      int           `mapstructure:"threads"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Output       output.Format `mapstructure:"output"`
	File         string        `mapstructure:"file"`
	Verbose      bool          `mapstructure:"verbose"`
	OTLPEndpoint string        `mapstructure:"otlp-endpoint"`
}

// RegisterFlags adds every configurable setting to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.IntP(keyThreads, "j", scanner.DefaultWorkers, "number of concurrent workers (1-65535)")
	fs.DurationP(keyTimeout, "t", scanner.DefaultTimeout, "per-port connect timeout")
	fs.StringP(keyOutput, "o", string(output.FormatText), "report format: text, json or yaml")
	fs.StringP(keyFile, "f", "", "also write the report to this file")
	fs.BoolP(keyVerbose, "v", false, "enable debug logging")
	fs.String(keyConfig, "", "config file (yaml, toml or json)")
	fs.String(keyOTLPEndpoint, "", "OTLP/gRPC collector for traces and metrics (host:port)")
}

// Load resolves settings with precedence flag > environment > config file > default.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return Config{}, fmt.Errorf("binding flags: %w", err)
	}

	if path := v.GetString(keyConfig); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges and normalizes the output format.
func (c *Config) Validate() error {
	if c.Threads < 1 || c.Threads > port.Full.Len() {
		return fmt.Errorf("%w %d: must be between 1 and %d", ErrInvalidThreads, c.Threads, port.Full.Len())
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w %s: must be positive", ErrInvalidTimeout, c.Timeout)
	}
	f, err := output.ParseFormat(string(c.Output))
	if err != nil {
		return err
	}
	c.Output = f
	return nil
}

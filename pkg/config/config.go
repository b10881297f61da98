// Package config resolves run settings from defaults, an optional config file
// and command-line flags, in increasing precedence. Environment variables are
// not consulted.
package config

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"SeqCoverage/pkg/seqio"
)

// keys, shared by flags and config files
const (
	KeyThreads    = "threads"
	KeyMaxLine    = "max-line"
	KeyLinePolicy = "line-policy"
	KeyBufferSize = "buffer-size"
	KeyStrict     = "strict"
	KeyLogLevel   = "log-level"
)

// Config holds the tuning knobs of a run.
type Config struct {
	Threads    int    `mapstructure:"threads"`
	MaxLine    int    `mapstructure:"max-line"`
	LinePolicy string `mapstructure:"line-policy"`
	BufferSize int    `mapstructure:"buffer-size"`
	Strict     bool   `mapstructure:"strict"`
	LogLevel   string `mapstructure:"log-level"`
}

// Default is sequential, with the reference line and buffer limits.
func Default() Config {
	return Config{
		Threads:    1,
		MaxLine:    seqio.DefaultMaxLine,
		LinePolicy: seqio.Reject.String(),
		BufferSize: seqio.DefaultBufferSize,
		Strict:     false,
		LogLevel:   "warn",
	}
}

// AddFlags registers the tuning flags on fs with their defaults.
func AddFlags(fs *pflag.FlagSet) {
	var d = Default()
	fs.IntP(KeyThreads, "t", d.Threads, "number of read files counted concurrently")
	fs.Int(KeyMaxLine, d.MaxLine, "longest accepted line in bytes, 0 for no limit (needed for unwrapped single-line references)")
	fs.String(KeyLinePolicy, d.LinePolicy, "what to do with longer lines: reject or truncate")
	fs.Int(KeyBufferSize, d.BufferSize, "read buffer size in bytes")
	fs.Bool(KeyStrict, d.Strict, "reject FASTQ records with a bad separator or quality length")
	fs.String(KeyLogLevel, d.LogLevel, "log level on stderr: debug, info, warn or error")
}

// Load merges defaults, the file at path (skipped when empty) and the flags of
// fs that were set explicitly.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	var (
		v = viper.New()
		d = Default()
	)
	v.SetDefault(KeyThreads, d.Threads)
	v.SetDefault(KeyMaxLine, d.MaxLine)
	v.SetDefault(KeyLinePolicy, d.LinePolicy)
	v.SetDefault(KeyBufferSize, d.BufferSize)
	v.SetDefault(KeyStrict, d.Strict)
	v.SetDefault(KeyLogLevel, d.LogLevel)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	if fs != nil {
		for _, key := range []string{KeyThreads, KeyMaxLine, KeyLinePolicy, KeyBufferSize, KeyStrict, KeyLogLevel} {
			if f := fs.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that cannot be fixed up silently.
func (c *Config) Validate() error {
	if c.Threads < 0 {
		return fmt.Errorf("%s must not be negative, got %d", KeyThreads, c.Threads)
	}
	if c.MaxLine < 0 {
		return fmt.Errorf("%s must not be negative, got %d", KeyMaxLine, c.MaxLine)
	}
	if c.BufferSize < 0 {
		return fmt.Errorf("%s must not be negative, got %d", KeyBufferSize, c.BufferSize)
	}
	if _, err := seqio.ParseLinePolicy(c.LinePolicy); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// ReaderOptions converts the line settings for seqio.
func (c *Config) ReaderOptions() (seqio.Options, error) {
	var policy, err = seqio.ParseLinePolicy(c.LinePolicy)
	if err != nil {
		return seqio.Options{}, err
	}
	return seqio.Options{
		BufferSize: c.BufferSize,
		MaxLine:    c.MaxLine,
		Policy:     policy,
	}, nil
}

// Workers returns Threads, with 0 meaning one per CPU.
func (c *Config) Workers() int {
	if c.Threads == 0 {
		return runtime.GOMAXPROCS(0)
	}
	return c.Threads
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelWarn, fmt.Errorf("%s: %w", KeyLogLevel, err)
	}
	return level, nil
}

// ABOUTME: Daemon configuration loaded from file, environment and .env
// ABOUTME: Uses viper with a SOUNDSTAGE_ prefix after godotenv preloads .env
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment key, e.g. SOUNDSTAGE_PORT
const EnvPrefix = "SOUNDSTAGE"

// Output backends
const (
	OutputOto  = "oto"
	OutputNull = "null"
)

// Config holds daemon settings
type Config struct {
	Name       string   `mapstructure:"name"`
	Port       int      `mapstructure:"port"`
	AssetRoot  string   `mapstructure:"asset_root"`
	SampleRate int      `mapstructure:"sample_rate"`
	Output     string   `mapstructure:"output"`
	BufferMs   int      `mapstructure:"buffer_ms"`
	Volume     float64  `mapstructure:"volume"`
	Preload    []string `mapstructure:"preload"`
	MDNS       bool     `mapstructure:"mdns"`
	LogFile    string   `mapstructure:"log_file"`
	NoTUI      bool     `mapstructure:"no_tui"`
	Debug      bool     `mapstructure:"debug"`
}

// Options selects where configuration is read from
type Options struct {
	// ConfigFile is an explicit config path. When empty, soundstage.{yaml,toml,json}
	// in the working directory is used if present.
	ConfigFile string

	// EnvFile is preloaded into the environment (default ".env"). Missing is fine.
	EnvFile string
}

func defaults(v *viper.Viper) {
	v.SetDefault("name", "")
	v.SetDefault("port", 8928)
	v.SetDefault("asset_root", ".")
	v.SetDefault("sample_rate", 48000)
	v.SetDefault("output", OutputOto)
	v.SetDefault("buffer_ms", 40)
	v.SetDefault("volume", 1.0)
	v.SetDefault("preload", []string{})
	v.SetDefault("mdns", true)
	v.SetDefault("log_file", "soundstage.log")
	v.SetDefault("no_tui", false)
	v.SetDefault("debug", false)
}

// Load reads configuration. Precedence is env over file over defaults.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	} else {
		log.Printf("Loaded environment from %s", envFile)
	}

	v := viper.New()
	defaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", opts.ConfigFile, err)
		}
	} else {
		v.SetConfigName("soundstage")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}
	if used := v.ConfigFileUsed(); used != "" {
		log.Printf("Using config file %s", used)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks ranges and enumerations
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", c.SampleRate)
	}
	if c.Output != OutputOto && c.Output != OutputNull {
		return fmt.Errorf("invalid output %q (want %s or %s)", c.Output, OutputOto, OutputNull)
	}
	if c.BufferMs <= 0 {
		return fmt.Errorf("invalid buffer size %dms", c.BufferMs)
	}
	if c.Volume < 0 || c.Volume > 1 {
		return fmt.Errorf("invalid volume %v (want 0..1)", c.Volume)
	}
	return nil
}

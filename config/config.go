package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// OutputConfig selects the synth output
type OutputConfig struct {
	PortName string `json:"portName,omitempty" mapstructure:"portName"`
	Channel  int    `json:"channel" mapstructure:"channel"` // 1-16
}

// InputConfig selects the keyboard used to queue notes live
type InputConfig struct {
	PortName string `json:"portName,omitempty" mapstructure:"portName"`
	BaseNote int    `json:"baseNote" mapstructure:"baseNote"` // played note that queues index 0
}

// TransportConfig holds timing and pitch settings
type TransportConfig struct {
	Tempo       int `json:"tempo" mapstructure:"tempo"`
	Gate        int `json:"gate" mapstructure:"gate"` // percent of the step
	Dividend    int `json:"dividend" mapstructure:"dividend"`
	Denominator int `json:"denominator" mapstructure:"denominator"`
	RootNote    int `json:"rootNote" mapstructure:"rootNote"`
}

// LogConfig controls the debug log
type LogConfig struct {
	Debug bool   `json:"debug,omitempty" mapstructure:"debug"`
	File  string `json:"file,omitempty" mapstructure:"file"`
}

// Config is the main configuration structure
type Config struct {
	Output    OutputConfig    `json:"output" mapstructure:"output"`
	Input     InputConfig     `json:"input" mapstructure:"input"`
	Transport TransportConfig `json:"transport" mapstructure:"transport"`
	Log       LogConfig       `json:"log" mapstructure:"log"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Channel: 1,
		},
		Input: InputConfig{
			BaseNote: 48,
		},
		Transport: TransportConfig{
			Tempo:       120,
			Gate:        50,
			Dividend:    1,
			Denominator: 16,
			RootNote:    60,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-arp"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from the default path, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads path over the defaults. GOARP_* environment variables
// (e.g. GOARP_TRANSPORT_TEMPO) override both.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix("goarp")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, DefaultConfig())

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Normalize()
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("output.portName", d.Output.PortName)
	v.SetDefault("output.channel", d.Output.Channel)
	v.SetDefault("input.portName", d.Input.PortName)
	v.SetDefault("input.baseNote", d.Input.BaseNote)
	v.SetDefault("transport.tempo", d.Transport.Tempo)
	v.SetDefault("transport.gate", d.Transport.Gate)
	v.SetDefault("transport.dividend", d.Transport.Dividend)
	v.SetDefault("transport.denominator", d.Transport.Denominator)
	v.SetDefault("transport.rootNote", d.Transport.RootNote)
	v.SetDefault("log.debug", d.Log.Debug)
	v.SetDefault("log.file", d.Log.File)
}

// Normalize clamps values into their valid ranges
func (c *Config) Normalize() {
	c.Output.Channel = clamp(c.Output.Channel, 1, 16)
	c.Input.BaseNote = clamp(c.Input.BaseNote, 0, 127)
	c.Transport.Tempo = clamp(c.Transport.Tempo, 20, 300)
	c.Transport.Gate = clamp(c.Transport.Gate, 1, 100)
	c.Transport.RootNote = clamp(c.Transport.RootNote, 0, 127)
	if c.Transport.Dividend < 1 {
		c.Transport.Dividend = 1
	}
	if c.Transport.Denominator < 1 {
		c.Transport.Denominator = 16
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Save writes the config to the default path
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path
func (c *Config) SaveTo(path string) error {
	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

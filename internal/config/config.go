// Package config handles tool configuration loading and management.
package config

import "time"

// Config holds all settings.
type Config struct {
	Fetch   FetchConfig   `yaml:"fetch" toml:"fetch"`
	Store   StoreConfig   `yaml:"store" toml:"store"`
	Build   BuildConfig   `yaml:"build" toml:"build"`
	Scene   SceneConfig   `yaml:"scene" toml:"scene"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// FetchConfig holds remote payload download settings.
type FetchConfig struct {
	Timeout   Duration `yaml:"timeout" toml:"timeout"` // per fetch, 0 disables
	UserAgent string   `yaml:"user_agent" toml:"user_agent"`
}

// StoreConfig holds the on-disk item store location.
type StoreConfig struct {
	Root string `yaml:"root" toml:"root"`
}

// BuildConfig holds settings for turning payloads into placeable items.
type BuildConfig struct {
	DefaultShader string     `yaml:"default_shader" toml:"default_shader"`
	Shaders       []string   `yaml:"shaders" toml:"shaders"`
	Workers       int        `yaml:"workers" toml:"workers"`
	BaseRotation  [3]float32 `yaml:"base_rotation" toml:"base_rotation"` // Euler degrees
}

// SceneConfig holds placement output settings.
type SceneConfig struct {
	Output string   `yaml:"output" toml:"output"`
	Tick   Duration `yaml:"tick" toml:"tick"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Fetch: FetchConfig{
			Timeout:   Duration(60 * time.Second),
			UserAgent: "kensetsu/" + Version,
		},
		Store: StoreConfig{
			Root: "Assets",
		},
		Build: BuildConfig{
			DefaultShader: "Standard",
			Shaders:       []string{"Standard", "Unlit/Texture", "Unlit/Transparent", "Unlit/Color"},
			Workers:       1,
			BaseRotation:  [3]float32{-90, 0, 0},
		},
		Scene: SceneConfig{
			Output: "scene.yaml",
			Tick:   Duration(10 * time.Millisecond),
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Version is the tool version reported by the CLI and the default user agent.
var Version = "0.3.0"

// Duration is a time.Duration written as a string such as "30s" in both
// YAML and TOML files.
type Duration time.Duration

// D returns the value as a time.Duration.
func (d Duration) D() time.Duration {
	return time.Duration(d)
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Package daemon holds the configuration shared by the finch binaries.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the on-disk configuration, stored at ~/.finch/config.toml.
type Config struct {
	API       APIConfig       `toml:"api"`
	Client    ClientConfig    `toml:"client"`
	Assistant AssistantConfig `toml:"assistant"`
}

// APIConfig configures the assistant server.
type APIConfig struct {
	Host      string `toml:"host"`
	Port      int    `toml:"port"`
	StaticDir string `toml:"static_dir"`
}

// ClientConfig configures the dashboard sync engine.
type ClientConfig struct {
	ServerURL           string `toml:"server_url"`
	PollIntervalSeconds int    `toml:"poll_interval_seconds"`
	DataDir             string `toml:"data_dir"`
	MetricsAddr         string `toml:"metrics_addr"`
}

// AssistantConfig configures the Gemini agent. APIKey is normally left
// empty in the file and supplied via GEMINI_API_KEY.
type AssistantConfig struct {
	Model  string `toml:"model"`
	APIKey string `toml:"api_key"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8000,
		},
		Client: ClientConfig{
			ServerURL:           "http://127.0.0.1:8000",
			PollIntervalSeconds: 3,
			DataDir:             filepath.Join(homeDir(), ".finch"),
		},
		Assistant: AssistantConfig{
			Model: "gemini-2.0-flash",
		},
	}
}

// DefaultPath returns ~/.finch/config.toml.
func DefaultPath() string {
	return filepath.Join(homeDir(), ".finch", "config.toml")
}

// Load reads the config file at path, layered over the defaults. A missing
// file is not an error. GEMINI_API_KEY overrides assistant.api_key when set.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if _, err := toml.DecodeFile(path, &cfg); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.Assistant.APIKey = key
	}
	return cfg, nil
}

// ListenAddr returns the host:port the server binds to.
func (c APIConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

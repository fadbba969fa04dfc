// Package config loads the voxdata service configuration from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the voxdata API configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Storage StorageConfig `yaml:"storage"`
	Agent   AgentConfig   `yaml:"agent"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// StorageConfig holds record source settings.
type StorageConfig struct {
	Driver    string            `yaml:"driver"` // file, redis (default: file)
	Dir       string            `yaml:"dir"`    // base directory for the file driver
	Files     map[string]string `yaml:"files"`  // dataset -> file name overrides
	Addrs     []string          `yaml:"addrs"`  // redis driver addresses
	Password  string            `yaml:"password"`
	KeyPrefix string            `yaml:"key_prefix"`
}

// AgentConfig holds the voice agent's language-model provider settings.
// The provider speaks the OpenAI API; base_url points it at a compatible
// host (e.g. Groq).
type AgentConfig struct {
	APIKey        string `yaml:"api_key"`
	BaseURL       string `yaml:"base_url"`
	Model         string `yaml:"model"`
	STTModel      string `yaml:"stt_model"`
	TTSModel      string `yaml:"tts_model"`
	TTSVoice      string `yaml:"tts_voice"`
	MaxToolRounds int    `yaml:"max_tool_rounds"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "file"
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = "data"
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "voxdata:"
	}
	if c.Storage.Files == nil {
		c.Storage.Files = map[string]string{}
	}
	defaults := map[string]string{
		"crm":       "customers.json",
		"support":   "support_tickets.json",
		"analytics": "analytics.json",
	}
	for ds, name := range defaults {
		if c.Storage.Files[ds] == "" {
			c.Storage.Files[ds] = name
		}
	}
	if c.Agent.MaxToolRounds <= 0 {
		c.Agent.MaxToolRounds = 4
	}
	if c.Agent.TTSVoice == "" {
		c.Agent.TTSVoice = "alloy"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Storage.Driver {
	case "file":
		// dir has a default
	case "redis":
		if len(c.Storage.Addrs) == 0 {
			return fmt.Errorf("storage.addrs is required for the redis driver")
		}
	default:
		return fmt.Errorf("storage.driver must be \"file\" or \"redis\", got %q", c.Storage.Driver)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}

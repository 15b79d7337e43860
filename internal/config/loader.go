package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigDirName is the directory under $HOME holding the config file.
	ConfigDirName = ".bmp2yuv"
	// ConfigFileName is the config file inside ConfigDirName.
	ConfigFileName = "config.yaml"
)

// envRef matches a ${NAME} reference inside the config file.
var envRef = regexp.MustCompile(`\$\{([^}]+)\}`)

// Loader reads and writes one YAML config file.
type Loader struct {
	path string
}

// NewLoader returns a loader for ~/.bmp2yuv/config.yaml.
func NewLoader() (*Loader, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewLoaderWithPath(filepath.Join(home, ConfigDirName, ConfigFileName)), nil
}

// NewLoaderWithPath returns a loader for the file at path.
func NewLoaderWithPath(path string) *Loader {
	return &Loader{path: path}
}

// ConfigPath returns the config file path.
func (l *Loader) ConfigPath() string {
	return l.path
}

// Load returns the config with ${NAME} references replaced by environment
// values. A missing file yields DefaultConfig.
func (l *Loader) Load() (*Config, error) {
	return l.read(true)
}

// LoadRaw returns the config as written, without expanding references.
// The config subcommands use it so that saving never bakes environment
// values into the file.
func (l *Loader) LoadRaw() (*Config, error) {
	return l.read(false)
}

// read decodes the file over DefaultConfig so keys the file omits keep
// their defaults.
func (l *Loader) read(expand bool) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if expand {
		data = []byte(expandEnvVars(string(data)))
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", l.path, err)
	}
	return cfg, nil
}

// Save writes cfg, creating the config directory if needed.
func (l *Loader) Save(cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(l.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Exists reports whether the config file is present.
func (l *Loader) Exists() bool {
	_, err := os.Stat(l.path)
	return err == nil
}

// Init writes DefaultConfig unless a file already exists.
func (l *Loader) Init() error {
	if l.Exists() {
		return fmt.Errorf("config file already exists: %s", l.path)
	}
	return l.Save(DefaultConfig())
}

// expandEnvVars substitutes ${NAME} references; unset names become "".
func expandEnvVars(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(ref string) string {
		return os.Getenv(envRef.FindStringSubmatch(ref)[1])
	})
}

// GetEnvOrDefault returns the value of key, or def when it is unset or empty.
func GetEnvOrDefault(key, def string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return def
}

// GetEnvBool reports whether key is set to "true", "1" or "yes".
func GetEnvBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// GetEnvInt returns key parsed as an integer, or def if it is unset or not
// a number.
func GetEnvInt(key string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return n
}

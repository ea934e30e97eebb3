package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	envPrefix = "SQLITEGUI_"

	// MemoryDatabase is the sentinel path for a transient database with no backing file
	MemoryDatabase = ":memory:"
)

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig `json:"database"`
	Queries  QueriesConfig  `json:"queries"`
	Logging  LoggingConfig  `json:"logging"`
	Debug    DebugConfig    `json:"debug"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Path         string `json:"path"          env:"DB_PATH"          envDefault:":memory:"`
	Driver       string `json:"driver"        env:"DB_DRIVER"        envDefault:"auto"` // auto, sqlite3, duckdb
	QueryTimeout string `json:"query_timeout" env:"DB_QUERY_TIMEOUT" envDefault:"0s"`   // 0s disables the timeout
}

// QueriesConfig represents saved query storage configuration
type QueriesConfig struct {
	Directory string `json:"directory" env:"QUERIES_DIR" envDefault:"~/.config/sqlitegui/queries"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `json:"level"  env:"LOG_LEVEL"  envDefault:"warn"`                             // debug, info, warn, error
	Format string `json:"format" env:"LOG_FORMAT" envDefault:"text"`                             // text, json
	Output string `json:"output" env:"LOG_OUTPUT" envDefault:"stderr"`                           // stdout, stderr, file
	File   string `json:"file"   env:"LOG_FILE"   envDefault:"~/.config/sqlitegui/logs/app.log"` // log file path when output is file
}

// DebugConfig represents debug configuration
type DebugConfig struct {
	Enabled bool `json:"enabled" env:"DEBUG"   envDefault:"false"`
	Verbose bool `json:"verbose" env:"VERBOSE" envDefault:"false"`
}

// DefaultConfig returns a configuration populated only from envDefault tags
func DefaultConfig() *Config {
	cfg := &Config{}
	// An empty environment map makes env apply defaults without reading the process environment.
	_ = env.ParseWithOptions(cfg, env.Options{
		Prefix:      envPrefix,
		Environment: map[string]string{},
	})

	return cfg
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig() (*Config, error) {
	return LoadConfigWithOverrides(nil)
}

// LoadConfigWithOverrides loads configuration with optional command-line flag overrides
func LoadConfigWithOverrides(flagOverrides map[string]interface{}) (*Config, error) {
	config := DefaultConfig()

	configPath := getConfigPath()
	if _, err := os.Stat(configPath); err == nil {
		if err := loadConfigFromFile(config, configPath); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := applyEnvironmentOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if flagOverrides != nil {
		if err := applyFlagOverrides(config, flagOverrides); err != nil {
			return nil, fmt.Errorf("failed to apply flag overrides: %w", err)
		}
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// loadConfigFromFile loads configuration from a JSON file
func loadConfigFromFile(config *Config, configPath string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fileConfig Config
	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	mergeConfigs(config, &fileConfig)

	return nil
}

// applyEnvironmentOverrides overlays only the variables that are actually set in the
// environment, so envDefault values never clobber settings read from the config file.
func applyEnvironmentOverrides(config *Config) error {
	var fromEnv Config

	setTags := map[string]bool{}
	if err := env.ParseWithOptions(&fromEnv, env.Options{
		Prefix: envPrefix,
		OnSet: func(tag string, _ interface{}, isDefault bool) {
			if !isDefault {
				setTags[strings.TrimPrefix(tag, envPrefix)] = true
			}
		},
	}); err != nil {
		return err
	}

	copyEnvFields(reflect.ValueOf(config).Elem(), reflect.ValueOf(&fromEnv).Elem(), setTags)

	return nil
}

// copyEnvFields copies every field whose env tag is in setTags from source to target
func copyEnvFields(target, source reflect.Value, setTags map[string]bool) {
	for i := 0; i < source.NumField(); i++ {
		field := source.Type().Field(i)
		if field.Type.Kind() == reflect.Struct {
			copyEnvFields(target.Field(i), source.Field(i), setTags)
			continue
		}

		if setTags[field.Tag.Get("env")] {
			target.Field(i).Set(source.Field(i))
		}
	}
}

// applyFlagOverrides applies command-line flag overrides to configuration
func applyFlagOverrides(config *Config, overrides map[string]interface{}) error {
	for key, value := range overrides {
		switch key {
		case "db-path":
			if str, ok := value.(string); ok && str != "" {
				config.Database.Path = str
			}
		case "driver":
			if str, ok := value.(string); ok && str != "" {
				config.Database.Driver = str
			}
		case "log-level":
			if str, ok := value.(string); ok && str != "" {
				config.Logging.Level = str
			}
		case "queries-dir":
			if str, ok := value.(string); ok && str != "" {
				config.Queries.Directory = str
			}
		case "verbose":
			if b, ok := value.(bool); ok {
				config.Debug.Verbose = b
			}
		case "debug":
			if b, ok := value.(bool); ok {
				config.Debug.Enabled = b
			}
		default:
			return fmt.Errorf("unknown flag override: %s", key)
		}
	}

	return nil
}

// mergeConfigs merges source configuration into target configuration
func mergeConfigs(target, source *Config) {
	var mergeValues func(t, s reflect.Value)
	mergeValues = func(t, s reflect.Value) {
		if t.Kind() != s.Kind() {
			return
		}

		if t.Kind() == reflect.Struct {
			for i := 0; i < s.NumField(); i++ {
				mergeValues(t.Field(i), s.Field(i))
			}
		} else if s.Kind() == reflect.Bool {
			t.Set(s)
		} else if !s.IsZero() {
			t.Set(s)
		}
	}

	mergeValues(reflect.ValueOf(target).Elem(), reflect.ValueOf(source).Elem())
}

// validateConfig validates the configuration for common errors
func validateConfig(config *Config) error {
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf(
			"invalid log level: %s (must be debug, info, warn, or error)",
			config.Logging.Level,
		)
	}

	validLogFormats := map[string]bool{
		"text": true, "json": true,
	}
	if !validLogFormats[strings.ToLower(config.Logging.Format)] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", config.Logging.Format)
	}

	validLogOutputs := map[string]bool{
		"stdout": true, "stderr": true, "file": true,
	}
	if !validLogOutputs[strings.ToLower(config.Logging.Output)] {
		return fmt.Errorf(
			"invalid log output: %s (must be stdout, stderr, or file)",
			config.Logging.Output,
		)
	}

	validDrivers := map[string]bool{
		"auto": true, "sqlite3": true, "duckdb": true,
	}
	if !validDrivers[strings.ToLower(config.Database.Driver)] {
		return fmt.Errorf(
			"invalid database driver: %s (must be auto, sqlite3, or duckdb)",
			config.Database.Driver,
		)
	}

	timeout, err := time.ParseDuration(config.Database.QueryTimeout)
	if err != nil {
		return fmt.Errorf("invalid database query timeout: %s", config.Database.QueryTimeout)
	}

	if timeout < 0 {
		return fmt.Errorf("database query timeout must not be negative: %s", config.Database.QueryTimeout)
	}

	return nil
}

// QueryTimeout returns the parsed query timeout; zero means no timeout
func (c *Config) QueryTimeout() time.Duration {
	d, err := time.ParseDuration(c.Database.QueryTimeout)
	if err != nil {
		return 0
	}

	return d
}

// SaveConfig saves configuration to file
func SaveConfig(config *Config) error {
	configPath := getConfigPath()

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// getConfigPath returns the path to the configuration file
func getConfigPath() string {
	if configPath := os.Getenv(envPrefix + "CONFIG"); configPath != "" {
		return ExpandPath(configPath)
	}

	return filepath.Join(GetConfigDir(), "config.json")
}

// ExpandPath expands ~ to home directory in file paths
func ExpandPath(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if path == "~" {
		return homeDir
	}

	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir, path[2:])
	}

	return path
}

// ExpandAllPaths expands all paths in the configuration
func (c *Config) ExpandAllPaths() {
	if c.Database.Path != MemoryDatabase {
		c.Database.Path = ExpandPath(c.Database.Path)
	}

	c.Queries.Directory = ExpandPath(c.Queries.Directory)
	c.Logging.File = ExpandPath(c.Logging.File)
}

// GetConfigDir returns the configuration directory
func GetConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".config/sqlitegui"
	}

	return filepath.Join(homeDir, ".config", "sqlitegui")
}

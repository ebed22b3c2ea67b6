// Copyright 2024 Designetica Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

var (
	// ErrMissingRequiredField is returned when a required configuration field is missing
	ErrMissingRequiredField = errors.New("missing required configuration field")
	// ErrInvalidConfigValue is returned when a configuration value is invalid
	ErrInvalidConfigValue = errors.New("invalid configuration value")
)

// Config represents the complete application configuration
type Config struct {
	Environment string            `mapstructure:"environment"`
	Server      ServerConfig      `mapstructure:"server"`
	AzureOpenAI AzureOpenAIConfig `mapstructure:"azure_openai"`
	Figma       FigmaConfig       `mapstructure:"figma"`
	Generation  GenerationConfig  `mapstructure:"generation"`
	Backend     BackendConfig     `mapstructure:"backend"`
	Registry    RegistryConfig    `mapstructure:"registry"`
	Monitor     MonitorConfig     `mapstructure:"monitor"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port    int    `mapstructure:"port"`
	Version string `mapstructure:"version"`
}

// AzureOpenAIConfig contains Azure OpenAI API configuration
type AzureOpenAIConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	APIKey      string  `mapstructure:"api_key"`
	Deployment  string  `mapstructure:"deployment"`
	APIVersion  string  `mapstructure:"api_version"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

// Configured reports whether enough settings are present to call the model.
func (c AzureOpenAIConfig) Configured() bool {
	return c.Endpoint != "" && c.APIKey != "" && c.Deployment != ""
}

// FigmaConfig contains Figma REST API and OAuth configuration
type FigmaConfig struct {
	APIBase        string        `mapstructure:"api_base"`
	AccessToken    string        `mapstructure:"access_token"`
	ClientID       string        `mapstructure:"client_id"`
	ClientSecret   string        `mapstructure:"client_secret"`
	RedirectURI    string        `mapstructure:"redirect_uri"`
	AuthURL        string        `mapstructure:"auth_url"`
	TokenURL       string        `mapstructure:"token_url"`
	Scopes         []string      `mapstructure:"scopes"`
	OAuthTimeout   time.Duration `mapstructure:"oauth_timeout"`
	RequestsPerSec float64       `mapstructure:"requests_per_sec"`
}

// GenerationConfig contains client-side generation settings
type GenerationConfig struct {
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
	CacheTTL   time.Duration `mapstructure:"cache_ttl"`
	CacheSize  int           `mapstructure:"cache_size"`
	Variant    string        `mapstructure:"variant"`
}

// BackendConfig contains backend discovery settings used by the generation client
type BackendConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	Host           string        `mapstructure:"host"`
	CandidatePorts []int         `mapstructure:"candidate_ports"`
	ProbeTimeout   time.Duration `mapstructure:"probe_timeout"`
	PortCacheTTL   time.Duration `mapstructure:"port_cache_ttl"`
	PortCachePath  string        `mapstructure:"port_cache_path"`
}

// RegistryConfig contains component registry storage settings
type RegistryConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// MonitorConfig contains health monitor settings
type MonitorConfig struct {
	Endpoints        []string      `mapstructure:"endpoints"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	LatencyThreshold time.Duration `mapstructure:"latency_threshold"`
	CertExpiryDays   int           `mapstructure:"cert_expiry_days"`
	LogPath          string        `mapstructure:"log_path"`
	AlertsPath       string        `mapstructure:"alerts_path"`
	MaxLogs          int           `mapstructure:"max_logs"`
	MaxAlerts        int           `mapstructure:"max_alerts"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed for field '%s': %s", e.Field, e.Message)
}

// LoadOptions contains options for configuration loading
type LoadOptions struct {
	ConfigPath       string
	EnableHotReload  bool
	Environment      string
	ValidateRequired bool
}

// Load loads configuration from file and environment variables
// Environment variables take precedence over config file values
func Load(configPath string) (*Config, error) {
	return LoadWithOptions(LoadOptions{
		ConfigPath:       configPath,
		EnableHotReload:  false,
		Environment:      getEnvironment(),
		ValidateRequired: true,
	})
}

// LoadWithOptions loads configuration with additional options
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	v := viper.New()

	setDefaults(v)
	if opts.Environment != "" {
		v.SetDefault("environment", opts.Environment)
	}

	hasFile, err := setConfigFile(v, opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to set config file: %w", err)
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("DESIGNETICA")

	if hasFile {
		if err := v.ReadInConfig(); err != nil {
			// Config file not found is not an error if env vars are set
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	setEnvironmentMappings(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if opts.ValidateRequired {
		if err := validateConfig(&config); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("server.port", 7071)
	v.SetDefault("server.version", "1.0.0")

	v.SetDefault("azure_openai.api_version", "2024-08-01-preview")
	v.SetDefault("azure_openai.deployment", "gpt-4o")
	v.SetDefault("azure_openai.max_tokens", 4000)
	v.SetDefault("azure_openai.temperature", 0.7)

	v.SetDefault("figma.api_base", "https://api.figma.com/v1")
	v.SetDefault("figma.auth_url", "https://www.figma.com/oauth")
	v.SetDefault("figma.token_url", "https://api.figma.com/v1/oauth/token")
	v.SetDefault("figma.scopes", []string{"file_content:read"})
	v.SetDefault("figma.oauth_timeout", 15*time.Second)
	v.SetDefault("figma.requests_per_sec", 5.0)

	v.SetDefault("generation.timeout", 90*time.Second)
	v.SetDefault("generation.max_retries", 2)
	v.SetDefault("generation.cache_ttl", 30*time.Minute)
	v.SetDefault("generation.cache_size", 256)
	v.SetDefault("generation.variant", "standard")

	v.SetDefault("backend.base_url", "http://localhost:7071")
	v.SetDefault("backend.host", "localhost")
	v.SetDefault("backend.candidate_ports", []int{7071, 7072, 7073, 7074, 8080, 3001})
	v.SetDefault("backend.probe_timeout", 2*time.Second)
	v.SetDefault("backend.port_cache_ttl", 10*time.Second)
	v.SetDefault("backend.port_cache_path", "./.designetica/backend-port.json")

	v.SetDefault("registry.db_path", "./components.db")

	v.SetDefault("monitor.endpoints", []string{"http://localhost:7071/api/health"})
	v.SetDefault("monitor.interval", 5*time.Minute)
	v.SetDefault("monitor.timeout", 5*time.Second)
	v.SetDefault("monitor.latency_threshold", 3*time.Second)
	v.SetDefault("monitor.cert_expiry_days", 14)
	v.SetDefault("monitor.log_path", "./monitoring/health-log.json")
	v.SetDefault("monitor.alerts_path", "./monitoring/alerts.json")
	v.SetDefault("monitor.max_logs", 100)
	v.SetDefault("monitor.max_alerts", 50)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.file_path", "./designetica.log")
}

// setConfigFile sets the configuration file path with fallback logic.
// It reports whether a config file should be read at all.
func setConfigFile(v *viper.Viper, configPath string) (bool, error) {
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return false, fmt.Errorf("config file specified by CONFIG_PATH does not exist: %s", envPath)
		}
		v.SetConfigFile(envPath)
		return true, nil
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return false, fmt.Errorf("config file does not exist: %s", configPath)
		}
		v.SetConfigFile(configPath)
		return true, nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	for _, path := range []string{"./configs/config.yaml", "./config.yaml"} {
		if _, err := os.Stat(path); err == nil {
			return true, nil
		}
	}

	// Environment-only configuration is allowed, the way Azure Functions apps are configured
	return false, nil
}

// setEnvironmentMappings sets explicit environment variable mappings
func setEnvironmentMappings(v *viper.Viper) {
	envMappings := []struct {
		envVar    string
		configKey string
	}{
		{"AZURE_OPENAI_ENDPOINT", "azure_openai.endpoint"},
		{"AZURE_OPENAI_KEY", "azure_openai.api_key"},
		// AZURE_OPENAI_API_KEY wins over AZURE_OPENAI_KEY when both are set
		{"AZURE_OPENAI_API_KEY", "azure_openai.api_key"},
		{"AZURE_OPENAI_DEPLOYMENT", "azure_openai.deployment"},
		{"AZURE_OPENAI_API_VERSION", "azure_openai.api_version"},
		{"FIGMA_CLIENT_ID", "figma.client_id"},
		{"FIGMA_CLIENT_SECRET", "figma.client_secret"},
		{"FIGMA_REDIRECT_URI", "figma.redirect_uri"},
		{"FIGMA_ACCESS_TOKEN", "figma.access_token"},
		{"BACKEND_BASE_URL", "backend.base_url"},
		{"REGISTRY_DB_PATH", "registry.db_path"},
		{"LOG_LEVEL", "logging.level"},
		{"LOG_FORMAT", "logging.format"},
		{"LOG_OUTPUT", "logging.output"},
		{"ENVIRONMENT", "environment"},
	}

	for _, m := range envMappings {
		if value := os.Getenv(m.envVar); value != "" {
			v.Set(m.configKey, value)
		}
	}
}

// validateConfig validates the configuration for required fields and valid values
func validateConfig(config *Config) error {
	var errors []ValidationError

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		errors = append(errors, ValidationError{
			Field:   "server.port",
			Message: "port must be between 1 and 65535",
		})
	}

	if config.Generation.Timeout <= 0 {
		errors = append(errors, ValidationError{
			Field:   "generation.timeout",
			Message: "timeout must be greater than 0",
		})
	}

	if config.Generation.MaxRetries < 0 || config.Generation.MaxRetries > 10 {
		errors = append(errors, ValidationError{
			Field:   "generation.max_retries",
			Message: "max_retries must be between 0 and 10",
		})
	}

	if config.Generation.CacheTTL <= 0 {
		errors = append(errors, ValidationError{
			Field:   "generation.cache_ttl",
			Message: "cache_ttl must be greater than 0",
		})
	}

	if config.Generation.CacheSize <= 0 {
		errors = append(errors, ValidationError{
			Field:   "generation.cache_size",
			Message: "cache_size must be greater than 0",
		})
	}

	if config.Backend.BaseURL == "" {
		errors = append(errors, ValidationError{
			Field:   "backend.base_url",
			Message: "backend base URL is required",
		})
	}

	if len(config.Backend.CandidatePorts) == 0 {
		errors = append(errors, ValidationError{
			Field:   "backend.candidate_ports",
			Message: "at least one candidate port is required",
		})
	}

	if config.AzureOpenAI.Temperature < 0 || config.AzureOpenAI.Temperature > 2 {
		errors = append(errors, ValidationError{
			Field:   "azure_openai.temperature",
			Message: "temperature must be between 0 and 2",
		})
	}

	if config.Monitor.MaxLogs <= 0 || config.Monitor.MaxAlerts <= 0 {
		errors = append(errors, ValidationError{
			Field:   "monitor.max_logs",
			Message: "max_logs and max_alerts must be greater than 0",
		})
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, config.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("log level must be one of: %s", strings.Join(validLogLevels, ", ")),
		})
	}

	validLogFormats := []string{"json", "text"}
	if !contains(validLogFormats, config.Logging.Format) {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("log format must be one of: %s", strings.Join(validLogFormats, ", ")),
		})
	}

	validLogOutputs := []string{"stdout", "stderr", "file"}
	if !contains(validLogOutputs, config.Logging.Output) {
		errors = append(errors, ValidationError{
			Field:   "logging.output",
			Message: fmt.Sprintf("log output must be one of: %s", strings.Join(validLogOutputs, ", ")),
		})
	}

	if config.Registry.DBPath == "" {
		errors = append(errors, ValidationError{
			Field:   "registry.db_path",
			Message: "registry database path is required",
		})
	} else if err := validateDirectoryExists(filepath.Dir(config.Registry.DBPath)); err != nil {
		errors = append(errors, ValidationError{
			Field:   "registry.db_path",
			Message: fmt.Sprintf("registry database directory does not exist: %s", filepath.Dir(config.Registry.DBPath)),
		})
	}

	if len(errors) > 0 {
		var errorMessages []string
		for _, err := range errors {
			errorMessages = append(errorMessages, err.Error())
		}
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errorMessages, "\n"))
	}

	return nil
}

// IsProduction reports whether the configured environment is production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Environment)
	return env == "production" || env == "prod"
}

// MaskSensitiveValues returns a copy of the config with sensitive values masked
func (c *Config) MaskSensitiveValues() *Config {
	masked := *c

	if masked.AzureOpenAI.APIKey != "" {
		masked.AzureOpenAI.APIKey = MaskValue(masked.AzureOpenAI.APIKey)
	}
	if masked.Figma.AccessToken != "" {
		masked.Figma.AccessToken = MaskValue(masked.Figma.AccessToken)
	}
	if masked.Figma.ClientSecret != "" {
		masked.Figma.ClientSecret = MaskValue(masked.Figma.ClientSecret)
	}

	return &masked
}

// MaskValue masks sensitive values, showing only the first 8 characters
func MaskValue(value string) string {
	if len(value) <= 8 {
		return strings.Repeat("*", len(value))
	}
	return value[:8] + strings.Repeat("*", len(value)-8)
}

// contains checks if a slice contains a specific string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// validateDirectoryExists checks if a directory exists
func validateDirectoryExists(path string) error {
	if path == "" || path == "." {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	return nil
}

// getEnvironment returns the current environment (development, production, etc.)
func getEnvironment() string {
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		return env
	}
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "development"
}

// WatchConfig enables configuration hot-reloading for development
func WatchConfig(configPath string, callback func(*Config)) error {
	v := viper.New()

	hasFile, err := setConfigFile(v, configPath)
	if err != nil {
		return err
	}
	if !hasFile {
		return fmt.Errorf("%w: no config file to watch", ErrMissingRequiredField)
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		fmt.Printf("Config file changed: %s\n", e.Name)

		config, err := LoadWithOptions(LoadOptions{
			ConfigPath:       configPath,
			EnableHotReload:  true,
			Environment:      getEnvironment(),
			ValidateRequired: true,
		})
		if err != nil {
			fmt.Printf("Failed to reload config: %v\n", err)
			return
		}

		callback(config)
	})

	return nil
}

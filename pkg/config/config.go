package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultSessionFile is where the Instagram session settings are persisted
	DefaultSessionFile = "settings.json"

	// DefaultReportFile is the fixed name of the JSON report
	DefaultReportFile = "instagram_users_report.json"

	// DefaultUsersToCheck is the number of likers analyzed when none is requested
	DefaultUsersToCheck = 5

	// MaxUsersToCheck is the upper bound on likers analyzed per run
	MaxUsersToCheck = 20
)

// Config holds all configuration options for igfakecheck
type Config struct {
	// Instagram login and client settings
	Instagram InstagramConfig `yaml:"instagram" json:"instagram"`

	// Analysis run settings
	Analysis AnalysisConfig `yaml:"analysis" json:"analysis"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Retry configuration for transient API failures
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// Credential is one username/password pair tried during login
type Credential struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"-"`
}

// InstagramConfig holds Instagram-specific configuration
type InstagramConfig struct {
	Credentials []Credential `yaml:"credentials" json:"credentials"`
	SessionFile string       `yaml:"session_file" json:"session_file"`
	// UserAgent overrides the client's Android user agent when set
	UserAgent string        `yaml:"user_agent" json:"user_agent"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
}

// AnalysisConfig holds analysis run configuration
type AnalysisConfig struct {
	UsersToCheck int    `yaml:"users_to_check" json:"users_to_check"`
	ReportFile   string `yaml:"report_file" json:"report_file"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
	// MinSpacing is the least time between two consecutive requests
	MinSpacing time.Duration `yaml:"min_spacing" json:"min_spacing"`
}

// RetryConfig holds retry configuration for the Instagram client
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled" json:"enabled"`
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
	Delay       time.Duration `yaml:"delay" json:"delay"`
	MaxJitter   time.Duration `yaml:"max_jitter" json:"max_jitter"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Instagram: InstagramConfig{
			SessionFile: DefaultSessionFile,
			Timeout:     30 * time.Second,
		},
		Analysis: AnalysisConfig{
			UsersToCheck: DefaultUsersToCheck,
			ReportFile:   DefaultReportFile,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 30,
			MinSpacing:        500 * time.Millisecond,
		},
		Retry: RetryConfig{
			Enabled:     true,
			MaxAttempts: 3,
			Delay:       time.Second,
			MaxJitter:   500 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	// A single explicit account goes in front of any configured list
	if username := os.Getenv("IGFAKECHECK_USERNAME"); username != "" {
		cred := Credential{Username: username, Password: os.Getenv("IGFAKECHECK_PASSWORD")}
		c.Instagram.Credentials = append([]Credential{cred}, c.Instagram.Credentials...)
	}
	if list := os.Getenv("IGFAKECHECK_CREDENTIALS"); list != "" {
		creds, err := ParseCredentialList(list)
		if err != nil {
			return fmt.Errorf("invalid IGFAKECHECK_CREDENTIALS: %w", err)
		}
		c.Instagram.Credentials = append(c.Instagram.Credentials, creds...)
	}
	if sessionFile := os.Getenv("IGFAKECHECK_SESSION_FILE"); sessionFile != "" {
		c.Instagram.SessionFile = sessionFile
	}
	if userAgent := os.Getenv("IGFAKECHECK_USER_AGENT"); userAgent != "" {
		c.Instagram.UserAgent = userAgent
	}

	if reportFile := os.Getenv("IGFAKECHECK_REPORT_FILE"); reportFile != "" {
		c.Analysis.ReportFile = reportFile
	}
	if count := os.Getenv("IGFAKECHECK_USERS_TO_CHECK"); count != "" {
		val, err := strconv.Atoi(count)
		if err != nil {
			return fmt.Errorf("invalid IGFAKECHECK_USERS_TO_CHECK: %w", err)
		}
		c.Analysis.UsersToCheck = val
	}

	if rpm := os.Getenv("IGFAKECHECK_REQUESTS_PER_MINUTE"); rpm != "" {
		val, err := strconv.Atoi(rpm)
		if err != nil {
			return fmt.Errorf("invalid IGFAKECHECK_REQUESTS_PER_MINUTE: %w", err)
		}
		c.RateLimit.RequestsPerMinute = val
	}

	if logLevel := os.Getenv("IGFAKECHECK_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// ParseCredentialList parses "user:pass,user2:pass2" into credentials, keeping order.
// A list holding a newline is split on newlines only, so passwords may contain commas.
func ParseCredentialList(list string) ([]Credential, error) {
	sep := ","
	if strings.Contains(list, "\n") {
		sep = "\n"
	}

	var creds []Credential
	for _, pair := range strings.Split(list, sep) {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		username, password, ok := strings.Cut(pair, ":")
		if !ok || username == "" {
			return nil, fmt.Errorf("credential %q is not in user:password form", pair)
		}
		creds = append(creds, Credential{Username: username, Password: password})
	}
	return creds, nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = findConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".igfakecheck.yaml",
		".igfakecheck.yml",
		filepath.Join(home, ".config", "igfakecheck", "config.yaml"),
		filepath.Join(home, ".config", "igfakecheck", "config.yml"),
		filepath.Join(home, ".igfakecheck.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid. Credentials are not checked here:
// they may also come from the credential store or the command line.
func (c *Config) Validate() error {
	var errs []error

	for i, cred := range c.Instagram.Credentials {
		if cred.Username == "" {
			errs = append(errs, fmt.Errorf("credential %d has no username", i+1))
		}
	}
	if c.Instagram.SessionFile == "" {
		errs = append(errs, errors.New("session file is required"))
	}
	if c.Instagram.Timeout <= 0 {
		errs = append(errs, errors.New("timeout must be positive"))
	}

	if c.Analysis.UsersToCheck < 1 || c.Analysis.UsersToCheck > MaxUsersToCheck {
		errs = append(errs, fmt.Errorf("users to check must be between 1 and %d", MaxUsersToCheck))
	}
	if c.Analysis.ReportFile == "" {
		errs = append(errs, errors.New("report file is required"))
	}

	if c.RateLimit.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("requests per minute must be positive"))
	}
	if c.RateLimit.MinSpacing < 0 {
		errs = append(errs, errors.New("request spacing cannot be negative"))
	}

	if c.Retry.Enabled && c.Retry.MaxAttempts < 1 {
		errs = append(errs, errors.New("retry max attempts must be at least 1"))
	}
	if c.Retry.Delay < 0 || c.Retry.MaxJitter < 0 {
		errs = append(errs, errors.New("retry delays cannot be negative"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Passwords may be in here
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if username, ok := flags["username"].(string); ok && username != "" {
		password, _ := flags["password"].(string)
		// Explicit login fields replace every configured credential
		c.Instagram.Credentials = []Credential{{Username: username, Password: password}}
	}
	if sessionFile, ok := flags["session-file"].(string); ok && sessionFile != "" {
		c.Instagram.SessionFile = sessionFile
	}
	if reportFile, ok := flags["report-file"].(string); ok && reportFile != "" {
		c.Analysis.ReportFile = reportFile
	}
	if count, ok := flags["users-to-check"].(int); ok && count != 0 {
		c.Analysis.UsersToCheck = count
	}
	if rpm, ok := flags["requests-per-minute"].(int); ok && rpm > 0 {
		c.RateLimit.RequestsPerMinute = rpm
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Missing .env files are fine
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".igfakecheck.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

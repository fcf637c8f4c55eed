package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"igfakecheck/pkg/config"
	"igfakecheck/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage igfakecheck configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (IGFAKECHECK_*)
  - .env file
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as '.igfakecheck.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging every source.

Passwords are masked.`,
	Run: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Value types and ranges
  - Log file and session file locations`,
	Run: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

const exampleConfig = `# igfakecheck configuration file
#
# Environment variables prefixed with IGFAKECHECK_ override these values,
# for example IGFAKECHECK_USERNAME, IGFAKECHECK_PASSWORD or
# IGFAKECHECK_CREDENTIALS=user1:pass1,user2:pass2
# (separate accounts with newlines instead when a password contains a comma)

instagram:
  # Accounts tried in order until one logs in. Prefer 'igfakecheck auth add'
  # over storing passwords here.
  credentials: []
  #  - username: "first_account"
  #    password: "secret"
  #  - username: "fallback_account"
  #    password: "secret"

  # Session settings reused between runs
  session_file: "settings.json"

  # User agent string (optional, leave empty for the default Android agent)
  user_agent: ""

  # HTTP timeout per request
  timeout: 30s

analysis:
  # Likers analyzed per run, 1-20
  users_to_check: 5

  # JSON report path
  report_file: "instagram_users_report.json"

rate_limit:
  # Instagram requests per minute
  requests_per_minute: 30
  min_spacing: 500ms

retry:
  # Retry network errors, rate limits and server errors
  enabled: true
  max_attempts: 3
  delay: 1s
  max_jitter: 500ms

logging:
  # Log level: debug, info, warn, error, disabled
  level: "info"

  # Log file path (optional, logs go to the console when empty)
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = ".igfakecheck.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			ui.PrintError("Failed to create configuration directory", err)
			os.Exit(1)
		}
	}

	// Passwords may end up in here
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0600); err != nil {
		ui.PrintError("Failed to create configuration file", err)
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Store an account with 'igfakecheck auth add'")
	fmt.Println("2. Run 'igfakecheck config validate' to check the configuration")
	fmt.Println("3. Analyze a post with 'igfakecheck analyze <post-url>'")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err)
		os.Exit(1)
	}

	data, err := yaml.Marshal(maskedConfig(cfg))
	if err != nil {
		ui.PrintError("Failed to format configuration", err)
		os.Exit(1)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (IGFAKECHECK_*)")
	fmt.Println("3. .env file")
	if configFile != "" {
		fmt.Printf("4. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("4. Configuration file: (default locations)")
	}
	fmt.Println("5. Default values")
}

// maskedConfig returns a copy of cfg with passwords hidden
func maskedConfig(cfg *config.Config) *config.Config {
	display := *cfg
	display.Instagram.Credentials = make([]config.Credential, len(cfg.Instagram.Credentials))
	for i, c := range cfg.Instagram.Credentials {
		display.Instagram.Credentials[i] = config.Credential{Username: c.Username}
		if c.Password != "" {
			display.Instagram.Credentials[i].Password = "***"
		}
	}
	return &display
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	path := configFile
	if path == "" {
		for _, candidate := range []string{
			".igfakecheck.yaml",
			".igfakecheck.yml",
			filepath.Join(os.Getenv("HOME"), ".config", "igfakecheck", "config.yaml"),
			filepath.Join(os.Getenv("HOME"), ".config", "igfakecheck", "config.yml"),
			filepath.Join(os.Getenv("HOME"), ".igfakecheck.yaml"),
		} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}

		if path == "" {
			ui.PrintError("No configuration file found", "Specify a file with --config flag")
			os.Exit(1)
		}
	}

	ui.PrintInfo("Validating configuration", path)

	cfg, err := config.Load(path, nil)
	if err != nil {
		ui.PrintError("Configuration validation failed", err)
		os.Exit(1)
	}

	var warnings, problems []string

	if len(cfg.Instagram.Credentials) == 0 {
		warnings = append(warnings, "no credentials configured; stored accounts or flags will be needed")
	}
	for _, c := range cfg.Instagram.Credentials {
		if c.Password == "" {
			warnings = append(warnings, fmt.Sprintf("credential %s has no password; only a saved session can log it in", c.Username))
		}
	}

	for _, file := range []string{cfg.Logging.File, cfg.Instagram.SessionFile, cfg.Analysis.ReportFile} {
		if file == "" {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
			problems = append(problems, fmt.Sprintf("cannot create directory for %s: %v", file, err))
		}
	}

	if cfg.RateLimit.RequestsPerMinute > 120 {
		warnings = append(warnings, "more than 120 requests per minute is likely to get the account throttled")
	}

	if len(problems) > 0 {
		ui.PrintError("Configuration has errors:")
		for _, p := range problems {
			fmt.Printf("  - %s\n", p)
		}
		os.Exit(1)
	}

	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:")
		for _, w := range warnings {
			fmt.Printf("  - %s\n", w)
		}
		fmt.Println()
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Credentials: %d\n", len(cfg.Instagram.Credentials))
	fmt.Printf("  Session file: %s\n", cfg.Instagram.SessionFile)
	fmt.Printf("  Likers per run: %d\n", cfg.Analysis.UsersToCheck)
	fmt.Printf("  Report file: %s\n", cfg.Analysis.ReportFile)
	fmt.Printf("  Rate limit: %d requests/minute, %s apart\n", cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.MinSpacing)
	fmt.Printf("  Max attempts: %d\n", cfg.Retry.MaxAttempts)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
}

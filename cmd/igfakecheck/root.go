package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"igfakecheck/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile    string
	logLevel      string
	notifications bool
	quiet         bool
	verbose       bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "igfakecheck",
	Short: "Spot fake accounts among the likers of an Instagram post",
	Long: `igfakecheck logs into Instagram, lists the accounts that liked a post and
scores each profile with a simple heuristic to tell which ones look fake.

Features:
  - Fallback login across several accounts, with session reuse
  - Secure credential storage using the system keychain
  - Rate limited, retried API calls
  - Plain progress output or a live terminal dashboard
  - JSON report of every analyzed account`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if quiet {
			logLevel = "error"
		}

		// Don't show logo for certain commands
		if !quiet && cmd.Name() != "version" && cmd.Name() != "help" && !useTUI {
			ui.PrintLogo()
		}
	},
}

// versionCmd prints build information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("igfakecheck %s\n", rootCmd.Version)
		fmt.Printf("Go Version: %s\n", runtime.Version())
		fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./.igfakecheck.yaml or ~/.config/igfakecheck/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error, disabled)")
	rootCmd.PersistentFlags().BoolVar(&notifications, "notifications", false, "send a desktop notification when the analysis finishes")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress everything but the results and errors")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print every analyzed liker as it completes")

	rootCmd.AddCommand(versionCmd)

	rootCmd.SetVersionTemplate(`igfakecheck {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

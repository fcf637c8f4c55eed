package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"igfakecheck/pkg/auth"
	"igfakecheck/pkg/config"
	"igfakecheck/pkg/instagram"
	"igfakecheck/pkg/logger"
	"igfakecheck/pkg/ui"
)

var verifyLogin bool

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Instagram credentials",
	Long: `Manage stored Instagram credentials securely.

Stored accounts are tried, oldest first, after any credentials given on the
command line, in the environment or in the configuration file.

Credentials are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation

Use a secondary account: analyzing likers fetches many profiles and may get
the account rate limited.`,
}

// addCmd represents the auth add command
var addCmd = &cobra.Command{
	Use:   "add [username]",
	Short: "Store an Instagram account",
	Long: `Store an Instagram username and password in the system keychain or an
encrypted file. The password is read without echo.`,
	Example: `  # Interactive
  igfakecheck auth add

  # Store and check that Instagram accepts the password
  igfakecheck auth add myaccount --verify`,
	Args: cobra.MaximumNArgs(1),
	Run:  runAdd,
}

// removeCmd represents the auth remove command
var removeCmd = &cobra.Command{
	Use:     "remove [username]",
	Aliases: []string{"rm", "logout"},
	Short:   "Remove a stored account",
	Long: `Remove a stored Instagram account.

If no username is provided, you will be shown a list of stored accounts
to choose from.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runRemove,
}

// listCmd represents the auth list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored accounts",
	Long:  `List all stored Instagram accounts in the order they are tried, with masked passwords.`,
	Run:   runList,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(addCmd)
	authCmd.AddCommand(removeCmd)
	authCmd.AddCommand(listCmd)

	addCmd.Flags().BoolVar(&verifyLogin, "verify", false, "log in once to check the password before storing it")
}

func runAdd(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err)
		os.Exit(1)
	}

	reader := bufio.NewReader(os.Stdin)

	var user string
	if len(args) > 0 {
		user = args[0]
	} else {
		fmt.Print("📱 Instagram username: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			ui.PrintError("Failed to read username", err)
			os.Exit(1)
		}
		user = strings.TrimSpace(input)
	}

	user = instagram.SanitizeUsername(user)
	if !instagram.IsValidUsername(user) {
		ui.PrintError("Invalid Instagram username", user)
		os.Exit(1)
	}

	if existing, _ := manager.Retrieve(user); existing != nil {
		fmt.Printf("\n⚠️  Account '%s' already exists. Update password? (y/N): ", user)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}
	}

	fmt.Printf("🔑 Password for %s: ", user)
	pass, err := readPassword()
	if err != nil {
		ui.PrintError("Failed to read password", err)
		os.Exit(1)
	}
	if pass == "" {
		ui.PrintError("Password is required")
		os.Exit(1)
	}

	if verifyLogin {
		if err := verifyCredential(user, pass); err != nil {
			ui.PrintError("Instagram rejected the login", err)
			os.Exit(1)
		}
		ui.PrintSuccess("Login verified")
	}

	cred := &auth.Credential{
		Username:     user,
		Password:     pass,
		LastModified: time.Now(),
	}

	fmt.Println("\n💾 Storing credentials securely...")
	if err := manager.Store(cred); err != nil {
		ui.PrintError("Failed to store credentials", err)
		os.Exit(1)
	}

	ui.PrintSuccess(fmt.Sprintf("Account saved: %s", user))

	fmt.Println("\n🔒 Security Information:")
	fmt.Println("   Your password is stored in:")
	if auth.IsKeyringAvailable() {
		fmt.Println("   • System keychain (primary)")
	} else {
		fmt.Println("   • Encrypted file")
	}

	fmt.Println("\n📖 Quick Start Guide:")
	fmt.Println("   Check the likers of a post:")
	fmt.Println("   $ igfakecheck analyze <post-url>")
	fmt.Println("\n   Use this account only:")
	fmt.Printf("   $ igfakecheck analyze <post-url> --account %s\n", user)
}

// verifyCredential logs in once without touching the saved session
func verifyCredential(user, pass string) error {
	cfg := config.DefaultConfig()
	client := instagram.NewClient(cfg.Instagram.Timeout, logger.GetLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.Instagram.Timeout)
	defer cancel()

	_, err := client.Login(ctx, user, pass, nil)
	return err
}

func runRemove(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err)
		os.Exit(1)
	}

	if len(args) > 0 {
		removeAccount(manager, args[0])
		return
	}

	accounts, err := manager.List()
	if err != nil || len(accounts) == 0 {
		ui.PrintError("No stored accounts found")
		return
	}

	fmt.Println("Select account to remove:")
	for i, account := range accounts {
		fmt.Printf("  %d. %s\n", i+1, account.Username)
	}
	fmt.Printf("  0. Cancel\n\n")

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Choice: ")
	input, _ := reader.ReadString('\n')

	var choice int
	fmt.Sscanf(strings.TrimSpace(input), "%d", &choice)

	switch {
	case choice == 0:
		return
	case choice > 0 && choice <= len(accounts):
		removeAccount(manager, accounts[choice-1].Username)
	default:
		ui.PrintError("Invalid choice")
		os.Exit(1)
	}
}

func removeAccount(manager *auth.Manager, user string) {
	if err := manager.Delete(user); err != nil {
		ui.PrintError("Failed to remove account", err)
		os.Exit(1)
	}
	ui.PrintSuccess("Account removed: " + user)
}

func runList(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err)
		os.Exit(1)
	}

	accounts, err := manager.List()
	if err != nil {
		ui.PrintError("Failed to list accounts", err)
		os.Exit(1)
	}

	if len(accounts) == 0 {
		ui.PrintInfo("No stored accounts", "Use 'igfakecheck auth add' to add an account")
		return
	}

	ui.PrintHighlight("Stored Accounts (in login order)")
	fmt.Println()

	for i, account := range accounts {
		sanitized := auth.SanitizeCredential(account)
		fmt.Printf("%d. Username: %s\n", i+1, sanitized.Username)
		fmt.Printf("   Password: %s\n", sanitized.Password)
		fmt.Printf("   Last Modified: %s\n", sanitized.LastModified.Format("2006-01-02 15:04:05"))
		fmt.Println()
	}
}

// readPassword reads a password from stdin without echoing
func readPassword() (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err == nil {
			return string(password), nil
		}
	}

	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

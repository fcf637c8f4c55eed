package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"igfakecheck/pkg/auth"
	"igfakecheck/pkg/config"
	"igfakecheck/pkg/detector"
	errs "igfakecheck/pkg/errors"
	"igfakecheck/pkg/instagram"
	"igfakecheck/pkg/logger"
	"igfakecheck/pkg/ratelimit"
	"igfakecheck/pkg/report"
	"igfakecheck/pkg/ui"
	"igfakecheck/pkg/ui/tui"
)

var (
	// Analyze command flags
	usersToCheck int
	username     string
	password     string
	accountName  string
	reportFile   string
	sessionFile  string
	rateLimit    int
	useTUI       bool
	explain      bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <post-url>",
	Short: "Check the likers of a post for fake accounts",
	Long: `Log into Instagram, list the likers of a post and analyze the first N of them.

Each liker's profile is scored on its post count, follower and following
counts, biography and username. Accounts scoring 4 or more are reported as
fake. Results are printed as a table and saved as a JSON report.

Login credentials are tried in order until one works:
  - --username/--password flags
  - IGFAKECHECK_USERNAME/IGFAKECHECK_PASSWORD and IGFAKECHECK_CREDENTIALS
  - Credentials listed in the configuration file
  - Accounts stored with 'igfakecheck auth add'`,
	Example: `  # Analyze the first 5 likers
  igfakecheck analyze https://www.instagram.com/p/B-fKL9qpeab/

  # Analyze 20 likers with a live dashboard
  igfakecheck analyze https://www.instagram.com/p/B-fKL9qpeab/ --count 20 --tui

  # Log in with a specific stored account and show why accounts were flagged
  igfakecheck analyze B-fKL9qpeab --account myaccount --explain`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runAnalyze(cmd, args)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().IntVarP(&usersToCheck, "count", "n", 0, fmt.Sprintf("number of likers to analyze, 1-%d (default %d)", config.MaxUsersToCheck, config.DefaultUsersToCheck))
	analyzeCmd.Flags().StringVarP(&username, "username", "u", "", "Instagram username to log in with")
	analyzeCmd.Flags().StringVarP(&password, "password", "p", "", "Instagram password (prompted when omitted)")
	analyzeCmd.Flags().StringVarP(&accountName, "account", "a", "", "use specific stored account")
	analyzeCmd.Flags().StringVarP(&reportFile, "report", "o", "", "JSON report path (default "+config.DefaultReportFile+")")
	analyzeCmd.Flags().StringVar(&sessionFile, "session", "", "session settings file (default "+config.DefaultSessionFile+")")
	analyzeCmd.Flags().IntVar(&rateLimit, "rate-limit", 0, "maximum Instagram requests per minute")
	analyzeCmd.Flags().BoolVar(&useTUI, "tui", false, "use interactive terminal UI with real-time progress")
	analyzeCmd.Flags().BoolVar(&explain, "explain", false, "show the score and the rules that fired for each account")
}

func runAnalyze(cmd *cobra.Command, args []string) {
	postRef := strings.TrimSpace(args[0])

	if cmd.Flags().Changed("count") && (usersToCheck < 1 || usersToCheck > config.MaxUsersToCheck) {
		exitWithError("Invalid --count", errs.New(errs.ErrorTypeInvalidInput,
			"number of users to check must be between 1 and %d, got %d", config.MaxUsersToCheck, usersToCheck))
	}

	manager, err := auth.NewManager()
	if err != nil {
		exitWithError("Failed to initialize credential manager", err)
	}

	if username != "" && password == "" {
		password = lookupPassword(manager, username)
	}

	flags := make(map[string]interface{})
	if username != "" {
		flags["username"] = username
		flags["password"] = password
	}
	if sessionFile != "" {
		flags["session-file"] = sessionFile
	}
	if reportFile != "" {
		flags["report-file"] = reportFile
	}
	if usersToCheck != 0 {
		flags["users-to-check"] = usersToCheck
	}
	if rateLimit > 0 {
		flags["requests-per-minute"] = rateLimit
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		exitWithError("Failed to load configuration", err)
	}

	// Console logs would draw over the dashboard
	if useTUI && cfg.Logging.File == "" {
		cfg.Logging.Level = "disabled"
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		exitWithError("Failed to initialize logger", err)
	}
	log := logger.GetLogger()
	log.WithField("version", version).Info("igfakecheck starting")

	creds, err := manager.Resolve(cfg.Instagram.Credentials, accountName)
	if err != nil {
		if accountName != "" {
			ui.PrintError("Account not found", accountName)
			ui.PrintInfo("Available accounts", "Use 'igfakecheck auth list' to see stored accounts")
			os.Exit(1)
		}
		exitWithError("Failed to read stored credentials", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &analysis{
		cfg:     cfg,
		creds:   creds,
		log:     log,
		postRef: postRef,
		client: instagram.NewClient(cfg.Instagram.Timeout, log,
			instagram.WithRateLimiter(ratelimit.NewPerMinute(cfg.RateLimit.RequestsPerMinute).WithSpacing(cfg.RateLimit.MinSpacing)),
			instagram.WithRetry(cfg.Retry),
			instagram.WithUserAgent(cfg.Instagram.UserAgent),
		),
	}

	var run *detector.Run
	if useTUI {
		run, err = analyzeWithTUI(ctx, a)
	} else {
		run, err = analyzeWithProgress(ctx, a)
	}

	if run != nil && (err == nil || len(run.Results) > 0) {
		printResults(run)
	}
	if err != nil {
		exitWithError("Analysis failed", err)
	}

	if notifications {
		ui.NewNotifier().NotifyRun(run)
	}
}

// analysis is one analyze invocation with its configuration resolved
type analysis struct {
	cfg     *config.Config
	client  *instagram.Client
	creds   []auth.Credential
	log     logger.Logger
	postRef string
}

// run logs in, analyzes the post and saves the report, reporting each step
// on dash. A run cut short still saves the profiles analyzed so far.
func (a *analysis) run(ctx context.Context, dash ui.Dashboard) (*detector.Run, error) {
	dash.LogInfo("Logging in (%d account(s) to try)", len(a.creds))
	sessions := auth.NewFileSessionStore(a.cfg.Instagram.SessionFile)
	_, loggedIn, err := auth.LoginWithFallback(ctx, a.client, sessions, a.creds, a.log,
		auth.OnLoginFailure(func(username string, err error) {
			dash.LogWarning("Login as %s failed: %v", username, err)
		}),
	)
	if err != nil {
		dash.Fail(err)
		return nil, err
	}
	dash.LogSuccess("Logged in as %s", loggedIn)

	det := detector.New(a.client, a.log, detector.WithObserver(dash))
	run, err := det.Run(ctx, a.postRef, a.cfg.Analysis.UsersToCheck)
	if err != nil {
		dash.Fail(err)
		if run == nil || len(run.Results) == 0 {
			return run, err
		}
	}

	path := a.cfg.Analysis.ReportFile
	if werr := report.Write(path, run.Results); werr != nil {
		dash.LogError("Could not save report to %s", path)
		if err == nil {
			err = fmt.Errorf("failed to save report: %w", werr)
		}
		return run, err
	}
	a.log.WithField("path", path).Info("Report written")
	dash.LogSuccess("📥 Report saved to %s (%d profiles)", path, len(run.Results))
	return run, err
}

func analyzeWithProgress(ctx context.Context, a *analysis) (*detector.Run, error) {
	out := io.Writer(os.Stdout)
	if quiet {
		out = io.Discard
	}
	return a.run(ctx, ui.NewProgressDisplay(out, a.postRef, verbose))
}

// analyzeWithTUI runs the analysis while the dashboard owns the terminal.
// Quitting the dashboard early cancels the run; cancelling the run from
// outside closes the dashboard.
func analyzeWithTUI(ctx context.Context, a *analysis) (*detector.Run, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	dashboard := tui.NewTUI(a.postRef, cancel)
	go func() {
		<-ctx.Done()
		dashboard.Stop()
	}()

	var (
		run    *detector.Run
		runErr error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		run, runErr = a.run(ctx, dashboard)
	}()

	if err := dashboard.Start(); err != nil {
		cancel()
		<-done
		return run, fmt.Errorf("terminal UI failed: %w", err)
	}

	cancel()
	<-done
	return run, runErr
}

func printResults(run *detector.Run) {
	fmt.Println()
	ui.PrintHighlight("📊 Results")
	ui.PrintInfo("Post", run.PostURL())
	fmt.Println(report.Table(run.Results, report.TableOptions{Explain: explain}))

	summary := report.Summarize(run.Results)
	ui.PrintInfo("Summary", summary.String())
	if run.Likers > len(run.Results) {
		ui.PrintInfo("Likers on post", fmt.Sprintf("%d (first %d analyzed)", run.Likers, len(run.Results)))
	}
}

// lookupPassword finds the password for an account given only by name: a
// stored credential first, then an interactive prompt. An empty result still
// lets a saved session for that account be reused.
func lookupPassword(manager *auth.Manager, user string) string {
	if cred, err := manager.Retrieve(user); err == nil {
		return cred.Password
	}
	if !term.IsTerminal(int(syscall.Stdin)) {
		return ""
	}

	fmt.Printf("🔑 Password for %s: ", user)
	pass, err := readPassword()
	if err != nil {
		exitWithError("Failed to read password", err)
	}
	return pass
}

// exitWithError reports err and exits. Login failures also print help.
func exitWithError(msg string, err error) {
	logger.WithError(err).Error(msg)
	ui.PrintError(msg, err)

	if errs.Is(err, errs.ErrorTypeCredentialsMissing) || errs.Is(err, errs.ErrorTypeExhaustedCredentials) {
		fmt.Println()
		auth.ShowLoginHelp(os.Stdout, err)
	}
	os.Exit(1)
}

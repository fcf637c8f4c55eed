package auth

import (
	"fmt"
	"io"
	"strings"

	errs "igfakecheck/pkg/errors"
)

// ShowLoginHelp explains what to do about a failed login
func ShowLoginHelp(w io.Writer, err error) {
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintln(w, "🔐 INSTAGRAM LOGIN HELP")
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintln(w)

	switch {
	case errs.Is(err, errs.ErrorTypeCredentialsMissing):
		fmt.Fprintln(w, "No account to log in with. Provide one of:")
		fmt.Fprintln(w, "   • --username and --password flags")
		fmt.Fprintln(w, "   • IGFAKECHECK_USERNAME / IGFAKECHECK_PASSWORD environment variables")
		fmt.Fprintln(w, "   • IGFAKECHECK_CREDENTIALS=user1:pass1,user2:pass2 for fallback accounts")
		fmt.Fprintln(w, "     (one account per line when a password contains a comma)")
		fmt.Fprintln(w, "   • a stored account: igfakecheck auth add")
	case errs.Is(err, errs.ErrorTypeChallenge):
		fmt.Fprintln(w, "Instagram asked for a security check on this login.")
		fmt.Fprintln(w, "   1. Open the Instagram app with the same account")
		fmt.Fprintln(w, "   2. Approve the \"Was this you?\" prompt or finish two-factor setup")
		fmt.Fprintln(w, "   3. Run the analysis again; the saved session is reused afterwards")
	case errs.Is(err, errs.ErrorTypeRateLimit):
		fmt.Fprintln(w, "Instagram is throttling this account.")
		fmt.Fprintln(w, "   • Wait a few minutes before retrying")
		fmt.Fprintln(w, "   • Lower rate_limit.requests_per_minute in the config file")
		fmt.Fprintln(w, "   • Add a fallback account so another login can be tried")
	default:
		fmt.Fprintln(w, "Every configured account was rejected.")
		fmt.Fprintln(w, "   • Check usernames and passwords: igfakecheck auth list")
		fmt.Fprintln(w, "   • Delete the session file if it belongs to a removed account")
		fmt.Fprintln(w, "   • Use a secondary account; analysis fetches many profiles")
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "⚠️  Passwords are stored in the system keychain or an encrypted file, never in the session file.")
	fmt.Fprintln(w, strings.Repeat("=", 80))
}

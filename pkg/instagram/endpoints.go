package instagram

import (
	"fmt"
	"math/big"
	"net/url"
	"regexp"
	"strings"

	errs "igfakecheck/pkg/errors"
)

const (
	// BaseURL is the base URL of Instagram's private mobile API
	BaseURL = "https://i.instagram.com/api/v1"

	// WebURL is the public Instagram web origin
	WebURL = "https://www.instagram.com"

	LoginEndpoint       = "/accounts/login/"
	CurrentUserEndpoint = "/accounts/current_user/"
	LikersEndpoint      = "/media/%s/likers/"
	UserInfoEndpoint    = "/users/%s/info/"

	// shortcodeAlphabet is the base64 variant Instagram encodes media ids with
	shortcodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

	// Shortcodes of private posts carry a suffix after the encoded id
	maxShortcodeIDLength = 11
)

var (
	postPathPattern  = regexp.MustCompile(`^/(?:[A-Za-z0-9._]+/)?(?:p|reel|reels|tv)/([A-Za-z0-9_-]+)/?`)
	shortcodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	mediaIDPattern   = regexp.MustCompile(`^(\d+)(?:_\d+)?$`)
)

// MediaIDFromShortcode decodes a post shortcode into its numeric media id
func MediaIDFromShortcode(code string) (string, error) {
	if code == "" || !shortcodePattern.MatchString(code) {
		return "", errs.New(errs.ErrorTypeInvalidInput, "invalid shortcode %q", code)
	}
	if len(code) > maxShortcodeIDLength {
		code = code[:maxShortcodeIDLength]
	}

	id := new(big.Int)
	base := big.NewInt(int64(len(shortcodeAlphabet)))
	for _, c := range code {
		idx := strings.IndexRune(shortcodeAlphabet, c)
		id.Mul(id, base)
		id.Add(id, big.NewInt(int64(idx)))
	}
	return id.String(), nil
}

// ShortcodeFromMediaID encodes a numeric media id as a post shortcode
func ShortcodeFromMediaID(mediaID string) (string, error) {
	id, ok := new(big.Int).SetString(mediaID, 10)
	if !ok || id.Sign() < 0 {
		return "", errs.New(errs.ErrorTypeInvalidInput, "invalid media id %q", mediaID)
	}
	if id.Sign() == 0 {
		return string(shortcodeAlphabet[0]), nil
	}

	base := big.NewInt(int64(len(shortcodeAlphabet)))
	mod := new(big.Int)
	var out []byte
	for id.Sign() > 0 {
		id.DivMod(id, base, mod)
		out = append(out, shortcodeAlphabet[mod.Int64()])
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out), nil
}

// ResolveMediaID turns a post reference into a media id. Accepted forms are a
// post, reel or tv URL, a bare shortcode, or a numeric media id optionally
// suffixed with the owner id.
func ResolveMediaID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", errs.New(errs.ErrorTypeInvalidInput, "post reference is empty")
	}

	if m := mediaIDPattern.FindStringSubmatch(ref); m != nil {
		return m[1], nil
	}

	if strings.Contains(ref, "/") {
		code, err := shortcodeFromURL(ref)
		if err != nil {
			return "", err
		}
		return MediaIDFromShortcode(code)
	}

	return MediaIDFromShortcode(ref)
}

func shortcodeFromURL(raw string) (string, error) {
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", errs.Wrap(errs.ErrorTypeInvalidInput, err, "invalid post URL")
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if host != "instagram.com" && host != "instagr.am" {
		return "", errs.New(errs.ErrorTypeInvalidInput, "%q is not an Instagram URL", u.Host)
	}

	m := postPathPattern.FindStringSubmatch(u.Path)
	if m == nil {
		return "", errs.New(errs.ErrorTypeInvalidInput, "no post shortcode in %q", u.Path)
	}
	return m[1], nil
}

// GetPostURL constructs the URL for a specific post
func GetPostURL(shortcode string) string {
	if shortcode == "" {
		return ""
	}
	return fmt.Sprintf("%s/p/%s/", WebURL, shortcode)
}

// GetUserProfileURL constructs the public profile URL for a user
func GetUserProfileURL(username string) string {
	if username == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s/", WebURL, username)
}

// IsValidUsername checks if a username is valid according to Instagram rules
func IsValidUsername(username string) bool {
	if username == "" || len(username) > 30 {
		return false
	}

	// Instagram usernames can only contain letters, numbers, periods, and underscores
	for _, char := range username {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') ||
			char == '.' || char == '_') {
			return false
		}
	}

	return true
}

// SanitizeUsername strips a leading @ and trailing slashes or spaces
func SanitizeUsername(username string) string {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	return strings.TrimRight(username, "/ ")
}

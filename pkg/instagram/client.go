package instagram

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/codeGROOVE-dev/retry"

	"igfakecheck/pkg/config"
	errs "igfakecheck/pkg/errors"
	"igfakecheck/pkg/logger"
	"igfakecheck/pkg/ratelimit"
)

const (
	// AppID identifies the Android Instagram app to the private API
	AppID = "567067343352427"

	// Capabilities is the bitmask the Android app announces
	Capabilities = "3brTvx0="

	// DefaultUserAgent is used when no user agent is configured
	DefaultUserAgent = "Instagram 269.0.0.18.75 Android (26/8.0.0; 480dpi; 1080x1920; OnePlus; 6T Dev; devitron; qcom; en_US; 314665256)"

	// maxBodyPreview bounds the response excerpt logged on parse failures
	maxBodyPreview = 200
)

// Client talks to Instagram's private mobile API on behalf of one account
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    ratelimit.Limiter
	retry      config.RetryConfig
	logger     logger.Logger
	now        func() time.Time
	mu         sync.Mutex
	settings   *Settings
}

// Option configures a Client
type Option func(*Client)

// WithRateLimiter makes every request wait on limiter first
func WithRateLimiter(limiter ratelimit.Limiter) Option {
	return func(c *Client) { c.limiter = limiter }
}

// WithRetry retries transient failures as configured
func WithRetry(cfg config.RetryConfig) Option {
	return func(c *Client) { c.retry = cfg }
}

// WithBaseURL points the client at another API origin
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithUserAgent overrides the Android user agent
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// NewClient creates a new Instagram API client
func NewClient(timeout time.Duration, log logger.Logger, opts ...Option) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    BaseURL,
		userAgent:  DefaultUserAgent,
		retry:      config.RetryConfig{MaxAttempts: 1},
		logger:     log,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Settings returns a copy of the current session settings, or nil before login
func (c *Client) Settings() *Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings.Clone()
}

// Login authenticates as username. When prior holds a session for the same
// account it is verified and reused; otherwise a password login is made. The
// device identity of prior is kept either way.
func (c *Client) Login(ctx context.Context, username, password string, prior *Settings) (*Settings, error) {
	username = SanitizeUsername(username)
	if username == "" {
		return nil, errs.New(errs.ErrorTypeInvalidInput, "username is required")
	}

	s := forAccount(prior, username)
	if c.userAgent != "" {
		s.UserAgent = c.userAgent
	}
	c.setSettings(s)

	if s.HasSession() {
		err := c.verifySession(ctx)
		if err == nil {
			c.logger.InfoWithFields("Reusing saved session", map[string]interface{}{
				"account": username,
			})
			return c.Settings(), nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.WithError(err).WarnWithFields("Saved session rejected, logging in again", map[string]interface{}{
			"account": username,
		})
		c.mu.Lock()
		c.settings.ClearSession()
		c.mu.Unlock()
	}

	if password == "" {
		return nil, errs.New(errs.ErrorTypeAuth, "no password for %s", username)
	}

	if err := c.passwordLogin(ctx, username, password); err != nil {
		return nil, err
	}
	return c.Settings(), nil
}

func (c *Client) verifySession(ctx context.Context) error {
	var resp currentUserResponse
	if err := c.getJSON(ctx, CurrentUserEndpoint+"?edit=true", &resp); err != nil {
		return err
	}
	if resp.User.PK == "" {
		return errs.New(errs.ErrorTypeAuth, "session has no current user")
	}

	c.mu.Lock()
	c.settings.UserID = resp.User.PK
	c.mu.Unlock()
	return nil
}

func (c *Client) passwordLogin(ctx context.Context, username, password string) error {
	c.mu.Lock()
	ids := c.settings.UUIDs
	c.mu.Unlock()

	payload := map[string]string{
		"username":            username,
		"enc_password":        fmt.Sprintf("#PWD_INSTAGRAM:0:%d:%s", c.now().Unix(), password),
		"device_id":           ids.AndroidDeviceID,
		"guid":                ids.UUID,
		"phone_id":            ids.PhoneID,
		"adid":                ids.AdvertisingID,
		"login_attempt_count": "0",
	}
	signed, err := json.Marshal(payload)
	if err != nil {
		return errs.Wrap(errs.ErrorTypeUnknown, err, "failed to encode login payload")
	}
	form := url.Values{}
	form.Set("signed_body", "SIGNATURE."+string(signed))

	var resp loginResponse
	if err := c.postForm(ctx, LoginEndpoint, form, &resp); err != nil {
		return err
	}
	if resp.LoggedInUser.PK == "" {
		return errs.New(errs.ErrorTypeAuth, "login response has no user")
	}

	c.mu.Lock()
	c.settings.UserID = resp.LoggedInUser.PK
	c.settings.LastLogin = c.now().UTC()
	c.mu.Unlock()
	return nil
}

// MediaIDFromURL resolves a post reference into a media id
func (c *Client) MediaIDFromURL(_ context.Context, ref string) (string, error) {
	return ResolveMediaID(ref)
}

// MediaLikers returns the users who liked a post, in the order the API lists them
func (c *Client) MediaLikers(ctx context.Context, mediaID string) ([]UserShort, error) {
	c.logger.DebugWithFields("fetching likers", map[string]interface{}{
		"media_id": mediaID,
	})

	var resp likersResponse
	if err := c.getJSON(ctx, fmt.Sprintf(LikersEndpoint, url.PathEscape(mediaID)), &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// UserInfo fetches the full profile of a user
func (c *Client) UserInfo(ctx context.Context, userID string) (*User, error) {
	c.logger.DebugWithFields("fetching user info", map[string]interface{}{
		"user_id": userID,
	})

	var resp userInfoResponse
	if err := c.getJSON(ctx, fmt.Sprintf(UserInfoEndpoint, url.PathEscape(userID)), &resp); err != nil {
		return nil, err
	}
	if resp.User.PK == "" && resp.User.Username == "" {
		return nil, errs.New(errs.ErrorTypeNotFound, "user %s not found", userID)
	}
	return &resp.User, nil
}

func (c *Client) setSettings(s *Settings) {
	c.mu.Lock()
	c.settings = s
	c.mu.Unlock()
}

func (c *Client) getJSON(ctx context.Context, path string, target interface{}) error {
	return c.call(ctx, http.MethodGet, path, nil, target)
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, target interface{}) error {
	return c.call(ctx, http.MethodPost, path, form, target)
}

// call performs a request with rate limiting and retries, then decodes the body into target
func (c *Client) call(ctx context.Context, method, path string, form url.Values, target interface{}) error {
	endpoint := c.baseURL + path

	attempts := uint(1)
	if c.retry.Enabled && c.retry.MaxAttempts > 1 {
		attempts = uint(c.retry.MaxAttempts)
	}

	// The last attempt's error keeps its type; retry aggregates otherwise
	var lastErr error
	opts := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.RetryIf(func(err error) bool {
			return errs.IsRetryable(errs.TypeOf(err))
		}),
		retry.OnRetry(func(n uint, err error) {
			c.logger.WithError(err).WarnWithFields("retrying HTTP request", map[string]interface{}{
				"method":  method,
				"url":     endpoint,
				"attempt": n + 1,
			})
		}),
	}
	if c.retry.Delay > 0 {
		opts = append(opts, retry.Delay(c.retry.Delay))
	}
	if c.retry.MaxJitter > 0 {
		opts = append(opts, retry.MaxJitter(c.retry.MaxJitter))
	}

	body, err := retry.DoWithData(
		func() ([]byte, error) {
			data, err := c.roundTrip(ctx, method, endpoint, form)
			lastErr = err
			return data, err
		},
		opts...,
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		var typed *errs.Error
		if stderrors.As(lastErr, &typed) {
			return typed
		}
		if lastErr != nil {
			return errs.Wrap(errs.ErrorTypeNetwork, lastErr, "%s %s failed", method, path)
		}
		return errs.Wrap(errs.ErrorTypeNetwork, err, "%s %s failed", method, path)
	}

	if err := json.Unmarshal(body, target); err != nil {
		preview := string(body)
		if len(preview) > maxBodyPreview {
			preview = preview[:maxBodyPreview] + "..."
		}
		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          endpoint,
			"error":        err.Error(),
			"body_preview": preview,
		})
		return errs.Wrap(errs.ErrorTypeParsing, err, "failed to parse %s response", path)
	}
	return nil
}

// roundTrip performs a single request and returns the body of a successful response
func (c *Client) roundTrip(ctx context.Context, method, endpoint string, form url.Values) ([]byte, error) {
	if c.limiter != nil {
		if r, ok := c.limiter.(ratelimit.Reporter); ok {
			if status := r.Status(); status.Available == 0 {
				c.logger.DebugWithFields("Waiting for rate limit", map[string]interface{}{
					"capacity":  status.Capacity,
					"refill_at": status.RefillAt,
				})
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeUnknown, err, "failed to create request")
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	}

	resp, err := c.doRequest(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeNetwork, err, "failed to read response body")
	}

	if err := c.checkResponseStatus(resp, data); err != nil {
		return nil, err
	}
	return data, nil
}

// doRequest sends req with the session headers and records the session state
// the response hands back
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	c.applyHeaders(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.WithError(err).ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"duration": duration,
		})
		return nil, errs.Wrap(errs.ErrorTypeNetwork, err, "request to %s failed", req.URL.Path)
	}

	logger.LogRequest(c.logger, req.Method, req.URL.String(), resp.StatusCode, duration)
	c.captureSession(resp)
	return resp, nil
}

func (c *Client) applyHeaders(req *http.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Language", "en-US")
	req.Header.Set("X-IG-App-ID", AppID)
	req.Header.Set("X-IG-Capabilities", Capabilities)
	req.Header.Set("X-IG-Connection-Type", "WIFI")

	s := c.settings
	if s == nil {
		return
	}
	req.Header.Set("X-IG-Device-ID", s.UUIDs.UUID)
	req.Header.Set("X-IG-Android-ID", s.UUIDs.AndroidDeviceID)
	if s.Authorization != "" {
		req.Header.Set("Authorization", s.Authorization)
	}
	if s.UserID != "" {
		req.Header.Set("IG-U-DS-USER-ID", string(s.UserID))
	}
	for name, value := range s.Cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
}

func (c *Client) captureSession(resp *http.Response) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.settings
	if s == nil {
		return
	}
	if auth := resp.Header.Get("ig-set-authorization"); auth != "" && !strings.HasSuffix(auth, ":") {
		s.Authorization = auth
	}
	if userID := resp.Header.Get("ig-set-ig-u-ds-user-id"); userID != "" {
		s.UserID = ID(userID)
	}
	for _, cookie := range resp.Cookies() {
		if cookie.Value == "" || cookie.MaxAge < 0 {
			delete(s.Cookies, cookie.Name)
			continue
		}
		s.Cookies[cookie.Name] = cookie.Value
	}
}

// checkResponseStatus maps an API response to a typed error
func (c *Client) checkResponseStatus(resp *http.Response, body []byte) error {
	var status apiStatus
	_ = json.Unmarshal(body, &status)

	fields := map[string]interface{}{
		"status": resp.StatusCode,
		"url":    resp.Request.URL.String(),
	}
	if status.ErrorType != "" {
		fields["error_type"] = status.ErrorType
	}

	code := resp.StatusCode
	switch {
	case code == http.StatusOK:
		if status.Status == "fail" {
			c.logger.WarnWithFields("API reported failure", fields)
			return apiError(status, code)
		}
		return nil
	case code == http.StatusBadRequest:
		c.logger.WarnWithFields("API rejected request", fields)
		return apiError(status, code)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		c.logger.WarnWithFields("authentication error", fields)
		if isChallenge(status) {
			return &errs.Error{Type: errs.ErrorTypeChallenge, Message: challengeMessage(status), Code: code}
		}
		return &errs.Error{Type: errs.ErrorTypeAuth, Message: messageOr(status, "authentication required"), Code: code}
	case code == http.StatusNotFound:
		c.logger.WarnWithFields("resource not found", fields)
		return &errs.Error{Type: errs.ErrorTypeNotFound, Message: messageOr(status, "resource not found"), Code: code}
	case errs.IsRetryableStatusCode(code):
		c.logger.WarnWithFields("transient API error", fields)
		if code == http.StatusTooManyRequests {
			return &errs.Error{Type: errs.ErrorTypeRateLimit, Message: messageOr(status, "rate limit exceeded"), Code: code}
		}
		return &errs.Error{Type: errs.ErrorTypeServerError, Message: "server error", Code: code}
	case code >= 400:
		c.logger.ErrorWithFields("unexpected API error", fields)
		return &errs.Error{Type: errs.ErrorTypeUnknown, Message: fmt.Sprintf("unexpected status code: %d", code), Code: code}
	default:
		return nil
	}
}

// apiError classifies a "fail" payload by its error_type and message
func apiError(status apiStatus, code int) *errs.Error {
	if isChallenge(status) {
		return &errs.Error{Type: errs.ErrorTypeChallenge, Message: challengeMessage(status), Code: code}
	}

	switch status.ErrorType {
	case "bad_password", "invalid_user", "invalid_credentials", "invalid_parameters", "ip_block", "sentry_block":
		return &errs.Error{Type: errs.ErrorTypeAuth, Message: messageOr(status, status.ErrorType), Code: code}
	case "rate_limit_error", "feedback_required", "please_wait":
		return &errs.Error{Type: errs.ErrorTypeRateLimit, Message: messageOr(status, status.ErrorType), Code: code}
	}

	switch strings.ToLower(status.Message) {
	case "login_required", "user_has_logged_out":
		return &errs.Error{Type: errs.ErrorTypeAuth, Message: status.Message, Code: code}
	case "user not found":
		return &errs.Error{Type: errs.ErrorTypeNotFound, Message: status.Message, Code: code}
	}
	if strings.Contains(strings.ToLower(status.Message), "please wait") {
		return &errs.Error{Type: errs.ErrorTypeRateLimit, Message: status.Message, Code: code}
	}

	return &errs.Error{Type: errs.ErrorTypeUnknown, Message: messageOr(status, "request failed"), Code: code}
}

func isChallenge(status apiStatus) bool {
	switch {
	case status.TwoFactorRequired, status.Challenge != nil:
		return true
	case strings.Contains(status.ErrorType, "challenge"), strings.Contains(status.ErrorType, "checkpoint"):
		return true
	case status.Message == "challenge_required", status.Message == "checkpoint_required":
		return true
	}
	return false
}

func challengeMessage(status apiStatus) string {
	if status.TwoFactorRequired {
		return "two-factor authentication required"
	}
	msg := messageOr(status, "challenge required")
	if status.Challenge != nil && status.Challenge.URL != "" {
		msg += " at " + status.Challenge.URL
	}
	return msg
}

func messageOr(status apiStatus, fallback string) string {
	if status.Message != "" {
		return status.Message
	}
	return fallback
}

package auth

import (
	"context"
	"errors"

	errs "igfakecheck/pkg/errors"
	"igfakecheck/pkg/instagram"
	"igfakecheck/pkg/logger"
)

// Authenticator logs a single account in. prior is the saved settings
// artifact, or nil.
type Authenticator interface {
	Login(ctx context.Context, username, password string, prior *instagram.Settings) (*instagram.Settings, error)
}

// LoginOption configures LoginWithFallback
type LoginOption func(*loginOptions)

type loginOptions struct {
	onFailure func(username string, err error)
}

// OnLoginFailure registers fn to be called for every account that fails
// before the fallback moves on to the next one
func OnLoginFailure(fn func(username string, err error)) LoginOption {
	return func(o *loginOptions) { o.onFailure = fn }
}

// LoginWithFallback tries creds in order until one logs in. The saved
// settings are loaded once up front and overwritten with the session of the
// account that succeeded. It returns that session and the username used.
func LoginWithFallback(ctx context.Context, authn Authenticator, sessions SessionStore, creds []Credential, log logger.Logger, opts ...LoginOption) (*instagram.Settings, string, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	var options loginOptions
	for _, opt := range opts {
		opt(&options)
	}
	failed := func(username string, err error) {
		if options.onFailure != nil {
			options.onFailure(username, err)
		}
	}
	if len(creds) == 0 {
		return nil, "", errs.New(errs.ErrorTypeCredentialsMissing, "no Instagram credentials configured")
	}

	var prior *instagram.Settings
	if sessions != nil {
		s, err := sessions.Load()
		if err != nil {
			log.WithError(err).Warn("Ignoring unreadable session file")
		} else {
			prior = s
		}
	}

	var failures []error
	for i, cred := range creds {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}

		if cred.Username == "" {
			err := errs.New(errs.ErrorTypeAuthenticationFailed, "credential %d has no username", i+1)
			logger.LogLoginAttempt(log, "", i+1, len(creds), err)
			failed("", err)
			failures = append(failures, err)
			continue
		}

		settings, err := authn.Login(ctx, cred.Username, cred.Password, prior)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, "", ctxErr
			}
			err = errs.Wrap(errs.ErrorTypeAuthenticationFailed, err, "login as %s", cred.Username)
			logger.LogLoginAttempt(log, cred.Username, i+1, len(creds), err)
			failed(cred.Username, err)
			failures = append(failures, err)
			continue
		}

		logger.LogLoginAttempt(log, cred.Username, i+1, len(creds), nil)
		if sessions != nil {
			if err := sessions.Save(settings); err != nil {
				log.WithError(err).Warn("Could not save session settings")
			}
		}
		return settings, cred.Username, nil
	}

	return nil, "", errs.Wrap(errs.ErrorTypeExhaustedCredentials, errors.Join(failures...),
		"all %d credentials failed", len(creds))
}

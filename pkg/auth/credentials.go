package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"igfakecheck/pkg/config"
)

// Credential is one Instagram login tried during fallback login
type Credential struct {
	Username     string    `json:"username"`
	Password     string    `json:"password"`
	LastModified time.Time `json:"last_modified"`
}

// CredentialStore is the interface for storing and retrieving credentials
type CredentialStore interface {
	// Store saves credentials for a given account
	Store(cred *Credential) error

	// Retrieve gets credentials for a specific username
	Retrieve(username string) (*Credential, error)

	// List returns all stored accounts
	List() ([]*Credential, error)

	// Delete removes credentials for a specific username
	Delete(username string) error

	// Exists checks if credentials exist for a username
	Exists(username string) bool
}

// Manager handles credential storage with fallback mechanisms
type Manager struct {
	stores []CredentialStore
}

// NewManager creates a new credential manager with appropriate storage backends
func NewManager() (*Manager, error) {
	var stores []CredentialStore

	// Try keyring first (system keychain)
	keyringStore, err := NewKeyringStore()
	if err == nil {
		stores = append(stores, keyringStore)
	}

	// Always add encrypted file store as fallback
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "credentials.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore)

	// Add environment store as last resort
	stores = append(stores, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores creates a Manager over the given stores, tried in order
func NewManagerWithStores(stores ...CredentialStore) *Manager {
	return &Manager{stores: stores}
}

// Store saves credentials using the first available store
func (m *Manager) Store(cred *Credential) error {
	if cred == nil || cred.Username == "" {
		return errors.New("username is required")
	}
	if cred.Password == "" {
		return errors.New("password is required")
	}

	cred.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		err := store.Store(cred)
		if err == nil {
			return nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return fmt.Errorf("failed to store credentials: %w", lastErr)
	}
	return errors.New("no available credential stores")
}

// Retrieve gets credentials from the first store that has them
func (m *Manager) Retrieve(username string) (*Credential, error) {
	for _, store := range m.stores {
		if cred, err := store.Retrieve(username); err == nil && cred != nil {
			return cred, nil
		}
	}
	return nil, fmt.Errorf("%w for user: %s", ErrCredentialsNotFound, username)
}

// List returns all stored accounts from all stores, oldest first
func (m *Manager) List() ([]*Credential, error) {
	byUsername := make(map[string]*Credential)

	for _, store := range m.stores {
		creds, err := store.List()
		if err != nil {
			continue
		}
		for _, cred := range creds {
			// Use the most recently modified version
			if existing, ok := byUsername[cred.Username]; !ok || cred.LastModified.After(existing.LastModified) {
				byUsername[cred.Username] = cred
			}
		}
	}

	result := make([]*Credential, 0, len(byUsername))
	for _, cred := range byUsername {
		result = append(result, cred)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].LastModified.Equal(result[j].LastModified) {
			return result[i].LastModified.Before(result[j].LastModified)
		}
		return result[i].Username < result[j].Username
	})

	return result, nil
}

// Delete removes credentials from all stores
func (m *Manager) Delete(username string) error {
	var deleted bool
	var lastErr error

	for _, store := range m.stores {
		if err := store.Delete(username); err == nil {
			deleted = true
		} else {
			lastErr = err
		}
	}

	if !deleted && lastErr != nil && !errors.Is(lastErr, ErrCredentialsNotFound) && !errors.Is(lastErr, ErrStoreUnavailable) {
		return fmt.Errorf("failed to delete credentials: %w", lastErr)
	}
	if !deleted {
		return fmt.Errorf("%w for user: %s", ErrCredentialsNotFound, username)
	}

	return nil
}

// Resolve builds the ordered credential list for a login. Configured
// credentials come first, then stored accounts oldest first. When account is
// set only that account is returned. Usernames are compared case-insensitively
// and only their first occurrence is kept.
func (m *Manager) Resolve(configured []config.Credential, account string) ([]Credential, error) {
	var creds []Credential
	seen := make(map[string]bool)
	add := func(c Credential) {
		key := strings.ToLower(c.Username)
		if c.Username == "" || seen[key] {
			return
		}
		seen[key] = true
		creds = append(creds, c)
	}

	if account != "" {
		for _, c := range configured {
			if strings.EqualFold(c.Username, account) && c.Password != "" {
				add(Credential{Username: c.Username, Password: c.Password})
				return creds, nil
			}
		}
		cred, err := m.Retrieve(account)
		if err != nil {
			return nil, err
		}
		add(*cred)
		return creds, nil
	}

	for _, c := range configured {
		add(Credential{Username: c.Username, Password: c.Password})
	}

	stored, err := m.List()
	if err != nil {
		return nil, err
	}
	for _, c := range stored {
		add(*c)
	}

	return creds, nil
}

// getConfigDir returns the configuration directory path
func getConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "igfakecheck")
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "igfakecheck")
	default: // Linux and others
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "igfakecheck")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config", "igfakecheck")
		}
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// SanitizeCredential creates a copy of the credential with the password masked
func SanitizeCredential(cred *Credential) *Credential {
	if cred == nil {
		return nil
	}

	return &Credential{
		Username:     cred.Username,
		Password:     maskString(cred.Password),
		LastModified: cred.LastModified,
	}
}

// maskString masks all but the first 2 and last 2 characters of a string
func maskString(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:2] + "..." + s[len(s)-2:]
}

// Errors
var (
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrStoreUnavailable    = errors.New("credential store unavailable")
)

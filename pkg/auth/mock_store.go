package auth

import (
	"context"
	"sync"

	"igfakecheck/pkg/instagram"
)

// MockStore implements CredentialStore for testing purposes
type MockStore struct {
	creds map[string]*Credential
	mu    sync.RWMutex

	// Error injection for testing
	StoreError    error
	RetrieveError error
	ListError     error
	DeleteError   error
}

// NewMockStore creates a new mock credential store
func NewMockStore() *MockStore {
	return &MockStore{
		creds: make(map[string]*Credential),
	}
}

// Store saves credentials to the mock store
func (m *MockStore) Store(cred *Credential) error {
	if m.StoreError != nil {
		return m.StoreError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if cred == nil || cred.Username == "" {
		return ErrInvalidCredentials
	}

	c := *cred
	m.creds[cred.Username] = &c
	return nil
}

// Retrieve gets credentials from the mock store
func (m *MockStore) Retrieve(username string) (*Credential, error) {
	if m.RetrieveError != nil {
		return nil, m.RetrieveError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if username == "" {
		return nil, ErrInvalidCredentials
	}

	cred, exists := m.creds[username]
	if !exists {
		return nil, ErrCredentialsNotFound
	}

	c := *cred
	return &c, nil
}

// List returns all stored accounts from the mock store
func (m *MockStore) List() ([]*Credential, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	creds := make([]*Credential, 0, len(m.creds))
	for _, cred := range m.creds {
		c := *cred
		creds = append(creds, &c)
	}
	return creds, nil
}

// Delete removes credentials from the mock store
func (m *MockStore) Delete(username string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if username == "" {
		return ErrInvalidCredentials
	}
	if _, exists := m.creds[username]; !exists {
		return ErrCredentialsNotFound
	}

	delete(m.creds, username)
	return nil
}

// Exists checks if credentials exist in the mock store
func (m *MockStore) Exists(username string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.creds[username]
	return exists
}

// Count returns the number of stored credentials
func (m *MockStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.creds)
}

// NewMockManager creates a Manager with a mock store for testing
func NewMockManager() (*Manager, *MockStore) {
	store := NewMockStore()
	return NewManagerWithStores(store), store
}

// MockAuthenticator accepts the passwords in Passwords and rejects everything else
type MockAuthenticator struct {
	Passwords map[string]string
	Errors    map[string]error

	mu       sync.Mutex
	attempts []string
	priors   []*instagram.Settings
}

// Login implements Authenticator
func (m *MockAuthenticator) Login(ctx context.Context, username, password string, prior *instagram.Settings) (*instagram.Settings, error) {
	m.mu.Lock()
	m.attempts = append(m.attempts, username)
	m.priors = append(m.priors, prior)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := m.Errors[username]; err != nil {
		return nil, err
	}
	if want, ok := m.Passwords[username]; !ok || want != password {
		return nil, ErrInvalidCredentials
	}

	s := instagram.NewSettings(username)
	if prior != nil {
		s.UUIDs = prior.UUIDs
	}
	s.UserID = instagram.ID("id-" + username)
	s.Authorization = "Bearer IGT:2:" + username
	return s, nil
}

// Attempts returns the usernames tried, in order
func (m *MockAuthenticator) Attempts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.attempts...)
}

// Priors returns the prior settings passed to each attempt
func (m *MockAuthenticator) Priors() []*instagram.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*instagram.Settings(nil), m.priors...)
}

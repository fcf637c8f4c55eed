package auth

import (
	"os"

	"igfakecheck/pkg/config"
)

// EnvironmentStore implements CredentialStore over IGFAKECHECK_USERNAME,
// IGFAKECHECK_PASSWORD and the IGFAKECHECK_CREDENTIALS list. It is read-only.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(cred *Credential) error {
	return ErrStoreUnavailable
}

// Retrieve returns the environment credential for username
func (e *EnvironmentStore) Retrieve(username string) (*Credential, error) {
	if username == "" {
		return nil, ErrInvalidCredentials
	}

	creds, err := e.List()
	if err != nil {
		return nil, err
	}
	for _, cred := range creds {
		if cred.Username == username {
			return cred, nil
		}
	}
	return nil, ErrCredentialsNotFound
}

// List returns the credentials set in the environment, in order
func (e *EnvironmentStore) List() ([]*Credential, error) {
	var creds []*Credential

	if username := os.Getenv("IGFAKECHECK_USERNAME"); username != "" {
		if password := os.Getenv("IGFAKECHECK_PASSWORD"); password != "" {
			creds = append(creds, &Credential{Username: username, Password: password})
		}
	}

	if list := os.Getenv("IGFAKECHECK_CREDENTIALS"); list != "" {
		parsed, err := config.ParseCredentialList(list)
		if err != nil {
			return nil, err
		}
		for _, c := range parsed {
			creds = append(creds, &Credential{Username: c.Username, Password: c.Password})
		}
	}

	return creds, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(username string) error {
	return ErrStoreUnavailable
}

// Exists checks if an environment credential exists for username
func (e *EnvironmentStore) Exists(username string) bool {
	cred, err := e.Retrieve(username)
	return err == nil && cred != nil
}

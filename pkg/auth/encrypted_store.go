package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

const (
	vaultVersion    = 2
	vaultSaltSize   = 32
	vaultKeySize    = 32
	vaultIterations = 100000
)

// EncryptedFileStore keeps Instagram accounts in an AES-GCM sealed file.
// Accounts are kept in the order they were added, which is the order the
// fallback login tries them in.
type EncryptedFileStore struct {
	path       string
	passphrase string
	mu         sync.RWMutex
}

// vaultFile is the on-disk envelope. Only Sealed carries account data.
type vaultFile struct {
	Version    int       `json:"version"`
	Salt       []byte    `json:"salt"`
	Iterations int       `json:"iterations"`
	Sealed     []byte    `json:"sealed"`
	Modified   time.Time `json:"modified"`
}

// vault is the decrypted content of a vaultFile
type vault struct {
	salt     []byte
	accounts []Credential
}

func (v *vault) index(username string) int {
	for i := range v.accounts {
		if v.accounts[i].Username == username {
			return i
		}
	}
	return -1
}

// NewEncryptedFileStore opens the vault at filePath with the passphrase from
// IGFAKECHECK_PASSPHRASE, or one generated next to the other config files
func NewEncryptedFileStore(filePath string) (*EncryptedFileStore, error) {
	passphrase, err := vaultPassphrase()
	if err != nil {
		return nil, fmt.Errorf("failed to get passphrase: %w", err)
	}
	return NewEncryptedFileStoreWithPassphrase(filePath, passphrase)
}

// NewEncryptedFileStoreWithPassphrase opens the vault at filePath with an explicit passphrase
func NewEncryptedFileStoreWithPassphrase(filePath, passphrase string) (*EncryptedFileStore, error) {
	if passphrase == "" {
		return nil, errors.New("passphrase is required")
	}
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	return &EncryptedFileStore{path: filePath, passphrase: passphrase}, nil
}

// Store adds an account, or replaces the password of an existing one in place
func (e *EncryptedFileStore) Store(cred *Credential) error {
	if cred == nil || cred.Username == "" {
		return ErrInvalidCredentials
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	v, err := e.open()
	if errors.Is(err, os.ErrNotExist) {
		v = &vault{}
	} else if err != nil {
		return fmt.Errorf("failed to open credential vault: %w", err)
	}

	if i := v.index(cred.Username); i >= 0 {
		v.accounts[i] = *cred
	} else {
		v.accounts = append(v.accounts, *cred)
	}
	return e.seal(v)
}

// Retrieve returns the account stored for username
func (e *EncryptedFileStore) Retrieve(username string) (*Credential, error) {
	if username == "" {
		return nil, ErrInvalidCredentials
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	v, err := e.open()
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrCredentialsNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to open credential vault: %w", err)
	}

	i := v.index(username)
	if i < 0 {
		return nil, ErrCredentialsNotFound
	}
	cred := v.accounts[i]
	return &cred, nil
}

// List returns every stored account in the order they were added
func (e *EncryptedFileStore) List() ([]*Credential, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	v, err := e.open()
	if errors.Is(err, os.ErrNotExist) {
		return []*Credential{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to open credential vault: %w", err)
	}

	creds := make([]*Credential, len(v.accounts))
	for i := range v.accounts {
		cred := v.accounts[i]
		creds[i] = &cred
	}
	return creds, nil
}

// Delete removes an account. The vault file goes away with its last account.
func (e *EncryptedFileStore) Delete(username string) error {
	if username == "" {
		return ErrInvalidCredentials
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	v, err := e.open()
	if errors.Is(err, os.ErrNotExist) {
		return ErrCredentialsNotFound
	} else if err != nil {
		return fmt.Errorf("failed to open credential vault: %w", err)
	}

	i := v.index(username)
	if i < 0 {
		return ErrCredentialsNotFound
	}
	v.accounts = append(v.accounts[:i], v.accounts[i+1:]...)

	if len(v.accounts) == 0 {
		return os.Remove(e.path)
	}
	return e.seal(v)
}

// Exists reports whether an account is stored for username
func (e *EncryptedFileStore) Exists(username string) bool {
	_, err := e.Retrieve(username)
	return err == nil
}

// open reads and decrypts the vault. A missing file yields os.ErrNotExist.
func (e *EncryptedFileStore) open() (*vault, error) {
	content, err := os.ReadFile(e.path)
	if err != nil {
		return nil, err
	}

	var file vaultFile
	if err := json.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("failed to parse vault: %w", err)
	}
	if file.Iterations <= 0 {
		file.Iterations = vaultIterations
	}

	aead, err := vaultCipher(e.passphrase, file.Salt, file.Iterations)
	if err != nil {
		return nil, err
	}
	if len(file.Sealed) < aead.NonceSize() {
		return nil, errors.New("vault is truncated")
	}
	nonce, sealed := file.Sealed[:aead.NonceSize()], file.Sealed[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt vault (wrong passphrase?): %w", err)
	}

	v := &vault{salt: file.Salt}
	if err := json.Unmarshal(plaintext, &v.accounts); err != nil {
		return nil, fmt.Errorf("failed to parse vault accounts: %w", err)
	}
	return v, nil
}

// seal encrypts the vault and replaces the file atomically
func (e *EncryptedFileStore) seal(v *vault) error {
	if len(v.salt) == 0 {
		v.salt = make([]byte, vaultSaltSize)
		if _, err := io.ReadFull(rand.Reader, v.salt); err != nil {
			return fmt.Errorf("failed to generate salt: %w", err)
		}
	}

	plaintext, err := json.Marshal(v.accounts)
	if err != nil {
		return fmt.Errorf("failed to marshal accounts: %w", err)
	}

	aead, err := vaultCipher(e.passphrase, v.salt, vaultIterations)
	if err != nil {
		return err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	content, err := json.MarshalIndent(vaultFile{
		Version:    vaultVersion,
		Salt:       v.salt,
		Iterations: vaultIterations,
		Sealed:     aead.Seal(nonce, nonce, plaintext, nil),
		Modified:   time.Now(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal vault: %w", err)
	}

	tmp := e.path + ".tmp"
	if err := os.WriteFile(tmp, content, 0600); err != nil {
		return fmt.Errorf("failed to write vault: %w", err)
	}
	if err := os.Rename(tmp, e.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace vault: %w", err)
	}
	return nil
}

// vaultCipher derives the AES-256 key with PBKDF2-SHA256
func vaultCipher(passphrase string, salt []byte, iterations int) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(passphrase), salt, iterations, vaultKeySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// vaultPassphrase returns IGFAKECHECK_PASSPHRASE, or the contents of the
// generated .passphrase file, creating it on first use
func vaultPassphrase() (string, error) {
	if pass := os.Getenv("IGFAKECHECK_PASSPHRASE"); pass != "" {
		return pass, nil
	}

	configDir, err := getConfigDir()
	if err != nil {
		return "", err
	}
	passphraseFile := filepath.Join(configDir, ".passphrase")

	if content, err := os.ReadFile(passphraseFile); err == nil && len(content) > 0 {
		return string(content), nil
	}

	raw := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", fmt.Errorf("failed to generate passphrase: %w", err)
	}
	passphrase := fmt.Sprintf("%x", raw)
	if err := os.WriteFile(passphraseFile, []byte(passphrase), 0600); err != nil {
		return "", fmt.Errorf("failed to save passphrase: %w", err)
	}
	return passphrase, nil
}

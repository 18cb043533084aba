package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	// ErrTokenNotFound indicates no token is stored in a given store
	ErrTokenNotFound = errors.New("apify token not found")
	// ErrInvalidToken indicates an empty or malformed token
	ErrInvalidToken = errors.New("invalid apify token")
)

// TokenStore is the interface for storing and retrieving the Apify API
// token.
type TokenStore interface {
	// Save stores the token
	Save(token string) error

	// Retrieve gets the stored token
	Retrieve() (string, error)

	// Delete removes the stored token
	Delete() error

	// Name identifies the store in log output
	Name() string
}

// Manager resolves the Apify token across storage backends with fallback:
// environment first, then the system keychain, then the encrypted file.
type Manager struct {
	stores []TokenStore
}

// NewManager creates a token manager with the available backends.
func NewManager() (*Manager, error) {
	stores := []TokenStore{NewEnvStore()}

	// Keyring is preferred for writes when the system supports it
	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "token.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore)

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores creates a manager over an explicit store list.
// Used by tests.
func NewManagerWithStores(stores ...TokenStore) *Manager {
	return &Manager{stores: stores}
}

// Resolve returns the token from the first store that has one.
func (m *Manager) Resolve() (string, error) {
	for _, store := range m.stores {
		if token, err := store.Retrieve(); err == nil && token != "" {
			return token, nil
		}
	}
	return "", ErrTokenNotFound
}

// Save stores the token in the first writable backend. The environment
// store is read-only and skipped.
func (m *Manager) Save(token string) error {
	if token == "" {
		return ErrInvalidToken
	}

	var lastErr error
	for _, store := range m.stores {
		if _, readonly := store.(*EnvStore); readonly {
			continue
		}
		if err := store.Save(token); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}

	if lastErr != nil {
		return fmt.Errorf("failed to store token: %w", lastErr)
	}
	return errors.New("no writable token stores available")
}

// Delete removes the token from every writable backend.
func (m *Manager) Delete() error {
	deleted := false
	for _, store := range m.stores {
		if _, readonly := store.(*EnvStore); readonly {
			continue
		}
		if err := store.Delete(); err == nil {
			deleted = true
		}
	}
	if !deleted {
		return ErrTokenNotFound
	}
	return nil
}

// Sources describes where a token is currently present, for `auth status`.
func (m *Manager) Sources() []string {
	var sources []string
	for _, store := range m.stores {
		if token, err := store.Retrieve(); err == nil && token != "" {
			sources = append(sources, store.Name())
		}
	}
	return sources
}

func getConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "profilegram"), nil
}

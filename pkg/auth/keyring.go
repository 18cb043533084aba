package auth

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "profilegram"
	keyringUser    = "apify_token"
)

// KeyringStore stores the token in the system keychain.
type KeyringStore struct{}

// NewKeyringStore creates a keyring-backed token store. It verifies the
// system keyring is actually usable before returning.
func NewKeyringStore() (*KeyringStore, error) {
	testKey := keyringUser + "_test"
	if err := keyring.Set(keyringService, testKey, "test"); err != nil {
		return nil, fmt.Errorf("system keyring not available: %w", err)
	}
	_ = keyring.Delete(keyringService, testKey)

	return &KeyringStore{}, nil
}

// Save stores the token in the keyring.
func (s *KeyringStore) Save(token string) error {
	if token == "" {
		return ErrInvalidToken
	}
	if err := keyring.Set(keyringService, keyringUser, token); err != nil {
		return fmt.Errorf("failed to save token to keyring: %w", err)
	}
	return nil
}

// Retrieve gets the token from the keyring.
func (s *KeyringStore) Retrieve() (string, error) {
	token, err := keyring.Get(keyringService, keyringUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrTokenNotFound
		}
		return "", fmt.Errorf("failed to retrieve token from keyring: %w", err)
	}
	if token == "" {
		return "", ErrTokenNotFound
	}
	return token, nil
}

// Delete removes the token from the keyring.
func (s *KeyringStore) Delete() error {
	if err := keyring.Delete(keyringService, keyringUser); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrTokenNotFound
		}
		return fmt.Errorf("failed to delete token from keyring: %w", err)
	}
	return nil
}

// Name returns the store identifier.
func (s *KeyringStore) Name() string {
	return "system keyring"
}

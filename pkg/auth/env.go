package auth

import "os"

// EnvTokenVar is the environment variable holding the Apify API token.
const EnvTokenVar = "APIFY_TOKEN"

// EnvStore reads the token from the environment. It is read-only.
type EnvStore struct{}

// NewEnvStore creates an environment-backed token store.
func NewEnvStore() *EnvStore {
	return &EnvStore{}
}

// Save is not supported for the environment store.
func (s *EnvStore) Save(token string) error {
	return ErrInvalidToken
}

// Retrieve returns the token from the environment.
func (s *EnvStore) Retrieve() (string, error) {
	token := os.Getenv(EnvTokenVar)
	if token == "" {
		return "", ErrTokenNotFound
	}
	return token, nil
}

// Delete is not supported for the environment store.
func (s *EnvStore) Delete() error {
	return ErrTokenNotFound
}

// Name returns the store identifier.
func (s *EnvStore) Name() string {
	return "environment"
}

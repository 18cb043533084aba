package auth

import "sync"

// MockStore is an in-memory token store for testing.
type MockStore struct {
	mu    sync.RWMutex
	token string

	SaveErr     error
	RetrieveErr error
	DeleteErr   error
}

// NewMockStore creates an in-memory token store.
func NewMockStore() *MockStore {
	return &MockStore{}
}

// Save stores the token in memory.
func (m *MockStore) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SaveErr != nil {
		return m.SaveErr
	}
	if token == "" {
		return ErrInvalidToken
	}
	m.token = token
	return nil
}

// Retrieve gets the token from memory.
func (m *MockStore) Retrieve() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.RetrieveErr != nil {
		return "", m.RetrieveErr
	}
	if m.token == "" {
		return "", ErrTokenNotFound
	}
	return m.token, nil
}

// Delete clears the token.
func (m *MockStore) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	if m.token == "" {
		return ErrTokenNotFound
	}
	m.token = ""
	return nil
}

// Name returns the store identifier.
func (m *MockStore) Name() string {
	return "mock"
}

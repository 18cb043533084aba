package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"profilegram/pkg/models"
)

// FileStore persists one JSON file per username under a base directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the base directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) Name() string { return "file" }

// Upsert writes the snapshot atomically: a temporary file is renamed into
// place so readers never observe a partial write.
func (f *FileStore) Upsert(_ context.Context, username string, snapshot *models.ProfileSnapshot) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	filename := f.path(username)

	// Each writer gets its own temp file so concurrent upserts for the
	// same username cannot rename each other's partial writes into place.
	tmp, err := os.CreateTemp(f.dir, filepath.Base(filename)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tempFile := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tempFile)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	if err := os.Chmod(tempFile, 0644); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to set snapshot permissions: %w", err)
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}

func (f *FileStore) Get(_ context.Context, username string) (*models.ProfileSnapshot, error) {
	data, err := os.ReadFile(f.path(username))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snapshot models.ProfileSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}

	return &snapshot, nil
}

func (f *FileStore) path(username string) string {
	return filepath.Join(f.dir, sanitizeUsername(username)+".json")
}

// sanitizeUsername keeps filenames safe regardless of what arrives in the
// request path. Usernames are matched case-insensitively upstream, so the
// key is lowercased here too.
func sanitizeUsername(username string) string {
	username = strings.ToLower(username)
	var b strings.Builder
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

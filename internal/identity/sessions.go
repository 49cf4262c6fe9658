// Package identity resolves bearer tokens to user ids. Sessions live in
// a JSON file next to the database, which is plenty for a single-node
// deployment.
package identity

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/anirank/anirank/internal/errs"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const sessionTokenLength = 32

// Provider resolves a bearer token to a user id
type Provider interface {
	Resolve(token string) (string, error)
}

// FileSessionStore implements Provider using a JSON file
type FileSessionStore struct {
	mu       sync.RWMutex
	filepath string
	sessions map[string]string // token -> user id
}

// NewFileSessionStore creates a file-backed session store, loading any
// sessions a previous run left behind.
func NewFileSessionStore(filepath string) (*FileSessionStore, error) {
	store := &FileSessionStore{
		filepath: filepath,
		sessions: make(map[string]string),
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	if err := json.Unmarshal(data, &store.sessions); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}
	return store, nil
}

// Resolve returns the user id a token belongs to
func (s *FileSessionStore) Resolve(token string) (string, error) {
	if token == "" {
		return "", errs.ErrAuthRequired
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	userID, ok := s.sessions[token]
	if !ok {
		return "", errs.ErrAuthRequired
	}
	return userID, nil
}

// Create opens a new session for the user and returns its token
func (s *FileSessionStore) Create(userID string) (string, error) {
	if userID == "" {
		return "", errs.Validationf("user id must not be empty")
	}

	token, err := gonanoid.New(sessionTokenLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[token] = userID
	if err := s.save(); err != nil {
		delete(s.sessions, token)
		return "", err
	}
	return token, nil
}

// Delete removes a session. Deleting an unknown token is not an error.
func (s *FileSessionStore) Delete(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[token]; !ok {
		return nil
	}
	delete(s.sessions, token)
	return s.save()
}

// save writes the session map, caller holds the lock
func (s *FileSessionStore) save() error {
	data, err := json.MarshalIndent(s.sessions, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.filepath, data, 0600)
}

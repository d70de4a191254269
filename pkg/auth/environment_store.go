package auth

import (
	"os"
	"time"
)

// EnvironmentStore implements SessionStore using environment variables.
// This is primarily for CI and backward compatibility.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based session store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(session *Session) error {
	return ErrStoreUnavailable
}

// Retrieve gets a session from environment variables
func (e *EnvironmentStore) Retrieve(profile string) (*Session, error) {
	cookie := os.Getenv("PINSCOPE_SESSION_COOKIE")
	userAgent := os.Getenv("PINSCOPE_USER_AGENT")

	if cookie == "" {
		return nil, ErrSessionNotFound
	}

	// Environment variables carry no profile name
	if profile == "" {
		profile = "default"
	}

	return &Session{
		Profile:      profile,
		Cookie:       cookie,
		UserAgent:    userAgent,
		LastModified: time.Now(),
	}, nil
}

// List returns a single session if the environment variable is set
func (e *EnvironmentStore) List() ([]*Session, error) {
	session, err := e.Retrieve("")
	if err != nil {
		return []*Session{}, nil
	}
	return []*Session{session}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(profile string) error {
	return ErrStoreUnavailable
}

// Exists checks if an environment session exists
func (e *EnvironmentStore) Exists(profile string) bool {
	return os.Getenv("PINSCOPE_SESSION_COOKIE") != ""
}

package auth

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestManagerStoreAndRetrieve(t *testing.T) {
	store := NewMockStore()
	manager := NewManagerWithStores(store)

	session := &Session{
		Profile: "default",
		Cookie:  "abc123sessioncookie",
	}

	if err := manager.Store(session); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	if session.LastModified.IsZero() {
		t.Error("Expected LastModified to be set on store")
	}

	got, err := manager.Retrieve("default")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}

	if got.Cookie != "abc123sessioncookie" {
		t.Errorf("Expected cookie abc123sessioncookie, got %s", got.Cookie)
	}
}

func TestManagerStoreValidation(t *testing.T) {
	manager := NewManagerWithStores(NewMockStore())

	tests := []struct {
		name    string
		session *Session
	}{
		{"missing profile", &Session{Cookie: "cookie"}},
		{"missing cookie", &Session{Profile: "default"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := manager.Store(tt.session); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestManagerFallback(t *testing.T) {
	failing := NewMockStore()
	failing.StoreError = errors.New("backend down")
	working := NewMockStore()

	manager := NewManagerWithStores(failing, working)

	session := &Session{Profile: "work", Cookie: "cookie"}
	if err := manager.Store(session); err != nil {
		t.Fatalf("Store should fall back to second store: %v", err)
	}

	if !working.Exists("work") {
		t.Error("Expected session in fallback store")
	}
	if failing.Exists("work") {
		t.Error("Did not expect session in failing store")
	}
}

func TestManagerRetrieveNotFound(t *testing.T) {
	manager := NewManagerWithStores(NewMockStore())

	if _, err := manager.Retrieve("missing"); err == nil {
		t.Error("Expected error for missing profile")
	}
}

func TestManagerListMergesMostRecent(t *testing.T) {
	older := NewMockStore()
	newer := NewMockStore()

	base := time.Now()
	older.sessions["default"] = &Session{Profile: "default", Cookie: "old", LastModified: base}
	newer.sessions["default"] = &Session{Profile: "default", Cookie: "new", LastModified: base.Add(time.Hour)}

	manager := NewManagerWithStores(older, newer)

	sessions, err := manager.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(sessions) != 1 {
		t.Fatalf("Expected 1 session, got %d", len(sessions))
	}
	if sessions[0].Cookie != "new" {
		t.Errorf("Expected most recent session, got cookie %s", sessions[0].Cookie)
	}
}

func TestManagerDelete(t *testing.T) {
	store := NewMockStore()
	manager := NewManagerWithStores(store)

	session := &Session{Profile: "default", Cookie: "cookie"}
	if err := manager.Store(session); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	if err := manager.Delete("default"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if store.Exists("default") {
		t.Error("Expected session to be deleted")
	}

	if err := manager.Delete("default"); err == nil {
		t.Error("Expected error deleting missing session")
	}
}

func TestManagerRetrieveDefaultFromEnvironment(t *testing.T) {
	t.Setenv("PINSCOPE_SESSION_COOKIE", "env-cookie")

	manager := NewManagerWithStores(NewMockStore(), NewEnvironmentStore())

	session, err := manager.RetrieveDefault()
	if err != nil {
		t.Fatalf("RetrieveDefault failed: %v", err)
	}

	if session.Cookie != "env-cookie" {
		t.Errorf("Expected env-cookie, got %s", session.Cookie)
	}
}

func TestEnvironmentStoreReadOnly(t *testing.T) {
	store := NewEnvironmentStore()

	if err := store.Store(&Session{Profile: "x", Cookie: "y"}); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("Expected ErrStoreUnavailable, got %v", err)
	}
	if err := store.Delete("x"); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("Expected ErrStoreUnavailable, got %v", err)
	}
}

func TestEncryptedFileStoreRoundTrip(t *testing.T) {
	t.Setenv("PINSCOPE_PASSPHRASE", "test-passphrase")

	path := filepath.Join(t.TempDir(), "sessions.enc")
	store, err := NewEncryptedFileStore(path)
	if err != nil {
		t.Fatalf("NewEncryptedFileStore failed: %v", err)
	}

	session := &Session{
		Profile:      "default",
		Cookie:       "secret-cookie-value",
		UserAgent:    "Mozilla/5.0",
		LastModified: time.Now(),
	}

	if err := store.Store(session); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	// Reopen with the same passphrase
	reopened, err := NewEncryptedFileStore(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}

	got, err := reopened.Retrieve("default")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}

	if got.Cookie != session.Cookie {
		t.Errorf("Expected cookie %s, got %s", session.Cookie, got.Cookie)
	}
	if got.UserAgent != session.UserAgent {
		t.Errorf("Expected user agent %s, got %s", session.UserAgent, got.UserAgent)
	}
}

func TestEncryptedFileStoreDeleteRemovesFile(t *testing.T) {
	t.Setenv("PINSCOPE_PASSPHRASE", "test-passphrase")

	path := filepath.Join(t.TempDir(), "sessions.enc")
	store, err := NewEncryptedFileStore(path)
	if err != nil {
		t.Fatalf("NewEncryptedFileStore failed: %v", err)
	}

	if err := store.Store(&Session{Profile: "only", Cookie: "c"}); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	if err := store.Delete("only"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if store.Exists("only") {
		t.Error("Expected session removed")
	}

	sessions, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("Expected no sessions, got %d", len(sessions))
	}
}

func TestEncryptDecrypt(t *testing.T) {
	key := make([]byte, keySize)
	for i := range key {
		key[i] = byte(i)
	}

	plaintext := []byte("the quick brown fox")

	encrypted, err := encrypt(plaintext, key)
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}

	decrypted, err := decrypt(encrypted, key)
	if err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}

	if string(decrypted) != string(plaintext) {
		t.Errorf("Expected %s, got %s", plaintext, decrypted)
	}

	// Wrong key must fail
	wrongKey := make([]byte, keySize)
	if _, err := decrypt(encrypted, wrongKey); err == nil {
		t.Error("Expected decryption with wrong key to fail")
	}
}

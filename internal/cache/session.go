package cache

import (
	"database/sql"
	"errors"
	"log/slog"
)

const tokenKey = "token"

// TokenStore keeps the session token in the session table so it survives
// restarts. It satisfies api.CredentialStore.
type TokenStore struct {
	db     *DB
	logger *slog.Logger
}

// NewTokenStore returns a store backed by d.
func NewTokenStore(d *DB, logger *slog.Logger) *TokenStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenStore{db: d, logger: logger}
}

// Get returns the stored token. Read failures count as no token.
func (s *TokenStore) Get() (string, bool) {
	var token string
	err := s.db.db.QueryRow(`SELECT value FROM session WHERE key = ?`, tokenKey).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false
	}
	if err != nil {
		s.logger.Error("reading token", "error", err)
		return "", false
	}
	return token, token != ""
}

// Set replaces the stored token.
func (s *TokenStore) Set(token string) error {
	_, err := s.db.db.Exec(`INSERT OR REPLACE INTO session (key, value) VALUES (?, ?)`, tokenKey, token)
	return err
}

// Clear removes the stored token. Clearing an empty slot is a no-op.
func (s *TokenStore) Clear() error {
	_, err := s.db.db.Exec(`DELETE FROM session WHERE key = ?`, tokenKey)
	return err
}

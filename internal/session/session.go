// Package session holds the pricing API bearer token as an explicit object
// with a single source of truth and explicit invalidation.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenStore persists the bearer token between runs.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// Session is the authenticated identity attached to every API request.
// It is safe for concurrent use.
type Session struct {
	mu          sync.Mutex
	token       string
	expiry      time.Time
	store       TokenStore
	hooks       []func()
	invalidated bool
}

// New creates a session backed by store, loading any persisted token.
// A nil store keeps the token in memory only.
func New(store TokenStore) (*Session, error) {
	s := &Session{store: store}
	if store == nil {
		return s, nil
	}
	tok, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	s.token = strings.TrimSpace(tok)
	s.expiry = TokenExpiry(s.token)
	return s, nil
}

// NewWithToken creates an in-memory session holding token.
func NewWithToken(token string) *Session {
	tok := strings.TrimSpace(token)
	return &Session{token: tok, expiry: TokenExpiry(tok)}
}

// Token returns the current bearer token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Expiry returns the token expiry, zero when unknown.
func (s *Session) Expiry() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiry
}

// Valid reports whether a non-expired token is held.
func (s *Session) Valid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return false
	}
	return s.expiry.IsZero() || time.Now().Before(s.expiry)
}

// SetToken stores a new token, persisting it and re-arming invalidation hooks.
func (s *Session) SetToken(token string) error {
	tok := strings.TrimSpace(token)
	if tok == "" {
		return errors.New("token cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store != nil {
		if err := s.store.Save(tok); err != nil {
			return fmt.Errorf("save token: %w", err)
		}
	}
	s.token = tok
	s.expiry = TokenExpiry(tok)
	s.invalidated = false
	return nil
}

// OnInvalidate registers fn to run when the session is invalidated.
func (s *Session) OnInvalidate(fn func()) {
	s.mu.Lock()
	s.hooks = append(s.hooks, fn)
	s.mu.Unlock()
}

// Invalidate clears the token from memory and from the store, then runs the
// registered hooks. Repeated calls before the next SetToken do nothing, so
// hooks such as a redirect to login fire exactly once.
func (s *Session) Invalidate() error {
	s.mu.Lock()
	if s.invalidated {
		s.mu.Unlock()
		return nil
	}
	s.invalidated = true
	s.token = ""
	s.expiry = time.Time{}
	hooks := append([]func(){}, s.hooks...)
	store := s.store
	s.mu.Unlock()

	var err error
	if store != nil {
		if cerr := store.Clear(); cerr != nil {
			err = fmt.Errorf("clear token: %w", cerr)
		}
	}
	for _, fn := range hooks {
		fn()
	}
	return err
}

// TokenExpiry returns the "exp" claim of a JWT bearer token without verifying
// its signature (the pricing API does that). Opaque tokens return zero.
func TokenExpiry(token string) time.Time {
	if strings.Count(token, ".") != 2 {
		return time.Time{}
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// MemoryStore keeps the token in memory.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

func (m *MemoryStore) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemoryStore) Save(token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear() error {
	return m.Save("")
}

const credentialsFileName = "credentials.json"

type credentials struct {
	Token string `json:"token"`
}

// FileStore persists the token as {"token": "..."} in a 0600 file.
type FileStore struct {
	Path string
}

// DefaultFileStore returns the store at ~/.pricedesk/credentials.json.
func DefaultFileStore() (*FileStore, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("find home directory: %w", err)
	}
	return &FileStore{Path: filepath.Join(home, ".pricedesk", credentialsFileName)}, nil
}

// Load returns "" when the file does not exist.
func (f *FileStore) Load() (string, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	var creds credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return "", fmt.Errorf("parse %s: %w", f.Path, err)
	}
	return strings.TrimSpace(creds.Token), nil
}

func (f *FileStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(credentials{Token: token}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	return os.WriteFile(f.Path, data, 0o600)
}

// Clear removes the credentials file.
func (f *FileStore) Clear() error {
	err := os.Remove(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

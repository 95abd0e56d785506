// Package session holds the authentication flag and current profile
// for the lifetime of the process, persisted through storage so a
// restart resumes the signed-in state.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"shopfront/internal/models"
	"shopfront/internal/storage"
)

// AuthAPI is the slice of the backend client the session needs.
type AuthAPI interface {
	Login(ctx context.Context, creds models.Credentials) (models.AuthResponse, error)
	Register(ctx context.Context, creds models.Credentials) (models.AuthResponse, error)
	Logout(ctx context.Context) error
	SetToken(token string)
}

type Store struct {
	api     AuthAPI
	storage storage.Store
	logger  *zap.Logger

	mu            sync.RWMutex
	authenticated bool
	profile       *models.User

	unsubscribe func()
}

// New restores the session from storage and subscribes to the external
// clear signal; an external clear resets the session exactly like a
// local logout. Call Close at teardown to unsubscribe.
func New(api AuthAPI, st storage.Store, logger *zap.Logger) *Store {
	s := &Store{api: api, storage: st, logger: logger}

	if token, ok := st.Get(storage.KeyAccessToken); ok && token != "" {
		s.authenticated = true
		api.SetToken(token)
		if raw, ok := st.Get(storage.KeyProfile); ok {
			var user models.User
			if err := json.Unmarshal([]byte(raw), &user); err == nil {
				s.profile = &user
			} else {
				logger.Warn("stored profile unreadable", zap.Error(err))
			}
		}
	}

	s.unsubscribe = st.Subscribe(s.Reset)
	return s
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// Profile returns a copy of the current profile, or nil when signed
// out.
func (s *Store) Profile() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return nil
	}
	user := *s.profile
	return &user
}

func (s *Store) Login(ctx context.Context, creds models.Credentials) (models.User, error) {
	auth, err := s.api.Login(ctx, creds)
	if err != nil {
		return models.User{}, err
	}
	s.establish(auth)
	return auth.User, nil
}

func (s *Store) Register(ctx context.Context, creds models.Credentials) (models.User, error) {
	auth, err := s.api.Register(ctx, creds)
	if err != nil {
		return models.User{}, err
	}
	s.establish(auth)
	return auth.User, nil
}

func (s *Store) establish(auth models.AuthResponse) {
	s.api.SetToken(auth.AccessToken)

	s.mu.Lock()
	s.authenticated = true
	user := auth.User
	s.profile = &user
	s.mu.Unlock()

	if err := s.storage.Set(storage.KeyAccessToken, auth.AccessToken); err != nil {
		s.logger.Warn("persist access token", zap.Error(err))
	}
	s.persistProfile(auth.User)
	s.logger.Info("signed in", zap.String("email", auth.User.Email))
}

// SetProfile installs a freshly fetched or updated profile and
// persists it.
func (s *Store) SetProfile(user models.User) {
	s.mu.Lock()
	s.profile = &user
	s.mu.Unlock()
	s.persistProfile(user)
}

func (s *Store) persistProfile(user models.User) {
	raw, err := json.Marshal(user)
	if err != nil {
		s.logger.Warn("encode profile", zap.Error(err))
		return
	}
	if err := s.storage.Set(storage.KeyProfile, string(raw)); err != nil {
		s.logger.Warn("persist profile", zap.Error(err))
	}
}

// Logout tells the backend, then clears local and persisted state. The
// storage clear notifies subscribers, which includes this store's own
// Reset; Reset is idempotent so the double reset is harmless.
func (s *Store) Logout(ctx context.Context) error {
	err := s.api.Logout(ctx)
	if clearErr := s.storage.Clear(); clearErr != nil {
		s.logger.Warn("clear persisted session", zap.Error(clearErr))
	}
	s.Reset()
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Reset drops the in-memory session without touching storage. It is
// the handler for the external clear signal.
func (s *Store) Reset() {
	s.api.SetToken("")

	s.mu.Lock()
	wasAuthenticated := s.authenticated
	s.authenticated = false
	s.profile = nil
	s.mu.Unlock()

	if wasAuthenticated {
		s.logger.Info("session reset")
	}
}

// Close unsubscribes from the storage clear signal.
func (s *Store) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

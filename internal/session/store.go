package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"storefront-client/internal/domain"
	"storefront-client/internal/security"
	"storefront-client/internal/storage"
)

// AuthError wraps a failed login or registration so views can surface the
// message without inspecting transport details.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return "authentication failed: " + e.Err.Error()
}

func (e *AuthError) Unwrap() error { return e.Err }

type backend interface {
	Login(ctx context.Context, email, password string) (domain.AuthResponse, error)
	Register(ctx context.Context, username, email, password, referralCode string) (domain.AuthResponse, error)
	Logout(ctx context.Context) error
}

// Snapshot is the session state views render from.
type Snapshot struct {
	Authenticated bool
	Identity      domain.Identity
}

// Store owns the authenticated user's identity and credential. It is built
// once at application start and shared by all views.
type Store struct {
	api     backend
	storage *storage.Store
	logger  zerolog.Logger
	now     func() time.Time

	mu   sync.Mutex
	snap Snapshot
}

// New builds the session store and derives the initial state from whatever
// credential is already persisted.
func New(api backend, st *storage.Store, logger zerolog.Logger) *Store {
	s := &Store{
		api:     api,
		storage: st,
		logger:  logger.With().Str("component", "session").Logger(),
		now:     time.Now,
	}
	s.Validate()
	return s
}

// Snapshot returns the current session state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Login authenticates against the backend and persists the credential plus
// derived identity fields.
func (s *Store) Login(ctx context.Context, email, password string) error {
	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		return &AuthError{Err: err}
	}
	return s.adopt(resp)
}

// Register signs up and logs in. referralCode may be empty; the backend
// decides whether a non-empty one is valid.
func (s *Store) Register(ctx context.Context, username, email, password, referralCode string) error {
	resp, err := s.api.Register(ctx, username, email, password, referralCode)
	if err != nil {
		return &AuthError{Err: err}
	}
	return s.adopt(resp)
}

func (s *Store) adopt(resp domain.AuthResponse) error {
	claims, err := security.DecodeToken(resp.Token)
	if err != nil {
		return &AuthError{Err: err}
	}
	role := claims.DerivedRole()

	if err := s.storage.Set(storage.KeyToken, resp.Token); err != nil {
		return fmt.Errorf("persist credential: %w", err)
	}
	for _, kv := range []struct{ key, value string }{
		{storage.KeyEmail, resp.Email},
		{storage.KeyUsername, resp.Username},
		{storage.KeyRole, string(role)},
	} {
		if err := s.storage.Set(kv.key, kv.value); err != nil {
			s.logger.Error().Err(err).Str("key", kv.key).Msg("persist identity field")
		}
	}

	s.mu.Lock()
	s.snap = Snapshot{
		Authenticated: true,
		Identity: domain.Identity{
			Email:    resp.Email,
			Username: resp.Username,
			Role:     role,
		},
	}
	s.mu.Unlock()
	return nil
}

// Logout calls the server-side logout endpoint best-effort, then
// unconditionally clears the local credential. A network failure must not
// leave the user trapped in a logged-in-but-broken state.
func (s *Store) Logout(ctx context.Context) {
	if err := s.api.Logout(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("server logout failed, clearing local session anyway")
	}
	s.ForceLogout()
}

// ForceLogout clears the stored credential and resets the session to
// unauthenticated. It is also the cross-cutting cleanup invoked when any
// backend call is rejected as unauthorized.
func (s *Store) ForceLogout() {
	if err := s.storage.Delete(storage.SessionKeys...); err != nil {
		s.logger.Error().Err(err).Msg("clear stored credential")
	}
	s.mu.Lock()
	s.snap = Snapshot{}
	s.mu.Unlock()
}

// Validate re-derives the session state from storage. It never propagates an
// error: a missing, expired or undecodable credential all resolve to a
// definite unauthenticated state, clearing storage on the way.
func (s *Store) Validate() Snapshot {
	token, ok := s.storage.Get(storage.KeyToken)
	if !ok || token == "" {
		s.mu.Lock()
		s.snap = Snapshot{}
		s.mu.Unlock()
		return s.Snapshot()
	}

	claims, err := security.DecodeToken(token)
	if err != nil {
		s.logger.Warn().Err(err).Msg("stored credential undecodable, logging out")
		s.ForceLogout()
		return s.Snapshot()
	}
	if claims.Expired(s.now()) {
		s.logger.Debug().Msg("stored credential expired, logging out")
		s.ForceLogout()
		return s.Snapshot()
	}

	email, _ := s.storage.Get(storage.KeyEmail)
	if email == "" {
		email = claims.Email
	}
	username, _ := s.storage.Get(storage.KeyUsername)

	s.mu.Lock()
	s.snap = Snapshot{
		Authenticated: true,
		Identity: domain.Identity{
			Email:    email,
			Username: username,
			Role:     claims.DerivedRole(),
		},
	}
	s.mu.Unlock()
	return s.Snapshot()
}

// WatchStorage revalidates the session whenever another process changes the
// shared storage file, so logging out in one terminal propagates to others.
func (s *Store) WatchStorage(done <-chan struct{}) {
	ch := s.storage.Watch(done)
	go func() {
		for range ch {
			s.Validate()
		}
	}()
}

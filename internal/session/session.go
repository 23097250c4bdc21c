// Package session owns the authenticated-user state of the client: who is
// signed in, their mapped profile, and the lifecycle around boot, refresh,
// and logout. It is the single source of truth the screens subscribe to.
package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vaultstring-web/vaultstring-frontend-sub001/internal/domain"
	apperrors "github.com/vaultstring-web/vaultstring-frontend-sub001/pkg/errors"
	"github.com/vaultstring-web/vaultstring-frontend-sub001/pkg/logger"
)

// Gateway is the slice of the API client the session needs.
type Gateway interface {
	CurrentUser(ctx context.Context) (json.RawMessage, error)
}

// StateStore is the slice of local storage the session reads and writes.
type StateStore interface {
	Token() string
	SetToken(token string) error
	RawUser() []byte
	SetRawUser(payload []byte) error
	Clear() error
}

// Subscriber receives the profile after every session change. A nil profile
// means signed out.
type Subscriber func(profile *domain.Profile)

// Session holds the in-memory authenticated state and republishes it to
// subscribers whenever it changes.
type Session struct {
	gateway Gateway
	store   StateStore
	logger  *slog.Logger

	mu          sync.RWMutex
	profile     *domain.Profile
	subscribers []Subscriber
}

// New creates an unauthenticated session.
func New(gw Gateway, store StateStore, logger *slog.Logger) *Session {
	return &Session{
		gateway: gw,
		store:   store,
		logger:  logger,
	}
}

// Subscribe registers fn for session changes. Registration alone does not
// notify; callers read Current for the initial state.
func (s *Session) Subscribe(fn Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Current returns the signed-in profile, or nil when signed out.
func (s *Session) Current() *domain.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// Authenticated reports whether a profile is loaded.
func (s *Session) Authenticated() bool {
	return s.Current() != nil
}

// Load restores the session at boot. Without a persisted token it leaves the
// session signed out. With one, it first maps the persisted raw user payload
// so the UI renders immediately, then fetches the authoritative payload.
// A network or server failure during the fetch keeps the optimistic profile;
// only an unauthorized response signs the session out. Load never returns
// transport errors, the boot path must not fail on a flaky connection.
func (s *Session) Load(ctx context.Context) error {
	token := s.store.Token()
	if token == "" {
		return nil
	}

	s.logTokenExpiry(ctx, token)

	if raw := s.store.RawUser(); raw != nil {
		profile := domain.NewProfile(domain.ParseRawUser(raw))
		s.publish(&profile)
		s.logger.DebugContext(ctx, "session restored from persisted payload",
			slog.String("user_id", profile.ID),
		)
	}

	return s.refresh(ctx)
}

// Refresh re-fetches the authoritative user payload for an active session.
func (s *Session) Refresh(ctx context.Context) error {
	if s.store.Token() == "" {
		return apperrors.ErrNoSession
	}
	return s.refresh(ctx)
}

func (s *Session) refresh(ctx context.Context) error {
	raw, err := s.gateway.CurrentUser(ctx)
	switch {
	case err == nil:
		profile := domain.NewProfile(domain.ParseRawUser(raw))
		ctx = logger.WithUserID(ctx, profile.ID)
		if err := s.store.SetRawUser(raw); err != nil {
			logger.WithContext(ctx, s.logger).WarnContext(ctx, "failed to persist user payload",
				slog.String("error", err.Error()),
			)
		}
		s.publish(&profile)
		return nil

	case apperrors.IsUnauthorized(err):
		// The gateway already cleared the token; drop the rest.
		s.Drop()
		return nil

	default:
		s.logger.WarnContext(ctx, "profile refresh failed, keeping last known profile",
			slog.String("error", err.Error()),
		)
		return nil
	}
}

// Establish installs a fresh session after login or registration: the token
// and raw payload are persisted, then the mapped profile is published.
func (s *Session) Establish(token string, rawUser json.RawMessage) error {
	if err := s.store.SetToken(token); err != nil {
		return apperrors.Wrap(err, "persist session token")
	}
	if err := s.store.SetRawUser(rawUser); err != nil {
		return apperrors.Wrap(err, "persist user payload")
	}

	profile := domain.NewProfile(domain.ParseRawUser(rawUser))
	s.publish(&profile)
	return nil
}

// Logout clears the persisted session state and publishes the signed-out
// state. Local cleanup proceeds even if the storage removal fails.
func (s *Session) Logout() error {
	err := s.store.Clear()
	s.publish(nil)
	if err != nil {
		return apperrors.Wrap(err, "clear session state")
	}
	return nil
}

// Drop discards the session without touching the token, for use when the
// gateway has already invalidated it.
func (s *Session) Drop() {
	if err := s.store.Clear(); err != nil {
		s.logger.Warn("failed to clear session state", slog.String("error", err.Error()))
	}
	s.publish(nil)
}

// publish swaps the profile and notifies subscribers. The subscriber list is
// copied under the lock; callbacks run after it is released so a subscriber
// may call back into the session.
func (s *Session) publish(profile *domain.Profile) {
	s.mu.Lock()
	s.profile = profile
	subs := make([]Subscriber, len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(profile)
	}
}

// logTokenExpiry peeks at the persisted token's exp claim without verifying
// the signature. The gateway remains the authority on validity; this only
// explains in the logs why a boot is about to bounce to login.
func (s *Session) logTokenExpiry(ctx context.Context, token string) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return
	}

	if exp.Before(time.Now()) {
		s.logger.InfoContext(ctx, "persisted token is expired",
			slog.Time("expired_at", exp.Time),
		)
	}
}

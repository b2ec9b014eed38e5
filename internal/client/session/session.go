// Package session holds the client-wide authentication state: who is logged
// in and the bearer token proving it. It is an explicit, injectable service,
// not ambient global state; the gateway client reads it, the views mutate it
// through Login/Logout, and reactive consumers subscribe to changes.
package session

import (
	"context"
	"sync"

	"github.com/golang-jwt/jwt/v5"

	"simuorg/internal/client/models"
	"simuorg/internal/client/tokenstore"
	"simuorg/internal/logging"
)

// Snapshot is an immutable view of the session handed to subscribers.
type Snapshot struct {
	Authenticated bool
	User          models.UserProfile
	Token         string
}

// Service is the single source of truth for the current session.
//
// Invariant: token and user are set and cleared together — there is no
// state with a token but no user, or a user but no token. A user restored
// from an opaque token is represented by a present-but-empty profile.
type Service struct {
	mu    sync.Mutex
	user  *models.UserProfile
	token string

	store       tokenstore.Store
	log         logging.Logger
	subscribers []func(Snapshot)
}

// New constructs a session service persisting tokens to store.
func New(store tokenstore.Store, log logging.Logger) *Service {
	if log == nil {
		log = logging.NopLogger{}
	}
	return &Service{store: store, log: log}
}

// Login records the authenticated user and token in one step and persists
// the token. Persistence is best-effort: a store failure is logged and the
// in-memory session still flips, mirroring how a lost durable slot only
// costs the user a re-login after restart.
func (s *Service) Login(ctx context.Context, user models.UserProfile, token string) {
	s.mu.Lock()
	s.user = &user
	s.token = token
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if err := s.store.Save(ctx, token); err != nil {
		s.log.Warn(ctx, "failed to persist token", "error", err)
	}

	s.notify(snap)
}

// Logout clears the user and token in one step and removes the persisted
// token. Clearing an already-empty session is a no-op for subscribers'
// purposes but still notifies them.
func (s *Service) Logout(ctx context.Context) {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		s.log.Warn(ctx, "failed to clear persisted token", "error", err)
	}

	s.notify(snap)
}

// Restore rehydrates the session from the persistent token store. It must
// run before the first authorized request. The stored token is normally a
// JWT: its claims are parsed without signature verification (the server
// verifies; the client only needs display fields) to rebuild a minimal
// profile. An opaque token still authenticates, with an anonymous profile.
func (s *Service) Restore(ctx context.Context) error {
	token, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}

	user := profileFromToken(token)

	s.mu.Lock()
	s.user = &user
	s.token = token
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.log.Info(ctx, "session restored", "email", user.Email)
	s.notify(snap)
	return nil
}

// CurrentToken returns the bearer token, or an empty string when logged out.
func (s *Service) CurrentToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// IsAuthenticated reports whether a user is set. After a rehydration from
// an opaque token this means "has token", not "has verified user".
func (s *Service) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

// CurrentUser returns the profile of the logged-in user, if any.
func (s *Service) CurrentUser() (models.UserProfile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return models.UserProfile{}, false
	}
	return *s.user, true
}

// Subscribe registers fn to be called after every session change with a
// snapshot of the new state. Subscribers live as long as the service.
func (s *Service) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

func (s *Service) snapshotLocked() Snapshot {
	snap := Snapshot{Token: s.token}
	if s.user != nil {
		snap.Authenticated = true
		snap.User = *s.user
	}
	return snap
}

// notify runs outside the lock so a subscriber may read the service.
func (s *Service) notify(snap Snapshot) {
	s.mu.Lock()
	subs := make([]func(Snapshot), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

// profileFromToken rebuilds a display profile from JWT claims, skipping
// signature verification.
func profileFromToken(token string) models.UserProfile {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return models.UserProfile{}
	}

	var user models.UserProfile
	if email, ok := claims["email"].(string); ok {
		user.Email = email
	} else if sub, ok := claims["sub"].(string); ok {
		user.Email = sub
	}
	if name, ok := claims["name"].(string); ok {
		user.Name = name
	}
	return user
}

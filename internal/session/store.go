// Package session keeps track of who is logged in. The identity is derived
// from a persisted token/username pair that is always written and cleared as
// a unit.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/erazemk/resell/internal/client"
	"github.com/erazemk/resell/internal/model"
)

// Record is the persisted credential pair.
type Record struct {
	Token    string
	Username string
}

// complete reports whether both halves of the pair are present.
func (r Record) complete() bool {
	return r.Token != "" && r.Username != ""
}

// empty reports whether neither half is present.
func (r Record) empty() bool {
	return r.Token == "" && r.Username == ""
}

// Storage persists a Record across process restarts.
type Storage interface {
	Load(ctx context.Context) (Record, error)
	Save(ctx context.Context, r Record) error
	Clear(ctx context.Context) error
}

// Authenticator obtains tokens. *client.Client implements it.
type Authenticator interface {
	Register(ctx context.Context, reg model.Registration) (*model.AuthResponse, error)
	Authenticate(ctx context.Context, creds model.Credentials) (*model.AuthResponse, error)
}

// Revoker invalidates a token on the server. *client.Client implements it.
type Revoker interface {
	Revoke(ctx context.Context, token string) error
}

// Listener is called with the previous and the new identity after every
// change. Either may be nil.
type Listener func(prev, next *model.Identity)

// Store is the session state of one process.
type Store struct {
	auth    Authenticator
	storage Storage
	revoker Revoker

	mu       sync.Mutex
	token    string
	identity *model.Identity

	lmu       sync.Mutex
	listeners map[int]Listener
	nextID    int
}

// Option configures a Store.
type Option func(*Store)

// WithRevoker makes Logout revoke the token server-side before clearing it.
func WithRevoker(r Revoker) Option {
	return func(s *Store) { s.revoker = r }
}

// New creates a logged-out store. Call Restore to pick up a persisted session.
func New(auth Authenticator, storage Storage, opts ...Option) *Store {
	s := &Store{
		auth:      auth,
		storage:   storage,
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login authenticates and persists the session. On any failure the error
// matches client.ErrAuthentication and the previous session is kept.
func (s *Store) Login(ctx context.Context, creds model.Credentials) (*model.Identity, error) {
	ar, err := s.auth.Authenticate(ctx, creds)
	if err != nil {
		return nil, wrap(client.ErrAuthentication, err)
	}
	return s.establish(ctx, ar, client.ErrAuthentication)
}

// Register creates an account and logs into it. On any failure the error
// matches client.ErrRegistration and the previous session is kept.
func (s *Store) Register(ctx context.Context, reg model.Registration) (*model.Identity, error) {
	ar, err := s.auth.Register(ctx, reg)
	if err != nil {
		return nil, wrap(client.ErrRegistration, err)
	}
	return s.establish(ctx, ar, client.ErrRegistration)
}

func wrap(sentinel, err error) error {
	if errors.Is(err, sentinel) {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}

var errIncompleteResponse = errors.New("server returned an incomplete token")

// establish persists ar and makes it the current session.
func (s *Store) establish(ctx context.Context, ar *model.AuthResponse, sentinel error) (*model.Identity, error) {
	rec := Record{Token: ar.Token, Username: ar.Username}
	if !rec.complete() {
		return nil, wrap(sentinel, errIncompleteResponse)
	}

	s.mu.Lock()
	if err := s.storage.Save(ctx, rec); err != nil {
		s.mu.Unlock()
		return nil, wrap(sentinel, fmt.Errorf("saving session: %w", err))
	}
	prev := s.identity
	s.token = rec.Token
	s.identity = &model.Identity{Username: rec.Username}
	next := s.identity
	s.mu.Unlock()

	slog.Info("logged in", "user", rec.Username)
	s.notify(prev, next)
	return copyIdentity(next), nil
}

// Logout ends the session. It always succeeds and is a no-op when nobody
// is logged in. The in-memory session always ends; if the persisted one
// cannot be cleared even on retry, a later Restore brings it back.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	if token != "" && s.revoker != nil {
		if err := s.revoker.Revoke(ctx, token); err != nil {
			slog.Warn("failed to revoke token", "error", err)
		}
	}

	s.mu.Lock()
	if err := s.clearStorage(ctx); err != nil {
		slog.Error("failed to clear session, it will be restored on next start", "error", err)
	}
	prev := s.identity
	s.token = ""
	s.identity = nil
	s.mu.Unlock()

	if prev != nil {
		slog.Info("logged out", "user", prev.Username)
		s.notify(prev, nil)
	}
}

// clearStorage clears the persisted session, retrying once. Callers hold mu.
func (s *Store) clearStorage(ctx context.Context) error {
	err := s.storage.Clear(ctx)
	if err == nil {
		return nil
	}
	slog.Warn("failed to clear session, retrying", "error", err)
	return s.storage.Clear(ctx)
}

// Restore loads the persisted session. A pair with one half missing is
// cleared. The token is not checked against the server.
func (s *Store) Restore(ctx context.Context) (*model.Identity, error) {
	s.mu.Lock()
	rec, err := s.storage.Load(ctx)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("loading session: %w", err)
	}

	var next *model.Identity
	switch {
	case rec.complete():
		next = &model.Identity{Username: rec.Username}
	case !rec.empty():
		slog.Warn("clearing incomplete stored session")
		if err := s.storage.Clear(ctx); err != nil {
			s.mu.Unlock()
			return nil, fmt.Errorf("clearing incomplete session: %w", err)
		}
		rec = Record{}
	}

	prev := s.identity
	s.token = rec.Token
	s.identity = next
	s.mu.Unlock()

	if !sameIdentity(prev, next) {
		s.notify(prev, next)
	}
	return copyIdentity(next), nil
}

// Identity returns the current identity, or nil when logged out.
func (s *Store) Identity() *model.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyIdentity(s.identity)
}

// Token returns the current bearer token, or "" when logged out. It makes
// the store a client.TokenSource.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// LoggedIn reports whether there is a current identity.
func (s *Store) LoggedIn() bool {
	return s.Identity() != nil
}

// Subscribe registers fn for identity changes and returns a function that
// removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.lmu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.lmu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.lmu.Lock()
			delete(s.listeners, id)
			s.lmu.Unlock()
		})
	}
}

// notify calls listeners in subscription order. No store lock is held.
func (s *Store) notify(prev, next *model.Identity) {
	s.lmu.Lock()
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	fns := make([]Listener, 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, s.listeners[id])
	}
	s.lmu.Unlock()

	for _, fn := range fns {
		fn(copyIdentity(prev), copyIdentity(next))
	}
}

func copyIdentity(id *model.Identity) *model.Identity {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}

func sameIdentity(a, b *model.Identity) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Username == b.Username
}

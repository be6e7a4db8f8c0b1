package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/resell/internal/client"
	"github.com/erazemk/resell/internal/db"
	"github.com/erazemk/resell/internal/model"
)

// fakeAuth accepts any password equal to "password" and issues "tok-<user>".
type fakeAuth struct {
	calls int
}

func (f *fakeAuth) Authenticate(_ context.Context, creds model.Credentials) (*model.AuthResponse, error) {
	f.calls++
	if creds.Password != "password" {
		return nil, client.ErrAuthentication
	}
	return &model.AuthResponse{Token: "tok-" + creds.Username, Username: creds.Username}, nil
}

func (f *fakeAuth) Register(_ context.Context, reg model.Registration) (*model.AuthResponse, error) {
	f.calls++
	if reg.Username == "taken" {
		return nil, client.ErrRegistration
	}
	return &model.AuthResponse{Token: "tok-" + reg.Username, Username: reg.Username}, nil
}

// memStorage is an in-memory Storage with injectable failures.
type memStorage struct {
	mu        sync.Mutex
	rec       Record
	saveErr   error
	clearErrs []error
	clears    int
}

func (m *memStorage) Load(context.Context) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rec, nil
}

func (m *memStorage) Save(_ context.Context, r Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.rec = r
	return nil
}

func (m *memStorage) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clears++
	if len(m.clearErrs) > 0 {
		err := m.clearErrs[0]
		m.clearErrs = m.clearErrs[1:]
		return err
	}
	m.rec = Record{}
	return nil
}

type fakeRevoker struct {
	revoked []string
	err     error
}

func (f *fakeRevoker) Revoke(_ context.Context, token string) error {
	f.revoked = append(f.revoked, token)
	return f.err
}

func TestLoginThenRestoreInFreshStore(t *testing.T) {
	ctx := context.Background()
	storage := &SQLiteStorage{DB: db.NewTestSessionDB(t)}

	for _, username := range []string{"bob", "alice", "Ž-user", "a b"} {
		s := New(&fakeAuth{}, storage)
		id, err := s.Login(ctx, model.Credentials{Username: username, Password: "password"})
		require.NoError(t, err)
		assert.Equal(t, username, id.Username)

		fresh := New(&fakeAuth{}, storage)
		restored, err := fresh.Restore(ctx)
		require.NoError(t, err)
		require.NotNil(t, restored)
		assert.Equal(t, username, restored.Username)
		assert.Equal(t, "tok-"+username, fresh.Token())
	}
}

func TestLogoutIdempotent(t *testing.T) {
	ctx := context.Background()
	storage := &memStorage{}
	s := New(&fakeAuth{}, storage)

	var events int
	s.Subscribe(func(prev, next *model.Identity) { events++ })

	s.Logout(ctx)
	assert.Nil(t, s.Identity())
	assert.Zero(t, events, "logging out while logged out is not a change")

	_, err := s.Login(ctx, model.Credentials{Username: "bob", Password: "password"})
	require.NoError(t, err)
	assert.Equal(t, 1, events)

	s.Logout(ctx)
	s.Logout(ctx)
	assert.Equal(t, 2, events)
	assert.False(t, s.LoggedIn())
	assert.Empty(t, s.Token())
	assert.Equal(t, Record{}, storage.rec)
}

func TestFailedLoginKeepsSession(t *testing.T) {
	ctx := context.Background()
	storage := &memStorage{}
	s := New(&fakeAuth{}, storage)

	_, err := s.Login(ctx, model.Credentials{Username: "bob", Password: "password"})
	require.NoError(t, err)

	var events int
	s.Subscribe(func(prev, next *model.Identity) { events++ })

	_, err = s.Login(ctx, model.Credentials{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, client.ErrAuthentication)

	storage.saveErr = errors.New("disk full")
	_, err = s.Login(ctx, model.Credentials{Username: "alice", Password: "password"})
	assert.ErrorIs(t, err, client.ErrAuthentication)
	assert.ErrorIs(t, err, storage.saveErr)

	_, err = s.Register(ctx, model.Registration{Username: "taken", Password: "password", Email: "t@x.com"})
	assert.ErrorIs(t, err, client.ErrRegistration)

	assert.Equal(t, "bob", s.Identity().Username)
	assert.Equal(t, "tok-bob", s.Token())
	assert.Equal(t, Record{Token: "tok-bob", Username: "bob"}, storage.rec)
	assert.Zero(t, events)
}

type incompleteAuth struct{ *fakeAuth }

func (incompleteAuth) Authenticate(context.Context, model.Credentials) (*model.AuthResponse, error) {
	return &model.AuthResponse{Username: "bob"}, nil
}

func TestLoginRejectsIncompleteResponse(t *testing.T) {
	storage := &memStorage{}
	s := New(incompleteAuth{&fakeAuth{}}, storage)

	_, err := s.Login(context.Background(), model.Credentials{Username: "bob", Password: "password"})
	assert.ErrorIs(t, err, client.ErrAuthentication)
	assert.Nil(t, s.Identity())
	assert.Equal(t, Record{}, storage.rec)
}

func TestRegisterLogsIn(t *testing.T) {
	storage := &memStorage{}
	s := New(&fakeAuth{}, storage)

	id, err := s.Register(context.Background(), model.Registration{Username: "bob", Password: "pw", Email: "b@x.com"})
	require.NoError(t, err)
	assert.Equal(t, &model.Identity{Username: "bob"}, id)
	assert.Equal(t, Record{Token: "tok-bob", Username: "bob"}, storage.rec)
}

func TestRestoreClearsHalfPair(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
	}{
		{"token only", Record{Token: "tok"}},
		{"username only", Record{Username: "bob"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := &memStorage{rec: tt.rec}
			s := New(&fakeAuth{}, storage)

			id, err := s.Restore(context.Background())
			require.NoError(t, err)
			assert.Nil(t, id)
			assert.Empty(t, s.Token())
			assert.Equal(t, Record{}, storage.rec)
			assert.Equal(t, 1, storage.clears)
		})
	}

	s := New(&fakeAuth{}, &memStorage{})
	id, err := s.Restore(context.Background())
	require.NoError(t, err)
	assert.Nil(t, id)
}

func TestSubscribeOrderAndUnsubscribe(t *testing.T) {
	ctx := context.Background()
	s := New(&fakeAuth{}, &memStorage{})

	var order []string
	s.Subscribe(func(prev, next *model.Identity) {
		// Listeners may read the store: no lock is held.
		assert.Equal(t, next != nil, s.LoggedIn())
		order = append(order, "first")
	})
	unsub := s.Subscribe(func(prev, next *model.Identity) { order = append(order, "second") })

	var transitions [][2]string
	s.Subscribe(func(prev, next *model.Identity) {
		name := func(id *model.Identity) string {
			if id == nil {
				return ""
			}
			return id.Username
		}
		transitions = append(transitions, [2]string{name(prev), name(next)})
	})

	_, err := s.Login(ctx, model.Credentials{Username: "bob", Password: "password"})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)

	unsub()
	unsub()
	_, err = s.Login(ctx, model.Credentials{Username: "alice", Password: "password"})
	require.NoError(t, err)
	s.Logout(ctx)

	assert.Equal(t, []string{"first", "second", "first", "first"}, order)
	assert.Equal(t, [][2]string{{"", "bob"}, {"bob", "alice"}, {"alice", ""}}, transitions)
}

func TestLogoutRevokesBestEffort(t *testing.T) {
	ctx := context.Background()
	revoker := &fakeRevoker{err: client.ErrAuthentication}
	storage := &memStorage{}
	s := New(&fakeAuth{}, storage, WithRevoker(revoker))

	s.Logout(ctx)
	assert.Empty(t, revoker.revoked, "nothing to revoke while logged out")

	_, err := s.Login(ctx, model.Credentials{Username: "bob", Password: "password"})
	require.NoError(t, err)

	s.Logout(ctx)
	assert.Equal(t, []string{"tok-bob"}, revoker.revoked)
	assert.Nil(t, s.Identity(), "revocation failure does not block logout")
	assert.Equal(t, Record{}, storage.rec)
}

func TestLogoutRetriesClear(t *testing.T) {
	ctx := context.Background()
	storage := &memStorage{}
	s := New(&fakeAuth{}, storage)

	_, err := s.Login(ctx, model.Credentials{Username: "bob", Password: "password"})
	require.NoError(t, err)

	storage.clearErrs = []error{errors.New("disk busy")}
	s.Logout(ctx)
	assert.Equal(t, 2, storage.clears)
	assert.Equal(t, Record{}, storage.rec)

	restored, err := New(&fakeAuth{}, storage).Restore(ctx)
	require.NoError(t, err)
	assert.Nil(t, restored, "cleared on retry")
}

func TestLogoutClearFailureRestoresLater(t *testing.T) {
	ctx := context.Background()
	storage := &memStorage{}
	s := New(&fakeAuth{}, storage)

	_, err := s.Login(ctx, model.Credentials{Username: "bob", Password: "password"})
	require.NoError(t, err)

	storage.clearErrs = []error{errors.New("disk busy"), errors.New("disk busy")}
	s.Logout(ctx)
	assert.Equal(t, 2, storage.clears)
	assert.False(t, s.LoggedIn(), "the running session still ends")

	restored, err := New(&fakeAuth{}, storage).Restore(ctx)
	require.NoError(t, err)
	require.NotNil(t, restored)
	assert.Equal(t, "bob", restored.Username)
}

func TestIdentityIsACopy(t *testing.T) {
	s := New(&fakeAuth{}, &memStorage{})
	_, err := s.Login(context.Background(), model.Credentials{Username: "bob", Password: "password"})
	require.NoError(t, err)

	id := s.Identity()
	id.Username = "mallory"
	assert.Equal(t, "bob", s.Identity().Username)
}

func TestStoreIsTokenSource(t *testing.T) {
	var _ client.TokenSource = (*Store)(nil)
	var _ Authenticator = (*client.Client)(nil)
	var _ Revoker = (*client.Client)(nil)
}

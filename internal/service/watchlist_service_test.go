package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watchlist-gateway/internal/database"
	"watchlist-gateway/internal/models"
	"watchlist-gateway/internal/session"
	"watchlist-gateway/internal/validate"
)

// spyStore records every call so tests can assert which storage operations
// ran, and with what.
type spyStore struct {
	listCalls   int
	existsCalls int
	insertCalls int
	deleteCalls int
	closeCalls  int

	items      []models.WatchListItem
	exists     bool
	deletedIDs []int
	inserted   []models.WatchListItem

	listErr   error
	existsErr error
	insertErr error
	deleteErr error

	deleteRows int64
}

func (s *spyStore) ListItems(_ context.Context, _ int) ([]models.WatchListItem, error) {
	s.listCalls++
	return s.items, s.listErr
}

func (s *spyStore) ItemExists(_ context.Context, _ string, _ models.MediaType) (bool, error) {
	s.existsCalls++
	return s.exists, s.existsErr
}

func (s *spyStore) InsertItem(_ context.Context, item models.WatchListItem) (int64, error) {
	s.insertCalls++
	if s.insertErr != nil {
		return 0, s.insertErr
	}
	s.inserted = append(s.inserted, item)
	return 1, nil
}

func (s *spyStore) DeleteItems(_ context.Context, ids []int) (int64, error) {
	s.deleteCalls++
	s.deletedIDs = ids
	return s.deleteRows, s.deleteErr
}

func (s *spyStore) Close() error {
	s.closeCalls++
	return nil
}

// fakeConnector hands out a canned store (or error) and counts connection
// attempts so tests can prove no network work happened.
type fakeConnector struct {
	store session.Store
	err   error
	calls int
}

func (f *fakeConnector) Connect(_ context.Context, _, _ string) (session.Store, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.store, nil
}

func newTestGateway(store session.Store) (*WatchListGateway, *fakeConnector, *session.Session) {
	sess := session.New()
	conn := &fakeConnector{store: store}
	return NewWatchListGateway(sess, conn, nil), conn, sess
}

func authenticate(t *testing.T, gw *WatchListGateway) {
	t.Helper()
	resp := gw.Authenticate(context.Background(), models.Credentials{Username: "alice", Password: "pw"})
	require.True(t, resp.Success, "authenticate failed: %s", resp.Message)
}

func TestDataOperationsRequireAuthentication(t *testing.T) {
	ctx := context.Background()
	store := &spyStore{}
	gw, conn, _ := newTestGateway(store)

	list := gw.List(ctx)
	insert := gw.Insert(ctx, models.WatchListItem{MediaType: models.MediaTypeMovie, Name: "Inception", Rating: 9})
	del := gw.DeleteBatch(ctx, []int{1})

	for _, resp := range []models.Response{list, insert, del} {
		assert.False(t, resp.Success)
		assert.Equal(t, validate.ErrAuthenticationRequired.Error(), resp.Message)
		assert.Zero(t, resp.RowsAffected)
	}

	// No network work of any kind before authentication.
	assert.Zero(t, conn.calls)
	assert.Zero(t, store.listCalls)
	assert.Zero(t, store.existsCalls)
	assert.Zero(t, store.insertCalls)
	assert.Zero(t, store.deleteCalls)
}

func TestAuthenticateEmptyCredentials(t *testing.T) {
	ctx := context.Background()
	gw, conn, sess := newTestGateway(&spyStore{})

	resp := gw.Authenticate(ctx, models.Credentials{Username: "", Password: "pw"})
	assert.False(t, resp.Success)
	assert.Equal(t, "Username cannot be empty", resp.Message)

	resp = gw.Authenticate(ctx, models.Credentials{Username: "alice", Password: "   "})
	assert.False(t, resp.Success)
	assert.Equal(t, "Password cannot be empty", resp.Message)

	assert.Zero(t, conn.calls, "empty credentials must be rejected locally")
	assert.False(t, sess.Authenticated())
}

func TestAuthenticateConnectFailure(t *testing.T) {
	gw, conn, sess := newTestGateway(nil)
	conn.err = errors.New("pq: password authentication failed")

	resp := gw.Authenticate(context.Background(), models.Credentials{Username: "alice", Password: "wrong"})
	assert.False(t, resp.Success)
	assert.Equal(t, "Authentication failed: Invalid username or password", resp.Message)
	assert.False(t, sess.Authenticated())
}

func TestAuthenticateVerificationFailure(t *testing.T) {
	gw, conn, sess := newTestGateway(nil)
	conn.err = errors.Join(database.ErrVerification, database.ErrSchemaMissing)

	resp := gw.Authenticate(context.Background(), models.Credentials{Username: "alice", Password: "pw"})
	assert.False(t, resp.Success)
	assert.Equal(t,
		"Authentication failed: Insufficient database permissions or watch_list table not found",
		resp.Message)
	assert.False(t, sess.Authenticated())
}

func TestFailedAuthenticateLeavesSessionUntouched(t *testing.T) {
	first := &spyStore{}
	gw, conn, sess := newTestGateway(first)
	authenticate(t, gw)

	// A later failed attempt must not disturb the working session.
	conn.err = errors.New("connection refused")
	resp := gw.Authenticate(context.Background(), models.Credentials{Username: "bob", Password: "pw"})
	assert.False(t, resp.Success)

	store, ok := sess.Store()
	require.True(t, ok)
	assert.Same(t, first, store)
	assert.Zero(t, first.closeCalls)
}

func TestReauthenticateClosesPreviousPool(t *testing.T) {
	first := &spyStore{}
	second := &spyStore{}
	gw, conn, sess := newTestGateway(first)

	authenticate(t, gw)
	conn.store = second
	authenticate(t, gw)

	assert.Equal(t, 1, first.closeCalls, "replaced pool must be closed, not leaked")
	store, ok := sess.Store()
	require.True(t, ok)
	assert.Same(t, second, store)
}

func TestLogoutIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := &spyStore{}
	gw, _, sess := newTestGateway(store)

	// Logging out before ever authenticating still succeeds.
	resp := gw.Logout(ctx)
	assert.True(t, resp.Success)
	assert.Equal(t, "Logged out successfully", resp.Message)

	authenticate(t, gw)
	resp = gw.Logout(ctx)
	assert.True(t, resp.Success)
	assert.Equal(t, 1, store.closeCalls)
	assert.False(t, sess.Authenticated())

	resp = gw.Logout(ctx)
	assert.True(t, resp.Success)
	assert.Equal(t, 1, store.closeCalls, "second logout must not close again")
}

func TestListSanitizesNamesDefensively(t *testing.T) {
	id := 1
	store := &spyStore{items: []models.WatchListItem{
		{ID: &id, MediaType: models.MediaTypeMovie, Name: "  <b>Inception</b>  ", Rating: 9},
	}}
	gw, _, _ := newTestGateway(store)
	authenticate(t, gw)

	resp := gw.List(context.Background())
	require.True(t, resp.Success)
	assert.Equal(t, "Retrieved 1 items successfully", resp.Message)
	assert.EqualValues(t, 1, resp.RowsAffected)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "&lt;b&gt;Inception&lt;&#x2F;b&gt;", resp.Data[0].Name)
}

func TestListFailure(t *testing.T) {
	store := &spyStore{listErr: errors.New("boom")}
	gw, _, _ := newTestGateway(store)
	authenticate(t, gw)

	resp := gw.List(context.Background())
	assert.False(t, resp.Success)
	assert.Equal(t, "Failed to retrieve watch list items from database", resp.Message)
	assert.Nil(t, resp.Data)
}

func TestInsertHappyPath(t *testing.T) {
	store := &spyStore{}
	gw, _, _ := newTestGateway(store)
	authenticate(t, gw)

	resp := gw.Insert(context.Background(), models.WatchListItem{
		MediaType:       models.MediaTypeMovie,
		Name:            "  Inception  ",
		Rating:          9,
		WouldWatchAgain: true,
	})
	require.True(t, resp.Success, resp.Message)
	assert.Equal(t, "Item added to watch list successfully", resp.Message)
	assert.EqualValues(t, 1, resp.RowsAffected)

	require.Len(t, store.inserted, 1)
	assert.Equal(t, "Inception", store.inserted[0].Name, "name is stored sanitized and trimmed")
	assert.Equal(t, 1, store.existsCalls, "duplicate check must run before insert")
}

func TestInsertDuplicate(t *testing.T) {
	store := &spyStore{exists: true}
	gw, _, _ := newTestGateway(store)
	authenticate(t, gw)

	resp := gw.Insert(context.Background(), models.WatchListItem{
		MediaType:       models.MediaTypeMovie,
		Name:            "Inception",
		Rating:          9,
		WouldWatchAgain: true,
	})
	assert.False(t, resp.Success)
	assert.Equal(t,
		"A movie with the name 'Inception' already exists in your watch list",
		resp.Message)
	assert.Zero(t, resp.RowsAffected)
	assert.Zero(t, store.insertCalls, "duplicate must never reach the insert")
}

func TestInsertValidation(t *testing.T) {
	store := &spyStore{}
	gw, _, _ := newTestGateway(store)
	authenticate(t, gw)
	ctx := context.Background()

	resp := gw.Insert(ctx, models.WatchListItem{MediaType: "film", Name: "Inception", Rating: 9})
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "Invalid media type")

	resp = gw.Insert(ctx, models.WatchListItem{MediaType: models.MediaTypeMovie, Name: "Inception", Rating: 11})
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "Rating value 11 is invalid")

	// Sanitization empties an emoji-only name; the gateway must catch that.
	resp = gw.Insert(ctx, models.WatchListItem{MediaType: models.MediaTypeMovie, Name: "🎬🍿", Rating: 5})
	assert.False(t, resp.Success)
	assert.Equal(t, "Name cannot be empty", resp.Message)

	// A slash survives sanitization only as an entity, and '#' is outside
	// the name pattern.
	resp = gw.Insert(ctx, models.WatchListItem{MediaType: models.MediaTypeMovie, Name: "AC/DC", Rating: 8})
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "invalid characters")

	assert.Zero(t, store.existsCalls, "validation failures never touch storage")
	assert.Zero(t, store.insertCalls)
}

func TestDeleteBatchDeduplicatesAndSorts(t *testing.T) {
	store := &spyStore{deleteRows: 2}
	gw, _, _ := newTestGateway(store)
	authenticate(t, gw)

	resp := gw.DeleteBatch(context.Background(), []int{5, 5, 3, 3, 3})
	require.True(t, resp.Success)
	assert.Equal(t, []int{3, 5}, store.deletedIDs)
	assert.LessOrEqual(t, resp.RowsAffected, int64(2))
	assert.Equal(t, "Successfully deleted 2 item(s)", resp.Message)
}

func TestDeleteBatchValidation(t *testing.T) {
	store := &spyStore{}
	gw, _, _ := newTestGateway(store)
	authenticate(t, gw)
	ctx := context.Background()

	resp := gw.DeleteBatch(ctx, nil)
	assert.False(t, resp.Success)
	assert.Equal(t, "ID list cannot be empty", resp.Message)

	resp = gw.DeleteBatch(ctx, []int{1, -2})
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "ID value -2 is invalid")

	big := make([]int, validate.MaxBatchDeleteIDs+1)
	for i := range big {
		big[i] = i + 1
	}
	resp = gw.DeleteBatch(ctx, big)
	assert.False(t, resp.Success)
	assert.Equal(t, "ID list cannot exceed 100 items", resp.Message)

	assert.Zero(t, store.deleteCalls)
}

func TestDeleteBatchPartialMatchIsNotAnError(t *testing.T) {
	store := &spyStore{deleteRows: 1}
	gw, _, _ := newTestGateway(store)
	authenticate(t, gw)

	resp := gw.DeleteBatch(context.Background(), []int{7, 8, 9})
	assert.True(t, resp.Success)
	assert.EqualValues(t, 1, resp.RowsAffected)
}

func TestInsertFailureMessages(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "permission denied",
			err:  fmt.Errorf("insert failed: %w", &pq.Error{Code: "42501"}),
			want: "Database permission error: Insufficient privileges to insert data.",
		},
		{
			name: "connection exception",
			err:  fmt.Errorf("insert failed: %w", &pq.Error{Code: "08006"}),
			want: "Database connection error: Unable to connect to database.",
		},
		{
			name: "anything else",
			err:  errors.New("constraint violated"),
			want: "Failed to add item to watch list.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &spyStore{insertErr: tc.err}
			gw, _, _ := newTestGateway(store)
			authenticate(t, gw)

			resp := gw.Insert(context.Background(), models.WatchListItem{
				MediaType: models.MediaTypeMovie,
				Name:      "Inception",
				Rating:    9,
			})
			assert.False(t, resp.Success)
			assert.Equal(t, tc.want, resp.Message)
			assert.Zero(t, resp.RowsAffected)
		})
	}
}

package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewStore(client, 2*time.Hour)
}

func TestStorePutGetTicket(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	issued := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	require.NoError(t, store.PutTicket(ctx, "sess-1", NamespaceLogin, Ticket{Email: "a@x.com", IssuedAt: issued}))

	ticket, err := store.GetTicket(ctx, "sess-1", NamespaceLogin)
	require.NoError(t, err)
	require.NotNil(t, ticket)
	assert.Equal(t, "a@x.com", ticket.Email)
	assert.True(t, ticket.IssuedAt.Equal(issued))
}

func TestStoreGetTicketMissing(t *testing.T) {
	store := newTestStore(t)

	ticket, err := store.GetTicket(context.Background(), "sess-1", NamespaceRegister)
	require.NoError(t, err)
	assert.Nil(t, ticket)
}

func TestStorePutTicketOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.PutTicket(ctx, "sess-1", NamespaceReset, Ticket{Email: "a@x.com", IssuedAt: first}))
	require.NoError(t, store.PutTicket(ctx, "sess-1", NamespaceReset, Ticket{Email: "a@x.com", IssuedAt: first.Add(3 * time.Minute)}))

	ticket, err := store.GetTicket(ctx, "sess-1", NamespaceReset)
	require.NoError(t, err)
	require.NotNil(t, ticket)
	assert.True(t, ticket.IssuedAt.Equal(first.Add(3*time.Minute)))
}

func TestStoreNamespacesAreIndependent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, store.PutTicket(ctx, "sess-1", NamespaceLogin, Ticket{Email: "a@x.com", IssuedAt: now}))
	require.NoError(t, store.PutTicket(ctx, "sess-1", NamespaceReset, Ticket{Email: "b@x.com", IssuedAt: now}))

	require.NoError(t, store.ClearTickets(ctx, "sess-1", NamespaceLogin))

	login, err := store.GetTicket(ctx, "sess-1", NamespaceLogin)
	require.NoError(t, err)
	assert.Nil(t, login)

	reset, err := store.GetTicket(ctx, "sess-1", NamespaceReset)
	require.NoError(t, err)
	require.NotNil(t, reset)
	assert.Equal(t, "b@x.com", reset.Email)
}

func TestStoreClearMultiple(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, store.PutTicket(ctx, "sess-1", NamespaceReset, Ticket{Email: "a@x.com", IssuedAt: now}))
	require.NoError(t, store.PutTicket(ctx, "sess-1", NamespaceResetVerified, Ticket{Email: "a@x.com", IssuedAt: now}))

	require.NoError(t, store.ClearTickets(ctx, "sess-1", NamespaceReset, NamespaceResetVerified))

	for _, ns := range []Namespace{NamespaceReset, NamespaceResetVerified} {
		ticket, err := store.GetTicket(ctx, "sess-1", ns)
		require.NoError(t, err)
		assert.Nil(t, ticket)
	}
}

func TestStoreRenameMovesState(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, store.PutTicket(ctx, "old", NamespaceLogin, Ticket{Email: "a@x.com", IssuedAt: now}))
	require.NoError(t, store.Rename(ctx, "old", "new"))

	moved, err := store.GetTicket(ctx, "new", NamespaceLogin)
	require.NoError(t, err)
	require.NotNil(t, moved)
	assert.Equal(t, "a@x.com", moved.Email)

	gone, err := store.GetTicket(ctx, "old", NamespaceLogin)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestStoreRenameEmptySession(t *testing.T) {
	store := newTestStore(t)

	assert.NoError(t, store.Rename(context.Background(), "missing", "new"))
}

func TestStoreDestroy(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutTicket(ctx, "sess-1", NamespaceLogin, Ticket{Email: "a@x.com", IssuedAt: time.Now()}))
	require.NoError(t, store.Destroy(ctx, "sess-1"))

	ticket, err := store.GetTicket(ctx, "sess-1", NamespaceLogin)
	require.NoError(t, err)
	assert.Nil(t, ticket)
}

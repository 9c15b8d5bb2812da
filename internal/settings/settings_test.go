package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/newthinker/copyhub/internal/core"
	"github.com/newthinker/copyhub/internal/storage/blob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettings_Accessors(t *testing.T) {
	var s Settings
	assert.Equal(t, 0, s.TimeFrameFor("copyt"))
	assert.Equal(t, "", s.SortFor("copyt"))

	s.SetTimeFrame("copyt", 30)
	s.SetSort("copyt", "NAME_ASC")

	assert.Equal(t, 30, s.TimeFrameFor("copyt"))
	assert.Equal(t, "NAME_ASC", s.SortFor("copyt"))
	assert.Equal(t, 0, s.TimeFrameFor("signalp"))
}

func TestSettings_CloneIsDeep(t *testing.T) {
	var s Settings
	s.SetSort("copyt", "NAME_ASC")

	c := s.Clone()
	c.SetSort("copyt", "FEE_DESC")

	assert.Equal(t, "NAME_ASC", s.SortFor("copyt"))
}

func testStore(t *testing.T, store Store) {
	ctx := context.Background()

	s, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, s.TimeFrame)

	require.NoError(t, store.Update(ctx, func(s *Settings) {
		s.SetTimeFrame("signalp", 7)
		s.Browse.Quote = "USDT"
	}))
	require.NoError(t, store.Update(ctx, func(s *Settings) {
		s.SetSort("signalp", "DATE_DESC")
	}))

	s, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, s.TimeFrameFor("signalp"))
	assert.Equal(t, "DATE_DESC", s.SortFor("signalp"))
	assert.Equal(t, "USDT", s.Browse.Quote)
	assert.False(t, s.UpdatedAt.IsZero())

	// Mutating a loaded copy must not leak into the store.
	s.SetSort("signalp", "FEE_ASC")
	again, _ := store.Load(ctx)
	assert.Equal(t, "DATE_DESC", again.SortFor("signalp"))
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestBlobStore(t *testing.T) {
	fs, err := blob.NewLocalFS(t.TempDir())
	require.NoError(t, err)
	testStore(t, NewBlobStore(fs, "settings/default.json"))
}

func TestBlobStore_CorruptDocument(t *testing.T) {
	fs, err := blob.NewLocalFS(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, fs.Put(context.Background(), "s.json", []byte("{not json")))

	store := NewBlobStore(fs, "s.json")
	_, err = store.Load(context.Background())
	assert.True(t, errors.Is(err, core.ErrSettingsFailed))

	err = store.Update(context.Background(), func(s *Settings) {})
	assert.True(t, errors.Is(err, core.ErrSettingsFailed))
}

func TestOwnerKey(t *testing.T) {
	assert.Equal(t, OwnerKey("alice"), OwnerKey("alice"))
	assert.NotEqual(t, OwnerKey("alice"), OwnerKey("bob"))
	assert.Len(t, OwnerKey("alice"), 32)
	assert.NotContains(t, OwnerKey("alice"), "alice")
}

func testStoresIsolateOwners(t *testing.T, stores Stores) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, stores.For("alice").Update(ctx, func(s *Settings) {
		s.SetTimeFrame("copyt", 7)
		s.Browse.Quote = "BTC"
	}))

	alice, err := stores.For("alice").Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, alice.TimeFrameFor("copyt"))
	assert.Equal(t, "BTC", alice.Browse.Quote)

	bob, err := stores.For("bob").Load(ctx)
	require.NoError(t, err)
	assert.Zero(t, bob.TimeFrameFor("copyt"))
	assert.Empty(t, bob.Browse.Quote)
}

func TestMemoryStores(t *testing.T) {
	stores := NewMemoryStores()
	testStoresIsolateOwners(t, stores)
	assert.Same(t, stores.For("alice"), stores.For("alice"))
}

func TestBlobStores(t *testing.T) {
	fs, err := blob.NewLocalFS(t.TempDir())
	require.NoError(t, err)
	stores := NewBlobStores(fs, "settings")
	testStoresIsolateOwners(t, stores)

	ok, err := fs.Exists(context.Background(), "settings/"+OwnerKey("alice")+".json")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = fs.Exists(context.Background(), "settings/"+OwnerKey("bob")+".json")
	require.NoError(t, err)
	assert.False(t, ok)
}

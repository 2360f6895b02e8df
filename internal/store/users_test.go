package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godver3/anitrack/internal/remote"
)

func TestLoadUsers_MissingFileIsEmpty(t *testing.T) {
	users, err := LoadUsers(filepath.Join(t.TempDir(), "users.msgpack"))
	require.NoError(t, err)
	assert.Equal(t, 0, users.Len())
}

func TestUsers_SaveAndLoad_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.msgpack")

	users := NewUsers()
	alice := UserInfo{Service: RemoteTypeAniList, Username: "alice"}
	users.AddAndSetLast(alice, remote.NewAccessToken("alice-token"))

	require.NoError(t, users.Save(path))

	loaded, err := LoadUsers(path)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Len())

	token, ok := loaded.TakeLastUsedToken()
	require.True(t, ok)
	raw, err := token.Decode()
	require.NoError(t, err)
	assert.Equal(t, "alice-token", raw)
}

func TestUsers_Remove_ClearsLastUsedOnlyWhenItPointedThere(t *testing.T) {
	users := NewUsers()
	alice := UserInfo{Service: RemoteTypeAniList, Username: "alice"}
	bob := UserInfo{Service: RemoteTypeAniList, Username: "bob"}

	users.AddAndSetLast(alice, remote.NewAccessToken("a"))
	users.AddAndSetLast(bob, remote.NewAccessToken("b"))

	users.Remove(alice)
	_, ok := users.TakeLastUsedToken()
	assert.True(t, ok, "removing a non-last user should not clear last_used")

	users.Remove(bob)
	_, ok = users.TakeLastUsedToken()
	assert.False(t, ok, "removing the last-used user should clear last_used")
}

func TestLoadLastWatched_MissingFileIsEmptyString(t *testing.T) {
	name, err := LoadLastWatched(filepath.Join(t.TempDir(), "last_watched"))
	require.NoError(t, err)
	assert.Equal(t, "", name)
}

func TestSaveAndLoadLastWatched_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last_watched")
	require.NoError(t, SaveLastWatched(path, "myshow"))

	name, err := LoadLastWatched(path)
	require.NoError(t, err)
	assert.Equal(t, "myshow", name)
}

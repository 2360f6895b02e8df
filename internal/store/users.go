package store

import (
	"errors"
	"fmt"
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/godver3/anitrack/internal/remote"
)

// RemoteType names a non-offline remote backend a user can be registered
// against. Kept as a closed enum (not a bare string) so a second backend
// has a type-safe home later.
type RemoteType int

const (
	RemoteTypeAniList RemoteType = iota
)

func (r RemoteType) String() string {
	switch r {
	case RemoteTypeAniList:
		return "AniList"
	default:
		return "unknown"
	}
}

// UserInfo uniquely identifies a user on a remote service.
type UserInfo struct {
	Service  RemoteType
	Username string
}

// userKey is UserInfo's serializable form: the service is stored as a plain
// int with msgpack field tags instead of the RemoteType enum.
type userKey struct {
	Service  int    `msgpack:"service"`
	Username string `msgpack:"username"`
}

// usersFile is the on-disk MessagePack shape: a map plus a pointer to the
// last-used entry.
type usersFile struct {
	Users    map[userKey]string `msgpack:"users"` // value is the encoded AccessToken
	LastUsed *userKey           `msgpack:"last_used"`
}

// Users is the in-memory users map, mirroring anup's user.rs Users type.
type Users struct {
	entries  map[UserInfo]remote.AccessToken
	lastUsed *UserInfo
}

// NewUsers returns an empty Users map.
func NewUsers() *Users {
	return &Users{entries: map[UserInfo]remote.AccessToken{}}
}

// LoadUsers reads the MessagePack users file at path. A missing file is not
// an error; it returns an empty Users map so load-or-create flows can
// proceed.
func LoadUsers(path string) (*Users, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return NewUsers(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading users file %q: %w", path, err)
	}

	var file usersFile
	if err := msgpack.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decoding users file %q: %w", path, err)
	}

	users := &Users{entries: map[UserInfo]remote.AccessToken{}}
	for key, token := range file.Users {
		users.entries[UserInfo{Service: RemoteType(key.Service), Username: key.Username}] = remote.AccessTokenFromEncoded(token)
	}
	if file.LastUsed != nil {
		last := UserInfo{Service: RemoteType(file.LastUsed.Service), Username: file.LastUsed.Username}
		users.lastUsed = &last
	}

	return users, nil
}

// Save writes the users map to path as MessagePack.
func (u *Users) Save(path string) error {
	file := usersFile{Users: map[userKey]string{}}
	for info, token := range u.entries {
		file.Users[userKey{Service: int(info.Service), Username: info.Username}] = token.Encoded()
	}
	if u.lastUsed != nil {
		file.LastUsed = &userKey{Service: int(u.lastUsed.Service), Username: u.lastUsed.Username}
	}

	data, err := msgpack.Marshal(file)
	if err != nil {
		return fmt.Errorf("encoding users file: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing users file %q: %w", path, err)
	}

	return nil
}

// AddAndSetLast adds (or overwrites) user with token and marks it last used.
func (u *Users) AddAndSetLast(user UserInfo, token remote.AccessToken) {
	u.entries[user] = token
	last := user
	u.lastUsed = &last
}

// Remove deletes user from the map, clearing LastUsed if it pointed at the
// removed user.
func (u *Users) Remove(user UserInfo) {
	delete(u.entries, user)
	if u.lastUsed != nil && *u.lastUsed == user {
		u.lastUsed = nil
	}
}

// TakeLastUsedToken returns the last-used user's access token, if set.
func (u *Users) TakeLastUsedToken() (remote.AccessToken, bool) {
	if u.lastUsed == nil {
		return remote.AccessToken{}, false
	}
	token, ok := u.entries[*u.lastUsed]
	return token, ok
}

// Len returns the number of registered users.
func (u *Users) Len() int { return len(u.entries) }

package feed

import "github.com/jacentio/canopy/store"

// usernameField is the wire name of the user record's display name.
const usernameField = "username"

// User is a registered account. UID is the opaque identifier the identity
// provider issued; it doubles as the record's path segment under "users".
type User struct {
	UID      string
	Username string
}

// UserFromSnapshot maps a snapshot taken at users/{uid} to a User. It
// returns false unless the snapshot holds a structured value with a
// non-empty username. UID is always taken from the snapshot's key, never
// from the payload, so a forged "uid" field can't override the
// path-derived identity.
func UserFromSnapshot(snap store.Snapshot) (User, bool) {
	fields, ok := snap.Value().(map[string]any)
	if !ok {
		return User{}, false
	}
	username, ok := fields[usernameField].(string)
	if !ok || username == "" {
		return User{}, false
	}
	return User{UID: snap.Key(), Username: username}, true
}

// Fields encodes the user for storage.
func (u User) Fields() map[string]any {
	return map[string]any{
		usernameField: u.Username,
	}
}

// UserPath returns users/{uid}.
func UserPath(uid string) (store.Path, error) {
	return usersRoot.Child(uid)
}

var usersRoot = store.MustParsePath("users")

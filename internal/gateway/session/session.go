// Package session owns the proxy's single portal session and the gateway
// operations that use it. The session is an immutable snapshot swapped
// atomically on successful login; every operation reads one snapshot and
// uses it for its whole duration.
package session

import (
	"sync/atomic"
	"time"
)

// Login methods recorded on the session.
const (
	MethodPassword = "password"
	MethodCookie   = "cookie"
)

// Snapshot is one immutable session state.
type Snapshot struct {
	loggedIn   bool
	cookies    CookieJar
	username   string
	method     string
	loggedInAt time.Time
}

// LoggedIn reports whether the snapshot came from a successful login.
func (s *Snapshot) LoggedIn() bool { return s.loggedIn }

// Cookies returns the cookies captured by the login that produced the snapshot.
func (s *Snapshot) Cookies() CookieJar { return s.cookies }

// Username returns the account name, empty for cookie logins.
func (s *Snapshot) Username() string { return s.username }

// Method returns MethodPassword or MethodCookie, empty when logged out.
func (s *Snapshot) Method() string { return s.method }

// LoggedInAt returns when the snapshot was installed.
func (s *Snapshot) LoggedInAt() time.Time { return s.loggedInAt }

// Store holds the current snapshot.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore returns a store in the logged-out state.
func NewStore() *Store {
	s := &Store{}
	s.current.Store(&Snapshot{})
	return s
}

// Load returns the current snapshot. Callers must not modify it.
func (s *Store) Load() *Snapshot {
	return s.current.Load()
}

// install replaces the session wholesale. A snapshot is only ever installed
// with a non-empty jar.
func (s *Store) install(jar CookieJar, username, method string, at time.Time) *Snapshot {
	snap := &Snapshot{
		loggedIn:   true,
		cookies:    jar,
		username:   username,
		method:     method,
		loggedInAt: at,
	}
	s.current.Store(snap)
	return snap
}

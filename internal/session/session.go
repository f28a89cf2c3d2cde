// Package session is the single source of truth for the authenticated
// identity: the bearer token and the minimal user info the backend returned
// at login. Every request-issuing component reads from here instead of
// ambient globals, and a 401/403 anywhere clears it.
package session

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User is the minimal identity stored next to the token.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Session is an immutable snapshot of the current login.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Active reports whether a token is present.
func (s Session) Active() bool { return s.Token != "" }

// ExpiresAt peeks at the token's exp claim without verifying the signature;
// verification is the backend's job. Returns the zero time when the token is
// not a JWT or carries no expiry.
func (s Session) ExpiresAt() time.Time {
	if s.Token == "" {
		return time.Time{}
	}
	var claims jwt.RegisteredClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(s.Token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

// Expired reports whether the token carries an exp claim in the past. A
// token without a readable expiry is never reported expired locally; the
// backend's 401 remains authoritative.
func (s Session) Expired() bool {
	exp := s.ExpiresAt()
	return !exp.IsZero() && exp.Before(time.Now())
}

// Persister stores the session across process restarts. Implementations
// must treat a missing stored session as (Session{}, nil), not an error.
type Persister interface {
	SaveSession(s Session) error
	LoadSession() (Session, error)
	DeleteSession() error
}

// Store holds the current session. Transitions are synchronous and guarded:
// callers observe either the old session or the new one, never a partial
// write. Unauthenticated -> Authenticated via Set, back via Clear; there are
// no intermediate states.
type Store struct {
	mu        sync.RWMutex
	cur       Session
	persister Persister

	onClear []func()
}

// NewStore creates a Store, restoring any persisted session. persister may
// be nil for a purely in-memory store (tests).
func NewStore(persister Persister) (*Store, error) {
	st := &Store{persister: persister}
	if persister != nil {
		s, err := persister.LoadSession()
		if err != nil {
			return nil, err
		}
		st.cur = s
	}
	return st, nil
}

// Set stores the token and user; subsequent calls through the API client
// are authenticated.
func (st *Store) Set(token string, user User) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.cur = Session{Token: token, User: user}
	if st.persister != nil {
		return st.persister.SaveSession(st.cur)
	}
	return nil
}

// Get returns the current session, zero-valued when unauthenticated.
func (st *Store) Get() Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.cur
}

// Token returns the current bearer token, empty when unauthenticated.
func (st *Store) Token() string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.cur.Token
}

// Clear removes the token and user. Idempotent: clearing an empty store is
// a no-op. Registered OnClear hooks run after the state change, so by the
// time a caller observes the triggering error the session is already gone.
func (st *Store) Clear() error {
	st.mu.Lock()
	wasActive := st.cur.Active()
	st.cur = Session{}
	var err error
	if st.persister != nil {
		err = st.persister.DeleteSession()
	}
	hooks := st.onClear
	st.mu.Unlock()

	if wasActive {
		for _, h := range hooks {
			h()
		}
	}
	return err
}

// OnClear registers a hook invoked whenever an active session is cleared,
// letting the UI learn the session expired. No background refresh, no
// silent retry.
func (st *Store) OnClear(fn func()) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.onClear = append(st.onClear, fn)
}

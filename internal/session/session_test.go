package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type memPersister struct {
	saved   Session
	present bool
}

func (p *memPersister) SaveSession(s Session) error {
	p.saved = s
	p.present = true
	return nil
}

func (p *memPersister) LoadSession() (Session, error) {
	if !p.present {
		return Session{}, nil
	}
	return p.saved, nil
}

func (p *memPersister) DeleteSession() error {
	p.saved = Session{}
	p.present = false
	return nil
}

func TestStoreSetGetClear(t *testing.T) {
	st, err := NewStore(nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if st.Get().Active() {
		t.Fatal("fresh store should be unauthenticated")
	}

	if err := st.Set("tok-1", User{ID: "7", Username: "ada"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got := st.Get()
	if got.Token != "tok-1" || got.User.Username != "ada" {
		t.Fatalf("Get = %+v", got)
	}

	if err := st.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if st.Get().Active() {
		t.Fatal("store should be empty after Clear")
	}
	// Idempotent.
	if err := st.Clear(); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
}

func TestStoreRestoresPersistedSession(t *testing.T) {
	p := &memPersister{}
	st, err := NewStore(p)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := st.Set("tok-2", User{ID: "1", Username: "bob"}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	st2, err := NewStore(p)
	if err != nil {
		t.Fatalf("NewStore (restore): %v", err)
	}
	if st2.Token() != "tok-2" {
		t.Fatalf("restored token = %q", st2.Token())
	}

	if err := st2.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if p.present {
		t.Fatal("persisted session should be deleted on Clear")
	}
}

func TestOnClearFiresOnlyForActiveSession(t *testing.T) {
	st, _ := NewStore(nil)
	fired := 0
	st.OnClear(func() { fired++ })

	_ = st.Clear() // nothing to clear
	if fired != 0 {
		t.Fatalf("hook fired on empty store")
	}

	_ = st.Set("tok", User{})
	_ = st.Clear()
	if fired != 1 {
		t.Fatalf("hook fired %d times, want 1", fired)
	}
}

func TestSessionExpiry(t *testing.T) {
	key := []byte("test-secret")

	mint := func(exp time.Time) string {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject:   "7",
			ExpiresAt: jwt.NewNumericDate(exp),
		})
		s, err := tok.SignedString(key)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}

	live := Session{Token: mint(time.Now().Add(time.Hour))}
	if live.Expired() {
		t.Error("token expiring in an hour reported expired")
	}

	stale := Session{Token: mint(time.Now().Add(-time.Hour))}
	if !stale.Expired() {
		t.Error("token expired an hour ago reported live")
	}

	// Opaque (non-JWT) tokens are never reported expired locally.
	opaque := Session{Token: "not-a-jwt"}
	if opaque.Expired() {
		t.Error("opaque token reported expired")
	}
	if !opaque.ExpiresAt().IsZero() {
		t.Error("opaque token should have zero expiry")
	}
}

package session

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func testUser() User {
	return User{Name: "X", Email: "x@x.com", Role: "admin"}
}

func userCookie(t *testing.T, body string) string {
	t.Helper()
	return url.QueryEscape(body)
}

func seedJar(t *testing.T, clock *fakeClock, token string, expiry time.Time) *MemoryJar {
	t.Helper()
	jar := NewMemoryJar(clock.Now)
	body := `{"user":{"name":"X","email":"x@x.com","role":"admin"},"expiry":` +
		strconv.FormatInt(expiry.UnixMilli(), 10) + `}`
	jar.Set(CookieOptions{}.cookie(TokenCookie, token, 86400))
	jar.Set(CookieOptions{}.cookie(UserCookie, userCookie(t, body), 86400))
	jar.Set(CookieOptions{}.cookie(ExpiryCookie, strconv.FormatInt(expiry.UnixMilli(), 10), 86400))
	return jar
}

func TestNewStore_StartsLoading(t *testing.T) {
	s := NewStore(NewMemoryJar(nil))
	assert.True(t, s.Current().Loading)
	assert.False(t, s.Active())
}

func TestSignIn_WritesAllCookies(t *testing.T) {
	clock := newFakeClock()
	jar := NewMemoryJar(clock.Now)
	s := NewStore(jar, WithClock(clock.Now))

	require.NoError(t, s.SignIn(testUser(), "a.b.c"))

	token, ok := jar.Get(TokenCookie)
	require.True(t, ok)
	assert.Equal(t, "a.b.c", token)

	rawExpiry, ok := jar.Get(ExpiryCookie)
	require.True(t, ok)
	assert.Equal(t, strconv.FormatInt(clock.Now().Add(Lifetime).UnixMilli(), 10), rawExpiry)

	raw, ok := jar.Get(UserCookie)
	require.True(t, ok)
	user, expiry, err := decodeEnvelope(raw)
	require.NoError(t, err)
	assert.Equal(t, "X", user.Name)
	assert.Equal(t, clock.Now().Add(Lifetime).UnixMilli(), expiry.UnixMilli())

	cur := s.Current()
	assert.False(t, cur.Loading)
	assert.Equal(t, "a.b.c", cur.Token)
	require.NotNil(t, cur.User)
	assert.Equal(t, "x@x.com", cur.User.Email)
}

func TestSignIn_RejectsEmptyToken(t *testing.T) {
	s := NewStore(NewMemoryJar(nil))
	assert.Error(t, s.SignIn(testUser(), ""))
}

func TestSignIn_CookiesExpireWithLifetime(t *testing.T) {
	clock := newFakeClock()
	jar := NewMemoryJar(clock.Now)
	s := NewStore(jar, WithClock(clock.Now))
	require.NoError(t, s.SignIn(testUser(), "a.b.c"))

	clock.Advance(Lifetime + time.Second)
	assert.Equal(t, 0, jar.Len())
}

func TestRestore_PopulatesFromCookies(t *testing.T) {
	clock := newFakeClock()
	jar := seedJar(t, clock, "a.b.c", clock.Now().Add(Lifetime))
	s := NewStore(jar, WithClock(clock.Now))

	sess := s.Restore()
	require.NotNil(t, sess.User)
	assert.Equal(t, "X", sess.User.Name)
	assert.Equal(t, "a.b.c", sess.Token)
	assert.False(t, sess.Loading)
	assert.Equal(t, 3, jar.Len())
}

func TestRestore_MissingCookieClearsEverything(t *testing.T) {
	for _, missing := range Names {
		t.Run(missing, func(t *testing.T) {
			clock := newFakeClock()
			jar := seedJar(t, clock, "a.b.c", clock.Now().Add(Lifetime))
			jar.Set(CookieOptions{}.cookie(missing, "", -1))

			s := NewStore(jar, WithClock(clock.Now))
			sess := s.Restore()

			assert.Nil(t, sess.User)
			assert.Empty(t, sess.Token)
			assert.Equal(t, 0, jar.Len(), "all cookies should be cleared")
		})
	}
}

func TestRestore_CorruptCookiesClear(t *testing.T) {
	tests := []struct {
		name string
		user string
	}{
		{"not json", url.QueryEscape("{oops")},
		{"bad escape", "%zz"},
		{"user missing", url.QueryEscape(`{"expiry":9999999999999}`)},
		{"user not object", url.QueryEscape(`{"user":"X","expiry":9999999999999}`)},
		{"no expiry", url.QueryEscape(`{"user":{"name":"X"}}`)},
		{"expired", url.QueryEscape(`{"user":{"name":"X"},"expiry":1}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newFakeClock()
			jar := seedJar(t, clock, "a.b.c", clock.Now().Add(Lifetime))
			jar.Set(CookieOptions{}.cookie(UserCookie, tt.user, 86400))

			s := NewStore(jar, WithClock(clock.Now))
			sess := s.Restore()

			assert.Nil(t, sess.User)
			assert.Equal(t, 0, jar.Len())
		})
	}
}

func TestRestore_BadTokenExpiryClears(t *testing.T) {
	clock := newFakeClock()
	jar := seedJar(t, clock, "a.b.c", clock.Now().Add(Lifetime))
	jar.Set(CookieOptions{}.cookie(ExpiryCookie, "soon", 86400))

	s := NewStore(jar, WithClock(clock.Now))
	assert.Nil(t, s.Restore().User)
	assert.Equal(t, 0, jar.Len())
}

func TestSignOut_ClearsAndNavigates(t *testing.T) {
	clock := newFakeClock()
	jar := NewMemoryJar(clock.Now)

	var navigated []string
	s := NewStore(jar, WithClock(clock.Now), WithNavigate(func(p string) {
		navigated = append(navigated, p)
	}))
	require.NoError(t, s.SignIn(testUser(), "a.b.c"))

	s.SignOut()
	s.SignOut()

	assert.Equal(t, 0, jar.Len())
	assert.False(t, s.Active())
	assert.Equal(t, []string{SignInPath, SignInPath}, navigated)
}

func TestSignOutThenRestore_IsEmpty(t *testing.T) {
	clock := newFakeClock()
	jar := NewMemoryJar(clock.Now)
	s := NewStore(jar, WithClock(clock.Now))
	require.NoError(t, s.SignIn(testUser(), "a.b.c"))

	s.SignOut()
	sess := s.Restore()

	assert.Nil(t, sess.User)
	assert.Empty(t, sess.Token)
}

func TestCheck_SignsOutOnExpiry(t *testing.T) {
	clock := newFakeClock()
	jar := NewMemoryJar(clock.Now)
	s := NewStore(jar, WithClock(clock.Now))
	require.NoError(t, s.SignIn(testUser(), "a.b.c"))

	assert.True(t, s.Check())

	clock.Advance(Lifetime)
	assert.False(t, s.Check())
	assert.False(t, s.Active())
}

func TestCheck_InactiveIsNoop(t *testing.T) {
	s := NewStore(NewMemoryJar(nil))
	assert.False(t, s.Check())
}

func TestWatch_SignsOutWithinOneTick(t *testing.T) {
	clock := newFakeClock()
	// user cookie already carries a past expiry
	jar := seedJar(t, clock, "a.b.c", clock.Now().Add(time.Minute))
	signedOut := make(chan struct{}, 1)
	s := NewStore(jar, WithClock(clock.Now), WithNavigate(func(string) {
		signedOut <- struct{}{}
	}))
	require.NotNil(t, s.Restore().User)

	clock.Advance(2 * time.Minute)

	done := make(chan error, 1)
	go func() { done <- s.Watch(context.Background(), 10*time.Millisecond) }()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, ErrExpired))
	case <-time.After(time.Second):
		t.Fatal("watch did not sign out")
	}
	assert.Len(t, signedOut, 1)
}

func TestWatch_StopsOnCancel(t *testing.T) {
	clock := newFakeClock()
	s := NewStore(NewMemoryJar(clock.Now), WithClock(clock.Now))
	require.NoError(t, s.SignIn(testUser(), "a.b.c"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx, 5*time.Millisecond) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("watch did not stop")
	}
	assert.True(t, s.Active())
}

func TestWatch_NoSession(t *testing.T) {
	s := NewStore(NewMemoryJar(nil))
	assert.ErrorIs(t, s.Watch(context.Background(), time.Millisecond), ErrNoSession)
}

func TestPeek_LeavesCookiesAlone(t *testing.T) {
	clock := newFakeClock()
	jar := seedJar(t, clock, "a.b.c", clock.Now().Add(-time.Minute))
	s := NewStore(jar, WithClock(clock.Now))

	user, ok := s.Peek()
	require.True(t, ok)
	assert.Equal(t, "x@x.com", user.Email)
	assert.Equal(t, 3, jar.Len())
	assert.True(t, s.Current().Loading)

	jar.Set(CookieOptions{}.cookie(UserCookie, "%zz", 60))
	_, ok = s.Peek()
	assert.False(t, ok)
}

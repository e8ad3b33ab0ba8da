package session

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestJar_ReadsRequestAndWritesResponse(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: TokenCookie, Value: "a.b.c"})
	w := httptest.NewRecorder()

	jar := NewRequestJar(w, r)

	token, ok := jar.Get(TokenCookie)
	require.True(t, ok)
	assert.Equal(t, "a.b.c", token)

	Clear(jar, CookieOptions{})

	_, ok = jar.Get(TokenCookie)
	assert.False(t, ok, "cleared cookie must not be visible on the same jar")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 3)
	for _, c := range cookies {
		assert.True(t, c.MaxAge < 0, "%s should be expired", c.Name)
		assert.Equal(t, "/", c.Path)
	}
}

func TestRequestJar_SignInHeaders(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/auth/sign-in", nil)
	w := httptest.NewRecorder()

	s := NewStore(NewRequestJar(w, r), WithCookieOptions(CookieOptions{Secure: true}))
	require.NoError(t, s.SignIn(testUser(), "a.b.c"))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 3)
	for _, c := range cookies {
		assert.Equal(t, 86400, c.MaxAge, c.Name)
		assert.Equal(t, "/", c.Path)
		assert.True(t, c.Secure)
		assert.False(t, c.HttpOnly)
	}
}

func TestFileJar_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cookies.json")

	jar, err := OpenFileJar(path, nil)
	require.NoError(t, err)

	s := NewStore(jar)
	require.NoError(t, s.SignIn(testUser(), "a.b.c"))
	require.NoError(t, jar.Save())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reopened, err := OpenFileJar(path, nil)
	require.NoError(t, err)
	sess := NewStore(reopened).Restore()
	require.NotNil(t, sess.User)
	assert.Equal(t, "X", sess.User.Name)
}

func TestFileJar_CorruptFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	jar, err := OpenFileJar(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, jar.Len())
}

func TestFileJar_SaveDropsExpired(t *testing.T) {
	clock := newFakeClock()
	path := filepath.Join(t.TempDir(), "cookies.json")

	jar, err := OpenFileJar(path, clock.Now)
	require.NoError(t, err)
	require.NoError(t, NewStore(jar, WithClock(clock.Now)).SignIn(testUser(), "a.b.c"))

	clock.Advance(Lifetime + time.Minute)
	require.NoError(t, jar.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

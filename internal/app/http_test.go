package app

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"admin-console/internal/audit"
	"admin-console/internal/cache"
	"admin-console/internal/config"
	"admin-console/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cms := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/users/login":
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"user":{"name":"X","email":"x@x.com","role":"admin"},"token":"a.b.c"}`)
		case "/api/testimonials":
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `[]`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(cms.Close)

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.html"), "console")
	writeFile(t, filepath.Join(dir, "auth", "sign-in.html"), "sign in")
	writeFile(t, filepath.Join(dir, "auth", "forgot-password.html"), "forgot")
	writeFile(t, filepath.Join(dir, "assets", "app.js"), "js")

	cfg := config.Config{
		BackendURL:     cms.URL,
		BackendTimeout: 2 * time.Second,
		StaticDir:      dir,
		ListCacheTTL:   time.Minute,
	}

	router, err := newRouter(cfg, &Infra{ListCache: cache.Noop{}, Audit: audit.Noop{}})
	require.NoError(t, err)
	return router
}

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestConsole_AnonymousPrivatePageRedirects(t *testing.T) {
	router := newTestRouter(t)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/projects", nil))

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/sign-in?callbackUrl=%2Fprojects", w.Header().Get("Location"))
}

func TestConsole_SignInFlow(t *testing.T) {
	router := newTestRouter(t)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/auth/sign-in", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sign in", w.Body.String())

	req := httptest.NewRequest(http.MethodPost, "/auth/sign-in",
		strings.NewReader(`{"email":"x@x.com","password":"pw","callbackUrl":"/projects"}`))
	req.Header.Set("Content-Type", "application/json")
	w = serve(router, req)
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 3)

	withCookies := func(r *http.Request) *http.Request {
		for _, c := range cookies {
			r.AddCookie(c)
		}
		return r
	}

	// signed in: private page served, public page bounces home
	w = serve(router, withCookies(httptest.NewRequest(http.MethodGet, "/projects", nil)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "console", w.Body.String())

	w = serve(router, withCookies(httptest.NewRequest(http.MethodGet, "/auth/sign-in", nil)))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = serve(router, withCookies(httptest.NewRequest(http.MethodGet, "/api/session", nil)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"X"`)

	w = serve(router, withCookies(httptest.NewRequest(http.MethodGet, "/api/resources/testimonials", nil)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = serve(router, withCookies(httptest.NewRequest(http.MethodPost, "/auth/sign-out", nil)))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, session.SignInPath, w.Header().Get("Location"))
}

func TestConsole_AnonymousAPIRejected(t *testing.T) {
	router := newTestRouter(t)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/api/resources/projects", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestConsole_PublicAndBypassedPaths(t *testing.T) {
	router := newTestRouter(t)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(router, httptest.NewRequest(http.MethodGet, "/assets/app.js", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(router, httptest.NewRequest(http.MethodGet, "/auth/forgot-password", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "forgot", w.Body.String())
}

func TestConsole_BypassLookalikesNeedSession(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/healthcheck-settings", "/health-admin/leads", "/favicon.ico.bak"} {
		w := serve(router, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusFound, w.Code, path)
		assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/auth/sign-in?callbackUrl="), path)
	}
}

func TestConsole_ForgedCookieRejectedWhenVerifying(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := config.Config{
		BackendURL:     "http://127.0.0.1:1",
		StaticDir:      t.TempDir(),
		TokenVerifyKey: "secret",
	}
	router, err := newRouter(cfg, &Infra{ListCache: cache.Noop{}, Audit: audit.Noop{}})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	req.AddCookie(&http.Cookie{Name: session.TokenCookie, Value: "a.b.c"})
	req.AddCookie(&http.Cookie{Name: session.UserCookie, Value: url.QueryEscape(`{"user":{"name":"X"}}`)})

	w := serve(router, req)
	assert.Equal(t, http.StatusFound, w.Code)
}

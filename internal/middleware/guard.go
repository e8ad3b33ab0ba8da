package middleware

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"admin-console/internal/logger"
	"admin-console/internal/session"
)

// Action is what the route guard does with a request.
type Action int

const (
	Serve Action = iota
	Redirect
	Reject
)

// Decision is the outcome of the guard for one request.
type Decision struct {
	Action       Action
	Location     string
	ClearCookies bool
}

// RouteGuard decides per request whether to serve, redirect to sign-in or
// bounce a signed-in operator away from the public auth pages.
type RouteGuard struct {
	publicPaths map[string]struct{}
	// bypass entries ending in "/" match a subtree, others match exactly
	bypass     []string
	apiPrefix  string
	verifier   TokenVerifier
	cookieOpts session.CookieOptions
}

type GuardOption func(*RouteGuard)

// WithPublicPaths replaces the set of paths reachable without a session.
func WithPublicPaths(paths ...string) GuardOption {
	return func(g *RouteGuard) {
		g.publicPaths = make(map[string]struct{}, len(paths))
		for _, p := range paths {
			g.publicPaths[normalizePath(p)] = struct{}{}
		}
	}
}

// WithVerifier additionally requires the token to pass v.
func WithVerifier(v TokenVerifier) GuardOption {
	return func(g *RouteGuard) { g.verifier = v }
}

func WithGuardCookieOptions(opts session.CookieOptions) GuardOption {
	return func(g *RouteGuard) { g.cookieOpts = opts }
}

func NewRouteGuard(opts ...GuardOption) *RouteGuard {
	g := &RouteGuard{
		bypass:    []string{"/assets/", "/favicon.ico", "/health"},
		apiPrefix: "/api/",
	}
	WithPublicPaths(session.SignInPath, "/auth/forgot-password")(g)

	for _, opt := range opts {
		opt(g)
	}
	return g
}

func normalizePath(p string) string {
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	return p
}

func (g *RouteGuard) isPublic(path string) bool {
	_, ok := g.publicPaths[normalizePath(path)]
	return ok
}

func (g *RouteGuard) isBypassed(path string) bool {
	for _, entry := range g.bypass {
		if path == entry {
			return true
		}
		if strings.HasSuffix(entry, "/") && strings.HasPrefix(path, entry) {
			return true
		}
	}
	return false
}

// Valid applies the session validity predicate to the request cookies,
// plus signature verification when a verifier is configured.
func (g *RouteGuard) Valid(cookies session.Source) bool {
	if !session.IsValid(cookies, time.Now()) {
		return false
	}
	if g.verifier == nil {
		return true
	}

	token, _ := session.Token(cookies)
	if err := g.verifier.Verify(token); err != nil {
		logger.Warn("session token failed verification", map[string]any{
			"error": err.Error(),
		})
		return false
	}
	return true
}

// Decide returns the routing decision for a request to path.
func (g *RouteGuard) Decide(method, path string, valid bool) Decision {
	if g.isBypassed(path) {
		return Decision{Action: Serve}
	}

	if g.isPublic(path) {
		// form submissions to public endpoints are always let through
		if valid && (method == http.MethodGet || method == http.MethodHead) {
			return Decision{Action: Redirect, Location: session.HomePath}
		}
		return Decision{Action: Serve}
	}

	if valid {
		return Decision{Action: Serve}
	}

	if strings.HasPrefix(path, g.apiPrefix) {
		return Decision{Action: Reject, ClearCookies: true}
	}

	return Decision{
		Action:       Redirect,
		Location:     SignInURL(path),
		ClearCookies: true,
	}
}

// SignInURL is the sign-in page with the attempted path as callbackUrl.
func SignInURL(callback string) string {
	q := url.Values{"callbackUrl": {callback}}
	return session.SignInPath + "?" + q.Encode()
}

// Protect wraps next with the route guard.
func (g *RouteGuard) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		jar := session.NewRequestJar(w, r)

		valid := false
		if !g.isBypassed(r.URL.Path) {
			valid = g.Valid(jar)
		}

		d := g.Decide(r.Method, r.URL.Path, valid)

		if d.ClearCookies {
			session.Clear(jar, g.cookieOpts)
		}

		switch d.Action {
		case Redirect:
			http.Redirect(w, r, d.Location, http.StatusFound)
		case Reject:
			writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		default:
			next.ServeHTTP(w, r)
		}
	})
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"message":"` + message + `"}`))
}

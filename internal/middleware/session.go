package middleware

import (
	"context"
	"net/http"

	"admin-console/internal/session"
)

// unexported, collision-proof context key
type storeContextKey struct{}

// StoreFromContext returns the request's session store.
func StoreFromContext(ctx context.Context) (*session.Store, bool) {
	s, ok := ctx.Value(storeContextKey{}).(*session.Store)
	return s, ok
}

// SessionFromContext returns the signed-in session attached by RequireSession.
func SessionFromContext(ctx context.Context) (session.Session, bool) {
	s, ok := StoreFromContext(ctx)
	if !ok || !s.Active() {
		return session.Session{}, false
	}
	return s.Current(), true
}

type SessionMiddleware struct {
	CookieOptions session.CookieOptions
}

func NewSessionMiddleware(opts session.CookieOptions) *SessionMiddleware {
	return &SessionMiddleware{CookieOptions: opts}
}

// RequireSession restores the session store from the request cookies and
// attaches it to the context. Requests without a valid session get a 401
// and have their cookies cleared.
func (m *SessionMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		store := session.NewStore(
			session.NewRequestJar(w, r),
			session.WithCookieOptions(m.CookieOptions),
		)

		if store.Restore().User == nil {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), storeContextKey{}, store)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

package session

import (
	"strings"
	"time"
)

// Source is the read side of a cookie jar.
type Source interface {
	Get(name string) (string, bool)
}

// HasTokenShape reports whether token looks like a signed token:
// three non-empty segments separated by exactly two dots. Nothing is
// decoded or verified.
func HasTokenShape(token string) bool {
	if strings.Count(token, ".") != 2 {
		return false
	}
	for _, part := range strings.Split(token, ".") {
		if part == "" {
			return false
		}
	}
	return true
}

// IsValid is the edge predicate used for routing decisions. A session is
// valid when the token cookie has a token shape and the user cookie decodes
// to JSON holding a nested user object. An expiry embedded in the user
// cookie is honoured when present.
func IsValid(cookies Source, now time.Time) bool {
	token, ok := cookies.Get(TokenCookie)
	if !ok || !HasTokenShape(token) {
		return false
	}

	raw, ok := cookies.Get(UserCookie)
	if !ok {
		return false
	}

	_, expiry, err := decodeUserField(raw)
	if err != nil {
		return false
	}
	if !expiry.IsZero() && !expiry.After(now) {
		return false
	}
	return true
}

// Token returns the bearer token from the jar, if any.
func Token(cookies Source) (string, bool) {
	token, ok := cookies.Get(TokenCookie)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

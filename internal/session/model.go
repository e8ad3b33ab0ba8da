package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// User is the operator profile returned by the backend on login.
type User struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

// Session is the in-memory view of who is signed in.
// An empty Token means no session.
type Session struct {
	User    *User  `json:"user"`
	Token   string `json:"-"`
	Loading bool   `json:"loading"`
}

// envelope is the JSON document stored, URL-encoded, in the user cookie.
type envelope struct {
	User   json.RawMessage `json:"user"`
	Expiry int64           `json:"expiry"`
}

func encodeEnvelope(user User, expiry time.Time) (string, error) {
	rawUser, err := json.Marshal(user)
	if err != nil {
		return "", fmt.Errorf("session: failed to marshal user: %w", err)
	}

	data, err := json.Marshal(envelope{User: rawUser, Expiry: expiry.UnixMilli()})
	if err != nil {
		return "", fmt.Errorf("session: failed to marshal envelope: %w", err)
	}

	// encodeURIComponent-compatible: spaces as %20, never '+'
	return strings.ReplaceAll(url.QueryEscape(string(data)), "+", "%20"), nil
}

// decodeEnvelope unescapes and parses the user cookie. The embedded user
// must be a JSON object; expiry is returned as-is for the caller to judge.
func decodeEnvelope(raw string) (*User, time.Time, error) {
	user, expiry, err := decodeUserField(raw)
	if err != nil {
		return nil, time.Time{}, err
	}
	if expiry.IsZero() {
		return nil, time.Time{}, fmt.Errorf("%w: missing expiry", ErrMalformed)
	}
	return user, expiry, nil
}

// decodeUserField performs the structural part of decodeEnvelope only.
// A zero time is returned when the envelope carries no expiry.
func decodeUserField(raw string) (*User, time.Time, error) {
	unescaped, err := url.QueryUnescape(raw)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var env envelope
	if err := json.Unmarshal([]byte(unescaped), &env); err != nil {
		return nil, time.Time{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	trimmed := bytes.TrimSpace(env.User)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, time.Time{}, fmt.Errorf("%w: user is not an object", ErrMalformed)
	}

	var user User
	if err := json.Unmarshal(trimmed, &user); err != nil {
		return nil, time.Time{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var expiry time.Time
	if env.Expiry > 0 {
		expiry = time.UnixMilli(env.Expiry)
	}
	return &user, expiry, nil
}

func parseEpochMillis(raw string) (time.Time, error) {
	ms, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}, fmt.Errorf("%w: bad tokenExpiry %q", ErrMalformed, raw)
	}
	return time.UnixMilli(ms), nil
}

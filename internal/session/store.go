package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

const (
	// Lifetime is how long a signed-in session stays valid.
	Lifetime = 24 * time.Hour

	// CheckInterval is the default period of the re-validation loop.
	CheckInterval = 60 * time.Second

	SignInPath = "/auth/sign-in"
	HomePath   = "/"
)

var (
	ErrNoSession = errors.New("session: no active session")
	ErrExpired   = errors.New("session: expired")
	ErrMalformed = errors.New("session: malformed cookie")
)

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for expiry decisions.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithNavigate sets the callback invoked by SignOut with the sign-in path.
func WithNavigate(navigate func(path string)) Option {
	return func(s *Store) { s.navigate = navigate }
}

// WithCookieOptions sets the attributes used when issuing cookies.
func WithCookieOptions(opts CookieOptions) Option {
	return func(s *Store) { s.cookieOpts = opts }
}

// Store keeps the in-memory mirror of the session cookies. It is the only
// component that writes the token, user and tokenExpiry cookies.
type Store struct {
	jar        Jar
	now        func() time.Time
	navigate   func(path string)
	cookieOpts CookieOptions

	mu    sync.Mutex
	state Session
}

// NewStore returns a Store in the loading state. Call Restore to hydrate it.
func NewStore(jar Jar, opts ...Option) *Store {
	s := &Store{
		jar:   jar,
		now:   time.Now,
		state: Session{Loading: true},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current returns a copy of the session state.
func (s *Store) Current() Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.state
	if s.state.User != nil {
		u := *s.state.User
		out.User = &u
	}
	return out
}

// Active reports whether a session is believed to be signed in.
func (s *Store) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Token != "" && s.state.User != nil
}

// SignIn records a successful backend login: it writes all three cookies
// with the same max-age and updates the in-memory state.
func (s *Store) SignIn(user User, token string) error {
	if token == "" {
		return errors.New("session: empty token")
	}

	expiry := s.now().Add(Lifetime)
	encoded, err := encodeEnvelope(user, expiry)
	if err != nil {
		return err
	}

	writeCookies(s.jar, token, encoded, expiry, s.cookieOpts)

	s.mu.Lock()
	s.state = Session{User: &user, Token: token}
	s.mu.Unlock()

	return nil
}

// SignOut expires all session cookies, clears the in-memory state and
// navigates to the sign-in screen. It is safe to call repeatedly.
func (s *Store) SignOut() {
	Clear(s.jar, s.cookieOpts)

	s.mu.Lock()
	s.state = Session{}
	s.mu.Unlock()

	if s.navigate != nil {
		s.navigate(SignInPath)
	}
}

// Restore hydrates the store from the cookie jar. Any missing, corrupt or
// expired cookie clears the whole envelope and leaves the session empty.
func (s *Store) Restore() Session {
	token, user, err := s.load()
	if err != nil {
		Clear(s.jar, s.cookieOpts)

		s.mu.Lock()
		s.state = Session{}
		s.mu.Unlock()

		return Session{}
	}

	s.mu.Lock()
	s.state = Session{User: user, Token: token}
	s.mu.Unlock()

	return s.Current()
}

// Peek decodes the user cookie without validating the session or touching
// any cookie. It is meant for logging, never for access decisions.
func (s *Store) Peek() (*User, bool) {
	raw, ok := s.jar.Get(UserCookie)
	if !ok {
		return nil, false
	}
	user, _, err := decodeUserField(raw)
	if err != nil {
		return nil, false
	}
	return user, true
}

// Check re-validates the cookies of an active session and signs out when
// they are no longer valid. It returns whether the session survived.
func (s *Store) Check() bool {
	if !s.Active() {
		return false
	}

	if _, _, err := s.load(); err != nil {
		s.SignOut()
		return false
	}
	return true
}

// Watch runs Check every interval until the context is cancelled or the
// session ends. It returns ErrExpired when the session was forcibly ended
// and ErrNoSession when no session was active.
func (s *Store) Watch(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = CheckInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if !s.Active() {
			return ErrNoSession
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !s.Check() {
				return ErrExpired
			}
		}
	}
}

func (s *Store) load() (string, *User, error) {
	token, okToken := s.jar.Get(TokenCookie)
	raw, okUser := s.jar.Get(UserCookie)
	rawExpiry, okExpiry := s.jar.Get(ExpiryCookie)

	if !okToken || !okUser || !okExpiry || token == "" {
		return "", nil, ErrNoSession
	}

	user, expiry, err := decodeEnvelope(raw)
	if err != nil {
		return "", nil, err
	}
	tokenExpiry, err := parseEpochMillis(rawExpiry)
	if err != nil {
		return "", nil, err
	}

	now := s.now()
	if !expiry.After(now) || !tokenExpiry.After(now) {
		return "", nil, ErrExpired
	}

	return token, user, nil
}

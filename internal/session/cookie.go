package session

import (
	"net/http"
	"strconv"
	"time"
)

const (
	TokenCookie  = "token"
	UserCookie   = "user"
	ExpiryCookie = "tokenExpiry"
)

// Names lists the cookies that together form a session.
var Names = []string{TokenCookie, UserCookie, ExpiryCookie}

// CookieOptions defines how session cookies are issued.
// The console's client code reads these cookies, so they are never HttpOnly.
type CookieOptions struct {
	Path     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

func (o CookieOptions) normalize() CookieOptions {
	if o.Path == "" {
		o.Path = "/"
	}
	if o.SameSite == 0 {
		o.SameSite = http.SameSiteLaxMode
	}
	return o
}

func (o CookieOptions) cookie(name, value string, maxAge int) *http.Cookie {
	o = o.normalize()
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     o.Path,
		Domain:   o.Domain,
		MaxAge:   maxAge,
		Secure:   o.Secure,
		SameSite: o.SameSite,
	}
}

// Jar is where the session cookies live: a browser request/response pair
// on the server, or a local file for the terminal client.
type Jar interface {
	Get(name string) (string, bool)
	Set(c *http.Cookie)
}

func writeCookies(jar Jar, token, encodedUser string, expiry time.Time, opts CookieOptions) {
	maxAge := int(Lifetime.Seconds())

	jar.Set(opts.cookie(TokenCookie, token, maxAge))
	jar.Set(opts.cookie(UserCookie, encodedUser, maxAge))
	jar.Set(opts.cookie(ExpiryCookie, strconv.FormatInt(expiry.UnixMilli(), 10), maxAge))
}

// Clear expires every session cookie in the jar.
func Clear(jar Jar, opts CookieOptions) {
	for _, name := range Names {
		jar.Set(opts.cookie(name, "", -1))
	}
}

// RequestJar reads cookies from an incoming request and writes Set-Cookie
// headers to its response. Writes are visible to later reads on the same jar.
type RequestJar struct {
	r       *http.Request
	w       http.ResponseWriter
	pending map[string]*http.Cookie
}

// NewRequestJar binds a jar to one HTTP exchange.
func NewRequestJar(w http.ResponseWriter, r *http.Request) *RequestJar {
	return &RequestJar{r: r, w: w, pending: make(map[string]*http.Cookie)}
}

func (j *RequestJar) Get(name string) (string, bool) {
	if c, ok := j.pending[name]; ok {
		if c.MaxAge < 0 {
			return "", false
		}
		return c.Value, true
	}

	c, err := j.r.Cookie(name)
	if err != nil {
		return "", false
	}
	return c.Value, true
}

func (j *RequestJar) Set(c *http.Cookie) {
	j.pending[c.Name] = c
	http.SetCookie(j.w, c)
}

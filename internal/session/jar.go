package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type storedCookie struct {
	Value   string    `json:"value"`
	Expires time.Time `json:"expires"`
}

// MemoryJar keeps cookies in memory and honours their max-age the way a
// browser would.
type MemoryJar struct {
	mu      sync.Mutex
	now     func() time.Time
	cookies map[string]storedCookie
}

// NewMemoryJar returns an empty jar. A nil clock defaults to time.Now.
func NewMemoryJar(now func() time.Time) *MemoryJar {
	if now == nil {
		now = time.Now
	}
	return &MemoryJar{now: now, cookies: make(map[string]storedCookie)}
}

func (j *MemoryJar) Get(name string) (string, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	c, ok := j.cookies[name]
	if !ok {
		return "", false
	}
	if !c.Expires.IsZero() && !c.Expires.After(j.now()) {
		delete(j.cookies, name)
		return "", false
	}
	return c.Value, true
}

func (j *MemoryJar) Set(c *http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	switch {
	case c.MaxAge < 0:
		delete(j.cookies, c.Name)
	case c.MaxAge > 0:
		j.cookies[c.Name] = storedCookie{
			Value:   c.Value,
			Expires: j.now().Add(time.Duration(c.MaxAge) * time.Second),
		}
	default:
		j.cookies[c.Name] = storedCookie{Value: c.Value, Expires: c.Expires}
	}
}

// Len returns the number of unexpired cookies.
func (j *MemoryJar) Len() int {
	n := 0
	for _, name := range j.names() {
		if _, ok := j.Get(name); ok {
			n++
		}
	}
	return n
}

func (j *MemoryJar) names() []string {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := make([]string, 0, len(j.cookies))
	for name := range j.cookies {
		out = append(out, name)
	}
	return out
}

// FileJar is a MemoryJar persisted as JSON on disk.
type FileJar struct {
	*MemoryJar
	path string
}

// OpenFileJar loads the jar at path; a missing file yields an empty jar.
func OpenFileJar(path string, now func() time.Time) (*FileJar, error) {
	j := &FileJar{MemoryJar: NewMemoryJar(now), path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return j, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: failed to read jar: %w", err)
	}

	if err := json.Unmarshal(data, &j.cookies); err != nil {
		// a corrupt jar is the same as no cookies
		j.cookies = make(map[string]storedCookie)
	}
	return j, nil
}

// Save writes the unexpired cookies back to disk with owner-only permissions.
func (j *FileJar) Save() error {
	live := make(map[string]storedCookie)
	for _, name := range j.names() {
		if _, ok := j.Get(name); ok {
			j.mu.Lock()
			live[name] = j.cookies[name]
			j.mu.Unlock()
		}
	}

	data, err := json.MarshalIndent(live, "", "  ")
	if err != nil {
		return fmt.Errorf("session: failed to marshal jar: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(j.path), 0o700); err != nil {
		return fmt.Errorf("session: failed to create jar dir: %w", err)
	}
	if err := os.WriteFile(j.path, data, 0o600); err != nil {
		return fmt.Errorf("session: failed to write jar: %w", err)
	}
	return nil
}

// Package localcache keeps small client-only values (theme, last keyword,
// whether credentials were saved) in persistent storage.
//
// The Cache never fails its caller: a missing or broken backend degrades to
// absent reads and no-op writes, and the underlying error is only logged.
package localcache

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// Keys used by postpilot itself. Callers may use any other key.
const (
	KeyTheme            = "theme"
	KeyLastKeyword      = "last_keyword"
	KeyCredentialsSaved = "credentials_saved"
)

// Backend is a persistent string key/value store.
type Backend interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
	Clear() error
}

// Cache guards a Backend.
type Cache struct {
	backend Backend
	logger  *log.Logger
}

// New wraps backend. A nil backend yields a cache that stores nothing.
func New(backend Backend, logger *log.Logger) *Cache {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Cache{backend: backend, logger: logger}
}

// Available reports whether a backend is attached.
func (c *Cache) Available() bool {
	return c != nil && c.backend != nil
}

// Get returns the value for key, or false when absent or unreadable.
func (c *Cache) Get(key string) (string, bool) {
	if !c.Available() {
		return "", false
	}
	value, ok, err := c.backend.Get(key)
	if err != nil {
		c.logger.Warn("local cache read failed", "key", key, "err", err)
		return "", false
	}
	return value, ok
}

// GetOr returns the value for key or fallback.
func (c *Cache) GetOr(key, fallback string) string {
	if value, ok := c.Get(key); ok && strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

// Set stores value under key.
func (c *Cache) Set(key, value string) {
	if !c.Available() {
		return
	}
	if err := c.backend.Set(key, value); err != nil {
		c.logger.Warn("local cache write failed", "key", key, "err", err)
	}
}

// Remove deletes key.
func (c *Cache) Remove(key string) {
	if !c.Available() {
		return
	}
	if err := c.backend.Remove(key); err != nil {
		c.logger.Warn("local cache remove failed", "key", key, "err", err)
	}
}

// Clear deletes every key.
func (c *Cache) Clear() {
	if !c.Available() {
		return
	}
	if err := c.backend.Clear(); err != nil {
		c.logger.Warn("local cache clear failed", "err", err)
	}
}

// Close releases the backend if it holds resources.
func (c *Cache) Close() error {
	if !c.Available() {
		return nil
	}
	if closer, ok := c.backend.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Backend kinds accepted by Open.
const (
	KindFile   = "file"
	KindSQLite = "sqlite"
	KindNone   = "none"
)

// Open builds the backend named by kind at path. KindNone returns a nil
// backend and no error.
func Open(kind, path string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindFile:
		backend, err := NewFileBackend(path)
		if err != nil {
			return nil, err
		}
		return backend, nil
	case KindSQLite:
		backend, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return backend, nil
	case KindNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", kind)
	}
}

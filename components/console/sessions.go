package console

import (
	"context"
	"strings"
	"sync"
	"time"
)

// SessionKey is the storage key of a viewer's preference.
func SessionKey(userID string) string {
	return StorageKey + "::" + strings.TrimSpace(userID)
}

// OptionsFunc builds the options of a new viewer console.
type OptionsFunc func(userID string) Options

// Sessions keeps one Console per viewer. Evicted consoles are closed; the
// viewer's next request boots a fresh one from the stored preference.
type Sessions struct {
	mu       sync.Mutex
	options  OptionsFunc
	consoles map[string]*session
	max      int
	idle     time.Duration
	now      func() time.Time
}

type session struct {
	console  *Console
	lastSeen time.Time
}

// SessionsOption configures a Sessions registry.
type SessionsOption func(*Sessions)

// WithMaxSessions caps live consoles. Creating one past the cap evicts the
// least recently used. Zero means unbounded.
func WithMaxSessions(n int) SessionsOption {
	return func(s *Sessions) {
		if n > 0 {
			s.max = n
		}
	}
}

// WithIdleTimeout evicts consoles not requested for d. Zero disables it.
func WithIdleTimeout(d time.Duration) SessionsOption {
	return func(s *Sessions) {
		if d > 0 {
			s.idle = d
		}
	}
}

// NewSessions builds a registry.
func NewSessions(options OptionsFunc, opts ...SessionsOption) *Sessions {
	if options == nil {
		options = func(string) Options { return Options{} }
	}
	s := &Sessions{options: options, consoles: make(map[string]*session), now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Get returns the viewer's console, creating and booting it on first use.
func (s *Sessions) Get(ctx context.Context, userID, fragment string) *Console {
	key := SessionKey(userID)
	s.mu.Lock()
	now := s.now()
	evicted := s.sweepLocked(now, key)
	entry, ok := s.consoles[key]
	if !ok {
		if s.max > 0 && len(s.consoles) >= s.max {
			evicted = append(evicted, s.evictOldestLocked())
		}
		opts := s.options(userID)
		opts.UserID = userID
		entry = &session{console: New(opts)}
		s.consoles[key] = entry
	}
	entry.lastSeen = now
	s.mu.Unlock()
	for _, c := range evicted {
		c.Close()
	}
	entry.console.EnsureBooted(ctx, fragment)
	return entry.console
}

// sweepLocked removes idle consoles other than keep.
func (s *Sessions) sweepLocked(now time.Time, keep string) []*Console {
	if s.idle <= 0 {
		return nil
	}
	var out []*Console
	for key, entry := range s.consoles {
		if key != keep && now.Sub(entry.lastSeen) >= s.idle {
			delete(s.consoles, key)
			out = append(out, entry.console)
		}
	}
	return out
}

func (s *Sessions) evictOldestLocked() *Console {
	var (
		oldestKey string
		oldest    *session
	)
	for key, entry := range s.consoles {
		if oldest == nil || entry.lastSeen.Before(oldest.lastSeen) {
			oldestKey, oldest = key, entry
		}
	}
	delete(s.consoles, oldestKey)
	return oldest.console
}

// Len reports the number of live consoles.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.consoles)
}

// Drop closes and forgets a viewer's console.
func (s *Sessions) Drop(userID string) bool {
	key := SessionKey(userID)
	s.mu.Lock()
	entry, ok := s.consoles[key]
	delete(s.consoles, key)
	s.mu.Unlock()
	if ok {
		entry.console.Close()
	}
	return ok
}

// Close closes every console.
func (s *Sessions) Close() {
	s.mu.Lock()
	consoles := s.consoles
	s.consoles = make(map[string]*session)
	s.mu.Unlock()
	for _, entry := range consoles {
		entry.console.Close()
	}
}

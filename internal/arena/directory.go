package arena

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Directory is the process-wide session registry. It is an explicit
// instance, not a singleton: tests and callers construct their own.
type Directory struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	order    []string
}

func NewDirectory() *Directory {
	return &Directory{sessions: make(map[string]*Session)}
}

// Create allocates a session with a fresh 8-character identifier and the
// standard starting position.
func (d *Directory) Create(cfg SessionConfig) (*Session, error) {
	if err := cfg.normalize(); err != nil {
		return nil, fmt.Errorf("session config: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	id := shortID()
	for _, taken := d.sessions[id]; taken; _, taken = d.sessions[id] {
		id = shortID()
	}
	sess := newSession(id, cfg)
	d.sessions[id] = sess
	d.order = append(d.order, id)
	return sess, nil
}

// Get looks up a session by identifier.
func (d *Directory) Get(id string) (*Session, error) {
	d.mu.RLock()
	sess, ok := d.sessions[strings.TrimSpace(id)]
	d.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

// List returns display summaries in creation order.
func (d *Directory) List() []Summary {
	d.mu.RLock()
	sessions := make([]*Session, 0, len(d.order))
	for _, id := range d.order {
		if sess, ok := d.sessions[id]; ok {
			sessions = append(sessions, sess)
		}
	}
	d.mu.RUnlock()

	out := make([]Summary, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, sess.summary())
	}
	return out
}

// Len reports the number of registered sessions.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.sessions)
}

func shortID() string {
	return uuid.NewString()[:8]
}

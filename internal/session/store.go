package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// ErrTooManySessions is returned by Create when the store is full.
var ErrTooManySessions = errors.New("too many open sessions")

// Store keeps sessions in memory, each with its own previewer. Sessions idle
// for longer than the idle timeout are dropped by Sweep.
type Store struct {
	historyLimit int
	debounce     time.Duration
	render       RenderFunc
	maxSessions  int
	idleTimeout  time.Duration
	now          func() time.Time

	mu       sync.RWMutex
	sessions map[string]*slot
}

type slot struct {
	session    *Session
	preview    *Previewer
	lastAccess time.Time
}

type StoreOption func(*Store)

// WithMaxSessions caps the number of live sessions. Zero means no cap.
func WithMaxSessions(n int) StoreOption {
	return func(st *Store) { st.maxSessions = n }
}

// WithIdleTimeout expires sessions not accessed for d. Zero disables expiry.
func WithIdleTimeout(d time.Duration) StoreOption {
	return func(st *Store) { st.idleTimeout = d }
}

func NewStore(historyLimit int, debounce time.Duration, render RenderFunc, opts ...StoreOption) *Store {
	st := &Store{
		historyLimit: historyLimit,
		debounce:     debounce,
		render:       render,
		now:          time.Now,
		sessions:     make(map[string]*slot),
	}
	for _, opt := range opts {
		opt(st)
	}
	return st
}

// Create starts a new empty session whose changes feed its previewer.
// Expired sessions are swept first to make room.
func (st *Store) Create() (*Session, *Previewer, error) {
	st.Sweep()

	s := New(st.historyLimit)
	p := NewPreviewer(st.debounce, st.render)
	s.onChange = func(snap State) { p.Request(snap) }

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.maxSessions > 0 && len(st.sessions) >= st.maxSessions {
		return nil, nil, ErrTooManySessions
	}
	st.sessions[s.ID] = &slot{session: s, preview: p, lastAccess: st.now()}
	return s, p, nil
}

// Get looks up a session and marks it as used.
func (st *Store) Get(id string) (*Session, *Previewer, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	e, ok := st.sessions[id]
	if !ok {
		return nil, nil, false
	}
	e.lastAccess = st.now()
	return e.session, e.preview, true
}

func (st *Store) Delete(id string) bool {
	st.mu.Lock()
	e, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()
	if ok {
		e.preview.Stop()
	}
	return ok
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep removes sessions idle for longer than the idle timeout, stops their
// previewers and returns how many were removed.
func (st *Store) Sweep() int {
	if st.idleTimeout <= 0 {
		return 0
	}
	cutoff := st.now().Add(-st.idleTimeout)

	var expired []*slot
	st.mu.Lock()
	for id, e := range st.sessions {
		if e.lastAccess.Before(cutoff) {
			expired = append(expired, e)
			delete(st.sessions, id)
		}
	}
	st.mu.Unlock()

	for _, e := range expired {
		e.preview.Stop()
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done.
func (st *Store) Run(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := st.Sweep(); n > 0 {
				log.Printf("expired %d idle sessions", n)
			}
		}
	}
}

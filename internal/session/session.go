package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	imagepkg "github.com/youruser/photokit/internal/image"
)

// DefaultHistoryLimit is the number of snapshots kept for undo.
const DefaultHistoryLimit = 50

var ErrImageNotFound = errors.New("image not found")

// Session is safe for concurrent use.
type Session struct {
	ID string

	mu      sync.Mutex
	state   State
	history []State
	index   int
	limit   int

	// onChange runs with mu held and must not call back into the Session.
	onChange func(State)
}

func New(historyLimit int) *Session {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Session{
		ID:    randomID(),
		state: State{Options: imagepkg.DefaultConfig()},
		index: -1,
		limit: historyLimit,
	}
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// SetImages replaces the image list and records a history entry.
func (s *Session) SetImages(entries []Entry) {
	s.mutate(true, func(st *State) error {
		st.Images = withIDs(append([]Entry(nil), entries...))
		return nil
	})
}

// AddImage appends e, assigning an ID when it has none, and returns the ID.
func (s *Session) AddImage(e Entry) string {
	if e.ID == "" {
		e.ID = randomID()
	}
	s.mutate(true, func(st *State) error {
		st.Images = append(append([]Entry(nil), st.Images...), e)
		return nil
	})
	return e.ID
}

func (s *Session) RemoveImage(id string) error {
	return s.mutate(true, func(st *State) error {
		out := make([]Entry, 0, len(st.Images))
		for _, e := range st.Images {
			if e.ID != id {
				out = append(out, e)
			}
		}
		if len(out) == len(st.Images) {
			return fmt.Errorf("%w: %s", ErrImageNotFound, id)
		}
		st.Images = out
		return nil
	})
}

// Reorder moves the image at index from to index to.
func (s *Session) Reorder(from, to int) error {
	return s.mutate(true, func(st *State) error {
		n := len(st.Images)
		if from < 0 || from >= n || to < 0 || to >= n {
			return fmt.Errorf("reorder %d -> %d out of range [0,%d)", from, to, n)
		}
		images := append([]Entry(nil), st.Images...)
		moved := images[from]
		images = append(images[:from], images[from+1:]...)
		images = append(images[:to], append([]Entry{moved}, images[to:]...)...)
		st.Images = images
		return nil
	})
}

// UpdateOptions applies fn to a copy of the options. The change is kept only
// if fn succeeds and the result passes validation. Option changes do not
// create history entries.
func (s *Session) UpdateOptions(fn func(*imagepkg.LayoutConfig) error) error {
	return s.mutate(false, func(st *State) error {
		opts := cloneConfig(st.Options)
		if err := fn(&opts); err != nil {
			return err
		}
		if err := opts.Validate(); err != nil {
			return err
		}
		st.Options = opts
		return nil
	})
}

// SaveToHistory records the current state, dropping any redo states and the
// oldest entry once the limit is exceeded.
func (s *Session) SaveToHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveLocked()
}

func (s *Session) saveLocked() {
	h := append(s.history[:s.index+1:s.index+1], s.state.clone())
	if len(h) > s.limit {
		h = h[len(h)-s.limit:]
	}
	s.history = h
	s.index = len(h) - 1
}

func (s *Session) Undo() bool {
	return s.step(-1)
}

func (s *Session) Redo() bool {
	return s.step(1)
}

func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index > 0
}

func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index < len(s.history)-1
}

func (s *Session) step(delta int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index + delta
	if i < 0 || i >= len(s.history) || s.index < 0 {
		return false
	}
	s.index = i
	s.state = s.history[i].clone()
	s.notifyLocked()
	return true
}

func (s *Session) mutate(record bool, fn func(*State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state.clone()
	if err := fn(&next); err != nil {
		return err
	}
	s.state = next
	if record {
		s.saveLocked()
	}
	s.notifyLocked()
	return nil
}

// notifyLocked hands the new state to onChange while mu is still held, so
// listeners see changes in the order they were applied.
func (s *Session) notifyLocked() {
	if s.onChange != nil {
		s.onChange(s.state.clone())
	}
}

func withIDs(entries []Entry) []Entry {
	for i := range entries {
		if entries[i].ID == "" {
			entries[i].ID = randomID()
		}
	}
	return entries
}

func randomID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		panic("session: reading random id: " + err.Error())
	}
	return hex.EncodeToString(b)
}

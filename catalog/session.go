package catalog

import (
	"github.com/google/uuid"

	"github.com/teranos/porydex/errors"
)

// Session is the per-operation generation context.
//
// It holds an optional pin, validated against the registry before any
// resolution runs. A Session belongs to one logical operation and must not be
// shared between goroutines; the registry and snapshot data it reads are
// shared freely.
type Session struct {
	id       uuid.UUID
	registry *Registry
	pin      *Generation
	epoch    uint64
	memos    []expirer
}

// expirer is anything holding resolutions that go stale when the pin changes.
type expirer interface {
	expire()
}

// NewSession opens an unpinned session.
func NewSession(registry *Registry) *Session {
	return &Session{id: uuid.New(), registry: registry}
}

// NewPinnedSession opens a session pinned to generation id.
// Unknown ids fail with an error matching errors.ErrNotFound and no session is returned.
func NewPinnedSession(registry *Registry, id GenerationID) (*Session, error) {
	s := NewSession(registry)
	if err := s.Pin(id); err != nil {
		return nil, err
	}
	return s, nil
}

// ID uniquely identifies the session; memoized resolutions are keyed by it.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Registry returns the registry pins are validated against.
func (s *Session) Registry() *Registry {
	return s.registry
}

// Pinned returns the pinned generation, if any.
func (s *Session) Pinned() (Generation, bool) {
	if s.pin == nil {
		return Generation{}, false
	}
	return *s.pin, true
}

// Epoch counts pin changes. Memoized values carry the epoch they were computed in.
func (s *Session) Epoch() uint64 {
	return s.epoch
}

// Pin re-validates and replaces the pin, then expires every memo attached to
// the session. On error the previous pin is kept.
func (s *Session) Pin(id GenerationID) error {
	gen, err := s.registry.Get(id)
	if err != nil {
		return errors.NewInvalidGenerationError(int(id))
	}
	s.pin = &gen
	s.changed()
	return nil
}

// Unpin switches the session to latest-generation resolution.
func (s *Session) Unpin() {
	s.pin = nil
	s.changed()
}

func (s *Session) changed() {
	s.epoch++
	for _, m := range s.memos {
		m.expire()
	}
}

func (s *Session) attach(m expirer) {
	s.memos = append(s.memos, m)
}

func (s *Session) detach(m expirer) {
	for i, attached := range s.memos {
		if attached == m {
			s.memos = append(s.memos[:i], s.memos[i+1:]...)
			return
		}
	}
}

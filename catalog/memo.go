package catalog

import "github.com/google/uuid"

type memoKey[K comparable] struct {
	entity  K
	session uuid.UUID
	pin     GenerationID
	pinned  bool
	epoch   uint64
}

type memoEntry[S any] struct {
	snapshot Snapshot[S]
	present  bool
}

// Memo caches resolutions for one session.
//
// Entries are keyed by (entity, session id, pin, epoch) and the whole cache is
// dropped whenever the session's pin changes, so nothing computed under an
// earlier pin can be returned afterwards. Like its Session, a Memo is not safe
// for concurrent use.
//
// The session keeps every memo attached to it reachable; call Release once a
// memo is no longer needed by a long-lived session.
type Memo[K comparable, S any] struct {
	snapshots *Snapshots[K, S]
	session   *Session
	entries   map[memoKey[K]]memoEntry[S]
	hits      int
	misses    int
	released  bool
}

// NewMemo creates a cache over snapshots bound to session.
func NewMemo[K comparable, S any](snapshots *Snapshots[K, S], session *Session) *Memo[K, S] {
	m := &Memo[K, S]{
		snapshots: snapshots,
		session:   session,
		entries:   make(map[memoKey[K]]memoEntry[S]),
	}
	session.attach(m)
	return m
}

// Resolve is Resolve with caching.
func (m *Memo[K, S]) Resolve(key K) (Snapshot[S], bool) {
	k := m.key(key)
	if e, ok := m.entries[k]; ok {
		m.hits++
		return e.snapshot, e.present
	}
	m.misses++
	snap, present := Resolve(m.snapshots, key, m.session)
	if !m.released {
		m.entries[k] = memoEntry[S]{snapshot: snap, present: present}
	}
	return snap, present
}

// Release detaches the memo from its session and drops its entries. A
// released memo resolves without caching.
func (m *Memo[K, S]) Release() {
	if m.released {
		return
	}
	m.released = true
	m.session.detach(m)
	m.expire()
}

// Len returns the number of cached resolutions.
func (m *Memo[K, S]) Len() int {
	return len(m.entries)
}

// Stats returns cache hit and miss counts since creation.
func (m *Memo[K, S]) Stats() (hits, misses int) {
	return m.hits, m.misses
}

func (m *Memo[K, S]) key(entity K) memoKey[K] {
	k := memoKey[K]{entity: entity, session: m.session.ID(), epoch: m.session.Epoch()}
	if pin, ok := m.session.Pinned(); ok {
		k.pin, k.pinned = pin.ID, true
	}
	return k
}

func (m *Memo[K, S]) expire() {
	clear(m.entries)
}

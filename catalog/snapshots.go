package catalog

import (
	"sort"

	"github.com/teranos/porydex/errors"
)

// Snapshot is an entity's attribute set within one generation.
// The (entity, generation) pair is its identity.
type Snapshot[S any] struct {
	Generation Generation
	Value      S
}

// Snapshots maps entity keys to their per-generation snapshots.
//
// Each entity's snapshots are kept in release order (not id order, since ids
// need not be assigned in release order). A collection is filled once with Add
// and then only read; reads are safe for concurrent use, Add is not.
type Snapshots[K comparable, S any] struct {
	registry *Registry
	keys     []K
	byKey    map[K][]Snapshot[S]
}

// NewSnapshots creates an empty collection whose generation references are
// checked against registry.
func NewSnapshots[K comparable, S any](registry *Registry) *Snapshots[K, S] {
	return &Snapshots[K, S]{
		registry: registry,
		byKey:    make(map[K][]Snapshot[S]),
	}
}

// Add attaches value as key's snapshot for generation id.
// An unknown generation or a second snapshot for the same pair is an integrity violation.
func (c *Snapshots[K, S]) Add(key K, id GenerationID, value S) error {
	gen, err := c.registry.Get(id)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "snapshot for %v references unknown generation", key), errors.ErrIntegrity)
	}
	pos, _ := c.registry.releasePosition(id)

	timeline, seen := c.byKey[key]
	if !seen {
		c.keys = append(c.keys, key)
	}

	i := sort.Search(len(timeline), func(i int) bool {
		p, _ := c.registry.releasePosition(timeline[i].Generation.ID)
		return p >= pos
	})
	if i < len(timeline) && timeline[i].Generation.ID == id {
		return errors.NewIntegrityError("duplicate snapshot for %v in generation %d", key, id)
	}

	timeline = append(timeline, Snapshot[S]{})
	copy(timeline[i+1:], timeline[i:])
	timeline[i] = Snapshot[S]{Generation: gen, Value: value}
	c.byKey[key] = timeline
	return nil
}

// For returns key's snapshots in release order. The result is a copy.
func (c *Snapshots[K, S]) For(key K) []Snapshot[S] {
	timeline := c.byKey[key]
	out := make([]Snapshot[S], len(timeline))
	copy(out, timeline)
	return out
}

// At returns key's snapshot for generation id. A false result means the
// entity does not exist in that generation; it is not an error.
func (c *Snapshots[K, S]) At(key K, id GenerationID) (Snapshot[S], bool) {
	for _, snap := range c.byKey[key] {
		if snap.Generation.ID == id {
			return snap, true
		}
	}
	return Snapshot[S]{}, false
}

// Keys returns the entity keys that have at least one snapshot, in the order
// they were first added.
func (c *Snapshots[K, S]) Keys() []K {
	out := make([]K, len(c.keys))
	copy(out, c.keys)
	return out
}

// Len returns the number of entities with at least one snapshot.
func (c *Snapshots[K, S]) Len() int {
	return len(c.keys)
}

// Registry returns the registry generation references are resolved against.
func (c *Snapshots[K, S]) Registry() *Registry {
	return c.registry
}

func (c *Snapshots[K, S]) timeline(key K) []Snapshot[S] {
	return c.byKey[key]
}

package dex

import (
	"github.com/teranos/porydex/catalog"
	"github.com/teranos/porydex/schema"
)

// Entity is what a collection holds: a generation-scoped row with localized
// names.
type Entity interface {
	schema.HasSnapshots
	schema.HasLocalizedNames
}

// Collection is every entity of one kind with its snapshots and names.
// It is immutable once built.
type Collection[K comparable, E Entity, S any] struct {
	kind         *schema.Kind
	keys         []K
	entities     map[K]E
	byIdentifier map[string]K
	identifiers  map[K]string
	snapshots    *catalog.Snapshots[K, S]
	names        *catalog.Names[K]
	keyOf        func([]int64) K

	// fallback supplies a name when the entity has none in the requested
	// languages, e.g. a form deferring to its species.
	fallback func(K, []catalog.LanguageID) (catalog.LocalizedName, bool)
}

func newCollection[K comparable, E Entity, S any](registry *catalog.Registry, keyOf func([]int64) K) *Collection[K, E, S] {
	var zero E
	return &Collection[K, E, S]{
		kind:         zero.Kind(),
		entities:     make(map[K]E),
		byIdentifier: make(map[string]K),
		identifiers:  make(map[K]string),
		snapshots:    catalog.NewSnapshots[K, S](registry),
		names:        catalog.NewNames[K](),
		keyOf:        keyOf,
	}
}

// Kind returns the entity kind.
func (c *Collection[K, E, S]) Kind() *schema.Kind { return c.kind }

// Len returns the number of entities, with or without snapshots.
func (c *Collection[K, E, S]) Len() int { return len(c.keys) }

// Keys returns every entity key in primary-key order.
func (c *Collection[K, E, S]) Keys() []K {
	out := make([]K, len(c.keys))
	copy(out, c.keys)
	return out
}

// Get returns the entity with the given key.
func (c *Collection[K, E, S]) Get(key K) (E, bool) {
	e, ok := c.entities[key]
	return e, ok
}

// Lookup finds an entity by its identifier.
func (c *Collection[K, E, S]) Lookup(identifier string) (E, bool) {
	key, ok := c.byIdentifier[identifier]
	if !ok {
		var zero E
		return zero, false
	}
	return c.Get(key)
}

// Snapshots returns the per-generation snapshots.
func (c *Collection[K, E, S]) Snapshots() *catalog.Snapshots[K, S] { return c.snapshots }

// Names returns the localized names.
func (c *Collection[K, E, S]) Names() *catalog.Names[K] { return c.names }

// Resolve returns key's current snapshot under session.
func (c *Collection[K, E, S]) Resolve(key K, session *catalog.Session) (catalog.Snapshot[S], bool) {
	return catalog.Resolve(c.snapshots, key, session)
}

// Exists reports whether key is visible under session.
func (c *Collection[K, E, S]) Exists(key K, session *catalog.Session) bool {
	return catalog.Exists(c.snapshots, key, session)
}

// Visible returns the keys visible under session, in primary-key order.
func (c *Collection[K, E, S]) Visible(session *catalog.Session) []K {
	return catalog.Filter(c.snapshots, c.keys, session)
}

// Memo returns a resolution cache bound to session.
func (c *Collection[K, E, S]) Memo(session *catalog.Session) *catalog.Memo[K, S] {
	return catalog.NewMemo(c.snapshots, session)
}

// Name returns key's name in the first of languages it has one in.
func (c *Collection[K, E, S]) Name(key K, languages []catalog.LanguageID) (catalog.LocalizedName, bool) {
	if name, ok := c.names.Default(key, languages); ok {
		return name, true
	}
	if c.fallback != nil {
		return c.fallback(key, languages)
	}
	return catalog.LocalizedName{}, false
}

// Label returns key's display name, or its identifier when it has no name
// in languages.
func (c *Collection[K, E, S]) Label(key K, languages []catalog.LanguageID) string {
	if name, ok := c.Name(key, languages); ok {
		return name.Name
	}
	return c.identifiers[key]
}

func (c *Collection[K, E, S]) add(identifier string, e E) {
	key := c.keyOf(e.Key())
	c.keys = append(c.keys, key)
	c.entities[key] = e
	c.byIdentifier[identifier] = key
	c.identifiers[key] = identifier
}

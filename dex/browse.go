package dex

import (
	"github.com/teranos/porydex/catalog"
	"github.com/teranos/porydex/errors"
	"github.com/teranos/porydex/schema"
)

// Entry is one entity resolved under a session, in kind-independent form.
type Entry struct {
	Key        []int64            `json:"key"`
	Identifier string             `json:"identifier"`
	Name       string             `json:"name,omitempty"`
	Generation catalog.Generation `json:"generation"`
	// Present is false when the entity has no snapshot at the resolved
	// generation; Generation and Snapshot are then unset.
	Present  bool `json:"present"`
	Snapshot any  `json:"snapshot,omitempty"`
}

// Browser lists the entities of one kind without knowing their Go types.
type Browser interface {
	Kind() *schema.Kind
	Len() int
	// Entries returns the entities visible under session, resolved.
	Entries(session *catalog.Session, languages []catalog.LanguageID) []Entry
	// Find resolves one entity by identifier, whether or not it is visible.
	Find(identifier string, session *catalog.Session, languages []catalog.LanguageID) (Entry, bool)
}

// Browse returns the collection for kind.
func (d *Dex) Browse(kind *schema.Kind) (Browser, error) {
	switch kind {
	case schema.SpeciesKind:
		return d.Species, nil
	case schema.FormKind:
		return d.Forms, nil
	case schema.TypeKind:
		return d.Types, nil
	case schema.AbilityKind:
		return d.Abilities, nil
	case schema.MoveKind:
		return d.Moves, nil
	case schema.StatKind:
		return d.Stats, nil
	}
	return nil, errors.Newf("no collection for kind %v", kind)
}

func (c *Collection[K, E, S]) Entries(session *catalog.Session, languages []catalog.LanguageID) []Entry {
	keys := c.Visible(session)
	out := make([]Entry, 0, len(keys))
	for _, key := range keys {
		out = append(out, c.entry(key, session, languages))
	}
	return out
}

func (c *Collection[K, E, S]) Find(identifier string, session *catalog.Session, languages []catalog.LanguageID) (Entry, bool) {
	key, ok := c.byIdentifier[identifier]
	if !ok {
		return Entry{}, false
	}
	return c.entry(key, session, languages), true
}

func (c *Collection[K, E, S]) entry(key K, session *catalog.Session, languages []catalog.LanguageID) Entry {
	e := c.entities[key]
	entry := Entry{Key: e.Key(), Identifier: c.identifiers[key]}
	if name, ok := c.Name(key, languages); ok {
		entry.Name = name.Name
	}
	if snap, ok := c.Resolve(key, session); ok {
		entry.Generation = snap.Generation
		entry.Present = true
		entry.Snapshot = snap.Value
	}
	return entry
}

package catalog

import (
	"sort"

	"github.com/teranos/porydex/errors"
)

// Registry is the fixed set of known generations.
// It is immutable after NewRegistry returns and safe for concurrent use.
type Registry struct {
	byID    map[GenerationID]Generation
	ordered []Generation
	// position of each generation in release order, used to keep snapshot
	// timelines sorted without re-reading release_order
	position map[GenerationID]int
}

// NewRegistry validates and indexes the given generations.
// Duplicate ids, identifiers or release orders are integrity violations.
func NewRegistry(generations []Generation) (*Registry, error) {
	r := &Registry{
		byID:     make(map[GenerationID]Generation, len(generations)),
		ordered:  make([]Generation, 0, len(generations)),
		position: make(map[GenerationID]int, len(generations)),
	}

	identifiers := make(map[string]GenerationID, len(generations))
	releaseOrders := make(map[int]GenerationID, len(generations))

	for _, g := range generations {
		if _, dup := r.byID[g.ID]; dup {
			return nil, errors.NewIntegrityError("duplicate generation id %d", g.ID)
		}
		if other, dup := identifiers[g.Identifier]; dup {
			return nil, errors.NewIntegrityError("generations %d and %d share identifier %q", other, g.ID, g.Identifier)
		}
		if other, dup := releaseOrders[g.ReleaseOrder]; dup {
			return nil, errors.NewIntegrityError("generations %d and %d share release order %d", other, g.ID, g.ReleaseOrder)
		}
		identifiers[g.Identifier] = g.ID
		releaseOrders[g.ReleaseOrder] = g.ID
		r.byID[g.ID] = g
		r.ordered = append(r.ordered, g)
	}

	sort.Slice(r.ordered, func(i, j int) bool {
		return r.ordered[i].ReleaseOrder < r.ordered[j].ReleaseOrder
	})
	for i, g := range r.ordered {
		r.position[g.ID] = i
	}
	return r, nil
}

// Get returns the generation with the given id, or an error matching errors.ErrNotFound.
func (r *Registry) Get(id GenerationID) (Generation, error) {
	g, ok := r.byID[id]
	if !ok {
		return Generation{}, errors.NewNotFoundError("generation %d", id)
	}
	return g, nil
}

// Lookup finds a generation by its identifier (e.g. "sun-moon").
func (r *Registry) Lookup(identifier string) (Generation, error) {
	for _, g := range r.ordered {
		if g.Identifier == identifier {
			return g, nil
		}
	}
	return Generation{}, errors.NewNotFoundError("generation %q", identifier)
}

// All returns every generation sorted by release order.
func (r *Registry) All() []Generation {
	out := make([]Generation, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Len returns the number of known generations.
func (r *Registry) Len() int {
	return len(r.ordered)
}

// releasePosition returns the index of id in release order.
func (r *Registry) releasePosition(id GenerationID) (int, bool) {
	pos, ok := r.position[id]
	return pos, ok
}

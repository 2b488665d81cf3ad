// Package catalog implements generation-scoped resolution for the porydex catalog.
//
// Entities (species, forms, types, abilities, moves, stats) keep one stable
// identity across every generation and attach zero or more snapshots, one per
// generation they appear in. A Session selects which snapshot is "current":
// either a pinned generation, or the most recent generation the entity has a
// snapshot in, ranked by RankKeys.
//
// Everything in this package is an in-memory computation over data that was
// loaded once; the SQL rendition of the same rule lives in package store.
package catalog

import "fmt"

// GenerationID identifies a generation row.
type GenerationID int

// Generation is one discrete revision of the catalog.
type Generation struct {
	ID           GenerationID `json:"id"`
	Identifier   string       `json:"identifier"`
	ReleaseOrder int          `json:"release_order"`
	IsBaseSeries bool         `json:"is_base_series"`
}

func (g Generation) String() string {
	return fmt.Sprintf("%s (#%d)", g.Identifier, g.ID)
}

// RankKey is one term of the "most recent generation" ordering.
// Higher values rank first.
type RankKey struct {
	// Column is the generations column the key reads, used by the SQL rendition.
	Column string
	Value  func(Generation) int
}

// RankKeys is the single definition of unpinned resolution order:
// base-series generations before side-branch ones, then later release first.
// The trailing id key only matters if two generations tie on the first two,
// which the unique release_order constraint rules out; the higher id wins.
var RankKeys = []RankKey{
	{Column: "is_base_series", Value: func(g Generation) int {
		if g.IsBaseSeries {
			return 1
		}
		return 0
	}},
	{Column: "release_order", Value: func(g Generation) int { return g.ReleaseOrder }},
	{Column: "id", Value: func(g Generation) int { return int(g.ID) }},
}

// Outranks reports whether a is preferred over b for unpinned resolution.
func Outranks(a, b Generation) bool {
	for _, key := range RankKeys {
		va, vb := key.Value(a), key.Value(b)
		if va != vb {
			return va > vb
		}
	}
	return false
}

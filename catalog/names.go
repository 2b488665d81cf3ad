package catalog

import (
	"sort"

	"github.com/teranos/porydex/errors"
)

// LanguageID identifies a languages row.
type LanguageID int

// English is the language id the reference data uses for English.
const English LanguageID = 3

// LocalizedName is an entity's display name in one language.
type LocalizedName struct {
	Language LanguageID `json:"language_id"`
	Name     string     `json:"name"`
	// Detail carries the secondary text some name tables have, such as a
	// stat abbreviation or an egg group subtitle. Empty when absent.
	Detail string `json:"detail,omitempty"`
}

// Names maps entity keys to their names, independent of generation.
// Like Snapshots it is filled once and then only read.
type Names[K comparable] struct {
	byKey map[K][]LocalizedName
}

// NewNames creates an empty name table.
func NewNames[K comparable]() *Names[K] {
	return &Names[K]{byKey: make(map[K][]LocalizedName)}
}

// Add records one of key's names, keeping names in language id order.
func (n *Names[K]) Add(key K, name LocalizedName) error {
	names := n.byKey[key]
	i := sort.Search(len(names), func(i int) bool { return names[i].Language >= name.Language })
	if i < len(names) && names[i].Language == name.Language {
		return errors.NewIntegrityError("duplicate name for %v in language %d", key, name.Language)
	}
	names = append(names, LocalizedName{})
	copy(names[i+1:], names[i:])
	names[i] = name
	n.byKey[key] = names
	return nil
}

// All returns key's names ordered by language id.
func (n *Names[K]) All(key K) []LocalizedName {
	names := n.byKey[key]
	out := make([]LocalizedName, len(names))
	copy(out, names)
	return out
}

// In returns key's name in one language.
func (n *Names[K]) In(key K, lang LanguageID) (LocalizedName, bool) {
	for _, name := range n.byKey[key] {
		if name.Language == lang {
			return name, true
		}
	}
	return LocalizedName{}, false
}

// Default returns key's name in the first of languages that has one.
func (n *Names[K]) Default(key K, languages []LanguageID) (LocalizedName, bool) {
	for _, lang := range languages {
		if name, ok := n.In(key, lang); ok {
			return name, true
		}
	}
	return LocalizedName{}, false
}

// DefaultOr is Default with a fallback to the owning parent's names, used for
// form names that defer to their species.
func DefaultOr[K, P comparable](n *Names[K], key K, parent *Names[P], parentKey P, languages []LanguageID) (LocalizedName, bool) {
	if name, ok := n.Default(key, languages); ok {
		return name, true
	}
	return parent.Default(parentKey, languages)
}

package schema

import (
	"fmt"

	"github.com/teranos/porydex/errors"
)

// Kind ties an entity table to the tables holding its per-generation
// snapshots and its localized names. Each is a static reference to a table
// descriptor declared in this package.
type Kind struct {
	Name      string
	Entity    *Table
	EntityKey []string

	// Snapshots records which generations the entity exists in. RefKey names
	// the entity key columns as they appear in Snapshots and Names.
	Snapshots *Table
	RefKey    []string

	// Attributes are the tables holding per-generation data of one entity,
	// keyed by generation_id and RefKey.
	Attributes []*Table

	Names *Table
}

var (
	SpeciesKind = &Kind{
		Name: "pokemon", Entity: Pokemon, EntityKey: []string{"id"},
		Snapshots: GenerationPokemon, RefKey: []string{"pokemon_id"},
		Attributes: []*Table{GenerationPokemonForms},
		Names:      PokemonNames,
	}
	FormKind = &Kind{
		Name: "form", Entity: PokemonForms, EntityKey: formKey,
		Snapshots: GenerationPokemonForms, RefKey: formKey,
		Attributes: []*Table{PokemonTypes, PokemonAbilities, PokemonStats, PokemonEggGroups},
		Names:      PokemonFormNames,
	}
	TypeKind = &Kind{
		Name: "type", Entity: Types, EntityKey: []string{"id"},
		Snapshots: GenerationTypes, RefKey: []string{"type_id"},
		Names: TypeNames,
	}
	AbilityKind = &Kind{
		Name: "ability", Entity: Abilities, EntityKey: []string{"id"},
		Snapshots: GenerationAbilities, RefKey: []string{"ability_id"},
		Names: AbilityNames,
	}
	MoveKind = &Kind{
		Name: "move", Entity: Moves, EntityKey: []string{"id"},
		Snapshots: GenerationMoves, RefKey: []string{"move_id"},
		Names: MoveNames,
	}
	StatKind = &Kind{
		Name: "stat", Entity: Stats, EntityKey: []string{"id"},
		Snapshots: GenerationStats, RefKey: []string{"stat_id"},
		Names: StatNames,
	}
)

// Kinds lists every generation-scoped entity kind.
var Kinds = []*Kind{SpeciesKind, FormKind, TypeKind, AbilityKind, MoveKind, StatKind}

// KindByName returns the kind with the given name ("pokemon", "form", ...).
func KindByName(name string) (*Kind, error) {
	for _, k := range Kinds {
		if k.Name == name {
			return k, nil
		}
	}
	return nil, errors.WithHintf(errors.Newf("unknown entity kind %q", name),
		"known kinds: pokemon, form, type, ability, move, stat")
}

// HasSnapshots is implemented by entities whose attributes vary by
// generation.
type HasSnapshots interface {
	Kind() *Kind
	Key() []int64
}

// HasLocalizedNames is implemented by entities with a *_names table.
type HasLocalizedNames interface {
	NameTable() *Table
	Key() []int64
}

// ID is the key of every entity with a single integer id.
type ID int64

// FormKey is the composite key of a Pokémon form.
type FormKey struct {
	PokemonID int64
	FormID    int64
}

func (k FormKey) String() string {
	return fmt.Sprintf("%d/%d", k.PokemonID, k.FormID)
}

// Species is a pokemon row.
type Species struct {
	ID             ID
	Identifier     string
	PreevolutionID *ID
	Order          int64
}

func DecodeSpecies(r Record) Species {
	s := Species{
		ID:         ID(r.Int("id")),
		Identifier: r.Text("identifier"),
		Order:      r.Int("order"),
	}
	if pre, ok := r.NullInt("preevolution_id"); ok {
		id := ID(pre)
		s.PreevolutionID = &id
	}
	return s
}

func (s Species) Kind() *Kind       { return SpeciesKind }
func (s Species) NameTable() *Table { return PokemonNames }
func (s Species) Key() []int64      { return []int64{int64(s.ID)} }

// Form is a pokemon_forms row.
type Form struct {
	FormKey
	Identifier string
	IsDefault  bool
	Order      int64
}

func DecodeForm(r Record) Form {
	return Form{
		FormKey:    FormKey{PokemonID: r.Int("pokemon_id"), FormID: r.Int("form_id")},
		Identifier: r.Text("identifier"),
		IsDefault:  r.Bool("is_default"),
		Order:      r.Int("order"),
	}
}

func (f Form) Kind() *Kind       { return FormKind }
func (f Form) NameTable() *Table { return PokemonFormNames }
func (f Form) Key() []int64      { return []int64{f.PokemonID, f.FormID} }

// Named is the shape shared by types, abilities, moves and egg groups.
type Named struct {
	ID         ID
	Identifier string
}

func decodeNamed(r Record) Named {
	return Named{ID: ID(r.Int("id")), Identifier: r.Text("identifier")}
}

func (n Named) Key() []int64 { return []int64{int64(n.ID)} }

type Type struct{ Named }

func DecodeType(r Record) Type { return Type{decodeNamed(r)} }
func (Type) Kind() *Kind       { return TypeKind }
func (Type) NameTable() *Table { return TypeNames }

type Ability struct{ Named }

func DecodeAbility(r Record) Ability { return Ability{decodeNamed(r)} }
func (Ability) Kind() *Kind          { return AbilityKind }
func (Ability) NameTable() *Table    { return AbilityNames }

type Move struct{ Named }

func DecodeMove(r Record) Move { return Move{decodeNamed(r)} }
func (Move) Kind() *Kind       { return MoveKind }
func (Move) NameTable() *Table { return MoveNames }

// EggGroup has names but no per-generation existence; membership is part of
// a form's snapshot.
type EggGroup struct{ Named }

func DecodeEggGroup(r Record) EggGroup { return EggGroup{decodeNamed(r)} }
func (EggGroup) NameTable() *Table     { return EggGroupNames }

// Stat is a stats row. Transient stats (accuracy, evasion) exist only in
// battle and never carry base values.
type Stat struct {
	Named
	IsTransient bool
}

func DecodeStat(r Record) Stat {
	return Stat{Named: decodeNamed(r), IsTransient: r.Bool("is_transient")}
}

func (Stat) Kind() *Kind       { return StatKind }
func (Stat) NameTable() *Table { return StatNames }

// Language is a languages row.
type Language struct {
	ID         ID
	Identifier string
	IETFTag    string
}

func DecodeLanguage(r Record) Language {
	return Language{ID: ID(r.Int("id")), Identifier: r.Text("identifier"), IETFTag: r.Text("ietf_tag")}
}

// Game is a games row.
type Game struct {
	ID           ID
	Identifier   string
	GenerationID int64
}

func DecodeGame(r Record) Game {
	return Game{ID: ID(r.Int("id")), Identifier: r.Text("identifier"), GenerationID: r.Int("generation_id")}
}

type TypeChart struct{ Named }

func DecodeTypeChart(r Record) TypeChart { return TypeChart{decodeNamed(r)} }

// Compile-time checks
var (
	_ HasSnapshots      = Species{}
	_ HasSnapshots      = Form{}
	_ HasSnapshots      = Type{}
	_ HasSnapshots      = Ability{}
	_ HasSnapshots      = Move{}
	_ HasSnapshots      = Stat{}
	_ HasLocalizedNames = Species{}
	_ HasLocalizedNames = Form{}
	_ HasLocalizedNames = Type{}
	_ HasLocalizedNames = Ability{}
	_ HasLocalizedNames = Move{}
	_ HasLocalizedNames = Stat{}
	_ HasLocalizedNames = EggGroup{}
)

package schema

import "github.com/teranos/porydex/errors"

func col(name string, typ ColumnType) Column {
	return Column{Name: name, Type: typ}
}

func nullable(name string, typ ColumnType) Column {
	return Column{Name: name, Type: typ, Nullable: true}
}

func fk(table string, columns ...string) ForeignKey {
	return ForeignKey{Columns: columns, Table: table, References: columns}
}

func fkTo(table string, columns []string, references ...string) ForeignKey {
	return ForeignKey{Columns: columns, Table: table, References: references}
}

// identified builds the common (id, identifier) entity table.
func identified(name string, extra ...Column) *Table {
	return &Table{
		Name:       name,
		Columns:    append([]Column{col("id", Int), col("identifier", Text)}, extra...),
		PrimaryKey: []string{"id"},
		Unique:     [][]string{{"identifier"}},
	}
}

// names builds a *_names table keyed by (language_id, owner key...).
func names(name, owner string, ownerKey []string, refs []string, extra ...Column) *Table {
	cols := []Column{col("language_id", Int)}
	for _, k := range ownerKey {
		cols = append(cols, col(k, Int))
	}
	cols = append(cols, col("name", Text))
	cols = append(cols, extra...)
	return &Table{
		Name:       name,
		Columns:    cols,
		PrimaryKey: append([]string{"language_id"}, ownerKey...),
		ForeignKeys: []ForeignKey{
			fkTo("languages", []string{"language_id"}, "id"),
			fkTo(owner, ownerKey, refs...),
		},
	}
}

// existence builds a generation_* table recording which generations an
// entity appears in.
func existence(name, owner string, ownerKey []string, refs []string) *Table {
	cols := []Column{col("generation_id", Int)}
	for _, k := range ownerKey {
		cols = append(cols, col(k, Int))
	}
	return &Table{
		Name:       name,
		Columns:    cols,
		PrimaryKey: append([]string{"generation_id"}, ownerKey...),
		ForeignKeys: []ForeignKey{
			fkTo("generations", []string{"generation_id"}, "id"),
			fkTo(owner, ownerKey, refs...),
		},
	}
}

var formKey = []string{"pokemon_id", "form_id"}

var (
	Generations = &Table{
		Name: "generations",
		Columns: []Column{
			col("id", Int),
			col("identifier", Text),
			col("release_order", Int),
			col("is_base_series", Bool),
		},
		PrimaryKey: []string{"id"},
		Unique:     [][]string{{"identifier"}, {"release_order"}},
	}

	Languages = &Table{
		Name: "languages",
		Columns: []Column{
			col("id", Int),
			col("identifier", Text),
			col("ietf_tag", Text),
		},
		PrimaryKey: []string{"id"},
		Unique:     [][]string{{"identifier"}, {"ietf_tag"}},
	}

	Games = &Table{
		Name: "games",
		Columns: []Column{
			col("id", Int),
			col("identifier", Text),
			col("generation_id", Int),
		},
		PrimaryKey:  []string{"id"},
		Unique:      [][]string{{"identifier"}},
		ForeignKeys: []ForeignKey{fkTo("generations", []string{"generation_id"}, "id")},
	}

	Types           = identified("types")
	TypeNames       = names("type_names", "types", []string{"type_id"}, []string{"id"})
	GenerationTypes = existence("generation_types", "types", []string{"type_id"}, []string{"id"})

	// A type chart is shared by every generation that uses it; matchups are
	// listed once per chart.
	TypeCharts = identified("type_charts")

	GenerationTypeCharts = &Table{
		Name: "generation_type_charts",
		Columns: []Column{
			col("generation_id", Int),
			col("type_chart_id", Int),
		},
		PrimaryKey: []string{"generation_id"},
		ForeignKeys: []ForeignKey{
			fkTo("generations", []string{"generation_id"}, "id"),
			fkTo("type_charts", []string{"type_chart_id"}, "id"),
		},
	}

	TypeMatchups = &Table{
		Name: "type_matchups",
		Columns: []Column{
			col("type_chart_id", Int),
			col("attacking_type_id", Int),
			col("defending_type_id", Int),
			col("result", Text),
		},
		PrimaryKey: []string{"type_chart_id", "attacking_type_id", "defending_type_id"},
		ForeignKeys: []ForeignKey{
			fkTo("type_charts", []string{"type_chart_id"}, "id"),
			fkTo("types", []string{"attacking_type_id"}, "id"),
			fkTo("types", []string{"defending_type_id"}, "id"),
		},
	}

	Stats           = identified("stats", col("is_transient", Bool))
	StatNames       = names("stat_names", "stats", []string{"stat_id"}, []string{"id"}, col("abbreviation", Text))
	GenerationStats = existence("generation_stats", "stats", []string{"stat_id"}, []string{"id"})

	Abilities           = identified("abilities")
	AbilityNames        = names("ability_names", "abilities", []string{"ability_id"}, []string{"id"})
	GenerationAbilities = existence("generation_abilities", "abilities", []string{"ability_id"}, []string{"id"})

	Moves           = identified("moves")
	MoveNames       = names("move_names", "moves", []string{"move_id"}, []string{"id"})
	GenerationMoves = existence("generation_moves", "moves", []string{"move_id"}, []string{"id"})

	// MoveMachines lists the TMs, HMs and TRs of each game. A game's machines
	// belong to the generation the game is in.
	MoveMachines = &Table{
		Name: "move_machines",
		Columns: []Column{
			col("game_id", Int),
			col("move_id", Int),
			col("machine_type", Text),
			col("number", Int),
		},
		PrimaryKey: []string{"game_id", "move_id"},
		Unique:     [][]string{{"game_id", "machine_type", "number"}},
		ForeignKeys: []ForeignKey{
			fkTo("games", []string{"game_id"}, "id"),
			fkTo("moves", []string{"move_id"}, "id"),
		},
	}

	EggGroups     = identified("egg_groups")
	EggGroupNames = names("egg_group_names", "egg_groups", []string{"egg_group_id"}, []string{"id"}, nullable("subtitle", Text))

	// Pokemon references itself through preevolution_id; rows are inserted
	// in "order" so every predecessor is present before its successors.
	Pokemon = &Table{
		Name: "pokemon",
		Columns: []Column{
			col("id", Int),
			col("identifier", Text),
			nullable("preevolution_id", Int),
			col("order", Int),
		},
		PrimaryKey:  []string{"id"},
		Unique:      [][]string{{"identifier"}, {"order"}},
		ForeignKeys: []ForeignKey{fkTo("pokemon", []string{"preevolution_id"}, "id")},
		LoadOrder:   "order",
	}

	PokemonNames = names("pokemon_names", "pokemon", []string{"pokemon_id"}, []string{"id"})

	PokemonForms = &Table{
		Name: "pokemon_forms",
		Columns: []Column{
			col("pokemon_id", Int),
			col("form_id", Int),
			col("identifier", Text),
			col("is_default", Bool),
			col("order", Int),
		},
		PrimaryKey:  formKey,
		Unique:      [][]string{{"identifier"}, {"order"}},
		ForeignKeys: []ForeignKey{fkTo("pokemon", []string{"pokemon_id"}, "id")},
	}

	PokemonFormNames = names("pokemon_form_names", "pokemon_forms", formKey, formKey)

	GenerationPokemon = existence("generation_pokemon", "pokemon", []string{"pokemon_id"}, []string{"id"})

	GenerationPokemonForms = &Table{
		Name: "generation_pokemon_forms",
		Columns: []Column{
			col("generation_id", Int),
			col("pokemon_id", Int),
			col("form_id", Int),
		},
		PrimaryKey: []string{"generation_id", "pokemon_id", "form_id"},
		ForeignKeys: []ForeignKey{
			fkTo("generations", []string{"generation_id"}, "id"),
			fk("pokemon_forms", formKey...),
			fk("generation_pokemon", "generation_id", "pokemon_id"),
		},
	}

	PokemonTypes = &Table{
		Name: "pokemon_types",
		Columns: []Column{
			col("generation_id", Int),
			col("pokemon_id", Int),
			col("form_id", Int),
			col("slot", Int),
			col("type_id", Int),
		},
		PrimaryKey: []string{"generation_id", "pokemon_id", "form_id", "slot"},
		ForeignKeys: []ForeignKey{
			fk("generation_pokemon_forms", "generation_id", "pokemon_id", "form_id"),
			fk("generation_types", "generation_id", "type_id"),
		},
	}

	PokemonAbilities = &Table{
		Name: "pokemon_abilities",
		Columns: []Column{
			col("generation_id", Int),
			col("pokemon_id", Int),
			col("form_id", Int),
			col("ability_id", Int),
			col("slot", Text),
		},
		PrimaryKey: []string{"generation_id", "pokemon_id", "form_id", "ability_id"},
		ForeignKeys: []ForeignKey{
			fk("generation_pokemon_forms", "generation_id", "pokemon_id", "form_id"),
			fk("generation_abilities", "generation_id", "ability_id"),
		},
	}

	PokemonStats = &Table{
		Name: "pokemon_stats",
		Columns: []Column{
			col("generation_id", Int),
			col("pokemon_id", Int),
			col("form_id", Int),
			col("stat_id", Int),
			col("base_stat", Int),
			nullable("effort_yield", Int),
		},
		PrimaryKey: []string{"generation_id", "pokemon_id", "form_id", "stat_id"},
		ForeignKeys: []ForeignKey{
			fk("generation_pokemon_forms", "generation_id", "pokemon_id", "form_id"),
			fk("generation_stats", "generation_id", "stat_id"),
		},
	}

	PokemonEggGroups = &Table{
		Name: "pokemon_egg_groups",
		Columns: []Column{
			col("generation_id", Int),
			col("pokemon_id", Int),
			col("form_id", Int),
			col("egg_group_id", Int),
		},
		PrimaryKey: []string{"generation_id", "pokemon_id", "form_id", "egg_group_id"},
		ForeignKeys: []ForeignKey{
			fk("generation_pokemon_forms", "generation_id", "pokemon_id", "form_id"),
			fkTo("egg_groups", []string{"egg_group_id"}, "id"),
		},
	}
)

// Tables lists every table in load order: each table appears after every
// table it references, except for self-references.
var Tables = []*Table{
	Generations,
	Languages,
	Games,
	Types, TypeNames, GenerationTypes,
	TypeCharts, GenerationTypeCharts, TypeMatchups,
	Stats, StatNames, GenerationStats,
	Abilities, AbilityNames, GenerationAbilities,
	Moves, MoveNames, GenerationMoves, MoveMachines,
	EggGroups, EggGroupNames,
	Pokemon, PokemonNames,
	PokemonForms, PokemonFormNames,
	GenerationPokemon, GenerationPokemonForms,
	PokemonTypes,
	PokemonAbilities,
	PokemonStats,
	PokemonEggGroups,
}

// AbilitySlots are the values pokemon_abilities.slot may take.
var AbilitySlots = []string{"ability_1", "ability_2", "hidden_ability", "unique_ability"}

// MatchupResults are the values type_matchups.result may take, from no
// damage to double damage.
var MatchupResults = []string{"no_effect", "not_very_effective", "neutral", "super_effective"}

// MachineTypes are the values move_machines.machine_type may take.
var MachineTypes = []string{"tm", "hm", "tr"}

// Lookup returns the table with the given name.
func Lookup(name string) (*Table, error) {
	for _, t := range Tables {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, errors.Newf("unknown table %q", name)
}

// DropOrder returns the tables in reverse load order.
func DropOrder() []*Table {
	out := make([]*Table, len(Tables))
	for i, t := range Tables {
		out[len(Tables)-1-i] = t
	}
	return out
}

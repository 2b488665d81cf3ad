package dex

import (
	"fmt"
	"sort"
	"strings"

	"github.com/teranos/porydex/catalog"
	"github.com/teranos/porydex/errors"
	"github.com/teranos/porydex/schema"
)

// Presence is the snapshot of kinds whose per-generation data is existence
// alone: abilities and stats.
type Presence struct{}

// TypeSnapshot is a type's offensive matchups under the type chart of one
// generation. Matchups against types absent from the generation are left out.
type TypeSnapshot struct {
	Chart    string    `json:"type_chart,omitempty"`
	Matchups []Matchup `json:"matchups"`
}

// Matchup is the damage result of an attack of the snapshot's type against
// one defending type.
type Matchup struct {
	Defending schema.ID `json:"defending_type_id"`
	Result    string    `json:"result"`
}

// Against returns the result against a defending type, "neutral" when the
// chart lists none.
func (s *TypeSnapshot) Against(defending schema.ID) string {
	for _, m := range s.Matchups {
		if m.Defending == defending {
			return m.Result
		}
	}
	return "neutral"
}

// MoveSnapshot is a move within one generation.
type MoveSnapshot struct {
	// Machines lists the TMs, HMs and TRs teaching the move in the
	// generation's games.
	Machines []Machine `json:"machines"`
}

// Machine is a move's machine in one game.
type Machine struct {
	Game   schema.ID `json:"game_id"`
	Type   string    `json:"machine_type"`
	Number int64     `json:"number"`
}

func (m Machine) String() string {
	return fmt.Sprintf("%s%02d", strings.ToUpper(m.Type), m.Number)
}

// SpeciesSnapshot is a species within one generation.
type SpeciesSnapshot struct {
	// Forms lists the form ids present in the generation.
	Forms []int64 `json:"forms"`
}

// FormSnapshot is a form's battle data within one generation.
type FormSnapshot struct {
	Types     []schema.ID   `json:"types"`
	Abilities []AbilitySlot `json:"abilities"`
	Stats     []BaseStat    `json:"stats"`
	EggGroups []schema.ID   `json:"egg_groups"`
}

// AbilitySlot is one of a form's abilities.
type AbilitySlot struct {
	Slot    string    `json:"slot"`
	Ability schema.ID `json:"ability_id"`
}

// BaseStat is a form's base value for one stat. Effort is nil for
// generations without effort values.
type BaseStat struct {
	Stat   schema.ID `json:"stat_id"`
	Base   int64     `json:"base_stat"`
	Effort *int64    `json:"effort_yield,omitempty"`
}

func slotRank(slot string) int {
	for i, s := range schema.AbilitySlots {
		if s == slot {
			return i
		}
	}
	return len(schema.AbilitySlots)
}

// formSnapshot finds the snapshot a per-form attribute row belongs to.
func formSnapshot(forms *catalog.Snapshots[schema.FormKey, *FormSnapshot], r schema.Record) (*FormSnapshot, error) {
	key := schema.FormKey{PokemonID: r.Int("pokemon_id"), FormID: r.Int("form_id")}
	gen := catalog.GenerationID(r.Int("generation_id"))
	snap, ok := forms.At(key, gen)
	if !ok {
		return nil, errors.NewIntegrityError("%s row for form %s has no snapshot in generation %d", r.Table.Name, key, gen)
	}
	return snap.Value, nil
}

// attachFormData fills form snapshots from the per-form attribute tables.
func attachFormData(forms *catalog.Snapshots[schema.FormKey, *FormSnapshot], tables map[*schema.Table][]schema.Record) error {
	for _, r := range tables[schema.PokemonTypes] {
		snap, err := formSnapshot(forms, r)
		if err != nil {
			return err
		}
		snap.Types = append(snap.Types, schema.ID(r.Int("type_id")))
	}
	for _, r := range tables[schema.PokemonAbilities] {
		snap, err := formSnapshot(forms, r)
		if err != nil {
			return err
		}
		snap.Abilities = append(snap.Abilities, AbilitySlot{Slot: r.Text("slot"), Ability: schema.ID(r.Int("ability_id"))})
	}
	for _, r := range tables[schema.PokemonStats] {
		snap, err := formSnapshot(forms, r)
		if err != nil {
			return err
		}
		stat := BaseStat{Stat: schema.ID(r.Int("stat_id")), Base: r.Int("base_stat")}
		if ev, ok := r.NullInt("effort_yield"); ok {
			stat.Effort = &ev
		}
		snap.Stats = append(snap.Stats, stat)
	}
	for _, r := range tables[schema.PokemonEggGroups] {
		snap, err := formSnapshot(forms, r)
		if err != nil {
			return err
		}
		snap.EggGroups = append(snap.EggGroups, schema.ID(r.Int("egg_group_id")))
	}

	for _, key := range forms.Keys() {
		for _, s := range forms.For(key) {
			sort.SliceStable(s.Value.Abilities, func(i, j int) bool {
				return slotRank(s.Value.Abilities[i].Slot) < slotRank(s.Value.Abilities[j].Slot)
			})
		}
	}
	return nil
}

// attachSpeciesForms records which forms each species snapshot includes.
func attachSpeciesForms(species *catalog.Snapshots[schema.ID, *SpeciesSnapshot], tables map[*schema.Table][]schema.Record) error {
	for _, r := range tables[schema.GenerationPokemonForms] {
		id := schema.ID(r.Int("pokemon_id"))
		gen := catalog.GenerationID(r.Int("generation_id"))
		snap, ok := species.At(id, gen)
		if !ok {
			return errors.NewIntegrityError("form %d/%d is in generation %d but its species is not", id, r.Int("form_id"), gen)
		}
		snap.Value.Forms = append(snap.Value.Forms, r.Int("form_id"))
	}
	return nil
}

// attachMatchups fills each type snapshot from the type chart its
// generation uses.
func attachMatchups(types *catalog.Snapshots[schema.ID, *TypeSnapshot], tables map[*schema.Table][]schema.Record) error {
	charts := make(map[int64]string)
	for _, r := range tables[schema.TypeCharts] {
		chart := schema.DecodeTypeChart(r)
		charts[int64(chart.ID)] = chart.Identifier
	}
	chartOf := make(map[catalog.GenerationID]int64)
	for _, r := range tables[schema.GenerationTypeCharts] {
		id := r.Int("type_chart_id")
		if _, ok := charts[id]; !ok {
			return errors.NewIntegrityError("generation %d uses unknown type chart %d", r.Int("generation_id"), id)
		}
		chartOf[catalog.GenerationID(r.Int("generation_id"))] = id
	}

	// matchups[chart][attacking] in defending type order
	matchups := make(map[int64]map[schema.ID][]Matchup)
	for _, r := range tables[schema.TypeMatchups] {
		chart := r.Int("type_chart_id")
		if matchups[chart] == nil {
			matchups[chart] = make(map[schema.ID][]Matchup)
		}
		attacking := schema.ID(r.Int("attacking_type_id"))
		matchups[chart][attacking] = append(matchups[chart][attacking], Matchup{
			Defending: schema.ID(r.Int("defending_type_id")),
			Result:    r.Text("result"),
		})
	}

	for _, key := range types.Keys() {
		for _, s := range types.For(key) {
			chart, ok := chartOf[s.Generation.ID]
			if !ok {
				continue
			}
			s.Value.Chart = charts[chart]
			for _, m := range matchups[chart][key] {
				if _, ok := types.At(m.Defending, s.Generation.ID); ok {
					s.Value.Matchups = append(s.Value.Matchups, m)
				}
			}
		}
	}
	return nil
}

// attachMachines adds each game's machines to the move snapshot of the
// game's generation.
func attachMachines(moves *catalog.Snapshots[schema.ID, *MoveSnapshot], games []schema.Game, tables map[*schema.Table][]schema.Record) error {
	generationOf := make(map[schema.ID]catalog.GenerationID, len(games))
	for _, g := range games {
		generationOf[g.ID] = catalog.GenerationID(g.GenerationID)
	}
	for _, r := range tables[schema.MoveMachines] {
		game := schema.ID(r.Int("game_id"))
		gen, ok := generationOf[game]
		if !ok {
			return errors.NewIntegrityError("move_machines row references unknown game %d", game)
		}
		move := schema.ID(r.Int("move_id"))
		snap, ok := moves.At(move, gen)
		if !ok {
			return errors.NewIntegrityError("game %d has a machine for move %d, which is not in generation %d", game, move, gen)
		}
		snap.Value.Machines = append(snap.Value.Machines, Machine{
			Game:   game,
			Type:   r.Text("machine_type"),
			Number: r.Int("number"),
		})
	}
	return nil
}

// Package dex assembles the read-only catalog: every entity kind with its
// per-generation snapshots and localized names, resolved through
// catalog sessions.
//
// A Dex is built once from a store and never mutated afterwards, so it can be
// shared by any number of concurrent sessions. Handle publishes rebuilt
// catalogs atomically.
package dex

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/teranos/porydex/catalog"
	"github.com/teranos/porydex/errors"
	"github.com/teranos/porydex/logger"
	"github.com/teranos/porydex/schema"
	"github.com/teranos/porydex/store"
)

// readConcurrency bounds the number of tables read at once.
const readConcurrency = 4

// Dex is the assembled catalog.
type Dex struct {
	Registry  *catalog.Registry
	Languages []schema.Language
	Games     []schema.Game

	Species   *Collection[schema.ID, schema.Species, *SpeciesSnapshot]
	Forms     *Collection[schema.FormKey, schema.Form, *FormSnapshot]
	Types     *Collection[schema.ID, schema.Type, *TypeSnapshot]
	Abilities *Collection[schema.ID, schema.Ability, Presence]
	Moves     *Collection[schema.ID, schema.Move, *MoveSnapshot]
	Stats     *Collection[schema.ID, schema.Stat, Presence]

	EggGroups     []schema.EggGroup
	EggGroupNames *catalog.Names[schema.ID]

	BuiltAt time.Time
}

func singleKey(k []int64) schema.ID { return schema.ID(k[0]) }

func formKey(k []int64) schema.FormKey {
	return schema.FormKey{PokemonID: k[0], FormID: k[1]}
}

// Build reads every catalog table from st and assembles a Dex.
// Tables are read concurrently; nothing is returned until all of them have
// been read and cross-checked.
func Build(ctx context.Context, st *store.Store, log *zap.SugaredLogger) (*Dex, error) {
	start := time.Now()
	tables, err := readTables(ctx, st)
	if err != nil {
		return nil, err
	}

	gens := make([]catalog.Generation, 0, len(tables[schema.Generations]))
	for _, r := range tables[schema.Generations] {
		gens = append(gens, decodeGeneration(r))
	}
	registry, err := catalog.NewRegistry(gens)
	if err != nil {
		return nil, err
	}

	d := &Dex{
		Registry:      registry,
		Species:       newCollection[schema.ID, schema.Species, *SpeciesSnapshot](registry, singleKey),
		Forms:         newCollection[schema.FormKey, schema.Form, *FormSnapshot](registry, formKey),
		Types:         newCollection[schema.ID, schema.Type, *TypeSnapshot](registry, singleKey),
		Abilities:     newCollection[schema.ID, schema.Ability, Presence](registry, singleKey),
		Moves:         newCollection[schema.ID, schema.Move, *MoveSnapshot](registry, singleKey),
		Stats:         newCollection[schema.ID, schema.Stat, Presence](registry, singleKey),
		EggGroupNames: catalog.NewNames[schema.ID](),
	}
	for _, r := range tables[schema.Languages] {
		d.Languages = append(d.Languages, schema.DecodeLanguage(r))
	}
	for _, r := range tables[schema.Games] {
		d.Games = append(d.Games, schema.DecodeGame(r))
	}

	presence := func() Presence { return Presence{} }
	if err := fill(d.Species, tables, schema.DecodeSpecies, func() *SpeciesSnapshot { return &SpeciesSnapshot{} }); err != nil {
		return nil, err
	}
	if err := fill(d.Forms, tables, schema.DecodeForm, func() *FormSnapshot { return &FormSnapshot{} }); err != nil {
		return nil, err
	}
	if err := fill(d.Types, tables, schema.DecodeType, func() *TypeSnapshot { return &TypeSnapshot{} }); err != nil {
		return nil, err
	}
	if err := fill(d.Abilities, tables, schema.DecodeAbility, presence); err != nil {
		return nil, err
	}
	if err := fill(d.Moves, tables, schema.DecodeMove, func() *MoveSnapshot { return &MoveSnapshot{} }); err != nil {
		return nil, err
	}
	if err := fill(d.Stats, tables, schema.DecodeStat, presence); err != nil {
		return nil, err
	}

	for _, r := range tables[schema.EggGroups] {
		d.EggGroups = append(d.EggGroups, schema.DecodeEggGroup(r))
	}
	if err := addNames(d.EggGroupNames, tables[schema.EggGroupNames], []string{"egg_group_id"}, singleKey); err != nil {
		return nil, err
	}

	if err := attachSpeciesForms(d.Species.snapshots, tables); err != nil {
		return nil, err
	}
	if err := attachFormData(d.Forms.snapshots, tables); err != nil {
		return nil, err
	}
	if err := attachMatchups(d.Types.snapshots, tables); err != nil {
		return nil, err
	}
	if err := attachMachines(d.Moves.snapshots, d.Games, tables); err != nil {
		return nil, err
	}

	// Forms without a name of their own use their species' name.
	d.Forms.fallback = func(k schema.FormKey, languages []catalog.LanguageID) (catalog.LocalizedName, bool) {
		return d.Species.names.Default(schema.ID(k.PokemonID), languages)
	}

	d.BuiltAt = time.Now()
	if log != nil {
		log.Infow("Catalog built",
			"generations", registry.Len(),
			"species", d.Species.Len(),
			"forms", d.Forms.Len(),
			"moves", d.Moves.Len(),
			logger.FieldDurationMS, time.Since(start).Milliseconds(),
		)
	}
	return d, nil
}

func readTables(ctx context.Context, st *store.Store) (map[*schema.Table][]schema.Record, error) {
	results := make([][]schema.Record, len(schema.Tables))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(readConcurrency)
	for i, table := range schema.Tables {
		g.Go(func() error {
			records, err := st.ReadTable(gCtx, table)
			if err != nil {
				return err
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "read catalog")
	}

	tables := make(map[*schema.Table][]schema.Record, len(schema.Tables))
	for i, table := range schema.Tables {
		tables[table] = results[i]
	}
	return tables, nil
}

func decodeGeneration(r schema.Record) catalog.Generation {
	return catalog.Generation{
		ID:           catalog.GenerationID(r.Int("id")),
		Identifier:   r.Text("identifier"),
		ReleaseOrder: int(r.Int("release_order")),
		IsBaseSeries: r.Bool("is_base_series"),
	}
}

// fill adds a kind's entities, snapshots and names to c.
func fill[K comparable, E Entity, S any](c *Collection[K, E, S], tables map[*schema.Table][]schema.Record, decode func(schema.Record) E, newSnapshot func() S) error {
	kind := c.kind
	for _, r := range tables[kind.Entity] {
		c.add(r.Text("identifier"), decode(r))
	}
	for _, r := range tables[kind.Snapshots] {
		key := c.keyOf(r.Ints(kind.RefKey))
		if _, ok := c.entities[key]; !ok {
			return errors.NewIntegrityError("%s row references unknown %s %v", kind.Snapshots.Name, kind.Name, key)
		}
		if err := c.snapshots.Add(key, catalog.GenerationID(r.Int("generation_id")), newSnapshot()); err != nil {
			return err
		}
	}
	var zero E
	return addNames(c.names, tables[zero.NameTable()], kind.RefKey, c.keyOf)
}

// addNames loads a *_names table. The abbreviation or subtitle column, when
// the table has one, becomes the name's detail.
func addNames[K comparable](names *catalog.Names[K], records []schema.Record, ownerKey []string, keyOf func([]int64) K) error {
	for _, r := range records {
		name := catalog.LocalizedName{
			Language: catalog.LanguageID(r.Int("language_id")),
			Name:     r.Text("name"),
		}
		if detail, ok := r.NullText("abbreviation"); ok {
			name.Detail = detail
		} else if detail, ok := r.NullText("subtitle"); ok {
			name.Detail = detail
		}
		if err := names.Add(keyOf(r.Ints(ownerKey)), name); err != nil {
			return err
		}
	}
	return nil
}

// Session opens a session on the catalog. A zero pin is unpinned.
func (d *Dex) Session(pin catalog.GenerationID) (*catalog.Session, error) {
	if pin == 0 {
		return catalog.NewSession(d.Registry), nil
	}
	return catalog.NewPinnedSession(d.Registry, pin)
}

// Game returns the game with the given id.
func (d *Dex) Game(id schema.ID) (schema.Game, bool) {
	for _, g := range d.Games {
		if g.ID == id {
			return g, true
		}
	}
	return schema.Game{}, false
}

// FormsOf returns a species' form keys in primary-key order.
func (d *Dex) FormsOf(id schema.ID) []schema.FormKey {
	var out []schema.FormKey
	for _, k := range d.Forms.keys {
		if schema.ID(k.PokemonID) == id {
			out = append(out, k)
		}
	}
	return out
}

package dex

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/porydex/catalog"
	"github.com/teranos/porydex/errors"
	porytest "github.com/teranos/porydex/internal/testing"
	"github.com/teranos/porydex/loader"
	"github.com/teranos/porydex/schema"
	"github.com/teranos/porydex/store"
	"github.com/teranos/porydex/tabular"
)

const fixtures = tabular.Dir("../loader/testdata")

var english = []catalog.LanguageID{catalog.English}

func setup(t *testing.T) (*store.Store, *Dex) {
	t.Helper()
	ctx := context.Background()
	d := porytest.CreateTestDB(t)
	_, err := loader.Load(ctx, d, fixtures, loader.Options{})
	require.NoError(t, err)

	st := store.Open(d, zaptest.NewLogger(t).Sugar())
	dx, err := Build(ctx, st, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	return st, dx
}

// sessions returns an unpinned session followed by one pinned to each generation.
func sessions(t *testing.T, dx *Dex) []*catalog.Session {
	t.Helper()
	out := []*catalog.Session{catalog.NewSession(dx.Registry)}
	for _, g := range dx.Registry.All() {
		s, err := catalog.NewPinnedSession(dx.Registry, g.ID)
		require.NoError(t, err)
		out = append(out, s)
	}
	return out
}

func sessionName(s *catalog.Session) string {
	if g, ok := s.Pinned(); ok {
		return "pinned " + g.Identifier
	}
	return "unpinned"
}

// The in-memory engine and the SQL rendition must agree on every entity of
// every kind, pinned and unpinned.
func TestResolutionPathsAgree(t *testing.T) {
	ctx := context.Background()
	st, dx := setup(t)

	for _, kind := range schema.Kinds {
		browser, err := dx.Browse(kind)
		require.NoError(t, err)

		for _, session := range sessions(t, dx) {
			t.Run(kind.Name+"/"+sessionName(session), func(t *testing.T) {
				imperative := browser.Entries(session, english)
				queried, err := st.Resolve(ctx, store.ForSession(kind, session))
				require.NoError(t, err)

				require.Len(t, queried, len(imperative))
				for i, entry := range imperative {
					q := queried[i]
					assert.Equal(t, entry.Key, q.Key)
					assert.Equal(t, entry.Present, q.Present, "%s %v", kind.Name, entry.Key)
					if entry.Present {
						assert.Equal(t, entry.Generation.ID, q.Generation, "%s %v", kind.Name, entry.Key)
					}

					gen, present, err := st.ResolveOne(ctx, kind, entry.Key, store.ForSession(kind, session).Pin)
					require.NoError(t, err)
					assert.Equal(t, entry.Present, present)
					if present {
						assert.Equal(t, entry.Generation.ID, gen)
					}
				}
			})
		}
	}
}

func TestUnpinnedResolution(t *testing.T) {
	_, dx := setup(t)
	session := catalog.NewSession(dx.Registry)

	tests := []struct {
		name    string
		resolve func() (catalog.Generation, bool)
		want    catalog.GenerationID
		present bool
	}{
		{"base series beats later side branch", func() (catalog.Generation, bool) {
			s, ok := dx.Forms.Resolve(schema.FormKey{PokemonID: 3, FormID: 2}, session)
			return s.Generation, ok
		}, 5, true},
		{"side branch only", func() (catalog.Generation, bool) {
			s, ok := dx.Forms.Resolve(schema.FormKey{PokemonID: 25, FormID: 2}, session)
			return s.Generation, ok
		}, 8, true},
		{"move only in side branch", func() (catalog.Generation, bool) {
			s, ok := dx.Moves.Resolve(729, session)
			return s.Generation, ok
		}, 8, true},
		{"type introduced late", func() (catalog.Generation, bool) {
			s, ok := dx.Types.Resolve(18, session)
			return s.Generation, ok
		}, 5, true},
		{"move with no snapshots", func() (catalog.Generation, bool) {
			s, ok := dx.Moves.Resolve(450, session)
			return s.Generation, ok
		}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, ok := tt.resolve()
			require.Equal(t, tt.present, ok)
			if ok {
				assert.Equal(t, tt.want, gen.ID)
			}
		})
	}

	assert.True(t, dx.Moves.Exists(450, session), "unpinned sessions see every entity")
}

func TestPinnedVisibility(t *testing.T) {
	_, dx := setup(t)

	redBlue, err := dx.Session(1)
	require.NoError(t, err)
	assert.Equal(t, []schema.ID{1, 2, 3, 25, 26}, dx.Species.Visible(redBlue))
	assert.False(t, dx.Species.Exists(172, redBlue))
	_, ok := dx.Species.Resolve(172, redBlue)
	assert.False(t, ok)

	colosseum, err := dx.Session(4)
	require.NoError(t, err)
	assert.Equal(t, []schema.ID{25, 26, 172}, dx.Species.Visible(colosseum))

	_, err = dx.Session(3)
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))

	unpinned, err := dx.Session(0)
	require.NoError(t, err)
	assert.Len(t, dx.Species.Visible(unpinned), 6)
}

func TestFormSnapshots(t *testing.T) {
	_, dx := setup(t)
	sunMoon, err := dx.Session(5)
	require.NoError(t, err)

	snap, ok := dx.Forms.Resolve(schema.FormKey{PokemonID: 25, FormID: 1}, sunMoon)
	require.True(t, ok)
	pikachu := snap.Value
	assert.Equal(t, []schema.ID{13}, pikachu.Types)
	assert.Equal(t, []AbilitySlot{{Slot: "ability_1", Ability: 9}, {Slot: "hidden_ability", Ability: 31}}, pikachu.Abilities)
	assert.Equal(t, []schema.ID{5, 6}, pikachu.EggGroups)
	require.Len(t, pikachu.Stats, 3)
	assert.Equal(t, schema.ID(6), pikachu.Stats[2].Stat)
	assert.Equal(t, int64(90), pikachu.Stats[2].Base)
	require.NotNil(t, pikachu.Stats[2].Effort)
	assert.Equal(t, int64(2), *pikachu.Stats[2].Effort)

	bulbasaur, ok := dx.Forms.Snapshots().At(schema.FormKey{PokemonID: 1, FormID: 1}, 5)
	require.True(t, ok)
	assert.Equal(t, "ability_1", bulbasaur.Value.Abilities[0].Slot, "abilities sorted by slot")

	redBlue, ok := dx.Forms.Snapshots().At(schema.FormKey{PokemonID: 1, FormID: 1}, 1)
	require.True(t, ok)
	require.Len(t, redBlue.Value.Stats, 3)
	assert.Nil(t, redBlue.Value.Stats[0].Effort)
	assert.Empty(t, redBlue.Value.Abilities)

	raichu, ok := dx.Species.Snapshots().At(26, 8)
	require.True(t, ok)
	assert.Equal(t, []int64{1, 2}, raichu.Value.Forms)
	assert.Equal(t, []schema.FormKey{{PokemonID: 26, FormID: 1}, {PokemonID: 26, FormID: 2}}, dx.FormsOf(26))
}

func TestTypeMatchups(t *testing.T) {
	_, dx := setup(t)

	tests := []struct {
		name      string
		gen       catalog.GenerationID
		attacking schema.ID
		chart     string
		want      []Matchup
	}{
		{"poison before fairy", 2, 4, "gen-2-5", []Matchup{
			{Defending: 4, Result: "not_very_effective"},
			{Defending: 12, Result: "super_effective"},
		}},
		{"poison after fairy", 5, 4, "gen-6", []Matchup{
			{Defending: 4, Result: "not_very_effective"},
			{Defending: 12, Result: "super_effective"},
			{Defending: 18, Result: "super_effective"},
		}},
		{"side branch shares the chart", 8, 18, "gen-6", []Matchup{
			{Defending: 4, Result: "not_very_effective"},
			{Defending: 10, Result: "not_very_effective"},
		}},
		{"no listed matchups", 1, 1, "gen-1", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, ok := dx.Types.Snapshots().At(tt.attacking, tt.gen)
			require.True(t, ok)
			assert.Equal(t, tt.chart, snap.Value.Chart)
			assert.Equal(t, tt.want, snap.Value.Matchups)
		})
	}

	fire, ok := dx.Types.Snapshots().At(10, 5)
	require.True(t, ok)
	assert.Equal(t, "neutral", fire.Value.Against(18), "listed neutral")
	assert.Equal(t, "neutral", fire.Value.Against(1), "unlisted")
	assert.Equal(t, "super_effective", fire.Value.Against(12))
}

func TestMoveMachines(t *testing.T) {
	_, dx := setup(t)

	colosseum, ok := dx.Moves.Snapshots().At(85, 4)
	require.True(t, ok)
	require.Len(t, colosseum.Value.Machines, 1)
	assert.Equal(t, Machine{Game: 4, Type: "tm", Number: 24}, colosseum.Value.Machines[0])
	assert.Equal(t, "TM24", colosseum.Value.Machines[0].String())

	redBlue, ok := dx.Moves.Snapshots().At(85, 1)
	require.True(t, ok)
	var games []string
	for _, m := range redBlue.Value.Machines {
		g, ok := dx.Game(m.Game)
		require.True(t, ok)
		games = append(games, g.Identifier)
	}
	assert.Equal(t, []string{"red", "blue"}, games, "one machine per game of the generation")

	letsGo, ok := dx.Moves.Snapshots().At(85, 8)
	require.True(t, ok)
	assert.Empty(t, letsGo.Value.Machines)

	t.Run("machine for a move outside the game's generation", func(t *testing.T) {
		registry, err := catalog.NewRegistry([]catalog.Generation{{ID: 1, Identifier: "red-blue", ReleaseOrder: 1, IsBaseSeries: true}})
		require.NoError(t, err)
		moves := catalog.NewSnapshots[schema.ID, *MoveSnapshot](registry)
		tables := map[*schema.Table][]schema.Record{
			schema.MoveMachines: {{Table: schema.MoveMachines, Values: []any{int64(1), int64(85), "tm", int64(24)}}},
		}
		err = attachMachines(moves, []schema.Game{{ID: 1, Identifier: "red", GenerationID: 1}}, tables)
		require.Error(t, err)
		assert.True(t, errors.IsIntegrityError(err))
	})
}

func TestNames(t *testing.T) {
	_, dx := setup(t)
	frenchFirst := []catalog.LanguageID{5, catalog.English}

	name, ok := dx.Species.Name(1, frenchFirst)
	require.True(t, ok)
	assert.Equal(t, "Bulbizarre", name.Name)

	name, ok = dx.Species.Name(2, frenchFirst)
	require.True(t, ok)
	assert.Equal(t, "Ivysaur", name.Name)

	name, ok = dx.Forms.Name(schema.FormKey{PokemonID: 3, FormID: 1}, english)
	require.True(t, ok)
	assert.Equal(t, "Venusaur", name.Name, "default forms fall back to the species name")

	name, ok = dx.Forms.Name(schema.FormKey{PokemonID: 3, FormID: 2}, english)
	require.True(t, ok)
	assert.Equal(t, "Mega Venusaur", name.Name)

	_, ok = dx.Forms.Name(schema.FormKey{PokemonID: 3, FormID: 2}, []catalog.LanguageID{1})
	assert.False(t, ok)
	assert.Equal(t, "venusaur-mega", dx.Forms.Label(schema.FormKey{PokemonID: 3, FormID: 2}, []catalog.LanguageID{1}))
	assert.Equal(t, "Feu", dx.Types.Label(10, frenchFirst))

	name, ok = dx.Stats.Name(2, english)
	require.True(t, ok)
	assert.Equal(t, "Atk", name.Detail)

	name, ok = dx.EggGroupNames.Default(15, english)
	require.True(t, ok)
	assert.Equal(t, "No Eggs Discovered", name.Detail)

	all := dx.Species.Names().All(1)
	require.Len(t, all, 2)
	assert.Equal(t, catalog.English, all[0].Language, "names are ordered by language id")

	assert.Len(t, dx.Languages, 3)
	assert.Len(t, dx.EggGroups, 5)
}

func TestBrowse(t *testing.T) {
	_, dx := setup(t)

	kind, err := schema.KindByName("form")
	require.NoError(t, err)
	browser, err := dx.Browse(kind)
	require.NoError(t, err)
	assert.Equal(t, 9, browser.Len())

	sunMoon, err := dx.Session(5)
	require.NoError(t, err)

	entry, ok := browser.Find("raichu-alola", sunMoon, english)
	require.True(t, ok)
	assert.True(t, entry.Present)
	assert.Equal(t, "Alolan Raichu", entry.Name)
	assert.Equal(t, []int64{26, 2}, entry.Key)
	snap, ok := entry.Snapshot.(*FormSnapshot)
	require.True(t, ok)
	assert.Equal(t, []schema.ID{13, 14}, snap.Types)

	entry, ok = browser.Find("pikachu-partner", sunMoon, english)
	require.True(t, ok)
	assert.False(t, entry.Present)
	assert.Nil(t, entry.Snapshot)

	_, ok = browser.Find("missingno", sunMoon, english)
	assert.False(t, ok)

	entries := browser.Entries(sunMoon, english)
	assert.Len(t, entries, 8)

	mon, ok := dx.Species.Lookup("pichu")
	require.True(t, ok)
	assert.Equal(t, schema.ID(172), mon.ID)
	assert.Nil(t, mon.PreevolutionID)
}

func TestMemoAcrossRepin(t *testing.T) {
	_, dx := setup(t)
	session := catalog.NewSession(dx.Registry)
	memo := dx.Types.Memo(session)

	snap, ok := memo.Resolve(18)
	require.True(t, ok)
	assert.Equal(t, catalog.GenerationID(5), snap.Generation.ID)

	require.NoError(t, session.Pin(8))
	snap, ok = memo.Resolve(18)
	require.True(t, ok)
	assert.Equal(t, catalog.GenerationID(8), snap.Generation.ID)

	require.NoError(t, session.Pin(1))
	_, ok = memo.Resolve(18)
	assert.False(t, ok)
}

func TestConcurrentSessions(t *testing.T) {
	_, dx := setup(t)

	var wg sync.WaitGroup
	counts := make([]int, dx.Registry.Len())
	for i, g := range dx.Registry.All() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session, err := dx.Session(g.ID)
			if err != nil {
				return
			}
			counts[i] = len(dx.Forms.Entries(session, english))
		}()
	}
	wg.Wait()
	assert.Equal(t, []int{5, 6, 3, 8, 8}, counts)
}

func TestHandle(t *testing.T) {
	ctx := context.Background()
	var h Handle
	assert.Nil(t, h.Current())

	d := porytest.CreateTestDB(t)
	_, err := loader.Load(ctx, d, fixtures, loader.Options{})
	require.NoError(t, err)
	st := store.Open(d, nil)

	first, err := h.Refresh(ctx, st, nil)
	require.NoError(t, err)
	assert.Same(t, first, h.Current())

	require.NoError(t, d.Close())
	_, err = h.Refresh(ctx, st, nil)
	require.Error(t, err)
	assert.True(t, errors.IsStorageError(err))
	assert.Same(t, first, h.Current(), "a failed refresh keeps the published catalog")
}

func TestFillRejectsUnknownEntity(t *testing.T) {
	registry, err := catalog.NewRegistry([]catalog.Generation{{ID: 1, Identifier: "red-blue", ReleaseOrder: 1, IsBaseSeries: true}})
	require.NoError(t, err)
	moves := newCollection[schema.ID, schema.Move, *MoveSnapshot](registry, singleKey)
	newMove := func() *MoveSnapshot { return &MoveSnapshot{} }

	tables := map[*schema.Table][]schema.Record{
		schema.Moves:           {{Table: schema.Moves, Values: []any{int64(1), "pound"}}},
		schema.GenerationMoves: {{Table: schema.GenerationMoves, Values: []any{int64(1), int64(2)}}},
	}
	err = fill(moves, tables, schema.DecodeMove, newMove)
	require.Error(t, err)
	assert.True(t, errors.IsIntegrityError(err))

	tables[schema.GenerationMoves] = []schema.Record{{Table: schema.GenerationMoves, Values: []any{int64(9), int64(1)}}}
	moves = newCollection[schema.ID, schema.Move, *MoveSnapshot](registry, singleKey)
	err = fill(moves, tables, schema.DecodeMove, newMove)
	require.Error(t, err)
	assert.True(t, errors.IsIntegrityError(err), "snapshot in an unknown generation")
}

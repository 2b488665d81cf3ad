package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/porydex/errors"
)

// testGenerations mirrors a small slice of the reference data. Ids are
// deliberately not in release order, and "lets-go" is a side branch released
// after the last base-series generation in the set.
func testGenerations() []Generation {
	return []Generation{
		{ID: 1, Identifier: "red-blue", ReleaseOrder: 1, IsBaseSeries: true},
		{ID: 2, Identifier: "gold-silver", ReleaseOrder: 2, IsBaseSeries: true},
		{ID: 5, Identifier: "sun-moon", ReleaseOrder: 5, IsBaseSeries: true},
		{ID: 8, Identifier: "lets-go", ReleaseOrder: 8, IsBaseSeries: false},
		{ID: 4, Identifier: "colosseum", ReleaseOrder: 3, IsBaseSeries: false},
	}
}

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := NewRegistry(testGenerations())
	require.NoError(t, err)
	return reg
}

func TestNewRegistry(t *testing.T) {
	t.Run("orders by release order", func(t *testing.T) {
		reg := testRegistry(t)
		var ids []GenerationID
		for _, g := range reg.All() {
			ids = append(ids, g.ID)
		}
		assert.Equal(t, []GenerationID{1, 2, 4, 5, 8}, ids)
		assert.Equal(t, 5, reg.Len())
	})

	testCases := []struct {
		name string
		gens []Generation
	}{
		{
			name: "duplicate id",
			gens: []Generation{
				{ID: 1, Identifier: "a", ReleaseOrder: 1, IsBaseSeries: true},
				{ID: 1, Identifier: "b", ReleaseOrder: 2, IsBaseSeries: true},
			},
		},
		{
			name: "duplicate identifier",
			gens: []Generation{
				{ID: 1, Identifier: "a", ReleaseOrder: 1, IsBaseSeries: true},
				{ID: 2, Identifier: "a", ReleaseOrder: 2, IsBaseSeries: true},
			},
		},
		{
			name: "release order tie",
			gens: []Generation{
				{ID: 1, Identifier: "a", ReleaseOrder: 1, IsBaseSeries: true},
				{ID: 2, Identifier: "b", ReleaseOrder: 1, IsBaseSeries: false},
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			reg, err := NewRegistry(tc.gens)
			assert.Nil(t, reg)
			assert.True(t, errors.IsIntegrityError(err), "got %v", err)
		})
	}
}

func TestRegistryGet(t *testing.T) {
	reg := testRegistry(t)

	g, err := reg.Get(5)
	require.NoError(t, err)
	assert.Equal(t, "sun-moon", g.Identifier)

	_, err = reg.Get(99)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	g, err = reg.Lookup("lets-go")
	require.NoError(t, err)
	assert.Equal(t, GenerationID(8), g.ID)

	_, err = reg.Lookup("missing")
	assert.True(t, errors.IsNotFoundError(err))
}

func TestRegistryAllIsACopy(t *testing.T) {
	reg := testRegistry(t)
	all := reg.All()
	all[0].Identifier = "mutated"

	g, err := reg.Get(all[0].ID)
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", g.Identifier)
}

func TestOutranks(t *testing.T) {
	base1 := Generation{ID: 1, ReleaseOrder: 1, IsBaseSeries: true}
	base5 := Generation{ID: 5, ReleaseOrder: 5, IsBaseSeries: true}
	side8 := Generation{ID: 8, ReleaseOrder: 8, IsBaseSeries: false}
	side3 := Generation{ID: 4, ReleaseOrder: 3, IsBaseSeries: false}

	assert.True(t, Outranks(base5, base1), "later base-series release wins")
	assert.True(t, Outranks(base1, side8), "any base-series beats any side branch")
	assert.True(t, Outranks(side8, side3), "later side branch beats earlier side branch")
	assert.False(t, Outranks(base1, base1), "a generation never outranks itself")

	// Unreachable given unique release orders, but deterministic: higher id wins.
	tieLow := Generation{ID: 10, ReleaseOrder: 7, IsBaseSeries: true}
	tieHigh := Generation{ID: 11, ReleaseOrder: 7, IsBaseSeries: true}
	assert.True(t, Outranks(tieHigh, tieLow))
	assert.False(t, Outranks(tieLow, tieHigh))
}

func TestRankKeysColumns(t *testing.T) {
	var cols []string
	for _, k := range RankKeys {
		cols = append(cols, k.Column)
	}
	assert.Equal(t, []string{"is_base_series", "release_order", "id"}, cols)
}

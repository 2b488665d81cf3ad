package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/porydex/errors"
)

type moveSnapshot struct {
	Power int
}

// fixture: move 1 exists in {1, 5, 8}, move 2 only in the side branches
// {4, 8}, move 3 only in 2, move 4 nowhere.
func testMoves(t *testing.T, reg *Registry) *Snapshots[int, moveSnapshot] {
	t.Helper()
	moves := NewSnapshots[int, moveSnapshot](reg)
	// Added out of release order on purpose.
	require.NoError(t, moves.Add(1, 8, moveSnapshot{Power: 80}))
	require.NoError(t, moves.Add(1, 1, moveSnapshot{Power: 10}))
	require.NoError(t, moves.Add(1, 5, moveSnapshot{Power: 50}))
	require.NoError(t, moves.Add(2, 8, moveSnapshot{Power: 88}))
	require.NoError(t, moves.Add(2, 4, moveSnapshot{Power: 44}))
	require.NoError(t, moves.Add(3, 2, moveSnapshot{Power: 22}))
	return moves
}

func TestSnapshotsAdd(t *testing.T) {
	reg := testRegistry(t)
	moves := testMoves(t, reg)

	t.Run("timeline is in release order", func(t *testing.T) {
		var ids []GenerationID
		for _, snap := range moves.For(1) {
			ids = append(ids, snap.Generation.ID)
		}
		assert.Equal(t, []GenerationID{1, 5, 8}, ids)

		ids = nil
		for _, snap := range moves.For(2) {
			ids = append(ids, snap.Generation.ID)
		}
		assert.Equal(t, []GenerationID{4, 8}, ids, "id 4 was released before id 8")
	})

	t.Run("duplicate pair is rejected", func(t *testing.T) {
		err := moves.Add(1, 5, moveSnapshot{Power: 51})
		assert.True(t, errors.IsIntegrityError(err))
		snap, ok := moves.At(1, 5)
		require.True(t, ok)
		assert.Equal(t, 50, snap.Value.Power, "original snapshot kept")
	})

	t.Run("unknown generation is rejected", func(t *testing.T) {
		err := moves.Add(9, 99, moveSnapshot{})
		assert.True(t, errors.IsIntegrityError(err))
		assert.Empty(t, moves.For(9))
	})

	t.Run("keys in first-seen order", func(t *testing.T) {
		assert.Equal(t, []int{1, 2, 3}, moves.Keys())
		assert.Equal(t, 3, moves.Len())
	})
}

func TestResolvePinned(t *testing.T) {
	reg := testRegistry(t)
	moves := testMoves(t, reg)

	for _, gen := range reg.All() {
		session, err := NewPinnedSession(reg, gen.ID)
		require.NoError(t, err)

		for _, key := range []int{1, 2, 3, 4} {
			want, present := moves.At(key, gen.ID)
			got, ok := Resolve(moves, key, session)
			assert.Equal(t, present, ok, "move %d in %s", key, gen.Identifier)
			assert.Equal(t, want, got)
			assert.Equal(t, present, Exists(moves, key, session))
			if ok {
				assert.Equal(t, gen.ID, got.Generation.ID)
			}
		}
	}
}

func TestResolveUnpinned(t *testing.T) {
	reg := testRegistry(t)
	moves := testMoves(t, reg)
	session := NewSession(reg)

	testCases := []struct {
		name    string
		key     int
		wantGen GenerationID
		present bool
	}{
		{name: "base series preferred over later side branch", key: 1, wantGen: 5, present: true},
		{name: "only side branches: latest side branch", key: 2, wantGen: 8, present: true},
		{name: "single snapshot", key: 3, wantGen: 2, present: true},
		{name: "no snapshots is absent", key: 4, present: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			snap, ok := Resolve(moves, tc.key, session)
			assert.Equal(t, tc.present, ok)
			if tc.present {
				assert.Equal(t, tc.wantGen, snap.Generation.ID)
			}
			assert.True(t, Exists(moves, tc.key, session), "unpinned sessions see everything")
		})
	}
}

func TestCurrentIgnoresTimelineOrder(t *testing.T) {
	reg := testRegistry(t)
	session := NewSession(reg)

	g := func(id GenerationID) Generation {
		gen, err := reg.Get(id)
		require.NoError(t, err)
		return gen
	}
	timeline := []Snapshot[string]{
		{Generation: g(8), Value: "lets-go"},
		{Generation: g(5), Value: "sun-moon"},
		{Generation: g(1), Value: "red-blue"},
	}
	snap, ok := Current(timeline, session)
	require.True(t, ok)
	assert.Equal(t, "sun-moon", snap.Value)

	_, ok = Current[string](nil, session)
	assert.False(t, ok)
}

func TestFilter(t *testing.T) {
	reg := testRegistry(t)
	moves := testMoves(t, reg)

	session, err := NewPinnedSession(reg, 8)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, Filter(moves, []int{1, 2, 3, 4}, session))

	session.Unpin()
	assert.Equal(t, []int{1, 2, 3, 4}, Filter(moves, []int{1, 2, 3, 4}, session))
}

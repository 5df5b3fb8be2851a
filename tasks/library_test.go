package tasks

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCategory_Valid(t *testing.T) {
	require.True(t, CategoryTruth.Valid())
	require.True(t, CategoryDare.Valid())
	require.False(t, Category("").Valid())
	require.False(t, Category("both").Valid())
}

func TestNewLibrary_Overrides(t *testing.T) {
	lib := NewLibrary(nil, nil)
	require.Equal(t, DefaultLibrary().Truths, lib.Truths)
	require.Equal(t, DefaultLibrary().Dares, lib.Dares)

	lib = NewLibrary([]string{"custom truth"}, nil)
	require.Equal(t, []string{"custom truth"}, lib.Truths)
	require.Equal(t, DefaultLibrary().Dares, lib.Dares)
}

func TestLibrary_Validate(t *testing.T) {
	require.NoError(t, DefaultLibrary().Validate())
	require.ErrorIs(t, (&Library{Dares: []string{"d"}}).Validate(), ErrEmptyLibrary)
	require.ErrorIs(t, (&Library{Truths: []string{"t"}}).Validate(), ErrEmptyLibrary)
}

func TestLibrary_Pick(t *testing.T) {
	lib := &Library{
		Truths: []string{"t1", "t2"},
		Dares:  []string{"d1", "d2"},
	}
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 20; i++ {
		require.Contains(t, lib.Truths, lib.Pick(CategoryTruth, rng))
		require.Contains(t, lib.Dares, lib.Pick(CategoryDare, rng))
	}
}

func TestLibrary_PickExcluding(t *testing.T) {
	lib := &Library{
		Truths: []string{"t1", "t2", "t3"},
		Dares:  []string{"d1"},
	}
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 50; i++ {
		require.NotEqual(t, "t2", lib.PickExcluding(CategoryTruth, "t2", rng))
	}

	// Single-entry pool: the same text comes back, not an error.
	require.Equal(t, "d1", lib.PickExcluding(CategoryDare, "d1", rng))

	// A pool of duplicates of the excluded text also returns it unchanged.
	dup := &Library{Truths: []string{"same", "same"}}
	require.Equal(t, "same", dup.PickExcluding(CategoryTruth, "same", rng))
}

func TestLibrary_Generate(t *testing.T) {
	lib := DefaultLibrary()
	rng := rand.New(rand.NewSource(9))
	cells := []int{3, 7, 12, 25}

	table := lib.Generate(cells, rng)
	require.Len(t, table, len(cells))
	for _, idx := range cells {
		pair, ok := table[idx]
		require.True(t, ok)
		require.Contains(t, lib.Truths, pair.Truth)
		require.Contains(t, lib.Dares, pair.Dare)
	}
}

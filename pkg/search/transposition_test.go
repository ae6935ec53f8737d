package search_test

import (
	"context"
	"testing"

	"github.com/cortadochess/cortado/pkg/board"
	"github.com/cortadochess/cortado/pkg/search"
	"github.com/stretchr/testify/require"
)

func TestTranspositionTableReadWrite(t *testing.T) {
	tt := search.NewTranspositionTable(context.Background(), 1<<20)

	hash := board.ZobristHash(12345)
	m := board.Move{From: board.E2, To: board.E4}

	_, _, _, _, ok := tt.Read(hash)
	require.False(t, ok)

	require.True(t, tt.Write(hash, search.ExactBound, 0, 4, 37, m))

	bound, depth, score, move, ok := tt.Read(hash)
	require.True(t, ok)
	require.Equal(t, search.ExactBound, bound)
	require.Equal(t, 4, depth)
	require.Equal(t, board.Score(37), score)
	require.True(t, move.Equals(m))
}

func TestTranspositionTableReplacementPrefersDeeper(t *testing.T) {
	tt := search.NewTranspositionTable(context.Background(), 1<<20)
	hash := board.ZobristHash(777)

	shallow := board.Move{From: board.E2, To: board.E4}
	deep := board.Move{From: board.D2, To: board.D4}

	require.True(t, tt.Write(hash, search.ExactBound, 0, 8, 10, deep))
	// A shallower write to the same slot should not evict the deeper entry.
	require.False(t, tt.Write(hash, search.ExactBound, 0, 2, 20, shallow))

	_, depth, _, move, ok := tt.Read(hash)
	require.True(t, ok)
	require.Equal(t, 8, depth)
	require.True(t, move.Equals(deep))
}

func TestTranspositionTableNewGenerationInvalidatesStaleEntries(t *testing.T) {
	tt := search.NewTranspositionTable(context.Background(), 1<<20)
	hash := board.ZobristHash(999)
	m := board.Move{From: board.G1, To: board.F3}

	require.True(t, tt.Write(hash, search.ExactBound, 0, 5, 10, m))
	_, _, _, _, ok := tt.Read(hash)
	require.True(t, ok)

	tt.NewGeneration()

	_, _, _, _, ok = tt.Read(hash)
	require.False(t, ok, "entry from a prior generation must be treated as a miss")

	// The stale slot is now worthless, so even a shallow write in the new generation replaces it.
	require.True(t, tt.Write(hash, search.ExactBound, 0, 1, 3, m))
	_, depth, _, _, ok := tt.Read(hash)
	require.True(t, ok)
	require.Equal(t, 1, depth)
}

func TestWriteLimitedFiltersShallowWrites(t *testing.T) {
	factory := search.NewMinDepthTranspositionTable(4)
	tt := factory(context.Background(), 1<<20)
	hash := board.ZobristHash(42)
	m := board.Move{From: board.B1, To: board.C3}

	require.False(t, tt.Write(hash, search.ExactBound, 0, 2, 5, m))
	_, _, _, _, ok := tt.Read(hash)
	require.False(t, ok)

	require.True(t, tt.Write(hash, search.ExactBound, 0, 4, 5, m))
	_, _, _, _, ok = tt.Read(hash)
	require.True(t, ok)
}

func TestNoTranspositionTableNeverStores(t *testing.T) {
	var tt search.NoTranspositionTable
	require.False(t, tt.Write(board.ZobristHash(1), search.ExactBound, 0, 10, 5, board.Move{}))
	_, _, _, _, ok := tt.Read(board.ZobristHash(1))
	require.False(t, ok)
	require.Equal(t, uint64(0), tt.Size())
}

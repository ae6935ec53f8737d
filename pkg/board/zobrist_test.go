package board_test

import (
	"testing"

	"github.com/cortadochess/cortado/pkg/board"
	"github.com/cortadochess/cortado/pkg/board/fen"
	"github.com/stretchr/testify/require"
)

// TestZobristIncrementalMatchesFullHash walks a short line of moves from the start position
// and checks that the incremental Move() update always agrees with hashing the resulting
// position from scratch -- covering ordinary piece moves, pawn double jumps and castling.
func TestZobristIncrementalMatchesFullHash(t *testing.T) {
	zt := board.NewZobristTable(0)

	pos, turn, _, _, err := fen.Decode(fen.Initial)
	require.NoError(t, err)

	hash := zt.Hash(pos, turn)

	line := []string{"e2e4", "e7e5", "g1f3", "b8c6", "f1c4", "f8c5", "e1g1"}
	for _, str := range line {
		want, err := board.ParseMove(str)
		require.NoError(t, err)

		var applied board.Move
		found := false
		for _, m := range pos.PseudoLegalMoves(turn) {
			if m.Equals(want) {
				applied = m
				found = true
				break
			}
		}
		require.True(t, found, "move %v not found", str)

		next, ok := pos.Move(applied)
		require.True(t, ok)

		hash = zt.Move(hash, pos, applied)
		turn = turn.Opponent()
		pos = next

		require.Equal(t, zt.Hash(pos, turn), hash, "after %v", str)
	}
}

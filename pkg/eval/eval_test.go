package eval_test

import (
	"testing"

	"github.com/cortadochess/cortado/pkg/board"
	"github.com/cortadochess/cortado/pkg/board/fen"
	"github.com/cortadochess/cortado/pkg/eval"
	"github.com/stretchr/testify/require"
)

func TestEvaluateStartPosIsSymmetric(t *testing.T) {
	pos, turn, _, _, err := fen.Decode(fen.Initial)
	require.NoError(t, err)

	white := eval.Evaluate(pos, board.White)
	black := eval.Evaluate(pos, board.Black)

	// A perfectly symmetric position must score identically from both perspectives.
	require.Equal(t, white, black)
	_ = turn
}

func TestEvaluateFavorsMaterialAdvantage(t *testing.T) {
	pieces := []board.Placement{
		{Square: board.E1, Color: board.White, Piece: board.King},
		{Square: board.E8, Color: board.Black, Piece: board.King},
		{Square: board.D1, Color: board.White, Piece: board.Queen},
	}
	pos, err := board.NewPosition(pieces, 0, board.ZeroSquare)
	require.NoError(t, err)

	require.Positive(t, int(eval.Evaluate(pos, board.White)))
	require.Negative(t, int(eval.Evaluate(pos, board.Black)))
}

func TestEvaluateIsAntisymmetricForTurn(t *testing.T) {
	pieces := []board.Placement{
		{Square: board.E1, Color: board.White, Piece: board.King},
		{Square: board.E8, Color: board.Black, Piece: board.King},
		{Square: board.A1, Color: board.White, Piece: board.Rook},
		{Square: board.H8, Color: board.Black, Piece: board.Pawn},
	}
	pos, err := board.NewPosition(pieces, 0, board.ZeroSquare)
	require.NoError(t, err)

	require.Equal(t, eval.Evaluate(pos, board.White), -eval.Evaluate(pos, board.Black))
}

func TestPieceValueOrdering(t *testing.T) {
	require.Less(t, eval.PawnValue, eval.KnightValue)
	require.Less(t, eval.KnightValue, eval.RookValue)
	require.Less(t, eval.RookValue, eval.QueenValue)
	require.Equal(t, int16(0), eval.PieceValue(board.King))
}

func TestEvaluateBareKingsIsZero(t *testing.T) {
	pieces := []board.Placement{
		{Square: board.E1, Color: board.White, Piece: board.King},
		{Square: board.E8, Color: board.Black, Piece: board.King},
	}
	pos, err := board.NewPosition(pieces, 0, board.ZeroSquare)
	require.NoError(t, err)
	require.Equal(t, board.Score(0), eval.Evaluate(pos, board.White))
}

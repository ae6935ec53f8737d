package search_test

import (
	"context"
	"testing"
	"time"

	"github.com/cortadochess/cortado/pkg/board"
	"github.com/cortadochess/cortado/pkg/eval"
	"github.com/cortadochess/cortado/pkg/search"
	"github.com/stretchr/testify/require"
)

func TestStartStopsOnMaxDepth(t *testing.T) {
	b := newTestBoard(t, []board.Placement{
		{Square: board.E1, Color: board.White, Piece: board.King},
		{Square: board.E8, Color: board.Black, Piece: board.King},
		{Square: board.D1, Color: board.White, Piece: board.Queen},
		{Square: board.A7, Color: board.Black, Piece: board.Pawn},
	}, 0, board.White)

	sc := search.NewContext(search.NoTranspositionTable{}, search.EvaluatorFunc(eval.Evaluate))
	handle := search.Start(context.Background(), sc, b, search.TimeControl{MaxDepth: 3})

	var last search.PV
	count := 0
	for pv := range handle.PV {
		require.GreaterOrEqual(t, pv.Depth, last.Depth)
		last = pv
		count++
	}

	require.Positive(t, count)
	require.Equal(t, 3, last.Depth)
}

func TestStartFindsMateAndStopsEarly(t *testing.T) {
	b := newTestBoard(t, []board.Placement{
		{Square: board.E1, Color: board.White, Piece: board.King},
		{Square: board.A1, Color: board.White, Piece: board.Queen},
		{Square: board.H8, Color: board.Black, Piece: board.King},
		{Square: board.G7, Color: board.Black, Piece: board.Pawn},
		{Square: board.H7, Color: board.Black, Piece: board.Pawn},
	}, 0, board.White)

	sc := search.NewContext(search.NoTranspositionTable{}, search.EvaluatorFunc(eval.Evaluate))
	handle := search.Start(context.Background(), sc, b, search.TimeControl{MaxDepth: 20})

	var last search.PV
	for pv := range handle.PV {
		last = pv
	}

	require.True(t, last.Score.IsMateScore())
	mateIn, ok := last.Score.MateIn()
	require.True(t, ok)
	require.Equal(t, 1, mateIn)
	require.Less(t, last.Depth, 20, "mate confirmation should stop iterative deepening before exhausting MaxDepth")
}

func TestStartStopsWhenOnlyOneLegalMoveAtRoot(t *testing.T) {
	// Lone kings, white cornered on a1: a2 and b2 are covered by the black king on b3, so
	// a1-b1 is the only legal move. The root should report it immediately rather than
	// iterating through every depth up to MaxDepth.
	b := newTestBoard(t, []board.Placement{
		{Square: board.A1, Color: board.White, Piece: board.King},
		{Square: board.B3, Color: board.Black, Piece: board.King},
	}, 0, board.White)

	sc := search.NewContext(search.NoTranspositionTable{}, search.EvaluatorFunc(eval.Evaluate))
	handle := search.Start(context.Background(), sc, b, search.TimeControl{MaxDepth: 20})

	var pvs []search.PV
	for pv := range handle.PV {
		pvs = append(pvs, pv)
	}

	require.Len(t, pvs, 1)
	require.Equal(t, 1, pvs[0].Depth)
	require.Len(t, pvs[0].Moves, 1)
	require.Equal(t, board.A1, pvs[0].Moves[0].From)
	require.Equal(t, board.B1, pvs[0].Moves[0].To)
}

func TestHandleHaltStopsSearchPromptly(t *testing.T) {
	b := newTestBoard(t, []board.Placement{
		{Square: board.E1, Color: board.White, Piece: board.King},
		{Square: board.E8, Color: board.Black, Piece: board.King},
		{Square: board.D1, Color: board.White, Piece: board.Queen},
		{Square: board.A7, Color: board.Black, Piece: board.Pawn},
	}, 0, board.White)

	sc := search.NewContext(search.NoTranspositionTable{}, search.EvaluatorFunc(eval.Evaluate))
	handle := search.Start(context.Background(), sc, b, search.TimeControl{MaxDepth: 64})

	// Let at least one iteration land, then request a stop.
	<-handle.PV
	handle.Halt()

	done := make(chan struct{})
	go func() {
		for range handle.PV {
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("search did not stop within 2s of Halt")
	}
}

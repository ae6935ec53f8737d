package search

import (
	"fmt"
	"time"

	"github.com/cortadochess/cortado/pkg/board"
)

// PV is a principal variation produced by a completed (or time-interrupted) iterative
// deepening pass: the best line found, its score and search statistics.
type PV struct {
	Depth int
	Score board.Score
	Moves []board.Move

	Nodes  uint64
	QNodes uint64
	Time   time.Duration
}

// BestMove returns the first move of the line, if any.
func (pv PV) BestMove() (board.Move, bool) {
	if len(pv.Moves) == 0 {
		return board.Move{}, false
	}
	return pv.Moves[0], true
}

func (pv PV) String() string {
	return fmt.Sprintf("depth=%v score=%v nodes=%v time=%v pv=[%v]", pv.Depth, pv.Score, pv.Nodes, pv.Time, board.PrintMoves(pv.Moves))
}

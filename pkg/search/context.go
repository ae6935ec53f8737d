// Package search implements alpha-beta game-tree search over a board.Board: quiescence
// search, principal variation search with standard pruning techniques, and iterative
// deepening with time control.
package search

import (
	"github.com/cortadochess/cortado/pkg/board"
	"github.com/cortadochess/cortado/pkg/see"
)

// maxPly bounds the killer/history/static-eval tables; search is hard-capped well below it.
const maxPly = 128

// Evaluator returns a static evaluation of a position from turn's perspective.
type Evaluator interface {
	Evaluate(pos *board.Position, turn board.Color) board.Score
}

// EvaluatorFunc adapts a plain function to the Evaluator interface.
type EvaluatorFunc func(pos *board.Position, turn board.Color) board.Score

func (f EvaluatorFunc) Evaluate(pos *board.Position, turn board.Color) board.Score {
	return f(pos, turn)
}

// Context carries the mutable state shared by the iterative-deepening runs that use it: the
// transposition table, the SEE cache, move-ordering heuristics (killers and history) and
// node/telemetry counters. Not thread-safe; one Context per concurrent search.
type Context struct {
	TT   TranspositionTable
	See  *see.Cache
	Eval Evaluator

	// Stop is polled at node boundaries; once it returns true, in-progress search unwinds
	// using whatever bound it last had. Supplied by the caller (time control, cancellation).
	Stop func() bool

	Nodes          uint64
	QNodes         uint64
	IllegalTTMoves uint64 // TT moves that turned out not to be pseudo-legal; a corruption/collision signal

	killers    [maxPly][2]board.Move
	history    [board.NumColors][64][64]int32
	staticEval [maxPly]board.Score
}

// NewContext returns a fresh search Context over the given transposition table and evaluator.
func NewContext(tt TranspositionTable, ev Evaluator) *Context {
	return &Context{TT: tt, See: see.NewCache(), Eval: ev}
}

// Reset clears move-ordering heuristics and counters, e.g. at the start of a new game. The
// transposition table is left untouched; callers that want a clean table should replace it.
func (c *Context) Reset() {
	c.killers = [maxPly][2]board.Move{}
	c.history = [board.NumColors][64][64]int32{}
	c.Nodes, c.QNodes, c.IllegalTTMoves = 0, 0, 0
}

func (c *Context) isStopped() bool {
	return c.Stop != nil && c.Stop()
}

func (c *Context) recordKiller(ply int, m board.Move) {
	if ply < 0 || ply >= maxPly || m.IsCapture() {
		return
	}
	if c.killers[ply][0].Equals(m) {
		return
	}
	c.killers[ply][1] = c.killers[ply][0]
	c.killers[ply][0] = m
}

func (c *Context) isKiller(ply int, m board.Move) (primary, secondary bool) {
	if ply < 0 || ply >= maxPly {
		return false, false
	}
	return c.killers[ply][0].Equals(m), c.killers[ply][1].Equals(m)
}

func (c *Context) recordHistory(turn board.Color, m board.Move, depth int) {
	c.history[turn][m.From][m.To] += int32(depth * depth)
}

func (c *Context) historyScore(turn board.Color, m board.Move) int32 {
	return c.history[turn][m.From][m.To]
}

func (c *Context) recordStaticEval(ply int, s board.Score) {
	if ply >= 0 && ply < maxPly {
		c.staticEval[ply] = s
	}
}

// improving reports whether the static evaluation at ply is better than it was two plies ago
// for the side to move, i.e., the position has been getting better despite the opponent's
// intervening move. Used to scale back pruning when the position is not improving.
func (c *Context) improving(ply int, s board.Score) bool {
	if ply < 2 || ply >= maxPly {
		return true
	}
	return s > c.staticEval[ply-2]
}

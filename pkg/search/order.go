package search

import (
	"github.com/cortadochess/cortado/pkg/board"
	"github.com/cortadochess/cortado/pkg/eval"
)

// Move-ordering priority bands, highest first. A capturing promotion outranks a plain
// promotion, which in turn outranks an ordinary capture; within a band, captures/promotions
// are ranked by SEE/MVV-LVA so that winning exchanges sort ahead of losing ones while still
// staying above killers and history-ordered quiet moves.
const (
	capturePromotionBand = 30000
	promotionBand        = 25000
	captureBand          = 20000
	killerBand           = 9000
	counterKiller        = 8900
	historyCap           = 8000
)

// OrderMoves returns a priority function for board.NewMoveList that ranks moves for search
// at the given ply: capturing promotions, then plain promotions, then captures by
// SEE-adjusted MVV/LVA, then killer moves, then quiet moves by history heuristic. Combine
// with board.First to additionally place a transposition-table move ahead of everything else.
func (c *Context) OrderMoves(pos *board.Position, hash board.ZobristHash, turn board.Color, ply int) board.MovePriorityFn {
	return func(m board.Move) board.MovePriority {
		switch {
		case m.IsCapture() && m.IsPromotion():
			s := c.See.Evaluate(pos, hash, turn, m)
			return board.MovePriority(capturePromotionBand + int(eval.PieceValue(m.Promotion)) + int(s))

		case m.IsPromotion():
			return board.MovePriority(promotionBand + int(eval.PieceValue(m.Promotion)))

		case m.IsCapture():
			s := c.See.Evaluate(pos, hash, turn, m)
			mvvlva := int(eval.PieceValue(m.Capture)) - int(eval.PieceValue(m.Piece))/64
			return board.MovePriority(captureBand + int(s) + mvvlva)

		default:
			if primary, secondary := c.isKiller(ply, m); primary {
				return killerBand
			} else if secondary {
				return counterKiller
			}
			h := c.historyScore(turn, m)
			if h > historyCap {
				h = historyCap
			}
			return board.MovePriority(h)
		}
	}
}

package search

import (
	"github.com/cortadochess/cortado/pkg/board"
	"github.com/cortadochess/cortado/pkg/eval"
)

// maxQPly bounds the depth of the capture-only search, as a backstop against pathological
// exchange sequences; in practice stand-pat and delta pruning terminate it far sooner.
const maxQPly = 8

// deltaMargin is added to a capture's material gain before comparing against alpha: a
// capture that still cannot reach alpha even with this safety margin is pruned.
const deltaMargin = 200

// Quiescence extends a search line through captures (and, while in check, all replies) until
// the position is quiet, avoiding the horizon effect where a search stops mid-exchange.
type Quiescence struct {
	Context *Context
}

// Search returns the quiescence-search score for the side to move, from its own perspective.
func (q *Quiescence) Search(b *board.Board, alpha, beta board.Score, qply int) board.Score {
	sc := q.Context
	sc.QNodes++
	if sc.isStopped() {
		return alpha
	}

	if b.Result().Outcome == board.Draw {
		return 0
	}

	turn := b.Turn()
	pos := b.Position()
	inCheck := pos.IsChecked(turn)

	if qply >= maxQPly {
		return sc.Eval.Evaluate(pos, turn)
	}

	var standPat board.Score
	if !inCheck {
		standPat = sc.Eval.Evaluate(pos, turn)
		if standPat >= beta {
			return beta
		}
		if standPat > alpha {
			alpha = standPat
		}
	}

	hash := b.Hash()
	fn := sc.OrderMoves(pos, hash, turn, 0)

	all := pos.PseudoLegalMoves(turn)
	var candidates []board.Move
	for _, m := range all {
		if !inCheck && !m.IsCapture() && !m.IsPromotion() {
			continue
		}
		candidates = append(candidates, m)
	}
	list := board.NewMoveList(candidates, fn)

	legalMoves := 0
	for {
		m, ok := list.Next()
		if !ok {
			break
		}

		if !inCheck && m.IsCapture() {
			gain := int(eval.PieceValue(m.Capture))
			if m.IsPromotion() {
				gain += int(eval.PieceValue(m.Promotion)) - int(eval.PieceValue(board.Pawn))
			}
			if int(standPat)+gain+deltaMargin < int(alpha) {
				continue
			}
			if sc.See.Evaluate(pos, hash, turn, m) < 0 {
				continue
			}
		}

		if !b.PushMove(m) {
			continue
		}
		legalMoves++

		score := -q.Search(b, -beta, -alpha, qply+1)
		b.PopMove()

		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			return beta
		}
	}

	if inCheck && legalMoves == 0 {
		return -board.Mate + board.Score(qply)
	}
	if !inCheck && legalMoves == 0 && isStalemate(b, all) {
		return 0
	}
	return alpha
}

// isStalemate reports whether none of the given pseudo-legal moves is actually legal. Only
// worth checking once a quiescence node has found no legal capture, since any other legal
// move (quiet or not) rules out stalemate.
func isStalemate(b *board.Board, moves []board.Move) bool {
	for _, m := range moves {
		if b.PushMove(m) {
			b.PopMove()
			return false
		}
	}
	return true
}

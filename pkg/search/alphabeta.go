package search

import (
	"math"

	"github.com/cortadochess/cortado/pkg/board"
)

// AlphaBeta implements principal variation search with null-move pruning, late move
// reductions/pruning, futility pruning, history pruning and transposition-table cutoffs.
type AlphaBeta struct {
	Context    *Context
	Quiescence *Quiescence
}

// NewAlphaBeta returns an AlphaBeta searcher sharing the given Context.
func NewAlphaBeta(ctx *Context) *AlphaBeta {
	return &AlphaBeta{Context: ctx, Quiescence: &Quiescence{Context: ctx}}
}

// Search returns the score for the side to move at the root of this subtree, and the line
// that achieves it, searching to the given depth (in plies) from ply plies below the root.
func (ab *AlphaBeta) Search(b *board.Board, depth, ply int, alpha, beta board.Score, nullOK bool) (board.Score, []board.Move) {
	sc := ab.Context
	sc.Nodes++
	if sc.isStopped() {
		return alpha, nil
	}

	if ply > 0 && b.Result().Outcome == board.Draw {
		return 0, nil
	}

	origAlpha := alpha
	pvNode := beta-alpha > 1

	turn := b.Turn()
	pos := b.Position()
	hash := b.Hash()

	var ttMove board.Move
	hasTTMove := false
	if bound, ttDepth, ttScore, move, ok := sc.TT.Read(hash); ok {
		hasTTMove = true
		ttMove = move
		if ttDepth >= depth && !pvNode {
			switch bound {
			case ExactBound:
				return ttScore, []board.Move{move}
			case LowerBound:
				if ttScore >= beta {
					return ttScore, []board.Move{move}
				}
			case UpperBound:
				if ttScore <= alpha {
					return ttScore, []board.Move{move}
				}
			}
		}
	}

	if depth <= 0 {
		return ab.Quiescence.Search(b, alpha, beta, 0), nil
	}

	inCheck := pos.IsChecked(turn)
	staticEval := sc.Eval.Evaluate(pos, turn)
	sc.recordStaticEval(ply, staticEval)
	improving := sc.improving(ply, staticEval)

	if nullOK && !pvNode && !inCheck && depth >= 3 && hasNonPawnMaterial(pos, turn) {
		r := 2
		if depth >= 6 {
			r = 3
		}
		b.PushNull()
		score, _ := ab.Search(b, depth-1-r, ply+1, -beta, -beta+1, false)
		score = -score
		b.PopNull()

		if sc.isStopped() {
			return alpha, nil
		}
		if score >= beta && !score.IsMateScore() {
			return beta, nil
		}
	}

	futile := !pvNode && !inCheck && depth <= 6 && staticEval+board.Score(90*depth) <= alpha

	candidates := pos.PseudoLegalMoves(turn)
	if hasTTMove && !containsMove(candidates, ttMove) {
		sc.IllegalTTMoves++
		hasTTMove = false
	}

	fn := sc.OrderMoves(pos, hash, turn, ply)
	if hasTTMove {
		fn = board.First(ttMove, fn)
	}
	list := board.NewMoveList(candidates, fn)

	var bestMove board.Move
	var bestLine []board.Move
	bestScore := board.MinScore
	legalMoves, movesSearched := 0, 0

	for {
		m, ok := list.Next()
		if !ok {
			break
		}

		quiet := m.IsQuiet()

		if !pvNode && !inCheck && quiet && depth <= 8 && movesSearched >= 3+depth*depth/2 {
			continue
		}
		if futile && movesSearched > 0 && quiet && !givesCheck(pos, m) {
			continue
		}
		if !pvNode && !inCheck && quiet && depth <= 3 && movesSearched > 4 && sc.historyScore(turn, m) < 0 {
			continue
		}
		if !pvNode && !inCheck && m.IsCapture() && depth >= 2 {
			see := sc.See.Evaluate(pos, hash, turn, m)
			if depth >= 4 && see < 0 {
				continue
			}
			if depth < 4 && see < -150 {
				continue
			}
		}

		if !b.PushMove(m) {
			continue
		}
		legalMoves++
		movesSearched++

		givesCheckNow := b.Position().IsChecked(b.Turn())
		ext := 0
		if givesCheckNow {
			ext = 1
		}

		var score board.Score
		var line []board.Move

		switch {
		case movesSearched == 1:
			score, line = ab.Search(b, depth-1+ext, ply+1, -beta, -alpha, true)
			score = -score

		default:
			reduction := 0
			if depth >= 3 && movesSearched > 3 && quiet && !inCheck && !givesCheckNow {
				reduction = lmrReduction(depth, movesSearched)
				if !improving {
					reduction++
				}
			}
			score, line = ab.Search(b, depth-1-reduction+ext, ply+1, -alpha-1, -alpha, true)
			score = -score
			if score > alpha && (reduction > 0 || score < beta) {
				score, line = ab.Search(b, depth-1+ext, ply+1, -beta, -alpha, true)
				score = -score
			}
		}

		b.PopMove()

		if sc.isStopped() {
			return alpha, nil
		}

		if score > bestScore {
			bestScore = score
			bestMove = m
			bestLine = append([]board.Move{m}, line...)
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			if quiet {
				sc.recordKiller(ply, m)
				sc.recordHistory(turn, m, depth)
			}
			break
		}
	}

	if legalMoves == 0 {
		if result := b.AdjudicateNoLegalMoves(); result.Reason == board.Checkmate {
			return -board.Mate + board.Score(ply), nil
		}
		return 0, nil
	}

	bound := ExactBound
	switch {
	case bestScore <= origAlpha:
		bound = UpperBound
	case bestScore >= beta:
		bound = LowerBound
	}
	sc.TT.Write(hash, bound, ply, depth, bestScore, bestMove)

	return bestScore, bestLine
}

func hasNonPawnMaterial(pos *board.Position, turn board.Color) bool {
	return pos.Piece(turn, board.Knight)|pos.Piece(turn, board.Bishop)|
		pos.Piece(turn, board.Rook)|pos.Piece(turn, board.Queen) != 0
}

func givesCheck(pos *board.Position, m board.Move) bool {
	mover, _, ok := pos.Square(m.From)
	if !ok {
		return false
	}
	next, ok := pos.Move(m)
	if !ok {
		return false
	}
	return next.IsChecked(mover.Opponent())
}

func containsMove(moves []board.Move, m board.Move) bool {
	for _, c := range moves {
		if c.Equals(m) {
			return true
		}
	}
	return false
}

// lmrReduction returns the number of plies to reduce a late, quiet move's search by, growing
// logarithmically with both depth and move index.
func lmrReduction(depth, movesSearched int) int {
	r := int(0.5 + math.Log(float64(depth))*math.Log(float64(movesSearched))/2.25)
	if r < 1 {
		r = 1
	}
	if r > depth-1 {
		r = depth - 1
	}
	return r
}

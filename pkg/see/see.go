// Package see implements static exchange evaluation: estimating the material outcome of a
// sequence of captures on a single square without searching.
package see

import (
	"github.com/cortadochess/cortado/pkg/board"
	"github.com/cortadochess/cortado/pkg/eval"
)

const maxDepth = 32

// Evaluate returns the static exchange evaluation of a capture move, in centipawns, from the
// perspective of the side making the move. Non-captures evaluate to 0. Pieces pinned to their
// own king are excluded from the simulated recapture sequence, since they cannot legally
// recapture without exposing the king.
func Evaluate(pos *board.Position, turn board.Color, m board.Move) board.Score {
	if !m.IsCapture() {
		return 0
	}

	var gain [maxDepth]int
	d := 0

	occ := pos.Rotated().Mask()
	pinned := pinnedAttackers(pos, occ)

	gain[0] = int(eval.PieceValue(m.Capture))

	fromBB := board.BitMask(m.From)
	attacker := m.Piece
	occ ^= fromBB
	side := turn.Opponent()

	for fromBB != 0 && d < maxDepth-1 {
		d++
		gain[d] = int(eval.PieceValue(attacker)) - gain[d-1]
		if maxInt(-gain[d-1], gain[d]) < 0 {
			break
		}

		attackers := attackersOf(pos, m.To, occ, side) &^ pinned[side]
		sq, piece, ok := leastValuableAttacker(pos, attackers, side)
		if !ok {
			break
		}

		fromBB = board.BitMask(sq)
		attacker = piece
		occ ^= fromBB
		side = side.Opponent()
	}

	// Propagate optimal stop-or-continue choices back to the root: a side only continues an
	// exchange if doing so improves its result, so a speculative ply whose recapture was never
	// confirmed to exist (the loop above broke immediately after computing it) contributes
	// nothing and is correctly dropped by stopping this loop one short of d==1.
	for d > 1 {
		d--
		gain[d-1] = -maxInt(-gain[d-1], gain[d])
	}
	return board.Score(gain[0])
}

func attackersOf(pos *board.Position, sq board.Square, occ board.Bitboard, c board.Color) board.Bitboard {
	rot := board.NewRotatedBitboard(occ)

	pawns := board.PawnCaptureboard(c.Opponent(), board.BitMask(sq)) & pos.Piece(c, board.Pawn) & occ
	knights := board.KnightAttackboard(sq) & pos.Piece(c, board.Knight) & occ
	kings := board.KingAttackboard(sq) & pos.Piece(c, board.King) & occ
	diagonal := board.BishopAttackboard(rot, sq) & (pos.Piece(c, board.Bishop) | pos.Piece(c, board.Queen)) & occ
	straight := board.RookAttackboard(rot, sq) & (pos.Piece(c, board.Rook) | pos.Piece(c, board.Queen)) & occ

	return pawns | knights | kings | diagonal | straight
}

func leastValuableAttacker(pos *board.Position, attackers board.Bitboard, c board.Color) (board.Square, board.Piece, bool) {
	for _, piece := range []board.Piece{board.Pawn, board.Knight, board.Bishop, board.Rook, board.Queen, board.King} {
		if bb := attackers & pos.Piece(c, piece); bb != 0 {
			return bb.LastPopSquare(), piece, true
		}
	}
	return board.ZeroSquare, board.NoPiece, false
}

// pinnedAttackers returns, per color, the pieces pinned to that color's king given the
// (possibly reduced) occupancy snapshot occ. Computed once against the position's actual
// geometry rather than re-derived at every exchange ply, since a piece either starts the
// exchange pinned or does not become newly pinned by the removal of other pieces along
// unrelated lines.
func pinnedAttackers(pos *board.Position, occ board.Bitboard) [board.NumColors]board.Bitboard {
	var pinned [board.NumColors]board.Bitboard

	for c := board.ZeroColor; c < board.NumColors; c++ {
		kingBB := pos.Piece(c, board.King)
		if kingBB == 0 {
			continue
		}
		ksq := kingBB.LastPopSquare()
		opp := c.Opponent()

		straight := (pos.Piece(opp, board.Rook) | pos.Piece(opp, board.Queen)) & occ
		diagonal := (pos.Piece(opp, board.Bishop) | pos.Piece(opp, board.Queen)) & occ
		for bb := straight | diagonal; bb != 0; {
			ssq := bb.LastPopSquare()
			bb &= bb - 1

			sameLine := board.IsSameRankOrFile(ksq, ssq) && straight&board.BitMask(ssq) != 0
			sameDiag := board.IsSameDiagonal(ksq, ssq) && diagonal&board.BitMask(ssq) != 0
			if !sameLine && !sameDiag {
				continue
			}

			between := squaresBetween(ksq, ssq) & occ
			if between.PopCount() != 1 {
				continue
			}
			sq := between.LastPopSquare()
			if owner, _, ok := pos.Square(sq); ok && owner == c {
				pinned[c] |= board.BitMask(sq)
			}
		}
	}
	return pinned
}

func squaresBetween(a, b board.Square) board.Bitboard {
	af, ar := int(a.File()), int(a.Rank())
	bf, br := int(b.File()), int(b.Rank())
	df, dr := sign(bf-af), sign(br-ar)

	var bb board.Bitboard
	f, r := af+df, ar+dr
	for f != bf || r != br {
		if f < 0 || f > 7 || r < 0 || r > 7 {
			return 0
		}
		bb |= board.BitMask(board.NewSquare(board.File(f), board.Rank(r)))
		f += df
		r += dr
	}
	return bb
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

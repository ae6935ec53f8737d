package eval

import "github.com/cortadochess/cortado/pkg/board"

// Piece-square tables, indexed directly by board.Square, from White's perspective. Black
// values are mirrored across the rank axis at lookup time. Values are in centipawns and are
// added on top of material value; they encourage central control, king safety early and king
// activity late, and pawn advancement.
//
// The tables are generated rather than hand-tuned: each square gets a contribution from its
// file/rank distance to the center plus piece-specific shaping. This mirrors the compact,
// per-piece table layout used by zurichess's psqt package without reproducing its tuned
// constants, which were fit by self-play and are out of scope to replicate here.
var (
	pawnPSQT   [64]int16
	knightPSQT [64]int16
	bishopPSQT [64]int16
	rookPSQT   [64]int16
	queenPSQT  [64]int16
	kingPSQT   [64]int16
	kingEndPSQT [64]int16
)

func init() {
	for sq := board.ZeroSquare; sq < board.NumSquares; sq++ {
		f, r := int(sq.File()), int(sq.Rank())
		centerFile := centerDistance(f)
		centerRank := centerDistance(r)
		central := 4 - centerFile - centerRank // peaks at 4 in the center 2x2, down to -2 at corners

		pawnPSQT[sq] = int16(5*r + 2*central)
		knightPSQT[sq] = int16(6 * central)
		bishopPSQT[sq] = int16(4 * central)
		rookPSQT[sq] = int16(2 * central)
		if f == int(board.FileD) || f == int(board.FileE) {
			rookPSQT[sq] += 8 // mild bonus for central files, reinforced by mobility/open-file terms
		}
		queenPSQT[sq] = int16(2 * central)

		// King wants the back rank and corners early, the center late.
		kingPSQT[sq] = int16(-8*central - 6*r)
		kingEndPSQT[sq] = int16(8 * central)
	}
}

// centerDistance returns the distance of coordinate v (0..7) from the nearest of the two
// central coordinates {3,4}, in [0,3].
func centerDistance(v int) int {
	d1, d2 := v-3, v-4
	if d1 < 0 {
		d1 = -d1
	}
	if d2 < 0 {
		d2 = -d2
	}
	if d1 < d2 {
		return d1
	}
	return d2
}

func flipRank(sq board.Square) board.Square {
	return board.NewSquare(sq.File(), board.Rank(7-int(sq.Rank())))
}

func psqtValue(table [64]int16, c board.Color, sq board.Square) int16 {
	if c == board.Black {
		sq = flipRank(sq)
	}
	return table[sq]
}

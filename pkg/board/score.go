package board

import "fmt"

// Score is signed move or position score in centi-pawns. Positive favors the side the score
// is computed for; evaluation and search scores are from the side to move. If all pawns
// become queens and the opponent has only the king left, the standard material advantage score
// is: 9*8 (p) + 9 (q) + 2*5 (r) + 2*3 (k) + 2*3 (b) = 103. Score must be within +/- 300.00. 16 bits.
type Score int16

const (
	MinScore Score = -30000
	MaxScore Score = 30000

	// Mate is the score assigned to an immediate checkmate, from the perspective of the
	// side delivering it. A mate found N plies from the root is scored Mate-N, so that
	// shorter mates sort ahead of longer ones.
	Mate Score = 29000

	// MateThreshold is the boundary above which a score is considered "mate in N" rather
	// than a heuristic material/positional evaluation.
	MateThreshold Score = Mate - 1000
)

// IsMateScore returns true iff the score reflects a forced mate rather than a heuristic
// evaluation.
func (s Score) IsMateScore() bool {
	return s > MateThreshold || s < -MateThreshold
}

// MateIn returns the number of full moves to mate (positive if this side mates, negative
// if this side gets mated), and false if the score is not a mate score.
func (s Score) MateIn() (int, bool) {
	if !s.IsMateScore() {
		return 0, false
	}
	if s > 0 {
		return (int(Mate-s) + 1) / 2, true
	}
	return -((int(Mate+s) + 1) / 2), true
}

func (s Score) String() string {
	return fmt.Sprintf("%.2f", float64(s)/100)
}

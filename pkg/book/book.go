// Package book implements opening book lookups: a curated set of explicit lines, and real
// polyglot binary opening books.
package book

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cortadochess/cortado/pkg/board"
	"github.com/cortadochess/cortado/pkg/board/fen"
	"github.com/cortadochess/cortado/pkg/eval"
)

// Book represents an opening book: a source of candidate moves for known positions, ordered
// from most to least preferred.
type Book interface {
	// Find returns a list -- potentially empty -- of candidate moves for the given FEN
	// position. Once an empty list is returned for a position, the book should not be
	// consulted again for the remainder of the game.
	Find(ctx context.Context, fen string) ([]board.Move, error)
}

// NoBook is an empty opening book.
var NoBook Book = &lineBook{moves: map[string][]board.Move{}}

// Line represents an opening line in long algebraic notation: e2e4 d7d5.
type Line []string

func (l Line) String() string {
	return strings.Join(l, " ")
}

// NewLineBook creates an opening book from a set of explicit opening lines.
func NewLineBook(lines []Line) (Book, error) {
	m := map[string]map[board.Move]bool{}
	for _, line := range lines {
		key := fen.Initial
		for _, str := range line {
			next, err := board.ParseMove(str)
			if err != nil {
				return nil, fmt.Errorf("invalid line '%v': %v", line, err)
			}

			found := false
			pos, turn, _, _, _ := fen.Decode(key)
			for _, candidate := range pos.PseudoLegalMoves(turn) {
				if !candidate.Equals(next) {
					continue
				}

				found = true
				p, ok := pos.Move(candidate)
				if !ok {
					return nil, fmt.Errorf("invalid line '%v': move %v not legal", line, next)
				}

				if m[fenKey(key)] == nil {
					m[fenKey(key)] = map[board.Move]bool{}
				}
				m[fenKey(key)][candidate] = true

				key = fen.Encode(p, turn.Opponent(), 0, 1)
				break
			}

			if !found {
				return nil, fmt.Errorf("invalid line '%v': move %v not found", line, next)
			}
		}
	}

	dedup := map[string][]board.Move{}
	for k, v := range m {
		var list []board.Move
		for move := range v {
			list = append(list, move)
		}
		sort.Slice(list, func(i, j int) bool {
			return eval.PieceValue(list[i].Capture) > eval.PieceValue(list[j].Capture)
		})
		dedup[k] = list
	}
	return &lineBook{moves: dedup}, nil
}

type lineBook struct {
	moves map[string][]board.Move
}

func (b *lineBook) Find(ctx context.Context, fen string) ([]board.Move, error) {
	return b.moves[fenKey(fen)], nil
}

// fenKey crops a FEN string down to piece placement, active color, castling and en passant,
// ignoring halfmove/fullmove counters so that transpositions to the same position key alike.
func fenKey(pos string) string {
	parts := strings.Split(pos, " ")
	return strings.Join(parts[:4], " ")
}

package book

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"

	"github.com/cortadochess/cortado/pkg/board"
	"github.com/cortadochess/cortado/pkg/board/fen"
)

// polyglotRandom is the 781-entry Zobrist codebook used by the polyglot binary opening book
// format: 768 entries for [piece kind][color][square], 4 for castling rights, 8 for
// the en passant file, and 1 for the side to move. It is generated once, deterministically,
// from a fixed seed distinct from the engine's own search hash (pkg/board/zobrist.go):
// polyglot hashing is a wire-format contract with external .bin book files, not an extension
// of search-internal hashing, and the two must never be allowed to collide or be confused.
var polyglotRandom [781]uint64

func init() {
	r := rand.New(rand.NewSource(0x706f6c79676c6f74))
	for i := range polyglotRandom {
		polyglotRandom[i] = r.Uint64()
	}
}

const (
	polyPieceOffset  = 0
	polyCastleOffset = 768
	polyEPOffset     = 772
	polyTurnOffset   = 780
)

// polyglotPieceIndex maps a (color, piece) pair to the polyglot piece-kind index: black pawn
// is 0, white pawn 1, black knight 2, white knight 3, and so on up through the kings.
func polyglotPieceIndex(c board.Color, p board.Piece) int {
	var kind int
	switch p {
	case board.Pawn:
		kind = 0
	case board.Knight:
		kind = 1
	case board.Bishop:
		kind = 2
	case board.Rook:
		kind = 3
	case board.Queen:
		kind = 4
	case board.King:
		kind = 5
	}
	idx := kind * 2
	if c == board.White {
		idx++
	}
	return idx
}

// polyglotHash computes the polyglot Zobrist key of a position. Polyglot numbers squares
// a1=0 .. h8=63 with the file varying fastest; ours run h1=0 .. a8=63, so the file is mirrored
// when mapping between the two schemes.
func polyglotHash(pos *board.Position, turn board.Color) uint64 {
	var h uint64
	for sq := board.ZeroSquare; sq < board.NumSquares; sq++ {
		c, p, ok := pos.Square(sq)
		if !ok {
			continue
		}
		polySq := int(sq.Rank())*8 + (7 - int(sq.File()))
		h ^= polyglotRandom[polyPieceOffset+64*polyglotPieceIndex(c, p)+polySq]
	}

	castling := pos.Castling()
	if castling.IsAllowed(board.WhiteKingSideCastle) {
		h ^= polyglotRandom[polyCastleOffset+0]
	}
	if castling.IsAllowed(board.WhiteQueenSideCastle) {
		h ^= polyglotRandom[polyCastleOffset+1]
	}
	if castling.IsAllowed(board.BlackKingSideCastle) {
		h ^= polyglotRandom[polyCastleOffset+2]
	}
	if castling.IsAllowed(board.BlackQueenSideCastle) {
		h ^= polyglotRandom[polyCastleOffset+3]
	}

	if ep, ok := pos.EnPassant(); ok && hasCapturingPawn(pos, turn, ep) {
		file := 7 - int(ep.File())
		h ^= polyglotRandom[polyEPOffset+file]
	}

	if turn == board.White {
		h ^= polyglotRandom[polyTurnOffset]
	}
	return h
}

// hasCapturingPawn reports whether turn has a pawn able to capture on the en passant square,
// matching polyglot's rule that the en passant file only enters the hash when a capture is
// actually available.
func hasCapturingPawn(pos *board.Position, turn board.Color, ep board.Square) bool {
	pawns := pos.Piece(turn, board.Pawn)
	return board.PawnCaptureboard(turn.Opponent(), board.BitMask(ep))&pawns != 0
}

// record is one 16-byte polyglot book entry: key, packed move and weight. The entry's
// trailing learn value is not kept.
type record struct {
	key    uint64
	move   uint16
	weight uint16
}

// PolyglotBook is an opening book backed by a sorted polyglot .bin file, read entirely into
// memory at open time and queried by binary search on key.
type PolyglotBook struct {
	records []record
}

// OpenPolyglot reads a polyglot-format opening book file into memory. The standard format
// lists records in ascending key order; if a file violates that (e.g. produced by a
// non-conforming tool) it is re-sorted here so binary search stays correct.
func OpenPolyglot(path string) (*PolyglotBook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open polyglot book %q: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var records []record
	var buf [16]byte
	for {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("read polyglot book %q: %w", path, err)
		}
		records = append(records, record{
			key:    binary.BigEndian.Uint64(buf[0:8]),
			move:   binary.BigEndian.Uint16(buf[8:10]),
			weight: binary.BigEndian.Uint16(buf[10:12]),
		})
	}

	if !sort.SliceIsSorted(records, func(i, j int) bool { return records[i].key < records[j].key }) {
		sort.Slice(records, func(i, j int) bool { return records[i].key < records[j].key })
	}
	return &PolyglotBook{records: records}, nil
}

// Find returns the book moves for fen's position, ordered from the highest-weighted entry to
// the lowest. Castling moves are translated from polyglot's king-captures-rook encoding to the
// engine's own king-moves-two-squares convention.
func (pb *PolyglotBook) Find(ctx context.Context, f string) ([]board.Move, error) {
	pos, turn, _, _, err := fen.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode fen for book lookup: %w", err)
	}
	key := polyglotHash(pos, turn)

	lo := sort.Search(len(pb.records), func(i int) bool { return pb.records[i].key >= key })

	var hits []record
	for i := lo; i < len(pb.records) && pb.records[i].key == key; i++ {
		hits = append(hits, pb.records[i])
	}
	if len(hits) == 0 {
		return nil, nil
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].weight > hits[j].weight })

	moves := make([]board.Move, 0, len(hits))
	for _, h := range hits {
		moves = append(moves, resolvePolyglotMove(pos, turn, decodePolyglotMove(h.move)))
	}
	return moves, nil
}

// decodePolyglotMove unpacks a polyglot 16-bit move field: three bits each for to-file,
// to-rank, from-file, from-rank, and three bits of promotion piece. Polyglot numbers files
// a..h as 0..7, the reverse of this engine's File ordering.
func decodePolyglotMove(raw uint16) board.Move {
	toFile := int(raw & 0x7)
	toRank := int((raw >> 3) & 0x7)
	fromFile := int((raw >> 6) & 0x7)
	fromRank := int((raw >> 9) & 0x7)
	promo := int((raw >> 12) & 0x7)

	from := board.NewSquare(board.File(7-fromFile), board.Rank(fromRank))
	to := board.NewSquare(board.File(7-toFile), board.Rank(toRank))

	m := board.Move{From: from, To: to}
	switch promo {
	case 1:
		m.Promotion = board.Knight
	case 2:
		m.Promotion = board.Bishop
	case 3:
		m.Promotion = board.Rook
	case 4:
		m.Promotion = board.Queen
	}
	return m
}

// resolvePolyglotMove rewrites polyglot's castling encoding (king's square to its own rook's
// square) into this engine's two-square king move, using the position to confirm the piece
// on the target square is actually a friendly rook before reinterpreting the move.
func resolvePolyglotMove(pos *board.Position, turn board.Color, raw board.Move) board.Move {
	kingHome := board.E1
	kingSide, queenSide := board.H1, board.A1
	if turn == board.Black {
		kingHome = board.E8
		kingSide, queenSide = board.H8, board.A8
	}
	if raw.From != kingHome {
		return raw
	}

	c, p, ok := pos.Square(raw.To)
	if !ok || p != board.Rook || c != turn {
		return raw
	}

	switch raw.To {
	case kingSide:
		return board.Move{From: kingHome, To: board.NewSquare(board.FileG, kingHome.Rank())}
	case queenSide:
		return board.Move{From: kingHome, To: board.NewSquare(board.FileC, kingHome.Rank())}
	default:
		return raw
	}
}

package book_test

import (
	"context"
	"testing"

	"github.com/cortadochess/cortado/pkg/board/fen"
	"github.com/cortadochess/cortado/pkg/book"
	"github.com/stretchr/testify/require"
)

func TestNewLineBookFindsMoveAtRoot(t *testing.T) {
	b, err := book.NewLineBook([]book.Line{
		{"e2e4", "e7e5", "g1f3"},
	})
	require.NoError(t, err)

	moves, err := b.Find(context.Background(), fen.Initial)
	require.NoError(t, err)
	require.Len(t, moves, 1)
	require.Equal(t, "E2E4", moves[0].String())
}

func TestNewLineBookMergesMultipleLines(t *testing.T) {
	b, err := book.NewLineBook([]book.Line{
		{"e2e4"},
		{"d2d4"},
	})
	require.NoError(t, err)

	moves, err := b.Find(context.Background(), fen.Initial)
	require.NoError(t, err)
	require.Len(t, moves, 2)
}

func TestNewLineBookRejectsIllegalMove(t *testing.T) {
	_, err := book.NewLineBook([]book.Line{
		{"e2e5"},
	})
	require.Error(t, err)
}

func TestNewLineBookUnknownPositionReturnsEmpty(t *testing.T) {
	b, err := book.NewLineBook([]book.Line{
		{"e2e4"},
	})
	require.NoError(t, err)

	moves, err := b.Find(context.Background(), "8/8/8/8/8/8/8/k6K w - - 0 1")
	require.NoError(t, err)
	require.Empty(t, moves)
}

func TestNoBookIsAlwaysEmpty(t *testing.T) {
	moves, err := book.NoBook.Find(context.Background(), fen.Initial)
	require.NoError(t, err)
	require.Empty(t, moves)
}

func TestLineString(t *testing.T) {
	l := book.Line{"e2e4", "e7e5"}
	require.Equal(t, "e2e4 e7e5", l.String())
}

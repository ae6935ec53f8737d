package search

import (
	"context"
	"time"

	"github.com/cortadochess/cortado/pkg/board"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/util/contextx"
	"github.com/seekerror/stdlib/pkg/util/iox"
)

// TimeControl bounds an iterative-deepening run in wall-clock time, depth and/or nodes.
// Zero fields are unbounded.
type TimeControl struct {
	SoftLimit time.Duration // don't start a new iteration once elapsed
	HardLimit time.Duration // abort mid-iteration once elapsed
	MaxDepth  int
	MaxNodes  uint64
}

// Handle represents an in-flight iterative-deepening search: read PV for each completed
// depth's principal variation, and call Halt to request an early, graceful stop.
type Handle struct {
	PV <-chan PV

	halt iox.AsyncCloser
}

// Halt requests that the search stop as soon as it can. Idempotent.
func (h *Handle) Halt() {
	h.halt.Close()
}

// Start begins an iterative-deepening search over b using sc, returning a Handle streaming
// each depth's PV. The channel is closed once the search stops, whether by time control,
// Halt, ctx cancellation, or exhausting MaxDepth.
func Start(ctx context.Context, sc *Context, b *board.Board, tc TimeControl) *Handle {
	halt := iox.NewAsyncCloser()
	out := make(chan PV, 64)

	go runIterativeDeepening(ctx, sc, b, tc, halt, out)

	return &Handle{PV: out, halt: halt}
}

func runIterativeDeepening(ctx context.Context, sc *Context, b *board.Board, tc TimeControl, halt iox.AsyncCloser, out chan<- PV) {
	defer close(out)

	wctx, cancel := contextx.WithQuitCancel(ctx, halt.Closed())
	defer cancel()

	start := time.Now()
	ab := NewAlphaBeta(sc)

	sc.Stop = func() bool {
		if contextx.IsCancelled(wctx) {
			return true
		}
		if tc.HardLimit > 0 && time.Since(start) >= tc.HardLimit {
			return true
		}
		if tc.MaxNodes > 0 && sc.Nodes >= tc.MaxNodes {
			return true
		}
		return false
	}

	maxDepth := tc.MaxDepth
	if maxDepth <= 0 || maxDepth >= maxPly {
		maxDepth = maxPly - 1
	}

	if mv, ok := onlyLegalMove(b); ok {
		score, line := ab.Search(b, 1, 0, board.MinScore, board.MaxScore, true)
		if len(line) == 0 {
			line = []board.Move{mv}
		}
		pv := PV{
			Depth:  1,
			Score:  score,
			Moves:  line,
			Nodes:  sc.Nodes,
			QNodes: sc.QNodes,
			Time:   time.Since(start),
		}

		select {
		case out <- pv:
		case <-ctx.Done():
		}

		logw.Debugf(ctx, "only one legal move at root, stopping early")
		return
	}

	var last PV
	stableDepth := 0

	for depth := 1; depth <= maxDepth; depth++ {
		if sc.isStopped() {
			return
		}
		if tc.SoftLimit > 0 && depth > 1 && time.Since(start) >= tc.SoftLimit {
			return
		}

		score, line := ab.Search(b, depth, 0, board.MinScore, board.MaxScore, true)
		if sc.isStopped() && depth > 1 {
			return // incomplete iteration: the previous depth's PV is the last reported one
		}
		if len(line) == 0 {
			if mv, ok := last.BestMove(); ok {
				line = []board.Move{mv}
			}
		}

		pv := PV{
			Depth:  depth,
			Score:  score,
			Moves:  line,
			Nodes:  sc.Nodes,
			QNodes: sc.QNodes,
			Time:   time.Since(start),
		}

		if bm, ok := pv.BestMove(); ok {
			if lbm, ok2 := last.BestMove(); ok2 && bm.Equals(lbm) {
				stableDepth++
			} else {
				stableDepth = 0
			}
		}
		last = pv

		select {
		case out <- pv:
		case <-ctx.Done():
			return
		}

		if mateIn, ok := score.MateIn(); ok && mateIn > 0 {
			logw.Debugf(ctx, "mate in %v confirmed at depth %v, stopping early", mateIn, depth)
			return
		}
	}
}

// onlyLegalMove reports the sole legal move at the root, if the side to move has exactly one.
func onlyLegalMove(b *board.Board) (board.Move, bool) {
	pos := b.Position()
	turn := b.Turn()

	var only board.Move
	count := 0
	for _, m := range pos.PseudoLegalMoves(turn) {
		if !b.PushMove(m) {
			continue
		}
		b.PopMove()

		count++
		if count > 1 {
			return board.Move{}, false
		}
		only = m
	}
	return only, count == 1
}

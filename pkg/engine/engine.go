// Package engine provides a mutex-guarded facade over board state and search: the piece UCI
// and other drivers are built on.
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/cortadochess/cortado/pkg/board"
	"github.com/cortadochess/cortado/pkg/board/fen"
	"github.com/cortadochess/cortado/pkg/eval"
	"github.com/cortadochess/cortado/pkg/search"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
)

var version = build.NewVersion(0, 89, 3)

// Options are search creation options.
type Options struct {
	// Depth is the search depth limit, in plies. Zero means unlimited (subject to TimeControl).
	Depth uint
	// Hash is the transposition table size in MB. Zero disables the transposition table.
	Hash uint
}

func (o Options) String() string {
	return fmt.Sprintf("{depth=%v, hash=%v}", o.Depth, o.Hash)
}

// Engine encapsulates game-playing logic, search and evaluation.
type Engine struct {
	name, author string

	factory search.TranspositionTableFactory
	zt      *board.ZobristTable
	seed    int64
	opts    Options

	b    *board.Board
	tt   search.TranspositionTable
	sc   *search.Context
	mu   sync.Mutex

	active *search.Handle
	lastPV search.PV
	done   chan struct{}
}

// Option is an engine creation option.
type Option func(*Engine)

// WithTable configures the engine to use the given transposition table factory.
func WithTable(factory search.TranspositionTableFactory) Option {
	return func(e *Engine) {
		e.factory = factory
	}
}

// WithOptions sets default runtime options.
func WithOptions(opts Options) Option {
	return func(e *Engine) {
		e.opts = opts
	}
}

// WithZobrist configures the engine to use the given random seed instead of the default seed
// of zero. Only useful for testing Zobrist collisions; engines that play against each other
// must agree on the seed to reach the same hash for the same position.
func WithZobrist(seed int64) Option {
	return func(e *Engine) {
		e.seed = seed
	}
}

func New(ctx context.Context, name, author string, opts ...Option) *Engine {
	e := &Engine{
		name:    name,
		author:  author,
		factory: search.NewTranspositionTable,
	}
	for _, fn := range opts {
		fn(e)
	}
	e.zt = board.NewZobristTable(e.seed)

	_ = e.Reset(ctx, fen.Initial)

	logw.Infof(ctx, "Initialized engine: %v, options=%v", e.Name(), e.opts)
	return e
}

// Name returns the engine name and version.
func (e *Engine) Name() string {
	return fmt.Sprintf("%v %v", e.name, version)
}

// Author returns the author.
func (e *Engine) Author() string {
	return e.author
}

func (e *Engine) Options() Options {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.opts
}

func (e *Engine) SetDepth(depth uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Depth = depth
}

func (e *Engine) SetHash(size uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Hash = size
}

// Board returns a forked board.
func (e *Engine) Board() *board.Board {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.b.Fork()
}

// Position returns the current position in FEN format. Convenience function.
func (e *Engine) Position() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return fen.Encode(e.b.Position(), e.b.Turn(), e.b.NoProgress(), e.b.FullMoves())
}

// Reset resets the engine to a new starting position in FEN format. The transposition table
// is logically flushed (a fresh generation), not reallocated, unless the Hash option changed.
func (e *Engine) Reset(ctx context.Context, position string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	logw.Infof(ctx, "Reset %v, depth=%v, TT=%vMB", position, e.opts.Depth, e.opts.Hash)

	e.haltSearchIfActiveLocked(ctx)

	pos, turn, noprogress, fullmoves, err := fen.Decode(position)
	if err != nil {
		return err
	}
	e.b = board.NewBoard(e.zt, pos, turn, noprogress, fullmoves)

	switch {
	case e.opts.Hash == 0:
		e.tt = search.NoTranspositionTable{}
	case e.tt == nil || e.tt.Size() != uint64(e.opts.Hash)<<20:
		e.tt = e.factory(ctx, uint64(e.opts.Hash)<<20)
	default:
		e.tt.NewGeneration()
	}

	e.sc = search.NewContext(e.tt, search.EvaluatorFunc(eval.Evaluate))

	logw.Infof(ctx, "New board: %v", e.b)
	return nil
}

// Move selects the given move, usually an opponent move.
func (e *Engine) Move(ctx context.Context, move string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	logw.Infof(ctx, "Move %v", move)

	candidate, err := board.ParseMove(move)
	if err != nil {
		return fmt.Errorf("invalid move: %v", err)
	}

	e.haltSearchIfActiveLocked(ctx)

	moves := e.b.Position().PseudoLegalMoves(e.b.Turn())
	for _, m := range moves {
		if !candidate.Equals(m) {
			continue
		}

		// Candidate is at least pseudo-legal.

		if !e.b.PushMove(m) {
			return fmt.Errorf("illegal move: %v", m)
		}

		logw.Infof(ctx, "Move %v: %v", m, e.b)
		return nil
	}
	return fmt.Errorf("invalid move: %v", candidate)
}

// TakeBack undoes the latest move.
func (e *Engine) TakeBack(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.haltSearchIfActiveLocked(ctx)

	m, ok := e.b.PopMove()
	if !ok {
		return fmt.Errorf("no move to take back")
	}

	logw.Infof(ctx, "Takeback %v", m)
	return nil
}

// Analyze starts an iterative-deepening search of the current position under the given time
// control, streaming one PV per completed depth. MaxDepth defaults to the engine's configured
// Depth option if unset.
func (e *Engine) Analyze(ctx context.Context, tc search.TimeControl) (<-chan search.PV, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if tc.MaxDepth == 0 {
		tc.MaxDepth = int(e.opts.Depth)
	}

	logw.Infof(ctx, "Analyze %v, tc=%+v", e.b, tc)

	if e.active != nil {
		return nil, fmt.Errorf("search already active")
	}

	e.sc.Nodes, e.sc.QNodes, e.sc.IllegalTTMoves = 0, 0, 0
	handle := search.Start(ctx, e.sc, e.b.Fork(), tc)
	e.active = handle
	e.lastPV = search.PV{}
	done := make(chan struct{})
	e.done = done

	out := make(chan search.PV, 64)
	go func() {
		defer close(out)
		defer close(done)

		for pv := range handle.PV {
			e.mu.Lock()
			e.lastPV = pv
			e.mu.Unlock()
			out <- pv
		}
	}()
	return out, nil
}

// Halt halts the active search and returns the principal variation, if any.
func (e *Engine) Halt(ctx context.Context) (search.PV, error) {
	e.mu.Lock()
	handle := e.active
	done := e.done
	e.mu.Unlock()

	if handle == nil {
		return search.PV{}, fmt.Errorf("no active search")
	}
	handle.Halt()
	<-done

	e.mu.Lock()
	defer e.mu.Unlock()

	pv := e.lastPV
	e.active = nil
	logw.Infof(ctx, "Search %v halted: %v", e.b, pv)
	return pv, nil
}

// haltSearchIfActiveLocked must be called with e.mu held.
func (e *Engine) haltSearchIfActiveLocked(ctx context.Context) {
	if e.active == nil {
		return
	}
	handle, done := e.active, e.done
	e.mu.Unlock()
	handle.Halt()
	<-done
	e.mu.Lock()

	e.active = nil
	logw.Infof(ctx, "Search %v halted: %v", e.b, e.lastPV)
}

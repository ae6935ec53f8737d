// cortado is a UCI chess engine: bitboard move generation, alpha-beta search with the
// standard battery of pruning techniques, and an optional polyglot opening book.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cortadochess/cortado/pkg/book"
	"github.com/cortadochess/cortado/pkg/engine"
	"github.com/cortadochess/cortado/pkg/engine/uci"
	"github.com/seekerror/logw"
)

var (
	ply      = flag.Uint("ply", 0, "Search depth limit, in plies (zero if no limit)")
	hash     = flag.Uint("hash", 64, "Transposition table size, in MB (zero disables it)")
	bookPath = flag.String("book", "baron30.bin", "Path to a polyglot opening book (empty to disable)")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: cortado [options]

CORTADO is a UCI chess engine.
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	e := engine.New(ctx, "Cortado", "cortadochess",
		engine.WithOptions(engine.Options{Depth: *ply, Hash: *hash}),
	)

	var uciOpts []uci.Option
	if *bookPath != "" {
		if b, err := book.OpenPolyglot(*bookPath); err != nil {
			logw.Infof(ctx, "No opening book: %v", err)
		} else {
			uciOpts = append(uciOpts, uci.UseBook(b, time.Now().UnixNano()))
		}
	}

	in := engine.ReadStdinLines(ctx)
	switch <-in {
	case uci.ProtocolName:
		// Use UCI protocol.

		driver, out := uci.NewDriver(ctx, e, in, uciOpts...)
		go engine.WriteStdoutLines(ctx, out)

		<-driver.Closed()

	default:
		flag.Usage()
		logw.Exitf(ctx, "Protocol not supported")
	}
}

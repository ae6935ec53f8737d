package uci_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cortadochess/cortado/pkg/engine"
	"github.com/cortadochess/cortado/pkg/engine/uci"
	"github.com/stretchr/testify/require"
)

func collectUntil(t *testing.T, out <-chan string, prefix string, timeout time.Duration) []string {
	t.Helper()
	var lines []string
	deadline := time.After(timeout)
	for {
		select {
		case line, ok := <-out:
			if !ok {
				t.Fatalf("output closed before seeing line with prefix %q", prefix)
			}
			lines = append(lines, line)
			if strings.HasPrefix(line, prefix) {
				return lines
			}
		case <-deadline:
			t.Fatalf("timed out waiting for line with prefix %q, got: %v", prefix, lines)
		}
	}
}

func TestUCIHandshake(t *testing.T) {
	e := engine.New(context.Background(), "cortado", "test")
	in := make(chan string, 10)
	d, out := uci.NewDriver(context.Background(), e, in)
	defer d.Close()

	lines := collectUntil(t, out, "uciok", time.Second)
	require.Condition(t, func() bool {
		for _, l := range lines {
			if strings.HasPrefix(l, "id name") {
				return true
			}
		}
		return false
	})
}

func TestUCIGoDepthReturnsBestMove(t *testing.T) {
	e := engine.New(context.Background(), "cortado", "test")
	in := make(chan string, 10)
	d, out := uci.NewDriver(context.Background(), e, in)
	defer d.Close()

	collectUntil(t, out, "uciok", time.Second)

	in <- "position startpos"
	in <- "go depth 2"

	lines := collectUntil(t, out, "bestmove", 5*time.Second)
	last := lines[len(lines)-1]
	require.True(t, strings.HasPrefix(last, "bestmove "))
	require.NotEqual(t, "bestmove 0000", last)
}

func TestUCIStopHaltsActiveSearch(t *testing.T) {
	e := engine.New(context.Background(), "cortado", "test")
	in := make(chan string, 10)
	d, out := uci.NewDriver(context.Background(), e, in)
	defer d.Close()

	collectUntil(t, out, "uciok", time.Second)

	in <- "position startpos"
	in <- "go infinite"
	time.Sleep(50 * time.Millisecond)
	in <- "stop"

	lines := collectUntil(t, out, "bestmove", 5*time.Second)
	require.True(t, strings.HasPrefix(lines[len(lines)-1], "bestmove "))
}

func TestUCISetOptionHash(t *testing.T) {
	e := engine.New(context.Background(), "cortado", "test")
	in := make(chan string, 10)
	d, out := uci.NewDriver(context.Background(), e, in)
	defer d.Close()

	collectUntil(t, out, "uciok", time.Second)

	in <- "setoption name Hash value 16"
	in <- "isready"

	collectUntil(t, out, "readyok", time.Second)
	require.EqualValues(t, 16, e.Options().Hash)
}

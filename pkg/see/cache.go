package see

import "github.com/cortadochess/cortado/pkg/board"

// maxCacheEntries bounds the cache at roughly 10^5 entries; it is cleared in full on overflow
// rather than evicted entry-by-entry, since SEE values are cheap enough to recompute and the
// position hash changes on essentially every call anyway.
const maxCacheEntries = 131072

type cacheKey struct {
	hash board.ZobristHash
	move board.Move
}

// Cache memoizes Evaluate results keyed by (position hash, move) within a single search.
// Not safe for concurrent use.
type Cache struct {
	m map[cacheKey]board.Score
}

func NewCache() *Cache {
	return &Cache{m: make(map[cacheKey]board.Score, 1024)}
}

// Evaluate returns the cached SEE value for the move against hash, computing and storing it
// if absent.
func (c *Cache) Evaluate(pos *board.Position, hash board.ZobristHash, turn board.Color, m board.Move) board.Score {
	key := cacheKey{hash: hash, move: m}
	if v, ok := c.m[key]; ok {
		return v
	}

	v := Evaluate(pos, turn, m)
	if len(c.m) >= maxCacheEntries {
		c.m = make(map[cacheKey]board.Score, 1024)
	}
	c.m[key] = v
	return v
}

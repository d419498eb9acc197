// Package pushid generates unique child keys whose lexical order matches
// their generation order.
package pushid

import (
	"math/rand/v2"
	"sync"
	"time"
)

// alphabet has 64 symbols whose ASCII order equals their numeric order, so
// base-64 encoded timestamps compare correctly as strings.
const alphabet = "-0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ_abcdefghijklmnopqrstuvwxyz"

const (
	timestampLen = 8
	suffixLen    = 12
	keyLen       = timestampLen + suffixLen
)

// Generator produces 20-character keys: 8 characters of millisecond
// timestamp followed by 12 random characters. Keys minted in the same
// millisecond reuse the previous random suffix incremented by one, so order
// is preserved even then. Safe for concurrent use.
type Generator struct {
	now func() time.Time

	mu     sync.Mutex
	lastMs int64
	suffix [suffixLen]int
}

// New creates a Generator using the given clock; a nil clock means
// time.Now.
func New(now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{now: now, lastMs: -1}
}

// Next returns a fresh key.
func (g *Generator) Next() string {
	ms := g.now().UnixMilli()

	g.mu.Lock()
	defer g.mu.Unlock()

	if ms == g.lastMs {
		g.increment()
	} else {
		g.lastMs = ms
		for i := range g.suffix {
			g.suffix[i] = rand.IntN(64)
		}
	}

	var buf [keyLen]byte
	rest := ms
	for i := timestampLen - 1; i >= 0; i-- {
		buf[i] = alphabet[rest%64]
		rest /= 64
	}
	for i, v := range g.suffix {
		buf[timestampLen+i] = alphabet[v]
	}
	return string(buf[:])
}

// increment bumps the random suffix by one, carrying leftwards. Overflow of
// the whole suffix within a single millisecond would need 64^12 keys; the
// wraparound is accepted.
func (g *Generator) increment() {
	for i := suffixLen - 1; i >= 0; i-- {
		g.suffix[i]++
		if g.suffix[i] < 64 {
			return
		}
		g.suffix[i] = 0
	}
}

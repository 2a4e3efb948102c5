// Package randutil centralises how deterministic random sources are seeded.
package randutil

import (
	"encoding/binary"
	"io"
	rand "math/rand/v2"
)

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a *rand.Rand seeded deterministically from seed. Dealers,
// equity workers and id generators all derive their PCG state here so
// that a configured seed reproduces a whole drill.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Derive folds parts into a single seed. The result depends on the order
// of parts, so callers wanting order independence must canonicalise first.
func Derive(parts ...uint64) int64 {
	h := uint64(goldenRatio64)
	for _, p := range parts {
		h = mix(h ^ (p + goldenRatio64 + h<<6 + h>>2))
	}
	return int64(h)
}

// Stream returns the i-th independent generator for a seed, used to give
// parallel workers disjoint sequences.
func Stream(seed int64, i int) *rand.Rand {
	return New(Derive(uint64(seed), uint64(i)))
}

// Reader adapts r to an io.Reader, for consumers such as id generators
// that take their entropy as a byte stream.
func Reader(r *rand.Rand) io.Reader {
	return &reader{r: r}
}

type reader struct {
	r *rand.Rand
}

func (rd *reader) Read(p []byte) (int, error) {
	var buf [8]byte
	for i := 0; i < len(p); i += 8 {
		binary.LittleEndian.PutUint64(buf[:], rd.r.Uint64())
		copy(p[i:], buf[:])
	}
	return len(p), nil
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

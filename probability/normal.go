// Package probability provides the standard normal distribution used by the
// pricing models: its cumulative distribution function and independent
// random streams of N(0,1) draws.
package probability

import (
	crand "crypto/rand"
	"encoding/binary"
	"sync"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Sampler produces draws from the standard normal distribution.
type Sampler interface {
	Sample() float64
}

// CDF returns Φ(x), the standard normal cumulative distribution function.
func CDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

// PDF returns the standard normal density at x.
func PDF(x float64) float64 {
	return distuv.UnitNormal.Prob(x)
}

// Quantile returns the inverse of CDF for p in (0, 1).
func Quantile(p float64) float64 {
	return distuv.UnitNormal.Quantile(p)
}

// Normal is a standard normal sampler backed by its own PCG stream.
// It is not safe for concurrent use; give each goroutine its own Normal.
type Normal struct {
	rng *rand.Rand
}

// NewNormal returns a sampler whose stream is fully determined by seed.
func NewNormal(seed uint64) *Normal {
	return &Normal{rng: rand.New(rand.NewSource(seed))}
}

// NewAmbientNormal returns a sampler seeded from operating system entropy, so
// separate processes draw different streams.
func NewAmbientNormal() *Normal {
	return NewNormal(ambientSeed())
}

func ambientSeed() uint64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return StreamSeed(uint64(time.Now().UnixNano()), 0)
	}
	return binary.LittleEndian.Uint64(b[:])
}

// Sample returns one draw from N(0,1).
func (n *Normal) Sample() float64 {
	return n.rng.NormFloat64()
}

// StreamSeed derives the seed of the index-th independent stream from a base
// seed. Neighbouring indices map to unrelated seeds (splitmix64 finalizer).
func StreamSeed(seed uint64, index int) uint64 {
	z := seed + uint64(index+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

var normalPool = sync.Pool{
	New: func() interface{} {
		return NewAmbientNormal()
	},
}

// Borrow takes an ambient sampler from a shared pool. Return it with Release
// once the calling goroutine is done drawing from it.
func Borrow() *Normal {
	return normalPool.Get().(*Normal)
}

// Release hands a sampler obtained from Borrow back to the pool.
func Release(n *Normal) {
	normalPool.Put(n)
}

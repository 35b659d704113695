package main

import (
	"math/rand"
	"time"
)

// Randomizer is the pseudo-random source threaded through every generator that needs randomness.
// It is not safe for concurrent use; give each goroutine its own.
type Randomizer struct {
	rnd *rand.Rand
}

// NewRandomizer initializes a new Randomizer seeded with seed.
func NewRandomizer(seed int64) *Randomizer {
	return &Randomizer{
		rnd: rand.New(rand.NewSource(seed)),
	}
}

// NewTimeSeededRandomizer seeds from the wall clock, for callers that do not need reproducibility.
func NewTimeSeededRandomizer() *Randomizer {
	return NewRandomizer(time.Now().UnixNano())
}

// RandomInt63 returns a non-negative pseudo-random 63-bit integer as an int64
func (r *Randomizer) RandomInt63() int64 {
	return r.rnd.Int63()
}

// RandomIntn returns a non-negative pseudo-random int in [0,n)
func (r *Randomizer) RandomIntn(n int) int {
	return r.rnd.Intn(n)
}

// RandomInt63n returns a non-negative pseudo-random int64 in [0,n)
func (r *Randomizer) RandomInt63n(n int64) int64 {
	return r.rnd.Int63n(n)
}

// RandomFloat64 returns a pseudo-random float64 in [0.0,1.0)
func (r *Randomizer) RandomFloat64() float64 {
	return r.rnd.Float64()
}

// Chance reports true with probability 1-1/n: the draw in [0,n) is non-zero.
func (r *Randomizer) Chance(n int) bool {
	return r.rnd.Intn(n) != 0
}

// Choice picks one element of list.
func (r *Randomizer) Choice(list []string) string {
	return list[r.rnd.Intn(len(list))]
}

// Read fills p with pseudo-random bytes, so the Randomizer can feed io.Reader consumers.
func (r *Randomizer) Read(p []byte) (int, error) {
	return r.rnd.Read(p)
}

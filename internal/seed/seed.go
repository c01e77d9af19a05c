// Package seed derives deterministic pseudo-random streams from stable
// repository identity strings. The same identity always yields the same draw
// sequence, across processes and platforms. No ambient entropy (clock, memory
// addresses, goroutine ids) is ever consulted: that property is what makes
// "same repo, same world" hold.
package seed

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand"
)

// Stream is a deterministic pseudo-random sequence keyed by an identity
// string. Streams are not safe for concurrent use; derive one per goroutine.
type Stream struct {
	identity string
	rng      *rand.Rand
}

// Derive creates a stream seeded from the SHA-256 of the identity string.
// math/rand's source is specified and platform-independent, so two processes
// deriving the same identity produce bit-identical draws.
func Derive(identity string) *Stream {
	sum := sha256.Sum256([]byte(identity))
	s := int64(binary.BigEndian.Uint64(sum[:8]) &^ (1 << 63))
	return &Stream{
		identity: identity,
		rng:      rand.New(rand.NewSource(s)),
	}
}

// Sub derives an independent child stream labeled by a stable key. Child
// streams decouple consumers from each other: drawing more values for one
// room can never shift the draws another room sees.
func (s *Stream) Sub(label string) *Stream {
	return Derive(s.identity + ":" + label)
}

// Intn returns a draw in [0, n). n must be positive.
func (s *Stream) Intn(n int) int {
	return s.rng.Intn(n)
}

// IntRange returns a draw in [lo, hi] inclusive.
func (s *Stream) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.rng.Intn(hi-lo+1)
}

// Float64 returns a draw in [0.0, 1.0).
func (s *Stream) Float64() float64 {
	return s.rng.Float64()
}

// Pick returns one element of choices, or "" if choices is empty.
func (s *Stream) Pick(choices []string) string {
	if len(choices) == 0 {
		return ""
	}
	return choices[s.rng.Intn(len(choices))]
}

// WeightedPick returns an index into weights chosen proportionally to the
// weight values. Non-positive weights are never selected. Returns -1 if no
// weight is positive.
func (s *Stream) WeightedPick(weights []int) int {
	total := 0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}
	roll := s.rng.Intn(total)
	cumulative := 0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		cumulative += w
		if roll < cumulative {
			return i
		}
	}
	return -1
}

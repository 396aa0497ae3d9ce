// Package hcsrand provides the seeded randomness source used by the
// cryptosystem packages. A Rand is a deterministic SHAKE256 stream keyed
// with 256 bits of operating system entropy, exposed as an io.Reader so
// it plugs directly into crypto/rand.Int, crypto/rand.Prime and the
// encryption entry points of the scheme packages.
//
// A Rand is not safe for concurrent use. Callers running encryptions in
// parallel should give each goroutine its own instance.
package hcsrand

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// SeedSize is the seed length in bytes absorbed on construction.
const SeedSize = 32

// Rand is a seeded pseudorandom generator. It implements io.Reader.
type Rand struct {
	state sha3.ShakeHash
}

// New returns a Rand seeded with SeedSize bytes from the operating
// system entropy source.
func New() (*Rand, error) {
	seed := make([]byte, SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("cannot read OS entropy: %w", err)
	}
	return NewSeeded(seed), nil
}

// NewSeeded returns a Rand deterministically seeded with the given
// bytes. Two instances built from the same seed produce identical
// streams. Intended for tests; production callers should use New.
func NewSeeded(seed []byte) *Rand {
	state := sha3.NewShake256()
	state.Write(seed)
	return &Rand{state: state}
}

// Read fills p with pseudorandom bytes. It never returns a short read.
func (r *Rand) Read(p []byte) (int, error) {
	return r.state.Read(p)
}

// Reseed folds SeedSize bytes of fresh OS entropy into the generator
// state. The previous state still contributes, so a reseed never
// reduces the entropy of the stream.
func (r *Rand) Reseed() error {
	carry := make([]byte, SeedSize)
	if _, err := r.state.Read(carry); err != nil {
		return err
	}
	seed := make([]byte, SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return fmt.Errorf("cannot read OS entropy: %w", err)
	}
	state := sha3.NewShake256()
	state.Write(carry)
	state.Write(seed)
	r.state = state
	return nil
}

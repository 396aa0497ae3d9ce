// Package primes generates the random primes and safe primes required
// for key generation in the Paillier family of cryptosystems.
package primes

import (
	"fmt"
	"io"
	"math/big"
)

// MillerRabinRounds is the round count passed to ProbablyPrime. 25
// rounds gives an error probability below 2^-50.
const MillerRabinRounds = 25

var two = big.NewInt(2)

// RandomPrime returns a random prime of at least bitLen bits. A uniform
// odd bitLen-bit integer is drawn and advanced to the next probable
// prime, so the result occasionally spills into bitLen+1 bits.
func RandomPrime(random io.Reader, bitLen int) (*big.Int, error) {
	if bitLen < 2 {
		return nil, fmt.Errorf("bitLen should be at least 2, but it is %d", bitLen)
	}

	buf := make([]byte, (bitLen+7)/8)
	if _, err := io.ReadFull(random, buf); err != nil {
		return nil, fmt.Errorf("cannot read random bytes: %w", err)
	}
	p := new(big.Int).SetBytes(buf)

	// Exactly bitLen bits, odd.
	excess := p.BitLen() - bitLen
	if excess > 0 {
		p.Rsh(p, uint(excess))
	}
	p.SetBit(p, bitLen-1, 1)
	p.SetBit(p, 0, 1)

	for !p.ProbablyPrime(MillerRabinRounds) {
		p.Add(p, two)
	}
	return p, nil
}

// RandomSafePrime returns a prime p of at least bitLen bits together
// with pPrime = (p-1)/2, both prime. Safe primes are rare, so the
// search resamples until one is found; expect dozens of trials at
// cryptographic sizes. There is deliberately no iteration cap: cutting
// the search short would bias the prime distribution.
func RandomSafePrime(random io.Reader, bitLen int) (p, pPrime *big.Int, err error) {
	pPrime = new(big.Int)
	for {
		p, err = RandomPrime(random, bitLen)
		if err != nil {
			return nil, nil, err
		}
		pPrime.Rsh(p, 1)
		if pPrime.ProbablyPrime(MillerRabinRounds) {
			return p, pPrime, nil
		}
	}
}

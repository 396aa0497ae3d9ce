// Package pcs implements the Paillier cryptosystem: an additively
// homomorphic public key scheme over Z_n for n a product of two large
// primes. Ciphertexts live in Z_{n^2} and support addition with other
// ciphertexts, addition of plaintext constants and multiplication by
// plaintext constants.
//
// Plaintext arguments may be negative; every operation reduces them
// mod n first, so a negative value behaves as its residue n - |value|.
package pcs

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/homcrypt/hcs/internal/numutil"
	"github.com/homcrypt/hcs/primes"
)

var one = big.NewInt(1)
var two = big.NewInt(2)

// ErrNotInvertible signals that a modular inverse required by key
// generation does not exist. A key pair that trips this is structurally
// invalid and must be regenerated.
var ErrNotInvertible = errors.New("required modular inverse does not exist")

// PublicKey allows encryption and homomorphic operation on ciphertexts.
// It is immutable after generation and safe for concurrent use.
type PublicKey struct {
	N  *big.Int
	G  *big.Int
	N2 *big.Int
}

// PrivateKey decrypts ciphertexts produced under its matching
// PublicKey. HP and HQ are CRT precomputations that let Decrypt work
// with two half-size exponentiations instead of one full-size one.
type PrivateKey struct {
	P, P2  *big.Int
	Q, Q2  *big.Int
	HP, HQ *big.Int
	Lambda *big.Int
	Mu     *big.Int
	N, N2  *big.Int
}

// GenerateKeyPair creates a Paillier key pair with a modulus of bitSize
// bits and the usual generator g = n + 1.
func GenerateKeyPair(random io.Reader, bitSize int) (pk *PublicKey, vk *PrivateKey, err error) {
	if bitSize < 64 {
		err = fmt.Errorf("bitSize should be at least 64 bits, but it is %d", bitSize)
		return
	}
	p, q, err := distinctPrimes(random, bitSize)
	if err != nil {
		return
	}
	n := new(big.Int).Mul(p, q)
	g := new(big.Int).Add(n, one)
	lambda := lcmOfPredecessors(p, q)

	mu := new(big.Int).ModInverse(lambda, n)
	if mu == nil {
		err = fmt.Errorf("%w: lambda mod n", ErrNotInvertible)
		return
	}
	return assembleKeyPair(p, q, n, g, lambda, mu)
}

// GenerateSmallGeneratorKeyPair creates a key pair using the small
// generator g = 2, which speeds up encryption by exponentiating a tiny
// base. The derived mu must be invertible mod n; when it is not, the
// candidate key is invalid and ErrNotInvertible is returned.
func GenerateSmallGeneratorKeyPair(random io.Reader, bitSize int) (pk *PublicKey, vk *PrivateKey, err error) {
	if bitSize < 64 {
		err = fmt.Errorf("bitSize should be at least 64 bits, but it is %d", bitSize)
		return
	}
	p, q, err := distinctPrimes(random, bitSize)
	if err != nil {
		return
	}
	n := new(big.Int).Mul(p, q)
	n2 := new(big.Int).Mul(n, n)
	g := big.NewInt(2)
	lambda := lcmOfPredecessors(p, q)

	gcd := new(big.Int).GCD(nil, nil, n2, two)
	if gcd.Cmp(one) != 0 {
		err = fmt.Errorf("%w: gcd(n^2, 2) != 1", ErrNotInvertible)
		return
	}

	// mu = L(g^lambda mod n^2)^-1 mod n
	mu := new(big.Int).Exp(g, lambda, n2)
	mu = numutil.L(mu, n)
	mu = new(big.Int).ModInverse(mu, n)
	if mu == nil {
		err = fmt.Errorf("%w: L(g^lambda) mod n", ErrNotInvertible)
		return
	}
	return assembleKeyPair(p, q, n, g, lambda, mu)
}

func distinctPrimes(random io.Reader, bitSize int) (p, q *big.Int, err error) {
	primeBits := 1 + (bitSize-1)/2
	for {
		p, err = primes.RandomPrime(random, primeBits)
		if err != nil {
			return
		}
		q, err = primes.RandomPrime(random, primeBits)
		if err != nil {
			return
		}
		if p.Cmp(q) != 0 {
			return
		}
	}
}

func lcmOfPredecessors(p, q *big.Int) *big.Int {
	pMinusOne := new(big.Int).Sub(p, one)
	qMinusOne := new(big.Int).Sub(q, one)
	gcd := new(big.Int).GCD(nil, nil, pMinusOne, qMinusOne)
	lambda := new(big.Int).Mul(pMinusOne, qMinusOne)
	return lambda.Div(lambda, gcd)
}

func assembleKeyPair(p, q, n, g, lambda, mu *big.Int) (pk *PublicKey, vk *PrivateKey, err error) {
	p2 := new(big.Int).Mul(p, p)
	q2 := new(big.Int).Mul(q, q)
	n2 := new(big.Int).Mul(n, n)

	hp, err := crtHelper(g, p, p2)
	if err != nil {
		return
	}
	hq, err := crtHelper(g, q, q2)
	if err != nil {
		return
	}

	pk = &PublicKey{N: n, G: g, N2: n2}
	vk = &PrivateKey{
		P: p, P2: p2,
		Q: q, Q2: q2,
		HP: hp, HQ: hq,
		Lambda: lambda,
		Mu:     mu,
		N:      new(big.Int).Set(n),
		N2:     new(big.Int).Set(n2),
	}
	return
}

// crtHelper computes L(g^(p-1) mod p^2)^-1 mod p.
func crtHelper(g, p, p2 *big.Int) (*big.Int, error) {
	h := new(big.Int).Sub(p, one)
	h.Exp(g, h, p2)
	h = numutil.L(h, p)
	h = new(big.Int).ModInverse(h, p)
	if h == nil {
		return nil, fmt.Errorf("%w: CRT decryption helper", ErrNotInvertible)
	}
	return h, nil
}

// Validate reports whether an imported public key is coherent: g must
// equal n + 1 and n2 must equal n^2. Keys built with the small
// generator fail this check by construction.
func (pk *PublicKey) Validate() bool {
	g := new(big.Int).Add(pk.N, one)
	if g.Cmp(pk.G) != 0 {
		return false
	}
	n2 := new(big.Int).Mul(pk.N, pk.N)
	return n2.Cmp(pk.N2) == 0
}

// Validate reports whether an imported private key is coherent: n2 must
// equal n^2 and mu must be the inverse of lambda mod n.
func (vk *PrivateKey) Validate() bool {
	n2 := new(big.Int).Mul(vk.N, vk.N)
	if n2.Cmp(vk.N2) != 0 {
		return false
	}
	mu := new(big.Int).ModInverse(vk.Lambda, vk.N)
	if mu == nil {
		return false
	}
	return mu.Cmp(vk.Mu) == 0
}

// Clear overwrites all private key material. The key is unusable
// afterwards.
func (vk *PrivateKey) Clear() {
	numutil.ZeroAll(vk.P, vk.P2, vk.Q, vk.Q2, vk.HP, vk.HQ,
		vk.Lambda, vk.Mu, vk.N, vk.N2)
}

// Package djcs implements the Damgard-Jurik cryptosystem, the
// generalization of Paillier to the modulus n^(s+1) for configurable
// s >= 1. Plaintexts live in Z_{n^s} and ciphertexts in Z_{n^(s+1)},
// so a single key can carry messages s times larger than a Paillier
// key with the same modulus. s = 1 is exactly Paillier.
//
// As in package pcs, plaintext arguments are reduced mod n^s before
// use, giving negative values a consistent wraparound.
package djcs

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/homcrypt/hcs/internal/numutil"
	"github.com/homcrypt/hcs/primes"
)

var one = big.NewInt(1)

// ErrNotInvertible signals that a modular inverse required by key
// generation does not exist.
var ErrNotInvertible = errors.New("required modular inverse does not exist")

// PublicKey allows encryption and homomorphic operation on ciphertexts.
// N holds the cached modulus powers: N[i] = n^(i+1) for i in [0, s].
type PublicKey struct {
	S int
	G *big.Int
	N []*big.Int
}

// PrivateKey decrypts ciphertexts produced under its matching
// PublicKey. D is lambda = lcm(p-1, q-1) and Mu the correction factor
// (dlog_s(g^d))^-1 mod n^s.
type PrivateKey struct {
	S  int
	D  *big.Int
	Mu *big.Int
	N  []*big.Int
}

// GenerateKeyPair creates a Damgard-Jurik key pair with modulus size
// bitSize and exponent parameter s.
func GenerateKeyPair(random io.Reader, s, bitSize int) (pk *PublicKey, vk *PrivateKey, err error) {
	if s < 1 {
		err = fmt.Errorf("s should be at least 1, but it is %d", s)
		return
	}
	if bitSize < 64 {
		err = fmt.Errorf("bitSize should be at least 64 bits, but it is %d", bitSize)
		return
	}

	primeBits := 1 + (bitSize-1)/2
	var p, q *big.Int
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
			break
		}
	}

	n := new(big.Int).Mul(p, q)
	powers := make([]*big.Int, s+1)
	powers[0] = n
	for i := 1; i <= s; i++ {
		powers[i] = new(big.Int).Mul(powers[i-1], n)
	}

	pMinusOne := new(big.Int).Sub(p, one)
	qMinusOne := new(big.Int).Sub(q, one)
	gcd := new(big.Int).GCD(nil, nil, pMinusOne, qMinusOne)
	d := new(big.Int).Mul(pMinusOne, qMinusOne)
	d.Div(d, gcd)

	pk = &PublicKey{
		S: s,
		G: new(big.Int).Add(n, one),
		N: powers,
	}
	vk = &PrivateKey{
		S: s,
		D: d,
		N: clonePowers(powers),
	}

	// mu = dlog_s(g^d mod n^(s+1))^-1 mod n^s
	mu := new(big.Int).Exp(pk.G, d, powers[s])
	mu = vk.dlogS(mu)
	mu = new(big.Int).ModInverse(mu, powers[s-1])
	if mu == nil {
		err = fmt.Errorf("%w: dlog_s(g^d) mod n^s", ErrNotInvertible)
		return nil, nil, err
	}
	vk.Mu = mu
	return
}

func clonePowers(powers []*big.Int) []*big.Int {
	out := make([]*big.Int, len(powers))
	for i, p := range powers {
		out[i] = new(big.Int).Set(p)
	}
	return out
}

// dlogS recovers m from op = (1+n)^m mod n^(s+1). It telescopes
// through the residue rings n^1 .. n^s, at each level subtracting the
// contributions of all lower levels with a factorial inverse
// correction.
func (vk *PrivateKey) dlogS(op *big.Int) *big.Int {
	s := vk.S

	// L(a mod n^(j+1)) = L(a mod n^(s+1)) mod n^j for j <= s, so the
	// full L value is computed once and reduced per level.
	a := new(big.Int).Mod(op, vk.N[s])
	a.Sub(a, one)
	a.Div(a, vk.N[0])

	m := new(big.Int)
	t2 := new(big.Int)
	t3 := new(big.Int)
	kfact := new(big.Int)
	for j := 1; j <= s; j++ {
		nj := vk.N[j-1]
		t1 := new(big.Int).Mod(a, nj)

		t2.Set(m)
		kfact.SetInt64(1)
		for k := int64(2); k <= int64(j); k++ {
			m.Sub(m, one)
			kfact.Mul(kfact, big.NewInt(k))

			t2.Mul(t2, m)
			t2.Mod(t2, nj)

			t3.ModInverse(kfact, nj)
			t3.Mul(t3, t2)
			t3.Mod(t3, nj)
			t3.Mul(t3, vk.N[k-2])
			t3.Mod(t3, nj)

			t1.Sub(t1, t3)
			t1.Mod(t1, nj)
		}
		m.Set(t1)
	}
	return m
}

// Clear overwrites all private key material.
func (vk *PrivateKey) Clear() {
	numutil.ZeroAll(vk.D, vk.Mu)
	numutil.ZeroAll(vk.N...)
}

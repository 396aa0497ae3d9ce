// Package tpcs implements the threshold variant of the Paillier
// cryptosystem. The decryption capability is split across l
// authorization servers so that any w of them can jointly decrypt a
// ciphertext while fewer than w learn nothing. Shares are evaluations
// of a secret polynomial over Z_nm and are combined with Lagrange
// interpolation in the exponent, so the private key is never
// reconstructed.
//
// The usual flow is GenerateKey, which deals one AuthServer per party
// and returns the shared public key. The dealer-side sub-protocol
// (PrivateKey, Polynomial, AuthServer.Set) is also exported for
// deployments where share distribution is driven externally.
package tpcs

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/homcrypt/hcs/internal/numutil"
	"github.com/homcrypt/hcs/primes"
)

var zero = big.NewInt(0)
var one = big.NewInt(1)
var two = big.NewInt(2)
var four = big.NewInt(4)

// ErrInsufficientShares is returned by CombineShares when fewer than w
// distinct shares are supplied. Combining an undersized quorum would
// silently produce garbage, so it is rejected instead.
var ErrInsufficientShares = errors.New("not enough decryption shares")

// ErrNotInvertible signals a structurally invalid key: a modular
// inverse required by the scheme does not exist.
var ErrNotInvertible = errors.New("required modular inverse does not exist")

// PublicKey is the shared key of a threshold deployment. It is used
// for encryption, for homomorphic operations, for verifying partial
// decryptions and for combining them. Immutable after dealing and safe
// for concurrent use.
type PublicKey struct {
	N  *big.Int
	G  *big.Int
	N2 *big.Int

	// Delta is l! and Constant is (4*Delta^2)^-1 mod n, the factor
	// cancelling the share doubling and Lagrange scaling on combine.
	Delta    *big.Int
	Constant *big.Int

	// V generates the squares of Z_{n^2}* and Vi[i] = V^(Delta*s_i)
	// is server i's verification value for its decryption proofs.
	V  *big.Int
	Vi []*big.Int

	L, W uint8
}

// PrivateKey is the dealer's transient key material. It exists only
// between key generation and share distribution; once every server has
// received its share the dealer must call Clear.
type PrivateKey struct {
	N, N2 *big.Int
	M     *big.Int
	NM    *big.Int
	D     *big.Int
	L, W  uint8
}

// GenerateKeyPair creates the threshold key material for l servers
// with threshold w, using safe primes of half the modulus size. The
// returned private key only serves to deal shares and must be cleared
// once dealing is done.
func GenerateKeyPair(random io.Reader, bitSize int, w, l uint8) (pk *PublicKey, vk *PrivateKey, err error) {
	if bitSize < 64 {
		err = fmt.Errorf("bitSize should be at least 64 bits, but it is %d", bitSize)
		return
	}
	if l <= 1 {
		err = fmt.Errorf("l should be greater than 1, but it is %d", l)
		return
	}
	if w < l/2+1 || w > l {
		err = fmt.Errorf("w should be between %d and %d, but it is %d", l/2+1, l, w)
		return
	}

	primeBits := 1 + (bitSize-1)/2
	p, p1, err := primes.RandomSafePrime(random, primeBits)
	if err != nil {
		return
	}
	var q, q1 *big.Int
	for {
		q, q1, err = primes.RandomSafePrime(random, primeBits)
		if err != nil {
			return
		}
		if p.Cmp(q) != 0 && p.Cmp(q1) != 0 && q.Cmp(p1) != 0 {
			break
		}
	}

	n := new(big.Int).Mul(p, q)
	n2 := new(big.Int).Mul(n, n)
	m := new(big.Int).Mul(p1, q1)
	nm := new(big.Int).Mul(n, m)

	// d = 1 mod n and d = 0 mod m; the shared decryption exponent.
	d := numutil.TwoCRT(one, n, zero, m)
	if d == nil {
		err = fmt.Errorf("%w: n and m are not coprime", ErrNotInvertible)
		return
	}

	delta := new(big.Int).MulRange(1, int64(l))
	constant := new(big.Int).Mul(delta, delta)
	constant.Mul(constant, four)
	constant = new(big.Int).ModInverse(constant, n)
	if constant == nil {
		err = fmt.Errorf("%w: 4*delta^2 mod n", ErrNotInvertible)
		return
	}

	// Verification base: a random square, which generates the squares
	// of Z_{n^2}* with overwhelming probability for safe prime n.
	r, err := numutil.RandomInMultGroup(random, n)
	if err != nil {
		return
	}
	v := new(big.Int).Mul(r, r)
	v.Mod(v, n2)

	pk = &PublicKey{
		N:        n,
		G:        new(big.Int).Add(n, one),
		N2:       n2,
		Delta:    delta,
		Constant: constant,
		V:        v,
		Vi:       make([]*big.Int, l),
		L:        l,
		W:        w,
	}
	vk = &PrivateKey{
		N:  new(big.Int).Set(n),
		N2: new(big.Int).Set(n2),
		M:  m,
		NM: nm,
		D:  d,
		L:  l,
		W:  w,
	}
	return
}

// GenerateKey runs the whole dealer protocol: key generation, share
// polynomial, one AuthServer per party, verification values, and
// destruction of the polynomial and private key.
func GenerateKey(random io.Reader, bitSize int, w, l uint8) (servers []*AuthServer, pk *PublicKey, err error) {
	pk, vk, err := GenerateKeyPair(random, bitSize, w, l)
	if err != nil {
		return
	}
	defer vk.Clear()

	poly, err := vk.NewPolynomial(random)
	if err != nil {
		return
	}
	defer poly.Destroy()

	servers = make([]*AuthServer, l)
	var i uint8
	for i = 0; i < l; i++ {
		si := poly.Evaluate(i)
		au := NewAuthServer(pk)
		au.Set(si, i)
		servers[i] = au

		deltaSi := new(big.Int).Mul(pk.Delta, si)
		pk.Vi[i] = new(big.Int).Exp(pk.V, deltaSi, pk.N2)
		numutil.ZeroAll(si, deltaSi)
	}
	return
}

// Clear overwrites the dealer's private key material. Must be called
// once all shares are distributed.
func (vk *PrivateKey) Clear() {
	numutil.ZeroAll(vk.N, vk.N2, vk.M, vk.NM, vk.D)
}

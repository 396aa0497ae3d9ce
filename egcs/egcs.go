// Package egcs implements multiplicative El-Gamal over Z_q* for a
// random prime q. It shares the randomness and prime generation
// substrate with the Paillier family but is otherwise a much simpler
// scheme: the product of two ciphertexts decrypts to the product of
// the plaintexts.
package egcs

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/homcrypt/hcs/internal/numutil"
	"github.com/homcrypt/hcs/primes"
)

var one = big.NewInt(1)

// PublicKey holds the group prime q, a generator g and h = g^x.
type PublicKey struct {
	Q, G, H *big.Int
}

// PrivateKey holds the secret exponent x.
type PrivateKey struct {
	Q, X *big.Int
}

// Cipher is an El-Gamal ciphertext pair.
type Cipher struct {
	C1, C2 *big.Int
}

// GenerateKeyPair creates an El-Gamal key pair over a random prime of
// at least bitSize bits.
func GenerateKeyPair(random io.Reader, bitSize int) (pk *PublicKey, vk *PrivateKey, err error) {
	if bitSize < 64 {
		err = fmt.Errorf("bitSize should be at least 64 bits, but it is %d", bitSize)
		return
	}
	q, err := primes.RandomPrime(random, bitSize)
	if err != nil {
		return
	}
	g, err := randomNonZero(random, q)
	if err != nil {
		return
	}
	x, err := randomNonZero(random, q)
	if err != nil {
		return
	}
	h := new(big.Int).Exp(g, x, q)

	pk = &PublicKey{Q: q, G: g, H: h}
	vk = &PrivateKey{Q: new(big.Int).Set(q), X: x}
	return
}

// randomNonZero returns a uniform element of [1, q-1].
func randomNonZero(random io.Reader, q *big.Int) (*big.Int, error) {
	bound := new(big.Int).Sub(q, one)
	r, err := rand.Int(random, bound)
	if err != nil {
		return nil, err
	}
	return r.Add(r, one), nil
}

// Encrypt encrypts m with a fresh ephemeral exponent.
func (pk *PublicKey) Encrypt(random io.Reader, m *big.Int) (ct *Cipher, err error) {
	r, err := randomNonZero(random, pk.Q)
	if err != nil {
		return
	}
	c1 := new(big.Int).Exp(pk.G, r, pk.Q)
	c2 := new(big.Int).Exp(pk.H, r, pk.Q)
	c2.Mul(c2, m)
	c2.Mod(c2, pk.Q)
	ct = &Cipher{C1: c1, C2: c2}
	return
}

// EEMul returns a ciphertext of the product of the plaintexts of a
// and b.
func (pk *PublicKey) EEMul(a, b *Cipher) *Cipher {
	c1 := new(big.Int).Mul(a.C1, b.C1)
	c1.Mod(c1, pk.Q)
	c2 := new(big.Int).Mul(a.C2, b.C2)
	c2.Mod(c2, pk.Q)
	return &Cipher{C1: c1, C2: c2}
}

// Decrypt recovers the plaintext: c2 * c1^(q-1-x), using the positive
// exponent form of c1^(-x) by Fermat.
func (vk *PrivateKey) Decrypt(ct *Cipher) *big.Int {
	exp := new(big.Int).Sub(vk.Q, one)
	exp.Sub(exp, vk.X)
	m := new(big.Int).Exp(ct.C1, exp, vk.Q)
	m.Mul(m, ct.C2)
	m.Mod(m, vk.Q)
	return m
}

// Clear overwrites the secret exponent.
func (vk *PrivateKey) Clear() {
	numutil.ZeroAll(vk.X, vk.Q)
}

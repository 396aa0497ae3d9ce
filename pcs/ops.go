package pcs

import (
	"fmt"
	"io"
	"math/big"

	"github.com/homcrypt/hcs/internal/numutil"
)

// Encrypt encrypts m under pk using a fresh blinding factor drawn from
// random. m is reduced mod n.
func (pk *PublicKey) Encrypt(random io.Reader, m *big.Int) (c *big.Int, err error) {
	r, err := numutil.RandomInMultGroup(random, pk.N)
	if err != nil {
		return
	}
	return pk.EncryptFixed(m, r)
}

// EncryptFixed encrypts m with the caller-supplied blinding factor r,
// which must be coprime to n. Deterministic; used by proof protocols
// and tests that need to reproduce a ciphertext.
func (pk *PublicKey) EncryptFixed(m, r *big.Int) (c *big.Int, err error) {
	gcd := new(big.Int).GCD(nil, nil, r, pk.N)
	if gcd.Cmp(one) != 0 {
		err = fmt.Errorf("blinding factor must be coprime to n")
		return
	}
	mReduced := new(big.Int).Mod(m, pk.N)
	rToN := new(big.Int).Exp(r, pk.N, pk.N2)
	c = new(big.Int).Exp(pk.G, mReduced, pk.N2)
	c.Mul(c, rToN)
	c.Mod(c, pk.N2)
	return
}

// Reencrypt multiplies c by a fresh encryption of zero. The result
// decrypts to the same plaintext but is unlinkable to c.
func (pk *PublicKey) Reencrypt(random io.Reader, c *big.Int) (cPrime *big.Int, err error) {
	r, err := numutil.RandomInMultGroup(random, pk.N)
	if err != nil {
		return
	}
	rToN := new(big.Int).Exp(r, pk.N, pk.N2)
	cPrime = new(big.Int).Mul(c, rToN)
	cPrime.Mod(cPrime, pk.N2)
	return
}

// EPAdd returns a ciphertext of the plaintext of c plus m. m may be
// negative.
func (pk *PublicKey) EPAdd(c, m *big.Int) *big.Int {
	mReduced := new(big.Int).Mod(m, pk.N)
	sum := new(big.Int).Exp(pk.G, mReduced, pk.N2)
	sum.Mul(sum, c)
	sum.Mod(sum, pk.N2)
	return sum
}

// EEAdd returns a ciphertext of the sum of the plaintexts of c1 and c2.
func (pk *PublicKey) EEAdd(c1, c2 *big.Int) *big.Int {
	sum := new(big.Int).Mul(c1, c2)
	sum.Mod(sum, pk.N2)
	return sum
}

// EPMul returns a ciphertext of the plaintext of c multiplied by m.
func (pk *PublicKey) EPMul(c, m *big.Int) *big.Int {
	mReduced := new(big.Int).Mod(m, pk.N)
	return new(big.Int).Exp(c, mReduced, pk.N2)
}

// Decrypt recovers the plaintext of c. The discrete log is extracted
// separately mod p and mod q with the precomputed helpers, then the two
// halves are recombined with the Chinese remainder theorem.
func (vk *PrivateKey) Decrypt(c *big.Int) *big.Int {
	// Component mod p
	mp := new(big.Int).Sub(vk.P, one)
	mp.Exp(c, mp, vk.P2)
	mp = numutil.L(mp, vk.P)
	mp.Mul(mp, vk.HP)
	mp.Mod(mp, vk.P)

	// Component mod q
	mq := new(big.Int).Sub(vk.Q, one)
	mq.Exp(c, mq, vk.Q2)
	mq = numutil.L(mq, vk.Q)
	mq.Mul(mq, vk.HQ)
	mq.Mod(mq, vk.Q)

	m := numutil.TwoCRT(mp, vk.P, mq, vk.Q)
	return m.Mod(m, vk.N)
}

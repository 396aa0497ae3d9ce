package djcs

import (
	"fmt"
	"io"
	"math/big"

	"github.com/homcrypt/hcs/internal/numutil"
)

// Encrypt encrypts m under pk with a fresh blinding factor drawn from
// random. m is reduced mod n^s.
func (pk *PublicKey) Encrypt(random io.Reader, m *big.Int) (c *big.Int, err error) {
	r, err := numutil.RandomInMultGroup(random, pk.N[0])
	if err != nil {
		return
	}
	return pk.EncryptFixed(m, r)
}

// EncryptFixed encrypts m with the caller-supplied blinding factor r,
// which must be coprime to n.
func (pk *PublicKey) EncryptFixed(m, r *big.Int) (c *big.Int, err error) {
	gcd := new(big.Int).GCD(nil, nil, r, pk.N[0])
	if gcd.Cmp(one) != 0 {
		err = fmt.Errorf("blinding factor must be coprime to n")
		return
	}
	s := pk.S
	mReduced := new(big.Int).Mod(m, pk.N[s-1])
	c = new(big.Int).Exp(pk.G, mReduced, pk.N[s])
	rToNS := new(big.Int).Exp(r, pk.N[s-1], pk.N[s])
	c.Mul(c, rToNS)
	c.Mod(c, pk.N[s])
	return
}

// Reencrypt multiplies c by a fresh encryption of zero.
func (pk *PublicKey) Reencrypt(random io.Reader, c *big.Int) (cPrime *big.Int, err error) {
	r, err := numutil.RandomInMultGroup(random, pk.N[0])
	if err != nil {
		return
	}
	s := pk.S
	rToNS := new(big.Int).Exp(r, pk.N[s-1], pk.N[s])
	cPrime = new(big.Int).Mul(c, rToNS)
	cPrime.Mod(cPrime, pk.N[s])
	return
}

// EPAdd returns a ciphertext of the plaintext of c plus m.
func (pk *PublicKey) EPAdd(c, m *big.Int) *big.Int {
	s := pk.S
	mReduced := new(big.Int).Mod(m, pk.N[s-1])
	sum := new(big.Int).Exp(pk.G, mReduced, pk.N[s])
	sum.Mul(sum, c)
	sum.Mod(sum, pk.N[s])
	return sum
}

// EEAdd returns a ciphertext of the sum of the plaintexts of c1 and c2.
func (pk *PublicKey) EEAdd(c1, c2 *big.Int) *big.Int {
	sum := new(big.Int).Mul(c1, c2)
	sum.Mod(sum, pk.N[pk.S])
	return sum
}

// EPMul returns a ciphertext of the plaintext of c multiplied by m.
func (pk *PublicKey) EPMul(c, m *big.Int) *big.Int {
	s := pk.S
	mReduced := new(big.Int).Mod(m, pk.N[s-1])
	return new(big.Int).Exp(c, mReduced, pk.N[s])
}

// Decrypt recovers the plaintext of c.
func (vk *PrivateKey) Decrypt(c *big.Int) *big.Int {
	s := vk.S
	m := new(big.Int).Exp(c, vk.D, vk.N[s])
	m = vk.dlogS(m)
	m.Mul(m, vk.Mu)
	m.Mod(m, vk.N[s-1])
	return m
}

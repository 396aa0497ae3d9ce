package tpcs

import (
	"fmt"
	"io"
	"math/big"

	"github.com/homcrypt/hcs/internal/numutil"
)

// Encrypt encrypts m under pk with a fresh blinding factor drawn from
// random. m is reduced mod n, so negative values wrap to n - |m|.
func (pk *PublicKey) Encrypt(random io.Reader, m *big.Int) (c *big.Int, err error) {
	r, err := numutil.RandomInMultGroup(random, pk.N)
	if err != nil {
		return
	}
	return pk.EncryptFixed(m, r)
}

// EncryptFixed encrypts m with the caller-supplied blinding factor r,
// which must be coprime to n.
func (pk *PublicKey) EncryptFixed(m, r *big.Int) (c *big.Int, err error) {
	gcd := new(big.Int).GCD(nil, nil, r, pk.N)
	if gcd.Cmp(one) != 0 {
		err = fmt.Errorf("blinding factor must be coprime to n")
		return
	}
	mReduced := new(big.Int).Mod(m, pk.N)
	c = new(big.Int).Exp(pk.G, mReduced, pk.N2)
	rToN := new(big.Int).Exp(r, pk.N, pk.N2)
	c.Mul(c, rToN)
	c.Mod(c, pk.N2)
	return
}

// EncryptWithProof encrypts m and attaches a zero knowledge proof that
// the producer knows the plaintext of the returned ciphertext.
func (pk *PublicKey) EncryptWithProof(random io.Reader, m *big.Int) (c *big.Int, zk *EncryptZK, err error) {
	r, err := numutil.RandomInMultGroup(random, pk.N)
	if err != nil {
		return
	}
	c, err = pk.EncryptFixed(m, r)
	if err != nil {
		return
	}
	zk, err = pk.encryptionProof(random, m, r, c)
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

// EEAdd returns a ciphertext of the sum of the plaintexts of the given
// ciphertexts.
func (pk *PublicKey) EEAdd(cList ...*big.Int) *big.Int {
	sum := new(big.Int).Set(one)
	for _, c := range cList {
		sum.Mul(sum, c)
		sum.Mod(sum, pk.N2)
	}
	return sum
}

// EPMul returns a ciphertext of the plaintext of c multiplied by m.
func (pk *PublicKey) EPMul(c, m *big.Int) *big.Int {
	mReduced := new(big.Int).Mod(m, pk.N)
	return new(big.Int).Exp(c, mReduced, pk.N2)
}

package tpcs

import (
	"fmt"
	"io"
	"math/big"
)

// AuthServer is one of the l authorization servers holding a share of
// the decryption capability. It never holds the private key, only the
// polynomial evaluation Si for its index.
type AuthServer struct {
	*PublicKey
	Index uint8
	Si    *big.Int
}

// DecryptionShare is one server's partial decryption of a ciphertext.
type DecryptionShare struct {
	Index uint8
	Ci    *big.Int
}

// NewAuthServer returns an empty server bound to pk. Its share is
// installed with Set.
func NewAuthServer(pk *PublicKey) *AuthServer {
	return &AuthServer{PublicKey: pk}
}

// Set installs the secret share for the 0-indexed server i. The index
// is stored 1-indexed, matching the polynomial evaluation points.
func (au *AuthServer) Set(si *big.Int, i uint8) {
	au.Si = new(big.Int).Set(si)
	au.Index = i + 1
}

// PartialDecrypt computes this server's share of the decryption of c:
// c^(2*delta*si) mod n^2. The doubling matches the factor cancelled by
// Constant at combination time.
func (au *AuthServer) PartialDecrypt(c *big.Int) (ds *DecryptionShare, err error) {
	if c.Cmp(zero) < 0 || c.Cmp(au.N2) >= 0 {
		err = fmt.Errorf("c must be between 0 (inclusive) and n^2 (exclusive)")
		return
	}
	if au.Si == nil {
		err = fmt.Errorf("server %d has no share set", au.Index)
		return
	}
	exp := new(big.Int).Mul(two, au.Delta)
	exp.Mul(exp, au.Si)
	ds = &DecryptionShare{
		Index: au.Index,
		Ci:    new(big.Int).Exp(c, exp, au.N2),
	}
	return
}

// PartialDecryptWithProof computes the partial decryption together
// with a zero knowledge proof of its correctness.
func (au *AuthServer) PartialDecryptWithProof(random io.Reader, c *big.Int) (ds *DecryptionShare, zk *DecryptShareZK, err error) {
	ds, err = au.PartialDecrypt(c)
	if err != nil {
		return
	}
	zk, err = au.partialDecryptProof(random, c, ds)
	return
}

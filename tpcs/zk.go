package tpcs

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"math/big"

	"golang.org/x/crypto/sha3"

	"github.com/homcrypt/hcs/internal/numutil"
)

// challengeBytes is the size of a Fiat-Shamir challenge.
const challengeBytes = 32

// challenge derives a Fiat-Shamir challenge from the transcript
// values. Each value is length-prefixed before absorption so distinct
// transcripts cannot collide by concatenation.
func challenge(values ...*big.Int) *big.Int {
	h := sha3.NewShake256()
	length := make([]byte, 8)
	for _, v := range values {
		b := v.Bytes()
		binary.BigEndian.PutUint64(length, uint64(len(b)))
		h.Write(length)
		h.Write(b)
	}
	out := make([]byte, challengeBytes)
	h.Read(out)
	return new(big.Int).SetBytes(out)
}

// EncryptZK proves knowledge of the plaintext of a ciphertext.
type EncryptZK struct {
	B, W, Z *big.Int
}

func (pk *PublicKey) encryptionProof(random io.Reader, m, r, c *big.Int) (zk *EncryptZK, err error) {
	x, err := rand.Int(random, pk.N)
	if err != nil {
		return
	}
	u, err := numutil.RandomInMultGroup(random, pk.N)
	if err != nil {
		return
	}

	uToN := new(big.Int).Exp(u, pk.N, pk.N2)
	b := new(big.Int).Exp(pk.G, x, pk.N2)
	b.Mul(b, uToN)
	b.Mod(b, pk.N2)

	e := challenge(c, b)

	mReduced := new(big.Int).Mod(m, pk.N)
	eM := new(big.Int).Mul(e, mReduced)
	eM.Add(eM, x)
	w := new(big.Int).Mod(eM, pk.N)
	t := new(big.Int).Div(eM, pk.N)

	// z = u * r^e * g^t, folding the mod n carry of w back in.
	z := new(big.Int).Exp(r, e, pk.N2)
	z.Mul(z, u)
	z.Mod(z, pk.N2)
	gToT := new(big.Int).Exp(pk.G, t, pk.N2)
	z.Mul(z, gToT)
	z.Mod(z, pk.N2)

	zk = &EncryptZK{B: b, W: w, Z: z}
	return
}

// Verify checks the proof against the ciphertext it was issued for.
func (zk *EncryptZK) Verify(pk *PublicKey, c *big.Int) error {
	e := challenge(c, zk.B)

	left := new(big.Int).Exp(pk.G, zk.W, pk.N2)
	zToN := new(big.Int).Exp(zk.Z, pk.N, pk.N2)
	left.Mul(left, zToN)
	left.Mod(left, pk.N2)

	right := new(big.Int).Exp(c, e, pk.N2)
	right.Mul(right, zk.B)
	right.Mod(right, pk.N2)

	if left.Cmp(right) != 0 {
		return fmt.Errorf("zkproof verification failed")
	}
	return nil
}

// DecryptShareZK proves that a DecryptionShare was computed with the
// share behind the server's public verification value.
type DecryptShareZK struct {
	Z, E *big.Int
}

func (au *AuthServer) partialDecryptProof(random io.Reader, c *big.Int, ds *DecryptionShare) (zk *DecryptShareZK, err error) {
	numBits := au.N2.BitLen() + 2*challengeBytes*8
	bound := new(big.Int).Lsh(one, uint(numBits))
	r, err := rand.Int(random, bound)
	if err != nil {
		return
	}

	cTo4 := new(big.Int).Exp(c, four, au.N2)
	ciTo2 := new(big.Int).Exp(ds.Ci, two, au.N2)
	a := new(big.Int).Exp(cTo4, r, au.N2)
	b := new(big.Int).Exp(au.V, r, au.N2)

	e := challenge(a, b, cTo4, ciTo2)

	z := new(big.Int).Mul(au.Si, au.Delta)
	z.Mul(z, e)
	z.Add(z, r)

	zk = &DecryptShareZK{Z: z, E: e}
	return
}

// Verify checks the proof for the given ciphertext and share.
func (zk *DecryptShareZK) Verify(pk *PublicKey, c *big.Int, ds *DecryptionShare) error {
	if ds.Index < 1 || int(ds.Index) > len(pk.Vi) {
		return fmt.Errorf("share index %d out of range [1, %d]", ds.Index, len(pk.Vi))
	}
	vi := pk.Vi[ds.Index-1]
	if vi == nil {
		return fmt.Errorf("no verification value for server %d", ds.Index)
	}

	cTo4 := new(big.Int).Exp(c, four, pk.N2)
	ciTo2 := new(big.Int).Exp(ds.Ci, two, pk.N2)

	// Exp with a negative exponent returns nil when the base is not a
	// unit mod n^2. Ci comes from an untrusted party, so that case is
	// a failed verification, not an internal error.
	minusTwoE := new(big.Int).Mul(zk.E, two)
	minusTwoE.Neg(minusTwoE)
	a := new(big.Int).Exp(cTo4, zk.Z, pk.N2)
	ciToMinus2E := new(big.Int).Exp(ds.Ci, minusTwoE, pk.N2)
	if ciToMinus2E == nil {
		return fmt.Errorf("zkproof verification failed")
	}
	a.Mul(a, ciToMinus2E)
	a.Mod(a, pk.N2)

	minusE := new(big.Int).Neg(zk.E)
	b := new(big.Int).Exp(pk.V, zk.Z, pk.N2)
	viToMinusE := new(big.Int).Exp(vi, minusE, pk.N2)
	if viToMinusE == nil {
		return fmt.Errorf("zkproof verification failed")
	}
	b.Mul(b, viToMinusE)
	b.Mod(b, pk.N2)

	if challenge(a, b, cTo4, ciTo2).Cmp(zk.E) != 0 {
		return fmt.Errorf("zkproof verification failed")
	}
	return nil
}

package tpcs

import (
	"crypto/rand"
	"io"
	"math/big"

	"github.com/homcrypt/hcs/internal/numutil"
)

// Polynomial is the dealer's secret sharing polynomial over Z_nm. Its
// constant coefficient is the decryption exponent d; the remaining
// w - 1 coefficients are uniform. It must be destroyed as soon as all
// servers have received their evaluation, since anyone holding it can
// recover d without a quorum.
type Polynomial struct {
	coeff []*big.Int
	nm    *big.Int
}

// NewPolynomial builds the share polynomial for the private key, with
// random coefficients drawn from random.
func (vk *PrivateKey) NewPolynomial(random io.Reader) (*Polynomial, error) {
	coeff := make([]*big.Int, vk.W)
	coeff[0] = new(big.Int).Set(vk.D)
	for i := 1; i < len(coeff); i++ {
		ci, err := rand.Int(random, vk.NM)
		if err != nil {
			return nil, err
		}
		coeff[i] = ci
	}
	return &Polynomial{coeff: coeff, nm: new(big.Int).Set(vk.NM)}, nil
}

// Evaluate returns the polynomial evaluated at i+1 mod nm, the secret
// share for the 0-indexed server i. Evaluation happens at i+1 so the
// origin, which would reveal d, is never used.
func (p *Polynomial) Evaluate(i uint8) *big.Int {
	x := big.NewInt(int64(i) + 1)
	si := new(big.Int)
	for k := len(p.coeff) - 1; k >= 0; k-- {
		si.Mul(si, x)
		si.Add(si, p.coeff[k])
		si.Mod(si, p.nm)
	}
	return si
}

// Destroy overwrites every coefficient. The polynomial is unusable
// afterwards.
func (p *Polynomial) Destroy() {
	numutil.ZeroAll(p.coeff...)
	numutil.Zero(p.nm)
}

package tpcs

import (
	"fmt"
	"math/big"

	"github.com/homcrypt/hcs/internal/numutil"
)

// CombineShares recovers the plaintext from at least w distinct
// decryption shares. nil entries are treated as absent, so a caller
// may pass a fixed-size slice with one slot per server. Fewer than w
// present shares yields ErrInsufficientShares; the quorum requirement
// is enforced here, not left to caller discipline.
//
// Shares are combined by Lagrange interpolation at zero over the
// points (index, share), carried out in the exponent. Coefficients are
// scaled by delta = l!, which every pairwise difference product
// divides, so all intermediate divisions are exact integer divisions.
func (pk *PublicKey) CombineShares(shares ...*DecryptionShare) (m *big.Int, err error) {
	present := make([]*DecryptionShare, 0, len(shares))
	seen := make(map[uint8]struct{})
	for _, share := range shares {
		if share == nil {
			continue
		}
		if share.Index < 1 || share.Index > pk.L {
			err = fmt.Errorf("share index %d out of range [1, %d]", share.Index, pk.L)
			return
		}
		if _, ok := seen[share.Index]; ok {
			err = fmt.Errorf("share with index %d repeated", share.Index)
			return
		}
		seen[share.Index] = struct{}{}
		present = append(present, share)
	}
	if len(present) < int(pk.W) {
		err = fmt.Errorf("%w: needed %d but got %d", ErrInsufficientShares, pk.W, len(present))
		return
	}

	cPrime := new(big.Int).Set(one)
	lambda := new(big.Int)
	exp := new(big.Int)
	term := new(big.Int)
	for _, share := range present {
		xi := int64(share.Index)

		// lambda = delta * prod_{j != i} xj / (xj - xi), built with
		// interleaved exact divisions to keep the magnitude small.
		lambda.Set(pk.Delta)
		for _, other := range present {
			if other.Index == share.Index {
				continue
			}
			xj := int64(other.Index)
			lambda.Mul(lambda, big.NewInt(xj))
			lambda.Div(lambda, big.NewInt(xj-xi))
		}

		// The exponent is 2*|lambda|; a negative coefficient is
		// applied by inverting the result mod n^2, since the
		// exponentiation itself only takes non-negative exponents.
		exp.Abs(lambda)
		exp.Mul(exp, two)
		term.Exp(share.Ci, exp, pk.N2)
		if lambda.Sign() < 0 {
			if term.ModInverse(term, pk.N2) == nil {
				err = fmt.Errorf("%w: partial decryption of server %d", ErrNotInvertible, share.Index)
				return
			}
		}
		cPrime.Mul(cPrime, term)
		cPrime.Mod(cPrime, pk.N2)
	}

	// Hand-assembled keys may lack the cached constant; derive it
	// locally rather than writing to the shared key.
	constant := pk.Constant
	if constant == nil {
		constant = new(big.Int).Mul(pk.Delta, pk.Delta)
		constant.Mul(constant, four)
		if constant.ModInverse(constant, pk.N) == nil {
			err = fmt.Errorf("%w: 4*delta^2 mod n", ErrNotInvertible)
			return
		}
	}

	m = numutil.L(cPrime, pk.N)
	m.Mul(m, constant)
	m.Mod(m, pk.N)
	return
}

// Package numutil holds big integer helpers shared by the cryptosystem
// packages: two-argument CRT recombination, rejection sampling in Z_n*,
// the Paillier L function and zeroing of retired secret values.
package numutil

import (
	"crypto/rand"
	"io"
	"math/big"
)

var one = big.NewInt(1)

// TwoCRT returns the unique x in [0, m1*m2) with x = r1 (mod m1) and
// x = r2 (mod m2). m1 and m2 must be coprime.
func TwoCRT(r1, m1, r2, m2 *big.Int) *big.Int {
	a := new(big.Int)
	b := new(big.Int)
	g := new(big.Int).GCD(a, b, m1, m2)
	if g.Cmp(one) != 0 {
		return nil
	}
	m1m2 := new(big.Int).Mul(m1, m2)

	// x = r1*b*m2 + r2*a*m1 mod m1*m2
	x := new(big.Int).Mul(r1, b)
	x.Mul(x, m2)
	t := new(big.Int).Mul(r2, a)
	t.Mul(t, m1)
	x.Add(x, t)
	x.Mod(x, m1m2)
	return x
}

// RandomInMultGroup samples a uniform element of Z_n* by rejection. For
// n a product of two large primes almost every draw is accepted.
func RandomInMultGroup(random io.Reader, n *big.Int) (*big.Int, error) {
	gcd := new(big.Int)
	for {
		r, err := rand.Int(random, n)
		if err != nil {
			return nil, err
		}
		if r.Sign() == 0 {
			continue
		}
		gcd.GCD(nil, nil, r, n)
		if gcd.Cmp(one) == 0 {
			return r, nil
		}
	}
}

// L computes (x-1)/n, the discrete log extraction for elements of the
// form (1+n)^m in Z_{n^2}*. The division is exact for valid inputs.
func L(x, n *big.Int) *big.Int {
	r := new(big.Int).Sub(x, one)
	r.Div(r, n)
	return r
}

// Zero overwrites the backing words of x before it is released to the
// garbage collector.
func Zero(x *big.Int) {
	if x == nil {
		return
	}
	bits := x.Bits()
	for i := range bits {
		bits[i] = 0
	}
	x.SetInt64(0)
}

// ZeroAll zeroes every argument.
func ZeroAll(xs ...*big.Int) {
	for _, x := range xs {
		Zero(x)
	}
}

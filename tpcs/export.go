package tpcs

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// publicKeyJSON is the wire form of a threshold public key. Only the
// modulus and the scheme parameters travel; g, n^2, delta and the
// combination constant are recomputed on import. The verification
// values v/vi do not travel, so imported keys can combine shares but
// not verify decryption proofs.
type publicKeyJSON struct {
	N string `json:"n"`
	L uint8  `json:"l"`
	W uint8  `json:"w"`
}

type authServerJSON struct {
	I  uint8  `json:"i"`
	Si string `json:"si"`
}

// MarshalJSON exports the public key.
func (pk *PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(publicKeyJSON{N: pk.N.Text(16), L: pk.L, W: pk.W})
}

// UnmarshalJSON imports a public key, recomputing every derived field
// instead of trusting it from the wire.
func (pk *PublicKey) UnmarshalJSON(data []byte) error {
	var wire publicKeyJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	n, ok := new(big.Int).SetString(wire.N, 16)
	if !ok {
		return fmt.Errorf("invalid modulus %q", wire.N)
	}
	if wire.L <= 1 || wire.W < wire.L/2+1 || wire.W > wire.L {
		return fmt.Errorf("invalid threshold parameters w=%d l=%d", wire.W, wire.L)
	}
	delta := new(big.Int).MulRange(1, int64(wire.L))
	constant := new(big.Int).Mul(delta, delta)
	constant.Mul(constant, four)
	constant = new(big.Int).ModInverse(constant, n)
	if constant == nil {
		return fmt.Errorf("%w: 4*delta^2 mod n", ErrNotInvertible)
	}
	pk.N = n
	pk.G = new(big.Int).Add(n, one)
	pk.N2 = new(big.Int).Mul(n, n)
	pk.Delta = delta
	pk.Constant = constant
	pk.V = nil
	pk.Vi = make([]*big.Int, wire.L)
	pk.L = wire.L
	pk.W = wire.W
	return nil
}

// MarshalJSON exports the server's index and secret share. The share
// is secret; the payload must only ever be sent to the server itself
// over a protected channel.
func (au *AuthServer) MarshalJSON() ([]byte, error) {
	return json.Marshal(authServerJSON{I: au.Index, Si: au.Si.Text(16)})
}

// UnmarshalJSON imports a server record. The public key is not part of
// the payload and must be attached separately.
func (au *AuthServer) UnmarshalJSON(data []byte) error {
	var wire authServerJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	si, ok := new(big.Int).SetString(wire.Si, 16)
	if !ok {
		return fmt.Errorf("invalid share %q", wire.Si)
	}
	au.Index = wire.I
	au.Si = si
	return nil
}

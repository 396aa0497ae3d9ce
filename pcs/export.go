package pcs

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// publicKeyJSON is the wire form of a public key. Only the modulus is
// carried; g and n^2 are derived on import rather than trusted.
type publicKeyJSON struct {
	N string `json:"n"`
}

// MarshalJSON exports the public key as a JSON object holding the
// modulus in base 16.
func (pk *PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(publicKeyJSON{N: pk.N.Text(16)})
}

// UnmarshalJSON imports a public key, recomputing g = n + 1 and n^2.
// Keys exported from a small generator key pair reimport as default
// generator keys and cannot decrypt compatibly; only default keys
// should travel this way.
func (pk *PublicKey) UnmarshalJSON(data []byte) error {
	var wire publicKeyJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	n, ok := new(big.Int).SetString(wire.N, 16)
	if !ok {
		return fmt.Errorf("invalid modulus %q", wire.N)
	}
	pk.N = n
	pk.G = new(big.Int).Add(n, one)
	pk.N2 = new(big.Int).Mul(n, n)
	return nil
}

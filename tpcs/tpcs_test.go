package tpcs_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/homcrypt/hcs/hcsrand"
	"github.com/homcrypt/hcs/tpcs"
)

const w = 3
const l = 5
const bitSize = 512

var ten = big.NewInt(10)
var twelve = big.NewInt(12)
var twentyFive = big.NewInt(25)

func testKey(t *testing.T, seed string) ([]*tpcs.AuthServer, *tpcs.PublicKey, *hcsrand.Rand) {
	t.Helper()
	random := hcsrand.NewSeeded([]byte(seed))
	servers, pk, err := tpcs.GenerateKey(random, bitSize, w, l)
	if err != nil {
		t.Fatalf("%v", err)
	}
	return servers, pk, random
}

func decryptAll(t *testing.T, pk *tpcs.PublicKey, servers []*tpcs.AuthServer, c *big.Int) *big.Int {
	t.Helper()
	shares := make([]*tpcs.DecryptionShare, len(servers))
	for i, au := range servers {
		ds, err := au.PartialDecrypt(c)
		if err != nil {
			t.Fatalf("server %d cannot decrypt partially: %v", au.Index, err)
		}
		shares[i] = ds
	}
	decrypted, err := pk.CombineShares(shares...)
	if err != nil {
		t.Fatalf("cannot combine shares: %v", err)
	}
	return decrypted
}

func TestGenerateKey(t *testing.T) {
	servers, pk, _ := testKey(t, "tpcs keygen")
	if len(servers) != l {
		t.Errorf("length of servers is %d instead of %d", len(servers), l)
		return
	}
	indexes := make(map[uint8]struct{})
	for i, au := range servers {
		if int(au.Index) != i+1 {
			t.Errorf("index should have been %d but it is %d", i+1, au.Index)
			return
		}
		if _, ok := indexes[au.Index]; ok {
			t.Errorf("index repeated: %d", au.Index)
			return
		}
		indexes[au.Index] = struct{}{}
	}
	if pk.Delta.Cmp(big.NewInt(120)) != 0 {
		t.Errorf("delta should be %d! = 120, but it is %s", l, pk.Delta)
	}
}

func TestQuorumSubsets(t *testing.T) {
	servers, pk, random := testKey(t, "tpcs quorum")
	encrypted, err := pk.Encrypt(random, ten)
	if err != nil {
		t.Errorf("%v", err)
		return
	}

	// Any subset of at least w shares must combine to the same
	// plaintext. Absent servers are nil slots.
	subsets := [][]int{
		{0, 1, 2},
		{1, 2, 4},
		{0, 1, 2, 3},
		{0, 1, 2, 3, 4},
	}
	for _, subset := range subsets {
		shares := make([]*tpcs.DecryptionShare, l)
		for _, i := range subset {
			ds, err := servers[i].PartialDecrypt(encrypted)
			if err != nil {
				t.Errorf("server %d is not able to decrypt partially: %v", servers[i].Index, err)
				return
			}
			shares[i] = ds
		}
		decrypted, err := pk.CombineShares(shares...)
		if err != nil {
			t.Errorf("cannot combine subset %v: %v", subset, err)
			return
		}
		if decrypted.Cmp(ten) != 0 {
			t.Errorf("subset %v decrypted to %s instead of %s", subset, decrypted, ten)
			return
		}
	}
}

func TestInsufficientShares(t *testing.T) {
	servers, pk, random := testKey(t, "tpcs insufficient")
	encrypted, err := pk.Encrypt(random, ten)
	if err != nil {
		t.Errorf("%v", err)
		return
	}
	shares := make([]*tpcs.DecryptionShare, l)
	for _, i := range []int{0, 3} {
		ds, err := servers[i].PartialDecrypt(encrypted)
		if err != nil {
			t.Errorf("%v", err)
			return
		}
		shares[i] = ds
	}
	if _, err := pk.CombineShares(shares...); !errors.Is(err, tpcs.ErrInsufficientShares) {
		t.Errorf("expected ErrInsufficientShares, got %v", err)
	}
}

func TestRepeatedShare(t *testing.T) {
	servers, pk, random := testKey(t, "tpcs repeated")
	encrypted, err := pk.Encrypt(random, ten)
	if err != nil {
		t.Errorf("%v", err)
		return
	}
	ds, err := servers[0].PartialDecrypt(encrypted)
	if err != nil {
		t.Errorf("%v", err)
		return
	}
	if _, err := pk.CombineShares(ds, ds, ds); err == nil {
		t.Errorf("combining a repeated share should fail")
	}
}

func TestAdd(t *testing.T) {
	servers, pk, random := testKey(t, "tpcs add")
	c1, err := pk.Encrypt(random, twelve)
	if err != nil {
		t.Errorf("%v", err)
		return
	}
	c2, err := pk.Encrypt(random, twentyFive)
	if err != nil {
		t.Errorf("%v", err)
		return
	}
	sum := pk.EEAdd(c1, c2, c1)
	decrypted := decryptAll(t, pk, servers, sum)
	if decrypted.Cmp(big.NewInt(49)) != 0 {
		t.Errorf("decrypted is %s but should have been 49", decrypted)
	}
}

func TestEPAddNegative(t *testing.T) {
	servers, pk, random := testKey(t, "tpcs negative")
	c, err := pk.Encrypt(random, big.NewInt(1000))
	if err != nil {
		t.Errorf("%v", err)
		return
	}
	diff := pk.EPAdd(c, big.NewInt(-50))
	decrypted := decryptAll(t, pk, servers, diff)
	if decrypted.Cmp(big.NewInt(950)) != 0 {
		t.Errorf("decrypted is %s but should have been 950", decrypted)
		return
	}

	zero, err := pk.Encrypt(random, big.NewInt(0))
	if err != nil {
		t.Errorf("%v", err)
		return
	}
	wrapped := pk.EPAdd(zero, big.NewInt(-50))
	expected := new(big.Int).Sub(pk.N, big.NewInt(50))
	decrypted = decryptAll(t, pk, servers, wrapped)
	if decrypted.Cmp(expected) != 0 {
		t.Errorf("decrypted is %s but should have been n-50 = %s", decrypted, expected)
	}
}

func TestMultiply(t *testing.T) {
	servers, pk, random := testKey(t, "tpcs multiply")
	c, err := pk.Encrypt(random, twelve)
	if err != nil {
		t.Errorf("%v", err)
		return
	}
	mul := pk.EPMul(c, twentyFive)
	decrypted := decryptAll(t, pk, servers, mul)
	if decrypted.Cmp(big.NewInt(300)) != 0 {
		t.Errorf("decrypted is %s but should have been 300", decrypted)
	}
}

func TestReencrypt(t *testing.T) {
	servers, pk, random := testKey(t, "tpcs reencrypt")
	c, err := pk.Encrypt(random, ten)
	if err != nil {
		t.Errorf("%v", err)
		return
	}
	c2, err := pk.Reencrypt(random, c)
	if err != nil {
		t.Errorf("%v", err)
		return
	}
	if c.Cmp(c2) == 0 {
		t.Errorf("reencryption did not change the ciphertext")
		return
	}
	decrypted := decryptAll(t, pk, servers, c2)
	if decrypted.Cmp(ten) != 0 {
		t.Errorf("decrypted is %s but should have been %s", decrypted, ten)
	}
}

func TestEncryptWithProof(t *testing.T) {
	_, pk, random := testKey(t, "tpcs encrypt proof")
	c, zk, err := pk.EncryptWithProof(random, twelve)
	if err != nil {
		t.Errorf("%v", err)
		return
	}
	if err := zk.Verify(pk, c); err != nil {
		t.Errorf("error verifying encryption ZKProof: %v", err)
		return
	}
	// The proof must not transfer to a different ciphertext.
	other, err := pk.Encrypt(random, twelve)
	if err != nil {
		t.Errorf("%v", err)
		return
	}
	if err := zk.Verify(pk, other); err == nil {
		t.Errorf("proof verified against an unrelated ciphertext")
	}
}

func TestPartialDecryptWithProof(t *testing.T) {
	servers, pk, random := testKey(t, "tpcs decrypt proof")
	c, err := pk.Encrypt(random, ten)
	if err != nil {
		t.Errorf("%v", err)
		return
	}
	shares := make([]*tpcs.DecryptionShare, l)
	for i, au := range servers {
		ds, zk, err := au.PartialDecryptWithProof(random, c)
		if err != nil {
			t.Errorf("server %d is not able to decrypt partially: %v", au.Index, err)
			return
		}
		if err := zk.Verify(pk, c, ds); err != nil {
			t.Errorf("error verifying decryption ZKProof: %v", err)
			return
		}
		shares[i] = ds
	}
	decrypted, err := pk.CombineShares(shares...)
	if err != nil {
		t.Errorf("cannot combine shares: %v", err)
		return
	}
	if decrypted.Cmp(ten) != 0 {
		t.Errorf("decrypted is %s but should have been %s", decrypted, ten)
	}
}

func TestTamperedShareProofFails(t *testing.T) {
	servers, pk, random := testKey(t, "tpcs tampered")
	c, err := pk.Encrypt(random, ten)
	if err != nil {
		t.Errorf("%v", err)
		return
	}
	ds, zk, err := servers[0].PartialDecryptWithProof(random, c)
	if err != nil {
		t.Errorf("%v", err)
		return
	}
	forged := &tpcs.DecryptionShare{
		Index: ds.Index,
		Ci:    new(big.Int).Add(ds.Ci, big.NewInt(1)),
	}
	if err := zk.Verify(pk, c, forged); err == nil {
		t.Errorf("proof verified for a tampered share")
	}
}

func TestForgedShareProofFails(t *testing.T) {
	servers, pk, random := testKey(t, "tpcs forged")
	c, err := pk.Encrypt(random, ten)
	if err != nil {
		t.Errorf("%v", err)
		return
	}
	_, zk, err := servers[0].PartialDecryptWithProof(random, c)
	if err != nil {
		t.Errorf("%v", err)
		return
	}
	// Shares whose Ci is not a unit mod n^2 must be rejected, not
	// crash the verifier.
	for _, ci := range []*big.Int{big.NewInt(0), new(big.Int).Set(pk.N)} {
		forged := &tpcs.DecryptionShare{Index: servers[0].Index, Ci: ci}
		if err := zk.Verify(pk, c, forged); err == nil {
			t.Errorf("proof verified for forged share with Ci = %s", ci)
			return
		}
	}
}

func TestDecryptShares(t *testing.T) {
	servers, pk, random := testKey(t, "tpcs parallel")
	c, err := pk.Encrypt(random, twelve)
	if err != nil {
		t.Errorf("%v", err)
		return
	}
	shares, err := tpcs.DecryptShares(context.Background(), c, servers)
	if err != nil {
		t.Errorf("%v", err)
		return
	}
	decrypted, err := pk.CombineShares(shares...)
	if err != nil {
		t.Errorf("cannot combine shares: %v", err)
		return
	}
	if decrypted.Cmp(twelve) != 0 {
		t.Errorf("decrypted is %s but should have been %s", decrypted, twelve)
	}
}

func TestPublicKeyJSON(t *testing.T) {
	servers, pk, random := testKey(t, "tpcs json")
	data, err := json.Marshal(pk)
	if err != nil {
		t.Errorf("%v", err)
		return
	}

	var imported tpcs.PublicKey
	if err := json.Unmarshal(data, &imported); err != nil {
		t.Errorf("%v", err)
		return
	}
	if imported.Delta.Cmp(pk.Delta) != 0 {
		t.Errorf("imported delta is %s but should have been %s", imported.Delta, pk.Delta)
		return
	}
	// The constant is derived at import time; the key must never be
	// written to afterwards, it is shared between combiners.
	if imported.Constant == nil {
		t.Errorf("imported key is missing the combination constant")
		return
	}
	if imported.Constant.Cmp(pk.Constant) != 0 {
		t.Errorf("imported constant is %s but should have been %s", imported.Constant, pk.Constant)
		return
	}

	// The imported key must encrypt and combine compatibly.
	c, err := imported.Encrypt(random, ten)
	if err != nil {
		t.Errorf("%v", err)
		return
	}
	decrypted := decryptAll(t, &imported, servers, c)
	if decrypted.Cmp(ten) != 0 {
		t.Errorf("decrypted is %s but should have been %s", decrypted, ten)
	}
}

func TestPublicKeyJSONRejectsWeakQuorum(t *testing.T) {
	_, pk, _ := testKey(t, "tpcs weak quorum")
	// w = 2 is below the l/2+1 bound key generation enforces for
	// l = 5; import must hold imported keys to the same bound.
	data := []byte(fmt.Sprintf(`{"n":%q,"l":5,"w":2}`, pk.N.Text(16)))
	var imported tpcs.PublicKey
	if err := json.Unmarshal(data, &imported); err == nil {
		t.Errorf("imported a key with a quorum below the generable minimum")
	}
}

func TestSetCopiesShare(t *testing.T) {
	random := hcsrand.NewSeeded([]byte("tpcs set copies"))
	pk, vk, err := tpcs.GenerateKeyPair(random, bitSize, w, l)
	if err != nil {
		t.Fatalf("%v", err)
	}
	defer vk.Clear()
	poly, err := vk.NewPolynomial(random)
	if err != nil {
		t.Fatalf("%v", err)
	}
	defer poly.Destroy()

	// External dealing zeroes each evaluation after handing it to the
	// server, so Set must keep its own copy.
	servers := make([]*tpcs.AuthServer, l)
	var i uint8
	for i = 0; i < l; i++ {
		si := poly.Evaluate(i)
		au := tpcs.NewAuthServer(pk)
		au.Set(si, i)
		si.SetInt64(0)
		servers[i] = au
	}
	c, err := pk.Encrypt(random, ten)
	if err != nil {
		t.Errorf("%v", err)
		return
	}
	decrypted := decryptAll(t, pk, servers, c)
	if decrypted.Cmp(ten) != 0 {
		t.Errorf("decrypted is %s but should have been %s", decrypted, ten)
	}
}

func TestAuthServerJSON(t *testing.T) {
	servers, pk, random := testKey(t, "tpcs server json")
	data, err := json.Marshal(servers[2])
	if err != nil {
		t.Errorf("%v", err)
		return
	}
	imported := tpcs.NewAuthServer(pk)
	if err := json.Unmarshal(data, imported); err != nil {
		t.Errorf("%v", err)
		return
	}
	if imported.Index != servers[2].Index || imported.Si.Cmp(servers[2].Si) != 0 {
		t.Errorf("imported server does not match the original")
		return
	}

	c, err := pk.Encrypt(random, ten)
	if err != nil {
		t.Errorf("%v", err)
		return
	}
	replaced := []*tpcs.AuthServer{servers[0], servers[1], imported, servers[3], servers[4]}
	decrypted := decryptAll(t, pk, replaced, c)
	if decrypted.Cmp(ten) != 0 {
		t.Errorf("decrypted is %s but should have been %s", decrypted, ten)
	}
}

func ExamplePublicKey_EEAdd() {
	random, err := hcsrand.New()
	if err != nil {
		panic(err)
	}
	servers, pk, err := tpcs.GenerateKey(random, 512, 3, 5)
	if err != nil {
		panic(err)
	}

	encTwelve, err := pk.Encrypt(random, big.NewInt(12))
	if err != nil {
		panic(err)
	}
	encTwentyFive, err := pk.Encrypt(random, big.NewInt(25))
	if err != nil {
		panic(err)
	}
	sum := pk.EEAdd(encTwelve, encTwentyFive)

	shares := make([]*tpcs.DecryptionShare, len(servers))
	for i, au := range servers {
		share, err := au.PartialDecrypt(sum)
		if err != nil {
			panic(err)
		}
		shares[i] = share
	}
	decrypted, err := pk.CombineShares(shares...)
	if err != nil {
		panic(err)
	}
	fmt.Printf("%s", decrypted)
	// Output: 37
}

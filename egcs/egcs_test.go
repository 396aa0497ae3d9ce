package egcs_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homcrypt/hcs/egcs"
	"github.com/homcrypt/hcs/hcsrand"
)

const bitSize = 512

func TestRoundTrip(t *testing.T) {
	random := hcsrand.NewSeeded([]byte("egcs roundtrip"))
	pk, vk, err := egcs.GenerateKeyPair(random, bitSize)
	require.NoError(t, err)

	for _, m := range []*big.Int{big.NewInt(1), big.NewInt(42), big.NewInt(999999937)} {
		ct, err := pk.Encrypt(random, m)
		require.NoError(t, err)
		assert.Zero(t, vk.Decrypt(ct).Cmp(m), "roundtrip of %s", m)
	}
}

func TestEEMul(t *testing.T) {
	random := hcsrand.NewSeeded([]byte("egcs eemul"))
	pk, vk, err := egcs.GenerateKeyPair(random, bitSize)
	require.NoError(t, err)

	a, err := pk.Encrypt(random, big.NewInt(12))
	require.NoError(t, err)
	b, err := pk.Encrypt(random, big.NewInt(25))
	require.NoError(t, err)

	prod := pk.EEMul(a, b)
	assert.Equal(t, int64(300), vk.Decrypt(prod).Int64())
}

func TestCiphertextsDiffer(t *testing.T) {
	random := hcsrand.NewSeeded([]byte("egcs differ"))
	pk, _, err := egcs.GenerateKeyPair(random, bitSize)
	require.NoError(t, err)

	m := big.NewInt(1234)
	c1, err := pk.Encrypt(random, m)
	require.NoError(t, err)
	c2, err := pk.Encrypt(random, m)
	require.NoError(t, err)
	assert.NotZero(t, c1.C1.Cmp(c2.C1), "ephemeral keys should differ")
}

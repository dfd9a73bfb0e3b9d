package services_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinflip-ladder-backend/internal/services"
)

func TestSeedHash(t *testing.T) {
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", services.SeedHash("abc"))
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", services.SeedHash(""))
	assert.Equal(t, services.SeedHash("S"), services.NewFairness("S").SeedHash())
}

// referenceRoll recomputes the roll the way a client verifier would, from the
// hex digest.
func referenceRoll(serverSeed, message string) float64 {
	h := hmac.New(sha256.New, []byte(serverSeed))
	h.Write([]byte(message))
	digest := hex.EncodeToString(h.Sum(nil))

	n, _ := new(big.Int).SetString(digest[:16], 16)
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(n), new(big.Float).SetFloat64(18446744073709551616)).Float64()
	return f
}

func TestRollMatchesReferenceConstruction(t *testing.T) {
	cases := []struct {
		server string
		client string
		nonce  uint64
		msg    string
	}{
		{"S", "c", 1, "c:1"},
		{"super_secret_server_seed_change_me", "lucky", 42, "lucky:42"},
		{"k", "", 18446744073709551615, ":18446744073709551615"},
	}

	for _, tc := range cases {
		got := services.Roll(tc.server, tc.client, tc.nonce)
		assert.InDelta(t, referenceRoll(tc.server, tc.msg), got, 1e-15)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.Less(t, got, 1.0)
	}
}

func TestRollIsDeterministic(t *testing.T) {
	f := services.NewFairness("S")
	require.Equal(t, f.Roll("c", 7), f.Roll("c", 7))
	assert.Equal(t, services.Roll("S", "c", 7), f.Roll("c", 7))
	assert.NotEqual(t, f.Roll("c", 7), f.Roll("c", 8))
	assert.NotEqual(t, f.Roll("c", 7), f.Roll("d", 7))
}

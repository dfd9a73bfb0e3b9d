package services_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinflip-ladder-backend/internal/models"
	"coinflip-ladder-backend/internal/services"
)

func TestCryptoCoinFlipIsFair(t *testing.T) {
	const n = 20000
	coin := services.CryptoCoin{}

	heads := 0
	for i := 0; i < n; i++ {
		f, err := coin.Flip()
		require.NoError(t, err)
		require.Contains(t, []int{0, 1}, f)
		if f == 0 {
			heads++
		}
	}

	// Six standard deviations keeps this from flaking.
	sigma := math.Sqrt(n * 0.25)
	assert.InDelta(t, n/2, heads, 6*sigma)
}

func TestCryptoCoinInitialMultiplierOpensLowTiers(t *testing.T) {
	coin := services.CryptoCoin{}
	seen := make(map[float64]int)

	for i := 0; i < 2000; i++ {
		m, err := coin.InitialMultiplier()
		require.NoError(t, err)
		require.True(t, models.IsTier(m), "%.2f is not a ladder tier", m)
		require.Contains(t, []float64{1.5, 2, 3}, m)
		seen[m]++
	}

	assert.Len(t, seen, 3)
}

package services

import (
	"crypto/rand"
	"fmt"
	"math"

	"coinflip-ladder-backend/internal/models"
)

// CoinSource supplies the unbiased draws that decide outcomes. It is kept
// separate from the verifiable roll.
type CoinSource interface {
	// Flip returns 0 or 1 with equal probability.
	Flip() (int, error)
	// InitialMultiplier returns a raw opening multiplier before tier snapping.
	InitialMultiplier() (float64, error)
}

const (
	initialMultiplierMin = 1.2
	initialMultiplierMax = 3.0
)

// CryptoCoin draws from crypto/rand.
type CryptoCoin struct{}

func (CryptoCoin) Flip() (int, error) {
	var b [1]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("failed to read random byte: %w", err)
	}
	return int(b[0] & 1), nil
}

func (CryptoCoin) InitialMultiplier() (float64, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("failed to read random bytes: %w", err)
	}
	m := initialMultiplierMin + unitInterval(b[:])*(initialMultiplierMax-initialMultiplierMin)
	m = math.Round(m*100) / 100
	return models.SnapToTier(m), nil
}

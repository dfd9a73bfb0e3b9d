package models

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/shopspring/decimal"
)

// GenerateSessionID returns 16 random bytes hex encoded.
func GenerateSessionID() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// RoundMoney rounds to two decimals, halves away from zero.
func RoundMoney(amount float64) float64 {
	return decimal.NewFromFloat(amount).Round(2).InexactFloat64()
}

func CalculatePayout(betAmount, multiplier float64) float64 {
	return decimal.NewFromFloat(betAmount).
		Mul(decimal.NewFromFloat(multiplier)).
		Round(2).
		InexactFloat64()
}

func FormatCurrency(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}

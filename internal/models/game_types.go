package models

import "time"

type Mode string

const (
	ModeBaseBet    Mode = "base_bet"
	ModeLadderStep Mode = "ladder_step"
	ModeCashOut    Mode = "cash_out"
)

type CoinSide string

const (
	CoinHeads CoinSide = "heads"
	CoinTails CoinSide = "tails"
)

const (
	MinBet        = 0.10
	MaxBet        = 20000.00
	MaxMultiplier = 10.0

	SessionTTL = 5 * time.Minute
)

// LadderTiers is the ascending set of multipliers a ladder session can hold.
var LadderTiers = []float64{1.5, 2, 3, 4, 5, 7, 10}

// SnapToTier returns the smallest tier >= m, clamped to the top tier.
func SnapToTier(m float64) float64 {
	for _, t := range LadderTiers {
		if m <= t {
			return t
		}
	}
	return MaxMultiplier
}

// NextTier returns the first tier strictly above m, or the cap.
func NextTier(m float64) float64 {
	for _, t := range LadderTiers {
		if t > m {
			return t
		}
	}
	return MaxMultiplier
}

func IsTier(m float64) bool {
	for _, t := range LadderTiers {
		if m == t {
			return true
		}
	}
	return false
}

// SideFromFlip maps a fair-coin draw to a coin side: 0 is heads, 1 is tails.
func SideFromFlip(flip int) CoinSide {
	if flip == 0 {
		return CoinHeads
	}
	return CoinTails
}

package models

import "time"

type LadderSession struct {
	ID                string    `json:"ladder_session_id"`
	BetAmount         float64   `json:"bet_amount"`
	CurrentMultiplier float64   `json:"current_multiplier"`
	MaxMultiplier     float64   `json:"max_multiplier"`
	CreatedAt         time.Time `json:"created_at"`
}

func (s LadderSession) CanContinue() bool {
	return s.CurrentMultiplier < MaxMultiplier
}

func (s LadderSession) ExpiresAt(ttl time.Duration) time.Time {
	return s.CreatedAt.Add(ttl)
}

type EventType string

const (
	EventRoundSettled  EventType = "ROUND_SETTLED"
	EventLadderStep    EventType = "LADDER_STEP"
	EventLadderCashOut EventType = "LADDER_CASHOUT"
	EventLadderExpired EventType = "LADDER_EXPIRED"
)

// RoundEvent is the public, seed-free view of something that happened in a round.
type RoundEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Multiplier float64   `json:"multiplier,omitempty"`
	Payout     float64   `json:"payout,omitempty"`
	Won        bool      `json:"won"`
	CoinSide   CoinSide  `json:"coin_side,omitempty"`
	Nonce      uint64    `json:"nonce,omitempty"`
	Timestamp  int64     `json:"timestamp"`
}

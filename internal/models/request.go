package models

import (
	"math"
	"strings"
)

// PlayRequest is the JSON envelope shared by every game mode. Fields are
// pointers so absent values can be told apart from zero values.
type PlayRequest struct {
	Mode            *string  `json:"mode"`
	Bet             *float64 `json:"bet"`
	Multiplier      *float64 `json:"multiplier"` // legacy target-multiplier field, ignored
	PlayerChoice    *string  `json:"player_choice"`
	ClientSeed      string   `json:"client_seed"`
	LadderSessionID string   `json:"ladder_session_id"`
}

// ValidationError is a client error whose Detail is safe to return verbatim.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string {
	return e.Detail
}

func invalid(detail string) error {
	return &ValidationError{Detail: detail}
}

func (r *PlayRequest) GameMode() Mode {
	if r.Mode == nil {
		return ModeBaseBet
	}
	return Mode(*r.Mode)
}

func (r *PlayRequest) Choice() CoinSide {
	if r.PlayerChoice == nil {
		return CoinHeads
	}
	return CoinSide(*r.PlayerChoice)
}

func (r *PlayRequest) BetAmount() float64 {
	if r.Bet == nil {
		return 0
	}
	return *r.Bet
}

// Validate applies the request rules in order and returns the first failure.
func (r *PlayRequest) Validate() error {
	mode := r.GameMode()
	switch mode {
	case ModeBaseBet, ModeLadderStep, ModeCashOut:
	default:
		return invalid("Invalid mode. Expected one of: base_bet, ladder_step, cash_out")
	}

	if mode == ModeBaseBet {
		if r.Bet == nil {
			return invalid("Bet is required")
		}
		bet := *r.Bet
		if math.IsNaN(bet) || math.IsInf(bet, 0) {
			return invalid("Bet must be a finite number")
		}
		if bet < MinBet {
			return invalid("Minimum bet is " + FormatCurrency(MinBet))
		}
		if bet > MaxBet {
			return invalid("Maximum bet is " + FormatCurrency(MaxBet))
		}
	}

	switch r.Choice() {
	case CoinHeads, CoinTails:
	default:
		return invalid("player_choice must be 'heads' or 'tails'")
	}

	if mode == ModeLadderStep || mode == ModeCashOut {
		if strings.TrimSpace(r.LadderSessionID) == "" {
			return invalid("ladder_session_id is required")
		}
	}

	return nil
}

package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"coinflip-ladder-backend/internal/logger"
	"coinflip-ladder-backend/internal/models"
)

// GameEngine adjudicates base bets and drives ladder sessions. It owns all
// process state: the server seed, the nonce counter and the session store.
type GameEngine struct {
	fairness    *Fairness
	coin        CoinSource
	store       *LadderStore
	broadcaster Broadcaster
	nonce       atomic.Uint64
}

type BaseBetResult struct {
	DidWin         bool
	CoinSide       models.CoinSide
	Roll           float64
	ServerSeedHash string
	Nonce          uint64
	// Session is set only on a win.
	Session *models.LadderSession
}

type LadderStepResult struct {
	Won               bool
	CurrentMultiplier float64
	CanContinue       bool
}

type CashOutResult struct {
	FinalPayout     float64
	FinalMultiplier float64
}

func NewGameEngine(fairness *Fairness, coin CoinSource, store *LadderStore, broadcaster Broadcaster) *GameEngine {
	if broadcaster == nil {
		broadcaster = MultiBroadcaster()
	}
	ge := &GameEngine{
		fairness:    fairness,
		coin:        coin,
		store:       store,
		broadcaster: broadcaster,
	}
	store.OnExpire(ge.handleExpiry)
	return ge
}

func (ge *GameEngine) ServerSeedHash() string {
	return ge.fairness.SeedHash()
}

// CurrentNonce is the nonce of the most recent base bet, 0 before any.
func (ge *GameEngine) CurrentNonce() uint64 {
	return ge.nonce.Load()
}

func (ge *GameEngine) ActiveSessions() int {
	return ge.store.Len()
}

// BaseBet settles the opening flip. Callers must validate the wager first:
// the nonce is consumed here.
func (ge *GameEngine) BaseBet(ctx context.Context, bet float64, choice models.CoinSide, clientSeed string) (*BaseBetResult, error) {
	nonce := ge.nonce.Add(1)
	roll := ge.fairness.Roll(clientSeed, nonce)

	flip, err := ge.coin.Flip()
	if err != nil {
		return nil, fmt.Errorf("base bet flip failed: %w", err)
	}

	side := models.SideFromFlip(flip)
	result := &BaseBetResult{
		DidWin:         side == choice,
		CoinSide:       side,
		Roll:           roll,
		ServerSeedHash: ge.fairness.SeedHash(),
		Nonce:          nonce,
	}

	if result.DidWin {
		raw, err := ge.coin.InitialMultiplier()
		if err != nil {
			return nil, fmt.Errorf("initial multiplier draw failed: %w", err)
		}

		session, err := ge.store.Create(models.RoundMoney(bet), models.SnapToTier(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to create ladder session: %w", err)
		}
		result.Session = &session
	}

	logger.Debug("Base bet settled",
		"nonce", nonce,
		"bet", models.FormatCurrency(bet),
		"coin_side", side,
		"won", result.DidWin,
	)

	event := models.RoundEvent{
		Type:     models.EventRoundSettled,
		Won:      result.DidWin,
		CoinSide: side,
		Nonce:    nonce,
	}
	if result.Session != nil {
		event.Multiplier = result.Session.CurrentMultiplier
	}
	ge.publish(event)

	return result, nil
}

// LadderStep risks the current stake for the next tier.
func (ge *GameEngine) LadderStep(ctx context.Context, sessionID string) (*LadderStepResult, error) {
	session, ok := ge.store.Get(sessionID)
	if !ok {
		return nil, ErrInvalidSession
	}
	if session.CurrentMultiplier >= models.MaxMultiplier {
		return nil, ErrAlreadyCapped
	}

	flip, err := ge.coin.Flip()
	if err != nil {
		return nil, fmt.Errorf("ladder step flip failed: %w", err)
	}

	if flip == 1 {
		if err := ge.store.Remove(sessionID, session.CurrentMultiplier); err != nil {
			return nil, err
		}
		ge.publish(models.RoundEvent{
			Type:       models.EventLadderStep,
			Won:        false,
			Multiplier: session.CurrentMultiplier,
		})
		return &LadderStepResult{Won: false}, nil
	}

	updated, err := ge.store.Advance(sessionID, session.CurrentMultiplier, models.NextTier(session.CurrentMultiplier))
	if err != nil {
		return nil, err
	}

	ge.publish(models.RoundEvent{
		Type:       models.EventLadderStep,
		Won:        true,
		Multiplier: updated.CurrentMultiplier,
	})

	return &LadderStepResult{
		Won:               true,
		CurrentMultiplier: updated.CurrentMultiplier,
		CanContinue:       updated.CanContinue(),
	}, nil
}

// CashOut ends the session and realizes bet x current multiplier.
func (ge *GameEngine) CashOut(ctx context.Context, sessionID string) (*CashOutResult, error) {
	session, ok := ge.store.Take(sessionID)
	if !ok {
		return nil, ErrInvalidSession
	}

	payout := models.CalculatePayout(session.BetAmount, session.CurrentMultiplier)

	ge.publish(models.RoundEvent{
		Type:       models.EventLadderCashOut,
		Won:        true,
		Multiplier: session.CurrentMultiplier,
		Payout:     payout,
	})

	return &CashOutResult{
		FinalPayout:     payout,
		FinalMultiplier: session.CurrentMultiplier,
	}, nil
}

func (ge *GameEngine) handleExpiry(session models.LadderSession) {
	logger.Debug("Ladder session expired", "multiplier", session.CurrentMultiplier)
	ge.publish(models.RoundEvent{
		Type:       models.EventLadderExpired,
		Multiplier: session.CurrentMultiplier,
	})
}

func (ge *GameEngine) publish(event models.RoundEvent) {
	event.ID = uuid.NewString()
	event.Timestamp = time.Now().Unix()
	ge.broadcaster.Broadcast(event)
}

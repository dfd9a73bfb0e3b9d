package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"coinflip-ladder-backend/internal/logger"
	"coinflip-ladder-backend/internal/metrics"
	"coinflip-ladder-backend/internal/models"
	"coinflip-ladder-backend/internal/services"
)

type GameHandler struct {
	gameEngine *services.GameEngine
}

func NewGameHandler(gameEngine *services.GameEngine) *GameHandler {
	return &GameHandler{gameEngine: gameEngine}
}

// Play dispatches base_bet, ladder_step and cash_out. OPTIONS is answered by
// the CORS middleware before reaching here.
func (h *GameHandler) Play(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		respondDetail(c, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.PlayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondDetail(c, http.StatusBadRequest, bindErrorDetail(err))
		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, err)
		return
	}

	switch req.GameMode() {
	case models.ModeBaseBet:
		h.baseBet(c, &req)
	case models.ModeLadderStep:
		h.ladderStep(c, &req)
	case models.ModeCashOut:
		h.cashOut(c, &req)
	}
}

func (h *GameHandler) baseBet(c *gin.Context, req *models.PlayRequest) {
	result, err := h.gameEngine.BaseBet(c.Request.Context(), req.BetAmount(), req.Choice(), req.ClientSeed)
	if err != nil {
		respondError(c, err)
		return
	}

	if !result.DidWin {
		metrics.RoundsTotal.WithLabelValues(string(models.ModeBaseBet), "loss").Inc()
		c.JSON(http.StatusOK, gin.H{
			"did_win":            false,
			"payout":             0,
			"current_multiplier": 0,
			"coin_side":          result.CoinSide,
			"roll":               result.Roll,
			"server_seed_hash":   result.ServerSeedHash,
			"nonce":              result.Nonce,
			"ladder_active":      false,
		})
		return
	}

	metrics.RoundsTotal.WithLabelValues(string(models.ModeBaseBet), "win").Inc()

	// Winnings are realized only by cash_out, so payout stays 0 here.
	session := result.Session
	c.JSON(http.StatusOK, gin.H{
		"did_win":            true,
		"payout":             0,
		"current_multiplier": session.CurrentMultiplier,
		"max_multiplier":     models.MaxMultiplier,
		"can_continue":       session.CanContinue(),
		"coin_side":          result.CoinSide,
		"roll":               result.Roll,
		"server_seed_hash":   result.ServerSeedHash,
		"nonce":              result.Nonce,
		"ladder_active":      true,
		"ladder_session_id":  session.ID,
	})
}

func (h *GameHandler) ladderStep(c *gin.Context, req *models.PlayRequest) {
	result, err := h.gameEngine.LadderStep(c.Request.Context(), req.LadderSessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	if !result.Won {
		metrics.RoundsTotal.WithLabelValues(string(models.ModeLadderStep), "bust").Inc()
		c.JSON(http.StatusOK, gin.H{
			"did_win_ladder_step": false,
			"current_multiplier":  0,
			"final_payout":        0,
			"can_continue":        false,
			"ladder_over":         true,
		})
		return
	}

	metrics.RoundsTotal.WithLabelValues(string(models.ModeLadderStep), "advance").Inc()
	c.JSON(http.StatusOK, gin.H{
		"did_win_ladder_step": true,
		"current_multiplier":  result.CurrentMultiplier,
		"can_continue":        result.CanContinue,
		"ladder_over":         false,
	})
}

func (h *GameHandler) cashOut(c *gin.Context, req *models.PlayRequest) {
	result, err := h.gameEngine.CashOut(c.Request.Context(), req.LadderSessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	metrics.RoundsTotal.WithLabelValues(string(models.ModeCashOut), "paid").Inc()
	c.JSON(http.StatusOK, gin.H{
		"final_payout":     result.FinalPayout,
		"final_multiplier": result.FinalMultiplier,
		"ladder_over":      true,
	})
}

// GetVerificationData returns the current seed commitment and last nonce.
func (h *GameHandler) GetVerificationData(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"server_seed_hash": h.gameEngine.ServerSeedHash(),
		"nonce":            h.gameEngine.CurrentNonce(),
	})
}

// VerifyGame recomputes a roll from a disclosed server seed.
func (h *GameHandler) VerifyGame(c *gin.Context) {
	var req struct {
		ServerSeed string  `json:"server_seed" binding:"required"`
		ClientSeed string  `json:"client_seed"`
		Nonce      *uint64 `json:"nonce" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respondDetail(c, http.StatusBadRequest, "server_seed and nonce are required")
		return
	}

	seedHash := services.SeedHash(req.ServerSeed)
	c.JSON(http.StatusOK, gin.H{
		"roll":             services.Roll(req.ServerSeed, req.ClientSeed, *req.Nonce),
		"server_seed_hash": seedHash,
		"matches_current":  seedHash == h.gameEngine.ServerSeedHash(),
		"client_seed":      req.ClientSeed,
		"nonce":            *req.Nonce,
	})
}

func respondDetail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

func respondError(c *gin.Context, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		respondDetail(c, http.StatusBadRequest, verr.Detail)
	case errors.Is(err, services.ErrInvalidSession):
		respondDetail(c, http.StatusBadRequest, "Invalid or expired ladder session")
	case errors.Is(err, services.ErrAlreadyCapped):
		respondDetail(c, http.StatusBadRequest, "Already at maximum multiplier")
	case errors.Is(err, services.ErrSessionConflict):
		respondDetail(c, http.StatusBadRequest, "Ladder session changed, please retry")
	default:
		logger.Error("Request failed",
			"request_id", c.GetString("request_id"),
			"path", c.Request.URL.Path,
			"error", err,
		)
		respondDetail(c, http.StatusInternalServerError, "Internal server error")
	}
}

func bindErrorDetail(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		if typeErr.Field == "bet" {
			return "Bet must be a number"
		}
		return "Invalid value for " + typeErr.Field
	}
	return "Invalid JSON body"
}

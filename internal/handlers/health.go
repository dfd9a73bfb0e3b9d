package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthResponse struct {
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
	Version        string    `json:"version"`
	ActiveSessions int       `json:"active_sessions"`
}

type HealthHandler struct {
	version        string
	activeSessions func() int
}

func NewHealthHandler(version string, activeSessions func() int) *HealthHandler {
	return &HealthHandler{
		version:        version,
		activeSessions: activeSessions,
	}
}

func (h *HealthHandler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:         "ok",
		Timestamp:      time.Now().UTC(),
		Version:        h.version,
		ActiveSessions: h.activeSessions(),
	})
}

package handlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinflip-ladder-backend/internal/handlers"
	"coinflip-ladder-backend/internal/models"
	"coinflip-ladder-backend/internal/services"
)

type feedMessage struct {
	Type string            `json:"type"`
	Data models.RoundEvent `json:"data"`
}

func TestFeedStreamsRoundEvents(t *testing.T) {
	feed := handlers.NewWebSocketHandler()
	defer feed.Close()

	engine := services.NewGameEngine(
		services.NewFairness("S"),
		&scriptedCoin{flips: []int{1}},
		services.NewLadderStore(time.Minute),
		feed,
	)
	router := handlers.NewRouter(handlers.RouterDeps{
		Version:     "test",
		GameEngine:  engine,
		RateLimiter: services.NewSlidingWindowLimiter(100, time.Minute),
		Feed:        feed,
	})

	srv := httptest.NewServer(router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/feed"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return feed.Clients() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(handlers.Message{Type: "PING"}))
	var pong handlers.Message
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&pong))
	assert.Equal(t, "PONG", pong.Type)

	resp, err := http.Post(srv.URL+"/api/play", "application/json",
		bytes.NewBufferString(`{"bet":2.5,"player_choice":"heads","client_seed":"c"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var msg feedMessage
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&msg))

	assert.Equal(t, string(models.EventRoundSettled), msg.Type)
	assert.Equal(t, models.EventRoundSettled, msg.Data.Type)
	assert.False(t, msg.Data.Won)
	assert.Equal(t, models.CoinTails, msg.Data.CoinSide)
	assert.Equal(t, uint64(1), msg.Data.Nonce)
	assert.NotEmpty(t, msg.Data.ID)
}

func TestFeedClosedHasNoClients(t *testing.T) {
	feed := handlers.NewWebSocketHandler()
	feed.Close()
	feed.Close()

	assert.Zero(t, feed.Clients())
	feed.Broadcast(models.RoundEvent{Type: models.EventLadderCashOut})
}

package events

import (
	"encoding/json"
	"strings"

	"github.com/nats-io/nats.go"

	"coinflip-ladder-backend/internal/logger"
	"coinflip-ladder-backend/internal/models"
)

// Conn is the part of *nats.Conn the publisher needs.
type Conn interface {
	Publish(subject string, data []byte) error
}

// Publisher forwards round events to NATS as fire-and-forget JSON messages on
// <prefix>.<event type>.
type Publisher struct {
	conn          Conn
	subjectPrefix string
}

func NewPublisher(conn Conn, subjectPrefix string) *Publisher {
	return &Publisher{
		conn:          conn,
		subjectPrefix: subjectPrefix,
	}
}

// Connect dials NATS with reconnects enabled and returns the connection for
// the caller to drain on shutdown.
func Connect(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("coinflip-ladder-backend"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	)
}

func (p *Publisher) Subject(eventType models.EventType) string {
	return p.subjectPrefix + "." + strings.ToLower(string(eventType))
}

func (p *Publisher) Broadcast(event models.RoundEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal round event", "error", err)
		return
	}
	if err := p.conn.Publish(p.Subject(event.Type), data); err != nil {
		logger.Warn("Failed to publish round event", "type", event.Type, "error", err)
	}
}

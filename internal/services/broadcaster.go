package services

import "coinflip-ladder-backend/internal/models"

type Broadcaster interface {
	Broadcast(event models.RoundEvent)
}

type multiBroadcaster []Broadcaster

// MultiBroadcaster fans an event out to every non-nil broadcaster.
func MultiBroadcaster(broadcasters ...Broadcaster) Broadcaster {
	var out multiBroadcaster
	for _, b := range broadcasters {
		if b != nil {
			out = append(out, b)
		}
	}
	return out
}

func (m multiBroadcaster) Broadcast(event models.RoundEvent) {
	for _, b := range m {
		b.Broadcast(event)
	}
}

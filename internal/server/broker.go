package server

import (
	"encoding/json"
	"sync"
)

// scoreboardTopic receives an event after every committed transition, so
// live scoreboard feeds know to refresh.
const scoreboardTopic = "!scoreboard"

// Event is the payload pushed to subscribers. Team topics carry the team's
// own transitions; the scoreboard topic carries refresh ticks and admin
// broadcasts.
type Event struct {
	Type         string  `json:"type"`
	Team         string  `json:"team,omitempty"`
	Challenge    int     `json:"challenge,omitempty"`
	Points       float64 `json:"points,omitempty"`
	Score        float64 `json:"score,omitempty"`
	AttemptsLeft int     `json:"attemptsLeft,omitempty"`
	Message      string  `json:"message,omitempty"`
}

// Broker is an in-process pub/sub keyed by topic (team name or the
// scoreboard topic).
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel receiving JSON-encoded events for the topic.
func (b *Broker) Subscribe(topic string) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[chan []byte]struct{})
	}
	b.subs[topic][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel from the topic's subscribers.
func (b *Broker) Unsubscribe(topic string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[topic], ch)
	if len(b.subs[topic]) == 0 {
		delete(b.subs, topic)
	}
	b.mu.Unlock()
}

// Publish sends an event to all subscribers of the topic.
func (b *Broker) Publish(topic string, event Event) {
	data, _ := json.Marshal(event)
	b.mu.RLock()
	for ch := range b.subs[topic] {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}

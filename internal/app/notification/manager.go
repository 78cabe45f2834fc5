// Package notification provides the notification manager for broadcasting
// playback events.
package notification

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"
)

// Type represents a notification type.
type Type string

const (
	TypeInitialState Type = "initial_state" // Sent once when a subscriber connects
	TypeStateChanged Type = "state_changed" // Playback state changed
	TypePackSwitched Type = "pack_switched" // Next pack became current
	TypePinnedAtEnd  Type = "pinned_at_end" // Interactive end reached, outro still loading
)

// Notification is a playback notification delivered to subscribers.
type Notification struct {
	Type       Type
	SequenceNo uint64
	State      string
	Pack       string
	NextPack   string
	Cursor     float64
	Time       time.Time
}

// Stream represents a notification stream for a subscriber.
type Stream interface {
	Send(*Notification) error
}

// subscription represents a subscriber's subscription.
type subscription struct {
	id     string
	stream Stream
}

// Manager manages notification subscriptions and broadcasting.
type Manager struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription
	sequenceNo    uint64
	sequenceNoMu  sync.Mutex
	sendTimeout   time.Duration
}

// NewManager creates a new notification manager.
func NewManager() *Manager {
	return &Manager{
		subscriptions: make(map[string]*subscription),
		sendTimeout:   500 * time.Millisecond,
	}
}

// Subscribe adds a new subscription and returns the subscription ID.
func (m *Manager) Subscribe(stream Stream) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New().String()
	m.subscriptions[id] = &subscription{
		id:     id,
		stream: stream,
	}
	zlog.Debug().Msgf("notification: subscribed: id=%s total=%d", id, len(m.subscriptions))
	return id
}

// NextSequenceNo returns the next sequence number and increments the counter.
func (m *Manager) NextSequenceNo() uint64 {
	m.sequenceNoMu.Lock()
	defer m.sequenceNoMu.Unlock()
	m.sequenceNo++
	return m.sequenceNo
}

// Unsubscribe removes a subscription.
func (m *Manager) Unsubscribe(subscriptionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subscriptions, subscriptionID)
}

// Broadcast sends a notification to all subscribers.
// Each send runs in its own goroutine with a timeout so a slow subscriber
// cannot hold up the others.
func (m *Manager) Broadcast(n *Notification) {
	n.SequenceNo = m.NextSequenceNo()

	m.mu.RLock()
	// Copy subscriptions to avoid holding lock during sends
	subs := make([]*subscription, 0, len(m.subscriptions))
	for _, sub := range m.subscriptions {
		subs = append(subs, sub)
	}
	m.mu.RUnlock()

	var wg sync.WaitGroup
	for _, sub := range subs {
		wg.Add(1)
		go func(s *subscription) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), m.sendTimeout)
			defer cancel()

			done := make(chan error, 1)
			go func() {
				done <- s.stream.Send(n)
			}()

			select {
			case err := <-done:
				if err != nil {
					zlog.Debug().Msgf("notification: send failed: id=%s error=%v", s.id, err)
				}
			case <-ctx.Done():
				zlog.Debug().Msgf("notification: send timed out: id=%s", s.id)
			}
		}(sub)
	}

	wg.Wait()
}

// SubscriberCount returns the number of active subscribers.
func (m *Manager) SubscriberCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscriptions)
}

// Close removes all subscriptions.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscriptions = make(map[string]*subscription)
}

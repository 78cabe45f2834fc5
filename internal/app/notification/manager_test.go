package notification

import (
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

type recordingStream struct {
	mu    sync.Mutex
	got   []*Notification
	err   error
	delay time.Duration
}

func (s *recordingStream) Send(n *Notification) error {
	time.Sleep(s.delay)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, n)
	return s.err
}

func (s *recordingStream) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.got)
}

func TestManager_Broadcast(t *testing.T) {
	m := NewManager()
	a, b := &recordingStream{}, &recordingStream{err: errors.New("closed")}
	m.Subscribe(a)
	m.Subscribe(b)

	m.Broadcast(&Notification{Type: TypeStateChanged, State: "IN"})
	m.Broadcast(&Notification{Type: TypePackSwitched, Pack: "flower"})

	assert.Equal(t, 2, a.count())
	assert.Equal(t, 2, b.count())
	assert.Equal(t, uint64(1), a.got[0].SequenceNo)
	assert.Equal(t, uint64(2), a.got[1].SequenceNo)
}

func TestManager_Unsubscribe(t *testing.T) {
	m := NewManager()
	s := &recordingStream{}
	id := m.Subscribe(s)
	assert.Equal(t, 1, m.SubscriberCount())

	m.Unsubscribe(id)
	m.Broadcast(&Notification{Type: TypeStateChanged})

	assert.Equal(t, 0, m.SubscriberCount())
	assert.Equal(t, 0, s.count())
}

func TestManager_SlowSubscriberTimesOut(t *testing.T) {
	m := NewManager()
	m.sendTimeout = 20 * time.Millisecond
	m.Subscribe(&recordingStream{delay: 200 * time.Millisecond})

	start := time.Now()
	m.Broadcast(&Notification{Type: TypeStateChanged})
	assert.Less(t, time.Since(start), 150*time.Millisecond)
}

func TestManager_Close(t *testing.T) {
	m := NewManager()
	m.Subscribe(&recordingStream{})
	m.Close()
	assert.Equal(t, 0, m.SubscriberCount())
}

// Package input provides the sampled press flag shared by all input sources.
package input

import (
	"sync"
	"sync/atomic"
)

// Source names for logging and press tracking.
const (
	SourcePointer = "pointer"
	SourceTouch   = "touch"
	SourceRemote  = "remote"
)

// Latch records whether the user is pressing.
// Edges may arrive from any goroutine at any time; the tick only samples the
// flag, so rapid press/release sequences between ticks collapse to the last value.
// The latch is pressed while at least one source holds it.
type Latch struct {
	mu      sync.Mutex
	holders map[string]bool
	pressed atomic.Bool

	onPress   []func()
	onRelease []func()
}

// NewLatch creates a released latch.
func NewLatch() *Latch {
	return &Latch{holders: make(map[string]bool)}
}

// OnPress registers a hook run on every press-begin edge.
func (l *Latch) OnPress(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onPress = append(l.onPress, fn)
}

// OnRelease registers a hook run when the last holder releases.
func (l *Latch) OnRelease(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onRelease = append(l.onRelease, fn)
}

// Press records a press-begin edge from source.
func (l *Latch) Press(source string) {
	l.mu.Lock()
	l.holders[source] = true
	l.pressed.Store(true)
	hooks := append([]func(){}, l.onPress...)
	l.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

// Release records a press-end edge from source.
func (l *Latch) Release(source string) {
	l.mu.Lock()
	if !l.holders[source] {
		l.mu.Unlock()
		return
	}
	delete(l.holders, source)
	released := len(l.holders) == 0
	l.pressed.Store(!released)
	var hooks []func()
	if released {
		hooks = append(hooks, l.onRelease...)
	}
	l.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

// Set presses or releases source to match pressed, firing edges only on change.
func (l *Latch) Set(source string, pressed bool) {
	l.mu.Lock()
	current := l.holders[source]
	l.mu.Unlock()

	switch {
	case pressed && !current:
		l.Press(source)
	case !pressed && current:
		l.Release(source)
	}
}

// Pressed samples the flag.
func (l *Latch) Pressed() bool {
	return l.pressed.Load()
}

package input

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLatch_PressRelease(t *testing.T) {
	l := NewLatch()
	assert.False(t, l.Pressed())

	l.Press(SourcePointer)
	assert.True(t, l.Pressed())

	l.Release(SourcePointer)
	assert.False(t, l.Pressed())
}

func TestLatch_MultipleSources(t *testing.T) {
	l := NewLatch()

	l.Press(SourcePointer)
	l.Press(SourceRemote)
	l.Release(SourcePointer)
	assert.True(t, l.Pressed(), "remote still holds")

	l.Release(SourceRemote)
	assert.False(t, l.Pressed())
}

func TestLatch_Hooks(t *testing.T) {
	l := NewLatch()
	presses, releases := 0, 0
	l.OnPress(func() { presses++ })
	l.OnRelease(func() { releases++ })

	l.Press(SourceTouch)
	l.Release(SourceTouch)
	l.Release(SourceTouch)

	assert.Equal(t, 1, presses)
	assert.Equal(t, 1, releases, "releasing an idle source is ignored")
}

func TestLatch_Set(t *testing.T) {
	l := NewLatch()
	presses := 0
	l.OnPress(func() { presses++ })

	l.Set(SourcePointer, true)
	l.Set(SourcePointer, true)
	assert.Equal(t, 1, presses, "level updates fire one edge")

	l.Set(SourcePointer, false)
	assert.False(t, l.Pressed())
}

func TestLatch_CoalescesEdges(t *testing.T) {
	l := NewLatch()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Press(SourceRemote)
			l.Release(SourceRemote)
		}()
	}
	wg.Wait()

	assert.False(t, l.Pressed(), "last observed edge is a release")
}

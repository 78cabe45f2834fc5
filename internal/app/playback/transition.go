package playback

import (
	"image"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/flipbook/internal/app/assets"
	"github.com/osa030/flipbook/internal/app/render"
	"github.com/osa030/flipbook/internal/domain/pack"
)

// DefaultPrefetchWindow is the number of trailing interactive frames within
// which a held cursor requests the outro.
const DefaultPrefetchWindow = 15

// Config holds playback tuning.
type Config struct {
	ForwardSpeed   float64 // Cursor increment per tick while held
	BackwardSpeed  float64 // Cursor decrement per tick while released
	PrefetchWindow int     // Trailing interactive frames that trigger outro prefetch
	WaitForUnlock  bool    // Hold states also wait for the audio unlock gesture
}

// DefaultConfig returns the stock playback tuning.
func DefaultConfig() Config {
	return Config{
		ForwardSpeed:   0.5,
		BackwardSpeed:  0.8,
		PrefetchWindow: DefaultPrefetchWindow,
	}
}

// Assets is the part of the asset cache the state machine drives.
type Assets interface {
	EnsureLoaded(packIndex int, seg pack.Segment)
	EnsurePackAll(packIndex int)
	IsSegmentReady(packIndex int, seg pack.Segment) bool
	IsPackReady(packIndex int) bool
	FirstFrame(packIndex int, seg pack.Segment) (image.Image, int, bool)
	Entry(packIndex int, seg pack.Segment) (*assets.Entry, bool)
	Progress() assets.Progress
}

// Picker chooses the pack after the given one.
type Picker interface {
	PickNext(exclude int) int
}

// Env is everything a transition reads besides the session.
type Env struct {
	Config Config
	Assets Assets
	Picker Picker
}

// Session is the mutable playback context threaded through transitions.
type Session struct {
	State   State
	Cursor  Cursor
	Current int // Pack being played (A)
	Next    int // Pack prefetched to play after it (B)
}

// enter switches to st and resets the cursor.
func (s Session) enter(st State) Session {
	s.State = st
	s.Cursor.Reset()
	return s
}

// Input is the input sampled for one tick.
type Input struct {
	Pressed       bool
	AudioUnlocked bool
}

// Tick is the outcome of one transition.
type Tick struct {
	Render   render.Command
	From     State
	To       State
	Pinned   bool // Interactive cursor held at its last frame waiting for the outro
	Switched bool // Next pack promoted to current during this tick
}

// Changed reports whether the tick moved to another state.
func (t Tick) Changed() bool {
	return t.From != t.To
}

// Transition advances the session by one tick.
// Every move that depends on loaded frames is gated on cache readiness, so slow
// or failed loads stall on a placeholder instead of showing missing frames.
func Transition(s Session, env Env, in Input) (Session, Tick) {
	t := Tick{From: s.State}

	switch s.State {
	case StateHoldInInit, StateHoldInSwitch:
		t.Render = holdFrame(s, env)
		if holdSatisfied(s, env, in) {
			s = s.enter(StateIn)
		}

	case StateIn:
		e, ok := env.Assets.Entry(s.Current, pack.SegmentIn)
		if !ok || !env.Assets.IsSegmentReady(s.Current, pack.SegmentIn) {
			t.Render = render.Loading(env.Assets.Progress())
			break
		}
		done := false
		idx := s.Cursor.AdvanceOneShot(e.Len(), func() { done = true })
		t.Render = frameAt(e, s.Current, idx, env)
		if done {
			s = s.enter(StateInter)
		}

	case StateInter:
		e, ok := env.Assets.Entry(s.Current, pack.SegmentInter)
		if !ok {
			t.Render = render.Loading(env.Assets.Progress())
			break
		}
		idx, atEnd := s.Cursor.AdvanceInteractive(e.Len(), in.Pressed, env.Config.ForwardSpeed, env.Config.BackwardSpeed)
		if in.Pressed && s.Cursor.Pos() >= float64(e.Len()-env.Config.PrefetchWindow) {
			env.Assets.EnsureLoaded(s.Current, pack.SegmentOut)
		}
		t.Render = frameAt(e, s.Current, idx, env)
		if atEnd {
			if env.Assets.IsSegmentReady(s.Current, pack.SegmentOut) {
				s = s.enter(StateOut)
			} else {
				t.Pinned = true
			}
		}

	case StateOut:
		if !env.Assets.IsSegmentReady(s.Current, pack.SegmentOut) {
			t.Render = interLastFrame(s, env)
			break
		}
		e, _ := env.Assets.Entry(s.Current, pack.SegmentOut)
		done := false
		idx := s.Cursor.AdvanceOneShot(e.Len(), func() { done = true })
		t.Render = frameAt(e, s.Current, idx, env)
		if done {
			s.Current = s.Next
			s.Next = env.Picker.PickNext(s.Current)
			env.Assets.EnsurePackAll(s.Current)
			env.Assets.EnsurePackAll(s.Next)
			s = s.enter(StateHoldInSwitch)
			t.Switched = true
		}

	default:
		zlog.Error().Msgf("playback: unknown state %d, restarting from hold", int(s.State))
		t.Render = render.Loading(env.Assets.Progress())
		s = s.enter(StateHoldInInit)
	}

	t.To = s.State
	return s, t
}

// holdSatisfied reports whether a hold state may start the intro: both the
// current and the next pack must be fully loaded.
func holdSatisfied(s Session, env Env, in Input) bool {
	if env.Config.WaitForUnlock && !in.AudioUnlocked {
		return false
	}
	return env.Assets.IsPackReady(s.Current) && env.Assets.IsPackReady(s.Next)
}

// holdFrame shows the current pack's first intro frame, or the loading indicator.
func holdFrame(s Session, env Env) render.Command {
	img, idx, ok := env.Assets.FirstFrame(s.Current, pack.SegmentIn)
	if !ok {
		return render.Loading(env.Assets.Progress())
	}
	return render.Placeholder(img, render.FrameRef{Pack: s.Current, Segment: pack.SegmentIn, Index: idx})
}

// interLastFrame shows the last interactive frame while the outro loads.
func interLastFrame(s Session, env Env) render.Command {
	e, ok := env.Assets.Entry(s.Current, pack.SegmentInter)
	if !ok {
		return render.Loading(env.Assets.Progress())
	}
	last := e.Len() - 1
	img, ok := e.Frame(last)
	if !ok {
		return render.Loading(env.Assets.Progress())
	}
	return render.Placeholder(img, render.FrameRef{Pack: s.Current, Segment: pack.SegmentInter, Index: last})
}

// frameAt shows slot idx of e, or the loading indicator if it holds no image.
func frameAt(e *assets.Entry, packIndex, idx int, env Env) render.Command {
	img, ok := e.Frame(idx)
	if !ok {
		return render.Loading(env.Assets.Progress())
	}
	return render.Frame(img, render.FrameRef{Pack: packIndex, Segment: e.Segment(), Index: idx})
}

// Package hotkey provides a global hotkey listener using gohook.
// It supports "hold" mode (press to start, release to stop) and
// "toggle" mode (each press flips recording on or off).
package hotkey

import (
	"log/slog"
	"sync"

	hook "github.com/robotn/gohook"
)

// Action is what a hotkey press asks the recorder to do.
type Action int

const (
	// ActionStart begins a recording.
	ActionStart Action = iota
	// ActionStop finalizes the active recording.
	ActionStop
	// ActionToggle starts or stops depending on the current state.
	ActionToggle
)

func (a Action) String() string {
	switch a {
	case ActionStart:
		return "start"
	case ActionStop:
		return "stop"
	case ActionToggle:
		return "toggle"
	default:
		return "unknown"
	}
}

// Event is emitted on the channel returned by Events.
type Event struct {
	Action Action
}

// Target receives hotkey actions. app.Controller satisfies it.
type Target interface {
	StartRecording() bool
	StopRecording() bool
	Toggle() bool
}

// Listener manages a global hotkey and emits actions.
type Listener struct {
	keys []string
	mode string // "hold" or "toggle"
	ch   chan Event
	done chan struct{}
	once sync.Once

	mu   sync.Mutex
	held bool
}

// NewListener creates a Listener for the given key combo and mode.
// keys should be lowercase key names (e.g., ["ctrl", "shift", "r"]).
func NewListener(keys []string, mode string) *Listener {
	return &Listener{
		keys: keys,
		mode: mode,
		ch:   make(chan Event, 16),
		done: make(chan struct{}),
	}
}

// Events returns the channel that receives hotkey events.
// The channel is closed when the listener stops.
func (l *Listener) Events() <-chan Event {
	return l.ch
}

// Start begins listening for the global hotkey.
// This function blocks until Stop is called. Run it in a goroutine.
func (l *Listener) Start() {
	hook.Register(hook.KeyDown, l.keys, func(hook.Event) { l.keyDown() })
	hook.Register(hook.KeyUp, l.keys, func(hook.Event) { l.keyUp() })

	evChan := hook.Start()
	go func() {
		<-l.done
		hook.End()
	}()
	<-hook.Process(evChan)
	close(l.ch)
}

// keyDown handles a press of the full combo. Key repeat delivers KeyDown
// while the combo is held; only the first one until the release counts.
func (l *Listener) keyDown() {
	l.mu.Lock()
	if l.held {
		l.mu.Unlock()
		return
	}
	l.held = true
	l.mu.Unlock()
	if l.mode == "hold" {
		l.emit(ActionStart)
	} else {
		l.emit(ActionToggle)
	}
}

func (l *Listener) keyUp() {
	l.mu.Lock()
	if !l.held {
		l.mu.Unlock()
		return
	}
	l.held = false
	l.mu.Unlock()
	if l.mode == "hold" {
		l.emit(ActionStop)
	}
}

func (l *Listener) emit(a Action) {
	select {
	case l.ch <- Event{Action: a}:
	default: // don't block the hook thread if the consumer is behind
		slog.Debug("[hotkey] event dropped", "action", a)
	}
}

// Stop terminates the hotkey listener.
// It is safe to call multiple times.
func (l *Listener) Stop() {
	l.once.Do(func() {
		close(l.done)
	})
}

// Forward delivers events to t until the channel closes.
func Forward(events <-chan Event, t Target) {
	for ev := range events {
		slog.Debug("[hotkey] pressed", "action", ev.Action)
		switch ev.Action {
		case ActionStart:
			t.StartRecording()
		case ActionStop:
			t.StopRecording()
		case ActionToggle:
			t.Toggle()
		}
	}
}

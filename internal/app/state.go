// Package app holds the recording/refinement state machine and the
// controller that drives it.
package app

import (
	"fmt"

	"github.com/chaz8081/gostt-refine/internal/refine"
)

// Phase is the controller's top-level state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRecording
	PhaseProcessing
	PhaseSucceeded
	PhaseFailed
)

var phaseNames = [...]string{"idle", "recording", "processing", "succeeded", "failed"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// busy reports whether a capture or request is in flight. Style changes and
// new recordings are refused while busy.
func (p Phase) busy() bool {
	return p == PhaseRecording || p == PhaseProcessing
}

// Phases lists every phase, in declaration order.
func Phases() []Phase {
	return []Phase{PhaseIdle, PhaseRecording, PhaseProcessing, PhaseSucceeded, PhaseFailed}
}

// State is the single owned application state.
type State struct {
	Phase Phase
	Style refine.Style
	// Result is set only in PhaseSucceeded.
	Result *refine.Result
	// Err is the last request failure, shown in PhaseFailed.
	Err string
	// MicErr is set when the microphone could not be acquired. The phase
	// is left unchanged in that case.
	MicErr string
	// Finalizing is set once a stop has been accepted and the capture is
	// being closed. Only one finalize runs per recording.
	Finalizing bool
}

// EventType identifies an input to the state machine.
type EventType int

const (
	EventSelectStyle EventType = iota
	EventStartRequested
	EventCaptureStarted
	EventCaptureDenied
	EventStopRequested
	EventCaptureFinalized
	EventCaptureFailed
	EventRefineSucceeded
	EventRefineFailed
)

var eventNames = [...]string{
	"select-style", "start-requested", "capture-started", "capture-denied",
	"stop-requested", "capture-finalized", "capture-failed",
	"refine-succeeded", "refine-failed",
}

func (t EventType) String() string {
	if t < 0 || int(t) >= len(eventNames) {
		return fmt.Sprintf("event(%d)", int(t))
	}
	return eventNames[t]
}

// EventTypes lists every event type, in declaration order.
func EventTypes() []EventType {
	out := make([]EventType, len(eventNames))
	for i := range out {
		out[i] = EventType(i)
	}
	return out
}

// Event is one input to Transition. Only the fields relevant to Type are set.
type Event struct {
	Type    EventType
	Style   refine.Style  // EventSelectStyle
	Audio   refine.Audio  // EventCaptureFinalized
	Result  refine.Result // EventRefineSucceeded
	Message string        // EventCaptureDenied, EventCaptureFailed, EventRefineFailed
}

// EffectType identifies work the controller must perform after a transition.
type EffectType int

const (
	// EffectReject means the event did not apply in the current phase.
	EffectReject EffectType = iota
	EffectAcquireMic
	EffectStartMeter
	EffectStopMeter
	EffectFinalizeCapture
	// EffectRefine issues the single remote request with the latched style.
	EffectRefine
	EffectCelebrate
	EffectPresent
)

// Effect is one unit of follow-up work.
type Effect struct {
	Type   EffectType
	Audio  refine.Audio
	Style  refine.Style
	Result refine.Result
	Reason string
}

// fallbackError is stored when a failure arrives without a message.
const fallbackError = "An unexpected error occurred."

// Transition computes the next state and the effects for ev. It is total:
// every (phase, event) pair returns exactly one state. Events that do not
// apply leave the state unchanged and return a single EffectReject.
func Transition(s State, ev Event) (State, []Effect) {
	switch ev.Type {
	case EventSelectStyle:
		if !ev.Style.Valid() {
			return reject(s, ev, "unknown style %q", ev.Style)
		}
		if s.Phase.busy() {
			return reject(s, ev, "style is locked while %s", s.Phase)
		}
		s.Style = ev.Style
		return s, nil

	case EventStartRequested:
		if s.Phase.busy() {
			return reject(s, ev, "cannot start recording while %s", s.Phase)
		}
		return s, []Effect{{Type: EffectAcquireMic}}

	case EventCaptureStarted:
		if s.Phase.busy() {
			return reject(s, ev, "capture started while %s", s.Phase)
		}
		s.Phase = PhaseRecording
		s.Finalizing = false
		s.Result, s.Err, s.MicErr = nil, "", ""
		return s, []Effect{{Type: EffectStartMeter}}

	case EventCaptureDenied:
		if s.Phase.busy() {
			return reject(s, ev, "capture denied while %s", s.Phase)
		}
		s.MicErr = orFallback(ev.Message)
		return s, nil

	case EventStopRequested:
		if s.Phase != PhaseRecording {
			return reject(s, ev, "not recording")
		}
		if s.Finalizing {
			return reject(s, ev, "already stopping")
		}
		s.Finalizing = true
		return s, []Effect{{Type: EffectStopMeter}, {Type: EffectFinalizeCapture}}

	case EventCaptureFinalized:
		if s.Phase != PhaseRecording || !s.Finalizing {
			return reject(s, ev, "capture finalized while %s", s.Phase)
		}
		s.Phase = PhaseProcessing
		s.Finalizing = false
		s.Result, s.Err = nil, ""
		return s, []Effect{{Type: EffectRefine, Audio: ev.Audio, Style: s.Style}}

	case EventCaptureFailed:
		if s.Phase != PhaseRecording || !s.Finalizing {
			return reject(s, ev, "capture failed while %s", s.Phase)
		}
		s.Phase = PhaseFailed
		s.Finalizing = false
		s.Result, s.Err = nil, orFallback(ev.Message)
		return s, []Effect{{Type: EffectStopMeter}}

	case EventRefineSucceeded:
		if s.Phase != PhaseProcessing {
			return reject(s, ev, "no request in flight")
		}
		res := ev.Result
		s.Phase = PhaseSucceeded
		s.Result, s.Err = &res, ""
		return s, []Effect{{Type: EffectCelebrate, Result: res}, {Type: EffectPresent, Result: res}}

	case EventRefineFailed:
		if s.Phase != PhaseProcessing {
			return reject(s, ev, "no request in flight")
		}
		s.Phase = PhaseFailed
		s.Result, s.Err = nil, orFallback(ev.Message)
		return s, nil

	default:
		return reject(s, ev, "unknown event")
	}
}

func reject(s State, ev Event, format string, args ...any) (State, []Effect) {
	reason := ev.Type.String() + ": " + fmt.Sprintf(format, args...)
	return s, []Effect{{Type: EffectReject, Reason: reason}}
}

func orFallback(msg string) string {
	if msg == "" {
		return fallbackError
	}
	return msg
}

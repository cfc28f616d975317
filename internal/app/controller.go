package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/chaz8081/gostt-refine/internal/audio"
	"github.com/chaz8081/gostt-refine/internal/meter"
	"github.com/chaz8081/gostt-refine/internal/refine"
)

// Capturer is the microphone side of the pipeline.
type Capturer interface {
	Start() error
	Stop() (audio.Capture, error)
	IsRecording() bool
	Level() float64
}

// Refiner issues the remote refinement request.
type Refiner interface {
	Refine(ctx context.Context, a refine.Audio, style refine.Style) (refine.Result, error)
}

// Presenter receives every successful result.
type Presenter interface {
	Present(ctx context.Context, res refine.Result)
}

// Celebrator signals success to the user. It is purely cosmetic.
type Celebrator interface {
	Celebrate(res refine.Result)
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller's logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithPresenter registers the presenter for successful results.
func WithPresenter(p Presenter) Option {
	return func(c *Controller) { c.presenter = p }
}

// WithCelebrator registers the success cue.
func WithCelebrator(cb Celebrator) Option {
	return func(c *Controller) { c.celebrator = cb }
}

// WithMeter draws a level bar on w while recording.
func WithMeter(w io.Writer, interval time.Duration) Option {
	return func(c *Controller) {
		c.meterOut = w
		c.meterInterval = interval
	}
}

// WithMinDuration fails captures shorter than d instead of sending them.
func WithMinDuration(d time.Duration) Option {
	return func(c *Controller) { c.minDuration = d }
}

// Controller owns the State and applies every event on a single goroutine
// (Run). Capture finalization and the refine call run in their own
// goroutines and report back as events.
type Controller struct {
	capture    Capturer
	refiner    Refiner
	presenter  Presenter
	celebrator Celebrator
	logger     *slog.Logger

	meterOut      io.Writer
	meterInterval time.Duration
	minDuration   time.Duration

	events chan Event
	done   chan struct{}

	mu        sync.Mutex
	state     State
	observers []func(State)

	// touched only by the Run goroutine
	meterCancel context.CancelFunc
	meterDone   chan struct{}
	wg          sync.WaitGroup
}

// NewController creates a Controller in PhaseIdle with the given style.
func NewController(capture Capturer, refiner Refiner, style refine.Style, opts ...Option) *Controller {
	c := &Controller{
		capture: capture,
		refiner: refiner,
		logger:  slog.Default(),
		events:  make(chan Event, 32),
		done:    make(chan struct{}),
		state:   State{Phase: PhaseIdle, Style: style},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// OnChange registers fn to be called from the event loop after every
// state change. Register observers before Run.
func (c *Controller) OnChange(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// Dispatch queues ev for the event loop. It returns false once the loop has
// stopped.
func (c *Controller) Dispatch(ev Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.events <- ev:
		return true
	case <-c.done:
		return false
	}
}

// StartRecording requests a new capture.
func (c *Controller) StartRecording() bool {
	return c.Dispatch(Event{Type: EventStartRequested})
}

// StopRecording requests the active capture be finalized.
func (c *Controller) StopRecording() bool {
	return c.Dispatch(Event{Type: EventStopRequested})
}

// Toggle stops an active capture or starts a new one.
func (c *Controller) Toggle() bool {
	if c.Snapshot().Phase == PhaseRecording {
		return c.StopRecording()
	}
	return c.StartRecording()
}

// SelectStyle requests a style change.
func (c *Controller) SelectStyle(s refine.Style) bool {
	return c.Dispatch(Event{Type: EventSelectStyle, Style: s})
}

// Run applies events until ctx is cancelled. On exit it stops the meter,
// releases an active capture and waits for background work.
func (c *Controller) Run(ctx context.Context) error {
	defer c.shutdown()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-c.events:
			c.apply(ctx, ev)
		}
	}
}

func (c *Controller) shutdown() {
	close(c.done)
	c.stopMeter()
	if c.capture.IsRecording() {
		if _, err := c.capture.Stop(); err != nil {
			c.logger.Warn("[app] discarding capture on shutdown", "error", err)
		}
	}
	c.wg.Wait()
}

// apply runs one transition and its effects.
func (c *Controller) apply(ctx context.Context, ev Event) {
	c.mu.Lock()
	prev := c.state
	next, effects := Transition(prev, ev)
	c.state = next
	observers := c.observers
	c.mu.Unlock()

	if next != prev {
		c.logger.Debug("[app] transition", "event", ev.Type, "from", prev.Phase, "to", next.Phase)
		for _, fn := range observers {
			fn(next)
		}
	}

	for _, eff := range effects {
		c.run(ctx, eff)
	}
}

func (c *Controller) run(ctx context.Context, eff Effect) {
	switch eff.Type {
	case EffectReject:
		c.logger.Info("[app] event ignored", "reason", eff.Reason)

	case EffectAcquireMic:
		if err := c.capture.Start(); err != nil {
			c.logger.Warn("[app] microphone unavailable", "error", err)
			c.apply(ctx, Event{Type: EventCaptureDenied, Message: micMessage(err)})
			return
		}
		c.logger.Info("[app] recording...")
		c.apply(ctx, Event{Type: EventCaptureStarted})

	case EffectStartMeter:
		c.startMeter()

	case EffectStopMeter:
		c.stopMeter()

	case EffectFinalizeCapture:
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.post(c.finalize())
		}()

	case EffectRefine:
		c.wg.Add(1)
		go func(a refine.Audio, style refine.Style) {
			defer c.wg.Done()
			res, err := c.refiner.Refine(ctx, a, style)
			if err != nil {
				c.post(Event{Type: EventRefineFailed, Message: err.Error()})
				return
			}
			c.post(Event{Type: EventRefineSucceeded, Result: res})
		}(eff.Audio, eff.Style)

	case EffectCelebrate:
		if c.celebrator != nil {
			c.celebrator.Celebrate(eff.Result)
		}

	case EffectPresent:
		if c.presenter != nil {
			c.presenter.Present(ctx, eff.Result)
		}
	}
}

// finalize stops the capture and turns the outcome into an event.
func (c *Controller) finalize() Event {
	capture, err := c.capture.Stop()
	if err != nil {
		return Event{Type: EventCaptureFailed, Message: "recording could not be finalized: " + err.Error()}
	}
	if c.minDuration > 0 && capture.Duration < c.minDuration {
		return Event{Type: EventCaptureFailed, Message: "recording too short (" + capture.Duration.Round(100*time.Millisecond).String() + ")"}
	}
	c.logger.Info("[app] captured audio, refining...", "duration", capture.Duration.Round(100*time.Millisecond), "bytes", len(capture.Data))
	return Event{Type: EventCaptureFinalized, Audio: refine.Audio{Data: capture.Data, MIMEType: capture.MIMEType}}
}

// post delivers an event from a background goroutine. Events arriving
// after shutdown are dropped.
func (c *Controller) post(ev Event) {
	select {
	case c.events <- ev:
	case <-c.done:
		c.logger.Debug("[app] dropping event after shutdown", "event", ev.Type)
	}
}

func (c *Controller) startMeter() {
	if c.meterOut == nil || c.meterCancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.meterCancel, c.meterDone = cancel, done
	go func() {
		defer close(done)
		meter.Run(ctx, c.capture, c.meterOut, c.meterInterval)
	}()
}

func (c *Controller) stopMeter() {
	if c.meterCancel == nil {
		return
	}
	c.meterCancel()
	<-c.meterDone
	c.meterCancel, c.meterDone = nil, nil
}

func micMessage(err error) string {
	var perr *audio.PermissionError
	if errors.As(err, &perr) {
		return "Could not access microphone. Please check permissions."
	}
	return err.Error()
}

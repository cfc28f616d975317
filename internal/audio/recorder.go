// Package audio captures microphone input and finalizes it into a single
// WAV clip.
package audio

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrAlreadyRecording is returned by Start while a capture is active.
	ErrAlreadyRecording = errors.New("audio: already recording")
	// ErrNotRecording is returned by Stop when no capture is active.
	ErrNotRecording = errors.New("audio: not recording")
)

// PermissionError reports that the microphone could not be acquired:
// access denied or no usable input device.
type PermissionError struct {
	Err error
}

func (e *PermissionError) Error() string {
	return "could not access microphone, please check permissions: " + e.Err.Error()
}

func (e *PermissionError) Unwrap() error { return e.Err }

// Capture is one finalized recording.
type Capture struct {
	Data     []byte
	MIMEType string
	Duration time.Duration
}

// Recorder captures audio from a Backend into an ordered list of chunks.
type Recorder struct {
	backend    Backend
	sampleRate uint32
	channels   uint32

	mu        sync.Mutex
	stream    Stream
	chunks    [][]byte
	recording bool

	level atomic.Uint64 // math.Float64bits of the latest RMS level
}

// NewRecorder creates a recorder on top of backend. Call Close() when done.
func NewRecorder(backend Backend, sampleRate, channels uint32) *Recorder {
	return &Recorder{
		backend:    backend,
		sampleRate: sampleRate,
		channels:   channels,
	}
}

// Start acquires the microphone and begins capturing. A failure to open or
// start the device is a *PermissionError and leaves no device open.
func (r *Recorder) Start() error {
	r.mu.Lock()
	if r.recording {
		r.mu.Unlock()
		return ErrAlreadyRecording
	}
	r.chunks = r.chunks[:0] // reset buffer but keep capacity
	r.recording = true
	r.mu.Unlock()
	r.level.Store(0)

	// The device is opened without holding mu: backends may deliver the
	// first callback before Start returns.
	stream, err := r.backend.Open(StreamConfig{SampleRate: r.sampleRate, Channels: r.channels}, r.onData)
	if err != nil {
		r.abortStart()
		return &PermissionError{Err: err}
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		r.abortStart()
		return &PermissionError{Err: err}
	}

	r.mu.Lock()
	r.stream = stream
	r.mu.Unlock()
	return nil
}

func (r *Recorder) abortStart() {
	r.mu.Lock()
	r.recording = false
	r.chunks = r.chunks[:0]
	r.mu.Unlock()
	r.level.Store(0)
}

// Stop ends the capture and finalizes every chunk received so far into one
// WAV clip. The stream is closed before finalizing, so chunks delivered up
// to that point are included.
func (r *Recorder) Stop() (Capture, error) {
	r.mu.Lock()
	if !r.recording || r.stream == nil { // never started, or still starting
		r.mu.Unlock()
		return Capture{}, ErrNotRecording
	}
	stream := r.stream
	r.stream = nil
	r.mu.Unlock()

	// Closing outside the lock: the backend waits for its last callback,
	// which itself takes mu in onData.
	closeErr := stream.Close()

	r.mu.Lock()
	chunks := r.chunks
	r.chunks = nil
	r.recording = false
	r.mu.Unlock()
	r.level.Store(0)

	capture, err := r.finalize(chunks)
	if err != nil {
		return Capture{}, err
	}
	if closeErr != nil {
		return capture, fmt.Errorf("audio: closing capture device: %w", closeErr)
	}
	return capture, nil
}

// IsRecording returns whether the recorder is currently capturing audio.
func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// Level returns the RMS amplitude of the latest chunk in [0, 1]. It is
// zero when not recording.
func (r *Recorder) Level() float64 {
	return math.Float64frombits(r.level.Load())
}

// Close releases all audio resources, discarding any capture in progress.
func (r *Recorder) Close() error {
	r.mu.Lock()
	stream := r.stream
	r.stream = nil
	r.mu.Unlock()

	if stream != nil {
		stream.Close()
	}

	r.mu.Lock()
	r.recording = false
	r.chunks = nil
	r.mu.Unlock()
	r.level.Store(0)

	return r.backend.Close()
}

// onData is the backend callback invoked when audio data is available.
// The backend reuses its buffer, so the chunk is copied.
func (r *Recorder) onData(pcm []byte) {
	if len(pcm) == 0 {
		return
	}
	chunk := make([]byte, len(pcm))
	copy(chunk, pcm)

	r.mu.Lock()
	recording := r.recording
	if recording {
		r.chunks = append(r.chunks, chunk)
	}
	r.mu.Unlock()

	if recording {
		r.level.Store(math.Float64bits(rms(chunk)))
	}
}

func (r *Recorder) finalize(chunks [][]byte) (Capture, error) {
	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	samples := make([]int, 0, total/2)
	for _, c := range chunks {
		samples = pcm16ToInts(c, samples)
	}

	data, err := EncodeWAV(samples, r.sampleRate, r.channels)
	if err != nil {
		return Capture{}, err
	}

	frames := len(samples) / int(r.channels)
	return Capture{
		Data:     data,
		MIMEType: MIMEType,
		Duration: time.Duration(frames) * time.Second / time.Duration(r.sampleRate),
	}, nil
}

// rms computes the normalized root-mean-square amplitude of 16-bit PCM.
func rms(pcm []byte) float64 {
	samples := pcm16ToInts(pcm, nil)
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s) / 32768.0
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

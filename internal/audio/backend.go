package audio

import (
	"fmt"

	"github.com/gen2brain/malgo"
)

// StreamConfig describes the capture format requested from a Backend.
// Samples are always delivered as little-endian signed 16-bit PCM.
type StreamConfig struct {
	SampleRate uint32
	Channels   uint32
}

// Stream is an opened capture device.
type Stream interface {
	// Start begins delivering data to the callback given to Open.
	Start() error
	// Close stops the device and releases it. No callback runs after
	// Close returns.
	Close() error
}

// Backend opens microphone streams.
type Backend interface {
	Open(cfg StreamConfig, onData func(pcm []byte)) (Stream, error)
	Close() error
}

// MalgoBackend captures from the default input device through miniaudio.
type MalgoBackend struct {
	ctx *malgo.AllocatedContext
}

// NewMalgoBackend initializes a miniaudio context. Call Close() when done.
func NewMalgoBackend() (*MalgoBackend, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("initializing audio context: %w", err)
	}
	return &MalgoBackend{ctx: ctx}, nil
}

// Open initializes the default capture device. It does not start it.
func (b *MalgoBackend) Open(cfg StreamConfig, onData func(pcm []byte)) (Stream, error) {
	deviceCfg := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceCfg.Capture.Format = malgo.FormatS16
	deviceCfg.Capture.Channels = cfg.Channels
	deviceCfg.SampleRate = cfg.SampleRate

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, pSample []byte, _ uint32) {
			onData(pSample)
		},
	}

	device, err := malgo.InitDevice(b.ctx.Context, deviceCfg, callbacks)
	if err != nil {
		return nil, fmt.Errorf("initializing capture device: %w", err)
	}
	return &malgoStream{device: device}, nil
}

// Close releases the miniaudio context.
func (b *MalgoBackend) Close() error {
	if b.ctx == nil {
		return nil
	}
	if err := b.ctx.Uninit(); err != nil {
		return fmt.Errorf("uninitializing audio context: %w", err)
	}
	b.ctx.Free()
	b.ctx = nil
	return nil
}

type malgoStream struct {
	device *malgo.Device
}

func (s *malgoStream) Start() error {
	if err := s.device.Start(); err != nil {
		return fmt.Errorf("starting capture device: %w", err)
	}
	return nil
}

// Close uninitializes the device. miniaudio stops the device and waits for
// the in-flight data callback before returning.
func (s *malgoStream) Close() error {
	if s.device != nil {
		s.device.Uninit()
		s.device = nil
	}
	return nil
}

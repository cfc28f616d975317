// Package refine turns a recorded audio clip into a transcription and a
// style-refined rewrite using a hosted generative model.
//
// One call to Client.Refine encodes the audio, builds the style-specific
// prompt, issues exactly one Generator call and decodes the JSON answer.
// Every failure comes back as *Error.
package refine

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"mime"
	"strings"
	"time"

	"github.com/google/uuid"
)

// JSONMIMEType is the response type requested from the model.
const JSONMIMEType = "application/json"

// Audio is an opaque recorded clip and its content type.
type Audio struct {
	Data     []byte
	MIMEType string
}

// Request is one fully prepared model call.
type Request struct {
	ID string
	// Prompt holds the task description and the style instruction.
	Prompt string
	// AudioMIMEType is the declared content type of AudioBase64.
	AudioMIMEType string
	// AudioBase64 is the standard base64 encoding of the clip.
	AudioBase64 string
	// ResponseMIMEType constrains the model output; always JSONMIMEType.
	ResponseMIMEType string
}

// Generator performs the remote inference call and returns the raw text
// of the model's answer.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Client runs the encode, prompt, request and parse pipeline.
type Client struct {
	gen          Generator
	instructions *Instructions
	logger       *slog.Logger
}

// Option customizes a Client built by New.
type Option func(*Client)

// WithLogger sets the client's logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a Client. A nil instructions table uses the built-in
// prompts; a nil logger uses slog.Default().
func NewClient(gen Generator, instructions *Instructions, logger *slog.Logger) *Client {
	if instructions == nil {
		instructions, _ = NewInstructions(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{gen: gen, instructions: instructions, logger: logger}
}

// Refine transcribes audio and rewrites it in the given style. It blocks
// until the remote call resolves; cancellation is up to ctx.
func (c *Client) Refine(ctx context.Context, audio Audio, style Style) (Result, error) {
	instruction, ok := c.instructions.For(style)
	if !ok {
		return Result{}, newError(KindStyle, "unsupported refinement style "+string(style), nil)
	}

	encoded, err := encodeAudio(audio)
	if err != nil {
		return Result{}, newError(KindEncoding, "could not encode the recording", err)
	}

	req := Request{
		ID:               uuid.NewString(),
		Prompt:           buildPrompt(style, instruction),
		AudioMIMEType:    audio.MIMEType,
		AudioBase64:      encoded,
		ResponseMIMEType: JSONMIMEType,
	}

	log := c.logger.With("request_id", req.ID, "style", string(style))
	log.Info("[refine] sending request", "mime", req.AudioMIMEType, "audio_bytes", len(audio.Data))
	start := time.Now()

	text, err := c.gen.Generate(ctx, req)
	if err != nil {
		log.Warn("[refine] remote call failed", "error", err, "elapsed", time.Since(start).Round(time.Millisecond))
		return Result{}, newError(KindTransport, "the refinement service request failed", err)
	}

	res, err := ParseResult(text)
	if err != nil {
		log.Warn("[refine] unreadable response", "error", err, "body_len", len(text))
		return Result{}, newError(KindParse, "failed to process the audio, please try again", err)
	}

	log.Info("[refine] done", "language", res.DetectedLanguage, "elapsed", time.Since(start).Round(time.Millisecond))
	return res, nil
}

// encodeAudio validates the declared content type and base64-encodes the clip.
func encodeAudio(a Audio) (string, error) {
	if a.MIMEType == "" {
		return "", errMissingMIME
	}
	mt, _, err := mime.ParseMediaType(a.MIMEType)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(mt, "audio/") {
		return "", fmt.Errorf("content type %q is not audio", mt)
	}
	return base64.StdEncoding.EncodeToString(a.Data), nil
}

package refine

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

// fakeGenerator records requests and replies with a canned answer.
type fakeGenerator struct {
	reply string
	err   error
	reqs  []Request
}

func (f *fakeGenerator) Generate(_ context.Context, req Request) (string, error) {
	f.reqs = append(f.reqs, req)
	return f.reply, f.err
}

func silentClip() Audio {
	return Audio{Data: make([]byte, 64000), MIMEType: "audio/webm"}
}

func TestRefineEmbedsStyleInstruction(t *testing.T) {
	for _, info := range Styles() {
		t.Run(string(info.Style), func(t *testing.T) {
			gen := &fakeGenerator{reply: `{}`}
			c := NewClient(gen, nil, nil)

			if _, err := c.Refine(context.Background(), silentClip(), info.Style); err != nil {
				t.Fatalf("Refine() error = %v", err)
			}
			if len(gen.reqs) != 1 {
				t.Fatalf("Generate called %d times, want 1", len(gen.reqs))
			}
			prompt := gen.reqs[0].Prompt
			if !strings.Contains(prompt, defaultInstructions[info.Style]) {
				t.Errorf("prompt missing instruction for %q", info.Style)
			}
			for other, text := range defaultInstructions {
				if other != info.Style && strings.Contains(prompt, text) {
					t.Errorf("prompt for %q also embeds instruction for %q", info.Style, other)
				}
			}
		})
	}
}

func TestRefineRejectsUnknownStyle(t *testing.T) {
	gen := &fakeGenerator{reply: `{}`}
	c := NewClient(gen, nil, nil)

	_, err := c.Refine(context.Background(), silentClip(), Style("pirate"))
	var rerr *Error
	if !errors.As(err, &rerr) || rerr.Kind != KindStyle {
		t.Fatalf("Refine() error = %v, want KindStyle", err)
	}
	if len(gen.reqs) != 0 {
		t.Error("unknown style must not reach the generator")
	}
}

func TestRefineSimpleScenario(t *testing.T) {
	gen := &fakeGenerator{reply: `{"originalText":"um so the meeting","refinedText":"The meeting.","detectedLanguage":"English"}`}
	c := NewClient(gen, nil, nil)
	clip := silentClip()

	res, err := c.Refine(context.Background(), clip, StyleSimple)
	if err != nil {
		t.Fatalf("Refine() error = %v", err)
	}

	req := gen.reqs[0]
	if req.AudioMIMEType != "audio/webm" {
		t.Errorf("AudioMIMEType = %q, want audio/webm", req.AudioMIMEType)
	}
	if req.ResponseMIMEType != JSONMIMEType {
		t.Errorf("ResponseMIMEType = %q, want %q", req.ResponseMIMEType, JSONMIMEType)
	}
	if !strings.Contains(req.Prompt, "Simplify this text") {
		t.Error("prompt missing the simplify instruction")
	}
	if req.AudioBase64 != base64.StdEncoding.EncodeToString(clip.Data) {
		t.Error("AudioBase64 does not match the clip")
	}
	if req.ID == "" {
		t.Error("request ID should be set")
	}

	want := Result{OriginalText: "um so the meeting", RefinedText: "The meeting.", DetectedLanguage: "English"}
	if res != want {
		t.Errorf("Refine() = %+v, want %+v", res, want)
	}
}

func TestRefineEncodingErrors(t *testing.T) {
	tests := []struct {
		name string
		mime string
	}{
		{"missing content type", ""},
		{"not audio", "text/plain"},
		{"malformed content type", "audio/;;;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{reply: `{}`}
			c := NewClient(gen, nil, nil)

			_, err := c.Refine(context.Background(), Audio{Data: []byte{1, 2}, MIMEType: tt.mime}, StyleFormal)
			var rerr *Error
			if !errors.As(err, &rerr) || rerr.Kind != KindEncoding {
				t.Fatalf("Refine() error = %v, want KindEncoding", err)
			}
			if len(gen.reqs) != 0 {
				t.Error("encoding failure must not reach the generator")
			}
		})
	}
}

func TestRefineEmptyClipIsStillSent(t *testing.T) {
	gen := &fakeGenerator{reply: `{}`}
	c := NewClient(gen, nil, nil)

	if _, err := c.Refine(context.Background(), Audio{MIMEType: "audio/wav"}, StyleFriendly); err != nil {
		t.Fatalf("Refine() error = %v", err)
	}
	if len(gen.reqs) != 1 || gen.reqs[0].AudioBase64 != "" {
		t.Errorf("empty clip should be sent with empty data, got %+v", gen.reqs)
	}
}

func TestRefineWrapsTransportError(t *testing.T) {
	cause := errors.New("gemini: HTTP 429 RESOURCE_EXHAUSTED: quota exceeded")
	c := NewClient(&fakeGenerator{err: cause}, nil, nil)

	_, err := c.Refine(context.Background(), silentClip(), StyleProfessional)
	var rerr *Error
	if !errors.As(err, &rerr) {
		t.Fatalf("Refine() error = %v, want *Error", err)
	}
	if rerr.Kind != KindTransport {
		t.Errorf("Kind = %v, want transport", rerr.Kind)
	}
	if !errors.Is(err, cause) {
		t.Error("transport error should wrap the cause")
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("message %q should keep the remote reason", err.Error())
	}
}

func TestRefineParseErrors(t *testing.T) {
	for _, body := range []string{"not json", "", "null"} {
		c := NewClient(&fakeGenerator{reply: body}, nil, nil)
		_, err := c.Refine(context.Background(), silentClip(), StyleProfessional)
		var rerr *Error
		if !errors.As(err, &rerr) || rerr.Kind != KindParse {
			t.Errorf("Refine() with body %q error = %v, want KindParse", body, err)
		}
	}
}

func TestRefineUsesOverriddenInstruction(t *testing.T) {
	in, err := NewInstructions(map[string]string{"friendly": "Sound like a good neighbour."})
	if err != nil {
		t.Fatal(err)
	}
	gen := &fakeGenerator{reply: `{}`}
	c := NewClient(gen, in, nil)

	if _, err := c.Refine(context.Background(), silentClip(), StyleFriendly); err != nil {
		t.Fatalf("Refine() error = %v", err)
	}
	if !strings.Contains(gen.reqs[0].Prompt, "Sound like a good neighbour.") {
		t.Error("prompt should use the overridden instruction")
	}
	if strings.Contains(gen.reqs[0].Prompt, defaultInstructions[StyleFriendly]) {
		t.Error("prompt should not also include the default instruction")
	}
}

func TestErrorKindString(t *testing.T) {
	tests := map[Kind]string{
		KindStyle:     "style",
		KindEncoding:  "encoding",
		KindTransport: "transport",
		KindParse:     "parse",
		Kind(0):       "unknown",
	}
	for k, want := range tests {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}

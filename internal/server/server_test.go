package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/chaz8081/gostt-refine/internal/config"
	"github.com/chaz8081/gostt-refine/internal/refine"
)

// fakeGenerator returns a fixed answer and remembers the last request.
type fakeGenerator struct {
	text string
	err  error
	last refine.Request
	n    int
}

func (g *fakeGenerator) Generate(_ context.Context, req refine.Request) (string, error) {
	g.n++
	g.last = req
	return g.text, g.err
}

func newTestServer(gen refine.Generator) *Server {
	return New(&config.ServerConfig{MaxUploadMiB: 1}, refine.NewClient(gen, nil, nil), refine.StyleProfessional, nil)
}

func multipartBody(t *testing.T, style, mimeType string, audio []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if style != "" {
		if err := w.WriteField("style", style); err != nil {
			t.Fatal(err)
		}
	}
	if audio != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="audio"; filename="recording.webm"`)
		if mimeType != "" {
			h.Set("Content-Type", mimeType)
		}
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatal(err)
		}
		part.Write(audio)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, w.FormDataContentType()
}

func doRefine(t *testing.T, s *Server, style, mimeType string, audio []byte) (int, map[string]any) {
	t.Helper()
	body, ct := multipartBody(t, style, mimeType, audio)
	req := httptest.NewRequest(http.MethodPost, "/api/refine", body)
	req.Header.Set("Content-Type", ct)

	resp, err := s.App().Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("response is not JSON: %q", raw)
	}
	return resp.StatusCode, out
}

func TestHealthz(t *testing.T) {
	s := newTestServer(&fakeGenerator{})
	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestStyles(t *testing.T) {
	s := newTestServer(&fakeGenerator{})
	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/api/styles", nil))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var styles []refine.StyleInfo
	if err := json.NewDecoder(resp.Body).Decode(&styles); err != nil {
		t.Fatal(err)
	}
	if len(styles) != 5 {
		t.Fatalf("styles = %d, want 5", len(styles))
	}
	for _, si := range styles {
		if !si.Style.Valid() || si.Label == "" {
			t.Errorf("bad style entry %+v", si)
		}
	}
}

func TestRefineSuccess(t *testing.T) {
	gen := &fakeGenerator{text: `{"originalText":"um hello","refinedText":"Hello.","detectedLanguage":"English"}`}
	s := newTestServer(gen)

	code, out := doRefine(t, s, "Simple", "audio/webm;codecs=opus", []byte("webm-bytes"))
	if code != http.StatusOK {
		t.Fatalf("status = %d, body = %v", code, out)
	}
	if out["refinedText"] != "Hello." || out["originalText"] != "um hello" || out["detectedLanguage"] != "English" {
		t.Errorf("body = %v", out)
	}
	if gen.last.AudioMIMEType != "audio/webm;codecs=opus" {
		t.Errorf("mime = %q", gen.last.AudioMIMEType)
	}
}

func TestRefineDefaultStyle(t *testing.T) {
	gen := &fakeGenerator{text: `{"refinedText":"ok"}`}
	s := newTestServer(gen)

	code, _ := doRefine(t, s, "", "audio/wav", []byte("RIFF"))
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if !bytes.Contains([]byte(gen.last.Prompt), []byte(`"professional"`)) {
		t.Errorf("default style not used; prompt:\n%s", gen.last.Prompt)
	}
}

func TestRefineErrorStatus(t *testing.T) {
	tests := []struct {
		name     string
		gen      *fakeGenerator
		style    string
		mimeType string
		audio    []byte
		want     int
		wantMsg  string
	}{
		{"unknown style", &fakeGenerator{}, "pirate", "audio/wav", []byte("x"), http.StatusBadRequest, "unsupported refinement style pirate"},
		{"missing audio", &fakeGenerator{}, "simple", "", nil, http.StatusBadRequest, "audio file is required"},
		{"not audio", &fakeGenerator{}, "simple", "text/plain", []byte("x"), http.StatusBadRequest, "could not encode the recording"},
		{"transport", &fakeGenerator{err: errors.New("gemini: HTTP 503")}, "simple", "audio/wav", []byte("x"), http.StatusBadGateway, "the refinement service request failed"},
		{"parse", &fakeGenerator{text: "not json"}, "simple", "audio/wav", []byte("x"), http.StatusBadGateway, "failed to process the audio, please try again"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(tt.gen)
			code, out := doRefine(t, s, tt.style, tt.mimeType, tt.audio)
			if code != tt.want {
				t.Errorf("status = %d, want %d", code, tt.want)
			}
			if out["error"] != tt.wantMsg {
				t.Errorf("error = %v, want %q", out["error"], tt.wantMsg)
			}
		})
	}
}

func TestRefineUnknownStyleNeverCallsBackend(t *testing.T) {
	gen := &fakeGenerator{}
	s := newTestServer(gen)
	doRefine(t, s, "pirate", "audio/wav", []byte("x"))
	if gen.n != 0 {
		t.Errorf("generator called %d times", gen.n)
	}
}

package refine

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"google.golang.org/genai"
)

// maxErrorMessage bounds how much of a remote error body ends up in an error.
const maxErrorMessage = 200

// GeminiGenerator calls generateContent through the Gemini Go SDK with the
// audio as an inline data part.
type GeminiGenerator struct {
	cfg   genai.ClientConfig
	model string

	once   sync.Once
	client *genai.Client
	err    error
}

// NewGeminiGenerator creates a generator for model at endpoint (for example
// https://generativelanguage.googleapis.com/v1beta). The last path segment
// of endpoint is the API version. The SDK client is created on the first
// request, so an empty key surfaces as a request error. A nil client uses
// the SDK default.
func NewGeminiGenerator(endpoint, model, apiKey string, client *http.Client) *GeminiGenerator {
	base, version := splitEndpoint(endpoint)
	return &GeminiGenerator{
		cfg: genai.ClientConfig{
			APIKey:      apiKey,
			Backend:     genai.BackendGeminiAPI,
			HTTPClient:  client,
			HTTPOptions: genai.HTTPOptions{BaseURL: base, APIVersion: version},
		},
		model: model,
	}
}

func (g *GeminiGenerator) sdk(ctx context.Context) (*genai.Client, error) {
	g.once.Do(func() {
		g.client, g.err = genai.NewClient(ctx, &g.cfg)
		if g.err != nil {
			g.err = fmt.Errorf("gemini: create client: %w", g.err)
		}
	})
	return g.client, g.err
}

// Generate sends one generateContent request and returns the concatenated
// text parts of the first candidate.
func (g *GeminiGenerator) Generate(ctx context.Context, req Request) (string, error) {
	client, err := g.sdk(ctx)
	if err != nil {
		return "", err
	}
	data, err := base64.StdEncoding.DecodeString(req.AudioBase64)
	if err != nil {
		return "", fmt.Errorf("gemini: audio payload: %w", err)
	}

	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{Text: req.Prompt},
			{InlineData: &genai.Blob{MIMEType: req.AudioMIMEType, Data: data}},
		},
	}}
	resp, err := client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: req.ResponseMIMEType,
	})
	if err != nil {
		return "", apiError(err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("gemini: request blocked: %s", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil {
			sb.WriteString(p.Text)
		}
	}
	return sb.String(), nil
}

// apiError keeps the service's own status and message for non-2xx
// responses. Other failures (network, context) are wrapped as is.
func apiError(err error) error {
	var e genai.APIError
	if !errors.As(err, &e) {
		var pe *genai.APIError
		if !errors.As(err, &pe) || pe == nil {
			return fmt.Errorf("gemini: %w", err)
		}
		e = *pe
	}

	// Plain-text bodies carry the HTTP status line ("502 Bad Gateway").
	status := strings.TrimSpace(strings.TrimPrefix(e.Status, strconv.Itoa(e.Code)))
	msg := truncate(strings.TrimSpace(e.Message), maxErrorMessage)

	head := "gemini: HTTP " + strconv.Itoa(e.Code)
	if status != "" {
		head += " " + status
	}
	if msg == "" {
		return errors.New(head)
	}
	return errors.New(head + ": " + msg)
}

// truncate shortens s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[:n]
	for len(s) > 0 {
		r, size := utf8.DecodeLastRuneInString(s)
		if r != utf8.RuneError || size != 1 {
			break
		}
		s = s[:len(s)-1]
	}
	return s
}

// splitEndpoint turns https://host/v1beta into the SDK's base URL and API
// version. An endpoint without a path keeps the SDK's default version.
func splitEndpoint(endpoint string) (base, version string) {
	endpoint = strings.TrimRight(endpoint, "/")
	u, err := url.Parse(endpoint)
	if err != nil || strings.Trim(u.Path, "/") == "" {
		return endpoint + "/", ""
	}
	i := strings.LastIndex(endpoint, "/")
	return endpoint[:i+1], endpoint[i+1:]
}

package refine

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// UnknownLanguage is reported when the model omits detectedLanguage.
const UnknownLanguage = "Unknown"

// Result is a decoded refinement response.
type Result struct {
	OriginalText     string `json:"originalText"`
	RefinedText      string `json:"refinedText"`
	DetectedLanguage string `json:"detectedLanguage"`
}

var errEmptyResponse = errors.New("empty response body")

// ParseResult decodes a model response permissively. Absent, null or empty
// fields fall back to defaults instead of failing; only an empty body or
// invalid JSON is an error.
func ParseResult(text string) (Result, error) {
	body := stripCodeFence(strings.TrimSpace(text))
	if body == "" {
		return Result{}, errEmptyResponse
	}

	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return Result{}, fmt.Errorf("decode response: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Result{}, errors.New("decode response: trailing data after JSON value")
	}
	if v == nil {
		return Result{}, errors.New("decode response: null body")
	}

	fields, _ := v.(map[string]any) // non-object JSON decodes as {}
	return Result{
		OriginalText:     coerce(fields["originalText"], ""),
		RefinedText:      coerce(fields["refinedText"], ""),
		DetectedLanguage: coerce(fields["detectedLanguage"], UnknownLanguage),
	}, nil
}

// coerce turns a loosely typed JSON value into text. Strings pass through,
// scalars are formatted, and anything empty takes the default.
func coerce(v any, def string) string {
	switch x := v.(type) {
	case string:
		if x == "" {
			return def
		}
		return x
	case json.Number:
		return x.String()
	case bool:
		if !x {
			return def
		}
		return "true"
	case nil:
		return def
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return def
		}
		return string(b)
	}
}

// stripCodeFence removes a surrounding ``` or ```json fence some models
// emit despite the JSON response mode.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 && !strings.ContainsAny(s[:i], "{[\"") {
		s = s[i+1:] // drop the language tag line
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	return strings.TrimSpace(s)
}

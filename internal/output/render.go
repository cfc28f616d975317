// Package output presents a refinement result: it prints it and runs the
// configured follow-up actions on the refined text.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/chaz8081/gostt-refine/internal/refine"
)

// NoTranscription is shown in place of an empty original transcription.
const NoTranscription = "No transcription available."

// Render writes a human-readable view of res to w.
func Render(w io.Writer, res refine.Result) error {
	lang := res.DetectedLanguage
	if lang == "" {
		lang = refine.UnknownLanguage
	}
	original := strings.TrimSpace(res.OriginalText)
	if original == "" {
		original = NoTranscription
	}

	_, err := fmt.Fprintf(w, "\nDetected language: %s\n\nOriginal transcription:\n%s\n\nRefined text:\n%s\n\n",
		lang, indent(original), indent(res.RefinedText))
	return err
}

func indent(s string) string {
	return "  " + strings.ReplaceAll(s, "\n", "\n  ")
}

// preview shortens s to at most n runes for one-line displays.
func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

package refine

import (
	"fmt"
	"strings"
)

// Style selects how the transcription is rewritten.
type Style string

const (
	StyleProfessional Style = "professional"
	StyleSimple       Style = "simple"
	StyleFormal       Style = "formal"
	StyleFriendly     Style = "friendly"
	StyleClientReady  Style = "client-ready"
)

// StyleInfo describes a style for user-facing listings.
type StyleInfo struct {
	Style       Style  `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

var styleInfos = []StyleInfo{
	{StyleProfessional, "Professional", "Clear and business-like"},
	{StyleFriendly, "Friendly", "Warm and approachable"},
	{StyleFormal, "Formal", "Official and structured"},
	{StyleSimple, "Simple", "Easy and direct"},
	{StyleClientReady, "Client-Ready", "Perfect for freelancers"},
}

var defaultInstructions = map[Style]string{
	StyleProfessional: "Refine this text into a clear, professional, and readable format suitable for business communication.",
	StyleSimple:       "Simplify this text to make it easy to understand while keeping the core message intact.",
	StyleFormal:       "Convert this text into a formal tone, suitable for official documents or academic contexts.",
	StyleFriendly:     "Make this text sound warm, friendly, and conversational while maintaining clarity.",
	StyleClientReady:  "Polish this text specifically for a client reply (e.g., Upwork, Fiverr). It should be persuasive, professional, and concise.",
}

// Styles returns every supported style in display order.
func Styles() []StyleInfo {
	out := make([]StyleInfo, len(styleInfos))
	copy(out, styleInfos)
	return out
}

// Valid reports whether s is one of the supported styles.
func (s Style) Valid() bool {
	_, ok := defaultInstructions[s]
	return ok
}

func (s Style) String() string { return string(s) }

// ParseStyle converts a user token into a Style. Matching ignores case and
// surrounding whitespace; anything outside the fixed set is rejected.
func ParseStyle(token string) (Style, error) {
	s := Style(strings.ToLower(strings.TrimSpace(token)))
	if !s.Valid() {
		return "", fmt.Errorf("refine: unknown style %q", token)
	}
	return s, nil
}

// Instructions maps each style to exactly one fixed instruction.
type Instructions struct {
	table map[Style]string
}

// NewInstructions returns the built-in instruction table with the given
// overrides applied. Override keys must be valid style tokens.
func NewInstructions(overrides map[string]string) (*Instructions, error) {
	table := make(map[Style]string, len(defaultInstructions))
	for s, text := range defaultInstructions {
		table[s] = text
	}
	for token, text := range overrides {
		s, err := ParseStyle(token)
		if err != nil {
			return nil, err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, fmt.Errorf("refine: empty instruction for style %q", s)
		}
		table[s] = text
	}
	return &Instructions{table: table}, nil
}

// For returns the instruction for s.
func (in *Instructions) For(s Style) (string, bool) {
	text, ok := in.table[s]
	return text, ok
}

package refine

import (
	"fmt"

	"github.com/chaz8081/gostt-refine/internal/config"
)

// NewGenerator creates a Generator based on the config backend setting.
func NewGenerator(cfg *config.RefineConfig) (Generator, error) {
	switch cfg.Backend {
	case "gemini", "":
		return NewGeminiGenerator(cfg.Endpoint, cfg.Model, cfg.APIKey, nil), nil
	default:
		return nil, fmt.Errorf("refine: unknown backend %q (supported: gemini)", cfg.Backend)
	}
}

// New builds a Client from config: the backend generator plus the
// instruction table with any per-style overrides.
func New(cfg *config.RefineConfig, opts ...Option) (*Client, error) {
	gen, err := NewGenerator(cfg)
	if err != nil {
		return nil, err
	}
	instructions, err := NewInstructions(cfg.Prompts)
	if err != nil {
		return nil, err
	}
	c := NewClient(gen, instructions, nil)
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

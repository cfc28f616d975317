package output

import (
	"log/slog"

	"github.com/gen2brain/beeep"

	"github.com/chaz8081/gostt-refine/internal/refine"
)

const notifyTitle = "gostt-refine"

// Notifier shows a desktop notification when a refinement succeeds.
type Notifier struct {
	notify func(title, message string) error
	logger *slog.Logger
}

// NewNotifier creates a Notifier backed by beeep.
func NewNotifier(logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		notify: func(title, message string) error { return beeep.Notify(title, message, "") },
		logger: logger,
	}
}

// Celebrate sends the success notification. Failures are only logged.
func (n *Notifier) Celebrate(res refine.Result) {
	msg := "Refined: " + preview(res.RefinedText, 80)
	if res.RefinedText == "" {
		msg = "Refinement finished."
	}
	if err := n.notify(notifyTitle, msg); err != nil {
		n.logger.Debug("[output] notification failed", "error", err)
	}
}

package output

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/chaz8081/gostt-refine/internal/config"
	"github.com/chaz8081/gostt-refine/internal/refine"
)

// DownloadName is the file the refined text is saved to.
const DownloadName = "refined-text.txt"

// Opener hands a URL to the desktop's default handler.
type Opener func(ctx context.Context, target string) error

// Actions renders results and runs the configured actions on the refined
// text. A failing action is logged and does not stop the others.
type Actions struct {
	out         io.Writer
	copy        func(string) error
	inject      func(string) error
	downloadDir string
	email       bool
	open        Opener
	logger      *slog.Logger
}

// NewActions builds the action set from cfg. Results are rendered to out.
func NewActions(cfg *config.OutputConfig, out io.Writer, logger *slog.Logger) *Actions {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Actions{
		out:         out,
		downloadDir: cfg.DownloadDir,
		email:       cfg.Email,
		open:        OpenURL,
		logger:      logger,
	}
	if cfg.Clipboard {
		a.copy = CopyToClipboard
	}
	if cfg.Inject == "type" || cfg.Inject == "paste" {
		a.inject = NewInjector(cfg.Inject).Inject
	}
	return a
}

// Present prints res and runs every enabled action on the refined text.
func (a *Actions) Present(ctx context.Context, res refine.Result) {
	if a.out != nil {
		if err := Render(a.out, res); err != nil {
			a.logger.Warn("[output] render failed", "error", err)
		}
	}

	text := res.RefinedText
	if strings.TrimSpace(text) == "" {
		a.logger.Info("[output] refined text is empty, skipping actions")
		return
	}

	if a.copy != nil {
		if err := a.copy(text); err != nil {
			a.logger.Error("[output] copy failed", "error", err)
		} else {
			a.logger.Info("[output] copied to clipboard")
		}
	}
	if a.inject != nil {
		if err := a.inject(text); err != nil {
			a.logger.Error("[output] injection failed", "error", err)
		}
	}
	if a.downloadDir != "" {
		path, err := Download(a.downloadDir, text)
		if err != nil {
			a.logger.Error("[output] download failed", "error", err)
		} else {
			a.logger.Info("[output] saved", "path", path)
		}
	}
	if a.email && a.open != nil {
		if err := a.open(ctx, MailtoURL(text)); err != nil {
			a.logger.Error("[output] could not open mail client", "error", err)
		}
	}
}

// Download writes text to dir/refined-text.txt, creating dir if needed,
// and returns the file path.
func Download(dir, text string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("output: create download dir: %w", err)
	}
	path := filepath.Join(dir, DownloadName)

	// Write to a temp file first, then rename.
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(text), 0o644); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("output: write %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("output: move %s: %w", path, err)
	}
	return path, nil
}

// MailtoURL returns a compose link with text as the body. Spaces are
// encoded as %20 since mail clients do not decode '+'.
func MailtoURL(text string) string {
	return "mailto:?body=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}

// OpenURL opens target with the platform's default handler.
func OpenURL(ctx context.Context, target string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", target)
	case "windows":
		cmd = exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", target)
	default:
		cmd = exec.CommandContext(ctx, "xdg-open", target)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("output: open %s: %w", cmd.Path, err)
	}
	go cmd.Wait()
	return nil
}
